package models

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel contains the timestamps shared by persisted models
type BaseModel struct {
	CreatedAt time.Time `gorm:"column:created_at;not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updatedAt"`
}

// Touch sets both timestamps to now when they are unset
func (b *BaseModel) Touch(now time.Time) {
	now = now.UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
}

// BeforeCreate GORM hook for BaseModel
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	b.Touch(time.Now())
	return nil
}
