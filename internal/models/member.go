package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is a team-roster record
type Member struct {
	ID           string `gorm:"column:id;primaryKey;type:varchar(24)" json:"_id"`
	Name         string `gorm:"column:name;not null" json:"name"`
	Role         string `gorm:"column:role;not null" json:"role"`
	Email        string `gorm:"column:email;not null;uniqueIndex:idx_members_email" json:"email"`
	Phone        string `gorm:"column:phone" json:"phone,omitempty"`
	Bio          string `gorm:"column:bio" json:"bio,omitempty"`
	ProfileImage string `gorm:"column:profile_image;not null" json:"profileImage"`
	BaseModel
}

// TableName sets the table name for the Member model
func (Member) TableName() string {
	return "members"
}

// NewMemberID generates a new member identifier.
// Identifiers are ObjectID hex strings regardless of the backing store.
func NewMemberID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidMemberID reports whether id is a well-formed member identifier
func IsValidMemberID(id string) bool {
	return primitive.IsValidObjectID(id)
}
