package models

import (
	"regexp"
	"strings"

	"github.com/gov-dx-sandbox/team-roster/internal/apperrors"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CreateMemberRequest carries the form fields of a member submission
type CreateMemberRequest struct {
	Name  string `json:"name" yaml:"name"`
	Role  string `json:"role" yaml:"role"`
	Email string `json:"email" yaml:"email"`
	Phone string `json:"phone,omitempty" yaml:"phone"`
	Bio   string `json:"bio,omitempty" yaml:"bio"`
}

// Normalize trims surrounding whitespace from every field
func (r *CreateMemberRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Role = strings.TrimSpace(r.Role)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Bio = strings.TrimSpace(r.Bio)
}

// Validate checks required fields first, then the email format
func (r *CreateMemberRequest) Validate() error {
	var missing []string
	if r.Name == "" {
		missing = append(missing, "name")
	}
	if r.Role == "" {
		missing = append(missing, "role")
	}
	if r.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return apperrors.MissingFields(missing...)
	}

	if !IsValidEmail(r.Email) {
		return apperrors.Validation("Invalid email format", "email")
	}
	return nil
}

// IsValidEmail reports whether email looks like an address
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ToMember converts the request into a Member referencing profileImage
func (r *CreateMemberRequest) ToMember(profileImage string) *Member {
	return &Member{
		Name:         r.Name,
		Role:         r.Role,
		Email:        r.Email,
		Phone:        r.Phone,
		Bio:          r.Bio,
		ProfileImage: profileImage,
	}
}
