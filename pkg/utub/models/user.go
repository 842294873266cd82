package models

import (
	"time"
)

// User represents a registered user in the system.
// Username and email are both unique; identity is immutable after
// registration except for credential and verification fields.
type User struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Username      string    `gorm:"uniqueIndex;not null" json:"username"`
	Email         string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string    `json:"-"`
	EmailVerified bool      `gorm:"default:false" json:"email_verified"`

	// Relationships
	Memberships []Membership `gorm:"foreignKey:UserID" json:"memberships,omitempty"`
}
