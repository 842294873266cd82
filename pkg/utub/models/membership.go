package models

import (
	"time"
)

// Role represents a user's role within a specific UTub
type Role string

const (
	RoleCreator Role = "creator"
	RoleMember  Role = "member"
)

// Membership represents the many-to-many relationship between users and
// UTubs. Exactly one membership per UTub carries RoleCreator, and it always
// corresponds to UTub.CreatorID. There is no ownership transfer.
type Membership struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UTubID    uint      `gorm:"column:utub_id;not null;uniqueIndex:idx_utub_user" json:"utub_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_utub_user" json:"user_id"`
	Role      Role      `gorm:"type:varchar(20);default:'member'" json:"role"`

	// Relationships
	UTub UTub `gorm:"foreignKey:UTubID" json:"utub,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
