package models

import (
	"time"
)

// UTub represents a shared collection of URLs with members and a single
// creator. UpdatedAt is bumped on any structural change to the UTub (name,
// description, membership, URL set, or tag set), never on reads.
type UTub struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"last_updated"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	CreatorID   uint      `gorm:"not null;index" json:"creator_id"`

	// Relationships
	Creator User         `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Members []Membership `gorm:"foreignKey:UTubID" json:"members,omitempty"`
	URLs    []UTubURL    `gorm:"foreignKey:UTubID" json:"urls,omitempty"`
}

func (UTub) TableName() string {
	return "utubs"
}
