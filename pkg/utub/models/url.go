package models

import (
	"time"
)

// URL represents a globally de-duplicated URL. Rows are created the first
// time any user references a not-yet-seen normalized URL string and are
// never deleted while any UTub references them.
type URL struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	URLString   string    `gorm:"uniqueIndex;not null" json:"url_string"`
	CreatedByID uint      `gorm:"not null" json:"created_by_id"`

	// Relationships
	CreatedBy User `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

// UTubURL represents the presence of a global URL in a specific UTub,
// contributed by a member, with per-UTub notes. A (utub, url) pair appears
// at most once.
type UTubURL struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UTubID    uint      `gorm:"column:utub_id;not null;uniqueIndex:idx_utub_url" json:"utub_id"`
	URLID     uint      `gorm:"column:url_id;not null;uniqueIndex:idx_utub_url" json:"url_id"`
	AddedByID uint      `gorm:"not null" json:"added_by_id"`
	Notes     string    `json:"notes"`

	// Relationships
	UTub    UTub `gorm:"foreignKey:UTubID" json:"utub,omitempty"`
	URL     URL  `gorm:"foreignKey:URLID" json:"url,omitempty"`
	AddedBy User `gorm:"foreignKey:AddedByID" json:"added_by,omitempty"`
}

func (UTubURL) TableName() string {
	return "utub_urls"
}
