package models

import (
	"time"
)

// Tag represents a globally de-duplicated tag string, created the first
// time the string is used anywhere.
type Tag struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	TagString   string    `gorm:"uniqueIndex;not null" json:"tag_string"`
	CreatedByID uint      `gorm:"not null" json:"created_by_id"`

	// Relationships
	CreatedBy User `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

// UTubURLTag attaches a global Tag to a specific URL within a specific
// UTub. A (utub, url, tag) triple appears at most once, and at most five
// tags may be attached to the same (utub, url) pair.
type UTubURLTag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UTubID    uint      `gorm:"column:utub_id;not null;uniqueIndex:idx_utub_url_tag;index:idx_tag_pair" json:"utub_id"`
	URLID     uint      `gorm:"column:url_id;not null;uniqueIndex:idx_utub_url_tag;index:idx_tag_pair" json:"url_id"`
	TagID     uint      `gorm:"column:tag_id;not null;uniqueIndex:idx_utub_url_tag" json:"tag_id"`

	// Relationships
	UTub UTub `gorm:"foreignKey:UTubID" json:"utub,omitempty"`
	URL  URL  `gorm:"foreignKey:URLID" json:"url,omitempty"`
	Tag  Tag  `gorm:"foreignKey:TagID" json:"tag,omitempty"`
}

func (UTubURLTag) TableName() string {
	return "utub_url_tags"
}
