package engine

import (
	"errors"
	"fmt"

	"github.com/utubapp/utub-server/pkg/utub/models"
	"github.com/utubapp/utub-server/pkg/utub/policy"
	"github.com/utubapp/utub-server/pkg/utub/sanitize"
	"gorm.io/gorm"
)

// validateTagString sanitizes a tag string. Tags cannot be empty.
func validateTagString(tag string) (string, error) {
	cleaned, err := sanitize.Text(tag)
	if err != nil {
		return "", &ValidationError{Msg: "tag must not contain markup"}
	}
	if cleaned == "" {
		return "", &ValidationError{Msg: "tag cannot be empty"}
	}
	if len(cleaned) > MaxTagLen {
		return "", &ValidationError{Msg: fmt.Sprintf("tag exceeds %d characters", MaxTagLen)}
	}
	return cleaned, nil
}

// findOrCreateTag resolves a tag string to its global row, creating it on
// first use. Tag rows are shared system-wide and never deleted here.
func findOrCreateTag(tx *gorm.DB, tagString string, actorID uint) (*models.Tag, error) {
	var tag models.Tag
	err := tx.Where("tag_string = ?", tagString).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tag = models.Tag{TagString: tagString, CreatedByID: actorID}
	if err := tx.Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := tx.Where("tag_string = ?", tagString).First(&tag).Error; err != nil {
				return nil, err
			}
			return &tag, nil
		}
		return nil, err
	}
	return &tag, nil
}

// loadUTubURL fetches the (utub, url) association row inside tx.
func loadUTubURL(tx *gorm.DB, utubID, urlID uint) (*models.UTubURL, error) {
	var entry models.UTubURL
	if err := tx.Where("utub_id = ? AND url_id = ?", utubID, urlID).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "url"}
		}
		return nil, err
	}
	return &entry, nil
}

// AddTag attaches a tag to a URL within the UTub, resolving or creating the
// global tag row. At most MaxTagsPerURL tags may be attached to the same
// (utub, url) pair, and the same tag at most once. Any current member may
// tag. Bumps the UTub's last-updated timestamp.
func (e *Engine) AddTag(actorID, utubID, urlID uint, tagString string) (*models.UTubURLTag, error) {
	tagString, err := validateTagString(tagString)
	if err != nil {
		return nil, err
	}

	var link models.UTubURLTag
	err = e.db.Transaction(func(tx *gorm.DB) error {
		_, members, err := loadUTub(tx, utubID)
		if err != nil {
			return err
		}
		if d := policy.CanMutateURLs(actorID, members); !d.Allowed {
			return &AuthorizationError{Reason: d.Reason}
		}
		if _, err := loadUTubURL(tx, utubID, urlID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.UTubURLTag{}).
			Where("utub_id = ? AND url_id = ?", utubID, urlID).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= MaxTagsPerURL {
			return &ConflictError{Msg: "five tags max"}
		}

		tag, err := findOrCreateTag(tx, tagString, actorID)
		if err != nil {
			return err
		}

		var existing models.UTubURLTag
		if err := tx.Where("utub_id = ? AND url_id = ? AND tag_id = ?", utubID, urlID, tag.ID).
			First(&existing).Error; err == nil {
			return &ConflictError{Msg: "url already tagged"}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		link = models.UTubURLTag{UTubID: utubID, URLID: urlID, TagID: tag.ID}
		if err := tx.Create(&link).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Msg: "url already tagged"}
			}
			return err
		}
		link.Tag = *tag

		return touchUTub(tx, utubID)
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// ModifyTag repoints an existing tag attachment at a different global tag.
// If the new string equals the current tag's string the call reports
// OutcomeNoChange and writes nothing. The row is repointed rather than
// recreated, so the tag ceiling checked at attach time still holds.
func (e *Engine) ModifyTag(actorID, utubID, urlID, tagID uint, newTagString string) (*models.UTubURLTag, Outcome, error) {
	newTagString, err := validateTagString(newTagString)
	if err != nil {
		return nil, OutcomeNoChange, err
	}

	var link models.UTubURLTag
	outcome := OutcomeNoChange

	err = e.db.Transaction(func(tx *gorm.DB) error {
		_, members, err := loadUTub(tx, utubID)
		if err != nil {
			return err
		}
		if d := policy.CanMutateURLs(actorID, members); !d.Allowed {
			return &AuthorizationError{Reason: d.Reason}
		}

		if err := tx.Preload("Tag").
			Where("utub_id = ? AND url_id = ? AND tag_id = ?", utubID, urlID, tagID).
			First(&link).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "tag"}
			}
			return err
		}

		if newTagString == link.Tag.TagString {
			return nil
		}

		tag, err := findOrCreateTag(tx, newTagString, actorID)
		if err != nil {
			return err
		}

		var existing models.UTubURLTag
		if err := tx.Where("utub_id = ? AND url_id = ? AND tag_id = ?", utubID, urlID, tag.ID).
			First(&existing).Error; err == nil {
			return &ConflictError{Msg: "url already tagged"}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		link.TagID = tag.ID
		if err := tx.Save(&link).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Msg: "url already tagged"}
			}
			return err
		}
		link.Tag = *tag

		outcome = OutcomeUpdated
		return touchUTub(tx, utubID)
	})
	if err != nil {
		return nil, OutcomeNoChange, err
	}
	return &link, outcome, nil
}

// RemoveTag detaches a tag from a URL within the UTub. The global tag row
// stays. Any current member may remove tags.
func (e *Engine) RemoveTag(actorID, utubID, urlID, tagID uint) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		_, members, err := loadUTub(tx, utubID)
		if err != nil {
			return err
		}
		if d := policy.CanMutateURLs(actorID, members); !d.Allowed {
			return &AuthorizationError{Reason: d.Reason}
		}

		result := tx.Where("utub_id = ? AND url_id = ? AND tag_id = ?", utubID, urlID, tagID).
			Delete(&models.UTubURLTag{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &NotFoundError{Resource: "tag"}
		}

		return touchUTub(tx, utubID)
	})
}
