package engine

import (
	"errors"
	"fmt"

	"github.com/utubapp/utub-server/pkg/utub/models"
	"github.com/utubapp/utub-server/pkg/utub/policy"
	"github.com/utubapp/utub-server/pkg/utub/sanitize"
	"github.com/utubapp/utub-server/pkg/utub/urlnorm"
	"gorm.io/gorm"
)

// validateNotes sanitizes the free-text note attached to a URL entry.
func validateNotes(notes string) (string, error) {
	cleaned, err := sanitize.Text(notes)
	if err != nil {
		return "", &ValidationError{Msg: "notes must not contain markup"}
	}
	if len(cleaned) > MaxNotesLen {
		return "", &ValidationError{Msg: fmt.Sprintf("notes exceed %d characters", MaxNotesLen)}
	}
	return cleaned, nil
}

// normalizeURL wraps the normalizer collaborator, mapping its failure to
// the engine's validation kind.
func normalizeURL(raw string) (string, error) {
	normalized, err := urlnorm.Normalize(raw)
	if err != nil {
		return "", &ValidationError{Msg: "invalid url"}
	}
	return normalized, nil
}

// findOrCreateURL resolves a normalized URL string to its global row,
// creating it on first use. URL rows are shared across all UTubs and are
// never mutated or deleted here. A duplicate-key failure means another
// transaction created the row first, so it is re-fetched.
func findOrCreateURL(tx *gorm.DB, normalized string, actorID uint) (*models.URL, error) {
	var url models.URL
	err := tx.Where("url_string = ?", normalized).First(&url).Error
	if err == nil {
		return &url, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	url = models.URL{URLString: normalized, CreatedByID: actorID}
	if err := tx.Create(&url).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := tx.Where("url_string = ?", normalized).First(&url).Error; err != nil {
				return nil, err
			}
			return &url, nil
		}
		return nil, err
	}
	return &url, nil
}

// AddURL adds a URL to the UTub, attributed to the actor, de-duplicating
// against the global URL table by normalized string. Any current member may
// add URLs. Bumps the UTub's last-updated timestamp.
func (e *Engine) AddURL(actorID, utubID uint, rawURL, notes string) (*models.UTubURL, error) {
	notes, err := validateNotes(notes)
	if err != nil {
		return nil, err
	}
	normalized, err := normalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	var entry models.UTubURL
	err = e.db.Transaction(func(tx *gorm.DB) error {
		_, members, err := loadUTub(tx, utubID)
		if err != nil {
			return err
		}
		if d := policy.CanMutateURLs(actorID, members); !d.Allowed {
			return &AuthorizationError{Reason: d.Reason}
		}

		url, err := findOrCreateURL(tx, normalized, actorID)
		if err != nil {
			return err
		}

		var existing models.UTubURL
		if err := tx.Where("utub_id = ? AND url_id = ?", utubID, url.ID).
			First(&existing).Error; err == nil {
			return &ConflictError{Msg: "url already in utub"}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		entry = models.UTubURL{
			UTubID:    utubID,
			URLID:     url.ID,
			AddedByID: actorID,
			Notes:     notes,
		}
		if err := tx.Create(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Msg: "url already in utub"}
			}
			return err
		}
		entry.URL = *url

		return touchUTub(tx, utubID)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// RemoveURL removes a URL entry and every tag attached to it in this UTub,
// atomically. The global URL row stays. Allowed for the creator or the
// member who contributed the URL.
func (e *Engine) RemoveURL(actorID, utubID, urlID uint) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		utub, members, err := loadUTub(tx, utubID)
		if err != nil {
			return err
		}

		var entry models.UTubURL
		if err := tx.Where("utub_id = ? AND url_id = ?", utubID, urlID).
			First(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "url"}
			}
			return err
		}

		if d := policy.CanRemoveURL(actorID, utub, members, entry.AddedByID); !d.Allowed {
			return &AuthorizationError{Reason: d.Reason}
		}

		if err := tx.Where("utub_id = ? AND url_id = ?", utubID, urlID).
			Delete(&models.UTubURLTag{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.UTubURL{}, entry.ID).Error; err != nil {
			return err
		}

		return touchUTub(tx, utubID)
	})
}

// EditURL updates a URL entry. If the normalized new URL equals the current
// one, only the notes change; identical notes report OutcomeNoChange with
// nothing written. If the URL string differs, the entry is repointed to the
// resolved global URL row and every tag attached to the old pair migrates
// to the new one inside the same transaction. Allowed for the creator or
// the contributing member.
func (e *Engine) EditURL(actorID, utubID, urlID uint, rawURL, notes string) (*models.UTubURL, Outcome, error) {
	notes, err := validateNotes(notes)
	if err != nil {
		return nil, OutcomeNoChange, err
	}
	normalized, err := normalizeURL(rawURL)
	if err != nil {
		return nil, OutcomeNoChange, err
	}

	var entry models.UTubURL
	outcome := OutcomeNoChange

	err = e.db.Transaction(func(tx *gorm.DB) error {
		utub, members, err := loadUTub(tx, utubID)
		if err != nil {
			return err
		}

		if err := tx.Preload("URL").Where("utub_id = ? AND url_id = ?", utubID, urlID).
			First(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "url"}
			}
			return err
		}

		if d := policy.CanRemoveURL(actorID, utub, members, entry.AddedByID); !d.Allowed {
			return &AuthorizationError{Reason: d.Reason}
		}

		if normalized == entry.URL.URLString {
			if notes == entry.Notes {
				return nil
			}
			entry.Notes = notes
			if err := tx.Save(&entry).Error; err != nil {
				return err
			}
			outcome = OutcomeUpdated
			return touchUTub(tx, utubID)
		}

		target, err := findOrCreateURL(tx, normalized, actorID)
		if err != nil {
			return err
		}

		var existing models.UTubURL
		if err := tx.Where("utub_id = ? AND url_id = ?", utubID, target.ID).
			First(&existing).Error; err == nil {
			return &ConflictError{Msg: "url already in utub"}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		oldURLID := entry.URLID
		entry.URLID = target.ID
		entry.Notes = notes
		if err := tx.Save(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Msg: "url already in utub"}
			}
			return err
		}
		entry.URL = *target

		// Tags follow the URL within this UTub. The new pair was just
		// checked absent, so no triple can collide.
		if err := tx.Model(&models.UTubURLTag{}).
			Where("utub_id = ? AND url_id = ?", utubID, oldURLID).
			Update("url_id", target.ID).Error; err != nil {
			return err
		}

		outcome = OutcomeUpdated
		return touchUTub(tx, utubID)
	})
	if err != nil {
		return nil, OutcomeNoChange, err
	}
	return &entry, outcome, nil
}
