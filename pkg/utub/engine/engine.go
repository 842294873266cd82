// Package engine applies every state transition on UTubs, memberships,
// URLs, and tags. Each operation runs inside a single database transaction,
// checks the authorization policy before mutating anything, and either
// fully applies or rolls back.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/utubapp/utub-server/pkg/utub/models"
	"github.com/utubapp/utub-server/pkg/utub/policy"
	"github.com/utubapp/utub-server/pkg/utub/sanitize"
	"gorm.io/gorm"
)

// Input limits. Description length comes from the product rule of 500
// characters; the rest are generous caps to keep payloads bounded.
const (
	MaxNameLen        = 100
	MaxDescriptionLen = 500
	MaxNotesLen       = 500
	MaxTagLen         = 30
	MaxTagsPerURL     = 5
)

// Engine coordinates validation, authorization, and transactional mutation.
type Engine struct {
	db *gorm.DB
}

// New creates an engine on top of the given database handle.
func New(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// validateName sanitizes a UTub name. Names cannot collapse to empty.
func validateName(name string) (string, error) {
	cleaned, err := sanitize.Text(name)
	if err != nil {
		return "", &ValidationError{Msg: "name must not contain markup"}
	}
	if cleaned == "" {
		return "", &ValidationError{Msg: "name cannot be empty"}
	}
	if len(cleaned) > MaxNameLen {
		return "", &ValidationError{Msg: fmt.Sprintf("name exceeds %d characters", MaxNameLen)}
	}
	return cleaned, nil
}

// validateDescription sanitizes a UTub description. An all-whitespace
// description collapses to the empty string.
func validateDescription(description string) (string, error) {
	cleaned, err := sanitize.Text(description)
	if err != nil {
		return "", &ValidationError{Msg: "description must not contain markup"}
	}
	if len(cleaned) > MaxDescriptionLen {
		return "", &ValidationError{Msg: fmt.Sprintf("description exceeds %d characters", MaxDescriptionLen)}
	}
	return cleaned, nil
}

// loadUTub fetches a UTub and its membership set inside tx.
func loadUTub(tx *gorm.DB, utubID uint) (*models.UTub, []models.Membership, error) {
	var utub models.UTub
	if err := tx.First(&utub, utubID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &NotFoundError{Resource: "utub"}
		}
		return nil, nil, err
	}

	var members []models.Membership
	if err := tx.Where("utub_id = ?", utubID).Find(&members).Error; err != nil {
		return nil, nil, err
	}
	return &utub, members, nil
}

// touchUTub bumps the UTub's last-updated timestamp. Called by every
// operation that structurally changes the UTub.
func touchUTub(tx *gorm.DB, utubID uint) error {
	return tx.Model(&models.UTub{}).Where("id = ?", utubID).
		Update("updated_at", time.Now()).Error
}

// CreateUTub creates a new UTub with the actor as its creator, together
// with the creator membership, in one transaction.
func (e *Engine) CreateUTub(actorID uint, name, description string) (*models.UTub, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	description, err = validateDescription(description)
	if err != nil {
		return nil, err
	}

	var utub models.UTub
	err = e.db.Transaction(func(tx *gorm.DB) error {
		utub = models.UTub{
			Name:        name,
			Description: description,
			CreatorID:   actorID,
		}
		if err := tx.Create(&utub).Error; err != nil {
			return err
		}

		membership := models.Membership{
			UTubID: utub.ID,
			UserID: actorID,
			Role:   models.RoleCreator,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}
	return &utub, nil
}

// UpdateUTub renames a UTub or edits its description. Creator only. Nil
// fields are left untouched; if the provided values equal the current ones
// the call reports OutcomeNoChange and writes nothing.
func (e *Engine) UpdateUTub(actorID, utubID uint, name, description *string) (*models.UTub, Outcome, error) {
	var utub *models.UTub
	outcome := OutcomeNoChange

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var err error
		utub, _, err = loadUTub(tx, utubID)
		if err != nil {
			return err
		}
		if d := policy.CanEditUTub(actorID, utub); !d.Allowed {
			return &AuthorizationError{Reason: d.Reason}
		}

		if name != nil {
			cleaned, err := validateName(*name)
			if err != nil {
				return err
			}
			if cleaned != utub.Name {
				utub.Name = cleaned
				outcome = OutcomeUpdated
			}
		}
		if description != nil {
			cleaned, err := validateDescription(*description)
			if err != nil {
				return err
			}
			if cleaned != utub.Description {
				utub.Description = cleaned
				outcome = OutcomeUpdated
			}
		}

		if outcome == OutcomeNoChange {
			return nil
		}
		return tx.Save(utub).Error
	})
	if err != nil {
		return nil, OutcomeNoChange, err
	}
	return utub, outcome, nil
}

// DeleteUTub deletes a UTub and all of its memberships, URL entries, and
// tag attachments in one transaction. The globally shared URL and Tag rows
// are never touched. Creator only.
func (e *Engine) DeleteUTub(actorID, utubID uint) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		utub, _, err := loadUTub(tx, utubID)
		if err != nil {
			return err
		}
		if d := policy.CanDeleteUTub(actorID, utub); !d.Allowed {
			return &AuthorizationError{Reason: d.Reason}
		}

		// Ordered cascade: association rows first, then the aggregate root.
		if err := tx.Where("utub_id = ?", utubID).Delete(&models.UTubURLTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("utub_id = ?", utubID).Delete(&models.UTubURL{}).Error; err != nil {
			return err
		}
		if err := tx.Where("utub_id = ?", utubID).Delete(&models.Membership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.UTub{}, utubID).Error
	})
}
