package engine

import (
	"errors"

	"github.com/utubapp/utub-server/pkg/utub/models"
	"github.com/utubapp/utub-server/pkg/utub/policy"
	"gorm.io/gorm"
)

// AddMember resolves username to a user and adds them to the UTub as a
// regular member. Creator only. Bumps the UTub's last-updated timestamp.
func (e *Engine) AddMember(actorID, utubID uint, username string) (*models.Membership, error) {
	var membership models.Membership

	err := e.db.Transaction(func(tx *gorm.DB) error {
		utub, members, err := loadUTub(tx, utubID)
		if err != nil {
			return err
		}
		if d := policy.CanAddMember(actorID, utub); !d.Allowed {
			return &AuthorizationError{Reason: d.Reason}
		}

		var user models.User
		if err := tx.Where("username = ?", username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "user"}
			}
			return err
		}

		if policy.IsMember(user.ID, members) {
			return &ConflictError{Msg: "user is already a member"}
		}

		membership = models.Membership{
			UTubID: utubID,
			UserID: user.ID,
			Role:   models.RoleMember,
		}
		if err := tx.Create(&membership).Error; err != nil {
			// A concurrent add can slip past the pre-check; the unique
			// index on (utub_id, user_id) reports it here instead.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Msg: "user is already a member"}
			}
			return err
		}
		membership.User = user

		return touchUTub(tx, utubID)
	})
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// RemoveMember deletes the target user's membership. The creator's own
// membership can never be removed, regardless of caller. Contributions the
// removed member made (URL entries and tags) are left in place and stay
// attributed to them.
func (e *Engine) RemoveMember(actorID, utubID, targetID uint) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		utub, members, err := loadUTub(tx, utubID)
		if err != nil {
			return err
		}

		if targetID == utub.CreatorID {
			return &ValidationError{Msg: "creator cannot remove self"}
		}
		if d := policy.CanRemoveMember(actorID, targetID, utub, members); !d.Allowed {
			return &AuthorizationError{Reason: d.Reason}
		}

		result := tx.Where("utub_id = ? AND user_id = ?", utubID, targetID).
			Delete(&models.Membership{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &NotFoundError{Resource: "membership"}
		}

		return touchUTub(tx, utubID)
	})
}
