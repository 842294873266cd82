// Package policy holds the authorization rules for UTub mutations. All
// checks are pure functions over already-loaded data; callers supply the
// UTub and its membership set and pass the verdict to their error mapping.
package policy

import (
	"github.com/utubapp/utub-server/pkg/utub/models"
)

// Stable reason codes surfaced with authorization denials.
const (
	ReasonNotMember         = "not-a-member"
	ReasonNotCreator        = "not-creator"
	ReasonCreatorSelfRemove = "creator-cannot-remove-self"
)

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// IsCreator reports whether userID created the UTub.
func IsCreator(userID uint, utub *models.UTub) bool {
	return utub.CreatorID == userID
}

// IsMember reports whether userID holds a membership in the set.
func IsMember(userID uint, members []models.Membership) bool {
	for _, m := range members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// CanView allows any current member to see the UTub.
func CanView(actorID uint, members []models.Membership) Decision {
	if !IsMember(actorID, members) {
		return deny(ReasonNotMember)
	}
	return allow()
}

// CanEditUTub allows only the creator to rename the UTub or edit its
// description.
func CanEditUTub(actorID uint, utub *models.UTub) Decision {
	if !IsCreator(actorID, utub) {
		return deny(ReasonNotCreator)
	}
	return allow()
}

// CanDeleteUTub allows only the creator to delete the UTub.
func CanDeleteUTub(actorID uint, utub *models.UTub) Decision {
	if !IsCreator(actorID, utub) {
		return deny(ReasonNotCreator)
	}
	return allow()
}

// CanAddMember allows only the creator to add members.
func CanAddMember(actorID uint, utub *models.UTub) Decision {
	if !IsCreator(actorID, utub) {
		return deny(ReasonNotCreator)
	}
	return allow()
}

// CanRemoveMember allows the creator to remove any other member, and any
// non-creator member to remove themselves. The creator can never leave
// their own UTub.
func CanRemoveMember(actorID, targetID uint, utub *models.UTub, members []models.Membership) Decision {
	if !IsMember(actorID, members) {
		return deny(ReasonNotMember)
	}
	if actorID == targetID {
		if IsCreator(actorID, utub) {
			return deny(ReasonCreatorSelfRemove)
		}
		return allow()
	}
	if !IsCreator(actorID, utub) {
		return deny(ReasonNotCreator)
	}
	return allow()
}

// CanMutateURLs allows any current member to add URLs and to add, remove,
// or modify tags on them.
func CanMutateURLs(actorID uint, members []models.Membership) Decision {
	if !IsMember(actorID, members) {
		return deny(ReasonNotMember)
	}
	return allow()
}

// CanRemoveURL allows the creator, or the member who contributed the URL,
// to remove or edit it.
func CanRemoveURL(actorID uint, utub *models.UTub, members []models.Membership, addedByID uint) Decision {
	if !IsMember(actorID, members) {
		return deny(ReasonNotMember)
	}
	if IsCreator(actorID, utub) || actorID == addedByID {
		return allow()
	}
	return deny(ReasonNotCreator)
}
