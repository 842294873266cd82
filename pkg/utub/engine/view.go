package engine

import (
	"errors"
	"sort"
	"time"

	"github.com/utubapp/utub-server/pkg/utub/models"
	"github.com/utubapp/utub-server/pkg/utub/policy"
	"gorm.io/gorm"
)

// MemberView is a member entry in a UTub view.
type MemberView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// URLView is a URL entry in a UTub view. CanDelete reflects whether the
// requesting user may remove this URL (creator or contributor).
type URLView struct {
	URLID     uint   `json:"url_id"`
	URLString string `json:"url_string"`
	Notes     string `json:"notes"`
	AddedByID uint   `json:"added_by_id"`
	CanDelete bool   `json:"can_delete"`
	TagIDs    []uint `json:"tag_ids"`
}

// TagView is an entry in the UTub's de-duplicated tag catalog.
type TagView struct {
	ID        uint   `json:"id"`
	TagString string `json:"tag_string"`
}

// UTubView is the slice of a UTub a member is allowed to see.
type UTubView struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CreatorID   uint         `json:"creator_id"`
	IsCreator   bool         `json:"is_creator"`
	CreatedAt   time.Time    `json:"created_at"`
	LastUpdated time.Time    `json:"last_updated"`
	Members     []MemberView `json:"members"`
	URLs        []URLView    `json:"urls"`
	Tags        []TagView    `json:"tags"`
}

// UTubView builds the requesting user's view of a UTub: metadata, member
// list, URL entries with their tag ids, and the catalog of tags used
// anywhere in the UTub. Non-members get a not-found error rather than an
// authorization error, so probing cannot confirm that a UTub exists.
func (e *Engine) UTubView(actorID, utubID uint) (*UTubView, error) {
	var utub models.UTub
	if err := e.db.First(&utub, utubID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "utub"}
		}
		return nil, err
	}

	var members []models.Membership
	if err := e.db.Preload("User").Where("utub_id = ?", utubID).
		Order("id").Find(&members).Error; err != nil {
		return nil, err
	}

	if d := policy.CanView(actorID, members); !d.Allowed {
		return nil, &NotFoundError{Resource: "utub"}
	}

	view := &UTubView{
		ID:          utub.ID,
		Name:        utub.Name,
		Description: utub.Description,
		CreatorID:   utub.CreatorID,
		IsCreator:   policy.IsCreator(actorID, &utub),
		CreatedAt:   utub.CreatedAt,
		LastUpdated: utub.UpdatedAt,
		Members:     make([]MemberView, len(members)),
		URLs:        []URLView{},
		Tags:        []TagView{},
	}

	for i, m := range members {
		view.Members[i] = MemberView{
			ID:       m.UserID,
			Username: m.User.Username,
			Role:     string(m.Role),
		}
	}

	var entries []models.UTubURL
	if err := e.db.Preload("URL").Where("utub_id = ?", utubID).
		Order("id").Find(&entries).Error; err != nil {
		return nil, err
	}

	var tagRows []models.UTubURLTag
	if err := e.db.Preload("Tag").Where("utub_id = ?", utubID).
		Order("id").Find(&tagRows).Error; err != nil {
		return nil, err
	}

	tagsByURL := make(map[uint][]uint)
	catalog := make(map[uint]string)
	for _, row := range tagRows {
		tagsByURL[row.URLID] = append(tagsByURL[row.URLID], row.TagID)
		catalog[row.TagID] = row.Tag.TagString
	}

	for _, entry := range entries {
		tagIDs := tagsByURL[entry.URLID]
		if tagIDs == nil {
			tagIDs = []uint{}
		}
		view.URLs = append(view.URLs, URLView{
			URLID:     entry.URLID,
			URLString: entry.URL.URLString,
			Notes:     entry.Notes,
			AddedByID: entry.AddedByID,
			CanDelete: policy.IsCreator(actorID, &utub) || actorID == entry.AddedByID,
			TagIDs:    tagIDs,
		})
	}

	for id, tagString := range catalog {
		view.Tags = append(view.Tags, TagView{ID: id, TagString: tagString})
	}
	sort.Slice(view.Tags, func(i, j int) bool {
		return view.Tags[i].TagString < view.Tags[j].TagString
	})

	return view, nil
}

// UTubSummary is one row of a user's UTub listing.
type UTubSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsCreator   bool   `json:"is_creator"`
	MemberCount int    `json:"member_count"`
}

// UTubsForUser lists the UTubs the user belongs to.
func (e *Engine) UTubsForUser(userID uint) ([]UTubSummary, error) {
	var memberships []models.Membership
	if err := e.db.Preload("UTub").Where("user_id = ?", userID).
		Order("utub_id").Find(&memberships).Error; err != nil {
		return nil, err
	}

	summaries := make([]UTubSummary, len(memberships))
	for i, m := range memberships {
		var memberCount int64
		if err := e.db.Model(&models.Membership{}).
			Where("utub_id = ?", m.UTubID).Count(&memberCount).Error; err != nil {
			return nil, err
		}
		summaries[i] = UTubSummary{
			ID:          m.UTub.ID,
			Name:        m.UTub.Name,
			Description: m.UTub.Description,
			IsCreator:   m.Role == models.RoleCreator,
			MemberCount: int(memberCount),
		}
	}
	return summaries, nil
}
