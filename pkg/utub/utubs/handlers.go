// Package utubs exposes UTub lifecycle and membership over HTTP.
package utubs

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/utubapp/utub-server/pkg/utub/auth"
	"github.com/utubapp/utub-server/pkg/utub/engine"
	"github.com/utubapp/utub-server/pkg/utub/httputil"
	"gorm.io/gorm"
)

// Handler handles UTub requests
type Handler struct {
	engine *engine.Engine
}

// NewHandler creates a new UTub handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{engine: engine.New(db)}
}

// CreateUTubRequest represents the UTub creation request body
type CreateUTubRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateUTubRequest represents the UTub update request body. Omitted
// fields are left unchanged.
type UpdateUTubRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// AddMemberRequest represents the add-member request body
type AddMemberRequest struct {
	Username string `json:"username" binding:"required"`
}

// Create handles UTub creation
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateUTubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	utub, err := h.engine.CreateUTub(userID, req.Name, req.Description)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, utub)
}

// List returns the UTubs the current user belongs to
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	summaries, err := h.engine.UTubsForUser(userID)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"utubs": summaries})
}

// Get returns the current user's view of a UTub
func (h *Handler) Get(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	utubID, ok := httputil.ParamUint(c, "id")
	if !ok {
		return
	}

	view, err := h.engine.UTubView(userID, utubID)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Update renames a UTub or edits its description
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	utubID, ok := httputil.ParamUint(c, "id")
	if !ok {
		return
	}

	var req UpdateUTubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	utub, outcome, err := h.engine.UpdateUTub(userID, utubID, req.Name, req.Description)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"utub":    utub,
		"changed": outcome == engine.OutcomeUpdated,
	})
}

// Delete deletes a UTub and everything scoped to it
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	utubID, ok := httputil.ParamUint(c, "id")
	if !ok {
		return
	}

	if err := h.engine.DeleteUTub(userID, utubID); err != nil {
		httputil.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "utub deleted"})
}

// AddMember adds a user to a UTub by username
func (h *Handler) AddMember(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	utubID, ok := httputil.ParamUint(c, "id")
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := h.engine.AddMember(userID, utubID, req.Username)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"utub_id":  membership.UTubID,
		"user_id":  membership.UserID,
		"username": membership.User.Username,
		"role":     membership.Role,
	})
}

// RemoveMember removes a user from a UTub. Members may remove themselves;
// the creator may remove anyone but themselves.
func (h *Handler) RemoveMember(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	utubID, ok := httputil.ParamUint(c, "id")
	if !ok {
		return
	}
	targetID, ok := httputil.ParamUint(c, "userId")
	if !ok {
		return
	}

	if err := h.engine.RemoveMember(userID, utubID, targetID); err != nil {
		httputil.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}

// RegisterRoutes registers UTub routes on the given group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/members", h.AddMember)
	rg.DELETE("/:id/members/:userId", h.RemoveMember)
}
