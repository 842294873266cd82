// Package urls exposes URL entries within a UTub over HTTP.
package urls

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/utubapp/utub-server/pkg/utub/auth"
	"github.com/utubapp/utub-server/pkg/utub/engine"
	"github.com/utubapp/utub-server/pkg/utub/httputil"
	"github.com/utubapp/utub-server/pkg/utub/models"
	"gorm.io/gorm"
)

// Handler handles URL requests
type Handler struct {
	engine *engine.Engine
}

// NewHandler creates a new URL handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{engine: engine.New(db)}
}

// AddURLRequest represents the add-URL request body
type AddURLRequest struct {
	URL   string `json:"url" binding:"required"`
	Notes string `json:"notes"`
}

// EditURLRequest represents the edit-URL request body
type EditURLRequest struct {
	URL   string `json:"url" binding:"required"`
	Notes string `json:"notes"`
}

func entryResponse(entry *models.UTubURL) gin.H {
	return gin.H{
		"utub_id":     entry.UTubID,
		"url_id":      entry.URLID,
		"url_string":  entry.URL.URLString,
		"notes":       entry.Notes,
		"added_by_id": entry.AddedByID,
	}
}

// Add adds a URL to a UTub
func (h *Handler) Add(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	utubID, ok := httputil.ParamUint(c, "id")
	if !ok {
		return
	}

	var req AddURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.engine.AddURL(userID, utubID, req.URL, req.Notes)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, entryResponse(entry))
}

// Edit updates a URL entry's address or notes
func (h *Handler) Edit(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	utubID, ok := httputil.ParamUint(c, "id")
	if !ok {
		return
	}
	urlID, ok := httputil.ParamUint(c, "urlId")
	if !ok {
		return
	}

	var req EditURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, outcome, err := h.engine.EditURL(userID, utubID, urlID, req.URL, req.Notes)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	resp := entryResponse(entry)
	resp["changed"] = outcome == engine.OutcomeUpdated
	c.JSON(http.StatusOK, resp)
}

// Remove removes a URL entry and its tags from a UTub
func (h *Handler) Remove(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	utubID, ok := httputil.ParamUint(c, "id")
	if !ok {
		return
	}
	urlID, ok := httputil.ParamUint(c, "urlId")
	if !ok {
		return
	}

	if err := h.engine.RemoveURL(userID, utubID, urlID); err != nil {
		httputil.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "url removed"})
}

// RegisterRoutes registers URL routes on the UTub group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/urls", h.Add)
	rg.PUT("/:id/urls/:urlId", h.Edit)
	rg.DELETE("/:id/urls/:urlId", h.Remove)
}
