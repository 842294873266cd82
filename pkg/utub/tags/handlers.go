// Package tags exposes tag attachments on UTub URLs over HTTP.
package tags

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/utubapp/utub-server/pkg/utub/auth"
	"github.com/utubapp/utub-server/pkg/utub/engine"
	"github.com/utubapp/utub-server/pkg/utub/httputil"
	"github.com/utubapp/utub-server/pkg/utub/models"
	"gorm.io/gorm"
)

// Handler handles tag requests
type Handler struct {
	engine *engine.Engine
}

// NewHandler creates a new tag handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{engine: engine.New(db)}
}

// TagRequest represents the add-tag and modify-tag request body
type TagRequest struct {
	Tag string `json:"tag" binding:"required"`
}

func linkResponse(link *models.UTubURLTag) gin.H {
	return gin.H{
		"utub_id":    link.UTubID,
		"url_id":     link.URLID,
		"tag_id":     link.TagID,
		"tag_string": link.Tag.TagString,
	}
}

// Add attaches a tag to a URL within a UTub
func (h *Handler) Add(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	utubID, ok := httputil.ParamUint(c, "id")
	if !ok {
		return
	}
	urlID, ok := httputil.ParamUint(c, "urlId")
	if !ok {
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := h.engine.AddTag(userID, utubID, urlID, req.Tag)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, linkResponse(link))
}

// Modify changes which tag an attachment points at
func (h *Handler) Modify(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	utubID, ok := httputil.ParamUint(c, "id")
	if !ok {
		return
	}
	urlID, ok := httputil.ParamUint(c, "urlId")
	if !ok {
		return
	}
	tagID, ok := httputil.ParamUint(c, "tagId")
	if !ok {
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, outcome, err := h.engine.ModifyTag(userID, utubID, urlID, tagID, req.Tag)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	resp := linkResponse(link)
	resp["changed"] = outcome == engine.OutcomeUpdated
	c.JSON(http.StatusOK, resp)
}

// Remove detaches a tag from a URL within a UTub
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
	tagID, ok := httputil.ParamUint(c, "tagId")
	if !ok {
		return
	}

	if err := h.engine.RemoveTag(userID, utubID, urlID, tagID); err != nil {
		httputil.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "tag removed"})
}

// RegisterRoutes registers tag routes on the UTub group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/urls/:urlId/tags", h.Add)
	rg.PUT("/:id/urls/:urlId/tags/:tagId", h.Modify)
	rg.DELETE("/:id/urls/:urlId/tags/:tagId", h.Remove)
}
