package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/models"
	"github.com/noah-isme/bilishelf-api/pkg/response"
)

type tagService interface {
	List(ctx context.Context, query dto.ListTagsQuery) ([]models.Tag, error)
	Create(ctx context.Context, req dto.CreateTagRequest) (*models.Tag, error)
	Rename(ctx context.Context, id int64, req dto.RenameTagRequest) (*models.Tag, error)
	Archive(ctx context.Context, id int64) (*models.Tag, error)
}

// TagHandler exposes tag management.
type TagHandler struct {
	service tagService
}

// NewTagHandler builds a tag handler.
func NewTagHandler(service tagService) *TagHandler {
	return &TagHandler{service: service}
}

// List godoc
// @Summary List tags
// @Tags Tags
// @Produce json
// @Param type query string false "system or custom"
// @Param include_archived query bool false "Include archived tags"
// @Success 200 {object} response.Envelope
// @Router /tags [get]
func (h *TagHandler) List(c *gin.Context) {
	var query dto.ListTagsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidBody(err, "invalid tag query"))
		return
	}
	tags, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tags, nil)
}

// Create godoc
// @Summary Create a tag
// @Tags Tags
// @Accept json
// @Produce json
// @Param payload body dto.CreateTagRequest true "Tag"
// @Success 201 {object} response.Envelope
// @Router /tags [post]
func (h *TagHandler) Create(c *gin.Context) {
	var req dto.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err, "invalid tag payload"))
		return
	}
	tag, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tag)
}

// Rename godoc
// @Summary Rename a custom tag
// @Tags Tags
// @Accept json
// @Produce json
// @Param id path int true "Tag ID"
// @Param payload body dto.RenameTagRequest true "New name"
// @Success 200 {object} response.Envelope
// @Router /tags/{id} [patch]
func (h *TagHandler) Rename(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.RenameTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err, "invalid tag payload"))
		return
	}
	tag, err := h.service.Rename(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tag, nil)
}

// Archive godoc
// @Summary Archive a custom tag
// @Tags Tags
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} response.Envelope
// @Router /tags/{id} [delete]
func (h *TagHandler) Archive(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	tag, err := h.service.Archive(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tag, nil)
}
