package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/models"
	"github.com/noah-isme/bilishelf-api/pkg/response"
)

type videoService interface {
	Get(ctx context.Context, id int64) (*models.VideoDetail, error)
	AddToFolder(ctx context.Context, videoID, folderID int64) (*models.VideoDetail, error)
	RemoveFromFolder(ctx context.Context, videoID, folderID int64) (*models.VideoDetail, error)
	SetTags(ctx context.Context, videoID int64, req dto.SetVideoTagsRequest) (*models.VideoDetail, error)
	Trash(ctx context.Context, query dto.ListQuery) ([]models.VideoDetail, *models.Pagination, error)
	Restore(ctx context.Context, id int64) (*models.VideoDetail, error)
	Purge(ctx context.Context, id int64) error
}

// VideoHandler exposes single-video operations.
type VideoHandler struct {
	service videoService
}

// NewVideoHandler builds a video handler.
func NewVideoHandler(service videoService) *VideoHandler {
	return &VideoHandler{service: service}
}

func videoAndFolder(c *gin.Context) (int64, int64, error) {
	videoID, err := pathID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	folderID, err := pathID(c, "folderId")
	if err != nil {
		return 0, 0, err
	}
	return videoID, folderID, nil
}

// Get godoc
// @Summary Get a video with its folders and tags
// @Tags Videos
// @Produce json
// @Param id path int true "Video ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /videos/{id} [get]
func (h *VideoHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	video, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, video, nil)
}

// AddToFolder godoc
// @Summary Add a video to a folder
// @Tags Videos
// @Produce json
// @Param id path int true "Video ID"
// @Param folderId path int true "Folder ID"
// @Success 200 {object} response.Envelope
// @Router /videos/{id}/folders/{folderId} [post]
func (h *VideoHandler) AddToFolder(c *gin.Context) {
	videoID, folderID, err := videoAndFolder(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	video, err := h.service.AddToFolder(c.Request.Context(), videoID, folderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, video, nil)
}

// RemoveFromFolder godoc
// @Summary Remove a video from a folder
// @Tags Videos
// @Produce json
// @Param id path int true "Video ID"
// @Param folderId path int true "Folder ID"
// @Success 200 {object} response.Envelope
// @Router /videos/{id}/folders/{folderId} [delete]
func (h *VideoHandler) RemoveFromFolder(c *gin.Context) {
	videoID, folderID, err := videoAndFolder(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	video, err := h.service.RemoveFromFolder(c.Request.Context(), videoID, folderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, video, nil)
}

// SetTags godoc
// @Summary Replace a video's tags
// @Tags Videos
// @Accept json
// @Produce json
// @Param id path int true "Video ID"
// @Param payload body dto.SetVideoTagsRequest true "Tag sets"
// @Success 200 {object} response.Envelope
// @Router /videos/{id}/tags [put]
func (h *VideoHandler) SetTags(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.SetVideoTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err, "invalid tags payload"))
		return
	}
	video, err := h.service.SetTags(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, video, nil)
}

// Trash godoc
// @Summary List trashed videos
// @Tags Trash
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /trash/videos [get]
func (h *VideoHandler) Trash(c *gin.Context) {
	var query dto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidBody(err, "invalid pagination"))
		return
	}
	videos, pagination, err := h.service.Trash(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, videos, pagination)
}

// Restore godoc
// @Summary Restore a trashed video
// @Tags Trash
// @Produce json
// @Param id path int true "Video ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /trash/videos/{id}/restore [post]
func (h *VideoHandler) Restore(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	video, err := h.service.Restore(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, video, nil)
}

// Purge godoc
// @Summary Permanently delete a trashed video
// @Tags Trash
// @Param id path int true "Video ID"
// @Success 204
// @Router /trash/videos/{id} [delete]
func (h *VideoHandler) Purge(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Purge(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
