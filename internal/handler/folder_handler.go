package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/models"
	"github.com/noah-isme/bilishelf-api/pkg/response"
)

type folderService interface {
	List(ctx context.Context) ([]models.FolderWithCount, error)
	ListTrash(ctx context.Context) ([]models.FolderWithCount, error)
	Create(ctx context.Context, req dto.CreateFolderRequest) (*models.Folder, error)
	Update(ctx context.Context, id int64, req dto.UpdateFolderRequest) (*models.Folder, error)
	Reorder(ctx context.Context, req dto.ReorderFoldersRequest) ([]models.Folder, error)
	Delete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64, req dto.RestoreFolderRequest) (*models.Folder, error)
	Purge(ctx context.Context, id int64) error
	Videos(ctx context.Context, folderID int64, query dto.ListQuery) ([]models.FolderVideo, *models.Pagination, error)
}

// FolderHandler exposes local folder management.
type FolderHandler struct {
	service folderService
}

// NewFolderHandler builds a folder handler.
func NewFolderHandler(service folderService) *FolderHandler {
	return &FolderHandler{service: service}
}

// List godoc
// @Summary List active folders
// @Tags Folders
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /folders [get]
func (h *FolderHandler) List(c *gin.Context) {
	folders, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, folders, nil)
}

// Create godoc
// @Summary Create a folder
// @Tags Folders
// @Accept json
// @Produce json
// @Param payload body dto.CreateFolderRequest true "Folder"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /folders [post]
func (h *FolderHandler) Create(c *gin.Context) {
	var req dto.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err, "invalid folder payload"))
		return
	}
	folder, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, folder)
}

// Update godoc
// @Summary Rename or describe a folder
// @Tags Folders
// @Accept json
// @Produce json
// @Param id path int true "Folder ID"
// @Param payload body dto.UpdateFolderRequest true "Changes"
// @Success 200 {object} response.Envelope
// @Router /folders/{id} [patch]
func (h *FolderHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err, "invalid folder payload"))
		return
	}
	folder, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, folder, nil)
}

// Reorder godoc
// @Summary Reorder folders
// @Tags Folders
// @Accept json
// @Produce json
// @Param payload body dto.ReorderFoldersRequest true "Order"
// @Success 200 {object} response.Envelope
// @Router /folders/order [patch]
func (h *FolderHandler) Reorder(c *gin.Context) {
	var req dto.ReorderFoldersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err, "invalid order payload"))
		return
	}
	folders, err := h.service.Reorder(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, folders, nil)
}

// Delete godoc
// @Summary Move a folder to the trash
// @Tags Folders
// @Param id path int true "Folder ID"
// @Success 204
// @Router /folders/{id} [delete]
func (h *FolderHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Videos godoc
// @Summary List a folder's videos, newest first
// @Tags Folders
// @Produce json
// @Param id path int true "Folder ID"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /folders/{id}/videos [get]
func (h *FolderHandler) Videos(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var query dto.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidBody(err, "invalid pagination"))
		return
	}
	videos, pagination, err := h.service.Videos(c.Request.Context(), id, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, videos, pagination)
}

// ListTrash godoc
// @Summary List trashed folders
// @Tags Trash
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /trash/folders [get]
func (h *FolderHandler) ListTrash(c *gin.Context) {
	folders, err := h.service.ListTrash(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, folders, nil)
}

// Restore godoc
// @Summary Restore a trashed folder
// @Tags Trash
// @Accept json
// @Produce json
// @Param id path int true "Folder ID"
// @Param payload body dto.RestoreFolderRequest false "Options"
// @Success 200 {object} response.Envelope
// @Router /trash/folders/{id}/restore [post]
func (h *FolderHandler) Restore(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.RestoreFolderRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, invalidBody(err, "invalid restore payload"))
		return
	}
	folder, err := h.service.Restore(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, folder, nil)
}

// Purge godoc
// @Summary Permanently delete a trashed folder
// @Tags Trash
// @Param id path int true "Folder ID"
// @Success 204
// @Router /trash/folders/{id} [delete]
func (h *FolderHandler) Purge(c *gin.Context) {
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
