package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/middleware"
	"github.com/noah-isme/bilishelf-api/internal/models"
	"github.com/noah-isme/bilishelf-api/pkg/response"
)

type syncService interface {
	ListRemoteFolders(ctx context.Context, req dto.RemoteFolderListRequest) ([]models.RemoteFolder, bool, error)
	Run(ctx context.Context, req dto.SyncRequest) (*models.SyncResult, error)
}

type syncJobService interface {
	Enqueue(ctx context.Context, req dto.SyncRequest) (*models.SyncJob, error)
	Get(ctx context.Context, id string) (*models.SyncJob, error)
}

// SyncHandler exposes the remote catalog and synchronization endpoints.
type SyncHandler struct {
	sync syncService
	jobs syncJobService
}

// NewSyncHandler builds a sync handler. jobs may be nil when background sync is disabled.
func NewSyncHandler(sync syncService, jobs syncJobService) *SyncHandler {
	return &SyncHandler{sync: sync, jobs: jobs}
}

// bindOptionalJSON binds a JSON body, treating an empty body as the zero value.
func bindOptionalJSON(c *gin.Context, dest interface{}) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ListFolders godoc
// @Summary List remote favorite folders
// @Tags Sync
// @Accept json
// @Produce json
// @Param payload body dto.RemoteFolderListRequest false "Credential override"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /sync/bilibili/folders [post]
func (h *SyncHandler) ListFolders(c *gin.Context) {
	var req dto.RemoteFolderListRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, invalidBody(err, "invalid folder list payload"))
		return
	}
	folders, cached, err := h.sync.ListRemoteFolders(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, dto.SyncFolderListResponse{Items: folders, Total: len(folders)}, nil, middleware.ExtractMeta(c))
}

// Run godoc
// @Summary Run one bounded synchronization
// @Tags Sync
// @Accept json
// @Produce json
// @Param payload body dto.SyncRequest false "Sync bounds"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /sync/bilibili [post]
func (h *SyncHandler) Run(c *gin.Context) {
	var req dto.SyncRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, invalidBody(err, "invalid sync payload"))
		return
	}
	result, err := h.sync.Run(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// EnqueueJob godoc
// @Summary Enqueue a background synchronization
// @Tags Sync
// @Accept json
// @Produce json
// @Param payload body dto.SyncRequest false "Sync bounds"
// @Success 202 {object} response.Envelope
// @Router /sync/jobs [post]
func (h *SyncHandler) EnqueueJob(c *gin.Context) {
	if h.jobs == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	var req dto.SyncRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, invalidBody(err, "invalid sync payload"))
		return
	}
	job, err := h.jobs.Enqueue(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// GetJob godoc
// @Summary Get a background synchronization
// @Tags Sync
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sync/jobs/{id} [get]
func (h *SyncHandler) GetJob(c *gin.Context) {
	if h.jobs == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}
