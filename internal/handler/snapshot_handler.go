package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/models"
	"github.com/noah-isme/bilishelf-api/internal/service"
	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
	"github.com/noah-isme/bilishelf-api/pkg/response"
)

type snapshotService interface {
	Export(ctx context.Context, query dto.ExportQuery) (*models.Snapshot, error)
	Import(ctx context.Context, req dto.ImportRequest) (*models.ImportSummary, error)
}

type snapshotFileService interface {
	Create(ctx context.Context, query dto.ExportQuery) (*models.SnapshotFile, error)
	Open(ctx context.Context, token string) (*service.SnapshotDownload, error)
}

// SnapshotHandler exposes export and import endpoints.
type SnapshotHandler struct {
	snapshots snapshotService
	files     snapshotFileService
}

// NewSnapshotHandler builds a snapshot handler.
func NewSnapshotHandler(snapshots snapshotService, files snapshotFileService) *SnapshotHandler {
	return &SnapshotHandler{snapshots: snapshots, files: files}
}

// Export godoc
// @Summary Export the library
// @Tags Snapshot
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "json, csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /export [get]
func (h *SnapshotHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidBody(err, "invalid export query"))
		return
	}
	snapshot, err := h.snapshots.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, snapshot.Filename, snapshot.MimeType, snapshot.Content)
}

// Import godoc
// @Summary Merge a json or csv snapshot into the library
// @Tags Snapshot
// @Accept json
// @Produce json
// @Param payload body dto.ImportRequest true "Snapshot"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /import [post]
func (h *SnapshotHandler) Import(c *gin.Context) {
	var req dto.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err, "invalid import payload"))
		return
	}
	summary, err := h.snapshots.Import(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// CreateFile godoc
// @Summary Render a snapshot file behind a signed download URL
// @Tags Snapshot
// @Accept json
// @Produce json
// @Param payload body dto.CreateExportFileRequest true "Format"
// @Success 201 {object} response.Envelope
// @Router /exports [post]
func (h *SnapshotHandler) CreateFile(c *gin.Context) {
	var req dto.CreateExportFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err, "invalid export payload"))
		return
	}
	file, err := h.files.Create(c.Request.Context(), dto.ExportQuery{Format: req.Format})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, file)
}

// Download godoc
// @Summary Download a rendered snapshot file
// @Tags Snapshot
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/download [get]
func (h *SnapshotHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}
	download, err := h.files.Open(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	content, err := io.ReadAll(download.File)
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to read snapshot file"))
		return
	}
	response.Attachment(c, download.Filename, download.MimeType, content)
}
