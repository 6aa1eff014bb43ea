package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/pkg/response"
)

type batchService interface {
	Move(ctx context.Context, req dto.BatchMoveRequest) (*dto.BatchResult, error)
	Copy(ctx context.Context, req dto.BatchCopyRequest) (*dto.BatchResult, error)
	Delete(ctx context.Context, req dto.BatchDeleteRequest) (*dto.BatchResult, error)
}

// BatchHandler exposes multi-video mutations.
type BatchHandler struct {
	service batchService
}

// NewBatchHandler builds a batch handler.
func NewBatchHandler(service batchService) *BatchHandler {
	return &BatchHandler{service: service}
}

// Move godoc
// @Summary Move videos between folders
// @Tags Batch
// @Accept json
// @Produce json
// @Param payload body dto.BatchMoveRequest true "Move payload"
// @Success 200 {object} response.Envelope
// @Router /videos/batch/move [post]
func (h *BatchHandler) Move(c *gin.Context) {
	var req dto.BatchMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err, "invalid move payload"))
		return
	}
	result, err := h.service.Move(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Copy godoc
// @Summary Copy videos into a folder as independent entries
// @Tags Batch
// @Accept json
// @Produce json
// @Param payload body dto.BatchCopyRequest true "Copy payload"
// @Success 200 {object} response.Envelope
// @Router /videos/batch/copy [post]
func (h *BatchHandler) Copy(c *gin.Context) {
	var req dto.BatchCopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err, "invalid copy payload"))
		return
	}
	result, err := h.service.Copy(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Remove videos from a folder or from the library
// @Tags Batch
// @Accept json
// @Produce json
// @Param payload body dto.BatchDeleteRequest true "Delete payload"
// @Success 200 {object} response.Envelope
// @Router /videos/batch/delete [post]
func (h *BatchHandler) Delete(c *gin.Context) {
	var req dto.BatchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err, "invalid delete payload"))
		return
	}
	result, err := h.service.Delete(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
