package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/models"
	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
)

type syncServiceMock struct {
	folders    []models.RemoteFolder
	cached     bool
	listErr    error
	runResp    *models.SyncResult
	runErr     error
	lastList   dto.RemoteFolderListRequest
	lastRun    dto.SyncRequest
	runCalled  bool
	listCalled bool
}

func (m *syncServiceMock) ListRemoteFolders(ctx context.Context, req dto.RemoteFolderListRequest) ([]models.RemoteFolder, bool, error) {
	m.listCalled = true
	m.lastList = req
	return m.folders, m.cached, m.listErr
}

func (m *syncServiceMock) Run(ctx context.Context, req dto.SyncRequest) (*models.SyncResult, error) {
	m.runCalled = true
	m.lastRun = req
	return m.runResp, m.runErr
}

type syncJobServiceMock struct {
	job    *models.SyncJob
	err    error
	lastID string
}

func (m *syncJobServiceMock) Enqueue(ctx context.Context, req dto.SyncRequest) (*models.SyncJob, error) {
	return m.job, m.err
}

func (m *syncJobServiceMock) Get(ctx context.Context, id string) (*models.SyncJob, error) {
	m.lastID = id
	return m.job, m.err
}

func TestSyncHandlerListFoldersReportsCacheHit(t *testing.T) {
	svc := &syncServiceMock{
		folders: []models.RemoteFolder{{RemoteID: 1, Title: "Music", MediaCount: 3}},
		cached:  true,
	}
	h := NewSyncHandler(svc, nil)

	c, w := newTestContext(t, http.MethodPost, "/sync/bilibili/folders", `{"refresh":true}`)
	h.ListFolders(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.lastList.Refresh)

	var body struct {
		Data dto.SyncFolderListResponse `json:"data"`
		Meta map[string]interface{}     `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.Total)
	assert.Equal(t, true, body.Meta["cache_hit"])
}

func TestSyncHandlerListFoldersEmptyBody(t *testing.T) {
	svc := &syncServiceMock{}
	h := NewSyncHandler(svc, nil)

	c, w := newTestContext(t, http.MethodPost, "/sync/bilibili/folders", "")
	h.ListFolders(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.listCalled)
}

func TestSyncHandlerListFoldersLoginRequired(t *testing.T) {
	h := NewSyncHandler(&syncServiceMock{listErr: appErrors.Clone(appErrors.ErrLoginRequired, "")}, nil)

	c, w := newTestContext(t, http.MethodPost, "/sync/bilibili/folders", "")
	h.ListFolders(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "LOGIN_REQUIRED")
}

func TestSyncHandlerRun(t *testing.T) {
	next := 10
	svc := &syncServiceMock{runResp: &models.SyncResult{HasMore: true, NextOffset: &next}}
	h := NewSyncHandler(svc, nil)

	c, w := newTestContext(t, http.MethodPost, "/sync/bilibili", `{"offset":5,"maxFolders":5}`)
	h.Run(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, svc.lastRun.Offset)
	assert.Contains(t, w.Body.String(), `"nextOffset":10`)
}

func TestSyncHandlerRunInvalidBody(t *testing.T) {
	svc := &syncServiceMock{}
	h := NewSyncHandler(svc, nil)

	c, w := newTestContext(t, http.MethodPost, "/sync/bilibili", `{"offset":`)
	h.Run(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.runCalled)
}

func TestSyncHandlerRunRiskControlled(t *testing.T) {
	h := NewSyncHandler(&syncServiceMock{runErr: appErrors.Clone(appErrors.ErrRiskControlled, "")}, nil)

	c, w := newTestContext(t, http.MethodPost, "/sync/bilibili", "")
	h.Run(c)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestSyncHandlerJobs(t *testing.T) {
	jobs := &syncJobServiceMock{job: &models.SyncJob{ID: "job-1", Status: models.SyncJobQueued}}
	h := NewSyncHandler(&syncServiceMock{}, jobs)

	c, w := newTestContext(t, http.MethodPost, "/sync/jobs", "")
	h.EnqueueJob(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "job-1")

	c, w = newTestContext(t, http.MethodGet, "/sync/jobs/job-1", "", gin.Param{Key: "id", Value: "job-1"})
	h.GetJob(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "job-1", jobs.lastID)

	jobs.err = appErrors.Clone(appErrors.ErrNotFound, "sync job not found")
	c, w = newTestContext(t, http.MethodGet, "/sync/jobs/nope", "", gin.Param{Key: "id", Value: "nope"})
	h.GetJob(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSyncHandlerJobsDisabled(t *testing.T) {
	h := NewSyncHandler(&syncServiceMock{}, nil)

	c, _ := newTestContext(t, http.MethodPost, "/sync/jobs", "")
	h.EnqueueJob(c)
	assert.Equal(t, http.StatusServiceUnavailable, c.Writer.Status())
}
