package handler

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/models"
	"github.com/noah-isme/bilishelf-api/internal/service"
	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
)

type snapshotServiceMock struct {
	snapshot   *models.Snapshot
	summary    *models.ImportSummary
	err        error
	lastQuery  dto.ExportQuery
	lastImport dto.ImportRequest
}

func (m *snapshotServiceMock) Export(ctx context.Context, query dto.ExportQuery) (*models.Snapshot, error) {
	m.lastQuery = query
	return m.snapshot, m.err
}

func (m *snapshotServiceMock) Import(ctx context.Context, req dto.ImportRequest) (*models.ImportSummary, error) {
	m.lastImport = req
	return m.summary, m.err
}

type snapshotFileServiceMock struct {
	file      *models.SnapshotFile
	download  *service.SnapshotDownload
	err       error
	lastToken string
}

func (m *snapshotFileServiceMock) Create(ctx context.Context, query dto.ExportQuery) (*models.SnapshotFile, error) {
	return m.file, m.err
}

func (m *snapshotFileServiceMock) Open(ctx context.Context, token string) (*service.SnapshotDownload, error) {
	m.lastToken = token
	return m.download, m.err
}

func TestSnapshotHandlerExportAttachment(t *testing.T) {
	svc := &snapshotServiceMock{snapshot: &models.Snapshot{
		Format:   models.SnapshotFormatCSV,
		Filename: "bilishelf-20240101.csv",
		MimeType: "text/csv;charset=utf-8",
		Content:  []byte("bvid,title\n"),
	}}
	h := NewSnapshotHandler(svc, &snapshotFileServiceMock{})

	c, w := newTestContext(t, http.MethodGet, "/export?format=csv", "")
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", svc.lastQuery.Format)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "bilishelf-20240101.csv")
	assert.Equal(t, "bvid,title\n", w.Body.String())
}

func TestSnapshotHandlerImport(t *testing.T) {
	svc := &snapshotServiceMock{summary: &models.ImportSummary{VideosUpserted: 2}}
	h := NewSnapshotHandler(svc, &snapshotFileServiceMock{})

	c, w := newTestContext(t, http.MethodPost, "/import", `{"format":"json","content":"{}"}`)
	h.Import(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "json", svc.lastImport.Format)
	assert.Contains(t, w.Body.String(), `"videosUpserted":2`)
}

func TestSnapshotHandlerImportValidation(t *testing.T) {
	svc := &snapshotServiceMock{err: appErrors.Validation(errors.New("format"), "invalid import payload")}
	h := NewSnapshotHandler(svc, &snapshotFileServiceMock{})

	c, w := newTestContext(t, http.MethodPost, "/import", `{"format":"pdf","content":"x"}`)
	h.Import(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSnapshotHandlerCreateFile(t *testing.T) {
	files := &snapshotFileServiceMock{file: &models.SnapshotFile{ID: "abc", URL: "/api/v1/exports/download?token=t"}}
	h := NewSnapshotHandler(&snapshotServiceMock{}, files)

	c, w := newTestContext(t, http.MethodPost, "/exports", `{"format":"pdf"}`)
	h.CreateFile(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "download?token=t")
}

func TestSnapshotHandlerDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"folders":[]}`), 0o600))
	file, err := os.Open(path)
	require.NoError(t, err)

	files := &snapshotFileServiceMock{download: &service.SnapshotDownload{
		File:     file,
		Filename: "snapshot.json",
		MimeType: "application/json;charset=utf-8",
	}}
	h := NewSnapshotHandler(&snapshotServiceMock{}, files)

	c, w := newTestContext(t, http.MethodGet, "/exports/download?token=signed", "")
	h.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "signed", files.lastToken)
	assert.Equal(t, `{"folders":[]}`, w.Body.String())
}

func TestSnapshotHandlerDownloadErrors(t *testing.T) {
	h := NewSnapshotHandler(&snapshotServiceMock{}, &snapshotFileServiceMock{})
	c, w := newTestContext(t, http.MethodGet, "/exports/download", "")
	h.Download(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	expired := &snapshotFileServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "export expired")}
	h = NewSnapshotHandler(&snapshotServiceMock{}, expired)
	c, w = newTestContext(t, http.MethodGet, "/exports/download?token=old", "")
	h.Download(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
