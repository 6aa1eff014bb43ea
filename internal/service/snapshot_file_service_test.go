package service

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
	"github.com/noah-isme/bilishelf-api/pkg/export"
	"github.com/noah-isme/bilishelf-api/pkg/storage"
)

func newSnapshotFileService(t *testing.T, signer *storage.SignedURLSigner) *SnapshotFileService {
	t.Helper()
	store := newMemoryStore(t)
	seedLibrary(t, store)
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	clock := &testClock{now: 1_700_000_000_000}
	snapshots := NewSnapshotService(store, SnapshotServiceConfig{Now: clock.Now})
	return NewSnapshotFileService(snapshots, files, signer, SnapshotFileConfig{
		APIPrefix: "/api/v1/",
		NewID:     func() string { return "file-1" },
	})
}

func tokenFromURL(t *testing.T, raw string) string {
	t.Helper()
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/exports/download", parsed.Path)
	return parsed.Query().Get("token")
}

func TestSnapshotFileCreateAndDownload(t *testing.T) {
	svc := newSnapshotFileService(t, storage.NewSignedURLSigner("secret", time.Hour))
	ctx := context.Background()

	file, err := svc.Create(ctx, dto.ExportQuery{Format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, "file-1", file.ID)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))
	assert.Equal(t, 3, file.Summary.Folders)

	download, err := svc.Open(ctx, tokenFromURL(t, file.URL))
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, file.Filename, download.Filename)
	assert.Equal(t, "text/csv;charset=utf-8", download.MimeType)
	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), export.ByteOrderMark))
}

func TestSnapshotFileRejectsBadTokens(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	signer := storage.NewSignedURLSigner("secret", time.Minute).WithClock(func() time.Time { return now })
	svc := newSnapshotFileService(t, signer)
	ctx := context.Background()

	_, err := svc.Open(ctx, "garbage")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	file, err := svc.Create(ctx, dto.ExportQuery{})
	require.NoError(t, err)
	now = now.Add(time.Hour)
	_, err = svc.Open(ctx, tokenFromURL(t, file.URL))
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSnapshotFileCreateValidatesFormat(t *testing.T) {
	svc := newSnapshotFileService(t, storage.NewSignedURLSigner("secret", time.Hour))
	_, err := svc.Create(context.Background(), dto.ExportQuery{Format: "xml"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
