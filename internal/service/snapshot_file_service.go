package service

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/models"
	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
	"github.com/noah-isme/bilishelf-api/pkg/storage"
)

type snapshotExporter interface {
	Export(ctx context.Context, query dto.ExportQuery) (*models.Snapshot, error)
}

type fileStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// SnapshotFileConfig tunes download URLs and retention.
type SnapshotFileConfig struct {
	APIPrefix string
	// Retention defaults to the signer TTL; files are useless once their links expire.
	Retention time.Duration
	NewID     func() string
	Logger    *zap.Logger
}

// SnapshotFileService renders snapshots to disk and hands out signed download links.
type SnapshotFileService struct {
	exporter snapshotExporter
	storage  fileStorage
	signer   *storage.SignedURLSigner
	cfg      SnapshotFileConfig
	logger   *zap.Logger
}

// SnapshotDownload is an opened snapshot file; callers close File.
type SnapshotDownload struct {
	File     *os.File
	Filename string
	MimeType string
}

// NewSnapshotFileService constructs the service.
func NewSnapshotFileService(exporter snapshotExporter, files fileStorage, signer *storage.SignedURLSigner, cfg SnapshotFileConfig) *SnapshotFileService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.Retention <= 0 {
		cfg.Retention = signer.TTL()
	}
	cfg.APIPrefix = strings.TrimRight(cfg.APIPrefix, "/")
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &SnapshotFileService{exporter: exporter, storage: files, signer: signer, cfg: cfg, logger: cfg.Logger}
}

// Create renders a snapshot, stores it under a fresh id and signs a download URL for it.
func (s *SnapshotFileService) Create(ctx context.Context, query dto.ExportQuery) (*models.SnapshotFile, error) {
	snapshot, err := s.exporter.Export(ctx, query)
	if err != nil {
		return nil, err
	}
	id := s.cfg.NewID()
	relPath, err := s.storage.Save(id+"/"+snapshot.Filename, snapshot.Content)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to store snapshot file")
	}
	token, expiresAt, err := s.signer.Generate(id, relPath)
	if err != nil {
		_ = s.storage.Delete(relPath)
		return nil, appErrors.Internal(err, "failed to sign snapshot download")
	}
	s.logger.Info("snapshot file stored",
		zap.String("file_id", id),
		zap.String("format", string(snapshot.Format)),
		zap.Int("bytes", len(snapshot.Content)))

	return &models.SnapshotFile{
		ID:        id,
		Format:    snapshot.Format,
		Filename:  snapshot.Filename,
		MimeType:  snapshot.MimeType,
		URL:       s.cfg.APIPrefix + "/exports/download?token=" + url.QueryEscape(token),
		ExpiresAt: expiresAt.UnixMilli(),
		Summary:   snapshot.Summary,
	}, nil
}

// Open validates a download token and opens the file it points at.
func (s *SnapshotFileService) Open(ctx context.Context, token string) (*SnapshotDownload, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid download link")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "snapshot file not found")
	}
	filename := path.Base(relPath)
	format := models.SnapshotFormat(strings.TrimPrefix(path.Ext(filename), "."))
	mime, ok := snapshotMimeTypes[format]
	if !ok {
		mime = "application/octet-stream"
	}
	return &SnapshotDownload{File: file, Filename: filename, MimeType: mime}, nil
}

// Cleanup removes files older than the retention window.
func (s *SnapshotFileService) Cleanup() ([]string, error) {
	deleted, err := s.storage.CleanupOlderThan(s.cfg.Retention)
	if err != nil {
		return nil, err
	}
	if len(deleted) > 0 {
		s.logger.Info("expired snapshot files removed", zap.Int("count", len(deleted)))
	}
	return deleted, nil
}

// StartCleanup runs Cleanup every interval until ctx is done.
func (s *SnapshotFileService) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Cleanup(); err != nil {
					s.logger.Warn("snapshot cleanup failed", zap.Error(err))
				}
			}
		}
	}()
}
