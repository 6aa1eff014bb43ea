package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/models"
	"github.com/noah-isme/bilishelf-api/internal/repository"
	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
)

const defaultBatchChunk = 100

// BatchServiceConfig carries optional collaborators.
type BatchServiceConfig struct {
	// ChunkSize bounds the number of videos handled per transaction.
	ChunkSize int
	Validator *validator.Validate
	Logger    *zap.Logger
	Now       func() int64
	// CopySuffix generates the uniqueness suffix of copied bvids.
	CopySuffix func() string
}

// BatchService applies move, copy and delete across many videos.
type BatchService struct {
	store      repository.Store
	graph      *GraphMaintainer
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() int64
	chunk      int
	copySuffix func() string
}

// NewBatchService constructs the mutator.
func NewBatchService(store repository.Store, cfg BatchServiceConfig) *BatchService {
	if cfg.Validator == nil {
		cfg.Validator = validator.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = nowMillis
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultBatchChunk
	}
	if cfg.CopySuffix == nil {
		cfg.CopySuffix = func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		}
	}
	return &BatchService{
		store:      store,
		graph:      NewGraphMaintainer(cfg.Now),
		validator:  cfg.Validator,
		logger:     cfg.Logger,
		now:        cfg.Now,
		chunk:      cfg.ChunkSize,
		copySuffix: cfg.CopySuffix,
	}
}

// Move relinks videos from the source folder to the target folder.
func (s *BatchService) Move(ctx context.Context, req dto.BatchMoveRequest) (*dto.BatchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid move payload")
	}
	if err := s.requireFolder(ctx, req.SourceFolderID, true); err != nil {
		return nil, err
	}
	if err := s.requireFolder(ctx, req.TargetFolderID, false); err != nil {
		return nil, err
	}

	result := &dto.BatchResult{Requested: len(uniqueIDs(req.VideoIDs))}
	err := s.chunked(ctx, req.VideoIDs, func(ctx context.Context, w repository.Writer, videoID int64) error {
		video, err := w.GetVideo(ctx, videoID)
		if err != nil {
			if repository.IsNotFound(err) {
				result.Skipped++
				return nil
			}
			return err
		}
		if !video.Active() {
			result.Skipped++
			return nil
		}
		if _, err := s.graph.RemoveMembership(ctx, w, req.SourceFolderID, videoID); err != nil {
			return err
		}
		if _, err := s.graph.AddMembership(ctx, w, req.TargetFolderID, videoID, s.now()); err != nil {
			return err
		}
		deleted, err := s.graph.EnforceOrphanRule(ctx, w, videoID)
		if err != nil {
			return err
		}
		result.Affected++
		result.SoftDeleted += len(deleted)
		return nil
	})
	if err != nil {
		return nil, storeError(err, "")
	}
	return result, nil
}

// Copy creates a distinct video per source in the target folder, cloning tag
// bindings. Copies never merge back into their source on sync.
func (s *BatchService) Copy(ctx context.Context, req dto.BatchCopyRequest) (*dto.BatchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid copy payload")
	}
	if err := s.requireFolder(ctx, req.TargetFolderID, false); err != nil {
		return nil, err
	}

	result := &dto.BatchResult{Requested: len(uniqueIDs(req.VideoIDs))}
	err := s.chunked(ctx, req.VideoIDs, func(ctx context.Context, w repository.Writer, videoID int64) error {
		source, err := w.GetVideo(ctx, videoID)
		if err != nil {
			if repository.IsNotFound(err) {
				result.Skipped++
				return nil
			}
			return err
		}
		now := s.now()
		copied := *source
		copied.ID = 0
		copied.BVID = models.DisplayBVID(source.BVID) + models.CopyMarker + s.copySuffix()
		copied.DeletedAt = nil
		copied.CreatedAt = now
		copied.UpdatedAt = now
		if err := w.UpsertVideo(ctx, &copied); err != nil {
			return fmt.Errorf("insert copy of %s: %w", source.BVID, err)
		}

		bindings, err := w.FindVideoTags(ctx, models.VideoTagFilter{VideoIDs: []int64{source.ID}})
		if err != nil {
			return err
		}
		for _, binding := range bindings {
			if _, err := s.graph.BindTag(ctx, w, copied.ID, binding.TagID); err != nil {
				return err
			}
		}
		if _, err := s.graph.AddMembership(ctx, w, req.TargetFolderID, copied.ID, now); err != nil {
			return err
		}
		result.Affected++
		result.CreatedVideoIDs = append(result.CreatedVideoIDs, copied.ID)
		return nil
	})
	if err != nil {
		return nil, storeError(err, "")
	}
	return result, nil
}

// Delete soft-deletes videos globally, or removes them from one folder. In
// folderOnly mode a video whose only active folder is that folder is
// soft-deleted directly and keeps its membership for a later restore.
func (s *BatchService) Delete(ctx context.Context, req dto.BatchDeleteRequest) (*dto.BatchResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid delete payload")
	}
	folderOnly := req.Mode == dto.DeleteModeFolderOnly
	if folderOnly {
		if err := s.requireFolder(ctx, req.FolderID, false); err != nil {
			return nil, err
		}
	}

	result := &dto.BatchResult{Requested: len(uniqueIDs(req.VideoIDs))}
	err := s.chunked(ctx, req.VideoIDs, func(ctx context.Context, w repository.Writer, videoID int64) error {
		video, err := w.GetVideo(ctx, videoID)
		if err != nil {
			if repository.IsNotFound(err) {
				result.Skipped++
				return nil
			}
			return err
		}
		if !video.Active() {
			result.Skipped++
			return nil
		}
		if !folderOnly {
			if err := s.graph.softDeleteVideo(ctx, w, video); err != nil {
				return err
			}
			result.Affected++
			result.SoftDeleted++
			return nil
		}

		folderIDs, err := activeFolderIDsOf(ctx, w, videoID)
		if err != nil {
			return err
		}
		if !containsInt64(folderIDs, req.FolderID) {
			result.Skipped++
			return nil
		}
		result.Affected++
		if len(folderIDs) > 1 {
			_, err := s.graph.RemoveMembership(ctx, w, req.FolderID, videoID)
			return err
		}
		if err := s.graph.softDeleteVideo(ctx, w, video); err != nil {
			return err
		}
		result.SoftDeleted++
		return nil
	})
	if err != nil {
		return nil, storeError(err, "")
	}
	return result, nil
}

// chunked runs fn for each distinct id, one transaction per chunk of ids. A
// failing chunk rolls back as a whole and stops the batch; earlier chunks stay applied.
func (s *BatchService) chunked(ctx context.Context, ids []int64, fn func(ctx context.Context, w repository.Writer, id int64) error) error {
	ids = uniqueIDs(ids)
	for start := 0; start < len(ids); start += s.chunk {
		end := min(start+s.chunk, len(ids))
		chunk := ids[start:end]
		err := s.store.Transaction(ctx, func(ctx context.Context, w repository.Writer) error {
			for _, id := range chunk {
				if err := fn(ctx, w, id); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			s.logger.Warn("batch chunk failed", zap.Int("offset", start), zap.Int("size", len(chunk)), zap.Error(err))
			return err
		}
	}
	return nil
}

func (s *BatchService) requireFolder(ctx context.Context, id int64, allowTrashed bool) error {
	folder, err := s.store.GetFolder(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("folder %d not found", id))
		}
		return storeError(err, "")
	}
	if !allowTrashed && !folder.Active() {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("folder %d is in the trash", id))
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func containsInt64(values []int64, target int64) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
