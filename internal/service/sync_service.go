package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/models"
	"github.com/noah-isme/bilishelf-api/internal/remote"
	"github.com/noah-isme/bilishelf-api/internal/repository"
	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
)

// riskBreakerThreshold is the number of consecutive risk-controlled folders that stops a run.
const riskBreakerThreshold = 3

type remoteCatalog interface {
	ListFolders(ctx context.Context, credential string) ([]models.RemoteFolder, error)
	FetchFolderMedia(ctx context.Context, credential string, remoteID int64, startPage, maxPages, maxVideos int) (*remote.FolderFetch, error)
	ArchiveTags(ctx context.Context, credential, bvid string) ([]string, error)
}

type syncObserver interface {
	ObserveSyncRun(outcome string)
	ObserveSyncFolder(outcome string)
	ObserveRiskBlock()
}

// SyncService drives remote folders into the local library.
type SyncService struct {
	store             repository.Store
	remote            remoteCatalog
	resolver          *Resolver
	graph             *GraphMaintainer
	validator         *validator.Validate
	metrics           syncObserver
	logger            *zap.Logger
	now               func() int64
	defaultCredential string
	cache             *CacheService
	catalogTTL        time.Duration
}

// SyncServiceConfig carries optional collaborators.
type SyncServiceConfig struct {
	DefaultCredential string
	Validator         *validator.Validate
	Metrics           syncObserver
	Logger            *zap.Logger
	Now               func() int64
	// Cache memoizes the remote catalog listing per credential for CatalogTTL.
	Cache      *CacheService
	CatalogTTL time.Duration
}

// NewSyncService constructs the orchestrator.
func NewSyncService(store repository.Store, catalog remoteCatalog, cfg SyncServiceConfig) *SyncService {
	if cfg.Validator == nil {
		cfg.Validator = validator.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = nowMillis
	}
	return &SyncService{
		store:             store,
		remote:            catalog,
		resolver:          NewResolver(cfg.Now),
		graph:             NewGraphMaintainer(cfg.Now),
		validator:         cfg.Validator,
		metrics:           cfg.Metrics,
		logger:            cfg.Logger,
		now:               cfg.Now,
		defaultCredential: strings.TrimSpace(cfg.DefaultCredential),
		cache:             cfg.Cache,
		catalogTTL:        cfg.CatalogTTL,
	}
}

func (s *SyncService) credential(raw string) string {
	if c := strings.TrimSpace(raw); c != "" {
		return c
	}
	return s.defaultCredential
}

// ListRemoteFolders returns the remote catalog for the credential and whether
// it was served from the catalog cache.
func (s *SyncService) ListRemoteFolders(ctx context.Context, req dto.RemoteFolderListRequest) ([]models.RemoteFolder, bool, error) {
	credential := s.credential(req.Cookie)
	key := CatalogCacheKey(credential)
	if req.Refresh {
		_ = s.cache.InvalidateCatalog(ctx)
	} else {
		var cached []models.RemoteFolder
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return cached, true, nil
		}
	}

	folders, err := s.remote.ListFolders(ctx, credential)
	if err != nil {
		return nil, false, appErrors.FromError(err)
	}
	_ = s.cache.Set(ctx, key, folders, s.catalogTTL)
	return folders, false, nil
}

// Run validates a request and performs one bounded synchronization run.
func (s *SyncService) Run(ctx context.Context, req dto.SyncRequest) (*models.SyncResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid sync request")
	}
	return s.Sync(ctx, req.Params())
}

type runState struct {
	summary models.SyncSummary
	errors  []models.SyncError
	tags    *archiveTagCache
}

func (r *runState) fail(folder, message string) {
	r.errors = append(r.errors, models.SyncError{Folder: folder, Message: message})
	r.summary.ErrorCount++
}

// Sync fetches the remote catalog once and processes the [offset, offset+maxFolders)
// slice of it. A folder failure is recorded and the run moves on, unless three
// folders in a row are risk-controlled; then the run stops and the cursor points
// back at the first folder of that streak.
func (s *SyncService) Sync(ctx context.Context, params models.SyncParams) (*models.SyncResult, error) {
	p := params.WithDefaults()
	credential := s.credential(p.Credential)

	remoteFolders, err := s.remote.ListFolders(ctx, credential)
	if err != nil {
		s.observeRun("failed")
		return nil, appErrors.FromError(err)
	}

	candidates := selectFolders(remoteFolders, p.SelectedRemoteFolderIDs)
	start := p.Offset
	if start > len(candidates) {
		start = len(candidates)
	}
	end := start + p.MaxFolders
	if end > len(candidates) {
		end = len(candidates)
	}
	slice := candidates[start:end]
	singleFolderRun := len(p.SelectedRemoteFolderIDs) == 1 && len(slice) == 1

	state := &runState{
		summary: models.SyncSummary{FoldersDetected: len(candidates)},
		tags:    newArchiveTagCache(),
	}
	result := &models.SyncResult{}

	resume := end
	streak, streakStart := 0, -1
	for i, folder := range slice {
		startPage := 1
		if singleFolderRun {
			startPage = p.StartPage
		}

		fetch, err := s.syncFolder(ctx, credential, folder, startPage, p, state)
		if err != nil {
			state.fail(folder.Title, err.Error())
			s.observeFolder("failed")
			s.logger.Warn("sync folder failed",
				zap.Int64("remote_id", folder.RemoteID),
				zap.String("folder", folder.Title),
				zap.Error(err),
			)
			if !appErrors.HasCode(err, appErrors.ErrRiskControlled.Code) {
				streak, streakStart = 0, -1
				continue
			}
			if streak == 0 {
				streakStart = start + i
			}
			streak++
			if streak >= riskBreakerThreshold {
				result.RiskBlocked = true
				resume = streakStart
				state.fail(models.SyncRunErrorFolder, "too many consecutive risk-control responses; sync stopped early, retry later with a smaller scope")
				s.logger.Warn("sync breaker tripped", zap.Int("resume_offset", resume))
				if s.metrics != nil {
					s.metrics.ObserveRiskBlock()
				}
				break
			}
			continue
		}

		streak, streakStart = 0, -1
		state.summary.FoldersSynced++
		s.observeFolder("synced")
		if singleFolderRun {
			result.HasMorePage = fetch.HasMorePage
			if fetch.HasMorePage {
				result.NextPage = fetch.NextPage
			}
		}
	}

	result.Summary = state.summary
	if result.RiskBlocked || resume < len(candidates) {
		result.HasMore = true
		result.NextOffset = &resume
	}
	if len(state.errors) > models.MaxReturnedSyncErrors {
		result.ErrorsOmitted = len(state.errors) - models.MaxReturnedSyncErrors
		state.errors = state.errors[:models.MaxReturnedSyncErrors]
	}
	result.Errors = state.errors
	if result.Errors == nil {
		result.Errors = []models.SyncError{}
	}
	result.SyncedAt = s.now()

	switch {
	case result.RiskBlocked:
		s.observeRun("risk_blocked")
	case state.summary.ErrorCount > 0:
		s.observeRun("partial")
	default:
		s.observeRun("succeeded")
	}
	s.logger.Info("sync run finished",
		zap.Int("folders_detected", state.summary.FoldersDetected),
		zap.Int("folders_synced", state.summary.FoldersSynced),
		zap.Int("videos_upserted", state.summary.VideosUpserted),
		zap.Int("errors", state.summary.ErrorCount),
		zap.Bool("risk_blocked", result.RiskBlocked),
	)
	return result, nil
}

// syncFolder mirrors one remote folder. Each remote item is stored in its own
// transaction so local edits are never starved behind network calls.
func (s *SyncService) syncFolder(ctx context.Context, credential string, folder models.RemoteFolder, startPage int, p models.SyncParams, state *runState) (*remote.FolderFetch, error) {
	var local *models.Folder
	err := s.store.Transaction(ctx, func(ctx context.Context, w repository.Writer) error {
		var err error
		local, _, err = s.resolver.ResolveFolderForSync(ctx, w, folder.RemoteID, folder.Title)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("resolve local folder: %w", err)
	}

	fetch, err := s.remote.FetchFolderMedia(ctx, credential, folder.RemoteID, startPage, p.MaxPagesPerFolder, p.MaxVideosPerFolder)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, media := range fetch.Items {
		candidate, ok := media.Candidate()
		if !ok {
			continue
		}
		state.summary.VideosProcessed++

		tagNames := media.TagNames()
		if p.IncludeTagEnrichment && len(tagNames) == 0 {
			tagNames = state.tags.lookup(ctx, candidate.BVID, func(ctx context.Context, bvid string) ([]string, error) {
				return s.remote.ArchiveTags(ctx, credential, bvid)
			}, s.logger)
		}
		addedAt := media.FavoritedAt(now)

		var linkAdded bool
		var bound int
		err := s.store.Transaction(ctx, func(ctx context.Context, w repository.Writer) error {
			linkAdded, bound = false, 0
			video, _, err := s.resolver.ResolveVideo(ctx, w, candidate)
			if err != nil {
				return err
			}
			if linkAdded, err = s.graph.AddMembership(ctx, w, local.ID, video.ID, addedAt); err != nil {
				return err
			}
			for _, name := range tagNames {
				tag, _, err := s.resolver.ResolveTag(ctx, w, name, models.TagTypeSystem)
				if err != nil {
					return err
				}
				if tag == nil {
					continue
				}
				ok, err := s.graph.BindTag(ctx, w, video.ID, tag.ID)
				if err != nil {
					return err
				}
				if ok {
					bound++
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("store video %s: %w", candidate.BVID, err)
		}
		state.summary.VideosUpserted++
		if linkAdded {
			state.summary.FolderLinksAdded++
		}
		state.summary.TagsBound += bound
	}
	return fetch, nil
}

func selectFolders(folders []models.RemoteFolder, selected []int64) []models.RemoteFolder {
	if len(selected) == 0 {
		return folders
	}
	wanted := make(map[int64]struct{}, len(selected))
	for _, id := range selected {
		if id > 0 {
			wanted[id] = struct{}{}
		}
	}
	out := make([]models.RemoteFolder, 0, len(wanted))
	for _, folder := range folders {
		if _, ok := wanted[folder.RemoteID]; ok {
			out = append(out, folder)
		}
	}
	return out
}

func (s *SyncService) observeRun(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveSyncRun(outcome)
	}
}

func (s *SyncService) observeFolder(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveSyncFolder(outcome)
	}
}

// archiveTagCache memoizes archive-tag lookups for a single run. A failed
// lookup is remembered as empty.
type archiveTagCache struct {
	entries map[string][]string
}

func newArchiveTagCache() *archiveTagCache {
	return &archiveTagCache{entries: make(map[string][]string)}
}

func (c *archiveTagCache) lookup(ctx context.Context, bvid string, fetch func(ctx context.Context, bvid string) ([]string, error), logger *zap.Logger) []string {
	if names, ok := c.entries[bvid]; ok {
		return names
	}
	names, err := fetch(ctx, bvid)
	if err != nil {
		logger.Debug("archive tag lookup failed", zap.String("bvid", bvid), zap.Error(err))
		names = nil
	}
	c.entries[bvid] = names
	return names
}
