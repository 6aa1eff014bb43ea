package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/models"
	"github.com/noah-isme/bilishelf-api/internal/repository"
	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
)

// VideoServiceConfig carries optional collaborators.
type VideoServiceConfig struct {
	Validator *validator.Validate
	Logger    *zap.Logger
	Now       func() int64
}

// VideoService manages single videos, their memberships, tags and the video trash.
type VideoService struct {
	store     repository.Store
	resolver  *Resolver
	graph     *GraphMaintainer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() int64
}

// NewVideoService constructs the service.
func NewVideoService(store repository.Store, cfg VideoServiceConfig) *VideoService {
	if cfg.Validator == nil {
		cfg.Validator = validator.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = nowMillis
	}
	return &VideoService{
		store:     store,
		resolver:  NewResolver(cfg.Now),
		graph:     NewGraphMaintainer(cfg.Now),
		validator: cfg.Validator,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
}

// Get returns a video with its active folders and tags.
func (s *VideoService) Get(ctx context.Context, id int64) (*models.VideoDetail, error) {
	video, err := s.store.GetVideo(ctx, id)
	if err != nil {
		return nil, storeError(err, fmt.Sprintf("video %d not found", id))
	}
	detail, err := videoDetail(ctx, s.store, video)
	if err != nil {
		return nil, storeError(err, "")
	}
	return detail, nil
}

// AddToFolder links a video into an active folder. A trashed video regains
// an active membership and leaves the trash.
func (s *VideoService) AddToFolder(ctx context.Context, videoID, folderID int64) (*models.VideoDetail, error) {
	var video *models.Video
	err := s.store.Transaction(ctx, func(ctx context.Context, w repository.Writer) error {
		if _, err := activeFolder(ctx, w, folderID); err != nil {
			return err
		}
		var err error
		if video, err = w.GetVideo(ctx, videoID); err != nil {
			return err
		}
		now := s.now()
		if _, err := s.graph.AddMembership(ctx, w, folderID, videoID, now); err != nil {
			return err
		}
		if video.Active() {
			return nil
		}
		video.DeletedAt = nil
		video.UpdatedAt = now
		return w.UpsertVideo(ctx, video)
	})
	if err != nil {
		return nil, storeError(err, fmt.Sprintf("video %d not found", videoID))
	}
	return s.Get(ctx, videoID)
}

// RemoveFromFolder unlinks a video from a folder and applies the orphan rule.
func (s *VideoService) RemoveFromFolder(ctx context.Context, videoID, folderID int64) (*models.VideoDetail, error) {
	err := s.store.Transaction(ctx, func(ctx context.Context, w repository.Writer) error {
		removed, err := s.graph.RemoveMembership(ctx, w, folderID, videoID)
		if err != nil {
			return err
		}
		if !removed {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("video %d is not in folder %d", videoID, folderID))
		}
		_, err = s.graph.EnforceOrphanRule(ctx, w, videoID)
		return err
	})
	if err != nil {
		return nil, storeError(err, "")
	}
	return s.Get(ctx, videoID)
}

// SetTags replaces a video's custom and system tag sets. A nil list leaves
// that type untouched.
func (s *VideoService) SetTags(ctx context.Context, videoID int64, req dto.SetVideoTagsRequest) (*models.VideoDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid tag payload")
	}
	err := s.store.Transaction(ctx, func(ctx context.Context, w repository.Writer) error {
		if _, err := w.GetVideo(ctx, videoID); err != nil {
			return err
		}
		if req.CustomTags != nil {
			if err := s.replaceTags(ctx, w, videoID, models.TagTypeCustom, req.CustomTags); err != nil {
				return err
			}
		}
		if req.SystemTags != nil {
			if err := s.replaceTags(ctx, w, videoID, models.TagTypeSystem, req.SystemTags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, fmt.Sprintf("video %d not found", videoID))
	}
	return s.Get(ctx, videoID)
}

func (s *VideoService) replaceTags(ctx context.Context, w repository.Writer, videoID int64, tagType models.TagType, names []string) error {
	want := make(map[int64]struct{}, len(names))
	for _, name := range names {
		tag, _, err := s.resolver.ResolveTag(ctx, w, name, tagType)
		if err != nil {
			return err
		}
		if tag == nil {
			continue
		}
		want[tag.ID] = struct{}{}
		if _, err := s.graph.BindTag(ctx, w, videoID, tag.ID); err != nil {
			return err
		}
	}

	bindings, err := w.FindVideoTags(ctx, models.VideoTagFilter{VideoIDs: []int64{videoID}})
	if err != nil {
		return err
	}
	for _, binding := range bindings {
		if _, ok := want[binding.TagID]; ok {
			continue
		}
		tag, err := w.GetTag(ctx, binding.TagID)
		if err != nil {
			return err
		}
		if tag.Type != tagType {
			continue
		}
		if err := w.DeleteVideoTag(ctx, binding.ID); err != nil {
			return err
		}
	}
	return nil
}

// Trash lists soft-deleted videos, most recently deleted first.
func (s *VideoService) Trash(ctx context.Context, query dto.ListQuery) ([]models.VideoDetail, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Validation(err, "invalid pagination")
	}
	page, size := query.Page, query.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = defaultFolderPageSize
	}
	videos, err := s.store.FindVideos(ctx, models.VideoFilter{OnlyDeleted: true})
	if err != nil {
		return nil, nil, storeError(err, "")
	}
	sort.SliceStable(videos, func(i, j int) bool {
		return deletedAtOf(videos[i].DeletedAt) > deletedAtOf(videos[j].DeletedAt)
	})

	total := len(videos)
	from := min((page-1)*size, total)
	to := min(from+size, total)
	out := make([]models.VideoDetail, 0, to-from)
	for i := from; i < to; i++ {
		detail, err := videoDetail(ctx, s.store, &videos[i])
		if err != nil {
			return nil, nil, storeError(err, "")
		}
		out = append(out, *detail)
	}
	return out, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Restore takes a video out of the trash. It needs an active membership or
// it would fall straight back into the orphan state.
func (s *VideoService) Restore(ctx context.Context, id int64) (*models.VideoDetail, error) {
	err := s.store.Transaction(ctx, func(ctx context.Context, w repository.Writer) error {
		video, err := trashedVideo(ctx, w, id)
		if err != nil {
			return err
		}
		active, err := s.graph.HasActiveMembership(ctx, w, id)
		if err != nil {
			return err
		}
		if !active {
			return appErrors.Clone(appErrors.ErrConflict, "video has no active folder; add it to a folder instead")
		}
		video.DeletedAt = nil
		video.UpdatedAt = s.now()
		return w.UpsertVideo(ctx, video)
	})
	if err != nil {
		return nil, storeError(err, "")
	}
	return s.Get(ctx, id)
}

// Purge hard-deletes a trashed video with its memberships and tag bindings.
func (s *VideoService) Purge(ctx context.Context, id int64) error {
	err := s.store.Transaction(ctx, func(ctx context.Context, w repository.Writer) error {
		if _, err := trashedVideo(ctx, w, id); err != nil {
			return err
		}
		return w.DeleteVideo(ctx, id)
	})
	return storeError(err, "")
}

func trashedVideo(ctx context.Context, r repository.Reader, id int64) (*models.Video, error) {
	video, err := r.GetVideo(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("video %d not found", id))
		}
		return nil, err
	}
	if video.Active() {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("video %d is not in the trash", id))
	}
	return video, nil
}

// videoDetail decorates video with its active folder ids and tag names.
func videoDetail(ctx context.Context, r repository.Reader, video *models.Video) (*models.VideoDetail, error) {
	folderIDs, err := activeFolderIDsOf(ctx, r, video.ID)
	if err != nil {
		return nil, err
	}
	custom, system, err := tagNamesOf(ctx, r, video.ID)
	if err != nil {
		return nil, err
	}
	if folderIDs == nil {
		folderIDs = []int64{}
	}
	return &models.VideoDetail{
		Video:       *video,
		DisplayBVID: models.DisplayBVID(video.BVID),
		FolderIDs:   folderIDs,
		CustomTags:  custom,
		SystemTags:  system,
	}, nil
}

// tagNamesOf returns the names of all tags bound to videoID, archived ones
// included, split by type and sorted.
func tagNamesOf(ctx context.Context, r repository.Reader, videoID int64) ([]string, []string, error) {
	custom, system := []string{}, []string{}
	bindings, err := r.FindVideoTags(ctx, models.VideoTagFilter{VideoIDs: []int64{videoID}})
	if err != nil || len(bindings) == 0 {
		return custom, system, err
	}
	ids := make([]int64, 0, len(bindings))
	for _, binding := range bindings {
		ids = append(ids, binding.TagID)
	}
	tags, err := r.FindTags(ctx, models.TagFilter{IDs: ids, IncludeArchived: true})
	if err != nil {
		return nil, nil, err
	}
	for _, tag := range tags {
		if tag.Type == models.TagTypeSystem {
			system = append(system, tag.Name)
		} else {
			custom = append(custom, tag.Name)
		}
	}
	byName := func(names []string) func(i, j int) bool {
		return func(i, j int) bool { return strings.ToLower(names[i]) < strings.ToLower(names[j]) }
	}
	sort.SliceStable(custom, byName(custom))
	sort.SliceStable(system, byName(system))
	return custom, system, nil
}
