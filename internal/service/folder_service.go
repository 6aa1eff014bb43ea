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

const defaultFolderPageSize = 50

// FolderServiceConfig carries optional collaborators.
type FolderServiceConfig struct {
	Validator *validator.Validate
	Logger    *zap.Logger
	Now       func() int64
}

// FolderService manages folders, their order and the folder trash.
type FolderService struct {
	store     repository.Store
	resolver  *Resolver
	graph     *GraphMaintainer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() int64
}

// NewFolderService constructs the service.
func NewFolderService(store repository.Store, cfg FolderServiceConfig) *FolderService {
	if cfg.Validator == nil {
		cfg.Validator = validator.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = nowMillis
	}
	return &FolderService{
		store:     store,
		resolver:  NewResolver(cfg.Now),
		graph:     NewGraphMaintainer(cfg.Now),
		validator: cfg.Validator,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
}

// List returns active folders in display order with their active video counts.
func (s *FolderService) List(ctx context.Context) ([]models.FolderWithCount, error) {
	folders, err := s.store.FindFolders(ctx, models.FolderFilter{})
	if err != nil {
		return nil, storeError(err, "")
	}
	return s.withCounts(ctx, folders)
}

// ListTrash returns trashed folders.
func (s *FolderService) ListTrash(ctx context.Context) ([]models.FolderWithCount, error) {
	folders, err := s.store.FindFolders(ctx, models.FolderFilter{OnlyDeleted: true})
	if err != nil {
		return nil, storeError(err, "")
	}
	sort.SliceStable(folders, func(i, j int) bool { return deletedAtOf(folders[i].DeletedAt) > deletedAtOf(folders[j].DeletedAt) })
	return s.withCounts(ctx, folders)
}

func deletedAtOf(ts *int64) int64 {
	if ts == nil {
		return 0
	}
	return *ts
}

func (s *FolderService) withCounts(ctx context.Context, folders []models.Folder) ([]models.FolderWithCount, error) {
	out := make([]models.FolderWithCount, 0, len(folders))
	if len(folders) == 0 {
		return out, nil
	}
	ids := make([]int64, 0, len(folders))
	for _, folder := range folders {
		ids = append(ids, folder.ID)
	}
	items, err := s.store.FindFolderItems(ctx, models.FolderItemFilter{FolderIDs: ids})
	if err != nil {
		return nil, storeError(err, "")
	}
	videoIDs := make([]int64, 0, len(items))
	for _, item := range items {
		videoIDs = append(videoIDs, item.VideoID)
	}
	active := map[int64]struct{}{}
	if len(videoIDs) > 0 {
		videos, err := s.store.FindVideos(ctx, models.VideoFilter{IDs: videoIDs})
		if err != nil {
			return nil, storeError(err, "")
		}
		for _, video := range videos {
			active[video.ID] = struct{}{}
		}
	}
	counts := make(map[int64]int, len(folders))
	for _, item := range items {
		if _, ok := active[item.VideoID]; ok {
			counts[item.FolderID]++
		}
	}
	for _, folder := range folders {
		out = append(out, models.FolderWithCount{Folder: folder, ItemCount: counts[folder.ID]})
	}
	return out, nil
}

// Create adds a folder. An active folder with the same name is a conflict; a
// trashed one is restored instead.
func (s *FolderService) Create(ctx context.Context, req dto.CreateFolderRequest) (*models.Folder, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid folder payload")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "folder name is required")
	}

	var folder *models.Folder
	err := s.store.Transaction(ctx, func(ctx context.Context, w repository.Writer) error {
		taken, err := folderNameTaken(ctx, w, name, 0)
		if err != nil {
			return err
		}
		if taken {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("folder %q already exists", name))
		}
		folder, _, err = s.resolver.ResolveFolderByName(ctx, w, name, strings.TrimSpace(req.Description))
		if err != nil {
			return err
		}
		if desc := strings.TrimSpace(req.Description); desc != "" && folder.Description != desc {
			folder.Description = desc
			folder.UpdatedAt = s.now()
			return w.UpsertFolder(ctx, folder)
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "folder not found")
	}
	return folder, nil
}

// Update renames or re-describes an active folder.
func (s *FolderService) Update(ctx context.Context, id int64, req dto.UpdateFolderRequest) (*models.Folder, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid folder payload")
	}

	var folder *models.Folder
	err := s.store.Transaction(ctx, func(ctx context.Context, w repository.Writer) error {
		var err error
		if folder, err = activeFolder(ctx, w, id); err != nil {
			return err
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return appErrors.Clone(appErrors.ErrValidation, "folder name is required")
			}
			taken, err := folderNameTaken(ctx, w, name, folder.ID)
			if err != nil {
				return err
			}
			if taken {
				return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("folder %q already exists", name))
			}
			folder.Name = name
		}
		if req.Description != nil {
			folder.Description = strings.TrimSpace(*req.Description)
		}
		folder.UpdatedAt = s.now()
		return w.UpsertFolder(ctx, folder)
	})
	if err != nil {
		return nil, storeError(err, "folder not found")
	}
	return folder, nil
}

// Reorder puts the listed folders first, in order, and the rest after them in
// their previous order, renumbering 0..N.
func (s *FolderService) Reorder(ctx context.Context, req dto.ReorderFoldersRequest) ([]models.Folder, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid folder order")
	}

	var ordered []models.Folder
	err := s.store.Transaction(ctx, func(ctx context.Context, w repository.Writer) error {
		folders, err := w.FindFolders(ctx, models.FolderFilter{})
		if err != nil {
			return err
		}
		byID := make(map[int64]models.Folder, len(folders))
		for _, folder := range folders {
			byID[folder.ID] = folder
		}
		ordered = make([]models.Folder, 0, len(folders))
		placed := make(map[int64]struct{}, len(folders))
		for _, id := range req.FolderIDs {
			folder, ok := byID[id]
			if !ok {
				return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("folder %d not found", id))
			}
			if _, dup := placed[id]; dup {
				continue
			}
			placed[id] = struct{}{}
			ordered = append(ordered, folder)
		}
		for _, folder := range folders {
			if _, ok := placed[folder.ID]; !ok {
				ordered = append(ordered, folder)
			}
		}
		return writeFolderOrder(ctx, w, ordered, s.now())
	})
	if err != nil {
		return nil, storeError(err, "folder not found")
	}
	return ordered, nil
}

// Delete moves a folder to the trash. Member videos left without an active
// folder are soft-deleted.
func (s *FolderService) Delete(ctx context.Context, id int64) error {
	err := s.store.Transaction(ctx, func(ctx context.Context, w repository.Writer) error {
		folder, err := activeFolder(ctx, w, id)
		if err != nil {
			return err
		}
		now := s.now()
		folder.DeletedAt = &now
		folder.UpdatedAt = now
		if err := w.UpsertFolder(ctx, folder); err != nil {
			return err
		}
		if err := compactFolderOrder(ctx, w, now); err != nil {
			return err
		}
		videoIDs, err := memberVideoIDs(ctx, w, id)
		if err != nil {
			return err
		}
		_, err = s.graph.EnforceOrphanRule(ctx, w, videoIDs...)
		return err
	})
	return storeError(err, "folder not found")
}

// Restore brings a trashed folder back at the end of the order. With
// restoreVideos, trashed member videos are restored too.
func (s *FolderService) Restore(ctx context.Context, id int64, req dto.RestoreFolderRequest) (*models.Folder, error) {
	var folder *models.Folder
	err := s.store.Transaction(ctx, func(ctx context.Context, w repository.Writer) error {
		var err error
		if folder, err = trashedFolder(ctx, w, id); err != nil {
			return err
		}
		taken, err := folderNameTaken(ctx, w, folder.Name, folder.ID)
		if err != nil {
			return err
		}
		if taken {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("an active folder named %q exists", folder.Name))
		}
		if folder.RemoteCollectionID != nil {
			linked, err := w.FindFolders(ctx, models.FolderFilter{RemoteCollectionID: folder.RemoteCollectionID})
			if err != nil {
				return err
			}
			if len(linked) > 0 {
				folder.RemoteCollectionID = nil
			}
		}
		count, err := activeFolderCount(ctx, w)
		if err != nil {
			return err
		}
		now := s.now()
		folder.DeletedAt = nil
		folder.SortOrder = count
		folder.UpdatedAt = now
		if err := w.UpsertFolder(ctx, folder); err != nil {
			return err
		}
		if !req.RestoreVideos {
			return nil
		}
		videoIDs, err := memberVideoIDs(ctx, w, id)
		if err != nil || len(videoIDs) == 0 {
			return err
		}
		videos, err := w.FindVideos(ctx, models.VideoFilter{IDs: videoIDs, OnlyDeleted: true})
		if err != nil {
			return err
		}
		for i := range videos {
			videos[i].DeletedAt = nil
			videos[i].UpdatedAt = now
			if err := w.UpsertVideo(ctx, &videos[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "folder not found")
	}
	return folder, nil
}

// Purge hard-deletes a trashed folder and its memberships, then applies the
// orphan rule to the videos it held.
func (s *FolderService) Purge(ctx context.Context, id int64) error {
	err := s.store.Transaction(ctx, func(ctx context.Context, w repository.Writer) error {
		if _, err := trashedFolder(ctx, w, id); err != nil {
			return err
		}
		videoIDs, err := memberVideoIDs(ctx, w, id)
		if err != nil {
			return err
		}
		if err := w.DeleteFolder(ctx, id); err != nil {
			return err
		}
		_, err = s.graph.EnforceOrphanRule(ctx, w, videoIDs...)
		return err
	})
	return storeError(err, "folder not found")
}

// Videos lists a folder's active videos, most recently added first.
func (s *FolderService) Videos(ctx context.Context, folderID int64, query dto.ListQuery) ([]models.FolderVideo, *models.Pagination, error) {
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

	if _, err := activeFolder(ctx, s.store, folderID); err != nil {
		return nil, nil, storeError(err, "folder not found")
	}
	items, err := s.store.FindFolderItems(ctx, models.FolderItemFilter{FolderIDs: []int64{folderID}})
	if err != nil {
		return nil, nil, storeError(err, "")
	}
	addedAt := make(map[int64]int64, len(items))
	videoIDs := make([]int64, 0, len(items))
	for _, item := range items {
		addedAt[item.VideoID] = item.AddedAt
		videoIDs = append(videoIDs, item.VideoID)
	}
	var videos []models.Video
	if len(videoIDs) > 0 {
		if videos, err = s.store.FindVideos(ctx, models.VideoFilter{IDs: videoIDs}); err != nil {
			return nil, nil, storeError(err, "")
		}
	}
	sort.SliceStable(videos, func(i, j int) bool {
		if addedAt[videos[i].ID] != addedAt[videos[j].ID] {
			return addedAt[videos[i].ID] > addedAt[videos[j].ID]
		}
		return videos[i].ID > videos[j].ID
	})

	total := len(videos)
	from := (page - 1) * size
	if from > total {
		from = total
	}
	to := from + size
	if to > total {
		to = total
	}
	out := make([]models.FolderVideo, 0, to-from)
	for _, video := range videos[from:to] {
		out = append(out, models.FolderVideo{Video: video, DisplayBVID: models.DisplayBVID(video.BVID), AddedAt: addedAt[video.ID]})
	}
	return out, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func activeFolder(ctx context.Context, r repository.Reader, id int64) (*models.Folder, error) {
	folder, err := r.GetFolder(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("folder %d not found", id))
		}
		return nil, err
	}
	if !folder.Active() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("folder %d is in the trash", id))
	}
	return folder, nil
}

func trashedFolder(ctx context.Context, r repository.Reader, id int64) (*models.Folder, error) {
	folder, err := r.GetFolder(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("folder %d not found", id))
		}
		return nil, err
	}
	if folder.Active() {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("folder %d is not in the trash", id))
	}
	return folder, nil
}

func memberVideoIDs(ctx context.Context, r repository.Reader, folderID int64) ([]int64, error) {
	items, err := r.FindFolderItems(ctx, models.FolderItemFilter{FolderIDs: []int64{folderID}})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.VideoID)
	}
	return ids, nil
}

// compactFolderOrder renumbers active folders 0..N keeping their relative order.
func compactFolderOrder(ctx context.Context, w repository.Writer, now int64) error {
	folders, err := w.FindFolders(ctx, models.FolderFilter{})
	if err != nil {
		return err
	}
	sort.SliceStable(folders, func(i, j int) bool {
		if folders[i].SortOrder != folders[j].SortOrder {
			return folders[i].SortOrder < folders[j].SortOrder
		}
		return folders[i].ID < folders[j].ID
	})
	return writeFolderOrder(ctx, w, folders, now)
}

func writeFolderOrder(ctx context.Context, w repository.Writer, folders []models.Folder, now int64) error {
	for i := range folders {
		if folders[i].SortOrder == i {
			continue
		}
		folders[i].SortOrder = i
		folders[i].UpdatedAt = now
		if err := w.UpsertFolder(ctx, &folders[i]); err != nil {
			return err
		}
	}
	return nil
}
