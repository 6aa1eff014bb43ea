package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/bilishelf-api/internal/models"
)

type kvCounters struct {
	Folders     int64 `json:"folders"`
	Videos      int64 `json:"videos"`
	FolderItems int64 `json:"folderItems"`
	Tags        int64 `json:"tags"`
	VideoTags   int64 `json:"videoTags"`
}

// kvState is the whole library persisted as one blob.
type kvState struct {
	Counters    kvCounters          `json:"counters"`
	Folders     []models.Folder     `json:"folders"`
	Videos      []models.Video      `json:"videos"`
	FolderItems []models.FolderItem `json:"folderItems"`
	Tags        []models.Tag        `json:"tags"`
	VideoTags   []models.VideoTag   `json:"videoTags"`
}

func (s *kvState) clone() *kvState {
	return &kvState{
		Counters:    s.Counters,
		Folders:     append([]models.Folder(nil), s.Folders...),
		Videos:      append([]models.Video(nil), s.Videos...),
		FolderItems: append([]models.FolderItem(nil), s.FolderItems...),
		Tags:        append([]models.Tag(nil), s.Tags...),
		VideoTags:   append([]models.VideoTag(nil), s.VideoTags...),
	}
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func sameName(a, b string) bool {
	return strings.ToLower(a) == strings.ToLower(b)
}

func deletedMatches(deletedAt *int64, include, only bool) bool {
	switch {
	case only:
		return deletedAt != nil
	case include:
		return true
	default:
		return deletedAt == nil
	}
}

func (s *kvState) GetFolder(ctx context.Context, id int64) (*models.Folder, error) {
	for i := range s.Folders {
		if s.Folders[i].ID == id {
			folder := s.Folders[i]
			return &folder, nil
		}
	}
	return nil, fmt.Errorf("get folder %d: %w", id, ErrNotFound)
}

func (s *kvState) FindFolders(ctx context.Context, filter models.FolderFilter) ([]models.Folder, error) {
	var out []models.Folder
	for _, folder := range s.Folders {
		if len(filter.IDs) > 0 && !containsID(filter.IDs, folder.ID) {
			continue
		}
		if filter.Name != "" && !sameName(folder.Name, filter.Name) {
			continue
		}
		if filter.RemoteCollectionID != nil && (folder.RemoteCollectionID == nil || *folder.RemoteCollectionID != *filter.RemoteCollectionID) {
			continue
		}
		if !deletedMatches(folder.DeletedAt, filter.IncludeDeleted, filter.OnlyDeleted) {
			continue
		}
		out = append(out, folder)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *kvState) GetVideo(ctx context.Context, id int64) (*models.Video, error) {
	for i := range s.Videos {
		if s.Videos[i].ID == id {
			video := s.Videos[i]
			return &video, nil
		}
	}
	return nil, fmt.Errorf("get video %d: %w", id, ErrNotFound)
}

func (s *kvState) GetVideoByBVID(ctx context.Context, bvid string) (*models.Video, error) {
	for i := range s.Videos {
		if s.Videos[i].BVID == bvid {
			video := s.Videos[i]
			return &video, nil
		}
	}
	return nil, fmt.Errorf("get video %s: %w", bvid, ErrNotFound)
}

func (s *kvState) FindVideos(ctx context.Context, filter models.VideoFilter) ([]models.Video, error) {
	var out []models.Video
	for _, video := range s.Videos {
		if len(filter.IDs) > 0 && !containsID(filter.IDs, video.ID) {
			continue
		}
		if len(filter.BVIDs) > 0 && !containsString(filter.BVIDs, video.BVID) {
			continue
		}
		if !deletedMatches(video.DeletedAt, filter.IncludeDeleted, filter.OnlyDeleted) {
			continue
		}
		out = append(out, video)
	}
	return out, nil
}

func containsString(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}

func (s *kvState) FindFolderItems(ctx context.Context, filter models.FolderItemFilter) ([]models.FolderItem, error) {
	var out []models.FolderItem
	for _, item := range s.FolderItems {
		if len(filter.FolderIDs) > 0 && !containsID(filter.FolderIDs, item.FolderID) {
			continue
		}
		if len(filter.VideoIDs) > 0 && !containsID(filter.VideoIDs, item.VideoID) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *kvState) GetTag(ctx context.Context, id int64) (*models.Tag, error) {
	for i := range s.Tags {
		if s.Tags[i].ID == id {
			tag := s.Tags[i]
			return &tag, nil
		}
	}
	return nil, fmt.Errorf("get tag %d: %w", id, ErrNotFound)
}

func (s *kvState) FindTags(ctx context.Context, filter models.TagFilter) ([]models.Tag, error) {
	var out []models.Tag
	for _, tag := range s.Tags {
		if len(filter.IDs) > 0 && !containsID(filter.IDs, tag.ID) {
			continue
		}
		if filter.Name != "" && !sameName(tag.Name, filter.Name) {
			continue
		}
		if filter.Type != "" && tag.Type != filter.Type {
			continue
		}
		if !filter.IncludeArchived && tag.ArchivedAt != nil {
			continue
		}
		out = append(out, tag)
	}
	return out, nil
}

func (s *kvState) FindVideoTags(ctx context.Context, filter models.VideoTagFilter) ([]models.VideoTag, error) {
	var out []models.VideoTag
	for _, binding := range s.VideoTags {
		if len(filter.VideoIDs) > 0 && !containsID(filter.VideoIDs, binding.VideoID) {
			continue
		}
		if len(filter.TagIDs) > 0 && !containsID(filter.TagIDs, binding.TagID) {
			continue
		}
		out = append(out, binding)
	}
	return out, nil
}

func (s *kvState) UpsertFolder(ctx context.Context, folder *models.Folder) error {
	for _, other := range s.Folders {
		if other.ID == folder.ID || other.DeletedAt != nil || folder.DeletedAt != nil {
			continue
		}
		if sameName(other.Name, folder.Name) {
			return fmt.Errorf("%w: folder name %q exists", ErrConstraint, folder.Name)
		}
		if folder.RemoteCollectionID != nil && other.RemoteCollectionID != nil && *other.RemoteCollectionID == *folder.RemoteCollectionID {
			return fmt.Errorf("%w: remote collection %d linked", ErrConstraint, *folder.RemoteCollectionID)
		}
	}
	if folder.ID == 0 {
		s.Counters.Folders++
		folder.ID = s.Counters.Folders
		s.Folders = append(s.Folders, *folder)
		return nil
	}
	for i := range s.Folders {
		if s.Folders[i].ID == folder.ID {
			s.Folders[i] = *folder
			return nil
		}
	}
	return fmt.Errorf("update folder %d: %w", folder.ID, ErrNotFound)
}

func (s *kvState) UpsertVideo(ctx context.Context, video *models.Video) error {
	for _, other := range s.Videos {
		if other.ID != video.ID && other.BVID == video.BVID {
			return fmt.Errorf("%w: bvid %s exists", ErrConstraint, video.BVID)
		}
	}
	if video.ID == 0 {
		s.Counters.Videos++
		video.ID = s.Counters.Videos
		s.Videos = append(s.Videos, *video)
		return nil
	}
	for i := range s.Videos {
		if s.Videos[i].ID == video.ID {
			s.Videos[i] = *video
			return nil
		}
	}
	return fmt.Errorf("update video %d: %w", video.ID, ErrNotFound)
}

func (s *kvState) UpsertFolderItem(ctx context.Context, item *models.FolderItem) error {
	if _, err := s.GetFolder(ctx, item.FolderID); err != nil {
		return fmt.Errorf("%w: folder %d missing", ErrConstraint, item.FolderID)
	}
	if _, err := s.GetVideo(ctx, item.VideoID); err != nil {
		return fmt.Errorf("%w: video %d missing", ErrConstraint, item.VideoID)
	}
	for _, other := range s.FolderItems {
		if other.ID != item.ID && other.FolderID == item.FolderID && other.VideoID == item.VideoID {
			return fmt.Errorf("%w: video %d already in folder %d", ErrConstraint, item.VideoID, item.FolderID)
		}
	}
	if item.ID == 0 {
		s.Counters.FolderItems++
		item.ID = s.Counters.FolderItems
		s.FolderItems = append(s.FolderItems, *item)
		return nil
	}
	for i := range s.FolderItems {
		if s.FolderItems[i].ID == item.ID {
			s.FolderItems[i] = *item
			return nil
		}
	}
	return fmt.Errorf("update folder item %d: %w", item.ID, ErrNotFound)
}

func (s *kvState) UpsertTag(ctx context.Context, tag *models.Tag) error {
	for _, other := range s.Tags {
		if other.ID == tag.ID || other.ArchivedAt != nil || tag.ArchivedAt != nil {
			continue
		}
		if other.Type == tag.Type && sameName(other.Name, tag.Name) {
			return fmt.Errorf("%w: tag %q exists", ErrConstraint, tag.Name)
		}
	}
	if tag.ID == 0 {
		s.Counters.Tags++
		tag.ID = s.Counters.Tags
		s.Tags = append(s.Tags, *tag)
		return nil
	}
	for i := range s.Tags {
		if s.Tags[i].ID == tag.ID {
			s.Tags[i] = *tag
			return nil
		}
	}
	return fmt.Errorf("update tag %d: %w", tag.ID, ErrNotFound)
}

func (s *kvState) UpsertVideoTag(ctx context.Context, binding *models.VideoTag) error {
	if _, err := s.GetVideo(ctx, binding.VideoID); err != nil {
		return fmt.Errorf("%w: video %d missing", ErrConstraint, binding.VideoID)
	}
	if _, err := s.GetTag(ctx, binding.TagID); err != nil {
		return fmt.Errorf("%w: tag %d missing", ErrConstraint, binding.TagID)
	}
	for _, other := range s.VideoTags {
		if other.ID != binding.ID && other.VideoID == binding.VideoID && other.TagID == binding.TagID {
			return fmt.Errorf("%w: tag %d already bound to video %d", ErrConstraint, binding.TagID, binding.VideoID)
		}
	}
	if binding.ID == 0 {
		s.Counters.VideoTags++
		binding.ID = s.Counters.VideoTags
		s.VideoTags = append(s.VideoTags, *binding)
		return nil
	}
	for i := range s.VideoTags {
		if s.VideoTags[i].ID == binding.ID {
			s.VideoTags[i] = *binding
			return nil
		}
	}
	return fmt.Errorf("update video tag %d: %w", binding.ID, ErrNotFound)
}

func (s *kvState) DeleteFolder(ctx context.Context, id int64) error {
	before := len(s.Folders)
	s.Folders = filterRows(s.Folders, func(f models.Folder) bool { return f.ID != id })
	if len(s.Folders) == before {
		return fmt.Errorf("delete folder %d: %w", id, ErrNotFound)
	}
	s.FolderItems = filterRows(s.FolderItems, func(item models.FolderItem) bool { return item.FolderID != id })
	return nil
}

func (s *kvState) DeleteVideo(ctx context.Context, id int64) error {
	before := len(s.Videos)
	s.Videos = filterRows(s.Videos, func(v models.Video) bool { return v.ID != id })
	if len(s.Videos) == before {
		return fmt.Errorf("delete video %d: %w", id, ErrNotFound)
	}
	s.FolderItems = filterRows(s.FolderItems, func(item models.FolderItem) bool { return item.VideoID != id })
	s.VideoTags = filterRows(s.VideoTags, func(b models.VideoTag) bool { return b.VideoID != id })
	return nil
}

func (s *kvState) DeleteFolderItem(ctx context.Context, id int64) error {
	before := len(s.FolderItems)
	s.FolderItems = filterRows(s.FolderItems, func(item models.FolderItem) bool { return item.ID != id })
	if len(s.FolderItems) == before {
		return fmt.Errorf("delete folder item %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *kvState) DeleteTag(ctx context.Context, id int64) error {
	before := len(s.Tags)
	s.Tags = filterRows(s.Tags, func(t models.Tag) bool { return t.ID != id })
	if len(s.Tags) == before {
		return fmt.Errorf("delete tag %d: %w", id, ErrNotFound)
	}
	s.VideoTags = filterRows(s.VideoTags, func(b models.VideoTag) bool { return b.TagID != id })
	return nil
}

func (s *kvState) DeleteVideoTag(ctx context.Context, id int64) error {
	before := len(s.VideoTags)
	s.VideoTags = filterRows(s.VideoTags, func(b models.VideoTag) bool { return b.ID != id })
	if len(s.VideoTags) == before {
		return fmt.Errorf("delete video tag %d: %w", id, ErrNotFound)
	}
	return nil
}

func filterRows[T any](rows []T, keep func(T) bool) []T {
	out := rows[:0:0]
	for _, row := range rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}
