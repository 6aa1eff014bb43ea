package service

import (
	"context"
	"fmt"

	"github.com/noah-isme/bilishelf-api/internal/models"
	"github.com/noah-isme/bilishelf-api/internal/repository"
)

// GraphMaintainer keeps the folder/video and video/tag relations consistent.
// All methods run inside a caller's transaction.
type GraphMaintainer struct {
	now func() int64
}

// NewGraphMaintainer constructs a maintainer. now defaults to the wall clock in epoch millis.
func NewGraphMaintainer(now func() int64) *GraphMaintainer {
	if now == nil {
		now = nowMillis
	}
	return &GraphMaintainer{now: now}
}

// AddMembership links videoID into folderID. An existing link only moves its
// addedAt forward. added reports whether a new link was created.
func (g *GraphMaintainer) AddMembership(ctx context.Context, w repository.Writer, folderID, videoID, addedAt int64) (bool, error) {
	items, err := w.FindFolderItems(ctx, models.FolderItemFilter{FolderIDs: []int64{folderID}, VideoIDs: []int64{videoID}})
	if err != nil {
		return false, fmt.Errorf("find membership: %w", err)
	}
	if len(items) > 0 {
		item := items[0]
		if addedAt > item.AddedAt {
			item.AddedAt = addedAt
			if err := w.UpsertFolderItem(ctx, &item); err != nil {
				return false, fmt.Errorf("refresh membership %d: %w", item.ID, err)
			}
		}
		return false, nil
	}
	item := &models.FolderItem{FolderID: folderID, VideoID: videoID, AddedAt: addedAt}
	if err := w.UpsertFolderItem(ctx, item); err != nil {
		return false, fmt.Errorf("add video %d to folder %d: %w", videoID, folderID, err)
	}
	return true, nil
}

// RemoveMembership deletes the link if present. Callers follow up with
// EnforceOrphanRule for the video.
func (g *GraphMaintainer) RemoveMembership(ctx context.Context, w repository.Writer, folderID, videoID int64) (bool, error) {
	items, err := w.FindFolderItems(ctx, models.FolderItemFilter{FolderIDs: []int64{folderID}, VideoIDs: []int64{videoID}})
	if err != nil {
		return false, fmt.Errorf("find membership: %w", err)
	}
	for _, item := range items {
		if err := w.DeleteFolderItem(ctx, item.ID); err != nil {
			return false, fmt.Errorf("remove membership %d: %w", item.ID, err)
		}
	}
	return len(items) > 0, nil
}

// BindTag attaches tagID to videoID. bound reports whether a new binding was created.
func (g *GraphMaintainer) BindTag(ctx context.Context, w repository.Writer, videoID, tagID int64) (bool, error) {
	bindings, err := w.FindVideoTags(ctx, models.VideoTagFilter{VideoIDs: []int64{videoID}, TagIDs: []int64{tagID}})
	if err != nil {
		return false, fmt.Errorf("find binding: %w", err)
	}
	if len(bindings) > 0 {
		return false, nil
	}
	if err := w.UpsertVideoTag(ctx, &models.VideoTag{VideoID: videoID, TagID: tagID}); err != nil {
		return false, fmt.Errorf("bind tag %d to video %d: %w", tagID, videoID, err)
	}
	return true, nil
}

// UnbindTag detaches tagID from videoID if bound.
func (g *GraphMaintainer) UnbindTag(ctx context.Context, w repository.Writer, videoID, tagID int64) (bool, error) {
	bindings, err := w.FindVideoTags(ctx, models.VideoTagFilter{VideoIDs: []int64{videoID}, TagIDs: []int64{tagID}})
	if err != nil {
		return false, fmt.Errorf("find binding: %w", err)
	}
	for _, binding := range bindings {
		if err := w.DeleteVideoTag(ctx, binding.ID); err != nil {
			return false, fmt.Errorf("unbind tag %d: %w", binding.ID, err)
		}
	}
	return len(bindings) > 0, nil
}

// HasActiveMembership reports whether videoID belongs to at least one folder outside the trash.
func (g *GraphMaintainer) HasActiveMembership(ctx context.Context, r repository.Reader, videoID int64) (bool, error) {
	ids, err := activeFolderIDsOf(ctx, r, videoID)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// EnforceOrphanRule soft-deletes every listed active video that has no
// membership in an active folder and returns the ids it deleted.
func (g *GraphMaintainer) EnforceOrphanRule(ctx context.Context, w repository.Writer, videoIDs ...int64) ([]int64, error) {
	var deleted []int64
	seen := make(map[int64]struct{}, len(videoIDs))
	for _, videoID := range videoIDs {
		if _, ok := seen[videoID]; ok {
			continue
		}
		seen[videoID] = struct{}{}

		video, err := w.GetVideo(ctx, videoID)
		if err != nil {
			if repository.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("load video %d: %w", videoID, err)
		}
		if !video.Active() {
			continue
		}
		active, err := g.HasActiveMembership(ctx, w, videoID)
		if err != nil {
			return nil, err
		}
		if active {
			continue
		}
		if err := g.softDeleteVideo(ctx, w, video); err != nil {
			return nil, err
		}
		deleted = append(deleted, videoID)
	}
	return deleted, nil
}

func (g *GraphMaintainer) softDeleteVideo(ctx context.Context, w repository.Writer, video *models.Video) error {
	now := g.now()
	video.DeletedAt = &now
	video.UpdatedAt = now
	if err := w.UpsertVideo(ctx, video); err != nil {
		return fmt.Errorf("soft delete video %d: %w", video.ID, err)
	}
	return nil
}

// activeFolderIDsOf lists the active folders videoID belongs to, in membership order.
func activeFolderIDsOf(ctx context.Context, r repository.Reader, videoID int64) ([]int64, error) {
	items, err := r.FindFolderItems(ctx, models.FolderItemFilter{VideoIDs: []int64{videoID}})
	if err != nil {
		return nil, fmt.Errorf("find memberships of video %d: %w", videoID, err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	folderIDs := make([]int64, 0, len(items))
	for _, item := range items {
		folderIDs = append(folderIDs, item.FolderID)
	}
	folders, err := r.FindFolders(ctx, models.FolderFilter{IDs: folderIDs})
	if err != nil {
		return nil, fmt.Errorf("find folders of video %d: %w", videoID, err)
	}
	active := make(map[int64]struct{}, len(folders))
	for _, folder := range folders {
		active[folder.ID] = struct{}{}
	}
	out := make([]int64, 0, len(folders))
	for _, item := range items {
		if _, ok := active[item.FolderID]; ok {
			out = append(out, item.FolderID)
		}
	}
	return out, nil
}
