package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/bilishelf-api/internal/models"
	"github.com/noah-isme/bilishelf-api/internal/repository"
)

const (
	syncedFolderDescription   = "Synced from Bilibili"
	importedFolderDescription = "Imported"
	// DefaultImportFolder receives imported rows that name no folder.
	DefaultImportFolder = "Imported"
)

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// Resolver maps natural keys to stored rows, creating or merging as needed.
// All methods run inside a caller's transaction.
type Resolver struct {
	now func() int64
}

// NewResolver constructs a resolver. now defaults to the wall clock in epoch millis.
func NewResolver(now func() int64) *Resolver {
	if now == nil {
		now = nowMillis
	}
	return &Resolver{now: now}
}

// ResolveVideo upserts by exact bvid. A matched video takes every mutable field
// from the candidate and, unless the candidate keeps deletion, leaves the trash.
func (r *Resolver) ResolveVideo(ctx context.Context, w repository.Writer, candidate models.VideoCandidate) (*models.Video, bool, error) {
	now := r.now()
	existing, err := w.GetVideoByBVID(ctx, candidate.BVID)
	if err != nil && !repository.IsNotFound(err) {
		return nil, false, fmt.Errorf("lookup video %s: %w", candidate.BVID, err)
	}

	if existing != nil {
		applyCandidate(existing, candidate)
		if !candidate.KeepDeleted {
			existing.DeletedAt = nil
		}
		existing.UpdatedAt = now
		if err := w.UpsertVideo(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("update video %s: %w", candidate.BVID, err)
		}
		return existing, false, nil
	}

	video := &models.Video{BVID: candidate.BVID, CreatedAt: now, UpdatedAt: now}
	applyCandidate(video, candidate)
	if candidate.KeepDeleted {
		video.DeletedAt = &now
	}
	if err := w.UpsertVideo(ctx, video); err != nil {
		return nil, false, fmt.Errorf("insert video %s: %w", candidate.BVID, err)
	}
	return video, true, nil
}

func applyCandidate(video *models.Video, candidate models.VideoCandidate) {
	video.Title = candidate.Title
	video.CoverURL = candidate.CoverURL
	video.Uploader = candidate.Uploader
	video.UploaderSpaceURL = candidate.UploaderSpaceURL
	video.Description = candidate.Description
	video.Partition = candidate.Partition
	video.PublishAt = candidate.PublishAt
	video.CanonicalURL = candidate.CanonicalURL
	video.IsInvalid = candidate.IsInvalid
}

// ResolveFolderForSync finds the local folder for a remote collection: by
// remote id first, then by case-insensitive name, else creates one at the end
// of the active order. A match is linked to the remote id and restored.
func (r *Resolver) ResolveFolderForSync(ctx context.Context, w repository.Writer, remoteID int64, title string) (*models.Folder, bool, error) {
	title = strings.TrimSpace(title)
	now := r.now()

	linked, err := w.FindFolders(ctx, models.FolderFilter{RemoteCollectionID: &remoteID, IncludeDeleted: true})
	if err != nil {
		return nil, false, fmt.Errorf("find folder by remote id %d: %w", remoteID, err)
	}
	if folder := preferActiveFolder(linked); folder != nil {
		restorable := true
		if !folder.Active() {
			taken, err := folderNameTaken(ctx, w, folder.Name, folder.ID)
			if err != nil {
				return nil, false, err
			}
			restorable = !taken
		}
		if restorable {
			if title != "" && !sameFolderName(title, folder.Name) {
				taken, err := folderNameTaken(ctx, w, title, folder.ID)
				if err != nil {
					return nil, false, err
				}
				if !taken {
					folder.Name = title
				}
			}
			if err := r.restoreFolder(ctx, w, folder, remoteID, now); err != nil {
				return nil, false, err
			}
			return folder, false, nil
		}
	}

	if title == "" {
		title = fmt.Sprintf("Bilibili folder %d", remoteID)
	}
	named, err := w.FindFolders(ctx, models.FolderFilter{Name: title, IncludeDeleted: true})
	if err != nil {
		return nil, false, fmt.Errorf("find folder %q: %w", title, err)
	}
	if folder := preferActiveFolder(named); folder != nil {
		if err := r.unlinkRemote(ctx, w, remoteID, folder.ID, now); err != nil {
			return nil, false, err
		}
		if err := r.restoreFolder(ctx, w, folder, remoteID, now); err != nil {
			return nil, false, err
		}
		return folder, false, nil
	}

	if err := r.unlinkRemote(ctx, w, remoteID, 0, now); err != nil {
		return nil, false, err
	}
	folder, err := r.createFolder(ctx, w, title, syncedFolderDescription, &remoteID, now)
	if err != nil {
		return nil, false, err
	}
	return folder, true, nil
}

// ResolveFolderByName finds a folder by case-insensitive name, restoring a
// trashed one, or creates it with description.
func (r *Resolver) ResolveFolderByName(ctx context.Context, w repository.Writer, name, description string) (*models.Folder, bool, error) {
	name = strings.TrimSpace(name)
	now := r.now()
	named, err := w.FindFolders(ctx, models.FolderFilter{Name: name, IncludeDeleted: true})
	if err != nil {
		return nil, false, fmt.Errorf("find folder %q: %w", name, err)
	}
	if folder := preferActiveFolder(named); folder != nil {
		if folder.Active() {
			return folder, false, nil
		}
		if err := r.restoreFolder(ctx, w, folder, 0, now); err != nil {
			return nil, false, err
		}
		return folder, false, nil
	}
	folder, err := r.createFolder(ctx, w, name, description, nil, now)
	if err != nil {
		return nil, false, err
	}
	return folder, true, nil
}

// ResolveTag finds a tag by case-insensitive name and type or creates it. It
// returns nil for blank names and for reserved system names. A matched archived
// tag is un-archived.
func (r *Resolver) ResolveTag(ctx context.Context, w repository.Writer, name string, tagType models.TagType) (*models.Tag, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, nil
	}
	if tagType == models.TagTypeSystem && models.IsReservedTagName(name) {
		return nil, false, nil
	}

	tags, err := w.FindTags(ctx, models.TagFilter{Name: name, Type: tagType, IncludeArchived: true})
	if err != nil {
		return nil, false, fmt.Errorf("find tag %q: %w", name, err)
	}
	var archived *models.Tag
	for i := range tags {
		if tags[i].ArchivedAt == nil {
			return &tags[i], false, nil
		}
		if archived == nil {
			archived = &tags[i]
		}
	}
	if archived != nil {
		archived.ArchivedAt = nil
		if err := w.UpsertTag(ctx, archived); err != nil {
			return nil, false, fmt.Errorf("unarchive tag %q: %w", name, err)
		}
		return archived, false, nil
	}

	tag := &models.Tag{Name: name, Type: tagType, CreatedAt: r.now()}
	if err := w.UpsertTag(ctx, tag); err != nil {
		return nil, false, fmt.Errorf("insert tag %q: %w", name, err)
	}
	return tag, true, nil
}

// restoreFolder links remoteID when non-zero and moves a trashed folder to the
// end of the active order.
func (r *Resolver) restoreFolder(ctx context.Context, w repository.Writer, folder *models.Folder, remoteID int64, now int64) error {
	if remoteID != 0 {
		folder.RemoteCollectionID = &remoteID
	}
	if !folder.Active() {
		count, err := activeFolderCount(ctx, w)
		if err != nil {
			return err
		}
		folder.DeletedAt = nil
		folder.SortOrder = count
	}
	folder.UpdatedAt = now
	if err := w.UpsertFolder(ctx, folder); err != nil {
		return fmt.Errorf("update folder %d: %w", folder.ID, err)
	}
	return nil
}

// unlinkRemote clears remoteID from trashed folders other than keepID so the
// id can move to a live folder.
func (r *Resolver) unlinkRemote(ctx context.Context, w repository.Writer, remoteID, keepID, now int64) error {
	linked, err := w.FindFolders(ctx, models.FolderFilter{RemoteCollectionID: &remoteID, IncludeDeleted: true})
	if err != nil {
		return fmt.Errorf("find folder by remote id %d: %w", remoteID, err)
	}
	for i := range linked {
		if linked[i].ID == keepID {
			continue
		}
		linked[i].RemoteCollectionID = nil
		linked[i].UpdatedAt = now
		if err := w.UpsertFolder(ctx, &linked[i]); err != nil {
			return fmt.Errorf("unlink folder %d: %w", linked[i].ID, err)
		}
	}
	return nil
}

func (r *Resolver) createFolder(ctx context.Context, w repository.Writer, name, description string, remoteID *int64, now int64) (*models.Folder, error) {
	count, err := activeFolderCount(ctx, w)
	if err != nil {
		return nil, err
	}
	folder := &models.Folder{
		Name:               name,
		Description:        description,
		RemoteCollectionID: remoteID,
		SortOrder:          count,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := w.UpsertFolder(ctx, folder); err != nil {
		return nil, fmt.Errorf("insert folder %q: %w", name, err)
	}
	return folder, nil
}

func preferActiveFolder(folders []models.Folder) *models.Folder {
	var fallback *models.Folder
	for i := range folders {
		if folders[i].Active() {
			return &folders[i]
		}
		if fallback == nil {
			fallback = &folders[i]
		}
	}
	return fallback
}

func sameFolderName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func folderNameTaken(ctx context.Context, w repository.Reader, name string, exceptID int64) (bool, error) {
	folders, err := w.FindFolders(ctx, models.FolderFilter{Name: name})
	if err != nil {
		return false, fmt.Errorf("find folder %q: %w", name, err)
	}
	for _, folder := range folders {
		if folder.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func activeFolderCount(ctx context.Context, w repository.Reader) (int, error) {
	folders, err := w.FindFolders(ctx, models.FolderFilter{})
	if err != nil {
		return 0, fmt.Errorf("count folders: %w", err)
	}
	return len(folders), nil
}
