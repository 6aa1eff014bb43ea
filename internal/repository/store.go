package repository

import (
	"context"
	"errors"

	"github.com/noah-isme/bilishelf-api/internal/models"
)

var (
	// ErrNotFound is returned by point lookups and updates that match nothing.
	ErrNotFound = errors.New("record not found")
	// ErrConstraint is returned when a write breaks a uniqueness or reference rule.
	ErrConstraint = errors.New("constraint violation")
)

// Reader is the read side of the Entity Store.
type Reader interface {
	GetFolder(ctx context.Context, id int64) (*models.Folder, error)
	FindFolders(ctx context.Context, filter models.FolderFilter) ([]models.Folder, error)
	GetVideo(ctx context.Context, id int64) (*models.Video, error)
	GetVideoByBVID(ctx context.Context, bvid string) (*models.Video, error)
	FindVideos(ctx context.Context, filter models.VideoFilter) ([]models.Video, error)
	FindFolderItems(ctx context.Context, filter models.FolderItemFilter) ([]models.FolderItem, error)
	GetTag(ctx context.Context, id int64) (*models.Tag, error)
	FindTags(ctx context.Context, filter models.TagFilter) ([]models.Tag, error)
	FindVideoTags(ctx context.Context, filter models.VideoTagFilter) ([]models.VideoTag, error)
}

// Writer mutates rows inside a transaction. Upserts with a zero ID insert and
// assign the new ID; otherwise they replace the row with that ID. Deleting a
// folder removes its folder items; deleting a video removes its folder items and
// tag bindings; deleting a tag removes its bindings.
type Writer interface {
	Reader
	UpsertFolder(ctx context.Context, folder *models.Folder) error
	UpsertVideo(ctx context.Context, video *models.Video) error
	UpsertFolderItem(ctx context.Context, item *models.FolderItem) error
	UpsertTag(ctx context.Context, tag *models.Tag) error
	UpsertVideoTag(ctx context.Context, binding *models.VideoTag) error
	DeleteFolder(ctx context.Context, id int64) error
	DeleteVideo(ctx context.Context, id int64) error
	DeleteFolderItem(ctx context.Context, id int64) error
	DeleteTag(ctx context.Context, id int64) error
	DeleteVideoTag(ctx context.Context, id int64) error
}

// Store is an Entity Store backend. Transactions are serialized through one FIFO
// writer per store and are atomic: fn's writes apply only when it returns nil.
type Store interface {
	Reader
	Transaction(ctx context.Context, fn func(ctx context.Context, w Writer) error) error
	Close() error
}

// IsConstraint reports whether err is a uniqueness or reference violation.
func IsConstraint(err error) bool {
	return errors.Is(err, ErrConstraint)
}

// IsNotFound reports whether err came from a point lookup that matched nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
