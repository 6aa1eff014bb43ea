package models

import "strings"

// TagType distinguishes remote-derived tags from user tags.
type TagType string

const (
	TagTypeSystem TagType = "system"
	TagTypeCustom TagType = "custom"
)

// ReservedSystemTags can never be created as system tags.
var ReservedSystemTags = map[string]struct{}{
	"uncategorized": {},
	"未分类":           {},
}

// IsReservedTagName reports whether name is blocked for system tags.
func IsReservedTagName(name string) bool {
	_, ok := ReservedSystemTags[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Tag labels videos. Archived tags stay resolvable for historical bindings.
type Tag struct {
	ID         int64   `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	Type       TagType `db:"type" json:"type"`
	CreatedAt  int64   `db:"created_at" json:"createdAt"`
	ArchivedAt *int64  `db:"archived_at" json:"archivedAt"`
}

// VideoTag binds a tag to a video.
type VideoTag struct {
	ID      int64 `db:"id" json:"id"`
	VideoID int64 `db:"video_id" json:"videoId"`
	TagID   int64 `db:"tag_id" json:"tagId"`
}

// TagFilter narrows tag queries.
type TagFilter struct {
	IDs             []int64
	Name            string
	Type            TagType
	IncludeArchived bool
}

// VideoTagFilter narrows binding queries.
type VideoTagFilter struct {
	VideoIDs []int64
	TagIDs   []int64
}
