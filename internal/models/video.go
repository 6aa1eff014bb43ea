package models

import "strings"

// CopyMarker separates a copied video's source bvid from its uniqueness suffix.
const CopyMarker = "__copy__"

// Video is a bookmarked remote video identified by its bvid.
type Video struct {
	ID               int64   `db:"id" json:"id"`
	BVID             string  `db:"bvid" json:"bvid"`
	Title            string  `db:"title" json:"title"`
	CoverURL         string  `db:"cover_url" json:"coverUrl"`
	Uploader         string  `db:"uploader" json:"uploader"`
	UploaderSpaceURL *string `db:"uploader_space_url" json:"uploaderSpaceUrl"`
	Description      string  `db:"description" json:"description"`
	Partition        string  `db:"partition" json:"partition"`
	PublishAt        *int64  `db:"publish_at" json:"publishAt"`
	CanonicalURL     string  `db:"canonical_url" json:"bvidUrl"`
	IsInvalid        bool    `db:"is_invalid" json:"isInvalid"`
	DeletedAt        *int64  `db:"deleted_at" json:"deletedAt"`
	CreatedAt        int64   `db:"created_at" json:"createdAt"`
	UpdatedAt        int64   `db:"updated_at" json:"updatedAt"`
}

// Active reports whether the video is outside the trash.
func (v *Video) Active() bool {
	return v != nil && v.DeletedAt == nil
}

// DisplayBVID strips a copy suffix so copies show their source bvid.
func DisplayBVID(bvid string) string {
	if idx := strings.Index(bvid, CopyMarker); idx > 0 {
		return bvid[:idx]
	}
	return bvid
}

// VideoCandidate carries remote or imported video fields into resolution.
type VideoCandidate struct {
	BVID             string
	Title            string
	CoverURL         string
	Uploader         string
	UploaderSpaceURL *string
	Description      string
	Partition        string
	PublishAt        *int64
	CanonicalURL     string
	IsInvalid        bool
	// KeepDeleted resolves without clearing deletion; a missing video is inserted already deleted.
	KeepDeleted bool
}

// VideoFilter narrows video queries.
type VideoFilter struct {
	IDs            []int64
	BVIDs          []string
	IncludeDeleted bool
	OnlyDeleted    bool
}

// VideoDetail is a video with its folders and tags.
type VideoDetail struct {
	Video
	DisplayBVID string   `json:"displayBvid"`
	FolderIDs   []int64  `json:"folderIds"`
	CustomTags  []string `json:"customTags"`
	SystemTags  []string `json:"systemTags"`
}

// FolderVideo is one row of a folder listing.
type FolderVideo struct {
	Video
	DisplayBVID string `json:"displayBvid"`
	AddedAt     int64  `json:"addedAt"`
}
