package models

// Folder is a named bucket of videos, optionally linked to a remote favorites collection.
type Folder struct {
	ID                 int64  `db:"id" json:"id"`
	Name               string `db:"name" json:"name"`
	Description        string `db:"description" json:"description"`
	RemoteCollectionID *int64 `db:"remote_collection_id" json:"remoteCollectionId"`
	SortOrder          int    `db:"sort_order" json:"sortOrder"`
	DeletedAt          *int64 `db:"deleted_at" json:"deletedAt"`
	CreatedAt          int64  `db:"created_at" json:"createdAt"`
	UpdatedAt          int64  `db:"updated_at" json:"updatedAt"`
}

// Active reports whether the folder is outside the trash.
func (f *Folder) Active() bool {
	return f != nil && f.DeletedAt == nil
}

// FolderItem is the membership of a video in a folder.
type FolderItem struct {
	ID       int64 `db:"id" json:"id"`
	FolderID int64 `db:"folder_id" json:"folderId"`
	VideoID  int64 `db:"video_id" json:"videoId"`
	AddedAt  int64 `db:"added_at" json:"addedAt"`
}

// FolderFilter narrows folder queries.
type FolderFilter struct {
	IDs                []int64
	Name               string
	RemoteCollectionID *int64
	IncludeDeleted     bool
	OnlyDeleted        bool
}

// FolderItemFilter narrows membership queries.
type FolderItemFilter struct {
	FolderIDs []int64
	VideoIDs  []int64
}

// FolderWithCount decorates a folder with its membership count.
type FolderWithCount struct {
	Folder
	ItemCount int `db:"item_count" json:"itemCount"`
}
