package dto

// CreateFolderRequest creates or restores a folder by name.
type CreateFolderRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateFolderRequest renames or re-describes a folder.
type UpdateFolderRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// ReorderFoldersRequest lists folder ids in their new order; unlisted folders follow.
type ReorderFoldersRequest struct {
	FolderIDs []int64 `json:"folderIds" validate:"required,min=1,dive,gt=0"`
}

// RestoreFolderRequest restores a trashed folder.
type RestoreFolderRequest struct {
	RestoreVideos bool `json:"restoreVideos"`
}

// ListQuery paginates list endpoints.
type ListQuery struct {
	Page     int `form:"page" validate:"omitempty,min=1"`
	PageSize int `form:"page_size" validate:"omitempty,min=1,max=200"`
}

// ListTagsQuery filters tag listings.
type ListTagsQuery struct {
	Type            string `form:"type" validate:"omitempty,oneof=system custom"`
	IncludeArchived bool   `form:"include_archived"`
}

// CreateTagRequest creates or un-archives a tag.
type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=80"`
	Type string `json:"type" validate:"omitempty,oneof=system custom"`
}

// RenameTagRequest renames a custom tag.
type RenameTagRequest struct {
	Name string `json:"name" validate:"required,max=80"`
}

// SetVideoTagsRequest replaces a video's tag sets; a nil list leaves that type untouched.
type SetVideoTagsRequest struct {
	CustomTags []string `json:"customTags" validate:"omitempty,max=100,dive,max=80"`
	SystemTags []string `json:"systemTags" validate:"omitempty,max=100,dive,max=80"`
}
