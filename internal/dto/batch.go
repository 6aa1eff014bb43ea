package dto

// Batch delete modes.
const (
	DeleteModeFolderOnly = "folderOnly"
	DeleteModeGlobal     = "global"
)

// BatchMoveRequest moves videos between folders.
type BatchMoveRequest struct {
	VideoIDs       []int64 `json:"videoIds" validate:"required,min=1,max=5000,dive,gt=0"`
	SourceFolderID int64   `json:"sourceFolderId" validate:"required,gt=0"`
	TargetFolderID int64   `json:"targetFolderId" validate:"required,gt=0,nefield=SourceFolderID"`
}

// BatchCopyRequest copies videos into a folder as distinct identities.
type BatchCopyRequest struct {
	VideoIDs       []int64 `json:"videoIds" validate:"required,min=1,max=5000,dive,gt=0"`
	TargetFolderID int64   `json:"targetFolderId" validate:"required,gt=0"`
}

// BatchDeleteRequest removes videos from one folder or from the library.
type BatchDeleteRequest struct {
	VideoIDs []int64 `json:"videoIds" validate:"required,min=1,max=5000,dive,gt=0"`
	Mode     string  `json:"mode" validate:"required,oneof=folderOnly global"`
	FolderID int64   `json:"folderId" validate:"required_if=Mode folderOnly,gte=0"`
}

// BatchResult counts the effect of a batch mutation.
type BatchResult struct {
	Requested       int     `json:"requested"`
	Affected        int     `json:"affected"`
	Skipped         int     `json:"skipped"`
	CreatedVideoIDs []int64 `json:"createdVideoIds,omitempty"`
	SoftDeleted     int     `json:"softDeleted"`
}
