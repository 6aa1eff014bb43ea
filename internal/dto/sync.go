package dto

import "github.com/noah-isme/bilishelf-api/internal/models"

// RemoteFolderListRequest lists the remote catalog for a credential.
type RemoteFolderListRequest struct {
	Cookie  string `json:"cookie"`
	Refresh bool   `json:"refresh"`
}

// SyncRequest bounds one synchronization run.
type SyncRequest struct {
	Cookie                  string  `json:"cookie"`
	SelectedRemoteFolderIDs []int64 `json:"selectedRemoteFolderIds" validate:"omitempty,max=200,dive,gt=0"`
	Offset                  int     `json:"offset" validate:"min=0"`
	StartPage               int     `json:"startPage" validate:"omitempty,min=1"`
	MaxFolders              int     `json:"maxFolders" validate:"omitempty,min=1,max=200"`
	MaxPagesPerFolder       int     `json:"maxPagesPerFolder" validate:"omitempty,min=1,max=200"`
	MaxVideosPerFolder      int     `json:"maxVideosPerFolder" validate:"omitempty,min=1,max=5000"`
	IncludeTagEnrichment    *bool   `json:"includeTagEnrichment"`
}

// Params converts the request; tag enrichment defaults to on.
func (r SyncRequest) Params() models.SyncParams {
	enrich := true
	if r.IncludeTagEnrichment != nil {
		enrich = *r.IncludeTagEnrichment
	}
	return models.SyncParams{
		Credential:              r.Cookie,
		SelectedRemoteFolderIDs: r.SelectedRemoteFolderIDs,
		Offset:                  r.Offset,
		StartPage:               r.StartPage,
		MaxFolders:              r.MaxFolders,
		MaxPagesPerFolder:       r.MaxPagesPerFolder,
		MaxVideosPerFolder:      r.MaxVideosPerFolder,
		IncludeTagEnrichment:    enrich,
	}
}

// SyncFolderListResponse wraps the remote catalog.
type SyncFolderListResponse struct {
	Items []models.RemoteFolder `json:"items"`
	Total int                   `json:"total"`
}
