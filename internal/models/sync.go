package models

// Sync bounds.
const (
	DefaultSyncMaxFolders         = 10
	MaxSyncFolders                = 200
	DefaultSyncMaxPagesPerFolder  = 5
	MaxSyncPagesPerFolder         = 200
	DefaultSyncMaxVideosPerFolder = 200
	MaxSyncVideosPerFolder        = 5000
	MaxReturnedSyncErrors         = 20
	SyncRunErrorFolder            = "__sync__"
)

// SyncParams bounds a single synchronization run.
type SyncParams struct {
	Credential              string
	SelectedRemoteFolderIDs []int64
	Offset                  int
	StartPage               int
	MaxFolders              int
	MaxPagesPerFolder       int
	MaxVideosPerFolder      int
	IncludeTagEnrichment    bool
}

// WithDefaults fills zero values and clamps caps.
func (p SyncParams) WithDefaults() SyncParams {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.StartPage < 1 {
		p.StartPage = 1
	}
	p.MaxFolders = clampCap(p.MaxFolders, DefaultSyncMaxFolders, MaxSyncFolders)
	p.MaxPagesPerFolder = clampCap(p.MaxPagesPerFolder, DefaultSyncMaxPagesPerFolder, MaxSyncPagesPerFolder)
	p.MaxVideosPerFolder = clampCap(p.MaxVideosPerFolder, DefaultSyncMaxVideosPerFolder, MaxSyncVideosPerFolder)
	return p
}

func clampCap(value, fallback, max int) int {
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

// RemoteFolder is one entry of the remote favorites catalog.
type RemoteFolder struct {
	RemoteID   int64  `json:"remoteId"`
	Title      string `json:"title"`
	MediaCount int    `json:"mediaCount"`
}

// SyncError records a per-folder failure.
type SyncError struct {
	Folder  string `json:"folder"`
	Message string `json:"message"`
}

// SyncSummary aggregates run counters.
type SyncSummary struct {
	FoldersDetected  int `json:"foldersDetected"`
	FoldersSynced    int `json:"foldersSynced"`
	VideosProcessed  int `json:"videosProcessed"`
	VideosUpserted   int `json:"videosUpserted"`
	FolderLinksAdded int `json:"folderLinksAdded"`
	TagsBound        int `json:"tagsBound"`
	ErrorCount       int `json:"errorCount"`
}

// SyncResult is the outcome of one run plus its resume cursor.
type SyncResult struct {
	Summary       SyncSummary `json:"summary"`
	HasMore       bool        `json:"hasMore"`
	NextOffset    *int        `json:"nextOffset"`
	HasMorePage   bool        `json:"hasMorePage"`
	NextPage      *int        `json:"nextPage"`
	RiskBlocked   bool        `json:"riskBlocked"`
	Errors        []SyncError `json:"errors"`
	ErrorsOmitted int         `json:"errorsOmitted"`
	SyncedAt      int64       `json:"syncedAt"`
}

// SyncJobStatus tracks background sync runs.
type SyncJobStatus string

const (
	SyncJobQueued    SyncJobStatus = "QUEUED"
	SyncJobRunning   SyncJobStatus = "RUNNING"
	SyncJobSucceeded SyncJobStatus = "SUCCEEDED"
	SyncJobFailed    SyncJobStatus = "FAILED"
)

// Sync job triggers.
const (
	SyncTriggerManual    = "manual"
	SyncTriggerScheduled = "scheduled"
)

// SyncJob is a queued sync run and its latest outcome.
type SyncJob struct {
	ID         string        `json:"id"`
	Trigger    string        `json:"trigger"`
	Status     SyncJobStatus `json:"status"`
	Attempts   int           `json:"attempts"`
	Result     *SyncResult   `json:"result,omitempty"`
	Error      string        `json:"error,omitempty"`
	EnqueuedAt int64         `json:"enqueuedAt"`
	StartedAt  *int64        `json:"startedAt,omitempty"`
	FinishedAt *int64        `json:"finishedAt,omitempty"`
}
