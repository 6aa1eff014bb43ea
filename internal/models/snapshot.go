package models

// SnapshotFormat names a snapshot projection.
type SnapshotFormat string

const (
	SnapshotFormatJSON SnapshotFormat = "json"
	SnapshotFormatCSV  SnapshotFormat = "csv"
	SnapshotFormatPDF  SnapshotFormat = "pdf"
)

// SnapshotVersion is written into the JSON meta block.
const SnapshotVersion = "v1"

// Snapshot is a rendered export.
type Snapshot struct {
	Format   SnapshotFormat  `json:"format"`
	Filename string          `json:"filename"`
	MimeType string          `json:"mimeType"`
	Content  []byte          `json:"-"`
	Summary  SnapshotSummary `json:"summary"`
}

// SnapshotSummary counts exported entities.
type SnapshotSummary struct {
	Folders int `json:"folders"`
	Videos  int `json:"videos"`
	Tags    int `json:"tags"`
}

// ImportSummary counts the effect of an import.
type ImportSummary struct {
	VideosUpserted   int `json:"videosUpserted"`
	FolderLinksAdded int `json:"folderLinksAdded"`
	TagsBound        int `json:"tagsBound"`
	FoldersCreated   int `json:"foldersCreated"`
	TagsCreated      int `json:"tagsCreated"`
	RowsSkipped      int `json:"rowsSkipped"`
}

// LibraryGraph is the full normalized entity graph.
type LibraryGraph struct {
	Folders     []Folder
	Videos      []Video
	FolderItems []FolderItem
	Tags        []Tag
	VideoTags   []VideoTag
}

// SnapshotFile is a rendered snapshot kept on disk behind a signed download URL.
type SnapshotFile struct {
	ID        string          `json:"id"`
	Format    SnapshotFormat  `json:"format"`
	Filename  string          `json:"filename"`
	MimeType  string          `json:"mimeType"`
	URL       string          `json:"url"`
	ExpiresAt int64           `json:"expiresAt"`
	Summary   SnapshotSummary `json:"summary"`
}
