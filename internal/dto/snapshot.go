package dto

// ExportQuery selects a snapshot projection.
type ExportQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=json csv pdf"`
}

// ImportRequest carries a snapshot to merge into the library.
type ImportRequest struct {
	Format  string `json:"format" validate:"required,oneof=json csv"`
	Content string `json:"content" validate:"required"`
}

// CreateExportFileRequest renders a snapshot into a downloadable file.
type CreateExportFileRequest struct {
	Format string `json:"format" validate:"required,oneof=json csv pdf"`
}
