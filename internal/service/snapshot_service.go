package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/models"
	"github.com/noah-isme/bilishelf-api/internal/remote"
	"github.com/noah-isme/bilishelf-api/internal/repository"
	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
	"github.com/noah-isme/bilishelf-api/pkg/export"
)

const (
	snapshotSource   = "bilishelf"
	snapshotPDFTitle = "Bilishelf library"
	pipeSeparator    = "|"
)

var snapshotCSVHeaders = []string{
	"bvid", "title", "uploader", "uploaderSpaceUrl", "description", "coverUrl", "bvidUrl", "partition",
	"publishAt", "publishAtMs", "favoriteAt", "favoriteAtMs", "addedAt", "addedAtMs",
	"folders", "customTags", "systemTags", "isInvalid", "deletedAt",
}

var snapshotPDFHeaders = []string{"bvid", "title", "uploader", "partition", "publishAt", "favoriteAt", "folders", "customTags", "systemTags"}

var snapshotMimeTypes = map[models.SnapshotFormat]string{
	models.SnapshotFormatJSON: "application/json;charset=utf-8",
	models.SnapshotFormatCSV:  "text/csv;charset=utf-8",
	models.SnapshotFormatPDF:  "application/pdf",
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// SnapshotServiceConfig carries optional collaborators.
type SnapshotServiceConfig struct {
	Validator *validator.Validate
	Logger    *zap.Logger
	Now       func() int64
	CSV       csvRenderer
	PDF       pdfRenderer
}

// SnapshotService exports the library graph and merges snapshots back into it.
type SnapshotService struct {
	store     repository.Store
	resolver  *Resolver
	graph     *GraphMaintainer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() int64
	csv       csvRenderer
	pdf       pdfRenderer
}

// NewSnapshotService constructs the codec.
func NewSnapshotService(store repository.Store, cfg SnapshotServiceConfig) *SnapshotService {
	if cfg.Validator == nil {
		cfg.Validator = validator.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = nowMillis
	}
	if cfg.CSV == nil {
		cfg.CSV = export.NewCSVExporter()
	}
	if cfg.PDF == nil {
		cfg.PDF = export.NewPDFExporter()
	}
	return &SnapshotService{
		store:     store,
		resolver:  NewResolver(cfg.Now),
		graph:     NewGraphMaintainer(cfg.Now),
		validator: cfg.Validator,
		logger:    cfg.Logger,
		now:       cfg.Now,
		csv:       cfg.CSV,
		pdf:       cfg.PDF,
	}
}

type snapshotMeta struct {
	Version        string `json:"version"`
	ExportedAt     int64  `json:"exportedAt"`
	ExportedAtText string `json:"exportedAtText"`
	Source         string `json:"source"`
}

type snapshotVideo struct {
	models.Video
	PublishAtText  string `json:"publishAtText"`
	FavoriteAt     *int64 `json:"favoriteAt"`
	FavoriteAtText string `json:"favoriteAtText"`
}

type snapshotFolderItem struct {
	models.FolderItem
	AddedAtText string `json:"addedAtText"`
}

type snapshotDocument struct {
	Meta        snapshotMeta         `json:"meta"`
	Folders     []models.Folder      `json:"folders"`
	Videos      []snapshotVideo      `json:"videos"`
	FolderItems []snapshotFolderItem `json:"folderItems"`
	Tags        []models.Tag         `json:"tags"`
	VideoTags   []models.VideoTag    `json:"videoTags"`
}

// Export renders the whole library, trash included, in the given format.
func (s *SnapshotService) Export(ctx context.Context, query dto.ExportQuery) (*models.Snapshot, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Validation(err, "invalid export format")
	}
	format := models.SnapshotFormat(query.Format)
	if format == "" {
		format = models.SnapshotFormatJSON
	}

	graph, err := s.loadGraph(ctx)
	if err != nil {
		return nil, storeError(err, "")
	}
	now := s.now()

	var content []byte
	switch format {
	case models.SnapshotFormatJSON:
		content, err = json.MarshalIndent(buildDocument(graph, now), "", "  ")
	case models.SnapshotFormatCSV:
		content, err = s.csv.Render(projectRows(graph, snapshotCSVHeaders))
	case models.SnapshotFormatPDF:
		content, err = s.pdf.Render(projectRows(graph, snapshotPDFHeaders), snapshotPDFTitle)
	}
	if err != nil {
		return nil, appErrors.Internal(err, "render snapshot failed")
	}

	return &models.Snapshot{
		Format:   format,
		Filename: SnapshotFilename(format, now),
		MimeType: snapshotMimeTypes[format],
		Content:  content,
		Summary: models.SnapshotSummary{
			Folders: len(graph.Folders),
			Videos:  len(graph.Videos),
			Tags:    len(graph.Tags),
		},
	}, nil
}

// SnapshotFilename names an export file after its format and creation time.
func SnapshotFilename(format models.SnapshotFormat, at int64) string {
	stamp := time.UnixMilli(at).UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return fmt.Sprintf("bilishelf-export-%s.%s", stamp, format)
}

func (s *SnapshotService) loadGraph(ctx context.Context) (*models.LibraryGraph, error) {
	folders, err := s.store.FindFolders(ctx, models.FolderFilter{IncludeDeleted: true})
	if err != nil {
		return nil, err
	}
	videos, err := s.store.FindVideos(ctx, models.VideoFilter{IncludeDeleted: true})
	if err != nil {
		return nil, err
	}
	items, err := s.store.FindFolderItems(ctx, models.FolderItemFilter{})
	if err != nil {
		return nil, err
	}
	tags, err := s.store.FindTags(ctx, models.TagFilter{IncludeArchived: true})
	if err != nil {
		return nil, err
	}
	bindings, err := s.store.FindVideoTags(ctx, models.VideoTagFilter{})
	if err != nil {
		return nil, err
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].ID < folders[j].ID })
	sort.Slice(videos, func(i, j int) bool { return videos[i].ID < videos[j].ID })
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })
	sort.Slice(bindings, func(i, j int) bool { return bindings[i].ID < bindings[j].ID })
	return &models.LibraryGraph{Folders: folders, Videos: videos, FolderItems: items, Tags: tags, VideoTags: bindings}, nil
}

func latestAddedAt(items []models.FolderItem) map[int64]int64 {
	latest := make(map[int64]int64, len(items))
	for _, item := range items {
		if item.AddedAt > latest[item.VideoID] {
			latest[item.VideoID] = item.AddedAt
		}
	}
	return latest
}

func buildDocument(graph *models.LibraryGraph, now int64) snapshotDocument {
	latest := latestAddedAt(graph.FolderItems)
	doc := snapshotDocument{
		Meta: snapshotMeta{
			Version:        models.SnapshotVersion,
			ExportedAt:     now,
			ExportedAtText: remote.FormatTimestamp(&now),
			Source:         snapshotSource,
		},
		Folders:     nonNil(graph.Folders),
		Videos:      make([]snapshotVideo, 0, len(graph.Videos)),
		FolderItems: make([]snapshotFolderItem, 0, len(graph.FolderItems)),
		Tags:        nonNil(graph.Tags),
		VideoTags:   nonNil(graph.VideoTags),
	}
	for _, video := range graph.Videos {
		row := snapshotVideo{Video: video, PublishAtText: remote.FormatTimestamp(video.PublishAt)}
		if at, ok := latest[video.ID]; ok {
			at := at
			row.FavoriteAt = &at
			row.FavoriteAtText = remote.FormatTimestamp(&at)
		}
		doc.Videos = append(doc.Videos, row)
	}
	for _, item := range graph.FolderItems {
		at := item.AddedAt
		doc.FolderItems = append(doc.FolderItems, snapshotFolderItem{FolderItem: item, AddedAtText: remote.FormatTimestamp(&at)})
	}
	return doc
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}

// projectRows denormalizes the graph into one row per video.
func projectRows(graph *models.LibraryGraph, headers []string) export.Dataset {
	folderNames := make(map[int64]string, len(graph.Folders))
	for _, folder := range graph.Folders {
		folderNames[folder.ID] = folder.Name
	}
	tagsByID := make(map[int64]models.Tag, len(graph.Tags))
	for _, tag := range graph.Tags {
		tagsByID[tag.ID] = tag
	}
	latest := latestAddedAt(graph.FolderItems)

	foldersOf := map[int64][]string{}
	for _, item := range graph.FolderItems {
		if name, ok := folderNames[item.FolderID]; ok {
			foldersOf[item.VideoID] = appendUnique(foldersOf[item.VideoID], name)
		}
	}
	customOf, systemOf := map[int64][]string{}, map[int64][]string{}
	for _, binding := range graph.VideoTags {
		tag, ok := tagsByID[binding.TagID]
		if !ok {
			continue
		}
		if tag.Type == models.TagTypeCustom {
			customOf[binding.VideoID] = appendUnique(customOf[binding.VideoID], tag.Name)
		} else {
			systemOf[binding.VideoID] = appendUnique(systemOf[binding.VideoID], tag.Name)
		}
	}

	data := export.Dataset{Headers: headers, Rows: make([]map[string]string, 0, len(graph.Videos))}
	for _, video := range graph.Videos {
		favoriteText, favoriteMs := "", ""
		if at, ok := latest[video.ID]; ok {
			favoriteText = remote.FormatTimestamp(&at)
			favoriteMs = strconv.FormatInt(at, 10)
		}
		row := map[string]string{
			"bvid":         video.BVID,
			"title":        video.Title,
			"uploader":     video.Uploader,
			"description":  video.Description,
			"coverUrl":     video.CoverURL,
			"bvidUrl":      video.CanonicalURL,
			"partition":    video.Partition,
			"publishAt":    remote.FormatTimestamp(video.PublishAt),
			"publishAtMs":  optionalMillis(video.PublishAt),
			"favoriteAt":   favoriteText,
			"favoriteAtMs": favoriteMs,
			"addedAt":      favoriteText,
			"addedAtMs":    favoriteMs,
			"folders":      strings.Join(foldersOf[video.ID], pipeSeparator),
			"customTags":   strings.Join(customOf[video.ID], pipeSeparator),
			"systemTags":   strings.Join(systemOf[video.ID], pipeSeparator),
			"isInvalid":    "0",
			"deletedAt":    optionalMillis(video.DeletedAt),
		}
		if video.UploaderSpaceURL != nil {
			row["uploaderSpaceUrl"] = *video.UploaderSpaceURL
		}
		if video.IsInvalid {
			row["isInvalid"] = "1"
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

func optionalMillis(ms *int64) string {
	if ms == nil {
		return ""
	}
	return strconv.FormatInt(*ms, 10)
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

// importFolder names a target folder. Trashed marks a folder the snapshot
// holds in the trash, which import must not restore.
type importFolder struct {
	Name    string
	AddedAt int64
	Trashed bool
}

type importTag struct {
	Name     string
	Type     models.TagType
	Archived bool
}

type importRow struct {
	Candidate models.VideoCandidate
	Folders   []importFolder
	Tags      []importTag
}

// Import merges a JSON or CSV snapshot into the library. Rows missing a bvid
// or title are skipped; nothing is ever removed.
func (s *SnapshotService) Import(ctx context.Context, req dto.ImportRequest) (*models.ImportSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid import payload")
	}

	var (
		rows    []importRow
		skipped int
		err     error
	)
	switch models.SnapshotFormat(req.Format) {
	case models.SnapshotFormatJSON:
		rows, skipped, err = parseJSONSnapshot(req.Content, s.now())
	case models.SnapshotFormatCSV:
		rows, skipped, err = parseCSVSnapshot(req.Content, s.now())
	}
	if err != nil {
		return nil, appErrors.Validation(err, "unreadable snapshot")
	}

	summary := &models.ImportSummary{RowsSkipped: skipped}
	for _, row := range rows {
		var rowSummary models.ImportSummary
		err := s.store.Transaction(ctx, func(ctx context.Context, w repository.Writer) error {
			rowSummary = models.ImportSummary{}
			return s.importRow(ctx, w, row, &rowSummary)
		})
		if err != nil {
			s.logger.Warn("import row skipped", zap.String("bvid", row.Candidate.BVID), zap.Error(err))
			summary.RowsSkipped++
			continue
		}
		summary.VideosUpserted += rowSummary.VideosUpserted
		summary.FolderLinksAdded += rowSummary.FolderLinksAdded
		summary.TagsBound += rowSummary.TagsBound
		summary.FoldersCreated += rowSummary.FoldersCreated
		summary.TagsCreated += rowSummary.TagsCreated
	}
	s.logger.Info("snapshot imported",
		zap.String("format", req.Format),
		zap.Int("videos", summary.VideosUpserted),
		zap.Int("skipped", summary.RowsSkipped),
	)
	return summary, nil
}

func (s *SnapshotService) importRow(ctx context.Context, w repository.Writer, row importRow, summary *models.ImportSummary) error {
	video, _, err := s.resolver.ResolveVideo(ctx, w, row.Candidate)
	if err != nil {
		return err
	}
	summary.VideosUpserted++

	for _, target := range row.Folders {
		folder, created, err := s.importFolder(ctx, w, target)
		if err != nil {
			return err
		}
		if created {
			summary.FoldersCreated++
		}
		added, err := s.graph.AddMembership(ctx, w, folder.ID, video.ID, target.AddedAt)
		if err != nil {
			return err
		}
		if added {
			summary.FolderLinksAdded++
		}
	}

	for _, target := range row.Tags {
		tag, created, err := s.importTag(ctx, w, target)
		if err != nil {
			return err
		}
		if tag == nil {
			continue
		}
		if created {
			summary.TagsCreated++
		}
		bound, err := s.graph.BindTag(ctx, w, video.ID, tag.ID)
		if err != nil {
			return err
		}
		if bound {
			summary.TagsBound++
		}
	}

	_, err = s.graph.EnforceOrphanRule(ctx, w, video.ID)
	return err
}

func (s *SnapshotService) importFolder(ctx context.Context, w repository.Writer, target importFolder) (*models.Folder, bool, error) {
	if !target.Trashed {
		return s.resolver.ResolveFolderByName(ctx, w, target.Name, importedFolderDescription)
	}
	named, err := w.FindFolders(ctx, models.FolderFilter{Name: target.Name, IncludeDeleted: true})
	if err != nil {
		return nil, false, err
	}
	if folder := preferActiveFolder(named); folder != nil {
		return folder, false, nil
	}
	now := s.now()
	folder := &models.Folder{
		Name:        target.Name,
		Description: importedFolderDescription,
		DeletedAt:   &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := w.UpsertFolder(ctx, folder); err != nil {
		return nil, false, err
	}
	return folder, true, nil
}

// importTag reuses a tag with the same name and type as it stands, archived or
// not, before creating one.
func (s *SnapshotService) importTag(ctx context.Context, w repository.Writer, target importTag) (*models.Tag, bool, error) {
	existing, err := w.FindTags(ctx, models.TagFilter{Name: target.Name, Type: target.Type, IncludeArchived: true})
	if err != nil {
		return nil, false, err
	}
	if len(existing) > 0 {
		for i := range existing {
			if existing[i].ArchivedAt == nil {
				return &existing[i], false, nil
			}
		}
		return &existing[0], false, nil
	}
	tag, created, err := s.resolver.ResolveTag(ctx, w, target.Name, target.Type)
	if err != nil || tag == nil || !created || !target.Archived {
		return tag, created, err
	}
	now := s.now()
	tag.ArchivedAt = &now
	return tag, created, w.UpsertTag(ctx, tag)
}

type rawVideoFields struct {
	BVID             string
	Title            string
	CoverURL         string
	Uploader         string
	UploaderSpaceURL string
	Description      string
	Partition        string
	PublishAt        *int64
	CanonicalURL     string
	IsInvalid        bool
	Deleted          bool
}

// buildCandidate normalizes snapshot fields; ok is false when the row lacks a
// bvid, a title or a derivable canonical URL.
func buildCandidate(raw rawVideoFields) (models.VideoCandidate, bool) {
	bvid := remote.NormalizeText(raw.BVID)
	title := remote.NormalizeText(raw.Title)
	link := remote.NormalizeVideoURL(raw.CanonicalURL, bvid)
	if bvid == "" || title == "" || link == "" {
		return models.VideoCandidate{}, false
	}
	uploader := remote.NormalizeText(raw.Uploader)
	if uploader == "" {
		uploader = remote.DefaultUploader
	}
	partition := remote.NormalizeText(raw.Partition)
	if partition == "" {
		partition = remote.DefaultPartition
	}
	return models.VideoCandidate{
		BVID:             bvid,
		Title:            title,
		CoverURL:         remote.NormalizeCoverURL(raw.CoverURL),
		Uploader:         uploader,
		UploaderSpaceURL: remote.NormalizeSpaceURL(raw.UploaderSpaceURL, ""),
		Description:      remote.NormalizeText(raw.Description),
		Partition:        partition,
		PublishAt:        raw.PublishAt,
		CanonicalURL:     link,
		IsInvalid:        raw.IsInvalid,
		KeepDeleted:      raw.Deleted,
	}, true
}

type jsonSnapshotFolder struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	DeletedAt json.RawMessage `json:"deletedAt"`
}

type jsonSnapshotVideo struct {
	ID               int64           `json:"id"`
	BVID             string          `json:"bvid"`
	Title            string          `json:"title"`
	CoverURL         string          `json:"coverUrl"`
	Uploader         string          `json:"uploader"`
	UploaderSpaceURL *string         `json:"uploaderSpaceUrl"`
	UploaderURL      string          `json:"uploaderUrl"`
	Description      string          `json:"description"`
	Partition        string          `json:"partition"`
	PublishAt        json.RawMessage `json:"publishAt"`
	PublishAtText    string          `json:"publishAtText"`
	BVIDURL          string          `json:"bvidUrl"`
	IsInvalid        bool            `json:"isInvalid"`
	FavoriteAt       json.RawMessage `json:"favoriteAt"`
	FavoriteAtText   string          `json:"favoriteAtText"`
	AddedAt          json.RawMessage `json:"addedAt"`
	AddedAtText      string          `json:"addedAtText"`
	DeletedAt        json.RawMessage `json:"deletedAt"`
}

type jsonSnapshotItem struct {
	FolderID    int64           `json:"folderId"`
	VideoID     int64           `json:"videoId"`
	AddedAt     json.RawMessage `json:"addedAt"`
	AddedAtText string          `json:"addedAtText"`
}

type jsonSnapshotTag struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	ArchivedAt json.RawMessage `json:"archivedAt"`
}

type jsonSnapshotBinding struct {
	VideoID int64 `json:"videoId"`
	TagID   int64 `json:"tagId"`
}

type jsonSnapshot struct {
	Folders     []jsonSnapshotFolder  `json:"folders"`
	Videos      []jsonSnapshotVideo   `json:"videos"`
	FolderItems []jsonSnapshotItem    `json:"folderItems"`
	Tags        []jsonSnapshotTag     `json:"tags"`
	VideoTags   []jsonSnapshotBinding `json:"videoTags"`
}

// firstTimestamp returns the first parseable timestamp among raw JSON values and text fallbacks.
func firstTimestamp(raws []json.RawMessage, texts ...string) *int64 {
	for _, raw := range raws {
		if ms := remote.ParseRawTimestamp(raw); ms != nil {
			return ms
		}
	}
	for _, text := range texts {
		if ms := remote.ParseTimestamp(text); ms != nil && *ms > 0 {
			return ms
		}
	}
	return nil
}

// parseJSONSnapshot maps the snapshot's own id space onto natural keys.
func parseJSONSnapshot(content string, now int64) ([]importRow, int, error) {
	var doc jsonSnapshot
	if err := json.Unmarshal([]byte(strings.TrimPrefix(content, export.ByteOrderMark)), &doc); err != nil {
		return nil, 0, fmt.Errorf("decode json snapshot: %w", err)
	}

	folderByID := make(map[int64]jsonSnapshotFolder, len(doc.Folders))
	for _, folder := range doc.Folders {
		folder.Name = remote.NormalizeText(folder.Name)
		if folder.ID > 0 && folder.Name != "" {
			folderByID[folder.ID] = folder
		}
	}
	tagByID := make(map[int64]importTag, len(doc.Tags))
	for _, tag := range doc.Tags {
		name := remote.NormalizeText(tag.Name)
		if tag.ID <= 0 || name == "" {
			continue
		}
		tagType := models.TagTypeCustom
		if tag.Type == string(models.TagTypeSystem) {
			tagType = models.TagTypeSystem
		}
		tagByID[tag.ID] = importTag{Name: name, Type: tagType, Archived: remote.ParseRawTimestamp(tag.ArchivedAt) != nil}
	}

	foldersOf := map[int64][]importFolder{}
	for _, item := range doc.FolderItems {
		folder, ok := folderByID[item.FolderID]
		if item.VideoID <= 0 || !ok {
			continue
		}
		addedAt := now
		if ms := firstTimestamp([]json.RawMessage{item.AddedAt}, item.AddedAtText); ms != nil {
			addedAt = *ms
		}
		foldersOf[item.VideoID] = mergeImportFolder(foldersOf[item.VideoID], importFolder{
			Name:    folder.Name,
			AddedAt: addedAt,
			Trashed: remote.ParseRawTimestamp(folder.DeletedAt) != nil,
		})
	}
	tagsOf := map[int64][]importTag{}
	for _, binding := range doc.VideoTags {
		tag, ok := tagByID[binding.TagID]
		if binding.VideoID <= 0 || !ok {
			continue
		}
		tagsOf[binding.VideoID] = mergeImportTag(tagsOf[binding.VideoID], tag)
	}

	rows := make([]importRow, 0, len(doc.Videos))
	skipped := 0
	for _, video := range doc.Videos {
		spaceURL := video.UploaderURL
		if video.UploaderSpaceURL != nil && *video.UploaderSpaceURL != "" {
			spaceURL = *video.UploaderSpaceURL
		}
		candidate, ok := buildCandidate(rawVideoFields{
			BVID:             video.BVID,
			Title:            video.Title,
			CoverURL:         video.CoverURL,
			Uploader:         video.Uploader,
			UploaderSpaceURL: spaceURL,
			Description:      video.Description,
			Partition:        video.Partition,
			PublishAt:        firstTimestamp([]json.RawMessage{video.PublishAt}, video.PublishAtText),
			CanonicalURL:     video.BVIDURL,
			IsInvalid:        video.IsInvalid,
			Deleted:          remote.ParseRawTimestamp(video.DeletedAt) != nil,
		})
		if !ok {
			skipped++
			continue
		}
		folders := foldersOf[video.ID]
		if video.ID <= 0 {
			folders = nil
		}
		if len(folders) == 0 && !candidate.KeepDeleted {
			addedAt := now
			if ms := firstTimestamp([]json.RawMessage{video.FavoriteAt, video.AddedAt}, video.FavoriteAtText, video.AddedAtText); ms != nil {
				addedAt = *ms
			}
			folders = []importFolder{{Name: DefaultImportFolder, AddedAt: addedAt}}
		}
		var tags []importTag
		if video.ID > 0 {
			tags = tagsOf[video.ID]
		}
		rows = append(rows, importRow{Candidate: candidate, Folders: folders, Tags: tags})
	}
	return rows, skipped, nil
}

func mergeImportFolder(list []importFolder, folder importFolder) []importFolder {
	for i := range list {
		if strings.EqualFold(list[i].Name, folder.Name) {
			if folder.AddedAt > list[i].AddedAt {
				list[i].AddedAt = folder.AddedAt
			}
			return list
		}
	}
	return append(list, folder)
}

func mergeImportTag(list []importTag, tag importTag) []importTag {
	for _, existing := range list {
		if existing.Type == tag.Type && strings.EqualFold(existing.Name, tag.Name) {
			return list
		}
	}
	return append(list, tag)
}

func parseCSVSnapshot(content string, now int64) ([]importRow, int, error) {
	header, records, err := export.ParseCSV(content)
	if err != nil {
		return nil, 0, err
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[remote.NormalizeText(name)] = i
	}
	pick := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}
	firstOf := func(record []string, names ...string) string {
		for _, name := range names {
			if value := remote.NormalizeText(pick(record, name)); value != "" {
				return value
			}
		}
		return ""
	}

	rows := make([]importRow, 0, len(records))
	skipped := 0
	for _, record := range records {
		candidate, ok := buildCandidate(rawVideoFields{
			BVID:             pick(record, "bvid"),
			Title:            pick(record, "title"),
			CoverURL:         pick(record, "coverUrl"),
			Uploader:         pick(record, "uploader"),
			UploaderSpaceURL: pick(record, "uploaderSpaceUrl"),
			Description:      pick(record, "description"),
			Partition:        pick(record, "partition"),
			PublishAt:        positive(remote.ParseTimestamp(firstOf(record, "publishAtMs", "publishAt"))),
			CanonicalURL:     pick(record, "bvidUrl"),
			IsInvalid:        remote.NormalizeText(pick(record, "isInvalid")) == "1",
			Deleted:          remote.NormalizeText(pick(record, "deletedAt")) != "",
		})
		if !ok {
			skipped++
			continue
		}
		addedAt := now
		if ms := positive(remote.ParseTimestamp(firstOf(record, "favoriteAtMs", "favoriteAt", "addedAtMs", "addedAt"))); ms != nil {
			addedAt = *ms
		}
		row := importRow{Candidate: candidate}
		for _, name := range parsePipeList(pick(record, "folders")) {
			row.Folders = mergeImportFolder(row.Folders, importFolder{Name: name, AddedAt: addedAt})
		}
		if len(row.Folders) == 0 && !candidate.KeepDeleted {
			row.Folders = []importFolder{{Name: DefaultImportFolder, AddedAt: addedAt}}
		}
		for _, name := range parsePipeList(pick(record, "customTags")) {
			row.Tags = mergeImportTag(row.Tags, importTag{Name: name, Type: models.TagTypeCustom})
		}
		for _, name := range parsePipeList(pick(record, "systemTags")) {
			row.Tags = mergeImportTag(row.Tags, importTag{Name: name, Type: models.TagTypeSystem})
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

func parsePipeList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, pipeSeparator) {
		if name := remote.NormalizeText(part); name != "" {
			out = appendUnique(out, name)
		}
	}
	return out
}

func positive(ms *int64) *int64 {
	if ms == nil || *ms <= 0 {
		return nil
	}
	return ms
}
