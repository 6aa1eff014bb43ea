package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/models"
	"github.com/noah-isme/bilishelf-api/internal/repository"
	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
)

// TagServiceConfig carries optional collaborators.
type TagServiceConfig struct {
	Validator *validator.Validate
	Logger    *zap.Logger
	Now       func() int64
}

// TagService manages the tag vocabulary.
type TagService struct {
	store     repository.Store
	validator *validator.Validate
	logger    *zap.Logger
	now       func() int64
}

// NewTagService constructs the service.
func NewTagService(store repository.Store, cfg TagServiceConfig) *TagService {
	if cfg.Validator == nil {
		cfg.Validator = validator.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = nowMillis
	}
	return &TagService{store: store, validator: cfg.Validator, logger: cfg.Logger, now: cfg.Now}
}

// List returns tags sorted by type then name.
func (s *TagService) List(ctx context.Context, query dto.ListTagsQuery) ([]models.Tag, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Validation(err, "invalid tag filter")
	}
	tags, err := s.store.FindTags(ctx, models.TagFilter{Type: models.TagType(query.Type), IncludeArchived: query.IncludeArchived})
	if err != nil {
		return nil, storeError(err, "")
	}
	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].Type != tags[j].Type {
			return tags[i].Type < tags[j].Type
		}
		return strings.ToLower(tags[i].Name) < strings.ToLower(tags[j].Name)
	})
	return tags, nil
}

// Create returns the tag with the given name, un-archiving or retyping an
// existing one before inserting a new row. Type defaults to custom.
func (s *TagService) Create(ctx context.Context, req dto.CreateTagRequest) (*models.Tag, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid tag payload")
	}
	name := strings.TrimSpace(req.Name)
	tagType := models.TagType(req.Type)
	if tagType == "" {
		tagType = models.TagTypeCustom
	}
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tag name is required")
	}
	if tagType == models.TagTypeSystem && models.IsReservedTagName(name) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%q is reserved", name))
	}

	var tag *models.Tag
	err := s.store.Transaction(ctx, func(ctx context.Context, w repository.Writer) error {
		existing, err := w.FindTags(ctx, models.TagFilter{Name: name, IncludeArchived: true})
		if err != nil {
			return err
		}
		tag = pickTag(existing, tagType)
		if tag == nil {
			tag = &models.Tag{Name: name, Type: tagType, CreatedAt: s.now()}
			return w.UpsertTag(ctx, tag)
		}
		if tag.Type == tagType && tag.ArchivedAt == nil {
			return nil
		}
		tag.Type = tagType
		tag.ArchivedAt = nil
		return w.UpsertTag(ctx, tag)
	})
	if err != nil {
		return nil, storeError(err, "tag not found")
	}
	return tag, nil
}

// pickTag prefers an active tag of the wanted type, then an archived one of
// that type, then any archived tag of another type.
func pickTag(tags []models.Tag, tagType models.TagType) *models.Tag {
	var archivedSame, archivedOther *models.Tag
	for i := range tags {
		tag := &tags[i]
		switch {
		case tag.Type == tagType && tag.ArchivedAt == nil:
			return tag
		case tag.Type == tagType && archivedSame == nil:
			archivedSame = tag
		case tag.ArchivedAt != nil && archivedOther == nil:
			archivedOther = tag
		}
	}
	if archivedSame != nil {
		return archivedSame
	}
	return archivedOther
}

// Rename changes a custom tag's name.
func (s *TagService) Rename(ctx context.Context, id int64, req dto.RenameTagRequest) (*models.Tag, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid tag payload")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tag name is required")
	}

	var tag *models.Tag
	err := s.store.Transaction(ctx, func(ctx context.Context, w repository.Writer) error {
		var err error
		if tag, err = customTag(ctx, w, id); err != nil {
			return err
		}
		clash, err := w.FindTags(ctx, models.TagFilter{Name: name, Type: models.TagTypeCustom})
		if err != nil {
			return err
		}
		for _, other := range clash {
			if other.ID != tag.ID {
				return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("tag %q already exists", name))
			}
		}
		tag.Name = name
		return w.UpsertTag(ctx, tag)
	})
	if err != nil {
		return nil, storeError(err, "tag not found")
	}
	return tag, nil
}

// Archive hides a custom tag from listings. Its bindings stay in place.
func (s *TagService) Archive(ctx context.Context, id int64) (*models.Tag, error) {
	var tag *models.Tag
	err := s.store.Transaction(ctx, func(ctx context.Context, w repository.Writer) error {
		var err error
		if tag, err = customTag(ctx, w, id); err != nil {
			return err
		}
		if tag.ArchivedAt != nil {
			return nil
		}
		now := s.now()
		tag.ArchivedAt = &now
		return w.UpsertTag(ctx, tag)
	})
	if err != nil {
		return nil, storeError(err, "tag not found")
	}
	return tag, nil
}

func customTag(ctx context.Context, r repository.Reader, id int64) (*models.Tag, error) {
	tag, err := r.GetTag(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("tag %d not found", id))
		}
		return nil, err
	}
	if tag.Type != models.TagTypeCustom {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only custom tags can be changed")
	}
	return tag, nil
}
