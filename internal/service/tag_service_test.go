package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/models"
	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
)

func TestTagServiceCreateIsIdempotent(t *testing.T) {
	svc := NewTagService(newMemoryStore(t), TagServiceConfig{})
	ctx := context.Background()

	first, err := svc.Create(ctx, dto.CreateTagRequest{Name: "Favorites"})
	require.NoError(t, err)
	assert.Equal(t, models.TagTypeCustom, first.Type)

	again, err := svc.Create(ctx, dto.CreateTagRequest{Name: "favorites", Type: "custom"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestTagServiceRejectsReservedSystemName(t *testing.T) {
	svc := NewTagService(newMemoryStore(t), TagServiceConfig{})

	_, err := svc.Create(context.Background(), dto.CreateTagRequest{Name: "未分类", Type: "system"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	tag, err := svc.Create(context.Background(), dto.CreateTagRequest{Name: "uncategorized", Type: "custom"})
	require.NoError(t, err)
	assert.Equal(t, models.TagTypeCustom, tag.Type)
}

func TestTagServiceArchiveAndUnarchive(t *testing.T) {
	svc := NewTagService(newMemoryStore(t), TagServiceConfig{})
	ctx := context.Background()

	tag, err := svc.Create(ctx, dto.CreateTagRequest{Name: "Later"})
	require.NoError(t, err)
	archived, err := svc.Archive(ctx, tag.ID)
	require.NoError(t, err)
	require.NotNil(t, archived.ArchivedAt)

	listed, err := svc.List(ctx, dto.ListTagsQuery{})
	require.NoError(t, err)
	assert.Empty(t, listed)
	listed, err = svc.List(ctx, dto.ListTagsQuery{IncludeArchived: true})
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	back, err := svc.Create(ctx, dto.CreateTagRequest{Name: "later"})
	require.NoError(t, err)
	assert.Equal(t, tag.ID, back.ID)
	assert.Nil(t, back.ArchivedAt)
}

func TestTagServiceRetypesArchivedTag(t *testing.T) {
	svc := NewTagService(newMemoryStore(t), TagServiceConfig{})
	ctx := context.Background()

	tag, err := svc.Create(ctx, dto.CreateTagRequest{Name: "Music"})
	require.NoError(t, err)
	_, err = svc.Archive(ctx, tag.ID)
	require.NoError(t, err)

	system, err := svc.Create(ctx, dto.CreateTagRequest{Name: "Music", Type: "system"})
	require.NoError(t, err)
	assert.Equal(t, tag.ID, system.ID)
	assert.Equal(t, models.TagTypeSystem, system.Type)

	_, err = svc.Archive(ctx, system.ID)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestTagServiceRename(t *testing.T) {
	svc := NewTagService(newMemoryStore(t), TagServiceConfig{})
	ctx := context.Background()

	a, err := svc.Create(ctx, dto.CreateTagRequest{Name: "A"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, dto.CreateTagRequest{Name: "B"})
	require.NoError(t, err)

	_, err = svc.Rename(ctx, a.ID, dto.RenameTagRequest{Name: "b"})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	renamed, err := svc.Rename(ctx, a.ID, dto.RenameTagRequest{Name: "C"})
	require.NoError(t, err)
	assert.Equal(t, "C", renamed.Name)

	_, err = svc.Rename(ctx, 99, dto.RenameTagRequest{Name: "D"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestTagServiceListSortsByTypeThenName(t *testing.T) {
	svc := NewTagService(newMemoryStore(t), TagServiceConfig{})
	ctx := context.Background()
	for _, req := range []dto.CreateTagRequest{{Name: "zeta"}, {Name: "Alpha"}, {Name: "Game", Type: "system"}} {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	tags, err := svc.List(ctx, dto.ListTagsQuery{})
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, []string{"Alpha", "zeta", "Game"}, []string{tags[0].Name, tags[1].Name, tags[2].Name})

	system, err := svc.List(ctx, dto.ListTagsQuery{Type: "system"})
	require.NoError(t, err)
	assert.Len(t, system, 1)
}
