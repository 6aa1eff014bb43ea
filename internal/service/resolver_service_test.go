package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bilishelf-api/internal/models"
	"github.com/noah-isme/bilishelf-api/internal/repository"
)

func TestResolveVideoIsIdempotent(t *testing.T) {
	store := newMemoryStore(t)
	clock := &testClock{now: 1000}
	resolver := NewResolver(clock.Now)

	var first, second *models.Video
	var created1, created2 bool
	inTx(t, store, func(ctx context.Context, w repository.Writer) error {
		var err error
		first, created1, err = resolver.ResolveVideo(ctx, w, candidate("BV1", "one"))
		return err
	})
	inTx(t, store, func(ctx context.Context, w repository.Writer) error {
		var err error
		second, created2, err = resolver.ResolveVideo(ctx, w, candidate("BV1", "renamed"))
		return err
	})

	assert.True(t, created1)
	assert.False(t, created2)
	assert.Equal(t, first.ID, second.ID)
	stored := mustVideo(t, store, first.ID)
	assert.Equal(t, "renamed", stored.Title)
	assert.Equal(t, first.CreatedAt, stored.CreatedAt)
	assert.Greater(t, stored.UpdatedAt, first.UpdatedAt)
}

func TestResolveVideoClearsDeletion(t *testing.T) {
	store := newMemoryStore(t)
	resolver := NewResolver(nil)
	deletedAt := int64(5)

	var video *models.Video
	inTx(t, store, func(ctx context.Context, w repository.Writer) error {
		var err error
		video, _, err = resolver.ResolveVideo(ctx, w, candidate("BV1", "one"))
		if err != nil {
			return err
		}
		video.DeletedAt = &deletedAt
		return w.UpsertVideo(ctx, video)
	})

	keep := candidate("BV1", "one")
	keep.KeepDeleted = true
	inTx(t, store, func(ctx context.Context, w repository.Writer) error {
		_, _, err := resolver.ResolveVideo(ctx, w, keep)
		return err
	})
	assert.NotNil(t, mustVideo(t, store, video.ID).DeletedAt)

	inTx(t, store, func(ctx context.Context, w repository.Writer) error {
		_, _, err := resolver.ResolveVideo(ctx, w, candidate("BV1", "one"))
		return err
	})
	assert.Nil(t, mustVideo(t, store, video.ID).DeletedAt)
}

func TestResolveVideoKeepDeletedInsertsTombstone(t *testing.T) {
	store := newMemoryStore(t)
	resolver := NewResolver(nil)
	keep := candidate("BV9", "gone")
	keep.KeepDeleted = true

	var video *models.Video
	inTx(t, store, func(ctx context.Context, w repository.Writer) error {
		var err error
		video, _, err = resolver.ResolveVideo(ctx, w, keep)
		return err
	})
	assert.NotNil(t, mustVideo(t, store, video.ID).DeletedAt)
}

func TestResolveFolderForSyncReusesManualFolderByName(t *testing.T) {
	store := newMemoryStore(t)
	resolver := NewResolver(nil)

	var manual, synced *models.Folder
	var created bool
	inTx(t, store, func(ctx context.Context, w repository.Writer) error {
		var err error
		manual, _, err = resolver.ResolveFolderByName(ctx, w, "Anime", "")
		return err
	})
	inTx(t, store, func(ctx context.Context, w repository.Writer) error {
		var err error
		synced, created, err = resolver.ResolveFolderForSync(ctx, w, 555, "anime")
		return err
	})

	assert.False(t, created)
	assert.Equal(t, manual.ID, synced.ID)
	stored := mustFolder(t, store, manual.ID)
	require.NotNil(t, stored.RemoteCollectionID)
	assert.Equal(t, int64(555), *stored.RemoteCollectionID)
	assert.Equal(t, "Anime", stored.Name)
}

func TestResolveFolderForSyncPrefersRemoteLink(t *testing.T) {
	store := newMemoryStore(t)
	resolver := NewResolver(nil)

	var first, renamed *models.Folder
	inTx(t, store, func(ctx context.Context, w repository.Writer) error {
		var err error
		first, _, err = resolver.ResolveFolderForSync(ctx, w, 7, "Old title")
		return err
	})
	assert.Equal(t, syncedFolderDescription, first.Description)
	assert.Equal(t, 0, first.SortOrder)

	inTx(t, store, func(ctx context.Context, w repository.Writer) error {
		var err error
		renamed, _, err = resolver.ResolveFolderForSync(ctx, w, 7, "New title")
		return err
	})
	assert.Equal(t, first.ID, renamed.ID)
	assert.Equal(t, "New title", mustFolder(t, store, first.ID).Name)
}

func TestResolveFolderForSyncRestoresTrashedFolder(t *testing.T) {
	store := newMemoryStore(t)
	resolver := NewResolver(nil)

	var folder *models.Folder
	inTx(t, store, func(ctx context.Context, w repository.Writer) error {
		var err error
		if _, _, err = resolver.ResolveFolderByName(ctx, w, "Other", ""); err != nil {
			return err
		}
		folder, _, err = resolver.ResolveFolderForSync(ctx, w, 9, "Music")
		if err != nil {
			return err
		}
		deletedAt := int64(3)
		folder.DeletedAt = &deletedAt
		return w.UpsertFolder(ctx, folder)
	})

	inTx(t, store, func(ctx context.Context, w repository.Writer) error {
		restored, created, err := resolver.ResolveFolderForSync(ctx, w, 9, "Music")
		assert.False(t, created)
		assert.Equal(t, folder.ID, restored.ID)
		return err
	})
	stored := mustFolder(t, store, folder.ID)
	assert.Nil(t, stored.DeletedAt)
	assert.Equal(t, 1, stored.SortOrder)
}

func TestResolveTagRules(t *testing.T) {
	store := newMemoryStore(t)
	resolver := NewResolver(nil)

	inTx(t, store, func(ctx context.Context, w repository.Writer) error {
		tag, _, err := resolver.ResolveTag(ctx, w, "未分类", models.TagTypeSystem)
		require.NoError(t, err)
		assert.Nil(t, tag)

		custom, created, err := resolver.ResolveTag(ctx, w, "Uncategorized", models.TagTypeCustom)
		require.NoError(t, err)
		require.NotNil(t, custom)
		assert.True(t, created)

		music, _, err := resolver.ResolveTag(ctx, w, "Music", models.TagTypeSystem)
		require.NoError(t, err)
		again, created, err := resolver.ResolveTag(ctx, w, "MUSIC", models.TagTypeSystem)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, music.ID, again.ID)

		other, created, err := resolver.ResolveTag(ctx, w, "music", models.TagTypeCustom)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, music.ID, other.ID)
		return nil
	})
}

func TestResolveTagUnarchives(t *testing.T) {
	store := newMemoryStore(t)
	resolver := NewResolver(nil)

	var tag *models.Tag
	inTx(t, store, func(ctx context.Context, w repository.Writer) error {
		var err error
		tag, _, err = resolver.ResolveTag(ctx, w, "Later", models.TagTypeCustom)
		if err != nil {
			return err
		}
		archivedAt := int64(10)
		tag.ArchivedAt = &archivedAt
		return w.UpsertTag(ctx, tag)
	})
	inTx(t, store, func(ctx context.Context, w repository.Writer) error {
		again, created, err := resolver.ResolveTag(ctx, w, "later", models.TagTypeCustom)
		assert.False(t, created)
		assert.Equal(t, tag.ID, again.ID)
		return err
	})
	stored, err := store.GetTag(context.Background(), tag.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ArchivedAt)
}
