package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/models"
	"github.com/noah-isme/bilishelf-api/internal/repository"
	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
)

func newBatchService(store repository.Store, chunk int) *BatchService {
	n := 0
	return NewBatchService(store, BatchServiceConfig{
		ChunkSize: chunk,
		CopySuffix: func() string {
			n++
			return fmt.Sprintf("s%d", n)
		},
	})
}

func TestBatchMoveRelinksVideos(t *testing.T) {
	store := newMemoryStore(t)
	src, v1 := seedVideo(t, store, "Src", "BV1", 1)
	_, v2 := seedVideo(t, store, "Src", "BV2", 2)
	dst, _ := seedVideo(t, store, "Dst", "BV3", 3)
	svc := newBatchService(store, 1)

	result, err := svc.Move(context.Background(), dto.BatchMoveRequest{
		VideoIDs:       []int64{v1.ID, v2.ID, v1.ID, 999},
		SourceFolderID: src.ID,
		TargetFolderID: dst.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 2, result.Affected)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.SoftDeleted)

	items, err := store.FindFolderItems(context.Background(), models.FolderItemFilter{FolderIDs: []int64{src.ID}})
	require.NoError(t, err)
	assert.Empty(t, items)
	items, err = store.FindFolderItems(context.Background(), models.FolderItemFilter{FolderIDs: []int64{dst.ID}})
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.True(t, mustVideo(t, store, v1.ID).Active())
}

func TestBatchMoveValidatesFolders(t *testing.T) {
	store := newMemoryStore(t)
	src, v1 := seedVideo(t, store, "Src", "BV1", 1)
	svc := newBatchService(store, 0)

	_, err := svc.Move(context.Background(), dto.BatchMoveRequest{VideoIDs: []int64{v1.ID}, SourceFolderID: src.ID, TargetFolderID: src.ID})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Move(context.Background(), dto.BatchMoveRequest{VideoIDs: []int64{v1.ID}, SourceFolderID: src.ID, TargetFolderID: 77})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestBatchCopyIsDistinctIdentity(t *testing.T) {
	store := newMemoryStore(t)
	a, source := seedVideo(t, store, "A", "BV1", 1)
	b, _ := seedVideo(t, store, "B", "BV2", 1)
	videos := NewVideoService(store, VideoServiceConfig{})
	ctx := context.Background()
	_, err := videos.SetTags(ctx, source.ID, dto.SetVideoTagsRequest{CustomTags: []string{"keep"}, SystemTags: []string{"Music"}})
	require.NoError(t, err)

	svc := newBatchService(store, 10)
	result, err := svc.Copy(ctx, dto.BatchCopyRequest{VideoIDs: []int64{source.ID}, TargetFolderID: b.ID})
	require.NoError(t, err)
	require.Len(t, result.CreatedVideoIDs, 1)
	copyID := result.CreatedVideoIDs[0]
	assert.NotEqual(t, source.ID, copyID)

	copied, err := videos.Get(ctx, copyID)
	require.NoError(t, err)
	assert.Equal(t, "BV1__copy__s1", copied.BVID)
	assert.Equal(t, "BV1", copied.DisplayBVID)
	assert.Equal(t, source.Title, copied.Title)
	assert.Equal(t, []int64{b.ID}, copied.FolderIDs)
	assert.Equal(t, []string{"keep"}, copied.CustomTags)
	assert.Equal(t, []string{"Music"}, copied.SystemTags)

	_, err = svc.Delete(ctx, dto.BatchDeleteRequest{VideoIDs: []int64{copyID}, Mode: dto.DeleteModeGlobal})
	require.NoError(t, err)
	original, err := videos.Get(ctx, source.ID)
	require.NoError(t, err)
	assert.Nil(t, original.DeletedAt)
	assert.Equal(t, []int64{a.ID}, original.FolderIDs)

	again, err := svc.Copy(ctx, dto.BatchCopyRequest{VideoIDs: []int64{copyID}, TargetFolderID: a.ID})
	require.NoError(t, err)
	second, err := videos.Get(ctx, again.CreatedVideoIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "BV1__copy__s2", second.BVID)
}

func TestBatchDeleteFolderOnly(t *testing.T) {
	store := newMemoryStore(t)
	a, shared := seedVideo(t, store, "A", "BV1", 1)
	b, _ := seedVideo(t, store, "B", "BV1", 1)
	_, single := seedVideo(t, store, "A", "BV2", 1)
	_, elsewhere := seedVideo(t, store, "B", "BV3", 1)
	svc := newBatchService(store, 2)

	result, err := svc.Delete(context.Background(), dto.BatchDeleteRequest{
		VideoIDs: []int64{shared.ID, single.ID, elsewhere.ID},
		Mode:     dto.DeleteModeFolderOnly,
		FolderID: a.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Affected)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.SoftDeleted)

	assert.True(t, mustVideo(t, store, shared.ID).Active())
	assert.False(t, mustVideo(t, store, single.ID).Active())
	assert.True(t, mustVideo(t, store, elsewhere.ID).Active())

	detail, err := NewVideoService(store, VideoServiceConfig{}).Get(context.Background(), shared.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, detail.FolderIDs)
}

func TestBatchDeleteRequiresFolderForFolderOnly(t *testing.T) {
	svc := newBatchService(newMemoryStore(t), 0)
	_, err := svc.Delete(context.Background(), dto.BatchDeleteRequest{VideoIDs: []int64{1}, Mode: dto.DeleteModeFolderOnly})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.Delete(context.Background(), dto.BatchDeleteRequest{VideoIDs: []int64{1}, Mode: "everything"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
