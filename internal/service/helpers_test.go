package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bilishelf-api/internal/models"
	"github.com/noah-isme/bilishelf-api/internal/repository"
)

type testClock struct {
	now int64
}

func (c *testClock) Now() int64 {
	c.now++
	return c.now
}

func newMemoryStore(t *testing.T) *repository.KVStore {
	store, err := repository.NewKVStore(context.Background(), repository.NewMemoryBlob(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func inTx(t *testing.T, store repository.Store, fn func(ctx context.Context, w repository.Writer) error) {
	t.Helper()
	require.NoError(t, store.Transaction(context.Background(), fn))
}

func candidate(bvid, title string) models.VideoCandidate {
	return models.VideoCandidate{
		BVID:         bvid,
		Title:        title,
		CoverURL:     "https://c/" + bvid + ".jpg",
		Uploader:     "up",
		Partition:    "Music",
		CanonicalURL: "https://www.bilibili.com/video/" + bvid + "/",
	}
}

// seedVideo creates folder (by name) and a video linked into it.
func seedVideo(t *testing.T, store repository.Store, folderName, bvid string, addedAt int64) (*models.Folder, *models.Video) {
	t.Helper()
	resolver := NewResolver(nil)
	graph := NewGraphMaintainer(nil)
	var folder *models.Folder
	var video *models.Video
	inTx(t, store, func(ctx context.Context, w repository.Writer) error {
		var err error
		folder, _, err = resolver.ResolveFolderByName(ctx, w, folderName, "")
		if err != nil {
			return err
		}
		video, _, err = resolver.ResolveVideo(ctx, w, candidate(bvid, "title "+bvid))
		if err != nil {
			return err
		}
		_, err = graph.AddMembership(ctx, w, folder.ID, video.ID, addedAt)
		return err
	})
	return folder, video
}

func mustVideo(t *testing.T, store repository.Store, id int64) *models.Video {
	t.Helper()
	video, err := store.GetVideo(context.Background(), id)
	require.NoError(t, err)
	return video
}

func mustFolder(t *testing.T, store repository.Store, id int64) *models.Folder {
	t.Helper()
	folder, err := store.GetFolder(context.Background(), id)
	require.NoError(t, err)
	return folder
}

func countRows(t *testing.T, store repository.Store) (folders, videos, items, tags, bindings int) {
	t.Helper()
	ctx := context.Background()
	f, err := store.FindFolders(ctx, models.FolderFilter{IncludeDeleted: true})
	require.NoError(t, err)
	v, err := store.FindVideos(ctx, models.VideoFilter{IncludeDeleted: true})
	require.NoError(t, err)
	i, err := store.FindFolderItems(ctx, models.FolderItemFilter{})
	require.NoError(t, err)
	tg, err := store.FindTags(ctx, models.TagFilter{IncludeArchived: true})
	require.NoError(t, err)
	b, err := store.FindVideoTags(ctx, models.VideoTagFilter{})
	require.NoError(t, err)
	return len(f), len(v), len(i), len(tg), len(b)
}
