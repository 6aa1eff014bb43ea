package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bilishelf-api/internal/models"
)

func newPostgresStoreMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	store := NewPostgresStore(sqlx.NewDb(db, "sqlmock"), nil)
	return store, mock, func() { store.queue.Close(); db.Close() }
}

var folderRowColumns = []string{"id", "name", "description", "remote_collection_id", "sort_order", "deleted_at", "created_at", "updated_at"}

func TestPostgresStoreGetFolderNotFound(t *testing.T) {
	store, mock, cleanup := newPostgresStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, description")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(folderRowColumns))

	_, err := store.GetFolder(context.Background(), 9)
	assert.True(t, IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreFindFoldersByName(t *testing.T) {
	store, mock, cleanup := newPostgresStoreMock(t)
	defer cleanup()

	rows := sqlmock.NewRows(folderRowColumns).AddRow(1, "Anime", "", nil, 0, nil, 100, 100)
	mock.ExpectQuery(regexp.QuoteMeta("FROM folders WHERE lower(name) = lower($1) AND deleted_at IS NULL ORDER BY sort_order")).
		WithArgs("anime").
		WillReturnRows(rows)

	folders, err := store.FindFolders(context.Background(), models.FolderFilter{Name: "anime"})
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "Anime", folders[0].Name)
	assert.Nil(t, folders[0].RemoteCollectionID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreFindFoldersOnlyDeleted(t *testing.T) {
	store, mock, cleanup := newPostgresStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM folders WHERE id = ANY($1) AND deleted_at IS NOT NULL")).
		WillReturnRows(sqlmock.NewRows(folderRowColumns).AddRow(2, "Old", "", 77, 1, 500, 100, 500))

	folders, err := store.FindFolders(context.Background(), models.FolderFilter{IDs: []int64{2}, OnlyDeleted: true})
	require.NoError(t, err)
	require.Len(t, folders, 1)
	require.NotNil(t, folders[0].DeletedAt)
	assert.Equal(t, int64(500), *folders[0].DeletedAt)
	assert.Equal(t, int64(77), *folders[0].RemoteCollectionID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreTransactionCommits(t *testing.T) {
	store, mock, cleanup := newPostgresStoreMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO videos")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO folder_items")).
		WithArgs(int64(3), int64(42), int64(1000)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	video := &models.Video{BVID: "BV1xx", Title: "t", CoverURL: "c", Uploader: "u", CanonicalURL: "https://www.bilibili.com/video/BV1xx/"}
	item := &models.FolderItem{FolderID: 3, AddedAt: 1000}
	err := store.Transaction(context.Background(), func(ctx context.Context, w Writer) error {
		if err := w.UpsertVideo(ctx, video); err != nil {
			return err
		}
		item.VideoID = video.ID
		return w.UpsertFolderItem(ctx, item)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), video.ID)
	assert.Equal(t, int64(7), item.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreTransactionRollsBack(t *testing.T) {
	store, mock, cleanup := newPostgresStoreMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM folder_items WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := store.Transaction(context.Background(), func(ctx context.Context, w Writer) error {
		if err := w.DeleteFolderItem(ctx, 5); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreUpdateMissingRow(t *testing.T) {
	store, mock, cleanup := newPostgresStoreMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tags SET name = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.Transaction(context.Background(), func(ctx context.Context, w Writer) error {
		return w.UpsertTag(ctx, &models.Tag{ID: 4, Name: "x", Type: models.TagTypeCustom})
	})
	assert.True(t, IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreUniqueViolationIsConstraint(t *testing.T) {
	store, mock, cleanup := newPostgresStoreMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO folders")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := store.Transaction(context.Background(), func(ctx context.Context, w Writer) error {
		return w.UpsertFolder(ctx, &models.Folder{Name: "Anime"})
	})
	assert.True(t, IsConstraint(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreFindVideoTagsFilters(t *testing.T) {
	store, mock, cleanup := newPostgresStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, video_id, tag_id FROM video_tags WHERE video_id = ANY($1) AND tag_id = ANY($2)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "video_id", "tag_id"}).AddRow(1, 10, 20))

	bindings, err := store.FindVideoTags(context.Background(), models.VideoTagFilter{VideoIDs: []int64{10}, TagIDs: []int64{20}})
	require.NoError(t, err)
	require.Len(t, bindings, 1)
	assert.Equal(t, int64(20), bindings[0].TagID)
	require.NoError(t, mock.ExpectationsWereMet())
}
