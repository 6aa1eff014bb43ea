package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/bilishelf-api/internal/models"
)

func (q *queries) FindFolderItems(ctx context.Context, filter models.FolderItemFilter) ([]models.FolderItem, error) {
	var where whereBuilder
	if len(filter.FolderIDs) > 0 {
		where.add("folder_id = ANY(?)", pq.Array(filter.FolderIDs))
	}
	if len(filter.VideoIDs) > 0 {
		where.add("video_id = ANY(?)", pq.Array(filter.VideoIDs))
	}

	query := "SELECT id, folder_id, video_id, added_at FROM folder_items" + where.sql() + " ORDER BY id ASC"
	var items []models.FolderItem
	if err := sqlx.SelectContext(ctx, q.ext, &items, query, where.args...); err != nil {
		return nil, fmt.Errorf("find folder items: %w", err)
	}
	return items, nil
}

func (q *queries) UpsertFolderItem(ctx context.Context, item *models.FolderItem) error {
	if item.ID == 0 {
		query := "INSERT INTO folder_items (folder_id, video_id, added_at) VALUES ($1, $2, $3) RETURNING id"
		if err := q.ext.QueryRowxContext(ctx, query, item.FolderID, item.VideoID, item.AddedAt).Scan(&item.ID); err != nil {
			return fmt.Errorf("insert folder item: %w", mapWriteErr(err))
		}
		return nil
	}

	res, err := q.ext.ExecContext(ctx,
		"UPDATE folder_items SET folder_id = $1, video_id = $2, added_at = $3 WHERE id = $4",
		item.FolderID, item.VideoID, item.AddedAt, item.ID,
	)
	if err != nil {
		return fmt.Errorf("update folder item %d: %w", item.ID, mapWriteErr(err))
	}
	return expectAffected(res, "update folder item")
}

func (q *queries) DeleteFolderItem(ctx context.Context, id int64) error {
	res, err := q.ext.ExecContext(ctx, "DELETE FROM folder_items WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete folder item %d: %w", id, err)
	}
	return expectAffected(res, "delete folder item")
}
