package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/bilishelf-api/internal/models"
)

const folderColumns = "id, name, description, remote_collection_id, sort_order, deleted_at, created_at, updated_at"

func (q *queries) GetFolder(ctx context.Context, id int64) (*models.Folder, error) {
	var folder models.Folder
	query := "SELECT " + folderColumns + " FROM folders WHERE id = $1"
	if err := sqlx.GetContext(ctx, q.ext, &folder, query, id); err != nil {
		return nil, fmt.Errorf("get folder %d: %w", id, mapNoRows(err))
	}
	return &folder, nil
}

func (q *queries) FindFolders(ctx context.Context, filter models.FolderFilter) ([]models.Folder, error) {
	var where whereBuilder
	if len(filter.IDs) > 0 {
		where.add("id = ANY(?)", pq.Array(filter.IDs))
	}
	if filter.Name != "" {
		where.add("lower(name) = lower(?)", filter.Name)
	}
	if filter.RemoteCollectionID != nil {
		where.add("remote_collection_id = ?", *filter.RemoteCollectionID)
	}
	switch {
	case filter.OnlyDeleted:
		where.raw("deleted_at IS NOT NULL")
	case !filter.IncludeDeleted:
		where.raw("deleted_at IS NULL")
	}

	query := "SELECT " + folderColumns + " FROM folders" + where.sql() + " ORDER BY sort_order ASC, id ASC"
	var folders []models.Folder
	if err := sqlx.SelectContext(ctx, q.ext, &folders, query, where.args...); err != nil {
		return nil, fmt.Errorf("find folders: %w", err)
	}
	return folders, nil
}

func (q *queries) UpsertFolder(ctx context.Context, folder *models.Folder) error {
	if folder.ID == 0 {
		query := `INSERT INTO folders (name, description, remote_collection_id, sort_order, deleted_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
		if err := q.ext.QueryRowxContext(ctx, query,
			folder.Name, folder.Description, folder.RemoteCollectionID, folder.SortOrder,
			folder.DeletedAt, folder.CreatedAt, folder.UpdatedAt,
		).Scan(&folder.ID); err != nil {
			return fmt.Errorf("insert folder: %w", mapWriteErr(err))
		}
		return nil
	}

	query := `UPDATE folders SET name = $1, description = $2, remote_collection_id = $3, sort_order = $4,
deleted_at = $5, created_at = $6, updated_at = $7 WHERE id = $8`
	res, err := q.ext.ExecContext(ctx, query,
		folder.Name, folder.Description, folder.RemoteCollectionID, folder.SortOrder,
		folder.DeletedAt, folder.CreatedAt, folder.UpdatedAt, folder.ID,
	)
	if err != nil {
		return fmt.Errorf("update folder %d: %w", folder.ID, mapWriteErr(err))
	}
	return expectAffected(res, "update folder")
}

// DeleteFolder removes the folder; memberships cascade.
func (q *queries) DeleteFolder(ctx context.Context, id int64) error {
	res, err := q.ext.ExecContext(ctx, "DELETE FROM folders WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete folder %d: %w", id, err)
	}
	return expectAffected(res, "delete folder")
}
