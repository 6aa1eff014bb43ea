package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/bilishelf-api/internal/models"
)

const tagColumns = "id, name, type, created_at, archived_at"

func (q *queries) GetTag(ctx context.Context, id int64) (*models.Tag, error) {
	var tag models.Tag
	if err := sqlx.GetContext(ctx, q.ext, &tag, "SELECT "+tagColumns+" FROM tags WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("get tag %d: %w", id, mapNoRows(err))
	}
	return &tag, nil
}

func (q *queries) FindTags(ctx context.Context, filter models.TagFilter) ([]models.Tag, error) {
	var where whereBuilder
	if len(filter.IDs) > 0 {
		where.add("id = ANY(?)", pq.Array(filter.IDs))
	}
	if filter.Name != "" {
		where.add("lower(name) = lower(?)", filter.Name)
	}
	if filter.Type != "" {
		where.add("type = ?", string(filter.Type))
	}
	if !filter.IncludeArchived {
		where.raw("archived_at IS NULL")
	}

	query := "SELECT " + tagColumns + " FROM tags" + where.sql() + " ORDER BY id ASC"
	var tags []models.Tag
	if err := sqlx.SelectContext(ctx, q.ext, &tags, query, where.args...); err != nil {
		return nil, fmt.Errorf("find tags: %w", err)
	}
	return tags, nil
}

func (q *queries) UpsertTag(ctx context.Context, tag *models.Tag) error {
	if tag.ID == 0 {
		query := "INSERT INTO tags (name, type, created_at, archived_at) VALUES ($1, $2, $3, $4) RETURNING id"
		if err := q.ext.QueryRowxContext(ctx, query, tag.Name, string(tag.Type), tag.CreatedAt, tag.ArchivedAt).Scan(&tag.ID); err != nil {
			return fmt.Errorf("insert tag %s: %w", tag.Name, mapWriteErr(err))
		}
		return nil
	}

	res, err := q.ext.ExecContext(ctx,
		"UPDATE tags SET name = $1, type = $2, created_at = $3, archived_at = $4 WHERE id = $5",
		tag.Name, string(tag.Type), tag.CreatedAt, tag.ArchivedAt, tag.ID,
	)
	if err != nil {
		return fmt.Errorf("update tag %d: %w", tag.ID, mapWriteErr(err))
	}
	return expectAffected(res, "update tag")
}

// DeleteTag removes the tag; bindings cascade.
func (q *queries) DeleteTag(ctx context.Context, id int64) error {
	res, err := q.ext.ExecContext(ctx, "DELETE FROM tags WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete tag %d: %w", id, err)
	}
	return expectAffected(res, "delete tag")
}
