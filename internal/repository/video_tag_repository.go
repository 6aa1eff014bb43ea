package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/bilishelf-api/internal/models"
)

func (q *queries) FindVideoTags(ctx context.Context, filter models.VideoTagFilter) ([]models.VideoTag, error) {
	var where whereBuilder
	if len(filter.VideoIDs) > 0 {
		where.add("video_id = ANY(?)", pq.Array(filter.VideoIDs))
	}
	if len(filter.TagIDs) > 0 {
		where.add("tag_id = ANY(?)", pq.Array(filter.TagIDs))
	}

	query := "SELECT id, video_id, tag_id FROM video_tags" + where.sql() + " ORDER BY id ASC"
	var bindings []models.VideoTag
	if err := sqlx.SelectContext(ctx, q.ext, &bindings, query, where.args...); err != nil {
		return nil, fmt.Errorf("find video tags: %w", err)
	}
	return bindings, nil
}

func (q *queries) UpsertVideoTag(ctx context.Context, binding *models.VideoTag) error {
	if binding.ID == 0 {
		query := "INSERT INTO video_tags (video_id, tag_id) VALUES ($1, $2) RETURNING id"
		if err := q.ext.QueryRowxContext(ctx, query, binding.VideoID, binding.TagID).Scan(&binding.ID); err != nil {
			return fmt.Errorf("insert video tag: %w", mapWriteErr(err))
		}
		return nil
	}

	res, err := q.ext.ExecContext(ctx, "UPDATE video_tags SET video_id = $1, tag_id = $2 WHERE id = $3",
		binding.VideoID, binding.TagID, binding.ID)
	if err != nil {
		return fmt.Errorf("update video tag %d: %w", binding.ID, mapWriteErr(err))
	}
	return expectAffected(res, "update video tag")
}

func (q *queries) DeleteVideoTag(ctx context.Context, id int64) error {
	res, err := q.ext.ExecContext(ctx, "DELETE FROM video_tags WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete video tag %d: %w", id, err)
	}
	return expectAffected(res, "delete video tag")
}
