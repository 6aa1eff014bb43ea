package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/bilishelf-api/internal/models"
)

const videoColumns = "id, bvid, title, cover_url, uploader, uploader_space_url, description, partition, publish_at, canonical_url, is_invalid, deleted_at, created_at, updated_at"

func (q *queries) GetVideo(ctx context.Context, id int64) (*models.Video, error) {
	var video models.Video
	query := "SELECT " + videoColumns + " FROM videos WHERE id = $1"
	if err := sqlx.GetContext(ctx, q.ext, &video, query, id); err != nil {
		return nil, fmt.Errorf("get video %d: %w", id, mapNoRows(err))
	}
	return &video, nil
}

func (q *queries) GetVideoByBVID(ctx context.Context, bvid string) (*models.Video, error) {
	var video models.Video
	query := "SELECT " + videoColumns + " FROM videos WHERE bvid = $1"
	if err := sqlx.GetContext(ctx, q.ext, &video, query, bvid); err != nil {
		return nil, fmt.Errorf("get video %s: %w", bvid, mapNoRows(err))
	}
	return &video, nil
}

func (q *queries) FindVideos(ctx context.Context, filter models.VideoFilter) ([]models.Video, error) {
	var where whereBuilder
	if len(filter.IDs) > 0 {
		where.add("id = ANY(?)", pq.Array(filter.IDs))
	}
	if len(filter.BVIDs) > 0 {
		where.add("bvid = ANY(?)", pq.Array(filter.BVIDs))
	}
	switch {
	case filter.OnlyDeleted:
		where.raw("deleted_at IS NOT NULL")
	case !filter.IncludeDeleted:
		where.raw("deleted_at IS NULL")
	}

	query := "SELECT " + videoColumns + " FROM videos" + where.sql() + " ORDER BY id ASC"
	var videos []models.Video
	if err := sqlx.SelectContext(ctx, q.ext, &videos, query, where.args...); err != nil {
		return nil, fmt.Errorf("find videos: %w", err)
	}
	return videos, nil
}

func (q *queries) UpsertVideo(ctx context.Context, video *models.Video) error {
	args := []interface{}{
		video.BVID, video.Title, video.CoverURL, video.Uploader, video.UploaderSpaceURL, video.Description,
		video.Partition, video.PublishAt, video.CanonicalURL, video.IsInvalid, video.DeletedAt,
		video.CreatedAt, video.UpdatedAt,
	}
	if video.ID == 0 {
		query := `INSERT INTO videos (bvid, title, cover_url, uploader, uploader_space_url, description, partition,
publish_at, canonical_url, is_invalid, deleted_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
		if err := q.ext.QueryRowxContext(ctx, query, args...).Scan(&video.ID); err != nil {
			return fmt.Errorf("insert video %s: %w", video.BVID, mapWriteErr(err))
		}
		return nil
	}

	query := `UPDATE videos SET bvid = $1, title = $2, cover_url = $3, uploader = $4, uploader_space_url = $5,
description = $6, partition = $7, publish_at = $8, canonical_url = $9, is_invalid = $10, deleted_at = $11,
created_at = $12, updated_at = $13 WHERE id = $14`
	res, err := q.ext.ExecContext(ctx, query, append(args, video.ID)...)
	if err != nil {
		return fmt.Errorf("update video %d: %w", video.ID, mapWriteErr(err))
	}
	return expectAffected(res, "update video")
}

// DeleteVideo removes the video; memberships and tag bindings cascade.
func (q *queries) DeleteVideo(ctx context.Context, id int64) error {
	res, err := q.ext.ExecContext(ctx, "DELETE FROM videos WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete video %d: %w", id, err)
	}
	return expectAffected(res, "delete video")
}
