package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/bilishelf-api/internal/models"
	"github.com/noah-isme/bilishelf-api/pkg/serial"
)

//go:embed schema.sql
var postgresSchema string

// PostgresStore is the relational Entity Store backend.
type PostgresStore struct {
	db     *sqlx.DB
	queue  *serial.Queue
	reader *queries
	logger *zap.Logger
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sqlx.DB, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{
		db:     db,
		queue:  serial.NewQueue("postgres-store", 0, logger),
		reader: &queries{ext: db},
		logger: logger,
	}
}

// Migrate applies the schema idempotently.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return s.queue.Write(ctx, func(ctx context.Context) error {
		if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		return nil
	})
}

// Transaction runs fn inside a database transaction on the store's write queue.
func (s *PostgresStore) Transaction(ctx context.Context, fn func(ctx context.Context, w Writer) error) error {
	return s.queue.Write(ctx, func(ctx context.Context) error {
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if err := fn(ctx, &queries{ext: tx}); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Warn("rollback failed", zap.Error(rbErr))
			}
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	})
}

// Close stops the write queue and closes the database handle.
func (s *PostgresStore) Close() error {
	s.queue.Close()
	return s.db.Close()
}

func (s *PostgresStore) GetFolder(ctx context.Context, id int64) (*models.Folder, error) {
	return read(ctx, s.queue, func(ctx context.Context) (*models.Folder, error) { return s.reader.GetFolder(ctx, id) })
}

func (s *PostgresStore) FindFolders(ctx context.Context, filter models.FolderFilter) ([]models.Folder, error) {
	return read(ctx, s.queue, func(ctx context.Context) ([]models.Folder, error) { return s.reader.FindFolders(ctx, filter) })
}

func (s *PostgresStore) GetVideo(ctx context.Context, id int64) (*models.Video, error) {
	return read(ctx, s.queue, func(ctx context.Context) (*models.Video, error) { return s.reader.GetVideo(ctx, id) })
}

func (s *PostgresStore) GetVideoByBVID(ctx context.Context, bvid string) (*models.Video, error) {
	return read(ctx, s.queue, func(ctx context.Context) (*models.Video, error) { return s.reader.GetVideoByBVID(ctx, bvid) })
}

func (s *PostgresStore) FindVideos(ctx context.Context, filter models.VideoFilter) ([]models.Video, error) {
	return read(ctx, s.queue, func(ctx context.Context) ([]models.Video, error) { return s.reader.FindVideos(ctx, filter) })
}

func (s *PostgresStore) FindFolderItems(ctx context.Context, filter models.FolderItemFilter) ([]models.FolderItem, error) {
	return read(ctx, s.queue, func(ctx context.Context) ([]models.FolderItem, error) {
		return s.reader.FindFolderItems(ctx, filter)
	})
}

func (s *PostgresStore) GetTag(ctx context.Context, id int64) (*models.Tag, error) {
	return read(ctx, s.queue, func(ctx context.Context) (*models.Tag, error) { return s.reader.GetTag(ctx, id) })
}

func (s *PostgresStore) FindTags(ctx context.Context, filter models.TagFilter) ([]models.Tag, error) {
	return read(ctx, s.queue, func(ctx context.Context) ([]models.Tag, error) { return s.reader.FindTags(ctx, filter) })
}

func (s *PostgresStore) FindVideoTags(ctx context.Context, filter models.VideoTagFilter) ([]models.VideoTag, error) {
	return read(ctx, s.queue, func(ctx context.Context) ([]models.VideoTag, error) { return s.reader.FindVideoTags(ctx, filter) })
}

func read[T any](ctx context.Context, q *serial.Queue, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := q.Read(ctx, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}

// queries implements Writer over a database handle or transaction.
type queries struct {
	ext sqlx.ExtContext
}

// whereBuilder accumulates positional predicates.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

func (b *whereBuilder) add(clause string, arg interface{}) {
	b.args = append(b.args, arg)
	b.clauses = append(b.clauses, strings.ReplaceAll(clause, "?", fmt.Sprintf("$%d", len(b.args))))
}

func (b *whereBuilder) raw(clause string) {
	b.clauses = append(b.clauses, clause)
}

func (b *whereBuilder) sql() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// mapWriteErr tags unique and foreign key violations with ErrConstraint.
func mapWriteErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505", "23503":
			return fmt.Errorf("%w: %s", ErrConstraint, pqErr.Message)
		}
	}
	return err
}

func expectAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
