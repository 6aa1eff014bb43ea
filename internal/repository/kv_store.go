package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/bilishelf-api/internal/models"
	"github.com/noah-isme/bilishelf-api/pkg/serial"
)

// BlobStore persists the serialized library under one key.
type BlobStore interface {
	// Load returns nil data when nothing was saved yet.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// KVStore is the key-value Entity Store backend. The whole library lives in
// memory and is written back as one blob after every committed transaction.
type KVStore struct {
	blob   BlobStore
	queue  *serial.Queue
	state  *kvState
	logger *zap.Logger
}

// NewKVStore loads the current blob and starts the write queue.
func NewKVStore(ctx context.Context, blob BlobStore, logger *zap.Logger) (*KVStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	raw, err := blob.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load kv state: %w", err)
	}
	state := &kvState{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, state); err != nil {
			return nil, fmt.Errorf("decode kv state: %w", err)
		}
	}
	return &KVStore{
		blob:   blob,
		queue:  serial.NewQueue("kv-store", 0, logger),
		state:  state,
		logger: logger,
	}, nil
}

// Transaction applies fn to a copy of the state and persists it when fn succeeds.
func (s *KVStore) Transaction(ctx context.Context, fn func(ctx context.Context, w Writer) error) error {
	return s.queue.Write(ctx, func(ctx context.Context) error {
		draft := s.state.clone()
		if err := fn(ctx, draft); err != nil {
			return err
		}
		raw, err := json.Marshal(draft)
		if err != nil {
			return fmt.Errorf("encode kv state: %w", err)
		}
		if err := s.blob.Save(ctx, raw); err != nil {
			return fmt.Errorf("save kv state: %w", err)
		}
		s.state = draft
		return nil
	})
}

// Close stops the write queue.
func (s *KVStore) Close() error {
	s.queue.Close()
	return nil
}

func (s *KVStore) GetFolder(ctx context.Context, id int64) (*models.Folder, error) {
	return read(ctx, s.queue, func(ctx context.Context) (*models.Folder, error) { return s.state.GetFolder(ctx, id) })
}

func (s *KVStore) FindFolders(ctx context.Context, filter models.FolderFilter) ([]models.Folder, error) {
	return read(ctx, s.queue, func(ctx context.Context) ([]models.Folder, error) { return s.state.FindFolders(ctx, filter) })
}

func (s *KVStore) GetVideo(ctx context.Context, id int64) (*models.Video, error) {
	return read(ctx, s.queue, func(ctx context.Context) (*models.Video, error) { return s.state.GetVideo(ctx, id) })
}

func (s *KVStore) GetVideoByBVID(ctx context.Context, bvid string) (*models.Video, error) {
	return read(ctx, s.queue, func(ctx context.Context) (*models.Video, error) { return s.state.GetVideoByBVID(ctx, bvid) })
}

func (s *KVStore) FindVideos(ctx context.Context, filter models.VideoFilter) ([]models.Video, error) {
	return read(ctx, s.queue, func(ctx context.Context) ([]models.Video, error) { return s.state.FindVideos(ctx, filter) })
}

func (s *KVStore) FindFolderItems(ctx context.Context, filter models.FolderItemFilter) ([]models.FolderItem, error) {
	return read(ctx, s.queue, func(ctx context.Context) ([]models.FolderItem, error) {
		return s.state.FindFolderItems(ctx, filter)
	})
}

func (s *KVStore) GetTag(ctx context.Context, id int64) (*models.Tag, error) {
	return read(ctx, s.queue, func(ctx context.Context) (*models.Tag, error) { return s.state.GetTag(ctx, id) })
}

func (s *KVStore) FindTags(ctx context.Context, filter models.TagFilter) ([]models.Tag, error) {
	return read(ctx, s.queue, func(ctx context.Context) ([]models.Tag, error) { return s.state.FindTags(ctx, filter) })
}

func (s *KVStore) FindVideoTags(ctx context.Context, filter models.VideoTagFilter) ([]models.VideoTag, error) {
	return read(ctx, s.queue, func(ctx context.Context) ([]models.VideoTag, error) { return s.state.FindVideoTags(ctx, filter) })
}
