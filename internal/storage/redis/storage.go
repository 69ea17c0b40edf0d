package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/survivordraft/internal/model"
	"github.com/mcoot/survivordraft/internal/storage"
)

// SnapshotStore keeps one JSON document per room plus a set of known codes
type SnapshotStore struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis snapshot store
func New(cfg Config) (*SnapshotStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &SnapshotStore{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis snapshot store with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *SnapshotStore {
	return &SnapshotStore{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *SnapshotStore) Close() error {
	return s.client.Close()
}

// Ensure SnapshotStore implements the interface
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

func (s *SnapshotStore) SaveSnapshot(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, roomKey(room.Code), data, s.cfg.RoomTTL)
	pipe.SAdd(ctx, roomIndexKey(), string(room.Code))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *SnapshotStore) DeleteSnapshot(ctx context.Context, code model.RoomCode) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, roomKey(code))
	pipe.SRem(ctx, roomIndexKey(), string(code))
	_, err := pipe.Exec(ctx)
	return err
}

// LoadAllSnapshots reads every indexed room. Codes whose document has
// expired are pruned from the index.
func (s *SnapshotStore) LoadAllSnapshots(ctx context.Context) (map[model.RoomCode]*model.Room, error) {
	codes, err := s.client.SMembers(ctx, roomIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	rooms := make(map[model.RoomCode]*model.Room, len(codes))
	if len(codes) == 0 {
		return rooms, nil
	}
	slices.Sort(codes)

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = roomKey(model.RoomCode(code))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var expired []any
	for i, value := range values {
		data, ok := value.(string)
		if !ok {
			expired = append(expired, codes[i])
			continue
		}
		var room model.Room
		if err := json.Unmarshal([]byte(data), &room); err != nil {
			return nil, fmt.Errorf("decode room %s: %w", codes[i], err)
		}
		rooms[room.Code] = &room
	}

	if len(expired) > 0 {
		if err := s.client.SRem(ctx, roomIndexKey(), expired...).Err(); err != nil {
			return nil, err
		}
	}
	return rooms, nil
}
