package memory

import (
	"context"
	"sync"

	"github.com/mcoot/survivordraft/internal/model"
	"github.com/mcoot/survivordraft/internal/storage"
)

// SnapshotStore keeps snapshots in process memory.
// Used when durability is not configured, and in tests.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[model.RoomCode]*model.Room
}

// NewSnapshotStore creates an empty in-memory snapshot store
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[model.RoomCode]*model.Room),
	}
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

func (s *SnapshotStore) SaveSnapshot(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[room.Code] = room.Clone()
	return nil
}

func (s *SnapshotStore) DeleteSnapshot(ctx context.Context, code model.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, code)
	return nil
}

func (s *SnapshotStore) LoadAllSnapshots(ctx context.Context) (map[model.RoomCode]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[model.RoomCode]*model.Room, len(s.snapshots))
	for code, room := range s.snapshots {
		out[code] = room.Clone()
	}
	return out, nil
}
