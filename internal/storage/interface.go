package storage

import (
	"context"

	"github.com/mcoot/survivordraft/internal/model"
)

// Storage is the live room store the registry reads and writes on every command
type Storage interface {
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	DeleteRoom(ctx context.Context, code model.RoomCode) error
	RoomExists(ctx context.Context, code model.RoomCode) (bool, error)
	ListRoomCodes(ctx context.Context) ([]model.RoomCode, error)
}

// SnapshotStore durably keeps whole-room snapshots keyed by room code.
// It is written behind the live store and only read back at startup.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, room *model.Room) error
	DeleteSnapshot(ctx context.Context, code model.RoomCode) error
	LoadAllSnapshots(ctx context.Context) (map[model.RoomCode]*model.Room, error)
}
