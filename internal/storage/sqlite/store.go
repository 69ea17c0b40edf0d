package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/mcoot/survivordraft/internal/model"
	"github.com/mcoot/survivordraft/internal/storage"
)

const schema = `CREATE TABLE IF NOT EXISTS rooms (
	code       TEXT PRIMARY KEY,
	doc        TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SnapshotStore keeps one row per room holding its JSON document
type SnapshotStore struct {
	db *sql.DB
}

// Open opens the database at path, creating the schema if needed
func Open(path string) (*SnapshotStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Writes come from a single persistence worker
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SnapshotStore{db: db}, nil
}

// Close releases the underlying connection
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// SaveSnapshot upserts the room's document
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, room *model.Room) error {
	doc, err := json.Marshal(room)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rooms (code, doc, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		string(room.Code), string(doc), room.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save room %s: %w", room.Code, err)
	}
	return nil
}

func (s *SnapshotStore) DeleteSnapshot(ctx context.Context, code model.RoomCode) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE code = ?`, string(code)); err != nil {
		return fmt.Errorf("delete room %s: %w", code, err)
	}
	return nil
}

func (s *SnapshotStore) LoadAllSnapshots(ctx context.Context) (map[model.RoomCode]*model.Room, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, doc FROM rooms ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	rooms := make(map[model.RoomCode]*model.Room)
	for rows.Next() {
		var code, doc string
		if err := rows.Scan(&code, &doc); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		var room model.Room
		if err := json.Unmarshal([]byte(doc), &room); err != nil {
			return nil, fmt.Errorf("decode room %s: %w", code, err)
		}
		rooms[room.Code] = &room
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}
