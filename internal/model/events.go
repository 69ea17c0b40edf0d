package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	// Raised by delayed disconnect cleanup, which has no caller to return a snapshot to
	EventPlayerRemoved EventType = "player_removed"
	EventHostChanged   EventType = "host_changed"
	EventRoomDeleted   EventType = "room_deleted"
)

// Event describes a room change that happened outside any command
type Event struct {
	Type      EventType
	Timestamp time.Time
	RoomCode  RoomCode
	Room      *Room // snapshot after the change; nil for EventRoomDeleted
	Payload   any   // Type-specific data
}

// PlayerRemovedPayload contains data for player removed events
type PlayerRemovedPayload struct {
	PlayerID    PlayerID
	DisplayName string
}

// HostChangedPayload contains data for host changed events
type HostChangedPayload struct {
	OldHostID PlayerID
	NewHostID PlayerID
}
