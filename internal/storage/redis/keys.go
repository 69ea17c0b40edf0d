package redis

import (
	"fmt"

	"github.com/mcoot/survivordraft/internal/model"
)

// Key prefix for all snapshot data
const keyPrefix = "sdraft"

// roomKey returns the Redis key for a room snapshot
func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, code)
}

// roomIndexKey returns the Redis key for the SET of stored room codes
func roomIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}
