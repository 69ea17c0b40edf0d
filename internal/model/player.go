package model

import (
	"slices"
	"strings"
	"time"
)

// PlayerID is the stable logical identity of a player within a room
type PlayerID string

// SessionID is the transport session a player is currently reachable on.
// It changes when a player reconnects; PlayerID never does.
type SessionID string

// TemporarySessionPrefix marks identities minted by the stateless HTTP path
const TemporarySessionPrefix = "temp-"

// IsTemporary reports whether the session was minted before a live connection existed
func (s SessionID) IsTemporary() bool {
	return strings.HasPrefix(string(s), TemporarySessionPrefix)
}

// MaxDisplayNameLength bounds player names
const MaxDisplayNameLength = 32

// Player represents a game participant
type Player struct {
	ID            PlayerID
	Session       SessionID
	DisplayName   string
	SelectedItems []ItemID
	IsReady       bool
	IsHost        bool
	CurrentChoice *ItemID  // nil until chosen for the current situation
	UsedItems     []ItemID // choices from resolved situations
	VotesReceived int      // cumulative over the room's lifetime
	RoundVotes    int      // ballots for the current situation only
	JoinedAt      time.Time
}

// Clone returns a deep copy of the player
func (p Player) Clone() Player {
	out := p
	out.SelectedItems = slices.Clone(p.SelectedItems)
	out.UsedItems = slices.Clone(p.UsedItems)
	if p.CurrentChoice != nil {
		choice := *p.CurrentChoice
		out.CurrentChoice = &choice
	}
	return out
}

// Holds reports whether the player drafted the item
func (p *Player) Holds(id ItemID) bool {
	return slices.Contains(p.SelectedItems, id)
}

// HasUsed reports whether the item was spent on an earlier situation
func (p *Player) HasUsed(id ItemID) bool {
	return slices.Contains(p.UsedItems, id)
}

// InventoryFull reports whether the player has drafted all their items
func (p *Player) InventoryFull() bool {
	return len(p.SelectedItems) >= ItemsPerPlayer
}

// NormalizeDisplayName trims the name and validates its length
func NormalizeDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > MaxDisplayNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}
