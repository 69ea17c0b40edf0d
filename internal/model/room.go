package model

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// RoomCode is a human-readable identifier for joining rooms
type RoomCode string

// NormalizeRoomCode upper-cases user input so lookups are case-insensitive
func NormalizeRoomCode(code string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(code)))
}

// RoomID uniquely identifies a room for its whole lifetime
type RoomID string

// RoomStatus represents the current phase of a room
type RoomStatus string

const (
	StatusWaiting    RoomStatus = "waiting"    // Players joining and readying up
	StatusDrafting   RoomStatus = "drafting"   // Players taking turns claiming items
	StatusSituations RoomStatus = "situations" // Players choosing an item for the current situation
	StatusVoting     RoomStatus = "voting"     // Players voting on the situation's answers
	StatusFinished   RoomStatus = "finished"
)

const (
	MinPlayers     = 3
	MaxPlayers     = 15
	ItemsPerPlayer = 5
)

// Room is one game instance.
// Rooms are handled as values: transitions work on a Clone and hand back the
// copy, so a failed command never leaves a half-applied room behind.
type Room struct {
	ID               RoomID
	Code             RoomCode
	Status           RoomStatus
	HostSession      SessionID
	Players          []Player
	MaxPlayers       int
	Scenario         Scenario   // per-room copy; the pool is replaced at draft start
	CurrentSituation *Situation // nil outside situations/voting
	CurrentTurn      *PlayerID  // nil outside drafting
	Ballots          map[PlayerID]PlayerID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Clone returns a deep copy of the room
func (r *Room) Clone() *Room {
	out := *r
	out.Players = slices.Clone(r.Players)
	for i := range out.Players {
		out.Players[i] = out.Players[i].Clone()
	}
	out.Scenario = r.Scenario.Clone()
	if r.CurrentSituation != nil {
		sit := r.CurrentSituation.Clone()
		out.CurrentSituation = &sit
	}
	if r.CurrentTurn != nil {
		turn := *r.CurrentTurn
		out.CurrentTurn = &turn
	}
	if r.Ballots != nil {
		out.Ballots = maps.Clone(r.Ballots)
	}
	return &out
}

// GetHost returns the current host, or nil if none
func (r *Room) GetHost() *Player {
	for i := range r.Players {
		if r.Players[i].IsHost {
			return &r.Players[i]
		}
	}
	return nil
}

// GetPlayer returns the player with the given logical ID, or nil if not found
func (r *Room) GetPlayer(id PlayerID) *Player {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// PlayerBySession returns the player currently on the given session, or nil
func (r *Room) PlayerBySession(session SessionID) *Player {
	for i := range r.Players {
		if r.Players[i].Session == session {
			return &r.Players[i]
		}
	}
	return nil
}

// PlayerByName returns the first player with the given display name, or nil
func (r *Room) PlayerByName(name string) *Player {
	for i := range r.Players {
		if r.Players[i].DisplayName == name {
			return &r.Players[i]
		}
	}
	return nil
}

// PlayerIndex returns the roster position of the player, or -1
func (r *Room) PlayerIndex(id PlayerID) int {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// IsFull reports whether the roster is at capacity
func (r *Room) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

// ItemOwner returns the player holding the item, or nil
func (r *Room) ItemOwner(id ItemID) *Player {
	for i := range r.Players {
		if r.Players[i].Holds(id) {
			return &r.Players[i]
		}
	}
	return nil
}

// CurrentTurnPlayer returns the player whose draft turn it is, or nil
func (r *Room) CurrentTurnPlayer() *Player {
	if r.CurrentTurn == nil {
		return nil
	}
	return r.GetPlayer(*r.CurrentTurn)
}

// AllReady reports whether every player is ready
func (r *Room) AllReady() bool {
	for _, p := range r.Players {
		if !p.IsReady {
			return false
		}
	}
	return true
}

// AllDrafted reports whether every player holds a full inventory
func (r *Room) AllDrafted() bool {
	for _, p := range r.Players {
		if len(p.SelectedItems) != ItemsPerPlayer {
			return false
		}
	}
	return true
}

// AllChosen reports whether every player has chosen for the current situation
func (r *Room) AllChosen() bool {
	for _, p := range r.Players {
		if p.CurrentChoice == nil {
			return false
		}
	}
	return true
}

// AllVoted reports whether every player has a ballot recorded
func (r *Room) AllVoted() bool {
	for _, p := range r.Players {
		if _, ok := r.Ballots[p.ID]; !ok {
			return false
		}
	}
	return true
}

// PendingVotes returns how many players have not voted yet
func (r *Room) PendingVotes() int {
	pending := 0
	for _, p := range r.Players {
		if _, ok := r.Ballots[p.ID]; !ok {
			pending++
		}
	}
	return pending
}

// IsLastSituation reports whether the current situation is the scenario's final one
func (r *Room) IsLastSituation() bool {
	if r.CurrentSituation == nil {
		return false
	}
	return r.Scenario.SituationIndex(r.CurrentSituation.ID) == len(r.Scenario.Situations)-1
}

// Winners returns the players with the most cumulative votes, in roster order
func (r *Room) Winners() []Player {
	best := -1
	var winners []Player
	for _, p := range r.Players {
		switch {
		case p.VotesReceived > best:
			best = p.VotesReceived
			winners = []Player{p}
		case p.VotesReceived == best:
			winners = append(winners, p)
		}
	}
	return winners
}
