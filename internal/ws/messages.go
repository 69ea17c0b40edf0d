package ws

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mcoot/survivordraft/internal/api/response"
	"github.com/mcoot/survivordraft/internal/model"
)

// Client message types
const (
	TypeJoinRoom    = "join-room"
	TypePlayerReady = "player-ready"
	TypeStartGame   = "start-game"
	TypeSelectItem  = "select-item"
	TypeVote        = "vote"
)

// Server message types
const (
	TypeConnected    = "connected"
	TypeRoomUpdated  = "room-updated"
	TypeDraftStarted = "draft-started"
	TypeMessage      = "message"
	TypeError        = "error"
)

// Error codes that only the gateway produces
const (
	CodeBadMessage  = "BAD_MESSAGE"
	CodeRateLimited = "RATE_LIMITED"
)

// ClientMessage is a command sent by a connection
type ClientMessage struct {
	Type       string `json:"type"`
	RoomCode   string `json:"room_code"`
	PlayerName string `json:"player_name,omitempty"`
	ItemID     string `json:"item_id,omitempty"`
	PlayerID   string `json:"player_id,omitempty"`
}

// ServerMessage is pushed to connections
type ServerMessage struct {
	Type    string         `json:"type"`
	Room    *response.Room `json:"room,omitempty"`
	Message string         `json:"message,omitempty"`
	Code    string         `json:"code,omitempty"`
	Session string         `json:"session,omitempty"`
}

func encode(msg ServerMessage) []byte {
	// ServerMessage only holds strings, ints, times and maps keyed by string
	data, _ := json.Marshal(msg)
	return data
}

func roomMessage(msgType string, room *model.Room, text string) []byte {
	view := response.RoomFromModel(room)
	return encode(ServerMessage{Type: msgType, Room: &view, Message: text})
}

func textMessage(text string) []byte {
	return encode(ServerMessage{Type: TypeMessage, Message: text})
}

func errorMessage(code, text string) []byte {
	return encode(ServerMessage{Type: TypeError, Code: code, Message: text})
}

// draftStartedText announces the first drafter
func draftStartedText(room *model.Room) string {
	if p := room.CurrentTurnPlayer(); p != nil {
		return fmt.Sprintf("Draft started! %s's turn.", p.DisplayName)
	}
	return "Draft started!"
}

// selectionText describes the room after a select-item by actor
func selectionText(room *model.Room, actor model.SessionID) string {
	switch room.Status {
	case model.StatusDrafting:
		if p := room.CurrentTurnPlayer(); p != nil {
			return fmt.Sprintf("%s's turn to draft.", p.DisplayName)
		}
	case model.StatusSituations:
		// The actor has no choice yet only when their pick just ended the draft
		if p := room.PlayerBySession(actor); p != nil && p.CurrentChoice == nil {
			return "Draft completed! Starting situations phase..."
		}
		return "Waiting for other players to choose..."
	case model.StatusVoting:
		return "All players have chosen! Time to vote for the best solution!"
	}
	return ""
}

// voteText describes the room after a vote
func voteText(room *model.Room) string {
	switch room.Status {
	case model.StatusSituations:
		return "Voting completed! Moving to next situation..."
	case model.StatusFinished:
		winners := room.Winners()
		names := make([]string, len(winners))
		for i, p := range winners {
			names[i] = p.DisplayName
		}
		return fmt.Sprintf("Game Over! %s had the best solution!", strings.Join(names, " and "))
	default:
		return fmt.Sprintf("Vote registered! Waiting for %d more players to vote...", room.PendingVotes())
	}
}
