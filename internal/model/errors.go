package model

import "errors"

// ErrorKind classifies a failure for callers that map errors onto a protocol
type ErrorKind string

const (
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindValidation ErrorKind = "validation"
	KindFatal      ErrorKind = "fatal" // malformed catalogue data, never a user mistake
	KindInternal   ErrorKind = "internal"
)

// Error is a gameplay failure with a kind and a stable machine-readable code.
// The package-level values below are sentinels: compare with errors.Is.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound     = newError(KindNotFound, "ROOM_NOT_FOUND", "room not found")
	ErrRoomFull         = newError(KindConflict, "ROOM_FULL", "room is full")
	ErrInvalidCapacity  = newError(KindValidation, "INVALID_CAPACITY", "number of players must be between 3 and 15")
	ErrUnknownScenario  = newError(KindNotFound, "UNKNOWN_SCENARIO", "invalid scenario")
	ErrWrongPhase       = newError(KindConflict, "WRONG_PHASE", "action not allowed in the current phase")
	ErrGameInProgress   = newError(KindConflict, "GAME_IN_PROGRESS", "game already in progress")
	ErrPlayersNotReady  = newError(KindConflict, "PLAYERS_NOT_READY", "all players must be ready to start")
	ErrNotHost          = newError(KindConflict, "NOT_HOST", "only the host can start the game")
	ErrMissingFields    = newError(KindValidation, "MISSING_FIELDS", "missing required fields")
	ErrInvalidName      = newError(KindValidation, "INVALID_NAME", "player name must be between 1 and 32 characters")
	ErrCodeExhausted    = newError(KindInternal, "CODE_EXHAUSTED", "could not generate a unique room code")
	ErrNoSituations     = newError(KindFatal, "NO_SITUATIONS_AVAILABLE", "no situations available in scenario")
	ErrInsufficientPool = newError(KindFatal, "INSUFFICIENT_ITEM_POOL", "scenario has no items in a required category")

	// Player errors
	ErrPlayerNotFound      = newError(KindNotFound, "PLAYER_NOT_FOUND", "player not found")
	ErrVotedPlayerNotFound = newError(KindNotFound, "VOTED_PLAYER_NOT_FOUND", "voted player not found")
	ErrNotYourTurn         = newError(KindConflict, "NOT_YOUR_TURN", "not your turn")
	ErrInventoryFull       = newError(KindConflict, "INVENTORY_FULL", "player already has maximum items")
	ErrAlreadySeated       = newError(KindConflict, "ALREADY_SEATED", "session already holds a seat in this room")

	// Item errors
	ErrItemNotFound    = newError(KindNotFound, "ITEM_NOT_FOUND", "item not found in scenario")
	ErrItemTaken       = newError(KindConflict, "ITEM_TAKEN", "item already taken")
	ErrItemNotOwned    = newError(KindConflict, "ITEM_NOT_OWNED", "item not owned by player")
	ErrItemAlreadyUsed = newError(KindConflict, "ITEM_ALREADY_USED", "item already used in a previous situation")
)

// KindOf returns the kind of a gameplay error, or KindInternal for anything else
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the machine-readable code of a gameplay error, or INTERNAL_ERROR
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "INTERNAL_ERROR"
}
