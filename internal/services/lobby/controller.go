// Package lobby is the room registry: it owns room creation, lookup by code
// and by session, and the delayed cleanup that follows a disconnect.
package lobby

import (
	"context"
	"hash/maphash"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/survivordraft/internal/catalog"
	"github.com/mcoot/survivordraft/internal/dependencies/clock"
	"github.com/mcoot/survivordraft/internal/dependencies/random"
	"github.com/mcoot/survivordraft/internal/model"
	"github.com/mcoot/survivordraft/internal/services/game"
	"github.com/mcoot/survivordraft/internal/storage"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6
	// RoomCodeAlphabet is the characters used in room codes (avoid confusing chars)
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// DefaultDisconnectGrace is how long a dropped session keeps its seat
	DefaultDisconnectGrace = 5 * time.Second

	maxCodeAttempts = 100
	lockStripes     = 64
)

// SnapshotWriter receives every committed room for durable storage.
// Implementations must not block.
type SnapshotWriter interface {
	Save(room *model.Room)
	Delete(code model.RoomCode)
}

type removalKey struct {
	code    model.RoomCode
	session model.SessionID
}

type pendingRemoval struct {
	timer clock.Timer
}

// Controller manages rooms and the sessions playing in them.
// Commands on the same room are serialized; different rooms proceed in parallel.
type Controller struct {
	storage   storage.Storage
	game      game.ControllerInterface
	catalog   *catalog.Catalog
	snapshots SnapshotWriter
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
	grace     time.Duration

	locks [lockStripes]sync.Mutex
	seed  maphash.Seed

	mu       sync.Mutex
	sessions map[model.SessionID]model.RoomCode
	pending  map[removalKey]*pendingRemoval
	notify   func(model.Event)
}

// NewController creates a new room registry
func NewController(
	storage storage.Storage,
	gameController game.ControllerInterface,
	catalog *catalog.Catalog,
	snapshots SnapshotWriter,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
	grace time.Duration,
) *Controller {
	return &Controller{
		storage:   storage,
		game:      gameController,
		catalog:   catalog,
		snapshots: snapshots,
		clock:     clock,
		random:    random,
		logger:    logger.With(slog.String("component", "lobby")),
		grace:     grace,
		seed:      maphash.MakeSeed(),
		sessions:  make(map[model.SessionID]model.RoomCode),
		pending:   make(map[removalKey]*pendingRemoval),
	}
}

// SetNotifier registers the callback for room changes that happen outside a
// command, i.e. delayed disconnect removals
func (c *Controller) SetNotifier(notify func(model.Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify = notify
}

func (c *Controller) lock(code model.RoomCode) func() {
	m := &c.locks[maphash.String(c.seed, string(code))%lockStripes]
	m.Lock()
	return m.Unlock
}

// Scenarios lists the scenarios rooms can be created from
func (c *Controller) Scenarios() []model.Scenario {
	return c.catalog.List()
}

// CreateRoom creates a waiting room hosted by the given session
func (c *Controller) CreateRoom(
	ctx context.Context,
	host model.SessionID,
	displayName string,
	scenarioID model.ScenarioID,
	maxPlayers int,
) (*model.Room, error) {
	if maxPlayers < model.MinPlayers || maxPlayers > model.MaxPlayers {
		return nil, model.ErrInvalidCapacity
	}
	scenario, ok := c.catalog.Get(scenarioID)
	if !ok {
		return nil, model.ErrUnknownScenario
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := model.RoomCode(c.random.String(RoomCodeLength, RoomCodeAlphabet))
		room, err := c.createWithCode(ctx, code, scenario, maxPlayers, host, displayName)
		if err != nil {
			return nil, err
		}
		if room == nil {
			continue
		}

		c.logger.Info("room created",
			slog.String("room_code", string(room.Code)),
			slog.String("scenario_id", string(scenarioID)),
			slog.Int("max_players", maxPlayers),
		)
		return room, nil
	}

	c.logger.Error("failed to generate unique room code", slog.Int("attempts", maxCodeAttempts))
	return nil, model.ErrCodeExhausted
}

// createWithCode returns nil, nil when the code is already taken
func (c *Controller) createWithCode(
	ctx context.Context,
	code model.RoomCode,
	scenario model.Scenario,
	maxPlayers int,
	host model.SessionID,
	displayName string,
) (*model.Room, error) {
	unlock := c.lock(code)
	defer unlock()

	exists, err := c.storage.RoomExists(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	room, err := c.game.NewRoom(code, scenario, maxPlayers, host, displayName)
	if err != nil {
		return nil, err
	}
	if err := c.save(ctx, room); err != nil {
		return nil, err
	}
	c.indexSession(host, code)
	return room, nil
}

// JoinRoom adds a player to a room. A display name already on the roster is
// taken as that player reconnecting from a new session. A full room refuses
// every join, reconnections included.
func (c *Controller) JoinRoom(ctx context.Context, code model.RoomCode, session model.SessionID, displayName string) (*model.Room, error) {
	code = model.NormalizeRoomCode(string(code))
	name, err := model.NormalizeDisplayName(displayName)
	if err != nil {
		return nil, err
	}

	unlock := c.lock(code)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if room.IsFull() {
		return nil, model.ErrRoomFull
	}

	if room.PlayerByName(name) != nil {
		next, previous, err := c.game.Reconcile(room, name, session)
		if err != nil {
			return nil, err
		}
		if previous == session {
			return next, nil
		}
		if err := c.save(ctx, next); err != nil {
			return nil, err
		}
		c.cancelRemoval(code, previous)
		c.mu.Lock()
		if c.sessions[previous] == code {
			delete(c.sessions, previous)
		}
		c.sessions[session] = code
		c.mu.Unlock()

		c.logger.Info("player reconnected",
			slog.String("room_code", string(code)),
			slog.String("player_name", name),
		)
		return next, nil
	}

	next, err := c.game.AddPlayer(room, session, name)
	if err != nil {
		return nil, err
	}
	if err := c.save(ctx, next); err != nil {
		return nil, err
	}
	c.indexSession(session, code)

	c.logger.Info("player joined",
		slog.String("room_code", string(code)),
		slog.String("player_name", name),
		slog.Int("player_count", len(next.Players)),
	)
	return next, nil
}

// GetRoom looks a room up by code, case-insensitively
func (c *Controller) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, bool) {
	room, err := c.storage.GetRoom(ctx, model.NormalizeRoomCode(string(code)))
	if err != nil {
		if model.KindOf(err) != model.KindNotFound {
			c.logger.Error("failed to load room",
				slog.String("room_code", string(code)),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}
	return room, true
}

// LookupRoomForIdentity returns the room the session is playing in
func (c *Controller) LookupRoomForIdentity(ctx context.Context, session model.SessionID) (*model.Room, bool) {
	c.mu.Lock()
	code, ok := c.sessions[session]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	return c.GetRoom(ctx, code)
}

// ToggleReady flips the session's ready flag
func (c *Controller) ToggleReady(ctx context.Context, code model.RoomCode, session model.SessionID) (*model.Room, error) {
	return c.mutate(ctx, code, "toggle_ready", func(room *model.Room) (*model.Room, error) {
		return c.game.ToggleReady(room, session)
	})
}

// StartDraft moves a fully ready room into the draft
func (c *Controller) StartDraft(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return c.mutate(ctx, code, "start_draft", c.game.StartDraft)
}

// SelectItem picks an item in whichever phase the room is in
func (c *Controller) SelectItem(ctx context.Context, code model.RoomCode, session model.SessionID, itemID model.ItemID) (*model.Room, error) {
	return c.mutate(ctx, code, "select_item", func(room *model.Room) (*model.Room, error) {
		return c.game.SelectItem(room, session, itemID)
	})
}

// SelectItemInDraft claims an item during the draft. Transports use SelectItem,
// which dispatches on the room's phase.
func (c *Controller) SelectItemInDraft(ctx context.Context, code model.RoomCode, session model.SessionID, itemID model.ItemID) (*model.Room, error) {
	return c.mutate(ctx, code, "select_item_in_draft", func(room *model.Room) (*model.Room, error) {
		return c.game.SelectItemInDraft(room, session, itemID)
	})
}

// SelectItemForSituation answers the current situation. Transports use
// SelectItem, which dispatches on the room's phase.
func (c *Controller) SelectItemForSituation(ctx context.Context, code model.RoomCode, session model.SessionID, itemID model.ItemID) (*model.Room, error) {
	return c.mutate(ctx, code, "select_item_for_situation", func(room *model.Room) (*model.Room, error) {
		return c.game.SelectItemForSituation(room, session, itemID)
	})
}

// Vote casts or changes the session's ballot
func (c *Controller) Vote(ctx context.Context, code model.RoomCode, voter model.SessionID, voted model.PlayerID) (*model.Room, error) {
	return c.mutate(ctx, code, "vote", func(room *model.Room) (*model.Room, error) {
		return c.game.Vote(room, voter, voted)
	})
}

// mutate applies a state machine transition to the stored room under the room's lock
func (c *Controller) mutate(
	ctx context.Context,
	code model.RoomCode,
	command string,
	transition func(*model.Room) (*model.Room, error),
) (*model.Room, error) {
	code = model.NormalizeRoomCode(string(code))
	unlock := c.lock(code)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	next, err := transition(room)
	if err != nil {
		c.logger.Debug("command rejected",
			slog.String("room_code", string(code)),
			slog.String("command", command),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if err := c.save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (c *Controller) save(ctx context.Context, room *model.Room) error {
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		c.logger.Error("failed to save room",
			slog.String("room_code", string(room.Code)),
			slog.String("error", err.Error()),
		)
		return err
	}
	c.snapshots.Save(room)
	return nil
}

func (c *Controller) indexSession(session model.SessionID, code model.RoomCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[session] = code
}

// HandleDisconnect schedules removal of the session's player once the grace
// period has passed. Temporary sessions never trigger removal.
func (c *Controller) HandleDisconnect(session model.SessionID) {
	if session.IsTemporary() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	code, ok := c.sessions[session]
	if !ok {
		return
	}

	key := removalKey{code: code, session: session}
	if existing, ok := c.pending[key]; ok {
		existing.timer.Stop()
	}
	entry := &pendingRemoval{}
	entry.timer = c.clock.AfterFunc(c.grace, func() {
		c.expire(key, entry)
	})
	c.pending[key] = entry

	c.logger.Debug("player removal scheduled",
		slog.String("room_code", string(code)),
		slog.Duration("grace", c.grace),
	)
}

// cancelRemoval stops a pending removal for the session, if one exists
func (c *Controller) cancelRemoval(code model.RoomCode, session model.SessionID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := removalKey{code: code, session: session}
	if entry, ok := c.pending[key]; ok {
		entry.timer.Stop()
		delete(c.pending, key)
	}
}

// expire removes the session's player if it is still in the room
func (c *Controller) expire(key removalKey, entry *pendingRemoval) {
	c.mu.Lock()
	if c.pending[key] != entry {
		c.mu.Unlock()
		return
	}
	delete(c.pending, key)
	c.mu.Unlock()

	events := c.removeSession(context.Background(), key.code, key.session)

	c.mu.Lock()
	notify := c.notify
	c.mu.Unlock()
	if notify == nil {
		return
	}
	for _, event := range events {
		notify(event)
	}
}

func (c *Controller) removeSession(ctx context.Context, code model.RoomCode, session model.SessionID) []model.Event {
	unlock := c.lock(code)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil
	}
	player := room.PlayerBySession(session)
	if player == nil {
		// Reconnected under a new session, or already gone
		return nil
	}

	next, err := c.game.RemovePlayer(room, player.ID)
	if err != nil {
		c.logger.Error("failed to remove player",
			slog.String("room_code", string(code)),
			slog.String("player_id", string(player.ID)),
			slog.String("error", err.Error()),
		)
		return nil
	}

	c.mu.Lock()
	if c.sessions[session] == code {
		delete(c.sessions, session)
	}
	c.mu.Unlock()

	now := c.clock.Now()
	if len(next.Players) == 0 {
		if err := c.storage.DeleteRoom(ctx, code); err != nil {
			c.logger.Error("failed to delete room",
				slog.String("room_code", string(code)),
				slog.String("error", err.Error()),
			)
			return nil
		}
		c.snapshots.Delete(code)
		c.logger.Info("room deleted", slog.String("room_code", string(code)))
		return []model.Event{{Type: model.EventRoomDeleted, Timestamp: now, RoomCode: code}}
	}

	if err := c.save(ctx, next); err != nil {
		return nil
	}

	events := []model.Event{{
		Type:      model.EventPlayerRemoved,
		Timestamp: now,
		RoomCode:  code,
		Room:      next,
		Payload:   model.PlayerRemovedPayload{PlayerID: player.ID, DisplayName: player.DisplayName},
	}}
	if player.IsHost {
		events = append(events, model.Event{
			Type:      model.EventHostChanged,
			Timestamp: now,
			RoomCode:  code,
			Room:      next,
			Payload:   model.HostChangedPayload{OldHostID: player.ID, NewHostID: next.Players[0].ID},
		})
	}
	return events
}

// Restore loads every durable snapshot into the live store and rebuilds the
// session index. Call before serving traffic.
func (c *Controller) Restore(ctx context.Context, snapshots storage.SnapshotStore) error {
	rooms, err := snapshots.LoadAllSnapshots(ctx)
	if err != nil {
		return err
	}

	for code, room := range rooms {
		if err := c.storage.SaveRoom(ctx, room); err != nil {
			return err
		}
		for _, p := range room.Players {
			c.indexSession(p.Session, code)
		}
	}

	c.logger.Info("rooms restored", slog.Int("room_count", len(rooms)))
	return nil
}

// Close cancels every pending removal
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.pending {
		entry.timer.Stop()
		delete(c.pending, key)
	}
}

// ControllerInterface is the registry as used by the transports
type ControllerInterface interface {
	Scenarios() []model.Scenario
	CreateRoom(ctx context.Context, host model.SessionID, displayName string, scenarioID model.ScenarioID, maxPlayers int) (*model.Room, error)
	JoinRoom(ctx context.Context, code model.RoomCode, session model.SessionID, displayName string) (*model.Room, error)
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, bool)
	LookupRoomForIdentity(ctx context.Context, session model.SessionID) (*model.Room, bool)
	ToggleReady(ctx context.Context, code model.RoomCode, session model.SessionID) (*model.Room, error)
	StartDraft(ctx context.Context, code model.RoomCode) (*model.Room, error)
	SelectItem(ctx context.Context, code model.RoomCode, session model.SessionID, itemID model.ItemID) (*model.Room, error)
	SelectItemInDraft(ctx context.Context, code model.RoomCode, session model.SessionID, itemID model.ItemID) (*model.Room, error)
	SelectItemForSituation(ctx context.Context, code model.RoomCode, session model.SessionID, itemID model.ItemID) (*model.Room, error)
	Vote(ctx context.Context, code model.RoomCode, voter model.SessionID, voted model.PlayerID) (*model.Room, error)
	HandleDisconnect(session model.SessionID)
}

var _ ControllerInterface = (*Controller)(nil)
