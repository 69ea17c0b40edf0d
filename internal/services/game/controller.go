package game

import (
	"log/slog"
	"strings"

	"github.com/mcoot/survivordraft/internal/dependencies/clock"
	"github.com/mcoot/survivordraft/internal/dependencies/random"
	"github.com/mcoot/survivordraft/internal/model"
	"github.com/mcoot/survivordraft/internal/services/allocator"
)

// Controller implements the room state machine.
// Every transition takes a room snapshot and returns a new one; the input is
// never modified, so a rejected command leaves the caller's room as it was.
type Controller struct {
	allocator *allocator.Service
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
}

// NewController creates a new game Controller
func NewController(
	allocator *allocator.Service,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		allocator: allocator,
		clock:     clock,
		random:    random,
		logger:    logger,
	}
}

// NewRoom builds a waiting room hosted by the given session
func (c *Controller) NewRoom(
	code model.RoomCode,
	scenario model.Scenario,
	maxPlayers int,
	hostSession model.SessionID,
	hostName string,
) (*model.Room, error) {
	if maxPlayers < model.MinPlayers || maxPlayers > model.MaxPlayers {
		return nil, model.ErrInvalidCapacity
	}
	name, err := model.NormalizeDisplayName(hostName)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	return &model.Room{
		ID:          model.RoomID(c.random.ID()),
		Code:        code,
		Status:      model.StatusWaiting,
		HostSession: hostSession,
		Players: []model.Player{
			{
				ID:          model.PlayerID(c.random.ID()),
				Session:     hostSession,
				DisplayName: name,
				IsHost:      true,
				JoinedAt:    now,
			},
		},
		MaxPlayers: maxPlayers,
		Scenario:   scenario.Clone(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Reconcile moves the player with the given display name onto a new session.
// It returns the session the player was on before. Reconciling onto the
// session the player already has returns the room unchanged. A session that
// is already seated as someone else cannot take a second seat.
func (c *Controller) Reconcile(room *model.Room, displayName string, session model.SessionID) (*model.Room, model.SessionID, error) {
	existing := room.PlayerByName(strings.TrimSpace(displayName))
	if existing == nil {
		return nil, "", model.ErrPlayerNotFound
	}
	previous := existing.Session
	if previous == session {
		return room.Clone(), previous, nil
	}
	if room.PlayerBySession(session) != nil {
		return nil, "", model.ErrAlreadySeated
	}

	next := room.Clone()
	player := next.GetPlayer(existing.ID)
	player.Session = session
	if player.IsHost {
		next.HostSession = session
	}
	next.UpdatedAt = c.clock.Now()

	c.logger.Debug("player session reconciled",
		slog.String("room_code", string(room.Code)),
		slog.String("player_id", string(player.ID)),
	)
	return next, previous, nil
}

// AddPlayer appends a new, not-ready player to a waiting room. Each session
// holds at most one seat.
func (c *Controller) AddPlayer(room *model.Room, session model.SessionID, displayName string) (*model.Room, error) {
	name, err := model.NormalizeDisplayName(displayName)
	if err != nil {
		return nil, err
	}
	if room.PlayerBySession(session) != nil {
		return nil, model.ErrAlreadySeated
	}
	if room.IsFull() {
		return nil, model.ErrRoomFull
	}
	if room.Status != model.StatusWaiting {
		return nil, model.ErrGameInProgress
	}

	now := c.clock.Now()
	next := room.Clone()
	next.Players = append(next.Players, model.Player{
		ID:          model.PlayerID(c.random.ID()),
		Session:     session,
		DisplayName: name,
		JoinedAt:    now,
	})
	next.UpdatedAt = now
	return next, nil
}

// ToggleReady flips the player's ready flag
func (c *Controller) ToggleReady(room *model.Room, session model.SessionID) (*model.Room, error) {
	if room.PlayerBySession(session) == nil {
		return nil, model.ErrPlayerNotFound
	}

	next := room.Clone()
	player := next.PlayerBySession(session)
	player.IsReady = !player.IsReady
	next.UpdatedAt = c.clock.Now()
	return next, nil
}

// StartDraft sizes the item pool for the roster, shuffles the turn order and
// hands the first turn to whoever ends up first
func (c *Controller) StartDraft(room *model.Room) (*model.Room, error) {
	if room.Status != model.StatusWaiting {
		return nil, model.ErrWrongPhase
	}
	if !room.AllReady() {
		return nil, model.ErrPlayersNotReady
	}

	items, err := c.allocator.Allocate(room.Scenario.Items, len(room.Players))
	if err != nil {
		c.logger.Error("item allocation failed",
			slog.String("room_code", string(room.Code)),
			slog.String("scenario_id", string(room.Scenario.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	next := room.Clone()
	next.Scenario.Items = items
	c.random.Shuffle(len(next.Players), func(i, j int) {
		next.Players[i], next.Players[j] = next.Players[j], next.Players[i]
	})
	first := next.Players[0].ID
	next.CurrentTurn = &first
	next.Status = model.StatusDrafting
	next.UpdatedAt = c.clock.Now()

	c.logger.Info("draft started",
		slog.String("room_code", string(room.Code)),
		slog.Int("player_count", len(next.Players)),
		slog.Int("item_count", len(items)),
	)
	return next, nil
}

// SelectItem routes an item pick to the draft or the current situation
// depending on the room's phase
func (c *Controller) SelectItem(room *model.Room, session model.SessionID, itemID model.ItemID) (*model.Room, error) {
	switch room.Status {
	case model.StatusDrafting:
		return c.SelectItemInDraft(room, session, itemID)
	case model.StatusSituations:
		return c.SelectItemForSituation(room, session, itemID)
	default:
		return nil, model.ErrWrongPhase
	}
}

// SelectItemInDraft claims an item for the player whose turn it is
func (c *Controller) SelectItemInDraft(room *model.Room, session model.SessionID, itemID model.ItemID) (*model.Room, error) {
	if room.Status != model.StatusDrafting {
		return nil, model.ErrWrongPhase
	}
	player := room.PlayerBySession(session)
	if player == nil {
		return nil, model.ErrPlayerNotFound
	}
	if room.CurrentTurn == nil || *room.CurrentTurn != player.ID {
		return nil, model.ErrNotYourTurn
	}
	if player.InventoryFull() {
		return nil, model.ErrInventoryFull
	}
	if room.Scenario.FindItem(itemID) == nil {
		return nil, model.ErrItemNotFound
	}
	if room.ItemOwner(itemID) != nil {
		return nil, model.ErrItemTaken
	}

	next := room.Clone()
	drafter := next.GetPlayer(player.ID)
	drafter.SelectedItems = append(drafter.SelectedItems, itemID)

	if err := c.advanceDraft(next, next.PlayerIndex(player.ID)+1); err != nil {
		return nil, err
	}
	next.UpdatedAt = c.clock.Now()
	return next, nil
}

// advanceDraft ends the draft once everyone holds a full inventory, or else
// passes the turn to the first player from start onwards who still needs items
func (c *Controller) advanceDraft(room *model.Room, start int) error {
	if room.AllDrafted() {
		if len(room.Scenario.Situations) == 0 {
			c.logger.Error("scenario has no situations",
				slog.String("room_code", string(room.Code)),
				slog.String("scenario_id", string(room.Scenario.ID)),
			)
			return model.ErrNoSituations
		}
		first := room.Scenario.Situations[0].Clone()
		room.CurrentSituation = &first
		room.CurrentTurn = nil
		room.Status = model.StatusSituations

		c.logger.Info("draft completed",
			slog.String("room_code", string(room.Code)),
			slog.String("situation_id", string(first.ID)),
		)
		return nil
	}

	n := len(room.Players)
	for k := 0; k < n; k++ {
		candidate := &room.Players[(start+k)%n]
		if !candidate.InventoryFull() {
			id := candidate.ID
			room.CurrentTurn = &id
			return nil
		}
	}
	return nil
}

// SelectItemForSituation records the player's answer to the current situation
func (c *Controller) SelectItemForSituation(room *model.Room, session model.SessionID, itemID model.ItemID) (*model.Room, error) {
	if room.Status != model.StatusSituations {
		return nil, model.ErrWrongPhase
	}
	player := room.PlayerBySession(session)
	if player == nil {
		return nil, model.ErrPlayerNotFound
	}
	if !player.Holds(itemID) {
		return nil, model.ErrItemNotOwned
	}
	if player.HasUsed(itemID) {
		return nil, model.ErrItemAlreadyUsed
	}

	next := room.Clone()
	choice := itemID
	next.GetPlayer(player.ID).CurrentChoice = &choice

	c.advanceSituation(next)
	next.UpdatedAt = c.clock.Now()
	return next, nil
}

// advanceSituation opens voting once every player has answered
func (c *Controller) advanceSituation(room *model.Room) {
	if !room.AllChosen() {
		return
	}
	for i := range room.Players {
		p := &room.Players[i]
		p.UsedItems = append(p.UsedItems, *p.CurrentChoice)
		p.RoundVotes = 0
	}
	room.Ballots = make(map[model.PlayerID]model.PlayerID)
	room.Status = model.StatusVoting

	c.logger.Info("voting started",
		slog.String("room_code", string(room.Code)),
		slog.String("situation_id", string(room.CurrentSituation.ID)),
	)
}

// Vote records or changes the voter's ballot for the current situation
func (c *Controller) Vote(room *model.Room, voterSession model.SessionID, voted model.PlayerID) (*model.Room, error) {
	if room.Status != model.StatusVoting {
		return nil, model.ErrWrongPhase
	}
	voter := room.PlayerBySession(voterSession)
	if voter == nil {
		return nil, model.ErrPlayerNotFound
	}
	if room.GetPlayer(voted) == nil {
		return nil, model.ErrVotedPlayerNotFound
	}

	next := room.Clone()
	if next.Ballots == nil {
		next.Ballots = make(map[model.PlayerID]model.PlayerID)
	}
	withdrawBallot(next, voter.ID)
	next.Ballots[voter.ID] = voted
	target := next.GetPlayer(voted)
	target.VotesReceived++
	target.RoundVotes++

	c.advanceVoting(next)
	next.UpdatedAt = c.clock.Now()
	return next, nil
}

// withdrawBallot removes the voter's ballot, if any, and takes the vote back
// from its target
func withdrawBallot(room *model.Room, voter model.PlayerID) {
	previous, ok := room.Ballots[voter]
	if !ok {
		return
	}
	delete(room.Ballots, voter)
	if target := room.GetPlayer(previous); target != nil {
		target.VotesReceived = max(target.VotesReceived-1, 0)
		target.RoundVotes = max(target.RoundVotes-1, 0)
	}
}

// advanceVoting resolves the situation once every player has a ballot
func (c *Controller) advanceVoting(room *model.Room) {
	if !room.AllVoted() {
		return
	}

	if room.IsLastSituation() {
		room.Status = model.StatusFinished
		attrs := []any{slog.String("room_code", string(room.Code))}
		for _, w := range room.Winners() {
			attrs = append(attrs, slog.String("winner", w.DisplayName))
		}
		c.logger.Info("game finished", attrs...)
		return
	}

	idx := room.Scenario.SituationIndex(room.CurrentSituation.ID)
	sit := room.Scenario.Situations[idx+1].Clone()
	room.CurrentSituation = &sit
	room.Status = model.StatusSituations
	room.Ballots = make(map[model.PlayerID]model.PlayerID)
	for i := range room.Players {
		room.Players[i].CurrentChoice = nil
	}

	c.logger.Info("next situation",
		slog.String("room_code", string(room.Code)),
		slog.String("situation_id", string(sit.ID)),
	)
}

// RemovePlayer takes a player out of the room. A removed host hands over to
// the first remaining player, and the current phase moves on if the removed
// player was the only one holding it up. Removing the last player leaves an
// empty roster; deleting the room is up to the caller.
func (c *Controller) RemovePlayer(room *model.Room, playerID model.PlayerID) (*model.Room, error) {
	idx := room.PlayerIndex(playerID)
	if idx == -1 {
		return nil, model.ErrPlayerNotFound
	}

	next := room.Clone()
	wasHost := next.Players[idx].IsHost
	next.Players = append(next.Players[:idx], next.Players[idx+1:]...)
	next.UpdatedAt = c.clock.Now()

	if len(next.Players) == 0 {
		next.HostSession = ""
		return next, nil
	}

	if wasHost {
		next.Players[0].IsHost = true
		next.HostSession = next.Players[0].Session
	}

	switch next.Status {
	case model.StatusDrafting:
		if next.CurrentTurn != nil && *next.CurrentTurn == playerID {
			next.CurrentTurn = nil
			if err := c.advanceDraft(next, idx); err != nil {
				return nil, err
			}
		} else if next.AllDrafted() {
			if err := c.advanceDraft(next, 0); err != nil {
				return nil, err
			}
		}
	case model.StatusSituations:
		c.advanceSituation(next)
	case model.StatusVoting:
		withdrawBallot(next, playerID)
		for voter, target := range next.Ballots {
			if target == playerID {
				delete(next.Ballots, voter)
			}
		}
		c.advanceVoting(next)
	}

	c.logger.Info("player removed",
		slog.String("room_code", string(room.Code)),
		slog.String("player_id", string(playerID)),
		slog.Bool("was_host", wasHost),
		slog.Int("remaining", len(next.Players)),
	)
	return next, nil
}

// ControllerInterface is the room state machine as seen by the registry
type ControllerInterface interface {
	NewRoom(code model.RoomCode, scenario model.Scenario, maxPlayers int, hostSession model.SessionID, hostName string) (*model.Room, error)
	Reconcile(room *model.Room, displayName string, session model.SessionID) (*model.Room, model.SessionID, error)
	AddPlayer(room *model.Room, session model.SessionID, displayName string) (*model.Room, error)
	ToggleReady(room *model.Room, session model.SessionID) (*model.Room, error)
	StartDraft(room *model.Room) (*model.Room, error)
	SelectItem(room *model.Room, session model.SessionID, itemID model.ItemID) (*model.Room, error)
	SelectItemInDraft(room *model.Room, session model.SessionID, itemID model.ItemID) (*model.Room, error)
	SelectItemForSituation(room *model.Room, session model.SessionID, itemID model.ItemID) (*model.Room, error)
	Vote(room *model.Room, voterSession model.SessionID, voted model.PlayerID) (*model.Room, error)
	RemovePlayer(room *model.Room, playerID model.PlayerID) (*model.Room, error)
}

var _ ControllerInterface = (*Controller)(nil)
