// Package ws is the live transport: each websocket connection is one player
// session, and every room gets a hub that pushes snapshots to its connections.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mcoot/survivordraft/internal/model"
	"github.com/mcoot/survivordraft/internal/services/lobby"
)

// Config controls the gateway
type Config struct {
	// OriginPatterns are host patterns accepted for cross-origin upgrades
	OriginPatterns []string

	// CommandRate and CommandBurst throttle each connection's commands
	CommandRate  rate.Limit
	CommandBurst int

	// WriteTimeout bounds a single write to a peer
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults for the gateway
func DefaultConfig() Config {
	return Config{
		CommandRate:  5,
		CommandBurst: 10,
		WriteTimeout: 5 * time.Second,
	}
}

// Gateway accepts websocket connections and turns their messages into room commands
type Gateway struct {
	rooms  lobby.ControllerInterface
	hubs   *HubManager
	config Config
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewGateway creates a new Gateway
func NewGateway(rooms lobby.ControllerInterface, hubs *HubManager, config Config, logger *slog.Logger) *Gateway {
	ctx, cancel := context.WithCancel(context.Background())
	return &Gateway{
		rooms:  rooms,
		hubs:   hubs,
		config: config,
		logger: logger.With(slog.String("component", "ws")),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ServeHTTP upgrades the request and serves the connection until it closes
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: g.config.OriginPatterns,
	})
	if err != nil {
		g.logger.Debug("websocket accept failed", slog.String("error", err.Error()))
		return
	}

	g.wg.Add(1)
	defer g.wg.Done()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(g.ctx, cancel)
	defer stop()

	id := uuid.NewString()
	c := &connection{
		gateway: g,
		conn:    conn,
		session: model.SessionID(id),
		client:  NewClient(id, model.SessionID(id)),
		limiter: rate.NewLimiter(g.config.CommandRate, g.config.CommandBurst),
		logger:  g.logger.With(slog.String("connection_id", id)),
	}
	c.serve(ctx)
}

// HandleEvent pushes registry changes that happened outside a command
func (g *Gateway) HandleEvent(event model.Event) {
	switch event.Type {
	case model.EventPlayerRemoved:
		g.hubs.Broadcast(event.RoomCode, roomMessage(TypeRoomUpdated, event.Room, ""))
		if payload, ok := event.Payload.(model.PlayerRemovedPayload); ok {
			g.hubs.Broadcast(event.RoomCode, textMessage(fmt.Sprintf("%s left the game.", payload.DisplayName)))
		}
	case model.EventHostChanged:
		payload, ok := event.Payload.(model.HostChangedPayload)
		if !ok || event.Room == nil {
			return
		}
		if host := event.Room.GetPlayer(payload.NewHostID); host != nil {
			g.hubs.Broadcast(event.RoomCode, textMessage(fmt.Sprintf("%s is now the host.", host.DisplayName)))
		}
	case model.EventRoomDeleted:
		g.hubs.RemoveHub(event.RoomCode)
	}
}

// Close drops every open connection and waits for their handlers to finish
func (g *Gateway) Close() {
	g.cancel()
	g.hubs.CloseAll()
	g.wg.Wait()
}

// connection is the per-socket state; only its serve goroutine touches hub
type connection struct {
	gateway *Gateway
	conn    *websocket.Conn
	session model.SessionID
	client  *Client
	limiter *rate.Limiter
	logger  *slog.Logger
	hub     *Hub
}

func (c *connection) serve(ctx context.Context) {
	c.logger.Info("ws connection opened")

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeLoop(ctx)
	}()

	defer func() {
		if c.hub != nil {
			c.gateway.hubs.Leave(c.hub, c.client)
		}
		c.client.Close()
		<-writerDone
		_ = c.conn.Close(websocket.StatusNormalClosure, "")
		c.gateway.rooms.HandleDisconnect(c.session)
		c.logger.Info("ws connection closed")
	}()

	c.client.Send(encode(ServerMessage{Type: TypeConnected, Session: string(c.session)}))

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if ctx.Err() == nil {
					c.logger.Debug("ws read failed", slog.String("error", err.Error()))
				}
			}
			return
		}

		if !c.limiter.Allow() {
			c.client.Send(errorMessage(CodeRateLimited, "too many messages, slow down"))
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.client.Send(errorMessage(CodeBadMessage, "bad json"))
			continue
		}
		c.handle(ctx, msg)
	}
}

func (c *connection) writeLoop(ctx context.Context) {
	for message := range c.client.Messages() {
		writeCtx, cancel := context.WithTimeout(ctx, c.gateway.config.WriteTimeout)
		err := c.conn.Write(writeCtx, websocket.MessageText, message)
		cancel()
		if err != nil {
			// Keep draining so Close never waits on a dead peer
			for range c.client.Messages() {
			}
			return
		}
	}
}

func (c *connection) handle(ctx context.Context, msg ClientMessage) {
	rooms := c.gateway.rooms
	code := model.RoomCode(msg.RoomCode)
	if code == "" {
		c.fail(msg.Type, model.ErrMissingFields)
		return
	}

	switch msg.Type {
	case TypeJoinRoom:
		c.joinRoom(ctx, code, msg.PlayerName)

	case TypePlayerReady:
		room, err := rooms.ToggleReady(ctx, code, c.session)
		c.publish(msg.Type, room, err, "")

	case TypeStartGame:
		c.startGame(ctx, code)

	case TypeSelectItem:
		room, err := rooms.SelectItem(ctx, code, c.session, model.ItemID(msg.ItemID))
		text := ""
		if err == nil {
			text = selectionText(room, c.session)
		}
		c.publish(msg.Type, room, err, text)

	case TypeVote:
		room, err := rooms.Vote(ctx, code, c.session, model.PlayerID(msg.PlayerID))
		text := ""
		if err == nil {
			text = voteText(room)
		}
		c.publish(msg.Type, room, err, text)

	default:
		c.client.Send(errorMessage(CodeBadMessage, "unknown message type"))
	}
}

func (c *connection) joinRoom(ctx context.Context, code model.RoomCode, playerName string) {
	if playerName == "" {
		c.fail(TypeJoinRoom, model.ErrMissingFields)
		return
	}

	room, err := c.gateway.rooms.JoinRoom(ctx, code, c.session, playerName)
	if err != nil {
		c.fail(TypeJoinRoom, err)
		return
	}

	if c.hub == nil || c.hub.roomCode != room.Code {
		if c.hub != nil {
			c.gateway.hubs.Leave(c.hub, c.client)
		}
		c.hub = c.gateway.hubs.Join(room.Code, c.client)
	}
	c.gateway.hubs.Broadcast(room.Code, roomMessage(TypeRoomUpdated, room, ""))
}

// startGame is host-only; the room itself does not know who may start it
func (c *connection) startGame(ctx context.Context, code model.RoomCode) {
	room, ok := c.gateway.rooms.GetRoom(ctx, code)
	if !ok {
		c.fail(TypeStartGame, model.ErrRoomNotFound)
		return
	}
	if p := room.PlayerBySession(c.session); p == nil || !p.IsHost {
		c.fail(TypeStartGame, model.ErrNotHost)
		return
	}

	room, err := c.gateway.rooms.StartDraft(ctx, code)
	if err != nil {
		c.fail(TypeStartGame, err)
		return
	}
	c.gateway.hubs.Broadcast(room.Code, roomMessage(TypeDraftStarted, room, draftStartedText(room)))
}

func (c *connection) publish(command string, room *model.Room, err error, text string) {
	if err != nil {
		c.fail(command, err)
		return
	}
	c.gateway.hubs.Broadcast(room.Code, roomMessage(TypeRoomUpdated, room, ""))
	if text != "" {
		c.gateway.hubs.Broadcast(room.Code, textMessage(text))
	}
}

// fail reports a rejected command to the acting connection only
func (c *connection) fail(command string, err error) {
	message := err.Error()
	if kind := model.KindOf(err); kind == model.KindInternal || kind == model.KindFatal {
		c.logger.Error("ws command failed",
			slog.String("command", command),
			slog.String("error", err.Error()),
		)
		message = "internal error"
	}
	c.client.Send(errorMessage(model.CodeOf(err), message))
}
