package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/survivordraft/internal/ws"
)

var errQuit = errors.New("quit")

func newPlayCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "play <code>",
		Short: "Join a room over a live connection",
		Long: `Open a live connection, take a seat in the room and stream its updates.

Type commands on stdin:
  ready            toggle your ready flag
  start            start the draft (host only)
  pick <item-id>   draft an item, or answer the current situation with one
  vote <player-id> vote for the best answer
  quit             leave

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, strings.ToUpper(args[0]), name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Your display name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// parseCommand turns one line of input into a client message
func parseCommand(line, code string) (ws.ClientMessage, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ws.ClientMessage{}, errors.New("empty command")
	}

	msg := ws.ClientMessage{RoomCode: code}
	switch verb := strings.ToLower(fields[0]); {
	case verb == "quit" || verb == "exit":
		return ws.ClientMessage{}, errQuit
	case verb == "ready" && len(fields) == 1:
		msg.Type = ws.TypePlayerReady
	case verb == "start" && len(fields) == 1:
		msg.Type = ws.TypeStartGame
	case verb == "pick" && len(fields) == 2:
		msg.Type = ws.TypeSelectItem
		msg.ItemID = fields[1]
	case verb == "vote" && len(fields) == 2:
		msg.Type = ws.TypeVote
		msg.PlayerID = fields[1]
	default:
		return ws.ClientMessage{}, fmt.Errorf("unknown command %q", line)
	}
	return msg, nil
}

func runPlay(cmd *cobra.Command, code, name string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, _, err := websocket.Dial(ctx, client.WebSocketURL(), nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.CloseNow() }()

	out := output(cmd)
	join := ws.ClientMessage{Type: ws.TypeJoinRoom, RoomCode: code, PlayerName: name}
	if err := wsjson.Write(ctx, conn, join); err != nil {
		return fmt.Errorf("join failed: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			var msg ws.ServerMessage
			if err := wsjson.Read(gctx, conn, &msg); err != nil {
				if gctx.Err() != nil || websocket.CloseStatus(err) != -1 {
					return nil
				}
				return fmt.Errorf("stream error: %w", err)
			}
			out.PrintStream(msg)
		}
	})

	lines := scanLines(gctx, cmd.InOrStdin())
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					// No more input; keep watching until interrupted
					lines = nil
					continue
				}
				if strings.TrimSpace(line) == "" {
					continue
				}
				msg, err := parseCommand(line, code)
				if errors.Is(err, errQuit) {
					_ = conn.Close(websocket.StatusNormalClosure, "")
					return errQuit
				}
				if err != nil {
					out.PrintError(err)
					continue
				}
				if err := wsjson.Write(gctx, conn, msg); err != nil {
					return fmt.Errorf("send failed: %w", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	out.PrintMessage("Disconnected")
	return nil
}

// scanLines feeds r line by line; the channel closes at EOF
func scanLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
