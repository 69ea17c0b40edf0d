package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/survivordraft/internal/api/response"
	"github.com/mcoot/survivordraft/internal/config"
	"github.com/mcoot/survivordraft/internal/factory"
	"github.com/mcoot/survivordraft/internal/ws"
)

func startServer(t *testing.T) (*factory.TestApp, string) {
	t.Helper()
	app := factory.NewTestApp()
	server := httptest.NewServer(app.Router(nil))
	t.Cleanup(server.Close)
	t.Cleanup(func() { assert.NoError(t, app.Close()) })
	return app, server.URL
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestScenariosCommand_Text(t *testing.T) {
	_, url := startServer(t)

	out, _, err := execute(t, "--server", url, "scenarios")
	require.NoError(t, err)
	assert.Contains(t, out, "desert: ")
	assert.Contains(t, out, "situations)")
}

func TestRoomCreateAndGet(t *testing.T) {
	app, url := startServer(t)
	app.MockRandom.QueueString("ROOM01")

	out, _, err := execute(t, "--server", url, "-o", "json",
		"room", "create", "--name", "Alice", "--scenario", "desert", "--max-players", "4")
	require.NoError(t, err)

	var created response.RoomSession
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, "ROOM01", created.Room.Code)
	assert.NotEmpty(t, created.Session)

	out, _, err = execute(t, "--server", url, "room", "get", "room01")
	require.NoError(t, err)
	assert.Contains(t, out, "Room: ROOM01")
	assert.Contains(t, out, "Players (1/4):")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "[host]")
}

func TestRoomCreate_RequiresFlags(t *testing.T) {
	_, url := startServer(t)

	_, _, err := execute(t, "--server", url, "room", "create", "--name", "Alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario")
}

func TestRoomJoin_ReportsAPIError(t *testing.T) {
	_, url := startServer(t)

	_, _, err := execute(t, "--server", url, "room", "join", "NOPE00", "--name", "Bob")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "ROOM_NOT_FOUND", apiErr.Code)
}

func TestHealthCommand(t *testing.T) {
	_, url := startServer(t)

	out, _, err := execute(t, "--server", url, "health")
	require.NoError(t, err)
	assert.Equal(t, "Status: ok\n", out)
}

func TestRootCmd_RejectsUnknownOutput(t *testing.T) {
	_, url := startServer(t)

	_, _, err := execute(t, "--server", url, "-o", "yaml", "health")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestDefaultConfig_ReadsEnvironment(t *testing.T) {
	t.Setenv("SURVIVORDRAFT_SERVER", "http://game.example:9000")
	t.Setenv("SURVIVORDRAFT_OUTPUT", "json")

	got := DefaultConfig()
	assert.Equal(t, "http://game.example:9000", got.ServerURL)
	assert.Equal(t, "json", got.Output)
	assert.False(t, got.Verbose)

	t.Setenv("SURVIVORDRAFT_VERBOSE", "sometimes")
	got = DefaultConfig()
	assert.Equal(t, "http://localhost:8080", got.ServerURL)
	assert.Equal(t, "text", got.Output)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		want    ws.ClientMessage
		wantErr bool
	}{
		{line: "ready", want: ws.ClientMessage{Type: ws.TypePlayerReady, RoomCode: "ROOM01"}},
		{line: "START", want: ws.ClientMessage{Type: ws.TypeStartGame, RoomCode: "ROOM01"}},
		{line: "pick water", want: ws.ClientMessage{Type: ws.TypeSelectItem, RoomCode: "ROOM01", ItemID: "water"}},
		{line: "  vote  player-2 ", want: ws.ClientMessage{Type: ws.TypeVote, RoomCode: "ROOM01", PlayerID: "player-2"}},
		{line: "pick", wantErr: true},
		{line: "vote a b", wantErr: true},
		{line: "dance", wantErr: true},
		{line: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseCommand(tt.line, "ROOM01")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseCommand("quit", "ROOM01")
	assert.ErrorIs(t, err, errQuit)
}

func TestWebSocketURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:8080/ws", NewClient("http://localhost:8080/").WebSocketURL())
	assert.Equal(t, "wss://game.example/ws", NewClient("https://game.example").WebSocketURL())
}

func TestOutput_PrintStream(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput("text", &buf, &buf)

	out.PrintStream(ws.ServerMessage{Type: ws.TypeConnected, Session: "abc"})
	out.PrintStream(ws.ServerMessage{Type: ws.TypeError, Code: "NOT_HOST", Message: "only the host can start the game"})
	out.PrintStream(ws.ServerMessage{Type: ws.TypeMessage, Message: "Bob left the game."})

	assert.Equal(t, "Connected (session abc)\n"+
		"Error: only the host can start the game (NOT_HOST)\n"+
		">> Bob left the game.\n", buf.String())
}

func TestFactoryConfig(t *testing.T) {
	appCfg := config.Config{
		Storage:        config.StorageRedis,
		RedisURL:       "redis://cache:6379",
		RedisRoomTTL:   0,
		CORSOrigins:    []string{"https://game.example"},
		WSCommandRate:  2,
		WSCommandBurst: 3,
		RandomSeed:     42,
	}

	got := factoryConfig(appCfg, nil)

	require.NotNil(t, got.RedisConfig)
	assert.Equal(t, "redis://cache:6379", got.RedisConfig.URL)
	assert.Zero(t, got.RedisConfig.RoomTTL)
	require.NotNil(t, got.Gateway)
	assert.Equal(t, []string{"game.example"}, got.Gateway.OriginPatterns)
	assert.Equal(t, 3, got.Gateway.CommandBurst)
	assert.EqualValues(t, 2, got.Gateway.CommandRate)
	assert.Equal(t, uint64(42), got.RandomSeed)

	appCfg.Storage = config.StorageMemory
	assert.Nil(t, factoryConfig(appCfg, nil).RedisConfig)
}
