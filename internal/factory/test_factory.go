package factory

import (
	"time"

	"github.com/mcoot/survivordraft/internal/dependencies/mocks"
	"github.com/mcoot/survivordraft/internal/services/lobby"
	"github.com/mcoot/survivordraft/internal/storage/memory"
	"github.com/mcoot/survivordraft/internal/testutil"
	"github.com/mcoot/survivordraft/internal/ws"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom

	// MemorySnapshots is the snapshot store behind the persistence writer
	MemorySnapshots *memory.SnapshotStore
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithGateway(ws.DefaultConfig())
}

// NewTestAppWithGateway is NewTestApp with custom websocket settings
func NewTestAppWithGateway(gatewayCfg ws.Config) *TestApp {
	store := memory.New()
	snapshots := memory.NewSnapshotStore()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, snapshots, mockClock, mockRandom, lobby.DefaultDisconnectGrace, gatewayCfg, testutil.NopLogger())

	return &TestApp{
		App:             app,
		MockClock:       mockClock,
		MockRandom:      mockRandom,
		MemorySnapshots: snapshots,
	}
}
