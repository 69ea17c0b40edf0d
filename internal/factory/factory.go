package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/survivordraft/internal/api"
	"github.com/mcoot/survivordraft/internal/catalog"
	"github.com/mcoot/survivordraft/internal/dependencies/clock"
	"github.com/mcoot/survivordraft/internal/dependencies/random"
	"github.com/mcoot/survivordraft/internal/services/allocator"
	"github.com/mcoot/survivordraft/internal/services/game"
	"github.com/mcoot/survivordraft/internal/services/lobby"
	"github.com/mcoot/survivordraft/internal/services/persistence"
	"github.com/mcoot/survivordraft/internal/storage"
	"github.com/mcoot/survivordraft/internal/storage/memory"
	redisstorage "github.com/mcoot/survivordraft/internal/storage/redis"
	"github.com/mcoot/survivordraft/internal/storage/sqlite"
	"github.com/mcoot/survivordraft/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage   storage.Storage
	Snapshots storage.SnapshotStore
	Writer    *persistence.Writer

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Catalog         *catalog.Catalog
	Allocator       *allocator.Service
	GameController  *game.Controller
	LobbyController *lobby.Controller
	HubManager      *ws.HubManager
	Gateway         *ws.Gateway

	logger  *slog.Logger
	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the snapshot backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory". Live rooms are always held in memory.
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// RandomSeed makes games reproducible; 0 uses crypto randomness
	RandomSeed uint64
	// DisconnectGrace defaults to lobby.DefaultDisconnectGrace
	DisconnectGrace time.Duration
	// Gateway defaults to ws.DefaultConfig()
	Gateway *ws.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	var snapshots storage.SnapshotStore
	var closers []io.Closer
	switch storageType {
	case StorageTypeMemory:
		snapshots = memory.NewSnapshotStore()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		snapshots = redisStore
		closers = append(closers, redisStore)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		snapshots = sqliteStore
		closers = append(closers, sqliteStore)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}

	// Create external dependencies
	clk := clock.New()
	var rnd random.Random = random.New()
	if cfg.RandomSeed != 0 {
		rnd = random.NewSeeded(cfg.RandomSeed)
	}

	grace := cfg.DisconnectGrace
	if grace == 0 {
		grace = lobby.DefaultDisconnectGrace
	}
	gatewayCfg := ws.DefaultConfig()
	if cfg.Gateway != nil {
		gatewayCfg = *cfg.Gateway
	}

	app := newWithDependencies(memory.New(), snapshots, clk, rnd, grace, gatewayCfg, logger)
	app.closers = closers
	app.logger.Info("application wired",
		slog.String("storage", storageType),
		slog.Bool("seeded", cfg.RandomSeed != 0),
	)
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	snapshots storage.SnapshotStore,
	clk clock.Clock,
	rnd random.Random,
	grace time.Duration,
	gatewayCfg ws.Config,
	logger *slog.Logger,
) *App {
	cat := catalog.Default()
	allocatorService := allocator.New(rnd)
	writer := persistence.NewWriter(snapshots, logger)
	gameController := game.NewController(allocatorService, clk, rnd, logger)
	lobbyController := lobby.NewController(store, gameController, cat, writer, clk, rnd, logger, grace)
	hubManager := ws.NewHubManager(logger)
	gateway := ws.NewGateway(lobbyController, hubManager, gatewayCfg, logger)
	lobbyController.SetNotifier(gateway.HandleEvent)

	return &App{
		Storage:         store,
		Snapshots:       snapshots,
		Writer:          writer,
		Clock:           clk,
		Random:          rnd,
		Catalog:         cat,
		Allocator:       allocatorService,
		GameController:  gameController,
		LobbyController: lobbyController,
		HubManager:      hubManager,
		Gateway:         gateway,
		logger:          logger,
	}
}

// Router builds the HTTP handler serving the API and the websocket gateway
func (a *App) Router(corsOrigins []string) http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:      a.logger,
		Rooms:       a.LobbyController,
		Gateway:     a.Gateway,
		CORSOrigins: corsOrigins,
	})
}

// Restore loads persisted rooms into the live store
func (a *App) Restore(ctx context.Context) error {
	return a.LobbyController.Restore(ctx, a.Snapshots)
}

// Close shuts components down in dependency order: connections first, then
// pending removals, then queued snapshot writes, then the snapshot store.
func (a *App) Close() error {
	a.Gateway.Close()
	a.LobbyController.Close()
	a.Writer.Close()

	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
