package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mcoot/survivordraft/internal/api"
	"github.com/mcoot/survivordraft/internal/config"
	"github.com/mcoot/survivordraft/internal/factory"
	"github.com/mcoot/survivordraft/internal/middleware"
	redisstorage "github.com/mcoot/survivordraft/internal/storage/redis"
	"github.com/mcoot/survivordraft/internal/ws"
)

func newServeCmd() *cobra.Command {
	var (
		envFile string
		port    int
		storage string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the game server",
		Long: `Run the HTTP API and the live websocket gateway.

Settings come from SURVIVORDRAFT_* environment variables, optionally preloaded
from a .env file. Flags override the environment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				appCfg.Port = port
			}
			if cmd.Flags().Changed("storage") {
				appCfg.Storage = storage
			}
			if cfg.Verbose {
				appCfg.LogLevel = "debug"
			}
			if err := appCfg.Validate(); err != nil {
				return err
			}
			return runServer(cmd.Context(), appCfg)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "Dotenv file to preload, ignored if missing")
	cmd.Flags().IntVar(&port, "port", 8080, "Listen port (env: SURVIVORDRAFT_PORT)")
	cmd.Flags().StringVar(&storage, "storage", config.StorageMemory, "Snapshot backend: memory, redis, sqlite (env: SURVIVORDRAFT_STORAGE)")

	return cmd
}

// factoryConfig maps server settings onto the application wiring
func factoryConfig(appCfg config.Config, logger *slog.Logger) factory.Config {
	gateway := ws.DefaultConfig()
	gateway.OriginPatterns = middleware.OriginPatterns(appCfg.CORSOrigins)
	gateway.CommandRate = rate.Limit(appCfg.WSCommandRate)
	gateway.CommandBurst = appCfg.WSCommandBurst

	out := factory.Config{
		Logger:          logger,
		StorageType:     appCfg.Storage,
		SQLitePath:      appCfg.SQLitePath,
		RandomSeed:      appCfg.RandomSeed,
		DisconnectGrace: appCfg.DisconnectGrace,
		Gateway:         &gateway,
	}
	if appCfg.Storage == config.StorageRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = appCfg.RedisURL
		redisCfg.RoomTTL = appCfg.RedisRoomTTL
		out.RedisConfig = &redisCfg
	}
	return out
}

func runServer(ctx context.Context, appCfg config.Config) error {
	level, err := appCfg.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	app, err := factory.New(factoryConfig(appCfg, logger))
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}()

	if err := app.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore rooms: %w", err)
	}

	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = appCfg.Addr()
	server := api.NewServer(app.Router(appCfg.CORSOrigins), serverConfig, logger)
	server.RegisterOnShutdown(app.Gateway.Close)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			logger.Info("shutdown signal received")
		}
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("server stopped")
	return nil
}
