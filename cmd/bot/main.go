// Package main is the entry point for the schools.by daybook bot.
//
// The architecture follows Clean Architecture and DDD:
//   - Domain: session, daybook and navigation logic with no external deps
//   - Application: use-case orchestration (Commands/Queries)
//   - Infrastructure: portal gateway, session stores, caching
//   - Interface: Telegram bot handlers
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/schoolsby-hub/daybook-bot/config"
	"github.com/schoolsby-hub/daybook-bot/internal/application/command"
	"github.com/schoolsby-hub/daybook-bot/internal/application/query"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/daybook"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
	"github.com/schoolsby-hub/daybook-bot/internal/infrastructure/external/schoolsby"
	"github.com/schoolsby-hub/daybook-bot/internal/infrastructure/persistence/postgres"
	"github.com/schoolsby-hub/daybook-bot/internal/infrastructure/persistence/redis"
	"github.com/schoolsby-hub/daybook-bot/internal/infrastructure/persistence/sessionfile"
	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	slog.SetDefault(log)
	log.Info("starting daybook bot",
		"env", cfg.App.Environment,
		"debug", cfg.App.Debug,
		"portal", cfg.Schools.BaseURL,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. SESSION STORE
	// ─────────────────────────────────────────────────────────────────────────
	store, closeStore, err := buildStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build session store: %w", err)
	}
	defer closeStore()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. PORTAL GATEWAY
	// ─────────────────────────────────────────────────────────────────────────
	gatewayConfig := schoolsby.DefaultClientConfig()
	gatewayConfig.BaseURL = cfg.Schools.BaseURL
	gatewayConfig.Timeout = cfg.Schools.Timeout
	gatewayConfig.Logger = log
	var gateway daybook.Gateway = schoolsby.NewClient(gatewayConfig)

	if cfg.Redis.Enabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize

		cache, err := redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
		} else {
			defer cache.Close()
			gateway = redis.NewCachedGateway(gateway, cache, log)
			log.Info("Redis daybook cache enabled")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	loginCmd := command.NewLoginHandler(gateway, store)
	selectPupilCmd := command.NewSelectPupilHandler(store)
	shareSessionCmd := command.NewShareSessionHandler(store)
	logoutCmd := command.NewLogoutHandler(store)

	dayHometaskQuery := query.NewGetDayHometaskHandler(gateway, store)
	quarterMarksQuery := query.NewGetQuarterMarksHandler(gateway, store)
	finalMarksQuery := query.NewGetFinalMarksHandler(gateway, store)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. TELEGRAM BOT
	// ─────────────────────────────────────────────────────────────────────────
	botConfig := telegram.DefaultBotConfig(cfg.Telegram.Token)
	botConfig.AdminChatID = cfg.Telegram.AdminChatID
	botConfig.MaxConcurrentUpdates = cfg.Telegram.MaxConcurrentUpdates
	botConfig.GracefulShutdownTimeout = cfg.App.ShutdownTimeout
	botConfig.Debug = cfg.App.Debug
	botConfig.Logger = log

	bot, err := telegram.NewBot(botConfig, telegram.BotDependencies{
		Store:             store,
		LoginCmd:          loginCmd,
		SelectPupilCmd:    selectPupilCmd,
		ShareSessionCmd:   shareSessionCmd,
		LogoutCmd:         logoutCmd,
		DayHometaskQuery:  dayHometaskQuery,
		QuarterMarksQuery: quarterMarksQuery,
		FinalMarksQuery:   finalMarksQuery,
	})
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. RUN AND SHUT DOWN GRACEFULLY
	// ─────────────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)
	go func() {
		if err := bot.Start(ctx); err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("telegram bot error: %w", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := bot.Stop(shutdownCtx); err != nil {
		log.Error("failed to stop bot gracefully", "error", err)
		return err
	}

	log.Info("shutdown completed successfully")
	return nil
}

// buildStore selects the session store backend. The returned close
// function is a no-op for the file store.
func buildStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (session.Store, func(), error) {
	switch cfg.Session.Backend {
	case config.SessionBackendPostgres:
		log.Info("connecting to database...")
		conn, err := connectPostgres(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := conn.EnsureSchema(ctx); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		log.Info("database connection established")
		return postgres.NewSessionRepository(conn), conn.Close, nil

	default:
		store, err := sessionfile.NewStore(sessionfile.StoreConfig{
			Path:       cfg.Session.FilePath,
			SealKeyHex: cfg.Session.FileSealKey,
			Logger:     log,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info("session file loaded", "path", cfg.Session.FilePath, "sealed", cfg.Session.FileSealKey != "")
		return store, func() {}, nil
	}
}

func connectPostgres(ctx context.Context, cfg *config.Config) (*postgres.Connection, error) {
	if cfg.Postgres.URL != "" {
		return postgres.NewConnectionFromURL(ctx, cfg.Postgres.URL)
	}

	pgCfg := postgres.DefaultConfig()
	pgCfg.Host = cfg.Postgres.Host
	pgCfg.Port = cfg.Postgres.Port
	pgCfg.Database = cfg.Postgres.Database
	pgCfg.User = cfg.Postgres.User
	pgCfg.Password = cfg.Postgres.Password
	pgCfg.SSLMode = cfg.Postgres.SSLMode
	pgCfg.MaxConns = cfg.Postgres.MaxConns
	pgCfg.MinConns = cfg.Postgres.MinConns
	return postgres.NewConnection(ctx, pgCfg)
}

func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.App.Debug {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler).With("app", cfg.App.Name)
}
