// Package main is the entry point for the Matka bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"matka-bot/internal/bot"
	"matka-bot/internal/config"
	"matka-bot/internal/game"
	"matka-bot/internal/game/matka"
	"matka-bot/internal/notify"
	"matka-bot/internal/pkg/db"
	"matka-bot/internal/pkg/events"
	"matka-bot/internal/pkg/lock"
	"matka-bot/internal/pkg/metrics"
	"matka-bot/internal/repository"
	"matka-bot/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Msg("Configuration loaded successfully")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg, os.Args[2:]); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
		return
	}

	if err := db.MigrateUp(cfg.Database.DSN()); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	publisher, nc := newPublisher(cfg)
	if nc != nil {
		defer nc.Drain()
	}

	teleBot, err := bot.NewTeleBot(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	var notifier service.Notifier = service.NoopNotifier{}
	if cfg.Notify.Enabled {
		dispatcher := notify.NewDispatcher(notify.NewTelegramSender(teleBot), cfg.Notify.QueueSize, cfg.Notify.Workers)
		dispatcher.Start(ctx)
		defer dispatcher.Stop()
		notifier = dispatcher
	}

	store := repository.NewStore(dbPool.Pool)
	userLock := lock.NewUserLock()
	clock := service.NewClock(cfg.Location())

	log.Info().
		Int("category_count", game.DefaultRegistry.Count()).
		Msg("Game categories registered")

	rules := matka.DefaultRules()
	rules.EagerCloseHalfSangamWin = cfg.Settlement.EagerCloseHalfSangamWin
	rules.PlainPanaFollowsSession = cfg.Settlement.PlainPanaFollowsSession

	settlementService := service.NewSettlementService(store, userLock, rules, cfg.Settlement.Workers, notifier, publisher)
	deps := &bot.Dependencies{
		Config:         cfg,
		Clock:          clock,
		AccountService: service.NewAccountService(store, userLock),
		BidService: service.NewBidService(store, game.DefaultRegistry, userLock, clock, service.BidLimits{
			MinAmount: cfg.Bids.MinAmount,
			MaxAmount: cfg.Bids.MaxAmount,
		}, rules),
		GameService:   service.NewGameService(store, game.DefaultRegistry),
		RateService:   service.NewRateService(store),
		ResultService: service.NewResultService(store, settlementService, userLock, lock.NewGameDayLock(), cfg.Settlement.LockTimeout, publisher),
		ReportService: service.NewReportService(store),
	}

	telegramBot := bot.New(teleBot, deps)

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
				log.Error().Err(err).Msg("Metrics server stopped")
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}

// newPublisher connects to NATS when configured. Without a URL, or when the
// server is unreachable, events are dropped.
func newPublisher(cfg *config.Config) (events.Publisher, *nats.Conn) {
	if cfg.NATS.URL == "" {
		return events.Noop{}, nil
	}
	nc, err := events.Connect(cfg.NATS.URL)
	if err != nil {
		log.Error().Err(err).Msg("Event publishing disabled")
		return events.Noop{}, nil
	}
	return events.NewNATSPublisher(nc, cfg.NATS.SubjectPrefix), nc
}

// runMigrate handles "migrate up", "migrate down [steps]" and "migrate status".
func runMigrate(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: migrate up|down [steps]|status")
	}
	dsn := cfg.Database.DSN()

	switch args[0] {
	case "up":
		return db.MigrateUp(dsn)
	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid steps %q: %w", args[1], err)
			}
			steps = n
		}
		return db.MigrateDown(dsn, steps)
	case "status":
		version, dirty, ok, err := db.MigrationStatus(dsn)
		if err != nil {
			return err
		}
		if !ok {
			log.Info().Msg("No migrations applied")
			return nil
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Migration status")
		return nil
	default:
		return fmt.Errorf("unknown migrate command %q", args[0])
	}
}
