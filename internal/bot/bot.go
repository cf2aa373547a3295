// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"matka-bot/internal/config"
	"matka-bot/internal/handler"
	"matka-bot/internal/service"
)

// Bot wraps the telebot instance with application handlers.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config

	accountHandler *handler.AccountHandler
	bidHandler     *handler.BidHandler
	adminHandler   *handler.AdminHandler
	resultHandler  *handler.ResultHandler
	reportHandler  *handler.ReportHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config         *config.Config
	Clock          service.Clock
	AccountService *service.AccountService
	BidService     *service.BidService
	GameService    *service.GameService
	RateService    *service.RateService
	ResultService  *service.ResultService
	ReportService  *service.ReportService
}

// NewTeleBot creates the telebot client. It is built before the services so
// the notification sender can share it.
func NewTeleBot(cfg *config.Config) (*tele.Bot, error) {
	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  cfg.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Error().Err(err).Msg("Telegram handler error")
		},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return teleBot, nil
}

// New wires the handlers onto teleBot.
func New(teleBot *tele.Bot, deps *Dependencies) *Bot {
	b := &Bot{
		bot:            teleBot,
		cfg:            deps.Config,
		accountHandler: handler.NewAccountHandler(deps.AccountService),
		bidHandler:     handler.NewBidHandler(deps.BidService),
		adminHandler:   handler.NewAdminHandler(deps.AccountService, deps.GameService, deps.RateService),
		resultHandler:  handler.NewResultHandler(deps.ResultService, deps.Clock),
		reportHandler:  handler.NewReportHandler(deps.ReportService, deps.Clock),
	}

	b.registerMiddleware()
	b.registerHandlers()
	return b
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command handlers.
func (b *Bot) registerHandlers() {
	// Player commands
	b.bot.Handle("/start", b.accountHandler.HandleStart)
	b.bot.Handle("/balance", b.accountHandler.HandleBalance)
	b.bot.Handle("/games", b.adminHandler.HandleGames)
	b.bot.Handle("/bid", b.bidHandler.HandleBid)
	b.bot.Handle("/mybids", b.bidHandler.HandleMyBids)
	b.bot.Handle("/result", b.resultHandler.HandleResult)

	// Admin commands
	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/admin_add", b.adminHandler.HandleAdminAdd)
	adminGroup.Handle("/game_add", b.adminHandler.HandleGameAdd)
	adminGroup.Handle("/rates", b.adminHandler.HandleRates)
	adminGroup.Handle("/rate", b.adminHandler.HandleRate)
	adminGroup.Handle("/declare_open", b.resultHandler.HandleDeclareOpen)
	adminGroup.Handle("/declare_close", b.resultHandler.HandleDeclareClose)
	adminGroup.Handle("/delete_open", b.resultHandler.HandleDeleteOpen)
	adminGroup.Handle("/delete_close", b.resultHandler.HandleDeleteClose)
	adminGroup.Handle("/resettle", b.resultHandler.HandleResettle)
	adminGroup.Handle("/report", b.reportHandler.HandleReport)
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Str("username", b.bot.Me.Username).Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
