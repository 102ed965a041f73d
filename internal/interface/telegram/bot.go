package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/schoolsby-hub/daybook-bot/internal/application/command"
	"github.com/schoolsby-hub/daybook-bot/internal/application/query"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
	"github.com/schoolsby-hub/daybook-bot/internal/infrastructure/external/telegram"
	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram/handler"
	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram/middleware"
	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOT CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// BotConfig contains configuration for the Telegram bot.
type BotConfig struct {
	// Token is the Telegram Bot API token.
	Token string

	// PollingTimeout is the timeout for long polling (in seconds).
	PollingTimeout int

	// AdminChatID enables /broadcast for this chat. Zero disables it.
	AdminChatID int64

	// Debug enables debug logging.
	Debug bool

	// Logger for structured logging.
	Logger *slog.Logger

	// MaxConcurrentUpdates limits concurrent update processing.
	MaxConcurrentUpdates int

	// GracefulShutdownTimeout is the timeout for graceful shutdown.
	GracefulShutdownTimeout time.Duration
}

// DefaultBotConfig returns sensible defaults.
func DefaultBotConfig(token string) BotConfig {
	return BotConfig{
		Token:                   token,
		PollingTimeout:          30,
		Logger:                  slog.Default(),
		MaxConcurrentUpdates:    100,
		GracefulShutdownTimeout: 30 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// BOT DEPENDENCIES
// Aggregates all dependencies needed by handlers.
// ══════════════════════════════════════════════════════════════════════════════

// BotDependencies contains all dependencies for the bot handlers.
type BotDependencies struct {
	// Store resolves session identities.
	Store session.Store

	// Commands
	LoginCmd        *command.LoginHandler
	SelectPupilCmd  *command.SelectPupilHandler
	ShareSessionCmd *command.ShareSessionHandler
	LogoutCmd       *command.LogoutHandler

	// Queries
	DayHometaskQuery  *query.GetDayHometaskHandler
	QuarterMarksQuery *query.GetQuarterMarksHandler
	FinalMarksQuery   *query.GetFinalMarksHandler
}

// ══════════════════════════════════════════════════════════════════════════════
// BOT
// Main bot structure that orchestrates Telegram interactions.
// ══════════════════════════════════════════════════════════════════════════════

// Bot is the main Telegram bot controller.
type Bot struct {
	config BotConfig
	client *telegram.Client
	router *Router
	logger *slog.Logger

	identityResolver   *middleware.IdentityResolver
	recoveryMiddleware *middleware.RecoveryMiddleware

	// Lifecycle management
	running   bool
	runningMu sync.RWMutex
	stopCh    chan struct{}
	updateSem chan struct{}
	wg        sync.WaitGroup

	stats *BotStats
}

// BotStats holds runtime statistics.
type BotStats struct {
	mu              sync.RWMutex
	StartedAt       time.Time
	UpdatesReceived int64
	UpdatesHandled  int64
	ErrorsCount     int64
	CommandsCount   map[string]int64
}

// NewBot creates a new Telegram bot with all dependencies.
func NewBot(config BotConfig, deps BotDependencies) (*Bot, error) {
	if config.Token == "" {
		return nil, errors.New("telegram token is required")
	}
	if deps.Store == nil {
		return nil, errors.New("session store is required")
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	// Create Telegram client
	clientConfig := telegram.DefaultClientConfig(config.Token)
	clientConfig.Logger = config.Logger
	clientConfig.Debug = config.Debug
	client := telegram.NewClient(clientConfig)

	// Create presenters
	keyboards := presenter.NewKeyboardBuilder()
	hometaskPresenter := presenter.NewHometaskPresenter()
	marksPresenter := presenter.NewMarksPresenter()

	// Create handlers
	startHandler := handler.NewStartHandler(marksPresenter)
	loginHandler := handler.NewLoginHandler(deps.LoginCmd, marksPresenter)
	setHandler := handler.NewSetHandler(deps.ShareSessionCmd)
	selectHandler := handler.NewSelectHandler(keyboards)
	hometaskHandler := handler.NewHometaskHandler(keyboards)
	marksHandler := handler.NewMarksHandler(deps.QuarterMarksQuery, marksPresenter)
	lastPageHandler := handler.NewLastPageHandler(deps.FinalMarksQuery, marksPresenter)
	stopHandler := handler.NewStopHandler(deps.LogoutCmd)
	broadcastHandler := handler.NewBroadcastHandler(deps.Store, config.AdminChatID)

	// Create callback handlers
	dateCallback := handler.NewDateCallbackHandler(keyboards, deps.DayHometaskQuery, hometaskPresenter)
	pupilCallback := handler.NewPupilCallbackHandler(deps.SelectPupilCmd)

	// Create middleware
	identityResolver := middleware.NewIdentityResolver(deps.Store)
	recoveryConfig := middleware.DefaultRecoveryConfig()
	recoveryConfig.Logger = config.Logger
	recoveryMiddleware := middleware.NewRecoveryMiddleware(recoveryConfig)

	// Create router with all handlers
	router := NewRouter(RouterConfig{
		Logger: config.Logger,
		Debug:  config.Debug,
	})

	// Register command handlers
	router.RegisterCommand("start", startHandler)
	router.RegisterCommand("help", startHandler)
	router.RegisterCommand("login", loginHandler)
	router.RegisterCommand("set", setHandler)
	router.RegisterCommand("select", selectHandler)
	router.RegisterCommand("hometask", hometaskHandler)
	router.RegisterCommand("marks", marksHandler)
	router.RegisterCommand("lastpage", lastPageHandler)
	router.RegisterCommand("stop", stopHandler)
	router.RegisterCommand("broadcast", broadcastHandler)

	// Register callback handlers. Date payloads carry no prefix, so the
	// date picker is the default.
	router.RegisterCallbackPrefix("ID: ", pupilCallback)
	router.SetDefaultCallbackHandler(router.HandleDateCallback(dateCallback))
	router.RegisterTextInputHandler(loginHandler)

	bot := &Bot{
		config:             config,
		client:             client,
		router:             router,
		logger:             config.Logger,
		identityResolver:   identityResolver,
		recoveryMiddleware: recoveryMiddleware,
		stopCh:             make(chan struct{}),
		updateSem:          make(chan struct{}, config.MaxConcurrentUpdates),
		stats: &BotStats{
			CommandsCount: make(map[string]int64),
		},
	}

	return bot, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE MANAGEMENT
// ══════════════════════════════════════════════════════════════════════════════

// Start starts the bot and begins receiving updates via long polling.
func (b *Bot) Start(ctx context.Context) error {
	b.runningMu.Lock()
	if b.running {
		b.runningMu.Unlock()
		return errors.New("bot is already running")
	}
	b.running = true
	b.stats.StartedAt = time.Now()
	b.runningMu.Unlock()

	b.logger.Info("starting telegram bot", "debug", b.config.Debug)

	if err := b.verifyToken(ctx); err != nil {
		return fmt.Errorf("failed to verify bot token: %w", err)
	}

	return b.client.StartPolling(ctx, func(ctx context.Context, update *telegram.Update) error {
		return b.handleUpdate(ctx, update)
	})
}

// Stop gracefully stops the bot.
func (b *Bot) Stop(ctx context.Context) error {
	b.runningMu.Lock()
	if !b.running {
		b.runningMu.Unlock()
		return nil
	}
	b.running = false
	b.runningMu.Unlock()

	b.logger.Info("stopping telegram bot")
	close(b.stopCh)

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(b.config.GracefulShutdownTimeout):
		b.logger.Warn("graceful shutdown timeout exceeded")
	case <-ctx.Done():
		b.logger.Warn("context cancelled during shutdown")
		return ctx.Err()
	}

	return nil
}

// IsRunning returns whether the bot is currently running.
func (b *Bot) IsRunning() bool {
	b.runningMu.RLock()
	defer b.runningMu.RUnlock()
	return b.running
}

// verifyToken verifies the bot token by calling getMe.
func (b *Bot) verifyToken(ctx context.Context) error {
	me, err := b.client.GetMe(ctx)
	if err != nil {
		return err
	}

	b.logger.Info("bot verified",
		"id", me.ID,
		"username", me.Username,
	)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE HANDLING
// ══════════════════════════════════════════════════════════════════════════════

// handleUpdate processes a single Telegram update.
func (b *Bot) handleUpdate(ctx context.Context, update *telegram.Update) error {
	select {
	case b.updateSem <- struct{}{}:
		defer func() { <-b.updateSem }()
	case <-ctx.Done():
		return ctx.Err()
	}

	b.wg.Add(1)
	defer b.wg.Done()

	b.stats.mu.Lock()
	b.stats.UpdatesReceived++
	b.stats.mu.Unlock()

	startTime := time.Now()

	var err error
	switch {
	case update.Message != nil:
		err = b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		err = b.handleCallbackQuery(ctx, update.CallbackQuery)
	default:
		return nil
	}

	if err != nil {
		b.stats.mu.Lock()
		b.stats.ErrorsCount++
		b.stats.mu.Unlock()
		b.logger.Error("failed to handle update",
			"update_id", update.UpdateID,
			"error", err,
			"duration", time.Since(startTime),
		)
	} else {
		b.stats.mu.Lock()
		b.stats.UpdatesHandled++
		b.stats.mu.Unlock()
	}

	return err
}

// handleMessage processes a Telegram message.
func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) error {
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return nil
	}

	if cmd := telegram.ExtractCommand(msg); cmd != "" {
		return b.handleCommand(ctx, cmd, telegram.ExtractCommandArgs(msg), msg)
	}

	if isCredentialReply(msg) {
		return b.handleCredentialReply(ctx, msg)
	}

	return nil
}

// isCredentialReply reports whether a message is a reply to the login
// prompt. Credentials are accepted only this way and only in private.
func isCredentialReply(msg *telegram.Message) bool {
	return telegram.IsPrivateChat(msg) &&
		msg.Text != "" &&
		msg.ReplyToMessage != nil &&
		msg.ReplyToMessage.From != nil &&
		msg.ReplyToMessage.From.IsBot &&
		msg.ReplyToMessage.Text == handler.LoginPromptText
}

// handleCommand processes a bot command.
func (b *Bot) handleCommand(ctx context.Context, cmd, args string, msg *telegram.Message) error {
	telegramID := msg.From.ID
	chatID := msg.Chat.ID
	correlationID := uuid.NewString()

	b.stats.mu.Lock()
	b.stats.CommandsCount[cmd]++
	b.stats.mu.Unlock()

	if b.config.Debug {
		b.logger.Debug("command received",
			"command", cmd,
			"telegram_id", telegramID,
			"chat_id", chatID,
			"correlation_id", correlationID,
		)
	}

	identity, err := b.identityResolver.Resolve(ctx, telegramID, chatID)
	if err != nil {
		b.logger.Error("identity resolution failed",
			"error", err,
			"correlation_id", correlationID,
		)
		_, sendErr := b.client.SendSilent(ctx, chatID, handler.SomethingWentWrongText)
		if sendErr != nil {
			return sendErr
		}
		return err
	}
	ctx = middleware.ContextWithIdentity(ctx, identity)

	result, err := b.recoveryMiddleware.Run(ctx, "command:"+cmd, func() error {
		return b.router.HandleCommand(ctx, cmd, CommandContext{
			TelegramID:    telegramID,
			ChatID:        chatID,
			MessageID:     msg.MessageID,
			Args:          args,
			Identity:      identity,
			CorrelationID: correlationID,
			Message:       msg,
			Client:        b.client,
		})
	})
	if result.Recovered {
		_, err := b.client.SendSilent(ctx, chatID, result.UserMessage)
		return err
	}
	return err
}

// handleCredentialReply processes the login flow's credential message.
func (b *Bot) handleCredentialReply(ctx context.Context, msg *telegram.Message) error {
	correlationID := uuid.NewString()

	result, err := b.recoveryMiddleware.Run(ctx, "login:credentials", func() error {
		return b.router.HandleTextInput(ctx, TextInputContext{
			TelegramID:    msg.From.ID,
			ChatID:        msg.Chat.ID,
			MessageID:     msg.MessageID,
			Text:          msg.Text,
			CorrelationID: correlationID,
			Message:       msg,
			Client:        b.client,
		})
	})
	if result.Recovered {
		_, err := b.client.SendSilent(ctx, msg.Chat.ID, result.UserMessage)
		return err
	}
	return err
}

// handleCallbackQuery processes a callback query from an inline keyboard.
func (b *Bot) handleCallbackQuery(ctx context.Context, cq *telegram.CallbackQuery) error {
	if cq == nil || cq.From == nil {
		return nil
	}

	telegramID := cq.From.ID
	var chatID, messageID int64
	if cq.Message != nil {
		chatID = cq.Message.Chat.ID
		messageID = cq.Message.MessageID
	}
	correlationID := uuid.NewString()

	identity, err := b.identityResolver.Resolve(ctx, telegramID, chatID)
	if err != nil {
		b.logger.Error("identity resolution failed",
			"error", err,
			"correlation_id", correlationID,
		)
		return b.client.AnswerCallbackQuery(ctx, cq.ID, handler.SomethingWentWrongText, true)
	}
	ctx = middleware.ContextWithIdentity(ctx, identity)

	result, err := b.recoveryMiddleware.Run(ctx, "callback:"+cq.Data, func() error {
		return b.router.HandleCallback(ctx, cq.Data, CallbackContext{
			TelegramID:    telegramID,
			ChatID:        chatID,
			MessageID:     messageID,
			QueryID:       cq.ID,
			Data:          cq.Data,
			Identity:      identity,
			CorrelationID: correlationID,
			Query:         cq,
			Client:        b.client,
		})
	})
	if result.Recovered {
		return b.client.AnswerCallbackQuery(ctx, cq.ID, result.UserMessage, true)
	}
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// STATISTICS
// ══════════════════════════════════════════════════════════════════════════════

// Stats returns a snapshot of the bot's runtime statistics.
func (b *Bot) Stats() BotStatsSnapshot {
	b.stats.mu.RLock()
	defer b.stats.mu.RUnlock()

	commands := make(map[string]int64, len(b.stats.CommandsCount))
	for cmd, count := range b.stats.CommandsCount {
		commands[cmd] = count
	}

	return BotStatsSnapshot{
		StartedAt:       b.stats.StartedAt,
		UpdatesReceived: b.stats.UpdatesReceived,
		UpdatesHandled:  b.stats.UpdatesHandled,
		ErrorsCount:     b.stats.ErrorsCount,
		CommandsCount:   commands,
	}
}

// BotStatsSnapshot is a copyable view of BotStats.
type BotStatsSnapshot struct {
	StartedAt       time.Time
	UpdatesReceived int64
	UpdatesHandled  int64
	ErrorsCount     int64
	CommandsCount   map[string]int64
}
