// Package telegram implements the Telegram bot interface for the
// schools.by daybook.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
	"github.com/schoolsby-hub/daybook-bot/internal/infrastructure/external/telegram"
	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram/handler"
	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram/middleware"
	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	// Logger for structured logging.
	Logger *slog.Logger

	// Debug enables debug logging for routing decisions.
	Debug bool
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTEXT TYPES
// These types carry context information through the routing process.
// ══════════════════════════════════════════════════════════════════════════════

// CommandContext contains context for command handling.
type CommandContext struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat ID where the command was sent.
	ChatID int64

	// MessageID is the ID of the message containing the command.
	MessageID int64

	// Args is the command arguments (text after the command).
	Args string

	// Identity is the session identity resolved by the middleware.
	Identity middleware.Identity

	// CorrelationID ties the log lines of one update together.
	CorrelationID string

	// Message is the original Telegram message.
	Message *telegram.Message

	// Client is the Telegram client for sending responses.
	Client *telegram.Client
}

// IsPrivate reports whether the command came from a private chat.
func (c *CommandContext) IsPrivate() bool {
	return c.Message != nil && telegram.IsPrivateChat(c.Message)
}

// FirstName returns the sender's first name, if known.
func (c *CommandContext) FirstName() string {
	if c.Message != nil && c.Message.From != nil {
		return c.Message.From.FirstName
	}
	return ""
}

// CallbackContext contains context for callback query handling.
type CallbackContext struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat ID where the callback originated.
	ChatID int64

	// MessageID is the ID of the message with the inline keyboard.
	MessageID int64

	// QueryID is the callback query ID (for answering).
	QueryID string

	// Data is the callback data string.
	Data string

	// Identity is the session identity resolved by the middleware.
	Identity middleware.Identity

	// CorrelationID ties the log lines of one update together.
	CorrelationID string

	// Query is the original callback query.
	Query *telegram.CallbackQuery

	// Client is the Telegram client for sending responses.
	Client *telegram.Client
}

// FirstName returns the presser's first name, if known.
func (c *CallbackContext) FirstName() string {
	if c.Query != nil && c.Query.From != nil {
		return c.Query.From.FirstName
	}
	return ""
}

// TextInputContext contains context for non-command text input, which
// for this bot means the credential reply of the login flow.
type TextInputContext struct {
	// TelegramID is the user's Telegram ID.
	TelegramID int64

	// ChatID is the chat ID.
	ChatID int64

	// MessageID is the message ID.
	MessageID int64

	// Text is the input text.
	Text string

	// CorrelationID ties the log lines of one update together.
	CorrelationID string

	// Message is the original message.
	Message *telegram.Message

	// Client is the Telegram client.
	Client *telegram.Client
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// CommandHandler is the interface for generic command handlers.
type CommandHandler interface {
	Handle(ctx context.Context, cmdCtx CommandContext) error
}

// CallbackHandler is the interface for generic callback handlers.
type CallbackHandler interface {
	Handle(ctx context.Context, cbCtx CallbackContext) error
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER
// Routes incoming updates to appropriate handlers.
// ══════════════════════════════════════════════════════════════════════════════

// Router routes Telegram updates to appropriate handlers.
type Router struct {
	config RouterConfig
	logger *slog.Logger

	// Command handlers by command name (without /)
	commandHandlers   map[string]interface{}
	commandHandlersMu sync.RWMutex

	// Callback handlers by prefix
	callbackPrefixHandlers   map[string]interface{}
	callbackPrefixHandlersMu sync.RWMutex

	// Text input handler (credential replies)
	textInputHandler   interface{}
	textInputHandlerMu sync.RWMutex

	// Default handlers for unknown commands/callbacks
	defaultCommandHandler  func(ctx context.Context, cmdCtx CommandContext) error
	defaultCallbackHandler func(ctx context.Context, cbCtx CallbackContext) error
}

// NewRouter creates a new router.
func NewRouter(config RouterConfig) *Router {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	r := &Router{
		config:                 config,
		logger:                 config.Logger,
		commandHandlers:        make(map[string]interface{}),
		callbackPrefixHandlers: make(map[string]interface{}),
	}

	r.defaultCommandHandler = r.handleUnknownCommand
	r.defaultCallbackHandler = r.handleUnknownCallback

	return r
}

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRATION METHODS
// ══════════════════════════════════════════════════════════════════════════════

// RegisterCommand registers a handler for a specific command.
// The command should be without the leading "/".
func (r *Router) RegisterCommand(command string, h interface{}) {
	r.commandHandlersMu.Lock()
	defer r.commandHandlersMu.Unlock()

	r.commandHandlers[command] = h

	if r.config.Debug {
		r.logger.Debug("registered command handler", "command", command)
	}
}

// RegisterCallbackPrefix registers a handler for callbacks matching a
// prefix, e.g. the "ID: " pupil tokens.
func (r *Router) RegisterCallbackPrefix(prefix string, h interface{}) {
	r.callbackPrefixHandlersMu.Lock()
	defer r.callbackPrefixHandlersMu.Unlock()

	r.callbackPrefixHandlers[prefix] = h

	if r.config.Debug {
		r.logger.Debug("registered callback prefix handler", "prefix", prefix)
	}
}

// RegisterTextInputHandler registers the handler for credential replies.
func (r *Router) RegisterTextInputHandler(h interface{}) {
	r.textInputHandlerMu.Lock()
	defer r.textInputHandlerMu.Unlock()

	r.textInputHandler = h
}

// SetDefaultCallbackHandler sets the handler for unprefixed callbacks.
// The date picker's payloads carry no prefix, so it goes here.
func (r *Router) SetDefaultCallbackHandler(h func(ctx context.Context, cbCtx CallbackContext) error) {
	r.defaultCallbackHandler = h
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING METHODS
// ══════════════════════════════════════════════════════════════════════════════

// HandleCommand routes a command to its handler.
func (r *Router) HandleCommand(ctx context.Context, command string, cmdCtx CommandContext) error {
	r.commandHandlersMu.RLock()
	h, ok := r.commandHandlers[command]
	r.commandHandlersMu.RUnlock()

	if !ok {
		if r.config.Debug {
			r.logger.Debug("no handler for command", "command", command)
		}
		return r.defaultCommandHandler(ctx, cmdCtx)
	}

	return r.executeCommandHandler(ctx, h, command, cmdCtx)
}

// executeCommandHandler executes a command handler based on its type.
func (r *Router) executeCommandHandler(ctx context.Context, h interface{}, command string, cmdCtx CommandContext) error {
	switch h := h.(type) {
	case *handler.StartHandler:
		return r.handleStartCommand(ctx, h, command, cmdCtx)
	case *handler.LoginHandler:
		return r.handleLoginCommand(ctx, h, cmdCtx)
	case *handler.SetHandler:
		return r.handleSetCommand(ctx, h, cmdCtx)
	case *handler.SelectHandler:
		return r.handleSelectCommand(ctx, h, cmdCtx)
	case *handler.HometaskHandler:
		return r.handleHometaskCommand(ctx, h, cmdCtx)
	case *handler.MarksHandler:
		return r.handleMarksCommand(ctx, h, cmdCtx)
	case *handler.LastPageHandler:
		return r.handleLastPageCommand(ctx, h, cmdCtx)
	case *handler.StopHandler:
		return r.handleStopCommand(ctx, h, cmdCtx)
	case *handler.BroadcastHandler:
		return r.handleBroadcastCommand(ctx, h, cmdCtx)
	case CommandHandler:
		return h.Handle(ctx, cmdCtx)
	default:
		r.logger.Warn("unknown handler type", "command", command, "type", fmt.Sprintf("%T", h))
		return r.defaultCommandHandler(ctx, cmdCtx)
	}
}

// HandleCallback routes a callback to its handler by longest matching
// prefix, falling back to the default (date picker) handler.
func (r *Router) HandleCallback(ctx context.Context, data string, cbCtx CallbackContext) error {
	r.callbackPrefixHandlersMu.RLock()
	var matchedPrefix string
	var matchedHandler interface{}
	for prefix, h := range r.callbackPrefixHandlers {
		if strings.HasPrefix(data, prefix) && len(prefix) > len(matchedPrefix) {
			matchedPrefix = prefix
			matchedHandler = h
		}
	}
	r.callbackPrefixHandlersMu.RUnlock()

	if matchedHandler == nil {
		return r.defaultCallbackHandler(ctx, cbCtx)
	}

	switch h := matchedHandler.(type) {
	case *handler.PupilCallbackHandler:
		return r.handlePupilCallback(ctx, h, cbCtx)
	case CallbackHandler:
		return h.Handle(ctx, cbCtx)
	case func(ctx context.Context, cbCtx CallbackContext) error:
		return h(ctx, cbCtx)
	default:
		r.logger.Warn("unknown callback handler type", "prefix", matchedPrefix, "type", fmt.Sprintf("%T", matchedHandler))
		return r.defaultCallbackHandler(ctx, cbCtx)
	}
}

// HandleTextInput routes non-command text to the credential handler.
func (r *Router) HandleTextInput(ctx context.Context, inputCtx TextInputContext) error {
	r.textInputHandlerMu.RLock()
	h := r.textInputHandler
	r.textInputHandlerMu.RUnlock()

	switch h := h.(type) {
	case *handler.LoginHandler:
		return r.handleLoginInput(ctx, h, inputCtx)
	case func(ctx context.Context, inputCtx TextInputContext) error:
		return h(ctx, inputCtx)
	default:
		return nil
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMAND HANDLER ADAPTERS
// Convert specific handler types to the generic routing interface.
// ══════════════════════════════════════════════════════════════════════════════

func (r *Router) handleStartCommand(ctx context.Context, h *handler.StartHandler, command string, cmdCtx CommandContext) error {
	if command == "help" {
		resp, err := h.Help(ctx)
		if err != nil {
			return r.replyError(ctx, cmdCtx.Client, cmdCtx.ChatID, err)
		}
		_, err = cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, resp.Text)
		return err
	}

	resp, err := h.Handle(ctx, handler.StartRequest{Identity: cmdCtx.Identity})
	if err != nil {
		return r.replyError(ctx, cmdCtx.Client, cmdCtx.ChatID, err)
	}

	_, err = cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, resp.Text)
	return err
}

func (r *Router) handleLoginCommand(ctx context.Context, h *handler.LoginHandler, cmdCtx CommandContext) error {
	resp, err := h.HandlePrompt(ctx, handler.LoginPromptRequest{IsPrivate: cmdCtx.IsPrivate()})
	if err != nil {
		return r.replyError(ctx, cmdCtx.Client, cmdCtx.ChatID, err)
	}

	_, err = cmdCtx.Client.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:     cmdCtx.ChatID,
		Text:       resp.Text,
		ForceReply: resp.ForceReply,
	})
	return err
}

func (r *Router) handleLoginInput(ctx context.Context, h *handler.LoginHandler, inputCtx TextInputContext) error {
	resp, err := h.HandleCredentials(ctx, handler.LoginCredentialsRequest{
		UserID:        inputCtx.TelegramID,
		Text:          inputCtx.Text,
		CorrelationID: inputCtx.CorrelationID,
	})

	// Credentials never stay in the chat history, success or not.
	if delErr := inputCtx.Client.DeleteMessage(ctx, inputCtx.ChatID, inputCtx.MessageID); delErr != nil {
		r.logger.Warn("delete credential message", "error", delErr)
	}

	if err != nil {
		return r.replyError(ctx, inputCtx.Client, inputCtx.ChatID, err)
	}

	_, err = inputCtx.Client.SendText(ctx, inputCtx.ChatID, resp.Text)
	return err
}

func (r *Router) handleSetCommand(ctx context.Context, h *handler.SetHandler, cmdCtx CommandContext) error {
	req := handler.SetRequest{
		UserID:    cmdCtx.TelegramID,
		ChatID:    cmdCtx.ChatID,
		IsPrivate: cmdCtx.IsPrivate(),
	}

	if !req.IsPrivate {
		member, err := cmdCtx.Client.GetChatMember(ctx, cmdCtx.ChatID, cmdCtx.TelegramID)
		if err != nil {
			return r.replyError(ctx, cmdCtx.Client, cmdCtx.ChatID, err)
		}
		req.IsAdmin = member.IsAdmin()
	}

	resp, err := h.Handle(ctx, req)
	if err != nil {
		return r.replyError(ctx, cmdCtx.Client, cmdCtx.ChatID, err)
	}

	_, err = cmdCtx.Client.SendSilent(ctx, cmdCtx.ChatID, resp.Text)
	return err
}

func (r *Router) handleSelectCommand(ctx context.Context, h *handler.SelectHandler, cmdCtx CommandContext) error {
	resp, err := h.Handle(ctx, handler.SelectRequest{Identity: cmdCtx.Identity})
	if err != nil {
		return r.replyError(ctx, cmdCtx.Client, cmdCtx.ChatID, err)
	}

	if resp.Keyboard == nil {
		_, err = cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, resp.Text)
		return err
	}
	_, err = cmdCtx.Client.SendWithKeyboard(ctx, cmdCtx.ChatID, resp.Text, convertKeyboard(resp.Keyboard).InlineKeyboard)
	return err
}

func (r *Router) handleHometaskCommand(ctx context.Context, h *handler.HometaskHandler, cmdCtx CommandContext) error {
	resp, err := h.Handle(ctx, handler.HometaskRequest{IsPrivate: cmdCtx.IsPrivate()})
	if err != nil {
		return r.replyError(ctx, cmdCtx.Client, cmdCtx.ChatID, err)
	}

	sent, err := cmdCtx.Client.SendWithKeyboard(ctx, cmdCtx.ChatID, resp.Text, convertKeyboard(resp.Keyboard).InlineKeyboard)
	if err != nil {
		return err
	}

	if resp.Pin {
		// Keep a single picker pinned so it is always within reach.
		if err := cmdCtx.Client.UnpinChatMessage(ctx, cmdCtx.ChatID, 0); err != nil {
			r.logger.Debug("unpin previous picker", "error", err)
		}
		if err := cmdCtx.Client.PinChatMessage(ctx, cmdCtx.ChatID, sent.MessageID); err != nil {
			r.logger.Warn("pin picker", "error", err)
		}
	}
	return nil
}

func (r *Router) handleMarksCommand(ctx context.Context, h *handler.MarksHandler, cmdCtx CommandContext) error {
	resp, err := h.Handle(ctx, handler.MarksRequest{
		Identity:  cmdCtx.Identity,
		IsPrivate: cmdCtx.IsPrivate(),
	})
	if err != nil {
		return r.replyError(ctx, cmdCtx.Client, cmdCtx.ChatID, err)
	}

	_, err = cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, resp.Text)
	return err
}

func (r *Router) handleLastPageCommand(ctx context.Context, h *handler.LastPageHandler, cmdCtx CommandContext) error {
	resp, err := h.Handle(ctx, handler.LastPageRequest{
		Identity:  cmdCtx.Identity,
		IsPrivate: cmdCtx.IsPrivate(),
	})
	if err != nil {
		return r.replyError(ctx, cmdCtx.Client, cmdCtx.ChatID, err)
	}

	_, err = cmdCtx.Client.SendMarkdown(ctx, cmdCtx.ChatID, resp.Text)
	return err
}

func (r *Router) handleStopCommand(ctx context.Context, h *handler.StopHandler, cmdCtx CommandContext) error {
	resp, err := h.Handle(ctx, handler.StopRequest{UserID: cmdCtx.TelegramID})
	if err != nil {
		return r.replyError(ctx, cmdCtx.Client, cmdCtx.ChatID, err)
	}

	_, err = cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, resp.Text)
	return err
}

func (r *Router) handleBroadcastCommand(ctx context.Context, h *handler.BroadcastHandler, cmdCtx CommandContext) error {
	resp, err := h.Handle(ctx, handler.BroadcastRequest{
		ChatID: cmdCtx.ChatID,
		Args:   cmdCtx.Args,
	})
	if err != nil {
		return r.replyError(ctx, cmdCtx.Client, cmdCtx.ChatID, err)
	}

	delivered := 0
	for _, target := range resp.Targets {
		if _, err := cmdCtx.Client.SendText(ctx, target, resp.Text); err != nil {
			r.logger.Warn("broadcast delivery failed", "chat_id", target, "error", err)
			continue
		}
		delivered++
	}

	summary := fmt.Sprintf("Отправлено %d из %d.", delivered, len(resp.Targets))
	_, err = cmdCtx.Client.SendSilent(ctx, cmdCtx.ChatID, summary)
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// CALLBACK HANDLER ADAPTERS
// ══════════════════════════════════════════════════════════════════════════════

func (r *Router) handlePupilCallback(ctx context.Context, h *handler.PupilCallbackHandler, cbCtx CallbackContext) error {
	resp, err := h.Handle(ctx, handler.PupilCallbackRequest{
		Identity: cbCtx.Identity,
		Data:     cbCtx.Data,
	})
	if err != nil {
		return r.answerError(ctx, cbCtx, err)
	}

	if err := cbCtx.Client.AnswerCallbackQuery(ctx, cbCtx.QueryID, resp.Toast, false); err != nil {
		r.logger.Warn("answer callback", "error", err)
	}
	_, err = cbCtx.Client.SendSilent(ctx, cbCtx.ChatID, resp.Text)
	return err
}

// HandleDateCallback adapts the date picker handler; registered as the
// default callback handler because date payloads carry no prefix.
func (r *Router) HandleDateCallback(h *handler.DateCallbackHandler) func(ctx context.Context, cbCtx CallbackContext) error {
	return func(ctx context.Context, cbCtx CallbackContext) error {
		resp, err := h.Handle(ctx, handler.DateCallbackRequest{
			Identity:  cbCtx.Identity,
			Data:      cbCtx.Data,
			UserID:    cbCtx.TelegramID,
			FirstName: cbCtx.FirstName(),
		})
		if err != nil {
			return r.answerError(ctx, cbCtx, err)
		}

		if resp.EditKeyboard != nil {
			_, err := cbCtx.Client.EditMessageKeyboard(ctx, cbCtx.ChatID, cbCtx.MessageID, convertKeyboard(resp.EditKeyboard))
			if err != nil && !telegram.IsMessageNotModified(err) {
				return err
			}
		}

		if err := cbCtx.Client.AnswerCallbackQuery(ctx, cbCtx.QueryID, resp.Toast, resp.Alert); err != nil {
			r.logger.Warn("answer callback", "error", err)
		}

		if resp.Text != "" {
			_, err := cbCtx.Client.SendMessage(ctx, telegram.SendMessageParams{
				ChatID:              cbCtx.ChatID,
				Text:                resp.Text,
				ParseMode:           "Markdown",
				DisableNotification: resp.Silent,
			})
			return err
		}
		return nil
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DEFAULT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleUnknownCommand handles commands that don't have a registered handler.
func (r *Router) handleUnknownCommand(ctx context.Context, cmdCtx CommandContext) error {
	// Groups stay quiet; a foreign bot's command should not trigger spam.
	if !cmdCtx.IsPrivate() {
		return nil
	}
	_, err := cmdCtx.Client.SendText(ctx, cmdCtx.ChatID, "Неизвестная команда. Список команд: /help")
	return err
}

// handleUnknownCallback handles callbacks that don't have a registered handler.
func (r *Router) handleUnknownCallback(ctx context.Context, cbCtx CallbackContext) error {
	r.logger.Warn("unknown callback", "data", cbCtx.Data)
	return cbCtx.Client.AnswerCallbackQuery(ctx, cbCtx.QueryID, "", false)
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// replyError turns a handler error into a chat message. Expected
// failures are not propagated; anything else bubbles up after the
// generic apology so the bot layer can log it.
func (r *Router) replyError(ctx context.Context, client *telegram.Client, chatID int64, err error) error {
	if _, sendErr := client.SendSilent(ctx, chatID, handler.UserText(err)); sendErr != nil {
		r.logger.Warn("send error reply", "error", sendErr)
	}
	if shared.IsUserCorrectable(err) || shared.IsRemote(err) {
		return nil
	}
	return err
}

// answerError is replyError for callback queries: the text goes into
// the callback answer popup instead of the chat.
func (r *Router) answerError(ctx context.Context, cbCtx CallbackContext, err error) error {
	if ansErr := cbCtx.Client.AnswerCallbackQuery(ctx, cbCtx.QueryID, handler.UserText(err), true); ansErr != nil {
		r.logger.Warn("answer callback", "error", ansErr)
	}
	if shared.IsUserCorrectable(err) || shared.IsRemote(err) {
		return nil
	}
	return err
}

// convertKeyboard converts presenter.InlineKeyboard to telegram.InlineKeyboardMarkup.
func convertKeyboard(kb *presenter.InlineKeyboard) *telegram.InlineKeyboardMarkup {
	if kb == nil || len(kb.Rows) == 0 {
		return nil
	}

	markup := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: make([][]telegram.InlineKeyboardButton, len(kb.Rows)),
	}

	for i, row := range kb.Rows {
		markup.InlineKeyboard[i] = make([]telegram.InlineKeyboardButton, len(row))
		for j, btn := range row {
			markup.InlineKeyboard[i][j] = telegram.InlineKeyboardButton{
				Text:         btn.Text,
				CallbackData: btn.CallbackData,
				URL:          btn.URL,
			}
		}
	}

	return markup
}

// GetRegisteredCommands returns a list of registered command names.
func (r *Router) GetRegisteredCommands() []string {
	r.commandHandlersMu.RLock()
	defer r.commandHandlersMu.RUnlock()

	commands := make([]string, 0, len(r.commandHandlers))
	for cmd := range r.commandHandlers {
		commands = append(commands, cmd)
	}
	return commands
}
