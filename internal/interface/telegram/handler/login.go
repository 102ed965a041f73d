package handler

import (
	"context"
	"strings"

	"github.com/schoolsby-hub/daybook-bot/internal/application/command"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOGIN COMMAND
// Two-step flow: /login sends a force-reply prompt, the reply carries
// "login password" and is deleted right after processing so credentials
// do not linger in the chat history.
// ══════════════════════════════════════════════════════════════════════════════

// LoginPromptText is the force-reply prompt. The bot layer matches
// incoming replies against this exact text to recognize credentials.
const LoginPromptText = "Отправьте логин и пароль от schools.by одним сообщением через пробел, ответом на это сообщение."

// LoginHandler handles the /login command and its credential reply.
type LoginHandler struct {
	login     *command.LoginHandler
	presenter *presenter.MarksPresenter
}

// NewLoginHandler creates a new LoginHandler.
func NewLoginHandler(login *command.LoginHandler, p *presenter.MarksPresenter) *LoginHandler {
	return &LoginHandler{login: login, presenter: p}
}

// LoginPromptRequest represents a /login command.
type LoginPromptRequest struct {
	// IsPrivate is true when the command came from a private chat.
	IsPrivate bool
}

// LoginPromptResponse asks the user to reply with credentials.
type LoginPromptResponse struct {
	// Text to send back.
	Text string

	// ForceReply requests a reply-anchored input field.
	ForceReply bool
}

// HandlePrompt starts the login flow. Credentials belong in private
// chats only.
func (h *LoginHandler) HandlePrompt(ctx context.Context, req LoginPromptRequest) (*LoginPromptResponse, error) {
	if !req.IsPrivate {
		return nil, shared.ErrGroupNotAllowed
	}
	return &LoginPromptResponse{Text: LoginPromptText, ForceReply: true}, nil
}

// LoginCredentialsRequest represents the user's credential reply.
type LoginCredentialsRequest struct {
	// UserID is the Telegram user ID of the sender.
	UserID int64

	// Text is the raw reply text, expected as "login password".
	Text string

	// CorrelationID ties portal calls of this login together in logs.
	CorrelationID string
}

// LoginCredentialsResponse is the formatted login outcome.
type LoginCredentialsResponse struct {
	// Text is the profile summary to send back.
	Text string

	// DeleteRequest asks the bot layer to delete the credential message.
	DeleteRequest bool
}

// HandleCredentials parses and verifies the credential reply. The
// credential message is deleted regardless of the outcome; on failure
// the caller maps the error through UserText.
func (h *LoginHandler) HandleCredentials(ctx context.Context, req LoginCredentialsRequest) (*LoginCredentialsResponse, error) {
	fields := strings.Fields(req.Text)
	if len(fields) != 2 {
		return nil, shared.ErrIncorrectFormat
	}

	result, err := h.login.Handle(ctx, command.LoginCommand{
		Key:           session.UserKey(req.UserID),
		Username:      fields[0],
		Password:      fields[1],
		CorrelationID: req.CorrelationID,
	})
	if err != nil {
		return nil, err
	}

	return &LoginCredentialsResponse{
		Text:          h.presenter.Profile(result.Record),
		DeleteRequest: true,
	}, nil
}
