// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/daybook"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOGIN COMMAND
// Exchanges portal credentials for a token and stores a fresh session
// under the caller's identity key.
// ══════════════════════════════════════════════════════════════════════════════

// LoginCommand contains the credentials and the identity to bind them to.
type LoginCommand struct {
	// Key is the identity the session is stored under.
	Key session.Key

	// Username is the portal login.
	Username string

	// Password is the portal password.
	Password string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c LoginCommand) Validate() error {
	if c.Key == "" {
		return errors.New("login: key is required")
	}
	if c.Username == "" || c.Password == "" {
		return errors.New("login: username and password are required")
	}
	return nil
}

// LoginResult contains the established session.
type LoginResult struct {
	// Record is the freshly stored session.
	Record *session.Record
}

// LoginHandler handles the LoginCommand.
type LoginHandler struct {
	gateway daybook.Gateway
	store   session.Store
}

// NewLoginHandler creates a new LoginHandler.
func NewLoginHandler(gateway daybook.Gateway, store session.Store) *LoginHandler {
	return &LoginHandler{
		gateway: gateway,
		store:   store,
	}
}

// Handle executes the login command. Parent accounts get their pupil
// list fetched up front so /select works offline from the stored
// session. Portal errors pass through unwrapped for the handler layer
// to translate.
func (h *LoginHandler) Handle(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	token, err := h.gateway.Authenticate(ctx, cmd.Username, cmd.Password)
	if err != nil {
		return nil, err
	}

	profile, err := h.gateway.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}

	record := &session.Record{
		Token:   token,
		Profile: profile,
	}

	if record.IsParent() {
		pupils, err := h.gateway.PupilsOf(ctx, token, profile.ID)
		if err != nil {
			return nil, err
		}
		record.Pupils = pupils
	}

	if err := h.store.Put(ctx, cmd.Key, record); err != nil {
		return nil, fmt.Errorf("login: store session: %w", err)
	}

	return &LoginResult{Record: record}, nil
}
