// Package middleware contains Telegram bot middlewares for request processing.
package middleware

import (
	"context"
	"errors"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IDENTITY MIDDLEWARE
// Resolves which stored session an inbound event acts under: the sender's
// own session first, then the chat's shared session, else anonymous.
// ══════════════════════════════════════════════════════════════════════════════

// Identity is the resolved session identity of one inbound event.
type Identity struct {
	// Key is the session key the event acts under. Empty when anonymous.
	Key session.Key

	// Record is the resolved session. Nil when anonymous.
	Record *session.Record
}

// IsAnonymous reports whether no session was found.
func (id Identity) IsAnonymous() bool {
	return id.Record == nil
}

// IdentityResolver resolves identities against the session store.
type IdentityResolver struct {
	store session.Store
}

// NewIdentityResolver creates a new IdentityResolver.
func NewIdentityResolver(store session.Store) *IdentityResolver {
	return &IdentityResolver{store: store}
}

// Resolve looks up the sender's session, falling back to the chat's.
// Store failures other than a plain miss bubble up: acting under the
// wrong identity is worse than failing.
func (r *IdentityResolver) Resolve(ctx context.Context, userID, chatID int64) (Identity, error) {
	userKey := session.UserKey(userID)
	record, err := r.store.Get(ctx, userKey)
	if err == nil {
		return Identity{Key: userKey, Record: record}, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return Identity{}, err
	}

	chatKey := session.ChatKey(chatID)
	record, err = r.store.Get(ctx, chatKey)
	if err == nil {
		return Identity{Key: chatKey, Record: record}, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return Identity{}, err
	}

	return Identity{}, nil
}

// identityContextKey is the context key for resolved identities.
type identityContextKey struct{}

// ContextWithIdentity stores a resolved identity in the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the resolved identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}
