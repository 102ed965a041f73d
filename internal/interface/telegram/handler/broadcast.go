package handler

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// BROADCAST COMMAND
// Admin-only fan-out of an announcement to every chat with a stored
// session. Session keys are chat IDs, so the key list is the audience.
// ══════════════════════════════════════════════════════════════════════════════

// BroadcastHandler handles the /broadcast command.
type BroadcastHandler struct {
	store       session.Store
	adminChatID int64
}

// NewBroadcastHandler creates a new BroadcastHandler. A zero
// adminChatID disables the command entirely.
func NewBroadcastHandler(store session.Store, adminChatID int64) *BroadcastHandler {
	return &BroadcastHandler{store: store, adminChatID: adminChatID}
}

// BroadcastRequest represents a /broadcast command.
type BroadcastRequest struct {
	// ChatID is the chat the command came from.
	ChatID int64

	// Args is the announcement text after the command.
	Args string
}

// BroadcastResponse lists the delivery targets for the bot layer.
type BroadcastResponse struct {
	// Text is the announcement to deliver.
	Text string

	// Targets are the chat IDs to deliver to.
	Targets []int64
}

// Handle resolves the audience for an announcement.
func (h *BroadcastHandler) Handle(ctx context.Context, req BroadcastRequest) (*BroadcastResponse, error) {
	if h.adminChatID == 0 || req.ChatID != h.adminChatID {
		return nil, shared.ErrForbidden
	}

	text := strings.TrimSpace(req.Args)
	if text == "" {
		return nil, shared.ErrIncorrectFormat
	}

	keys, err := h.store.Keys(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(keys))
	targets := make([]int64, 0, len(keys))
	for _, key := range keys {
		id, err := strconv.ParseInt(string(key), 10, 64)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		targets = append(targets, id)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })

	return &BroadcastResponse{Text: text, Targets: targets}, nil
}
