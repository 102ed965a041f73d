package handler

import (
	"context"

	"github.com/schoolsby-hub/daybook-bot/internal/application/query"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram/middleware"
	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// LASTPAGE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// LastPageHandler handles the /lastpage command.
type LastPageHandler struct {
	finals    *query.GetFinalMarksHandler
	presenter *presenter.MarksPresenter
}

// NewLastPageHandler creates a new LastPageHandler.
func NewLastPageHandler(finals *query.GetFinalMarksHandler, p *presenter.MarksPresenter) *LastPageHandler {
	return &LastPageHandler{finals: finals, presenter: p}
}

// LastPageRequest represents a /lastpage command.
type LastPageRequest struct {
	// Identity is the resolved session identity of the sender.
	Identity middleware.Identity

	// IsPrivate is true when the command came from a private chat.
	IsPrivate bool
}

// LastPageResponse is the formatted quarter/year summary.
type LastPageResponse struct {
	// Text to send back, legacy Markdown.
	Text string
}

// Handle fetches and renders the diary's final-marks page.
func (h *LastPageHandler) Handle(ctx context.Context, req LastPageRequest) (*LastPageResponse, error) {
	if !req.IsPrivate {
		return nil, shared.ErrGroupNotAllowed
	}
	if req.Identity.IsAnonymous() {
		return nil, shared.ErrNoInfo
	}

	result, err := h.finals.Handle(ctx, query.GetFinalMarksQuery{Key: req.Identity.Key})
	if err != nil {
		return nil, err
	}

	return &LastPageResponse{Text: h.presenter.LastPage(result.Summary)}, nil
}
