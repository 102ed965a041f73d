package handler

import (
	"context"

	"github.com/schoolsby-hub/daybook-bot/internal/application/query"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram/middleware"
	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARKS COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// MarksHandler handles the /marks command.
type MarksHandler struct {
	marks     *query.GetQuarterMarksHandler
	presenter *presenter.MarksPresenter
}

// NewMarksHandler creates a new MarksHandler.
func NewMarksHandler(marks *query.GetQuarterMarksHandler, p *presenter.MarksPresenter) *MarksHandler {
	return &MarksHandler{marks: marks, presenter: p}
}

// MarksRequest represents a /marks command.
type MarksRequest struct {
	// Identity is the resolved session identity of the sender.
	Identity middleware.Identity

	// IsPrivate is true when the command came from a private chat.
	IsPrivate bool
}

// MarksResponse is the formatted quarter aggregation.
type MarksResponse struct {
	// Text to send back, legacy Markdown.
	Text string
}

// Handle aggregates and renders the current quarter's marks.
func (h *MarksHandler) Handle(ctx context.Context, req MarksRequest) (*MarksResponse, error) {
	if !req.IsPrivate {
		return nil, shared.ErrGroupNotAllowed
	}
	if req.Identity.IsAnonymous() {
		return nil, shared.ErrNoInfo
	}

	result, err := h.marks.Handle(ctx, query.GetQuarterMarksQuery{Key: req.Identity.Key})
	if err != nil {
		return nil, err
	}

	return &MarksResponse{Text: h.presenter.QuarterMarks(result.Subjects)}, nil
}
