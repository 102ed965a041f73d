package handler

import (
	"context"

	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram/middleware"
	"github.com/schoolsby-hub/daybook-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// START / HELP COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

const helpText = `Я показываю электронный дневник schools.by прямо в Telegram.

/login — войти в дневник (только в личных сообщениях)
/hometask — выбрать дату и посмотреть домашнее задание
/marks — оценки за текущую четверть
/lastpage — итоговые оценки за четверти и год
/select — выбрать ученика (для родителей)
/set — использовать вашу сессию в этом чате
/stop — выйти и удалить сессию
/help — это сообщение`

const welcomeText = "Привет! " + helpText

// StartHandler handles the /start and /help commands.
type StartHandler struct {
	presenter *presenter.MarksPresenter
}

// NewStartHandler creates a new StartHandler.
func NewStartHandler(p *presenter.MarksPresenter) *StartHandler {
	return &StartHandler{presenter: p}
}

// StartRequest represents a /start command.
type StartRequest struct {
	// Identity is the resolved session identity of the sender.
	Identity middleware.Identity
}

// StartResponse is the formatted reply to /start.
type StartResponse struct {
	// Text to send back.
	Text string
}

// Handle greets the user. Known users get their profile summary on top
// so they can see who the bot thinks they are.
func (h *StartHandler) Handle(ctx context.Context, req StartRequest) (*StartResponse, error) {
	if req.Identity.IsAnonymous() {
		return &StartResponse{Text: welcomeText}, nil
	}
	return &StartResponse{
		Text: h.presenter.Profile(req.Identity.Record) + "\n\n" + helpText,
	}, nil
}

// HelpResponse is the formatted reply to /help.
type HelpResponse struct {
	// Text to send back.
	Text string
}

// Help returns the command reference.
func (h *StartHandler) Help(ctx context.Context) (*HelpResponse, error) {
	return &HelpResponse{Text: helpText}, nil
}
