// Package handler contains Telegram bot command and callback handlers.
//
// Each handler follows the pattern: receive update → validate → call
// application layer → format response. Handlers never talk to the
// Telegram API themselves; they return a response struct the bot layer
// turns into API calls.
package handler

import (
	"errors"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
)

// User-facing texts shared by several handlers.
const (
	// SomethingWentWrongText is the fallback for unclassified failures.
	SomethingWentWrongText = "Что-то пошло не так. Попробуйте ещё раз через несколько минут."

	// LoginFirstText is sent when a command needs a session and none exists.
	LoginFirstText = "Сначала войдите в дневник командой /login."
)

// UserText converts an application error into the message shown in chat.
// Unclassified errors collapse into a generic apology so internals never
// leak to users.
func UserText(err error) string {
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials):
		return "Неверный логин или пароль. Проверьте данные и попробуйте снова."
	case errors.Is(err, shared.ErrRemoteUnavailable):
		return "Дневник сейчас недоступен. Попробуйте позже."
	case errors.Is(err, shared.ErrIncorrectFormat):
		return "Неверный формат."
	case errors.Is(err, shared.ErrNotValid):
		return "На этот день дневника нет."
	case errors.Is(err, shared.ErrNoInfo), errors.Is(err, shared.ErrNotFound):
		return LoginFirstText
	case errors.Is(err, shared.ErrPupilNotSelected):
		return "Сначала выберите ученика командой /select."
	case errors.Is(err, shared.ErrNotAParent):
		return "Эта команда доступна только родителям."
	case errors.Is(err, shared.ErrGroupNotAllowed):
		return "Эта команда работает только в личных сообщениях с ботом."
	case errors.Is(err, shared.ErrForbidden):
		return "Недостаточно прав. Эту команду могут использовать только администраторы чата."
	case errors.Is(err, shared.ErrInvalidInput):
		return "Неверный формат."
	default:
		return SomethingWentWrongText
	}
}
