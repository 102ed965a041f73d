package daybook

import (
	"context"
	"time"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
)

// Gateway is the contract for authenticated calls to the school portal.
// The implementation lives in internal/infrastructure/external/schoolsby.
//
// Every method returns either a parsed payload or one of two failures:
// shared.ErrInvalidCredentials (Authenticate only) or
// shared.ErrRemoteUnavailable. Transport retries happen below this
// interface.
type Gateway interface {
	// Authenticate exchanges a username/password pair for a token.
	Authenticate(ctx context.Context, username, password string) (string, error)

	// CurrentUser fetches the profile the token belongs to.
	CurrentUser(ctx context.Context, token string) (session.Profile, error)

	// PupilsOf lists the pupils of a parent account.
	PupilsOf(ctx context.Context, token string, parentID int64) ([]session.Pupil, error)

	// DaySheet fetches the daybook for a single day.
	DaySheet(ctx context.Context, token string, pupilID int64, date time.Time) (*DaySheet, error)

	// WeekSheet fetches the daybook for the week containing date.
	WeekSheet(ctx context.Context, token string, pupilID int64, date time.Time) (*WeekSheet, error)

	// LastPage fetches the per-quarter summary table.
	LastPage(ctx context.Context, token string, pupilID int64) (*QuarterSummary, error)
}
