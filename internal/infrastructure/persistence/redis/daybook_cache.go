package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/daybook"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
	"github.com/schoolsby-hub/daybook-bot/pkg/timeutil"
)

// CachedGateway decorates a daybook.Gateway with read-through caching of
// day and week sheets. Auth, profile and last-page calls pass through
// untouched; marks must never be a cache hit behind a fresh login.
type CachedGateway struct {
	next   daybook.Gateway
	cache  *Cache
	logger *slog.Logger
}

var _ daybook.Gateway = (*CachedGateway)(nil)

// NewCachedGateway wraps a gateway with the cache.
func NewCachedGateway(next daybook.Gateway, cache *Cache, logger *slog.Logger) *CachedGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedGateway{next: next, cache: cache, logger: logger}
}

// Authenticate passes through to the portal.
func (g *CachedGateway) Authenticate(ctx context.Context, username, password string) (string, error) {
	return g.next.Authenticate(ctx, username, password)
}

// CurrentUser passes through to the portal.
func (g *CachedGateway) CurrentUser(ctx context.Context, token string) (session.Profile, error) {
	return g.next.CurrentUser(ctx, token)
}

// PupilsOf passes through to the portal.
func (g *CachedGateway) PupilsOf(ctx context.Context, token string, parentID int64) ([]session.Pupil, error) {
	return g.next.PupilsOf(ctx, token, parentID)
}

// DaySheet serves from cache when possible.
func (g *CachedGateway) DaySheet(ctx context.Context, token string, pupilID int64, date time.Time) (*daybook.DaySheet, error) {
	key := DayKey(pupilID, timeutil.FormatPortal(date))

	var cached daybook.DaySheet
	if err := g.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		g.logger.Warn("daybook cache read failed", "key", key, "error", err)
	}

	sheet, err := g.next.DaySheet(ctx, token, pupilID, date)
	if err != nil {
		return nil, err
	}

	if err := g.cache.Set(ctx, key, sheet, TTLDaySheet); err != nil {
		g.logger.Warn("daybook cache write failed", "key", key, "error", err)
	}
	return sheet, nil
}

// WeekSheet serves from cache when possible.
func (g *CachedGateway) WeekSheet(ctx context.Context, token string, pupilID int64, date time.Time) (*daybook.WeekSheet, error) {
	key := WeekKey(pupilID, timeutil.FormatPortal(timeutil.StartOfWeek(date)))

	var cached daybook.WeekSheet
	if err := g.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		g.logger.Warn("daybook cache read failed", "key", key, "error", err)
	}

	week, err := g.next.WeekSheet(ctx, token, pupilID, date)
	if err != nil {
		return nil, err
	}

	if err := g.cache.Set(ctx, key, week, TTLWeekSheet); err != nil {
		g.logger.Warn("daybook cache write failed", "key", key, "error", err)
	}
	return week, nil
}

// LastPage passes through to the portal. Quarter and year marks change
// rarely but matter when they do.
func (g *CachedGateway) LastPage(ctx context.Context, token string, pupilID int64) (*daybook.QuarterSummary, error) {
	return g.next.LastPage(ctx, token, pupilID)
}
