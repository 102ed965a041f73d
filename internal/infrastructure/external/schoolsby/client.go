// Package schoolsby implements the schools.by portal API client. It is
// the only place that talks HTTP to the portal; callers receive either
// parsed domain payloads or one of two classified failures
// (shared.ErrInvalidCredentials, shared.ErrRemoteUnavailable).
package schoolsby

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/daybook"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
	"github.com/schoolsby-hub/daybook-bot/pkg/retry"
	"github.com/schoolsby-hub/daybook-bot/pkg/timeutil"
)

// ClientConfig contains configuration for the portal client.
type ClientConfig struct {
	// BaseURL is the portal base URL (default: https://schools.by).
	BaseURL string

	// Timeout is the per-attempt HTTP timeout.
	Timeout time.Duration

	// Retrier wraps every request; nil gets the portal default.
	Retrier *retry.Retrier

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL: "https://schools.by",
		Timeout: 15 * time.Second,
	}
}

// Client is the schools.by API client. It implements daybook.Gateway.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	retrier    *retry.Retrier
	logger     *slog.Logger
	mapper     *Mapper
}

var _ daybook.Gateway = (*Client)(nil)

// NewClient creates a new portal client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://schools.by"
	}
	if config.Retrier == nil {
		config.Retrier = retry.PortalRetrier()
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		retrier:    config.Retrier,
		logger:     config.Logger,
		mapper:     NewMapper(config.BaseURL),
	}
}

// errUnexpectedStatus marks any non-200 answer; details go to the log,
// the user only ever sees ErrRemoteUnavailable.
var errUnexpectedStatus = errors.New("unexpected portal status")

// Authenticate exchanges credentials for a token via POST /api/auth.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	token, err := retry.DoWithData(ctx, c.retrier, func(ctx context.Context) (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.config.BaseURL+"/api/auth", strings.NewReader(form.Encode()))
		if err != nil {
			return "", retry.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", retry.Retryable(err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", retry.Retryable(err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			var auth authResponseDTO
			if err := json.Unmarshal(body, &auth); err != nil {
				return "", retry.Permanent(fmt.Errorf("parse auth response: %w", err))
			}
			return auth.Token, nil

		case resp.StatusCode == http.StatusBadRequest:
			var detail authErrorDTO
			if json.Unmarshal(body, &detail) == nil && detail.Details == invalidCredentialsDetail {
				return "", retry.Permanent(shared.ErrInvalidCredentials)
			}
			c.logUnexpected("auth", resp.StatusCode, body)
			return "", retry.Permanent(errUnexpectedStatus)

		case resp.StatusCode >= 500:
			c.logUnexpected("auth", resp.StatusCode, body)
			return "", retry.Retryable(errUnexpectedStatus)

		default:
			c.logUnexpected("auth", resp.StatusCode, body)
			return "", retry.Permanent(errUnexpectedStatus)
		}
	})
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			return "", shared.ErrInvalidCredentials
		}
		return "", shared.WrapError("schoolsby", "Authenticate", shared.ErrRemoteUnavailable, "portal auth failed", err)
	}
	return token, nil
}

// CurrentUser fetches the token owner's profile.
func (c *Client) CurrentUser(ctx context.Context, token string) (session.Profile, error) {
	var dto UserDTO
	if err := c.getJSON(ctx, "CurrentUser", "/subdomain-api/user/current", token, &dto); err != nil {
		return session.Profile{}, err
	}
	return c.mapper.ToProfile(dto), nil
}

// PupilsOf lists a parent's pupils.
func (c *Client) PupilsOf(ctx context.Context, token string, parentID int64) ([]session.Pupil, error) {
	path := "/subdomain-api/parent/" + strconv.FormatInt(parentID, 10) + "/pupils"
	var dtos []PupilDTO
	if err := c.getJSON(ctx, "PupilsOf", path, token, &dtos); err != nil {
		return nil, err
	}
	return c.mapper.ToPupils(dtos), nil
}

// DaySheet fetches the daybook for a single day.
func (c *Client) DaySheet(ctx context.Context, token string, pupilID int64, date time.Time) (*daybook.DaySheet, error) {
	path := "/subdomain-api/pupil/" + strconv.FormatInt(pupilID, 10) +
		"/daybook/day/" + timeutil.FormatPortal(date)
	var dto DayDTO
	if err := c.getJSON(ctx, "DaySheet", path, token, &dto); err != nil {
		return nil, err
	}
	return c.mapper.ToDaySheet(timeutil.StartOfDay(date), dto), nil
}

// WeekSheet fetches the daybook for the week containing date.
func (c *Client) WeekSheet(ctx context.Context, token string, pupilID int64, date time.Time) (*daybook.WeekSheet, error) {
	monday := timeutil.StartOfWeek(date)
	path := "/subdomain-api/pupil/" + strconv.FormatInt(pupilID, 10) +
		"/daybook/week/" + timeutil.FormatPortal(monday)
	var dto WeekDTO
	if err := c.getJSON(ctx, "WeekSheet", path, token, &dto); err != nil {
		return nil, err
	}
	week, err := c.mapper.ToWeekSheet(monday, dto)
	if err != nil {
		return nil, shared.WrapError("schoolsby", "WeekSheet", shared.ErrRemoteUnavailable, "malformed week payload", err)
	}
	return week, nil
}

// LastPage fetches the per-quarter summary table.
func (c *Client) LastPage(ctx context.Context, token string, pupilID int64) (*daybook.QuarterSummary, error) {
	path := "/subdomain-api/pupil/" + strconv.FormatInt(pupilID, 10) + "/daybook/last-page"
	var dto LastPageDTO
	if err := c.getJSON(ctx, "LastPage", path, token, &dto); err != nil {
		return nil, err
	}
	return c.mapper.ToQuarterSummary(dto), nil
}

// getJSON performs an authorized GET with retries and decodes the body.
func (c *Client) getJSON(ctx context.Context, op, path, token string, out any) error {
	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
		if err != nil {
			return retry.Permanent(err)
		}
		// Trailing space after the token is part of the historical wire
		// format; the portal accepts it and old clients send it.
		req.Header.Set("Authorization", "Token "+token+" ")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.Retryable(err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.Retryable(err)
		}

		if resp.StatusCode != http.StatusOK {
			c.logUnexpected(op, resp.StatusCode, body)
			if resp.StatusCode >= 500 {
				return retry.Retryable(errUnexpectedStatus)
			}
			return retry.Permanent(errUnexpectedStatus)
		}

		if err := json.Unmarshal(body, out); err != nil {
			return retry.Permanent(fmt.Errorf("parse response: %w", err))
		}
		return nil
	})
	if err != nil {
		return shared.WrapError("schoolsby", op, shared.ErrRemoteUnavailable, "portal request failed", err)
	}
	return nil
}

// logUnexpected records the raw body of a surprising answer for
// diagnosis. Bodies never reach users.
func (c *Client) logUnexpected(op string, status int, body []byte) {
	const maxLogged = 2048
	if len(body) > maxLogged {
		body = body[:maxLogged]
	}
	c.logger.Error("unexpected portal response",
		"op", op,
		"status", status,
		"body", string(body),
	)
}
