package schoolsby

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/session"
	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
	"github.com/schoolsby-hub/daybook-bot/pkg/retry"
	"github.com/schoolsby-hub/daybook-bot/pkg/timeutil"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(ClientConfig{
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
		Retrier: retry.New(retry.Config{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			MaxDelay:     5 * time.Millisecond,
			Multiplier:   2.0,
		}),
	})
}

func TestAuthenticateSuccess(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "ivanov", r.PostForm.Get("username"))
		assert.Equal(t, "secret", r.PostForm.Get("password"))

		w.Write([]byte(`{"token": "abc123"}`))
	}))

	token, err := client.Authenticate(context.Background(), "ivanov", "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestAuthenticateInvalidCredentials(t *testing.T) {
	calls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"details": "Невозможно войти с предоставленными учетными данными."}`))
	}))

	_, err := client.Authenticate(context.Background(), "ivanov", "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	assert.Equal(t, 1, calls, "bad credentials must not be retried")
}

func TestAuthenticateServerErrorExhaustsRetries(t *testing.T) {
	calls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.Authenticate(context.Background(), "ivanov", "secret")
	assert.ErrorIs(t, err, shared.ErrRemoteUnavailable)
	assert.Equal(t, 3, calls)
}

func TestCurrentUserSendsTokenHeader(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/subdomain-api/user/current", r.URL.Path)
		// net/http strips trailing whitespace while parsing headers, so
		// the trailing space of the historical wire format is not
		// observable here.
		assert.Equal(t, "Token abc123", r.Header.Get("Authorization"))

		w.Write([]byte(`{"id": 100, "first_name": "Ольга", "last_name": "Иванова", "subdomain": "gymn1", "type": "Parent"}`))
	}))

	profile, err := client.CurrentUser(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(100), profile.ID)
	assert.Equal(t, "Ольга Иванова", profile.FullName())
	assert.Equal(t, session.RoleParent, profile.Role)
}

func TestPupilsOf(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/subdomain-api/parent/100/pupils", r.URL.Path)
		w.Write([]byte(`[
			{"id": 1, "first_name": "Маша", "last_name": "Иванова"},
			{"id": 2, "first_name": "Петя", "last_name": "Иванов"}
		]`))
	}))

	pupils, err := client.PupilsOf(context.Background(), "abc123", 100)
	require.NoError(t, err)
	require.Len(t, pupils, 2)
	assert.Equal(t, "Маша Иванова", pupils[0].FullName())
	assert.Equal(t, int64(2), pupils[1].ID)
}

func TestDaySheetParsesLessons(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/subdomain-api/pupil/1/daybook/day/2024-09-06", r.URL.Path)
		w.Write([]byte(`{
			"2": {"subject": "Физика", "hometask": {"text": "§5", "attachments": [{"title": "задачи", "file": "/media/t.pdf"}]}},
			"1": {"subject": "Математика", "hometask": {"text": "№12"}, "mark": "9"}
		}`))
	}))

	sheet, err := client.DaySheet(context.Background(), "abc123", 1, timeutil.Date(2024, 9, 6))
	require.NoError(t, err)
	require.Len(t, sheet.Lessons, 2)

	// slot order, not payload order
	assert.Equal(t, "Математика", sheet.Lessons[0].Subject)
	assert.Equal(t, "Физика", sheet.Lessons[1].Subject)

	require.Len(t, sheet.Lessons[1].Hometask.Attachments, 1)
	assert.Equal(t, client.config.BaseURL+"/media/t.pdf", sheet.Lessons[1].Hometask.Attachments[0].URL)
}

func TestDaySheetEmptyDay(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	sheet, err := client.DaySheet(context.Background(), "abc123", 1, timeutil.Date(2024, 9, 6))
	require.NoError(t, err)
	assert.True(t, sheet.IsEmpty())
}

func TestWeekSheetAnchorsRequestOnMonday(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Wednesday in, Monday out.
		require.Equal(t, "/subdomain-api/pupil/1/daybook/week/2024-09-02", r.URL.Path)
		w.Write([]byte(`{
			"2024-09-02": {"1": {"subject": "Математика", "mark": "8"}},
			"2024-09-03": {"1": {"subject": "Математика", "mark": "10"}}
		}`))
	}))

	week, err := client.WeekSheet(context.Background(), "abc123", 1, timeutil.Date(2024, 9, 4))
	require.NoError(t, err)
	assert.False(t, week.Holidays)
	require.Len(t, week.Days, 2)
	assert.Equal(t, []string{"8", "10"}, week.MarksBySubject()["Математика"])
}

func TestWeekSheetHolidays(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"holidays": true}`))
	}))

	week, err := client.WeekSheet(context.Background(), "abc123", 1, timeutil.Date(2024, 6, 10))
	require.NoError(t, err)
	assert.True(t, week.Holidays)
	assert.Empty(t, week.Days)
}

func TestLastPage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/subdomain-api/pupil/1/daybook/last-page", r.URL.Path)
		w.Write([]byte(`{"subjects": [
			{"name": "Математика", "quarter_marks": ["8", null, "", "9"], "year_mark": null},
			{"name": "Физика", "quarter_marks": ["7", "7", "8", "8"], "year_mark": "8"}
		]}`))
	}))

	summary, err := client.LastPage(context.Background(), "abc123", 1)
	require.NoError(t, err)
	require.Len(t, summary.Rows, 2)
	assert.Equal(t, []string{"8", "-", "-", "9"}, summary.Rows[0].QuarterMarks)
	assert.Equal(t, "-", summary.Rows[0].YearMark)
	assert.Equal(t, "8", summary.Rows[1].YearMark)
}

func TestGetUnauthorizedIsNotRetried(t *testing.T) {
	calls := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.CurrentUser(context.Background(), "stale")
	assert.ErrorIs(t, err, shared.ErrRemoteUnavailable)
	assert.Equal(t, 1, calls)
}
