package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/fincontrol-be/internal/advisor"
	"github.com/hongminglow/fincontrol-be/internal/auth"
	"github.com/hongminglow/fincontrol-be/internal/client"
	"github.com/hongminglow/fincontrol-be/internal/http/handlers"
	"github.com/hongminglow/fincontrol-be/internal/middleware"
	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/models/dto"
	"github.com/hongminglow/fincontrol-be/internal/storage"
	"github.com/hongminglow/fincontrol-be/internal/storage/memory"
)

const adminEmail = "boss@fleet.test"

type echoAdvisor struct{}

func (echoAdvisor) Advise(_ context.Context, expenses []models.Expense) string {
	if len(expenses) == 0 {
		return ""
	}
	return "keep " + expenses[0].Description
}

func newServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	tokens := auth.NewTokenManager("secret", "fincontrol", time.Hour)
	authn := middleware.NewAuthenticator(tokens, store, adminEmail, nil)

	mux := http.NewServeMux()
	handlers.NewAuthHandler(store, store, tokens, adminEmail, nil).Register(mux)
	handlers.NewProfileHandler(store, adminEmail, authn.RequireUser, nil).Register(mux)
	handlers.NewLedgerHandler(store, authn.RequireUser, nil).Register(mux)
	handlers.NewAdminHandler(store, store, adminEmail, authn.RequireAdmin, nil).Register(mux)
	handlers.NewAdviceHandler(echoAdvisor{}, authn.RequireUser).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, store
}

func TestSignInDrivesTheEngine(t *testing.T) {
	ctx := context.Background()
	srv, _ := newServer(t)
	api := New(srv.URL, 5*time.Second, nil)

	_, err := api.Register(ctx, "Dee", "dee@fleet.test", "long-enough")
	require.NoError(t, err)

	app := client.New(client.Options{Ledger: api, Auth: api, Advisor: api, Admin: api, AdminEmail: adminEmail})
	stop := app.Start(ctx)
	defer stop()

	_, err = api.SignIn(ctx, "dee@fleet.test", "long-enough")
	require.NoError(t, err)

	prof, ok := app.Profile()
	require.True(t, ok)
	assert.Equal(t, "Dee", prof.Name)

	e, err := app.SaveExpense(ctx, models.Expense{
		Description: "tank", Amount: decimal.RequireFromString("65"),
		Date: models.NewDate(2026, 8, 3), Category: models.CategoryFuel,
	}, models.FrequencyWeekly)
	require.NoError(t, err)
	_, err = app.UpdateOdometer(ctx, models.OdometerEntry{Date: models.NewDate(2026, 8, 3), StartKm: 5, EndKm: 60})
	require.NoError(t, err)

	require.NoError(t, app.Refresh(ctx))
	s := app.Snapshot()
	require.Len(t, s.Expenses, 1)
	assert.Equal(t, e.ID, s.Expenses[0].ID)
	assert.Len(t, s.Recurring, 1)
	assert.Len(t, s.Odometer, 1)

	assert.Equal(t, "keep tank", app.Advice(ctx))

	require.NoError(t, app.DeleteExpense(ctx, e.ID))
	require.NoError(t, app.DeleteExpense(ctx, e.ID), "deleting twice is not an error")

	require.NoError(t, app.SignOut(ctx))
	assert.Nil(t, app.Snapshot().Session)
	_, ok = api.Session()
	assert.False(t, ok)
}

func TestBlockedAccountCannotSignIn(t *testing.T) {
	ctx := context.Background()
	srv, store := newServer(t)
	api := New(srv.URL, 5*time.Second, nil)

	p, err := api.Register(ctx, "", "blocked@fleet.test", "long-enough")
	require.NoError(t, err)
	require.NoError(t, store.SetProfileStatus(ctx, p.ID, models.StatusBlocked))

	_, err = api.SignIn(ctx, "blocked@fleet.test", "long-enough")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "account blocked", apiErr.Message)
}

func TestErrorsUnwrapToSentinels(t *testing.T) {
	ctx := context.Background()
	srv, _ := newServer(t)
	api := New(srv.URL, 5*time.Second, nil)

	_, err := api.Register(ctx, "", "x@fleet.test", "long-enough")
	require.NoError(t, err)
	_, err = api.Register(ctx, "", "x@fleet.test", "long-enough")
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	_, err = api.Expenses().ListByOwner(ctx, "anyone")
	assert.ErrorIs(t, err, ErrUnauthorized)

	s, err := api.SignIn(ctx, "x@fleet.test", "long-enough")
	require.NoError(t, err)
	_, err = api.Expenses().ListByOwner(ctx, "someone-else")
	assert.ErrorIs(t, err, ErrForbidden)

	err = api.Earnings().Delete(ctx, s.UserID, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = api.Earnings().Upsert(ctx, s.UserID, models.Earning{ID: "r1"})
	assert.ErrorIs(t, err, models.ErrInvalid)

	_, err = api.ListUsers(ctx)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAdminThroughAPI(t *testing.T) {
	ctx := context.Background()
	srv, _ := newServer(t)
	api := New(srv.URL, 5*time.Second, nil)
	_, err := api.Register(ctx, "Boss", adminEmail, "long-enough")
	require.NoError(t, err)
	_, err = api.SignIn(ctx, adminEmail, "long-enough")
	require.NoError(t, err)

	created, err := api.CreateUser(ctx, "New", "new@fleet.test", "long-enough")
	require.NoError(t, err)
	require.NoError(t, api.SetUserStatus(ctx, created.ID, models.StatusBlocked))
	users, err := api.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	require.NoError(t, api.DeleteUser(ctx, created.ID))
	assert.ErrorIs(t, api.DeleteUser(ctx, created.ID), storage.ErrNotFound)
}

func TestAdviseShortCircuitsAndFallsBack(t *testing.T) {
	ctx := context.Background()
	api := New("http://127.0.0.1:1", time.Second, nil)
	assert.Equal(t, advisor.EmptyMessage, api.Advise(ctx, nil))
	assert.Equal(t, advisor.FailureMessage, api.Advise(ctx, []models.Expense{{ID: "e"}}))
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	api := New("http://unused", time.Second, nil)
	var got []*client.Session
	stop := api.Subscribe(func(s *client.Session) { got = append(got, s) })

	api.Restore(&client.Session{UserID: "u1", Token: "t"})
	require.NoError(t, api.SignOut(context.Background()))
	require.NoError(t, api.SignOut(context.Background()))
	stop()
	api.Restore(&client.Session{UserID: "u2"})

	require.Len(t, got, 2)
	assert.Equal(t, "u1", got[0].UserID)
	assert.Nil(t, got[1])
}

func TestBlockedAfterSignInEndsSession(t *testing.T) {
	ctx := context.Background()
	srv, store := newServer(t)
	api := New(srv.URL, 5*time.Second, nil)

	_, err := api.Register(ctx, "Dee", "dee@fleet.test", "long-enough")
	require.NoError(t, err)
	app := client.New(client.Options{Ledger: api, Auth: api, Advisor: api, Admin: api, AdminEmail: adminEmail})
	stop := app.Start(ctx)
	defer stop()

	s, err := api.SignIn(ctx, "dee@fleet.test", "long-enough")
	require.NoError(t, err)
	require.NotNil(t, app.Snapshot().Profile)

	require.NoError(t, store.SetProfileStatus(ctx, s.UserID, models.StatusBlocked))
	err = app.Refresh(ctx)
	require.ErrorIs(t, err, client.ErrAccountBlocked)

	st := app.Snapshot()
	assert.Nil(t, st.Session)
	assert.Nil(t, st.Profile)
	assert.Equal(t, client.BlockedNotice, st.Notice)
	_, ok := api.Session()
	assert.False(t, ok)
}

func TestRejectedTokenEndsSession(t *testing.T) {
	ctx := context.Background()
	srv, _ := newServer(t)
	api := New(srv.URL, 5*time.Second, nil)
	app := client.New(client.Options{Ledger: api, Auth: api, Advisor: api, Admin: api})
	stop := app.Start(ctx)
	defer stop()

	api.Restore(&client.Session{UserID: "u1", Email: "dee@fleet.test", Token: "not-a-jwt"})

	st := app.Snapshot()
	assert.Nil(t, st.Session)
	assert.Equal(t, client.ExpiredNotice, st.Notice)
	_, ok := api.Session()
	assert.False(t, ok)
}

func TestSessionSentinels(t *testing.T) {
	assert.ErrorIs(t, &Error{Status: http.StatusUnauthorized, Authenticated: true}, client.ErrSessionExpired)
	assert.ErrorIs(t, &Error{Status: http.StatusUnauthorized}, ErrUnauthorized)
	assert.NotErrorIs(t, &Error{Status: http.StatusUnauthorized}, client.ErrSessionExpired)

	blocked := &Error{Status: http.StatusForbidden, Message: dto.AccountBlockedMessage}
	assert.ErrorIs(t, blocked, client.ErrAccountBlocked)
	assert.ErrorIs(t, blocked, ErrForbidden)
	assert.NotErrorIs(t, &Error{Status: http.StatusForbidden, Message: "admin role required"}, client.ErrAccountBlocked)
	assert.ErrorIs(t, &Error{Status: http.StatusNotFound}, storage.ErrNotFound)
}
