package client

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/fincontrol-be/internal/models"
)

var ctx = context.Background()

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedExpense(t *testing.T, h *harness, owner, id string) {
	t.Helper()
	_, err := h.ledger.store.Expenses().Upsert(ctx, owner, models.Expense{
		ID: id, Description: "fuel " + id, Amount: dec("50"), Date: models.NewDate(2026, 5, 1),
		Category: models.CategoryFuel, Type: models.ExpenseWork,
	})
	require.NoError(t, err)
}

func TestHandleSessionLoadsEverything(t *testing.T) {
	h := newHarness()
	h.seedProfile(activeProfile("u1"))
	seedExpense(t, h, "u1", "e1")
	_, err := h.ledger.store.Earnings().Upsert(ctx, "u1", models.Earning{
		ID: "r1", Description: "rides", Amount: dec("200"), Date: models.NewDate(2026, 5, 1), Category: models.CategoryRides,
	})
	require.NoError(t, err)
	seedExpense(t, h, "someone-else", "e2")

	require.NoError(t, h.app.HandleSession(ctx, session("u1")))

	s := h.app.Snapshot()
	require.NotNil(t, s.Profile)
	assert.Equal(t, "u1", s.Profile.ID)
	assert.False(t, s.Loading)
	assert.Equal(t, DefaultView, s.View)
	require.Len(t, s.Expenses, 1)
	assert.Equal(t, "e1", s.Expenses[0].ID)
	assert.Len(t, s.Earnings, 1)
	assert.NotNil(t, s.Odometer)
	assert.Empty(t, s.Odometer)
}

func TestStartFollowsSubscription(t *testing.T) {
	h := newHarness()
	h.seedProfile(activeProfile("u1"))
	stop := h.app.Start(ctx)
	defer stop()

	h.auth.emit(session("u1"))
	require.NotNil(t, h.app.Snapshot().Session)

	h.auth.emit(nil)
	s := h.app.Snapshot()
	assert.Nil(t, s.Session)
	assert.Nil(t, s.Profile)
}

func TestStaleSynchronizationIsDiscarded(t *testing.T) {
	h := newHarness()
	h.seedProfile(activeProfile("a"))
	h.seedProfile(activeProfile("b"))
	seedExpense(t, h, "a", "from-a")
	seedExpense(t, h, "b", "from-b")

	entered := make(chan struct{})
	release := make(chan struct{})
	h.ledger.expenses.setList(func(_ context.Context, owner string) error {
		if owner == "a" {
			close(entered)
			<-release
		}
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- h.app.HandleSession(ctx, session("a")) }()
	<-entered

	require.NoError(t, h.app.HandleSession(ctx, session("b")))
	close(release)

	select {
	case err := <-done:
		assert.NoError(t, err, "a superseded sync must not report an error")
	case <-time.After(2 * time.Second):
		t.Fatal("first sync did not finish")
	}

	s := h.app.Snapshot()
	assert.Equal(t, "b", s.Session.UserID)
	assert.Equal(t, "b", s.Profile.ID)
	require.Len(t, s.Expenses, 1)
	assert.Equal(t, "from-b", s.Expenses[0].ID)
	assert.False(t, s.Loading)
}

func TestCommitRejectsStaleGeneration(t *testing.T) {
	h := newHarness()
	h.seedProfile(activeProfile("u1"))
	require.NoError(t, h.app.HandleSession(ctx, session("u1")))

	h.app.mu.Lock()
	stale := h.app.gen - 1
	h.app.mu.Unlock()

	ran := h.app.commit(stale, func(st *State) { st.Expenses = []models.Expense{{ID: "ghost"}} })
	assert.False(t, ran)
	assert.Empty(t, h.app.Snapshot().Expenses)
}

func TestPartialFailureIsIsolated(t *testing.T) {
	h := newHarness()
	h.seedProfile(activeProfile("u1"))
	seedExpense(t, h, "u1", "e1")
	h.ledger.earnings.setList(func(context.Context, string) error { return errBackend })

	err := h.app.HandleSession(ctx, session("u1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errBackend)
	assert.Contains(t, err.Error(), "earnings")

	s := h.app.Snapshot()
	assert.Len(t, s.Expenses, 1)
	assert.Empty(t, s.Earnings)
	assert.NotNil(t, s.Session)
	assert.False(t, s.Loading)
}

func TestBlockedAccountIsSignedOutBeforeLoading(t *testing.T) {
	h := newHarness()
	p := activeProfile("u1")
	p.Status = models.StatusBlocked
	h.seedProfile(p)
	seedExpense(t, h, "u1", "e1")

	err := h.app.HandleSession(ctx, session("u1"))
	require.ErrorIs(t, err, ErrAccountBlocked)

	s := h.app.Snapshot()
	assert.Nil(t, s.Session)
	assert.Nil(t, s.Profile)
	assert.Empty(t, s.Expenses)
	assert.Equal(t, BlockedNotice, s.Notice)
	assert.Equal(t, 1, h.auth.count())
	assert.Zero(t, h.ledger.totalLists())
}

func TestAdminEmailOverridesStoredRole(t *testing.T) {
	h := newHarness()
	p := activeProfile("boss")
	p.Email = "Boss@Fleet.test"
	h.seedProfile(p)

	require.NoError(t, h.app.HandleSession(ctx, session("boss")))
	prof, ok := h.app.Profile()
	require.True(t, ok)
	assert.True(t, prof.IsAdmin())
	assert.NoError(t, h.app.Navigate(ViewAdminPanel))
}

func TestMissingProfileIsCreated(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.app.HandleSession(ctx, session("fresh")))

	stored, err := h.ledger.store.GetProfile(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh", stored.Name)
	assert.Equal(t, "fresh@fleet.test", stored.Email)
	assert.Equal(t, models.RoleUser, stored.Role)
	assert.Equal(t, models.StatusActive, stored.Status)
}

func TestProfileCreateFailureFallsBackToDefault(t *testing.T) {
	h := newHarness()
	h.ledger.profiles.upsertErr = errBackend

	require.NoError(t, h.app.HandleSession(ctx, session("fresh")))
	prof, ok := h.app.Profile()
	require.True(t, ok)
	assert.Equal(t, models.RoleUser, prof.Role)
	assert.Equal(t, int32(1), h.ledger.expenses.lists.Load())
}

func TestProfileLookupFailureFailsClosed(t *testing.T) {
	h := newHarness()
	h.ledger.profiles.getErr = errBackend
	seedExpense(t, h, "u1", "e1")

	err := h.app.HandleSession(ctx, session("u1"))
	require.ErrorIs(t, err, errBackend)

	s := h.app.Snapshot()
	assert.Nil(t, s.Profile)
	assert.Empty(t, s.Expenses)
	assert.False(t, s.Loading)
	assert.Zero(t, h.ledger.totalLists())
}

func TestSignOutClearsState(t *testing.T) {
	h := newHarness()
	h.seedProfile(activeProfile("u1"))
	seedExpense(t, h, "u1", "e1")
	require.NoError(t, h.app.HandleSession(ctx, session("u1")))
	require.NoError(t, h.app.Navigate(ViewList))

	require.NoError(t, h.app.SignOut(ctx))

	s := h.app.Snapshot()
	assert.Nil(t, s.Session)
	assert.Nil(t, s.Profile)
	assert.Empty(t, s.Expenses)
	assert.Equal(t, DefaultView, s.View)
	assert.Equal(t, 1, h.auth.count())
}

func TestSwitchingUserDropsPreviousData(t *testing.T) {
	h := newHarness()
	h.seedProfile(activeProfile("a"))
	h.seedProfile(activeProfile("b"))
	seedExpense(t, h, "a", "from-a")
	require.NoError(t, h.app.HandleSession(ctx, session("a")))

	h.ledger.expenses.setList(func(context.Context, string) error { return errBackend })
	err := h.app.HandleSession(ctx, session("b"))
	require.Error(t, err)

	s := h.app.Snapshot()
	assert.Equal(t, "b", s.Profile.ID)
	assert.Empty(t, s.Expenses)
}

func TestRefreshRequiresSession(t *testing.T) {
	h := newHarness()
	assert.ErrorIs(t, h.app.Refresh(ctx), ErrNoSession)

	h.seedProfile(activeProfile("u1"))
	require.NoError(t, h.app.HandleSession(ctx, session("u1")))
	seedExpense(t, h, "u1", "late")
	require.NoError(t, h.app.Refresh(ctx))
	assert.Len(t, h.app.Snapshot().Expenses, 1)
}

func TestCancelledErrorsAreSilent(t *testing.T) {
	c, cancel := context.WithCancel(ctx)
	cancel()
	assert.True(t, cancelled(c, errBackend))
	assert.True(t, cancelled(ctx, context.Canceled))
	assert.False(t, cancelled(ctx, errors.New("boom")))
}

func TestBackendRefusalEndsSession(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		want   error
		notice string
	}{
		{"blocked", fmt.Errorf("api: 403 account blocked: %w", ErrAccountBlocked), ErrAccountBlocked, BlockedNotice},
		{"expired", fmt.Errorf("api: 401 invalid token: %w", ErrSessionExpired), ErrSessionExpired, ExpiredNotice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			h.seedProfile(activeProfile("u1"))
			seedExpense(t, h, "u1", "e1")
			require.NoError(t, h.app.HandleSession(ctx, session("u1")))
			require.Len(t, h.app.Snapshot().Expenses, 1)

			h.ledger.profiles.getErr = tc.err
			err := h.app.Refresh(ctx)
			require.ErrorIs(t, err, tc.want)

			s := h.app.Snapshot()
			assert.Nil(t, s.Session)
			assert.Nil(t, s.Profile)
			assert.Empty(t, s.Expenses)
			assert.Equal(t, tc.notice, s.Notice)
			assert.Equal(t, 1, h.auth.count())
		})
	}
}

func TestExpiredTokenDuringFetchEndsSession(t *testing.T) {
	h := newHarness()
	h.seedProfile(activeProfile("u1"))
	h.ledger.credits.setList(func(context.Context, string) error {
		return fmt.Errorf("api: 401 invalid or expired token: %w", ErrSessionExpired)
	})

	err := h.app.HandleSession(ctx, session("u1"))
	require.ErrorIs(t, err, ErrSessionExpired)

	s := h.app.Snapshot()
	assert.Nil(t, s.Session)
	assert.Equal(t, ExpiredNotice, s.Notice)
	assert.Equal(t, 1, h.auth.count())
}

func TestOrdinaryLookupFailureKeepsSession(t *testing.T) {
	h := newHarness()
	h.ledger.profiles.getErr = errBackend

	err := h.app.HandleSession(ctx, session("u1"))
	require.ErrorIs(t, err, errBackend)
	assert.NotNil(t, h.app.Snapshot().Session)
	assert.Zero(t, h.auth.count())
}
