package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/fincontrol-be/internal/advisor"
	"github.com/hongminglow/fincontrol-be/internal/models"
)

func TestParseView(t *testing.T) {
	v, err := ParseView("credit-history")
	require.NoError(t, err)
	assert.Equal(t, ViewCreditHistory, v)

	_, err = ParseView("settings")
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestNavigateGuardsAdminPanel(t *testing.T) {
	h := signedIn(t)
	assert.ErrorIs(t, h.app.Navigate(ViewAdminPanel), ErrForbidden)
	assert.Equal(t, DefaultView, h.app.CurrentView())

	require.NoError(t, h.app.Navigate(ViewDashboard))
	assert.Equal(t, ViewDashboard, h.app.CurrentView())
	assert.ErrorIs(t, h.app.Navigate(View("nope")), ErrUnknownView)
}

func TestAdminViewIsLeftWhenRightsAreGone(t *testing.T) {
	h := newHarness()
	p := activeProfile("boss")
	p.Email = adminEmail
	h.seedProfile(p)
	h.seedProfile(activeProfile("u1"))
	require.NoError(t, h.app.HandleSession(ctx, session("boss")))
	require.NoError(t, h.app.Navigate(ViewAdminPanel))

	require.NoError(t, h.app.HandleSession(ctx, session("u1")))
	assert.Equal(t, DefaultView, h.app.CurrentView())
}

func TestEditExpenseOpensForm(t *testing.T) {
	h := signedIn(t)
	e, err := h.app.SaveExpense(ctx, models.Expense{
		Description: "wash", Amount: dec("15"), Date: may1, Category: models.CategoryMaintenance,
	}, "")
	require.NoError(t, err)

	require.NoError(t, h.app.EditExpense(e.ID))
	s := h.app.Snapshot()
	assert.Equal(t, ViewAddEntry, s.View)
	require.NotNil(t, s.Editing)
	assert.Equal(t, e.ID, s.Editing.ID)

	require.NoError(t, h.app.Navigate(ViewDashboard))
	assert.Nil(t, h.app.Snapshot().Editing)
	assert.Error(t, h.app.EditExpense("missing"))
}

func TestCategoriesPersistCustomNames(t *testing.T) {
	h := newHarness()
	h.prefs.values = map[string][]string{PrefExpenseCategories: {"Parking"}}
	require.NoError(t, h.app.LoadPreferences(ctx))
	assert.True(t, h.app.Snapshot().ExpenseCategories.Contains("Parking"))

	require.NoError(t, h.app.AddExpenseCategory(ctx, "Tolls"))
	assert.Equal(t, []string{"Parking", "Tolls"}, h.prefs.values[PrefExpenseCategories])

	require.NoError(t, h.app.RemoveExpenseCategory(ctx, "Parking"))
	assert.Equal(t, []string{"Tolls"}, h.prefs.values[PrefExpenseCategories])

	assert.ErrorIs(t, h.app.RemoveExpenseCategory(ctx, models.CategoryFuel), ErrBuiltinCategory)
	assert.ErrorIs(t, h.app.RemoveEarningCategory(ctx, models.CategoryRides), ErrBuiltinCategory)

	require.NoError(t, h.app.AddEarningCategory(ctx, "Tips"))
	assert.Equal(t, []string{"Tips"}, h.prefs.values[PrefEarningCategories])
	all := h.app.Snapshot().EarningCategories.All()
	assert.Equal(t, []string{models.CategoryRides, "Tips"}, all)
}

func TestCategoryPersistFailureIsReported(t *testing.T) {
	h := newHarness()
	h.prefs.putErr = errBackend
	assert.ErrorIs(t, h.app.AddExpenseCategory(ctx, "Tolls"), errBackend)
}

func TestAdviceDelegatesLoadedExpenses(t *testing.T) {
	h := signedIn(t)
	_, err := h.app.SaveExpense(ctx, models.Expense{
		Description: "tank", Amount: dec("70"), Date: may1, Category: models.CategoryFuel,
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "drive less", h.app.Advice(ctx))
	assert.Len(t, h.advisor.got, 1)

	bare := New(Options{})
	assert.Equal(t, advisor.FailureMessage, bare.Advice(ctx))
}

func TestDashboardAndEntriesReflectState(t *testing.T) {
	h := signedIn(t)
	_, err := h.app.SaveExpense(ctx, models.Expense{
		Description: "tank", Amount: dec("70"), Date: may1, Category: models.CategoryFuel,
	}, "")
	require.NoError(t, err)
	_, err = h.app.SaveEarning(ctx, models.Earning{
		Description: "rides", Amount: dec("200"), Date: may1, Category: models.CategoryRides,
	})
	require.NoError(t, err)

	d := h.app.Dashboard()
	assert.True(t, d.Balance.Equal(dec("130")))

	flow := h.app.DailyFlow(may1)
	assert.True(t, flow.Net.Equal(dec("130")))

	entries := h.app.Entries()
	require.Len(t, entries, 2)
}

func TestAdminOperationsRequireAdmin(t *testing.T) {
	h := signedIn(t)
	_, err := h.app.AdminUsers(ctx)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, h.app.AdminDeleteUser(ctx, "u2"), ErrForbidden)

	bare := newHarness()
	_, err = bare.app.AdminUsers(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	admin := newHarness()
	p := activeProfile("boss")
	p.Email = adminEmail
	admin.seedProfile(p)
	require.NoError(t, admin.app.HandleSession(ctx, session("boss")))

	created, err := admin.app.AdminCreateUser(ctx, "New", "new@fleet.test", "secret-pass")
	require.NoError(t, err)
	require.NoError(t, admin.app.AdminSetStatus(ctx, created.ID, models.StatusBlocked))
	users, err := admin.app.AdminUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, models.StatusBlocked, users[0].Status)
	require.NoError(t, admin.app.AdminDeleteUser(ctx, created.ID))
	assert.Equal(t, []string{"new"}, admin.admin.deleted)
}
