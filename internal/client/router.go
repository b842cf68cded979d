package client

import (
	"fmt"

	"github.com/hongminglow/fincontrol-be/internal/models"
)

// View names one screen of the application.
type View string

const (
	ViewDashboard     View = "dashboard"
	ViewDailyFlow     View = "daily-flow"
	ViewAddEntry      View = "add-entry"
	ViewList          View = "list"
	ViewAdvisor       View = "advisor"
	ViewRecurring     View = "recurring"
	ViewCreditHistory View = "credit-history"
	ViewAdminPanel    View = "admin-panel"
)

// DefaultView is shown after sign-in and whenever a view becomes unavailable.
const DefaultView = ViewDailyFlow

// Views lists every view in navigation order.
var Views = []View{
	ViewDailyFlow, ViewDashboard, ViewCreditHistory, ViewList,
	ViewAddEntry, ViewRecurring, ViewAdvisor, ViewAdminPanel,
}

// ParseView validates a view name.
func ParseView(name string) (View, error) {
	for _, v := range Views {
		if string(v) == name {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, name)
}

// AdminOnly reports whether the view requires the admin role.
func (v View) AdminOnly() bool { return v == ViewAdminPanel }

// CurrentView returns the selected view.
func (a *App) CurrentView() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.View
}

// Navigate selects v. Admin views are refused unless the current profile is
// an admin.
func (a *App) Navigate(v View) error {
	if _, err := ParseView(string(v)); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if v.AdminOnly() && !a.isAdminLocked() {
		return ErrForbidden
	}
	if v != ViewAddEntry {
		a.state.Editing = nil
	}
	a.state.View = v
	return nil
}

// EditExpense opens the entry form prefilled with the expense id.
func (a *App) EditExpense(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := models.FindByID(a.state.Expenses, id)
	if !ok {
		return fmt.Errorf("expense %s: not loaded", id)
	}
	a.state.Editing = &e
	a.state.View = ViewAddEntry
	return nil
}

// NewExpense opens an empty entry form.
func (a *App) NewExpense() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Editing = nil
	a.state.View = ViewAddEntry
}

func (a *App) isAdminLocked() bool {
	return a.state.Profile != nil && a.state.Profile.IsAdmin()
}

// reconcileViewLocked leaves an admin view once admin rights are gone.
func (a *App) reconcileViewLocked() {
	if a.state.View.AdminOnly() && !a.isAdminLocked() {
		a.state.View = DefaultView
	}
}

func (a *App) redirect(gen uint64, v View) {
	a.commit(gen, func(st *State) {
		st.Editing = nil
		st.View = v
	})
}
