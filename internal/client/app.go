// Package client holds the application state of a signed-in driver and the
// controller that keeps it in sync with the remote backend.
package client

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

var (
	ErrNoSession       = errors.New("no active session")
	ErrSessionExpired  = errors.New("session expired")
	ErrAccountBlocked  = errors.New("account blocked")
	ErrForbidden       = errors.New("admin role required")
	ErrUnknownView     = errors.New("unknown view")
	ErrBuiltinCategory = errors.New("built-in categories cannot be removed")
	ErrInvalidPayment  = errors.New("payment must be positive")
)

// BlockedNotice is shown after a blocked account is signed out.
const BlockedNotice = "Your account has been blocked. Contact the administrator."

// ExpiredNotice is shown after the backend rejects the session token.
const ExpiredNotice = "Your session has expired. Sign in again."

// Session is an authenticated backend session.
type Session struct {
	UserID string
	Email  string
	Token  string
}

// Authenticator owns the backend session lifecycle.
type Authenticator interface {
	SignOut(ctx context.Context) error
	// Subscribe registers fn for session changes; a nil session means signed
	// out. The returned func removes the subscription.
	Subscribe(fn func(*Session)) func()
}

// Advisor produces free-text advice from an expense list.
type Advisor interface {
	Advise(ctx context.Context, expenses []models.Expense) string
}

// PrefStore persists small string lists under fixed keys.
type PrefStore interface {
	GetStrings(ctx context.Context, key string) ([]string, bool, error)
	PutStrings(ctx context.Context, key string, values []string) error
}

// Options configures an App.
type Options struct {
	Ledger     storage.Ledger
	Auth       Authenticator
	Advisor    Advisor
	Prefs      PrefStore
	Admin      AdminBackend
	AdminEmail string
	Logger     *zap.SugaredLogger
	NewID      func() string
}

// State is a point-in-time copy of everything the views render.
type State struct {
	Session           *Session
	Profile           *models.Profile
	Loading           bool
	Notice            string
	View              View
	Editing           *models.Expense
	Expenses          []models.Expense
	Earnings          []models.Earning
	Odometer          []models.OdometerEntry
	Credits           []models.CreditEntry
	Recurring         []models.RecurringExpense
	ExpenseCategories models.CategorySet
	EarningCategories models.CategorySet
}

// App is the single owner of the application state. Every read and write
// goes through its methods.
type App struct {
	ledger     storage.Ledger
	auth       Authenticator
	advisor    Advisor
	prefs      PrefStore
	admin      AdminBackend
	adminEmail string
	log        *zap.SugaredLogger
	newID      func() string

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc

	expenses  slot[models.Expense]
	earnings  slot[models.Earning]
	odometer  slot[models.OdometerEntry]
	credits   slot[models.CreditEntry]
	recurring slot[models.RecurringExpense]
}

// New builds an App with empty state.
func New(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	a := &App{
		ledger:     opts.Ledger,
		auth:       opts.Auth,
		advisor:    opts.Advisor,
		prefs:      opts.Prefs,
		admin:      opts.Admin,
		adminEmail: opts.AdminEmail,
		log:        opts.Logger,
		newID:      opts.NewID,
	}
	a.state = State{
		View:              DefaultView,
		ExpenseCategories: models.NewCategorySet(models.DefaultExpenseCategories, nil),
		EarningCategories: models.NewCategorySet(models.DefaultEarningCategories, nil),
	}
	a.expenses = slot[models.Expense]{
		name:    "expenses",
		coll:    func() storage.Collection[models.Expense] { return a.ledger.Expenses() },
		get:     func(s *State) []models.Expense { return s.Expenses },
		set:     func(s *State, v []models.Expense) { s.Expenses = v },
		changes: &changeLog[models.Expense]{},
	}
	a.earnings = slot[models.Earning]{
		name:    "earnings",
		coll:    func() storage.Collection[models.Earning] { return a.ledger.Earnings() },
		get:     func(s *State) []models.Earning { return s.Earnings },
		set:     func(s *State, v []models.Earning) { s.Earnings = v },
		changes: &changeLog[models.Earning]{},
	}
	a.odometer = slot[models.OdometerEntry]{
		name:    "odometer",
		coll:    func() storage.Collection[models.OdometerEntry] { return a.ledger.Odometer() },
		get:     func(s *State) []models.OdometerEntry { return s.Odometer },
		set:     func(s *State, v []models.OdometerEntry) { s.Odometer = v },
		changes: &changeLog[models.OdometerEntry]{},
	}
	a.credits = slot[models.CreditEntry]{
		name:    "credits",
		coll:    func() storage.Collection[models.CreditEntry] { return a.ledger.Credits() },
		get:     func(s *State) []models.CreditEntry { return s.Credits },
		set:     func(s *State, v []models.CreditEntry) { s.Credits = v },
		changes: &changeLog[models.CreditEntry]{},
	}
	a.recurring = slot[models.RecurringExpense]{
		name:    "recurring",
		coll:    func() storage.Collection[models.RecurringExpense] { return a.ledger.Recurring() },
		get:     func(s *State) []models.RecurringExpense { return s.Recurring },
		set:     func(s *State, v []models.RecurringExpense) { s.Recurring = v },
		changes: &changeLog[models.RecurringExpense]{},
	}
	return a
}

// Snapshot returns a copy of the current state.
func (a *App) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.state
	if s.Session != nil {
		sess := *s.Session
		s.Session = &sess
	}
	if s.Profile != nil {
		p := *s.Profile
		s.Profile = &p
	}
	if s.Editing != nil {
		e := *s.Editing
		s.Editing = &e
	}
	s.Expenses = slices.Clone(s.Expenses)
	s.Earnings = slices.Clone(s.Earnings)
	s.Odometer = slices.Clone(s.Odometer)
	s.Credits = slices.Clone(s.Credits)
	s.Recurring = slices.Clone(s.Recurring)
	return s
}

// Profile returns the resolved profile of the current session, if any.
func (a *App) Profile() (models.Profile, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.Profile == nil {
		return models.Profile{}, false
	}
	return *a.state.Profile, true
}

// commit applies fn to the state only if gen is still the current
// generation. It reports whether fn ran.
func (a *App) commit(gen uint64, fn func(*State)) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen {
		return false
	}
	fn(&a.state)
	return true
}

// clearLocked drops every per-user value. Notice is kept so a blocking
// message survives the sign-out it causes.
func (a *App) clearLocked() {
	a.state.Session = nil
	a.state.Profile = nil
	a.state.Loading = false
	a.state.Editing = nil
	a.state.View = DefaultView
	a.clearDataLocked()
}

func (a *App) clearDataLocked() {
	a.state.Expenses = nil
	a.state.Earnings = nil
	a.state.Odometer = nil
	a.state.Credits = nil
	a.state.Recurring = nil
}
