package client

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/storage"
	"github.com/hongminglow/fincontrol-be/internal/storage/memory"
)

var errBackend = errors.New("backend unavailable")

// hooked wraps a collection with failure injection. onList runs before
// every list call; onListed runs after the list was read and before it is
// returned.
type hooked[T models.Record] struct {
	storage.Collection[T]

	mu        sync.Mutex
	onList    func(ctx context.Context, ownerID string) error
	onListed  func(ownerID string)
	upsertErr error
	deleteErr error
	lists     atomic.Int32
}

func (h *hooked[T]) ListByOwner(ctx context.Context, ownerID string) ([]T, error) {
	h.lists.Add(1)
	h.mu.Lock()
	hook, after := h.onList, h.onListed
	h.mu.Unlock()
	if hook != nil {
		if err := hook(ctx, ownerID); err != nil {
			return nil, err
		}
	}
	items, err := h.Collection.ListByOwner(ctx, ownerID)
	if err == nil && after != nil {
		after(ownerID)
	}
	return items, err
}

func (h *hooked[T]) Upsert(ctx context.Context, ownerID string, item T) (T, error) {
	h.mu.Lock()
	err := h.upsertErr
	h.mu.Unlock()
	if err != nil {
		var zero T
		return zero, err
	}
	return h.Collection.Upsert(ctx, ownerID, item)
}

func (h *hooked[T]) Delete(ctx context.Context, ownerID, id string) error {
	h.mu.Lock()
	err := h.deleteErr
	h.mu.Unlock()
	if err != nil {
		return err
	}
	return h.Collection.Delete(ctx, ownerID, id)
}

func (h *hooked[T]) setList(fn func(ctx context.Context, ownerID string) error) {
	h.mu.Lock()
	h.onList = fn
	h.mu.Unlock()
}

func (h *hooked[T]) setListed(fn func(ownerID string)) {
	h.mu.Lock()
	h.onListed = fn
	h.mu.Unlock()
}

func (h *hooked[T]) failUpsert(err error) {
	h.mu.Lock()
	h.upsertErr = err
	h.mu.Unlock()
}

func (h *hooked[T]) failDelete(err error) {
	h.mu.Lock()
	h.deleteErr = err
	h.mu.Unlock()
}

type fakeProfiles struct {
	storage.ProfileStore
	getErr    error
	upsertErr error
}

func (f *fakeProfiles) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	if f.getErr != nil {
		return models.Profile{}, f.getErr
	}
	return f.ProfileStore.GetProfile(ctx, id)
}

func (f *fakeProfiles) UpsertProfile(ctx context.Context, p models.Profile) (models.Profile, error) {
	if f.upsertErr != nil {
		return models.Profile{}, f.upsertErr
	}
	return f.ProfileStore.UpsertProfile(ctx, p)
}

type fakeLedger struct {
	store     *memory.Store
	expenses  *hooked[models.Expense]
	earnings  *hooked[models.Earning]
	odometer  *hooked[models.OdometerEntry]
	credits   *hooked[models.CreditEntry]
	recurring *hooked[models.RecurringExpense]
	profiles  *fakeProfiles
}

func newFakeLedger() *fakeLedger {
	s := memory.NewStore()
	return &fakeLedger{
		store:     s,
		expenses:  &hooked[models.Expense]{Collection: s.Expenses()},
		earnings:  &hooked[models.Earning]{Collection: s.Earnings()},
		odometer:  &hooked[models.OdometerEntry]{Collection: s.Odometer()},
		credits:   &hooked[models.CreditEntry]{Collection: s.Credits()},
		recurring: &hooked[models.RecurringExpense]{Collection: s.Recurring()},
		profiles:  &fakeProfiles{ProfileStore: s.Profiles()},
	}
}

func (l *fakeLedger) Expenses() storage.Collection[models.Expense]           { return l.expenses }
func (l *fakeLedger) Earnings() storage.Collection[models.Earning]           { return l.earnings }
func (l *fakeLedger) Odometer() storage.Collection[models.OdometerEntry]     { return l.odometer }
func (l *fakeLedger) Credits() storage.Collection[models.CreditEntry]        { return l.credits }
func (l *fakeLedger) Recurring() storage.Collection[models.RecurringExpense] { return l.recurring }
func (l *fakeLedger) Profiles() storage.ProfileStore                         { return l.profiles }

func (l *fakeLedger) totalLists() int32 {
	return l.expenses.lists.Load() + l.earnings.lists.Load() + l.odometer.lists.Load() +
		l.credits.lists.Load() + l.recurring.lists.Load()
}

type fakeAuth struct {
	mu       sync.Mutex
	signOuts int
	subs     []func(*Session)
}

func (f *fakeAuth) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	return nil
}

func (f *fakeAuth) Subscribe(fn func(*Session)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
	return func() {}
}

func (f *fakeAuth) emit(s *Session) {
	f.mu.Lock()
	subs := append([]func(*Session){}, f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(s)
	}
}

func (f *fakeAuth) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signOuts
}

type fakePrefs struct {
	mu     sync.Mutex
	values map[string][]string
	putErr error
}

func (f *fakePrefs) GetStrings(_ context.Context, key string) ([]string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakePrefs) PutStrings(_ context.Context, key string, values []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	if f.values == nil {
		f.values = map[string][]string{}
	}
	f.values[key] = values
	return nil
}

type fakeAdvisor struct {
	got []models.Expense
}

func (f *fakeAdvisor) Advise(_ context.Context, expenses []models.Expense) string {
	f.got = expenses
	return "drive less"
}

type fakeAdmin struct {
	users   []models.Profile
	deleted []string
}

func (f *fakeAdmin) ListUsers(context.Context) ([]models.Profile, error) { return f.users, nil }

func (f *fakeAdmin) CreateUser(_ context.Context, name, email, _ string) (models.Profile, error) {
	p := models.Profile{ID: "new", Name: name, Email: email, Role: models.RoleUser, Status: models.StatusActive}
	f.users = append(f.users, p)
	return p, nil
}

func (f *fakeAdmin) SetUserStatus(_ context.Context, id, status string) error {
	for i := range f.users {
		if f.users[i].ID == id {
			f.users[i].Status = status
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeAdmin) DeleteUser(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type harness struct {
	app     *App
	ledger  *fakeLedger
	auth    *fakeAuth
	prefs   *fakePrefs
	advisor *fakeAdvisor
	admin   *fakeAdmin
}

const adminEmail = "boss@fleet.test"

func newHarness() *harness {
	h := &harness{
		ledger:  newFakeLedger(),
		auth:    &fakeAuth{},
		prefs:   &fakePrefs{},
		advisor: &fakeAdvisor{},
		admin:   &fakeAdmin{},
	}
	var n atomic.Int64
	h.app = New(Options{
		Ledger:     h.ledger,
		Auth:       h.auth,
		Advisor:    h.advisor,
		Prefs:      h.prefs,
		Admin:      h.admin,
		AdminEmail: adminEmail,
		NewID:      func() string { return "id-" + strconv.FormatInt(n.Add(1), 10) },
	})
	return h
}

func (h *harness) seedProfile(p models.Profile) {
	if _, err := h.ledger.store.UpsertProfile(context.Background(), p); err != nil {
		panic(err)
	}
}

func session(id string) *Session {
	return &Session{UserID: id, Email: id + "@fleet.test", Token: "tok-" + id}
}

func activeProfile(id string) models.Profile {
	return models.Profile{ID: id, Name: id, Email: id + "@fleet.test", Role: models.RoleUser, Status: models.StatusActive}
}
