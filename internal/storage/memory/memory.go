// Package memory is an in-process implementation of the storage interfaces.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

type row[T models.Record] struct {
	owner string
	item  T
}

// Collection keeps records keyed by owner and upsert key.
type Collection[T models.Record] struct {
	mu   sync.RWMutex
	rows []row[T]
	less func(a, b T) bool
}

// NewCollection returns an empty collection listed in less order.
func NewCollection[T models.Record](less func(a, b T) bool) *Collection[T] {
	return &Collection[T]{less: less}
}

func (c *Collection[T]) ListByOwner(ctx context.Context, ownerID string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []T{}
	for _, r := range c.rows {
		if r.owner == ownerID {
			out = append(out, r.item)
		}
	}
	if c.less != nil {
		sort.SliceStable(out, func(i, j int) bool { return c.less(out[i], out[j]) })
	}
	return out, nil
}

// Upsert replaces the row with the same upsert key. A key held by another
// owner is reported as not found.
func (c *Collection[T]) Upsert(ctx context.Context, ownerID string, item T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, r := range c.rows {
		if r.item.RecordID() != item.RecordID() && !(r.owner == ownerID && r.item.UpsertKey() == item.UpsertKey()) {
			continue
		}
		if r.owner != ownerID {
			return zero, storage.ErrNotFound
		}
		c.rows[i].item = item
		return item, nil
	}
	c.rows = append(c.rows, row[T]{owner: ownerID, item: item})
	return item, nil
}

func (c *Collection[T]) Delete(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, r := range c.rows {
		if r.owner == ownerID && r.item.RecordID() == id {
			c.rows = append(c.rows[:i], c.rows[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (c *Collection[T]) dropOwner(ownerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.rows[:0]
	for _, r := range c.rows {
		if r.owner != ownerID {
			kept = append(kept, r)
		}
	}
	c.rows = kept
}

// Store implements storage.Ledger, UserStore, AdminStore and RecurringSource.
type Store struct {
	expenses  *Collection[models.Expense]
	earnings  *Collection[models.Earning]
	odometer  *Collection[models.OdometerEntry]
	credits   *Collection[models.CreditEntry]
	recurring *Collection[models.RecurringExpense]

	mu       sync.RWMutex
	users    map[string]models.User
	profiles map[string]models.Profile
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		expenses:  NewCollection(func(a, b models.Expense) bool { return a.Date.Before(b.Date) }),
		earnings:  NewCollection(func(a, b models.Earning) bool { return a.Date.Before(b.Date) }),
		odometer:  NewCollection(func(a, b models.OdometerEntry) bool { return a.Date.Before(b.Date) }),
		credits:   NewCollection(func(a, b models.CreditEntry) bool { return a.DueDate.Before(b.DueDate) }),
		recurring: NewCollection(func(a, b models.RecurringExpense) bool { return a.NextDueDate.Before(b.NextDueDate) }),
		users:     map[string]models.User{},
		profiles:  map[string]models.Profile{},
	}
}

func (s *Store) Expenses() storage.Collection[models.Expense]           { return s.expenses }
func (s *Store) Earnings() storage.Collection[models.Earning]           { return s.earnings }
func (s *Store) Odometer() storage.Collection[models.OdometerEntry]     { return s.odometer }
func (s *Store) Credits() storage.Collection[models.CreditEntry]        { return s.credits }
func (s *Store) Recurring() storage.Collection[models.RecurringExpense] { return s.recurring }
func (s *Store) Profiles() storage.ProfileStore                         { return s }

func (s *Store) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return models.Profile{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return models.Profile{}, storage.ErrNotFound
	}
	return p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p models.Profile) (models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return models.Profile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
	return p, nil
}

func (s *Store) CreateUser(ctx context.Context, user models.User, profile models.Profile) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	for _, u := range s.users {
		if u.Email == user.Email {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	s.users[user.ID] = user
	profile.ID = user.ID
	s.profiles[user.ID] = profile
	return user, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = strings.ToLower(email)
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *Store) SetProfileStatus(ctx context.Context, id, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return storage.ErrNotFound
	}
	p.Status = status
	s.profiles[id] = p
	return nil
}

// DeleteUser removes the account, its profile and every owned record.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	_, hasUser := s.users[id]
	_, hasProfile := s.profiles[id]
	delete(s.users, id)
	delete(s.profiles, id)
	s.mu.Unlock()
	if !hasUser && !hasProfile {
		return storage.ErrNotFound
	}
	s.expenses.dropOwner(id)
	s.earnings.dropOwner(id)
	s.odometer.dropOwner(id)
	s.credits.dropOwner(id)
	s.recurring.dropOwner(id)
	return nil
}

func (s *Store) ListDueRecurring(ctx context.Context, asOf models.Date) ([]storage.DueTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.recurring.mu.RLock()
	defer s.recurring.mu.RUnlock()
	var out []storage.DueTemplate
	for _, r := range s.recurring.rows {
		if !r.item.NextDueDate.After(asOf) {
			out = append(out, storage.DueTemplate{OwnerID: r.owner, Template: r.item})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Template.NextDueDate.Before(out[j].Template.NextDueDate) })
	return out, nil
}

var (
	_ storage.Ledger          = (*Store)(nil)
	_ storage.UserStore       = (*Store)(nil)
	_ storage.AdminStore      = (*Store)(nil)
	_ storage.RecurringSource = (*Store)(nil)
)
