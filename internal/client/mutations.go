package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

// Every mutation applies its change locally first, writes it to the backend
// scoped to the session owner, and on failure restores only the record it
// touched and returns the error. Re-submitting the same value is the retry
// path; upserts are keyed so repeats never duplicate.

// begin captures the session owner and generation for a mutation.
func (a *App) begin() (owner string, gen uint64, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.Session == nil {
		return "", 0, ErrNoSession
	}
	return a.state.Session.UserID, a.gen, nil
}

func upsert[T models.Record](ctx context.Context, a *App, s slot[T], item T) (T, error) {
	var zero T
	if err := item.Validate(); err != nil {
		return zero, err
	}
	owner, gen, err := a.begin()
	if err != nil {
		return zero, err
	}

	var (
		prev    T
		existed bool
	)
	key := item.UpsertKey()
	a.commit(gen, func(st *State) {
		prev, existed = models.FindByKey(s.get(st), key)
		s.apply(st, gen, func(items []T) []T { return models.UpsertByKey(items, item) })
	})

	saved, err := s.coll().Upsert(ctx, owner, item)
	if err != nil {
		a.log.Errorw("save failed", "collection", s.name, "id", item.RecordID(), "error", err)
		a.commit(gen, func(st *State) {
			if existed {
				s.apply(st, gen, func(items []T) []T { return models.UpsertByKey(items, prev) })
			} else {
				s.apply(st, gen, func(items []T) []T { return models.RemoveByKey(items, key) })
			}
		})
		return zero, fmt.Errorf("save %s: %w", s.name, err)
	}
	a.commit(gen, func(st *State) {
		s.apply(st, gen, func(items []T) []T { return models.UpsertByKey(items, saved) })
	})
	return saved, nil
}

func remove[T models.Record](ctx context.Context, a *App, s slot[T], id string) error {
	owner, gen, err := a.begin()
	if err != nil {
		return err
	}
	var (
		prev    T
		existed bool
	)
	a.commit(gen, func(st *State) {
		prev, existed = models.FindByID(s.get(st), id)
		s.apply(st, gen, func(items []T) []T { return models.RemoveByID(items, id) })
	})

	err = s.coll().Delete(ctx, owner, id)
	if err == nil || errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	a.log.Errorw("delete failed", "collection", s.name, "id", id, "error", err)
	if existed {
		a.commit(gen, func(st *State) {
			s.apply(st, gen, func(items []T) []T { return models.UpsertByKey(items, prev) })
		})
	}
	return fmt.Errorf("delete %s: %w", s.name, err)
}

func (a *App) lookup(fn func(*State)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(&a.state)
}

// SaveExpense creates or updates an expense and returns to the list view.
// When repeat names a frequency and the expense is new, a recurring template
// due one period after the expense date is created as well.
func (a *App) SaveExpense(ctx context.Context, e models.Expense, repeat string) (models.Expense, error) {
	if repeat != "" && !models.ValidFrequency(repeat) {
		return models.Expense{}, fmt.Errorf("%w: unknown frequency %q", models.ErrInvalid, repeat)
	}
	if e.ID == "" {
		e.ID = a.newID()
	}
	if e.Type == "" {
		e.Type = models.DefaultExpenseType(e.Category)
	}
	var isNew bool
	a.lookup(func(st *State) {
		_, found := models.FindByID(st.Expenses, e.ID)
		isNew = !found
	})

	_, gen, err := a.begin()
	if err != nil {
		return models.Expense{}, err
	}
	saved, err := upsert(ctx, a, a.expenses, e)
	if err != nil {
		return models.Expense{}, err
	}
	a.redirect(gen, ViewList)

	if repeat != "" && isNew {
		tmpl := models.RecurringExpense{
			ID:          a.newID(),
			Description: saved.Description,
			Amount:      saved.Amount,
			Category:    saved.Category,
			Frequency:   repeat,
			NextDueDate: models.AdvanceDate(saved.Date, repeat),
		}
		if _, err := upsert(ctx, a, a.recurring, tmpl); err != nil {
			return saved, err
		}
	}
	return saved, nil
}

// DeleteExpense removes an expense. Templates that spawned it are untouched.
func (a *App) DeleteExpense(ctx context.Context, id string) error {
	return remove(ctx, a, a.expenses, id)
}

// SaveEarning creates or updates an earning.
func (a *App) SaveEarning(ctx context.Context, e models.Earning) (models.Earning, error) {
	if e.ID == "" {
		e.ID = a.newID()
	}
	return upsert(ctx, a, a.earnings, e)
}

// DeleteEarning removes an earning.
func (a *App) DeleteEarning(ctx context.Context, id string) error {
	return remove(ctx, a, a.earnings, id)
}

// UpdateOdometer upserts the reading for o.Date, reusing the id of an
// existing entry for that day. An existing entry keeps its date; moving a
// reading to another day is a delete plus a new reading.
func (a *App) UpdateOdometer(ctx context.Context, o models.OdometerEntry) (models.OdometerEntry, error) {
	var (
		byID, byDay   models.OdometerEntry
		hasID, hasDay bool
	)
	a.lookup(func(st *State) {
		if o.ID != "" {
			byID, hasID = models.FindByID(st.Odometer, o.ID)
		}
		byDay, hasDay = models.FindByKey(st.Odometer, o.UpsertKey())
	})
	switch {
	case hasID && byID.UpsertKey() != o.UpsertKey():
		return models.OdometerEntry{}, fmt.Errorf("%w: odometer entry %s is for %s", models.ErrInvalid, o.ID, byID.Date)
	case hasDay && o.ID != "" && byDay.ID != o.ID:
		return models.OdometerEntry{}, fmt.Errorf("%w: %s already has odometer entry %s", models.ErrInvalid, o.Date, byDay.ID)
	case hasDay:
		o.ID = byDay.ID
	case o.ID == "":
		o.ID = a.newID()
	}
	return upsert(ctx, a, a.odometer, o)
}

// DeleteOdometer removes an odometer entry.
func (a *App) DeleteOdometer(ctx context.Context, id string) error {
	return remove(ctx, a, a.odometer, id)
}

// SaveCredit creates or updates a credit entry. The remaining balance is
// always recomputed.
func (a *App) SaveCredit(ctx context.Context, c models.CreditEntry) (models.CreditEntry, error) {
	if c.ID == "" {
		c.ID = a.newID()
	}
	return upsert(ctx, a, a.credits, c.Normalize())
}

// RegisterPayment adds a partial payment to a credit entry.
func (a *App) RegisterPayment(ctx context.Context, id string, amount decimal.Decimal) (models.CreditEntry, error) {
	if !amount.IsPositive() {
		return models.CreditEntry{}, ErrInvalidPayment
	}
	c, err := a.credit(id)
	if err != nil {
		return models.CreditEntry{}, err
	}
	return upsert(ctx, a, a.credits, c.Pay(amount))
}

// PayInFull marks a credit entry as fully paid.
func (a *App) PayInFull(ctx context.Context, id string) (models.CreditEntry, error) {
	c, err := a.credit(id)
	if err != nil {
		return models.CreditEntry{}, err
	}
	return upsert(ctx, a, a.credits, c.PayInFull())
}

func (a *App) credit(id string) (models.CreditEntry, error) {
	var (
		c  models.CreditEntry
		ok bool
	)
	a.lookup(func(st *State) { c, ok = models.FindByID(st.Credits, id) })
	if !ok {
		return models.CreditEntry{}, fmt.Errorf("credit %s: %w", id, storage.ErrNotFound)
	}
	return c, nil
}

// DeleteCredit removes a credit entry.
func (a *App) DeleteCredit(ctx context.Context, id string) error {
	return remove(ctx, a, a.credits, id)
}

// SaveRecurring creates or updates a recurring template.
func (a *App) SaveRecurring(ctx context.Context, r models.RecurringExpense) (models.RecurringExpense, error) {
	if r.ID == "" {
		r.ID = a.newID()
	}
	return upsert(ctx, a, a.recurring, r)
}

// DeleteRecurring removes a template. Expenses it already spawned remain.
func (a *App) DeleteRecurring(ctx context.Context, id string) error {
	return remove(ctx, a, a.recurring, id)
}

// UpdateProfile renames the current user. Role and status are kept as
// resolved at sign-in.
func (a *App) UpdateProfile(ctx context.Context, name string) (models.Profile, error) {
	if err := requireName(name); err != nil {
		return models.Profile{}, err
	}
	_, gen, err := a.begin()
	if err != nil {
		return models.Profile{}, err
	}
	var prev *models.Profile
	a.lookup(func(st *State) { prev = st.Profile })
	if prev == nil {
		return models.Profile{}, ErrNoSession
	}
	next := *prev
	next.Name = name
	a.commit(gen, func(st *State) { st.Profile = &next })

	saved, err := a.ledger.Profiles().UpsertProfile(ctx, next)
	if err != nil {
		a.log.Errorw("profile update failed", "user_id", next.ID, "error", err)
		a.commit(gen, func(st *State) { st.Profile = prev })
		return models.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	saved = models.ResolveRole(saved, a.adminEmail)
	a.commit(gen, func(st *State) { st.Profile = &saved })
	return saved, nil
}

func requireName(name string) error {
	for _, r := range name {
		if r != ' ' && r != '\t' {
			return nil
		}
	}
	return fmt.Errorf("%w: name is required", models.ErrInvalid)
}
