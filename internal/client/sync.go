package client

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

// synchronize resolves the profile and then fetches the five collections
// concurrently. Each collection is committed as soon as it resolves, and only
// while gen is still current. Failures are isolated per collection.
func (a *App) synchronize(ctx context.Context, gen uint64, s Session) error {
	defer a.commit(gen, func(st *State) { st.Loading = false })

	profile, err := a.resolveProfile(ctx, s)
	if err != nil {
		if cancelled(ctx, err) {
			return nil
		}
		if ended, endErr := a.endRejected(ctx, gen, s, err); ended {
			return endErr
		}
		a.log.Errorw("profile lookup failed", "user_id", s.UserID, "error", err)
		return fmt.Errorf("resolve profile: %w", err)
	}
	if profile.IsBlocked() {
		return a.terminateBlocked(ctx, gen, profile)
	}
	if !a.commit(gen, func(st *State) {
		st.Profile = &profile
		a.reconcileViewLocked()
	}) {
		return nil
	}

	var (
		g    errgroup.Group
		errs [5]error
	)
	g.Go(func() error { errs[0] = fetchInto(ctx, a, gen, s.UserID, a.expenses); return nil })
	g.Go(func() error { errs[1] = fetchInto(ctx, a, gen, s.UserID, a.earnings); return nil })
	g.Go(func() error { errs[2] = fetchInto(ctx, a, gen, s.UserID, a.odometer); return nil })
	g.Go(func() error { errs[3] = fetchInto(ctx, a, gen, s.UserID, a.credits); return nil })
	g.Go(func() error { errs[4] = fetchInto(ctx, a, gen, s.UserID, a.recurring); return nil })
	_ = g.Wait()

	err = errors.Join(errs[:]...)
	if ended, endErr := a.endRejected(ctx, gen, s, err); ended {
		return endErr
	}
	return err
}

// Refresh re-synchronizes the current session.
func (a *App) Refresh(ctx context.Context) error {
	a.mu.Lock()
	sess := a.state.Session
	a.mu.Unlock()
	if sess == nil {
		return ErrNoSession
	}
	s := *sess
	return a.HandleSession(ctx, &s)
}

func fetchInto[T models.Record](ctx context.Context, a *App, gen uint64, ownerID string, s slot[T]) error {
	a.mu.Lock()
	s.changes.fetches++
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		s.changes.fetches--
		if s.changes.fetches == 0 {
			s.changes.ops = nil
		}
		a.mu.Unlock()
	}()

	items, err := s.coll().ListByOwner(ctx, ownerID)
	if err != nil {
		if cancelled(ctx, err) {
			return nil
		}
		a.log.Errorw("fetch failed", "collection", s.name, "user_id", ownerID, "error", err)
		return fmt.Errorf("fetch %s: %w", s.name, err)
	}
	if items == nil {
		items = []T{}
	}
	if !a.commit(gen, func(st *State) { s.set(st, s.changes.replay(gen, items)) }) {
		a.log.Debugw("stale fetch discarded", "collection", s.name, "generation", gen)
	}
	return nil
}

// cancelled reports whether err stems from a superseded synchronization
// rather than a real failure.
func cancelled(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled)
}

// slot binds one state collection to its remote collection.
type slot[T models.Record] struct {
	name    string
	coll    func() storage.Collection[T]
	get     func(*State) []T
	set     func(*State, []T)
	changes *changeLog[T]
}

// apply runs op on the collection. It must be called with a.mu held, which
// commit does.
func (s slot[T]) apply(st *State, gen uint64, op func([]T) []T) {
	s.set(st, op(s.get(st)))
	s.changes.record(gen, op)
}

// changeLog keeps the local changes made while a fetch of the collection is
// in flight, so the fetched list does not drop them. Guarded by App.mu.
type changeLog[T models.Record] struct {
	fetches int
	ops     []change[T]
}

type change[T models.Record] struct {
	gen uint64
	op  func([]T) []T
}

func (c *changeLog[T]) record(gen uint64, op func([]T) []T) {
	if c.fetches > 0 {
		c.ops = append(c.ops, change[T]{gen: gen, op: op})
	}
}

// replay applies the changes of generation gen to a freshly fetched list.
func (c *changeLog[T]) replay(gen uint64, items []T) []T {
	for _, ch := range c.ops {
		if ch.gen == gen {
			items = ch.op(items)
		}
	}
	return items
}
