package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

// Start subscribes to session changes and loads local preferences. The
// returned func unsubscribes.
func (a *App) Start(ctx context.Context) func() {
	if err := a.LoadPreferences(ctx); err != nil {
		a.log.Warnw("load preferences failed", "error", err)
	}
	return a.auth.Subscribe(func(s *Session) {
		if err := a.HandleSession(ctx, s); err != nil {
			a.log.Warnw("session change handled with errors", "error", err)
		}
	})
}

// SignOut ends the backend session and clears local state.
func (a *App) SignOut(ctx context.Context) error {
	err := a.auth.SignOut(ctx)
	if hErr := a.HandleSession(ctx, nil); hErr != nil && err == nil {
		err = hErr
	}
	a.mu.Lock()
	a.state.Notice = ""
	a.mu.Unlock()
	return err
}

// HandleSession processes one session-change event. A nil session clears
// all state; a new session resolves the profile and synchronizes the ledger.
// Any synchronization still in flight is cancelled and its results are
// discarded.
func (a *App) HandleSession(ctx context.Context, s *Session) error {
	a.mu.Lock()
	a.gen++
	gen := a.gen
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if s == nil {
		a.clearLocked()
		a.mu.Unlock()
		a.log.Infow("session cleared", "generation", gen)
		return nil
	}

	syncCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	if a.state.Session == nil || a.state.Session.UserID != s.UserID {
		a.state.Profile = nil
		a.state.Editing = nil
		a.clearDataLocked()
	}
	sess := *s
	a.state.Session = &sess
	a.state.Loading = true
	a.state.Notice = ""
	a.mu.Unlock()

	defer cancel()
	a.log.Infow("session started", "user_id", sess.UserID, "generation", gen)
	return a.synchronize(syncCtx, gen, sess)
}

// resolveProfile loads the session's profile, creating a default one when
// none exists, and applies the admin email override.
func (a *App) resolveProfile(ctx context.Context, s Session) (models.Profile, error) {
	profiles := a.ledger.Profiles()
	p, err := profiles.GetProfile(ctx, s.UserID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		p = models.ResolveRole(models.DefaultProfile(s.UserID, s.Email), a.adminEmail)
		saved, err := profiles.UpsertProfile(ctx, p)
		if err != nil {
			if cancelled(ctx, err) {
				return models.Profile{}, err
			}
			a.log.Warnw("create profile failed; using local default", "user_id", s.UserID, "error", err)
			return p, nil
		}
		p = saved
	case err != nil:
		return models.Profile{}, err
	}
	if p.Email == "" {
		p.Email = s.Email
	}
	return models.ResolveRole(p, a.adminEmail), nil
}

// terminateBlocked signs a blocked account out before any ledger data is
// loaded.
func (a *App) terminateBlocked(ctx context.Context, gen uint64, profile models.Profile) error {
	return a.endSession(ctx, gen, profile.ID, BlockedNotice, fmt.Errorf("%w: %s", ErrAccountBlocked, profile.Email))
}

// endRejected ends the session when err shows the backend refused it: the
// account is blocked or the token is no longer accepted. It reports whether
// err was such a refusal.
func (a *App) endRejected(ctx context.Context, gen uint64, s Session, err error) (bool, error) {
	switch {
	case errors.Is(err, ErrAccountBlocked):
		return true, a.endSession(ctx, gen, s.UserID, BlockedNotice, fmt.Errorf("%w: %s", ErrAccountBlocked, s.Email))
	case errors.Is(err, ErrSessionExpired):
		return true, a.endSession(ctx, gen, s.UserID, ExpiredNotice, ErrSessionExpired)
	}
	return false, nil
}

// endSession clears the state, leaves notice for the user and signs out of
// the backend. A stale gen is ignored.
func (a *App) endSession(ctx context.Context, gen uint64, userID, notice string, cause error) error {
	if !a.commit(gen, func(st *State) {
		a.clearLocked()
		st.Notice = notice
	}) {
		return nil
	}
	a.log.Warnw("session ended by backend", "user_id", userID, "reason", cause)
	if err := a.auth.SignOut(context.WithoutCancel(ctx)); err != nil {
		a.log.Errorw("sign out failed", "user_id", userID, "error", err)
	}
	return cause
}
