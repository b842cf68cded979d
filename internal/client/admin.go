package client

import (
	"context"

	"github.com/hongminglow/fincontrol-be/internal/models"
)

// AdminBackend manages accounts on behalf of an admin session.
type AdminBackend interface {
	ListUsers(ctx context.Context) ([]models.Profile, error)
	CreateUser(ctx context.Context, name, email, password string) (models.Profile, error)
	SetUserStatus(ctx context.Context, id, status string) error
	DeleteUser(ctx context.Context, id string) error
}

func (a *App) requireAdmin() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.Session == nil {
		return ErrNoSession
	}
	if !a.isAdminLocked() || a.admin == nil {
		return ErrForbidden
	}
	return nil
}

// AdminUsers lists every account.
func (a *App) AdminUsers(ctx context.Context) ([]models.Profile, error) {
	if err := a.requireAdmin(); err != nil {
		return nil, err
	}
	return a.admin.ListUsers(ctx)
}

// AdminCreateUser creates an account with the user role.
func (a *App) AdminCreateUser(ctx context.Context, name, email, password string) (models.Profile, error) {
	if err := a.requireAdmin(); err != nil {
		return models.Profile{}, err
	}
	return a.admin.CreateUser(ctx, name, email, password)
}

// AdminSetStatus blocks or unblocks an account.
func (a *App) AdminSetStatus(ctx context.Context, id, status string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	return a.admin.SetUserStatus(ctx, id, status)
}

// AdminDeleteUser deletes an account and its data.
func (a *App) AdminDeleteUser(ctx context.Context, id string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	return a.admin.DeleteUser(ctx, id)
}
