package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hongminglow/fincontrol-be/internal/client"
	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/models/dto"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

// resource is one owner-scoped collection. The server derives the owner
// from the token, so ownerID is only used to refuse a mismatched session.
type resource[T models.Record] struct {
	c    *Client
	path string
}

func (r resource[T]) ListByOwner(ctx context.Context, ownerID string) ([]T, error) {
	if err := r.c.checkOwner(ownerID); err != nil {
		return nil, err
	}
	var out []T
	if err := r.c.do(ctx, http.MethodGet, r.path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r resource[T]) Upsert(ctx context.Context, ownerID string, item T) (T, error) {
	var out T
	if err := r.c.checkOwner(ownerID); err != nil {
		return out, err
	}
	err := r.c.do(ctx, http.MethodPut, r.path, item, &out)
	return out, err
}

func (r resource[T]) Delete(ctx context.Context, ownerID, id string) error {
	if err := r.c.checkOwner(ownerID); err != nil {
		return err
	}
	return r.c.do(ctx, http.MethodDelete, r.path+"/"+url.PathEscape(id), nil, nil)
}

func (c *Client) checkOwner(ownerID string) error {
	s, ok := c.Session()
	if !ok {
		return ErrUnauthorized
	}
	if s.UserID != ownerID {
		return ErrForbidden
	}
	return nil
}

func (c *Client) Expenses() storage.Collection[models.Expense] {
	return resource[models.Expense]{c: c, path: "/api/expenses"}
}

func (c *Client) Earnings() storage.Collection[models.Earning] {
	return resource[models.Earning]{c: c, path: "/api/earnings"}
}

func (c *Client) Odometer() storage.Collection[models.OdometerEntry] {
	return resource[models.OdometerEntry]{c: c, path: "/api/odometer"}
}

func (c *Client) Credits() storage.Collection[models.CreditEntry] {
	return resource[models.CreditEntry]{c: c, path: "/api/credits"}
}

func (c *Client) Recurring() storage.Collection[models.RecurringExpense] {
	return resource[models.RecurringExpense]{c: c, path: "/api/recurring"}
}

func (c *Client) Profiles() storage.ProfileStore { return profiles{c} }

type profiles struct{ c *Client }

// GetProfile returns the session owner's profile.
func (p profiles) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	if err := p.c.checkOwner(id); err != nil {
		return models.Profile{}, err
	}
	var out models.Profile
	err := p.c.do(ctx, http.MethodGet, "/api/profile", nil, &out)
	return out, err
}

func (p profiles) UpsertProfile(ctx context.Context, profile models.Profile) (models.Profile, error) {
	if err := p.c.checkOwner(profile.ID); err != nil {
		return models.Profile{}, err
	}
	var out models.Profile
	err := p.c.do(ctx, http.MethodPut, "/api/profile", profile, &out)
	return out, err
}

func (c *Client) ListUsers(ctx context.Context) ([]models.Profile, error) {
	var out []models.Profile
	err := c.do(ctx, http.MethodGet, "/api/admin/users", nil, &out)
	return out, err
}

func (c *Client) CreateUser(ctx context.Context, name, email, password string) (models.Profile, error) {
	var out models.Profile
	err := c.do(ctx, http.MethodPost, "/api/admin/users", dto.RegisterRequest{Name: name, Email: email, Password: password}, &out)
	return out, err
}

func (c *Client) SetUserStatus(ctx context.Context, id, status string) error {
	return c.do(ctx, http.MethodPatch, "/api/admin/users/"+url.PathEscape(id)+"/status", dto.StatusRequest{Status: status}, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/users/"+url.PathEscape(id), nil, nil)
}

var (
	_ storage.Ledger      = (*Client)(nil)
	_ client.AdminBackend = (*Client)(nil)
)
