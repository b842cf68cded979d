package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/fincontrol-be/internal/models"
)

// ErrNotFound indicates a record does not exist or belongs to another owner.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// Collection is a set of records scoped to an owning user id.
type Collection[T models.Record] interface {
	ListByOwner(ctx context.Context, ownerID string) ([]T, error)
	// Upsert creates or replaces the record and returns the stored row.
	Upsert(ctx context.Context, ownerID string, item T) (T, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// ProfileStore persists user profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (models.Profile, error)
	UpsertProfile(ctx context.Context, profile models.Profile) (models.Profile, error)
}

// Ledger groups the six logical collections consumed by the client engine.
type Ledger interface {
	Expenses() Collection[models.Expense]
	Earnings() Collection[models.Earning]
	Odometer() Collection[models.OdometerEntry]
	Credits() Collection[models.CreditEntry]
	Recurring() Collection[models.RecurringExpense]
	Profiles() ProfileStore
}

// UserStore captures credential persistence needed by the auth handlers.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User, profile models.Profile) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// AdminStore captures account management operations.
type AdminStore interface {
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	SetProfileStatus(ctx context.Context, id, status string) error
	DeleteUser(ctx context.Context, id string) error
}

// DueTemplate is a recurring template with its owner.
type DueTemplate struct {
	OwnerID  string
	Template models.RecurringExpense
}

// RecurringSource lists templates due on or before a day across all owners.
type RecurringSource interface {
	ListDueRecurring(ctx context.Context, asOf models.Date) ([]DueTemplate, error)
}
