package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid record")

// Record is implemented by every user-owned ledger type.
type Record interface {
	// RecordID is the primary key used for deletes.
	RecordID() string
	// UpsertKey identifies the record for local upserts. It is the id for
	// every type except odometer entries, which are unique per day.
	UpsertKey() string
	Validate() error
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalidf("%s is required", field)
	}
	return nil
}

func requireNonNegative(field string, value decimal.Decimal) error {
	if value.IsNegative() {
		return invalidf("%s must not be negative", field)
	}
	return nil
}

func requireDate(field string, value Date) error {
	if value.Time.IsZero() {
		return invalidf("%s is required", field)
	}
	return nil
}

// UpsertByKey replaces the element sharing item's upsert key, or appends item.
// It returns a new slice and never mutates items.
func UpsertByKey[T Record](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	for _, existing := range items {
		if existing.UpsertKey() != item.UpsertKey() {
			out = append(out, existing)
		}
	}
	return append(out, item)
}

// RemoveByID drops the element with the given id.
func RemoveByID[T Record](items []T, id string) []T {
	out := make([]T, 0, len(items))
	for _, existing := range items {
		if existing.RecordID() != id {
			out = append(out, existing)
		}
	}
	return out
}

// FindByKey returns the element with the given upsert key.
func FindByKey[T Record](items []T, key string) (T, bool) {
	for _, existing := range items {
		if existing.UpsertKey() == key {
			return existing, true
		}
	}
	var zero T
	return zero, false
}

// FindByID returns the element with the given id.
func FindByID[T Record](items []T, id string) (T, bool) {
	for _, existing := range items {
		if existing.RecordID() == id {
			return existing, true
		}
	}
	var zero T
	return zero, false
}

// RemoveByKey drops the element with the given upsert key.
func RemoveByKey[T Record](items []T, key string) []T {
	out := make([]T, 0, len(items))
	for _, existing := range items {
		if existing.UpsertKey() != key {
			out = append(out, existing)
		}
	}
	return out
}
