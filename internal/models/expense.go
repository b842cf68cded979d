package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Expense type flags.
const (
	ExpenseWork     = "WORK"
	ExpensePersonal = "PERSONAL"
)

// Expense is a single outgoing ledger entry.
type Expense struct {
	ID                  string          `json:"id"`
	Description         string          `json:"description"`
	Amount              decimal.Decimal `json:"amount"`
	Date                Date            `json:"date"`
	Category            string          `json:"category"`
	Type                string          `json:"type"`
	Km                  *int            `json:"km,omitempty"`
	Observations        string          `json:"observations,omitempty"`
	IsRecurringInstance bool            `json:"isRecurringInstance,omitempty"`
}

func (e Expense) RecordID() string  { return e.ID }
func (e Expense) UpsertKey() string { return e.ID }

// Validate checks the fields required to persist the expense.
func (e Expense) Validate() error {
	if err := requireText("id", e.ID); err != nil {
		return err
	}
	if err := requireText("description", e.Description); err != nil {
		return err
	}
	if err := requireNonNegative("amount", e.Amount); err != nil {
		return err
	}
	if err := requireDate("date", e.Date); err != nil {
		return err
	}
	if err := requireText("category", e.Category); err != nil {
		return err
	}
	if e.Type != ExpenseWork && e.Type != ExpensePersonal {
		return invalidf("type must be %s or %s", ExpenseWork, ExpensePersonal)
	}
	if e.Km != nil && *e.Km < 0 {
		return invalidf("km must not be negative")
	}
	return nil
}

// DefaultExpenseType derives the work/personal flag from a category name.
func DefaultExpenseType(category string) string {
	if strings.Contains(category, "(Work)") {
		return ExpenseWork
	}
	switch category {
	case CategoryFuel, CategoryMaintenance, CategoryVehicleRental:
		return ExpenseWork
	}
	return ExpensePersonal
}
