package models

import "github.com/shopspring/decimal"

// Earning is a single incoming ledger entry.
type Earning struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        Date            `json:"date"`
	Category    string          `json:"category"`
}

func (e Earning) RecordID() string  { return e.ID }
func (e Earning) UpsertKey() string { return e.ID }

func (e Earning) Validate() error {
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
	return requireText("category", e.Category)
}
