package models

import "github.com/shopspring/decimal"

// Recurrence frequencies.
const (
	FrequencyWeekly  = "WEEKLY"
	FrequencyMonthly = "MONTHLY"
	FrequencyYearly  = "YEARLY"
)

// RecurringExpense is a template that spawns future expenses. It is not a
// ledger entry itself.
type RecurringExpense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Frequency   string          `json:"frequency"`
	NextDueDate Date            `json:"nextDueDate"`
}

func (r RecurringExpense) RecordID() string  { return r.ID }
func (r RecurringExpense) UpsertKey() string { return r.ID }

func (r RecurringExpense) Validate() error {
	if err := requireText("id", r.ID); err != nil {
		return err
	}
	if err := requireText("description", r.Description); err != nil {
		return err
	}
	if err := requireNonNegative("amount", r.Amount); err != nil {
		return err
	}
	if err := requireText("category", r.Category); err != nil {
		return err
	}
	if err := requireDate("nextDueDate", r.NextDueDate); err != nil {
		return err
	}
	if !ValidFrequency(r.Frequency) {
		return invalidf("unknown frequency %q", r.Frequency)
	}
	return nil
}

// ValidFrequency reports whether f is one of the known frequencies.
func ValidFrequency(f string) bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// AdvanceDate moves d forward by one period of frequency f. Unknown
// frequencies leave d unchanged.
func AdvanceDate(d Date, f string) Date {
	switch f {
	case FrequencyWeekly:
		return d.AddDays(7)
	case FrequencyMonthly:
		return Date{d.Time.AddDate(0, 1, 0)}
	case FrequencyYearly:
		return Date{d.Time.AddDate(1, 0, 0)}
	}
	return d
}
