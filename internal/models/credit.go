package models

import "github.com/shopspring/decimal"

// Credit categories.
const (
	CreditLoan      = "LOAN"
	CreditFinancing = "FINANCING"
	CreditCard      = "CARD"
	CreditOther     = "OTHER"
)

// CreditEntry tracks a debt and how much of it has been paid.
type CreditEntry struct {
	ID               string          `json:"id"`
	Description      string          `json:"description"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	PaidAmount       decimal.Decimal `json:"paidAmount"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	DueDate          Date            `json:"dueDate"`
	Category         string          `json:"category"`
}

func (c CreditEntry) RecordID() string  { return c.ID }
func (c CreditEntry) UpsertKey() string { return c.ID }

func (c CreditEntry) Validate() error {
	if err := requireText("id", c.ID); err != nil {
		return err
	}
	if err := requireText("description", c.Description); err != nil {
		return err
	}
	if err := requireNonNegative("totalAmount", c.TotalAmount); err != nil {
		return err
	}
	if err := requireNonNegative("paidAmount", c.PaidAmount); err != nil {
		return err
	}
	if err := requireDate("dueDate", c.DueDate); err != nil {
		return err
	}
	switch c.Category {
	case CreditLoan, CreditFinancing, CreditCard, CreditOther:
		return nil
	}
	return invalidf("unknown credit category %q", c.Category)
}

// Normalize recomputes the remaining balance from total and paid amounts,
// ignoring whatever value the caller supplied.
func (c CreditEntry) Normalize() CreditEntry {
	c.RemainingBalance = decimal.Max(decimal.Zero, c.TotalAmount.Sub(c.PaidAmount))
	return c
}

// Pay adds a payment to the paid amount.
func (c CreditEntry) Pay(amount decimal.Decimal) CreditEntry {
	c.PaidAmount = c.PaidAmount.Add(amount)
	return c.Normalize()
}

// PayInFull marks the whole debt as paid.
func (c CreditEntry) PayInFull() CreditEntry {
	if c.PaidAmount.LessThan(c.TotalAmount) {
		c.PaidAmount = c.TotalAmount
	}
	return c.Normalize()
}
