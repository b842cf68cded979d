package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Entry kinds.
const (
	KindExpense = "EXPENSE"
	KindEarning = "EARNING"
)

// LedgerEntry is a tagged view over an expense or an earning. Kind is set by
// the constructor and is the only way callers tell the two apart.
type LedgerEntry struct {
	Kind        string          `json:"kind"`
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        Date            `json:"date"`
	Category    string          `json:"category"`
	Expense     *Expense        `json:"expense,omitempty"`
	Earning     *Earning        `json:"earning,omitempty"`
}

// ExpenseEntry wraps an expense.
func ExpenseEntry(e Expense) LedgerEntry {
	return LedgerEntry{
		Kind: KindExpense, ID: e.ID, Description: e.Description,
		Amount: e.Amount, Date: e.Date, Category: e.Category, Expense: &e,
	}
}

// EarningEntry wraps an earning.
func EarningEntry(e Earning) LedgerEntry {
	return LedgerEntry{
		Kind: KindEarning, ID: e.ID, Description: e.Description,
		Amount: e.Amount, Date: e.Date, Category: e.Category, Earning: &e,
	}
}

// SignedAmount is positive for earnings and negative for expenses.
func (l LedgerEntry) SignedAmount() decimal.Decimal {
	if l.Kind == KindExpense {
		return l.Amount.Neg()
	}
	return l.Amount
}

// MergeEntries returns expenses and earnings as one list, newest first.
func MergeEntries(expenses []Expense, earnings []Earning) []LedgerEntry {
	out := make([]LedgerEntry, 0, len(expenses)+len(earnings))
	for _, e := range expenses {
		out = append(out, ExpenseEntry(e))
	}
	for _, e := range earnings {
		out = append(out, EarningEntry(e))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
