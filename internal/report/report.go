// Package report derives the dashboard and daily-flow figures from ledger
// collections.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/fincontrol-be/internal/models"
)

// CategoryTotal is the spend of one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// Dashboard holds the accumulated balance figures.
type Dashboard struct {
	TotalEarnings   decimal.Decimal `json:"totalEarnings"`
	TotalExpenses   decimal.Decimal `json:"totalExpenses"`
	Balance         decimal.Decimal `json:"balance"`
	FuelExpenses    decimal.Decimal `json:"fuelExpenses"`
	WorkExpenses    decimal.Decimal `json:"workExpenses"`
	TotalKm         int             `json:"totalKm"`
	EarningsPerKm   decimal.Decimal `json:"earningsPerKm"`
	OutstandingDebt decimal.Decimal `json:"outstandingDebt"`
	ByCategory      []CategoryTotal `json:"byCategory"`
}

// DailyFlow holds the figures of a single day.
type DailyFlow struct {
	Date          models.Date           `json:"date"`
	Earnings      []models.Earning      `json:"earnings"`
	Expenses      []models.Expense      `json:"expenses"`
	TotalEarnings decimal.Decimal       `json:"totalEarnings"`
	TotalExpenses decimal.Decimal       `json:"totalExpenses"`
	Net           decimal.Decimal       `json:"net"`
	Odometer      *models.OdometerEntry `json:"odometer,omitempty"`
	Km            int                   `json:"km"`
	EarningsPerKm decimal.Decimal       `json:"earningsPerKm"`
}

// BuildDashboard totals the whole ledger. ByCategory is sorted by descending
// spend, then name.
func BuildDashboard(expenses []models.Expense, earnings []models.Earning, odometer []models.OdometerEntry, credits []models.CreditEntry) Dashboard {
	d := Dashboard{
		TotalEarnings:   SumEarnings(earnings),
		TotalExpenses:   SumExpenses(expenses),
		OutstandingDebt: TotalDebt(credits),
	}
	d.Balance = d.TotalEarnings.Sub(d.TotalExpenses)

	byCategory := map[string]decimal.Decimal{}
	for _, e := range expenses {
		byCategory[e.Category] = byCategory[e.Category].Add(e.Amount)
		if e.Category == models.CategoryFuel {
			d.FuelExpenses = d.FuelExpenses.Add(e.Amount)
		}
		if e.Type == models.ExpenseWork {
			d.WorkExpenses = d.WorkExpenses.Add(e.Amount)
		}
	}
	for name, total := range byCategory {
		d.ByCategory = append(d.ByCategory, CategoryTotal{Category: name, Total: total})
	}
	sort.Slice(d.ByCategory, func(i, j int) bool {
		if !d.ByCategory[i].Total.Equal(d.ByCategory[j].Total) {
			return d.ByCategory[i].Total.GreaterThan(d.ByCategory[j].Total)
		}
		return d.ByCategory[i].Category < d.ByCategory[j].Category
	})

	for _, o := range odometer {
		d.TotalKm += o.Distance()
	}
	d.EarningsPerKm = perKm(d.TotalEarnings, d.TotalKm)
	return d
}

// BuildDailyFlow filters the ledger to one day.
func BuildDailyFlow(day models.Date, expenses []models.Expense, earnings []models.Earning, odometer []models.OdometerEntry) DailyFlow {
	f := DailyFlow{Date: day, Earnings: []models.Earning{}, Expenses: []models.Expense{}}
	for _, e := range earnings {
		if e.Date.Equal(day) {
			f.Earnings = append(f.Earnings, e)
		}
	}
	for _, e := range expenses {
		if e.Date.Equal(day) {
			f.Expenses = append(f.Expenses, e)
		}
	}
	f.TotalEarnings = SumEarnings(f.Earnings)
	f.TotalExpenses = SumExpenses(f.Expenses)
	f.Net = f.TotalEarnings.Sub(f.TotalExpenses)
	if o, ok := models.FindByKey(odometer, day.String()); ok {
		f.Odometer = &o
		f.Km = o.Distance()
	}
	f.EarningsPerKm = perKm(f.TotalEarnings, f.Km)
	return f
}

// SumExpenses adds up expense amounts.
func SumExpenses(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// SumEarnings adds up earning amounts.
func SumEarnings(earnings []models.Earning) decimal.Decimal {
	total := decimal.Zero
	for _, e := range earnings {
		total = total.Add(e.Amount)
	}
	return total
}

// TotalDebt adds up the remaining balances.
func TotalDebt(credits []models.CreditEntry) decimal.Decimal {
	total := decimal.Zero
	for _, c := range credits {
		total = total.Add(c.Normalize().RemainingBalance)
	}
	return total
}

func perKm(amount decimal.Decimal, km int) decimal.Decimal {
	if km <= 0 {
		return decimal.Zero
	}
	return amount.DivRound(decimal.NewFromInt(int64(km)), 2)
}
