package client

import (
	"context"

	"github.com/hongminglow/fincontrol-be/internal/advisor"
	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/report"
)

// Advice asks the advisor about the loaded expenses.
func (a *App) Advice(ctx context.Context) string {
	if a.advisor == nil {
		return advisor.FailureMessage
	}
	return a.advisor.Advise(ctx, a.Snapshot().Expenses)
}

// Dashboard summarizes the loaded ledger.
func (a *App) Dashboard() report.Dashboard {
	s := a.Snapshot()
	return report.BuildDashboard(s.Expenses, s.Earnings, s.Odometer, s.Credits)
}

// DailyFlow summarizes the given day.
func (a *App) DailyFlow(day models.Date) report.DailyFlow {
	s := a.Snapshot()
	return report.BuildDailyFlow(day, s.Expenses, s.Earnings, s.Odometer)
}

// Entries lists expenses and earnings together, newest first.
func (a *App) Entries() []models.LedgerEntry {
	s := a.Snapshot()
	return models.MergeEntries(s.Expenses, s.Earnings)
}
