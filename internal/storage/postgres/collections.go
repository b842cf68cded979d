package postgres

import (
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/fincontrol-be/internal/models"
)

func expenseTable(pool *pgxpool.Pool) *table[models.Expense] {
	return &table[models.Expense]{
		pool:     pool,
		name:     "expenses",
		columns:  []string{"id", "description", "amount", "date", "category", "type", "km", "observations", "is_recurring_instance"},
		conflict: "id",
		orderBy:  "date, id",
		scan: func(row pgx.Row) (models.Expense, error) {
			var e models.Expense
			var day time.Time
			err := row.Scan(&e.ID, &e.Description, &e.Amount, &day, &e.Category, &e.Type, &e.Km, &e.Observations, &e.IsRecurringInstance)
			e.Date = models.DateOf(day)
			return e, err
		},
		values: func(e models.Expense) []any {
			return []any{e.ID, e.Description, e.Amount, e.Date.Time, e.Category, e.Type, e.Km, e.Observations, e.IsRecurringInstance}
		},
	}
}

func earningTable(pool *pgxpool.Pool) *table[models.Earning] {
	return &table[models.Earning]{
		pool:     pool,
		name:     "earnings",
		columns:  []string{"id", "description", "amount", "date", "category"},
		conflict: "id",
		orderBy:  "date, id",
		scan: func(row pgx.Row) (models.Earning, error) {
			var e models.Earning
			var day time.Time
			err := row.Scan(&e.ID, &e.Description, &e.Amount, &day, &e.Category)
			e.Date = models.DateOf(day)
			return e, err
		},
		values: func(e models.Earning) []any {
			return []any{e.ID, e.Description, e.Amount, e.Date.Time, e.Category}
		},
	}
}

// The odometer table upserts by day so a second reading for the same date
// updates the existing row and keeps its id.
func odometerTable(pool *pgxpool.Pool) *table[models.OdometerEntry] {
	return &table[models.OdometerEntry]{
		pool:     pool,
		name:     "daily_km",
		columns:  []string{"id", "date", "start_km", "end_km"},
		conflict: "user_id, date",
		orderBy:  "date",
		scan: func(row pgx.Row) (models.OdometerEntry, error) {
			var o models.OdometerEntry
			var day time.Time
			err := row.Scan(&o.ID, &day, &o.StartKm, &o.EndKm)
			o.Date = models.DateOf(day)
			return o, err
		},
		values: func(o models.OdometerEntry) []any {
			return []any{o.ID, o.Date.Time, o.StartKm, o.EndKm}
		},
	}
}

func creditTable(pool *pgxpool.Pool) *table[models.CreditEntry] {
	return &table[models.CreditEntry]{
		pool:     pool,
		name:     "credits",
		columns:  []string{"id", "description", "total_amount", "paid_amount", "remaining_balance", "due_date", "category"},
		conflict: "id",
		orderBy:  "due_date, id",
		scan: func(row pgx.Row) (models.CreditEntry, error) {
			var c models.CreditEntry
			var day time.Time
			err := row.Scan(&c.ID, &c.Description, &c.TotalAmount, &c.PaidAmount, &c.RemainingBalance, &day, &c.Category)
			c.DueDate = models.DateOf(day)
			return c, err
		},
		values: func(c models.CreditEntry) []any {
			c = c.Normalize()
			return []any{c.ID, c.Description, c.TotalAmount, c.PaidAmount, c.RemainingBalance, c.DueDate.Time, c.Category}
		},
	}
}

func recurringTable(pool *pgxpool.Pool) *table[models.RecurringExpense] {
	return &table[models.RecurringExpense]{
		pool:     pool,
		name:     "recurring_expenses",
		columns:  recurringColumns,
		conflict: "id",
		orderBy:  "next_due_date, id",
		scan:     scanRecurring,
		values: func(r models.RecurringExpense) []any {
			return []any{r.ID, r.Description, r.Amount, r.Category, r.Frequency, r.NextDueDate.Time}
		},
	}
}

var recurringColumns = []string{"id", "description", "amount", "category", "frequency", "next_due_date"}

func scanRecurring(row pgx.Row) (models.RecurringExpense, error) {
	var r models.RecurringExpense
	var day time.Time
	err := row.Scan(&r.ID, &r.Description, &r.Amount, &r.Category, &r.Frequency, &day)
	r.NextDueDate = models.DateOf(day)
	return r, err
}
