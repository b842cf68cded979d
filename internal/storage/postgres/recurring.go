package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

// ListDueRecurring returns every template whose next due date is on or
// before asOf, across all owners.
func (s *Store) ListDueRecurring(ctx context.Context, asOf models.Date) ([]storage.DueTemplate, error) {
	query := `SELECT user_id, ` + strings.Join(recurringColumns, ", ") + `
		FROM recurring_expenses WHERE next_due_date <= $1 ORDER BY next_due_date, id;`
	rows, err := s.pool.Query(ctx, query, asOf.Time)
	if err != nil {
		return nil, fmt.Errorf("list due recurring: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.DueTemplate, error) {
		var owner string
		var due storage.DueTemplate
		tmpl, err := scanRecurring(prefixedRow{row: row, first: &owner})
		if err != nil {
			return due, err
		}
		due.OwnerID = owner
		due.Template = tmpl
		return due, nil
	})
}

// prefixedRow scans a leading column into first before handing the rest to
// the wrapped scanner's destinations.
type prefixedRow struct {
	row   pgx.Row
	first any
}

func (p prefixedRow) Scan(dest ...any) error {
	return p.row.Scan(append([]any{p.first}, dest...)...)
}
