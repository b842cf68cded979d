package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

// table implements storage.Collection for one owner-scoped table. columns
// starts with the primary key and excludes user_id.
type table[T models.Record] struct {
	pool     *pgxpool.Pool
	name     string
	columns  []string
	conflict string
	orderBy  string
	scan     func(pgx.Row) (T, error)
	values   func(T) []any
}

func (t *table[T]) selectList() string {
	return strings.Join(t.columns, ", ")
}

func (t *table[T]) ListByOwner(ctx context.Context, ownerID string) ([]T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1 ORDER BY %s;`, t.selectList(), t.name, t.orderBy)
	rows, err := t.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		return t.scan(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", t.name, err)
	}
	return items, nil
}

// Upsert inserts or updates by the table's conflict key. Rows owned by
// another user are never touched and surface as storage.ErrNotFound.
func (t *table[T]) Upsert(ctx context.Context, ownerID string, item T) (T, error) {
	var zero T
	placeholders := make([]string, 0, len(t.columns)+1)
	for i := 0; i <= len(t.columns); i++ {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
	}
	updates := make([]string, 0, len(t.columns)-1)
	for _, col := range t.columns[1:] {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (user_id, %[2]s)
		VALUES (%[3]s)
		ON CONFLICT (%[4]s) DO UPDATE SET %[5]s
		WHERE %[1]s.user_id = EXCLUDED.user_id
		RETURNING %[2]s;`,
		t.name, t.selectList(), strings.Join(placeholders, ", "), t.conflict, strings.Join(updates, ", "))

	args := append([]any{ownerID}, t.values(item)...)
	saved, err := t.scan(t.pool.QueryRow(ctx, query, args...))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return zero, storage.ErrNotFound
		case isUniqueViolation(err):
			return zero, storage.ErrAlreadyExists
		}
		return zero, fmt.Errorf("upsert %s: %w", t.name, err)
	}
	return saved, nil
}

func (t *table[T]) Delete(ctx context.Context, ownerID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2;`, t.name)
	tag, err := t.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.name, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
