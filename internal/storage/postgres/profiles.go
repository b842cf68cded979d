package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

const profileColumns = `id, name, email, role, status`

// GetProfile fetches a profile by user id.
func (s *Store) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1;`
	return scanProfile(s.pool.QueryRow(ctx, query, id))
}

// UpsertProfile creates or updates a profile row.
func (s *Store) UpsertProfile(ctx context.Context, p models.Profile) (models.Profile, error) {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email,
			role = EXCLUDED.role, status = EXCLUDED.status
		RETURNING ` + profileColumns + `;`
	saved, err := scanProfile(s.pool.QueryRow(ctx, query, p.ID, p.Name, p.Email, p.Role, p.Status))
	if err != nil {
		return models.Profile{}, fmt.Errorf("upsert profile: %w", err)
	}
	return saved, nil
}

// ListProfiles returns every profile ordered by name.
func (s *Store) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY name, id;`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Profile, error) {
		return scanProfile(row)
	})
}

// SetProfileStatus blocks or unblocks an account.
func (s *Store) SetProfileStatus(ctx context.Context, id, status string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE profiles SET status = $2 WHERE id = $1;`, id, status)
	if err != nil {
		return fmt.Errorf("set profile status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteUser removes the account and, through cascades, all of its data.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	s.log.Infow("user deleted", "user_id", id)
	return nil
}

func scanProfile(row pgx.Row) (models.Profile, error) {
	var p models.Profile
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Role, &p.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, storage.ErrNotFound
		}
		return models.Profile{}, err
	}
	return p, nil
}
