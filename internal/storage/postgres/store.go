package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

// Ensure Store satisfies the storage interfaces at compile time.
var (
	_ storage.Ledger          = (*Store)(nil)
	_ storage.UserStore       = (*Store)(nil)
	_ storage.AdminStore      = (*Store)(nil)
	_ storage.RecurringSource = (*Store)(nil)
)

// Store provides Postgres-backed persistence for users and their ledgers.
type Store struct {
	pool *pgxpool.Pool
	log  *zap.SugaredLogger

	expenses  *table[models.Expense]
	earnings  *table[models.Earning]
	odometer  *table[models.OdometerEntry]
	credits   *table[models.CreditEntry]
	recurring *table[models.RecurringExpense]
}

// NewStore connects to Postgres and runs migrations.
func NewStore(ctx context.Context, databaseURL string, log *zap.SugaredLogger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.ConnConfig.RuntimeParams["application_name"] = "fincontrol"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := newStore(pool, log)
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	s.log.Infow("database ready", "tables", len(migrations))
	return s, nil
}

func newStore(pool *pgxpool.Pool, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{
		pool:      pool,
		log:       log,
		expenses:  expenseTable(pool),
		earnings:  earningTable(pool),
		odometer:  odometerTable(pool),
		credits:   creditTable(pool),
		recurring: recurringTable(pool),
	}
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'USER',
		status TEXT NOT NULL DEFAULT 'ACTIVE'
	);`,
	`CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		description TEXT NOT NULL,
		amount NUMERIC(14,2) NOT NULL CHECK (amount >= 0),
		date DATE NOT NULL,
		category TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'PERSONAL',
		km INTEGER,
		observations TEXT NOT NULL DEFAULT '',
		is_recurring_instance BOOLEAN NOT NULL DEFAULT FALSE
	);`,
	`CREATE INDEX IF NOT EXISTS expenses_user_idx ON expenses (user_id, date);`,
	`CREATE TABLE IF NOT EXISTS earnings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		description TEXT NOT NULL,
		amount NUMERIC(14,2) NOT NULL CHECK (amount >= 0),
		date DATE NOT NULL,
		category TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS earnings_user_idx ON earnings (user_id, date);`,
	`CREATE TABLE IF NOT EXISTS daily_km (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date DATE NOT NULL,
		start_km INTEGER NOT NULL DEFAULT 0,
		end_km INTEGER NOT NULL DEFAULT 0,
		UNIQUE (user_id, date)
	);`,
	`CREATE TABLE IF NOT EXISTS credits (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		description TEXT NOT NULL,
		total_amount NUMERIC(14,2) NOT NULL,
		paid_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		remaining_balance NUMERIC(14,2) NOT NULL,
		due_date DATE NOT NULL,
		category TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS credits_user_idx ON credits (user_id);`,
	`CREATE TABLE IF NOT EXISTS recurring_expenses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		description TEXT NOT NULL,
		amount NUMERIC(14,2) NOT NULL,
		category TEXT NOT NULL,
		frequency TEXT NOT NULL,
		next_due_date DATE NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS recurring_due_idx ON recurring_expenses (next_due_date);`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

func (s *Store) Expenses() storage.Collection[models.Expense]           { return s.expenses }
func (s *Store) Earnings() storage.Collection[models.Earning]           { return s.earnings }
func (s *Store) Odometer() storage.Collection[models.OdometerEntry]     { return s.odometer }
func (s *Store) Credits() storage.Collection[models.CreditEntry]        { return s.credits }
func (s *Store) Recurring() storage.Collection[models.RecurringExpense] { return s.recurring }
func (s *Store) Profiles() storage.ProfileStore                         { return s }

// CreateUser inserts the credential row and its profile in one transaction.
func (s *Store) CreateUser(ctx context.Context, user models.User, profile models.Profile) (models.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertUser = `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, created_at;`
	created, err := scanUser(tx.QueryRow(ctx, insertUser, user.ID, strings.ToLower(user.Email), user.PasswordHash))
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}

	const insertProfile = `
		INSERT INTO profiles (id, name, email, role, status)
		VALUES ($1, $2, $3, $4, $5);`
	if _, err := tx.Exec(ctx, insertProfile, created.ID, profile.Name, created.Email, profile.Role, profile.Status); err != nil {
		return models.User{}, fmt.Errorf("insert profile: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return models.User{}, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

// FindByEmail fetches a user by email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT id, email, password_hash, created_at FROM users WHERE email = $1;`
	return scanUser(s.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
