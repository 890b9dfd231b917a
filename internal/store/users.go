// Package store holds the persistence layer: user accounts in Postgres,
// the summary cache in Redis and analysis history in Elasticsearch.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"cost-optimizer/internal/common/database"
	stderrors "cost-optimizer/internal/common/errors"
	"cost-optimizer/internal/models"
)

// Postgres unique_violation error code.
const pqUniqueViolation = "23505"

const usersSchema = `
	CREATE TABLE IF NOT EXISTS users (
		id              TEXT PRIMARY KEY,
		email           TEXT NOT NULL UNIQUE,
		full_name       TEXT NOT NULL DEFAULT '',
		hashed_password TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// UserStore persists user accounts.
type UserStore struct {
	db *database.PostgresClient
}

func NewUserStore(db *database.PostgresClient) *UserStore {
	return &UserStore{db: db}
}

// EnsureSchema creates the users table when it does not exist yet.
func (s *UserStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, usersSchema); err != nil {
		return stderrors.NewDatabaseError(err)
	}
	return nil
}

// Create inserts a new user. A duplicate email maps to
// EMAIL_ALREADY_REGISTERED.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, full_name, hashed_password, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.Exec(ctx, query,
		user.ID, user.Email, user.FullName, user.HashedPassword, user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return stderrors.NewEmailAlreadyRegisteredError(user.Email)
		}
		return stderrors.NewDatabaseError(err)
	}
	return nil
}

// ByEmail fetches a user by email. A missing user maps to
// USER_NOT_FOUND.
func (s *UserStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, full_name, hashed_password, created_at
		FROM users
		WHERE email = $1`

	var user models.User
	err := s.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.FullName, &user.HashedPassword, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, stderrors.NewUserNotFoundError(email)
	}
	if err != nil {
		return nil, stderrors.NewDatabaseError(err)
	}
	return &user, nil
}

// ByID fetches a user by ID.
func (s *UserStore) ByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, full_name, hashed_password, created_at
		FROM users
		WHERE id = $1`

	var user models.User
	err := s.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.FullName, &user.HashedPassword, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, stderrors.NewUserNotFoundError(id)
	}
	if err != nil {
		return nil, stderrors.NewDatabaseError(err)
	}
	return &user, nil
}
