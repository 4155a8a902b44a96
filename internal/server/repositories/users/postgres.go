// Package users provides the PostgreSQL-backed repository for user
// identities: creation with email uniqueness, lookups, and the session
// token / profile mutations.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"contacthub/internal/common"
	"contacthub/internal/dbx"
	"contacthub/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PostgresRepository implements user storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user. The email uniqueness constraint is the backstop
// behind the service-level pre-check; a violation maps to ErrorConflict.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query := `
		INSERT INTO users (id, name, email, password, subscription, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Email, user.Password, user.Subscription, user.AvatarURL).
		Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// GetByEmail returns the user with the given email or ErrorNotFound.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, name, email, password, subscription, token, avatar_url, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// GetByID returns the user with the given id or ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, name, email, password, subscription, token, avatar_url, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// UpdateToken sets (login) or clears (logout) the single live session token.
// The per-row atomic UPDATE is what makes revocation linearizable with
// concurrent verifications of the same token.
func (r *PostgresRepository) UpdateToken(ctx context.Context, id string, token *string) error {
	query := `UPDATE users SET token = $2, updated_at = now() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// UpdateSubscription changes the subscription tier and returns the updated row.
func (r *PostgresRepository) UpdateSubscription(ctx context.Context, id string, subscription string) (*models.User, error) {
	query := `
		UPDATE users SET subscription = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, name, email, password, subscription, token, avatar_url, created_at, updated_at
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, subscription))
}

// UpdateAvatar stores a new avatar reference and returns the updated row.
func (r *PostgresRepository) UpdateAvatar(ctx context.Context, id string, avatarURL string) (*models.User, error) {
	query := `
		UPDATE users SET avatar_url = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, name, email, password, subscription, token, avatar_url, created_at, updated_at
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, avatarURL))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.Subscription,
		&user.Token, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
