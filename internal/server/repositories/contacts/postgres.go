// Package contacts provides the PostgreSQL-backed repository for contact
// records with owner-scoped visibility and stable pagination.
package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"contacthub/internal/common"
	"contacthub/internal/dbx"
	"contacthub/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements contact storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new contact for its owner.
func (r *PostgresRepository) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}

	query := `
		INSERT INTO contacts (id, name, email, phone, favorite, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		contact.ID, contact.Name, contact.Email, contact.Phone, contact.Favorite, contact.OwnerID).
		Scan(&contact.CreatedAt, &contact.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return contact, nil
}

// GetByID returns the contact only if it belongs to ownerID, otherwise
// ErrorNotFound. The owner match lives in the WHERE clause so a foreign
// contact is indistinguishable from an absent one.
func (r *PostgresRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Contact, error) {
	query := `
		SELECT id, name, email, phone, favorite, owner_id, created_at, updated_at
		FROM contacts
		WHERE owner_id = $1 AND id = $2
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, ownerID, id))
}

// List returns the owner's contacts ordered by (created_at, id), a stable
// sort key, so page boundaries stay consistent under concurrent inserts.
func (r *PostgresRepository) List(ctx context.Context, ownerID string, filter ListFilter) ([]*models.Contact, error) {
	query := `
		SELECT id, name, email, phone, favorite, owner_id, created_at, updated_at
		FROM contacts
		WHERE owner_id = $1
	`
	args := []any{ownerID}

	if filter.Favorite != nil {
		query += ` AND favorite = $2`
		args = append(args, *filter.Favorite)
	}

	query += fmt.Sprintf(` ORDER BY created_at, id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select contacts: %w", err)
	}
	defer rows.Close()

	var result []*models.Contact
	for rows.Next() {
		var item models.Contact
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Email, &item.Phone, &item.Favorite,
			&item.OwnerID, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Count returns the number of the owner's contacts matching the filter.
func (r *PostgresRepository) Count(ctx context.Context, ownerID string, favorite *bool) (int64, error) {
	query := `SELECT COUNT(*) FROM contacts WHERE owner_id = $1`
	args := []any{ownerID}

	if favorite != nil {
		query += ` AND favorite = $2`
		args = append(args, *favorite)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}

// Update replaces the contact's mutable fields. Owner mismatch yields
// ErrorNotFound.
func (r *PostgresRepository) Update(ctx context.Context, ownerID, id string, patch Patch) (*models.Contact, error) {
	query := `
		UPDATE contacts SET name = $3, email = $4, phone = $5, favorite = $6, updated_at = now()
		WHERE owner_id = $1 AND id = $2
		RETURNING id, name, email, phone, favorite, owner_id, created_at, updated_at
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, ownerID, id, patch.Name, patch.Email, patch.Phone, patch.Favorite))
}

// UpdateFavorite flips the favorite flag. Owner mismatch yields ErrorNotFound.
func (r *PostgresRepository) UpdateFavorite(ctx context.Context, ownerID, id string, favorite bool) (*models.Contact, error) {
	query := `
		UPDATE contacts SET favorite = $3, updated_at = now()
		WHERE owner_id = $1 AND id = $2
		RETURNING id, name, email, phone, favorite, owner_id, created_at, updated_at
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, ownerID, id, favorite))
}

// Delete removes the contact and returns its last state. Owner mismatch
// yields ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) (*models.Contact, error) {
	query := `
		DELETE FROM contacts
		WHERE owner_id = $1 AND id = $2
		RETURNING id, name, email, phone, favorite, owner_id, created_at, updated_at
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, ownerID, id))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Contact, error) {
	contact := &models.Contact{}
	err := row.Scan(
		&contact.ID, &contact.Name, &contact.Email, &contact.Phone, &contact.Favorite,
		&contact.OwnerID, &contact.CreatedAt, &contact.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return contact, nil
}
