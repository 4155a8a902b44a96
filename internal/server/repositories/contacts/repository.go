package contacts

import (
	"context"

	"contacthub/internal/server/models"
)

// ListFilter narrows and pages a contact listing. Favorite is an optional
// equality match; Limit/Offset implement page-based pagination.
type ListFilter struct {
	Favorite *bool
	Limit    int
	Offset   int
}

// Patch carries the replaceable contact fields for a full update.
type Patch struct {
	Name     string
	Email    string
	Phone    string
	Favorite bool
}

// Repository is the persistence contract for contacts. Every id-addressed
// operation also takes the owner id and matches on both, so a contact owned
// by someone else behaves exactly like a missing one.
type Repository interface {
	Create(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.Contact, error)
	List(ctx context.Context, ownerID string, filter ListFilter) ([]*models.Contact, error)
	Count(ctx context.Context, ownerID string, favorite *bool) (int64, error)
	Update(ctx context.Context, ownerID, id string, patch Patch) (*models.Contact, error)
	UpdateFavorite(ctx context.Context, ownerID, id string, favorite bool) (*models.Contact, error)
	Delete(ctx context.Context, ownerID, id string) (*models.Contact, error)
}
