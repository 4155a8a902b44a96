package services

import (
	"context"
	"database/sql"
	"errors"

	"contacthub/internal/common"
	"contacthub/internal/server/config"
	"contacthub/internal/server/models"
	"contacthub/internal/server/repositories/contacts"
	"contacthub/internal/server/repositories/repomanager"
)

// DefaultPageSize is used when a listing request does not specify a limit.
const DefaultPageSize = 10

// ContactService implements owner-scoped contact management. The owner id
// always comes from the authenticated caller, never from request input, so
// no operation can reach another user's contacts.
type ContactService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewContactService constructs a ContactService.
func NewContactService(db *sql.DB, m repomanager.RepositoryManager, _ *config.Config) *ContactService {
	return &ContactService{db: db, repomanager: m}
}

// List returns one page of the owner's contacts plus the total match count.
// page is 1-based; limit falls back to DefaultPageSize.
func (s *ContactService) List(ctx context.Context, ownerID string, favorite *bool, page, limit int) ([]*models.Contact, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}

	repo := s.repomanager.Contacts(s.db)

	items, err := repo.List(ctx, ownerID, contacts.ListFilter{
		Favorite: favorite,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	})
	if err != nil {
		return nil, 0, common.ErrorInternal
	}

	total, err := repo.Count(ctx, ownerID, favorite)
	if err != nil {
		return nil, 0, common.ErrorInternal
	}

	return items, total, nil
}

// Get returns the owner's contact by id.
func (s *ContactService) Get(ctx context.Context, ownerID, id string) (*models.Contact, error) {
	contact, err := s.repomanager.Contacts(s.db).GetByID(ctx, ownerID, id)
	return contact, mapContactErr(err)
}

// Create adds a contact owned by the caller.
func (s *ContactService) Create(ctx context.Context, ownerID string, fields contacts.Patch) (*models.Contact, error) {
	contact := &models.Contact{
		Name:     fields.Name,
		Email:    fields.Email,
		Phone:    fields.Phone,
		Favorite: fields.Favorite,
		OwnerID:  ownerID,
	}

	created, err := s.repomanager.Contacts(s.db).Create(ctx, contact)
	if err != nil {
		return nil, common.ErrorUnprocessable
	}
	return created, nil
}

// Update replaces the contact's fields if the caller owns it.
func (s *ContactService) Update(ctx context.Context, ownerID, id string, patch contacts.Patch) (*models.Contact, error) {
	contact, err := s.repomanager.Contacts(s.db).Update(ctx, ownerID, id, patch)
	return contact, mapContactErr(err)
}

// UpdateFavorite flips the favorite flag if the caller owns the contact.
func (s *ContactService) UpdateFavorite(ctx context.Context, ownerID, id string, favorite bool) (*models.Contact, error) {
	contact, err := s.repomanager.Contacts(s.db).UpdateFavorite(ctx, ownerID, id, favorite)
	return contact, mapContactErr(err)
}

// Remove deletes the contact if the caller owns it.
func (s *ContactService) Remove(ctx context.Context, ownerID, id string) (*models.Contact, error) {
	contact, err := s.repomanager.Contacts(s.db).Delete(ctx, ownerID, id)
	return contact, mapContactErr(err)
}

// mapContactErr keeps ErrorNotFound intact (owner mismatch included) and
// hides storage details behind ErrorInternal.
func mapContactErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorNotFound):
		return common.ErrorNotFound
	default:
		return common.ErrorInternal
	}
}
