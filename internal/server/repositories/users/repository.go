package users

import (
	"context"

	"contacthub/internal/server/models"
)

// Repository is the persistence contract for user identities.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateToken(ctx context.Context, id string, token *string) error
	UpdateSubscription(ctx context.Context, id string, subscription string) (*models.User, error)
	UpdateAvatar(ctx context.Context, id string, avatarURL string) (*models.User, error)
}
