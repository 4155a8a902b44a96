// Package services contains server-side business logic. This file implements
// UserService: signup, login/logout with single-session JWTs, bearer-token
// authentication, and profile self-service.
package services

import (
	"context"
	"crypto/md5"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"contacthub/internal/common"
	"contacthub/internal/dbx"
	"contacthub/internal/server/auth"
	"contacthub/internal/server/config"
	"contacthub/internal/server/models"
	"contacthub/internal/server/repositories/repomanager"
)

// UserService provides identity operations:
//   - Signup: create users with hashed passwords and a derived avatar
//   - Login: verify credentials, mint a session token, persist it
//   - Logout: clear the stored token (immediate revocation)
//   - Authenticate: resolve a bearer token to a live user
//   - UpdateSubscription / UpdateAvatar: authenticated self-service
type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	jwtSecret     []byte
	tokenValidity time.Duration
	bcryptCost    int
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
		bcryptCost:    cfg.BcryptCost,
	}
}

// GravatarURL derives a deterministic avatar reference from an email address.
// Pure function, computed once at signup.
func GravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x", md5.Sum([]byte(normalized)))
}

// Signup creates a new identity. The email pre-check and the insert run in
// one transaction; the store's unique constraint stays as a backstop, but
// the pre-check is what produces a distinguishable ErrorConflict.
func (s *UserService) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	avatarURL := GravatarURL(email)
	user := &models.User{
		Name:         name,
		Email:        email,
		Password:     hash,
		Subscription: models.SubscriptionStarter,
		AvatarURL:    &avatarURL,
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetByEmail(ctx, email)
		if err == nil {
			return common.ErrorConflict
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		user, err = repo.Create(ctx, user)
		if err != nil && !errors.Is(err, common.ErrorConflict) {
			// any insert rejection other than the duplicate-email backstop
			return fmt.Errorf("%w: %w", common.ErrorUnprocessable, err)
		}
		return err
	}); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and, on success, issues a session token and
// persists it as the user's single live session. Unknown email and wrong
// password both return plain ErrorUnauthorized so accounts cannot be
// enumerated.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorUnauthorized
		}
		return "", nil, common.ErrorInternal
	}

	if !auth.CheckPassword(password, user.Password) {
		return "", nil, common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", nil, common.ErrorInternal
	}

	// Persisting the token is part of the issuance contract: Authenticate
	// cross-checks it, so a token that never reached the row is dead.
	if err := repo.UpdateToken(ctx, user.ID, &token); err != nil {
		return "", nil, common.ErrorInternal
	}
	user.Token = &token

	return token, user, nil
}

// Logout clears the stored session token. Previously issued tokens keep a
// valid signature until expiry but fail Authenticate from this point on.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	repo := s.repomanager.Users(s.db)

	if err := repo.UpdateToken(ctx, userID, nil); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}

// Authenticate resolves a raw bearer token to a live user or returns
// ErrorUnauthorized. Signature validity alone is never sufficient: the user
// must still exist and the token must equal the one stored on the record,
// which is what makes logout effective before natural expiry.
func (s *UserService) Authenticate(ctx context.Context, rawToken string) (*models.User, error) {
	userID, err := auth.GetUserIDFromToken(rawToken, s.jwtSecret)
	if err != nil {
		// expired vs tampered stays visible to callers via errors.Is for
		// logging; the boundary responds 401 either way
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if user.Token == nil || *user.Token != rawToken {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

// UpdateSubscription changes the caller's own subscription tier.
func (s *UserService) UpdateSubscription(ctx context.Context, userID, subscription string) (*models.User, error) {
	if !models.ValidSubscription(subscription) {
		return nil, common.ErrorValidation
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.UpdateSubscription(ctx, userID, subscription)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// UpdateAvatar stores an uploaded avatar's storage key as the user's avatar
// reference. The key must lie under the caller's own prefix.
func (s *UserService) UpdateAvatar(ctx context.Context, userID, key string) (*models.User, error) {
	if !strings.HasPrefix(key, AvatarKeyPrefix(userID)) {
		return nil, common.ErrorValidation
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.UpdateAvatar(ctx, userID, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}
