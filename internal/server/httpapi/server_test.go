package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"contacthub/internal/common"
	"contacthub/internal/dbx"
	"contacthub/internal/logging"
	"contacthub/internal/server/config"
	"contacthub/internal/server/models"
	contactsrepo "contacthub/internal/server/repositories/contacts"
	usersrepo "contacthub/internal/server/repositories/users"
	"contacthub/internal/server/services"
)

// --- in-memory repositories backing the full stack under httptest ---

type fakeUsersRepo struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
	nextID  int
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: map[string]*models.User{}, byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) add(u *models.User) {
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if u.ID == "" {
		f.nextID++
		u.ID = fmt.Sprintf("u-%d", f.nextID)
	}
	f.add(u)
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) UpdateToken(ctx context.Context, id string, token *string) error {
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Token = token
	return nil
}

func (f *fakeUsersRepo) UpdateSubscription(ctx context.Context, id, subscription string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.Subscription = subscription
	return u, nil
}

func (f *fakeUsersRepo) UpdateAvatar(ctx context.Context, id, avatarURL string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u.AvatarURL = &avatarURL
	return u, nil
}

type fakeContactsRepo struct {
	items  map[string]*models.Contact
	nextID int
}

func newFakeContactsRepo() *fakeContactsRepo {
	return &fakeContactsRepo{items: map[string]*models.Contact{}}
}

func (f *fakeContactsRepo) Create(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	f.nextID++
	c.ID = fmt.Sprintf("c-%d", f.nextID)
	c.CreatedAt = time.Unix(int64(f.nextID), 0)
	f.items[c.ID] = c
	return c, nil
}

func (f *fakeContactsRepo) GetByID(ctx context.Context, ownerID, id string) (*models.Contact, error) {
	c, ok := f.items[id]
	if !ok || c.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

// List mirrors the SQL implementation: stable (created_at, id) ordering
// with limit/offset applied after filtering.
func (f *fakeContactsRepo) List(ctx context.Context, ownerID string, filter contactsrepo.ListFilter) ([]*models.Contact, error) {
	var out []*models.Contact
	for _, c := range f.items {
		if c.OwnerID != ownerID {
			continue
		}
		if filter.Favorite != nil && c.Favorite != *filter.Favorite {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeContactsRepo) Count(ctx context.Context, ownerID string, favorite *bool) (int64, error) {
	items, _ := f.List(ctx, ownerID, contactsrepo.ListFilter{Favorite: favorite})
	return int64(len(items)), nil
}

func (f *fakeContactsRepo) Update(ctx context.Context, ownerID, id string, patch contactsrepo.Patch) (*models.Contact, error) {
	c, err := f.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	c.Name, c.Email, c.Phone, c.Favorite = patch.Name, patch.Email, patch.Phone, patch.Favorite
	return c, nil
}

func (f *fakeContactsRepo) UpdateFavorite(ctx context.Context, ownerID, id string, favorite bool) (*models.Contact, error) {
	c, err := f.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	c.Favorite = favorite
	return c, nil
}

func (f *fakeContactsRepo) Delete(ctx context.Context, ownerID, id string) (*models.Contact, error) {
	c, err := f.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	delete(f.items, id)
	return c, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	c *fakeContactsRepo
}

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Contacts(db dbx.DBTX) contactsrepo.Repository { return m.c }
func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

// --- harness ---

type testEnv struct {
	handler  http.Handler
	users    *fakeUsersRepo
	contacts *fakeContactsRepo
	mock     sqlmock.Sqlmock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{
		SecretKey:             "k",
		TokenValidityDuration: time.Hour,
		BcryptCost:            bcrypt.MinCost,
		S3Bucket:              "avatars",
	}

	ur := newFakeUsersRepo()
	cr := newFakeContactsRepo()
	m := &fakeRepoManager{u: ur, c: cr}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	srv, err := NewHTTPServer(":0", logger,
		services.NewUserService(db, m, cfg),
		services.NewContactService(db, m, cfg),
		services.NewAvatarService(cfg),
	)
	if err != nil {
		t.Fatalf("NewHTTPServer error: %v", err)
	}

	return &testEnv{handler: srv.Routes(), users: ur, contacts: cr, mock: mock}
}

func (e *testEnv) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		buf = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, buf)
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response %q: %v", rec.Body.String(), err)
	}
	return out
}

// seedUser creates an account directly in the fake store.
func (e *testEnv) seedUser(t *testing.T, email, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	u, err := e.users.Create(context.Background(), &models.User{
		Name:         "Seeded",
		Email:        email,
		Password:     string(hash),
		Subscription: models.SubscriptionStarter,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// login performs a real login round trip and returns the issued token.
func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Email: email, Password: password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}

	body := decodeBody[struct {
		Token string `json:"token"`
	}](t, rec)
	if body.Token == "" {
		t.Fatalf("login returned empty token")
	}
	return body.Token
}
