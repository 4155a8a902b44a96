package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"contacthub/internal/logging"
	"contacthub/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address  string
	logger   logging.Logger
	users    *services.UserService
	contacts *services.ContactService
	avatars  *services.AvatarService
}

func NewHTTPServer(a string, l logging.Logger, us *services.UserService, cs *services.ContactService, as *services.AvatarService) (*HTTPServer, error) {
	return &HTTPServer{
		address:  a,
		logger:   l.With("module", "http_server"),
		users:    us,
		contacts: cs,
		avatars:  as,
	}, nil
}

// Routes assembles the API router. Everything except signup and login sits
// behind the access guard.
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Post("/auth/logout", s.handleLogout)

			r.Route("/users", func(r chi.Router) {
				r.Get("/current", s.handleCurrentUser)
				r.Patch("/", s.handleUpdateSubscription)
				r.Post("/avatars/upload", s.handlePresignAvatarUpload)
				r.Patch("/avatars", s.handleUpdateAvatar)
			})

			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", s.handleListContacts)
				r.Post("/", s.handleCreateContact)
				r.Get("/{contactID}", s.handleGetContact)
				r.Put("/{contactID}", s.handleUpdateContact)
				r.Patch("/{contactID}/favorite", s.handleUpdateContactFavorite)
				r.Delete("/{contactID}", s.handleDeleteContact)
			})
		})
	})

	return r
}

func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
