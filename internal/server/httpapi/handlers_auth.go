package httpapi

import (
	"errors"
	"net/http"
	"regexp"

	"contacthub/internal/common"
	"contacthub/internal/server/models"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)

const minPasswordLength = 6

// userPayload is the public projection of an account returned by the auth
// and profile endpoints.
type userPayload struct {
	Email        string  `json:"email"`
	Subscription string  `json:"subscription"`
	AvatarURL    *string `json:"avatarURL,omitempty"`
}

func newUserPayload(u *models.User) userPayload {
	return userPayload{Email: u.Email, Subscription: u.Subscription, AvatarURL: u.AvatarURL}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *signupRequest) validate() string {
	if req.Name == "" {
		return "Set name for user"
	}
	if !emailPattern.MatchString(req.Email) {
		return "Invalid email format"
	}
	if len(req.Password) < minPasswordLength {
		return "Password must be at least 6 characters"
	}
	return ""
}

func (s *HTTPServer) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := s.users.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": newUserPayload(user)})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}
	if !emailPattern.MatchString(req.Email) || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}

	token, user, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Unknown email and wrong password are deliberately indistinguishable.
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Email or password is wrong")
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  newUserPayload(user),
	})
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	if err := s.users.Logout(r.Context(), user.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
