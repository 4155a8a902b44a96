package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"contacthub/internal/server/models"
	"contacthub/internal/server/repositories/contacts"
	"contacthub/internal/server/services"
)

type contactRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Favorite bool   `json:"favorite"`
}

func (req *contactRequest) validate() string {
	if req.Name == "" {
		return "Set name for contact"
	}
	if req.Phone == "" {
		return "Set phone for contact"
	}
	if req.Email != "" && !emailPattern.MatchString(req.Email) {
		return "Invalid email format"
	}
	return ""
}

func (req *contactRequest) patch() contacts.Patch {
	return contacts.Patch{Name: req.Name, Email: req.Email, Phone: req.Phone, Favorite: req.Favorite}
}

type contactListResponse struct {
	Contacts []*models.Contact `json:"contacts"`
	Total    int64             `json:"total"`
}

// positiveQueryInt parses an optional positive integer query parameter,
// falling back to def when it is absent.
func positiveQueryInt(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, false
	}
	return v, true
}

func (s *HTTPServer) handleListContacts(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	page, ok := positiveQueryInt(r, "page", 1)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid page value")
		return
	}
	limit, ok := positiveQueryInt(r, "limit", services.DefaultPageSize)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid limit value")
		return
	}

	var favorite *bool
	if raw := r.URL.Query().Get("favorite"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid favorite value")
			return
		}
		favorite = &v
	}

	items, total, err := s.contacts.List(r.Context(), user.ID, favorite, page, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if items == nil {
		items = []*models.Contact{}
	}

	writeJSON(w, http.StatusOK, contactListResponse{Contacts: items, Total: total})
}

func (s *HTTPServer) handleGetContact(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	contact, err := s.contacts.Get(r.Context(), user.ID, chi.URLParam(r, "contactID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

func (s *HTTPServer) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	contact, err := s.contacts.Create(r.Context(), user.ID, req.patch())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, contact)
}

func (s *HTTPServer) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	contact, err := s.contacts.Update(r.Context(), user.ID, chi.URLParam(r, "contactID"), req.patch())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

type favoriteRequest struct {
	Favorite *bool `json:"favorite"`
}

func (s *HTTPServer) handleUpdateContactFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req favoriteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}
	if req.Favorite == nil {
		writeError(w, http.StatusBadRequest, "Missing field favorite")
		return
	}

	contact, err := s.contacts.UpdateFavorite(r.Context(), user.ID, chi.URLParam(r, "contactID"), *req.Favorite)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

func (s *HTTPServer) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	if _, err := s.contacts.Remove(r.Context(), user.ID, chi.URLParam(r, "contactID")); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "contact deleted"})
}
