package httpapi

import (
	"net/http"

	"contacthub/internal/server/models"
)

func (s *HTTPServer) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	writeJSON(w, http.StatusOK, newUserPayload(user))
}

type updateSubscriptionRequest struct {
	Subscription string `json:"subscription"`
}

func (s *HTTPServer) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req updateSubscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}
	if !models.ValidSubscription(req.Subscription) {
		writeError(w, http.StatusBadRequest, "Subscription must be one of: starter, pro, business")
		return
	}

	updated, err := s.users.UpdateSubscription(r.Context(), user.ID, req.Subscription)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserPayload(updated))
}

// handlePresignAvatarUpload hands the client a short-lived PUT URL scoped to
// its own storage prefix. The returned key is what a follow-up avatar PATCH
// is expected to submit.
func (s *HTTPServer) handlePresignAvatarUpload(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	key, url, err := s.avatars.PresignUpload(r.Context(), user.ID)
	if err != nil {
		s.logger.Error(r.Context(), "presigning avatar upload", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"key": key, "uploadURL": url})
}

type updateAvatarRequest struct {
	Key string `json:"key"`
}

func (s *HTTPServer) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req updateAvatarRequest
	if err := decodeJSON(r, &req); err != nil || req.Key == "" {
		writeError(w, http.StatusBadRequest, "Bad request")
		return
	}

	updated, err := s.users.UpdateAvatar(r.Context(), user.ID, req.Key)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	url, err := s.avatars.PresignDownload(r.Context(), req.Key)
	if err != nil {
		s.logger.Error(r.Context(), "presigning avatar download", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	payload := newUserPayload(updated)
	payload.AvatarURL = &url
	writeJSON(w, http.StatusOK, payload)
}
