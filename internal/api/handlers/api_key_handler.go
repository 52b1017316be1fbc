package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	apiContext "chatstore/internal/api/context"
	"chatstore/internal/engine/apikeys"
	"chatstore/internal/pkg/errors"

	"github.com/julienschmidt/httprouter"
)

type APIKeyHandler struct {
	keys *apikeys.Service
}

func NewAPIKeyHandler(keys *apikeys.Service) *APIKeyHandler {
	return &APIKeyHandler{keys: keys}
}

func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		Name   string `json:"name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Name) == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "user_id and name are required", nil)
		return
	}

	issued, err := h.keys.Issue(req.UserID, req.Name)
	if err != nil {
		if err == apikeys.ErrPepperMissing {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid API key", nil)
			return
		}
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Unexpected server error", nil)
		return
	}

	// The plaintext key appears in this response and nowhere else.
	response := struct {
		ID        string `json:"id"`
		UserID    string `json:"user_id"`
		Name      string `json:"name"`
		Key       string `json:"key"`
		CreatedAt int64  `json:"created_at"`
	}{
		ID:        issued.Metadata.ID,
		UserID:    issued.Metadata.UserID,
		Name:      issued.Metadata.Name,
		Key:       issued.Key,
		CreatedAt: issued.Metadata.CreatedAt,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "user_id query parameter is required", nil)
		return
	}

	keys, err := h.keys.ListByUser(userID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Unexpected server error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(keys)
}

func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	keyID := params.ByName("key_id")

	if err := h.keys.Revoke(keyID); err != nil {
		if err == apikeys.ErrNotFound {
			errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "API key not found: "+keyID, nil)
			return
		}
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Unexpected server error", nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
