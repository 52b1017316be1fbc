package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	apiContext "chatstore/internal/api/context"
	"chatstore/internal/engine/apikeys"
	"chatstore/internal/engine/chat"
	"chatstore/internal/pkg/errors"

	"github.com/julienschmidt/httprouter"
)

type SessionHandler struct {
	chat *chat.Service
}

func NewSessionHandler(chatSvc *chat.Service) *SessionHandler {
	return &SessionHandler{chat: chatSvc}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	session, err := h.chat.CreateSession(identity.UserID, req.Title)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Unexpected server error", nil)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var favorite *bool
	if raw := r.URL.Query().Get("favorite"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "favorite must be a boolean", nil)
			return
		}
		favorite = &value
	}

	page, size := pagination(r)
	result, err := h.chat.ListSessions(identity.UserID, favorite, page, size)
	if err != nil {
		writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *SessionHandler) Rename(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	session, err := h.chat.RenameSession(sessionID(r), identity.UserID, req.Title)
	if err != nil {
		writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) UpdateFavorite(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req struct {
		Favorite *bool `json:"favorite"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Favorite == nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "favorite is required", nil)
		return
	}

	session, err := h.chat.SetFavorite(sessionID(r), identity.UserID, *req.Favorite)
	if err != nil {
		writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.chat.DeleteSession(sessionID(r), identity.UserID); err != nil {
		writeChatError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func sessionID(r *http.Request) string {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	return params.ByName("session_id")
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (*apikeys.Identity, bool) {
	identity, ok := r.Context().Value(apiContext.Identity).(*apikeys.Identity)
	if !ok || identity == nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid API key", nil)
		return nil, false
	}
	return identity, true
}

func pagination(r *http.Request) (page, size int) {
	page = 0
	size = 20

	if raw := r.URL.Query().Get("page"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			page = value
		}
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			size = value
		}
	}
	return page, size
}

func writeChatError(w http.ResponseWriter, err error) {
	switch err {
	case chat.ErrSessionNotFound:
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Session not found", nil)
	case chat.ErrInvalidInput:
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Validation failed", nil)
	default:
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Unexpected server error", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
