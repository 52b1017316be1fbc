package handlers

import (
	"encoding/json"
	"net/http"

	"chatstore/internal/engine/chat"
	"chatstore/internal/pkg/errors"
)

type MessageHandler struct {
	chat *chat.Service
}

func NewMessageHandler(chatSvc *chat.Service) *MessageHandler {
	return &MessageHandler{chat: chatSvc}
}

func (h *MessageHandler) Add(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req struct {
		Sender           string `json:"sender"`
		Content          string `json:"content"`
		RetrievedContext string `json:"retrieved_context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	message, err := h.chat.AddMessage(sessionID(r), identity.UserID, req.Sender, req.Content, req.RetrievedContext)
	if err != nil {
		writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, message)
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	page, size := pagination(r)
	result, err := h.chat.ListMessages(sessionID(r), identity.UserID, page, size)
	if err != nil {
		writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
