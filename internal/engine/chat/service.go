package chat

import (
	"errors"
	"strings"
	"time"

	"chatstore/internal/platform/models"
	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidInput    = errors.New("invalid input")
)

const (
	defaultTitle   = "New Chat"
	maxSessionPage = 100
	maxMessagePage = 200
	maxPageIndex   = 1000000

	SenderUser      = "user"
	SenderAssistant = "assistant"
)

type Page struct {
	Content       interface{} `json:"content"`
	Page          int         `json:"page"`
	Size          int         `json:"size"`
	TotalElements int         `json:"total_elements"`
	TotalPages    int         `json:"total_pages"`
}

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateSession(userID, title string) (*models.ChatSession, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultTitle
	}

	now := time.Now().Unix()
	session := &models.ChatSession{
		ID:        "sess_" + uuid.New().String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) ListSessions(userID string, favorite *bool, page, size int) (*Page, error) {
	if err := validatePage(page, size, maxSessionPage); err != nil {
		return nil, err
	}

	sessions, total, err := s.repo.ListSessions(userID, favorite, page*size, size)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []*models.ChatSession{}
	}
	return newPage(sessions, page, size, total), nil
}

func (s *Service) RenameSession(sessionID, userID, title string) (*models.ChatSession, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidInput
	}

	session, err := s.getSession(sessionID, userID)
	if err != nil {
		return nil, err
	}

	session.Title = title
	session.UpdatedAt = time.Now().Unix()
	if err := s.repo.UpdateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) SetFavorite(sessionID, userID string, favorite bool) (*models.ChatSession, error) {
	session, err := s.getSession(sessionID, userID)
	if err != nil {
		return nil, err
	}

	session.Favorite = favorite
	session.UpdatedAt = time.Now().Unix()
	if err := s.repo.UpdateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) DeleteSession(sessionID, userID string) error {
	session, err := s.getSession(sessionID, userID)
	if err != nil {
		return err
	}
	return s.repo.DeleteSession(session.ID)
}

func (s *Service) AddMessage(sessionID, userID, sender, content, retrievedContext string) (*models.ChatMessage, error) {
	sender = strings.TrimSpace(sender)
	if sender != SenderUser && sender != SenderAssistant {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrInvalidInput
	}

	session, err := s.getSession(sessionID, userID)
	if err != nil {
		return nil, err
	}

	message := &models.ChatMessage{
		ID:               "msg_" + uuid.New().String(),
		SessionID:        session.ID,
		Sender:           sender,
		Content:          strings.TrimSpace(content),
		RetrievedContext: retrievedContext,
		CreatedAt:        time.Now().Unix(),
	}

	// The insert also bumps the session so it sorts first in listings.
	if err := s.repo.CreateMessage(message); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *Service) ListMessages(sessionID, userID string, page, size int) (*Page, error) {
	if err := validatePage(page, size, maxMessagePage); err != nil {
		return nil, err
	}

	if _, err := s.getSession(sessionID, userID); err != nil {
		return nil, err
	}

	messages, total, err := s.repo.ListMessages(sessionID, page*size, size)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []*models.ChatMessage{}
	}
	return newPage(messages, page, size, total), nil
}

func (s *Service) getSession(sessionID, userID string) (*models.ChatSession, error) {
	session, err := s.repo.GetSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func validatePage(page, size, maxSize int) error {
	if page < 0 || page > maxPageIndex || size < 1 || size > maxSize {
		return ErrInvalidInput
	}
	return nil
}

func newPage(content interface{}, page, size, total int) *Page {
	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}
	return &Page{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}
