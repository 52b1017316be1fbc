package chat

import (
	"testing"

	"chatstore/internal/platform/models"
)

func newTestService(t *testing.T) *Service {
	return NewService(NewRepository(setupTestDB(t)))
}

func TestService_CreateSessionDefaultTitle(t *testing.T) {
	svc := newTestService(t)

	session, err := svc.CreateSession("alice", "   ")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if session.Title != "New Chat" {
		t.Errorf("Expected default title, got %q", session.Title)
	}
	if session.ID == "" {
		t.Error("Expected generated id")
	}
}

func TestService_RenameSession(t *testing.T) {
	svc := newTestService(t)

	session, err := svc.CreateSession("alice", "before")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	renamed, err := svc.RenameSession(session.ID, "alice", "  after  ")
	if err != nil {
		t.Fatalf("RenameSession failed: %v", err)
	}
	if renamed.Title != "after" {
		t.Errorf("Expected trimmed title, got %q", renamed.Title)
	}

	if _, err := svc.RenameSession(session.ID, "alice", "   "); err != ErrInvalidInput {
		t.Errorf("Expected ErrInvalidInput for blank title, got %v", err)
	}
	if _, err := svc.RenameSession(session.ID, "bob", "stolen"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound for foreign owner, got %v", err)
	}
}

func TestService_SetFavorite(t *testing.T) {
	svc := newTestService(t)

	session, err := svc.CreateSession("alice", "chat")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	updated, err := svc.SetFavorite(session.ID, "alice", true)
	if err != nil {
		t.Fatalf("SetFavorite failed: %v", err)
	}
	if !updated.Favorite {
		t.Error("Expected favorite true")
	}
}

func TestService_DeleteSessionNotFound(t *testing.T) {
	svc := newTestService(t)
	if err := svc.DeleteSession("sess_missing", "alice"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestService_AddMessage(t *testing.T) {
	svc := newTestService(t)

	session, err := svc.CreateSession("alice", "chat")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	message, err := svc.AddMessage(session.ID, "alice", "user", "  hello  ", "ctx")
	if err != nil {
		t.Fatalf("AddMessage failed: %v", err)
	}
	if message.Content != "hello" {
		t.Errorf("Expected trimmed content, got %q", message.Content)
	}
	if message.SessionID != session.ID {
		t.Errorf("Expected session id %s, got %s", session.ID, message.SessionID)
	}

	if _, err := svc.AddMessage(session.ID, "alice", "", "hello", ""); err != ErrInvalidInput {
		t.Errorf("Expected ErrInvalidInput for blank sender, got %v", err)
	}
	if _, err := svc.AddMessage(session.ID, "alice", "user", "   ", ""); err != ErrInvalidInput {
		t.Errorf("Expected ErrInvalidInput for blank content, got %v", err)
	}
	if _, err := svc.AddMessage("sess_missing", "alice", "user", "hello", ""); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestService_AddMessageRejectsUnknownSender(t *testing.T) {
	svc := newTestService(t)

	session, err := svc.CreateSession("alice", "chat")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	for _, sender := range []string{"robot", "USER", "system", "assistant extra"} {
		if _, err := svc.AddMessage(session.ID, "alice", sender, "hello", ""); err != ErrInvalidInput {
			t.Errorf("AddMessage(sender=%q) error = %v, want ErrInvalidInput", sender, err)
		}
	}

	result, err := svc.ListMessages(session.ID, "alice", 0, 10)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if result.TotalElements != 0 {
		t.Errorf("Rejected senders persisted %d messages", result.TotalElements)
	}

	if _, err := svc.AddMessage(session.ID, "alice", "assistant", "hi", ""); err != nil {
		t.Errorf("AddMessage(sender=assistant) failed: %v", err)
	}
}

func TestService_ListMessagesValidatesPagination(t *testing.T) {
	svc := newTestService(t)

	session, err := svc.CreateSession("alice", "chat")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	for _, tc := range []struct{ page, size int }{
		{-1, 10},
		{0, 0},
		{0, 201},
		{1000001, 10},
	} {
		if _, err := svc.ListMessages(session.ID, "alice", tc.page, tc.size); err != ErrInvalidInput {
			t.Errorf("ListMessages(page=%d, size=%d) error = %v, want ErrInvalidInput", tc.page, tc.size, err)
		}
	}

	result, err := svc.ListMessages(session.ID, "alice", 0, 200)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if result.TotalElements != 0 {
		t.Errorf("Expected empty page, got %d elements", result.TotalElements)
	}
	if _, ok := result.Content.([]*models.ChatMessage); !ok {
		t.Errorf("Expected message slice content, got %T", result.Content)
	}
}

func TestService_ListSessionsPageMath(t *testing.T) {
	svc := newTestService(t)

	for i := 0; i < 5; i++ {
		if _, err := svc.CreateSession("alice", "chat"); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	result, err := svc.ListSessions("alice", nil, 0, 2)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if result.TotalElements != 5 {
		t.Errorf("Expected 5 total, got %d", result.TotalElements)
	}
	if result.TotalPages != 3 {
		t.Errorf("Expected 3 pages, got %d", result.TotalPages)
	}

	// Sessions list caps size at 100.
	if _, err := svc.ListSessions("alice", nil, 0, 101); err != ErrInvalidInput {
		t.Errorf("Expected ErrInvalidInput for size 101, got %v", err)
	}
}
