package models

type ChatSession struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Favorite  bool   `json:"favorite"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

type ChatMessage struct {
	ID               string `json:"id"`
	SessionID        string `json:"session_id"`
	Sender           string `json:"sender"`
	Content          string `json:"content"`
	RetrievedContext string `json:"retrieved_context,omitempty"`
	CreatedAt        int64  `json:"created_at"`
}
