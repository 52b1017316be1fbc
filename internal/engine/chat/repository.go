package chat

import (
	"database/sql"

	"chatstore/internal/platform/models"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateSession(session *models.ChatSession) error {
	query := `
		INSERT INTO chat_sessions (id, user_id, title, favorite, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, session.ID, session.UserID, session.Title, session.Favorite, session.CreatedAt, session.UpdatedAt)
	return err
}

// GetSession is owner-scoped: a session id belonging to another user comes
// back as not found.
func (r *Repository) GetSession(id, userID string) (*models.ChatSession, error) {
	query := `
		SELECT id, user_id, title, favorite, created_at, updated_at
		FROM chat_sessions WHERE id = ? AND user_id = ?
	`
	var s models.ChatSession
	err := r.db.QueryRow(query, id, userID).Scan(&s.ID, &s.UserID, &s.Title, &s.Favorite, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *Repository) ListSessions(userID string, favorite *bool, offset, limit int) ([]*models.ChatSession, int, error) {
	countQuery := `SELECT COUNT(*) FROM chat_sessions WHERE user_id = ?`
	query := `
		SELECT id, user_id, title, favorite, created_at, updated_at
		FROM chat_sessions WHERE user_id = ?
	`
	args := []interface{}{userID}
	if favorite != nil {
		countQuery += ` AND favorite = ?`
		query += ` AND favorite = ?`
		args = append(args, *favorite)
	}
	query += ` ORDER BY updated_at DESC LIMIT ? OFFSET ?`

	var total int
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sessions []*models.ChatSession
	for rows.Next() {
		var s models.ChatSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.Favorite, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, &s)
	}
	return sessions, total, rows.Err()
}

func (r *Repository) UpdateSession(session *models.ChatSession) error {
	query := `
		UPDATE chat_sessions SET title = ?, favorite = ?, updated_at = ? WHERE id = ?
	`
	_, err := r.db.Exec(query, session.Title, session.Favorite, session.UpdatedAt, session.ID)
	return err
}

// DeleteSession removes the session and its messages as one unit.
func (r *Repository) DeleteSession(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM chat_messages WHERE session_id = ?`, id); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`DELETE FROM chat_sessions WHERE id = ?`, id); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// CreateMessage inserts the message and bumps the owning session's updated_at
// in the same transaction, so a failed insert leaves the session untouched.
func (r *Repository) CreateMessage(message *models.ChatMessage) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`UPDATE chat_sessions SET updated_at = ? WHERE id = ?`, message.CreatedAt, message.SessionID); err != nil {
		tx.Rollback()
		return err
	}

	query := `
		INSERT INTO chat_messages (id, session_id, sender, content, retrieved_context, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(query, message.ID, message.SessionID, message.Sender, message.Content, message.RetrievedContext, message.CreatedAt); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *Repository) ListMessages(sessionID string, offset, limit int) ([]*models.ChatMessage, int, error) {
	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM chat_messages WHERE session_id = ?`, sessionID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, session_id, sender, content, retrieved_context, created_at
		FROM chat_messages WHERE session_id = ?
		ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?
	`
	rows, err := r.db.Query(query, sessionID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Sender, &m.Content, &m.RetrievedContext, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		messages = append(messages, &m)
	}
	return messages, total, rows.Err()
}
