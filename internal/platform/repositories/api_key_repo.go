package repositories

import (
	"database/sql"
	"time"

	"chatstore/internal/platform/models"
	"github.com/google/uuid"
)

type APIKeyRepository struct {
	db *sql.DB
}

func NewAPIKeyRepository(db *sql.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Save inserts a new key or overwrites an existing row in place. Rotation
// and revocation both go through here: the row keeps its id, everything
// else is replaced.
func (r *APIKeyRepository) Save(key *models.APIKey) (*models.APIKey, error) {
	now := time.Now().Unix()
	key.UpdatedAt = now

	if key.ID == "" {
		key.ID = "key_" + uuid.New().String()
		key.CreatedAt = now

		query := `
			INSERT INTO api_keys (id, user_id, name, key_hash, key_prefix, active, last_used_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := r.db.Exec(query, key.ID, key.UserID, key.Name, key.KeyHash, key.KeyPrefix, key.Active, key.LastUsedAt, key.CreatedAt, key.UpdatedAt)
		if err != nil {
			return nil, err
		}
		return key, nil
	}

	query := `
		UPDATE api_keys
		SET user_id = ?, name = ?, key_hash = ?, key_prefix = ?, active = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, key.UserID, key.Name, key.KeyHash, key.KeyPrefix, key.Active, key.UpdatedAt, key.ID)
	if err != nil {
		return nil, err
	}
	return key, nil
}

func (r *APIKeyRepository) FindActiveByPrefix(prefix string) (*models.APIKey, error) {
	query := `
		SELECT id, user_id, name, key_hash, key_prefix, active, last_used_at, created_at, updated_at
		FROM api_keys WHERE key_prefix = ? AND active = 1
	`
	return r.scanOne(r.db.QueryRow(query, prefix))
}

func (r *APIKeyRepository) FindByID(id string) (*models.APIKey, error) {
	query := `
		SELECT id, user_id, name, key_hash, key_prefix, active, last_used_at, created_at, updated_at
		FROM api_keys WHERE id = ?
	`
	return r.scanOne(r.db.QueryRow(query, id))
}

func (r *APIKeyRepository) FindByUser(userID string) (*models.APIKey, error) {
	query := `
		SELECT id, user_id, name, key_hash, key_prefix, active, last_used_at, created_at, updated_at
		FROM api_keys WHERE user_id = ?
	`
	return r.scanOne(r.db.QueryRow(query, userID))
}

func (r *APIKeyRepository) ListByUser(userID string) ([]*models.APIKey, error) {
	query := `
		SELECT id, user_id, name, key_hash, key_prefix, active, last_used_at, created_at, updated_at
		FROM api_keys WHERE user_id = ? ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		var lastUsedAt sql.NullInt64

		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Active, &lastUsedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, err
		}
		if lastUsedAt.Valid {
			k.LastUsedAt = new(int64)
			*k.LastUsedAt = lastUsedAt.Int64
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

// UpdateLastUsed is advisory; callers ignore its error.
func (r *APIKeyRepository) UpdateLastUsed(id string) error {
	_, err := r.db.Exec(`UPDATE api_keys SET last_used_at = ? WHERE id = ?`, time.Now().Unix(), id)
	return err
}

func (r *APIKeyRepository) scanOne(row *sql.Row) (*models.APIKey, error) {
	var k models.APIKey
	var lastUsedAt sql.NullInt64

	err := row.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Active, &lastUsedAt, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if lastUsedAt.Valid {
		k.LastUsedAt = new(int64)
		*k.LastUsedAt = lastUsedAt.Int64
	}
	return &k, nil
}
