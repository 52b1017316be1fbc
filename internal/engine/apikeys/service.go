package apikeys

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	"chatstore/internal/platform/models"
	"github.com/google/uuid"
)

var (
	ErrUnauthorized = errors.New("invalid api key")
	ErrNotFound     = errors.New("api key not found")
)

// Store is the persistence surface the service needs. Implemented by
// repositories.APIKeyRepository.
type Store interface {
	Save(key *models.APIKey) (*models.APIKey, error)
	FindActiveByPrefix(prefix string) (*models.APIKey, error)
	FindByID(id string) (*models.APIKey, error)
	FindByUser(userID string) (*models.APIKey, error)
	ListByUser(userID string) ([]*models.APIKey, error)
	UpdateLastUsed(id string) error
}

// Identity is the per-request result of a successful authentication. It is
// never persisted.
type Identity struct {
	KeyID     string
	UserID    string
	KeyPrefix string
}

// IssuedKey carries the plaintext key exactly once. The secret is not
// recoverable after this value is dropped.
type IssuedKey struct {
	Key      string `json:"key"`
	Metadata *models.APIKey
}

type Service struct {
	store  Store
	hasher *Hasher
}

func NewService(store Store, hasher *Hasher) *Service {
	return &Service{store: store, hasher: hasher}
}

// Issue creates a key for userID, rotating in place when the user already
// holds one: prefix, hash, name and active flag are overwritten and the old
// secret is dead from that point on.
func (s *Service) Issue(userID, name string) (*IssuedKey, error) {
	userID = strings.TrimSpace(userID)

	secret, err := generateSecret()
	if err != nil {
		return nil, err
	}
	prefix := generatePrefix()

	hash, err := s.hasher.HashSecret(secret)
	if err != nil {
		return nil, err
	}

	key, err := s.store.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if key == nil {
		key = &models.APIKey{UserID: userID}
	}

	key.Name = strings.TrimSpace(name)
	key.KeyPrefix = prefix
	key.KeyHash = hash
	key.Active = true

	saved, err := s.store.Save(key)
	if err != nil {
		return nil, err
	}

	return &IssuedKey{
		Key:      Format(prefix, secret),
		Metadata: saved,
	}, nil
}

// Authenticate resolves a raw key string to an identity. Malformed input,
// unknown prefix, revoked key and hash mismatch all collapse into
// ErrUnauthorized so the caller cannot tell which check failed.
func (s *Service) Authenticate(raw string) (*Identity, error) {
	prefix, secret, err := Parse(raw)
	if err != nil {
		return nil, ErrUnauthorized
	}

	key, err := s.store.FindActiveByPrefix(prefix)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, ErrUnauthorized
	}

	provided, err := s.hasher.HashSecret(secret)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if !DigestsEqual(key.KeyHash, provided) {
		return nil, ErrUnauthorized
	}

	// Advisory only.
	_ = s.store.UpdateLastUsed(key.ID)

	return &Identity{
		KeyID:     key.ID,
		UserID:    key.UserID,
		KeyPrefix: key.KeyPrefix,
	}, nil
}

func (s *Service) ListByUser(userID string) ([]*models.APIKey, error) {
	return s.store.ListByUser(userID)
}

// Revoke flips the key inactive. Revoking twice is fine; the second call
// writes the same false flag again.
func (s *Service) Revoke(id string) error {
	key, err := s.store.FindByID(id)
	if err != nil {
		return err
	}
	if key == nil {
		return ErrNotFound
	}

	key.Active = false
	_, err = s.store.Save(key)
	return err
}

// 16 hex chars from a v4 UUID, same shape the rest of the system keys on.
func generatePrefix() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
