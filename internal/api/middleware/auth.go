package middleware

import (
	"context"
	"net/http"
	"strings"

	apiContext "chatstore/internal/api/context"
	"chatstore/internal/engine/apikeys"
	"chatstore/internal/pkg/errors"
)

const (
	APIKeyHeader   = "X-API-Key"
	AdminKeyHeader = "X-Admin-Key"

	adminPathPrefix = "/api/v1/api-keys"
)

type AuthMiddleware struct {
	keys        *apikeys.Service
	adminKey    string
	exemptPaths []string
}

func NewAuthMiddleware(keys *apikeys.Service, adminKey string, exemptPaths []string) *AuthMiddleware {
	return &AuthMiddleware{
		keys:        keys,
		adminKey:    adminKey,
		exemptPaths: exemptPaths,
	}
}

// Handle is the identity stage. Key-management paths are gated by the
// configured admin key; everything else needs a valid user API key. All
// rejection reasons collapse into the same 401 body.
func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if IsExempt(r.URL.Path, m.exemptPaths) {
			next(w, r)
			return
		}

		if strings.HasPrefix(r.URL.Path, adminPathPrefix) {
			if m.adminKey == "" || r.Header.Get(AdminKeyHeader) != m.adminKey {
				errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid API key", nil)
				return
			}
			next(w, r)
			return
		}

		identity, err := m.keys.Authenticate(r.Header.Get(APIKeyHeader))
		if err != nil {
			if err == apikeys.ErrUnauthorized {
				errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid API key", nil)
			} else {
				errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Unexpected server error", nil)
			}
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Identity, identity)
		next(w, r.WithContext(ctx))
	}
}

func IsExempt(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
