package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"

	"chatstore/internal/engine/ratelimit"
	"chatstore/internal/pkg/errors"
)

type RateLimitMiddleware struct {
	limiter     *ratelimit.Limiter
	exemptPaths []string
}

func NewRateLimitMiddleware(limiter *ratelimit.Limiter, exemptPaths []string) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter:     limiter,
		exemptPaths: exemptPaths,
	}
}

// Handle runs after the identity stage and consumes one token for the
// client fingerprint. 429 means the caller is throttled; 503 means the
// throttle backend itself is down and the limiter is failing closed.
func (m *RateLimitMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if IsExempt(r.URL.Path, m.exemptPaths) {
			next(w, r)
			return
		}

		err := m.limiter.Acquire(r.Context(), Fingerprint(r))
		if err != nil {
			if err == ratelimit.ErrRateLimited {
				retryAfter := int(m.limiter.RetryAfter().Seconds())
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				errors.WriteError(w, http.StatusTooManyRequests, errors.ErrCodeRateLimitExceeded, "Rate limit exceeded. Try again later.", nil)
			} else {
				errors.WriteError(w, http.StatusServiceUnavailable, errors.ErrCodeServiceUnavailable, "Rate limiting backend is unavailable", nil)
			}
			return
		}

		next(w, r)
	}
}

// Fingerprint hashes whichever credential header was present together with
// the client IP, keeping raw keys and addresses out of the shared store's
// key space.
func Fingerprint(r *http.Request) string {
	credential := r.Header.Get(APIKeyHeader)
	if credential == "" {
		credential = r.Header.Get(AdminKeyHeader)
	}
	if credential == "" {
		credential = "unknown"
	}

	sum := sha256.Sum256([]byte(credential + ":" + clientIP(r)))
	return hex.EncodeToString(sum[:])
}

func clientIP(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if strings.TrimSpace(forwarded) == "" {
		return r.RemoteAddr
	}
	return strings.TrimSpace(strings.Split(forwarded, ",")[0])
}
