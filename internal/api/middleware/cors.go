package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"chatstore/internal/platform/config"
)

type CORSMiddleware struct {
	cfg config.CORSConfig
}

func NewCORSMiddleware(cfg config.CORSConfig) *CORSMiddleware {
	return &CORSMiddleware{cfg: cfg}
}

func (m *CORSMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := "*"
		if len(m.cfg.AllowedOrigins) > 0 {
			origin = strings.Join(m.cfg.AllowedOrigins, ", ")
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)

		if len(m.cfg.AllowedMethods) > 0 {
			w.Header().Set("Access-Control-Allow-Methods", strings.Join(m.cfg.AllowedMethods, ", "))
		}
		if len(m.cfg.AllowedHeaders) > 0 {
			w.Header().Set("Access-Control-Allow-Headers", strings.Join(m.cfg.AllowedHeaders, ", "))
		}
		if len(m.cfg.ExposedHeaders) > 0 {
			w.Header().Set("Access-Control-Expose-Headers", strings.Join(m.cfg.ExposedHeaders, ", "))
		}
		if m.cfg.MaxAge > 0 {
			w.Header().Set("Access-Control-Max-Age", strconv.Itoa(m.cfg.MaxAge))
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}
