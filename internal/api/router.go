package api

import (
	"context"
	"net/http"

	apiContext "chatstore/internal/api/context"
	"chatstore/internal/api/handlers"
	"chatstore/internal/api/middleware"

	"github.com/julienschmidt/httprouter"
)

type Dependencies struct {
	APIKeyHandler  *handlers.APIKeyHandler
	SessionHandler *handlers.SessionHandler
	MessageHandler *handlers.MessageHandler
	HealthHandler  *handlers.HealthHandler

	CORSMiddleware      *middleware.CORSMiddleware
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
}

func NewRouter(deps *Dependencies) http.Handler {
	router := httprouter.New()

	// Exempt from auth and rate limiting
	router.GET("/health", wrap(deps.HealthHandler.Check))

	// Admin key management (X-Admin-Key)
	router.POST("/api/v1/api-keys", wrap(deps.APIKeyHandler.Create))
	router.GET("/api/v1/api-keys", wrap(deps.APIKeyHandler.List))
	router.DELETE("/api/v1/api-keys/:key_id", wrap(deps.APIKeyHandler.Revoke))

	// Chat sessions (X-API-Key)
	router.POST("/api/v1/sessions", wrap(deps.SessionHandler.Create))
	router.GET("/api/v1/sessions", wrap(deps.SessionHandler.List))
	router.PATCH("/api/v1/sessions/:session_id/rename", wrap(deps.SessionHandler.Rename))
	router.PATCH("/api/v1/sessions/:session_id/favorite", wrap(deps.SessionHandler.UpdateFavorite))
	router.DELETE("/api/v1/sessions/:session_id", wrap(deps.SessionHandler.Delete))

	// Chat messages
	router.POST("/api/v1/sessions/:session_id/messages", wrap(deps.MessageHandler.Add))
	router.GET("/api/v1/sessions/:session_id/messages", wrap(deps.MessageHandler.List))

	// Pipeline order is fixed: request id, then identity, then rate limit.
	// A stage failure short-circuits everything after it.
	pipeline := chain(router.ServeHTTP,
		middleware.RequestID,
		deps.CORSMiddleware.Handle,
		deps.AuthMiddleware.Handle,
		deps.RateLimitMiddleware.Handle,
	)

	return http.HandlerFunc(pipeline)
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
