package routes

import (
	"net/http"

	"github.com/zatekoja/claim-appeal/backend/internal/api/handlers"
	"github.com/zatekoja/claim-appeal/backend/internal/api/middleware"
	"github.com/zatekoja/claim-appeal/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	appealHandler      *handlers.AppealHandler
	claimStreamHandler *handlers.ClaimStreamHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router. claimStreamHandler may be nil.
func NewRouter(
	appealHandler *handlers.AppealHandler,
	claimStreamHandler *handlers.ClaimStreamHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                http.NewServeMux(),
		appealHandler:      appealHandler,
		claimStreamHandler: claimStreamHandler,
		allowedOrigins:     allowedOrigins,
		metrics:            metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Appeal endpoints
	r.mux.HandleFunc("POST /api/generate-appeal", r.appealHandler.GenerateAppeal)
	r.mux.HandleFunc("GET /api/claims", r.appealHandler.ListClaims)
	r.mux.HandleFunc("GET /api/claims/{id}", r.appealHandler.GetClaim)

	// SSE stream of newly generated appeals
	if r.claimStreamHandler != nil {
		r.mux.HandleFunc("GET /api/claims/stream", r.claimStreamHandler.StreamClaims)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	// CORS wraps everything so preflights never reach the handlers
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
