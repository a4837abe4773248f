package routes

import (
	"net/http"

	"github.com/medcoda/codepair/internal/api/handlers"
	"github.com/medcoda/codepair/internal/api/middleware"
	"github.com/medcoda/codepair/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux               *http.ServeMux
	validationHandler *handlers.ValidationHandler
	metrics           *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(validationHandler *handlers.ValidationHandler, metrics *observability.Metrics) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		validationHandler: validationHandler,
		metrics:           metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	r.mux.HandleFunc("POST /api/validate", r.validationHandler.Validate)
	r.mux.HandleFunc("POST /api/reviews", r.validationHandler.SubmitReview)

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	return handler
}
