package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/ariefcatur/go-pos-backend/internal/apperr"
	"github.com/ariefcatur/go-pos-backend/internal/auth"
)

// Registrar mounts a resource's routes on an authenticated router.
type Registrar interface {
	Register(r chi.Router)
}

type RouterConfig struct {
	CORSOrigins []string
	Verifier    *auth.Verifier
}

func NewRouter(cfg RouterConfig, resources ...Registrar) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		AllowCredentials: true,
	}).Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, apperr.NotFound("route %s not found", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{
			StatusCode: http.StatusMethodNotAllowed,
			Message:    "method " + r.Method + " not allowed",
			Error:      "METHOD_NOT_ALLOWED",
		})
	})

	r.Group(func(r chi.Router) {
		if cfg.Verifier != nil {
			r.Use(cfg.Verifier.Middleware(writeError))
		}
		for _, res := range resources {
			res.Register(r)
		}
	})
	return r
}
