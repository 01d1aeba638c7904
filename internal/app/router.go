package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/bankdesk/bankdesk/internal/auth"
	"github.com/bankdesk/bankdesk/internal/banks"
	"github.com/bankdesk/bankdesk/internal/platform/httpx"
	"github.com/bankdesk/bankdesk/internal/rbac"
	"github.com/bankdesk/bankdesk/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	AuthHandler    *auth.Handler
	AuthMiddleware auth.Middleware
	RBACMiddleware rbac.Middleware
	BanksHandler   *banks.Handler
	UsersHandler   *users.Handler
	RolesHandler   *rbac.Handler
}

// NewRouter constructs the chi.Router with bankdesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondError(w, httpx.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondError(w, httpx.ErrNotFound)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/v1/auth", func(r chi.Router) {
		// Credential guessing gets a much tighter limit than the rest of the API.
		r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		params.AuthHandler.MountRoutes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireToken)
		r.Route("/v1/banks", func(r chi.Router) {
			params.BanksHandler.MountRoutes(r, params.RBACMiddleware)
		})
		if params.UsersHandler != nil {
			r.Route("/v1/users", func(r chi.Router) {
				params.UsersHandler.MountRoutes(r, params.RBACMiddleware)
			})
		}
		if params.RolesHandler != nil {
			r.Route("/v1/roles", params.RolesHandler.MountRoutes)
		}
	})

	return r
}
