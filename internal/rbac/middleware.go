package rbac

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bankdesk/bankdesk/internal/platform/httpx"
	"github.com/bankdesk/bankdesk/internal/shared"
)

// Middleware gates handlers on capabilities. The check order is fixed: a
// missing principal answers 401 (the token middleware normally runs first),
// a missing capability answers 403, then the handler runs.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// Require ensures the current principal holds the given capability.
func (m Middleware) Require(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			allowed, err := m.Service.Authorize(r.Context(), principal.ID, capability)
			if err != nil {
				// The token resolved but the user row is gone; the credential
				// no longer names a principal.
				if errors.Is(err, shared.ErrNotFound) {
					httpx.RespondError(w, httpx.ErrUnauthorized)
					return
				}
				if m.Logger != nil {
					m.Logger.Error("authorize", slog.String("capability", capability), slog.Any("error", err))
				}
				httpx.RespondError(w, err)
				return
			}
			if !allowed {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
