package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/bankdesk/bankdesk/internal/platform/httpx"
	"github.com/bankdesk/bankdesk/internal/shared"
)

// Middleware verifies bearer tokens and attaches the principal to the
// request context. Routes behind it answer 401 for any absent, malformed,
// expired or forged token before capability checks run.
type Middleware struct {
	Tokens  TokenService
	Service *Service
	Logger  *slog.Logger
}

// RequireToken is the chi middleware enforcing bearer authentication.
func (m Middleware) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		claims, err := m.Tokens.Verify(token)
		if err != nil {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		principal, err := m.Service.Resolve(r.Context(), claims.Subject)
		if err != nil {
			// A valid signature over an unknown subject is still an
			// unauthenticated request.
			if m.Logger != nil {
				m.Logger.Warn("resolve token subject", slog.Int64("subject", claims.Subject), slog.Any("error", err))
			}
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
