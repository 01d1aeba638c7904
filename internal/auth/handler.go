package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bankdesk/bankdesk/internal/platform/httpx"
	"github.com/bankdesk/bankdesk/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/signin", h.handleSignin)
}

type signinRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signinResponse struct {
	ID          int64   `json:"_id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Username    string  `json:"username"`
	Password    *string `json:"password"`
	AccessToken string  `json:"accessToken"`
}

func (h *Handler) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	session, err := h.service.Signin(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		if h.logger != nil {
			h.logger.Error("signin", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}

	// Password is serialized as an explicit null so no digest ever leaks.
	httpx.JSON(w, http.StatusOK, signinResponse{
		ID:          session.UserID,
		Name:        session.Name,
		Email:       session.Email,
		Username:    session.Username,
		Password:    nil,
		AccessToken: session.AccessToken,
	})
}
