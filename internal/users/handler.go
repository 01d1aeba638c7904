package users

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bankdesk/bankdesk/internal/platform/httpx"
	"github.com/bankdesk/bankdesk/internal/rbac"
	"github.com/bankdesk/bankdesk/internal/shared"
)

// Handler manages user administration endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router, mw rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(shared.PermUsersView))
		r.Get("/", h.listUsers)
	})
}

type userView struct {
	ID        int64     `json:"_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	RoleID    int64     `json:"role_id"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListUsers(r.Context())
	if err != nil {
		if h.logger != nil {
			h.logger.Error("list users", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	views := make([]userView, len(list))
	for i, user := range list {
		views[i] = userView{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			Name:      user.Name,
			RoleID:    user.RoleID,
			CreatedAt: user.CreatedAt,
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": views})
}
