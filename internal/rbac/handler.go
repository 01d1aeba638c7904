package rbac

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bankdesk/bankdesk/internal/platform/httpx"
	"github.com/bankdesk/bankdesk/internal/shared"
)

// Handler exposes read-only role endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: mw}
}

// MountRoutes registers role routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(shared.PermRolesView))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
}

type roleView struct {
	ID          int64     `json:"_id"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.errorLog("list roles", err)
		httpx.RespondError(w, err)
		return
	}
	views := make([]roleView, len(roles))
	for i, role := range roles {
		perms := role.Permissions
		if perms == nil {
			perms = []string{}
		}
		views[i] = roleView{ID: role.ID, Name: role.Name, Permissions: perms, CreatedAt: role.CreatedAt}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": views})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	// An unparseable id names no resource, so it answers NotFound.
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	role, err := h.service.GetRole(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.errorLog("get role", err)
		httpx.RespondError(w, err)
		return
	}
	perms := role.Permissions
	if perms == nil {
		perms = []string{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data": roleView{ID: role.ID, Name: role.Name, Permissions: perms, CreatedAt: role.CreatedAt},
	})
}

func (h *Handler) errorLog(op string, err error) {
	if h.logger != nil {
		h.logger.Error(op, slog.Any("error", err))
	}
}
