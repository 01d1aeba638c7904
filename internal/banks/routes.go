package banks

import (
	"github.com/go-chi/chi/v5"

	"github.com/bankdesk/bankdesk/internal/rbac"
	"github.com/bankdesk/bankdesk/internal/shared"
)

// MountRoutes registers bank routes. The caller mounts this subtree behind
// the bearer-token middleware; capability gates are applied per group here.
func (h *Handler) MountRoutes(r chi.Router, mw rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(shared.PermBankView))
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(shared.PermBankCreate))
		r.Post("/", h.handleCreate)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(shared.PermBankUpdate))
		r.Patch("/{id}", h.handleUpdate)
		r.Post("/{id}/archive", h.handleArchive)
		r.Post("/{id}/restore", h.handleRestore)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.Require(shared.PermBankDelete))
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/request-delete", h.handleRequestDelete)
		r.Post("/{id}/request-delete/approve", h.handleApproveDelete)
		r.Post("/{id}/request-delete/reject", h.handleRejectDelete)
	})
}
