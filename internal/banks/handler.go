package banks

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bankdesk/bankdesk/internal/platform/httpx"
	"github.com/bankdesk/bankdesk/internal/shared"
)

// Handler wires the JSON endpoints for banks.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	v := validator.New()
	// Report violations under the wire field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{logger: logger, service: service, validate: v}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateBankRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if errs := h.fieldErrors(req); errs != nil {
		httpx.ValidationError(w, errs)
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	bank, err := h.service.Create(r.Context(), req, principal.ID)
	if err != nil {
		h.respondError(w, "create bank", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"_id": bank.ID.String()})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 10)

	list, pagination, err := h.service.List(r.Context(), page, pageSize)
	if err != nil {
		h.respondError(w, "list banks", err)
		return
	}
	views := make([]BankView, len(list))
	for i := range list {
		views[i] = toView(&list[i])
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       views,
		"pagination": pagination,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bankID(w, r)
	if !ok {
		return
	}
	bank, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get bank", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(bank))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bankID(w, r)
	if !ok {
		return
	}
	var req UpdateBankRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if errs := h.fieldErrors(req); errs != nil {
		httpx.ValidationError(w, errs)
		return
	}
	if err := h.service.Update(r.Context(), id, req); err != nil {
		h.respondError(w, "update bank", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bankID(w, r)
	if !ok {
		return
	}
	if err := h.service.Archive(r.Context(), id); err != nil {
		h.respondError(w, "archive bank", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bankID(w, r)
	if !ok {
		return
	}
	if err := h.service.Restore(r.Context(), id); err != nil {
		h.respondError(w, "restore bank", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bankID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete bank", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bankID(w, r)
	if !ok {
		return
	}
	var req RequestDeleteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if errs := h.fieldErrors(req); errs != nil {
		httpx.ValidationError(w, errs)
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if err := h.service.RequestDeletion(r.Context(), id, principal.ID, req.ApprovalTo, req.ReasonDelete); err != nil {
		h.respondError(w, "request delete bank", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleApproveDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bankID(w, r)
	if !ok {
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if err := h.service.ApproveDeletion(r.Context(), id, principal.ID); err != nil {
		h.respondError(w, "approve delete bank", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleRejectDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bankID(w, r)
	if !ok {
		return
	}
	var req RejectDeleteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if errs := h.fieldErrors(req); errs != nil {
		httpx.ValidationError(w, errs)
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	if err := h.service.RejectDeletion(r.Context(), id, principal.ID, req.ReasonReject); err != nil {
		h.respondError(w, "reject delete bank", err)
		return
	}
	httpx.NoContent(w)
}

// bankID parses the id URL parameter. An unparseable id names no resource,
// so it answers NotFound rather than a validation failure.
func (h *Handler) bankID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) fieldErrors(req any) map[string][]string {
	err := h.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fieldErrs := make(map[string][]string)
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			fieldErrs[field] = append(fieldErrs[field], fmt.Sprintf("%s is required", field))
		default:
			fieldErrs[field] = append(fieldErrs[field], fmt.Sprintf("%s is invalid", field))
		}
	}
	if len(fieldErrs) == 0 {
		return nil
	}
	return fieldErrs
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		httpx.ValidationError(w, map[string][]string{
			dup.Field: {fmt.Sprintf("%s is exists", dup.Field)},
		})
		return
	}
	if h.logger != nil {
		h.logger.Warn(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
