package banks

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bankdesk/bankdesk/internal/approval"
	"github.com/bankdesk/bankdesk/internal/platform/httpx"
	"github.com/bankdesk/bankdesk/internal/shared"
)

// Service coordinates access to banks: it validates the requested workflow
// transition against the loaded record, then commits it through the
// repository's conditional update so concurrent transitions on the same
// bank cannot both land.
type Service struct {
	repo      Repository
	logger    *slog.Logger
	now       func() time.Time
	onApprove func(context.Context)
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// OnApprove registers a callback fired after a deletion request is approved,
// typically to enqueue the purge task. Approval does not depend on it.
func (s *Service) OnApprove(fn func(context.Context)) {
	s.onApprove = fn
}

// Create stores a new bank owned by the creating principal.
func (s *Service) Create(ctx context.Context, req CreateBankRequest, createdBy int64) (*Bank, error) {
	bank := &Bank{
		ID:        uuid.New(),
		Code:      req.Code,
		Name:      req.Name,
		Address:   req.Address,
		Phone:     req.Phone,
		Fax:       req.Fax,
		Notes:     req.Notes,
		Accounts:  req.Accounts,
		CreatedBy: createdBy,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, bank); err != nil {
		return nil, err
	}
	return bank, nil
}

// Get loads one bank.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Bank, error) {
	bank, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return bank, nil
}

// List returns a page of banks with pagination metadata.
func (s *Service) List(ctx context.Context, page, pageSize int) ([]Bank, shared.Pagination, error) {
	list, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(page, pageSize, total), nil
}

// Update applies the provided fields to an existing bank.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateBankRequest) error {
	bank, err := s.repo.Get(ctx, id)
	if err != nil {
		return mapError(err)
	}
	if req.Code != nil {
		bank.Code = *req.Code
	}
	if req.Name != nil {
		bank.Name = *req.Name
	}
	if req.Address != nil {
		bank.Address = *req.Address
	}
	if req.Phone != nil {
		bank.Phone = *req.Phone
	}
	if req.Fax != nil {
		bank.Fax = *req.Fax
	}
	if req.Notes != nil {
		bank.Notes = *req.Notes
	}
	if req.Accounts != nil {
		bank.Accounts = *req.Accounts
	}
	return mapError(s.repo.Update(ctx, bank))
}

// Archive hides a bank from regular use without deleting it.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) error {
	return mapError(s.repo.SetArchived(ctx, id, true))
}

// Restore brings an archived bank back.
func (s *Service) Restore(ctx context.Context, id uuid.UUID) error {
	return mapError(s.repo.SetArchived(ctx, id, false))
}

// Delete removes a bank outright.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return mapError(s.repo.Delete(ctx, id))
}

// RequestDeletion opens a deletion request naming an approver. The state
// machine runs against the loaded record first so an invalid transition
// performs no write at all; the conditional update re-checks the pre-state
// at commit time.
func (s *Service) RequestDeletion(ctx context.Context, id uuid.UUID, requesterID, approverID int64, reason string) error {
	bank, err := s.repo.Get(ctx, id)
	if err != nil {
		return mapError(err)
	}
	next, err := bank.Deletion.Request(approverID, reason, s.now().UTC())
	if err != nil {
		return mapError(err)
	}
	if err := s.repo.RequestDeletion(ctx, id, next); err != nil {
		if isSerializationFailure(err) {
			// A concurrent transition on this row won; a request is open.
			return httpx.ErrConflict
		}
		return mapError(err)
	}
	s.info("deletion requested", bank.ID, requesterID)
	return nil
}

// ApproveDeletion resolves a pending request in favour of removal.
func (s *Service) ApproveDeletion(ctx context.Context, id uuid.UUID, actorID int64) error {
	err := s.resolveDeletion(ctx, id, actorID, func(req approval.DeletionRequest) (approval.DeletionRequest, error) {
		return req.Approve(actorID)
	})
	if err != nil {
		return err
	}
	if s.onApprove != nil {
		s.onApprove(ctx)
	}
	return nil
}

// RejectDeletion resolves a pending request against removal.
func (s *Service) RejectDeletion(ctx context.Context, id uuid.UUID, actorID int64, reasonReject string) error {
	return s.resolveDeletion(ctx, id, actorID, func(req approval.DeletionRequest) (approval.DeletionRequest, error) {
		return req.Reject(actorID, reasonReject)
	})
}

// PurgeApproved removes every bank whose deletion request was approved.
func (s *Service) PurgeApproved(ctx context.Context) (int64, error) {
	return s.repo.PurgeApproved(ctx)
}

func (s *Service) resolveDeletion(ctx context.Context, id uuid.UUID, actorID int64, transition func(approval.DeletionRequest) (approval.DeletionRequest, error)) error {
	bank, err := s.repo.Get(ctx, id)
	if err != nil {
		return mapError(err)
	}
	next, err := transition(bank.Deletion)
	if err != nil {
		return mapError(err)
	}
	if err := s.repo.ResolveDeletion(ctx, id, actorID, next); err != nil {
		if isSerializationFailure(err) {
			// Lost the race to a concurrent resolve: no pending request left.
			return httpx.ErrNotFound
		}
		return mapError(err)
	}
	s.info("deletion request resolved", bank.ID, actorID)
	return nil
}

func (s *Service) info(msg string, bankID uuid.UUID, actorID int64) {
	if s.logger != nil {
		s.logger.Info(msg, slog.String("bank_id", bankID.String()), slog.Int64("actor_id", actorID))
	}
}

// isSerializationFailure reports SQLSTATE 40001, which Postgres raises for
// the loser of a row race under snapshot isolation. The conditional updates
// run at Read Committed where this should not occur, but a stricter session
// default must not turn a lost race into an internal error.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

// mapError translates storage and state machine errors into the shared
// HTTP taxonomy.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, shared.ErrNotFound):
		return httpx.ErrNotFound
	case errors.Is(err, shared.ErrForbidden):
		return httpx.ErrForbidden
	case errors.Is(err, approval.ErrNoPendingRequest):
		// No actionable pending item from the approver's perspective.
		return httpx.ErrNotFound
	case errors.Is(err, approval.ErrNotApprover):
		return httpx.ErrForbidden
	case errors.Is(err, approval.ErrRequestPending), errors.Is(err, approval.ErrAlreadyApproved):
		return httpx.ErrConflict
	case errors.Is(err, approval.ErrApproverRequired), errors.Is(err, approval.ErrReasonRequired):
		return httpx.ErrValidation
	default:
		return err
	}
}
