package banks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bankdesk/bankdesk/internal/approval"
	"github.com/bankdesk/bankdesk/internal/platform/db"
	"github.com/bankdesk/bankdesk/internal/shared"
)

// DuplicateError reports a unique constraint hit on a named field.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("banks: duplicate %s", e.Field)
}

// Repository defines persistence operations for banks. The three deletion
// writes are conditional updates: the WHERE clause encodes the expected
// pre-state so that concurrent transitions on one row cannot both commit.
type Repository interface {
	Create(ctx context.Context, bank *Bank) error
	Get(ctx context.Context, id uuid.UUID) (*Bank, error)
	List(ctx context.Context, page, pageSize int) ([]Bank, int, error)
	Update(ctx context.Context, bank *Bank) error
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	RequestDeletion(ctx context.Context, id uuid.UUID, next approval.DeletionRequest) error
	ResolveDeletion(ctx context.Context, id uuid.UUID, actorID int64, next approval.DeletionRequest) error
	PurgeApproved(ctx context.Context) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const bankColumns = `id, code, name, address, phone, fax, notes, accounts, archived, created_by,
	created_at, updated_at, deletion_status, deletion_approver_id, deletion_reason,
	deletion_requested_at, deletion_reason_reject`

// Create inserts a bank with its deletion sub-record in the none state.
func (r *PGRepository) Create(ctx context.Context, bank *Bank) error {
	accounts, err := json.Marshal(bank.Accounts)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO banks
		(id, code, name, address, phone, fax, notes, accounts, archived, created_by, created_at, updated_at, deletion_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, $9, $10, $10, 'none')`,
		bank.ID, bank.Code, bank.Name, bank.Address, bank.Phone, bank.Fax, bank.Notes,
		accounts, bank.CreatedBy, bank.CreatedAt)
	return mapUniqueViolation(err)
}

// Get fetches a bank by id.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (*Bank, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bankColumns+` FROM banks WHERE id = $1`, id)
	return scanBank(row)
}

// List returns a page of banks plus the total count.
func (r *PGRepository) List(ctx context.Context, page, pageSize int) ([]Bank, int, error) {
	if pageSize <= 0 {
		pageSize = 10
	}
	if page <= 0 {
		page = 1
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM banks`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+bankColumns+` FROM banks ORDER BY name LIMIT $1 OFFSET $2`,
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []Bank
	for rows.Next() {
		bank, err := scanBank(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *bank)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Update persists the mutable master-data fields.
func (r *PGRepository) Update(ctx context.Context, bank *Bank) error {
	accounts, err := json.Marshal(bank.Accounts)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE banks SET
		code = $2, name = $3, address = $4, phone = $5, fax = $6, notes = $7, accounts = $8, updated_at = NOW()
		WHERE id = $1`,
		bank.ID, bank.Code, bank.Name, bank.Address, bank.Phone, bank.Fax, bank.Notes, accounts)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SetArchived flips the archive flag.
func (r *PGRepository) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE banks SET archived = $2, updated_at = NOW() WHERE id = $1`, id, archived)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a bank row outright.
func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM banks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// RequestDeletion commits a none/rejected -> pending transition. The update
// only lands while the stored status still allows a new request. Runs at
// Read Committed so a concurrent loser's UPDATE re-checks the WHERE clause
// after the winner commits, misses cleanly, and is classified from the
// committed state instead of failing with a serialization error.
func (r *PGRepository) RequestDeletion(ctx context.Context, id uuid.UUID, next approval.DeletionRequest) error {
	return db.WithTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE banks SET
			deletion_status = 'pending',
			deletion_approver_id = $2,
			deletion_reason = $3,
			deletion_requested_at = $4,
			deletion_reason_reject = NULL,
			updated_at = NOW()
			WHERE id = $1 AND deletion_status IN ('none', 'rejected')`,
			id, next.ApproverID, next.Reason, next.RequestedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			return nil
		}
		return classifyRequestMiss(ctx, tx, id)
	})
}

// ResolveDeletion commits a pending -> approved/rejected transition. The
// stored status must still be pending and the stored approver must be the
// acting principal; a lost race observes the post-state and fails NotFound.
// Read Committed isolation for the same reason as RequestDeletion.
func (r *PGRepository) ResolveDeletion(ctx context.Context, id uuid.UUID, actorID int64, next approval.DeletionRequest) error {
	var reasonReject *string
	if next.Status == approval.StatusRejected {
		reasonReject = &next.ReasonReject
	}
	return db.WithTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE banks SET
			deletion_status = $3,
			deletion_reason_reject = $4,
			updated_at = NOW()
			WHERE id = $1 AND deletion_status = 'pending' AND deletion_approver_id = $2`,
			id, actorID, string(next.Status), reasonReject)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			return nil
		}
		return classifyResolveMiss(ctx, tx, id)
	})
}

// PurgeApproved deletes every bank whose deletion request resolved to
// approved. Used by the background purge task.
func (r *PGRepository) PurgeApproved(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM banks WHERE deletion_status = 'approved'`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func classifyRequestMiss(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	bank, err := scanBank(tx.QueryRow(ctx, `SELECT `+bankColumns+` FROM banks WHERE id = $1`, id))
	if err != nil {
		return err
	}
	switch bank.Deletion.Status {
	case approval.StatusPending:
		return approval.ErrRequestPending
	case approval.StatusApproved:
		return approval.ErrAlreadyApproved
	}
	return shared.ErrNotFound
}

func classifyResolveMiss(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	bank, err := scanBank(tx.QueryRow(ctx, `SELECT `+bankColumns+` FROM banks WHERE id = $1`, id))
	if err != nil {
		return err
	}
	if bank.Deletion.Status == approval.StatusPending {
		// Still pending, so the only way the update missed is an approver
		// mismatch.
		return shared.ErrForbidden
	}
	return shared.ErrNotFound
}

func scanBank(row pgx.Row) (*Bank, error) {
	var (
		bank         Bank
		accounts     []byte
		status       string
		approverID   *int64
		reason       *string
		requestedAt  *time.Time
		reasonReject *string
	)
	err := row.Scan(
		&bank.ID, &bank.Code, &bank.Name, &bank.Address, &bank.Phone, &bank.Fax, &bank.Notes,
		&accounts, &bank.Archived, &bank.CreatedBy, &bank.CreatedAt, &bank.UpdatedAt,
		&status, &approverID, &reason, &requestedAt, &reasonReject,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if len(accounts) > 0 {
		if err := json.Unmarshal(accounts, &bank.Accounts); err != nil {
			return nil, err
		}
	}
	bank.Deletion.Status = approval.Status(status)
	if approverID != nil {
		bank.Deletion.ApproverID = *approverID
	}
	if reason != nil {
		bank.Deletion.Reason = *reason
	}
	if requestedAt != nil {
		bank.Deletion.RequestedAt = *requestedAt
	}
	if reasonReject != nil {
		bank.Deletion.ReasonReject = *reasonReject
	}
	return &bank, nil
}

func mapUniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "banks_code_key":
			return &DuplicateError{Field: "code"}
		case "banks_name_key":
			return &DuplicateError{Field: "name"}
		}
		return &DuplicateError{Field: "code"}
	}
	return err
}

var _ Repository = (*PGRepository)(nil)
