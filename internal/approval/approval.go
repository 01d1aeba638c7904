// Package approval implements the deletion-approval state machine shared by
// every approvable resource. One actor requests removal naming an approver;
// only that approver may resolve the request.
package approval

import (
	"errors"
	"time"
)

// Status enumerates deletion request states.
type Status string

const (
	// StatusNone means no deletion has been requested.
	StatusNone Status = "none"
	// StatusPending means a request awaits its approver.
	StatusPending Status = "pending"
	// StatusApproved means the approver accepted the request.
	StatusApproved Status = "approved"
	// StatusRejected means the approver turned the request down.
	StatusRejected Status = "rejected"
)

var (
	// ErrRequestPending rejects a new request while one is still open.
	ErrRequestPending = errors.New("approval: deletion request already pending")
	// ErrAlreadyApproved rejects a new request once deletion was approved.
	ErrAlreadyApproved = errors.New("approval: deletion already approved")
	// ErrNoPendingRequest rejects approve/reject without an open request.
	ErrNoPendingRequest = errors.New("approval: no pending deletion request")
	// ErrNotApprover rejects approve/reject by anyone but the named approver.
	ErrNotApprover = errors.New("approval: actor is not the assigned approver")
	// ErrApproverRequired rejects a request without an approver.
	ErrApproverRequired = errors.New("approval: approver required")
	// ErrReasonRequired rejects a request or rejection without a reason.
	ErrReasonRequired = errors.New("approval: reason required")
)

// DeletionRequest is the approval sub-record attached to a resource. The zero
// value is a valid "none" state. All transitions go through Request, Approve
// and Reject, which keep the per-state field invariants:
// pending carries approver, reason and requestedAt; rejected additionally
// carries reasonReject; approved and none carry no reject reason.
type DeletionRequest struct {
	Status       Status
	ApproverID   int64
	Reason       string
	RequestedAt  time.Time
	ReasonReject string
}

// Request opens a deletion request. Allowed from none and rejected; a
// rejected request may be re-requested and its prior reject reason is
// discarded.
func (r DeletionRequest) Request(approverID int64, reason string, now time.Time) (DeletionRequest, error) {
	switch r.state() {
	case StatusPending:
		return r, ErrRequestPending
	case StatusApproved:
		return r, ErrAlreadyApproved
	}
	if approverID == 0 {
		return r, ErrApproverRequired
	}
	if reason == "" {
		return r, ErrReasonRequired
	}
	return DeletionRequest{
		Status:      StatusPending,
		ApproverID:  approverID,
		Reason:      reason,
		RequestedAt: now,
	}, nil
}

// Approve resolves a pending request in favour of deletion. Only the stored
// approver may act; anything but a pending request is not actionable.
func (r DeletionRequest) Approve(actorID int64) (DeletionRequest, error) {
	if r.state() != StatusPending {
		return r, ErrNoPendingRequest
	}
	if actorID != r.ApproverID {
		return r, ErrNotApprover
	}
	next := r
	next.Status = StatusApproved
	next.ReasonReject = ""
	return next, nil
}

// Reject resolves a pending request against deletion, recording why.
func (r DeletionRequest) Reject(actorID int64, reasonReject string) (DeletionRequest, error) {
	if r.state() != StatusPending {
		return r, ErrNoPendingRequest
	}
	if actorID != r.ApproverID {
		return r, ErrNotApprover
	}
	if reasonReject == "" {
		return r, ErrReasonRequired
	}
	next := r
	next.Status = StatusRejected
	next.ReasonReject = reasonReject
	return next, nil
}

// state normalizes the zero value to StatusNone.
func (r DeletionRequest) state() Status {
	if r.Status == "" {
		return StatusNone
	}
	return r.Status
}
