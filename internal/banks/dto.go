package banks

import (
	"time"

	"github.com/bankdesk/bankdesk/internal/approval"
)

type CreateBankRequest struct {
	Code     string    `json:"code" validate:"required,max=50"`
	Name     string    `json:"name" validate:"required,max=200"`
	Address  string    `json:"address,omitempty"`
	Phone    string    `json:"phone,omitempty" validate:"omitempty,max=50"`
	Fax      string    `json:"fax,omitempty" validate:"omitempty,max=50"`
	Notes    string    `json:"notes,omitempty"`
	Accounts []Account `json:"accounts,omitempty" validate:"dive"`
}

type UpdateBankRequest struct {
	Code     *string    `json:"code,omitempty" validate:"omitempty,max=50"`
	Name     *string    `json:"name,omitempty" validate:"omitempty,max=200"`
	Address  *string    `json:"address,omitempty"`
	Phone    *string    `json:"phone,omitempty" validate:"omitempty,max=50"`
	Fax      *string    `json:"fax,omitempty" validate:"omitempty,max=50"`
	Notes    *string    `json:"notes,omitempty"`
	Accounts *[]Account `json:"accounts,omitempty" validate:"omitempty,dive"`
}

type RequestDeleteRequest struct {
	ApprovalTo   int64  `json:"approvalTo" validate:"required"`
	ReasonDelete string `json:"reasonDelete" validate:"required"`
}

type RejectDeleteRequest struct {
	ReasonReject string `json:"reasonReject" validate:"required"`
}

// BankView is the outward representation. Deletion sub-record fields use the
// requestApprovalDelete* wire names.
type BankView struct {
	ID                string     `json:"_id"`
	Code              string     `json:"code"`
	Name              string     `json:"name"`
	Address           string     `json:"address,omitempty"`
	Phone             string     `json:"phone,omitempty"`
	Fax               string     `json:"fax,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	Accounts          []Account  `json:"accounts"`
	Archived          bool       `json:"archived"`
	CreatedBy         int64      `json:"createdBy_id"`
	CreatedAt         time.Time  `json:"createdAt"`
	DeleteStatus      string     `json:"requestApprovalDeleteStatus"`
	DeleteApprovalTo  *int64     `json:"requestApprovalDeleteTo_id"`
	DeleteReason      *string    `json:"requestApprovalDeleteReason"`
	DeleteRequestedAt *time.Time `json:"requestApprovalDeleteAt"`
	DeleteReasonRej   *string    `json:"requestApprovalDeleteReasonReject"`
}

func toView(bank *Bank) BankView {
	accounts := bank.Accounts
	if accounts == nil {
		accounts = []Account{}
	}
	view := BankView{
		ID:           bank.ID.String(),
		Code:         bank.Code,
		Name:         bank.Name,
		Address:      bank.Address,
		Phone:        bank.Phone,
		Fax:          bank.Fax,
		Notes:        bank.Notes,
		Accounts:     accounts,
		Archived:     bank.Archived,
		CreatedBy:    bank.CreatedBy,
		CreatedAt:    bank.CreatedAt,
		DeleteStatus: string(approval.StatusNone),
	}
	deletion := bank.Deletion
	if deletion.Status != "" {
		view.DeleteStatus = string(deletion.Status)
	}
	if deletion.Status == approval.StatusPending || deletion.Status == approval.StatusApproved || deletion.Status == approval.StatusRejected {
		approver := deletion.ApproverID
		reason := deletion.Reason
		at := deletion.RequestedAt
		view.DeleteApprovalTo = &approver
		view.DeleteReason = &reason
		view.DeleteRequestedAt = &at
	}
	if deletion.Status == approval.StatusRejected {
		reject := deletion.ReasonReject
		view.DeleteReasonRej = &reject
	}
	return view
}
