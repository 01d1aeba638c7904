package banks

import (
	"time"

	"github.com/google/uuid"

	"github.com/bankdesk/bankdesk/internal/approval"
)

// Account is a single account held at a bank, stored inline with it.
type Account struct {
	Branch string `json:"branch"`
	Number string `json:"number"`
	Name   string `json:"name"`
	Notes  string `json:"notes,omitempty"`
}

// Bank is the approvable master-data record. Deletion carries the
// approval sub-record; it is created in the none state and only ever
// overwritten through the approval state machine.
type Bank struct {
	ID        uuid.UUID
	Code      string
	Name      string
	Address   string
	Phone     string
	Fax       string
	Notes     string
	Accounts  []Account
	Archived  bool
	CreatedBy int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Deletion  approval.DeletionRequest
}
