package banks_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/bankdesk/bankdesk/internal/approval"
	"github.com/bankdesk/bankdesk/internal/banks"
	"github.com/bankdesk/bankdesk/internal/shared"
)

// memRepo is an in-memory banks.Repository. The deletion writes replicate
// the conditional-update semantics of the PostgreSQL repository: the
// expected pre-state is re-checked under the lock at commit time, so
// concurrent transitions on one bank cannot both succeed.
type memRepo struct {
	mu    sync.Mutex
	banks map[uuid.UUID]*banks.Bank
}

func newMemRepo() *memRepo {
	return &memRepo{banks: make(map[uuid.UUID]*banks.Bank)}
}

func (m *memRepo) Create(ctx context.Context, bank *banks.Bank) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.banks {
		if existing.Code == bank.Code {
			return &banks.DuplicateError{Field: "code"}
		}
		if existing.Name == bank.Name {
			return &banks.DuplicateError{Field: "name"}
		}
	}
	clone := *bank
	m.banks[bank.ID] = &clone
	return nil
}

func (m *memRepo) Get(ctx context.Context, id uuid.UUID) (*banks.Bank, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bank, ok := m.banks[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *bank
	return &clone, nil
}

func (m *memRepo) List(ctx context.Context, page, pageSize int) ([]banks.Bank, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []banks.Bank
	for _, bank := range m.banks {
		list = append(list, *bank)
	}
	return list, len(list), nil
}

func (m *memRepo) Update(ctx context.Context, bank *banks.Bank) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.banks[bank.ID]
	if !ok {
		return shared.ErrNotFound
	}
	deletion := stored.Deletion
	clone := *bank
	clone.Deletion = deletion
	m.banks[bank.ID] = &clone
	return nil
}

func (m *memRepo) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bank, ok := m.banks[id]
	if !ok {
		return shared.ErrNotFound
	}
	bank.Archived = archived
	return nil
}

func (m *memRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.banks[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.banks, id)
	return nil
}

func (m *memRepo) RequestDeletion(ctx context.Context, id uuid.UUID, next approval.DeletionRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bank, ok := m.banks[id]
	if !ok {
		return shared.ErrNotFound
	}
	switch bank.Deletion.Status {
	case approval.StatusPending:
		return approval.ErrRequestPending
	case approval.StatusApproved:
		return approval.ErrAlreadyApproved
	}
	bank.Deletion = next
	return nil
}

func (m *memRepo) ResolveDeletion(ctx context.Context, id uuid.UUID, actorID int64, next approval.DeletionRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bank, ok := m.banks[id]
	if !ok {
		return shared.ErrNotFound
	}
	if bank.Deletion.Status != approval.StatusPending {
		return shared.ErrNotFound
	}
	if bank.Deletion.ApproverID != actorID {
		return shared.ErrForbidden
	}
	bank.Deletion = next
	return nil
}

func (m *memRepo) PurgeApproved(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var purged int64
	for id, bank := range m.banks {
		if bank.Deletion.Status == approval.StatusApproved {
			delete(m.banks, id)
			purged++
		}
	}
	return purged, nil
}

var _ banks.Repository = (*memRepo)(nil)
