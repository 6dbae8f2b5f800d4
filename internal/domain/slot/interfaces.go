package slot

import (
	"context"

	"github.com/campaignkit/slotpool/internal/domain/audit"
)

// Repository manages slot persistence. Allocate and RemoveValues are
// transactional: they either fully commit or leave no trace.
type Repository interface {
	// Allocate selects eligible contacts and creates the slot as one
	// atomic unit. It returns an *InsufficientPoolError on shortfall
	// and repository.ErrConflict when it lost a race with another
	// writer.
	Allocate(ctx context.Context, req AllocateRequest) (*Slot, error)
	// RemoveValues drops the given identities from the slot and from
	// the matching contacts' memberships, returning how many were
	// actually removed. Unknown identities are skipped.
	RemoveValues(ctx context.Context, slotID int64, values []string) (int, error)
	Get(ctx context.Context, slotID int64) (*Slot, error)
	List(ctx context.Context) ([]Slot, error)
}

// AuditRepository records slot mutations.
type AuditRepository interface {
	Log(ctx context.Context, entry *audit.Entry) error
}
