package contact

import (
	"context"

	"github.com/campaignkit/slotpool/internal/domain/audit"
)

// Repository manages contact persistence.
type Repository interface {
	// InsertBatch inserts the batch in one transaction, skipping
	// identities already present, and returns how many rows landed.
	InsertBatch(ctx context.Context, batch []Contact) (int, error)
	GetByIdentity(ctx context.Context, channel Channel, identity string) (*Contact, error)
	AddLabel(ctx context.Context, contactID, label string) error
}

// AuditRepository records pool mutations.
type AuditRepository interface {
	Log(ctx context.Context, entry *audit.Entry) error
}
