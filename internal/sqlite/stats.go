package sqlite

import (
	"context"
	"time"

	"github.com/campaignkit/slotpool/internal/domain/contact"
	"github.com/campaignkit/slotpool/internal/domain/slot"
)

// StatsRepository implements stats.Repository by delegating to the
// contact and slot repositories.
type StatsRepository struct {
	contacts *ContactRepository
	slots    *SlotRepository
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *DB) *StatsRepository {
	return &StatsRepository{
		contacts: NewContactRepository(db),
		slots:    NewSlotRepository(db),
	}
}

func (r *StatsRepository) CountContacts(ctx context.Context, channel contact.Channel) (int, int, error) {
	return r.contacts.CountContacts(ctx, channel)
}

func (r *StatsRepository) CountSlots(ctx context.Context, since time.Time) (int, int, error) {
	return r.slots.CountSlots(ctx, since)
}

func (r *StatsRepository) RecentSlots(ctx context.Context, limit int) ([]slot.Ref, error) {
	return r.slots.RecentSlots(ctx, limit)
}
