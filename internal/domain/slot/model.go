package slot

import (
	"strings"
	"time"

	"github.com/campaignkit/slotpool/internal/domain/contact"
)

// Freshness classifies contacts by allocation history.
type Freshness string

const (
	// FreshnessNew matches contacts never allocated to any slot.
	FreshnessNew Freshness = "new"
	// FreshnessOld matches contacts with at least one slot membership.
	FreshnessOld Freshness = "old"
	// FreshnessAny applies no history constraint.
	FreshnessAny Freshness = "any"
)

// ParseFreshness normalizes a caller-supplied freshness class. The
// legacy UI value "shuffled" carries no sampling policy and is treated
// as FreshnessAny.
func ParseFreshness(s string) (Freshness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new":
		return FreshnessNew, nil
	case "old":
		return FreshnessOld, nil
	case "any", "shuffled", "":
		return FreshnessAny, nil
	default:
		return "", ErrInvalidFreshness
	}
}

// Filter is the eligibility predicate a slot was carved out with. It
// is retained on the slot for audit and never re-evaluated.
type Filter struct {
	Freshness Freshness `json:"freshness"`
	Label     string    `json:"label,omitempty"`
}

// Slot is a fixed carve-out of contact identities issued to a
// campaign. Values only shrink after creation, via reconciliation.
type Slot struct {
	ID             int64           `json:"slot_id"`
	Channel        contact.Channel `json:"channel"`
	Filter         Filter          `json:"filter"`
	Values         []string        `json:"values"`
	RequestedCount int             `json:"requested_count"`
	Count          int             `json:"count"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Ref is a lightweight slot reference for listings.
type Ref struct {
	ID      int64           `json:"slot_id"`
	Channel contact.Channel `json:"channel"`
}

// AllocateRequest describes one slot allocation.
type AllocateRequest struct {
	Channel       contact.Channel
	RequiredCount int
	Filter        Filter
	RequestedBy   string
}

// ReconcileResult reports how many values a reconciliation removed.
type ReconcileResult struct {
	Removed int `json:"removed"`
}

// RequiredFromSchedule converts the legacy duration/interval request
// shape into a contact count.
func RequiredFromSchedule(duration, interval int) int {
	if interval <= 0 {
		return 0
	}
	return duration / interval
}
