package contact

import (
	"strings"
	"time"
)

// Channel identifies which outreach pool a contact belongs to.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelEmail    Channel = "email"
)

// ParseChannel normalizes a caller-supplied channel name.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "whatsapp":
		return ChannelWhatsApp, nil
	case "email":
		return ChannelEmail, nil
	default:
		return "", ErrInvalidChannel
	}
}

// Contact is one channel identity in the pool
type Contact struct {
	ID        string    `json:"id"`
	Channel   Channel   `json:"channel"`
	Identity  string    `json:"identity"`
	SlotIDs   []int64   `json:"slot_ids"`
	Labels    []string  `json:"labels"`
	CreatedAt time.Time `json:"created_at"`
}

// IsNew reports whether the contact has never been allocated to a slot.
func (c *Contact) IsNew() bool {
	return len(c.SlotIDs) == 0
}

// IngestResult summarizes one bulk ingestion call.
type IngestResult struct {
	TotalReceived int      `json:"total_received"`
	Valid         int      `json:"valid"`
	Inserted      int      `json:"inserted"`
	Duplicates    int      `json:"duplicates"`
	Invalid       int      `json:"invalid"`
	InvalidValues []string `json:"invalid_values,omitempty"`
}
