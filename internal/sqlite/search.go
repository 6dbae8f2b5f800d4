package sqlite

import (
	"context"
	"fmt"
	"strconv"

	"github.com/campaignkit/slotpool/internal/domain/contact"
	"github.com/campaignkit/slotpool/internal/domain/slot"
)

// SearchRepository implements search.Repository over SQLite
type SearchRepository struct {
	db *DB
}

// NewSearchRepository creates a new SearchRepository
func NewSearchRepository(db *DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// SearchContacts matches contacts by case-insensitive identity
// substring or exact label
func (r *SearchRepository) SearchContacts(ctx context.Context, channel contact.Channel, query string, limit int) ([]contact.Contact, error) {
	sqlQuery := `
		SELECT c.id, c.channel, c.identity, c.created_at
		FROM contacts c
		WHERE c.channel = ?
		  AND (
			instr(lower(c.identity), lower(?)) > 0
			OR EXISTS (SELECT 1 FROM contact_labels l WHERE l.contact_id = c.id AND l.label = ?)
		  )
		ORDER BY c.rowid
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, sqlQuery, channel, query, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search contacts: %w", err)
	}
	defer rows.Close()

	var contacts []contact.Contact
	for rows.Next() {
		var c contact.Contact
		if err := rows.Scan(&c.ID, &c.Channel, &c.Identity, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contact rows: %w", err)
	}

	for i := range contacts {
		if err := loadContactExtras(ctx, r.db, &contacts[i]); err != nil {
			return nil, err
		}
	}

	return contacts, nil
}

// SearchSlots matches slots by exact numeric ID, exact filter label,
// or provenance substring
func (r *SearchRepository) SearchSlots(ctx context.Context, query string, limit int) ([]slot.Slot, error) {
	sqlQuery := `
		SELECT slot_id, channel, freshness, label, requested_count, count, created_by, created_at
		FROM slots
		WHERE label = ?
		   OR instr(lower(created_by), lower(?)) > 0
		   OR instr(lower(channel), lower(?)) > 0
	`
	args := []interface{}{query, query, query}

	if slotID, err := strconv.ParseInt(query, 10, 64); err == nil {
		sqlQuery += ` OR slot_id = ?`
		args = append(args, slotID)
	}

	sqlQuery += ` ORDER BY slot_id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search slots: %w", err)
	}
	defer rows.Close()

	var slots []slot.Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slot rows: %w", err)
	}

	slotRepo := &SlotRepository{db: r.db}
	for i := range slots {
		if err := slotRepo.loadValues(ctx, &slots[i]); err != nil {
			return nil, err
		}
	}

	return slots, nil
}
