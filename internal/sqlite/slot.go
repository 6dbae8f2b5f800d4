package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/campaignkit/slotpool/internal/domain/contact"
	"github.com/campaignkit/slotpool/internal/domain/slot"
	"github.com/campaignkit/slotpool/internal/repository"
)

// SlotRepository implements slot.Repository over SQLite.
//
// SQLite serializes writers, but the select-then-tag step in Allocate
// spans a read and several writes inside one transaction. The
// per-channel mutex makes the whole unit mutually exclusive so two
// racing allocations over overlapping candidates can never both tag
// the same contact. Reconciliations are serialized per slot the same
// way.
type SlotRepository struct {
	db      *DB
	allocMu map[contact.Channel]*sync.Mutex
	slotMu  sync.Map // slotID -> *sync.Mutex
}

// NewSlotRepository creates a new SlotRepository
func NewSlotRepository(db *DB) *SlotRepository {
	return &SlotRepository{
		db: db,
		allocMu: map[contact.Channel]*sync.Mutex{
			contact.ChannelWhatsApp: {},
			contact.ChannelEmail:    {},
		},
	}
}

// Allocate selects eligible contacts and creates the slot atomically.
// On shortfall it returns *slot.InsufficientPoolError with nothing
// mutated; on a lost race with another writer it returns
// repository.ErrConflict.
func (r *SlotRepository) Allocate(ctx context.Context, req slot.AllocateRequest) (*slot.Slot, error) {
	mu, ok := r.allocMu[req.Channel]
	if !ok {
		return nil, repository.ErrInvalidInput
	}
	mu.Lock()
	defer mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT c.id, c.identity FROM contacts c WHERE c.channel = ?`
	args := []interface{}{req.Channel}

	switch req.Filter.Freshness {
	case slot.FreshnessNew:
		query += ` AND NOT EXISTS (SELECT 1 FROM slot_members m WHERE m.contact_id = c.id)`
	case slot.FreshnessOld:
		query += ` AND EXISTS (SELECT 1 FROM slot_members m WHERE m.contact_id = c.id)`
	}

	if req.Filter.Label != "" {
		query += ` AND EXISTS (SELECT 1 FROM contact_labels l WHERE l.contact_id = c.id AND l.label = ?)`
		args = append(args, req.Filter.Label)
	}

	query += ` ORDER BY c.rowid LIMIT ?`
	args = append(args, req.RequiredCount)

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select eligible contacts: %w", err)
	}

	type candidate struct {
		id       string
		identity string
	}
	var selected []candidate
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.id, &c.identity); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		selected = append(selected, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}
	rows.Close()

	if len(selected) < req.RequiredCount {
		return nil, &slot.InsufficientPoolError{
			Required:  req.RequiredCount,
			Available: len(selected),
		}
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO slots (channel, freshness, label, requested_count, count, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		req.Channel,
		req.Filter.Freshness,
		nullString(req.Filter.Label),
		req.RequiredCount,
		len(selected),
		req.RequestedBy,
		now,
	)
	if err != nil {
		if isBusy(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("failed to create slot: %w", err)
	}

	slotID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get slot id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO slot_members (slot_id, contact_id, identity, position)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare member insert: %w", err)
	}
	defer stmt.Close()

	values := make([]string, 0, len(selected))
	for i, c := range selected {
		if _, err := stmt.ExecContext(ctx, slotID, c.id, c.identity, i); err != nil {
			if isBusy(err) {
				return nil, repository.ErrConflict
			}
			return nil, fmt.Errorf("failed to insert slot member: %w", err)
		}
		values = append(values, c.identity)
	}

	if err := tx.Commit(); err != nil {
		if isBusy(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("failed to commit allocation: %w", err)
	}

	return &slot.Slot{
		ID:             slotID,
		Channel:        req.Channel,
		Filter:         req.Filter,
		Values:         values,
		RequestedCount: req.RequiredCount,
		Count:          len(values),
		CreatedBy:      req.RequestedBy,
		CreatedAt:      now,
	}, nil
}

// RemoveValues deletes the given identities from the slot's membership
// table and recomputes the slot count, all in one transaction. A
// single delete per identity severs both the slot's value and the
// contact's membership, since slot_members is the only record of
// either. Identities not in the slot are skipped.
func (r *SlotRepository) RemoveValues(ctx context.Context, slotID int64, values []string) (int, error) {
	mu := r.slotLock(slotID)
	mu.Lock()
	defer mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM slots WHERE slot_id = ?)`, slotID).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to check slot existence: %w", err)
	}
	if !exists {
		return 0, repository.ErrNotFound
	}

	removed := 0
	if len(values) > 0 {
		placeholders := make([]string, len(values))
		args := make([]interface{}, 0, len(values)+1)
		args = append(args, slotID)
		for i, v := range values {
			placeholders[i] = "?"
			args = append(args, v)
		}

		query := fmt.Sprintf(
			`DELETE FROM slot_members WHERE slot_id = ? AND identity IN (%s)`,
			strings.Join(placeholders, ","),
		)

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			if isBusy(err) {
				return 0, repository.ErrConflict
			}
			return 0, fmt.Errorf("failed to remove slot members: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		removed = int(rows)
	}

	if removed > 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE slots
			SET count = (SELECT COUNT(*) FROM slot_members WHERE slot_id = ?)
			WHERE slot_id = ?
		`, slotID, slotID)
		if err != nil {
			if isBusy(err) {
				return 0, repository.ErrConflict
			}
			return 0, fmt.Errorf("failed to update slot count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		if isBusy(err) {
			return 0, repository.ErrConflict
		}
		return 0, fmt.Errorf("failed to commit reconciliation: %w", err)
	}

	return removed, nil
}

// Get retrieves a slot by ID with its values in allocation order
func (r *SlotRepository) Get(ctx context.Context, slotID int64) (*slot.Slot, error) {
	query := `
		SELECT slot_id, channel, freshness, label, requested_count, count, created_by, created_at
		FROM slots
		WHERE slot_id = ?
	`

	s, err := scanSlot(r.db.QueryRowContext(ctx, query, slotID))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}

	if err := r.loadValues(ctx, s); err != nil {
		return nil, err
	}

	return s, nil
}

// List returns all slots ordered by creation time, newest first
func (r *SlotRepository) List(ctx context.Context) ([]slot.Slot, error) {
	query := `
		SELECT slot_id, channel, freshness, label, requested_count, count, created_by, created_at
		FROM slots
		ORDER BY slot_id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
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

	for i := range slots {
		if err := r.loadValues(ctx, &slots[i]); err != nil {
			return nil, err
		}
	}

	return slots, nil
}

// CountSlots returns the total slot count and how many were created
// at or after the given time
func (r *SlotRepository) CountSlots(ctx context.Context, since time.Time) (int, int, error) {
	query := `
		SELECT COUNT(*), COUNT(CASE WHEN created_at >= ? THEN 1 END)
		FROM slots
	`

	var total, recent int
	if err := r.db.QueryRowContext(ctx, query, since).Scan(&total, &recent); err != nil {
		return 0, 0, fmt.Errorf("failed to count slots: %w", err)
	}

	return total, recent, nil
}

// RecentSlots returns lightweight references to the newest slots
func (r *SlotRepository) RecentSlots(ctx context.Context, limit int) ([]slot.Ref, error) {
	query := `
		SELECT slot_id, channel
		FROM slots
		ORDER BY slot_id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent slots: %w", err)
	}
	defer rows.Close()

	var refs []slot.Ref
	for rows.Next() {
		var ref slot.Ref
		if err := rows.Scan(&ref.ID, &ref.Channel); err != nil {
			return nil, fmt.Errorf("failed to scan slot ref: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slot ref rows: %w", err)
	}

	return refs, nil
}

func (r *SlotRepository) loadValues(ctx context.Context, s *slot.Slot) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT identity FROM slot_members
		WHERE slot_id = ?
		ORDER BY position
	`, s.ID)
	if err != nil {
		return fmt.Errorf("failed to get slot values: %w", err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var identity string
		if err := rows.Scan(&identity); err != nil {
			return fmt.Errorf("failed to scan slot value: %w", err)
		}
		values = append(values, identity)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating slot value rows: %w", err)
	}

	s.Values = values
	return nil
}

func (r *SlotRepository) slotLock(slotID int64) *sync.Mutex {
	mu, _ := r.slotMu.LoadOrStore(slotID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (*slot.Slot, error) {
	var s slot.Slot
	var label sql.NullString
	err := row.Scan(
		&s.ID,
		&s.Channel,
		&s.Filter.Freshness,
		&label,
		&s.RequestedCount,
		&s.Count,
		&s.CreatedBy,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if label.Valid {
		s.Filter.Label = label.String
	}
	return &s, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
