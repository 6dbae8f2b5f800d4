package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campaignkit/slotpool/internal/domain/contact"
	"github.com/campaignkit/slotpool/internal/repository"
)

// ContactRepository implements contact.Repository over SQLite
type ContactRepository struct {
	db *DB
}

// NewContactRepository creates a new ContactRepository
func NewContactRepository(db *DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// InsertBatch inserts one batch of contacts in a single transaction.
// Identities already present in the channel's pool are skipped, so the
// returned count is the number of genuinely new rows.
func (r *ContactRepository) InsertBatch(ctx context.Context, batch []contact.Contact) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO contacts (id, channel, identity, created_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range batch {
		result, err := stmt.ExecContext(ctx, c.ID, c.Channel, c.Identity, c.CreatedAt)
		if err != nil {
			if isBusy(err) {
				return 0, repository.ErrConflict
			}
			return 0, fmt.Errorf("failed to insert contact: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		inserted += int(rows)
	}

	if err := tx.Commit(); err != nil {
		if isBusy(err) {
			return 0, repository.ErrConflict
		}
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}

	return inserted, nil
}

// GetByIdentity retrieves a contact with labels and slot memberships
func (r *ContactRepository) GetByIdentity(ctx context.Context, channel contact.Channel, identity string) (*contact.Contact, error) {
	query := `
		SELECT id, channel, identity, created_at
		FROM contacts
		WHERE channel = ? AND identity = ?
	`

	var c contact.Contact
	err := r.db.QueryRowContext(ctx, query, channel, identity).Scan(
		&c.ID,
		&c.Channel,
		&c.Identity,
		&c.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	if err := loadContactExtras(ctx, r.db, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

// AddLabel attaches a label to a contact; re-adding is a no-op
func (r *ContactRepository) AddLabel(ctx context.Context, contactID, label string) error {
	query := `
		INSERT OR IGNORE INTO contact_labels (contact_id, label)
		VALUES (?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, contactID, label)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to add label: %w", err)
	}

	return nil
}

// CountContacts returns the pool size and how many contacts currently
// hold at least one slot membership
func (r *ContactRepository) CountContacts(ctx context.Context, channel contact.Channel) (int, int, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(CASE WHEN EXISTS (
				SELECT 1 FROM slot_members m WHERE m.contact_id = c.id
			) THEN 1 END)
		FROM contacts c
		WHERE c.channel = ?
	`

	var total, used int
	if err := r.db.QueryRowContext(ctx, query, channel).Scan(&total, &used); err != nil {
		return 0, 0, fmt.Errorf("failed to count contacts: %w", err)
	}

	return total, used, nil
}

// loadContactExtras fills in labels and slot memberships (slot_id
// ascending is allocation order, since slot IDs are monotonic).
func loadContactExtras(ctx context.Context, db *DB, c *contact.Contact) error {
	labelRows, err := db.QueryContext(ctx, `
		SELECT label FROM contact_labels
		WHERE contact_id = ?
		ORDER BY label
	`, c.ID)
	if err != nil {
		return fmt.Errorf("failed to get labels: %w", err)
	}
	defer labelRows.Close()

	for labelRows.Next() {
		var label string
		if err := labelRows.Scan(&label); err != nil {
			return fmt.Errorf("failed to scan label: %w", err)
		}
		c.Labels = append(c.Labels, label)
	}
	if err := labelRows.Err(); err != nil {
		return fmt.Errorf("error iterating label rows: %w", err)
	}

	slotRows, err := db.QueryContext(ctx, `
		SELECT slot_id FROM slot_members
		WHERE contact_id = ?
		ORDER BY slot_id
	`, c.ID)
	if err != nil {
		return fmt.Errorf("failed to get slot memberships: %w", err)
	}
	defer slotRows.Close()

	for slotRows.Next() {
		var slotID int64
		if err := slotRows.Scan(&slotID); err != nil {
			return fmt.Errorf("failed to scan slot membership: %w", err)
		}
		c.SlotIDs = append(c.SlotIDs, slotID)
	}
	if err := slotRows.Err(); err != nil {
		return fmt.Errorf("error iterating membership rows: %w", err)
	}

	return nil
}
