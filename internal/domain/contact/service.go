package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campaignkit/slotpool/internal/domain/audit"
	"github.com/campaignkit/slotpool/internal/repository"
)

// DefaultBatchSize bounds how many contacts one ingestion transaction
// may insert.
const DefaultBatchSize = 10000

// Service handles contact pool business logic: bulk ingestion and
// label management.
type Service struct {
	contacts  Repository
	audits    AuditRepository
	batchSize int
	logger    *slog.Logger
}

// NewService creates a new contact service. A non-positive batchSize
// falls back to DefaultBatchSize.
func NewService(contacts Repository, audits AuditRepository, batchSize int, logger *slog.Logger) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{
		contacts:  contacts,
		audits:    audits,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Ingest normalizes, validates and idempotently merges raw values into
// the pool for one channel. Each batch commits independently; on a
// mid-batch failure the returned result reflects the progress already
// committed alongside the error.
func (s *Service) Ingest(ctx context.Context, channel Channel, rawValues []string, actor string) (IngestResult, error) {
	result := IngestResult{TotalReceived: len(rawValues)}

	channel, err := ParseChannel(string(channel))
	if err != nil {
		return result, err
	}

	var valid []string
	for _, raw := range rawValues {
		normalized, ok := Normalize(channel, raw)
		if !ok {
			result.Invalid++
			result.InvalidValues = append(result.InvalidValues, raw)
			continue
		}
		valid = append(valid, normalized)
	}
	result.Valid = len(valid)

	now := time.Now().UTC()
	for start := 0; start < len(valid); start += s.batchSize {
		end := start + s.batchSize
		if end > len(valid) {
			end = len(valid)
		}

		batch := make([]Contact, 0, end-start)
		for _, identity := range valid[start:end] {
			batch = append(batch, Contact{
				ID:        uuid.NewString(),
				Channel:   channel,
				Identity:  identity,
				CreatedAt: now,
			})
		}

		inserted, err := s.contacts.InsertBatch(ctx, batch)
		result.Inserted += inserted
		if err != nil {
			result.Duplicates = result.Valid - result.Inserted
			return result, fmt.Errorf("inserting batch at offset %d: %w", start, err)
		}
	}
	result.Duplicates = result.Valid - result.Inserted

	if s.audits != nil {
		_ = s.audits.Log(ctx, &audit.Entry{
			Actor:     actorOrDefault(actor),
			Action:    audit.ActionIngest,
			Entity:    string(channel),
			Details:   fmt.Sprintf("received=%d inserted=%d duplicates=%d invalid=%d", result.TotalReceived, result.Inserted, result.Duplicates, result.Invalid),
			CreatedAt: time.Now().UTC(),
		})
	}

	if s.logger != nil {
		s.logger.Info("ingestion complete",
			"channel", channel,
			"received", result.TotalReceived,
			"inserted", result.Inserted,
			"duplicates", result.Duplicates,
			"invalid", result.Invalid,
		)
	}

	return result, nil
}

// AddLabel attaches a label to one contact. Re-adding an existing
// label is a no-op.
func (s *Service) AddLabel(ctx context.Context, channel Channel, identity, label, actor string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return ErrEmptyLabel
	}

	c, err := s.contacts.GetByIdentity(ctx, channel, identity)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrContactNotFound
		}
		return fmt.Errorf("loading contact: %w", err)
	}

	if err := s.contacts.AddLabel(ctx, c.ID, label); err != nil {
		return fmt.Errorf("adding label: %w", err)
	}

	if s.audits != nil {
		_ = s.audits.Log(ctx, &audit.Entry{
			Actor:     actorOrDefault(actor),
			Action:    audit.ActionAddLabel,
			Entity:    identity,
			Details:   label,
			CreatedAt: time.Now().UTC(),
		})
	}

	return nil
}

// Get returns one contact with labels and slot memberships loaded.
func (s *Service) Get(ctx context.Context, channel Channel, identity string) (*Contact, error) {
	c, err := s.contacts.GetByIdentity(ctx, channel, identity)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("getting contact: %w", err)
	}
	return c, nil
}

func actorOrDefault(actor string) string {
	if strings.TrimSpace(actor) == "" {
		return audit.DefaultActor
	}
	return actor
}
