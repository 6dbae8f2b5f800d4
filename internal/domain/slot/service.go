package slot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/campaignkit/slotpool/internal/domain/audit"
	"github.com/campaignkit/slotpool/internal/domain/contact"
	"github.com/campaignkit/slotpool/internal/repository"
)

// Service handles slot allocation and reconciliation.
type Service struct {
	slots  Repository
	audits AuditRepository
	logger *slog.Logger
}

// NewService creates a new slot service.
func NewService(slots Repository, audits AuditRepository, logger *slog.Logger) *Service {
	return &Service{slots: slots, audits: audits, logger: logger}
}

// Allocate carves a new slot of exactly req.RequiredCount eligible
// contacts out of the pool, or fails without mutating anything.
func (s *Service) Allocate(ctx context.Context, req AllocateRequest) (*Slot, error) {
	if req.RequiredCount <= 0 {
		return nil, ErrInvalidCount
	}
	channel, err := contact.ParseChannel(string(req.Channel))
	if err != nil {
		return nil, err
	}
	req.Channel = channel
	freshness, err := ParseFreshness(string(req.Filter.Freshness))
	if err != nil {
		return nil, err
	}
	req.Filter.Freshness = freshness
	req.Filter.Label = strings.TrimSpace(req.Filter.Label)
	if strings.TrimSpace(req.RequestedBy) == "" {
		req.RequestedBy = audit.DefaultActor
	}

	created, err := s.slots.Allocate(ctx, req)
	if err != nil {
		var insufficient *InsufficientPoolError
		switch {
		case errors.As(err, &insufficient):
			return nil, err
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrConflict
		default:
			return nil, fmt.Errorf("allocating slot: %w", err)
		}
	}

	if s.audits != nil {
		_ = s.audits.Log(ctx, &audit.Entry{
			Actor:     created.CreatedBy,
			Action:    audit.ActionAllocate,
			Entity:    fmt.Sprintf("slot:%d", created.ID),
			Details:   fmt.Sprintf("channel=%s count=%d freshness=%s", created.Channel, created.Count, created.Filter.Freshness),
			CreatedAt: time.Now().UTC(),
		})
	}

	if s.logger != nil {
		s.logger.Info("slot allocated",
			"slot_id", created.ID,
			"channel", created.Channel,
			"count", created.Count,
			"freshness", created.Filter.Freshness,
		)
	}

	return created, nil
}

// Reconcile removes reported failed values from a slot, returning the
// matching contacts to eligibility. Values not present in the slot are
// skipped, which makes repeat submissions of the same report no-ops.
func (s *Service) Reconcile(ctx context.Context, slotID int64, failedValues []string, actor string) (ReconcileResult, error) {
	removed, err := s.slots.RemoveValues(ctx, slotID, failedValues)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ReconcileResult{}, ErrSlotNotFound
		case errors.Is(err, repository.ErrConflict):
			return ReconcileResult{}, ErrConflict
		default:
			return ReconcileResult{}, fmt.Errorf("reconciling slot %d: %w", slotID, err)
		}
	}

	if strings.TrimSpace(actor) == "" {
		actor = audit.DefaultActor
	}

	if s.audits != nil && removed > 0 {
		_ = s.audits.Log(ctx, &audit.Entry{
			Actor:     actor,
			Action:    audit.ActionReconcile,
			Entity:    fmt.Sprintf("slot:%d", slotID),
			Details:   fmt.Sprintf("removed=%d reported=%d", removed, len(failedValues)),
			CreatedAt: time.Now().UTC(),
		})
	}

	if s.logger != nil {
		s.logger.Info("slot reconciled", "slot_id", slotID, "removed", removed, "reported", len(failedValues))
	}

	return ReconcileResult{Removed: removed}, nil
}

// Get returns one slot with its values, newest allocation metadata
// included.
func (s *Service) Get(ctx context.Context, slotID int64) (*Slot, error) {
	sl, err := s.slots.Get(ctx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("getting slot %d: %w", slotID, err)
	}
	return sl, nil
}

// List returns every issued slot, newest first.
func (s *Service) List(ctx context.Context) ([]Slot, error) {
	return s.slots.List(ctx)
}
