package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultActor is recorded when the caller supplies no actor name.
const DefaultActor = "internal"

// Repository manages audit log persistence.
type Repository interface {
	Log(ctx context.Context, entry *Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
}

// Service handles audit trail operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new audit service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record appends an entry, filling in the timestamp and default actor.
func (s *Service) Record(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("nil audit entry")
	}
	if entry.Actor == "" {
		entry.Actor = DefaultActor
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("logging audit entry: %w", err)
	}
	return nil
}

// Recent lists the newest entries, most recent first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return s.repo.List(ctx, limit)
}
