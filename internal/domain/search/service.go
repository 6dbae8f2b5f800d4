// Package search provides the read-only query surface over the
// contact pool and slot history. It never participates in allocation.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/campaignkit/slotpool/internal/domain/contact"
	"github.com/campaignkit/slotpool/internal/domain/slot"
)

// Default result caps, bounding response cost per category.
const (
	DefaultContactLimit = 50
	DefaultSlotLimit    = 20
)

// ErrEmptyQuery indicates a blank search query.
var ErrEmptyQuery = errors.New("query is required")

// Result groups matches by category. Empty slices, never an error,
// signal no matches.
type Result struct {
	WhatsApp []contact.Contact `json:"whatsapp"`
	Email    []contact.Contact `json:"email"`
	Slots    []slot.Slot       `json:"slots"`
}

// Repository runs the category queries against the store.
type Repository interface {
	SearchContacts(ctx context.Context, channel contact.Channel, query string, limit int) ([]contact.Contact, error)
	SearchSlots(ctx context.Context, query string, limit int) ([]slot.Slot, error)
}

// Service handles free-text search across contacts and slots.
type Service struct {
	repo         Repository
	contactLimit int
	slotLimit    int
	logger       *slog.Logger
}

// NewService creates a new search service. Non-positive limits fall
// back to the defaults.
func NewService(repo Repository, contactLimit, slotLimit int, logger *slog.Logger) *Service {
	if contactLimit <= 0 {
		contactLimit = DefaultContactLimit
	}
	if slotLimit <= 0 {
		slotLimit = DefaultSlotLimit
	}
	return &Service{
		repo:         repo,
		contactLimit: contactLimit,
		slotLimit:    slotLimit,
		logger:       logger,
	}
}

// Search matches contacts by partial identity or exact label, and
// slots by numeric ID, exact filter label, or partial provenance.
func (s *Service) Search(ctx context.Context, query string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, ErrEmptyQuery
	}

	result := Result{
		WhatsApp: []contact.Contact{},
		Email:    []contact.Contact{},
		Slots:    []slot.Slot{},
	}

	whatsapp, err := s.repo.SearchContacts(ctx, contact.ChannelWhatsApp, query, s.contactLimit)
	if err != nil {
		return Result{}, fmt.Errorf("searching whatsapp contacts: %w", err)
	}
	if whatsapp != nil {
		result.WhatsApp = whatsapp
	}

	email, err := s.repo.SearchContacts(ctx, contact.ChannelEmail, query, s.contactLimit)
	if err != nil {
		return Result{}, fmt.Errorf("searching email contacts: %w", err)
	}
	if email != nil {
		result.Email = email
	}

	slots, err := s.repo.SearchSlots(ctx, query, s.slotLimit)
	if err != nil {
		return Result{}, fmt.Errorf("searching slots: %w", err)
	}
	if slots != nil {
		result.Slots = slots
	}

	return result, nil
}
