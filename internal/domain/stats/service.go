// Package stats aggregates pool and slot counters for the dashboard.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campaignkit/slotpool/internal/domain/contact"
	"github.com/campaignkit/slotpool/internal/domain/slot"
)

// ChannelCounts summarizes one channel's pool usage. Used means the
// contact currently belongs to at least one slot.
type ChannelCounts struct {
	Total  int `json:"total"`
	Used   int `json:"used"`
	Unused int `json:"unused"`
}

// SlotCounts summarizes slot issuance.
type SlotCounts struct {
	Total int `json:"total"`
	Today int `json:"today"`
}

// Overview is the dashboard payload.
type Overview struct {
	WhatsApp    ChannelCounts `json:"whatsapp"`
	Email       ChannelCounts `json:"email"`
	Slots       SlotCounts    `json:"slots"`
	RecentSlots []slot.Ref    `json:"recent_slots"`
}

// Repository runs the counter queries.
type Repository interface {
	CountContacts(ctx context.Context, channel contact.Channel) (total, used int, err error)
	CountSlots(ctx context.Context, since time.Time) (total, recent int, err error)
	RecentSlots(ctx context.Context, limit int) ([]slot.Ref, error)
}

const recentSlotLimit = 5

// Service computes dashboard overviews.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new stats service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Overview gathers current counters across both channels and slots.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	var overview Overview

	for _, ch := range []contact.Channel{contact.ChannelWhatsApp, contact.ChannelEmail} {
		total, used, err := s.repo.CountContacts(ctx, ch)
		if err != nil {
			return Overview{}, fmt.Errorf("counting %s contacts: %w", ch, err)
		}
		counts := ChannelCounts{Total: total, Used: used, Unused: total - used}
		if ch == contact.ChannelWhatsApp {
			overview.WhatsApp = counts
		} else {
			overview.Email = counts
		}
	}

	now := time.Now().UTC()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	total, today, err := s.repo.CountSlots(ctx, todayStart)
	if err != nil {
		return Overview{}, fmt.Errorf("counting slots: %w", err)
	}
	overview.Slots = SlotCounts{Total: total, Today: today}

	recent, err := s.repo.RecentSlots(ctx, recentSlotLimit)
	if err != nil {
		return Overview{}, fmt.Errorf("listing recent slots: %w", err)
	}
	if recent == nil {
		recent = []slot.Ref{}
	}
	overview.RecentSlots = recent

	return overview, nil
}
