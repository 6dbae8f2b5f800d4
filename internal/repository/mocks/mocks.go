package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/campaignkit/slotpool/internal/domain/audit"
	"github.com/campaignkit/slotpool/internal/domain/contact"
	"github.com/campaignkit/slotpool/internal/domain/slot"
)

// ContactRepository is a mock for contact.Repository.
type ContactRepository struct {
	mock.Mock
}

func (m *ContactRepository) InsertBatch(ctx context.Context, batch []contact.Contact) (int, error) {
	args := m.Called(ctx, batch)
	return args.Int(0), args.Error(1)
}

func (m *ContactRepository) GetByIdentity(ctx context.Context, channel contact.Channel, identity string) (*contact.Contact, error) {
	args := m.Called(ctx, channel, identity)
	if c, ok := args.Get(0).(*contact.Contact); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ContactRepository) AddLabel(ctx context.Context, contactID, label string) error {
	args := m.Called(ctx, contactID, label)
	return args.Error(0)
}

func (m *ContactRepository) CountContacts(ctx context.Context, channel contact.Channel) (int, int, error) {
	args := m.Called(ctx, channel)
	return args.Int(0), args.Int(1), args.Error(2)
}

// SlotRepository is a mock for slot.Repository.
type SlotRepository struct {
	mock.Mock
}

func (m *SlotRepository) Allocate(ctx context.Context, req slot.AllocateRequest) (*slot.Slot, error) {
	args := m.Called(ctx, req)
	if s, ok := args.Get(0).(*slot.Slot); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SlotRepository) RemoveValues(ctx context.Context, slotID int64, values []string) (int, error) {
	args := m.Called(ctx, slotID, values)
	return args.Int(0), args.Error(1)
}

func (m *SlotRepository) Get(ctx context.Context, slotID int64) (*slot.Slot, error) {
	args := m.Called(ctx, slotID)
	if s, ok := args.Get(0).(*slot.Slot); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SlotRepository) List(ctx context.Context) ([]slot.Slot, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]slot.Slot); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SlotRepository) CountSlots(ctx context.Context, since time.Time) (int, int, error) {
	args := m.Called(ctx, since)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *SlotRepository) RecentSlots(ctx context.Context, limit int) ([]slot.Ref, error) {
	args := m.Called(ctx, limit)
	if list, ok := args.Get(0).([]slot.Ref); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// SearchRepository is a mock for search.Repository.
type SearchRepository struct {
	mock.Mock
}

func (m *SearchRepository) SearchContacts(ctx context.Context, channel contact.Channel, query string, limit int) ([]contact.Contact, error) {
	args := m.Called(ctx, channel, query, limit)
	if list, ok := args.Get(0).([]contact.Contact); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SearchRepository) SearchSlots(ctx context.Context, query string, limit int) ([]slot.Slot, error) {
	args := m.Called(ctx, query, limit)
	if list, ok := args.Get(0).([]slot.Slot); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// AuditRepository is a mock for audit.Repository.
type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) Log(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *AuditRepository) List(ctx context.Context, limit int) ([]audit.Entry, error) {
	args := m.Called(ctx, limit)
	if list, ok := args.Get(0).([]audit.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
