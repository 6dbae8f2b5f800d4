package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/campaignkit/slotpool/internal/domain/contact"
	"github.com/campaignkit/slotpool/internal/repository"
)

func makeContacts(channel contact.Channel, identities ...string) []contact.Contact {
	now := time.Now().UTC()
	batch := make([]contact.Contact, 0, len(identities))
	for _, identity := range identities {
		batch = append(batch, contact.Contact{
			ID:        uuid.NewString(),
			Channel:   channel,
			Identity:  identity,
			CreatedAt: now,
		})
	}
	return batch
}

func TestContactRepository_InsertBatch(t *testing.T) {
	db := NewTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()

	inserted, err := repo.InsertBatch(ctx, makeContacts(contact.ChannelWhatsApp, "9876543210", "9123456780"))
	require.NoError(t, err)
	require.Equal(t, 2, inserted)

	// Re-inserting the same identities is a no-op
	inserted, err = repo.InsertBatch(ctx, makeContacts(contact.ChannelWhatsApp, "9876543210", "9123456780"))
	require.NoError(t, err)
	require.Equal(t, 0, inserted)

	// The same identity in a different channel is a distinct contact
	inserted, err = repo.InsertBatch(ctx, makeContacts(contact.ChannelEmail, "9876543210"))
	require.NoError(t, err)
	require.Equal(t, 1, inserted)
}

func TestContactRepository_InsertBatch_DuplicateWithinBatch(t *testing.T) {
	db := NewTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()

	inserted, err := repo.InsertBatch(ctx, makeContacts(contact.ChannelWhatsApp, "9876543210", "9876543210"))
	require.NoError(t, err)
	require.Equal(t, 1, inserted)
}

func TestContactRepository_GetByIdentity(t *testing.T) {
	db := NewTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()

	_, err := repo.InsertBatch(ctx, makeContacts(contact.ChannelEmail, "a@b.co"))
	require.NoError(t, err)

	c, err := repo.GetByIdentity(ctx, contact.ChannelEmail, "a@b.co")
	require.NoError(t, err)
	require.Equal(t, "a@b.co", c.Identity)
	require.Equal(t, contact.ChannelEmail, c.Channel)
	require.Empty(t, c.Labels)
	require.Empty(t, c.SlotIDs)
	require.True(t, c.IsNew())

	_, err = repo.GetByIdentity(ctx, contact.ChannelEmail, "missing@b.co")
	require.ErrorIs(t, err, repository.ErrNotFound)

	// Same identity, other channel: not found
	_, err = repo.GetByIdentity(ctx, contact.ChannelWhatsApp, "a@b.co")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestContactRepository_AddLabel(t *testing.T) {
	db := NewTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()

	_, err := repo.InsertBatch(ctx, makeContacts(contact.ChannelWhatsApp, "9876543210"))
	require.NoError(t, err)

	c, err := repo.GetByIdentity(ctx, contact.ChannelWhatsApp, "9876543210")
	require.NoError(t, err)

	require.NoError(t, repo.AddLabel(ctx, c.ID, "vip"))
	require.NoError(t, repo.AddLabel(ctx, c.ID, "vip")) // idempotent
	require.NoError(t, repo.AddLabel(ctx, c.ID, "diwali"))

	c, err = repo.GetByIdentity(ctx, contact.ChannelWhatsApp, "9876543210")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"vip", "diwali"}, c.Labels)

	err = repo.AddLabel(ctx, "no-such-contact", "vip")
	require.ErrorIs(t, err, repository.ErrForeignKeyViolation)
}

func TestContactRepository_CountContacts(t *testing.T) {
	db := NewTestDB(t)
	repo := NewContactRepository(db)
	slots := NewSlotRepository(db)
	ctx := context.Background()

	_, err := repo.InsertBatch(ctx, makeContacts(contact.ChannelWhatsApp, "9000000001", "9000000002", "9000000003"))
	require.NoError(t, err)

	total, used, err := repo.CountContacts(ctx, contact.ChannelWhatsApp)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Equal(t, 0, used)

	_, err = slots.Allocate(ctx, allocReq(contact.ChannelWhatsApp, 2))
	require.NoError(t, err)

	total, used, err = repo.CountContacts(ctx, contact.ChannelWhatsApp)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Equal(t, 2, used)

	total, used, err = repo.CountContacts(ctx, contact.ChannelEmail)
	require.NoError(t, err)
	require.Zero(t, total)
	require.Zero(t, used)
}
