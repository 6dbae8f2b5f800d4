package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campaignkit/slotpool/internal/domain/audit"
)

func TestAuditRepository_LogAndList(t *testing.T) {
	db := NewTestDB(t)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	entries := []audit.Entry{
		{Actor: "alice", Action: audit.ActionIngest, Entity: "whatsapp", Details: "inserted=3"},
		{Actor: "bob", Action: audit.ActionAllocate, Entity: "slot:1"},
		{Actor: "alice", Action: audit.ActionAddLabel, Entity: "9876543210", Details: "vip"},
	}
	for i := range entries {
		entries[i].CreatedAt = time.Now().UTC()
		require.NoError(t, repo.Log(ctx, &entries[i]))
		require.NotZero(t, entries[i].ID)
	}

	// Newest first
	listed, err := repo.List(ctx, 100)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	require.Equal(t, audit.ActionAddLabel, listed[0].Action)
	require.Equal(t, audit.ActionIngest, listed[2].Action)
	require.Equal(t, "vip", listed[0].Details)
	require.Empty(t, listed[1].Details)

	listed, err = repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, listed, 2)
}
