package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

// TestStoreRecordAndRecent tests the append-and-query round trip
func TestStoreRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	records := []UpdateRecord{
		{Timestamp: base, IPv4: "1.2.3.4", Status: 200},
		{Timestamp: base.Add(time.Minute), IPv4: "1.2.3.5", IPv6: "::1", Status: 200},
		{Timestamp: base.Add(2 * time.Minute), IPv4: "1.2.3.5", Error: "connection refused"},
	}

	for _, rec := range records {
		require.NoError(t, store.Record(ctx, rec))
	}

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// Newest first
	assert.Equal(t, "connection refused", recent[0].Error)
	assert.Zero(t, recent[0].Status)
	assert.Equal(t, "::1", recent[1].IPv6)
	assert.Equal(t, 200, recent[1].Status)
	assert.True(t, recent[0].Timestamp.After(recent[1].Timestamp))
}

// TestStoreRecentEmpty tests querying an empty history
func TestStoreRecentEmpty(t *testing.T) {
	store := openTestStore(t)

	recent, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

// TestStoreRecentLimitClamp tests out-of-range limits
func TestStoreRecentLimitClamp(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, UpdateRecord{
			Timestamp: time.Now().UTC().Add(time.Duration(i) * time.Second),
			IPv4:      "1.2.3.4",
			Status:    200,
		}))
	}

	recent, err := store.Recent(ctx, -1)
	require.NoError(t, err)
	assert.Len(t, recent, 5)
}
