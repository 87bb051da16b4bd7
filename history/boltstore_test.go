package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinsendorg/libcoinsend-go/dispatch"
	"github.com/coinsendorg/libcoinsend-go/engine"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// --- History tests ---

func TestAppendAndEntries_Chronological(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Appended out of order; listing is creation-time order.
	require.NoError(t, store.Append(ctx, "w1", &dispatch.HistoryEntry{TxID: "bb", Fee: 2, CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, store.Append(ctx, "w1", &dispatch.HistoryEntry{TxID: "aa", Fee: 1, CreatedAt: base}))
	require.NoError(t, store.Append(ctx, "w2", &dispatch.HistoryEntry{TxID: "cc", Fee: 3, CreatedAt: base}))

	entries, err := store.Entries(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, entries, 2, "only w1's own entries")
	assert.Equal(t, "aa", entries[0].TxID)
	assert.Equal(t, "bb", entries[1].TxID)
	assert.Equal(t, uint64(1), entries[0].Fee)
}

func TestAppend_RoundTripsFields(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	in := &dispatch.HistoryEntry{
		TxID:      "deadbeef",
		RawTx:     []byte{0x01, 0x02},
		Fee:       42,
		Inputs:    []string{"1A", "1B"},
		Outputs:   []string{"1C", "1D"},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Append(ctx, "w1", in))

	entries, err := store.Entries(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, in, entries[0])
}

func TestAppend_Validation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.Append(ctx, "", &dispatch.HistoryEntry{TxID: "aa"})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	err = store.Append(ctx, "w1", &dispatch.HistoryEntry{})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	err = store.Append(ctx, "w1", nil)
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

// --- Pending tests ---

func TestPendingPutListRemove(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	ptx := &dispatch.PendingTx{
		Wallet:    "w1",
		TxID:      "aa",
		RawTxHex:  "0100",
		Spends:    []engine.Outpoint{{TxID: "ff", Vout: 1}},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Put(ctx, ptx))
	require.NoError(t, store.Put(ctx, &dispatch.PendingTx{Wallet: "w2", TxID: "bb"}))

	pending, err := store.List(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, pending, 1, "only w1's own pending txs")
	assert.Equal(t, ptx, pending[0])

	require.NoError(t, store.Remove(ctx, "w1", "aa"))
	pending, err = store.List(ctx, "w1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPendingPut_Overwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &dispatch.PendingTx{Wallet: "w1", TxID: "aa", RawTxHex: "01"}))
	require.NoError(t, store.Put(ctx, &dispatch.PendingTx{Wallet: "w1", TxID: "aa", RawTxHex: "02"}))

	pending, err := store.List(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "02", pending[0].RawTxHex)
}

func TestPendingRemove_UnknownTxID(t *testing.T) {
	store := openTestStore(t)
	assert.NoError(t, store.Remove(context.Background(), "w1", "nope"))
}

func TestPendingPut_Validation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.Put(ctx, nil), ErrInvalidEntry)
	assert.ErrorIs(t, store.Put(ctx, &dispatch.PendingTx{TxID: "aa"}), ErrInvalidEntry)
	assert.ErrorIs(t, store.Put(ctx, &dispatch.PendingTx{Wallet: "w1"}), ErrInvalidEntry)
}
