// Package history persists the payment trail: an append-only per-wallet
// history of sent transactions, and the set of pending (built but not yet
// confirmed) transactions whose outpoints must not be spent again.
package history

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/coinsendorg/libcoinsend-go/dispatch"
	"github.com/coinsendorg/libcoinsend-go/source"
)

var (
	bucketHistory = []byte("history")
	bucketPending = []byte("pending")
)

// keySep separates composite key segments. Wallet ids and txids are
// printable strings and never contain a NUL byte.
const keySep = byte(0x00)

// BoltStore persists history entries and pending transactions in bbolt.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface checks.
var (
	_ dispatch.HistoryStore = (*BoltStore)(nil)
	_ dispatch.PendingStore = (*BoltStore)(nil)
)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("history: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("history: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketHistory, bucketPending} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("history: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Append stores one history entry under the wallet. Keys embed the entry's
// creation time, so listing returns entries in chronological order.
func (s *BoltStore) Append(ctx context.Context, wallet source.WalletID, entry *dispatch.HistoryEntry) error {
	if wallet == "" || entry == nil || entry.TxID == "" {
		return fmt.Errorf("%w: wallet and txid required", ErrInvalidEntry)
	}
	data, err := encodeGob(entry)
	if err != nil {
		return fmt.Errorf("history: encode entry: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketHistory).Put(historyKey(wallet, entry), data)
	})
}

// Entries returns the wallet's history in chronological order.
func (s *BoltStore) Entries(ctx context.Context, wallet source.WalletID) ([]*dispatch.HistoryEntry, error) {
	var out []*dispatch.HistoryEntry
	prefix := walletPrefix(wallet)
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketHistory).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var entry dispatch.HistoryEntry
			if err := decodeGob(v, &entry); err != nil {
				return fmt.Errorf("history: decode entry: %w", err)
			}
			out = append(out, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Put registers a pending transaction, keyed by wallet and txid.
func (s *BoltStore) Put(ctx context.Context, ptx *dispatch.PendingTx) error {
	if ptx == nil || ptx.Wallet == "" || ptx.TxID == "" {
		return fmt.Errorf("%w: wallet and txid required", ErrInvalidEntry)
	}
	data, err := encodeGob(ptx)
	if err != nil {
		return fmt.Errorf("history: encode pending tx: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPending).Put(pendingKey(ptx.Wallet, ptx.TxID), data)
	})
}

// List returns the wallet's pending transactions in txid byte order.
func (s *BoltStore) List(ctx context.Context, wallet source.WalletID) ([]*dispatch.PendingTx, error) {
	var out []*dispatch.PendingTx
	prefix := walletPrefix(wallet)
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketPending).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var ptx dispatch.PendingTx
			if err := decodeGob(v, &ptx); err != nil {
				return fmt.Errorf("history: decode pending tx: %w", err)
			}
			out = append(out, &ptx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Remove drops a pending transaction, typically once it has confirmed.
// Removing an unknown txid is not an error.
func (s *BoltStore) Remove(ctx context.Context, wallet source.WalletID, txid string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPending).Delete(pendingKey(wallet, txid))
	})
}

// walletPrefix encodes "wallet\x00" for prefix scans.
func walletPrefix(wallet source.WalletID) []byte {
	return append([]byte(wallet), keySep)
}

// historyKey encodes "wallet\x00<unixnano be64>\x00txid". The timestamp
// keeps entries chronological; the txid breaks ties.
func historyKey(wallet source.WalletID, entry *dispatch.HistoryEntry) []byte {
	k := walletPrefix(wallet)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(entry.CreatedAt.UnixNano()))
	k = append(k, ts[:]...)
	k = append(k, keySep)
	return append(k, entry.TxID...)
}

// pendingKey encodes "wallet\x00txid".
func pendingKey(wallet source.WalletID, txid string) []byte {
	return append(walletPrefix(wallet), txid...)
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
