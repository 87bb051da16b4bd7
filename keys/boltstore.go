package keys

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/coinsendorg/libcoinsend-go/source"
)

var (
	bucketKeys     = []byte("keys")
	bucketRootKeys = []byte("root_keys")
)

// BoltStore persists encrypted secret keys in bbolt.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("keys: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("keys: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketKeys, bucketRootKeys} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("keys: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("keys: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// PutKey stores an encrypted per-address key, keyed by address.
func (s *BoltStore) PutKey(key SecretKey) error {
	if key.Address == "" || len(key.Data) == 0 {
		return fmt.Errorf("%w: address and data required", ErrInvalidKey)
	}
	data, err := encodeGob(key)
	if err != nil {
		return fmt.Errorf("keys: encode key: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketKeys).Put([]byte(key.Address), data)
	})
}

// PutRootKey stores a wallet's encrypted root key, keyed by wallet id.
func (s *BoltStore) PutRootKey(wallet source.WalletID, encrypted []byte) error {
	if wallet == "" || len(encrypted) == 0 {
		return fmt.Errorf("%w: wallet and data required", ErrInvalidKey)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRootKeys).Put([]byte(wallet), encrypted)
	})
}

// SecretKeys returns all stored per-address keys in address byte order.
func (s *BoltStore) SecretKeys(ctx context.Context) ([]SecretKey, error) {
	var out []SecretKey
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketKeys).ForEach(func(_, v []byte) error {
			var key SecretKey
			if err := decodeGob(v, &key); err != nil {
				return fmt.Errorf("keys: decode key: %w", err)
			}
			out = append(out, key)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RootKey returns the wallet's encrypted root key.
// Returns ErrKeyNotFound if no root key is stored for the wallet.
func (s *BoltStore) RootKey(ctx context.Context, wallet source.WalletID) (SecretKey, error) {
	var key SecretKey
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketRootKeys).Get([]byte(wallet))
		if v == nil {
			return fmt.Errorf("%w: root key for wallet %q", ErrKeyNotFound, wallet)
		}
		key = SecretKey{Address: string(wallet), Data: append([]byte(nil), v...)}
		return nil
	})
	if err != nil {
		return SecretKey{}, err
	}
	return key, nil
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
