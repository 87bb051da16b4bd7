// Package directory persists the wallet→account→address relations the
// money-source resolver walks. Listings iterate bbolt keys in byte order,
// which gives the stable, deterministic ordering wallet-scope resolution
// relies on (the "first" account of a wallet is always the same).
package directory

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/coinsendorg/libcoinsend-go/source"
)

var (
	bucketAccounts  = []byte("accounts")
	bucketAddresses = []byte("addresses")
	bucketOwnership = []byte("ownership")
)

// keySep separates composite key segments. Wallet ids and addresses are
// printable strings and never contain a NUL byte.
const keySep = byte(0x00)

// BoltDirectory is a bbolt-backed address/account directory.
type BoltDirectory struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ source.Directory = (*BoltDirectory)(nil)

// OpenBoltDirectory opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltDirectory(dbPath string) (*BoltDirectory, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("directory: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("directory: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketAccounts, bucketAddresses, bucketOwnership} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("directory: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("directory: create buckets: %w", err)
	}

	return &BoltDirectory{db: db}, nil
}

// Close closes the underlying database.
func (d *BoltDirectory) Close() error { return d.db.Close() }

// PutAccount registers an account under its wallet.
func (d *BoltDirectory) PutAccount(account source.AccountID) error {
	if account.Wallet == "" {
		return fmt.Errorf("%w: empty wallet id", ErrInvalidRecord)
	}
	return d.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAccounts).Put(accountKey(account), []byte{})
	})
}

// PutAddress registers an address under its account and marks it owned by
// the account's wallet.
func (d *BoltDirectory) PutAddress(meta source.AddressMeta) error {
	if meta.Address == "" || meta.Account.Wallet == "" {
		return fmt.Errorf("%w: address and wallet required", ErrInvalidRecord)
	}
	data, err := encodeGob(meta)
	if err != nil {
		return fmt.Errorf("directory: encode address meta: %w", err)
	}
	return d.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketAddresses).Put(addressKey(meta.Account, meta.Address), data); err != nil {
			return err
		}
		return tx.Bucket(bucketOwnership).Put(ownershipKey(meta.Account.Wallet, meta.Address), []byte{})
	})
}

// Accounts returns the wallet's accounts in ascending index order.
func (d *BoltDirectory) Accounts(ctx context.Context, wallet source.WalletID) ([]source.AccountID, error) {
	var out []source.AccountID
	prefix := walletPrefix(wallet)
	err := d.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketAccounts).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			index := binary.BigEndian.Uint32(k[len(prefix):])
			out = append(out, source.AccountID{Wallet: wallet, Index: index})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Addresses returns the account's addresses in address byte order.
func (d *BoltDirectory) Addresses(ctx context.Context, account source.AccountID) ([]source.AddressMeta, error) {
	var out []source.AddressMeta
	prefix := accountPrefix(account)
	err := d.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketAddresses).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var meta source.AddressMeta
			if err := decodeGob(v, &meta); err != nil {
				return fmt.Errorf("directory: decode address meta: %w", err)
			}
			out = append(out, meta)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// OwnsAddress reports whether the wallet owns the given raw address.
func (d *BoltDirectory) OwnsAddress(ctx context.Context, wallet source.WalletID, address string) (bool, error) {
	var owned bool
	err := d.db.View(func(tx *bbolt.Tx) error {
		owned = tx.Bucket(bucketOwnership).Get(ownershipKey(wallet, address)) != nil
		return nil
	})
	if err != nil {
		return false, err
	}
	return owned, nil
}

// walletPrefix encodes "wallet\x00" for prefix scans over accounts.
func walletPrefix(wallet source.WalletID) []byte {
	return append([]byte(wallet), keySep)
}

// accountKey encodes "wallet\x00<index be32>".
func accountKey(account source.AccountID) []byte {
	k := walletPrefix(account.Wallet)
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], account.Index)
	return append(k, idx[:]...)
}

// accountPrefix encodes "wallet\x00<index be32>\x00" for address scans.
func accountPrefix(account source.AccountID) []byte {
	return append(accountKey(account), keySep)
}

// addressKey encodes "wallet\x00<index be32>\x00address".
func addressKey(account source.AccountID, address string) []byte {
	return append(accountPrefix(account), address...)
}

// ownershipKey encodes "wallet\x00address".
func ownershipKey(wallet source.WalletID, address string) []byte {
	return append(walletPrefix(wallet), address...)
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
