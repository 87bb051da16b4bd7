// Package signer derives passphrase-authenticated signing capabilities for
// funding addresses. A Signer is created per payment and discarded once the
// transaction is built; it is never persisted, serialized or logged.
package signer

import (
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"

	"github.com/coinsendorg/libcoinsend-go/keys"
	"github.com/coinsendorg/libcoinsend-go/source"
)

// Signer pairs a decrypted secret key with the one address it authorizes.
type Signer struct {
	address string
	priv    *ec.PrivateKey
}

// Address returns the raw address this signer is bound to.
func (s *Signer) Address() string { return s.address }

// Unlocker returns a P2PKH unlocking template for this signer's key,
// suitable for attaching to a transaction input.
func (s *Signer) Unlocker() (*p2pkh.P2PKH, error) {
	unlocker, err := p2pkh.Unlock(s.priv, nil)
	if err != nil {
		return nil, fmt.Errorf("signer: unlocker for %s: %w", s.address, err)
	}
	return unlocker, nil
}

// PublicKey returns the public key corresponding to the signer's secret key.
func (s *Signer) PublicKey() *ec.PublicKey { return s.priv.PubKey() }

// String identifies the signer without exposing key material.
func (s *Signer) String() string { return "signer(" + s.address + ")" }

// Derive authenticates the passphrase against the secret key stored for
// meta's address and returns the resulting signing capability.
//
// The lookup failing means address metadata and key storage have drifted
// apart; that is an internal-invariant violation (ErrKeyNotFound), not a
// user error, and must abort the enclosing payment. Passphrase validation
// is performed on every call; there is no "already checked" shortcut.
func Derive(keySet []keys.SecretKey, passphrase string, meta source.AddressMeta) (*Signer, error) {
	var encrypted []byte
	for i := range keySet {
		if keySet[i].Address == meta.Address {
			encrypted = keySet[i].Data
			break
		}
	}
	if encrypted == nil {
		return nil, fmt.Errorf("%w: no secret key for address %s", ErrKeyNotFound, meta.Address)
	}

	raw, err := keys.Decrypt(encrypted, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: address %s: %w", ErrPassphraseMismatch, meta.Address, err)
	}

	priv, _ := ec.PrivateKeyFromBytes(raw)

	// The stored key must reproduce the address it is filed under.
	addr, err := script.NewAddressFromPublicKey(priv.PubKey(), true)
	if err != nil {
		return nil, fmt.Errorf("%w: address %s: %w", ErrKeyNotFound, meta.Address, err)
	}
	if addr.AddressString != meta.Address {
		return nil, fmt.Errorf("%w: stored key for %s derives %s", ErrKeyNotFound, meta.Address, addr.AddressString)
	}

	return &Signer{address: meta.Address, priv: priv}, nil
}
