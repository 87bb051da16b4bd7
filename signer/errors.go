package signer

import "errors"

var (
	// ErrKeyNotFound indicates no stored secret key matches the address.
	// This means key storage and the address directory have drifted apart:
	// an internal fault, never a user error.
	ErrKeyNotFound = errors.New("signer: secret key not found for address")

	// ErrPassphraseMismatch indicates the passphrase failed to authenticate
	// against the stored secret key.
	ErrPassphraseMismatch = errors.New("signer: passphrase mismatch")

	// ErrOutsideFundingSet indicates a signer was requested for an address
	// outside the payment's resolved funding set.
	ErrOutsideFundingSet = errors.New("signer: address outside funding set")
)
