package keys

import "errors"

var (
	// ErrInvalidKey indicates empty or malformed key material.
	ErrInvalidKey = errors.New("keys: invalid key material")

	// ErrDecryptionFailed indicates wrong passphrase or corrupted data.
	ErrDecryptionFailed = errors.New("keys: decryption failed (wrong passphrase or corrupted data)")

	// ErrChecksumMismatch indicates checksum verification failed after decryption.
	ErrChecksumMismatch = errors.New("keys: key checksum mismatch")

	// ErrKeyNotFound indicates no stored key matches the requested address or wallet.
	ErrKeyNotFound = errors.New("keys: key not found")
)
