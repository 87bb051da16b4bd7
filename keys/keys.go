// Package keys stores wallet secret keys encrypted under a user passphrase.
//
// Each key is sealed with Argon2id + AES-256-GCM and carries a SHA256
// checksum, so decryption doubles as passphrase validation: a wrong
// passphrase fails the GCM open or the checksum, never yields a key.
package keys

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/coinsendorg/libcoinsend-go/source"
)

const (
	// Argon2id parameters for key encryption. Lighter than a one-off seed
	// KDF: every payment re-validates the passphrase against each funding
	// key, so derivation must stay in the tens of milliseconds.
	Argon2Time        = 1
	Argon2Memory      = 16 * 1024 // 16 MB
	Argon2Parallelism = 4
	Argon2KeyLen      = 32

	// Encryption format sizes.
	SaltLen     = 16
	NonceLen    = 12
	ChecksumLen = 4
)

// SecretKey is an encrypted secret key bound to the address it authorizes.
// Data holds salt(16B) || nonce(12B) || AES-GCM(key || checksum).
type SecretKey struct {
	Address string `json:"address"`
	Data    []byte `json:"data"`
}

// Store is the wallet key storage consumed by the payment dispatcher.
type Store interface {
	// SecretKeys returns the full set of per-address encrypted keys.
	SecretKeys(ctx context.Context) ([]SecretKey, error)

	// RootKey returns the wallet's root encrypted key, used for the fast
	// wallet-level passphrase check before per-address derivation.
	RootKey(ctx context.Context, wallet source.WalletID) (SecretKey, error)
}

// Encrypt seals raw key material with Argon2id + AES-256-GCM.
//
// Output format: salt(16B) || nonce(12B) || AES-GCM(argon2id(passphrase,salt), nonce, key||checksum)
//
// The checksum is SHA256(key)[:4] for verifying correct decryption.
func Encrypt(key []byte, passphrase string) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrInvalidKey
	}

	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("keys: failed to generate salt: %w", err)
	}

	derivedKey := argon2.IDKey(
		[]byte(passphrase),
		salt,
		Argon2Time,
		Argon2Memory,
		Argon2Parallelism,
		Argon2KeyLen,
	)

	keyHash := sha256.Sum256(key)
	checksum := keyHash[:ChecksumLen]

	plaintext := make([]byte, len(key)+ChecksumLen)
	copy(plaintext, key)
	copy(plaintext[len(key):], checksum)

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, fmt.Errorf("keys: AES cipher creation failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("keys: GCM creation failed: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("keys: failed to generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	result := make([]byte, 0, SaltLen+NonceLen+len(ciphertext))
	result = append(result, salt...)
	result = append(result, nonce...)
	result = append(result, ciphertext...)

	return result, nil
}

// Decrypt opens an Encrypt-sealed blob with the passphrase and verifies the
// checksum. Returns ErrDecryptionFailed for a wrong passphrase or corrupted
// data; there is no cached "already checked" shortcut, every call performs
// the full KDF and authentication.
func Decrypt(encrypted []byte, passphrase string) ([]byte, error) {
	minLen := SaltLen + NonceLen + ChecksumLen
	if len(encrypted) < minLen {
		return nil, ErrDecryptionFailed
	}

	salt := encrypted[:SaltLen]
	nonce := encrypted[SaltLen : SaltLen+NonceLen]
	ciphertext := encrypted[SaltLen+NonceLen:]

	derivedKey := argon2.IDKey(
		[]byte(passphrase),
		salt,
		Argon2Time,
		Argon2Memory,
		Argon2Parallelism,
		Argon2KeyLen,
	)

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	if len(plaintext) < ChecksumLen {
		return nil, ErrDecryptionFailed
	}

	key := plaintext[:len(plaintext)-ChecksumLen]
	storedChecksum := plaintext[len(plaintext)-ChecksumLen:]

	keyHash := sha256.Sum256(key)
	expectedChecksum := keyHash[:ChecksumLen]
	for i := 0; i < ChecksumLen; i++ {
		if storedChecksum[i] != expectedChecksum[i] {
			return nil, ErrChecksumMismatch
		}
	}

	return key, nil
}
