package seal

import (
	"crypto/sha256"
	"errors"
	"fmt"

	aeadsubtle "github.com/tink-crypto/tink-go/v2/aead/subtle"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultSalt is the fixed PBKDF2 salt shared by every sealer and verifier.
	DefaultSalt = "qr-encryption-salt-v1"
	// MinIterations is the lowest PBKDF2 iteration count NewKey accepts.
	MinIterations = 100_000

	keySize = 32 // AES-256
	ivSize  = 12
	tagSize = 16
	hashLen = sha256.Size
)

// KDFParams fixes how the AES key is derived from the shared secret. Both sides
// must use identical values.
type KDFParams struct {
	Salt       []byte
	Iterations int
}

// DefaultKDF returns the default derivation parameters.
func DefaultKDF() KDFParams {
	return KDFParams{Salt: []byte(DefaultSalt), Iterations: MinIterations}
}

// Key holds the shared secret and the AEAD derived from it. It is immutable and
// safe for concurrent use.
type Key struct {
	secret []byte
	aead   *aeadsubtle.AESGCM
}

// NewKey derives the AES-256-GCM key from secret with PBKDF2-SHA256. Derivation
// is slow on purpose, so build one Key per process and share it.
func NewKey(secret []byte, params KDFParams) (*Key, error) {
	if len(secret) == 0 {
		return nil, errors.New("shared secret must not be empty")
	}
	if len(params.Salt) == 0 {
		return nil, errors.New("kdf salt must not be empty")
	}
	if params.Iterations < MinIterations {
		return nil, fmt.Errorf("kdf iterations must be at least %d, got %d", MinIterations, params.Iterations)
	}

	derived := pbkdf2.Key(secret, params.Salt, params.Iterations, keySize, sha256.New)
	aead, err := aeadsubtle.NewAESGCM(derived)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCryptoUnavailable, err)
	}

	return &Key{
		secret: append([]byte(nil), secret...),
		aead:   aead,
	}, nil
}
