package seal

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a missing or empty required field. Callers should re-prompt.
	ErrValidation = errors.New("validation failed")

	// ErrMalformedPayload is returned when scanned content does not decode into
	// the exact payload shape. Decoding fails closed before any hash is computed.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrIntegrityMismatch means the integrity hash did not match: the payload was
	// tampered with or sealed under a different secret.
	ErrIntegrityMismatch = errors.New("integrity mismatch")

	// ErrDecryptionFailed means the integrity hash matched but the ciphertext
	// could not be opened. This should not happen for honestly sealed payloads.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrCryptoUnavailable means a required primitive could not be built or the
	// random source failed. Not retryable.
	ErrCryptoUnavailable = errors.New("crypto unavailable")
)

// ValidationError names the field that failed validation. An empty Problem
// means the field was missing.
type ValidationError struct {
	Field   string
	Problem string
}

func (e *ValidationError) Error() string {
	if e.Problem == "" {
		return fmt.Sprintf("%s is required", e.Field)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Problem)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Reason returns a short machine-readable label for verification failures,
// suitable for local logs and audit records. It returns "" for nil and
// "error" for anything it does not recognise.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrMalformedPayload):
		return "malformed"
	case errors.Is(err, ErrIntegrityMismatch):
		return "integrity_mismatch"
	case errors.Is(err, ErrDecryptionFailed):
		return "decryption_failed"
	case errors.Is(err, ErrCryptoUnavailable):
		return "crypto_unavailable"
	default:
		return "error"
	}
}
