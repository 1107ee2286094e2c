package seal

import (
	"encoding/json"
	"fmt"
)

// Sealer turns plaintext fields into payloads under a shared Key.
type Sealer struct {
	key *Key
}

// NewSealer returns a Sealer bound to key.
func NewSealer(key *Key) *Sealer {
	return &Sealer{key: key}
}

// Seal trims and validates fields, encrypts their JSON encoding with
// AES-256-GCM under a fresh random nonce, and hashes the ciphertext, nonce and
// tag together with the secret.
func (s *Sealer) Seal(fields Fields) (Payload, error) {
	if s == nil || s.key == nil || s.key.aead == nil {
		return Payload{}, fmt.Errorf("%w: sealer has no key", ErrCryptoUnavailable)
	}
	clean, err := fields.Normalize()
	if err != nil {
		return Payload{}, err
	}
	plaintext, err := json.Marshal(clean)
	if err != nil {
		return Payload{}, err
	}

	// Output layout is iv || ciphertext || tag. The nonce is drawn inside the
	// primitive on every call.
	out, err := s.key.aead.Encrypt(plaintext, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrCryptoUnavailable, err)
	}
	if len(out) < ivSize+tagSize {
		return Payload{}, fmt.Errorf("%w: short aead output", ErrCryptoUnavailable)
	}

	p := Payload{
		IV:         append([]byte(nil), out[:ivSize]...),
		Ciphertext: append([]byte(nil), out[ivSize:len(out)-tagSize]...),
		AuthTag:    append([]byte(nil), out[len(out)-tagSize:]...),
	}
	p.Hash = integrityHash(labelAEAD, s.key.secret, p.Ciphertext, p.IV, p.AuthTag)
	return p, nil
}

// Sign produces the plain-signed form. It performs no encryption and is
// deterministic for identical trimmed fields and secret.
func (s *Sealer) Sign(fields Fields) (SignedPayload, error) {
	if s == nil || s.key == nil {
		return SignedPayload{}, fmt.Errorf("%w: sealer has no key", ErrCryptoUnavailable)
	}
	clean, err := fields.Normalize()
	if err != nil {
		return SignedPayload{}, err
	}
	return SignedPayload{
		Name:  clean.Name,
		Phone: clean.Phone,
		Hash:  integrityHash(labelPlain, s.key.secret, []byte(clean.Name), []byte(clean.Phone)),
	}, nil
}
