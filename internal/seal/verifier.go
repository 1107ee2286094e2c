package seal

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Verifier checks payload integrity and recovers the plaintext fields.
type Verifier struct {
	key *Key
}

// NewVerifier returns a Verifier bound to key.
func NewVerifier(key *Key) *Verifier {
	return &Verifier{key: key}
}

// Verify recomputes the integrity hash over ciphertext, nonce and tag and
// compares it in constant time. Only on a match is decryption attempted.
// Verification is all-or-nothing: on any error the returned Fields is zero.
func (v *Verifier) Verify(p Payload) (Fields, error) {
	if v == nil || v.key == nil || v.key.aead == nil {
		return Fields{}, fmt.Errorf("%w: verifier has no key", ErrCryptoUnavailable)
	}

	want := integrityHash(labelAEAD, v.key.secret, p.Ciphertext, p.IV, p.AuthTag)
	if !hashEqual(want, p.Hash) {
		return Fields{}, ErrIntegrityMismatch
	}

	if len(p.IV) != ivSize || len(p.AuthTag) != tagSize {
		return Fields{}, ErrDecryptionFailed
	}
	blob := make([]byte, 0, ivSize+len(p.Ciphertext)+tagSize)
	blob = append(blob, p.IV...)
	blob = append(blob, p.Ciphertext...)
	blob = append(blob, p.AuthTag...)

	plaintext, err := v.key.aead.Decrypt(blob, nil)
	if err != nil {
		return Fields{}, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	var fields Fields
	dec := json.NewDecoder(bytes.NewReader(plaintext))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fields); err != nil {
		return Fields{}, fmt.Errorf("%w: plaintext: %v", ErrDecryptionFailed, err)
	}
	clean, err := fields.Normalize()
	if err != nil {
		return Fields{}, fmt.Errorf("%w: plaintext: %v", ErrDecryptionFailed, err)
	}
	return clean, nil
}

// VerifySigned checks a plain-signed payload and returns its own fields. The
// fields must already be in the trimmed form Sign produces.
func (v *Verifier) VerifySigned(p SignedPayload) (Fields, error) {
	if v == nil || v.key == nil {
		return Fields{}, fmt.Errorf("%w: verifier has no key", ErrCryptoUnavailable)
	}
	raw := Fields{Name: p.Name, Phone: p.Phone}
	clean, err := raw.Normalize()
	if err != nil {
		return Fields{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if clean != raw {
		return Fields{}, fmt.Errorf("%w: fields are not trimmed", ErrMalformedPayload)
	}
	want := integrityHash(labelPlain, v.key.secret, []byte(p.Name), []byte(p.Phone))
	if !hashEqual(want, p.Hash) {
		return Fields{}, ErrIntegrityMismatch
	}
	return clean, nil
}

// Open decodes raw scanned content strictly and verifies it.
func (v *Verifier) Open(raw []byte) (Fields, Payload, error) {
	p, err := DecodePayload(raw)
	if err != nil {
		return Fields{}, Payload{}, err
	}
	fields, err := v.Verify(p)
	return fields, p, err
}

// OpenSigned is Open for the plain-signed form.
func (v *Verifier) OpenSigned(raw []byte) (Fields, SignedPayload, error) {
	p, err := DecodeSignedPayload(raw)
	if err != nil {
		return Fields{}, SignedPayload{}, err
	}
	fields, err := v.VerifySigned(p)
	return fields, p, err
}
