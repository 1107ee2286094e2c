package seal

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
)

// maxPayloadBytes bounds what Decode accepts. A QR code tops out under 3KB.
const maxPayloadBytes = 8 << 10

// Payload is the encrypted form placed in a QR code.
type Payload struct {
	Ciphertext []byte
	IV         []byte
	AuthTag    []byte
	Hash       []byte
}

type payloadWire struct {
	Encrypted string `json:"encrypted"`
	IV        string `json:"iv"`
	AuthTag   string `json:"authTag"`
	Hash      string `json:"hash"`
}

// MarshalJSON encodes every byte field as lowercase hex.
func (p Payload) MarshalJSON() ([]byte, error) {
	return json.Marshal(payloadWire{
		Encrypted: hex.EncodeToString(p.Ciphertext),
		IV:        hex.EncodeToString(p.IV),
		AuthTag:   hex.EncodeToString(p.AuthTag),
		Hash:      hex.EncodeToString(p.Hash),
	})
}

// UnmarshalJSON applies the same strict rules as DecodePayload.
func (p *Payload) UnmarshalJSON(data []byte) error {
	out, err := DecodePayload(data)
	if err != nil {
		return err
	}
	*p = out
	return nil
}

// String returns the JSON text that goes into the QR code.
func (p Payload) String() string {
	b, _ := p.MarshalJSON()
	return string(b)
}

// Fingerprint is a short hex tag of the integrity hash for logs and audit
// records. It reveals nothing about the plaintext.
func (p Payload) Fingerprint() string {
	return fingerprint(p.Hash)
}

// DecodePayload parses scanned content into a Payload. Unknown fields, missing
// fields, trailing data, bad hex and wrong lengths all fail with
// ErrMalformedPayload.
func DecodePayload(data []byte) (Payload, error) {
	var w payloadWire
	if err := decodeStrict(data, &w); err != nil {
		return Payload{}, err
	}
	ct, err := decodeHexField("encrypted", w.Encrypted, -1)
	if err != nil {
		return Payload{}, err
	}
	iv, err := decodeHexField("iv", w.IV, ivSize)
	if err != nil {
		return Payload{}, err
	}
	tag, err := decodeHexField("authTag", w.AuthTag, tagSize)
	if err != nil {
		return Payload{}, err
	}
	sum, err := decodeHexField("hash", w.Hash, hashLen)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Ciphertext: ct, IV: iv, AuthTag: tag, Hash: sum}, nil
}

// SignedPayload is the plain-signed form: the fields travel in the clear and
// only the hash protects them.
type SignedPayload struct {
	Name  string
	Phone string
	Hash  []byte
}

type signedWire struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Hash  string `json:"hash"`
}

func (p SignedPayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(signedWire{Name: p.Name, Phone: p.Phone, Hash: hex.EncodeToString(p.Hash)})
}

func (p *SignedPayload) UnmarshalJSON(data []byte) error {
	out, err := DecodeSignedPayload(data)
	if err != nil {
		return err
	}
	*p = out
	return nil
}

func (p SignedPayload) String() string {
	b, _ := p.MarshalJSON()
	return string(b)
}

func (p SignedPayload) Fingerprint() string {
	return fingerprint(p.Hash)
}

// DecodeSignedPayload parses a plain-signed payload with the same fail-closed
// rules as DecodePayload.
func DecodeSignedPayload(data []byte) (SignedPayload, error) {
	var w signedWire
	if err := decodeStrict(data, &w); err != nil {
		return SignedPayload{}, err
	}
	if w.Name == "" {
		return SignedPayload{}, fmt.Errorf("%w: name is missing", ErrMalformedPayload)
	}
	if w.Phone == "" {
		return SignedPayload{}, fmt.Errorf("%w: phone is missing", ErrMalformedPayload)
	}
	sum, err := decodeHexField("hash", w.Hash, hashLen)
	if err != nil {
		return SignedPayload{}, err
	}
	return SignedPayload{Name: w.Name, Phone: w.Phone, Hash: sum}, nil
}

func decodeStrict(data []byte, v any) error {
	if len(data) > maxPayloadBytes {
		return fmt.Errorf("%w: %d bytes exceeds limit", ErrMalformedPayload, len(data))
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data", ErrMalformedPayload)
	}
	return nil
}

// decodeHexField decodes a required hex field. want < 0 means any non-zero length.
func decodeHexField(name, value string, want int) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: %s is missing", ErrMalformedPayload, name)
	}
	b, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not hex", ErrMalformedPayload, name)
	}
	if want >= 0 && len(b) != want {
		return nil, fmt.Errorf("%w: %s must be %d bytes, got %d", ErrMalformedPayload, name, want, len(b))
	}
	return b, nil
}

func fingerprint(sum []byte) string {
	if len(sum) > 8 {
		sum = sum[:8]
	}
	return hex.EncodeToString(sum)
}
