package seal

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
)

const (
	labelAEAD  = "qrseal/v1/aead"
	labelPlain = "qrseal/v1/plain"
)

// integrityHash returns SHA-256 over label, secret and parts, in that order.
// Every element is prefixed with its big-endian uint32 length so no field
// content can move a boundary.
func integrityHash(label string, secret []byte, parts ...[]byte) []byte {
	h := sha256.New()
	var n [4]byte
	write := func(b []byte) {
		binary.BigEndian.PutUint32(n[:], uint32(len(b)))
		h.Write(n[:])
		h.Write(b)
	}
	write([]byte(label))
	write(secret)
	for _, p := range parts {
		write(p)
	}
	return h.Sum(nil)
}

func hashEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
