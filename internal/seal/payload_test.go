package seal

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validWire(t *testing.T) map[string]string {
	t.Helper()
	p, err := NewSealer(testKey(t, "secret-a")).Seal(Fields{Name: "Ann", Phone: "1"})
	require.NoError(t, err)
	var w map[string]string
	require.NoError(t, json.Unmarshal([]byte(p.String()), &w))
	return w
}

func TestPayloadWireShape(t *testing.T) {
	w := validWire(t)
	assert.Len(t, w, 4)
	for _, k := range []string{"encrypted", "iv", "authTag", "hash"} {
		assert.NotEmpty(t, w[k], k)
	}
	assert.Len(t, w["iv"], 24)
	assert.Len(t, w["authTag"], 32)
	assert.Len(t, w["hash"], 64)
}

func TestDecodePayloadRejectsShapeMismatch(t *testing.T) {
	base := validWire(t)
	mutate := func(f func(map[string]any)) []byte {
		m := map[string]any{}
		for k, v := range base {
			m[k] = v
		}
		f(m)
		b, err := json.Marshal(m)
		require.NoError(t, err)
		return b
	}

	cases := map[string][]byte{
		"unknown field":  mutate(func(m map[string]any) { m["extra"] = "x" }),
		"missing iv":     mutate(func(m map[string]any) { delete(m, "iv") }),
		"empty hash":     mutate(func(m map[string]any) { m["hash"] = "" }),
		"non-hex":        mutate(func(m map[string]any) { m["encrypted"] = "zz" }),
		"short iv":       mutate(func(m map[string]any) { m["iv"] = "00" }),
		"long tag":       mutate(func(m map[string]any) { m["authTag"] = strings.Repeat("00", 17) }),
		"wrong type":     mutate(func(m map[string]any) { m["iv"] = 12 }),
		"array":          []byte(`[]`),
		"null":           []byte(`null`),
		"not json":       []byte(`John Doe`),
		"trailing":       append(mutate(func(map[string]any) {}), []byte(`{}`)...),
		"oversize input": []byte(strings.Repeat(" ", maxPayloadBytes+1)),
	}
	for name, raw := range cases {
		_, err := DecodePayload(raw)
		assert.ErrorIs(t, err, ErrMalformedPayload, name)
	}
}

func TestDecodePayloadAcceptsTrailingWhitespace(t *testing.T) {
	b, err := json.Marshal(validWire(t))
	require.NoError(t, err)
	_, err = DecodePayload(append(b, '\n', ' '))
	assert.NoError(t, err)
}

func TestPayloadJSONRoundTripsThroughEncodingJSON(t *testing.T) {
	key := testKey(t, "secret-a")
	p, err := NewSealer(key).Seal(Fields{Name: "Ann", Phone: "1"})
	require.NoError(t, err)

	b, err := json.Marshal(p)
	require.NoError(t, err)
	var back Payload
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, p, back)
	assert.Equal(t, p.Fingerprint(), back.Fingerprint())
	assert.Len(t, p.Fingerprint(), 16)
}

func TestDecodeSignedPayload(t *testing.T) {
	_, err := DecodeSignedPayload([]byte(`{"name":"a","phone":"b"}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = DecodeSignedPayload([]byte(`{"name":"","phone":"b","hash":"` + strings.Repeat("ab", 32) + `"}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	s, err := NewSealer(testKey(t, "secret-a")).Sign(Fields{Name: "Ann", Phone: "1"})
	require.NoError(t, err)
	back, err := DecodeSignedPayload([]byte(s.String()))
	require.NoError(t, err)
	assert.Equal(t, s, back)
}

func TestNewKeyValidatesParams(t *testing.T) {
	_, err := NewKey(nil, DefaultKDF())
	assert.Error(t, err)

	_, err = NewKey([]byte("s"), KDFParams{Salt: nil, Iterations: MinIterations})
	assert.Error(t, err)

	_, err = NewKey([]byte("s"), KDFParams{Salt: []byte("salt"), Iterations: 1000})
	assert.Error(t, err)
}

func TestDifferentSaltsDoNotInteroperate(t *testing.T) {
	a, err := NewKey([]byte("same-secret"), KDFParams{Salt: []byte("salt-one"), Iterations: MinIterations})
	require.NoError(t, err)
	b, err := NewKey([]byte("same-secret"), KDFParams{Salt: []byte("salt-two"), Iterations: MinIterations})
	require.NoError(t, err)

	p, err := NewSealer(a).Seal(Fields{Name: "Ann", Phone: "1"})
	require.NoError(t, err)
	// Same secret means the hash still matches; the derived key does not.
	_, err = NewVerifier(b).Verify(p)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}
