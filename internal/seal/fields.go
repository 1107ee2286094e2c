package seal

import (
	"strings"
	"unicode/utf8"
)

// Fields is the plaintext carried by a payload.
type Fields struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

const invalidUTF8 = "must be valid UTF-8"

// Normalize trims both fields and checks that neither is empty. Invalid UTF-8
// is rejected: JSON encoding would silently rewrite it.
func (f Fields) Normalize() (Fields, error) {
	if !utf8.ValidString(f.Name) {
		return Fields{}, &ValidationError{Field: "name", Problem: invalidUTF8}
	}
	if !utf8.ValidString(f.Phone) {
		return Fields{}, &ValidationError{Field: "phone", Problem: invalidUTF8}
	}
	out := Fields{
		Name:  strings.TrimSpace(f.Name),
		Phone: strings.TrimSpace(f.Phone),
	}
	if out.Name == "" {
		return Fields{}, &ValidationError{Field: "name"}
	}
	if out.Phone == "" {
		return Fields{}, &ValidationError{Field: "phone"}
	}
	return out, nil
}
