package audit

import "time"

// Kinds of recorded operations.
const (
	KindSeal         = "seal"
	KindSign         = "sign"
	KindVerify       = "verify"
	KindVerifySigned = "verify_signed"
)

// Outcomes of recorded operations.
const (
	OutcomeSealed   = "sealed"
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Event is one seal or verify outcome. It never carries plaintext fields or
// the payload itself, only a short fingerprint of the integrity hash.
type Event struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Outcome     string    `json:"outcome"`
	Reason      string    `json:"reason,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
