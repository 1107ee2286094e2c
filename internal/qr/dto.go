package qr

import "github.com/qrseal/qrseal/internal/audit"

// SealRequest carries the fields to seal.
type SealRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Size  int    `json:"size,omitempty"`
}

// FieldsResponse is returned after a successful verification.
type FieldsResponse struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// EventsResponse lists audit events.
type EventsResponse struct {
	Events []audit.Event `json:"events"`
	Count  int           `json:"count"`
}
