package qr

import (
	"context"
	"fmt"
	"log/slog"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/qrseal/qrseal/internal/audit"
	"github.com/qrseal/qrseal/internal/seal"
)

const (
	// DefaultImageSize is the PNG edge length used when none is requested.
	DefaultImageSize = 256
	minImageSize     = 128
	maxImageSize     = 1024
)

// Service seals and opens QR payloads and records every outcome.
type Service struct {
	sealer   *seal.Sealer
	verifier *seal.Verifier
	recorder *audit.Recorder
	logger   *slog.Logger
}

// NewService wires the sealing core to the audit trail.
func NewService(sealer *seal.Sealer, verifier *seal.Verifier, recorder *audit.Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{sealer: sealer, verifier: verifier, recorder: recorder, logger: logger}
}

// Seal produces an encrypted payload for fields.
func (s *Service) Seal(ctx context.Context, fields seal.Fields) (seal.Payload, error) {
	if err := ctx.Err(); err != nil {
		return seal.Payload{}, err
	}
	p, err := s.sealer.Seal(fields)
	if err != nil {
		s.recorder.Record(ctx, audit.KindSeal, audit.OutcomeFailed, seal.Reason(err), "")
		return seal.Payload{}, err
	}
	s.recorder.Record(ctx, audit.KindSeal, audit.OutcomeSealed, "", p.Fingerprint())
	return p, nil
}

// Sign produces a plain-signed payload for fields.
func (s *Service) Sign(ctx context.Context, fields seal.Fields) (seal.SignedPayload, error) {
	if err := ctx.Err(); err != nil {
		return seal.SignedPayload{}, err
	}
	p, err := s.sealer.Sign(fields)
	if err != nil {
		s.recorder.Record(ctx, audit.KindSign, audit.OutcomeFailed, seal.Reason(err), "")
		return seal.SignedPayload{}, err
	}
	s.recorder.Record(ctx, audit.KindSign, audit.OutcomeSealed, "", p.Fingerprint())
	return p, nil
}

// Open decodes and verifies scanned content. The returned error carries the
// precise reason; callers facing untrusted parties must not echo it.
func (s *Service) Open(ctx context.Context, raw []byte) (seal.Fields, error) {
	if err := ctx.Err(); err != nil {
		return seal.Fields{}, err
	}
	fields, p, err := s.verifier.Open(raw)
	if err != nil {
		s.recorder.Record(ctx, audit.KindVerify, audit.OutcomeRejected, seal.Reason(err), p.Fingerprint())
		return seal.Fields{}, err
	}
	s.recorder.Record(ctx, audit.KindVerify, audit.OutcomeAccepted, "", p.Fingerprint())
	return fields, nil
}

// OpenSigned is Open for the plain-signed form.
func (s *Service) OpenSigned(ctx context.Context, raw []byte) (seal.Fields, error) {
	if err := ctx.Err(); err != nil {
		return seal.Fields{}, err
	}
	fields, p, err := s.verifier.OpenSigned(raw)
	if err != nil {
		s.recorder.Record(ctx, audit.KindVerifySigned, audit.OutcomeRejected, seal.Reason(err), p.Fingerprint())
		return seal.Fields{}, err
	}
	s.recorder.Record(ctx, audit.KindVerifySigned, audit.OutcomeAccepted, "", p.Fingerprint())
	return fields, nil
}

// Render encodes content as a PNG QR code. size is clamped to [128, 1024];
// zero selects DefaultImageSize.
func (s *Service) Render(ctx context.Context, content string, size int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(content, qrcode.Medium, ClampSize(size))
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	return png, nil
}

// Events returns the newest audit events.
func (s *Service) Events(ctx context.Context, limit int) ([]audit.Event, error) {
	return s.recorder.Recent(ctx, limit)
}

// ClampSize bounds a requested PNG size.
func ClampSize(size int) int {
	switch {
	case size == 0:
		return DefaultImageSize
	case size < minImageSize:
		return minImageSize
	case size > maxImageSize:
		return maxImageSize
	default:
		return size
	}
}
