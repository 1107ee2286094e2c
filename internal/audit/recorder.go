package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// WithRequestID returns a context carrying the request identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom extracts the request identifier set by WithRequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Recorder stamps events and writes them to a Repository and the logger.
// Storage failures are logged and swallowed; auditing never fails the
// operation being audited.
type Recorder struct {
	repo    Repository
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewRecorder builds a Recorder. A nil repo logs only.
func NewRecorder(repo Repository, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		repo:    repo,
		logger:  logger,
		timeout: 2 * time.Second,
		now:     time.Now,
	}
}

// Record writes one event.
func (r *Recorder) Record(ctx context.Context, kind, outcome, reason, fingerprint string) {
	if r == nil {
		return
	}
	event := Event{
		ID:          uuid.NewString(),
		Kind:        kind,
		Outcome:     outcome,
		Reason:      reason,
		Fingerprint: fingerprint,
		RequestID:   RequestIDFrom(ctx),
		CreatedAt:   r.now().UTC(),
	}

	attrs := []any{
		slog.String("kind", event.Kind),
		slog.String("outcome", event.Outcome),
	}
	if event.Reason != "" {
		attrs = append(attrs, slog.String("reason", event.Reason))
	}
	if event.Fingerprint != "" {
		attrs = append(attrs, slog.String("fingerprint", event.Fingerprint))
	}
	if event.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", event.RequestID))
	}
	if event.Outcome == OutcomeRejected || event.Outcome == OutcomeFailed {
		r.logger.Warn("qr event", attrs...)
	} else {
		r.logger.Info("qr event", attrs...)
	}

	if r.repo == nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()
	if err := r.repo.Record(writeCtx, event); err != nil {
		r.logger.Warn("audit record failed", slog.String("event_id", event.ID), slog.Any("error", err))
	}
}

// Recent proxies to the repository.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Event, error) {
	if r == nil || r.repo == nil {
		return []Event{}, nil
	}
	return r.repo.Recent(ctx, limit)
}
