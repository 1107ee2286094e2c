package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qrseal/qrseal/internal/logging"
)

type failingRepository struct{ calls int }

func (f *failingRepository) Record(context.Context, Event) error {
	f.calls++
	return errors.New("store down")
}

func (f *failingRepository) Recent(context.Context, int) ([]Event, error) {
	return nil, errors.New("store down")
}

func TestRecorderStampsEvents(t *testing.T) {
	repo := NewMemoryRepository()
	rec := NewRecorder(repo, logging.Discard())
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec.now = func() time.Time { return fixed }

	ctx := WithRequestID(context.Background(), "req-1")
	rec.Record(ctx, KindVerify, OutcomeRejected, "integrity_mismatch", "abcd")

	events, err := rec.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.ID == "" || e.RequestID != "req-1" || !e.CreatedAt.Equal(fixed) {
		t.Fatalf("unexpected event %+v", e)
	}
	if e.Kind != KindVerify || e.Outcome != OutcomeRejected || e.Reason != "integrity_mismatch" {
		t.Fatalf("unexpected event %+v", e)
	}
}

func TestRecorderFailsOpen(t *testing.T) {
	repo := &failingRepository{}
	rec := NewRecorder(repo, logging.Discard())

	rec.Record(context.Background(), KindSeal, OutcomeSealed, "", "")
	if repo.calls != 1 {
		t.Fatalf("expected one write attempt, got %d", repo.calls)
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var rec *Recorder
	rec.Record(context.Background(), KindSeal, OutcomeSealed, "", "")
	events, err := rec.Recent(context.Background(), 5)
	if err != nil || len(events) != 0 {
		t.Fatalf("expected empty result, got %v %v", events, err)
	}
}
