package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/loykin/jiggler/internal/history"
)

func TestSQLiteSink_Integration(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	sink, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create sink: %v", err)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			t.Errorf("Failed to close sink: %v", err)
		}
	}()

	ctx := context.Background()

	start := history.Event{
		Type:       history.EventStarted,
		OccurredAt: time.Now().UTC(),
		PID:        12345,
		Interval:   30 * time.Second,
		Amplitude:  1,
		Pattern:    "square",
	}
	if err := sink.Send(ctx, start); err != nil {
		t.Fatalf("Failed to send started event: %v", err)
	}

	stop := history.Event{
		Type:       history.EventStopped,
		OccurredAt: time.Now().UTC(),
		PID:        12345,
		Interval:   30 * time.Second,
		Amplitude:  1,
		Pattern:    "square",
		Reason:     "stop-flag",
	}
	if err := sink.Send(ctx, stop); err != nil {
		t.Fatalf("Failed to send stopped event: %v", err)
	}

	var count int
	if err := sink.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM session_history`).Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}

	var reason string
	err = sink.db.QueryRowContext(ctx, `SELECT reason FROM session_history WHERE event = 'stopped'`).Scan(&reason)
	if err != nil {
		t.Fatalf("reason query: %v", err)
	}
	if reason != "stop-flag" {
		t.Fatalf("reason = %q, want stop-flag", reason)
	}
}

func TestSQLiteSink_InMemory(t *testing.T) {
	sink, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory sink: %v", err)
	}
	defer func() { _ = sink.Close() }()

	e := history.Event{
		Type:       history.EventFailed,
		OccurredAt: time.Now().UTC(),
		PID:        1,
		Interval:   time.Second,
		Amplitude:  2,
		Pattern:    "random",
		Reason:     "failure",
	}
	if err := sink.Send(context.Background(), e); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestSQLiteSink_EmptyDSN(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty DSN")
	}
	if _, err := New("   "); err == nil {
		t.Fatal("expected error for blank DSN")
	}
}
