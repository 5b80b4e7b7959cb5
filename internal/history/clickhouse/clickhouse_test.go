package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/loykin/jiggler/internal/history"
)

// setupClickHouseContainer starts a ClickHouse container for testing
func setupClickHouseContainer(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()

	clickHouseContainer, err := clickhouse.Run(ctx,
		"clickhouse/clickhouse-server:24.3.2.23",
		clickhouse.WithUsername("default"),
		clickhouse.WithPassword(""),
		clickhouse.WithDatabase("default"),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/ping").
				WithPort("8123/tcp").
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("Failed to start ClickHouse container (docker unavailable?): %v", err)
	}

	host, err := clickHouseContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := clickHouseContainer.MappedPort(ctx, "9000")
	if err != nil {
		t.Fatalf("Failed to get mapped port: %v", err)
	}

	return clickHouseContainer, host + ":" + port.Port()
}

// setupSinkWithTable creates a sink and sets up the test table
func setupSinkWithTable(ctx context.Context, t *testing.T, addr, tableName string) *Sink {
	t.Helper()

	sink, err := New(addr, tableName)
	if err != nil {
		t.Fatalf("Failed to create sink: %v", err)
	}

	err = sink.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+tableName+` (
			event String,
			occurred_at DateTime64(6),
			pid Int32,
			interval_ms Int64,
			amplitude Int32,
			pattern String,
			reason String
		) ENGINE = MergeTree() ORDER BY occurred_at`)
	if err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	return sink
}

func TestClickHouseSink_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, addr := setupClickHouseContainer(ctx, t)
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate ClickHouse container: %v", err)
		}
	}()

	sink := setupSinkWithTable(ctx, t, addr, "session_history")
	defer func() { _ = sink.Close() }()

	e := history.Event{
		Type:       history.EventStarted,
		OccurredAt: time.Now().UTC(),
		PID:        777,
		Interval:   10 * time.Second,
		Amplitude:  1,
		Pattern:    "square",
	}
	if err := sink.Send(ctx, e); err != nil {
		t.Fatalf("Failed to send started event: %v", err)
	}

	e.Type = history.EventStopped
	e.Reason = "interrupt"
	if err := sink.Send(ctx, e); err != nil {
		t.Fatalf("Failed to send stopped event: %v", err)
	}

	var count uint64
	row := sink.conn.QueryRow(ctx, `SELECT COUNT(*) FROM session_history WHERE pid = 777`)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}
}
