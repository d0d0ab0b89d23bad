package workers

import (
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"go.uber.org/goleak"
)

const waitTimeout = 2 * time.Second

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLogger() *slog.Logger {
	return logs.GetLoggerFromLevel(slog.LevelDebug)
}

// receive waits for the next value of ch or fails the test.
func receive[T any](t *testing.T, ch chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(waitTimeout):
		t.Fatalf("nothing received after %s", waitTimeout)
	}
	var zero T
	return zero
}

// requireEmpty checks that ch stays empty for a short while.
func requireEmpty[T any](t *testing.T, ch chan T) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected value received: %#v", v)
	case <-time.After(50 * time.Millisecond):
	}
}

// runAsync starts run and returns a channel yielding its result.
func runAsync(run func() error) chan error {
	done := make(chan error, 1)
	go func() { done <- run() }()
	return done
}
