package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRunner_EveryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan struct{})

	New(ctx).Every(5*time.Millisecond, "test_tick", func(context.Context) error {
		if calls.Add(1) == 3 {
			close(done)
		}
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run three times")
	}
	cancel()
	time.Sleep(20 * time.Millisecond)
	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	if calls.Load() != after {
		t.Errorf("job kept running after cancel: %d -> %d", after, calls.Load())
	}
}

func TestRunner_RunCountsErrors(t *testing.T) {
	r := New(context.Background())
	before := testutil.ToFloat64(jobErrors.WithLabelValues("test_fail"))
	r.run("test_fail", func(context.Context) error { return errors.New("boom") })
	if got := testutil.ToFloat64(jobErrors.WithLabelValues("test_fail")); got != before+1 {
		t.Errorf("expected error counter %v, got %v", before+1, got)
	}
}
