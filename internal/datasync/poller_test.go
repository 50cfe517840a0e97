package datasync

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestPollerRunsOnCadence(t *testing.T) {
	var runs int32
	p := NewPoller(20*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&runs, 1)
	})

	p.Start(context.Background())
	time.Sleep(90 * time.Millisecond)
	p.Stop()

	if n := atomic.LoadInt32(&runs); n < 3 {
		t.Errorf("runs = %d, want at least 3 (immediate run plus ticks)", n)
	}
}

func TestPollerStopEndsLoop(t *testing.T) {
	var runs int32
	p := NewPoller(10*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&runs, 1)
	})

	p.Start(context.Background())
	time.Sleep(35 * time.Millisecond)
	p.Stop()
	frozen := atomic.LoadInt32(&runs)

	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&runs); n != frozen {
		t.Errorf("poller kept running after Stop: %d -> %d", frozen, n)
	}

	// Stop twice is safe.
	p.Stop()
}

func TestPollerContextCancel(t *testing.T) {
	var runs int32
	p := NewPoller(10*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&runs, 1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	time.Sleep(35 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
	frozen := atomic.LoadInt32(&runs)

	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&runs); n != frozen {
		t.Errorf("poller kept running after context cancel: %d -> %d", frozen, n)
	}
	p.Stop()
}
