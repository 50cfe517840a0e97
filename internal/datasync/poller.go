package datasync

import (
	"context"
	"sync"
	"time"
)

// Poller runs a refresh function on a fixed cadence. The active view
// owns it and tears it down on exit, so no polling leaks after
// navigation. The function runs once immediately on Start.
type Poller struct {
	interval time.Duration
	run      func(ctx context.Context)

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPoller creates a poller; it does nothing until Start.
func NewPoller(interval time.Duration, run func(ctx context.Context)) *Poller {
	return &Poller{interval: interval, run: run, stop: make(chan struct{})}
}

// Start launches the polling loop. It returns immediately; the loop
// ends when ctx is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		p.run(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.run(ctx)
			case <-ctx.Done():
				return
			case <-p.stop:
				return
			}
		}
	}()
}

// Stop ends the loop and waits for any in-progress run to return. Safe
// to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	p.wg.Wait()
}
