package sim

import (
	"context"
	"time"

	"github.com/san-kum/stepbridge/internal/bridge"
)

const DefaultTickInterval = time.Millisecond

// Loop is the host's tick cadence: every interval it gives the coordinator
// one chance to serve a pending request. Physics time advances per served
// request, not per tick.
type Loop struct {
	coord    *bridge.Coordinator
	handler  bridge.Handler
	interval time.Duration
	ticks    uint64
}

func NewLoop(coord *bridge.Coordinator, handler bridge.Handler, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Loop{coord: coord, handler: handler, interval: interval}
}

// Run ticks until ctx is done or the coordinator is stopped.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if l.coord.Stopped() {
				return nil
			}
			l.Tick()
		}
	}
}

// Tick polls the coordinator once and reports whether a request was served.
func (l *Loop) Tick() bool {
	l.ticks++
	return l.coord.Tick(l.handler)
}

func (l *Loop) Ticks() uint64 { return l.ticks }
