package viz

import (
	"math"
	"sync"

	"github.com/san-kum/stepbridge/internal/bridge"
	"github.com/san-kum/stepbridge/internal/sim"
)

const historyCapacity = 600

// Feed collects what the monitor shows. It is written from the tick and
// network goroutines and read from the UI goroutine.
type Feed struct {
	mu       sync.Mutex
	conn     bridge.ConnState
	last     sim.Step
	heights  []float64
	speeds   []float64
	requests int
	dropped  int
	capacity int
}

func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = historyCapacity
	}
	return &Feed{
		heights:  make([]float64, 0, capacity),
		speeds:   make([]float64, 0, capacity),
		capacity: capacity,
	}
}

func (f *Feed) OnStep(s sim.Step) {
	v := s.State.Velocity()
	speed := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	if !s.Decoded {
		f.dropped++
		return
	}
	f.last = s
	f.heights = push(f.heights, s.State[bridge.DY], f.capacity)
	f.speeds = push(f.speeds, speed, f.capacity)
}

// OnConnState matches bridge.WithStateHook.
func (f *Feed) OnConnState(s bridge.ConnState) {
	f.mu.Lock()
	f.conn = s
	f.mu.Unlock()
}

func (f *Feed) Clear() {
	f.mu.Lock()
	f.heights = f.heights[:0]
	f.speeds = f.speeds[:0]
	f.mu.Unlock()
}

type Snapshot struct {
	Conn     bridge.ConnState
	Last     sim.Step
	Heights  []float64
	Speeds   []float64
	Requests int
	Dropped  int
}

func (f *Feed) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		Conn:     f.conn,
		Last:     f.last,
		Heights:  append([]float64(nil), f.heights...),
		Speeds:   append([]float64(nil), f.speeds...),
		Requests: f.requests,
		Dropped:  f.dropped,
	}
}

func push(buf []float64, v float64, capacity int) []float64 {
	if len(buf) == capacity {
		copy(buf, buf[1:])
		buf = buf[:capacity-1]
	}
	return append(buf, v)
}
