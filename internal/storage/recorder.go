package storage

import (
	"sync"

	"github.com/san-kum/stepbridge/internal/bridge"
	"github.com/san-kum/stepbridge/internal/sim"
)

// Record is one served request as stored on disk. Mode is "apply",
// "reset" or "invalid"; Command holds the payload without the mode tag.
type Record struct {
	Index   int                `json:"index"`
	Episode int                `json:"episode"`
	Time    float64            `json:"time"`
	Mode    string             `json:"mode"`
	Command []float64          `json:"command,omitempty"`
	State   bridge.StateVector `json:"state"`
}

const ModeInvalid = "invalid"

// Recorder collects steps as a sim.Observer. It may be read from another
// goroutine while the tick loop is still feeding it.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

func NewRecorder() *Recorder {
	return &Recorder{records: make([]Record, 0, 1024)}
}

func (r *Recorder) OnStep(s sim.Step) {
	rec := Record{
		Index:   s.Index,
		Episode: s.Episode,
		Time:    s.Time,
		Mode:    ModeInvalid,
		State:   s.State,
	}
	if s.Decoded {
		rec.Mode = s.Command.Mode.String()
		rec.Command = s.Command.Values()
	}

	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()
}

// Records returns a copy of everything recorded so far.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
