package analysis

import (
	"math"

	"github.com/san-kum/stepbridge/internal/bridge"
	"github.com/san-kum/stepbridge/internal/storage"
)

// Touchdown is the first step of an episode at or below a contact height.
type Touchdown struct {
	Episode  int
	Index    int
	Time     float64
	Vertical float64 // vertical speed at contact, negative when sinking
	Offset   float64 // horizontal distance from the target
}

// Touchdowns scans records in order and reports the first contact of each
// episode. Episodes that never get below height are omitted.
func Touchdowns(records []storage.Record, height float64) []Touchdown {
	var out []Touchdown
	seen := make(map[int]bool)
	for _, r := range records {
		if r.Mode != bridge.ModeApply.String() || seen[r.Episode] {
			continue
		}
		if r.State[bridge.DY] > height {
			continue
		}
		seen[r.Episode] = true
		dx, dz := r.State[bridge.DX], r.State[bridge.DZ]
		out = append(out, Touchdown{
			Episode:  r.Episode,
			Index:    r.Index,
			Time:     r.Time,
			Vertical: r.State[bridge.VY],
			Offset:   math.Hypot(dx, dz),
		})
	}
	return out
}
