// Package window turns a continuous time-stamped series into overlapping
// sliding windows. Windows are cheap value objects regenerated from the
// bounds and the configuration, so the sequence is restartable for free.
package window

import (
	"sort"
	"time"

	"gohrv/domain/core"
	"gohrv/domain/hrv"
	"gohrv/internal/config"
)

// View is the segmenter's read-only picture of any time-stamped stream.
// Measured marks device samples as opposed to interpolated fills; a nil
// slice means every sample is measured.
type View struct {
	Times    []time.Time
	Measured []bool
}

// Segmenter produces the window grid for one subject and extracts the
// per-window sample ranges. The same grid is shared by the HRV and
// mobility series so their windows pair up by index.
type Segmenter struct {
	cfg     config.WindowConfig
	subject core.SubjectID
	bounds  hrv.TimeRange
	view    View
	invalid []hrv.TimeRange
}

// NewSegmenter builds a segmenter over explicit bounds. Bounds come from
// the caller, not the sample extent, so two streams clipped to a common
// range generate identical grids.
func NewSegmenter(cfg config.WindowConfig, subject core.SubjectID, bounds hrv.TimeRange, view View, invalid []hrv.TimeRange) *Segmenter {
	return &Segmenter{cfg: cfg, subject: subject, bounds: bounds, view: view, invalid: invalid}
}

// Windows generates the grid covering [start, end-length] stepped by the
// configured step. The final partial window is dropped, never padded.
func (s *Segmenter) Windows() []hrv.Window {
	var windows []hrv.Window
	for start := s.bounds.Start; !start.Add(s.cfg.Length).After(s.bounds.End); start = start.Add(s.cfg.Step) {
		windows = append(windows, hrv.Window{
			Subject: s.subject,
			Start:   start,
			End:     start.Add(s.cfg.Length),
		})
	}
	return windows
}

// Bounds returns the index range [lo, hi) of samples whose timestamps
// fall within [w.Start, w.End).
func (s *Segmenter) Bounds(w hrv.Window) (lo, hi int) {
	lo = sort.Search(len(s.view.Times), func(i int) bool {
		return !s.view.Times[i].Before(w.Start)
	})
	hi = sort.Search(len(s.view.Times), func(i int) bool {
		return !s.view.Times[i].Before(w.End)
	})
	return lo, hi
}

// Sufficient reports whether a window carries enough measured data to
// compute a metric. Insufficient windows must propagate an undefined
// value, never a computed zero.
func (s *Segmenter) Sufficient(w hrv.Window) bool {
	lo, hi := s.Bounds(w)
	count := hi - lo
	if count < s.cfg.MinSamples {
		return false
	}
	for _, r := range s.invalid {
		if r.Overlaps(hrv.TimeRange{Start: w.Start, End: w.End}) {
			return false
		}
	}
	if s.view.Measured == nil {
		return true
	}
	measured := 0
	for i := lo; i < hi; i++ {
		if s.view.Measured[i] {
			measured++
		}
	}
	return float64(measured) >= s.cfg.MinValidFraction*float64(count)
}

// Anchor returns the median timestamp of a window's samples, the point
// each window result is anchored at for cross-stream pairing.
func Anchor(times []time.Time) time.Time {
	if len(times) == 0 {
		return time.Time{}
	}
	mid := len(times) / 2
	if len(times)%2 == 1 {
		return times[mid]
	}
	a, b := times[mid-1], times[mid]
	return a.Add(b.Sub(a) / 2)
}
