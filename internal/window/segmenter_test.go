package window

import (
	"testing"
	"time"

	"gohrv/domain/hrv"
	"gohrv/internal/config"
)

var base = time.Date(2023, 5, 10, 9, 0, 0, 0, time.UTC)

func TestWindowsCoverBoundsWithoutPartials(t *testing.T) {
	cfg := config.WindowConfig{Length: 15 * time.Minute, Step: time.Minute, MinSamples: 1}
	bounds := hrv.TimeRange{Start: base, End: base.Add(20 * time.Minute)}
	seg := NewSegmenter(cfg, "ctrl_1", bounds, View{}, nil)

	windows := seg.Windows()
	if len(windows) != 6 {
		t.Fatalf("got %d windows, want 6", len(windows))
	}
	first, last := windows[0], windows[len(windows)-1]
	if !first.Start.Equal(base) || !first.End.Equal(base.Add(15*time.Minute)) {
		t.Errorf("first window = %v..%v", first.Start, first.End)
	}
	if !last.End.Equal(bounds.End) {
		t.Errorf("last window ends at %v, want %v", last.End, bounds.End)
	}
}

func TestWindowsDropPartialTail(t *testing.T) {
	cfg := config.WindowConfig{Length: 15 * time.Minute, Step: time.Minute, MinSamples: 1}
	bounds := hrv.TimeRange{Start: base, End: base.Add(10 * time.Minute)}
	seg := NewSegmenter(cfg, "ctrl_1", bounds, View{}, nil)

	if windows := seg.Windows(); len(windows) != 0 {
		t.Errorf("got %d windows from a span shorter than one window", len(windows))
	}
}

func TestBoundsAreHalfOpen(t *testing.T) {
	times := []time.Time{base, base.Add(30 * time.Second), base.Add(time.Minute)}
	cfg := config.WindowConfig{Length: time.Minute, Step: time.Minute, MinSamples: 1}
	seg := NewSegmenter(cfg, "ctrl_1", hrv.TimeRange{Start: base, End: base.Add(2 * time.Minute)}, View{Times: times}, nil)

	w := hrv.Window{Subject: "ctrl_1", Start: base, End: base.Add(time.Minute)}
	lo, hi := seg.Bounds(w)
	if hi-lo != 2 {
		t.Errorf("window holds %d samples, want 2 (end boundary excluded)", hi-lo)
	}
}

func TestSufficientRejectsSparseWindows(t *testing.T) {
	cfg := config.WindowConfig{Length: time.Minute, Step: time.Minute, MinSamples: 2, MinValidFraction: 0.5}
	bounds := hrv.TimeRange{Start: base, End: base.Add(time.Minute)}
	w := hrv.Window{Subject: "ctrl_1", Start: base, End: base.Add(time.Minute)}

	tests := []struct {
		name     string
		view     View
		invalid  []hrv.TimeRange
		expected bool
	}{
		{
			name:     "enough measured samples",
			view:     View{Times: []time.Time{base, base.Add(10 * time.Second), base.Add(20 * time.Second)}},
			expected: true,
		},
		{
			name:     "below absolute floor",
			view:     View{Times: []time.Time{base}},
			expected: false,
		},
		{
			name: "mostly interpolated",
			view: View{
				Times:    []time.Time{base, base.Add(10 * time.Second), base.Add(20 * time.Second), base.Add(30 * time.Second)},
				Measured: []bool{true, false, false, false},
			},
			expected: false,
		},
		{
			name:     "overlapping invalid range",
			view:     View{Times: []time.Time{base, base.Add(10 * time.Second), base.Add(20 * time.Second)}},
			invalid:  []hrv.TimeRange{{Start: base.Add(30 * time.Second), End: base.Add(90 * time.Second)}},
			expected: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seg := NewSegmenter(cfg, "ctrl_1", bounds, tc.view, tc.invalid)
			if got := seg.Sufficient(w); got != tc.expected {
				t.Errorf("Sufficient = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestAnchorMedianTimestamp(t *testing.T) {
	odd := []time.Time{base, base.Add(time.Second), base.Add(10 * time.Second)}
	if got := Anchor(odd); !got.Equal(base.Add(time.Second)) {
		t.Errorf("odd anchor = %v, want +1s", got)
	}
	even := []time.Time{base, base.Add(4 * time.Second)}
	if got := Anchor(even); !got.Equal(base.Add(2 * time.Second)) {
		t.Errorf("even anchor = %v, want +2s", got)
	}
	if got := Anchor(nil); !got.IsZero() {
		t.Errorf("empty anchor = %v, want zero", got)
	}
}
