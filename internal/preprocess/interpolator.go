package preprocess

import (
	"sort"
	"time"

	"gohrv/domain/hrv"
)

// Interpolator restores a continuous series by filling removed samples
// with linear interpolation between the nearest valid neighbors. It never
// extrapolates beyond the first or last valid sample, and a gap wider
// than maxGap stays unfilled; the covering range is reported invalid so
// downstream windows can reject it.
type Interpolator struct {
	maxGap time.Duration
}

// NewInterpolator creates an interpolator with the configured gap limit.
func NewInterpolator(maxGap time.Duration) *Interpolator {
	return &Interpolator{maxGap: maxGap}
}

// Fill evaluates the linear interpolant at each removed timestamp. For a
// gap between valid samples (t0, v0) and (t1, v1) the value at t is
// v0 + (v1-v0)*(t-t0)/(t1-t0). Predictions outside the observed value
// range of the cleaned series are rejected rather than inserted.
func (ip *Interpolator) Fill(cleaned hrv.RRSeries, removed []time.Time) hrv.RRSeries {
	if len(cleaned.Samples) < 2 || len(removed) == 0 {
		return cleaned
	}

	lowest, highest := valueRange(cleaned.Samples)
	first := cleaned.Start()
	last := cleaned.End()

	filled := hrv.RRSeries{Subject: cleaned.Subject}
	filled.Samples = append(filled.Samples, cleaned.Samples...)

	sorted := make([]time.Time, len(removed))
	copy(sorted, removed)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	for _, t := range sorted {
		// No extrapolation past the valid boundaries.
		if t.Before(first) || t.After(last) {
			continue
		}
		before, after, ok := neighbors(cleaned.Samples, t)
		if !ok {
			continue
		}
		if after.Timestamp.Sub(before.Timestamp) > ip.maxGap {
			continue
		}
		value := lerp(before, after, t)
		if value < lowest || value > highest {
			continue
		}
		filled.Samples = append(filled.Samples, hrv.RRSample{
			Timestamp:    t,
			IntervalMS:   value,
			Interpolated: true,
		})
	}

	sort.Slice(filled.Samples, func(i, j int) bool {
		return filled.Samples[i].Timestamp.Before(filled.Samples[j].Timestamp)
	})
	return filled
}

// InvalidRanges scans a series for inter-sample gaps wider than maxGap.
// The returned ranges cover time the pipeline must treat as missing.
func InvalidRanges(series hrv.RRSeries, maxGap time.Duration) []hrv.TimeRange {
	var ranges []hrv.TimeRange
	for i := 1; i < len(series.Samples); i++ {
		prev := series.Samples[i-1].Timestamp
		cur := series.Samples[i].Timestamp
		if cur.Sub(prev) > maxGap {
			ranges = append(ranges, hrv.TimeRange{Start: prev, End: cur})
		}
	}
	return ranges
}

// neighbors finds the nearest valid samples strictly before and after t.
func neighbors(samples []hrv.RRSample, t time.Time) (before, after hrv.RRSample, ok bool) {
	i := sort.Search(len(samples), func(i int) bool {
		return !samples[i].Timestamp.Before(t)
	})
	if i == 0 || i >= len(samples) {
		return hrv.RRSample{}, hrv.RRSample{}, false
	}
	if samples[i].Timestamp.Equal(t) {
		// Timestamp already present; nothing to fill.
		return hrv.RRSample{}, hrv.RRSample{}, false
	}
	return samples[i-1], samples[i], true
}

func valueRange(samples []hrv.RRSample) (lowest, highest float64) {
	lowest, highest = samples[0].IntervalMS, samples[0].IntervalMS
	for _, s := range samples[1:] {
		if s.IntervalMS < lowest {
			lowest = s.IntervalMS
		}
		if s.IntervalMS > highest {
			highest = s.IntervalMS
		}
	}
	return lowest, highest
}
