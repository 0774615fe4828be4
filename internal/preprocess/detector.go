package preprocess

import (
	"math"
	"time"

	"gohrv/domain/core"
	"gohrv/domain/hrv"
	"gohrv/internal"
	"gohrv/internal/config"
)

// Detector flags and repairs implausible RR intervals. Detection is
// data-driven: a plausibility band, a relative-jump rule against the
// previous valid sample, and a manually curated exclusion table injected
// at construction. Anomalies are removed or corrected locally and logged
// as provenance, never surfaced as failures.
type Detector struct {
	cfg        config.PreprocessConfig
	exclusions hrv.ExclusionTable
	log        *internal.Logger
}

// NewDetector creates a detector sharing read-only configuration.
func NewDetector(cfg config.PreprocessConfig, exclusions hrv.ExclusionTable, logger *internal.Logger) *Detector {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Detector{cfg: cfg, exclusions: exclusions, log: logger}
}

// Detect produces the anomaly mask for a series without modifying it.
// A sample is anomalous when its interval falls outside the plausibility
// band, when its relative change from the previous valid sample exceeds
// the configured jump, or when it falls inside a manual exclusion range
// widened by the adjacent-beat radius.
func (d *Detector) Detect(series hrv.RRSeries) hrv.AnomalyMask {
	mask := make(hrv.AnomalyMask, len(series.Samples))
	excluded := widenRanges(d.exclusions.Ranges(series.Subject), d.cfg.AdjacentRadius)

	lastValid := -1
	for i, sample := range series.Samples {
		switch {
		case sample.IntervalMS < d.cfg.MinIntervalMS || sample.IntervalMS > d.cfg.MaxIntervalMS:
			mask[i] = true
		case inAnyRange(sample.Timestamp, excluded):
			mask[i] = true
		case lastValid >= 0 && relativeJump(series.Samples[lastValid].IntervalMS, sample.IntervalMS) > d.cfg.MaxRelativeJump:
			mask[i] = true
		}
		if !mask[i] {
			lastValid = i
		}
	}
	return mask
}

// Clean runs the full preprocessing for one subject: input validation,
// edge trimming, detection, the removal/correction policy and post-hole
// trimming. It returns the cleaned series, the anomaly mask (parallel to
// the edge-trimmed series) and the timestamps of every dropped sample so
// the interpolator knows where the gaps are.
func (d *Detector) Clean(series hrv.RRSeries) (hrv.RRSeries, hrv.AnomalyMask, []time.Time, error) {
	if err := series.Validate(); err != nil {
		return hrv.RRSeries{}, nil, nil, err
	}

	trimmed, trimmedOut := d.trimEdges(series)
	mask := d.Detect(trimmed)

	cleaned, removed := d.applyPolicy(trimmed, mask)
	cleaned, postHole := d.trimAfterHoles(cleaned)

	removed = append(removed, postHole...)
	if mask.Count() > 0 || len(trimmedOut) > 0 || len(postHole) > 0 {
		d.log.Debug("subject %s: %d flagged, %d edge-trimmed, %d post-hole beats dropped",
			series.Subject, mask.Count(), len(trimmedOut), len(postHole))
	}

	if len(cleaned.Samples) < d.cfg.MinSeriesLength {
		return hrv.RRSeries{}, mask, nil,
			core.NewSubjectError(series.Subject, core.ErrSeriesTooShort)
	}
	return cleaned, mask, removed, nil
}

// trimEdges drops the configured lead and tail of the recording. Sensor
// contact is unreliable while the strap settles.
func (d *Detector) trimEdges(series hrv.RRSeries) (hrv.RRSeries, []time.Time) {
	if len(series.Samples) == 0 || (d.cfg.LeadTrim <= 0 && d.cfg.TailTrim <= 0) {
		return series, nil
	}
	from := series.Start().Add(d.cfg.LeadTrim)
	to := series.End().Add(-d.cfg.TailTrim)
	if to.Before(from) {
		return hrv.RRSeries{Subject: series.Subject}, timestamps(series.Samples)
	}
	kept := series.Clip(from, to)
	var dropped []time.Time
	for _, s := range series.Samples {
		if s.Timestamp.Before(from) || s.Timestamp.After(to) {
			dropped = append(dropped, s.Timestamp)
		}
	}
	return kept, dropped
}

// applyPolicy removes flagged samples or, under the correct policy,
// replaces those with a valid neighbor on each side by a local linear
// placeholder. Leading and trailing anomalies are always removed.
func (d *Detector) applyPolicy(series hrv.RRSeries, mask hrv.AnomalyMask) (hrv.RRSeries, []time.Time) {
	out := hrv.RRSeries{Subject: series.Subject}
	var removed []time.Time

	for i, sample := range series.Samples {
		if !mask[i] {
			out.Samples = append(out.Samples, sample)
			continue
		}
		if d.cfg.Policy == config.PolicyCorrect {
			prev, prevOK := previousValid(series.Samples, mask, i)
			next, nextOK := nextValid(series.Samples, mask, i)
			if prevOK && nextOK {
				out.Samples = append(out.Samples, hrv.RRSample{
					Timestamp:    sample.Timestamp,
					IntervalMS:   lerp(prev, next, sample.Timestamp),
					Interpolated: true,
				})
				continue
			}
		}
		removed = append(removed, sample.Timestamp)
	}
	return out, removed
}

// trimAfterHoles removes beats that arrive within the post-hole window
// after any gap larger than the hole threshold; the first beats after a
// signal loss carry unreliable intervals.
func (d *Detector) trimAfterHoles(series hrv.RRSeries) (hrv.RRSeries, []time.Time) {
	if d.cfg.HoleThreshold <= 0 || d.cfg.PostHoleWindow <= 0 || len(series.Samples) < 2 {
		return series, nil
	}
	var suspect []hrv.TimeRange
	for i := 1; i < len(series.Samples); i++ {
		gap := series.Samples[i].Timestamp.Sub(series.Samples[i-1].Timestamp)
		if gap > d.cfg.HoleThreshold {
			start := series.Samples[i].Timestamp
			suspect = append(suspect, hrv.TimeRange{Start: start, End: start.Add(d.cfg.PostHoleWindow)})
		}
	}
	if len(suspect) == 0 {
		return series, nil
	}

	out := hrv.RRSeries{Subject: series.Subject}
	var dropped []time.Time
	for _, sample := range series.Samples {
		if inAnyRange(sample.Timestamp, suspect) {
			dropped = append(dropped, sample.Timestamp)
			continue
		}
		out.Samples = append(out.Samples, sample)
	}
	return out, dropped
}

func relativeJump(prev, cur float64) float64 {
	if prev == 0 {
		return math.Inf(1)
	}
	return math.Abs(cur-prev) / prev
}

func widenRanges(ranges []hrv.TimeRange, radius time.Duration) []hrv.TimeRange {
	if radius <= 0 || len(ranges) == 0 {
		return ranges
	}
	widened := make([]hrv.TimeRange, len(ranges))
	for i, r := range ranges {
		widened[i] = hrv.TimeRange{Start: r.Start.Add(-radius), End: r.End.Add(radius)}
	}
	return widened
}

func inAnyRange(t time.Time, ranges []hrv.TimeRange) bool {
	for _, r := range ranges {
		if r.Contains(t) {
			return true
		}
	}
	return false
}

func previousValid(samples []hrv.RRSample, mask hrv.AnomalyMask, i int) (hrv.RRSample, bool) {
	for j := i - 1; j >= 0; j-- {
		if !mask[j] {
			return samples[j], true
		}
	}
	return hrv.RRSample{}, false
}

func nextValid(samples []hrv.RRSample, mask hrv.AnomalyMask, i int) (hrv.RRSample, bool) {
	for j := i + 1; j < len(samples); j++ {
		if !mask[j] {
			return samples[j], true
		}
	}
	return hrv.RRSample{}, false
}

// lerp evaluates the linear interpolant between two valid samples at t.
func lerp(a, b hrv.RRSample, t time.Time) float64 {
	span := b.Timestamp.Sub(a.Timestamp).Seconds()
	if span == 0 {
		return a.IntervalMS
	}
	frac := t.Sub(a.Timestamp).Seconds() / span
	return a.IntervalMS + (b.IntervalMS-a.IntervalMS)*frac
}

func timestamps(samples []hrv.RRSample) []time.Time {
	ts := make([]time.Time, len(samples))
	for i, s := range samples {
		ts[i] = s.Timestamp
	}
	return ts
}
