package hrv

import (
	"sort"
	"time"

	"gohrv/domain/core"
)

// RRSample is one detected beat-to-beat gap. Interpolated marks values
// produced by the gap filler rather than measured by the device.
type RRSample struct {
	Timestamp    time.Time
	IntervalMS   float64
	Interpolated bool
}

// AccelSample is one tri-axial accelerometer reading, in milli-g.
type AccelSample struct {
	Timestamp time.Time
	X, Y, Z   float64
}

// TimeRange is a half-open-agnostic [Start, End] range used for manual
// exclusions and invalid (unfilled-gap) spans.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range (inclusive).
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Overlaps reports whether two ranges intersect.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return !r.Start.After(o.End) && !o.Start.After(r.End)
}

// ExclusionTable maps subjects to manually curated time ranges known a
// priori to contain device artifacts. Exclusions are explicit data, never
// inferred (they come from visual ECG inspection).
type ExclusionTable map[core.SubjectID][]TimeRange

// Ranges returns the exclusion ranges for a subject, nil when none exist.
func (t ExclusionTable) Ranges(subject core.SubjectID) []TimeRange {
	return t[subject]
}

// AnomalyMask is a boolean sequence parallel to an RR series; true marks
// a sample flagged by the detector.
type AnomalyMask []bool

// Count returns the number of flagged samples.
func (m AnomalyMask) Count() int {
	n := 0
	for _, flagged := range m {
		if flagged {
			n++
		}
	}
	return n
}

// Empty reports whether no sample is flagged.
func (m AnomalyMask) Empty() bool {
	return m.Count() == 0
}

// Window is a value object regenerated on demand from a series and a
// configuration; it is never persisted independently.
type Window struct {
	Subject core.SubjectID
	Start   time.Time
	End     time.Time
}

// Contains reports whether t falls within [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// MetricKind selects the HRV metric computed per window.
type MetricKind string

const (
	MetricRMSSD MetricKind = "RMSSD"
	MetricSDNN  MetricKind = "SDNN"
	MetricPNN50 MetricKind = "pNN50"
)

// Measurement is a tagged optional value. Undefined results (insufficient
// data) are distinct from a computed zero; downstream consumers filter on
// Valid instead of guessing from NaN or 0.
type Measurement struct {
	Value float64
	Valid bool
}

// Defined wraps a computed value.
func Defined(v float64) Measurement {
	return Measurement{Value: v, Valid: true}
}

// Undefined marks an insufficient-data outcome.
func Undefined() Measurement {
	return Measurement{}
}

// HRVResult is one per-window HRV value. Anchor is the median sample
// timestamp inside the window, used to pair against mobility results.
type HRVResult struct {
	Window Window
	Kind   MetricKind
	Result Measurement
	Anchor time.Time
}

// MobilityResult is one per-window motion magnitude.
type MobilityResult struct {
	Window Window
	Result Measurement
	Anchor time.Time
}

// CorrelationMethod selects the association statistic.
type CorrelationMethod string

const (
	CorrelationPearson  CorrelationMethod = "pearson"
	CorrelationSpearman CorrelationMethod = "spearman"
)

// PooledSubject labels a correlation computed over pairs concatenated
// across all subjects.
const PooledSubject core.SubjectID = "pooled"

// CorrelationResult is the association between paired HRV and mobility
// window series for one subject, or for the pooled cohort.
type CorrelationResult struct {
	Subject     core.SubjectID
	Method      CorrelationMethod
	Coefficient float64
	PValue      float64
	N           int
}

// RRSeries is one subject's ordered RR stream.
type RRSeries struct {
	Subject core.SubjectID
	Samples []RRSample
}

// Validate checks the loading collaborator's invariants: strictly
// increasing timestamps and positive intervals.
func (s RRSeries) Validate() error {
	for i, sample := range s.Samples {
		if sample.IntervalMS <= 0 {
			return core.NewSubjectError(s.Subject, core.ErrNonPositiveInterval)
		}
		if i > 0 && !s.Samples[i-1].Timestamp.Before(sample.Timestamp) {
			return core.NewSubjectError(s.Subject, core.ErrNonMonotonicSeries)
		}
	}
	return nil
}

// Start returns the first sample timestamp, zero for an empty series.
func (s RRSeries) Start() time.Time {
	if len(s.Samples) == 0 {
		return time.Time{}
	}
	return s.Samples[0].Timestamp
}

// End returns the last sample timestamp, zero for an empty series.
func (s RRSeries) End() time.Time {
	if len(s.Samples) == 0 {
		return time.Time{}
	}
	return s.Samples[len(s.Samples)-1].Timestamp
}

// Clip returns the samples inside [from, to], preserving order.
func (s RRSeries) Clip(from, to time.Time) RRSeries {
	lo := sort.Search(len(s.Samples), func(i int) bool {
		return !s.Samples[i].Timestamp.Before(from)
	})
	hi := sort.Search(len(s.Samples), func(i int) bool {
		return s.Samples[i].Timestamp.After(to)
	})
	return RRSeries{Subject: s.Subject, Samples: s.Samples[lo:hi]}
}

// AccelSeries is one subject's ordered accelerometer stream.
type AccelSeries struct {
	Subject core.SubjectID
	Samples []AccelSample
}

// Validate checks timestamp monotonicity.
func (s AccelSeries) Validate() error {
	for i := 1; i < len(s.Samples); i++ {
		if !s.Samples[i-1].Timestamp.Before(s.Samples[i].Timestamp) {
			return core.NewSubjectError(s.Subject, core.ErrNonMonotonicSeries)
		}
	}
	return nil
}

// Start returns the first sample timestamp, zero for an empty series.
func (s AccelSeries) Start() time.Time {
	if len(s.Samples) == 0 {
		return time.Time{}
	}
	return s.Samples[0].Timestamp
}

// End returns the last sample timestamp, zero for an empty series.
func (s AccelSeries) End() time.Time {
	if len(s.Samples) == 0 {
		return time.Time{}
	}
	return s.Samples[len(s.Samples)-1].Timestamp
}

// Clip returns the samples inside [from, to], preserving order.
func (s AccelSeries) Clip(from, to time.Time) AccelSeries {
	lo := sort.Search(len(s.Samples), func(i int) bool {
		return !s.Samples[i].Timestamp.Before(from)
	})
	hi := sort.Search(len(s.Samples), func(i int) bool {
		return s.Samples[i].Timestamp.After(to)
	})
	return AccelSeries{Subject: s.Subject, Samples: s.Samples[lo:hi]}
}
