package hrvcalc

import (
	"math"
	"testing"
	"time"

	"gohrv/domain/hrv"
	"gohrv/internal/config"
)

var base = time.Date(2023, 5, 10, 9, 0, 0, 0, time.UTC)

func testCfg() config.MetricsConfig {
	return config.MetricsConfig{MaxDiffGap: 2 * time.Second, NN50ThresholdMS: 50}
}

func samplesOf(intervals ...float64) []hrv.RRSample {
	out := make([]hrv.RRSample, len(intervals))
	for i, v := range intervals {
		out[i] = hrv.RRSample{Timestamp: base.Add(time.Duration(i) * time.Second), IntervalMS: v}
	}
	return out
}

func approx(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

func TestComputeUndefinedBelowTwoSamples(t *testing.T) {
	calc := New(testCfg())
	for _, kind := range []hrv.MetricKind{hrv.MetricRMSSD, hrv.MetricSDNN, hrv.MetricPNN50} {
		if m := calc.Compute(kind, nil); m.Valid {
			t.Errorf("%s over no samples: defined %v, want undefined", kind, m.Value)
		}
		if m := calc.Compute(kind, samplesOf(800)); m.Valid {
			t.Errorf("%s over one sample: defined %v, want undefined", kind, m.Value)
		}
	}
}

func TestRMSSD(t *testing.T) {
	calc := New(testCfg())
	// Diffs 50, 50, -100; mean square 5000.
	m := calc.Compute(hrv.MetricRMSSD, samplesOf(800, 850, 900, 800))
	if !m.Valid {
		t.Fatal("RMSSD undefined")
	}
	if want := math.Sqrt(5000); !approx(m.Value, want, 1e-9) {
		t.Errorf("RMSSD = %v, want %v", m.Value, want)
	}
}

func TestSDNNSampleVariance(t *testing.T) {
	calc := New(testCfg())
	m := calc.Compute(hrv.MetricSDNN, samplesOf(800, 850, 900, 800))
	if !m.Valid {
		t.Fatal("SDNN undefined")
	}
	if want := math.Sqrt(6875.0 / 3.0); !approx(m.Value, want, 1e-9) {
		t.Errorf("SDNN = %v, want %v (n-1 denominator)", m.Value, want)
	}
}

func TestPNN50StrictThresholdFraction(t *testing.T) {
	calc := New(testCfg())
	// Diffs 50, 50, -100; only |−100| strictly exceeds 50 ms.
	m := calc.Compute(hrv.MetricPNN50, samplesOf(800, 850, 900, 800))
	if !m.Valid {
		t.Fatal("pNN50 undefined")
	}
	if want := 1.0 / 3.0; !approx(m.Value, want, 1e-9) {
		t.Errorf("pNN50 = %v, want %v", m.Value, want)
	}
}

func TestSuccessiveDiffsSkipHoles(t *testing.T) {
	calc := New(testCfg())
	samples := []hrv.RRSample{
		{Timestamp: base, IntervalMS: 800},
		{Timestamp: base.Add(time.Second), IntervalMS: 900},
		{Timestamp: base.Add(6 * time.Second), IntervalMS: 700},
	}
	// The pair across the 5 s hole is dropped; only the 100 ms diff counts.
	m := calc.Compute(hrv.MetricPNN50, samples)
	if !m.Valid || m.Value != 1 {
		t.Errorf("pNN50 = %+v, want 1 from the single usable diff", m)
	}
}

func TestSubjectMean(t *testing.T) {
	results := []hrv.HRVResult{
		{Kind: hrv.MetricRMSSD, Result: hrv.Defined(50)},
		{Kind: hrv.MetricRMSSD, Result: hrv.Defined(0)},
		{Kind: hrv.MetricRMSSD, Result: hrv.Undefined()},
		{Kind: hrv.MetricRMSSD, Result: hrv.Defined(70)},
	}
	m := SubjectMean(hrv.MetricRMSSD, results)
	if !m.Valid || !approx(m.Value, 60, 1e-9) {
		t.Errorf("mean = %+v, want 60 (near-zero and undefined dropped)", m)
	}
}

func TestSubjectMeanKeepsZeroForPNN50(t *testing.T) {
	results := []hrv.HRVResult{
		{Kind: hrv.MetricPNN50, Result: hrv.Defined(0)},
		{Kind: hrv.MetricPNN50, Result: hrv.Defined(0.5)},
	}
	m := SubjectMean(hrv.MetricPNN50, results)
	if !m.Valid || !approx(m.Value, 0.25, 1e-9) {
		t.Errorf("pNN50 mean = %+v, want 0.25 (zero is a real value)", m)
	}
}

func TestSubjectMeanUndefinedWithoutValues(t *testing.T) {
	m := SubjectMean(hrv.MetricRMSSD, []hrv.HRVResult{{Result: hrv.Undefined()}})
	if m.Valid {
		t.Errorf("mean over undefined windows = %v, want undefined", m.Value)
	}
}
