// Package hrvcalc computes HRV metrics over the RR intervals of one
// window. The calculator is stateless and pure: identical inputs always
// yield identical output.
//
// Conventions, fixed here and relied on by the reporting side:
//   - SDNN is the sample standard deviation (divide by n-1).
//   - pNN50 is a fraction in [0,1], counting |Δ| strictly greater than
//     the threshold.
package hrvcalc

import (
	"math"

	"github.com/montanaflynn/stats"

	"gohrv/domain/hrv"
	"gohrv/internal/config"
)

// Calculator computes one metric kind per window.
type Calculator struct {
	cfg config.MetricsConfig
}

// New creates a calculator with the given settings.
func New(cfg config.MetricsConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

// Compute evaluates the metric over one window's samples. Fewer than two
// samples, or no usable successive difference, yields an undefined
// measurement rather than zero.
func (c *Calculator) Compute(kind hrv.MetricKind, samples []hrv.RRSample) hrv.Measurement {
	switch kind {
	case hrv.MetricRMSSD:
		return c.rmssd(samples)
	case hrv.MetricSDNN:
		return c.sdnn(samples)
	case hrv.MetricPNN50:
		return c.pnn50(samples)
	default:
		return hrv.Undefined()
	}
}

// rmssd is the root mean square of successive differences.
func (c *Calculator) rmssd(samples []hrv.RRSample) hrv.Measurement {
	diffs := c.successiveDiffs(samples)
	if len(diffs) == 0 {
		return hrv.Undefined()
	}
	squared := make([]float64, len(diffs))
	for i, d := range diffs {
		squared[i] = d * d
	}
	meanSq, err := stats.Mean(squared)
	if err != nil {
		return hrv.Undefined()
	}
	return hrv.Defined(math.Sqrt(meanSq))
}

// sdnn is the sample standard deviation of the intervals in the window.
func (c *Calculator) sdnn(samples []hrv.RRSample) hrv.Measurement {
	if len(samples) < 2 {
		return hrv.Undefined()
	}
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.IntervalMS
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil {
		return hrv.Undefined()
	}
	return hrv.Defined(sd)
}

// pnn50 is the fraction of successive-difference pairs strictly
// exceeding the threshold (50 ms by default). Zero is a legitimate
// outcome here, not a missing-data marker.
func (c *Calculator) pnn50(samples []hrv.RRSample) hrv.Measurement {
	diffs := c.successiveDiffs(samples)
	if len(diffs) == 0 {
		return hrv.Undefined()
	}
	over := 0
	for _, d := range diffs {
		if math.Abs(d) > c.cfg.NN50ThresholdMS {
			over++
		}
	}
	return hrv.Defined(float64(over) / float64(len(diffs)))
}

// successiveDiffs returns the beat-to-beat interval differences inside a
// window, excluding any pair that spans more than the configured hole
// gap. A difference across an unfilled hole is dropped, never zeroed.
func (c *Calculator) successiveDiffs(samples []hrv.RRSample) []float64 {
	if len(samples) < 2 {
		return nil
	}
	var diffs []float64
	for i := 1; i < len(samples); i++ {
		if c.cfg.MaxDiffGap > 0 &&
			samples[i].Timestamp.Sub(samples[i-1].Timestamp) > c.cfg.MaxDiffGap {
			continue
		}
		diffs = append(diffs, samples[i].IntervalMS-samples[i-1].IntervalMS)
	}
	return diffs
}

// SubjectMean summarizes a subject's window series as the mean of the
// defined values. Near-zero values are dropped as degenerate-window
// artifacts for every metric except pNN50, where zero is real.
func SubjectMean(kind hrv.MetricKind, results []hrv.HRVResult) hrv.Measurement {
	var values []float64
	for _, r := range results {
		if !r.Result.Valid {
			continue
		}
		if kind != hrv.MetricPNN50 && r.Result.Value < 1e-6 {
			continue
		}
		values = append(values, r.Result.Value)
	}
	if len(values) == 0 {
		return hrv.Undefined()
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return hrv.Undefined()
	}
	return hrv.Defined(mean)
}
