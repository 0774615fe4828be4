// Package accel aligns the accelerometer stream to the RR time base and
// computes the per-window mobility coefficient.
package accel

import (
	"time"

	"gohrv/domain/hrv"
)

// Resampler downsamples a native-rate tri-axial stream onto a fixed
// target period. The period is explicit configuration, never inferred:
// the two device streams are not synchronized and subject-to-subject
// rate differences must be normalized identically.
type Resampler struct {
	period time.Duration
}

// NewResampler creates a resampler for the given target period.
func NewResampler(period time.Duration) *Resampler {
	return &Resampler{period: period}
}

// Resample aggregates every sample within one target-period bucket into
// a single representative sample holding the per-axis means, anchored at
// the bucket center. Empty buckets produce no output sample; downstream
// windowing tolerates the resulting gaps.
func (r *Resampler) Resample(series hrv.AccelSeries) hrv.AccelSeries {
	out := hrv.AccelSeries{Subject: series.Subject}
	if len(series.Samples) == 0 {
		return out
	}

	origin := series.Samples[0].Timestamp
	bucketStart := origin
	var sumX, sumY, sumZ float64
	var count int

	flush := func() {
		if count == 0 {
			return
		}
		n := float64(count)
		out.Samples = append(out.Samples, hrv.AccelSample{
			Timestamp: bucketStart.Add(r.period / 2),
			X:         sumX / n,
			Y:         sumY / n,
			Z:         sumZ / n,
		})
		sumX, sumY, sumZ, count = 0, 0, 0, 0
	}

	for _, s := range series.Samples {
		for !s.Timestamp.Before(bucketStart.Add(r.period)) {
			flush()
			bucketStart = bucketStart.Add(r.period)
		}
		sumX += s.X
		sumY += s.Y
		sumZ += s.Z
		count++
	}
	flush()
	return out
}
