package accel

import (
	"math"

	"github.com/montanaflynn/stats"

	"gohrv/domain/hrv"
	"gohrv/internal/config"
)

// CompensateGravity estimates the momentary gravity component per axis
// with a centered moving-average low-pass of the given span and returns
// the residual stream. The estimate is computed from the subject's own
// stream; gravity is not a fixed per-device constant because strap
// orientation drifts during a recording.
func CompensateGravity(series hrv.AccelSeries, span int) hrv.AccelSeries {
	n := len(series.Samples)
	if span < 3 || n == 0 {
		return series
	}
	half := span / 2

	out := hrv.AccelSeries{Subject: series.Subject, Samples: make([]hrv.AccelSample, n)}
	for i, s := range series.Samples {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > n {
			hi = n
		}
		var gx, gy, gz float64
		for j := lo; j < hi; j++ {
			gx += series.Samples[j].X
			gy += series.Samples[j].Y
			gz += series.Samples[j].Z
		}
		m := float64(hi - lo)
		out.Samples[i] = hrv.AccelSample{
			Timestamp: s.Timestamp,
			X:         s.X - gx/m,
			Y:         s.Y - gy/m,
			Z:         s.Z - gz/m,
		}
	}
	return out
}

// MobilityCalculator computes the scalar motion magnitude of one window:
// the mean of the per-sample vector magnitudes sqrt(x²+y²+z²). The mean
// (not the standard deviation) is the documented choice, matching the
// study's mobility coefficient.
type MobilityCalculator struct {
	cfg config.AccelConfig
}

// NewMobilityCalculator creates a calculator with the given settings.
func NewMobilityCalculator(cfg config.AccelConfig) *MobilityCalculator {
	return &MobilityCalculator{cfg: cfg}
}

// Compute returns the window's mobility coefficient, or an undefined
// measurement below the minimum sample count. Undefined is distinct from
// zero: a motionless window computes to ~0, a missing one does not
// compute at all.
func (m *MobilityCalculator) Compute(samples []hrv.AccelSample) hrv.Measurement {
	if len(samples) < m.cfg.MinSamples || len(samples) == 0 {
		return hrv.Undefined()
	}
	magnitudes := make([]float64, len(samples))
	for i, s := range samples {
		magnitudes[i] = math.Sqrt(s.X*s.X + s.Y*s.Y + s.Z*s.Z)
	}
	mean, err := stats.Mean(magnitudes)
	if err != nil {
		return hrv.Undefined()
	}
	return hrv.Defined(mean)
}
