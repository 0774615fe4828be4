package accel

import (
	"math"
	"testing"
	"time"

	"gohrv/domain/hrv"
	"gohrv/internal/config"
)

var base = time.Date(2023, 5, 10, 9, 0, 0, 0, time.UTC)

func TestResampleBucketMeans(t *testing.T) {
	series := hrv.AccelSeries{Subject: "ctrl_1", Samples: []hrv.AccelSample{
		{Timestamp: base, X: 1},
		{Timestamp: base.Add(200 * time.Millisecond), X: 2},
		{Timestamp: base.Add(400 * time.Millisecond), X: 3},
		{Timestamp: base.Add(1100 * time.Millisecond), X: 10},
	}}
	out := NewResampler(time.Second).Resample(series)

	if len(out.Samples) != 2 {
		t.Fatalf("got %d resampled samples, want 2", len(out.Samples))
	}
	if out.Samples[0].X != 2 {
		t.Errorf("first bucket mean X = %v, want 2", out.Samples[0].X)
	}
	if !out.Samples[0].Timestamp.Equal(base.Add(500 * time.Millisecond)) {
		t.Errorf("first bucket anchored at %v, want bucket center", out.Samples[0].Timestamp)
	}
	if out.Samples[1].X != 10 {
		t.Errorf("second bucket mean X = %v, want 10", out.Samples[1].X)
	}
}

func TestResampleSkipsEmptyBuckets(t *testing.T) {
	series := hrv.AccelSeries{Subject: "ctrl_1", Samples: []hrv.AccelSample{
		{Timestamp: base, X: 1},
		{Timestamp: base.Add(3 * time.Second), X: 2},
	}}
	out := NewResampler(time.Second).Resample(series)

	if len(out.Samples) != 2 {
		t.Errorf("got %d samples, want 2 (empty buckets produce none)", len(out.Samples))
	}
}

func TestCompensateGravityRemovesConstantComponent(t *testing.T) {
	series := hrv.AccelSeries{Subject: "ctrl_1"}
	for i := 0; i < 20; i++ {
		series.Samples = append(series.Samples, hrv.AccelSample{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			X:         1000,
		})
	}
	out := CompensateGravity(series, 5)

	for i, s := range out.Samples {
		if math.Abs(s.X) > 1e-9 {
			t.Errorf("sample %d: residual X = %v, want 0", i, s.X)
		}
	}
}

func TestMobilityMeanMagnitude(t *testing.T) {
	calc := NewMobilityCalculator(config.AccelConfig{MinSamples: 1})
	samples := []hrv.AccelSample{
		{Timestamp: base, X: 3, Y: 4},
		{Timestamp: base.Add(time.Second), X: 0, Y: 0, Z: 5},
	}
	m := calc.Compute(samples)
	if !m.Valid || m.Value != 5 {
		t.Errorf("mobility = %+v, want 5", m)
	}
}

func TestMobilityUndefinedBelowFloor(t *testing.T) {
	calc := NewMobilityCalculator(config.AccelConfig{MinSamples: 5})
	samples := []hrv.AccelSample{{Timestamp: base, X: 1}}
	if m := calc.Compute(samples); m.Valid {
		t.Errorf("mobility over 1 sample = %v, want undefined", m.Value)
	}
	if m := calc.Compute(nil); m.Valid {
		t.Error("mobility over no samples should be undefined")
	}
}
