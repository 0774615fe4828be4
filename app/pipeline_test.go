package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gohrv/domain/core"
	"gohrv/domain/hrv"
	"gohrv/internal/config"
)

var base = time.Date(2023, 5, 10, 9, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Preprocess.MinSeriesLength = 10
	cfg.Preprocess.LeadTrim = 0
	cfg.Preprocess.TailTrim = 0
	cfg.Preprocess.HoleThreshold = 0
	cfg.Preprocess.AdjacentRadius = 0
	cfg.Window.Length = time.Minute
	cfg.Window.Step = 30 * time.Second
	cfg.Accel.GravityCompensated = false
	cfg.Batch.MaxConcurrent = 2
	return &cfg
}

// syntheticRR alternates around 800 ms with an amplitude that grows over
// the recording, so per-window RMSSD rises monotonically.
func syntheticRR(subject core.SubjectID, seconds int) hrv.RRSeries {
	s := hrv.RRSeries{Subject: subject}
	sign := 1.0
	for i := 0; i < seconds; i++ {
		amplitude := 10 + float64(i)/10
		s.Samples = append(s.Samples, hrv.RRSample{
			Timestamp:  base.Add(time.Duration(i) * time.Second),
			IntervalMS: 800 + sign*amplitude,
		})
		sign = -sign
	}
	return s
}

// syntheticAccel grows in magnitude over the recording, tracking the RR
// amplitude so the two window series correlate positively.
func syntheticAccel(subject core.SubjectID, seconds int) hrv.AccelSeries {
	s := hrv.AccelSeries{Subject: subject}
	for i := 0; i < seconds; i++ {
		s.Samples = append(s.Samples, hrv.AccelSample{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			X:         1 + float64(i)/10,
		})
	}
	return s
}

func TestPipelineAnalyzeEndToEnd(t *testing.T) {
	cfg := testConfig()
	p := NewPipeline(cfg, nil, nil)

	report, err := p.Analyze(context.Background(),
		syntheticRR("ctrl_1", 600), syntheticAccel("ctrl_1", 600))
	require.NoError(t, err)

	assert.Equal(t, core.SubjectID("ctrl_1"), report.Subject)
	assert.Equal(t, hrv.MetricRMSSD, report.Metric)
	require.NotEmpty(t, report.HRV)
	require.Equal(t, len(report.HRV), len(report.Mobility),
		"both series must share one window grid")
	assert.Greater(t, len(report.HRV), 10)

	for i, r := range report.HRV {
		assert.True(t, r.Result.Valid, "window %d HRV undefined", i)
		assert.False(t, r.Anchor.IsZero(), "window %d missing anchor", i)
	}
	require.True(t, report.MeanHRV.Valid)
	assert.Greater(t, report.MeanHRV.Value, 0.0)

	require.NotNil(t, report.Correlation)
	assert.Greater(t, report.Correlation.Coefficient, 0.8,
		"amplitudes rise together, correlation should be strongly positive")
	assert.Less(t, report.Correlation.PValue, 0.05)
	assert.Equal(t, len(report.HRV), report.Correlation.N)
}

func TestPipelineRejectsMalformedInput(t *testing.T) {
	cfg := testConfig()
	p := NewPipeline(cfg, nil, nil)

	rr := syntheticRR("ctrl_1", 60)
	rr.Samples[5].Timestamp = rr.Samples[4].Timestamp

	_, err := p.Analyze(context.Background(), rr, syntheticAccel("ctrl_1", 60))
	require.Error(t, err)
	assert.True(t, core.IsMalformedInput(err))
}

func TestPipelineLeavesCorrelationNilOnFewPairs(t *testing.T) {
	cfg := testConfig()
	p := NewPipeline(cfg, nil, nil)

	// 90 s of data yields one 60 s window, far below the 3-pair floor.
	report, err := p.Analyze(context.Background(),
		syntheticRR("ctrl_1", 90), syntheticAccel("ctrl_1", 90))
	require.NoError(t, err)
	assert.Nil(t, report.Correlation)
	assert.NotEmpty(t, report.HRV)
}

func TestPipelineRejectsDisjointStreams(t *testing.T) {
	cfg := testConfig()
	p := NewPipeline(cfg, nil, nil)

	acc := syntheticAccel("ctrl_1", 60)
	for i := range acc.Samples {
		acc.Samples[i].Timestamp = acc.Samples[i].Timestamp.Add(24 * time.Hour)
	}
	_, err := p.Analyze(context.Background(), syntheticRR("ctrl_1", 60), acc)
	require.Error(t, err)
	assert.True(t, core.IsInsufficientData(err))
}
