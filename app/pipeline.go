// Package app orchestrates the analysis: per-subject pipelines, the
// concurrent batch runner and the parameter sensitivity sweep.
package app

import (
	"context"
	"time"

	"gohrv/adapters/stats/correlation"
	"gohrv/domain/core"
	"gohrv/domain/hrv"
	"gohrv/internal"
	"gohrv/internal/accel"
	"gohrv/internal/config"
	apperrors "gohrv/internal/errors"
	"gohrv/internal/hrvcalc"
	"gohrv/internal/preprocess"
	"gohrv/internal/window"
)

// Pipeline runs the full single-subject analysis: clean, fill, segment,
// compute both window series and associate them. Stateless after
// construction and safe for concurrent use across subjects.
type Pipeline struct {
	cfg          *config.Config
	detector     *preprocess.Detector
	interpolator *preprocess.Interpolator
	metrics      *hrvcalc.Calculator
	resampler    *accel.Resampler
	mobility     *accel.MobilityCalculator
	engine       *correlation.Engine
	log          *internal.Logger
}

// NewPipeline wires the stages from one configuration and exclusion table.
func NewPipeline(cfg *config.Config, exclusions hrv.ExclusionTable, logger *internal.Logger) *Pipeline {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Pipeline{
		cfg:          cfg,
		detector:     preprocess.NewDetector(cfg.Preprocess, exclusions, logger),
		interpolator: preprocess.NewInterpolator(cfg.Preprocess.MaxGapDuration),
		metrics:      hrvcalc.New(cfg.Metrics),
		resampler:    accel.NewResampler(cfg.Accel.TargetPeriod),
		mobility:     accel.NewMobilityCalculator(cfg.Accel),
		engine:       correlation.NewEngine(cfg.Correlation),
		log:          logger,
	}
}

// Analyze processes one subject's raw streams into a report. Malformed
// input and an insufficient series fail the subject; too few paired
// windows only leaves the report's Correlation nil.
func (p *Pipeline) Analyze(ctx context.Context, rr hrv.RRSeries, acc hrv.AccelSeries) (hrv.SubjectReport, error) {
	if err := ctx.Err(); err != nil {
		return hrv.SubjectReport{}, err
	}

	cleaned, _, removed, err := p.detector.Clean(rr)
	if err != nil {
		return hrv.SubjectReport{}, apperrors.WithCode(err, apperrors.CodePreprocess)
	}
	filled := cleaned
	if p.cfg.Preprocess.Interpolate {
		filled = p.interpolator.Fill(cleaned, removed)
	}
	invalid := preprocess.InvalidRanges(filled, p.cfg.Preprocess.MaxGapDuration)

	if err := acc.Validate(); err != nil {
		return hrv.SubjectReport{}, apperrors.WithCode(err, apperrors.CodeAccel)
	}
	resampled := p.resampler.Resample(acc)
	motion := resampled
	if p.cfg.Accel.GravityCompensated {
		motion = accel.CompensateGravity(resampled, p.cfg.Accel.GravitySpan)
	}

	// Both streams are clipped to their common range so one window grid
	// serves both and windows pair up by index.
	start := laterOf(filled.Start(), motion.Start())
	end := earlierOf(filled.End(), motion.End())
	if !start.Before(end) {
		return hrv.SubjectReport{}, apperrors.WithCode(
			core.NewSubjectError(rr.Subject, core.ErrInsufficientData), apperrors.CodeSegment)
	}
	filled = filled.Clip(start, end)
	motion = motion.Clip(start, end)
	bounds := hrv.TimeRange{Start: start, End: end}

	report := hrv.SubjectReport{
		Subject: rr.Subject,
		Metric:  p.cfg.Metrics.Kind,
	}
	report.HRV = p.hrvWindows(filled, bounds, invalid)
	report.Mobility = p.mobilityWindows(motion, bounds)
	report.MeanHRV = hrvcalc.SubjectMean(p.cfg.Metrics.Kind, report.HRV)

	x, y := report.PairedValues()
	result, err := p.engine.Correlate(rr.Subject, x, y)
	switch {
	case err == nil:
		report.Correlation = &result
	case core.IsInsufficientData(err):
		p.log.Info("subject %s: correlation skipped, %d defined pairs", rr.Subject, len(x))
	default:
		return hrv.SubjectReport{}, apperrors.WithCode(err, apperrors.CodeCorrelation)
	}
	return report, nil
}

// hrvWindows computes the per-window HRV series over the shared grid.
// Insufficient windows stay in the series as undefined placeholders to
// preserve positional pairing with the mobility series.
func (p *Pipeline) hrvWindows(series hrv.RRSeries, bounds hrv.TimeRange, invalid []hrv.TimeRange) []hrv.HRVResult {
	times := make([]time.Time, len(series.Samples))
	measured := make([]bool, len(series.Samples))
	for i, s := range series.Samples {
		times[i] = s.Timestamp
		measured[i] = !s.Interpolated
	}
	seg := window.NewSegmenter(p.cfg.Window, series.Subject, bounds,
		window.View{Times: times, Measured: measured}, invalid)

	var results []hrv.HRVResult
	for _, w := range seg.Windows() {
		lo, hi := seg.Bounds(w)
		result := hrv.HRVResult{Window: w, Kind: p.cfg.Metrics.Kind, Anchor: window.Anchor(times[lo:hi])}
		if seg.Sufficient(w) {
			result.Result = p.metrics.Compute(p.cfg.Metrics.Kind, series.Samples[lo:hi])
		}
		results = append(results, result)
	}
	return results
}

// mobilityWindows computes the per-window motion series over the same
// grid as the HRV series.
func (p *Pipeline) mobilityWindows(series hrv.AccelSeries, bounds hrv.TimeRange) []hrv.MobilityResult {
	times := make([]time.Time, len(series.Samples))
	for i, s := range series.Samples {
		times[i] = s.Timestamp
	}
	seg := window.NewSegmenter(p.cfg.Window, series.Subject, bounds,
		window.View{Times: times}, nil)

	var results []hrv.MobilityResult
	for _, w := range seg.Windows() {
		lo, hi := seg.Bounds(w)
		results = append(results, hrv.MobilityResult{
			Window: w,
			Result: p.mobility.Compute(series.Samples[lo:hi]),
			Anchor: window.Anchor(times[lo:hi]),
		})
	}
	return results
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
