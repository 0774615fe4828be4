package app

import (
	"context"
	"time"

	"gohrv/internal"
	"gohrv/internal/config"
	"gohrv/ports"
)

// SweepGrid enumerates the parameter combinations of a sensitivity
// sweep: every (length, step, interpolation) triple is one full batch
// run over the same source.
type SweepGrid struct {
	Lengths       []time.Duration
	Steps         []time.Duration
	Interpolation []bool
}

// DefaultGrid is the sweep used to check that the study conclusion is
// not an artifact of one parameter choice.
func DefaultGrid() SweepGrid {
	return SweepGrid{
		Lengths:       []time.Duration{5 * time.Minute, 10 * time.Minute, 15 * time.Minute},
		Steps:         []time.Duration{time.Minute, 5 * time.Minute},
		Interpolation: []bool{true, false},
	}
}

// SweepPoint is the pooled outcome of one parameter combination. Pooled
// is nil when the combination yielded too few pairs.
type SweepPoint struct {
	Length      time.Duration
	Step        time.Duration
	Interpolate bool
	Summary     RunSummary
}

// RunSweep executes a batch per grid point and collects the pooled
// correlations. A step longer than the window length leaves uncovered
// time, so such combinations are skipped unless gaps are allowed.
func RunSweep(ctx context.Context, source ports.RecordSource, base *config.Config, grid SweepGrid, logger *internal.Logger) ([]SweepPoint, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}

	var points []SweepPoint
	for _, length := range grid.Lengths {
		for _, step := range grid.Steps {
			if step > length && !base.Window.AllowGaps {
				logger.Debug("sweep: skipping step %s over length %s", step, length)
				continue
			}
			for _, interpolate := range grid.Interpolation {
				if err := ctx.Err(); err != nil {
					return points, err
				}
				cfg := *base
				cfg.Window.Length = length
				cfg.Window.Step = step
				cfg.Preprocess.Interpolate = interpolate

				summary, err := NewBatchRunner(source, nil, &cfg, logger).Run(ctx)
				if err != nil {
					return points, err
				}
				points = append(points, SweepPoint{
					Length:      length,
					Step:        step,
					Interpolate: interpolate,
					Summary:     summary,
				})
				if summary.Pooled != nil {
					logger.Info("sweep length=%s step=%s interpolate=%t: r=%.4f p=%.4f n=%d",
						length, step, interpolate,
						summary.Pooled.Coefficient, summary.Pooled.PValue, summary.Pooled.N)
				}
			}
		}
	}
	return points, nil
}
