package app

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"gohrv/adapters/stats/correlation"
	"gohrv/domain/core"
	"gohrv/domain/hrv"
	"gohrv/internal"
	"gohrv/internal/config"
	apperrors "gohrv/internal/errors"
	"gohrv/ports"
)

// RunSummary is the batch-level outcome: which subjects produced a
// report, which were skipped and the pooled cohort correlation.
type RunSummary struct {
	RunID     core.RunID
	Processed []core.SubjectID
	Skipped   []core.SubjectID
	Pooled    *hrv.CorrelationResult
}

// BatchRunner processes every subject of a source concurrently. One bad
// subject never aborts the batch; malformed and insufficient subjects
// are logged, counted as skipped and the rest continue.
type BatchRunner struct {
	source ports.RecordSource
	sink   ports.ResultSink
	cfg    *config.Config
	log    *internal.Logger
}

// NewBatchRunner creates a runner. The sink may be nil when only the
// summary is wanted, as in sweep mode.
func NewBatchRunner(source ports.RecordSource, sink ports.ResultSink, cfg *config.Config, logger *internal.Logger) *BatchRunner {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &BatchRunner{source: source, sink: sink, cfg: cfg, log: logger}
}

// Run executes the batch. Subjects are independent, so they run under a
// weighted semaphore bounded by the configured concurrency.
func (b *BatchRunner) Run(ctx context.Context) (RunSummary, error) {
	summary := RunSummary{RunID: core.NewRunID()}

	exclusions, err := b.source.Exclusions(ctx)
	if err != nil {
		return summary, err
	}
	subjects, err := b.source.Subjects(ctx)
	if err != nil {
		return summary, err
	}

	pipeline := NewPipeline(b.cfg, exclusions, b.log)
	sem := semaphore.NewWeighted(b.cfg.Batch.MaxConcurrent)

	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		xBySubject = map[core.SubjectID][]float64{}
		yBySubject = map[core.SubjectID][]float64{}
		sinkErr    error
	)

	for _, subject := range subjects {
		if err := sem.Acquire(ctx, 1); err != nil {
			return summary, err
		}
		wg.Add(1)
		go func(subject core.SubjectID) {
			defer wg.Done()
			defer sem.Release(1)

			report, err := b.analyzeSubject(ctx, pipeline, subject)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if core.IsMalformedInput(err) || core.IsInsufficientData(err) {
					b.log.Warn("subject %s skipped [%s]: %v", subject, apperrors.Code(err), err)
					summary.Skipped = append(summary.Skipped, subject)
					return
				}
				b.log.Error("subject %s failed [%s]: %v", subject, apperrors.Code(err), err)
				summary.Skipped = append(summary.Skipped, subject)
				return
			}
			summary.Processed = append(summary.Processed, subject)
			xBySubject[subject], yBySubject[subject] = report.PairedValues()
			if b.sink != nil {
				if err := b.sink.WriteSubject(ctx, report); err != nil && sinkErr == nil {
					sinkErr = err
				}
			}
		}(subject)
	}
	wg.Wait()
	if sinkErr != nil {
		return summary, sinkErr
	}

	engine := correlation.NewEngine(b.cfg.Correlation)
	pooled, err := engine.Pooled(xBySubject, yBySubject)
	if err != nil {
		// A cohort with too few pooled pairs still yields per-subject output.
		b.log.Warn("pooled correlation skipped: %v", err)
		return summary, nil
	}
	summary.Pooled = &pooled
	if b.sink != nil {
		if err := b.sink.WritePooled(ctx, pooled); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (b *BatchRunner) analyzeSubject(ctx context.Context, pipeline *Pipeline, subject core.SubjectID) (hrv.SubjectReport, error) {
	rr, err := b.source.RRIntervals(ctx, subject)
	if err != nil {
		return hrv.SubjectReport{}, err
	}
	acc, err := b.source.Accelerometer(ctx, subject)
	if err != nil {
		return hrv.SubjectReport{}, err
	}
	return pipeline.Analyze(ctx, rr, acc)
}
