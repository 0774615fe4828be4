package ports

import (
	"context"

	"gohrv/domain/hrv"
)

// ResultSink receives analysis output. A sink must tolerate reports with
// a nil Correlation; skipped subjects are reported, not hidden.
type ResultSink interface {
	// WriteSubject emits one subject's report.
	WriteSubject(ctx context.Context, report hrv.SubjectReport) error

	// WritePooled emits the cohort-level pooled correlation.
	WritePooled(ctx context.Context, result hrv.CorrelationResult) error
}
