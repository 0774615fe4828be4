// Package ports defines the interfaces between the pipeline core and the
// outside world. Adapters implement them; the application layer depends
// only on these contracts.
package ports

import (
	"context"

	"gohrv/domain/core"
	"gohrv/domain/hrv"
)

// RecordSource provides the study recordings. Implementations validate
// shape only (parseable timestamps, expected channels); physiological
// plausibility belongs to the preprocessing stage.
type RecordSource interface {
	// Subjects lists every subject the source can serve.
	Subjects(ctx context.Context) ([]core.SubjectID, error)

	// RRIntervals loads one subject's RR stream in recording order.
	RRIntervals(ctx context.Context, subject core.SubjectID) (hrv.RRSeries, error)

	// Accelerometer loads one subject's tri-axial stream in recording order.
	Accelerometer(ctx context.Context, subject core.SubjectID) (hrv.AccelSeries, error)

	// Exclusions loads the manually curated exclusion table. An empty
	// table is valid; a missing one is not an error.
	Exclusions(ctx context.Context) (hrv.ExclusionTable, error)
}
