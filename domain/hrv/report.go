package hrv

import (
	"gohrv/domain/core"
)

// SubjectReport is the complete per-subject analysis output: the
// per-window series for both signals, the subject-level HRV summary and
// the association between the paired series. Correlation is nil when the
// subject had too few paired windows; the report is still emitted so the
// skip is visible in the output.
type SubjectReport struct {
	Subject     core.SubjectID
	Metric      MetricKind
	HRV         []HRVResult
	Mobility    []MobilityResult
	MeanHRV     Measurement
	Correlation *CorrelationResult
}

// PairedValues extracts the (hrv, mobility) value pairs for windows where
// both results are defined. Pairing is positional: the two series share
// one window grid.
func (r SubjectReport) PairedValues() (x, y []float64) {
	n := len(r.HRV)
	if len(r.Mobility) < n {
		n = len(r.Mobility)
	}
	for i := 0; i < n; i++ {
		if !r.HRV[i].Result.Valid || !r.Mobility[i].Result.Valid {
			continue
		}
		x = append(x, r.HRV[i].Result.Value)
		y = append(y, r.Mobility[i].Result.Value)
	}
	return x, y
}
