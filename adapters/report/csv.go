// Package report writes analysis results as semicolon-delimited CSV,
// mirroring the delimiter of the input exports so the output loads into
// the same spreadsheet tooling.
package report

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"sync"

	"gohrv/domain/hrv"
	apperrors "gohrv/internal/errors"
)

var header = []string{"subject", "group", "metric", "mean_hrv", "r", "p", "n"}

// CSVSink implements ports.ResultSink over any writer. Safe for
// concurrent use; the batch runner writes from multiple goroutines.
type CSVSink struct {
	mu      sync.Mutex
	w       *csv.Writer
	started bool
}

// NewCSVSink creates a sink writing to w.
func NewCSVSink(w io.Writer) *CSVSink {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	return &CSVSink{w: cw}
}

// WriteSubject emits one subject row. Undefined means and missing
// correlations render as empty fields, never as zeros.
func (s *CSVSink) WriteSubject(ctx context.Context, r hrv.SubjectReport) error {
	row := []string{
		string(r.Subject),
		r.Subject.Group(),
		string(r.Metric),
		formatMeasurement(r.MeanHRV),
		"", "", "",
	}
	if r.Correlation != nil {
		row[4] = formatFloat(r.Correlation.Coefficient)
		row[5] = formatFloat(r.Correlation.PValue)
		row[6] = strconv.Itoa(r.Correlation.N)
	}
	return s.write(row)
}

// WritePooled emits the cohort row.
func (s *CSVSink) WritePooled(ctx context.Context, result hrv.CorrelationResult) error {
	return s.write([]string{
		string(result.Subject),
		"",
		"",
		"",
		formatFloat(result.Coefficient),
		formatFloat(result.PValue),
		strconv.Itoa(result.N),
	})
}

// Flush forces buffered rows out. Call once after the batch completes.
func (s *CSVSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return apperrors.WithCode(err, apperrors.CodeInternal)
	}
	return nil
}

func (s *CSVSink) write(row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		if err := s.w.Write(header); err != nil {
			return apperrors.WithCode(err, apperrors.CodeInternal)
		}
		s.started = true
	}
	if err := s.w.Write(row); err != nil {
		return apperrors.WithCode(err, apperrors.CodeInternal)
	}
	return nil
}

func formatMeasurement(m hrv.Measurement) string {
	if !m.Valid {
		return ""
	}
	return formatFloat(m.Value)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
