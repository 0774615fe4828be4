// Package polarcsv loads Polar sensor exports from a directory of CSV
// files. Expected layout, matching the export tooling:
//
//	<group>_<n>_RR.csv    Phone timestamp;RR-interval [ms]
//	<group>_<n>_ACC.csv   Phone timestamp;X [mg];Y [mg];Z [mg]
//	exclusions.csv        subject;start;end (optional)
//
// The reader validates shape only. Physiological plausibility is the
// preprocessing stage's job.
package polarcsv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gohrv/domain/core"
	"gohrv/domain/hrv"
	apperrors "gohrv/internal/errors"
)

const (
	rrSuffix       = "_RR.csv"
	accSuffix      = "_ACC.csv"
	exclusionsFile = "exclusions.csv"
)

// Timestamp layouts seen across firmware versions of the export app.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Reader implements ports.RecordSource over a directory of exports.
type Reader struct {
	dir string
}

// NewReader creates a reader rooted at the given directory.
func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// Subjects scans the directory for RR exports and returns the subject
// list in sorted order. A subject without an RR file is not a subject.
func (r *Reader) Subjects(ctx context.Context) ([]core.SubjectID, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, apperrors.WithCode(fmt.Errorf("scanning %s: %w", r.dir, err), apperrors.CodeLoader)
	}

	var subjects []core.SubjectID
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), rrSuffix) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), rrSuffix)
		subject, err := core.ParseSubjectID(name)
		if err != nil {
			continue
		}
		subjects = append(subjects, subject)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i] < subjects[j] })
	return subjects, nil
}

// RRIntervals loads one subject's RR export.
func (r *Reader) RRIntervals(ctx context.Context, subject core.SubjectID) (hrv.RRSeries, error) {
	path := filepath.Join(r.dir, string(subject)+rrSuffix)
	f, err := os.Open(path)
	if err != nil {
		return hrv.RRSeries{}, apperrors.WithCode(core.NewSubjectError(subject, err), apperrors.CodeLoader)
	}
	defer f.Close()

	series := hrv.RRSeries{Subject: subject}
	err = forEachRecord(f, 2, func(fields []string) error {
		ts, err := parseTimestamp(fields[0])
		if err != nil {
			return err
		}
		interval, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return fmt.Errorf("%w: bad RR value %q", core.ErrMalformedInput, fields[1])
		}
		series.Samples = append(series.Samples, hrv.RRSample{Timestamp: ts, IntervalMS: interval})
		return nil
	})
	if err != nil {
		return hrv.RRSeries{}, apperrors.WithCode(core.NewSubjectError(subject, err), apperrors.CodeLoader)
	}
	return series, nil
}

// Accelerometer loads one subject's tri-axial export. All three channels
// must be present in every record.
func (r *Reader) Accelerometer(ctx context.Context, subject core.SubjectID) (hrv.AccelSeries, error) {
	path := filepath.Join(r.dir, string(subject)+accSuffix)
	f, err := os.Open(path)
	if err != nil {
		return hrv.AccelSeries{}, apperrors.WithCode(core.NewSubjectError(subject, err), apperrors.CodeLoader)
	}
	defer f.Close()

	series := hrv.AccelSeries{Subject: subject}
	err = forEachRecord(f, 4, func(fields []string) error {
		ts, err := parseTimestamp(fields[0])
		if err != nil {
			return err
		}
		var axes [3]float64
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
			if err != nil {
				return fmt.Errorf("%w: bad axis value %q", core.ErrMissingAccelChannels, fields[i+1])
			}
			axes[i] = v
		}
		series.Samples = append(series.Samples, hrv.AccelSample{
			Timestamp: ts, X: axes[0], Y: axes[1], Z: axes[2],
		})
		return nil
	})
	if err != nil {
		return hrv.AccelSeries{}, apperrors.WithCode(core.NewSubjectError(subject, err), apperrors.CodeLoader)
	}
	return series, nil
}

// Exclusions loads the optional manual exclusion table.
func (r *Reader) Exclusions(ctx context.Context) (hrv.ExclusionTable, error) {
	path := filepath.Join(r.dir, exclusionsFile)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return hrv.ExclusionTable{}, nil
	}
	if err != nil {
		return nil, apperrors.WithCode(err, apperrors.CodeLoader)
	}
	defer f.Close()

	table := hrv.ExclusionTable{}
	err = forEachRecord(f, 3, func(fields []string) error {
		subject, err := core.ParseSubjectID(strings.TrimSpace(fields[0]))
		if err != nil {
			return fmt.Errorf("%w: %v", core.ErrMalformedInput, err)
		}
		start, err := parseTimestamp(fields[1])
		if err != nil {
			return err
		}
		end, err := parseTimestamp(fields[2])
		if err != nil {
			return err
		}
		if end.Before(start) {
			return fmt.Errorf("%w: exclusion range ends before it starts", core.ErrMalformedInput)
		}
		table[subject] = append(table[subject], hrv.TimeRange{Start: start, End: end})
		return nil
	})
	if err != nil {
		return nil, apperrors.WithCode(err, apperrors.CodeLoader)
	}
	return table, nil
}

// forEachRecord streams semicolon-delimited records past the header row.
func forEachRecord(f io.Reader, minFields int, fn func(fields []string) error) error {
	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", core.ErrMalformedInput, err)
		}
		if first {
			first = false
			continue
		}
		if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
			continue
		}
		if len(record) < minFields {
			return fmt.Errorf("%w: expected %d fields, got %d", core.ErrMalformedInput, minFields, len(record))
		}
		if err := fn(record); err != nil {
			return err
		}
	}
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable timestamp %q", core.ErrMalformedInput, raw)
}
