package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"gohrv/domain/hrv"
)

func TestCSVSinkRowsAndHeader(t *testing.T) {
	var buf bytes.Buffer
	sink := NewCSVSink(&buf)
	ctx := context.Background()

	subjectReport := hrv.SubjectReport{
		Subject: "ctrl_1",
		Metric:  hrv.MetricRMSSD,
		MeanHRV: hrv.Defined(48.5),
		Correlation: &hrv.CorrelationResult{
			Subject: "ctrl_1", Method: hrv.CorrelationPearson,
			Coefficient: -0.42, PValue: 0.031, N: 57,
		},
	}
	if err := sink.WriteSubject(ctx, subjectReport); err != nil {
		t.Fatalf("WriteSubject: %v", err)
	}
	if err := sink.WritePooled(ctx, hrv.CorrelationResult{
		Subject: hrv.PooledSubject, Coefficient: -0.35, PValue: 0.002, N: 431,
	}); err != nil {
		t.Fatalf("WritePooled: %v", err)
	}
	if err := sink.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows", len(lines))
	}
	if lines[0] != "subject;group;metric;mean_hrv;r;p;n" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "ctrl_1;ctrl;RMSSD;48.5") {
		t.Errorf("subject row = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "pooled;;;;") {
		t.Errorf("pooled row = %q", lines[2])
	}
}

func TestCSVSinkUndefinedFieldsStayEmpty(t *testing.T) {
	var buf bytes.Buffer
	sink := NewCSVSink(&buf)

	err := sink.WriteSubject(context.Background(), hrv.SubjectReport{
		Subject: "ctrl_2",
		Metric:  hrv.MetricSDNN,
		MeanHRV: hrv.Undefined(),
	})
	if err != nil {
		t.Fatalf("WriteSubject: %v", err)
	}
	if err := sink.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[1] != "ctrl_2;ctrl;SDNN;;;;" {
		t.Errorf("row = %q, want empty fields, not zeros", lines[1])
	}
}
