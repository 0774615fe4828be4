// Package correlation associates a subject's paired per-window HRV and
// mobility series. Pearson or Spearman is configuration-selected; the
// significance comes from the exact t transform of the coefficient.
package correlation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"gohrv/domain/core"
	"gohrv/domain/hrv"
	"gohrv/internal/config"
)

// Engine computes association statistics over defined window pairs.
type Engine struct {
	cfg config.CorrelationConfig
}

// NewEngine creates an engine with the configured method and floor.
func NewEngine(cfg config.CorrelationConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Correlate computes the configured coefficient and its two-tailed
// p-value for one subject's paired values. Fewer pairs than the floor
// (never below 3) reports insufficient data instead of a degenerate
// statistic.
func (e *Engine) Correlate(subject core.SubjectID, x, y []float64) (hrv.CorrelationResult, error) {
	if len(x) != len(y) || len(x) < e.cfg.MinPairs {
		return hrv.CorrelationResult{}, core.NewSubjectError(subject, core.ErrTooFewPairedWindows)
	}

	var r float64
	switch e.cfg.Method {
	case hrv.CorrelationSpearman:
		r = stat.Correlation(ranks(x), ranks(y), nil)
	default:
		r = stat.Correlation(x, y, nil)
	}
	if math.IsNaN(r) {
		// Zero variance on one side; no association is measurable.
		return hrv.CorrelationResult{}, core.NewSubjectError(subject, core.ErrInsufficientData)
	}
	r = clamp(r, -1, 1)

	return hrv.CorrelationResult{
		Subject:     subject,
		Method:      e.cfg.Method,
		Coefficient: r,
		PValue:      pValue(r, len(x)),
		N:           len(x),
	}, nil
}

// Pooled concatenates defined pairs across subjects after per-subject
// window alignment and correlates the raw pooled pairs. Coefficients are
// never averaged across subjects.
func (e *Engine) Pooled(xBySubject, yBySubject map[core.SubjectID][]float64) (hrv.CorrelationResult, error) {
	var x, y []float64
	for subject, xs := range xBySubject {
		ys, ok := yBySubject[subject]
		if !ok || len(xs) != len(ys) {
			continue
		}
		x = append(x, xs...)
		y = append(y, ys...)
	}
	return e.Correlate(hrv.PooledSubject, x, y)
}

// pValue is the two-tailed significance of r under the t distribution
// with n-2 degrees of freedom: t = r*sqrt((n-2)/(1-r²)).
func pValue(r float64, n int) float64 {
	if n < 3 {
		return 1
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	t := r * math.Sqrt(float64(n-2)/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	p := 2 * (1 - dist.CDF(math.Abs(t)))
	return clamp(p, 0, 1)
}

// ranks converts values to ranks with ties averaged, the standard
// Spearman treatment.
func ranks(data []float64) []float64 {
	n := len(data)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return data[idx[i]] < data[idx[j]] })

	out := make([]float64, n)
	i := 0
	for i < n {
		j := i + 1
		for j < n && data[idx[j]] == data[idx[i]] {
			j++
		}
		avg := float64(i+1) + float64(j-i-1)/2
		for k := i; k < j; k++ {
			out[idx[k]] = avg
		}
		i = j
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
