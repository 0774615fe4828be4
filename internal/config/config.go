package config

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"gohrv/domain/core"
	"gohrv/domain/hrv"
)

// AnomalyPolicy selects what the detector does with flagged samples.
type AnomalyPolicy string

const (
	// PolicyRemove drops anomalous samples, leaving gaps for the interpolator.
	PolicyRemove AnomalyPolicy = "remove"
	// PolicyCorrect replaces an anomalous sample with a locally
	// interpolated placeholder where both valid neighbors exist.
	PolicyCorrect AnomalyPolicy = "correct"
)

// Config represents the complete pipeline configuration. It is read-only
// once loaded and shared across concurrently processed subjects.
type Config struct {
	Preprocess  PreprocessConfig
	Window      WindowConfig
	Metrics     MetricsConfig
	Accel       AccelConfig
	Correlation CorrelationConfig
	Batch       BatchConfig
}

// PreprocessConfig holds anomaly detection and gap-filling settings.
type PreprocessConfig struct {
	MinIntervalMS   float64       // physiological plausibility band, lower bound
	MaxIntervalMS   float64       // physiological plausibility band, upper bound
	MaxRelativeJump float64       // max relative change vs previous valid sample
	Policy          AnomalyPolicy // remove (default) or correct
	MinSeriesLength int           // below this the subject is insufficient-data
	LeadTrim        time.Duration // cut from recording start before detection
	TailTrim        time.Duration // cut from recording end before detection
	HoleThreshold   time.Duration // gap size that counts as a hole
	PostHoleWindow  time.Duration // removal window after each hole
	AdjacentRadius  time.Duration // removal radius around manual exclusions
	Interpolate     bool          // run the gap filler after detection
	MaxGapDuration  time.Duration // gaps longer than this stay unfilled
}

// WindowConfig holds sliding-window segmentation settings.
type WindowConfig struct {
	Length           time.Duration
	Step             time.Duration
	MinValidFraction float64 // measured (non-interpolated) fraction per window
	MinSamples       int     // absolute floor per window
	AllowGaps        bool    // permit step > length
}

// MetricsConfig holds HRV calculator settings.
type MetricsConfig struct {
	Kind            hrv.MetricKind
	MaxDiffGap      time.Duration // successive differences spanning more are excluded
	NN50ThresholdMS float64       // pNN50 threshold, strictly-greater comparison
}

// AccelConfig holds resampling and mobility settings. TargetPeriod is
// explicit configuration: the two device streams are not natively
// synchronized, so the normalization rate must never be inferred.
type AccelConfig struct {
	TargetPeriod       time.Duration
	GravityCompensated bool
	GravitySpan        int // moving-average span (resampled samples) for gravity estimate
	MinSamples         int // per-window floor below which mobility is undefined
}

// CorrelationConfig holds association settings.
type CorrelationConfig struct {
	Method   hrv.CorrelationMethod
	MinPairs int
}

// BatchConfig holds cross-subject execution settings.
type BatchConfig struct {
	MaxConcurrent int64
}

// Default returns the configuration used by the study analysis. Values
// mirror the published protocol: 15 min windows stepped by 1 min, 45 s
// edge trims, 30 s hole threshold with 15 s post-hole removal, 5 s
// exclusion radius and a 2 s hole rule for successive differences.
func Default() Config {
	return Config{
		Preprocess: PreprocessConfig{
			MinIntervalMS:   300,
			MaxIntervalMS:   2000,
			MaxRelativeJump: 0.3,
			Policy:          PolicyRemove,
			MinSeriesLength: 30,
			LeadTrim:        45 * time.Second,
			TailTrim:        45 * time.Second,
			HoleThreshold:   30 * time.Second,
			PostHoleWindow:  15 * time.Second,
			AdjacentRadius:  5 * time.Second,
			Interpolate:     true,
			MaxGapDuration:  10 * time.Second,
		},
		Window: WindowConfig{
			Length:           15 * time.Minute,
			Step:             time.Minute,
			MinValidFraction: 0.5,
			MinSamples:       2,
		},
		Metrics: MetricsConfig{
			Kind:            hrv.MetricRMSSD,
			MaxDiffGap:      2 * time.Second,
			NN50ThresholdMS: 50,
		},
		Accel: AccelConfig{
			TargetPeriod:       time.Second,
			GravityCompensated: true,
			GravitySpan:        61,
			MinSamples:         1,
		},
		Correlation: CorrelationConfig{
			Method:   hrv.CorrelationPearson,
			MinPairs: 3,
		},
		Batch: BatchConfig{
			MaxConcurrent: int64(runtime.NumCPU()),
		},
	}
}

// Load reads configuration from environment variables on top of the
// defaults and validates it.
func Load() (*Config, error) {
	cfg := Default()

	cfg.Preprocess.MinIntervalMS = envFloat("HRV_MIN_INTERVAL_MS", cfg.Preprocess.MinIntervalMS)
	cfg.Preprocess.MaxIntervalMS = envFloat("HRV_MAX_INTERVAL_MS", cfg.Preprocess.MaxIntervalMS)
	cfg.Preprocess.MaxRelativeJump = envFloat("HRV_MAX_RELATIVE_JUMP", cfg.Preprocess.MaxRelativeJump)
	if v := os.Getenv("HRV_ANOMALY_POLICY"); v != "" {
		cfg.Preprocess.Policy = AnomalyPolicy(v)
	}
	cfg.Preprocess.MinSeriesLength = envInt("HRV_MIN_SERIES_LENGTH", cfg.Preprocess.MinSeriesLength)
	cfg.Preprocess.LeadTrim = envDuration("HRV_LEAD_TRIM", cfg.Preprocess.LeadTrim)
	cfg.Preprocess.TailTrim = envDuration("HRV_TAIL_TRIM", cfg.Preprocess.TailTrim)
	cfg.Preprocess.HoleThreshold = envDuration("HRV_HOLE_THRESHOLD", cfg.Preprocess.HoleThreshold)
	cfg.Preprocess.PostHoleWindow = envDuration("HRV_POST_HOLE_WINDOW", cfg.Preprocess.PostHoleWindow)
	cfg.Preprocess.AdjacentRadius = envDuration("HRV_ADJACENT_RADIUS", cfg.Preprocess.AdjacentRadius)
	cfg.Preprocess.Interpolate = envBool("HRV_INTERPOLATE", cfg.Preprocess.Interpolate)
	cfg.Preprocess.MaxGapDuration = envDuration("HRV_MAX_GAP", cfg.Preprocess.MaxGapDuration)

	cfg.Window.Length = envDuration("HRV_WINDOW_LENGTH", cfg.Window.Length)
	cfg.Window.Step = envDuration("HRV_WINDOW_STEP", cfg.Window.Step)
	cfg.Window.MinValidFraction = envFloat("HRV_MIN_VALID_FRACTION", cfg.Window.MinValidFraction)
	cfg.Window.MinSamples = envInt("HRV_WINDOW_MIN_SAMPLES", cfg.Window.MinSamples)
	cfg.Window.AllowGaps = envBool("HRV_ALLOW_WINDOW_GAPS", cfg.Window.AllowGaps)

	if v := os.Getenv("HRV_METRIC"); v != "" {
		cfg.Metrics.Kind = hrv.MetricKind(v)
	}
	cfg.Metrics.MaxDiffGap = envDuration("HRV_MAX_DIFF_GAP", cfg.Metrics.MaxDiffGap)

	cfg.Accel.TargetPeriod = envDuration("ACC_TARGET_PERIOD", cfg.Accel.TargetPeriod)
	cfg.Accel.GravityCompensated = envBool("ACC_GRAVITY_COMPENSATED", cfg.Accel.GravityCompensated)
	cfg.Accel.GravitySpan = envInt("ACC_GRAVITY_SPAN", cfg.Accel.GravitySpan)
	cfg.Accel.MinSamples = envInt("ACC_MIN_SAMPLES", cfg.Accel.MinSamples)

	if v := os.Getenv("HRV_CORRELATION_METHOD"); v != "" {
		cfg.Correlation.Method = hrv.CorrelationMethod(v)
	}
	cfg.Correlation.MinPairs = envInt("HRV_CORRELATION_MIN_PAIRS", cfg.Correlation.MinPairs)

	cfg.Batch.MaxConcurrent = int64(envInt("HRV_MAX_CONCURRENT", int(cfg.Batch.MaxConcurrent)))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fails fast before any subject is processed.
func (c *Config) Validate() error {
	if c.Preprocess.MinIntervalMS >= c.Preprocess.MaxIntervalMS {
		return core.NewConfigError("min_interval_ms", "must be below max_interval_ms")
	}
	if c.Preprocess.MaxRelativeJump <= 0 {
		return core.NewConfigError("max_relative_jump", "must be positive")
	}
	if c.Preprocess.Policy != PolicyRemove && c.Preprocess.Policy != PolicyCorrect {
		return core.NewConfigError("anomaly_policy", "must be remove or correct")
	}
	if c.Preprocess.MaxGapDuration <= 0 {
		return core.NewConfigError("max_gap", "must be positive")
	}
	if c.Window.Length <= 0 {
		return core.NewConfigError("window_length", "must be positive")
	}
	if c.Window.Step <= 0 {
		return core.NewConfigError("window_step", "must be positive")
	}
	if c.Window.Step > c.Window.Length && !c.Window.AllowGaps {
		return core.NewConfigError("window_step", "exceeds window_length while gaps are forbidden")
	}
	if c.Window.MinValidFraction < 0 || c.Window.MinValidFraction > 1 {
		return core.NewConfigError("min_valid_fraction", "must be within [0,1]")
	}
	switch c.Metrics.Kind {
	case hrv.MetricRMSSD, hrv.MetricSDNN, hrv.MetricPNN50:
	default:
		return core.NewConfigError("metric", "unknown metric kind")
	}
	if c.Accel.TargetPeriod <= 0 {
		return core.NewConfigError("target_period", "must be positive")
	}
	if c.Accel.GravityCompensated && c.Accel.GravitySpan < 3 {
		return core.NewConfigError("gravity_span", "must be at least 3 samples")
	}
	switch c.Correlation.Method {
	case hrv.CorrelationPearson, hrv.CorrelationSpearman:
	default:
		return core.NewConfigError("correlation_method", "must be pearson or spearman")
	}
	if c.Correlation.MinPairs < 3 {
		return core.NewConfigError("correlation_min_pairs", "must be at least 3")
	}
	if c.Batch.MaxConcurrent < 1 {
		return core.NewConfigError("max_concurrent", "must be at least 1")
	}
	return nil
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
