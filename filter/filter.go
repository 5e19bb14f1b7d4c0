// Package filter provides stateful smoothing of a per-sensor distance
// stream: range status validation, rate-of-change gating, and a choice
// of estimator strategy (1D Kalman, windowed median, windowed average).
//
// Each Filter instance belongs to exactly one sensor channel and must
// only be updated from the task that owns that channel.
package filter

// Strategy selects the smoothing estimator at construction time. All
// strategies share the same Update contract and the same validation
// front end; they are not expected to produce identical output.
type Strategy uint8

const (
	StrategyKalman Strategy = iota
	StrategyMedian
	StrategyAverage
)

// Filter consumes (raw distance, range status) pairs one at a time and
// produces a smoothed distance, or reports that no output could be
// produced this cycle.
type Filter interface {
	// Update processes one measurement. The returned bool is false only
	// when the sample was rejected outright with no usable state to
	// predict from; otherwise the returned distance is valid (possibly
	// a prediction-only value when the sample itself failed validation).
	Update(distanceMM uint16, rangeStatus uint8) (uint16, bool)

	// Reset clears all estimator state and counters. The next sample is
	// treated as a fresh baseline.
	Reset()
}

// Default tuning. The measurement noise corresponds to roughly 2 mm of
// sensor standard deviation; the process noise keeps the Kalman variant
// responsive to real altitude changes.
const (
	defaultMaxChangeRateMM  = 500
	defaultValidStatusMask  = 0x01 // status 0 only
	defaultProcessNoise     = 1.0
	defaultMeasurementNoise = 4.0
	defaultWindowSize       = 5

	// Consecutive rejections before the filter abandons its estimate
	// and re-baselines on the next valid sample.
	rejectionResetThreshold = 5

	// For the first few accepted samples after a reset the rate limit
	// is widened so a legitimate new baseline is not itself rejected
	// as an outlier.
	postResetLenientSamples = 3
	postResetRateFactor     = 3
)

// Config is the immutable-after-construction filter policy.
type Config struct {
	EnableStatusCheck bool // validate range status against ValidStatusMask
	EnableRateLimit   bool // gate on per-sample change in mm
	MaxChangeRateMM   uint16
	ValidStatusMask   uint8 // bit n set = status n is acceptable

	// Kalman tuning.
	ProcessNoise     float32 // Q
	MeasurementNoise float32 // R

	// Strategy selection.
	Strategy   Strategy
	WindowSize int // median/average window length
}

// DefaultConfig returns the policy used by the flight stack: status 0
// only, 500 mm rate limit, Kalman estimator with Q=1.0 and R=4.0.
func DefaultConfig() Config {
	return Config{
		EnableStatusCheck: true,
		EnableRateLimit:   true,
		MaxChangeRateMM:   defaultMaxChangeRateMM,
		ValidStatusMask:   defaultValidStatusMask,
		ProcessNoise:      defaultProcessNoise,
		MeasurementNoise:  defaultMeasurementNoise,
		Strategy:          StrategyKalman,
		WindowSize:        defaultWindowSize,
	}
}

// New constructs the filter selected by cfg.Strategy.
func New(cfg Config) Filter {
	switch cfg.Strategy {
	case StrategyMedian, StrategyAverage:
		return NewWindow(cfg)
	default:
		return NewKalman(cfg)
	}
}

// statusAcceptable reports whether the status code is in the configured
// valid set. Status codes at or above 8 are outside the mask and always
// rejected.
func (c Config) statusAcceptable(rangeStatus uint8) bool {
	return rangeStatus < 8 && c.ValidStatusMask&(1<<rangeStatus) != 0
}
