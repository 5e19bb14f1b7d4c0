package filter

import "sort"

// Window is the simpler smoothing strategy family: a sliding window of
// recently accepted samples reduced by either the median or the mean.
// It shares the validation front end with the Kalman strategy but makes
// no attempt to match its numeric output.
type Window struct {
	config Config

	buf  []uint16
	next int // ring write position
	n    int // filled entries

	lastOutput        uint16
	rejectedCount     uint8
	samplesSinceReset uint8
}

// NewWindow creates a median or average filter over cfg.WindowSize
// samples (default 5 when unset).
func NewWindow(cfg Config) *Window {
	size := cfg.WindowSize
	if size <= 0 {
		size = defaultWindowSize
	}
	return &Window{
		config: cfg,
		buf:    make([]uint16, size),
	}
}

// Reset clears the window and all counters.
func (w *Window) Reset() {
	w.next = 0
	w.n = 0
	w.lastOutput = 0
	w.rejectedCount = 0
	w.samplesSinceReset = 0
}

// LastOutput returns the most recent emitted distance.
func (w *Window) LastOutput() uint16 { return w.lastOutput }

func (w *Window) reject() {
	w.rejectedCount++
	if w.rejectedCount >= rejectionResetThreshold {
		w.Reset()
	}
}

func (w *Window) effectiveRateLimit() uint16 {
	if w.samplesSinceReset < postResetLenientSamples {
		return w.config.MaxChangeRateMM * postResetRateFactor
	}
	return w.config.MaxChangeRateMM
}

// Update processes one measurement. An invalid sample is not inserted
// into the window; when a baseline exists the previous reduction is
// re-emitted, otherwise the sample is rejected outright.
func (w *Window) Update(distanceMM uint16, rangeStatus uint8) (uint16, bool) {
	statusValid := true
	rateValid := true

	if w.config.EnableStatusCheck && !w.config.statusAcceptable(rangeStatus) {
		statusValid = false
		w.reject()
	}

	if w.config.EnableRateLimit && w.n > 0 {
		change := int32(distanceMM) - int32(w.lastOutput)
		if change < 0 {
			change = -change
		}
		if change > int32(w.effectiveRateLimit()) {
			rateValid = false
			w.reject()
		}
	}

	valid := statusValid && rateValid
	if valid {
		w.rejectedCount = 0
	}

	if !valid {
		if w.n == 0 {
			return 0, false
		}
		return w.lastOutput, true
	}

	w.buf[w.next] = distanceMM
	w.next = (w.next + 1) % len(w.buf)
	if w.n < len(w.buf) {
		w.n++
	}

	output := w.reduce()
	w.lastOutput = output
	if w.samplesSinceReset < 255 {
		w.samplesSinceReset++
	}

	return output, true
}

func (w *Window) reduce() uint16 {
	switch w.config.Strategy {
	case StrategyAverage:
		var sum uint32
		for i := 0; i < w.n; i++ {
			sum += uint32(w.buf[i])
		}
		return uint16((sum + uint32(w.n)/2) / uint32(w.n))
	default: // median
		window := make([]uint16, w.n)
		copy(window, w.buf[:w.n])
		sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
		return window[w.n/2]
	}
}
