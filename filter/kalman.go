package filter

// Kalman is the reference smoothing strategy: a 1D Kalman filter with a
// stationary process model. Invalid samples run a prediction-only update
// so the estimate is held while its uncertainty grows; a streak of
// rejections forces a full reset so the filter can re-baseline instead
// of tracking a stale estimate forever.
type Kalman struct {
	config Config

	lastOutput        uint16
	rejectedCount     uint8
	samplesSinceReset uint8

	x           float32 // estimated distance in mm
	p           float32 // estimation error covariance
	initialized bool    // no valid prior before the first accepted sample
}

// NewKalman creates a Kalman filter with the given policy.
func NewKalman(cfg Config) *Kalman {
	k := &Kalman{config: cfg}
	k.Reset()
	return k
}

// Reset clears the estimator and all counters.
func (k *Kalman) Reset() {
	k.lastOutput = 0
	k.rejectedCount = 0
	k.samplesSinceReset = 0
	k.x = 0
	k.p = 1000 // high uncertainty until seeded
	k.initialized = false
}

// LastOutput returns the most recent emitted distance.
func (k *Kalman) LastOutput() uint16 { return k.lastOutput }

// reject records one failed validation check and resets the whole
// filter once the streak reaches the threshold.
func (k *Kalman) reject() {
	k.rejectedCount++
	if k.rejectedCount >= rejectionResetThreshold {
		k.Reset()
	}
}

// effectiveRateLimit widens the configured limit for the first accepted
// samples after a reset.
func (k *Kalman) effectiveRateLimit() uint16 {
	if k.samplesSinceReset < postResetLenientSamples {
		return k.config.MaxChangeRateMM * postResetRateFactor
	}
	return k.config.MaxChangeRateMM
}

// Update processes one measurement. See the Filter interface for the
// return contract.
func (k *Kalman) Update(distanceMM uint16, rangeStatus uint8) (uint16, bool) {
	statusValid := true
	rateValid := true

	if k.config.EnableStatusCheck && !k.config.statusAcceptable(rangeStatus) {
		statusValid = false
		k.reject()
	}

	// The rate check needs a baseline; the first sample always passes.
	if k.config.EnableRateLimit && k.initialized {
		change := int32(distanceMM) - int32(k.lastOutput)
		if change < 0 {
			change = -change
		}
		if change > int32(k.effectiveRateLimit()) {
			rateValid = false
			k.reject()
		}
	}

	valid := statusValid && rateValid
	if valid {
		k.rejectedCount = 0
	}

	var output uint16
	if !k.initialized {
		if !valid {
			// Nothing to predict from; rejected outright.
			return 0, false
		}
		k.x = float32(distanceMM)
		k.p = k.config.MeasurementNoise
		k.initialized = true
		output = distanceMM
	} else {
		// Prediction always runs; the stationary model leaves the
		// estimate unchanged and inflates the covariance.
		xPred := k.x
		pPred := k.p + k.config.ProcessNoise

		if valid {
			gain := pPred / (pPred + k.config.MeasurementNoise)
			k.x = xPred + gain*(float32(distanceMM)-xPred)
			k.p = (1 - gain) * pPred
		} else {
			k.x = xPred
			k.p = pPred
		}

		output = uint16(k.x + 0.5)
	}

	k.lastOutput = output
	if valid && k.samplesSinceReset < 255 {
		k.samplesSinceReset++
	}

	return output, true
}
