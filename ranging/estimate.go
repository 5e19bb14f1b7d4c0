package ranging

// Peak search is restricted to the physically meaningful near/mid range
// window; the first bins carry only ambient light and the last bins sit
// beyond the medium-range preset's reach.
const (
	ambientBins     = 6
	peakSearchFirst = 6
	peakSearchLast  = 18 // exclusive
)

// Bin width in millimeters. The VCSEL timing period changes at bin 12
// (period A to period B), so the scale is piecewise, not uniform.
const (
	binWidthPeriodA = 15.0 // bins 0-11
	binWidthPeriodB = 12.5 // bins 12-23
)

// Result is a single distance estimate derived from one Histogram.
type Result struct {
	DistanceMM      uint16 // 0 when no peak was found
	RangeStatus     uint8  // copied from the histogram
	StreamCount     uint8  // copied from the histogram
	AmbientEstimate uint32 // mean of the ambient-only bins
	PeakBin         uint8  // 0 when no peak was found
}

// Estimate converts a decoded histogram into a distance estimate.
// It is a pure function of the bin contents.
//
// Steps: ambient floor from the mean of the first 6 bins, non-negative
// ambient correction of all bins, peak search over bins [6,18), then a
// parabolic 3-point fit around the peak for sub-bin resolution. The
// fractional bin position is scaled by the period-dependent bin width
// and truncated toward zero.
func Estimate(h Histogram) Result {
	r := Result{
		RangeStatus: h.RangeStatus,
		StreamCount: h.StreamCount,
	}

	var ambientSum uint32
	for i := 0; i < ambientBins; i++ {
		ambientSum += h.Bins[i]
	}
	r.AmbientEstimate = ambientSum / ambientBins

	var corrected [HistogramBins]uint32
	for i, bin := range h.Bins {
		if bin > r.AmbientEstimate {
			corrected[i] = bin - r.AmbientEstimate
		}
	}

	var peak int
	var peakCount uint32
	for i := peakSearchFirst; i < peakSearchLast; i++ {
		if corrected[i] > peakCount {
			peakCount = corrected[i]
			peak = i
		}
	}
	if peakCount == 0 {
		// Nothing above ambient in the search window.
		return r
	}
	r.PeakBin = uint8(peak)

	// Sub-bin interpolation needs both neighbors. Neighbors come from
	// the full bin array, not the search window.
	offset := float32(0)
	if peak > 0 && peak < HistogramBins-1 {
		a := int32(corrected[peak-1])
		b := int32(corrected[peak])
		c := int32(corrected[peak+1])
		if den := a - 2*b + c; den != 0 {
			offset = 0.5 * float32(a-c) / float32(den)
		}
	}
	accurateBin := float32(peak) + offset

	binWidth := float32(binWidthPeriodA)
	if peak >= 12 {
		binWidth = binWidthPeriodB
	}
	r.DistanceMM = uint16(accurateBin * binWidth)

	return r
}
