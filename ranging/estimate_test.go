package ranging

import "testing"

func histogramWithBins(bins map[int]uint32) Histogram {
	var h Histogram
	for i, v := range bins {
		h.Bins[i] = v
	}
	return h
}

func TestEstimateSymmetricPeak(t *testing.T) {
	// Flat ambient of 10 with an isolated peak at bin 11. Both corrected
	// neighbors are zero, so the parabolic fit yields no offset and the
	// distance is the raw bin position times the period-A width.
	h := histogramWithBins(map[int]uint32{
		0: 10, 1: 10, 2: 10, 3: 10, 4: 10, 5: 10,
		10: 10, 11: 110, 12: 10,
	})
	h.RangeStatus = 0
	h.StreamCount = 9

	r := Estimate(h)
	if r.AmbientEstimate != 10 {
		t.Errorf("ambient = %d, want 10", r.AmbientEstimate)
	}
	if r.PeakBin != 11 {
		t.Errorf("peak bin = %d, want 11", r.PeakBin)
	}
	if r.DistanceMM != 165 {
		t.Errorf("distance = %d, want 165", r.DistanceMM)
	}
	if r.StreamCount != 9 {
		t.Errorf("stream count not copied through")
	}
}

func TestEstimateNoSignal(t *testing.T) {
	testCases := []struct {
		name string
		h    Histogram
	}{
		{"all zero", Histogram{}},
		{"uniform ambient", histogramWithBins(map[int]uint32{
			0: 50, 1: 50, 2: 50, 3: 50, 4: 50, 5: 50,
			6: 50, 7: 50, 8: 50, 9: 50, 10: 50, 11: 50,
			12: 50, 13: 50, 14: 50, 15: 50, 16: 50, 17: 50,
		})},
		{"signal outside search window", histogramWithBins(map[int]uint32{
			2: 5, 20: 900, 23: 900,
		})},
	}

	for _, tc := range testCases {
		r := Estimate(tc.h)
		if r.DistanceMM != 0 || r.PeakBin != 0 {
			t.Errorf("%s: distance=%d peak=%d, want 0/0", tc.name, r.DistanceMM, r.PeakBin)
		}
	}
}

func TestEstimateBinWidthBoundary(t *testing.T) {
	// Symmetric peaks at bins 11 and 12 have zero interpolation offset,
	// exposing the raw period scale: 15.0 mm/bin below bin 12, 12.5 at
	// and above it.
	peak11 := Estimate(histogramWithBins(map[int]uint32{11: 100}))
	peak12 := Estimate(histogramWithBins(map[int]uint32{12: 100}))

	if peak11.DistanceMM != 165 { // 11 * 15.0
		t.Errorf("peak 11 distance = %d, want 165", peak11.DistanceMM)
	}
	if peak12.DistanceMM != 150 { // 12 * 12.5
		t.Errorf("peak 12 distance = %d, want 150", peak12.DistanceMM)
	}
}

func TestEstimateInterpolationPullsTowardHeavierNeighbor(t *testing.T) {
	// a=50, b=100, c=0: denominator -150, offset -1/6 of a bin, pulling
	// the estimate below the raw peak position.
	r := Estimate(histogramWithBins(map[int]uint32{10: 50, 11: 100}))
	if r.PeakBin != 11 {
		t.Fatalf("peak bin = %d, want 11", r.PeakBin)
	}
	if r.DistanceMM >= 165 {
		t.Errorf("distance = %d, want < 165 (offset toward bin 10)", r.DistanceMM)
	}
	if r.DistanceMM != 162 {
		t.Errorf("distance = %d, want 162", r.DistanceMM)
	}
}

func TestEstimateWindowEdgeUsesOutsideNeighbor(t *testing.T) {
	// Peak at the first searchable bin still interpolates against bin 5,
	// which sits outside the search window (and inside the ambient
	// region, so it also raises the floor: ambient = 30/6 = 5).
	r := Estimate(histogramWithBins(map[int]uint32{5: 30, 6: 100}))
	if r.AmbientEstimate != 5 {
		t.Fatalf("ambient = %d, want 5", r.AmbientEstimate)
	}
	if r.PeakBin != 6 {
		t.Fatalf("peak bin = %d, want 6", r.PeakBin)
	}
	// a=25, b=95, c=0: offset = 12.5/-165, accurate bin ~5.924, 88 mm.
	if r.DistanceMM != 88 {
		t.Errorf("distance = %d, want 88", r.DistanceMM)
	}
}

func TestEstimatePeakBounded(t *testing.T) {
	for target := 0; target < HistogramBins; target++ {
		r := Estimate(histogramWithBins(map[int]uint32{target: 5000}))
		if r.PeakBin > 23 {
			t.Fatalf("peak bin %d out of range", r.PeakBin)
		}
		inWindow := target >= peakSearchFirst && target < peakSearchLast
		if inWindow && r.PeakBin != uint8(target) {
			t.Errorf("target %d: peak = %d", target, r.PeakBin)
		}
		if !inWindow && (r.PeakBin != 0 || r.DistanceMM != 0) {
			t.Errorf("target %d outside window: peak=%d distance=%d", target, r.PeakBin, r.DistanceMM)
		}
	}
}
