// Package ranging converts raw VL53L3CX histogram frames into distance
// estimates: frame decoding, ambient correction, peak detection with
// sub-bin interpolation, and the piecewise bin-to-millimeter scaling.
package ranging

import "errors"

// Histogram frame layout as read from the device, starting at
// RESULT__INTERRUPT_STATUS: a 5-byte header followed by 24 bins of
// 3 big-endian bytes each.
const (
	HistogramBins       = 24
	HistogramHeaderSize = 5
	HistogramFrameSize  = HistogramHeaderSize + HistogramBins*3 // 77
)

// ErrFrameLength indicates a histogram buffer of the wrong size was
// passed to DecodeHistogram. This is an integration bug in the caller,
// not a runtime condition of the sensor.
var ErrFrameLength = errors.New("ranging: histogram frame must be 77 bytes")

// Histogram is one decoded measurement frame. Bin index correlates
// monotonically with round-trip time; bin 0 is the near-range side.
type Histogram struct {
	RangeStatus uint8 // 5-bit sensor quality code
	StreamCount uint8 // per-measurement sequence counter, wraps
	Bins        [HistogramBins]uint32
}

// DecodeHistogram parses a raw 77-byte frame into a Histogram.
//
// Header byte 1 carries the range status in its lower 5 bits, header
// byte 3 the stream counter. Each bin is packed as 3 big-endian bytes.
func DecodeHistogram(frame []byte) (Histogram, error) {
	var h Histogram
	if len(frame) != HistogramFrameSize {
		return h, ErrFrameLength
	}

	h.RangeStatus = frame[1] & 0x1F
	h.StreamCount = frame[3]

	for bin := 0; bin < HistogramBins; bin++ {
		off := HistogramHeaderSize + bin*3
		h.Bins[bin] = uint32(frame[off])<<16 |
			uint32(frame[off+1])<<8 |
			uint32(frame[off+2])
	}

	return h, nil
}
