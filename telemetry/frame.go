package telemetry

import "io"

// Frame layout: length byte, sequence byte, payload, 16-bit big-endian
// CRC over length+sequence+payload, then a sync byte. The sync byte
// lets a reader joining mid-stream recover frame alignment.
const (
	frameHeaderSize  = 2
	frameTrailerSize = 3
	FrameLengthMin   = frameHeaderSize + frameTrailerSize
	FrameLengthMax   = 64
	MaxPayload       = FrameLengthMax - FrameLengthMin

	frameSync    = 0x7E
	frameSeqBase = 0x10 // upper nibble of the sequence byte
	frameSeqMask = 0x0F
)

// FrameWriter emits frames onto a byte stream, numbering them with a
// wrapping 4-bit sequence counter.
type FrameWriter struct {
	w   io.Writer
	seq uint8
	buf [FrameLengthMax]byte
}

// NewFrameWriter wraps a serial port or any other byte sink.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame sends one payload as a single frame.
func (fw *FrameWriter) WriteFrame(payload []byte) error {
	if len(payload) > MaxPayload {
		return ErrPayloadTooLarge
	}
	n := frameHeaderSize + len(payload) + frameTrailerSize
	fw.buf[0] = byte(n)
	fw.buf[1] = frameSeqBase | fw.seq&frameSeqMask
	copy(fw.buf[frameHeaderSize:], payload)

	crc := crc16(fw.buf[:frameHeaderSize+len(payload)])
	fw.buf[n-3] = byte(crc >> 8)
	fw.buf[n-2] = byte(crc)
	fw.buf[n-1] = frameSync

	fw.seq = (fw.seq + 1) & frameSeqMask
	_, err := fw.w.Write(fw.buf[:n])
	return err
}

// FrameReader reassembles frames from an arbitrarily chunked byte
// stream. Corrupt input drops the reader out of sync; it recovers at
// the next sync byte. Frame payloads are delivered through the
// callback; the slice is only valid for the duration of the call.
type FrameReader struct {
	onFrame func(seq uint8, payload []byte)

	buf    []byte
	synced bool
}

// NewFrameReader creates a reader delivering payloads to onFrame.
func NewFrameReader(onFrame func(seq uint8, payload []byte)) *FrameReader {
	return &FrameReader{onFrame: onFrame, synced: true}
}

// Feed consumes the next chunk of raw stream data. Chunk boundaries
// carry no meaning; a frame may span any number of Feed calls.
func (fr *FrameReader) Feed(chunk []byte) {
	fr.buf = append(fr.buf, chunk...)

	for len(fr.buf) > 0 {
		if !fr.synced {
			sync := -1
			for i, b := range fr.buf {
				if b == frameSync {
					sync = i
					break
				}
			}
			if sync < 0 {
				fr.buf = fr.buf[:0]
				return
			}
			fr.buf = fr.buf[sync+1:]
			fr.synced = true
			continue
		}

		// Tolerate idle sync bytes between frames.
		if fr.buf[0] == frameSync {
			fr.buf = fr.buf[1:]
			continue
		}
		if len(fr.buf) < FrameLengthMin {
			return
		}

		n := int(fr.buf[0])
		if n < FrameLengthMin || n > FrameLengthMax {
			fr.synced = false
			continue
		}
		if fr.buf[1]&^frameSeqMask != frameSeqBase {
			fr.synced = false
			continue
		}
		if len(fr.buf) < n {
			return
		}
		if fr.buf[n-1] != frameSync {
			fr.synced = false
			continue
		}
		want := uint16(fr.buf[n-3])<<8 | uint16(fr.buf[n-2])
		if want != crc16(fr.buf[:n-frameTrailerSize]) {
			fr.synced = false
			continue
		}

		if fr.onFrame != nil {
			fr.onFrame(fr.buf[1]&frameSeqMask, fr.buf[frameHeaderSize:n-frameTrailerSize])
		}
		fr.buf = fr.buf[n:]
	}
}
