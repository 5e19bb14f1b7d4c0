// Package telemetry frames measurement records for the serial link
// between the flight controller and a host monitor. Payload fields use
// a 7-bit variable-length encoding so typical frames stay small enough
// for a 500 Hz stream over a low-rate UART.
package telemetry

import "errors"

var (
	// ErrShortBuffer is returned when a decode runs out of input.
	ErrShortBuffer = errors.New("telemetry: short buffer")

	// ErrPayloadTooLarge is returned when a payload cannot fit in one
	// frame.
	ErrPayloadTooLarge = errors.New("telemetry: payload too large")
)

// AppendInt appends the variable-length encoding of v to dst. Values
// are emitted most significant group first, seven bits per byte, with
// the continuation bit set on all but the last byte.
func AppendInt(dst []byte, v int32) []byte {
	if !(-(1<<26) <= v && v < (3<<26)) {
		dst = append(dst, byte((v>>28)&0x7F)|0x80)
	}
	if !(-(1<<19) <= v && v < (3<<19)) {
		dst = append(dst, byte((v>>21)&0x7F)|0x80)
	}
	if !(-(1<<12) <= v && v < (3<<12)) {
		dst = append(dst, byte((v>>14)&0x7F)|0x80)
	}
	if !(-(1<<5) <= v && v < (3<<5)) {
		dst = append(dst, byte((v>>7)&0x7F)|0x80)
	}
	return append(dst, byte(v&0x7F))
}

// AppendUint appends the variable-length encoding of v to dst.
func AppendUint(dst []byte, v uint32) []byte {
	return AppendInt(dst, int32(v))
}

// ConsumeInt decodes one variable-length integer from the front of
// *data, advancing the slice past the consumed bytes.
func ConsumeInt(data *[]byte) (int32, error) {
	if len(*data) == 0 {
		return 0, ErrShortBuffer
	}
	c := uint32((*data)[0])
	*data = (*data)[1:]

	v := c & 0x7F
	if c&0x60 == 0x60 { // sign extend
		v |= ^uint32(0x1F)
	}
	for c&0x80 != 0 {
		if len(*data) == 0 {
			return 0, ErrShortBuffer
		}
		c = uint32((*data)[0])
		*data = (*data)[1:]
		v = v<<7 | c&0x7F
	}
	return int32(v), nil
}

// ConsumeUint decodes one variable-length unsigned integer from the
// front of *data.
func ConsumeUint(data *[]byte) (uint32, error) {
	v, err := ConsumeInt(data)
	return uint32(v), err
}
