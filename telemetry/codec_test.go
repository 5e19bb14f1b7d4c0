package telemetry

import (
	"bytes"
	"testing"
)

func TestIntRoundTrip(t *testing.T) {
	values := []int32{
		0, 1, -1, 31, 32, -32, -33, 95, 96,
		127, 128, 300, -300, 4095, 4096, -4096,
		1 << 20, -(1 << 20), 1<<31 - 1, -(1 << 31),
	}
	for _, v := range values {
		enc := AppendInt(nil, v)
		rest := enc
		got, err := ConsumeInt(&rest)
		if err != nil {
			t.Fatalf("ConsumeInt(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d = %d (encoding % X)", v, got, enc)
		}
		if len(rest) != 0 {
			t.Errorf("value %d left %d undecoded bytes", v, len(rest))
		}
	}
}

func TestUintRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 0x7F, 0x80, 0xFFFF, 1 << 24, 0xFFFFFFFF}
	for _, v := range values {
		rest := AppendUint(nil, v)
		got, err := ConsumeUint(&rest)
		if err != nil {
			t.Fatalf("ConsumeUint(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d = %d", v, got)
		}
	}
}

func TestEncodingCompactness(t *testing.T) {
	tests := []struct {
		v    int32
		want int
	}{
		{0, 1},
		{31, 1},
		{-32, 1},
		{32, 2},
		{-33, 2},
		{4095, 2},
		{4096, 3},
	}
	for _, tt := range tests {
		if got := len(AppendInt(nil, tt.v)); got != tt.want {
			t.Errorf("len(encode(%d)) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestConsumeAdvancesSlice(t *testing.T) {
	buf := AppendInt(nil, 7)
	buf = AppendInt(buf, -1000)
	buf = append(buf, 0xAB)

	rest := buf
	for _, want := range []int32{7, -1000} {
		got, err := ConsumeInt(&rest)
		if err != nil {
			t.Fatalf("ConsumeInt: %v", err)
		}
		if got != want {
			t.Errorf("got %d, want %d", got, want)
		}
	}
	if !bytes.Equal(rest, []byte{0xAB}) {
		t.Errorf("remainder = % X, want AB", rest)
	}
}

func TestConsumeShortBuffer(t *testing.T) {
	empty := []byte{}
	if _, err := ConsumeInt(&empty); err != ErrShortBuffer {
		t.Errorf("empty buffer: err = %v, want ErrShortBuffer", err)
	}

	truncated := []byte{0x81} // continuation bit with nothing following
	if _, err := ConsumeInt(&truncated); err != ErrShortBuffer {
		t.Errorf("truncated: err = %v, want ErrShortBuffer", err)
	}
}
