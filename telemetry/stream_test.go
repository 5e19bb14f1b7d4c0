package telemetry

import (
	"bytes"
	"testing"
)

func sampleFixture(n int) Sample {
	return Sample{
		Channel:     uint8(n % 2),
		StreamCount: uint8(n),
		RangeStatus: 0x09,
		RawMM:       uint16(160 + n),
		FilteredMM:  uint16(162 + n),
		Accepted:    true,
		AmbientRate: 1200,
		PeakBin:     11,
	}
}

func TestStreamRoundTrip(t *testing.T) {
	var wire bytes.Buffer
	sw := NewStreamWriter(NewFrameWriter(&wire))

	const n = 5
	for i := 0; i < n; i++ {
		if err := sw.WriteSample(sampleFixture(i)); err != nil {
			t.Fatalf("WriteSample: %v", err)
		}
	}
	if err := sw.WriteEvent(Event{Channel: 1, Kind: EventDataTimeout, Detail: 2000}); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}

	var samples []Sample
	var events []Event
	var malformed int
	sr := NewStreamReader()
	sr.OnSample = func(s Sample) { samples = append(samples, s) }
	sr.OnEvent = func(e Event) { events = append(events, e) }
	sr.OnMalformed = func() { malformed++ }

	// Feed one byte at a time: chunk boundaries must not matter.
	for _, b := range wire.Bytes() {
		sr.Feed([]byte{b})
	}

	if len(samples) != n {
		t.Fatalf("decoded %d samples, want %d", len(samples), n)
	}
	for i, s := range samples {
		if s != sampleFixture(i) {
			t.Errorf("sample %d = %+v, want %+v", i, s, sampleFixture(i))
		}
	}
	if len(events) != 1 {
		t.Fatalf("decoded %d events, want 1", len(events))
	}
	if e := events[0]; e.Channel != 1 || e.Kind != EventDataTimeout || e.Detail != 2000 {
		t.Errorf("event = %+v", e)
	}
	if malformed != 0 {
		t.Errorf("malformed count = %d, want 0", malformed)
	}
}

func TestReaderResyncsAfterGarbage(t *testing.T) {
	var wire bytes.Buffer
	sw := NewStreamWriter(NewFrameWriter(&wire))
	if err := sw.WriteSample(sampleFixture(0)); err != nil {
		t.Fatal(err)
	}
	if err := sw.WriteSample(sampleFixture(1)); err != nil {
		t.Fatal(err)
	}

	stream := wire.Bytes()
	// Corrupt a payload byte of the first frame.
	stream[3] ^= 0xFF

	var samples []Sample
	sr := NewStreamReader()
	sr.OnSample = func(s Sample) { samples = append(samples, s) }
	sr.Feed(stream)

	if len(samples) != 1 {
		t.Fatalf("decoded %d samples, want 1 (first frame corrupt)", len(samples))
	}
	if samples[0] != sampleFixture(1) {
		t.Errorf("surviving sample = %+v, want %+v", samples[0], sampleFixture(1))
	}
}

func TestReaderJoinsMidStream(t *testing.T) {
	var wire bytes.Buffer
	sw := NewStreamWriter(NewFrameWriter(&wire))
	for i := 0; i < 3; i++ {
		if err := sw.WriteSample(sampleFixture(i)); err != nil {
			t.Fatal(err)
		}
	}

	// A monitor attaching mid-stream sees a partial first frame.
	stream := wire.Bytes()[7:]

	var samples []Sample
	sr := NewStreamReader()
	sr.OnSample = func(s Sample) { samples = append(samples, s) }
	sr.Feed(stream)

	if len(samples) != 2 {
		t.Fatalf("decoded %d samples, want 2", len(samples))
	}
	if samples[0] != sampleFixture(1) || samples[1] != sampleFixture(2) {
		t.Errorf("samples = %+v", samples)
	}
}

func TestUnknownRecordCounted(t *testing.T) {
	var wire bytes.Buffer
	fw := NewFrameWriter(&wire)
	if err := fw.WriteFrame([]byte{0x7F, 0x01}); err != nil {
		t.Fatal(err)
	}

	var malformed int
	sr := NewStreamReader()
	sr.OnMalformed = func() { malformed++ }
	sr.Feed(wire.Bytes())
	if malformed != 1 {
		t.Errorf("malformed count = %d, want 1", malformed)
	}
}

func TestPayloadTooLarge(t *testing.T) {
	fw := NewFrameWriter(&bytes.Buffer{})
	if err := fw.WriteFrame(make([]byte, MaxPayload+1)); err != ErrPayloadTooLarge {
		t.Errorf("err = %v, want ErrPayloadTooLarge", err)
	}
}

func TestFrameSequenceNumbers(t *testing.T) {
	var wire bytes.Buffer
	fw := NewFrameWriter(&wire)
	for i := 0; i < 18; i++ {
		if err := fw.WriteFrame([]byte{recordEvent, 0, byte(EventFilterReset), 0}); err != nil {
			t.Fatal(err)
		}
	}

	var seqs []uint8
	fr := NewFrameReader(func(seq uint8, _ []byte) { seqs = append(seqs, seq) })
	fr.Feed(wire.Bytes())

	if len(seqs) != 18 {
		t.Fatalf("decoded %d frames, want 18", len(seqs))
	}
	for i, s := range seqs {
		if s != uint8(i)&0x0F {
			t.Errorf("frame %d sequence = %d, want %d", i, s, i&0x0F)
		}
	}
}
