package monitor

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"flytof/telemetry"
)

// feedSamples encodes samples through the real wire format and feeds
// the resulting bytes to the monitor.
func feedSamples(t *testing.T, m *Monitor, samples ...telemetry.Sample) {
	t.Helper()
	var wire bytes.Buffer
	sw := telemetry.NewStreamWriter(telemetry.NewFrameWriter(&wire))
	for _, s := range samples {
		if err := sw.WriteSample(s); err != nil {
			t.Fatalf("WriteSample: %v", err)
		}
	}
	m.Feed(wire.Bytes())
}

func accepted(ch uint8, mm uint16) telemetry.Sample {
	return telemetry.Sample{Channel: ch, RawMM: mm, FilteredMM: mm, Accepted: true}
}

func TestSnapshotStatistics(t *testing.T) {
	m := New()
	for _, mm := range []uint16{160, 161, 162, 163, 164} {
		feedSamples(t, m, accepted(ChannelFront, mm))
	}
	feedSamples(t, m, telemetry.Sample{Channel: ChannelFront, RangeStatus: 0x04})

	s, ok := m.Snapshot(ChannelFront)
	if !ok {
		t.Fatal("no snapshot for front channel")
	}
	if s.Total != 6 || s.Accepted != 5 || s.Rejected != 1 {
		t.Errorf("counts = %d/%d/%d, want 6/5/1", s.Total, s.Accepted, s.Rejected)
	}
	if s.Mean != 162 {
		t.Errorf("mean = %v, want 162", s.Mean)
	}
	if s.Median != 162 {
		t.Errorf("median = %v, want 162", s.Median)
	}
	if s.Min != 160 || s.Max != 164 {
		t.Errorf("range = [%v, %v], want [160, 164]", s.Min, s.Max)
	}
	// Sample stddev of 160..164 is sqrt(2.5).
	if math.Abs(s.StdDev-math.Sqrt(2.5)) > 1e-9 {
		t.Errorf("stddev = %v, want sqrt(2.5)", s.StdDev)
	}
	if got := s.AcceptRate(); math.Abs(got-5.0/6.0) > 1e-9 {
		t.Errorf("accept rate = %v, want 5/6", got)
	}
	if s.Last.RangeStatus != 0x04 {
		t.Errorf("last status = 0x%02X, want 0x04", s.Last.RangeStatus)
	}
}

func TestSnapshotUnseenChannel(t *testing.T) {
	m := New()
	feedSamples(t, m, accepted(ChannelFront, 100))
	if _, ok := m.Snapshot(ChannelBottom); ok {
		t.Error("snapshot reported data for a channel that never sent")
	}
	if _, ok := m.Snapshot(7); ok {
		t.Error("snapshot reported data for an out-of-range channel")
	}
}

func TestRejectedSamplesStayOutOfWindow(t *testing.T) {
	m := New()
	feedSamples(t, m,
		accepted(ChannelBottom, 500),
		telemetry.Sample{Channel: ChannelBottom, RawMM: 9000, RangeStatus: 0x02},
		accepted(ChannelBottom, 502),
	)
	s, _ := m.Snapshot(ChannelBottom)
	if s.Mean != 501 {
		t.Errorf("mean = %v, want 501 (rejected sample must not enter the window)", s.Mean)
	}
}

func TestEventsRetained(t *testing.T) {
	m := New()
	var wire bytes.Buffer
	sw := telemetry.NewStreamWriter(telemetry.NewFrameWriter(&wire))
	if err := sw.WriteEvent(telemetry.Event{Channel: 1, Kind: telemetry.EventFilterReset, Detail: 5}); err != nil {
		t.Fatal(err)
	}
	m.Feed(wire.Bytes())

	events := m.Events()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Kind != telemetry.EventFilterReset || events[0].Channel != 1 {
		t.Errorf("event = %+v", events[0])
	}

	m.Reset()
	if len(m.Events()) != 0 {
		t.Error("events survived Reset")
	}
	if _, ok := m.Snapshot(ChannelBottom); ok {
		t.Error("channel state survived Reset")
	}
}

func TestTeleplotOutput(t *testing.T) {
	m := New()
	var plot strings.Builder
	m.Teleplot = &plot
	feedSamples(t, m, accepted(ChannelFront, 165))

	out := plot.String()
	for _, want := range []string{">front_mm:165\n", ">front_raw_mm:165\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("teleplot output %q missing %q", out, want)
		}
	}
}

func TestConcurrentFeedAndSnapshot(t *testing.T) {
	var wire bytes.Buffer
	sw := telemetry.NewStreamWriter(telemetry.NewFrameWriter(&wire))
	if err := sw.WriteSample(accepted(ChannelFront, 165)); err != nil {
		t.Fatal(err)
	}
	if err := telemetry.NewFrameWriter(&wire).WriteFrame([]byte{0x7F}); err != nil {
		t.Fatal(err)
	}
	stream := wire.Bytes()

	m := New()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			m.Feed(stream)
		}
	}()
	for i := 0; i < 1000; i++ {
		m.MalformedCount()
		m.Snapshot(ChannelFront)
	}
	<-done

	if got := m.MalformedCount(); got != 1000 {
		t.Errorf("malformed count = %d, want 1000", got)
	}
	s, ok := m.Snapshot(ChannelFront)
	if !ok || s.Total != 1000 {
		t.Errorf("front total = %d (ok=%v), want 1000", s.Total, ok)
	}
}

func TestRunConsumesUntilEOF(t *testing.T) {
	var wire bytes.Buffer
	sw := telemetry.NewStreamWriter(telemetry.NewFrameWriter(&wire))
	for i := 0; i < 3; i++ {
		if err := sw.WriteSample(accepted(ChannelFront, uint16(100+i))); err != nil {
			t.Fatal(err)
		}
	}

	m := New()
	if err := m.Run(bytes.NewReader(wire.Bytes())); err != nil {
		t.Fatalf("Run: %v", err)
	}
	s, _ := m.Snapshot(ChannelFront)
	if s.Total != 3 {
		t.Errorf("total = %d, want 3", s.Total)
	}
}
