// Package monitor consumes the telemetry stream on the host: it keeps
// rolling per-channel statistics over the distance stream and can
// mirror samples to a Teleplot-compatible plotting sink.
package monitor

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"flytof/telemetry"
)

// Channel identifiers carried in sample records.
const (
	ChannelFront  = 0
	ChannelBottom = 1
	numChannels   = 2
)

// ChannelName returns the conventional name of a channel id.
func ChannelName(ch uint8) string {
	switch ch {
	case ChannelFront:
		return "front"
	case ChannelBottom:
		return "bottom"
	}
	return fmt.Sprintf("ch%d", ch)
}

// windowCap bounds the rolling statistics window per channel.
const windowCap = 512

// eventCap bounds the retained event history.
const eventCap = 64

// Stats is a snapshot of one channel's recent stream.
type Stats struct {
	Total    uint64
	Accepted uint64
	Rejected uint64

	// Over the rolling window of filtered outputs, in mm.
	Mean   float64
	StdDev float64
	Median float64
	Min    float64
	Max    float64

	// Last sample seen on this channel.
	Last telemetry.Sample
}

// AcceptRate is the fraction of samples the firmware filter accepted.
func (s Stats) AcceptRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Total)
}

type channelState struct {
	window   []float64
	total    uint64
	accepted uint64
	last     telemetry.Sample
	seen     bool
}

func (c *channelState) push(s telemetry.Sample) {
	c.total++
	if s.Accepted {
		c.accepted++
		if len(c.window) == windowCap {
			c.window = c.window[1:]
		}
		c.window = append(c.window, float64(s.FilteredMM))
	}
	c.last = s
	c.seen = true
}

// Monitor decodes the telemetry stream and aggregates it. Safe for one
// reader goroutine plus any number of snapshot callers.
type Monitor struct {
	mu        sync.Mutex
	channels  [numChannels]channelState
	events    []telemetry.Event
	malformed int

	reader *telemetry.StreamReader

	// Teleplot, when set, receives one ">name:value" line per sample.
	Teleplot io.Writer
}

// New creates a monitor ready to consume stream bytes.
func New() *Monitor {
	m := &Monitor{}
	m.reader = telemetry.NewStreamReader()
	m.reader.OnSample = m.onSample
	m.reader.OnEvent = m.onEvent
	m.reader.OnMalformed = m.onMalformed
	return m
}

// Run pumps the port into the decoder until read error or EOF. A
// timeout-style zero-byte read is not an error; the loop continues.
func (m *Monitor) Run(r io.Reader) error {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			m.Feed(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("stream read: %w", err)
		}
	}
}

// Feed consumes a chunk of raw stream bytes.
func (m *Monitor) Feed(chunk []byte) {
	m.reader.Feed(chunk)
}

func (m *Monitor) onSample(s telemetry.Sample) {
	m.mu.Lock()
	if int(s.Channel) < numChannels {
		m.channels[s.Channel].push(s)
	}
	m.mu.Unlock()

	if m.Teleplot != nil {
		fmt.Fprintf(m.Teleplot, ">%s_mm:%d\n", ChannelName(s.Channel), s.FilteredMM)
		fmt.Fprintf(m.Teleplot, ">%s_raw_mm:%d\n", ChannelName(s.Channel), s.RawMM)
	}
}

func (m *Monitor) onMalformed() {
	m.mu.Lock()
	m.malformed++
	m.mu.Unlock()
}

func (m *Monitor) onEvent(e telemetry.Event) {
	m.mu.Lock()
	if len(m.events) == eventCap {
		m.events = m.events[1:]
	}
	m.events = append(m.events, e)
	m.mu.Unlock()
}

// Snapshot computes statistics for one channel.
func (m *Monitor) Snapshot(ch uint8) (Stats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(ch) >= numChannels || !m.channels[ch].seen {
		return Stats{}, false
	}
	c := &m.channels[ch]

	s := Stats{
		Total:    c.total,
		Accepted: c.accepted,
		Rejected: c.total - c.accepted,
		Last:     c.last,
	}
	if len(c.window) > 0 {
		s.Mean = stat.Mean(c.window, nil)
		if len(c.window) > 1 {
			s.StdDev = stat.StdDev(c.window, nil)
		}

		sorted := append([]float64(nil), c.window...)
		sort.Float64s(sorted)
		s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
		s.Min = sorted[0]
		s.Max = sorted[len(sorted)-1]
	}
	return s, true
}

// Events returns the retained event history, newest last.
func (m *Monitor) Events() []telemetry.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]telemetry.Event(nil), m.events...)
}

// MalformedCount reports payloads that failed record decoding.
func (m *Monitor) MalformedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.malformed
}

// Reset discards all aggregated state.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.channels {
		m.channels[i] = channelState{}
	}
	m.events = nil
	m.malformed = 0
}
