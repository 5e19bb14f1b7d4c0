package telemetry

// Record type identifiers, first byte of every payload.
const (
	recordSample = 0x01
	recordEvent  = 0x02
)

// Event kinds reported alongside the measurement stream.
const (
	EventFilterReset uint8 = iota + 1
	EventDataTimeout
	EventSensorFault
)

// Sample is one measurement cycle from one channel: the raw estimator
// output next to what the smoothing filter made of it.
type Sample struct {
	Channel     uint8
	StreamCount uint8
	RangeStatus uint8
	RawMM       uint16
	FilteredMM  uint16
	Accepted    bool
	AmbientRate uint32
	PeakBin     uint8
}

// Event is an out-of-band condition on one channel.
type Event struct {
	Channel uint8
	Kind    uint8
	Detail  uint32
}

// StreamWriter encodes samples and events into frames on a byte sink.
type StreamWriter struct {
	fw      *FrameWriter
	scratch []byte
}

// NewStreamWriter wraps a serial port or any other byte sink.
func NewStreamWriter(w *FrameWriter) *StreamWriter {
	return &StreamWriter{fw: w, scratch: make([]byte, 0, MaxPayload)}
}

// WriteSample sends one measurement record.
func (sw *StreamWriter) WriteSample(s Sample) error {
	p := sw.scratch[:0]
	p = append(p, recordSample)
	p = AppendUint(p, uint32(s.Channel))
	p = AppendUint(p, uint32(s.StreamCount))
	p = AppendUint(p, uint32(s.RangeStatus))
	p = AppendUint(p, uint32(s.RawMM))
	p = AppendUint(p, uint32(s.FilteredMM))
	accepted := uint32(0)
	if s.Accepted {
		accepted = 1
	}
	p = AppendUint(p, accepted)
	p = AppendUint(p, s.AmbientRate)
	p = AppendUint(p, uint32(s.PeakBin))
	return sw.fw.WriteFrame(p)
}

// WriteEvent sends one event record.
func (sw *StreamWriter) WriteEvent(e Event) error {
	p := sw.scratch[:0]
	p = append(p, recordEvent)
	p = AppendUint(p, uint32(e.Channel))
	p = AppendUint(p, uint32(e.Kind))
	p = AppendUint(p, e.Detail)
	return sw.fw.WriteFrame(p)
}

// StreamReader decodes the record stream, delivering each record to
// the matching callback. Records that fail to decode are dropped;
// framing already guarantees payload integrity, so a decode failure
// means a protocol mismatch, reported through OnMalformed.
type StreamReader struct {
	fr *FrameReader

	OnSample func(Sample)
	OnEvent  func(Event)

	// OnMalformed fires for payloads that carried a valid frame but
	// did not decode as a known record.
	OnMalformed func()
}

// NewStreamReader creates a reader; attach callbacks before feeding.
func NewStreamReader() *StreamReader {
	sr := &StreamReader{}
	sr.fr = NewFrameReader(sr.handleFrame)
	return sr
}

// Feed consumes raw stream bytes, in any chunking.
func (sr *StreamReader) Feed(chunk []byte) {
	sr.fr.Feed(chunk)
}

func (sr *StreamReader) handleFrame(_ uint8, payload []byte) {
	if len(payload) == 0 {
		sr.malformed()
		return
	}
	kind := payload[0]
	payload = payload[1:]
	switch kind {
	case recordSample:
		s, err := decodeSample(&payload)
		if err != nil {
			sr.malformed()
			return
		}
		if sr.OnSample != nil {
			sr.OnSample(s)
		}
	case recordEvent:
		e, err := decodeEvent(&payload)
		if err != nil {
			sr.malformed()
			return
		}
		if sr.OnEvent != nil {
			sr.OnEvent(e)
		}
	default:
		sr.malformed()
	}
}

func (sr *StreamReader) malformed() {
	if sr.OnMalformed != nil {
		sr.OnMalformed()
	}
}

func decodeSample(data *[]byte) (Sample, error) {
	var s Sample
	fields := []struct {
		set func(uint32)
	}{
		{func(v uint32) { s.Channel = uint8(v) }},
		{func(v uint32) { s.StreamCount = uint8(v) }},
		{func(v uint32) { s.RangeStatus = uint8(v) }},
		{func(v uint32) { s.RawMM = uint16(v) }},
		{func(v uint32) { s.FilteredMM = uint16(v) }},
		{func(v uint32) { s.Accepted = v != 0 }},
		{func(v uint32) { s.AmbientRate = v }},
		{func(v uint32) { s.PeakBin = uint8(v) }},
	}
	for _, f := range fields {
		v, err := ConsumeUint(data)
		if err != nil {
			return Sample{}, err
		}
		f.set(v)
	}
	return s, nil
}

func decodeEvent(data *[]byte) (Event, error) {
	var e Event
	ch, err := ConsumeUint(data)
	if err != nil {
		return Event{}, err
	}
	kind, err := ConsumeUint(data)
	if err != nil {
		return Event{}, err
	}
	detail, err := ConsumeUint(data)
	if err != nil {
		return Event{}, err
	}
	e.Channel = uint8(ch)
	e.Kind = uint8(kind)
	e.Detail = detail
	return e, nil
}
