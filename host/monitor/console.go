package monitor

import (
	"fmt"
	"io"

	"github.com/google/shlex"

	"flytof/telemetry"
)

// Console executes interactive commands against a running monitor.
// Input lines are tokenized shell-style, so quoted arguments work.
type Console struct {
	mon *Monitor
	out io.Writer
}

// NewConsole binds a console to a monitor and an output sink.
func NewConsole(mon *Monitor, out io.Writer) *Console {
	return &Console{mon: mon, out: out}
}

// Execute runs one command line. It reports quit=true when the user
// asked to leave the console.
func (c *Console) Execute(line string) (quit bool, err error) {
	args, err := shlex.Split(line)
	if err != nil {
		return false, fmt.Errorf("parse command: %w", err)
	}
	if len(args) == 0 {
		return false, nil
	}

	switch args[0] {
	case "quit", "exit", "q":
		return true, nil

	case "help", "?":
		c.printHelp()
		return false, nil

	case "stats":
		return false, c.cmdStats(args[1:])

	case "events":
		c.cmdEvents()
		return false, nil

	case "reset":
		c.mon.Reset()
		fmt.Fprintln(c.out, "statistics cleared")
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %q (try 'help')", args[0])
	}
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, `commands:
  stats [front|bottom]   per-channel stream statistics
  events                 recent filter/sensor events
  reset                  clear aggregated statistics
  quit                   leave the console
`)
}

func channelID(name string) (uint8, error) {
	switch name {
	case "front":
		return ChannelFront, nil
	case "bottom":
		return ChannelBottom, nil
	}
	return 0, fmt.Errorf("unknown channel %q", name)
}

func (c *Console) cmdStats(args []string) error {
	chans := []uint8{ChannelFront, ChannelBottom}
	if len(args) > 0 {
		ch, err := channelID(args[0])
		if err != nil {
			return err
		}
		chans = []uint8{ch}
	}

	for _, ch := range chans {
		s, ok := c.mon.Snapshot(ch)
		if !ok {
			fmt.Fprintf(c.out, "%s: no samples\n", ChannelName(ch))
			continue
		}
		fmt.Fprintf(c.out, "%s: n=%d accept=%.1f%% mean=%.1fmm median=%.1fmm stddev=%.2fmm range=[%.0f, %.0f]mm\n",
			ChannelName(ch), s.Total, 100*s.AcceptRate(),
			s.Mean, s.Median, s.StdDev, s.Min, s.Max)
		fmt.Fprintf(c.out, "  last: raw=%dmm filtered=%dmm status=0x%02X stream=%d\n",
			s.Last.RawMM, s.Last.FilteredMM, s.Last.RangeStatus, s.Last.StreamCount)
	}
	if n := c.mon.MalformedCount(); n > 0 {
		fmt.Fprintf(c.out, "malformed records: %d\n", n)
	}
	return nil
}

func (c *Console) cmdEvents() {
	events := c.mon.Events()
	if len(events) == 0 {
		fmt.Fprintln(c.out, "no events")
		return
	}
	for _, e := range events {
		fmt.Fprintf(c.out, "%s: %s (detail=%d)\n",
			ChannelName(e.Channel), eventName(e.Kind), e.Detail)
	}
}

func eventName(kind uint8) string {
	switch kind {
	case telemetry.EventFilterReset:
		return "filter reset"
	case telemetry.EventDataTimeout:
		return "data timeout"
	case telemetry.EventSensorFault:
		return "sensor fault"
	}
	return fmt.Sprintf("event %d", kind)
}
