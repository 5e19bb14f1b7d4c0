// Package tof orchestrates a dual VL53L3CX setup: a forward-facing and
// a downward-facing sensor sharing one I2C bus. It sequences the XSHUT
// bring-up so each sensor can be moved off the shared default address,
// and fans measurements out through a per-channel smoothing filter.
package tof

import (
	"errors"
	"fmt"
	"time"

	"tinygo.org/x/drivers"

	"flytof/filter"
	"flytof/ranging"
	"flytof/vl53l3cx"
)

// Sensor selects one or both ranging channels.
type Sensor uint8

const (
	SensorFront Sensor = iota
	SensorBottom
	SensorBoth
)

func (s Sensor) String() string {
	switch s {
	case SensorFront:
		return "front"
	case SensorBottom:
		return "bottom"
	case SensorBoth:
		return "both"
	}
	return "unknown"
}

// Runtime I2C addresses after bring-up. Both sensors power up at the
// factory default, so they are woken one at a time and re-addressed.
const (
	FrontAddress  = 0x30
	BottomAddress = 0x31
)

const xshutSettleDelay = 10 * time.Millisecond

// ErrNotInitialized is returned when a session operation runs before a
// successful Init.
var ErrNotInitialized = errors.New("tof: session not initialized")

// Pin is the XSHUT control line of one sensor. Driving it low holds
// the sensor in shutdown.
type Pin interface {
	High()
	Low()
}

// Config carries the bus, control pins and filter policy for a session.
type Config struct {
	Bus         drivers.I2C
	FrontXSHUT  Pin
	BottomXSHUT Pin

	// Filter applies to both channels. Zero value selects defaults.
	Filter filter.Config

	// DataTimeout bounds each wait for a measurement. Zero selects
	// the driver default.
	DataTimeout time.Duration
}

// Reading is one post-filter measurement from a single channel.
type Reading struct {
	Result     ranging.Result
	FilteredMM uint16
	Accepted   bool
}

// DualReading pairs one measurement cycle across both channels. A
// channel that failed to produce data carries distance 0 with an
// invalid range status, so downstream consumers degrade per channel
// instead of losing the whole cycle.
type DualReading struct {
	Front  Reading
	Bottom Reading
}

// Session owns both sensors and their filter state. Methods are not
// safe for concurrent use; a single consumer task drives the session.
type Session struct {
	front  *vl53l3cx.Device
	bottom *vl53l3cx.Device

	frontXSHUT  Pin
	bottomXSHUT Pin

	frontFilter  filter.Filter
	bottomFilter filter.Filter

	dataTimeout time.Duration
	initialized bool

	// Data-ready callbacks, keyed by channel. Interrupt glue calls
	// Notify from its handler; the session dispatches here.
	callbacks [2]func(Sensor)
}

// NewSession builds a session from the config. Call Init before use.
func NewSession(cfg Config) *Session {
	fc := cfg.Filter
	if fc == (filter.Config{}) {
		fc = filter.DefaultConfig()
	}
	timeout := cfg.DataTimeout
	if timeout == 0 {
		timeout = vl53l3cx.RangingTimeout
	}
	return &Session{
		front:        vl53l3cx.New(cfg.Bus),
		bottom:       vl53l3cx.New(cfg.Bus),
		frontXSHUT:   cfg.FrontXSHUT,
		bottomXSHUT:  cfg.BottomXSHUT,
		frontFilter:  filter.New(fc),
		bottomFilter: filter.New(fc),
		dataTimeout:  timeout,
	}
}

// Init powers the sensors up one at a time and moves each off the
// shared default address. Both sensors are held in shutdown first so
// the sequence is repeatable after a soft reset.
func (s *Session) Init() error {
	s.frontXSHUT.Low()
	s.bottomXSHUT.Low()
	time.Sleep(xshutSettleDelay)

	s.frontXSHUT.High()
	time.Sleep(xshutSettleDelay)
	s.front.Address = vl53l3cx.DefaultAddress
	if err := s.front.Init(); err != nil {
		return fmt.Errorf("front sensor: %w", err)
	}
	if err := s.front.SetAddress(FrontAddress); err != nil {
		return fmt.Errorf("front sensor address: %w", err)
	}

	s.bottomXSHUT.High()
	time.Sleep(xshutSettleDelay)
	s.bottom.Address = vl53l3cx.DefaultAddress
	if err := s.bottom.Init(); err != nil {
		return fmt.Errorf("bottom sensor: %w", err)
	}
	if err := s.bottom.SetAddress(BottomAddress); err != nil {
		return fmt.Errorf("bottom sensor address: %w", err)
	}

	s.initialized = true
	return nil
}

// Shutdown stops ranging and drives both sensors into shutdown. The
// session must be re-initialized before further use.
func (s *Session) Shutdown() {
	if s.initialized {
		_ = s.Stop(SensorBoth)
	}
	s.frontXSHUT.Low()
	s.bottomXSHUT.Low()
	s.initialized = false
}

func (s *Session) devices(which Sensor) []*vl53l3cx.Device {
	switch which {
	case SensorFront:
		return []*vl53l3cx.Device{s.front}
	case SensorBottom:
		return []*vl53l3cx.Device{s.bottom}
	default:
		return []*vl53l3cx.Device{s.front, s.bottom}
	}
}

// Start begins continuous ranging on the selected channels.
func (s *Session) Start(which Sensor) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	for _, d := range s.devices(which) {
		if err := d.StartRanging(); err != nil {
			return err
		}
	}
	return nil
}

// Stop halts continuous ranging on the selected channels.
func (s *Session) Stop(which Sensor) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	for _, d := range s.devices(which) {
		if err := d.StopRanging(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) read(dev *vl53l3cx.Device, f filter.Filter) (Reading, error) {
	if err := dev.WaitDataReady(s.dataTimeout); err != nil {
		return Reading{}, err
	}
	res, err := dev.ReadRangingData()
	if err != nil {
		return Reading{}, err
	}
	out, ok := f.Update(res.DistanceMM, res.RangeStatus)
	return Reading{Result: res, FilteredMM: out, Accepted: ok}, nil
}

// ReadFront blocks for the next front measurement and filters it.
func (s *Session) ReadFront() (Reading, error) {
	if !s.initialized {
		return Reading{}, ErrNotInitialized
	}
	return s.read(s.front, s.frontFilter)
}

// ReadBottom blocks for the next bottom measurement and filters it.
func (s *Session) ReadBottom() (Reading, error) {
	if !s.initialized {
		return Reading{}, ErrNotInitialized
	}
	return s.read(s.bottom, s.bottomFilter)
}

// ReadDual reads one cycle from both channels. A channel failure does
// not abort the cycle: the failed channel is fed to its filter as an
// invalid zero-distance sample and reported with an invalid status.
func (s *Session) ReadDual() (DualReading, error) {
	if !s.initialized {
		return DualReading{}, ErrNotInitialized
	}
	var dr DualReading
	var err error
	if dr.Front, err = s.read(s.front, s.frontFilter); err != nil {
		dr.Front = s.degraded(s.frontFilter)
	}
	if dr.Bottom, err = s.read(s.bottom, s.bottomFilter); err != nil {
		dr.Bottom = s.degraded(s.bottomFilter)
	}
	return dr, nil
}

func (s *Session) degraded(f filter.Filter) Reading {
	res := ranging.Result{RangeStatus: uint8(vl53l3cx.RangeStatusInvalid)}
	out, ok := f.Update(0, res.RangeStatus)
	return Reading{Result: res, FilteredMM: out, Accepted: ok}
}

// ResetFilters discards the filter state of the selected channels.
func (s *Session) ResetFilters(which Sensor) {
	if which == SensorFront || which == SensorBoth {
		s.frontFilter.Reset()
	}
	if which == SensorBottom || which == SensorBoth {
		s.bottomFilter.Reset()
	}
}

// OnDataReady registers a callback for a channel's data-ready signal.
// Passing SensorBoth registers it for both channels. A nil callback
// clears the registration.
func (s *Session) OnDataReady(which Sensor, fn func(Sensor)) {
	if which == SensorFront || which == SensorBoth {
		s.callbacks[SensorFront] = fn
	}
	if which == SensorBottom || which == SensorBoth {
		s.callbacks[SensorBottom] = fn
	}
}

// Notify dispatches a channel's data-ready callback. Interrupt glue
// calls this from its handler context; when no callback is registered
// the notification is dropped.
func (s *Session) Notify(which Sensor) {
	if which == SensorBoth {
		s.Notify(SensorFront)
		s.Notify(SensorBottom)
		return
	}
	if int(which) < len(s.callbacks) && s.callbacks[which] != nil {
		s.callbacks[which](which)
	}
}
