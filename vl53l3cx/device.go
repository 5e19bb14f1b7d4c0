// Package vl53l3cx implements a register-level driver for the ST
// VL53L3CX time-of-flight ranging sensor. The device exposes raw
// photon-count histograms rather than pre-computed distances; frame
// decoding and distance estimation live in the ranging package.
package vl53l3cx

import (
	"errors"
	"fmt"
	"time"

	"tinygo.org/x/drivers"

	"flytof/ranging"
)

// DefaultAddress is the 7-bit I2C address after power-up.
const DefaultAddress = 0x29

// Timing budgets around device operations.
const (
	BootTimeout    = 500 * time.Millisecond
	RangingTimeout = 2 * time.Second

	pollInterval = time.Millisecond
)

var (
	// ErrBootTimeout is returned when the device firmware does not
	// report ready within BootTimeout.
	ErrBootTimeout = errors.New("vl53l3cx: firmware boot timeout")

	// ErrDataTimeout is returned when no measurement becomes ready
	// within the caller's deadline.
	ErrDataTimeout = errors.New("vl53l3cx: data ready timeout")

	// ErrBadAddress is returned for I2C addresses outside 0x08-0x77.
	ErrBadAddress = errors.New("vl53l3cx: address out of range")
)

// Device represents one VL53L3CX sensor on an I2C bus.
type Device struct {
	bus     drivers.I2C
	Address uint16 // 7-bit I2C address

	fastOscFrequency uint16
	rangingActive    bool
}

// New creates a device handle at the default address. Call Init before
// any ranging operation.
func New(bus drivers.I2C) *Device {
	return &Device{bus: bus, Address: DefaultAddress}
}

// regWrite is one entry of a configuration sequence.
type regWrite struct {
	reg   uint16
	size  uint8 // 1, 2 or 4 bytes
	value uint32
}

func (d *Device) writeRegs(reg uint16, data []byte) error {
	buf := make([]byte, 2+len(data))
	buf[0] = byte(reg >> 8)
	buf[1] = byte(reg)
	copy(buf[2:], data)
	return d.bus.Tx(d.Address, buf, nil)
}

func (d *Device) readRegs(reg uint16, into []byte) error {
	return d.bus.Tx(d.Address, []byte{byte(reg >> 8), byte(reg)}, into)
}

func (d *Device) writeByte(reg uint16, value uint8) error {
	return d.writeRegs(reg, []byte{value})
}

func (d *Device) writeWord(reg uint16, value uint16) error {
	return d.writeRegs(reg, []byte{byte(value >> 8), byte(value)})
}

func (d *Device) writeDWord(reg uint16, value uint32) error {
	return d.writeRegs(reg, []byte{
		byte(value >> 24), byte(value >> 16), byte(value >> 8), byte(value),
	})
}

func (d *Device) readByte(reg uint16) (uint8, error) {
	var buf [1]byte
	if err := d.readRegs(reg, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (d *Device) writeSequence(seq []regWrite) error {
	for _, w := range seq {
		var err error
		switch w.size {
		case 1:
			err = d.writeByte(w.reg, uint8(w.value))
		case 2:
			err = d.writeWord(w.reg, uint16(w.value))
		default:
			err = d.writeDWord(w.reg, w.value)
		}
		if err != nil {
			return fmt.Errorf("write 0x%04X: %w", w.reg, err)
		}
	}
	return nil
}

// WaitBoot polls the firmware status register until the device reports
// ready, or fails with ErrBootTimeout.
func (d *Device) WaitBoot() error {
	start := time.Now()
	for {
		status, err := d.readByte(FIRMWARE_SYSTEM_STATUS)
		if err != nil {
			return err
		}
		if status&0x01 != 0 {
			return nil
		}
		if time.Since(start) > BootTimeout {
			return ErrBootTimeout
		}
		time.Sleep(pollInterval)
	}
}

// readCalibration pulls the fast oscillator frequency out of NVM. The
// firmware must be halted and the ranging core force-powered for the
// duration of the readout.
func (d *Device) readCalibration() error {
	seq := []regWrite{
		{FIRMWARE_ENABLE, 1, 0x00},
		{POWER_MANAGEMENT_GO1_POWER_FORCE, 1, 0x01},
	}
	if err := d.writeSequence(seq); err != nil {
		return err
	}
	time.Sleep(250 * time.Microsecond) // power stabilization

	seq = []regWrite{
		{RANGING_CORE_NVM_CTRL_PDN, 1, 0x01},
		{RANGING_CORE_CLK_CTRL1, 1, 0x05},
	}
	if err := d.writeSequence(seq); err != nil {
		return err
	}
	time.Sleep(5 * time.Millisecond) // NVM power-up

	seq = []regWrite{
		{RANGING_CORE_NVM_CTRL_MODE, 1, 0x01},
		{RANGING_CORE_NVM_CTRL_PULSE_WIDTH_MSB, 2, 0x0004},
		{RANGING_CORE_NVM_CTRL_ADDR, 1, nvmAddrFastOscFrequency},
		{RANGING_CORE_NVM_CTRL_READN, 1, 0x00},
	}
	if err := d.writeSequence(seq); err != nil {
		return err
	}
	time.Sleep(5 * time.Microsecond) // read trigger delay

	if err := d.writeByte(RANGING_CORE_NVM_CTRL_READN, 0x01); err != nil {
		return err
	}

	var nvm [4]byte
	if err := d.readRegs(RANGING_CORE_NVM_CTRL_DATAOUT_MMM, nvm[:]); err != nil {
		return err
	}
	d.fastOscFrequency = uint16(nvm[0])<<8 | uint16(nvm[1])

	return d.writeSequence([]regWrite{
		{POWER_MANAGEMENT_GO1_POWER_FORCE, 1, 0x00},
		{FIRMWARE_ENABLE, 1, 0x01},
	})
}

// mediumRangePreset is the register sequence that configures the
// medium-range histogram ranging preset: static, general, timing and
// dynamic configuration followed by system control.
var mediumRangePreset = []regWrite{
	// Static configuration
	{GPIO_HV_MUX_CTRL, 1, 0x10},
	{GPIO_TIO_HV_STATUS, 1, 0x02},
	{ANA_CONFIG_SPAD_SEL_PSWIDTH, 1, 0x02},
	{ANA_CONFIG_VCSEL_PULSE_WIDTH_OFFSET, 1, 0x08},
	{SIGMA_ESTIMATOR_EFFECTIVE_PULSE_WIDTH_NS, 1, 0x08},
	{SIGMA_ESTIMATOR_EFFECTIVE_AMBIENT_WIDTH_NS, 1, 0x10},
	{SIGMA_ESTIMATOR_SIGMA_REF_MM, 1, 0x01},
	{ALGO_CROSSTALK_COMPENSATION_VALID_HEIGHT_MM, 1, 0x01},
	{ALGO_RANGE_IGNORE_VALID_HEIGHT_MM, 1, 0xFF},
	{ALGO_RANGE_MIN_CLIP, 1, 0x00},
	{ALGO_CONSISTENCY_CHECK_TOLERANCE, 1, 0x02},

	// General configuration
	{SYSTEM_INTERRUPT_CONFIG_GPIO, 1, 0x20},
	{CAL_CONFIG_VCSEL_START, 1, 0x0B},
	{CAL_CONFIG_REPEAT_RATE, 2, 0x0000},
	{GLOBAL_CONFIG_VCSEL_WIDTH, 1, 0x02},
	{PHASECAL_CONFIG_TIMEOUT_MACROP, 1, 0x0D},
	{PHASECAL_CONFIG_TARGET, 1, 0x21},

	// Timing configuration
	{MM_CONFIG_TIMEOUT_MACROP_A, 2, 0x001A},
	{MM_CONFIG_TIMEOUT_MACROP_B, 2, 0x0020},
	{RANGE_CONFIG_TIMEOUT_MACROP_A, 2, 0x01CC},
	{RANGE_CONFIG_VCSEL_PERIOD_A, 1, 0x0B},
	{RANGE_CONFIG_TIMEOUT_MACROP_B, 2, 0x01F5},
	{RANGE_CONFIG_VCSEL_PERIOD_B, 1, 0x09},
	{SYSTEM_INTERMEASUREMENT_PERIOD, 4, 100},

	// Dynamic configuration
	{SYSTEM_GROUPED_PARAMETER_HOLD_0, 1, 0x01},
	{SYSTEM_THRESH_HIGH, 2, 0x0000},
	{SYSTEM_THRESH_LOW, 2, 0x0000},
	{SYSTEM_SEED_CONFIG, 1, 0x02},
	{SD_CONFIG_WOI_SD0, 1, 0x0B},
	{SD_CONFIG_WOI_SD1, 1, 0x09},
	{SD_CONFIG_INITIAL_PHASE_SD0, 1, 0x0A},
	{SD_CONFIG_INITIAL_PHASE_SD1, 1, 0x0A},
	{SYSTEM_GROUPED_PARAMETER_HOLD_1, 1, 0x01},
	{ROI_CONFIG_USER_ROI_CENTRE_SPAD, 1, 0xC7},
	{ROI_CONFIG_USER_ROI_REQUESTED_GLOBAL_XY_SIZE, 1, 0xFF},
	{SYSTEM_SEQUENCE_CONFIG, 1, 0xC1},
	{SYSTEM_GROUPED_PARAMETER_HOLD, 1, 0x02},

	// System control
	{SYSTEM_STREAM_COUNT_CTRL, 1, 0x00},
	{FIRMWARE_ENABLE, 1, 0x01},
	{SYSTEM_INTERRUPT_CLEAR, 1, 0x01},
}

// Init runs the full bring-up sequence: wait for firmware boot, read
// NVM calibration, then apply the medium-range ranging preset.
func (d *Device) Init() error {
	if err := d.WaitBoot(); err != nil {
		return err
	}
	if err := d.readCalibration(); err != nil {
		return fmt.Errorf("nvm calibration: %w", err)
	}
	if err := d.writeSequence(mediumRangePreset); err != nil {
		return fmt.Errorf("preset: %w", err)
	}
	return nil
}

// FastOscFrequency returns the calibration value read from NVM during
// Init. Zero before Init.
func (d *Device) FastOscFrequency() uint16 { return d.fastOscFrequency }

// SetAddress moves the device to a new 7-bit I2C address. The change is
// volatile and reverts to DefaultAddress on power cycle.
func (d *Device) SetAddress(addr uint8) error {
	if addr < 0x08 || addr > 0x77 {
		return ErrBadAddress
	}
	if err := d.writeByte(I2C_SLAVE_DEVICE_ADDRESS, addr&0x7F); err != nil {
		return err
	}
	d.Address = uint16(addr)
	return nil
}

// StartRanging clears any pending interrupt and enters back-to-back
// continuous ranging.
func (d *Device) StartRanging() error {
	if err := d.ClearInterrupt(); err != nil {
		return err
	}
	if err := d.writeByte(SYSTEM_MODE_START, modeStartBackToBack); err != nil {
		return err
	}
	d.rangingActive = true
	return nil
}

// StopRanging halts continuous ranging. The stop command is written
// twice per the manufacturer's recommendation.
func (d *Device) StopRanging() error {
	if err := d.writeByte(SYSTEM_MODE_START, modeStartStop); err != nil {
		return err
	}
	if err := d.writeByte(SYSTEM_MODE_START, modeStartStop); err != nil {
		return err
	}
	if err := d.ClearInterrupt(); err != nil {
		return err
	}
	d.rangingActive = false
	return nil
}

// RangingActive reports whether continuous ranging has been started.
func (d *Device) RangingActive() bool { return d.rangingActive }

// ClearInterrupt acknowledges the data-ready interrupt.
func (d *Device) ClearInterrupt() error {
	return d.writeByte(SYSTEM_INTERRUPT_CLEAR, 0x01)
}

// CheckDataReady reports whether a new measurement is available,
// without blocking.
func (d *Device) CheckDataReady() (bool, error) {
	status, err := d.readByte(RESULT_INTERRUPT_STATUS)
	if err != nil {
		return false, err
	}
	return status&0x20 != 0, nil // bit 5: new data ready
}

// WaitDataReady polls until a measurement is available or the timeout
// elapses.
func (d *Device) WaitDataReady(timeout time.Duration) error {
	start := time.Now()
	for {
		ready, err := d.CheckDataReady()
		if err != nil {
			return err
		}
		if ready {
			return nil
		}
		if time.Since(start) > timeout {
			return ErrDataTimeout
		}
		time.Sleep(pollInterval)
	}
}

// ReadHistogram reads one raw measurement frame. The 77-byte block
// starts at the interrupt status register and carries the header plus
// 24 packed bins.
func (d *Device) ReadHistogram() (ranging.Histogram, error) {
	var frame [ranging.HistogramFrameSize]byte
	if err := d.readRegs(RESULT_INTERRUPT_STATUS, frame[:]); err != nil {
		return ranging.Histogram{}, err
	}
	return ranging.DecodeHistogram(frame[:])
}

// ReadRangingData reads the pending measurement, runs the distance
// estimation pipeline on it and acknowledges the interrupt.
func (d *Device) ReadRangingData() (ranging.Result, error) {
	h, err := d.ReadHistogram()
	if err != nil {
		return ranging.Result{}, err
	}
	result := ranging.Estimate(h)
	if err := d.ClearInterrupt(); err != nil {
		return result, err
	}
	return result, nil
}
