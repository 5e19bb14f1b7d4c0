//go:build tinygo

// Package boards binds the ranging stack to concrete hardware: pin
// assignments, bus setup and interrupt wiring per board.
package boards

import (
	"machine"

	"flytof/tof"
)

// StampFly wiring: both sensors share I2C0, each with its own XSHUT
// and interrupt line.
const (
	StampFlySDA = machine.Pin(3)
	StampFlySCL = machine.Pin(4)

	StampFlyFrontXSHUT  = machine.Pin(9)
	StampFlyFrontINT    = machine.Pin(8)
	StampFlyBottomXSHUT = machine.Pin(7)
	StampFlyBottomINT   = machine.Pin(6)

	stampFlyI2CFrequency = 400_000
)

// pin adapts machine.Pin to the session's XSHUT control interface.
type pin struct {
	p machine.Pin
}

func (p pin) High() { p.p.High() }
func (p pin) Low()  { p.p.Low() }

// StampFly configures the board's I2C bus and control pins and returns
// a session config ready for tof.NewSession.
func StampFly() (tof.Config, error) {
	i2c := machine.I2C0
	err := i2c.Configure(machine.I2CConfig{
		SDA:       StampFlySDA,
		SCL:       StampFlySCL,
		Frequency: stampFlyI2CFrequency,
	})
	if err != nil {
		return tof.Config{}, err
	}

	StampFlyFrontXSHUT.Configure(machine.PinConfig{Mode: machine.PinOutput})
	StampFlyBottomXSHUT.Configure(machine.PinConfig{Mode: machine.PinOutput})

	return tof.Config{
		Bus:         i2c,
		FrontXSHUT:  pin{StampFlyFrontXSHUT},
		BottomXSHUT: pin{StampFlyBottomXSHUT},
	}, nil
}

// AttachInterrupts routes the sensors' data-ready lines to the
// session's notification dispatch. The lines idle high and pulse low
// when a measurement completes.
func AttachInterrupts(s *tof.Session) error {
	StampFlyFrontINT.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	StampFlyBottomINT.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	err := StampFlyFrontINT.SetInterrupt(machine.PinFalling, func(machine.Pin) {
		s.Notify(tof.SensorFront)
	})
	if err != nil {
		return err
	}
	return StampFlyBottomINT.SetInterrupt(machine.PinFalling, func(machine.Pin) {
		s.Notify(tof.SensorBottom)
	})
}
