package cartridge

import "log/slog"

// RumbleFunc receives rumble motor state changes.
type RumbleFunc func(on bool)

// TiltSensor reports the tilt of the console for the MBC7 accelerometer,
// in units of g along each axis (roughly -1 to 1).
type TiltSensor interface {
	Tilt() (x, y float64)
}

// Infrared is the IR transceiver on HuC1 and HuC3 cartridges.
type Infrared interface {
	// SetLED switches the transmitter LED.
	SetLED(on bool)
	// Light reports whether the receiver currently sees IR light.
	Light() bool
}

// MulticartMode selects MBC1M multicart wiring on MBC1 cartridges.
type MulticartMode uint8

// Multicart modes.
const (
	MulticartOff  MulticartMode = iota // plain MBC1 wiring
	MulticartAuto                      // detect from repeated boot logos
	MulticartOn                        // always use MBC1M wiring
)

// Config carries the host collaborators of a cartridge. The zero value is
// usable: logs are discarded, the clock is the system clock and peripherals
// are disconnected.
type Config struct {
	Logger    *slog.Logger
	Clock     Clock
	Rumble    RumbleFunc
	Tilt      TiltSensor
	Infrared  Infrared
	Multicart MulticartMode
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Clock == nil {
		c.Clock = SystemClock
	}
	if c.Rumble == nil {
		c.Rumble = func(bool) {}
	}
	if c.Tilt == nil {
		c.Tilt = flat{}
	}
	if c.Infrared == nil {
		c.Infrared = darkness{}
	}
	return c
}

// flat is a TiltSensor lying still on a table.
type flat struct{}

func (flat) Tilt() (x, y float64) { return 0, 0 }

// darkness is an Infrared port with nothing in front of it.
type darkness struct{}

func (darkness) SetLED(bool) {}
func (darkness) Light() bool { return false }
