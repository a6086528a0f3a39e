// Package input implements the cartridge peripherals a host drives: the
// MBC7 accelerometer, the MBC5 rumble motor and the HuC infrared port.
package input

import "math"

// Direction is one of the four tilt directions on a digital pad.
type Direction uint8

// Directions.
const (
	Up Direction = iota
	Down
	Left
	Right
)

// tiltStep is how far a held direction moves the tilt per Step, in g.
const tiltStep = 0.1

// Tilt is a TiltSensor fed from digital directions or an analog stick.
// Held directions ease the reading towards 1 g instead of jumping to it.
type Tilt struct {
	up, down, left, right bool

	stickX, stickY float64
	stick          bool // an analog stick is overriding the pad

	x, y float64
}

// NewTilt creates a level tilt sensor.
func NewTilt() *Tilt {
	return &Tilt{}
}

// Tilt implements cartridge.TiltSensor.
func (t *Tilt) Tilt() (x, y float64) {
	return t.x, t.y
}

// Press marks a direction as held.
func (t *Tilt) Press(d Direction) {
	switch d {
	case Up:
		if !t.down { // Block opposite directions
			t.up = true
		}
	case Down:
		if !t.up {
			t.down = true
		}
	case Left:
		if !t.right {
			t.left = true
		}
	case Right:
		if !t.left {
			t.right = true
		}
	}
}

// Release marks a direction as released.
func (t *Tilt) Release(d Direction) {
	switch d {
	case Up:
		t.up = false
	case Down:
		t.down = false
	case Left:
		t.left = false
	case Right:
		t.right = false
	}
}

// SetStick feeds an analog stick position, each axis in -1..1. A centred
// stick hands control back to the directions.
func (t *Tilt) SetStick(x, y float64) {
	t.stickX, t.stickY = clamp(x), clamp(y)
	t.stick = t.stickX != 0 || t.stickY != 0
}

// Step advances the reading by one frame.
func (t *Tilt) Step() {
	if t.stick {
		t.x, t.y = t.stickX, t.stickY
		return
	}

	var tx, ty float64
	switch {
	case t.left:
		tx = -1
	case t.right:
		tx = 1
	}
	switch {
	case t.up:
		ty = -1
	case t.down:
		ty = 1
	}
	t.x = approach(t.x, tx)
	t.y = approach(t.y, ty)
}

func approach(v, target float64) float64 {
	if math.Abs(target-v) <= tiltStep {
		return target
	}
	if target > v {
		return v + tiltStep
	}
	return v - tiltStep
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// Rumble tracks the cartridge rumble motor and forwards it to a vibrator.
type Rumble struct {
	on      bool
	pulses  int // off to on transitions
	vibrate func(on bool)
}

// NewRumble creates a motor that calls vibrate on every change. vibrate
// may be nil.
func NewRumble(vibrate func(on bool)) *Rumble {
	if vibrate == nil {
		vibrate = func(bool) {}
	}
	return &Rumble{vibrate: vibrate}
}

// Set switches the motor. Its method value is a cartridge.RumbleFunc.
func (r *Rumble) Set(on bool) {
	if on == r.on {
		return
	}
	r.on = on
	if on {
		r.pulses++
	}
	r.vibrate(on)
}

// On reports whether the motor is running.
func (r *Rumble) On() bool {
	return r.on
}

// Pulses returns how many times the motor has started.
func (r *Rumble) Pulses() int {
	return r.pulses
}

// IR is an infrared port whose receiver is driven by the host, standing in
// for a second console.
type IR struct {
	led   bool
	light bool
}

// NewIR creates a dark IR port.
func NewIR() *IR {
	return &IR{}
}

// SetLED implements cartridge.Infrared.
func (p *IR) SetLED(on bool) {
	p.led = on
}

// Light implements cartridge.Infrared.
func (p *IR) Light() bool {
	return p.light
}

// LED reports whether the cartridge is transmitting.
func (p *IR) LED() bool {
	return p.led
}

// SetLight sets whether the receiver sees light.
func (p *IR) SetLight(on bool) {
	p.light = on
}
