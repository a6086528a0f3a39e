package main

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/richardwooding/gbcart/internal/input"
)

// tiltKeys maps keyboard keys to tilt directions.
var tiltKeys = map[ebiten.Key]input.Direction{
	ebiten.KeyArrowUp:    input.Up,
	ebiten.KeyArrowDown:  input.Down,
	ebiten.KeyArrowLeft:  input.Left,
	ebiten.KeyArrowRight: input.Right,
}

// irKey holds the IR receiver in the light.
const irKey = ebiten.KeyI

// rumblePulse is the length of one vibration request. pollRumble renews
// it every frame while the motor runs.
const rumblePulse = 100 * time.Millisecond

// pollTilt reads the arrow keys and the left stick of the first standard
// gamepad, then advances the tilt by one frame. Call it from ebiten's
// Update.
func pollTilt(t *input.Tilt) {
	for key, d := range tiltKeys {
		if ebiten.IsKeyPressed(key) {
			t.Press(d)
		} else {
			t.Release(d)
		}
	}

	var x, y float64
	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		x = ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		y = ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		break
	}
	t.SetStick(deadzone(x), deadzone(y))
	t.Step()
}

// pollIR lights the receiver while the I key is held.
func pollIR(p *input.IR) {
	p.SetLight(ebiten.IsKeyPressed(irKey))
}

// pollRumble renews gamepad vibration while the motor runs.
func pollRumble(r *input.Rumble) {
	if r.On() {
		vibrateGamepads(true)
	}
}

// vibrateGamepads starts or stops vibration on every connected gamepad.
func vibrateGamepads(on bool) {
	opts := &ebiten.VibrateGamepadOptions{Duration: 0}
	if on {
		opts = &ebiten.VibrateGamepadOptions{
			Duration:        rumblePulse,
			StrongMagnitude: 1,
			WeakMagnitude:   0.5,
		}
	}
	for _, id := range ebiten.AppendGamepadIDs(nil) {
		ebiten.VibrateGamepad(id, opts)
	}
}

func deadzone(v float64) float64 {
	if v > -0.15 && v < 0.15 {
		return 0
	}
	return v
}
