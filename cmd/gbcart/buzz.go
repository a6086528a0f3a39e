package main

import (
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const (
	// Audio output sample rate (Hz).
	sampleRate = 48000

	// buzzFrequency is the pitch of the motor hum (Hz).
	buzzFrequency = 55.0

	// envelopeFactor smooths motor start and stop (single pole) so
	// toggling does not click.
	envelopeFactor = 0.999
)

// Buzzer plays the rumble motor as a low hum for hosts without a
// vibrating gamepad.
type Buzzer struct {
	player *audio.Player
	on     atomic.Bool // written from Update, read on the audio goroutine

	phase    float64
	envelope float32
}

// NewBuzzer starts a silent hum on a new audio context.
func NewBuzzer() (*Buzzer, error) {
	audioContext := audio.NewContext(sampleRate)

	b := &Buzzer{}
	player, err := audioContext.NewPlayer(&infiniteStream{buzzer: b})
	if err != nil {
		return nil, err
	}

	// Short buffer so the hum follows the motor closely
	player.SetBufferSize(20 * time.Millisecond)
	player.SetVolume(0.4)
	player.Play()

	b.player = player
	return b, nil
}

// Set switches the hum on or off.
func (b *Buzzer) Set(on bool) {
	b.on.Store(on)
}

// Close stops playback.
func (b *Buzzer) Close() error {
	return b.player.Close()
}

// Read renders 16-bit stereo samples (implements io.Reader).
func (b *Buzzer) Read(buf []byte) (int, error) {
	var target float32
	if b.on.Load() {
		target = 1
	}

	numSamples := len(buf) / 4 // 4 bytes per stereo sample
	for i := range numSamples {
		b.envelope = b.envelope*envelopeFactor + target*(1.0-envelopeFactor)

		square := float32(-1)
		if b.phase < 0.5 {
			square = 1
		}
		b.phase += buzzFrequency / sampleRate
		if b.phase >= 1 {
			b.phase--
		}

		v := int16(square * b.envelope * 32767.0)
		buf[i*4] = byte(v)
		buf[i*4+1] = byte(v >> 8)
		buf[i*4+2] = byte(v)
		buf[i*4+3] = byte(v >> 8)
	}

	return numSamples * 4, nil
}

// infiniteStream wraps Buzzer to implement an infinite audio stream.
type infiniteStream struct {
	buzzer *Buzzer
}

// Read implements io.Reader for infinite audio streaming.
func (s *infiniteStream) Read(buf []byte) (int, error) {
	return s.buzzer.Read(buf)
}
