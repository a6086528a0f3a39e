package main

import (
	"encoding/binary"
	"testing"
)

func peak(buf []byte) int16 {
	var p int16
	for i := 0; i+1 < len(buf); i += 2 {
		v := int16(binary.LittleEndian.Uint16(buf[i:]))
		if v < 0 {
			v = -v
		}
		p = max(p, v)
	}
	return p
}

func TestBuzzerSilentWhenOff(t *testing.T) {
	b := &Buzzer{}
	buf := make([]byte, 4800)

	n, err := b.Read(buf)
	if err != nil || n != len(buf) {
		t.Fatalf("Read() = %d, %v, want %d, nil", n, err, len(buf))
	}
	if p := peak(buf); p != 0 {
		t.Errorf("peak while off = %d, want 0", p)
	}
}

func TestBuzzerFadesInAndOut(t *testing.T) {
	b := &Buzzer{}
	b.Set(true)

	// Half a second is plenty for the envelope to settle
	buf := make([]byte, sampleRate*4/2)
	_, _ = b.Read(buf)
	if p := peak(buf[len(buf)-4800:]); p < 30000 {
		t.Errorf("settled peak = %d, want near full scale", p)
	}

	b.Set(false)
	_, _ = b.Read(buf)
	if p := peak(buf[len(buf)-4800:]); p > 100 {
		t.Errorf("peak after switching off = %d, want near silence", p)
	}
}

func TestBuzzerPartialFrame(t *testing.T) {
	b := &Buzzer{}
	n, _ := b.Read(make([]byte, 10))
	if n != 8 {
		t.Errorf("Read() of 10 bytes = %d, want 8 (whole stereo samples)", n)
	}
}
