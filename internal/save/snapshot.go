// Package save persists cartridge RAM and real-time clock state across
// sessions.
package save

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/richardwooding/gbcart/internal/cartridge"
)

// ErrSizeMismatch indicates save data that does not fit the cartridge.
var ErrSizeMismatch = errors.New("save data size does not match cartridge")

// Clock block sizes. The 48-byte block ends in a 64-bit timestamp; the
// legacy 44-byte block stores only 32 bits of it.
const (
	clockBlockSize       = 48
	legacyClockBlockSize = 44
	clockRegisterBytes   = 40 // ten little-endian uint32 values
)

// Clock is the persisted state of a cartridge clock.
type Clock struct {
	Live    cartridge.RTCRegisters
	Latched cartridge.RTCRegisters
	Anchor  time.Time // wall time the live registers were exact for
}

// Snapshot is everything a battery keeps alive while the console is off.
type Snapshot struct {
	RAM   []byte
	Clock *Clock // nil on cartridges without a clock
}

// Encode flattens a snapshot into the on-disk layout: the RAM image
// followed, when a clock is present, by a 48-byte clock block. The anchor
// is stored in whole Unix seconds; snapshots taken by Store are already
// aligned to a second, others lose their fraction.
func Encode(s Snapshot) []byte {
	size := len(s.RAM)
	if s.Clock != nil {
		size += clockBlockSize
	}
	out := make([]byte, size)
	copy(out, s.RAM)

	if s.Clock != nil {
		block := out[len(s.RAM):]
		putRegisters(block[0:20], s.Clock.Live)
		putRegisters(block[20:40], s.Clock.Latched)
		binary.LittleEndian.PutUint64(block[40:48], uint64(s.Clock.Anchor.Unix()))
	}
	return out
}

// Decode parses save data for the cartridge described by info.
func Decode(info *cartridge.Info, data []byte) (Snapshot, error) {
	if len(data) < info.RAMBytes {
		return Snapshot{}, fmt.Errorf("%w: %d bytes for %d bytes of RAM", ErrSizeMismatch, len(data), info.RAMBytes)
	}

	s := Snapshot{RAM: append([]byte(nil), data[:info.RAMBytes]...)}
	block := data[info.RAMBytes:]

	if !info.HasRTC() {
		if len(block) != 0 {
			return Snapshot{}, fmt.Errorf("%w: %d trailing bytes", ErrSizeMismatch, len(block))
		}
		return s, nil
	}

	var anchor int64
	switch len(block) {
	case clockBlockSize:
		anchor = int64(binary.LittleEndian.Uint64(block[40:48]))
	case legacyClockBlockSize:
		anchor = int64(binary.LittleEndian.Uint32(block[40:44]))
	default:
		return Snapshot{}, fmt.Errorf("%w: clock block of %d bytes", ErrSizeMismatch, len(block))
	}

	s.Clock = &Clock{
		Live:    getRegisters(block[0:20]),
		Latched: getRegisters(block[20:40]),
		Anchor:  time.Unix(anchor, 0),
	}
	return s, nil
}

// DecodeForeign is Decode for save files written elsewhere. On a cartridge
// with a clock it also accepts a bare RAM image, which comes back without
// clock state.
func DecodeForeign(info *cartridge.Info, data []byte) (Snapshot, error) {
	if info.HasRTC() && len(data) == info.RAMBytes {
		return Snapshot{RAM: append([]byte(nil), data...)}, nil
	}
	return Decode(info, data)
}

func putRegisters(b []byte, r cartridge.RTCRegisters) {
	for i, v := range []uint8{r.Seconds, r.Minutes, r.Hours, r.DayLow, r.DayHigh} {
		binary.LittleEndian.PutUint32(b[i*4:], uint32(v))
	}
}

func getRegisters(b []byte) cartridge.RTCRegisters {
	v := func(i int) uint8 { return uint8(binary.LittleEndian.Uint32(b[i*4:])) }
	return cartridge.RTCRegisters{
		Seconds: v(0),
		Minutes: v(1),
		Hours:   v(2),
		DayLow:  v(3),
		DayHigh: v(4),
	}
}
