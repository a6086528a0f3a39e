package cartridge

import "time"

// Clock is the wall-clock source for cartridge real-time clocks.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the host's wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// DayHigh register flags.
const (
	rtcDayHighBit8  = 0x01
	rtcDayHighHalt  = 0x40
	rtcDayHighCarry = 0x80
)

// Day counter widths.
const (
	mbc3DayLimit = 512  // 9-bit counter
	huc3DayLimit = 4096 // 12-bit counter
)

// RTCRegisters is the MBC3 register view of a clock.
//
// DayHigh carries bit 8 of the day counter in bit 0 (bits 0-3 on the 12-bit
// HuC3 counter), the halt flag in bit 6 and the day carry in bit 7.
type RTCRegisters struct {
	Seconds uint8
	Minutes uint8
	Hours   uint8
	DayLow  uint8
	DayHigh uint8
}

// Days returns the day counter encoded in DayLow/DayHigh.
func (r RTCRegisters) Days() uint16 {
	return uint16(r.DayLow) | uint16(r.DayHigh&0x0F)<<8
}

// Halted reports whether the halt flag is set.
func (r RTCRegisters) Halted() bool {
	return r.DayHigh&rtcDayHighHalt != 0
}

// Carry reports whether the day counter has overflowed.
func (r RTCRegisters) Carry() bool {
	return r.DayHigh&rtcDayHighCarry != 0
}

// RTC is a real-time clock that advances on demand from a Clock rather than
// from a ticking goroutine. Every observation applies the whole seconds
// elapsed since the anchor and keeps the sub-second remainder.
type RTC struct {
	clock  Clock
	anchor time.Time // wall time at which the live counters were exact

	seconds  uint8
	minutes  uint8
	hours    uint8
	days     uint16
	halted   bool
	carry    bool
	dayLimit uint16

	latched RTCRegisters
}

func newRTC(clock Clock, dayLimit uint16) *RTC {
	if clock == nil {
		clock = SystemClock
	}
	return &RTC{
		clock:    clock,
		anchor:   clock.Now(),
		dayLimit: dayLimit,
	}
}

// sync brings the live counters up to the clock's current time.
func (r *RTC) sync() {
	now := r.clock.Now()
	if r.halted || now.Before(r.anchor) {
		r.anchor = now
		return
	}

	elapsed := int64(now.Sub(r.anchor) / time.Second)
	if elapsed == 0 {
		return
	}
	r.advance(elapsed)
	r.anchor = r.anchor.Add(time.Duration(elapsed) * time.Second)
}

// advance moves the live counters forward by n seconds.
func (r *RTC) advance(n int64) {
	// Out-of-range values written by software count up to the width of
	// their register before wrapping; step them one second at a time until
	// every field is back in range.
	for n > 0 && (r.seconds >= 60 || r.minutes >= 60 || r.hours >= 24) {
		r.tick()
		n--
	}
	if n == 0 {
		return
	}

	total := int64(r.seconds) + n
	r.seconds = uint8(total % 60)

	total = int64(r.minutes) + total/60
	r.minutes = uint8(total % 60)

	total = int64(r.hours) + total/60
	r.hours = uint8(total % 24)

	days := int64(r.days) + total/24
	if days >= int64(r.dayLimit) {
		r.carry = true
		days %= int64(r.dayLimit)
	}
	r.days = uint16(days)
}

// tick advances one second with register-width wraparound.
func (r *RTC) tick() {
	r.seconds = (r.seconds + 1) & 0x3F
	if r.seconds != 60 {
		return
	}
	r.seconds = 0

	r.minutes = (r.minutes + 1) & 0x3F
	if r.minutes != 60 {
		return
	}
	r.minutes = 0

	r.hours = (r.hours + 1) & 0x1F
	if r.hours != 24 {
		return
	}
	r.hours = 0

	r.days++
	if r.days == r.dayLimit {
		r.days = 0
		r.carry = true
	}
}

// registers encodes the live counters without syncing.
func (r *RTC) registers() RTCRegisters {
	dh := uint8(r.days>>8) & 0x0F
	if r.halted {
		dh |= rtcDayHighHalt
	}
	if r.carry {
		dh |= rtcDayHighCarry
	}
	return RTCRegisters{
		Seconds: r.seconds,
		Minutes: r.minutes,
		Hours:   r.hours,
		DayLow:  uint8(r.days),
		DayHigh: dh,
	}
}

func (r *RTC) setRegisters(regs RTCRegisters) {
	r.seconds = regs.Seconds & 0x3F
	r.minutes = regs.Minutes & 0x3F
	r.hours = regs.Hours & 0x1F
	r.days = regs.Days() % r.dayLimit
	r.halted = regs.Halted()
	r.carry = regs.Carry()
}

// Live returns the current value of the running counters.
func (r *RTC) Live() RTCRegisters {
	r.sync()
	return r.registers()
}

// Latched returns the copy taken by the last Latch.
func (r *RTC) Latched() RTCRegisters {
	return r.latched
}

// Latch copies the running counters into the latched registers.
func (r *RTC) Latch() {
	r.latched = r.Live()
}

// Checkpoint returns the live and latched registers together with an anchor
// on a whole second. The running clock is moved onto that anchor as well, so
// a clock restored from the checkpoint ticks in step with this one instead
// of gaining the dropped fraction of a second on every save.
func (r *RTC) Checkpoint() (live, latched RTCRegisters, anchor time.Time) {
	r.sync()
	r.anchor = r.anchor.Truncate(time.Second)
	return r.registers(), r.latched, r.anchor
}

// Restore loads counters saved at anchor and advances them by the wall time
// elapsed since, unless the saved clock was halted.
func (r *RTC) Restore(live, latched RTCRegisters, anchor time.Time) {
	r.setRegisters(live)
	r.latched = latched
	r.anchor = anchor
	r.sync()
}

// writeRegister updates one MBC3 clock register, 0x08-0x0C.
func (r *RTC) writeRegister(reg, value uint8) {
	r.sync()
	switch reg {
	case 0x08:
		r.seconds = value & 0x3F
		// Writing the seconds register restarts the sub-second divider.
		r.anchor = r.clock.Now()
	case 0x09:
		r.minutes = value & 0x3F
	case 0x0A:
		r.hours = value & 0x1F
	case 0x0B:
		r.days = r.days&0x100 | uint16(value)
	case 0x0C:
		r.days = r.days&0xFF | uint16(value&rtcDayHighBit8)<<8
		r.halted = value&rtcDayHighHalt != 0
		r.carry = value&rtcDayHighCarry != 0
	}
}

// readLatched returns one latched MBC3 clock register, 0x08-0x0C.
func (r *RTC) readLatched(reg uint8) uint8 {
	switch reg {
	case 0x08:
		return r.latched.Seconds
	case 0x09:
		return r.latched.Minutes
	case 0x0A:
		return r.latched.Hours
	case 0x0B:
		return r.latched.DayLow
	case 0x0C:
		return r.latched.DayHigh
	default:
		return openBus
	}
}

// minuteOfDay and setTime serve clocks that count minutes and days only.
func (r *RTC) minuteOfDay() (minutes, days uint16) {
	r.sync()
	return uint16(r.hours)*60 + uint16(r.minutes), r.days
}

func (r *RTC) setTime(minutes, days uint16) {
	r.sync()
	minutes %= 24 * 60
	r.hours = uint8(minutes / 60)
	r.minutes = uint8(minutes % 60)
	r.seconds = 0
	r.days = days % r.dayLimit
	r.anchor = r.clock.Now()
}
