package cartridge

import (
	"testing"
	"time"
)

// fakeClock is a Clock that only moves when told to.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func TestRTCAdvance(t *testing.T) {
	clock := newFakeClock()
	rtc := newRTC(clock, mbc3DayLimit)

	clock.advance(1*time.Hour + 2*time.Minute + 3*time.Second)
	got := rtc.Live()
	want := RTCRegisters{Seconds: 3, Minutes: 2, Hours: 1}
	if got != want {
		t.Errorf("Live() = %+v, want %+v", got, want)
	}

	// Sub-second remainders are carried, not dropped
	clock.advance(600 * time.Millisecond)
	rtc.Live()
	clock.advance(600 * time.Millisecond)
	if got := rtc.Live().Seconds; got != 4 {
		t.Errorf("Seconds after 2 x 600ms = %d, want 4", got)
	}
}

func TestRTCDayCarry(t *testing.T) {
	clock := newFakeClock()
	rtc := newRTC(clock, mbc3DayLimit)

	// Day 511, 23:59:59
	rtc.setRegisters(RTCRegisters{Seconds: 59, Minutes: 59, Hours: 23, DayLow: 0xFF, DayHigh: 0x01})
	if got := rtc.Live().Days(); got != 511 {
		t.Fatalf("Days() = %d, want 511", got)
	}

	clock.advance(time.Second)
	got := rtc.Live()
	if got.Days() != 0 || got.Hours != 0 || got.Minutes != 0 || got.Seconds != 0 {
		t.Errorf("Live() after overflow = %+v, want all zero counters", got)
	}
	if !got.Carry() {
		t.Error("Carry() = false after day overflow, want true")
	}

	// Carry is sticky until software clears it
	clock.advance(24 * time.Hour)
	if !rtc.Live().Carry() {
		t.Error("Carry() cleared by time passing")
	}
	rtc.writeRegister(0x0C, 0x00)
	if rtc.Live().Carry() {
		t.Error("Carry() still set after writing DH = 0")
	}
}

func TestRTCHalt(t *testing.T) {
	clock := newFakeClock()
	rtc := newRTC(clock, mbc3DayLimit)

	rtc.writeRegister(0x0C, rtcDayHighHalt)
	clock.advance(time.Hour)
	if got := rtc.Live(); got.Hours != 0 || !got.Halted() {
		t.Errorf("Live() while halted = %+v, want stopped clock", got)
	}

	// Resuming does not count the halted time
	rtc.writeRegister(0x0C, 0x00)
	clock.advance(5 * time.Second)
	if got := rtc.Live(); got.Seconds != 5 || got.Hours != 0 {
		t.Errorf("Live() after resume = %+v, want 5 seconds", got)
	}
}

func TestRTCOutOfRangeValues(t *testing.T) {
	clock := newFakeClock()
	rtc := newRTC(clock, mbc3DayLimit)

	// Seconds count up to the 6-bit register limit and wrap to 0 without
	// carrying into minutes.
	rtc.writeRegister(0x08, 62)
	clock.advance(2 * time.Second)
	got := rtc.Live()
	if got.Seconds != 0 || got.Minutes != 0 {
		t.Errorf("Live() after 62+2 seconds = %+v, want 0:00", got)
	}

	// Hours wrap at 32
	rtc.writeRegister(0x0A, 31)
	rtc.writeRegister(0x09, 59)
	rtc.writeRegister(0x08, 59)
	clock.advance(time.Second)
	got = rtc.Live()
	if got.Hours != 0 || got.Days() != 0 {
		t.Errorf("Live() after hour 31 overflow = %+v, want hour 0 day 0", got)
	}
}

func TestRTCSecondsWriteResetsPhase(t *testing.T) {
	clock := newFakeClock()
	rtc := newRTC(clock, mbc3DayLimit)

	clock.advance(900 * time.Millisecond)
	rtc.writeRegister(0x08, 10)
	clock.advance(900 * time.Millisecond)
	if got := rtc.Live().Seconds; got != 10 {
		t.Errorf("Seconds 900ms after write = %d, want 10", got)
	}
	clock.advance(100 * time.Millisecond)
	if got := rtc.Live().Seconds; got != 11 {
		t.Errorf("Seconds 1s after write = %d, want 11", got)
	}
}

func TestRTCCheckpoint(t *testing.T) {
	clock := newFakeClock()
	clock.advance(600 * time.Millisecond)
	rtc := newRTC(clock, mbc3DayLimit)

	clock.advance(10 * time.Second)
	live, _, anchor := rtc.Checkpoint()
	if live.Seconds != 10 {
		t.Errorf("Checkpoint() seconds = %d, want 10", live.Seconds)
	}
	if anchor.Nanosecond() != 0 {
		t.Errorf("Checkpoint() anchor = %v, want a whole second", anchor)
	}
	if want := time.Date(2024, 3, 1, 12, 0, 10, 0, time.UTC); !anchor.Equal(want) {
		t.Errorf("Checkpoint() anchor = %v, want %v", anchor, want)
	}

	// The running clock now counts from the whole second too.
	clock.advance(500 * time.Millisecond)
	if got := rtc.Live().Seconds; got != 11 {
		t.Errorf("Seconds 500ms after checkpoint = %d, want 11", got)
	}
}

func TestRTCLatch(t *testing.T) {
	clock := newFakeClock()
	rtc := newRTC(clock, mbc3DayLimit)

	clock.advance(30 * time.Second)
	rtc.Latch()
	clock.advance(10 * time.Second)

	if got := rtc.Latched().Seconds; got != 30 {
		t.Errorf("Latched().Seconds = %d, want 30", got)
	}
	if got := rtc.readLatched(0x08); got != 30 {
		t.Errorf("readLatched(0x08) = %d, want 30", got)
	}
	if got := rtc.Live().Seconds; got != 40 {
		t.Errorf("Live().Seconds = %d, want 40", got)
	}
}

func TestRTCRestore(t *testing.T) {
	clock := newFakeClock()
	saved := clock.now

	live := RTCRegisters{Seconds: 50, Minutes: 10, Hours: 5, DayLow: 3}
	latched := RTCRegisters{Seconds: 1}

	// Two minutes of wall time passed while the game was not running
	clock.advance(2 * time.Minute)
	rtc := newRTC(clock, mbc3DayLimit)
	rtc.Restore(live, latched, saved)

	want := RTCRegisters{Seconds: 50, Minutes: 12, Hours: 5, DayLow: 3}
	if got := rtc.Live(); got != want {
		t.Errorf("Live() after Restore = %+v, want %+v", got, want)
	}
	if got := rtc.Latched(); got != latched {
		t.Errorf("Latched() after Restore = %+v, want %+v", got, latched)
	}

	// A halted clock does not catch up
	halted := live
	halted.DayHigh = rtcDayHighHalt
	rtc.Restore(halted, latched, saved)
	if got := rtc.Live().Minutes; got != 10 {
		t.Errorf("halted Minutes after Restore = %d, want 10", got)
	}
}

func TestRTCMinuteOfDay(t *testing.T) {
	clock := newFakeClock()
	rtc := newRTC(clock, huc3DayLimit)

	rtc.setTime(25*60+5, 4000)
	minutes, days := rtc.minuteOfDay()
	if minutes != 65 || days != 4000 {
		t.Errorf("minuteOfDay() = %d, %d, want 65, 4000", minutes, days)
	}

	clock.advance(24 * time.Hour)
	if _, days := rtc.minuteOfDay(); days != 4001 {
		t.Errorf("days after 24h = %d, want 4001", days)
	}
}
