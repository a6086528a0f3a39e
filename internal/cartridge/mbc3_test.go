package cartridge

import (
	"testing"
	"time"
)

func TestMBC3ROMBanking(t *testing.T) {
	rom := newBankedROM(0x13, 0x04, 0x02) // MBC3+RAM+BATTERY, 512 KiB, 8 KiB
	rom[5*ROMBankSize+0x10] = 0xA5
	cart := mustNew(t, rom)

	cart.Write(0x2000, 5)
	if got := cart.Read(0x4000); got != rom[5*ROMBankSize] {
		t.Errorf("Read(0x4000) = 0x%02X, want byte at 5*16384 (0x%02X)", got, rom[5*ROMBankSize])
	}
	if got := cart.Read(0x4010); got != 0xA5 {
		t.Errorf("Read(0x4010) = 0x%02X, want 0xA5", got)
	}

	// Bank 0 reads as 1
	cart.Write(0x2000, 0x00)
	if got := bankAt(cart, 0x4000); got != 1 {
		t.Errorf("bank at 0x4000 after writing 0 = %d, want 1", got)
	}

	// Seven bits are decoded; 0x80 is bank 0, which reads as 1
	cart.Write(0x2000, 0x80)
	if got := cart.State().ROMBank; got != 1 {
		t.Errorf("State().ROMBank after writing 0x80 = %d, want 1", got)
	}

	// Banks past the end wrap
	cart.Write(0x2000, 0x25)
	if got := bankAt(cart, 0x4000); got != 5 {
		t.Errorf("bank at 0x4000 after writing 0x25 = %d, want 5", got)
	}
}

func TestMBC30ROMBanking(t *testing.T) {
	cart := mustNew(t, newBankedROM(0x13, 0x07, 0x00)) // 4 MiB

	cart.Write(0x2000, 0xC3)
	if got := bankAt(cart, 0x4000); got != 0xC3 {
		t.Errorf("bank at 0x4000 = 0x%02X, want 0xC3", got)
	}
}

func TestMBC3RAMBanking(t *testing.T) {
	cart := mustNew(t, newBankedROM(0x13, 0x04, 0x03)) // 32 KiB RAM
	cart.Write(0x0000, 0x0A)

	for bank := range 4 {
		cart.Write(0x4000, uint8(bank))
		cart.Write(0xA000, uint8(0x20+bank))
	}
	for bank := range 4 {
		cart.Write(0x4000, uint8(bank))
		if got := cart.Read(0xA000); got != uint8(0x20+bank) {
			t.Errorf("RAM bank %d Read(0xA000) = 0x%02X, want 0x%02X", bank, got, 0x20+bank)
		}
	}

	// Banks 4-7 wrap on a 4-bank cart
	cart.Write(0x4000, 0x06)
	if got := cart.Read(0xA000); got != 0x22 {
		t.Errorf("RAM bank 6 Read(0xA000) = 0x%02X, want 0x22 (bank 2)", got)
	}

	// Clock registers on a cart without a clock read as open bus
	cart.Write(0x4000, 0x08)
	if got := cart.Read(0xA000); got != 0xFF {
		t.Errorf("Read(0xA000) with register 0x08 on a clockless cart = 0x%02X, want 0xFF", got)
	}
	if cart.State().RTCSelected {
		t.Error("State().RTCSelected = true on a clockless cart")
	}
}

func TestMBC3RTCLatch(t *testing.T) {
	clock := newFakeClock()
	cart := mustNew(t, newBankedROM(0x10, 0x04, 0x03), Config{Clock: clock})

	cart.Write(0x0000, 0x0A)
	clock.advance(2*time.Hour + 3*time.Minute + 4*time.Second)

	// Registers read the latched copy, all zero until the first latch
	cart.Write(0x4000, 0x08)
	if got := cart.Read(0xA000); got != 0 {
		t.Errorf("seconds before latch = %d, want 0", got)
	}
	if !cart.State().RTCSelected {
		t.Error("State().RTCSelected = false with register 0x08 selected")
	}

	// 0x00 then 0x01 latches
	cart.Write(0x6000, 0x00)
	cart.Write(0x6000, 0x01)

	want := map[uint8]uint8{0x08: 4, 0x09: 3, 0x0A: 2, 0x0B: 0, 0x0C: 0}
	for reg, v := range want {
		cart.Write(0x4000, reg)
		if got := cart.Read(0xA000); got != v {
			t.Errorf("register 0x%02X = %d, want %d", reg, got, v)
		}
	}

	// Time keeps running but the latched copy does not change
	clock.advance(10 * time.Second)
	cart.Write(0x4000, 0x08)
	if got := cart.Read(0xA000); got != 4 {
		t.Errorf("seconds after 10s without latch = %d, want 4", got)
	}

	// Writing 0x01 alone does not latch
	cart.Write(0x6000, 0x01)
	if got := cart.Read(0xBFFF); got != 4 {
		t.Errorf("seconds after lone 0x01 = %d, want 4", got)
	}

	cart.Write(0x6000, 0x00)
	cart.Write(0x6000, 0x01)
	if got := cart.Read(0xA000); got != 14 {
		t.Errorf("seconds after relatch = %d, want 14", got)
	}

	// Disabling RAM hides the clock
	cart.Write(0x0000, 0x00)
	if got := cart.Read(0xA000); got != 0xFF {
		t.Errorf("clock read with RAM disabled = 0x%02X, want 0xFF", got)
	}
}

func TestMBC3RTCWrite(t *testing.T) {
	clock := newFakeClock()
	cart := mustNew(t, newBankedROM(0x0F, 0x04, 0x00), Config{Clock: clock})
	cart.Write(0x0000, 0x0A)

	// Set day 0x1FF and halt
	cart.Write(0x4000, 0x0B)
	cart.Write(0xA000, 0xFF)
	cart.Write(0x4000, 0x0C)
	cart.Write(0xA000, 0x41)

	clock.advance(time.Hour)

	live := cart.RTC().Live()
	if live.Days() != 0x1FF || !live.Halted() || live.Hours != 0 {
		t.Errorf("Live() = %+v, want halted on day 511", live)
	}

	// Writes go to the running clock, not the latch
	cart.Write(0x4000, 0x08)
	cart.Write(0xA000, 30)
	if got := cart.Read(0xA000); got != 0 {
		t.Errorf("latched seconds after write = %d, want 0", got)
	}
	if got := cart.RTC().Live().Seconds; got != 30 {
		t.Errorf("Live().Seconds after write = %d, want 30", got)
	}
}
