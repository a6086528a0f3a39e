package memory

import (
	"testing"

	"github.com/richardwooding/gbcart/internal/cartridge"
)

// newROM builds an MBC1 image whose banks start with their own number.
func newROM(banks int) []byte {
	rom := make([]byte, banks*cartridge.ROMBankSize)
	for bank := range banks {
		rom[bank*cartridge.ROMBankSize+0x10] = byte(bank)
	}
	rom[0x0147] = 0x03 // MBC1+RAM+BATTERY
	switch banks {
	case 2:
		rom[0x0148] = 0x00
	case 8:
		rom[0x0148] = 0x02
	}
	rom[0x0149] = 0x03 // 32 KiB RAM
	return rom
}

func newTestBus(t *testing.T) (*Bus, cartridge.Cartridge) {
	t.Helper()
	cart, err := cartridge.New(newROM(8), cartridge.Config{})
	if err != nil {
		t.Fatalf("cartridge.New() error = %v", err)
	}
	return NewBus(cart), cart
}

func TestNoCartridge(t *testing.T) {
	bus := NewBus(nil)

	for _, addr := range []uint16{0x0000, 0x4000, 0x7FFF, 0xA000, 0xBFFF} {
		if got := bus.Read(addr); got != 0xFF {
			t.Errorf("Read(0x%04X) = 0x%02X, want 0xFF", addr, got)
		}
	}
	// Must not panic
	bus.Write(0x2000, 0x01)
	bus.Write(0xA000, 0x01)
}

func TestCartridgeRouting(t *testing.T) {
	bus, cart := newTestBus(t)

	if got := bus.Read(0x4010); got != 1 {
		t.Errorf("Read(0x4010) = %d, want bank 1", got)
	}

	bus.Write(0x2000, 0x05)
	if got := bus.Read(0x4010); got != 5 {
		t.Errorf("Read(0x4010) after bank switch = %d, want 5", got)
	}

	// External RAM is disabled until the enable write
	bus.Write(0xA000, 0x42)
	if got := bus.Read(0xA000); got != 0xFF {
		t.Errorf("Read(0xA000) with RAM disabled = 0x%02X, want 0xFF", got)
	}

	bus.Write(0x0000, 0x0A)
	bus.Write(0xA000, 0x42)
	if got := bus.Read(0xA000); got != 0x42 {
		t.Errorf("Read(0xA000) = 0x%02X, want 0x42", got)
	}
	if got := cart.GetRAM()[0]; got != 0x42 {
		t.Errorf("cartridge RAM[0] = 0x%02X, want 0x42", got)
	}
}

func TestConsoleMemory(t *testing.T) {
	bus, _ := newTestBus(t)

	tests := []struct {
		name  string
		write uint16
		read  uint16
	}{
		{"VRAM", 0x8123, 0x8123},
		{"WRAM bank 0", 0xC123, 0xC123},
		{"WRAM bank 1", 0xD456, 0xD456},
		{"echo write", 0xE010, 0xC010},
		{"echo read", 0xC020, 0xE020},
		{"OAM", 0xFE9F, 0xFE9F},
		{"I/O", 0xFF10, 0xFF10},
		{"HRAM", 0xFF80, 0xFF80},
		{"HRAM end", 0xFFFE, 0xFFFE},
		{"IE", 0xFFFF, 0xFFFF},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value := uint8(0x30 + i)
			bus.Write(tt.write, value)
			if got := bus.Read(tt.read); got != value {
				t.Errorf("Read(0x%04X) = 0x%02X, want 0x%02X", tt.read, got, value)
			}
		})
	}
}

func TestNotUsableMemory(t *testing.T) {
	bus, _ := newTestBus(t)

	bus.Write(0xFEA0, 0x12)
	bus.Write(0xFEFF, 0x34)
	if got := bus.Read(0xFEA0); got != 0xFF {
		t.Errorf("Read(0xFEA0) = 0x%02X, want 0xFF", got)
	}
	if got := bus.Read(0xFEFF); got != 0xFF {
		t.Errorf("Read(0xFEFF) = 0x%02X, want 0xFF", got)
	}
}

func TestDMAFromCartridge(t *testing.T) {
	bus, _ := newTestBus(t)
	bus.Write(0x2000, 0x03)

	// Copy 0x4000-0x409F, which includes the bank marker at 0x4010
	bus.Write(0xFF46, 0x40)

	if got := bus.Read(0xFE10); got != 3 {
		t.Errorf("OAM[0x10] = %d, want bank marker 3", got)
	}
	if got := bus.Read(0xFF46); got != 0x40 {
		t.Errorf("Read(0xFF46) = 0x%02X, want 0x40", got)
	}
}

func TestDMALeavesBusReadable(t *testing.T) {
	bus, _ := newTestBus(t)
	for i := range dmaLength {
		bus.Write(0xC000+uint16(i), uint8(i))
	}

	bus.Write(0xFF46, 0xC0)

	// Nothing steps the transfer, so it must not hold the bus.
	for _, addr := range []uint16{0x0134, 0x4010, 0xC001, 0xFE9F} {
		if got := bus.Read(addr); got == 0xFF {
			t.Errorf("Read(0x%04X) after DMA = 0xFF, bus still locked", addr)
		}
	}
	for i := range dmaLength {
		if got := bus.Read(0xFE00 + uint16(i)); got != uint8(i) {
			t.Fatalf("OAM[0x%02X] = 0x%02X, want 0x%02X", i, got, uint8(i))
		}
	}
}

func TestDMAInvalidSource(t *testing.T) {
	bus, _ := newTestBus(t)
	bus.Write(0xFE00, 0x5A)

	bus.Write(0xFF46, 0xF2)
	if got := bus.Read(0xFE00); got != 0x5A {
		t.Errorf("OAM[0] = 0x%02X, want 0x5A untouched", got)
	}
	if got := bus.Read(0xFF46); got != 0xF2 {
		t.Errorf("Read(0xFF46) = 0x%02X, want 0xF2", got)
	}
}
