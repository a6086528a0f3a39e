package cartridge

import "testing"

func TestMBC2ROMBanking(t *testing.T) {
	cart := mustNew(t, newBankedROM(0x05, 0x03, 0x00)) // 256 KiB

	// Address bit 8 set selects the ROM bank register
	cart.Write(0x2100, 0x07)
	if got := bankAt(cart, 0x4000); got != 7 {
		t.Errorf("bank at 0x4000 = %d, want 7", got)
	}

	// Bit 8 clear is the RAM enable register, the bank is untouched
	cart.Write(0x2000, 0x03)
	if got := bankAt(cart, 0x4000); got != 7 {
		t.Errorf("bank at 0x4000 after RAM enable write = %d, want 7", got)
	}

	// Bank 0 reads as 1, only 4 bits are kept
	cart.Write(0x0100, 0x10)
	if got := bankAt(cart, 0x4000); got != 1 {
		t.Errorf("bank at 0x4000 after writing 0x10 = %d, want 1", got)
	}
	cart.Write(0x3FFF, 0x0F)
	if got := bankAt(cart, 0x4000); got != 15 {
		t.Errorf("bank at 0x4000 after writing 0x0F = %d, want 15", got)
	}

	// 0x4000-0x7FFF does nothing
	cart.Write(0x4100, 0x02)
	if got := cart.State().ROMBank; got != 15 {
		t.Errorf("State().ROMBank = %d, want 15", got)
	}
}

func TestMBC2NibbleRAM(t *testing.T) {
	cart := mustNew(t, newBankedROM(0x06, 0x01, 0x00))

	if got := len(cart.GetRAM()); got != 512 {
		t.Fatalf("RAM size = %d, want 512", got)
	}

	// RAM enable ignores writes with address bit 8 set
	cart.Write(0x0100, 0x0A)
	if cart.State().RAMEnabled {
		t.Error("RAM enabled by a write with address bit 8 set")
	}
	cart.Write(0x0000, 0x0A)

	// Only the low nibble is stored, the high nibble reads as 1s
	cart.Write(0xA000, 0x5C)
	if got := cart.Read(0xA000); got != 0xFC {
		t.Errorf("Read(0xA000) = 0x%02X, want 0xFC", got)
	}
	if got := cart.GetRAM()[0]; got != 0x0C {
		t.Errorf("GetRAM()[0] = 0x%02X, want 0x0C", got)
	}

	// The 512 cells repeat across the window
	for _, addr := range []uint16{0xA200, 0xA400, 0xB000, 0xBE00} {
		if got := cart.Read(addr); got != 0xFC {
			t.Errorf("Read(0x%04X) echo = 0x%02X, want 0xFC", addr, got)
		}
	}
	cart.Write(0xBFFF, 0x03)
	if got := cart.Read(0xA1FF); got != 0xF3 {
		t.Errorf("Read(0xA1FF) = 0x%02X, want 0xF3", got)
	}

	// Save data is masked to nibbles as well
	data := make([]byte, 512)
	data[1] = 0xAB
	if err := cart.SetRAM(data); err != nil {
		t.Fatalf("SetRAM() error = %v", err)
	}
	if got := cart.Read(0xA001); got != 0xFB {
		t.Errorf("Read(0xA001) after SetRAM = 0x%02X, want 0xFB", got)
	}
}
