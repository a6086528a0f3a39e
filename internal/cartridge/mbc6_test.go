package cartridge

import "testing"

func TestMBC6ROMWindows(t *testing.T) {
	rom := newBankedROM(0x20, 0x05, 0x00) // 1 MiB
	for bank := range len(rom) / 0x2000 {
		rom[bank*0x2000+0x10] = byte(bank)
	}
	cart := mustNew(t, rom)

	// Power-on mapping matches a plain 16 KiB bank 1
	if got := cart.Read(0x4010); got != 2 {
		t.Errorf("Read(0x4010) = %d, want 8 KiB bank 2", got)
	}
	if got := cart.Read(0x6010); got != 3 {
		t.Errorf("Read(0x6010) = %d, want 8 KiB bank 3", got)
	}

	cart.Write(0x2000, 0x11)
	cart.Write(0x3000, 0x7F)
	if got := cart.Read(0x4010); got != 0x11 {
		t.Errorf("Read(0x4010) = 0x%02X, want 0x11", got)
	}
	if got := cart.Read(0x6010); got != 0x7F {
		t.Errorf("Read(0x6010) = 0x%02X, want 0x7F", got)
	}
	if got := cart.State().ROMBank; got != 0x11 {
		t.Errorf("State().ROMBank = 0x%02X, want 0x11", got)
	}

	// Flash-mapped windows read erased
	cart.Write(0x2800, 0x08)
	if got := cart.Read(0x4010); got != 0xFF {
		t.Errorf("Read(0x4010) from flash = 0x%02X, want 0xFF", got)
	}
	if got := cart.Read(0x6010); got != 0x7F {
		t.Errorf("Read(0x6010) with only A on flash = 0x%02X, want 0x7F", got)
	}
	if got := cart.State().Mode; got != 0x01 {
		t.Errorf("State().Mode = 0x%02X, want 0x01", got)
	}

	cart.Write(0x2800, 0x00)
	if got := cart.Read(0x4010); got != 0x11 {
		t.Errorf("Read(0x4010) back on ROM = 0x%02X, want 0x11", got)
	}
}

func TestMBC6RAMWindows(t *testing.T) {
	cart := mustNew(t, newBankedROM(0x20, 0x05, 0x00))

	if got := len(cart.GetRAM()); got != 32*1024 {
		t.Fatalf("RAM size = %d, want 32768", got)
	}

	cart.Write(0x0000, 0x0A)
	cart.Write(0x0400, 0x01)
	cart.Write(0x0800, 0x02)

	cart.Write(0xA000, 0x11)
	cart.Write(0xB000, 0x22)
	cart.Write(0xAFFF, 0x33)

	ram := cart.GetRAM()
	if ram[1*4096] != 0x11 || ram[2*4096] != 0x22 || ram[1*4096+0xFFF] != 0x33 {
		t.Errorf("RAM = [0x%02X 0x%02X 0x%02X], want [0x11 0x22 0x33]",
			ram[1*4096], ram[2*4096], ram[1*4096+0xFFF])
	}

	// Both windows can show the same bank
	cart.Write(0x0800, 0x01)
	if got := cart.Read(0xB000); got != 0x11 {
		t.Errorf("Read(0xB000) = 0x%02X, want 0x11", got)
	}
}
