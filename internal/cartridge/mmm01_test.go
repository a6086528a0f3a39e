package cartridge

import "testing"

func TestMMM01Menu(t *testing.T) {
	cart := mustNew(t, newBankedROM(0x0B, 0x05, 0x00)) // 1 MiB, 64 banks

	// Unmapped: the last 32 KiB is visible
	if got := bankAt(cart, 0x0000); got != 62 {
		t.Errorf("bank at 0x0000 unmapped = %d, want 62", got)
	}
	if got := bankAt(cart, 0x4000); got != 63 {
		t.Errorf("bank at 0x4000 unmapped = %d, want 63", got)
	}
	if got := cart.State().Mode & 0x80; got != 0 {
		t.Error("State().Mode reports mapped before the map write")
	}

	// Configuring the game does not change the mapping until bit 6 is written
	cart.Write(0x2000, 0x20) // ROM mid = 1
	if got := bankAt(cart, 0x4000); got != 63 {
		t.Errorf("bank at 0x4000 before mapping = %d, want 63", got)
	}

	cart.Write(0x0000, 0x40)
	if got := bankAt(cart, 0x0000); got != 0x20 {
		t.Errorf("bank at 0x0000 after mapping = %d, want 32", got)
	}
	if got := bankAt(cart, 0x4000); got != 0x21 {
		t.Errorf("bank at 0x4000 after mapping = %d, want 33", got)
	}

	// Inside the game it behaves like an MBC1
	cart.Write(0x2000, 0x05)
	if got := bankAt(cart, 0x4000); got != 0x25 {
		t.Errorf("bank at 0x4000 = %d, want 37", got)
	}

	// Outer bits are frozen
	cart.Write(0x2000, 0x60)
	cart.Write(0x4000, 0x30)
	cart.Write(0x0000, 0x00)
	if got := bankAt(cart, 0x4000); got != 0x21 {
		t.Errorf("bank at 0x4000 after writing frozen bits = %d, want 33", got)
	}
	if got := cart.State().Mode & 0x80; got == 0 {
		t.Error("unmapped again after writing 0x00 to 0x0000")
	}
}

func TestMMM01ROMMask(t *testing.T) {
	cart := mustNew(t, newBankedROM(0x0B, 0x05, 0x00))

	// A 32 KiB game at bank 6: mask all of bits 1-4
	cart.Write(0x2000, 0x06)
	cart.Write(0x6000, 0x3C)
	cart.Write(0x0000, 0x40)

	if got := bankAt(cart, 0x0000); got != 6 {
		t.Errorf("bank at 0x0000 = %d, want 6", got)
	}
	if got := bankAt(cart, 0x4000); got != 7 {
		t.Errorf("bank at 0x4000 = %d, want 7", got)
	}

	// The game can only flip bit 0
	cart.Write(0x2000, 0x1E)
	if got := bankAt(cart, 0x4000); got != 7 {
		t.Errorf("bank at 0x4000 after writing 0x1E = %d, want 7", got)
	}
}

func TestMMM01RAMAndModeLock(t *testing.T) {
	cart := mustNew(t, newBankedROM(0x0D, 0x05, 0x04)) // 128 KiB RAM

	// RAM bank high = 1, mode writes disabled
	cart.Write(0x4000, 0x44)
	cart.Write(0x6000, 0x01)
	cart.Write(0x0000, 0x4A)

	if got := cart.State().Mode & 0x01; got != 0 {
		t.Errorf("mode = %d, want 0 (writes disabled)", got)
	}
	if got := cart.State().RAMBank; got != 4 {
		t.Errorf("State().RAMBank = %d, want 4", got)
	}

	cart.Write(0xA000, 0x99)
	if got := cart.GetRAM()[4*RAMBankSize]; got != 0x99 {
		t.Errorf("RAM bank 4 first byte = 0x%02X, want 0x99", got)
	}

	// The game selects banks inside its 32 KiB slice only in mode 1, which
	// it cannot enter
	cart.Write(0x4000, 0x03)
	cart.Write(0x6000, 0x01)
	if got := cart.Read(0xA000); got != 0x99 {
		t.Errorf("Read(0xA000) = 0x%02X, want 0x99", got)
	}
}
