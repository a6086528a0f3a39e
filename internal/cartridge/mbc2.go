package cartridge

// MBC2 supports up to 256 KiB of ROM and has 512 x 4 bits of RAM built in.
//
// Memory Map:
//   - 0x0000-0x3FFF: ROM Bank 00 (fixed)
//   - 0x4000-0x7FFF: ROM Bank 01-0F (switchable)
//   - 0xA000-0xA1FF: built-in RAM, echoed through 0xBFFF; only the low
//     nibble of each byte exists and the high nibble reads as 1s
//
// Control Registers (0x0000-0x3FFF, write-only), selected by address bit 8:
// - bit 8 clear: RAM Enable (low nibble 0xA enables)
// - bit 8 set:   ROM Bank Number (4 bits, 0 reads as 1)
type MBC2 struct {
	noRegisters
	info *Info

	ramEnabled bool
	romBank    uint8
}

func newMBC2(info *Info) *MBC2 {
	return &MBC2{info: info, romBank: 1}
}

// TranslateRead implements Mapper.
func (m *MBC2) TranslateRead(addr uint16) Offset {
	switch {
	case addr < 0x4000:
		return romAt(int(addr) % m.info.ROMBytes)
	case addr < 0x8000:
		return romAt(bankOffset(int(m.romBank), ROMBankSize, addr, m.info.ROMBytes))
	default:
		return m.TranslateWrite(addr)
	}
}

// TranslateWrite implements Mapper.
func (m *MBC2) TranslateWrite(addr uint16) Offset {
	if !m.ramEnabled {
		return openBusOffset
	}
	// Only address lines 0-8 reach the RAM array.
	return ramAt(int(addr & 0x01FF))
}

// ControlWrite implements Mapper.
func (m *MBC2) ControlWrite(addr uint16, value uint8) {
	if addr >= 0x4000 {
		return
	}

	if addr&0x0100 == 0 {
		m.ramEnabled = ramEnableValue(value)
		return
	}

	m.romBank = value & 0x0F
	if m.romBank == 0 {
		m.romBank = 1
	}
}

// ramDataMask implements ramNibbles.
func (m *MBC2) ramDataMask() uint8 {
	return 0x0F
}

// State implements Mapper.
func (m *MBC2) State() State {
	return State{
		ROMBank:    int(m.romBank) % m.info.ROMBanks,
		RAMEnabled: m.ramEnabled,
	}
}
