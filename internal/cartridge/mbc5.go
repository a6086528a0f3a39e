package cartridge

// MBC5 supports up to 8 MiB of ROM and 128 KiB of RAM with no bank quirks:
// ROM bank 0 can be mapped into the switchable window.
//
// Memory Map:
// - 0x0000-0x3FFF: ROM Bank 00 (fixed)
// - 0x4000-0x7FFF: ROM Bank 000-1FF (switchable)
// - 0xA000-0xBFFF: RAM Bank 00-0F (switchable, if present)
//
// Control Registers (write-only):
// - 0x0000-0x1FFF: RAM Enable (exactly 0x0A enables, all 8 bits are decoded)
// - 0x2000-0x2FFF: ROM Bank Number, lower 8 bits
// - 0x3000-0x3FFF: ROM Bank Number, bit 8
// - 0x4000-0x5FFF: RAM Bank Number (4 bits); on rumble carts bit 3 drives the motor
type MBC5 struct {
	noRegisters
	info *Info

	ramEnabled bool
	romBank    uint16
	ramBank    uint8

	hasRumble bool
	rumbling  bool
	rumble    RumbleFunc
}

func newMBC5(info *Info, rumble RumbleFunc) *MBC5 {
	return &MBC5{
		info:      info,
		romBank:   1,
		hasRumble: info.HasRumble(),
		rumble:    rumble,
	}
}

// TranslateRead implements Mapper.
func (m *MBC5) TranslateRead(addr uint16) Offset {
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
func (m *MBC5) TranslateWrite(addr uint16) Offset {
	if !m.ramEnabled || m.info.RAMBytes == 0 {
		return openBusOffset
	}
	return ramAt(bankOffset(int(m.ramBank), RAMBankSize, addr, m.info.RAMBytes))
}

// ControlWrite implements Mapper.
func (m *MBC5) ControlWrite(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value == 0x0A

	case addr < 0x3000:
		m.romBank = m.romBank&0x100 | uint16(value)

	case addr < 0x4000:
		m.romBank = m.romBank&0x0FF | uint16(value&0x01)<<8

	case addr < 0x6000:
		if !m.hasRumble {
			m.ramBank = value & 0x0F
			return
		}

		// The motor takes over RAM bank line 3.
		m.ramBank = value & 0x07
		on := value&0x08 != 0
		if on != m.rumbling {
			m.rumbling = on
			m.rumble(on)
		}
	}
}

// State implements Mapper.
func (m *MBC5) State() State {
	s := State{
		ROMBank:    int(m.romBank) % m.info.ROMBanks,
		RAMEnabled: m.ramEnabled,
		Rumble:     m.rumbling,
	}
	if m.info.RAMBanks > 0 {
		s.RAMBank = int(m.ramBank) % m.info.RAMBanks
	}
	return s
}
