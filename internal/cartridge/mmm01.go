package cartridge

// MMM01 is a multi-game controller. It powers up "unmapped" with the last
// 32 KiB of ROM (the menu) at 0x0000-0x7FFF. While unmapped, its registers
// also accept the outer bank bits that pick a game; mapping freezes those
// bits and the chip then behaves like an MBC1 confined to the game.
//
// Control Registers (write-only), unmapped-only fields marked *:
//   - 0x0000-0x1FFF: RAM Enable (bits 0-3), RAM bank mask* (bits 4-5), Map* (bit 6)
//   - 0x2000-0x3FFF: ROM bank low (bits 0-4), ROM bank mid* (bits 5-6)
//   - 0x4000-0x5FFF: RAM bank low (bits 0-1), RAM bank high* (bits 2-3),
//     ROM bank high* (bits 4-5), mode write disable* (bit 6)
//   - 0x6000-0x7FFF: Mode (bit 0), ROM bank mask* (bits 2-5)
type MMM01 struct {
	noRegisters
	info *Info

	mapped     bool
	ramEnabled bool
	mode       uint8

	romLow  uint8 // 5 bits
	romMid  uint8 // 2 bits
	romHigh uint8 // 2 bits
	ramLow  uint8 // 2 bits
	ramHigh uint8 // 2 bits

	romMask    uint8 // ROM bank low bits 1-4 fixed by the game select
	ramMask    uint8 // RAM bank low bits fixed by the game select
	modeLocked bool
}

func newMMM01(info *Info) *MMM01 {
	return &MMM01{info: info}
}

// romBase returns the first 16 KiB bank of the selected game.
func (m *MMM01) romBase() int {
	return int(m.romHigh)<<7 | int(m.romMid)<<5
}

func (m *MMM01) romBank0() int {
	return m.romBase() | int(m.romLow&m.romMask)
}

func (m *MMM01) romBank() int {
	low := m.romLow
	if low&^m.romMask == 0 {
		low |= 1
	}
	return m.romBase() | int(low)
}

func (m *MMM01) ramBank() int {
	low := m.ramLow
	if m.mode == 0 {
		low &= m.ramMask
	}
	return int(m.ramHigh)<<2 | int(low)
}

// TranslateRead implements Mapper.
func (m *MMM01) TranslateRead(addr uint16) Offset {
	if addr >= 0x8000 {
		return m.TranslateWrite(addr)
	}
	if !m.mapped {
		menu := m.info.ROMBytes - 2*ROMBankSize
		return romAt((menu + int(addr)) % m.info.ROMBytes)
	}
	if addr < 0x4000 {
		return romAt(bankOffset(m.romBank0(), ROMBankSize, addr, m.info.ROMBytes))
	}
	return romAt(bankOffset(m.romBank(), ROMBankSize, addr, m.info.ROMBytes))
}

// TranslateWrite implements Mapper.
func (m *MMM01) TranslateWrite(addr uint16) Offset {
	if !m.ramEnabled || m.info.RAMBytes == 0 {
		return openBusOffset
	}
	return ramAt(bankOffset(m.ramBank(), RAMBankSize, addr, m.info.RAMBytes))
}

// ControlWrite implements Mapper.
func (m *MMM01) ControlWrite(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = ramEnableValue(value)
		if !m.mapped {
			m.ramMask = (value >> 4) & 0x03
			m.mapped = value&0x40 != 0
		}

	case addr < 0x4000:
		// Masked bits keep the value they had when the game was mapped.
		keep := uint8(0)
		if m.mapped {
			keep = m.romMask
		} else {
			m.romMid = (value >> 5) & 0x03
		}
		m.romLow = m.romLow&keep | value&0x1F&^keep

	case addr < 0x6000:
		keep := uint8(0)
		if m.mapped {
			keep = m.ramMask
		} else {
			m.ramHigh = (value >> 2) & 0x03
			m.romHigh = (value >> 4) & 0x03
			m.modeLocked = value&0x40 != 0
		}
		m.ramLow = m.ramLow&keep | value&0x03&^keep

	default:
		if !m.mapped {
			m.romMask = (value >> 1) & 0x1E
		}
		if !m.modeLocked {
			m.mode = value & 0x01
		}
	}
}

// State implements Mapper. Mode reports the banking mode, with bit 7 set
// once a game has been mapped.
func (m *MMM01) State() State {
	s := State{RAMEnabled: m.ramEnabled, Mode: m.mode}
	if m.mapped {
		s.Mode |= 0x80
		s.ROMBank0 = m.romBank0() % m.info.ROMBanks
		s.ROMBank = m.romBank() % m.info.ROMBanks
	} else {
		s.ROMBank0 = (m.info.ROMBanks - 2) % m.info.ROMBanks
		s.ROMBank = m.info.ROMBanks - 1
	}
	if m.info.RAMBanks > 0 {
		s.RAMBank = m.ramBank() % m.info.RAMBanks
	}
	return s
}
