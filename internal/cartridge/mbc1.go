package cartridge

import (
	"bytes"
	"log/slog"
)

// MBC1 represents a cartridge with MBC1 (Memory Bank Controller 1).
// MBC1 is the most common MBC type, supporting up to 2 MiB of ROM and 32 KiB of RAM.
//
// Memory Map:
// - 0x0000-0x3FFF: ROM Bank 00 (fixed, or bank 0x00/0x20/0x40/0x60 in mode 1)
// - 0x4000-0x7FFF: ROM Bank 01-7F (switchable)
// - 0xA000-0xBFFF: RAM Bank 00-03 (switchable, if present)
//
// Control Registers (write-only):
// - 0x0000-0x1FFF: RAM Enable (low nibble 0xA enables, anything else disables)
// - 0x2000-0x3FFF: BANK1, ROM Bank Number (lower 5 bits, 0 reads as 1)
// - 0x4000-0x5FFF: BANK2, RAM Bank Number / ROM Bank Number (upper 2 bits)
// - 0x6000-0x7FFF: Banking Mode Select (0 = ROM banking, 1 = RAM banking)
//
// BANK2 always feeds ROM address lines 19-20 of the switchable window. On
// carts with 8 or fewer banks those lines are not connected, and on carts
// of 1 MiB or more only 8 KiB of RAM exists, so the bank modulo makes
// BANK2 select RAM or upper ROM bits exactly as the board wiring does.
type MBC1 struct {
	noRegisters
	info *Info

	// Banking control
	ramEnabled bool  // RAM enable flag (0x0000-0x1FFF)
	bank1      uint8 // 0x2000-0x3FFF, never 0
	bank2      uint8 // 0x4000-0x5FFF, 2 bits
	mode       uint8 // 0x6000-0x7FFF: 0 = ROM banking, 1 = RAM banking

	// MBC1M multicarts wire BANK2 to ROM lines 18-19 and drop BANK1 bit 4.
	bank1Mask  uint8
	bank2Shift uint
}

// newMBC1 creates a new MBC1 controller.
func newMBC1(info *Info, rom []byte, multicart MulticartMode, log *slog.Logger) *MBC1 {
	m := &MBC1{
		info:       info,
		bank1:      1, // Bank 0 is not selectable, so default to 1
		bank1Mask:  0x1F,
		bank2Shift: 5,
	}

	if multicart == MulticartOn || (multicart == MulticartAuto && isMulticart(rom)) {
		log.Debug("using MBC1M multicart wiring")
		m.bank1Mask = 0x0F
		m.bank2Shift = 4
	}

	return m
}

// isMulticart reports whether a 1 MiB MBC1 image holds more than one game.
// Each MBC1M game occupies 256 KiB and starts with its own header, so the
// boot logo repeats every 16 banks.
func isMulticart(rom []byte) bool {
	if len(rom) != 64*ROMBankSize {
		return false
	}

	logos := 0
	for game := 0; game < 4; game++ {
		base := game * 16 * ROMBankSize
		if bytes.Equal(rom[base+0x0104:base+0x0134], nintendoLogo[:]) {
			logos++
		}
	}
	return logos > 1
}

func (m *MBC1) romBank0() int {
	if m.mode == 0 {
		return 0
	}
	return int(m.bank2) << m.bank2Shift
}

func (m *MBC1) romBank() int {
	return int(m.bank2)<<m.bank2Shift | int(m.bank1&m.bank1Mask)
}

func (m *MBC1) ramBank() int {
	if m.mode == 0 {
		return 0
	}
	return int(m.bank2)
}

// TranslateRead implements Mapper.
func (m *MBC1) TranslateRead(addr uint16) Offset {
	switch {
	case addr < 0x4000:
		return romAt(bankOffset(m.romBank0(), ROMBankSize, addr, m.info.ROMBytes))
	case addr < 0x8000:
		return romAt(bankOffset(m.romBank(), ROMBankSize, addr, m.info.ROMBytes))
	default:
		return m.TranslateWrite(addr)
	}
}

// TranslateWrite implements Mapper.
func (m *MBC1) TranslateWrite(addr uint16) Offset {
	if !m.ramEnabled || m.info.RAMBytes == 0 {
		return openBusOffset
	}
	return ramAt(bankOffset(m.ramBank(), RAMBankSize, addr, m.info.RAMBytes))
}

// ControlWrite implements Mapper.
func (m *MBC1) ControlWrite(addr uint16, value uint8) {
	switch {
	// RAM Enable (0x0000-0x1FFF)
	case addr < 0x2000:
		m.ramEnabled = ramEnableValue(value)

	// ROM Bank Number - lower 5 bits (0x2000-0x3FFF)
	case addr < 0x4000:
		// The zero check sees all 5 register bits, so 0x20, 0x40 and 0x60
		// still cannot be mapped into the switchable window.
		m.bank1 = value & 0x1F
		if m.bank1 == 0 {
			m.bank1 = 1
		}

	// RAM Bank Number / ROM Bank Number upper bits (0x4000-0x5FFF)
	case addr < 0x6000:
		m.bank2 = value & 0x03

	// Banking Mode Select (0x6000-0x7FFF)
	default:
		m.mode = value & 0x01
	}
}

// State implements Mapper.
func (m *MBC1) State() State {
	s := State{
		ROMBank0:   m.romBank0() % m.info.ROMBanks,
		ROMBank:    m.romBank() % m.info.ROMBanks,
		RAMEnabled: m.ramEnabled,
		Mode:       m.mode,
	}
	if m.info.RAMBanks > 0 {
		s.RAMBank = m.ramBank() % m.info.RAMBanks
	}
	return s
}
