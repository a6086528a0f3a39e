package cartridge

import "log/slog"

// MBC6 splits the switchable areas into independently banked halves and can
// map an on-board flash chip in place of ROM.
//
// Memory Map:
// - 0x0000-0x3FFF: ROM Bank 00 (fixed)
// - 0x4000-0x5FFF: ROM/Flash Bank A (8 KiB)
// - 0x6000-0x7FFF: ROM/Flash Bank B (8 KiB)
// - 0xA000-0xAFFF: RAM Bank A (4 KiB)
// - 0xB000-0xBFFF: RAM Bank B (4 KiB)
//
// Control Registers (write-only):
// - 0x0000-0x03FF: RAM Enable (low nibble 0xA enables)
// - 0x0400-0x07FF: RAM Bank A Number (3 bits)
// - 0x0800-0x0BFF: RAM Bank B Number (3 bits)
// - 0x0C00-0x0FFF: Flash Enable
// - 0x1000:        Flash Write Enable
// - 0x2000-0x27FF: ROM/Flash Bank A Number (7 bits)
// - 0x2800-0x2FFF: Bank A source (0x08 selects flash)
// - 0x3000-0x37FF: ROM/Flash Bank B Number (7 bits)
// - 0x3800-0x3FFF: Bank B source (0x08 selects flash)
//
// The flash chip is not emulated: flash-mapped windows read as erased and
// flash commands are dropped.
type MBC6 struct {
	noRegisters
	info *Info
	log  *slog.Logger

	ramEnabled bool
	ramBank    [2]uint8
	romBank    [2]uint8
	flash      [2]bool
}

func newMBC6(info *Info, log *slog.Logger) *MBC6 {
	// Banks A and B start on the two halves of 16 KiB bank 1.
	return &MBC6{
		info:    info,
		log:     log,
		romBank: [2]uint8{2, 3},
	}
}

const mbc6ROMBankSize = 0x2000

// TranslateRead implements Mapper.
func (m *MBC6) TranslateRead(addr uint16) Offset {
	if addr < 0x4000 {
		return romAt(int(addr) % m.info.ROMBytes)
	}
	if addr < 0x8000 {
		half := int(addr-0x4000) / mbc6ROMBankSize
		if m.flash[half] {
			return openBusOffset
		}
		return romAt(bankOffset(int(m.romBank[half]), mbc6ROMBankSize, addr, m.info.ROMBytes))
	}
	return m.TranslateWrite(addr)
}

// TranslateWrite implements Mapper.
func (m *MBC6) TranslateWrite(addr uint16) Offset {
	if !m.ramEnabled || m.info.RAMBytes == 0 {
		return openBusOffset
	}
	half := int(addr-0xA000) / mbc6RAMBankSize
	return ramAt(bankOffset(int(m.ramBank[half]), mbc6RAMBankSize, addr, m.info.RAMBytes))
}

// ControlWrite implements Mapper.
func (m *MBC6) ControlWrite(addr uint16, value uint8) {
	switch {
	case addr < 0x0400:
		m.ramEnabled = ramEnableValue(value)
	case addr < 0x0800:
		m.ramBank[0] = value & 0x07
	case addr < 0x0C00:
		m.ramBank[1] = value & 0x07
	case addr < 0x2000:
		m.log.Debug("ignoring flash control write", slog.Int("addr", int(addr)), slog.Int("value", int(value)))
	case addr < 0x2800:
		m.romBank[0] = value & 0x7F
	case addr < 0x3000:
		m.flash[0] = value&0x08 != 0
	case addr < 0x3800:
		m.romBank[1] = value & 0x7F
	case addr < 0x4000:
		m.flash[1] = value&0x08 != 0
	default:
		if m.flash[0] || m.flash[1] {
			m.log.Debug("ignoring flash program write", slog.Int("addr", int(addr)), slog.Int("value", int(value)))
		}
	}
}

// State implements Mapper. ROMBank and RAMBank report the A windows in
// their own bank units; Mode has bit 0 set when window A shows flash and
// bit 1 when window B does.
func (m *MBC6) State() State {
	s := State{
		ROMBank:    int(m.romBank[0]) % (m.info.ROMBytes / mbc6ROMBankSize),
		RAMEnabled: m.ramEnabled,
	}
	if m.info.RAMBanks > 0 {
		s.RAMBank = int(m.ramBank[0]) % m.info.RAMBanks
	}
	if m.flash[0] {
		s.Mode |= 0x01
	}
	if m.flash[1] {
		s.Mode |= 0x02
	}
	return s
}
