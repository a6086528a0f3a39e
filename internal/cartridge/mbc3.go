package cartridge

// MBC3 supports up to 2 MiB of ROM (4 MiB on the MBC30), 32 KiB of RAM and
// an optional real-time clock.
//
// Memory Map:
// - 0x0000-0x3FFF: ROM Bank 00 (fixed)
// - 0x4000-0x7FFF: ROM Bank 01-7F (switchable)
// - 0xA000-0xBFFF: RAM Bank 00-07, or the selected clock register
//
// Control Registers (write-only):
// - 0x0000-0x1FFF: RAM and Timer Enable (low nibble 0xA enables)
// - 0x2000-0x3FFF: ROM Bank Number (7 bits, 0 reads as 1)
// - 0x4000-0x5FFF: RAM Bank Number (0x00-0x07) or RTC Register Select (0x08-0x0C)
// - 0x6000-0x7FFF: Latch Clock Data (write 0x00 then 0x01)
type MBC3 struct {
	info *Info

	ramEnabled bool
	romBank    uint8
	romMask    uint8 // 0x7F, or 0xFF on MBC30 sized ROMs
	selected   uint8 // RAM bank or clock register
	latchValue uint8 // last value written to the latch register

	clock *RTC // nil without a timer
}

func newMBC3(info *Info, clock Clock) *MBC3 {
	m := &MBC3{
		info:       info,
		romBank:    1,
		romMask:    0x7F,
		latchValue: 0xFF,
	}
	if info.ROMBanks > 128 {
		m.romMask = 0xFF
	}
	if info.HasRTC() {
		m.clock = newRTC(clock, mbc3DayLimit)
	}
	return m
}

func (m *MBC3) rtcSelected() bool {
	return m.clock != nil && m.selected >= 0x08 && m.selected <= 0x0C
}

// TranslateRead implements Mapper.
func (m *MBC3) TranslateRead(addr uint16) Offset {
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
func (m *MBC3) TranslateWrite(addr uint16) Offset {
	if !m.ramEnabled {
		return openBusOffset
	}
	if m.rtcSelected() {
		return registerOffset
	}
	if m.selected > 0x07 || m.info.RAMBytes == 0 {
		return openBusOffset
	}
	return ramAt(bankOffset(int(m.selected), RAMBankSize, addr, m.info.RAMBytes))
}

// ControlWrite implements Mapper.
func (m *MBC3) ControlWrite(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = ramEnableValue(value)

	case addr < 0x4000:
		m.romBank = value & m.romMask
		if m.romBank == 0 {
			m.romBank = 1
		}

	case addr < 0x6000:
		m.selected = value & 0x0F

	default:
		// A 0x00 -> 0x01 sequence copies the running clock into the latch.
		if m.clock != nil && m.latchValue == 0x00 && value == 0x01 {
			m.clock.Latch()
		}
		m.latchValue = value
	}
}

// ReadRegister returns the latched value of the selected clock register.
func (m *MBC3) ReadRegister(uint16) uint8 {
	return m.clock.readLatched(m.selected)
}

// WriteRegister sets the selected clock register on the running clock.
func (m *MBC3) WriteRegister(_ uint16, value uint8) {
	m.clock.writeRegister(m.selected, value)
}

func (m *MBC3) rtc() *RTC {
	return m.clock
}

// State implements Mapper.
func (m *MBC3) State() State {
	s := State{
		ROMBank:     int(m.romBank) % m.info.ROMBanks,
		RAMEnabled:  m.ramEnabled,
		Mode:        m.selected,
		RTCSelected: m.rtcSelected(),
	}
	if m.info.RAMBanks > 0 && m.selected <= 0x07 {
		s.RAMBank = int(m.selected) % m.info.RAMBanks
	}
	return s
}
