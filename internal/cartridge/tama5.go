package cartridge

// TAMA5 is Bandai's controller for Tamagotchi 3. Everything goes through
// two memory-mapped ports: 0xA001 selects one of sixteen 4-bit registers
// and 0xA000 reads or writes it. The 32-byte RAM and the clock sit behind
// a command/address pair.
//
// Writable registers:
// - 0x0, 0x1: ROM bank bits 0-3 and bit 4
// - 0x4, 0x5: write data low and high nibble
// - 0x6:      bit 0 address bit 4, bits 1-3 command
// - 0x7:      address bits 0-3, executes the command
//
// Readable registers:
// - 0xA: ready flag (always 1)
// - 0xC, 0xD: read data low and high nibble
//
// Commands: 0 writes RAM, 1 reads RAM, 2 writes a clock digit, 3 reads one.
type TAMA5 struct {
	info  *Info
	ram   []byte
	clock *RTC

	selected uint8
	romBank  uint8
	data     uint8 // pending write byte
	command  uint8
	addrHigh uint8
	result   uint8 // byte returned by the last read command
}

func newTAMA5(info *Info, ram []byte, clock Clock) *TAMA5 {
	return &TAMA5{
		info:  info,
		ram:   ram,
		clock: newRTC(clock, mbc3DayLimit),
	}
}

// TranslateRead implements Mapper.
func (m *TAMA5) TranslateRead(addr uint16) Offset {
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
func (m *TAMA5) TranslateWrite(addr uint16) Offset {
	if addr <= 0xA001 {
		return registerOffset
	}
	return openBusOffset
}

// ControlWrite implements Mapper. ROM writes do nothing on the TAMA5.
func (m *TAMA5) ControlWrite(uint16, uint8) {}

// ReadRegister implements Mapper.
func (m *TAMA5) ReadRegister(addr uint16) uint8 {
	if addr != 0xA000 {
		return openBus
	}
	switch m.selected {
	case 0xA:
		return 0xF1
	case 0xC:
		return 0xF0 | m.result&0x0F
	case 0xD:
		return 0xF0 | m.result>>4
	default:
		return openBus
	}
}

// WriteRegister implements Mapper.
func (m *TAMA5) WriteRegister(addr uint16, value uint8) {
	value &= 0x0F
	if addr == 0xA001 {
		m.selected = value
		return
	}

	switch m.selected {
	case 0x0:
		m.romBank = m.romBank&0x10 | value
	case 0x1:
		m.romBank = m.romBank&0x0F | (value&0x01)<<4
	case 0x4:
		m.data = m.data&0xF0 | value
	case 0x5:
		m.data = m.data&0x0F | value<<4
	case 0x6:
		m.addrHigh = value & 0x01
		m.command = value >> 1
	case 0x7:
		m.execute(m.addrHigh<<4 | value)
	}
}

// execute runs the pending command against addr.
func (m *TAMA5) execute(addr uint8) {
	switch m.command {
	case 0:
		m.ram[int(addr)%len(m.ram)] = m.data
	case 1:
		m.result = m.ram[int(addr)%len(m.ram)]
	case 2:
		m.writeClockDigit(addr&0x0F, m.data&0x0F)
	case 3:
		m.result = m.readClockDigit(addr & 0x0F)
	}
}

// Clock digits: seconds, minutes and hours as BCD ones/tens pairs, then
// the day counter as three binary nibbles.
func (m *TAMA5) readClockDigit(digit uint8) uint8 {
	regs := m.clock.Live()
	switch digit {
	case 0x0:
		return regs.Seconds % 10
	case 0x1:
		return regs.Seconds / 10
	case 0x2:
		return regs.Minutes % 10
	case 0x3:
		return regs.Minutes / 10
	case 0x4:
		return regs.Hours % 10
	case 0x5:
		return regs.Hours / 10
	case 0x6:
		return uint8(regs.Days()) & 0x0F
	case 0x7:
		return uint8(regs.Days()>>4) & 0x0F
	case 0x8:
		return uint8(regs.Days()>>8) & 0x01
	default:
		return 0
	}
}

func (m *TAMA5) writeClockDigit(digit, v uint8) {
	regs := m.clock.Live()
	days := regs.Days()
	switch digit {
	case 0x0:
		m.clock.writeRegister(0x08, regs.Seconds/10*10+v)
	case 0x1:
		m.clock.writeRegister(0x08, v*10+regs.Seconds%10)
	case 0x2:
		m.clock.writeRegister(0x09, regs.Minutes/10*10+v)
	case 0x3:
		m.clock.writeRegister(0x09, v*10+regs.Minutes%10)
	case 0x4:
		m.clock.writeRegister(0x0A, regs.Hours/10*10+v)
	case 0x5:
		m.clock.writeRegister(0x0A, v*10+regs.Hours%10)
	case 0x6:
		m.clock.writeRegister(0x0B, uint8(days)&0xF0|v)
	case 0x7:
		m.clock.writeRegister(0x0B, uint8(days)&0x0F|v<<4)
	case 0x8:
		m.clock.writeRegister(0x0C, regs.DayHigh&^rtcDayHighBit8|v&rtcDayHighBit8)
	}
}

func (m *TAMA5) rtc() *RTC {
	return m.clock
}

// State implements Mapper. Mode is the selected register.
func (m *TAMA5) State() State {
	return State{
		ROMBank:    int(m.romBank) % m.info.ROMBanks,
		RAMEnabled: true,
		Mode:       m.selected,
	}
}
