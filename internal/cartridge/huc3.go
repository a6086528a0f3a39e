package cartridge

import "log/slog"

// HuC3 is Hudson's controller with a clock co-processor and an IR port.
// The RAM window is multiplexed by a mode register:
//
//   - 0x00: RAM, read only
//   - 0x0A: RAM, read/write
//   - 0x0B: command port (write)
//   - 0x0C: command response (read)
//   - 0x0D: semaphore (reads 1 when the co-processor is idle)
//   - 0x0E: IR port
//
// Control Registers (write-only):
// - 0x0000-0x1FFF: mode
// - 0x2000-0x3FFF: ROM Bank Number (7 bits)
// - 0x4000-0x5FFF: RAM Bank Number (2 bits)
//
// A command byte carries the command in bits 4-6 and an argument nibble in
// bits 0-3. The co-processor owns 256 nibbles of memory; the time lives in
// nibbles 0-5 as minute of day and day count, 12 bits each, least
// significant nibble first.
type HuC3 struct {
	info *Info
	ir   Infrared
	log  *slog.Logger

	mode    uint8
	romBank uint8
	ramBank uint8

	clock    *RTC
	memory   [256]uint8
	address  uint8
	response uint8
}

// Co-processor commands.
const (
	huc3Read      = 0x1 // respond with memory[address], then increment
	huc3Write     = 0x3 // store the argument at memory[address], then increment
	huc3AddrLow   = 0x4
	huc3AddrHigh  = 0x5
	huc3Extended  = 0x6
	huc3LatchTime = 0x0 // extended: copy the clock into memory 0-5
	huc3SetTime   = 0x1 // extended: load the clock from memory 0-5
	huc3Status    = 0x2 // extended: respond with 1
)

func newHuC3(info *Info, clock Clock, ir Infrared, log *slog.Logger) *HuC3 {
	return &HuC3{
		info:    info,
		ir:      ir,
		log:     log,
		romBank: 1,
		clock:   newRTC(clock, huc3DayLimit),
	}
}

// TranslateRead implements Mapper.
func (m *HuC3) TranslateRead(addr uint16) Offset {
	switch {
	case addr < 0x4000:
		return romAt(int(addr) % m.info.ROMBytes)
	case addr < 0x8000:
		return romAt(bankOffset(int(m.romBank), ROMBankSize, addr, m.info.ROMBytes))
	}

	switch {
	case m.ramMapped():
		// Mode 0 has no enable step: RAM reads back as soon as the mode
		// register is cleared, only writes need 0x0A.
		return m.ramOffset(addr)
	case m.mode >= 0x0C && m.mode <= 0x0E:
		return registerOffset
	default:
		return openBusOffset
	}
}

// TranslateWrite implements Mapper.
func (m *HuC3) TranslateWrite(addr uint16) Offset {
	switch m.mode {
	case 0x0A:
		return m.ramOffset(addr)
	case 0x0B, 0x0D, 0x0E:
		return registerOffset
	default:
		return openBusOffset
	}
}

func (m *HuC3) ramMapped() bool {
	return m.mode == 0x00 || m.mode == 0x0A
}

func (m *HuC3) ramOffset(addr uint16) Offset {
	if m.info.RAMBytes == 0 {
		return openBusOffset
	}
	return ramAt(bankOffset(int(m.ramBank), RAMBankSize, addr, m.info.RAMBytes))
}

// ControlWrite implements Mapper.
func (m *HuC3) ControlWrite(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.mode = value & 0x0F
	case addr < 0x4000:
		m.romBank = value & 0x7F
	case addr < 0x6000:
		m.ramBank = value & 0x03
	}
}

// ReadRegister implements Mapper.
func (m *HuC3) ReadRegister(uint16) uint8 {
	switch m.mode {
	case 0x0C:
		return m.response
	case 0x0D:
		return 0xFF
	case 0x0E:
		return irPort(m.ir)
	default:
		return openBus
	}
}

// WriteRegister implements Mapper.
func (m *HuC3) WriteRegister(_ uint16, value uint8) {
	switch m.mode {
	case 0x0B:
		m.command(value)
	case 0x0E:
		m.ir.SetLED(value&0x01 != 0)
	}
	// Semaphore writes start a command that has already completed.
}

// command executes one co-processor command.
func (m *HuC3) command(value uint8) {
	cmd := (value >> 4) & 0x07
	arg := value & 0x0F

	switch cmd {
	case huc3Read:
		m.respond(cmd, m.memory[m.address])
		m.address++
	case huc3Write:
		m.memory[m.address] = arg
		m.address++
		m.respond(cmd, arg)
	case huc3AddrLow:
		m.address = m.address&0xF0 | arg
		m.respond(cmd, arg)
	case huc3AddrHigh:
		m.address = m.address&0x0F | arg<<4
		m.respond(cmd, arg)
	case huc3Extended:
		switch arg {
		case huc3LatchTime:
			minutes, days := m.clock.minuteOfDay()
			m.putNibbles(0, minutes)
			m.putNibbles(3, days)
		case huc3SetTime:
			m.clock.setTime(m.getNibbles(0), m.getNibbles(3))
		case huc3Status:
			m.respond(cmd, 0x1)
			return
		default:
			m.log.Debug("unknown HuC3 extended command", slog.Int("arg", int(arg)))
		}
		m.respond(cmd, arg)
	default:
		m.log.Debug("unknown HuC3 command", slog.Int("value", int(value)))
	}
}

func (m *HuC3) respond(cmd, value uint8) {
	m.response = 0x80 | cmd<<4 | value&0x0F
}

// putNibbles stores a 12-bit value at memory[at:at+3], low nibble first.
func (m *HuC3) putNibbles(at int, v uint16) {
	for i := range 3 {
		m.memory[at+i] = uint8(v>>(4*i)) & 0x0F
	}
}

func (m *HuC3) getNibbles(at int) uint16 {
	var v uint16
	for i := range 3 {
		v |= uint16(m.memory[at+i]&0x0F) << (4 * i)
	}
	return v
}

func (m *HuC3) rtc() *RTC {
	return m.clock
}

// State implements Mapper. Mode is the RAM window mode register;
// RAMEnabled is set whenever RAM is readable, so in modes 0x00 and 0x0A.
// Only mode 0x0A accepts writes.
func (m *HuC3) State() State {
	s := State{
		ROMBank:    int(m.romBank) % m.info.ROMBanks,
		RAMEnabled: m.ramMapped(),
		Mode:       m.mode,
	}
	if m.info.RAMBanks > 0 {
		s.RAMBank = int(m.ramBank) % m.info.RAMBanks
	}
	return s
}
