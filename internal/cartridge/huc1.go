package cartridge

// HuC1 is Hudson's MBC1 work-alike with an infrared transceiver in place of
// the banking mode register.
//
// Control Registers (write-only):
//   - 0x0000-0x1FFF: 0x0E maps the IR port at 0xA000-0xBFFF, 0x0A maps RAM,
//     anything else unmaps both
//   - 0x2000-0x3FFF: ROM Bank Number (6 bits, 0 reads as 1)
//   - 0x4000-0x5FFF: RAM Bank Number (2 bits)
//   - 0x6000-0x7FFF: unused
//
// The IR port reads 0xC1 while light is received and 0xC0 otherwise; bit 0
// of a write drives the LED.
type HuC1 struct {
	info *Info
	ir   Infrared

	mode    uint8
	romBank uint8
	ramBank uint8
}

func newHuC1(info *Info, ir Infrared) *HuC1 {
	return &HuC1{info: info, ir: ir, romBank: 1}
}

// TranslateRead implements Mapper.
func (m *HuC1) TranslateRead(addr uint16) Offset {
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
func (m *HuC1) TranslateWrite(addr uint16) Offset {
	switch {
	case m.mode == 0x0E:
		return registerOffset
	case m.mode == 0x0A && m.info.RAMBytes > 0:
		return ramAt(bankOffset(int(m.ramBank), RAMBankSize, addr, m.info.RAMBytes))
	default:
		return openBusOffset
	}
}

// ControlWrite implements Mapper.
func (m *HuC1) ControlWrite(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.mode = value & 0x0F
	case addr < 0x4000:
		m.romBank = value & 0x3F
		if m.romBank == 0 {
			m.romBank = 1
		}
	case addr < 0x6000:
		m.ramBank = value & 0x03
	}
}

// ReadRegister implements Mapper.
func (m *HuC1) ReadRegister(uint16) uint8 {
	return irPort(m.ir)
}

// WriteRegister implements Mapper.
func (m *HuC1) WriteRegister(_ uint16, value uint8) {
	m.ir.SetLED(value&0x01 != 0)
}

// irPort reads a Hudson IR port.
func irPort(ir Infrared) uint8 {
	if ir.Light() {
		return 0xC1
	}
	return 0xC0
}

// State implements Mapper. Mode is the 0x0000-0x1FFF register.
func (m *HuC1) State() State {
	s := State{
		ROMBank:    int(m.romBank) % m.info.ROMBanks,
		RAMEnabled: m.mode == 0x0A,
		Mode:       m.mode,
	}
	if m.info.RAMBanks > 0 {
		s.RAMBank = int(m.ramBank) % m.info.RAMBanks
	}
	return s
}
