package cartridge

// ROMOnly is a cartridge without a memory bank controller.
// Up to 32 KiB of ROM is wired straight to 0x0000-0x7FFF; RAM, when the
// header declares it, is wired straight to 0xA000-0xBFFF and always enabled.
type ROMOnly struct {
	noRegisters
	info *Info
}

func newROMOnly(info *Info) *ROMOnly {
	return &ROMOnly{info: info}
}

// TranslateRead implements Mapper.
func (m *ROMOnly) TranslateRead(addr uint16) Offset {
	if addr < 0x8000 {
		return romAt(int(addr) % m.info.ROMBytes)
	}
	return m.TranslateWrite(addr)
}

// TranslateWrite implements Mapper.
func (m *ROMOnly) TranslateWrite(addr uint16) Offset {
	if m.info.RAMBytes == 0 {
		return openBusOffset
	}
	return ramAt(int(addr-0xA000) % m.info.RAMBytes)
}

// ControlWrite implements Mapper. There are no registers; writes to ROM are ignored.
func (m *ROMOnly) ControlWrite(uint16, uint8) {}

// State implements Mapper.
func (m *ROMOnly) State() State {
	return State{ROMBank: 1, RAMEnabled: m.info.RAMBytes > 0}
}
