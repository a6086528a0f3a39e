package cartridge

// MBC7 adds a two-axis accelerometer and a 93LC56 serial EEPROM.
//
// Memory Map:
// - 0x0000-0x3FFF: ROM Bank 00 (fixed)
// - 0x4000-0x7FFF: ROM Bank 00-7F (switchable)
// - 0xA000-0xAFFF: register file, selected by address bits 4-7
// - 0xB000-0xBFFF: unmapped
//
// Control Registers (write-only):
// - 0x0000-0x1FFF: RAM Enable 1 (0x0A enables)
// - 0x2000-0x3FFF: ROM Bank Number (7 bits)
// - 0x4000-0x5FFF: RAM Enable 2 (0x40 enables)
//
// Register file (both enables required):
// - Ax0x: write 0x55 to erase the latched sensor values
// - Ax1x: write 0xAA to latch the sensor, once erased
// - Ax2x/Ax3x: X low/high, Ax4x/Ax5x: Y low/high
// - Ax6x: always 0x00, Ax7x: always 0xFF
// - Ax8x: EEPROM port (bit 7 CS, bit 6 CLK, bit 1 DI, bit 0 DO)
type MBC7 struct {
	info *Info
	tilt TiltSensor

	enable1 bool
	enable2 bool
	romBank uint8

	x, y    uint16
	latched bool

	eeprom *eeprom
}

// Accelerometer scale.
const (
	mbc7TiltCenter = 0x81D0
	mbc7TiltPerG   = 0x70
	mbc7TiltErased = 0x8000
)

func newMBC7(info *Info, ram []byte, tilt TiltSensor) *MBC7 {
	return &MBC7{
		info:    info,
		tilt:    tilt,
		romBank: 1,
		x:       mbc7TiltErased,
		y:       mbc7TiltErased,
		eeprom:  newEEPROM(ram),
	}
}

// TranslateRead implements Mapper.
func (m *MBC7) TranslateRead(addr uint16) Offset {
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
func (m *MBC7) TranslateWrite(addr uint16) Offset {
	if !m.enable1 || !m.enable2 || addr >= 0xB000 {
		return openBusOffset
	}
	return registerOffset
}

// ControlWrite implements Mapper.
func (m *MBC7) ControlWrite(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.enable1 = value == 0x0A
		if !m.enable1 {
			m.enable2 = false
		}
	case addr < 0x4000:
		m.romBank = value & 0x7F
	case addr < 0x6000:
		m.enable2 = m.enable1 && value == 0x40
	}
}

// ReadRegister implements Mapper.
func (m *MBC7) ReadRegister(addr uint16) uint8 {
	switch (addr >> 4) & 0x0F {
	case 0x2:
		return uint8(m.x)
	case 0x3:
		return uint8(m.x >> 8)
	case 0x4:
		return uint8(m.y)
	case 0x5:
		return uint8(m.y >> 8)
	case 0x6:
		return 0x00
	case 0x8:
		return m.eeprom.port()
	default:
		return openBus
	}
}

// WriteRegister implements Mapper.
func (m *MBC7) WriteRegister(addr uint16, value uint8) {
	switch (addr >> 4) & 0x0F {
	case 0x0:
		if value == 0x55 {
			m.x, m.y = mbc7TiltErased, mbc7TiltErased
			m.latched = false
		}
	case 0x1:
		if value == 0xAA && !m.latched {
			x, y := m.tilt.Tilt()
			m.x = tiltValue(x)
			m.y = tiltValue(y)
			m.latched = true
		}
	case 0x8:
		m.eeprom.write(value)
	}
}

// tiltValue converts an acceleration in g to a sensor reading.
func tiltValue(g float64) uint16 {
	v := mbc7TiltCenter + int(g*mbc7TiltPerG)
	return uint16(max(0, min(0xFFFF, v)))
}

// State implements Mapper.
func (m *MBC7) State() State {
	return State{
		ROMBank:    int(m.romBank) % m.info.ROMBanks,
		RAMEnabled: m.enable1 && m.enable2,
	}
}
