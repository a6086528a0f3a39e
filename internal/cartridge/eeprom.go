package cartridge

// EEPROM port bits.
const (
	eepromDO  = 0x01
	eepromDI  = 0x02
	eepromCLK = 0x40
	eepromCS  = 0x80
)

type eepromState uint8

const (
	eepromIdle    eepromState = iota // waiting for a start bit
	eepromCommand                    // shifting in opcode and address
	eepromRead                       // shifting out a word
	eepromWrite                      // shifting in a word
	eepromDone                       // command finished, waiting for CS low
)

// eeprom is a 93LC56 in 16-bit organisation: 128 words, stored big-endian
// in a 256-byte slice so save files hold the chip image as dumped.
//
// Each command is a start bit, a 2-bit opcode and an 8-bit address whose
// top bit is ignored, clocked in on rising CLK edges while CS is high.
type eeprom struct {
	data []byte

	cs, clk, di, do bool

	state    eepromState
	shift    uint16
	bits     int
	addr     uint8
	all      bool // WRAL in progress
	writable bool
}

func newEEPROM(data []byte) *eeprom {
	return &eeprom{data: data, do: true}
}

func (e *eeprom) word(addr uint8) uint16 {
	i := int(addr&0x7F) * 2
	return uint16(e.data[i])<<8 | uint16(e.data[i+1])
}

func (e *eeprom) setWord(addr uint8, w uint16) {
	i := int(addr&0x7F) * 2
	e.data[i] = uint8(w >> 8)
	e.data[i+1] = uint8(w)
}

func (e *eeprom) fill(w uint16) {
	for a := range uint8(128) {
		e.setWord(a, w)
	}
}

// port returns the value read from the EEPROM register.
func (e *eeprom) port() uint8 {
	var v uint8
	if e.cs {
		v |= eepromCS
	}
	if e.clk {
		v |= eepromCLK
	}
	if e.di {
		v |= eepromDI
	}
	if e.do {
		v |= eepromDO
	}
	return v
}

// write drives the CS, CLK and DI lines.
func (e *eeprom) write(value uint8) {
	cs := value&eepromCS != 0
	clk := value&eepromCLK != 0
	rising := clk && !e.clk

	e.di = value&eepromDI != 0
	e.clk = clk

	if !cs {
		if e.cs {
			e.state = eepromIdle
			e.do = true
		}
		e.cs = false
		return
	}
	e.cs = true

	if rising {
		e.clock(e.di)
	}
}

// clock handles one rising CLK edge with CS high.
func (e *eeprom) clock(di bool) {
	bit := uint16(0)
	if di {
		bit = 1
	}

	switch e.state {
	case eepromIdle:
		if di {
			e.state = eepromCommand
			e.shift, e.bits = 0, 0
		}

	case eepromCommand:
		e.shift = e.shift<<1 | bit
		e.bits++
		if e.bits == 10 {
			e.command(uint8(e.shift>>8), uint8(e.shift))
		}

	case eepromRead:
		e.do = e.shift&0x8000 != 0
		e.shift <<= 1
		e.bits--
		if e.bits == 0 {
			// Sequential read continues with the next word.
			e.addr = (e.addr + 1) & 0x7F
			e.shift, e.bits = e.word(e.addr), 16
		}

	case eepromWrite:
		e.shift = e.shift<<1 | bit
		e.bits++
		if e.bits == 16 {
			if e.writable {
				if e.all {
					e.fill(e.shift)
				} else {
					e.setWord(e.addr, e.shift)
				}
			}
			e.do = true
			e.state = eepromDone
		}
	}
}

// command decodes a complete opcode and address.
func (e *eeprom) command(op, addr uint8) {
	e.addr = addr & 0x7F
	e.state = eepromDone

	switch op & 0x03 {
	case 0x2: // READ
		e.shift, e.bits = e.word(e.addr), 16
		e.do = false // dummy zero before the data
		e.state = eepromRead

	case 0x1: // WRITE
		e.shift, e.bits, e.all = 0, 0, false
		e.state = eepromWrite

	case 0x3: // ERASE
		if e.writable {
			e.setWord(e.addr, 0xFFFF)
		}
		e.do = true

	default:
		switch (addr >> 6) & 0x03 {
		case 0x0: // EWDS
			e.writable = false
		case 0x1: // WRAL
			e.shift, e.bits, e.all = 0, 0, true
			e.state = eepromWrite
		case 0x2: // ERAL
			if e.writable {
				e.fill(0xFFFF)
			}
			e.do = true
		case 0x3: // EWEN
			e.writable = true
		}
	}
}
