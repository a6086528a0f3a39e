package cartridge

// openBus is the value read from unmapped or disabled cartridge memory.
const openBus = 0xFF

// Region identifies the storage a translated address lands in.
type Region uint8

// Regions.
const (
	RegionOpenBus  Region = iota // nothing responds, reads 0xFF
	RegionROM                    // Offset.Index is a byte offset into the ROM image
	RegionRAM                    // Offset.Index is a byte offset into cartridge RAM
	RegionRegister               // a memory-mapped peripheral of the mapper answers
)

// Offset is the physical location a CPU address translates to.
type Offset struct {
	Region Region
	Index  int
}

var openBusOffset = Offset{Region: RegionOpenBus}

func romAt(index int) Offset { return Offset{Region: RegionROM, Index: index} }
func ramAt(index int) Offset { return Offset{Region: RegionRAM, Index: index} }

var registerOffset = Offset{Region: RegionRegister}

// State is a read-only view of a mapper's register file.
type State struct {
	ROMBank0    int   // bank visible at 0x0000-0x3FFF
	ROMBank     int   // bank visible at 0x4000-0x7FFF
	RAMBank     int   // bank visible at 0xA000-0xBFFF
	RAMEnabled  bool  // RAM enable latch
	Mode        uint8 // banking mode or register select, variant specific
	Rumble      bool  // rumble motor running
	RTCSelected bool  // the RAM window shows clock registers
}

// Mapper is the bank-switching logic of one MBC variant. Each cartridge owns
// exactly one Mapper; implementations hold no state shared across instances.
//
// Translations never fail: bank numbers are reduced modulo the bank count
// the way missing address lines truncate them on hardware.
type Mapper interface {
	// TranslateRead maps a ROM (0x0000-0x7FFF) or RAM window
	// (0xA000-0xBFFF) address for a read.
	TranslateRead(addr uint16) Offset
	// TranslateWrite maps a RAM window address for a write.
	TranslateWrite(addr uint16) Offset
	// ControlWrite handles a write to the control registers at 0x0000-0x7FFF.
	ControlWrite(addr uint16, value uint8)
	// ReadRegister and WriteRegister serve addresses translated to RegionRegister.
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, value uint8)
	// State returns the register file.
	State() State
}

// noRegisters is embedded by mappers without memory-mapped peripherals.
type noRegisters struct{}

func (noRegisters) ReadRegister(uint16) uint8   { return openBus }
func (noRegisters) WriteRegister(uint16, uint8) {}

// ramNibbles is implemented by mappers whose RAM cells are narrower than a byte.
type ramNibbles interface {
	ramDataMask() uint8
}

// bankOffset returns the byte offset of addr inside bank, for windows of
// size bytes, wrapped to total. size must be a power of two.
func bankOffset(bank, size int, addr uint16, total int) int {
	return (bank*size + int(addr)&(size-1)) % total
}

// ramEnableValue reports whether a write to a RAM enable register enables RAM.
func ramEnableValue(value uint8) bool {
	return value&0x0F == 0x0A
}
