// Package memory implements the Game Boy memory bus in front of a cartridge.
//
// The cartridge owns 0x0000-0x7FFF and 0xA000-0xBFFF. Everything else is
// plain storage here, enough for a host to poke at a cartridge the way the
// CPU would, including OAM DMA reading through the mapper.
package memory

import "github.com/richardwooding/gbcart/internal/cartridge"

// dmaLength is the number of bytes copied by one OAM DMA transfer.
const dmaLength = 160

// Bus represents the Game Boy memory bus.
type Bus struct {
	cartridge cartridge.Cartridge

	vram [0x2000]uint8 // 8000-9FFF: Video RAM
	wram [0x2000]uint8 // C000-DFFF: Work RAM
	oam  [0xA0]uint8   // FE00-FE9F: Object Attribute Memory
	io   [0x80]uint8   // FF00-FF7F: I/O Registers
	hram [0x7F]uint8   // FF80-FFFE: High RAM
	ie   uint8         // FFFF: Interrupt Enable
}

// NewBus creates a memory bus with cart attached. cart may be nil, in
// which case cartridge space reads as open bus.
func NewBus(cart cartridge.Cartridge) *Bus {
	return &Bus{cartridge: cart}
}

// Read reads a byte from the memory bus.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr >= 0xFE00 && addr < 0xFEA0:
		return b.oam[addr-0xFE00]
	case addr >= 0xFEA0 && addr < 0xFF00:
		return 0xFF
	case addr >= 0xFF00 && addr < 0xFF80:
		return b.io[addr-0xFF00]
	case addr >= 0xFF80 && addr < 0xFFFF:
		return b.hram[addr-0xFF80]
	case addr == 0xFFFF:
		return b.ie
	default:
		return b.read(addr)
	}
}

// read serves the part of the map that DMA can also see.
func (b *Bus) read(addr uint16) uint8 {
	switch {
	// ROM (0000-7FFF) and external RAM (A000-BFFF)
	case addr < 0x8000, addr >= 0xA000 && addr < 0xC000:
		if b.cartridge != nil {
			return b.cartridge.Read(addr)
		}
		return 0xFF

	case addr < 0xA000:
		return b.vram[addr-0x8000]

	case addr < 0xE000:
		return b.wram[addr-0xC000]

	// Echo RAM (E000-FDFF) mirrors C000-DDFF
	case addr < 0xFE00:
		return b.wram[addr-0xE000]

	default:
		return 0xFF
	}
}

// Write writes a byte to the memory bus.
func (b *Bus) Write(addr uint16, value uint8) {
	switch {
	// MBC control (0000-7FFF) and external RAM (A000-BFFF)
	case addr < 0x8000, addr >= 0xA000 && addr < 0xC000:
		if b.cartridge != nil {
			b.cartridge.Write(addr, value)
		}

	case addr < 0xA000:
		b.vram[addr-0x8000] = value

	case addr < 0xE000:
		b.wram[addr-0xC000] = value

	case addr < 0xFE00:
		b.wram[addr-0xE000] = value

	case addr < 0xFEA0:
		b.oam[addr-0xFE00] = value

	case addr < 0xFF00:
		// Not usable

	case addr == 0xFF46:
		b.io[addr-0xFF00] = value
		b.dma(value)

	case addr < 0xFF80:
		b.io[addr-0xFF00] = value

	case addr < 0xFFFF:
		b.hram[addr-0xFF80] = value

	default:
		b.ie = value
	}
}

// dma copies 160 bytes from XX00 into OAM. There is no CPU on this bus to
// lock out, so the transfer completes within the register write. Sources
// above 0xF1 would copy from OAM and I/O and are ignored.
func (b *Bus) dma(page uint8) {
	if page > 0xF1 {
		return
	}
	source := uint16(page) << 8
	for i := range uint16(dmaLength) {
		b.oam[i] = b.read(source + i)
	}
}
