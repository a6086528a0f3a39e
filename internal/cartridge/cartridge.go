package cartridge

import (
	"errors"
	"fmt"
	"log/slog"
)

// Cartridge represents a Game Boy cartridge with ROM and optional RAM.
type Cartridge interface {
	// Read reads a byte from the cartridge address space (0x0000-0x7FFF for ROM, 0xA000-0xBFFF for RAM)
	Read(addr uint16) uint8

	// Write writes a byte to the cartridge address space (MBC control or RAM)
	Write(addr uint16, value uint8)

	// Header returns the parsed cartridge header
	Header() *Header

	// Info returns the normalized cartridge description
	Info() *Info

	// State returns the current bank selection
	State() State

	// HasBattery returns true if the cartridge has battery-backed RAM
	HasBattery() bool

	// GetRAM returns a copy of the cartridge RAM for saving
	GetRAM() []byte

	// SetRAM loads save data into the cartridge RAM
	SetRAM(data []byte) error

	// RTC returns the real-time clock, or nil if the cartridge has none
	RTC() *RTC
}

// ErrROMSizeMismatch indicates the ROM image is smaller than the header declares.
var ErrROMSizeMismatch = errors.New("ROM size does not match header")

// ErrROMTooLarge indicates the ROM size exceeds the maximum allowed size.
var ErrROMTooLarge = errors.New("ROM size exceeds maximum allowed size of 8 MiB")

// ErrRAMSizeMismatch indicates save data does not match the cartridge RAM size.
var ErrRAMSizeMismatch = errors.New("RAM size does not match cartridge")

// maxROMSize is the largest ROM any supported controller can address (8 MiB).
const maxROMSize = 8 * 1024 * 1024

// New creates a new cartridge from ROM data.
// It detects the controller from the header and instantiates the matching
// Mapper. The ROM slice is used as backing storage and is not copied.
func New(rom []byte, cfg Config) (Cartridge, error) {
	cfg = cfg.withDefaults()

	if len(rom) > maxROMSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrROMTooLarge, len(rom))
	}

	header, err := ParseHeader(rom)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	info, err := ParseInfo(rom)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cartridge info: %w", err)
	}

	// Verify ROM size matches header
	if len(rom) < info.ROMBytes {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrROMSizeMismatch, info.ROMBytes, len(rom))
	}

	log := cfg.Logger.With(slog.String("title", header.Title()), slog.String("mbc", info.Variant.String()))
	if !header.VerifyHeaderChecksum(rom) {
		log.Warn("header checksum mismatch", slog.Int("declared", int(header.HeaderChecksum)))
	}
	if !header.LogoValid() {
		log.Warn("boot logo does not match")
	}

	c := &cart{
		header: header,
		info:   info,
		rom:    rom[:info.ROMBytes],
		ram:    make([]byte, info.RAMBytes),
	}
	c.mapper = newMapper(c, cfg, log)
	c.ramMask = 0xFF
	if n, ok := c.mapper.(ramNibbles); ok {
		c.ramMask = n.ramDataMask()
	}

	log.Info("cartridge loaded",
		slog.String("type", info.Type().String()),
		slog.Int("rom_banks", info.ROMBanks),
		slog.Int("ram_bytes", info.RAMBytes))

	return c, nil
}

// newMapper instantiates the controller selected by the header.
func newMapper(c *cart, cfg Config, log *slog.Logger) Mapper {
	switch c.info.Variant {
	case VariantMBC1:
		return newMBC1(c.info, c.rom, cfg.Multicart, log)
	case VariantMBC2:
		return newMBC2(c.info)
	case VariantMBC3:
		return newMBC3(c.info, cfg.Clock)
	case VariantMBC5:
		return newMBC5(c.info, cfg.Rumble)
	case VariantMBC6:
		return newMBC6(c.info, log)
	case VariantMBC7:
		return newMBC7(c.info, c.ram, cfg.Tilt)
	case VariantMMM01:
		return newMMM01(c.info)
	case VariantTAMA5:
		return newTAMA5(c.info, c.ram, cfg.Clock)
	case VariantHuC1:
		return newHuC1(c.info, cfg.Infrared)
	case VariantHuC3:
		return newHuC3(c.info, cfg.Clock, cfg.Infrared, log)
	default:
		return newROMOnly(c.info)
	}
}

// cart routes bus accesses through a Mapper into ROM and RAM storage.
type cart struct {
	header *Header
	info   *Info
	rom    []byte
	ram    []byte

	mapper  Mapper
	ramMask uint8 // data lines wired to RAM
}

// Read reads a byte from the cartridge.
func (c *cart) Read(addr uint16) uint8 {
	if addr >= 0x8000 && (addr < 0xA000 || addr >= 0xC000) {
		return openBus
	}

	off := c.mapper.TranslateRead(addr)
	switch off.Region {
	case RegionROM:
		return c.rom[off.Index]
	case RegionRAM:
		// Unconnected data lines float high.
		return c.ram[off.Index] | ^c.ramMask
	case RegionRegister:
		return c.mapper.ReadRegister(addr)
	default:
		return openBus
	}
}

// Write writes a byte to the cartridge (MBC control registers or RAM).
func (c *cart) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x8000:
		c.mapper.ControlWrite(addr, value)

	case addr >= 0xA000 && addr < 0xC000:
		off := c.mapper.TranslateWrite(addr)
		switch off.Region {
		case RegionRAM:
			c.ram[off.Index] = value & c.ramMask
		case RegionRegister:
			c.mapper.WriteRegister(addr, value)
		}
	}
}

// Header returns the cartridge header.
func (c *cart) Header() *Header {
	return c.header
}

// Info returns the normalized cartridge description.
func (c *cart) Info() *Info {
	return c.info
}

// State returns the current bank selection.
func (c *cart) State() State {
	return c.mapper.State()
}

// HasBattery returns true if the cartridge has battery-backed RAM.
func (c *cart) HasBattery() bool {
	return c.info.HasBattery()
}

// GetRAM returns the cartridge RAM for saving.
func (c *cart) GetRAM() []byte {
	if len(c.ram) == 0 {
		return nil
	}
	// Return a copy to prevent external modification
	ramCopy := make([]byte, len(c.ram))
	copy(ramCopy, c.ram)
	return ramCopy
}

// SetRAM loads save data into the cartridge RAM.
func (c *cart) SetRAM(data []byte) error {
	if len(data) != len(c.ram) {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrRAMSizeMismatch, len(c.ram), len(data))
	}
	for i, b := range data {
		c.ram[i] = b & c.ramMask
	}
	return nil
}

// RTC returns the cartridge clock, or nil.
func (c *cart) RTC() *RTC {
	if r, ok := c.mapper.(interface{ rtc() *RTC }); ok {
		return r.rtc()
	}
	return nil
}
