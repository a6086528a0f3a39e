// Package cartridge implements Game Boy cartridge header decoding and the
// Memory Bank Controllers (MBCs) that map ROM, RAM and on-cartridge
// peripherals into the CPU address space.
package cartridge

import (
	"bytes"
	"fmt"
	"strings"
)

// HeaderSize is the number of leading ROM bytes that must be present for the
// header (0x0100-0x014F) to be decoded.
const HeaderSize = 0x0150

// nintendoLogo is the boot logo bitmap every licensed cartridge carries at 0x0104.
var nintendoLogo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B,
	0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E,
	0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC,
	0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

// Header represents the Game Boy cartridge header (0x0100-0x014F).
type Header struct {
	// Entry point (0x0100-0x0103)
	EntryPoint [4]byte

	// Nintendo logo (0x0104-0x0133) - 48 bytes
	NintendoLogo [48]byte

	// Title (0x0134-0x0143) - 16 bytes
	// In newer cartridges, bytes 0x013F-0x0142 are manufacturer code
	// and 0x0143 is CGB flag
	RawTitle [16]byte

	// Manufacturer code (0x013F-0x0142) - overlaps with the title
	ManufacturerCode [4]byte

	// CGB flag (0x0143)
	// 0x80 = Game supports CGB functions, but works on old Game Boy
	// 0xC0 = Game works on CGB only
	CGBFlag byte

	// New licensee code (0x0144-0x0145)
	NewLicenseeCode [2]byte

	// SGB flag (0x0146), 0x03 = Game supports SGB functions
	SGBFlag byte

	// Cartridge type (0x0147)
	CartridgeType byte

	// ROM size code (0x0148)
	ROMSize byte

	// RAM size code (0x0149)
	RAMSize byte

	// Destination code (0x014A), 0x00 = Japan, 0x01 = Overseas
	DestinationCode byte

	// Old licensee code (0x014B), 0x33 = check new licensee code
	OldLicenseeCode byte

	// Mask ROM version (0x014C)
	MaskROMVersion byte

	// Header checksum (0x014D)
	HeaderChecksum byte

	// Global checksum (0x014E-0x014F), big endian
	GlobalChecksum [2]byte
}

// CartridgeType represents the hardware present on a cartridge, as declared
// by the type byte at 0x0147.
//
//nolint:revive // CartridgeType is intentionally explicit for clarity
type CartridgeType byte

// Cartridge types as defined in the header at 0x0147.
const (
	TypeROMOnly                    CartridgeType = 0x00
	TypeMBC1                       CartridgeType = 0x01
	TypeMBC1RAM                    CartridgeType = 0x02
	TypeMBC1RAMBattery             CartridgeType = 0x03
	TypeMBC2                       CartridgeType = 0x05
	TypeMBC2Battery                CartridgeType = 0x06
	TypeROMRAM                     CartridgeType = 0x08
	TypeROMRAMBattery              CartridgeType = 0x09
	TypeMMM01                      CartridgeType = 0x0B
	TypeMMM01RAM                   CartridgeType = 0x0C
	TypeMMM01RAMBattery            CartridgeType = 0x0D
	TypeMBC3TimerBattery           CartridgeType = 0x0F
	TypeMBC3TimerRAMBattery        CartridgeType = 0x10
	TypeMBC3                       CartridgeType = 0x11
	TypeMBC3RAM                    CartridgeType = 0x12
	TypeMBC3RAMBattery             CartridgeType = 0x13
	TypeMBC5                       CartridgeType = 0x19
	TypeMBC5RAM                    CartridgeType = 0x1A
	TypeMBC5RAMBattery             CartridgeType = 0x1B
	TypeMBC5Rumble                 CartridgeType = 0x1C
	TypeMBC5RumbleRAM              CartridgeType = 0x1D
	TypeMBC5RumbleRAMBattery       CartridgeType = 0x1E
	TypeMBC6                       CartridgeType = 0x20
	TypeMBC7SensorRumbleRAMBattery CartridgeType = 0x22
	TypePocketCamera               CartridgeType = 0xFC
	TypeBandaiTAMA5                CartridgeType = 0xFD
	TypeHuC3                       CartridgeType = 0xFE
	TypeHuC1RAMBattery             CartridgeType = 0xFF
)

// String returns a human-readable name for the cartridge type.
func (t CartridgeType) String() string {
	switch t {
	case TypeROMOnly:
		return "ROM ONLY"
	case TypeMBC1:
		return "MBC1"
	case TypeMBC1RAM:
		return "MBC1+RAM"
	case TypeMBC1RAMBattery:
		return "MBC1+RAM+BATTERY"
	case TypeMBC2:
		return "MBC2"
	case TypeMBC2Battery:
		return "MBC2+BATTERY"
	case TypeROMRAM:
		return "ROM+RAM"
	case TypeROMRAMBattery:
		return "ROM+RAM+BATTERY"
	case TypeMMM01:
		return "MMM01"
	case TypeMMM01RAM:
		return "MMM01+RAM"
	case TypeMMM01RAMBattery:
		return "MMM01+RAM+BATTERY"
	case TypeMBC3TimerBattery:
		return "MBC3+TIMER+BATTERY"
	case TypeMBC3TimerRAMBattery:
		return "MBC3+TIMER+RAM+BATTERY"
	case TypeMBC3:
		return "MBC3"
	case TypeMBC3RAM:
		return "MBC3+RAM"
	case TypeMBC3RAMBattery:
		return "MBC3+RAM+BATTERY"
	case TypeMBC5:
		return "MBC5"
	case TypeMBC5RAM:
		return "MBC5+RAM"
	case TypeMBC5RAMBattery:
		return "MBC5+RAM+BATTERY"
	case TypeMBC5Rumble:
		return "MBC5+RUMBLE"
	case TypeMBC5RumbleRAM:
		return "MBC5+RUMBLE+RAM"
	case TypeMBC5RumbleRAMBattery:
		return "MBC5+RUMBLE+RAM+BATTERY"
	case TypeMBC6:
		return "MBC6"
	case TypeMBC7SensorRumbleRAMBattery:
		return "MBC7+SENSOR+RUMBLE+RAM+BATTERY"
	case TypePocketCamera:
		return "POCKET CAMERA"
	case TypeBandaiTAMA5:
		return "BANDAI TAMA5"
	case TypeHuC3:
		return "HuC3"
	case TypeHuC1RAMBattery:
		return "HuC1+RAM+BATTERY"
	default:
		return fmt.Sprintf("UNKNOWN (0x%02X)", byte(t))
	}
}

// HasBattery returns true if the cartridge type includes a battery for save data.
func (t CartridgeType) HasBattery() bool {
	switch t {
	case TypeMBC1RAMBattery,
		TypeMBC2Battery,
		TypeROMRAMBattery,
		TypeMMM01RAMBattery,
		TypeMBC3TimerBattery, TypeMBC3TimerRAMBattery, TypeMBC3RAMBattery,
		TypeMBC5RAMBattery, TypeMBC5RumbleRAMBattery,
		TypeMBC6,
		TypeMBC7SensorRumbleRAMBattery,
		TypeBandaiTAMA5,
		TypeHuC3,
		TypeHuC1RAMBattery:
		return true
	default:
		return false
	}
}

// HasTimer returns true if the cartridge type carries a real-time clock.
func (t CartridgeType) HasTimer() bool {
	switch t {
	case TypeMBC3TimerBattery, TypeMBC3TimerRAMBattery, TypeBandaiTAMA5, TypeHuC3:
		return true
	default:
		return false
	}
}

// HasRumble returns true if the cartridge type carries a rumble motor.
func (t CartridgeType) HasRumble() bool {
	switch t {
	case TypeMBC5Rumble, TypeMBC5RumbleRAM, TypeMBC5RumbleRAMBattery,
		TypeMBC7SensorRumbleRAMBattery:
		return true
	default:
		return false
	}
}

// ParseHeader parses the cartridge header from ROM data.
// Checksums are decoded but not enforced; use VerifyHeaderChecksum and
// VerifyGlobalChecksum to validate them.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < HeaderSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrHeaderTooShort, len(rom))
	}

	h := &Header{}

	copy(h.EntryPoint[:], rom[0x0100:0x0104])
	copy(h.NintendoLogo[:], rom[0x0104:0x0134])
	copy(h.RawTitle[:], rom[0x0134:0x0144])
	copy(h.ManufacturerCode[:], rom[0x013F:0x0143])
	h.CGBFlag = rom[0x0143]
	copy(h.NewLicenseeCode[:], rom[0x0144:0x0146])
	h.SGBFlag = rom[0x0146]
	h.CartridgeType = rom[0x0147]
	h.ROMSize = rom[0x0148]
	h.RAMSize = rom[0x0149]
	h.DestinationCode = rom[0x014A]
	h.OldLicenseeCode = rom[0x014B]
	h.MaskROMVersion = rom[0x014C]
	h.HeaderChecksum = rom[0x014D]
	copy(h.GlobalChecksum[:], rom[0x014E:0x0150])

	return h, nil
}

// Type returns the cartridge type byte as a CartridgeType.
func (h *Header) Type() CartridgeType {
	return CartridgeType(h.CartridgeType)
}

// Title returns the cartridge title, trimmed and made safe for use in file
// names. CGB cartridges use a 15 byte title, or 11 bytes when the
// manufacturer code is present.
func (h *Header) Title() string {
	titleLen := len(h.RawTitle)
	if h.CGBFlag >= 0x80 {
		if h.RawTitle[0x0E] != 0x00 {
			titleLen = 11
		} else {
			titleLen = 15
		}
	}

	var b strings.Builder
	for _, c := range h.RawTitle[:titleLen] {
		switch {
		case c == 0x00:
			b.WriteByte(' ')
		case c < 0x20 || c > 0x7A:
			b.WriteByte('_')
		case strings.IndexByte(`"*/:<>?\`, c) >= 0:
			b.WriteByte('_')
		default:
			b.WriteByte(c)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// LogoValid reports whether the boot logo matches the one the boot ROM checks.
func (h *Header) LogoValid() bool {
	return bytes.Equal(h.NintendoLogo[:], nintendoLogo[:])
}

// Destination returns the destination as specified in the cartridge header.
func (h *Header) Destination() string {
	switch h.DestinationCode {
	case 0:
		return "Japanese"
	case 1:
		return "Non-Japanese"
	default:
		return "Unknown"
	}
}

// VerifyHeaderChecksum verifies the header checksum.
// The checksum is calculated over bytes 0x0134-0x014C.
// Formula: checksum = 0; for each byte: checksum = checksum - byte - 1.
func (h *Header) VerifyHeaderChecksum(rom []byte) bool {
	if len(rom) < HeaderSize {
		return false
	}
	checksum := byte(0)
	for addr := 0x0134; addr <= 0x014C; addr++ {
		checksum = checksum - rom[addr] - 1
	}
	return checksum == h.HeaderChecksum
}

// VerifyGlobalChecksum verifies the global checksum.
// The global checksum is a 16-bit checksum of the entire ROM excluding the checksum bytes.
// Note: Many commercial games have incorrect global checksums, so this is often not enforced.
func (h *Header) VerifyGlobalChecksum(rom []byte) bool {
	sum := uint16(0)
	for i, b := range rom {
		// Skip the global checksum bytes at 0x014E-0x014F
		if i == 0x014E || i == 0x014F {
			continue
		}
		sum += uint16(b)
	}

	expected := (uint16(h.GlobalChecksum[0]) << 8) | uint16(h.GlobalChecksum[1])
	return sum == expected
}
