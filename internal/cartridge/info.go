package cartridge

import (
	"errors"
	"fmt"
)

// Bank geometry shared by every variant.
const (
	ROMBankSize = 0x4000 // 16 KiB switchable ROM window
	RAMBankSize = 0x2000 // 8 KiB external RAM window
)

// ErrHeaderTooShort indicates the header block is too small to be decoded.
var ErrHeaderTooShort = errors.New("header too short: must be at least 336 bytes (0x0150)")

// ErrUnsupportedCartridgeType indicates the type byte maps to no known MBC variant.
var ErrUnsupportedCartridgeType = errors.New("unsupported cartridge type")

// ErrInvalidROMSize indicates an unknown ROM size code.
var ErrInvalidROMSize = errors.New("invalid ROM size code")

// ErrInvalidRAMSize indicates an unknown RAM size code.
var ErrInvalidRAMSize = errors.New("invalid RAM size code")

// Variant identifies the memory bank controller chip on a cartridge.
type Variant uint8

// Supported MBC variants. VariantUnknown is only ever reported alongside
// ErrUnsupportedCartridgeType and is never instantiated.
const (
	VariantNone Variant = iota
	VariantMBC1
	VariantMBC2
	VariantMBC3
	VariantMBC5
	VariantMBC6
	VariantMBC7
	VariantMMM01
	VariantTAMA5
	VariantHuC1
	VariantHuC3
	VariantUnknown
)

// String returns the chip name.
func (v Variant) String() string {
	switch v {
	case VariantNone:
		return "None"
	case VariantMBC1:
		return "MBC1"
	case VariantMBC2:
		return "MBC2"
	case VariantMBC3:
		return "MBC3"
	case VariantMBC5:
		return "MBC5"
	case VariantMBC6:
		return "MBC6"
	case VariantMBC7:
		return "MBC7"
	case VariantMMM01:
		return "MMM01"
	case VariantTAMA5:
		return "TAMA5"
	case VariantHuC1:
		return "HuC1"
	case VariantHuC3:
		return "HuC3"
	default:
		return "Unknown"
	}
}

// variantOf maps a cartridge type byte to its controller.
func variantOf(t CartridgeType) Variant {
	switch t {
	case TypeROMOnly, TypeROMRAM, TypeROMRAMBattery:
		return VariantNone
	case TypeMBC1, TypeMBC1RAM, TypeMBC1RAMBattery:
		return VariantMBC1
	case TypeMBC2, TypeMBC2Battery:
		return VariantMBC2
	case TypeMMM01, TypeMMM01RAM, TypeMMM01RAMBattery:
		return VariantMMM01
	case TypeMBC3TimerBattery, TypeMBC3TimerRAMBattery, TypeMBC3, TypeMBC3RAM, TypeMBC3RAMBattery:
		return VariantMBC3
	case TypeMBC5, TypeMBC5RAM, TypeMBC5RAMBattery,
		TypeMBC5Rumble, TypeMBC5RumbleRAM, TypeMBC5RumbleRAMBattery:
		return VariantMBC5
	case TypeMBC6:
		return VariantMBC6
	case TypeMBC7SensorRumbleRAMBattery:
		return VariantMBC7
	case TypeBandaiTAMA5:
		return VariantTAMA5
	case TypeHuC3:
		return VariantHuC3
	case TypeHuC1RAMBattery:
		return VariantHuC1
	default:
		return VariantUnknown
	}
}

// Info is the normalized description of a cartridge derived from its header.
// It is immutable once returned by ParseInfo.
type Info struct {
	TypeCode    byte // 0x0147
	ROMSizeCode byte // 0x0148
	RAMSizeCode byte // 0x0149
	Variant     Variant

	ROMBytes        int // ROMBanks * ROMBankSize
	RAMBytes        int // RAMBanks * RAMBytesPerBank
	ROMBanks        int
	RAMBanks        int
	RAMBytesPerBank int // 0 when there is no RAM
}

// Type returns the declared cartridge type.
func (i *Info) Type() CartridgeType {
	return CartridgeType(i.TypeCode)
}

// HasBattery returns true if RAM (and the clock, if any) survive power off.
func (i *Info) HasBattery() bool {
	return i.Type().HasBattery()
}

// HasRTC returns true if the controller keeps a real-time clock.
func (i *Info) HasRTC() bool {
	return i.Type().HasTimer()
}

// HasRumble returns true if the cartridge drives a rumble motor.
func (i *Info) HasRumble() bool {
	return i.Type().HasRumble()
}

// String implements fmt.Stringer.
func (i *Info) String() string {
	return fmt.Sprintf("%s (%s) | ROM %d KiB (%d banks) | RAM %d bytes (%d x %d)",
		i.Variant, i.Type(), i.ROMBytes/1024, i.ROMBanks, i.RAMBytes, i.RAMBanks, i.RAMBytesPerBank)
}

// romBanksForCode decodes the ROM size byte. Codes 0x00-0x08 follow
// banks = 2^(code+1); 0x52-0x54 are the odd sizes used by a handful of
// 1.1-1.5 MiB cartridges.
func romBanksForCode(code byte) (int, bool) {
	switch {
	case code <= 0x08:
		return 2 << code, true
	case code == 0x52:
		return 72, true
	case code == 0x53:
		return 80, true
	case code == 0x54:
		return 96, true
	default:
		return 0, false
	}
}

// ramGeometryForCode decodes the RAM size byte into (banks, bytes per bank).
func ramGeometryForCode(code byte) (banks, size int, ok bool) {
	switch code {
	case 0x00:
		return 0, 0, true // No RAM
	case 0x01:
		return 1, 2048, true // 2 KiB, listed in early documentation
	case 0x02:
		return 1, RAMBankSize, true // 8 KiB (1 bank)
	case 0x03:
		return 4, RAMBankSize, true // 32 KiB (4 banks of 8 KiB)
	case 0x04:
		return 16, RAMBankSize, true // 128 KiB (16 banks of 8 KiB)
	case 0x05:
		return 8, RAMBankSize, true // 64 KiB (8 banks of 8 KiB)
	default:
		return 0, 0, false
	}
}

// Controllers whose RAM is not described by the header RAM size byte.
const (
	mbc2RAMSize     = 512  // 512 x 4 bits, built into the MBC2
	mbc6RAMBankSize = 4096 // MBC6 maps two 4 KiB windows
	mbc6RAMDefault  = 32 * 1024
	mbc7EEPROMSize  = 256 // 93LC56, 128 x 16 bits
	tama5RAMSize    = 32
)

// ParseInfo decodes the cartridge type, ROM size and RAM size bytes of a
// header block (at least HeaderSize bytes) into an Info. It never returns a
// partial Info: any unsupported or malformed field fails the whole call.
func ParseInfo(header []byte) (*Info, error) {
	if len(header) < HeaderSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrHeaderTooShort, len(header))
	}

	typeCode := header[0x0147]
	romCode := header[0x0148]
	ramCode := header[0x0149]

	variant := variantOf(CartridgeType(typeCode))
	if variant == VariantUnknown {
		return nil, fmt.Errorf("%w: type 0x%02X (%s)",
			ErrUnsupportedCartridgeType, typeCode, CartridgeType(typeCode))
	}

	romBanks, ok := romBanksForCode(romCode)
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X", ErrInvalidROMSize, romCode)
	}

	ramBanks, ramBankSize, ok := ramGeometryForCode(ramCode)
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X", ErrInvalidRAMSize, ramCode)
	}

	// Controllers with built-in or non-standard RAM ignore the size byte.
	switch variant {
	case VariantMBC2:
		ramBanks, ramBankSize = 1, mbc2RAMSize
	case VariantMBC6:
		total := ramBanks * ramBankSize
		if total == 0 {
			total = mbc6RAMDefault
		}
		ramBanks, ramBankSize = total/mbc6RAMBankSize, mbc6RAMBankSize
	case VariantMBC7:
		ramBanks, ramBankSize = 1, mbc7EEPROMSize
	case VariantTAMA5:
		ramBanks, ramBankSize = 1, tama5RAMSize
	}

	return &Info{
		TypeCode:        typeCode,
		ROMSizeCode:     romCode,
		RAMSizeCode:     ramCode,
		Variant:         variant,
		ROMBytes:        romBanks * ROMBankSize,
		RAMBytes:        ramBanks * ramBankSize,
		ROMBanks:        romBanks,
		RAMBanks:        ramBanks,
		RAMBytesPerBank: ramBankSize,
	}, nil
}
