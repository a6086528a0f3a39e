package cartridge

// Game is one program found in a ROM image.
type Game struct {
	Bank   int // first 16 KiB bank of the game
	Header *Header
}

// Games lists the programs in a ROM image. MBC1M images hold a game every
// 256 KiB; MMM01 images hold games on 32 KiB boundaries with the menu in
// the last 32 KiB. Only offsets carrying a valid boot logo count. Any
// other image lists its own header.
func Games(rom []byte, info *Info) []Game {
	stride := 0
	switch {
	case info.Variant == VariantMMM01:
		stride = 2
	case info.Variant == VariantMBC1 && isMulticart(rom):
		stride = 16
	}

	if stride == 0 {
		h, err := ParseHeader(rom)
		if err != nil {
			return nil
		}
		return []Game{{Bank: 0, Header: h}}
	}

	var games []Game
	for bank := 0; (bank+1)*ROMBankSize <= len(rom); bank += stride {
		h, err := ParseHeader(rom[bank*ROMBankSize:])
		if err != nil || !h.LogoValid() {
			continue
		}
		games = append(games, Game{Bank: bank, Header: h})
	}
	return games
}
