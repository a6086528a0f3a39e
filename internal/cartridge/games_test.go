package cartridge

import "testing"

// putGame writes a titled header with a valid logo at the start of bank.
func putGame(rom []byte, bank int, title string) {
	base := bank * ROMBankSize
	copy(rom[base+0x0104:], nintendoLogo[:])
	copy(rom[base+0x0134:], title)
}

func TestGames(t *testing.T) {
	mbc1m := newBankedROM(0x01, 0x05, 0x00) // 1 MiB MBC1
	for game, title := range []string{"MENU", "ALPHA", "BETA", "GAMMA"} {
		putGame(mbc1m, game*16, title)
	}

	mmm01 := newBankedROM(0x0B, 0x02, 0x00) // 128 KiB MMM01
	putGame(mmm01, 0, "FIRST")
	putGame(mmm01, 4, "SECOND")
	putGame(mmm01, 6, "MENU")
	copy(mmm01[2*ROMBankSize+0x0104:], []byte{0xCE, 0xED}) // partial logo

	single := newBankedROM(0x01, 0x05, 0x00)
	putGame(single, 0, "SOLO")

	tests := []struct {
		name      string
		rom       []byte
		wantBanks []int
		wantTitle []string
	}{
		{"MBC1M", mbc1m, []int{0, 16, 32, 48}, []string{"MENU", "ALPHA", "BETA", "GAMMA"}},
		{"MMM01", mmm01, []int{0, 4, 6}, []string{"FIRST", "SECOND", "MENU"}},
		{"single game", single, []int{0}, []string{"SOLO"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseInfo(tt.rom)
			if err != nil {
				t.Fatalf("ParseInfo() error = %v", err)
			}

			games := Games(tt.rom, info)
			if len(games) != len(tt.wantBanks) {
				t.Fatalf("Games() found %d games, want %d", len(games), len(tt.wantBanks))
			}
			for i, g := range games {
				if g.Bank != tt.wantBanks[i] {
					t.Errorf("game %d bank = %d, want %d", i, g.Bank, tt.wantBanks[i])
				}
				if got := g.Header.Title(); got != tt.wantTitle[i] {
					t.Errorf("game %d title = %q, want %q", i, got, tt.wantTitle[i])
				}
			}
		})
	}
}
