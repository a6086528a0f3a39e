// Package main provides the gbcart CLI application.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/cespare/xxhash"
	"github.com/richardwooding/gbcart/internal/cartridge"
	"github.com/richardwooding/gbcart/internal/memory"
	"github.com/richardwooding/gbcart/internal/romfile"
	"github.com/richardwooding/gbcart/internal/save"
)

var (
	// ErrInvalidWrite indicates a malformed --write argument.
	ErrInvalidWrite = errors.New("write must look like ADDR=VALUE")

	// ErrNoBattery indicates a save operation on a cartridge that keeps nothing.
	ErrNoBattery = errors.New("cartridge has no battery")

	// ErrSaveExists indicates save init would overwrite an existing save.
	ErrSaveExists = errors.New("save already exists")

	// ErrFileExists indicates save export would overwrite an existing file.
	ErrFileExists = errors.New("file already exists")

	// ErrInvalidScale indicates the scale factor is out of valid range.
	ErrInvalidScale = errors.New("scale must be between 1 and 10")
)

// Globals are flags shared by every command.
type Globals struct {
	LogLevel string `help:"Log level." enum:"debug,info,warn,error" default:"warn" env:"GBCART_LOG_LEVEL"`
	SaveDir  string `help:"Directory holding battery saves." type:"path" default:"saves" env:"GBCART_SAVE_DIR"`
}

// logger builds the stderr logger for the configured level.
func (g *Globals) logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.LogLevel)); err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// CLI represents the command-line interface structure.
type CLI struct {
	Globals

	Info    InfoCmd    `cmd:"" help:"Display cartridge information."`
	Peek    PeekCmd    `cmd:"" help:"Write MBC registers and dump memory through the bus."`
	Save    SaveCmd    `cmd:"" help:"Inspect or create battery saves."`
	Monitor MonitorCmd `cmd:"" help:"Open a window showing live MBC state."`
}

// CartFlags selects and configures the cartridge a command works on.
type CartFlags struct {
	ROM       string `arg:"" type:"existingfile" help:"Path to ROM file (.gb, .gbc, .zip, .gz, .7z)."`
	Multicart string `help:"MBC1 multicart wiring (auto detects repeated boot logos)." enum:"off,auto,on" default:"off"`
}

func (f *CartFlags) multicart() cartridge.MulticartMode {
	switch f.Multicart {
	case "off":
		return cartridge.MulticartOff
	case "on":
		return cartridge.MulticartOn
	default:
		return cartridge.MulticartAuto
	}
}

// load reads the ROM and builds its cartridge. cfg supplies peripherals;
// the logger and multicart mode are filled in from the flags.
func (f *CartFlags) load(g *Globals, cfg cartridge.Config) (cartridge.Cartridge, []byte, error) {
	rom, err := romfile.Load(f.ROM)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read ROM: %w", err)
	}

	cfg.Logger = g.logger()
	cfg.Multicart = f.multicart()
	cart, err := cartridge.New(rom, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load cartridge: %w", err)
	}
	return cart, rom, nil
}

// InfoCmd displays cartridge header information.
type InfoCmd struct {
	CartFlags
	Banks  bool `help:"Print an xxhash fingerprint of every ROM bank."`
	Titles bool `help:"List the games of MBC1M and MMM01 multi-game images."`
}

// Run executes the info command.
func (c *InfoCmd) Run(g *Globals) error {
	cart, rom, err := c.load(g, cartridge.Config{})
	if err != nil {
		return err
	}

	header := cart.Header()
	info := cart.Info()
	fmt.Printf("ROM Information:\n")
	fmt.Printf("  Title:           %s\n", header.Title())
	fmt.Printf("  Cartridge Type:  %s (0x%02X)\n", header.Type(), header.CartridgeType)
	fmt.Printf("  Controller:      %s\n", info.Variant)
	fmt.Printf("  ROM Size:        %d KiB (%d banks)\n", info.ROMBytes/1024, info.ROMBanks)
	fmt.Printf("  RAM Size:        %d bytes (%d x %d)\n", info.RAMBytes, info.RAMBanks, info.RAMBytesPerBank)
	fmt.Printf("  Battery:         %v\n", info.HasBattery())
	fmt.Printf("  Timer:           %v\n", info.HasRTC())
	fmt.Printf("  Rumble:          %v\n", info.HasRumble())
	fmt.Printf("  CGB Flag:        0x%02X\n", header.CGBFlag)
	fmt.Printf("  SGB Flag:        0x%02X\n", header.SGBFlag)
	fmt.Printf("  Destination:     %s\n", header.Destination())
	fmt.Printf("  Logo:            %s\n", okString(header.LogoValid()))
	fmt.Printf("  Header Checksum: %s\n", okString(header.VerifyHeaderChecksum(rom)))
	fmt.Printf("  Global Checksum: %s\n", okString(header.VerifyGlobalChecksum(rom)))
	fmt.Printf("  Save File:       %s\n", save.FileName(header, rom))

	if c.Titles {
		fmt.Printf("\nGames:\n")
		for _, game := range cartridge.Games(rom, info) {
			fmt.Printf("  bank %3d  %-16s %s\n", game.Bank, game.Header.Title(), game.Header.Type())
		}
	}

	if c.Banks {
		fmt.Printf("\nROM Banks:\n")
		for bank := range info.ROMBanks {
			data := rom[bank*cartridge.ROMBankSize : (bank+1)*cartridge.ROMBankSize]
			fmt.Printf("  %4d  %016x\n", bank, xxhash.Sum64(data))
		}
	}

	return nil
}

func okString(ok bool) string {
	if ok {
		return "ok"
	}
	return "BAD"
}

// PeekCmd replays bus writes and dumps memory.
type PeekCmd struct {
	CartFlags
	Addr   []string `arg:"" optional:"" help:"Addresses to dump (hex). Defaults to 0x4000."`
	Write  []string `short:"w" help:"Bus write applied before dumping, in order." placeholder:"ADDR=VALUE"`
	Length int      `short:"n" default:"16" help:"Bytes to dump at each address."`
}

// Run executes the peek command.
func (c *PeekCmd) Run(g *Globals) error {
	cart, _, err := c.load(g, cartridge.Config{})
	if err != nil {
		return err
	}
	bus := memory.NewBus(cart)

	for _, w := range c.Write {
		addrText, valueText, ok := strings.Cut(w, "=")
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidWrite, w)
		}
		addr, err := parseHex(addrText, 16)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidWrite, w, err)
		}
		value, err := parseHex(valueText, 8)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidWrite, w, err)
		}
		bus.Write(uint16(addr), uint8(value))
	}

	addrs := c.Addr
	if len(addrs) == 0 {
		addrs = []string{"0x4000"}
	}
	for _, a := range addrs {
		start, err := parseHex(a, 16)
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", a, err)
		}
		fmt.Print(hexDump(bus, uint16(start), c.Length))
	}

	fmt.Println(formatState(cart.State()))
	return nil
}

func parseHex(s string, bits int) (uint64, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	return strconv.ParseUint(s, 16, bits)
}

// hexDump formats n bytes from start, sixteen per line.
func hexDump(bus *memory.Bus, start uint16, n int) string {
	var b strings.Builder
	for i := 0; i < n; i += 16 {
		addr := start + uint16(i)
		fmt.Fprintf(&b, "%04X:", addr)
		for j := 0; j < 16 && i+j < n; j++ {
			fmt.Fprintf(&b, " %02X", bus.Read(addr+uint16(j)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatState(s cartridge.State) string {
	return fmt.Sprintf("ROM0 %d  ROM %d  RAM %d  enabled %v  mode 0x%02X  rumble %v  rtc %v",
		s.ROMBank0, s.ROMBank, s.RAMBank, s.RAMEnabled, s.Mode, s.Rumble, s.RTCSelected)
}

// SaveCmd groups the battery save commands.
type SaveCmd struct {
	Show   SaveShowCmd   `cmd:"" help:"Show the battery save of a ROM."`
	Init   SaveInitCmd   `cmd:"" help:"Create a blank battery save for a ROM."`
	Import SaveImportCmd `cmd:"" help:"Copy a save file from another emulator or a cart dumper into the save directory."`
	Export SaveExportCmd `cmd:"" help:"Write the battery save of a ROM to a file."`
}

// SaveShowCmd prints a decoded battery save.
type SaveShowCmd struct {
	CartFlags
}

// Run executes the save show command.
func (c *SaveShowCmd) Run(g *Globals) error {
	cart, rom, err := c.load(g, cartridge.Config{})
	if err != nil {
		return err
	}
	if !cart.HasBattery() {
		return ErrNoBattery
	}

	dir := save.NewDir(g.SaveDir, g.logger())
	name := save.FileName(cart.Header(), rom)
	snap, err := dir.Load(cart.Info(), name)
	if err != nil {
		return fmt.Errorf("failed to load save: %w", err)
	}

	used := 0
	for _, b := range snap.RAM {
		if b != 0x00 && b != 0xFF {
			used++
		}
	}
	fmt.Printf("Save File: %s\n", dir.Path(name))
	fmt.Printf("  RAM:     %d bytes (%d in use)\n", len(snap.RAM), used)
	if snap.Clock != nil {
		fmt.Printf("  Live:    %s\n", formatClock(snap.Clock.Live))
		fmt.Printf("  Latched: %s\n", formatClock(snap.Clock.Latched))
		fmt.Printf("  Saved:   %s\n", snap.Clock.Anchor.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}

func formatClock(r cartridge.RTCRegisters) string {
	s := fmt.Sprintf("day %d %02d:%02d:%02d", r.Days(), r.Hours, r.Minutes, r.Seconds)
	if r.Halted() {
		s += " halted"
	}
	if r.Carry() {
		s += " carry"
	}
	return s
}

// SaveInitCmd writes a blank battery save.
type SaveInitCmd struct {
	CartFlags
	Force bool `help:"Overwrite an existing save."`
}

// Run executes the save init command.
func (c *SaveInitCmd) Run(g *Globals) error {
	cart, rom, err := c.load(g, cartridge.Config{})
	if err != nil {
		return err
	}
	if !cart.HasBattery() {
		return ErrNoBattery
	}

	dir := save.NewDir(g.SaveDir, g.logger())
	name := save.FileName(cart.Header(), rom)
	if _, err := os.Stat(dir.Path(name)); err == nil && !c.Force {
		return fmt.Errorf("%w: %s", ErrSaveExists, dir.Path(name))
	}

	var store save.Store
	if err := dir.Save(name, store.Snapshot(cart)); err != nil {
		return err
	}
	fmt.Printf("Created %s\n", dir.Path(name))
	return nil
}

// SaveImportCmd loads a foreign save file into the save directory.
type SaveImportCmd struct {
	CartFlags
	File  string `arg:"" type:"existingfile" help:"Save file: the RAM image, optionally followed by a clock block."`
	Force bool   `help:"Overwrite an existing save."`
}

// Run executes the save import command.
func (c *SaveImportCmd) Run(g *Globals) error {
	cart, rom, err := c.load(g, cartridge.Config{})
	if err != nil {
		return err
	}
	if !cart.HasBattery() {
		return ErrNoBattery
	}

	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read save: %w", err)
	}
	snap, err := save.DecodeForeign(cart.Info(), data)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", c.File, err)
	}

	// Restoring first validates the save and brings a clock up to date.
	var store save.Store
	if err := store.Restore(cart, snap); err != nil {
		return fmt.Errorf("failed to import %s: %w", c.File, err)
	}

	dir := save.NewDir(g.SaveDir, g.logger())
	name := save.FileName(cart.Header(), rom)
	if _, err := os.Stat(dir.Path(name)); err == nil && !c.Force {
		return fmt.Errorf("%w: %s", ErrSaveExists, dir.Path(name))
	}
	if err := dir.Save(name, store.Snapshot(cart)); err != nil {
		return err
	}
	fmt.Printf("Imported %s as %s\n", c.File, dir.Path(name))
	return nil
}

// SaveExportCmd writes a battery save out of the save directory.
type SaveExportCmd struct {
	CartFlags
	File    string `arg:"" type:"path" help:"Destination file."`
	RAMOnly bool   `help:"Write only the RAM image, without the clock block."`
	Force   bool   `help:"Overwrite an existing file."`
}

// Run executes the save export command.
func (c *SaveExportCmd) Run(g *Globals) error {
	cart, rom, err := c.load(g, cartridge.Config{})
	if err != nil {
		return err
	}
	if !cart.HasBattery() {
		return ErrNoBattery
	}

	dir := save.NewDir(g.SaveDir, g.logger())
	snap, err := dir.Load(cart.Info(), save.FileName(cart.Header(), rom))
	if err != nil {
		return fmt.Errorf("failed to load save: %w", err)
	}

	data := save.Encode(snap)
	if c.RAMOnly {
		data = snap.RAM
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if c.Force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(c.File, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrFileExists, c.File)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", c.File, err)
	}
	_, err = f.Write(data)
	if err := errors.Join(err, f.Close()); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.File, err)
	}

	fmt.Printf("Exported %d bytes to %s\n", len(data), c.File)
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("gbcart"),
		kong.Description("Inspect and exercise Game Boy cartridge memory bank controllers."),
		kong.UsageOnError(),
	)

	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
