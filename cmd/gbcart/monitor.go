package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/richardwooding/gbcart/internal/cartridge"
	"github.com/richardwooding/gbcart/internal/input"
	"github.com/richardwooding/gbcart/internal/memory"
	"github.com/richardwooding/gbcart/internal/save"
)

// Monitor window size in unscaled pixels.
const (
	monitorWidth  = 320
	monitorHeight = 200
)

// MonitorCmd opens a window that drives a cartridge from the keyboard.
type MonitorCmd struct {
	CartFlags
	Scale  int  `help:"Window scale factor (1-10)." default:"2"`
	NoBuzz bool `help:"Do not play the rumble motor as a hum."`
}

// Run executes the monitor command.
func (c *MonitorCmd) Run(g *Globals) error {
	if c.Scale < 1 || c.Scale > 10 {
		return fmt.Errorf("%w: got %d", ErrInvalidScale, c.Scale)
	}

	vibrate := vibrateGamepads
	if !c.NoBuzz {
		buzzer, err := NewBuzzer()
		if err != nil {
			// Audio is optional - continue without it if initialization fails
			g.logger().Warn("rumble hum unavailable", slog.Any("error", err))
		} else {
			defer buzzer.Close()
			vibrate = func(on bool) {
				vibrateGamepads(on)
				buzzer.Set(on)
			}
		}
	}

	tilt := input.NewTilt()
	rumble := input.NewRumble(vibrate)
	ir := input.NewIR()

	cart, rom, err := c.load(g, cartridge.Config{
		Rumble:   rumble.Set,
		Tilt:     tilt,
		Infrared: ir,
	})
	if err != nil {
		return err
	}

	m := &Monitor{
		log:    g.logger(),
		cart:   cart,
		bus:    memory.NewBus(cart),
		tilt:   tilt,
		rumble: rumble,
		ir:     ir,
		dir:    save.NewDir(g.SaveDir, g.logger()),
		name:   save.FileName(cart.Header(), rom),
	}
	if err := m.loadSave(); err != nil {
		return err
	}

	ebiten.SetWindowTitle("gbcart - " + cart.Header().Title())
	ebiten.SetWindowSize(monitorWidth*c.Scale, monitorHeight*c.Scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	runErr := ebiten.RunGame(m)
	vibrateGamepads(false)
	if err := m.writeSave(); err != nil {
		return errors.Join(runErr, err)
	}
	if runErr != nil {
		return fmt.Errorf("monitor error: %w", runErr)
	}
	return nil
}

// Monitor implements the Ebiten game interface around one cartridge.
type Monitor struct {
	log    *slog.Logger
	cart   cartridge.Cartridge
	bus    *memory.Bus
	tilt   *input.Tilt
	rumble *input.Rumble
	ir     *input.IR
	store  save.Store
	dir    *save.Dir
	name   string

	romBank    uint16
	ramEnabled bool
	rumbleBit  bool
	sensorX    uint16
	sensorY    uint16
}

// loadSave restores the battery save. A save that does not fit the
// cartridge is moved aside so writeSave cannot replace it, and the session
// starts with blank RAM.
func (m *Monitor) loadSave() error {
	if !m.cart.HasBattery() {
		return nil
	}
	snap, err := m.dir.Load(m.cart.Info(), m.name)
	if err == nil {
		err = m.store.Restore(m.cart, snap)
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case errors.Is(err, save.ErrSizeMismatch):
		moved, moveErr := m.dir.SetAside(m.name)
		if moveErr != nil {
			return errors.Join(err, moveErr)
		}
		m.log.Warn("starting with blank RAM; the old save was kept",
			slog.String("path", moved), slog.Any("error", err))
		return nil
	default:
		return err
	}
}

func (m *Monitor) writeSave() error {
	if !m.cart.HasBattery() {
		return nil
	}
	return m.dir.Save(m.name, m.store.Snapshot(m.cart))
}

// Update polls the peripherals and applies key commands. This is called
// 60 times per second by Ebiten.
func (m *Monitor) Update() error {
	pollTilt(m.tilt)
	pollIR(m.ir)
	pollRumble(m.rumble)

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		m.romBank++
		m.writeROMBank()
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
		m.romBank--
		m.writeROMBank()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		m.ramEnabled = !m.ramEnabled
		m.bus.Write(0x0000, m.ramEnableValue())
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		// MBC3 latch sequence
		m.bus.Write(0x6000, 0x00)
		m.bus.Write(0x6000, 0x01)
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		m.rumbleBit = !m.rumbleBit
		var v uint8
		if m.rumbleBit {
			v = 0x08
		}
		m.bus.Write(0x4000, v)
	}

	if m.cart.Info().Variant == cartridge.VariantMBC7 {
		m.sampleAccelerometer()
	}
	return nil
}

func (m *Monitor) writeROMBank() {
	m.bus.Write(0x2000, uint8(m.romBank))
	if m.cart.Info().Variant == cartridge.VariantMBC5 {
		m.bus.Write(0x3000, uint8(m.romBank>>8)&0x01)
	}
}

func (m *Monitor) ramEnableValue() uint8 {
	if !m.ramEnabled {
		return 0x00
	}
	return 0x0A
}

// sampleAccelerometer erases and relatches the MBC7 sensor, enabling the
// register window first if needed.
func (m *Monitor) sampleAccelerometer() {
	if !m.cart.State().RAMEnabled {
		m.bus.Write(0x0000, 0x0A)
		m.bus.Write(0x4000, 0x40)
		m.ramEnabled = true
	}
	m.bus.Write(0xA000, 0x55)
	m.bus.Write(0xA010, 0xAA)
	m.sensorX = uint16(m.bus.Read(0xA020)) | uint16(m.bus.Read(0xA030))<<8
	m.sensorY = uint16(m.bus.Read(0xA040)) | uint16(m.bus.Read(0xA050))<<8
}

// Draw prints the cartridge state.
func (m *Monitor) Draw(screen *ebiten.Image) {
	info := m.cart.Info()

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", m.cart.Header().Title(), info.Variant)
	fmt.Fprintf(&b, "%s\n\n", formatState(m.cart.State()))

	if rtc := m.cart.RTC(); rtc != nil {
		fmt.Fprintf(&b, "clock   %s\n", formatClock(rtc.Live()))
		fmt.Fprintf(&b, "latched %s\n", formatClock(rtc.Latched()))
	}
	if info.Variant == cartridge.VariantMBC7 {
		x, y := m.tilt.Tilt()
		fmt.Fprintf(&b, "tilt %+.2f %+.2f  sensor %04X %04X\n", x, y, m.sensorX, m.sensorY)
	}
	if info.HasRumble() {
		fmt.Fprintf(&b, "rumble %v (%d pulses)\n", m.rumble.On(), m.rumble.Pulses())
	}
	if info.Variant == cartridge.VariantHuC1 || info.Variant == cartridge.VariantHuC3 {
		fmt.Fprintf(&b, "ir led %v  light %v\n", m.ir.LED(), m.ir.Light())
	}

	b.WriteString("\n")
	b.WriteString(hexDump(m.bus, 0x4000, 32))
	b.WriteString(hexDump(m.bus, 0xA000, 32))
	b.WriteString("\nPgUp/PgDn bank  R ram  L latch  Space rumble  I light")

	ebitenutil.DebugPrint(screen, b.String())
}

// Layout returns the monitor screen size.
func (m *Monitor) Layout(_, _ int) (int, int) {
	return monitorWidth, monitorHeight
}
