package save

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/richardwooding/gbcart/internal/cartridge"
)

// Dir keeps battery saves as files in one directory.
type Dir struct {
	path string
	log  *slog.Logger
}

// NewDir returns a save directory rooted at path. The directory is created
// on the first write.
func NewDir(path string, log *slog.Logger) *Dir {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Dir{path: path, log: log}
}

// FileName names the save for a ROM image: the sanitised header title and
// the xxhash of the whole image, so that revisions of a game never share a
// save.
func FileName(h *cartridge.Header, rom []byte) string {
	title := strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(h.Title()))
	if title == "" {
		title = "untitled"
	}
	return fmt.Sprintf("%s-%016x.sav", title, xxhash.Sum64(rom))
}

// Path returns the full path of the named save.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.path, name)
}

// Load reads and decodes the named save. A missing file is reported with
// an error matching os.ErrNotExist.
func (d *Dir) Load(info *cartridge.Info, name string) (Snapshot, error) {
	data, err := os.ReadFile(d.Path(name))
	if err != nil {
		return Snapshot{}, err
	}

	s, err := Decode(info, data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	d.log.Debug("loaded save", slog.String("file", name), slog.Int("bytes", len(data)))
	return s, nil
}

// Save writes the snapshot through a temporary file that is renamed over
// the previous save, so a crash never leaves a truncated file behind.
func (d *Dir) Save(name string, s Snapshot) error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("failed to create save directory: %w", err)
	}

	f, err := os.CreateTemp(d.path, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary save file: %w", err)
	}
	tmp := f.Name()

	data := Encode(s)
	_, err = f.Write(data)
	err = errors.Join(err, f.Sync(), f.Close())
	if err == nil {
		err = os.Rename(tmp, d.Path(name))
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write save %s: %w", name, err)
	}

	d.log.Debug("wrote save", slog.String("file", name), slog.Int("bytes", len(data)))
	return nil
}

// SetAside renames the named save to <name>.bad, or <name>.N.bad when that
// is taken, and returns the new path. Hosts call it for a save that failed
// to load so that the next Save does not replace the data.
func (d *Dir) SetAside(name string) (string, error) {
	target := d.Path(name + ".bad")
	for n := 1; ; n++ {
		if _, err := os.Lstat(target); errors.Is(err, fs.ErrNotExist) {
			break
		}
		target = d.Path(fmt.Sprintf("%s.%d.bad", name, n))
	}

	if err := os.Rename(d.Path(name), target); err != nil {
		return "", fmt.Errorf("failed to set aside save %s: %w", name, err)
	}
	d.log.Warn("set aside unreadable save", slog.String("file", name), slog.String("moved_to", target))
	return target, nil
}
