// Package romfile loads ROM images from disk, unpacking compressed and
// archived dumps.
package romfile

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

var (
	// ErrUnknownFormat indicates a file extension the loader does not handle.
	ErrUnknownFormat = errors.New("unknown ROM file format")

	// ErrEmptyArchive indicates an archive without any file in it.
	ErrEmptyArchive = errors.New("archive contains no files")
)

// maxImageSize caps decompressed images well above the largest cartridge.
const maxImageSize = 16 * 1024 * 1024

// Load reads the ROM image at path.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(filepath.Base(path), data)
}

// Decode returns the ROM image held in data, which was read from a file
// called name. Raw images are returned as is; .gz files are decompressed;
// .zip and .7z archives yield their first ROM-named entry, or their first
// file if none is named like a ROM.
func Decode(name string, data []byte) ([]byte, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".gb", ".gbc", ".cgb", ".sgb", ".bin":
		return data, nil
	case ".gz":
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}
		defer zr.Close()
		return readImage(zr)
	case ".zip":
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}
		return openFirst(name, zr.File, func(f *zip.File) (fs.FileInfo, func() (io.ReadCloser, error)) {
			return f.FileInfo(), f.Open
		})
	case ".7z":
		zr, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}
		return openFirst(name, zr.File, func(f *sevenzip.File) (fs.FileInfo, func() (io.ReadCloser, error)) {
			return f.FileInfo(), f.Open
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// openFirst picks the entry to load from an archive listing.
func openFirst[F any](name string, files []F, entry func(F) (fs.FileInfo, func() (io.ReadCloser, error))) ([]byte, error) {
	var open func() (io.ReadCloser, error)
	for _, f := range files {
		info, o := entry(f)
		if info.IsDir() {
			continue
		}
		if isROMName(info.Name()) {
			open = o
			break
		}
		if open == nil {
			open = o
		}
	}
	if open == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmptyArchive, name)
	}

	rc, err := open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry in %s: %w", name, err)
	}
	defer rc.Close()
	return readImage(rc)
}

func isROMName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gb", ".gbc", ".cgb", ".sgb":
		return true
	default:
		return false
	}
}

func readImage(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("decompressed image exceeds %d bytes", maxImageSize)
	}
	return data, nil
}
