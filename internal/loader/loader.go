// Package loader handles cartridge image loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcinbor85/gohex"
	"github.com/mp3/ccsnes/internal/header"
	"github.com/mp3/ccsnes/internal/rom"
)

var errEmptyHex = errors.New("intel hex file contains no data")

// Cartridge is a loaded image with its located header.
type Cartridge struct {
	Image    *rom.Image // image without copier header
	Location header.Location
	Header   header.Header
}

// Loader handles loading cartridge files from disk.
type Loader struct{}

// New creates a new cartridge loader.
func New() *Loader {
	return &Loader{}
}

// Load reads an image file and locates its header.
func (l *Loader) Load(path string) (*Cartridge, error) {
	data, err := l.LoadRaw(path)
	if err != nil {
		return nil, err
	}
	return l.LoadFromBytes(data)
}

// LoadRaw returns the file content as it is stored. Files with a .hex
// extension are parsed as Intel HEX, everything else is read as raw binary.
func (l *Loader) LoadRaw(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	var data []byte
	if strings.EqualFold(filepath.Ext(path), ".hex") {
		data, err = readHex(file)
	} else {
		data, err = io.ReadAll(file)
	}
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}

// LoadFromBytes locates and decodes the header of a raw image.
func (l *Loader) LoadFromBytes(data []byte) (*Cartridge, error) {
	img, err := rom.FromBytes(data, rom.FillByte)
	if err != nil {
		return nil, fmt.Errorf("loading image: %w", err)
	}

	loc, err := header.Locate(img)
	if err != nil {
		return nil, fmt.Errorf("locating header: %w", err)
	}

	if loc.CopierHeader {
		img, err = rom.FromBytes(data[header.CopierHeaderSize:], rom.FillByte)
		if err != nil {
			return nil, fmt.Errorf("removing copier header: %w", err)
		}
		loc.Base -= header.CopierHeaderSize
	}

	h, err := header.Decode(img, loc.Base)
	if err != nil {
		return nil, fmt.Errorf("decoding header: %w", err)
	}

	return &Cartridge{
		Image:    img,
		Location: loc,
		Header:   h,
	}, nil
}

// readHex converts Intel HEX content to a binary image starting at address 0,
// filling gaps with the erased byte value.
func readHex(r io.Reader) ([]byte, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, fmt.Errorf("parsing intel hex: %w", err)
	}

	var end uint32
	for _, segment := range mem.GetDataSegments() {
		if last := segment.Address + uint32(len(segment.Data)); last > end {
			end = last
		}
	}
	if end == 0 {
		return nil, errEmptyHex
	}
	return mem.ToBinary(0, end, rom.FillByte), nil
}
