// Package header describes the internal SNES cartridge header and encodes it
// into or decodes it from an image.
package header

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mp3/ccsnes/internal/rom"
)

const (
	LoROMBase = 0x7FC0 // header base of a LoROM image
	HiROMBase = 0xFFC0 // header base of a HiROM image

	// WindowSize is the size of the header window including the native and
	// emulation mode vectors.
	WindowSize = 0x40

	// CopierHeaderSize is the size of the header some copier devices prepend.
	CopierHeaderSize = 512

	TitleSize = 21
)

// Offsets relative to the header base.
const (
	TitleOffset         = 0x00
	MapModeOffset       = 0x15
	CartridgeTypeOffset = 0x16
	ROMSizeOffset       = 0x17
	RAMSizeOffset       = 0x18
	RegionOffset        = 0x19
	MakerOffset         = 0x1A
	VersionOffset       = 0x1B
	ComplementOffset    = 0x1C
	ChecksumOffset      = 0x1E
	ResetVectorOffset   = 0x3C
)

var (
	ErrFieldOverflow = errors.New("field overflow")
	ErrNoHeader      = errors.New("no valid header found")
)

// Header contains the values of the fixed header fields.
type Header struct {
	Title         string
	MapMode       byte
	CartridgeType byte
	ROMSize       byte // size class, capacity is 1KB << ROMSize
	RAMSize       byte // size class, 0 means no RAM
	Region        byte
	Maker         byte
	Version       byte

	Complement uint16
	Checksum   uint16
}

// Field is a fixed width datum inside the header.
type Field struct {
	Name   string
	Offset int // relative to the header base
	Width  int
	encode func(h Header) ([]byte, error)
}

// Fields is the canonical write order of the header fields. The checksum pair
// is written as zero placeholders.
var Fields = []Field{
	{"title", TitleOffset, TitleSize, func(h Header) ([]byte, error) { return EncodeTitle(h.Title) }},
	{"map mode", MapModeOffset, 1, byteField(func(h Header) byte { return h.MapMode })},
	{"cartridge type", CartridgeTypeOffset, 1, byteField(func(h Header) byte { return h.CartridgeType })},
	{"rom size", ROMSizeOffset, 1, byteField(func(h Header) byte { return h.ROMSize })},
	{"ram size", RAMSizeOffset, 1, byteField(func(h Header) byte { return h.RAMSize })},
	{"region", RegionOffset, 1, byteField(func(h Header) byte { return h.Region })},
	{"maker", MakerOffset, 1, byteField(func(h Header) byte { return h.Maker })},
	{"version", VersionOffset, 1, byteField(func(h Header) byte { return h.Version })},
	{"checksum complement", ComplementOffset, 2, zeroField(2)},
	{"checksum", ChecksumOffset, 2, zeroField(2)},
}

func byteField(get func(h Header) byte) func(h Header) ([]byte, error) {
	return func(h Header) ([]byte, error) {
		return []byte{get(h)}, nil
	}
}

func zeroField(width int) func(h Header) ([]byte, error) {
	return func(Header) ([]byte, error) {
		return make([]byte, width), nil
	}
}

// EncodeTitle returns the title as exactly TitleSize bytes, left justified and
// padded with spaces. Longer titles are truncated. Only printable ASCII is allowed.
func EncodeTitle(title string) ([]byte, error) {
	b := make([]byte, TitleSize)
	for i := range b {
		b[i] = ' '
	}

	for i := 0; i < len(title) && i < TitleSize; i++ {
		c := title[i]
		if c < 0x20 || c > 0x7E {
			return nil, fmt.Errorf("%w: title byte $%02X at index %d is not printable ASCII",
				ErrFieldOverflow, c, i)
		}
		b[i] = c
	}
	return b, nil
}

// Encode writes all header fields into the image at the given header base.
func Encode(img *rom.Image, base int, h Header) error {
	for _, f := range Fields {
		if err := f.Write(img, base, h); err != nil {
			return err
		}
	}
	return nil
}

// Write encodes the field value of h and writes it into the image.
func (f Field) Write(img *rom.Image, base int, h Header) error {
	data, err := f.encode(h)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", f.Name, err)
	}
	if len(data) != f.Width {
		return fmt.Errorf("%w: %s encodes to %d bytes, width is %d",
			ErrFieldOverflow, f.Name, len(data), f.Width)
	}
	if err := img.WriteAt(base+f.Offset, data); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrFieldOverflow, f.Name, err)
	}
	return nil
}

// Decode reads the header fields at the given base.
func Decode(img *rom.Image, base int) (Header, error) {
	window, err := img.ReadAt(base, ChecksumOffset+2)
	if err != nil {
		return Header{}, fmt.Errorf("reading header window: %w", err)
	}

	return Header{
		Title:         decodeTitle(window[TitleOffset : TitleOffset+TitleSize]),
		MapMode:       window[MapModeOffset],
		CartridgeType: window[CartridgeTypeOffset],
		ROMSize:       window[ROMSizeOffset],
		RAMSize:       window[RAMSizeOffset],
		Region:        window[RegionOffset],
		Maker:         window[MakerOffset],
		Version:       window[VersionOffset],
		Complement:    uint16(window[ComplementOffset]) | uint16(window[ComplementOffset+1])<<8,
		Checksum:      uint16(window[ChecksumOffset]) | uint16(window[ChecksumOffset+1])<<8,
	}, nil
}

// decodeTitle drops NUL and control characters and trims the trailing space padding.
func decodeTitle(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c >= 0x20 && c != 0x7F {
			sb.WriteByte(c)
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

// ROMBytes returns the capacity declared by the ROM size class.
func (h Header) ROMBytes() int {
	return 1024 << h.ROMSize
}

// RAMBytes returns the capacity declared by the RAM size class.
func (h Header) RAMBytes() int {
	if h.RAMSize == 0 {
		return 0
	}
	return 1024 << h.RAMSize
}

// SizeClass returns the smallest size class whose capacity holds size bytes.
func SizeClass(size int) byte {
	var class byte
	for 1024<<class < size {
		class++
	}
	return class
}
