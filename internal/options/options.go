// Package options contains the program options.
package options

import (
	"github.com/mp3/ccsnes/internal/bootstrap"
	"github.com/mp3/ccsnes/internal/builder"
	"github.com/mp3/ccsnes/internal/header"
	"github.com/mp3/ccsnes/internal/rom"
)

// Output formats.
const (
	FormatBinary = "sfc"
	FormatHex    = "hex"
)

// DefaultOutput is the path the test ROM is written to.
const DefaultOutput = "tests/test_roms/simple_test.sfc"

// Parameters contains file path options.
type Parameters struct {
	Output  string // image to write
	Catalog string // sqlite catalog of builds, disabled if empty
}

// Flags contains behavior options.
type Flags struct {
	Format string // sfc or hex
	Verify bool   // reload the written file and compare it
	Strict bool   // fail on layout inconsistencies
	Debug  bool
	Quiet  bool
}

// Cartridge contains the values written into the image.
type Cartridge struct {
	Title         string
	Size          int
	MapMode       uint
	CartridgeType uint
	ROMSize       uint
	RAMSize       uint
	Region        uint
	Maker         uint
	Version       uint
	EntryVector   uint
}

// Program options of the ROM builder.
type Program struct {
	Parameters
	Flags
	Cartridge
}

// New returns program options that build the default test ROM.
func New() Program {
	def := builder.DefaultOptions()
	return Program{
		Parameters: Parameters{
			Output: DefaultOutput,
		},
		Flags: Flags{
			Format: FormatBinary,
		},
		Cartridge: Cartridge{
			Title:         def.Header.Title,
			Size:          def.Size,
			MapMode:       uint(def.Header.MapMode),
			CartridgeType: uint(def.Header.CartridgeType),
			ROMSize:       uint(def.Header.ROMSize),
			RAMSize:       uint(def.Header.RAMSize),
			Region:        uint(def.Header.Region),
			Maker:         uint(def.Header.Maker),
			Version:       uint(def.Header.Version),
			EntryVector:   uint(def.EntryVector),
		},
	}
}

// Builder converts the cartridge options to builder options. Values that do
// not fit their header field are rejected by Validate before this is called.
func (p Program) Builder() builder.Options {
	return builder.Options{
		Size:       p.Size,
		Fill:       rom.FillByte,
		HeaderBase: header.LoROMBase,
		Header: header.Header{
			Title:         p.Title,
			MapMode:       byte(p.MapMode),
			CartridgeType: byte(p.CartridgeType),
			ROMSize:       byte(p.ROMSize),
			RAMSize:       byte(p.RAMSize),
			Region:        byte(p.Region),
			Maker:         byte(p.Maker),
			Version:       byte(p.Version),
		},
		EntryVector: uint16(p.EntryVector),
		CodeOffset:  0,
		Code:        bootstrap.ResetRoutine.Bytes(),
		Strict:      p.Strict,
	}
}
