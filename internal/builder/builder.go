// Package builder constructs a LoROM cartridge image: header fields, the reset
// vector, the bootstrap code and finally the checksum pair.
package builder

import (
	"errors"
	"fmt"

	"github.com/mp3/ccsnes/internal/bootstrap"
	"github.com/mp3/ccsnes/internal/checksum"
	"github.com/mp3/ccsnes/internal/header"
	"github.com/mp3/ccsnes/internal/rom"
	"github.com/retroenv/retrogolib/log"
)

const (
	// DefaultTitle is the title of the test cartridge.
	DefaultTitle = "CCSNES TEST ROM"
	// DefaultROMSizeClass declares 256KB, the smallest common cartridge size,
	// although the image itself is only 32KB.
	DefaultROMSizeClass = 0x08

	loROMBankSize = 0x8000
	loROMWindow   = 0x8000 // CPU address the first ROM byte of a bank is mapped to
)

var (
	ErrFieldOverflow = header.ErrFieldOverflow
	ErrRegionOverlap = errors.New("region overlap")
	ErrSizeMismatch  = errors.New("image size mismatch")
	ErrInconsistent  = errors.New("inconsistent cartridge layout")
	ErrPhaseOrder    = errors.New("build phase out of order")
)

// Options defines the layout and content of the cartridge to build.
type Options struct {
	Size       int  // image size in bytes
	Fill       byte // sentinel value of unwritten bytes
	HeaderBase int  // absolute offset of the header

	Header      header.Header
	EntryVector uint16 // reset vector, CPU address of the first instruction
	CodeOffset  int    // absolute offset of the code in the image
	Code        []byte

	// Strict turns layout inconsistencies into errors instead of warnings.
	Strict bool
}

// DefaultOptions returns the options that produce the default test ROM.
func DefaultOptions() Options {
	return Options{
		Size:       rom.DefaultSize,
		Fill:       rom.FillByte,
		HeaderBase: header.LoROMBase,
		Header: header.Header{
			Title:         DefaultTitle,
			MapMode:       header.MapModeLoROM,
			CartridgeType: header.CartridgeROMOnly,
			ROMSize:       DefaultROMSizeClass,
			RAMSize:       0,
			Region:        header.RegionJapan,
			Maker:         0x00,
			Version:       0,
		},
		EntryVector: loROMWindow,
		CodeOffset:  0,
		Code:        bootstrap.ResetRoutine.Bytes(),
	}
}

// Warning describes a layout inconsistency that does not prevent the build.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return w.Field + ": " + w.Message
}

// Builder builds a single cartridge image.
type Builder struct {
	logger *log.Logger
	opts   Options

	img      *rom.Image
	phase    Phase
	pair     checksum.Pair
	warnings []Warning
}

// New returns a builder for the given options.
func New(logger *log.Logger, opts Options) *Builder {
	return &Builder{
		logger: logger,
		opts:   opts,
	}
}

// Build runs all build phases and returns the finished image. On error no
// image is returned.
func (b *Builder) Build() ([]byte, error) {
	if b.phase != PhaseFields || b.img != nil {
		return nil, fmt.Errorf("%w: builder already used", ErrPhaseOrder)
	}

	if err := b.validate(); err != nil {
		return nil, err
	}
	if err := b.checkConsistency(); err != nil {
		return nil, err
	}

	img, err := rom.New(b.opts.Size, b.opts.Fill)
	if err != nil {
		return nil, fmt.Errorf("creating image: %w", err)
	}
	b.img = img

	steps := []struct {
		phase Phase
		run   func() error
	}{
		{PhaseFields, b.writeFields},
		{PhaseEntryVector, b.writeEntryVector},
		{PhaseCodeStream, b.writeCode},
		{PhaseChecksum, b.writeChecksum},
	}
	for _, step := range steps {
		if err := b.advance(step.phase); err != nil {
			return nil, err
		}
		if err := step.run(); err != nil {
			return nil, fmt.Errorf("%s phase: %w", step.phase, err)
		}
		b.logger.Debug("Build phase completed", log.Stringer("phase", step.phase))
	}

	return b.finalize(), nil
}

// Checksum returns the checksum pair of the finished image.
func (b *Builder) Checksum() checksum.Pair {
	return b.pair
}

// Warnings returns the layout inconsistencies found for the options.
func (b *Builder) Warnings() []Warning {
	return b.warnings
}

// Phase returns the current build phase.
func (b *Builder) Phase() Phase {
	return b.phase
}

// validate checks the region layout before any byte is written.
func (b *Builder) validate() error {
	o := b.opts
	headerEnd := o.HeaderBase + header.WindowSize

	if o.HeaderBase < 0 || o.Size < headerEnd {
		return fmt.Errorf("%w: image size $%X can not hold header window $%04X-$%04X",
			ErrSizeMismatch, o.Size, o.HeaderBase, headerEnd-1)
	}

	codeEnd := o.CodeOffset + len(o.Code)
	if o.CodeOffset < 0 || codeEnd > o.Size {
		return fmt.Errorf("%w: code $%04X-$%04X exceeds image size $%X",
			ErrFieldOverflow, o.CodeOffset, codeEnd, o.Size)
	}
	if len(o.Code) > 0 && o.CodeOffset < headerEnd && codeEnd > o.HeaderBase {
		return fmt.Errorf("%w: code $%04X-$%04X reaches into header $%04X-$%04X",
			ErrRegionOverlap, o.CodeOffset, codeEnd-1, o.HeaderBase, headerEnd-1)
	}
	return nil
}

// checkConsistency collects values that are valid on their own but disagree
// with the rest of the layout.
func (b *Builder) checkConsistency() error {
	o := b.opts
	b.warnings = nil

	if !header.IsLoROM(o.Header.MapMode) {
		b.warn("map mode", fmt.Sprintf("$%02X is not a LoROM mode", o.Header.MapMode))
	}

	if class := header.SizeClass(o.Size); class != o.Header.ROMSize {
		b.warn("rom size", fmt.Sprintf("declared class $%02X ($%X bytes) but image is $%X bytes (class $%02X)",
			o.Header.ROMSize, o.Header.ROMBytes(), o.Size, class))
	}

	if address, ok := LoROMAddress(o.CodeOffset); !ok || address != o.EntryVector {
		b.warn("entry vector", fmt.Sprintf("$%04X does not point to code at offset $%04X",
			o.EntryVector, o.CodeOffset))
	}

	if o.Strict && len(b.warnings) > 0 {
		return fmt.Errorf("%w: %s", ErrInconsistent, b.warnings[0])
	}
	return nil
}

func (b *Builder) warn(field, message string) {
	w := Warning{Field: field, Message: message}
	b.warnings = append(b.warnings, w)
	b.logger.Warn("Cartridge layout inconsistency",
		log.String("field", field),
		log.String("detail", message))
}

func (b *Builder) writeFields() error {
	return header.Encode(b.img, b.opts.HeaderBase, b.opts.Header)
}

func (b *Builder) writeEntryVector() error {
	offset := b.opts.HeaderBase + header.ResetVectorOffset
	if err := b.img.WriteUint16(offset, b.opts.EntryVector); err != nil {
		return fmt.Errorf("%w: %w", ErrFieldOverflow, err)
	}
	return nil
}

func (b *Builder) writeCode() error {
	if err := b.img.WriteAt(b.opts.CodeOffset, b.opts.Code); err != nil {
		return fmt.Errorf("%w: %w", ErrFieldOverflow, err)
	}
	return nil
}

// writeChecksum sums the image while both placeholders are still zero.
func (b *Builder) writeChecksum() error {
	b.pair = checksum.Compute(b.img)
	if err := checksum.Write(b.img, b.opts.HeaderBase, b.pair); err != nil {
		return fmt.Errorf("%w: %w", ErrFieldOverflow, err)
	}
	b.logger.Debug("Checksum computed",
		log.Hex("checksum", b.pair.Checksum),
		log.Hex("complement", b.pair.Complement))
	return nil
}

// finalize returns the image padded to the target size with the fill byte.
func (b *Builder) finalize() []byte {
	data := b.img.Bytes()
	for len(data) < b.opts.Size {
		data = append(data, b.opts.Fill)
	}
	return data
}

// LoROMAddress returns the bank 0 CPU address a LoROM image offset is mapped to.
func LoROMAddress(offset int) (uint16, bool) {
	if offset < 0 || offset >= loROMBankSize {
		return 0, false
	}
	return uint16(loROMWindow + offset), true
}
