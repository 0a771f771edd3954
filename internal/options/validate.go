package options

import (
	"fmt"
	"strings"

	"github.com/mp3/ccsnes/internal/builder"
)

// Validate normalizes the options and checks that every numeric value fits
// the width of its header field.
func (p *Program) Validate() error {
	p.Format = strings.ToLower(p.Format)
	if p.Format != FormatBinary && p.Format != FormatHex {
		return fmt.Errorf("unsupported output format: %s. Valid options: %s, %s",
			p.Format, FormatBinary, FormatHex)
	}

	fields := []struct {
		name  string
		value uint
		max   uint
	}{
		{"map mode", p.MapMode, 0xFF},
		{"cartridge type", p.CartridgeType, 0xFF},
		{"rom size", p.ROMSize, 0xFF},
		{"ram size", p.RAMSize, 0xFF},
		{"region", p.Region, 0xFF},
		{"maker", p.Maker, 0xFF},
		{"version", p.Version, 0xFF},
		{"entry vector", p.EntryVector, 0xFFFF},
	}
	for _, f := range fields {
		if f.value > f.max {
			return fmt.Errorf("%w: %s value $%X exceeds $%X", builder.ErrFieldOverflow, f.name, f.value, f.max)
		}
	}
	return nil
}
