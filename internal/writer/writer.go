// Package writer persists built cartridge images as raw binary or Intel HEX files.
package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcinbor85/gohex"
	"github.com/mp3/ccsnes/internal/options"
)

const hexBytesPerLine = 16

// Writer writes images to disk, creating missing parent directories.
type Writer struct {
	format string
}

// New creates a new writer for the given output format.
func New(format string) (*Writer, error) {
	switch strings.ToLower(format) {
	case options.FormatBinary, "":
		return &Writer{format: options.FormatBinary}, nil
	case options.FormatHex:
		return &Writer{format: options.FormatHex}, nil
	default:
		return nil, fmt.Errorf("unsupported output format '%s'", format)
	}
}

// Format returns the output format of the writer.
func (w *Writer) Format() string {
	return w.format
}

// WriteFile writes data to path. entry is stored as start address in Intel HEX output.
func (w *Writer) WriteFile(path string, data []byte, entry uint16) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory '%s': %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file %s: %w", path, err)
	}

	if err := w.Write(file, data, entry); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing output file %s: %w", path, err)
	}
	return nil
}

// Write writes data to out in the writer's format.
func (w *Writer) Write(out io.Writer, data []byte, entry uint16) error {
	if w.format == options.FormatHex {
		return writeHex(out, data, entry)
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	return nil
}

func writeHex(out io.Writer, data []byte, entry uint16) error {
	mem := gohex.NewMemory()
	mem.SetStartAddress(uint32(entry))
	if err := mem.AddBinary(0, data); err != nil {
		return fmt.Errorf("adding image to hex memory: %w", err)
	}
	if err := mem.DumpIntelHex(out, hexBytesPerLine); err != nil {
		return fmt.Errorf("writing intel hex: %w", err)
	}
	return nil
}

// OutputFilename replaces the extension of path with the one of the format.
func OutputFilename(path, format string) string {
	ext := filepath.Ext(path)
	return path[:len(path)-len(ext)] + "." + format
}
