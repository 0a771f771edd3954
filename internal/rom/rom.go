// Package rom provides the fixed size image buffer that a cartridge is built in.
package rom

import (
	"errors"
	"fmt"
)

const (
	// DefaultSize is the size of a 32KB LoROM image.
	DefaultSize = 32 * 1024
	// FillByte represents erased memory.
	FillByte = 0xFF
)

var (
	ErrInvalidSize = errors.New("invalid image size")
	ErrOutOfBounds = errors.New("write exceeds image bounds")
)

// Image is a fixed length byte buffer. Its length never changes after allocation
// and all accesses are bounds checked.
type Image struct {
	data []byte
	fill byte
}

// New returns an image of size bytes, all set to the fill byte.
func New(size int, fill byte) (*Image, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	data := make([]byte, size)
	for i := range data {
		data[i] = fill
	}

	return &Image{
		data: data,
		fill: fill,
	}, nil
}

// FromBytes wraps a copy of b as an image. The fill byte is only used by Fill.
func FromBytes(b []byte, fill byte) (*Image, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, 0)
	}
	return &Image{
		data: append([]byte(nil), b...),
		fill: fill,
	}, nil
}

// Len returns the image size in bytes.
func (m *Image) Len() int {
	return len(m.data)
}

// FillValue returns the sentinel the image was created with.
func (m *Image) FillValue() byte {
	return m.fill
}

func (m *Image) checkRange(offset, width int) error {
	if offset < 0 || width < 0 || offset+width > len(m.data) {
		return fmt.Errorf("%w: offset $%04X width %d, image size $%04X",
			ErrOutOfBounds, offset, width, len(m.data))
	}
	return nil
}

// WriteAt copies data into the image starting at offset.
func (m *Image) WriteAt(offset int, data []byte) error {
	if err := m.checkRange(offset, len(data)); err != nil {
		return err
	}
	copy(m.data[offset:], data)
	return nil
}

// WriteUint8 writes a single byte.
func (m *Image) WriteUint8(offset int, value byte) error {
	return m.WriteAt(offset, []byte{value})
}

// WriteUint16 writes a 16 bit value in little-endian byte order.
func (m *Image) WriteUint16(offset int, value uint16) error {
	return m.WriteAt(offset, []byte{byte(value), byte(value >> 8)})
}

// ReadAt returns a copy of width bytes starting at offset.
func (m *Image) ReadAt(offset, width int) ([]byte, error) {
	if err := m.checkRange(offset, width); err != nil {
		return nil, err
	}
	b := make([]byte, width)
	copy(b, m.data[offset:])
	return b, nil
}

// Uint16At reads a little-endian 16 bit value.
func (m *Image) Uint16At(offset int) (uint16, error) {
	if err := m.checkRange(offset, 2); err != nil {
		return 0, err
	}
	return uint16(m.data[offset]) | uint16(m.data[offset+1])<<8, nil
}

// Fill sets width bytes starting at offset to the fill byte.
func (m *Image) Fill(offset, width int) error {
	if err := m.checkRange(offset, width); err != nil {
		return err
	}
	for i := offset; i < offset+width; i++ {
		m.data[i] = m.fill
	}
	return nil
}

// Sum16 returns the sum of all bytes truncated to 16 bits.
func (m *Image) Sum16() uint16 {
	var sum uint16
	for _, b := range m.data {
		sum += uint16(b)
	}
	return sum
}

// Bytes returns a copy of the image content.
func (m *Image) Bytes() []byte {
	return append([]byte(nil), m.data...)
}
