// Package checksum computes and validates the 16-bit checksum pair stored in
// the cartridge header.
package checksum

import (
	"errors"
	"fmt"

	"github.com/mp3/ccsnes/internal/header"
	"github.com/mp3/ccsnes/internal/rom"
)

var (
	ErrComplement = errors.New("checksum complement mismatch")
	ErrChecksum   = errors.New("checksum mismatch")
)

// Pair is the checksum and its one's complement.
type Pair struct {
	Checksum   uint16
	Complement uint16
}

// NewPair returns the pair for a checksum value.
func NewPair(sum uint16) Pair {
	return Pair{
		Checksum:   sum,
		Complement: ^sum,
	}
}

// Consistent reports whether the complement is the one's complement of the checksum.
func (p Pair) Consistent() bool {
	return p.Checksum^p.Complement == 0xFFFF
}

func (p Pair) String() string {
	return fmt.Sprintf("checksum $%04X complement $%04X", p.Checksum, p.Complement)
}

// Compute sums the image as it is. It has to be called while both placeholders
// are still zero so the stored checksum does not include itself.
func Compute(img *rom.Image) Pair {
	return NewPair(img.Sum16())
}

// Write stores the pair into the header at the given base.
func Write(img *rom.Image, base int, p Pair) error {
	if err := img.WriteUint16(base+header.ChecksumOffset, p.Checksum); err != nil {
		return fmt.Errorf("writing checksum: %w", err)
	}
	if err := img.WriteUint16(base+header.ComplementOffset, p.Complement); err != nil {
		return fmt.Errorf("writing checksum complement: %w", err)
	}
	return nil
}

// Read returns the pair stored in the header at the given base.
func Read(img *rom.Image, base int) (Pair, error) {
	sum, err := img.Uint16At(base + header.ChecksumOffset)
	if err != nil {
		return Pair{}, fmt.Errorf("reading checksum: %w", err)
	}
	complement, err := img.Uint16At(base + header.ComplementOffset)
	if err != nil {
		return Pair{}, fmt.Errorf("reading checksum complement: %w", err)
	}
	return Pair{Checksum: sum, Complement: complement}, nil
}

// Sum returns the checksum of an already finished image by summing all bytes
// with both stored fields treated as zero.
func Sum(img *rom.Image, base int) (uint16, error) {
	stored, err := img.ReadAt(base+header.ComplementOffset, 4)
	if err != nil {
		return 0, fmt.Errorf("reading checksum pair: %w", err)
	}

	sum := img.Sum16()
	for _, b := range stored {
		sum -= uint16(b)
	}
	return sum, nil
}

// Recompute returns Sum for images that are a power of two in size. Other
// images are summed as if padded with 0xFF up to the next power of two.
func Recompute(img *rom.Image, base int) (uint16, error) {
	sum, err := Sum(img, base)
	if err != nil {
		return 0, err
	}
	return sum + padding(img.Len()), nil
}

// Verify checks the stored pair of an image against its content. A stored
// checksum matches if it equals either the exact or the padded sum.
func Verify(img *rom.Image, base int) (Pair, error) {
	p, err := Read(img, base)
	if err != nil {
		return Pair{}, err
	}
	if !p.Consistent() {
		return p, fmt.Errorf("%w: %s", ErrComplement, p)
	}

	sum, err := Sum(img, base)
	if err != nil {
		return p, err
	}
	if sum == p.Checksum || sum+padding(img.Len()) == p.Checksum {
		return p, nil
	}
	return p, fmt.Errorf("%w: stored $%04X, computed $%04X", ErrChecksum, p.Checksum, sum)
}

// padding returns the sum of the 0xFF bytes that extend size to the next power of two.
func padding(size int) uint16 {
	return uint16((nextPowerOfTwo(size) - size) * 0xFF)
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
