package header

import (
	"fmt"

	"github.com/mp3/ccsnes/internal/rom"
)

// Location describes where a header was found inside a file.
type Location struct {
	Base         int  // absolute offset of the header base
	CopierHeader bool // a 512 byte copier header precedes the image
}

// ImageOffset returns the offset of the cartridge image inside the file.
func (l Location) ImageOffset() int {
	if l.CopierHeader {
		return CopierHeaderSize
	}
	return 0
}

// Plausible reports whether a header window looks like a real header:
// reasonable size classes and a mostly printable title.
func Plausible(window []byte) bool {
	if len(window) < ChecksumOffset+2 {
		return false
	}
	if window[ROMSizeOffset] > maxROMSizeClass || window[RAMSizeOffset] > maxRAMSizeClass {
		return false
	}

	var printable int
	for _, c := range window[TitleOffset : TitleOffset+TitleSize] {
		if c == 0 || (c >= 0x20 && c <= 0x7E) {
			printable++
		}
	}
	return printable >= minPrintableTitle
}

// Locate finds the header of an image, trying the LoROM and HiROM positions
// after skipping an optional copier header. When both positions look valid the
// map mode byte of the HiROM candidate decides. An image whose size suggests a
// copier header but that only has a plausible header at the unshifted
// positions is treated as having none.
func Locate(img *rom.Image) (Location, error) {
	if img.Len()%1024 == CopierHeaderSize {
		loc, plausible, err := locateAt(img, true)
		if err != nil || plausible {
			return loc, err
		}
		if unshifted, ok, _ := locateAt(img, false); ok {
			return unshifted, nil
		}
		return loc, nil
	}

	loc, _, err := locateAt(img, false)
	return loc, err
}

// locateAt returns the header location for the given copier header setting
// and whether the chosen window looks like a real header.
func locateAt(img *rom.Image, copierHeader bool) (Location, bool, error) {
	loc := Location{CopierHeader: copierHeader}
	skip := loc.ImageOffset()

	lo, loOK := candidate(img, skip+LoROMBase)
	hi, hiOK := candidate(img, skip+HiROMBase)

	switch {
	case loOK && hiOK:
		if IsHiROM(hi[MapModeOffset]) {
			loc.Base = skip + HiROMBase
		} else {
			loc.Base = skip + LoROMBase
		}
	case hiOK:
		loc.Base = skip + HiROMBase
	case loOK:
		loc.Base = skip + LoROMBase
	case lo != nil:
		// nothing plausible, fall back to the LoROM position
		loc.Base = skip + LoROMBase
		return loc, false, nil
	default:
		return Location{}, false, fmt.Errorf("%w: image size $%X", ErrNoHeader, img.Len())
	}
	return loc, true, nil
}

func candidate(img *rom.Image, base int) ([]byte, bool) {
	window, err := img.ReadAt(base, WindowSize)
	if err != nil {
		return nil, false
	}
	return window, Plausible(window)
}
