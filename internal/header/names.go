package header

import "fmt"

// Map mode values.
const (
	MapModeLoROM     = 0x20
	MapModeHiROM     = 0x21
	MapModeExHiROM   = 0x25
	MapModeFastLoROM = 0x30
	MapModeFastHiROM = 0x31
)

// Cartridge type values.
const (
	CartridgeROMOnly = 0x00
	CartridgeROMRAM  = 0x01
	CartridgeROMBatt = 0x02
)

// Region codes.
const (
	RegionJapan  = 0x00
	RegionUSA    = 0x01
	RegionEurope = 0x02
)

const (
	fastROMBit = 0x10
	hiROMBit   = 0x01

	maxROMSizeClass   = 16 // 64MB
	maxRAMSizeClass   = 8  // 256KB
	minPrintableTitle = 15
)

var regionNames = map[byte]string{
	0x00: "Japan",
	0x01: "USA",
	0x02: "Europe",
	0x03: "Sweden",
	0x04: "Finland",
	0x05: "Denmark",
	0x06: "France",
	0x07: "Netherlands",
	0x08: "Spain",
	0x09: "Germany",
	0x0A: "Italy",
	0x0B: "China",
	0x0C: "Indonesia",
	0x0D: "Korea",
}

var coprocessorNames = map[byte]string{
	0x00: "None",
	0x01: "DSP1",
	0x02: "DSP2",
	0x03: "DSP3",
	0x04: "DSP4",
	0x05: "CX4",
	0x25: "OBC1",
	0x34: "SA1",
	0x35: "SuperFX",
	0x3A: "SuperFX2",
	0x43: "SDD1",
	0x45: "RTC",
}

// RegionName returns the name of a region code.
func RegionName(code byte) string {
	if name, ok := regionNames[code]; ok {
		return name
	}
	return fmt.Sprintf("Unknown ($%02X)", code)
}

// CoprocessorName returns the name of the chip declared by a cartridge type byte.
func CoprocessorName(cartridgeType byte) string {
	if name, ok := coprocessorNames[cartridgeType]; ok {
		return name
	}
	return fmt.Sprintf("Unknown ($%02X)", cartridgeType)
}

// MapModeName returns a readable name of a map mode byte.
func MapModeName(mode byte) string {
	var name string
	switch mode &^ fastROMBit {
	case MapModeLoROM:
		name = "LoROM"
	case MapModeHiROM:
		name = "HiROM"
	case MapModeExHiROM:
		name = "ExHiROM"
	default:
		return fmt.Sprintf("Unknown ($%02X)", mode)
	}
	if mode&fastROMBit != 0 {
		name = "Fast" + name
	}
	return name
}

// IsHiROM reports whether the map mode selects a HiROM style mapping.
func IsHiROM(mode byte) bool {
	return mode&hiROMBit != 0
}

// IsLoROM reports whether the map mode is plain or FastROM LoROM.
func IsLoROM(mode byte) bool {
	return mode&^fastROMBit == MapModeLoROM
}
