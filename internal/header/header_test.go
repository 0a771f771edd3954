package header

import (
	"bytes"
	"errors"
	"testing"

	"github.com/mp3/ccsnes/internal/rom"
	"github.com/retroenv/retrogolib/assert"
)

func TestEncodeTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		want    string
		wantErr bool
	}{
		{name: "padded", title: "CCSNES TEST ROM", want: "CCSNES TEST ROM      "},
		{name: "exact", title: "ABCDEFGHIJKLMNOPQRSTU", want: "ABCDEFGHIJKLMNOPQRSTU"},
		{name: "truncated", title: "ABCDEFGHIJKLMNOPQRSTUVWXYZ", want: "ABCDEFGHIJKLMNOPQRSTU"},
		{name: "empty", title: "", want: "                     "},
		{name: "control character", title: "BAD\nTITLE", wantErr: true},
		{name: "non ascii", title: "TÉST", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := EncodeTitle(tt.title)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrFieldOverflow))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, TitleSize, len(b))
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestFieldsDoNotOverlap(t *testing.T) {
	var used [WindowSize]bool
	for _, f := range Fields {
		for i := f.Offset; i < f.Offset+f.Width; i++ {
			if used[i] {
				t.Fatalf("field %s overlaps at offset $%02X", f.Name, i)
			}
			used[i] = true
		}
	}
	assert.False(t, used[ResetVectorOffset])
}

func TestEncodeDecode(t *testing.T) {
	img, err := rom.New(rom.DefaultSize, rom.FillByte)
	assert.NoError(t, err)

	h := Header{
		Title:         "MAPPING TEST",
		MapMode:       MapModeLoROM,
		CartridgeType: CartridgeROMRAM,
		ROMSize:       8,
		RAMSize:       3,
		Region:        RegionUSA,
		Maker:         0x33,
		Version:       2,
	}
	assert.NoError(t, Encode(img, LoROMBase, h))

	raw, err := img.ReadAt(LoROMBase, 0x20)
	assert.NoError(t, err)
	want := append([]byte("MAPPING TEST         "), 0x20, 0x01, 0x08, 0x03, 0x01, 0x33, 0x02, 0, 0, 0, 0)
	assert.True(t, bytes.Equal(want, raw))

	got, err := Decode(img, LoROMBase)
	assert.NoError(t, err)
	assert.Equal(t, h, got)
	assert.Equal(t, 256*1024, got.ROMBytes())
	assert.Equal(t, 8*1024, got.RAMBytes())
}

func TestDecodeTitleKeepsLeadingSpaces(t *testing.T) {
	img, err := rom.New(rom.DefaultSize, rom.FillByte)
	assert.NoError(t, err)
	assert.NoError(t, Encode(img, LoROMBase, Header{Title: "  ABC"}))

	got, err := Decode(img, LoROMBase)
	assert.NoError(t, err)
	assert.Equal(t, "  ABC", got.Title)
}

func TestEncodeOutOfBounds(t *testing.T) {
	img, err := rom.New(0x100, rom.FillByte)
	assert.NoError(t, err)

	err = Encode(img, 0xF0, Header{Title: "X"})
	assert.True(t, errors.Is(err, ErrFieldOverflow))
	assert.True(t, errors.Is(err, rom.ErrOutOfBounds))
}

func TestSizeClass(t *testing.T) {
	assert.Equal(t, byte(5), SizeClass(32*1024))
	assert.Equal(t, byte(6), SizeClass(32*1024+1))
	assert.Equal(t, byte(8), SizeClass(256*1024))
	assert.Equal(t, byte(0), SizeClass(1))
}

func TestNames(t *testing.T) {
	assert.Equal(t, "LoROM", MapModeName(0x20))
	assert.Equal(t, "FastHiROM", MapModeName(0x31))
	assert.Equal(t, "Unknown ($42)", MapModeName(0x42))
	assert.Equal(t, "Japan", RegionName(RegionJapan))
	assert.Equal(t, "Unknown ($7F)", RegionName(0x7F))
	assert.Equal(t, "SA1", CoprocessorName(0x34))

	assert.True(t, IsLoROM(MapModeLoROM))
	assert.True(t, IsLoROM(MapModeFastLoROM))
	assert.False(t, IsLoROM(MapModeHiROM))
	assert.True(t, IsHiROM(MapModeFastHiROM))
}

func TestLocate(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		base       int
		mapMode    byte
		wantBase   int
		wantCopier bool
	}{
		{name: "lorom", size: 0x8000, base: LoROMBase, mapMode: MapModeLoROM, wantBase: LoROMBase},
		{name: "hirom", size: 0x10000, base: HiROMBase, mapMode: MapModeHiROM, wantBase: HiROMBase},
		{name: "copier header", size: 0x8200, base: CopierHeaderSize + LoROMBase, mapMode: MapModeLoROM,
			wantBase: CopierHeaderSize + LoROMBase, wantCopier: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := rom.New(tt.size, 0x00)
			assert.NoError(t, err)
			assert.NoError(t, Encode(img, tt.base, Header{Title: "TEST ROM", MapMode: tt.mapMode, ROMSize: 8}))

			loc, err := Locate(img)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantBase, loc.Base)
			assert.Equal(t, tt.wantCopier, loc.CopierHeader)
		})
	}

	t.Run("odd size without copier header", func(t *testing.T) {
		img, err := rom.New(0x8200, 0xFF)
		assert.NoError(t, err)
		assert.NoError(t, Encode(img, LoROMBase, Header{Title: "ODD SIZE", MapMode: MapModeLoROM, ROMSize: 6}))

		loc, err := Locate(img)
		assert.NoError(t, err)
		assert.Equal(t, LoROMBase, loc.Base)
		assert.False(t, loc.CopierHeader)
	})

	t.Run("too small", func(t *testing.T) {
		img, err := rom.New(0x100, 0x00)
		assert.NoError(t, err)
		_, err = Locate(img)
		assert.True(t, errors.Is(err, ErrNoHeader))
	})
}
