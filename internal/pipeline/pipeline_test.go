package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mp3/ccsnes/internal/bootstrap"
	"github.com/mp3/ccsnes/internal/builder"
	"github.com/mp3/ccsnes/internal/checksum"
	"github.com/mp3/ccsnes/internal/header"
	"github.com/mp3/ccsnes/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func testOptions(t *testing.T) options.Program {
	t.Helper()
	opts := options.New()
	opts.Output = filepath.Join(t.TempDir(), "tests", "test_roms", "simple_test.sfc")
	return opts
}

func TestNew(t *testing.T) {
	p := New(log.NewTestLogger(t))

	assert.NotNil(t, p)
	assert.NotNil(t, p.logger)
	assert.NotNil(t, p.loader)
}

func TestExecute(t *testing.T) {
	p := New(log.NewTestLogger(t))
	opts := testOptions(t)
	opts.Verify = true

	result, err := p.Execute(context.Background(), opts)
	assert.NoError(t, err)
	assert.Equal(t, opts.Output, result.Output)
	assert.Equal(t, uint16(0x4958), result.Checksum.Checksum)
	assert.Equal(t, uint16(0xB6A7), result.Checksum.Complement)
	assert.Len(t, result.Warnings, 1)
	assert.Equal(t, int64(0), result.CatalogID)

	written, err := os.ReadFile(opts.Output)
	assert.NoError(t, err)
	assert.True(t, bytes.Equal(result.Image, written))
}

func TestExecuteHex(t *testing.T) {
	p := New(log.NewTestLogger(t))
	opts := testOptions(t)
	opts.Format = "HEX"
	opts.Verify = true

	result, err := p.Execute(context.Background(), opts)
	assert.NoError(t, err)
	assert.Equal(t, ".hex", filepath.Ext(result.Output))

	report, err := p.Info(result.Output)
	assert.NoError(t, err)
	assert.NoError(t, report.ChecksumErr)
	assert.Equal(t, builder.DefaultTitle, report.Cartridge.Header.Title)
}

func TestExecuteCatalog(t *testing.T) {
	p := New(log.NewTestLogger(t))
	opts := testOptions(t)
	opts.Catalog = filepath.Join(t.TempDir(), "builds.db")

	result, err := p.Execute(context.Background(), opts)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), result.CatalogID)

	entries, err := p.List(opts.Catalog)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, builder.DefaultTitle, entries[0].Title)
	assert.Equal(t, opts.Output, entries[0].Path)
	assert.Equal(t, uint16(0x4958), entries[0].Checksum.Checksum)
}

func TestExecuteErrors(t *testing.T) {
	p := New(log.NewTestLogger(t))

	opts := testOptions(t)
	opts.Format = "bin"
	_, err := p.Execute(context.Background(), opts)
	assert.ErrorContains(t, err, "unsupported output format")

	opts = testOptions(t)
	opts.Strict = true
	_, err = p.Execute(context.Background(), opts)
	assert.True(t, errors.Is(err, builder.ErrInconsistent))
	_, statErr := os.Stat(opts.Output)
	assert.True(t, os.IsNotExist(statErr), "no file must be written on build errors")

	opts = testOptions(t)
	opts.MapMode = 0x100
	_, err = p.Execute(context.Background(), opts)
	assert.True(t, errors.Is(err, builder.ErrFieldOverflow))
}

func TestExecuteCanceled(t *testing.T) {
	p := New(log.NewTestLogger(t))
	opts := testOptions(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Execute(ctx, opts)
	assert.True(t, errors.Is(err, context.Canceled))
	_, statErr := os.Stat(opts.Output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestInfoInvalidChecksum(t *testing.T) {
	p := New(log.NewTestLogger(t))
	opts := testOptions(t)

	result, err := p.Execute(context.Background(), opts)
	assert.NoError(t, err)

	data := append([]byte(nil), result.Image...)
	data[0x20] ^= 0xFF
	path := filepath.Join(t.TempDir(), "patched.sfc")
	assert.NoError(t, os.WriteFile(path, data, 0600))

	report, err := p.Info(path)
	assert.NoError(t, err)
	assert.True(t, errors.Is(report.ChecksumErr, checksum.ErrChecksum))
	assert.Equal(t, header.LoROMBase, report.Cartridge.Location.Base)
}

func TestInfoMissingFile(t *testing.T) {
	_, err := New(log.NewTestLogger(t)).Info(filepath.Join(t.TempDir(), "missing.sfc"))
	assert.ErrorContains(t, err, "loading cartridge")
}

func TestExecuteVerifyOddSize(t *testing.T) {
	p := New(log.NewTestLogger(t))
	opts := testOptions(t)
	opts.Size = 0x8200
	opts.Verify = true

	result, err := p.Execute(context.Background(), opts)
	assert.NoError(t, err)
	assert.Len(t, result.Image, 0x8200)

	report, err := p.Info(result.Output)
	assert.NoError(t, err)
	assert.NoError(t, report.ChecksumErr)
	assert.False(t, report.Cartridge.Location.CopierHeader)
	assert.Equal(t, builder.DefaultTitle, report.Cartridge.Header.Title)
}

func TestCodeListing(t *testing.T) {
	lines := CodeListing(0x8000)
	assert.Len(t, lines, len(bootstrap.ResetRoutine))
	assert.Equal(t, uint16(0x8000), lines[0].Address)
	assert.Equal(t, "sei", lines[0].Text)
	assert.Equal(t, uint16(0x8003), lines[3].Address)

	shifted := CodeListing(0x8010)
	assert.Equal(t, uint16(0x8010), shifted[0].Address)
	assert.Equal(t, uint16(0x8013), shifted[3].Address)
	// bra * is the final two bytes of the 43 byte routine
	last := shifted[len(shifted)-1]
	assert.Equal(t, "bra *", last.Text)
	assert.Equal(t, uint16(0x8010+41), last.Address)
}
