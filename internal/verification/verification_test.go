package verification

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mp3/ccsnes/internal/builder"
	"github.com/mp3/ccsnes/internal/checksum"
	"github.com/mp3/ccsnes/internal/config"
	"github.com/mp3/ccsnes/internal/header"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func writeBuiltROM(t *testing.T, opts builder.Options) (string, []byte) {
	t.Helper()
	data, err := builder.New(log.NewTestLogger(t), opts).Build()
	assert.NoError(t, err)

	path := filepath.Join(t.TempDir(), "simple_test.sfc")
	assert.NoError(t, os.WriteFile(path, data, 0600))
	return path, data
}

func TestVerifyOutput(t *testing.T) {
	logger := log.NewTestLogger(t)
	path, data := writeBuiltROM(t, builder.DefaultOptions())

	pair, err := VerifyOutput(context.Background(), logger, path, data, header.LoROMBase)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x4958), pair.Checksum)
	assert.Equal(t, uint16(0xB6A7), pair.Complement)
}

func TestVerifyOutputOddSize(t *testing.T) {
	opts := builder.DefaultOptions()
	opts.Size = 0x8200
	path, data := writeBuiltROM(t, opts)
	assert.Len(t, data, 0x8200)

	_, err := VerifyOutput(context.Background(), log.NewTestLogger(t), path, data, header.LoROMBase)
	assert.NoError(t, err)
}

func TestVerifyOutputMismatch(t *testing.T) {
	// mismatches are logged at error level
	logger := config.CreateLogger(false, true)
	path, data := writeBuiltROM(t, builder.DefaultOptions())

	expected := append([]byte(nil), data...)
	expected[0x100] ^= 0xFF
	expected[0x200] ^= 0xFF
	_, err := VerifyOutput(context.Background(), logger, path, expected, header.LoROMBase)
	assert.True(t, errors.Is(err, ErrMismatch))
	assert.ErrorContains(t, err, "2 offset mismatches")

	_, err = VerifyOutput(context.Background(), logger, path, data[:0x4000], header.LoROMBase)
	assert.True(t, errors.Is(err, ErrMismatch))
	assert.ErrorContains(t, err, "mismatched lengths")
}

func TestVerifyOutputChecksum(t *testing.T) {
	logger := log.NewTestLogger(t)
	_, data := writeBuiltROM(t, builder.DefaultOptions())

	data[header.LoROMBase+header.ChecksumOffset] ^= 0x01
	path := filepath.Join(t.TempDir(), "corrupt.sfc")
	assert.NoError(t, os.WriteFile(path, data, 0600))

	_, err := VerifyOutput(context.Background(), logger, path, data, header.LoROMBase)
	assert.True(t, errors.Is(err, checksum.ErrComplement))
}

func TestVerifyOutputCanceled(t *testing.T) {
	logger := log.NewTestLogger(t)
	path, data := writeBuiltROM(t, builder.DefaultOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := VerifyOutput(ctx, logger, path, data, header.LoROMBase)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestVerifyOutputRequiresPath(t *testing.T) {
	_, err := VerifyOutput(context.Background(), log.NewTestLogger(t), "", nil, header.LoROMBase)
	assert.ErrorContains(t, err, "console output")
}
