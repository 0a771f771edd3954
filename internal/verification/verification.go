// Package verification verifies that the written output file contains the built image.
package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/mp3/ccsnes/internal/checksum"
	"github.com/mp3/ccsnes/internal/loader"
	"github.com/mp3/ccsnes/internal/rom"
	"github.com/retroenv/retrogolib/log"
)

const maxReportedMismatches = 10

var ErrMismatch = errors.New("output mismatch")

// VerifyOutput reloads the file at path and checks that it recreates the
// expected image byte for byte and that the checksum pair stored at the
// header base is valid. The file is compared as stored, without copier
// header detection.
func VerifyOutput(ctx context.Context, logger *log.Logger, path string, expected []byte, base int) (checksum.Pair, error) {
	if path == "" {
		return checksum.Pair{}, errors.New("can not verify console output")
	}

	data, err := loader.New().LoadRaw(path)
	if err != nil {
		return checksum.Pair{}, fmt.Errorf("reloading output: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return checksum.Pair{}, fmt.Errorf("verification canceled: %w", err)
	}

	if err := checkBufferEqual(logger, expected, data); err != nil {
		return checksum.Pair{}, fmt.Errorf("comparing image: %w", err)
	}

	img, err := rom.FromBytes(data, rom.FillByte)
	if err != nil {
		return checksum.Pair{}, fmt.Errorf("loading image: %w", err)
	}
	pair, err := checksum.Verify(img, base)
	if err != nil {
		return pair, fmt.Errorf("verifying checksum: %w", err)
	}
	return pair, nil
}

func checkBufferEqual(logger *log.Logger, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("%w: mismatched lengths, %d != %d", ErrMismatch, len(input), len(output))
	}

	var diffs uint64
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if diffs < maxReportedMismatches {
			logger.Error("Offset mismatch",
				log.Hex("offset", i),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d offset mismatches", ErrMismatch, diffs)
}
