// Package pipeline orchestrates the build workflow stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mp3/ccsnes/internal/bootstrap"
	"github.com/mp3/ccsnes/internal/builder"
	"github.com/mp3/ccsnes/internal/catalog"
	"github.com/mp3/ccsnes/internal/checksum"
	"github.com/mp3/ccsnes/internal/header"
	"github.com/mp3/ccsnes/internal/loader"
	"github.com/mp3/ccsnes/internal/options"
	"github.com/mp3/ccsnes/internal/verification"
	"github.com/mp3/ccsnes/internal/writer"
	"github.com/retroenv/retrogolib/log"
)

// Result describes a finished build.
type Result struct {
	Output    string
	Image     []byte
	Checksum  checksum.Pair
	Warnings  []builder.Warning
	CatalogID int64 // 0 if no catalog was used
}

// Report describes an inspected image file.
type Report struct {
	Cartridge *loader.Cartridge
	Checksum  checksum.Pair
	// ChecksumErr is set if the stored checksum pair does not match the content.
	ChecksumErr error
}

// Pipeline orchestrates the complete build workflow.
type Pipeline struct {
	logger *log.Logger
	loader *loader.Loader
}

// New creates a new build pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
		loader: loader.New(),
	}
}

// Execute builds the image described by opts, writes it and optionally
// verifies and records it.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("validating options: %w", err)
	}

	buildOpts := opts.Builder()
	b := builder.New(p.logger, buildOpts)
	data, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("building image: %w", err)
	}
	result := &Result{
		Output:   outputPath(opts.Output, opts.Format),
		Image:    data,
		Checksum: b.Checksum(),
		Warnings: b.Warnings(),
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build canceled: %w", err)
	}

	w, err := writer.New(opts.Format)
	if err != nil {
		return nil, fmt.Errorf("creating writer: %w", err)
	}
	if err := w.WriteFile(result.Output, data, uint16(opts.EntryVector)); err != nil {
		return nil, fmt.Errorf("writing image: %w", err)
	}

	if opts.Verify {
		if _, err := verification.VerifyOutput(ctx, p.logger, result.Output, data, buildOpts.HeaderBase); err != nil {
			return nil, fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful")
	}

	if opts.Catalog != "" {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build canceled: %w", err)
		}
		id, err := p.record(opts, result)
		if err != nil {
			return nil, err
		}
		result.CatalogID = id
	}

	p.printSummary(opts, result)
	return result, nil
}

// Info loads an image file and checks its stored checksum pair.
func (p *Pipeline) Info(path string) (*Report, error) {
	cart, err := p.loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading cartridge: %w", err)
	}

	report := &Report{Cartridge: cart}
	report.Checksum, report.ChecksumErr = checksum.Verify(cart.Image, cart.Location.Base)
	if report.ChecksumErr != nil && !errors.Is(report.ChecksumErr, checksum.ErrChecksum) &&
		!errors.Is(report.ChecksumErr, checksum.ErrComplement) {
		return nil, fmt.Errorf("verifying checksum: %w", report.ChecksumErr)
	}

	h := cart.Header
	p.logger.Info("Cartridge",
		log.String("file", path),
		log.String("title", h.Title),
		log.String("map mode", header.MapModeName(h.MapMode)),
		log.String("chips", header.CoprocessorName(h.CartridgeType)),
		log.String("region", header.RegionName(h.Region)),
		log.Int("rom size", h.ROMBytes()),
		log.Int("ram size", h.RAMBytes()),
		log.Uint8("version", h.Version),
		log.Hex("header", cart.Location.Base),
	)
	if report.ChecksumErr != nil {
		p.logger.Warn("Invalid checksum", log.Err(report.ChecksumErr))
	} else {
		p.logger.Info("Checksum valid", log.Stringer("pair", report.Checksum))
	}
	return report, nil
}

// List returns all builds recorded in the catalog file.
func (p *Pipeline) List(file string) ([]catalog.Entry, error) {
	c, err := catalog.Open(file)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()

	entries, err := c.List()
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}
	return entries, nil
}

func (p *Pipeline) record(opts options.Program, result *Result) (int64, error) {
	c, err := catalog.Open(opts.Catalog)
	if err != nil {
		return 0, err
	}
	defer func() { _ = c.Close() }()

	id, err := c.Record(catalog.NewEntry(opts.Title, result.Output, result.Image, result.Checksum))
	if err != nil {
		return 0, fmt.Errorf("recording build: %w", err)
	}
	return id, nil
}

// printSummary prints information about the written image.
func (p *Pipeline) printSummary(opts options.Program, result *Result) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Test ROM created",
		log.String("file", result.Output),
		log.String("title", opts.Title),
		log.Int("size", len(result.Image)),
		log.Hex("checksum", result.Checksum.Checksum),
		log.Hex("complement", result.Checksum.Complement),
	)

	for _, line := range CodeListing(uint16(opts.EntryVector)) {
		p.logger.Debug("Code",
			log.Hex("address", line.Address),
			log.String("instruction", line.Text),
		)
	}
}

// Line is one instruction of the code listing.
type Line struct {
	Address uint16
	Text    string
}

// CodeListing returns the reset routine with the CPU address of every
// instruction, starting at the entry vector.
func CodeListing(entry uint16) []Line {
	lines := make([]Line, 0, len(bootstrap.ResetRoutine))
	address := entry
	for _, ins := range bootstrap.ResetRoutine {
		lines = append(lines, Line{Address: address, Text: ins.Text})
		address += uint16(len(ins.Bytes))
	}
	return lines
}

// outputPath switches the extension of raw image paths to .hex for Intel HEX output.
func outputPath(path, format string) string {
	if format == options.FormatHex && !strings.EqualFold(filepath.Ext(path), ".hex") {
		return writer.OutputFilename(path, format)
	}
	return path
}
