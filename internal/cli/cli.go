// Package cli handles command line interface logic
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mp3/ccsnes/internal/config"
	"github.com/mp3/ccsnes/internal/fileprocessor"
	"github.com/mp3/ccsnes/internal/options"
	"github.com/mp3/ccsnes/internal/pipeline"
	"github.com/retroenv/retrogolib/log"
	"github.com/urfave/cli/v2"
)

// Flag names shared between the default action and the build command.
const (
	flagOutput        = "output"
	flagCatalog       = "catalog"
	flagFormat        = "format"
	flagVerify        = "verify"
	flagStrict        = "strict"
	flagDebug         = "debug"
	flagQuiet         = "q"
	flagTitle         = "title"
	flagSize          = "size"
	flagMapMode       = "map-mode"
	flagCartridgeType = "cartridge-type"
	flagROMSize       = "rom-size"
	flagRAMSize       = "ram-size"
	flagRegion        = "region"
	flagMaker         = "maker"
	flagROMVersion    = "rom-version"
	flagEntry         = "entry"
)

// VersionInfo is the build information printed in the banner.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewApp returns the command line application. Building the test ROM is the
// default action.
func NewApp(info VersionInfo) *cli.App {
	app := cli.NewApp()
	app.Name = "ccsnes"
	app.Usage = "SNES LoROM test cartridge builder"
	app.Version = info.Version
	app.HideHelpCommand = true

	app.Flags = append(globalFlags(), buildFlags()...)
	app.Action = func(c *cli.Context) error {
		return buildAction(c, info)
	}

	app.Commands = []*cli.Command{
		{
			Name:  "build",
			Usage: "Build the test ROM and write it to the output file",
			Flags: buildFlags(),
			Action: func(c *cli.Context) error {
				return buildAction(c, info)
			},
		},
		{
			Name:      "info",
			Usage:     "Print the header of cartridge images and check their checksums, accepts glob patterns",
			ArgsUsage: "FILE...",
			Action:    infoAction,
		},
		{
			Name:   "list",
			Usage:  "List the builds recorded in the catalog",
			Action: listAction,
		},
	}

	return app
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagCatalog,
			EnvVars: []string{config.EnvCatalog},
			Usage:   "sqlite database to record builds in, disabled if empty",
		},
		&cli.BoolFlag{
			Name:  flagDebug,
			Usage: "enable debugging options for extended logging",
		},
		&cli.BoolFlag{
			Name:  flagQuiet,
			Usage: "perform operations quietly",
		},
	}
}

func buildFlags() []cli.Flag {
	def := options.New()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagOutput,
			Aliases: []string{"o"},
			EnvVars: []string{config.EnvOutput},
			Value:   def.Output,
			Usage:   "name of the output image file",
		},
		&cli.StringFlag{
			Name:    flagFormat,
			Aliases: []string{"f"},
			Value:   def.Format,
			Usage:   fmt.Sprintf("output format (%s/%s)", options.FormatBinary, options.FormatHex),
		},
		&cli.BoolFlag{Name: flagVerify, Usage: "reload the written file and check that it matches the built image"},
		&cli.BoolFlag{Name: flagStrict, Usage: "fail instead of warn on inconsistent header values"},
		&cli.StringFlag{Name: flagTitle, Value: def.Title, Usage: "cartridge title, at most 21 printable ASCII characters"},
		&cli.IntFlag{Name: flagSize, Value: def.Size, Usage: "image size in bytes"},
		&cli.UintFlag{Name: flagMapMode, Value: def.MapMode, Usage: "map mode byte"},
		&cli.UintFlag{Name: flagCartridgeType, Value: def.CartridgeType, Usage: "cartridge type byte"},
		&cli.UintFlag{Name: flagROMSize, Value: def.ROMSize, Usage: "ROM size class byte"},
		&cli.UintFlag{Name: flagRAMSize, Value: def.RAMSize, Usage: "RAM size class byte"},
		&cli.UintFlag{Name: flagRegion, Value: def.Region, Usage: "region code byte"},
		&cli.UintFlag{Name: flagMaker, Value: def.Maker, Usage: "maker code byte"},
		&cli.UintFlag{Name: flagROMVersion, Value: def.Version, Usage: "version byte"},
		&cli.UintFlag{Name: flagEntry, Value: def.EntryVector, Usage: "reset vector address"},
	}
}

// ProgramOptions reads the program options from the parsed flags. Build
// flags may be given before or after the build command.
func ProgramOptions(c *cli.Context) options.Program {
	opts := options.New()
	opts.Output = setContext(c, flagOutput).String(flagOutput)
	opts.Catalog = c.String(flagCatalog)
	opts.Format = strings.ToLower(setContext(c, flagFormat).String(flagFormat))
	opts.Verify = setContext(c, flagVerify).Bool(flagVerify)
	opts.Strict = setContext(c, flagStrict).Bool(flagStrict)
	opts.Debug = c.Bool(flagDebug)
	opts.Quiet = c.Bool(flagQuiet)

	opts.Title = setContext(c, flagTitle).String(flagTitle)
	opts.Size = setContext(c, flagSize).Int(flagSize)
	opts.MapMode = setContext(c, flagMapMode).Uint(flagMapMode)
	opts.CartridgeType = setContext(c, flagCartridgeType).Uint(flagCartridgeType)
	opts.ROMSize = setContext(c, flagROMSize).Uint(flagROMSize)
	opts.RAMSize = setContext(c, flagRAMSize).Uint(flagRAMSize)
	opts.Region = setContext(c, flagRegion).Uint(flagRegion)
	opts.Maker = setContext(c, flagMaker).Uint(flagMaker)
	opts.Version = setContext(c, flagROMVersion).Uint(flagROMVersion)
	opts.EntryVector = setContext(c, flagEntry).Uint(flagEntry)
	return opts
}

// setContext returns the nearest context in which the flag was set, or c if
// it was not set anywhere.
func setContext(c *cli.Context, name string) *cli.Context {
	for _, ctx := range c.Lineage() {
		if ctx.Command != nil && ctx.IsSet(name) {
			return ctx
		}
	}
	return c
}

func newLogger(c *cli.Context) *log.Logger {
	return config.CreateLogger(c.Bool(flagDebug), c.Bool(flagQuiet))
}

func buildAction(c *cli.Context, info VersionInfo) error {
	if c.NArg() > 0 {
		return cli.Exit(fmt.Sprintf("unexpected argument %s, the build takes no positional arguments", c.Args().First()), 1)
	}

	opts := ProgramOptions(c)
	logger := newLogger(c)
	PrintBanner(logger, opts, info)

	if _, err := pipeline.New(logger).Execute(c.Context, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return nil
		}
		logger.Error("Building failed", log.Err(err))
		return cli.Exit(err, 1)
	}
	return nil
}

func infoAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("missing FILE argument", 1)
	}

	files, err := fileprocessor.GetFilesToProcess(c.Args().Slice())
	if err != nil {
		return cli.Exit(err, 1)
	}

	logger := newLogger(c)
	p := pipeline.New(logger)
	err = fileprocessor.ProcessFiles(c.Context, files, func(file string) error {
		report, err := p.Info(file)
		if err != nil {
			return err
		}
		return report.ChecksumErr
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return nil
		}
		return cli.Exit(err, 1)
	}
	return nil
}

func listAction(c *cli.Context) error {
	file := c.String(flagCatalog)
	if file == "" {
		return cli.Exit(fmt.Sprintf("no catalog given, set --%s or %s", flagCatalog, config.EnvCatalog), 1)
	}

	logger := newLogger(c)
	entries, err := pipeline.New(logger).List(file)
	if err != nil {
		return cli.Exit(err, 1)
	}

	for _, e := range entries {
		logger.Info("Build",
			log.Int("id", int(e.ID)),
			log.String("title", e.Title),
			log.String("path", e.Path),
			log.Int("size", e.Size),
			log.Hex("checksum", e.Checksum.Checksum),
			log.String("crc32", e.CRC32),
		)
	}
	if len(entries) == 0 {
		logger.Info("Catalog is empty", log.String("file", file))
	}
	return nil
}
