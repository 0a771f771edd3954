// Package main implements the main entry point for the SNES test cartridge builder
package main

import (
	"os"

	"github.com/mp3/ccsnes/internal/cli"
	"github.com/retroenv/retrogolib/app"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	a := cli.NewApp(cli.VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	if err := a.RunContext(ctx, os.Args); err != nil {
		os.Exit(1)
	}
}
