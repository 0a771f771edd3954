package cli

import (
	"fmt"
	"strings"

	"github.com/mp3/ccsnes/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, info VersionInfo) {
	if opts.Quiet {
		return
	}

	versionString := info.Version
	if commit := info.Commit; commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("ccsnes", log.String("version", versionString))

	if info.Date != "" && !strings.Contains(info.Date, "unknown") {
		logger.Info("Build", log.String("date", info.Date))
	}
}
