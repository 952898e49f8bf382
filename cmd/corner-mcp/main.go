package main

import (
	"fmt"
	"os"

	"github.com/ironsheep/corner-tools-mcp/internal/config"
	"github.com/ironsheep/corner-tools-mcp/internal/logger"
	"github.com/ironsheep/corner-tools-mcp/internal/server"
)

// Set by ldflags during build.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `corner-mcp - MCP server for Harris and Shi-Tomasi corner detection

Usage: corner-mcp [--version | --help]

Environment:
  ` + logger.EnvLogLevel + `=debug|info|warn|error   log level, default info
  ` + config.EnvConfigPath + `=/path/to/tuning.json        detector tuning file

Requests are read from stdin and answered on stdout; logs go to stderr.
`

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("corner-mcp %s (built %s, commit %s)\n", Version, BuildTime, GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Print(usage)
			return
		default:
			fmt.Fprintf(os.Stderr, "unknown argument %q\n\n%s", os.Args[1], usage)
			os.Exit(2)
		}
	}

	log := logger.NewFromEnv()

	tuning, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Str("path", os.Getenv(config.EnvConfigPath)).Msg("failed to load tuning config")
	}

	log.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Bool("tuning_file", os.Getenv(config.EnvConfigPath) != "").
		Msg("corner MCP server starting")

	server.Version = Version
	if err := server.NewWithConfig(tuning, log).Run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
