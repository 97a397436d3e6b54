package main

import (
	"github.com/samcharles93/ffaudio/internal/export"
	"github.com/urfave/cli/v3"
)

var (
	configFile  string
	logLevel    string
	logFormat   string
	logFile     string
	debug       bool
	exportDir   string
	chunkSize   int64
	keepPayload bool
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Usage:       "path to config.yaml (default: $" + envConfig + " or the user config dir)",
		Destination: &configFile,
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "also append debug logs to this file",
			Destination: &logFile,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func sessionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "export-dir",
			Aliases:     []string{"o"},
			Usage:       "directory exports are written under",
			Value:       export.DefaultRoot,
			Destination: &exportDir,
		},
		&cli.Int64Flag{
			Name:        "chunk-size",
			Usage:       "inflate chunk size in bytes for zlib fast files",
			Value:       1 << 20,
			Destination: &chunkSize,
		},
		&cli.BoolFlag{
			Name:        "keep-payload",
			Usage:       "keep the .decompressed payload next to the fast file on exit",
			Destination: &keepPayload,
		},
	}
}

func selectFlags(filter *string, names *[]string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "filter",
			Aliases:     []string{"f"},
			Usage:       "only sounds whose path contains this text (case-insensitive)",
			Destination: filter,
		},
		&cli.StringSliceFlag{
			Name:        "name",
			Aliases:     []string{"n"},
			Usage:       "only sounds with this path or file name (repeatable)",
			Destination: names,
		},
	}
}
