package main

import (
	"context"
	"fmt"

	"github.com/samcharles93/ffaudio/internal/version"
	"github.com/urfave/cli/v3"
)

func versionCmd() *cli.Command {
	var asJSON bool
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print as JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			info := version.Resolve()
			if asJSON {
				return writeJSON(stdout, info)
			}
			_, _ = fmt.Fprintf(stdout, "version:    %s\n", info.Version)
			if info.Commit != "" {
				_, _ = fmt.Fprintf(stdout, "commit:     %s\n", info.Commit)
			}
			if info.BuildTime != "" {
				_, _ = fmt.Fprintf(stdout, "build time: %s\n", info.BuildTime)
			}
			return nil
		},
	}
}
