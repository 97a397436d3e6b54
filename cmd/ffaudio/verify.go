package main

import (
	"context"
	"fmt"

	"github.com/samcharles93/ffaudio/internal/export"
	"github.com/urfave/cli/v3"
)

func verifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Check exported files against a manifest",
		ArgsUsage: "<manifest.json>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := requireArg(cmd, "manifest path")
			if err != nil {
				return err
			}
			report, err := export.ReadManifest(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			bad, err := report.Verify()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			for _, p := range bad {
				_, _ = fmt.Fprintf(stdout, "  MISMATCH %s\n", p)
			}
			if len(bad) > 0 {
				return cli.Exit(fmt.Sprintf("error: %d of %d file(s) do not match", len(bad), len(report.Files)), 1)
			}
			_, _ = fmt.Fprintf(stdout, "%d file(s) OK\n", len(report.Files))
			return nil
		},
	}
}
