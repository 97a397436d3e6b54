package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/samcharles93/ffaudio/pkg/fastfile"
	"github.com/urfave/cli/v3"
)

func gamesCmd() *cli.Command {
	return &cli.Command{
		Name:    "games",
		Aliases: []string{"profiles"},
		Usage:   "List supported fast file versions",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			for _, p := range fastfile.Profiles() {
				line := fmt.Sprintf("  %-28s %s 0x%-5X %s", p.Name, p.Magic, p.Version, p.Codec())
				if p.Alias != nil {
					line += " (as " + p.Alias.Name + ")"
				}
				_, _ = fmt.Fprintln(stdout, line)
			}
			return nil
		},
	}
}

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print a fast file's header and the profile it maps to",
		ArgsUsage: "<file.ff>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := requireArg(cmd, "fast file path")
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			defer func() { _ = f.Close() }()

			info, err := f.Stat()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			h, err := fastfile.ReadHeader(f)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			_, _ = fmt.Fprintf(stdout, "file:      %s (%s)\n", path, humanize.IBytes(uint64(info.Size())))
			_, _ = fmt.Fprintf(stdout, "magic:     %s\n", h.Magic)
			_, _ = fmt.Fprintf(stdout, "version:   0x%X\n", h.Version)
			_, _ = fmt.Fprintf(stdout, "signed:    %t\n", h.IsSigned())

			p, ok := fastfile.Lookup(h.Magic, h.Version)
			if !ok {
				return cli.Exit(fmt.Sprintf("error: %v: version 0x%X with magic 0x%X", fastfile.ErrUnsupportedContainer, h.Version, uint32(h.Magic)), 1)
			}
			_, _ = fmt.Fprintf(stdout, "profile:   %s\n", p.Name)
			_, _ = fmt.Fprintf(stdout, "codec:     %s\n", p.Codec())
			_, _ = fmt.Fprintf(stdout, "payload:   0x%X\n", p.Skip)
			_, _ = fmt.Fprintf(stdout, "needle:    %s\n", hex.EncodeToString(p.Needle()))
			return nil
		},
	}
}
