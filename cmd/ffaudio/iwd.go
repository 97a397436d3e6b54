package main

import (
	"context"
	"fmt"

	"github.com/samcharles93/ffaudio/internal/session"
	"github.com/urfave/cli/v3"
)

func iwdCmd() *cli.Command {
	var (
		filter   string
		names    []string
		manifest string
	)
	load := func(ctx context.Context, cmd *cli.Command) (*session.Session, error) {
		path, err := requireArg(cmd, "archive path")
		if err != nil {
			return nil, err
		}
		sess := newSession(ctx)
		if _, err := sess.LoadArchive(ctx, path); err != nil {
			sess.Close(ctx)
			return nil, cli.Exit(fmt.Sprintf("error: %v", err), 1)
		}
		return sess, nil
	}

	return &cli.Command{
		Name:  "iwd",
		Usage: "List or export the .wav entries of an IWD archive",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List sounds in an archive",
				ArgsUsage: "<file.iwd>",
				Flags:     selectFlags(&filter, &names),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					sess, err := load(ctx, cmd)
					if err != nil {
						return err
					}
					defer sess.Close(ctx)
					printSounds(stdout, sess.Select(filter, names))
					return nil
				},
			},
			{
				Name:      "export",
				Usage:     "Export sounds from an archive",
				ArgsUsage: "<file.iwd>",
				Flags: append(selectFlags(&filter, &names),
					&cli.StringFlag{
						Name:        "manifest",
						Usage:       "write a JSON manifest with BLAKE3 digests to this path",
						Destination: &manifest,
					},
				),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					sess, err := load(ctx, cmd)
					if err != nil {
						return err
					}
					defer sess.Close(ctx)
					return runExport(ctx, sess, filter, names, manifest)
				},
			},
		},
	}
}
