package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/samcharles93/ffaudio/pkg/fastfile"
	"github.com/urfave/cli/v3"
)

func listCmd() *cli.Command {
	var (
		filter string
		names  []string
		asJSON bool
	)
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List the sounds in a fast file",
		ArgsUsage: "<file.ff>",
		Flags: append(selectFlags(&filter, &names),
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print sounds as JSON",
				Destination: &asJSON,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := requireArg(cmd, "fast file path")
			if err != nil {
				return err
			}
			sess, err := loadFastFile(ctx, path)
			if err != nil {
				return err
			}
			defer sess.Close(ctx)

			sounds := sess.Select(filter, names)
			if asJSON {
				return writeJSON(stdout, sounds)
			}
			printSounds(stdout, sounds)
			return nil
		},
	}
}

func printSounds(w io.Writer, sounds []fastfile.Sound) {
	var total int64
	for _, s := range sounds {
		total += s.Size
		_, _ = fmt.Fprintf(w, "  %-60s %-7s %6d Hz %2d ch %12s %10s  %s\n",
			s.FilePath, s.Format, s.FrameRate, s.Channels, s.DisplayLength(), humanize.IBytes(uint64(max(s.Size, 0))), s.Location)
	}
	_, _ = fmt.Fprintf(w, "\n%s sound(s), %s\n", humanize.Comma(int64(len(sounds))), humanize.IBytes(uint64(max(total, 0))))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return cli.Exit(fmt.Sprintf("error: encode json: %v", err), 1)
	}
	return nil
}
