package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samcharles93/ffaudio/internal/export"
	"github.com/samcharles93/ffaudio/internal/logger"
	"github.com/samcharles93/ffaudio/internal/session"
	"github.com/urfave/cli/v3"
)

func exportCmd() *cli.Command {
	var (
		filter   string
		names    []string
		manifest string
	)
	return &cli.Command{
		Name:      "export",
		Usage:     "Export the sounds of a fast file",
		ArgsUsage: "<file.ff>",
		Flags: append(selectFlags(&filter, &names),
			&cli.StringFlag{
				Name:        "manifest",
				Usage:       "write a JSON manifest with BLAKE3 digests to this path",
				Destination: &manifest,
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
			return runExport(ctx, sess, filter, names, manifest)
		},
	}
}

// runExport exports the selected sounds of a loaded session and prints a
// summary.
func runExport(ctx context.Context, sess *session.Session, filter string, names []string, manifest string) error {
	log := logger.FromContext(ctx)
	sounds := sess.Select(filter, names)
	if len(sounds) == 0 {
		log.Warn("no sounds selected", "filter", filter, "names", names)
		return nil
	}

	report, err := sess.Export(ctx, sounds, newProgress(ctx, stderr, "Exporting"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	printReport(stdout, report)

	if manifest != "" {
		if err := report.WriteManifest(manifest); err != nil {
			return cli.Exit(fmt.Sprintf("error: %v", err), 1)
		}
		log.Info("wrote manifest", "path", manifest)
	}
	if report.Cancelled {
		return cli.Exit("error: export cancelled", 1)
	}
	return nil
}

func printReport(w io.Writer, r *export.Report) {
	var bytes int64
	for _, f := range r.Files {
		bytes += f.Bytes
	}
	_, _ = fmt.Fprintf(w, "Exported %s of %s sound(s) (%s) to %s in %s\n",
		humanize.Comma(int64(r.Exported)), humanize.Comma(int64(r.Total)),
		humanize.IBytes(uint64(max(bytes, 0))), r.Root, r.Elapsed.Round(time.Millisecond))
	if r.Skipped > 0 {
		_, _ = fmt.Fprintf(w, "Skipped %s sound(s); see the log for details\n", humanize.Comma(int64(r.Skipped)))
	}
}
