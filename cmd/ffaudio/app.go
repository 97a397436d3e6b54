package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/samcharles93/ffaudio/internal/logger"
	"github.com/samcharles93/ffaudio/internal/session"
	"github.com/urfave/cli/v3"
)

// Output seams for tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var (
	logCloser    io.Closer
	loadedConfig Config
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "ffaudio",
		Usage: "Extract sounds from Call of Duty fast files",
		Flags: append(append([]cli.Flag{configFlag()}, loggingFlags()...), sessionFlags()...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			cfg, err := LoadConfig(configPath(configFile))
			if err != nil {
				return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			applyConfig(cmd, cfg)
			loadedConfig = cfg

			level := logger.ParseLevel(logLevel)
			if debug {
				level = logger.ParseLevel("debug")
			}
			log, closer, err := logger.Open(stderr, logger.Options{Level: level, Format: logFormat, File: logFile})
			if err != nil {
				return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			logCloser = closer
			return logger.WithContext(ctx, log), nil
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			if logCloser != nil {
				err := logCloser.Close()
				logCloser = nil
				return err
			}
			return nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			gamesCmd(),
			inspectCmd(),
			listCmd(),
			exportCmd(),
			iwdCmd(),
			verifyCmd(),
			serveCmd(),
			versionCmd(),
		},
	}
}

func newSession(ctx context.Context) *session.Session {
	return session.New(session.Options{
		ExportRoot:  exportDir,
		ChunkSize:   int(chunkSize),
		KeepPayload: keepPayload,
		Logger:      logger.FromContext(ctx),
	})
}

// loadFastFile loads path into a new session. The caller closes it.
func loadFastFile(ctx context.Context, path string) (*session.Session, error) {
	sess := newSession(ctx)
	if _, err := sess.Load(ctx, path, newProgress(ctx, stderr, "Decompressing")); err != nil {
		sess.Close(ctx)
		return nil, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	return sess, nil
}

func requireArg(cmd *cli.Command, what string) (string, error) {
	arg := cmd.Args().First()
	if arg == "" {
		return "", cli.Exit(fmt.Sprintf("error: %s is required", what), 1)
	}
	return arg, nil
}
