// Package export writes sounds from registered sources to disk.
package export

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samcharles93/ffaudio/internal/logger"
	"github.com/samcharles93/ffaudio/pkg/fastfile"
	"github.com/zeebo/blake3"
)

// DefaultRoot is the export directory used when none is configured.
const DefaultRoot = "exported_audio"

// Sources is the set of open audio sources an export reads from.
type Sources interface {
	Open() map[string]error
	Source(key string) (fastfile.Source, bool)
	Close() error
}

// Engine exports sounds under Root/<profile>/.
type Engine struct {
	Root    string
	Sources Sources
	Logger  logger.Logger
}

func New(root string, sources Sources, log logger.Logger) *Engine {
	if root == "" {
		root = DefaultRoot
	}
	return &Engine{Root: root, Sources: sources, Logger: log}
}

// ExportAll writes every sound it can and skips the rest with a warning.
// progress is consulted before each sound; a refusal or a cancelled ctx stops
// the batch and marks the report cancelled. Sources are closed on return.
func (e *Engine) ExportAll(ctx context.Context, profileName string, sounds []fastfile.Sound, progress fastfile.ProgressFunc) (*Report, error) {
	log := e.Logger
	if log == nil {
		log = logger.FromContext(ctx)
	}
	if progress == nil {
		progress = func(float64) bool { return true }
	}

	root, err := filepath.Abs(filepath.Join(e.Root, profileName))
	if err != nil {
		return nil, fmt.Errorf("resolve export root: %w", err)
	}

	report := &Report{Profile: profileName, Root: root, Total: len(sounds)}
	start := time.Now()

	log.Info("streaming audio locations")
	for key, err := range e.Sources.Open() {
		log.Warn("audio location unavailable", "location", key, "error", err)
	}
	defer func() {
		if err := e.Sources.Close(); err != nil {
			log.Warn("failed to close audio locations", "error", err)
		}
	}()

	for i, s := range sounds {
		if ctx.Err() != nil || !progress(float64(i)/float64(len(sounds))*100) {
			report.Cancelled = true
			break
		}
		f, err := e.exportSound(root, s)
		if err != nil {
			log.Warn("skipped sound", "path", s.FilePath, "location", s.Location, "error", err)
			report.Skipped++
			continue
		}
		log.Debug("exported sound", "path", f.Path, "bytes", f.Bytes)
		report.Files = append(report.Files, f)
		report.Exported++
	}
	if !report.Cancelled {
		progress(100)
	}

	report.Elapsed = time.Since(start)
	log.Info("export finished",
		"exported", report.Exported,
		"skipped", report.Skipped,
		"cancelled", report.Cancelled,
		"seconds", report.Elapsed.Seconds(),
	)
	return report, nil
}

func (e *Engine) exportSound(root string, s fastfile.Sound) (File, error) {
	src, ok := e.Sources.Source(s.Location)
	if !ok {
		return File{}, fmt.Errorf("%w: %s not loaded", fastfile.ErrSourceUnavailable, s.Location)
	}
	data, err := src.ReadSound(s)
	if err != nil {
		return File{}, err
	}

	ext, header := ".wav", []byte(nil)
	switch signature(data) {
	case fastfile.SignatureFLAC:
		ext = ".flac"
	case fastfile.SignatureRIFF:
	default:
		header = WAVHeader(len(data), s.FrameRate, s.Channels)
	}

	out, err := outputPath(root, s.FilePath, ext)
	if err != nil {
		return File{}, err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return File{}, fmt.Errorf("create output directory: %w", err)
	}
	return writeFile(out, s, header, data)
}

func writeFile(path string, s fastfile.Sound, header, data []byte) (File, error) {
	f, err := os.Create(path)
	if err != nil {
		return File{}, err
	}
	h := blake3.New()
	w := io.MultiWriter(f, h)
	if _, err := w.Write(header); err != nil {
		_ = f.Close()
		return File{}, err
	}
	if _, err := w.Write(data); err != nil {
		_ = f.Close()
		return File{}, err
	}
	if err := f.Close(); err != nil {
		return File{}, err
	}
	return File{
		Path:     path,
		Sound:    s.FilePath,
		Location: s.Location,
		Bytes:    int64(len(header) + len(data)),
		BLAKE3:   hex.EncodeToString(h.Sum(nil)),
	}, nil
}

func signature(data []byte) uint32 {
	if len(data) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(data)
}

var errEscapesRoot = errors.New("path escapes export root")

// outputPath maps a sound path to root/<path without extension><ext>. Game
// paths use either separator.
func outputPath(root, soundPath, ext string) (string, error) {
	rel := filepath.FromSlash(strings.ReplaceAll(soundPath, `\`, "/"))
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	if rel == "" || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %q", errEscapesRoot, soundPath)
	}
	out := filepath.Join(root, rel+ext)
	if r, err := filepath.Rel(root, out); err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", errEscapesRoot, soundPath)
	}
	return out, nil
}
