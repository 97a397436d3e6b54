package export

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/samcharles93/ffaudio/internal/logger"
	"github.com/samcharles93/ffaudio/pkg/fastfile"
)

func testLogger() logger.Logger {
	return logger.JSON(io.Discard, slog.LevelDebug)
}

func setup(t *testing.T, data []byte) (*fastfile.Registry, string) {
	t.Helper()
	dir := t.TempDir()
	payload := filepath.Join(dir, "common.ff.decompressed")
	if err := os.WriteFile(payload, data, 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	reg := fastfile.NewRegistry()
	reg.Register(fastfile.SourceFastFile, payload)
	return reg, filepath.Join(dir, "out")
}

func TestExportBounds(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte{1, 2}, 50)
	reg, root := setup(t, data)
	sounds := []fastfile.Sound{
		{FilePath: "sound/fits.wav", Location: fastfile.SourceFastFile, Position: 60, Size: 40, FrameRate: 22050, Channels: 1},
		{FilePath: "sound/over.wav", Location: fastfile.SourceFastFile, Position: 60, Size: 41, FrameRate: 22050, Channels: 1},
		{FilePath: "sound/nopak.wav", Location: "Pak 4", Position: 0, Size: 4, FrameRate: 22050, Channels: 1},
		{FilePath: "sound/after.wav", Location: fastfile.SourceFastFile, Position: 0, Size: 10, FrameRate: 22050, Channels: 1},
	}

	report, err := New(root, reg, testLogger()).ExportAll(context.Background(), "Modern Warfare", sounds, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if report.Exported != 2 || report.Skipped != 2 || report.Cancelled {
		t.Fatalf("report: %+v", report)
	}
	for _, name := range []string{"fits.wav", "after.wav"} {
		if _, err := os.Stat(filepath.Join(root, "Modern Warfare", "sound", name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "Modern Warfare", "sound", "over.wav")); !os.IsNotExist(err) {
		t.Fatalf("out of bounds sound should not be written")
	}
	if _, ok := reg.Source(fastfile.SourceFastFile); ok {
		t.Fatalf("sources should be closed after export")
	}
}

func TestExportSynthesizesWAV(t *testing.T) {
	t.Parallel()

	samples := []byte{0x10, 0x00, 0x20, 0x00, 0x30, 0x00, 0x40, 0x00}
	reg, root := setup(t, samples)
	sounds := []fastfile.Sound{{
		FilePath:  `sound\vo\hello.wav`,
		Location:  fastfile.SourceFastFile,
		Size:      int64(len(samples)),
		FrameRate: 44100,
		Channels:  2,
	}}

	report, err := New(root, reg, testLogger()).ExportAll(context.Background(), "Ghosts", sounds, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if report.Exported != 1 {
		t.Fatalf("report: %+v", report)
	}

	got, err := os.ReadFile(filepath.Join(root, "Ghosts", "sound", "vo", "hello.wav"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(got) != wavHeaderSize+len(samples) {
		t.Fatalf("size: got %d", len(got))
	}
	if string(got[0:4]) != "RIFF" || string(got[8:16]) != "WAVEfmt " || string(got[36:40]) != "data" {
		t.Fatalf("bad header: %q", got[:44])
	}
	le := binary.LittleEndian
	if le.Uint32(got[4:8]) != uint32(36+len(samples)) {
		t.Fatalf("riff size: %d", le.Uint32(got[4:8]))
	}
	if le.Uint16(got[22:24]) != 2 || le.Uint32(got[24:28]) != 44100 {
		t.Fatalf("format fields: channels %d rate %d", le.Uint16(got[22:24]), le.Uint32(got[24:28]))
	}
	if le.Uint32(got[28:32]) != 44100*2*2 || le.Uint16(got[32:34]) != 4 || le.Uint16(got[34:36]) != 16 {
		t.Fatalf("byte rate fields: %d %d %d", le.Uint32(got[28:32]), le.Uint16(got[32:34]), le.Uint16(got[34:36]))
	}
	if le.Uint32(got[40:44]) != uint32(len(samples)) || !bytes.Equal(got[44:], samples) {
		t.Fatalf("data chunk mismatch")
	}
}

func TestExportVerbatim(t *testing.T) {
	t.Parallel()

	flac := append([]byte("fLaC"), 0, 0, 0, 0x22, 9, 9)
	riff := append([]byte("RIFF"), 4, 0, 0, 0, 'W', 'A', 'V', 'E')
	data := append(append([]byte{}, flac...), riff...)
	reg, root := setup(t, data)
	sounds := []fastfile.Sound{
		{FilePath: "music/theme.flac", Location: fastfile.SourceFastFile, Size: int64(len(flac)), Format: fastfile.FormatFLAC},
		{FilePath: "sfx/door", Location: fastfile.SourceFastFile, Position: int64(len(flac)), Size: int64(len(riff))},
	}

	report, err := New(root, reg, testLogger()).ExportAll(context.Background(), "World at War", sounds, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if report.Exported != 2 {
		t.Fatalf("report: %+v", report)
	}

	got, err := os.ReadFile(filepath.Join(root, "World at War", "music", "theme.flac"))
	if err != nil {
		t.Fatalf("read flac: %v", err)
	}
	if !bytes.Equal(got, flac) {
		t.Fatalf("flac should be written verbatim")
	}
	got, err = os.ReadFile(filepath.Join(root, "World at War", "sfx", "door.wav"))
	if err != nil {
		t.Fatalf("read wav: %v", err)
	}
	if !bytes.Equal(got, riff) {
		t.Fatalf("riff should be written verbatim")
	}
}

func TestExportCancelled(t *testing.T) {
	t.Parallel()

	reg, root := setup(t, make([]byte, 64))
	sounds := make([]fastfile.Sound, 4)
	for i := range sounds {
		sounds[i] = fastfile.Sound{FilePath: "s/" + string(rune('a'+i)), Location: fastfile.SourceFastFile, Size: 8, FrameRate: 16000, Channels: 1}
	}

	report, err := New(root, reg, testLogger()).ExportAll(context.Background(), "Ghosts", sounds, func(p float64) bool { return p < 50 })
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !report.Cancelled || report.Exported != 2 {
		t.Fatalf("report: %+v", report)
	}
}

func TestExportRejectsEscapingPaths(t *testing.T) {
	t.Parallel()

	reg, root := setup(t, make([]byte, 16))
	sounds := []fastfile.Sound{
		{FilePath: "../../evil.wav", Location: fastfile.SourceFastFile, Size: 4},
		{FilePath: `..\..\evil2.wav`, Location: fastfile.SourceFastFile, Size: 4},
	}
	report, err := New(root, reg, testLogger()).ExportAll(context.Background(), "Ghosts", sounds, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if report.Exported != 0 || report.Skipped != 2 {
		t.Fatalf("report: %+v", report)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte{7}, 32)
	reg, root := setup(t, data)
	sounds := []fastfile.Sound{{FilePath: "a/b.wav", Location: fastfile.SourceFastFile, Size: 32, FrameRate: 48000, Channels: 1}}
	report, err := New(root, reg, testLogger()).ExportAll(context.Background(), "Ghosts", sounds, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(report.Files) != 1 || len(report.Files[0].BLAKE3) != 64 {
		t.Fatalf("files: %+v", report.Files)
	}

	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := report.WriteManifest(path); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	back, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if back.Exported != 1 || back.Files[0].BLAKE3 != report.Files[0].BLAKE3 {
		t.Fatalf("manifest mismatch: %+v", back)
	}
	if bad, err := back.Verify(); err != nil || len(bad) != 0 {
		t.Fatalf("verify clean export: %v %v", bad, err)
	}

	if err := os.WriteFile(report.Files[0].Path, []byte("tampered"), 0o644); err != nil {
		t.Fatalf("tamper: %v", err)
	}
	if bad, err := back.Verify(); err != nil || len(bad) != 1 {
		t.Fatalf("verify tampered export: %v %v", bad, err)
	}
}
