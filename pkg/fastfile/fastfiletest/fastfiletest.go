// Package fastfiletest builds small fast files for tests.
package fastfiletest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/samcharles93/ffaudio/pkg/fastfile"
)

// Sound is one inline PCM record.
type Sound struct {
	Path   string
	Rate   uint32
	Frames uint32
	Data   []byte
}

// Payload lays out Modern Warfare records followed by zero padding.
func Payload(tb testing.TB, sounds ...Sound) []byte {
	tb.Helper()
	var b bytes.Buffer
	needle := fastfile.ModernWarfare.Needle()
	for _, s := range sounds {
		b.Write(make([]byte, 4))
		b.Write(needle)
		fields := [9]uint32{0xFFFFFFFF, uint32(len(s.Data)), s.Rate, 16, 1, s.Frames, 2, 0, 0}
		if err := binary.Write(&b, binary.LittleEndian, fields); err != nil {
			tb.Fatalf("write record: %v", err)
		}
		b.WriteString(s.Path)
		b.WriteByte(0)
		b.Write(s.Data)
	}
	b.Write(make([]byte, 64))
	return b.Bytes()
}

// WriteModernWarfare writes an unsigned Modern Warfare fast file named name
// into dir and returns its path.
func WriteModernWarfare(tb testing.TB, dir, name string, sounds ...Sound) string {
	tb.Helper()
	var b bytes.Buffer
	hdr := [3]uint32{uint32(fastfile.MagicInfinityWard), 0, fastfile.ModernWarfare.Version}
	_ = binary.Write(&b, binary.LittleEndian, hdr)
	zw := zlib.NewWriter(&b)
	if _, err := zw.Write(Payload(tb, sounds...)); err != nil {
		tb.Fatalf("compress payload: %v", err)
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("compress payload: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		tb.Fatalf("write fast file: %v", err)
	}
	return path
}

// Samples returns n bytes of non-zero sample data that never contains a
// record needle.
func Samples(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i%7) + 1
	}
	return out
}
