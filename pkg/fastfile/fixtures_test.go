package fastfile

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zlib"
)

// mwEntry lays out one Modern Warfare record the way the scanner finds it:
// the needle ends eight bytes into the record. Leading zeros keep the
// needle from starting inside a partial match.
func mwEntry(t *testing.T, name string, rate uint32, frames uint32, data []byte) []byte {
	t.Helper()
	var b bytes.Buffer
	b.Write(make([]byte, 4))
	b.Write(ModernWarfare.needle)
	tail := struct {
		DataPtr, DataSize, FrameRate, Bits, Channels, Frames, U1, U2, U3 uint32
	}{
		DataPtr:   0xFFFFFFFF,
		DataSize:  uint32(len(data)),
		FrameRate: rate,
		Bits:      16,
		Channels:  1,
		Frames:    frames,
		U1:        2,
	}
	if err := binary.Write(&b, binary.LittleEndian, tail); err != nil {
		t.Fatalf("write record: %v", err)
	}
	b.WriteString(name)
	b.WriteByte(0)
	b.Write(data)
	return b.Bytes()
}

// awEntry lays out one Advanced Warfare record; the needle spans the last
// byte of PakSize and the whole data pointer.
func awEntry(t *testing.T, name string, rec awRecord, data []byte) []byte {
	t.Helper()
	rec.PakSize &= 0x00FFFFFFFFFFFFFF
	rec.DataPtr = 0xFDFDFDFFFFFFFFFF
	rec.DataSize = uint32(len(data))
	var b bytes.Buffer
	if err := binary.Write(&b, binary.LittleEndian, rec); err != nil {
		t.Fatalf("write record: %v", err)
	}
	b.WriteString(name)
	b.WriteByte(0)
	b.Write(data)
	return b.Bytes()
}

func zlibBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var b bytes.Buffer
	zw := zlib.NewWriter(&b)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	return b.Bytes()
}

func headerBytes(h Header) []byte {
	b := make([]byte, headerSize)
	encodeHeader(b, h)
	return b
}

// ghostsEntry lays out one Ghosts record; the name and data pointers form
// the needle.
func ghostsEntry(t *testing.T, name string, rate uint32, data []byte) []byte {
	t.Helper()
	rec := ghostsRecord{
		NamePtr:       0xFDFDFDFFFFFFFFFF,
		DataPtr:       0xFDFDFDFFFFFFFFFE,
		FrameRate:     rate,
		DataSize:      uint32(len(data)),
		FrameCount:    uint32(len(data) / 2),
		ByteRate:      rate * 2,
		Channels:      1,
		BitsPerSample: 16,
		TotalSize:     uint64(len(data)),
	}
	var b bytes.Buffer
	b.Write(make([]byte, 4))
	if err := binary.Write(&b, binary.LittleEndian, rec); err != nil {
		t.Fatalf("write record: %v", err)
	}
	b.WriteString(name)
	b.WriteByte(0)
	b.Write(data)
	return b.Bytes()
}

// writeMWContainer writes an unsigned Modern Warfare fast file holding payload.
func writeMWContainer(t *testing.T, dir string, payload []byte) string {
	t.Helper()
	return writeIWContainer(t, dir, ModernWarfare, payload)
}

// writeIWContainer writes an unsigned zlib fast file carrying the header of
// p, padded out to where p starts decompressing.
func writeIWContainer(t *testing.T, dir string, p *Profile, payload []byte) string {
	t.Helper()
	var b bytes.Buffer
	b.Write(headerBytes(Header{Magic: p.Magic, Version: p.Version}))
	b.Write(make([]byte, p.Skip-headerSize))
	b.Write(zlibBytes(t, payload))
	path := filepath.Join(dir, "common_mp.ff")
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatalf("write container: %v", err)
	}
	return path
}

// writeGhostsContainer writes a signed Ghosts fast file: two preamble
// blocks, the initial hash block, then the zlib stream.
func writeGhostsContainer(t *testing.T, dir string, payload []byte) string {
	t.Helper()
	var b bytes.Buffer
	b.Write(headerBytes(Header{Magic: MagicInfinityWard, Signed: signedMarker, Version: Ghosts.Version}))
	b.Write(make([]byte, 24-headerSize))
	_ = binary.Write(&b, binary.LittleEndian, int32(2))
	b.Write(make([]byte, 2*24+16))
	b.Write(bytes.Repeat([]byte{0xAB}, int(Ghosts.hash.Initial)))
	b.Write(zlibBytes(t, payload))

	path := filepath.Join(dir, "mp_prisoner.ff")
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatalf("write container: %v", err)
	}
	return path
}

// writeAWContainer writes an unsigned Advanced Warfare fast file with one
// preamble block and an LZ4 block payload.
func writeAWContainer(t *testing.T, dir string, payload []byte) string {
	t.Helper()
	return writeS1Container(t, dir, AdvancedWarfare.Version, payload)
}

func writeS1Container(t *testing.T, dir string, version uint32, payload []byte) string {
	t.Helper()
	var b bytes.Buffer
	b.Write(headerBytes(Header{Magic: MagicSledgehammer, Version: version}))
	b.Write(make([]byte, 24-headerSize))
	_ = binary.Write(&b, binary.LittleEndian, int32(1))
	b.Write(make([]byte, 24+16))

	blocks, n, err := CompressBlocks(payload, 1<<16)
	if err != nil {
		t.Fatalf("compress blocks: %v", err)
	}
	b.Write([]byte{0, 0})
	_ = binary.Write(&b, binary.LittleEndian, int32(n))
	b.Write(make([]byte, 6))
	b.Write(blocks)

	path := filepath.Join(dir, "mp_recovery.ff")
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatalf("write container: %v", err)
	}
	return path
}

func pcmSamples(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i%7) + 1
	}
	return out
}
