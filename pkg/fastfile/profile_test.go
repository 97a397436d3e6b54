package fastfile

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestProfilesUnique(t *testing.T) {
	t.Parallel()

	profiles := Profiles()
	if len(profiles) != 7 {
		t.Fatalf("profiles: got %d want 7", len(profiles))
	}
	seen := make(map[profileKey]string)
	for _, p := range profiles {
		key := profileKey{p.Magic, p.Version}
		if prev, ok := seen[key]; ok {
			t.Fatalf("%s and %s share a key", prev, p.Name)
		}
		seen[key] = p.Name

		got, ok := Lookup(p.Magic, p.Version)
		if !ok || got != p {
			t.Fatalf("Lookup(%s, 0x%X) did not return %s", p.Magic, p.Version, p.Name)
		}
		base := p.Base()
		if base.Alias != nil || len(base.needle) == 0 || base.record == nil {
			t.Fatalf("%s resolves to an incomplete profile", p.Name)
		}
	}
}

func TestLookupExactMatch(t *testing.T) {
	t.Parallel()

	if _, ok := Lookup(MagicTreyarch, ModernWarfare.Version); ok {
		t.Fatalf("magic must be part of the key")
	}
	if _, ok := Lookup(MagicInfinityWard, 0x6); ok {
		t.Fatalf("unknown versions must not match")
	}
}

func TestAliases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		alias, base *Profile
		skip        int64
	}{
		{ModernWarfare2, ModernWarfare, 21},
		{ModernWarfare3, ModernWarfare, 21},
		{ModernWarfareRemastered, AdvancedWarfare, 24},
	}
	for _, tt := range tests {
		if tt.alias.Base() != tt.base {
			t.Fatalf("%s should alias %s", tt.alias.Name, tt.base.Name)
		}
		if tt.alias.Skip != tt.skip {
			t.Fatalf("%s skip: got %d want %d", tt.alias.Name, tt.alias.Skip, tt.skip)
		}
	}
}

func TestReadHeader(t *testing.T) {
	t.Parallel()

	raw := headerBytes(Header{Magic: MagicInfinityWard, Signed: 0x30303130, Version: 0x235})
	h, err := ReadHeader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if h.Magic != MagicInfinityWard || h.Version != 0x235 || !h.IsSigned() {
		t.Fatalf("unexpected header: %+v", h)
	}
	if !bytes.Equal(raw[:4], []byte("IWff")) {
		t.Fatalf("magic bytes: got %q", raw[:4])
	}
	if _, err := ReadHeader(bytes.NewReader(raw[:8])); err == nil {
		t.Fatalf("expected error for short header")
	}
}

func wawEntry(t *testing.T, name string, formatTag int16, rate int32, channels int16, riff bool) []byte {
	t.Helper()
	var b bytes.Buffer
	b.Write(make([]byte, 4))
	b.Write(WorldAtWar.needle)
	_ = binary.Write(&b, binary.LittleEndian, uint32(0x400)) // data size
	b.WriteString(name)
	b.WriteByte(0)
	hdr := make([]byte, wawHeaderSize)
	if riff {
		copy(hdr, "RIFF")
	}
	binary.LittleEndian.PutUint16(hdr[20:], uint16(formatTag))
	binary.LittleEndian.PutUint16(hdr[22:], uint16(channels))
	binary.LittleEndian.PutUint32(hdr[24:], uint32(rate))
	b.Write(hdr)
	return b.Bytes()
}

func TestScanWorldAtWar(t *testing.T) {
	t.Parallel()

	var payload bytes.Buffer
	payload.Write(wawEntry(t, "sound/adpcm.wav", 2, 22050, 1, true))
	payload.Write(wawEntry(t, "sound/noriff.wav", 1, 22050, 1, false))
	payload.Write(wawEntry(t, "sound/badrate.wav", 1, 12345, 1, true))
	payload.Write(wawEntry(t, "sound/xwma.wav", 0x161, 44100, 2, true))
	payload.Write(make([]byte, 32))

	rr := bytes.NewReader(payload.Bytes())
	var sounds []Sound
	offsets, err := FindAll(rr, WorldAtWar.needle, ScanOptions{From: 0})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	for _, off := range offsets {
		r := &recordReader{ra: rr, size: rr.Size(), pos: off - WorldAtWar.back}
		s, ok, err := decodeWaWRecord(r)
		if err != nil {
			t.Fatalf("decode at %d: %v", off, err)
		}
		if ok {
			sounds = append(sounds, s)
		}
	}

	if len(sounds) != 2 {
		t.Fatalf("sounds: got %+v", sounds)
	}
	if sounds[0].FilePath != "sound/adpcm" || sounds[0].Format != FormatADPCM || sounds[0].Frames != 0 {
		t.Fatalf("unexpected first sound: %+v", sounds[0])
	}
	if sounds[1].FilePath != "sound/xwma" || sounds[1].Format != FormatXWMA || sounds[1].Channels != 2 || sounds[1].FrameRate != 44100 {
		t.Fatalf("unexpected second sound: %+v", sounds[1])
	}
	raw := payload.Bytes()
	if string(raw[sounds[0].Position:sounds[0].Position+4]) != "RIFF" {
		t.Fatalf("position should point at the RIFF header")
	}
}
