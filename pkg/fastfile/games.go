package fastfile

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// SourceFastFile is the registry key of the decompressed payload.
const SourceFastFile = "FastFile"

var (
	ModernWarfare = register(&Profile{
		Name:    "Modern Warfare",
		Magic:   MagicInfinityWard,
		Version: 0x5,
		Skip:    headerSize,
		hash:    &HashLayout{Initial: 0x4000, Block: 0x200000, Hash: 0x2000},
		codec:   codecStream,
		needle: []byte{
			0x01, 0x01, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00,
			0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x00, 0x00, 0x00,
		},
		back:   8,
		record: decodeMWRecord,
	})

	ModernWarfare2 = register(&Profile{
		Name:    "Modern Warfare 2",
		Magic:   MagicInfinityWard,
		Version: 0x114,
		Alias:   ModernWarfare,
		Skip:    21,
	})

	ModernWarfare3 = register(&Profile{
		Name:    "Modern Warfare 3",
		Magic:   MagicInfinityWard,
		Version: 0x1,
		Alias:   ModernWarfare,
		Skip:    21,
	})

	WorldAtWar = register(&Profile{
		Name:    "World at War",
		Magic:   MagicInfinityWard,
		Version: 0x183,
		Skip:    headerSize,
		codec:   codecStream,
		needle: []byte{
			0x01, 0x01, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
		},
		back:   8,
		record: decodeWaWRecord,
	})

	Ghosts = register(&Profile{
		Name:      "Ghosts",
		Magic:     MagicInfinityWard,
		Version:   0x235,
		Skip:      24,
		preBlocks: true,
		hash:      &HashLayout{Initial: 0x4000, Block: 0x200000, Hash: 0x2000},
		codec:     codecStream,
		needle: []byte{
			0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFD, 0xFD, 0xFD,
			0xFE, 0xFF, 0xFF, 0xFF, 0xFF, 0xFD, 0xFD, 0xFD,
		},
		back:   16,
		record: decodeGhostsRecord,
	})

	AdvancedWarfare = register(&Profile{
		Name:      "Advanced Warfare",
		Magic:     MagicSledgehammer,
		Version:   0x72E,
		Skip:      24,
		preBlocks: true,
		hash:      &HashLayout{Initial: 0x8000, Block: 0x800000, Hash: 0x4000},
		codec:     codecBlocks,
		needle:    []byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFD, 0xFD, 0xFD},
		back:      40,
		record:    decodeAWRecord,
	})

	ModernWarfareRemastered = register(&Profile{
		Name:    "Modern Warfare Remastered",
		Magic:   MagicSledgehammer,
		Version: 0x42,
		Alias:   AdvancedWarfare,
		Skip:    24,
	})
)

type mwRecord struct {
	NamePtr       uint32
	Unknown       uint32
	DataPtr       uint32
	DataSize      uint32
	FrameRate     uint32
	BitsPerSample uint32
	Channels      uint32
	FrameCount    uint32
	Unknown1      uint32
	Unknown2      uint32
	Unknown3      uint32
}

func decodeMWRecord(r *recordReader) (Sound, bool, error) {
	var rec mwRecord
	if err := r.read(&rec); err != nil {
		return Sound{}, false, err
	}
	if !IsAcceptedFrameRate(int(rec.FrameRate)) {
		return Sound{}, false, nil
	}
	name, err := r.cstring()
	if err != nil {
		return Sound{}, false, err
	}
	return Sound{
		FilePath:  name,
		Format:    FormatPCM,
		Size:      int64(rec.DataSize),
		FrameRate: int(rec.FrameRate),
		Frames:    int(rec.FrameCount),
		Channels:  int(rec.Channels),
		Location:  SourceFastFile,
		Position:  r.pos,
	}, true, nil
}

type wawRecord struct {
	NamePtr  uint32
	DataPtr  uint32
	DataSize uint32
}

const wawHeaderSize = 48

// Little-endian signatures of audio containers stored verbatim.
const (
	SignatureRIFF uint32 = 0x46464952 // "RIFF"
	SignatureFLAC uint32 = 0x43614C66 // "fLaC"
)

func decodeWaWRecord(r *recordReader) (Sound, bool, error) {
	var rec wawRecord
	if err := r.read(&rec); err != nil {
		return Sound{}, false, err
	}
	name, err := r.cstring()
	if err != nil {
		return Sound{}, false, err
	}
	hdr, err := r.bytes(wawHeaderSize)
	if err != nil {
		return Sound{}, false, fmt.Errorf("read wave header: %w", err)
	}
	if binary.LittleEndian.Uint32(hdr[0:4]) != SignatureRIFF {
		return Sound{}, false, nil
	}
	rate := int(int32(binary.LittleEndian.Uint32(hdr[24:28])))
	if !IsAcceptedFrameRate(rate) {
		return Sound{}, false, nil
	}

	var format Format
	switch int16(binary.LittleEndian.Uint16(hdr[20:22])) {
	case 0x1:
		format = FormatPCM
	case 0x2:
		format = FormatADPCM
	case 0x161:
		format = FormatXWMA
	default:
		format = FormatUnknown
	}

	return Sound{
		FilePath:  trimExt(name),
		Format:    format,
		Size:      int64(rec.DataSize),
		FrameRate: rate,
		Channels:  int(int16(binary.LittleEndian.Uint16(hdr[22:24]))),
		Location:  SourceFastFile,
		Position:  r.pos - wawHeaderSize,
	}, true, nil
}

type ghostsRecord struct {
	NamePtr       uint64
	DataPtr       uint64
	Padding       uint64
	FrameRate     uint32
	DataSize      uint32
	FrameCount    uint32
	ByteRate      uint32
	Channels      uint16
	BitsPerSample uint16
	Unknown       uint32
	TotalSize     uint64
}

func decodeGhostsRecord(r *recordReader) (Sound, bool, error) {
	var rec ghostsRecord
	if err := r.read(&rec); err != nil {
		return Sound{}, false, err
	}
	if !IsAcceptedFrameRate(int(rec.FrameRate)) {
		return Sound{}, false, nil
	}
	name, err := r.cstring()
	if err != nil {
		return Sound{}, false, err
	}
	// FLAC assets are also listed through a second record kind.
	if strings.HasSuffix(name, ".flac") {
		return Sound{}, false, nil
	}
	return Sound{
		FilePath:  name,
		Format:    FormatPCM,
		Size:      int64(rec.DataSize),
		FrameRate: int(rec.FrameRate),
		Frames:    int(rec.FrameCount),
		Channels:  int(rec.Channels),
		Location:  SourceFastFile,
		Position:  r.pos,
	}, true, nil
}

type awRecord struct {
	NamePtr    uint64
	Unknown    uint16
	PakIndex   uint16
	Padding    uint32
	PakOffset  uint64
	PakSize    uint64
	DataPtr    uint64
	FrameRate  uint32
	DataSize   uint32
	FrameCount uint32
	Channels   uint8
	Unknown1   uint16
	Unknown2   uint8
	Format     uint32
	BufferSize uint32
}

func decodeAWRecord(r *recordReader) (Sound, bool, error) {
	var rec awRecord
	if err := r.read(&rec); err != nil {
		return Sound{}, false, err
	}
	if !IsAcceptedFrameRate(int(rec.FrameRate)) {
		return Sound{}, false, nil
	}
	name, err := r.cstring()
	if err != nil {
		return Sound{}, false, err
	}

	s := Sound{
		FilePath:  name,
		Format:    FormatPCM,
		Size:      int64(rec.DataSize),
		FrameRate: int(rec.FrameRate),
		Frames:    int(rec.FrameCount),
		Channels:  int(rec.Channels),
		Location:  SourceFastFile,
		Position:  r.pos,
	}
	if rec.Format == 6 || rec.Format == 7 {
		s.Format = FormatFLAC
	}
	if rec.PakIndex > 0 {
		s.Location = PakKey(int(rec.PakIndex))
		s.Position = int64(rec.PakOffset)
	}
	return s, true, nil
}

// trimExt drops the extension of the last path element, accepting either
// separator.
func trimExt(p string) string {
	for i := len(p) - 1; i >= 0 && p[i] != '/' && p[i] != '\\'; i-- {
		if p[i] == '.' {
			return p[:i]
		}
	}
	return p
}
