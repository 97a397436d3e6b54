package fastfile

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Magic identifies the engine family that produced a fast file.
type Magic uint32

const (
	MagicInfinityWard Magic = 0x66665749 // "IWff"
	MagicTreyarch     Magic = 0x66664154 // "TAff"
	MagicSledgehammer Magic = 0x66663153 // "S1ff"
)

const (
	headerSize = 12

	// signedMarker is "0100" read as a little-endian int. Any other value
	// means the payload carries no interleaved hash blocks.
	signedMarker uint32 = 0x30303130
)

func (m Magic) String() string {
	switch m {
	case MagicInfinityWard:
		return "InfinityWard"
	case MagicTreyarch:
		return "Treyarch"
	case MagicSledgehammer:
		return "Sledgehammer"
	default:
		return fmt.Sprintf("0x%08X", uint32(m))
	}
}

type Header struct {
	Magic   Magic
	Signed  uint32
	Version uint32
}

func (h Header) IsSigned() bool {
	return h.Signed == signedMarker
}

// ReadHeader decodes the fixed 12-byte header at the current position.
func ReadHeader(r io.Reader) (Header, error) {
	var raw [headerSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return Header{}, fmt.Errorf("read header: %w", err)
	}
	h, _ := decodeHeader(raw[:])
	return h, nil
}

func decodeHeader(b []byte) (Header, bool) {
	if len(b) < headerSize {
		return Header{}, false
	}
	return Header{
		Magic:   Magic(binary.LittleEndian.Uint32(b[0:4])),
		Signed:  binary.LittleEndian.Uint32(b[4:8]),
		Version: binary.LittleEndian.Uint32(b[8:12]),
	}, true
}

func encodeHeader(b []byte, h Header) bool {
	if len(b) < headerSize {
		return false
	}
	binary.LittleEndian.PutUint32(b[0:4], uint32(h.Magic))
	binary.LittleEndian.PutUint32(b[4:8], h.Signed)
	binary.LittleEndian.PutUint32(b[8:12], h.Version)
	return true
}
