package fastfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
)

type codecKind int

const (
	codecStream codecKind = iota // zlib-wrapped deflate
	codecBlocks                  // framed LZ4 blocks
)

func (c codecKind) String() string {
	if c == codecBlocks {
		return "lz4-blocks"
	}
	return "zlib"
}

// recordFunc decodes one candidate record starting at the reader's position.
// It reports false when the record is a false positive.
type recordFunc func(r *recordReader) (Sound, bool, error)

// Profile is one supported (magic, version) pair. A profile with an Alias
// uses the aliased profile's decode rules after its own Skip.
type Profile struct {
	Name    string
	Magic   Magic
	Version uint32
	Alias   *Profile
	// Skip is the absolute offset where the preamble (or payload) begins.
	Skip int64

	preBlocks bool
	hash      *HashLayout
	codec     codecKind
	needle    []byte
	back      int64
	record    recordFunc
}

// Base returns the profile whose decode rules p uses.
func (p *Profile) Base() *Profile {
	for p.Alias != nil {
		p = p.Alias
	}
	return p
}

// Codec names the payload compression used by p.
func (p *Profile) Codec() string {
	return p.Base().codec.String()
}

// Needle returns the byte pattern located next to every sound record.
func (p *Profile) Needle() []byte {
	return slices.Clone(p.Base().needle)
}

func (p *Profile) String() string {
	return fmt.Sprintf("%s (%s 0x%X)", p.Name, p.Magic, p.Version)
}

type profileKey struct {
	magic   Magic
	version uint32
}

var (
	profileList  []*Profile
	profileIndex = make(map[profileKey]*Profile)
)

func register(p *Profile) *Profile {
	key := profileKey{p.Magic, p.Version}
	if prev, ok := profileIndex[key]; ok {
		panic(fmt.Sprintf("fastfile: %s and %s share magic %s version 0x%X", prev.Name, p.Name, p.Magic, p.Version))
	}
	profileIndex[key] = p
	profileList = append(profileList, p)
	return p
}

// Lookup returns the profile registered for exactly (magic, version).
func Lookup(magic Magic, version uint32) (*Profile, bool) {
	p, ok := profileIndex[profileKey{magic, version}]
	return p, ok
}

// Profiles returns every registered profile in registration order.
func Profiles() []*Profile {
	out := make([]*Profile, len(profileList))
	copy(out, profileList)
	return out
}

// unpack positions src at the start of the compressed payload and removes
// hash blocks from signed containers.
func (p *Profile) unpack(src io.ReadSeeker, signed bool) (io.Reader, int64, error) {
	base := p.Base()
	if _, err := src.Seek(p.Skip, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek to preamble: %w", err)
	}
	if base.preBlocks {
		var n int32
		if err := binary.Read(src, binary.LittleEndian, &n); err != nil {
			return nil, 0, fmt.Errorf("read preamble block count: %w", err)
		}
		if n < 0 {
			return nil, 0, fmt.Errorf("negative preamble block count %d", n)
		}
		if _, err := src.Seek(24*int64(n)+16, io.SeekCurrent); err != nil {
			return nil, 0, fmt.Errorf("skip %d preamble blocks: %w", n, err)
		}
	}

	pos, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, err
	}
	end, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, 0, err
	}
	if _, err := src.Seek(pos, io.SeekStart); err != nil {
		return nil, 0, err
	}

	if signed && base.hash != nil {
		stripped, err := StripHashBlocks(src, *base.hash)
		if err != nil {
			return nil, 0, fmt.Errorf("strip hash blocks: %w", err)
		}
		return stripped, int64(stripped.Len()), nil
	}
	return src, max(end-pos, 0), nil
}

// inflate writes the decompressed payload of src to dst.
func (p *Profile) inflate(src io.Reader, total int64, dst io.Writer, chunkSize int, progress ProgressFunc) error {
	switch p.Base().codec {
	case codecBlocks:
		var hdr [12]byte
		if _, err := io.ReadFull(src, hdr[:]); err != nil {
			return fmt.Errorf("read block table header: %w", err)
		}
		n := int32(binary.LittleEndian.Uint32(hdr[2:6]))
		if n < 0 {
			return fmt.Errorf("negative block count %d", n)
		}
		return DecompressBlocks(src, dst, int(n), progress)
	default:
		return DecompressStream(src, total, dst, chunkSize, progress)
	}
}

// scan decodes every accepted record in the decompressed payload.
func (p *Profile) scan(payload *File) ([]Sound, error) {
	base := p.Base()
	offsets, err := FindAll(payload.Reader(), base.needle, ScanOptions{From: 0})
	if err != nil {
		return nil, err
	}

	var sounds []Sound
	for _, off := range offsets {
		start := off - base.back
		if start < 0 {
			return nil, fmt.Errorf("record at %d starts before payload", start)
		}
		rr := &recordReader{ra: payload, size: payload.Size(), pos: start}
		s, ok, err := base.record(rr)
		if err != nil {
			return nil, fmt.Errorf("record at 0x%X: %w", start, err)
		}
		if ok {
			sounds = append(sounds, s)
		}
	}
	return sounds, nil
}

// recordReader reads sequentially from a ReaderAt, tracking the absolute
// position so decoders can report where inline data begins.
type recordReader struct {
	ra   io.ReaderAt
	size int64
	pos  int64
}

func (r *recordReader) Read(p []byte) (int, error) {
	if r.pos >= r.size {
		return 0, io.EOF
	}
	if rem := r.size - r.pos; int64(len(p)) > rem {
		p = p[:rem]
	}
	n, err := r.ra.ReadAt(p, r.pos)
	r.pos += int64(n)
	if errors.Is(err, io.EOF) && n > 0 {
		err = nil
	}
	return n, err
}

func (r *recordReader) read(v any) error {
	return binary.Read(r, binary.LittleEndian, v)
}

func (r *recordReader) bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

const cstringChunk = 256

// cstring reads a NUL-terminated string and leaves the position just past
// the terminator.
func (r *recordReader) cstring() (string, error) {
	var out []byte
	buf := make([]byte, cstringChunk)
	for {
		n, err := r.ra.ReadAt(buf[:min(int64(len(buf)), max(r.size-r.pos, 0))], r.pos)
		for i := 0; i < n; i++ {
			if buf[i] == 0 {
				out = append(out, buf[:i]...)
				r.pos += int64(i) + 1
				return string(out), nil
			}
		}
		out = append(out, buf[:n]...)
		r.pos += int64(n)
		if n == 0 || r.pos >= r.size {
			return "", fmt.Errorf("unterminated string: %w", io.ErrUnexpectedEOF)
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
	}
}

// openSource opens a container for decoding, mapping OS errors to the
// package's pre-flight errors.
func openSource(path string) (*os.File, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		if errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", ErrAccessDenied, path)
		}
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", ErrAccessDenied, path)
		}
		return nil, err
	}
	return f, nil
}
