package fastfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samcharles93/ffaudio/internal/logger"
)

// PayloadSuffix is appended to a fast file's path to name its decompressed
// payload.
const PayloadSuffix = ".decompressed"

// Options controls Load.
type Options struct {
	// Locations receives the sidecar paks and, on success, the payload.
	Locations Registrar
	// Progress is consulted during decompression; returning false cancels.
	Progress ProgressFunc
	// Logger defaults to the logger stored in the context.
	Logger logger.Logger
	// ChunkSize is the inflate chunk for stream-compressed profiles.
	ChunkSize int
}

// Container is a decoded fast file.
type Container struct {
	Path        string
	PayloadPath string
	Profile     *Profile
	Header      Header
	Sidecars    []Sidecar
	Sounds      []Sound
}

// RemovePayload deletes the decompressed payload. A payload that is already
// gone is not an error.
func (c *Container) RemovePayload() error {
	if c == nil || c.PayloadPath == "" {
		return nil
	}
	if err := os.Remove(c.PayloadPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Load decompresses the fast file at path next to it and scans the payload
// for sound records. Any failure after decompression starts removes the
// partial payload.
func Load(ctx context.Context, path string, opts Options) (*Container, error) {
	log := opts.Logger
	if log == nil {
		log = logger.FromContext(ctx)
	}
	userProgress := opts.Progress
	if userProgress == nil {
		userProgress = noProgress
	}
	progress := func(p float64) bool {
		return ctx.Err() == nil && userProgress(p)
	}

	f, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	hdr, err := ReadHeader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnsupportedContainer, path, err)
	}
	log.Info("loading fast file", "path", path)

	profile, ok := Lookup(hdr.Magic, hdr.Version)
	if !ok {
		return nil, fmt.Errorf("%w: version 0x%X with magic 0x%X", ErrUnsupportedContainer, hdr.Version, uint32(hdr.Magic))
	}
	log.Info("recognized fast file", "game", profile.Name, "signed", hdr.IsSigned())

	c := &Container{
		Path:        path,
		PayloadPath: path + PayloadSuffix,
		Profile:     profile,
		Header:      hdr,
	}

	sidecars, err := FindSidecars(filepath.Dir(path))
	if err != nil {
		log.Warn("sound pak search failed", "error", err)
	}
	c.Sidecars = sidecars
	if opts.Locations != nil {
		for _, s := range sidecars {
			opts.Locations.Register(s.Key(), s.Path)
		}
	}
	log.Info("found sound paks", "count", len(sidecars))

	start := time.Now()
	log.Debug("decompressing fast file", "codec", profile.Codec(), "payload", c.PayloadPath)
	sounds, err := decode(f, profile, hdr.IsSigned(), c.PayloadPath, opts.ChunkSize, progress)
	if err == nil && !progress(100) {
		err = ErrCancelled
	}
	if err != nil {
		if rerr := c.RemovePayload(); rerr != nil {
			log.Error("failed to delete decompressed fast file", "path", c.PayloadPath, "error", rerr)
		}
		if errors.Is(err, ErrCancelled) {
			log.Info("fast file load cancelled", "path", path)
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFault, profile.Name, err)
	}

	SortSounds(sounds)
	c.Sounds = sounds
	log.Info("decompressed and loaded sounds",
		"count", len(sounds),
		"seconds", time.Since(start).Seconds(),
	)

	if opts.Locations != nil {
		opts.Locations.Register(SourceFastFile, c.PayloadPath)
	}
	return c, nil
}

func decode(src *os.File, p *Profile, signed bool, payloadPath string, chunkSize int, progress ProgressFunc) ([]Sound, error) {
	packed, total, err := p.unpack(src, signed)
	if err != nil {
		return nil, err
	}

	out, err := os.Create(payloadPath)
	if err != nil {
		return nil, fmt.Errorf("create payload: %w", err)
	}
	bw := bufio.NewWriterSize(out, 1<<20)
	if err := p.inflate(packed, total, bw, chunkSize, progress); err != nil {
		_ = out.Close()
		return nil, err
	}
	if err := bw.Flush(); err != nil {
		_ = out.Close()
		return nil, fmt.Errorf("write payload: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("close payload: %w", err)
	}

	payload, err := OpenFile(payloadPath)
	if err != nil {
		return nil, fmt.Errorf("open payload: %w", err)
	}
	defer func() { _ = payload.Close() }()
	return p.scan(payload)
}
