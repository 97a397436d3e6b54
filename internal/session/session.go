// Package session holds what is currently loaded: the decoded container or
// archive, its sounds and the registry of sources they are exported from.
package session

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/samcharles93/ffaudio/internal/export"
	"github.com/samcharles93/ffaudio/internal/logger"
	"github.com/samcharles93/ffaudio/pkg/fastfile"
)

// ErrNothingLoaded is returned by Export before any load succeeded.
var ErrNothingLoaded = errors.New("nothing loaded")

// ArchiveProfile names the export directory for archive sounds.
const ArchiveProfile = "IWD"

type Options struct {
	ExportRoot  string
	ChunkSize   int
	KeepPayload bool
	Logger      logger.Logger
}

// Session is not safe for concurrent use; callers serialise access.
type Session struct {
	opts      Options
	reg       *fastfile.Registry
	container *fastfile.Container
	profile   string
	sounds    []fastfile.Sound
}

func New(opts Options) *Session {
	if opts.ExportRoot == "" {
		opts.ExportRoot = export.DefaultRoot
	}
	return &Session{opts: opts, reg: fastfile.NewRegistry()}
}

func (s *Session) log(ctx context.Context) logger.Logger {
	if s.opts.Logger != nil {
		return s.opts.Logger
	}
	return logger.FromContext(ctx)
}

// Load replaces the current state with the fast file at path.
func (s *Session) Load(ctx context.Context, path string, progress fastfile.ProgressFunc) (*fastfile.Container, error) {
	s.reset(ctx, true)
	c, err := fastfile.Load(ctx, path, fastfile.Options{
		Locations: s.reg,
		Progress:  progress,
		Logger:    s.opts.Logger,
		ChunkSize: s.opts.ChunkSize,
	})
	if err != nil {
		_ = s.reg.Reset()
		return nil, err
	}
	s.container = c
	s.profile = c.Profile.Name
	s.sounds = c.Sounds
	return c, nil
}

// LoadArchive replaces the current state with the .wav entries of an IWD
// archive.
func (s *Session) LoadArchive(ctx context.Context, path string) ([]fastfile.Sound, error) {
	s.reset(ctx, true)
	sounds, err := fastfile.LoadArchive(path)
	if err != nil {
		return nil, err
	}
	fastfile.SortSounds(sounds)
	s.reg.RegisterArchive(fastfile.SourceIWD, path)
	s.profile = ArchiveProfile
	s.sounds = sounds
	s.log(ctx).Info("loaded sounds from archive", "path", path, "count", len(sounds))
	return sounds, nil
}

func (s *Session) Loaded() bool { return s.profile != "" }

// Profile is the export directory name of what is loaded.
func (s *Session) Profile() string { return s.profile }

func (s *Session) Container() *fastfile.Container { return s.container }

func (s *Session) Sounds() []fastfile.Sound { return s.sounds }

// Select returns the loaded sounds matching filter whose path or name is in
// names. An empty names list selects every sound matching filter.
func (s *Session) Select(filter string, names []string) []fastfile.Sound {
	sounds := fastfile.FilterSounds(s.sounds, filter)
	if len(names) == 0 {
		return sounds
	}
	out := make([]fastfile.Sound, 0, len(names))
	for _, snd := range sounds {
		if slices.ContainsFunc(names, func(n string) bool {
			return strings.EqualFold(n, snd.FilePath) || strings.EqualFold(n, snd.Name())
		}) {
			out = append(out, snd)
		}
	}
	return out
}

// Export writes sounds from the loaded sources.
func (s *Session) Export(ctx context.Context, sounds []fastfile.Sound, progress fastfile.ProgressFunc) (*export.Report, error) {
	if !s.Loaded() {
		return nil, ErrNothingLoaded
	}
	engine := export.New(s.opts.ExportRoot, s.reg, s.opts.Logger)
	return engine.ExportAll(ctx, s.profile, sounds, progress)
}

// Clear drops the loaded data and deletes the decompressed payload.
func (s *Session) Clear(ctx context.Context) {
	s.reset(ctx, true)
	s.log(ctx).Info("cleared loaded data")
}

// Close releases sources and deletes the payload unless KeepPayload is set.
func (s *Session) Close(ctx context.Context) {
	s.reset(ctx, !s.opts.KeepPayload)
}

func (s *Session) reset(ctx context.Context, removePayload bool) {
	log := s.log(ctx)
	if err := s.reg.Reset(); err != nil {
		log.Warn("failed to close audio locations", "error", err)
	}
	if s.container != nil && removePayload {
		if err := s.container.RemovePayload(); err != nil {
			log.Error("failed to delete decompressed fast file", "path", s.container.PayloadPath, "error", err)
		}
	}
	s.container = nil
	s.profile = ""
	s.sounds = nil
}
