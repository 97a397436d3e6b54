package fastfile

import (
	"fmt"
	"slices"
	"sync"
)

// Registrar records where the bytes for a source key live.
type Registrar interface {
	Register(key, path string)
}

type sourceKind int

const (
	kindFile sourceKind = iota
	kindArchive
)

type location struct {
	path string
	kind sourceKind
}

// Registry maps source keys ("FastFile", "Pak 3", "IWD") to files on disk and
// opens them on demand for export.
type Registry struct {
	mu     sync.Mutex
	paths  map[string]location
	opened map[string]Source
}

func NewRegistry() *Registry {
	return &Registry{
		paths:  make(map[string]location),
		opened: make(map[string]Source),
	}
}

// Register maps key to a raw file. Re-registering a key replaces it.
func (r *Registry) Register(key, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths[key] = location{path: path, kind: kindFile}
}

// RegisterArchive maps key to a zip-compatible archive.
func (r *Registry) RegisterArchive(key, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths[key] = location{path: path, kind: kindArchive}
}

// Path returns the path registered for key.
func (r *Registry) Path(key string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	loc, ok := r.paths[key]
	return loc.path, ok
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.paths))
	for k := range r.paths {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Open opens every registered source that is not already open. Sources that
// cannot be opened are reported by key and left out; the rest stay usable.
func (r *Registry) Open() map[string]error {
	r.mu.Lock()
	defer r.mu.Unlock()

	failed := make(map[string]error)
	for key, loc := range r.paths {
		if _, ok := r.opened[key]; ok {
			continue
		}
		var (
			src Source
			err error
		)
		switch loc.kind {
		case kindArchive:
			src, err = OpenArchive(loc.path)
		default:
			src, err = OpenFile(loc.path)
		}
		if err != nil {
			failed[key] = fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, loc.path, err)
			continue
		}
		r.opened[key] = src
	}
	return failed
}

// Source returns the open source registered under key.
func (r *Registry) Source(key string) (Source, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src, ok := r.opened[key]
	return src, ok
}

// Close closes every open source. Registrations are kept so the sources can
// be opened again.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	for key, src := range r.opened {
		if err := src.Close(); err != nil && first == nil {
			first = fmt.Errorf("close %s: %w", key, err)
		}
		delete(r.opened, key)
	}
	return first
}

// Reset closes every source and drops all registrations.
func (r *Registry) Reset() error {
	err := r.Close()
	r.mu.Lock()
	clear(r.paths)
	r.mu.Unlock()
	return err
}
