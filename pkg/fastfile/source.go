package fastfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"golang.org/x/sys/unix"
)

// Source holds the bytes of registered sounds.
type Source interface {
	// ReadSound returns the stored bytes of s.
	ReadSound(s Sound) ([]byte, error)
	Close() error
}

// File is a read-only view of a source file. Where possible the file is
// memory mapped; otherwise reads go through the open descriptor.
type File struct {
	Path    string
	data    []byte
	f       *os.File
	size    int64
	mmapped bool
}

// OpenFile maps path read-only, falling back to ReadAt on the open file when
// mmap is unavailable. The returned file must be closed.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	size := st.Size()
	if size < 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%s: negative size", path)
	}

	if size > 0 && size <= int64(int(^uint(0)>>1)) {
		data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
		if err == nil {
			_ = f.Close()
			return &File{Path: path, data: data, size: size, mmapped: true}, nil
		}
	}

	return &File{Path: path, f: f, size: size}, nil
}

func (f *File) Size() int64 { return f.size }

func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%s: negative offset %d", f.Path, off)
	}
	if f.mmapped {
		if off >= f.size {
			return 0, io.EOF
		}
		n := copy(p, f.data[off:])
		if n < len(p) {
			return n, io.EOF
		}
		return n, nil
	}
	if f.f == nil {
		return 0, os.ErrClosed
	}
	return f.f.ReadAt(p, off)
}

// Reader returns an independent sequential reader over the whole file.
func (f *File) Reader() *io.SectionReader {
	return io.NewSectionReader(f, 0, f.size)
}

// ReadSound returns Size bytes at Position, or ErrOutOfBounds when the range
// does not fit inside the file.
func (f *File) ReadSound(s Sound) ([]byte, error) {
	if s.Position < 0 || s.Size < 0 || s.Position > f.size || s.Position+s.Size > f.size {
		return nil, fmt.Errorf("%w: %s at %d+%d exceeds %d bytes", ErrOutOfBounds, s.Location, s.Position, s.Size, f.size)
	}
	buf := make([]byte, s.Size)
	if _, err := f.ReadAt(buf, s.Position); err != nil && !(errors.Is(err, io.EOF) && s.Size == 0) {
		return nil, err
	}
	return buf, nil
}

func (f *File) Close() error {
	if f == nil {
		return nil
	}
	var err error
	if f.mmapped && f.data != nil {
		err = unix.Munmap(f.data)
	}
	if f.f != nil {
		if cerr := f.f.Close(); err == nil {
			err = cerr
		}
	}
	f.data = nil
	f.f = nil
	f.mmapped = false
	return err
}

// Archive is a zip-compatible container whose entries are addressed by name.
type Archive struct {
	Path string
	zr   *zip.ReadCloser
	byID map[string]*zip.File
}

func OpenArchive(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	a := &Archive{Path: path, zr: zr, byID: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		a.byID[f.Name] = f
	}
	return a, nil
}

// Entries lists the archive's file entries in archive order.
func (a *Archive) Entries() []*zip.File {
	return a.zr.File
}

// ReadEntry returns the uncompressed contents of the named entry.
func (a *Archive) ReadEntry(name string) ([]byte, error) {
	f, ok := a.byID[name]
	if !ok {
		return nil, fmt.Errorf("%s: no entry %q", filepath.Base(a.Path), name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

// ReadSound returns the whole entry named by s.FilePath.
func (a *Archive) ReadSound(s Sound) ([]byte, error) {
	return a.ReadEntry(s.FilePath)
}

func (a *Archive) Close() error {
	if a == nil || a.zr == nil {
		return nil
	}
	err := a.zr.Close()
	a.zr = nil
	a.byID = nil
	return err
}

func isWav(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".wav")
}
