package fastfile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Sidecar is a sound pak stored next to a fast file.
type Sidecar struct {
	ID   string
	Path string
}

// Key is the registry key that sound records use to refer to the pak.
func (s Sidecar) Key() string {
	return "Pak " + s.ID
}

// PakKey returns the registry key for pak index n.
func PakKey(n int) string {
	return "Pak " + strconv.Itoa(n)
}

var sidecarID = regexp.MustCompile(`\d+`)

// FindSidecars lists the sound paks in dir. A pak is a *.pak file whose name
// contains "soundfile"; its id is the first run of digits in the base name.
// Paks without digits are ignored. The id is the decimal value of the digit
// run, not the raw text: soundfile007.pak has key "Pak 7", matching the
// integer index sound records store.
func FindSidecars(dir string) ([]Sidecar, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list sidecars in %s: %w", dir, err)
	}
	var out []Sidecar
	for _, e := range entries {
		name := e.Name()
		// The marker is matched on the file name only, never on the directory.
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".pak") || !strings.Contains(name, "soundfile") {
			continue
		}
		id := sidecarID.FindString(strings.TrimSuffix(name, filepath.Ext(name)))
		if id == "" {
			continue
		}
		// Records store the index as an integer, so "007" is pak 7.
		if n, err := strconv.Atoi(id); err == nil {
			id = strconv.Itoa(n)
		}
		out = append(out, Sidecar{ID: id, Path: filepath.Join(dir, name)})
	}
	return out, nil
}

// RegisterSidecars finds the paks in dir and registers each under its key.
func RegisterSidecars(dir string, reg Registrar) ([]Sidecar, error) {
	sidecars, err := FindSidecars(dir)
	if err != nil {
		return nil, err
	}
	for _, s := range sidecars {
		reg.Register(s.Key(), s.Path)
	}
	return sidecars, nil
}
