package export

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/zeebo/blake3"
)

// File is one written export.
type File struct {
	Path     string `json:"path"`
	Sound    string `json:"sound"`
	Location string `json:"location"`
	Bytes    int64  `json:"bytes"`
	BLAKE3   string `json:"blake3"`
}

// Report summarises an export batch.
type Report struct {
	Profile   string        `json:"profile"`
	Root      string        `json:"root"`
	Total     int           `json:"total"`
	Exported  int           `json:"exported"`
	Skipped   int           `json:"skipped"`
	Cancelled bool          `json:"cancelled"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Files     []File        `json:"files"`
}

// WriteManifest writes the report as indented JSON.
func (r *Report) WriteManifest(path string) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return &r, nil
}

// Verify re-hashes every listed file and returns the paths that are missing
// or whose digest no longer matches.
func (r *Report) Verify() ([]string, error) {
	var bad []string
	for _, f := range r.Files {
		sum, err := hashFile(f.Path)
		if os.IsNotExist(err) {
			bad = append(bad, f.Path)
			continue
		}
		if err != nil {
			return nil, err
		}
		if sum != f.BLAKE3 {
			bad = append(bad, f.Path)
		}
	}
	return bad, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
