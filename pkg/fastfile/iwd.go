package fastfile

import (
	"fmt"
	"path"
)

// SourceIWD is the registry key of an opened IWD archive.
const SourceIWD = "IWD"

// LoadArchive lists the .wav entries of a zip-compatible IWD archive. Entries
// are read back by name, so the sounds carry no position.
func LoadArchive(archivePath string) ([]Sound, error) {
	a, err := OpenArchive(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer func() { _ = a.Close() }()

	var sounds []Sound
	for _, e := range a.Entries() {
		if e.FileInfo().IsDir() || !isWav(path.Base(e.Name)) {
			continue
		}
		sounds = append(sounds, Sound{
			FilePath: e.Name,
			Format:   FormatPCM,
			Size:     int64(e.UncompressedSize64),
			Location: SourceIWD,
		})
	}
	return sounds, nil
}
