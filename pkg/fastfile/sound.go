package fastfile

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"time"
)

// AcceptedFrameRates is the only filter separating real sound records from
// needle matches in unrelated data.
var AcceptedFrameRates = []int{16000, 22050, 32000, 36000, 37800, 44100, 48000}

// IsAcceptedFrameRate reports whether rate is a sample rate used by any
// supported game.
func IsAcceptedFrameRate(rate int) bool {
	return slices.Contains(AcceptedFrameRates, rate)
}

type Format int

const (
	FormatFLAC Format = iota
	FormatPCM
	FormatADPCM
	FormatXWMA
	FormatUnknown
)

func (f Format) String() string {
	switch f {
	case FormatFLAC:
		return "FLAC"
	case FormatPCM:
		return "PCM"
	case FormatADPCM:
		return "ADPCM"
	case FormatXWMA:
		return "XWMA"
	default:
		return "UNKNOWN"
	}
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "FLAC":
		*f = FormatFLAC
	case "PCM":
		*f = FormatPCM
	case "ADPCM":
		*f = FormatADPCM
	case "XWMA":
		*f = FormatXWMA
	case "UNKNOWN":
		*f = FormatUnknown
	default:
		return fmt.Errorf("unknown sound format %q", string(b))
	}
	return nil
}

// Sound describes one audio asset located in a fast file, a sound pak or an
// archive. Location names the registered source holding the bytes and
// Position is the absolute offset inside it (unused for archive entries,
// which are read by FilePath).
type Sound struct {
	FilePath  string `json:"file_path"`
	Format    Format `json:"format"`
	Size      int64  `json:"size"`
	FrameRate int    `json:"frame_rate"`
	Frames    int    `json:"frames"`
	Channels  int    `json:"channels"`
	Location  string `json:"location"`
	Position  int64  `json:"position"`
}

// Name is the file name without directories or extension.
func (s Sound) Name() string {
	base := path.Base(strings.ReplaceAll(s.FilePath, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// Length is the play time in milliseconds, or 0 when unknown.
func (s Sound) Length() int {
	if s.FrameRate <= 0 || s.Frames <= 0 {
		return 0
	}
	return int(1000 * (float64(s.Frames) / float64(s.FrameRate)))
}

func (s Sound) Duration() time.Duration {
	return time.Duration(s.Length()) * time.Millisecond
}

func (s Sound) DisplayLength() string {
	ms := s.Length()
	if ms < 1 {
		return "N/A"
	}
	d := s.Duration()
	var b strings.Builder
	if h := int(d.Hours()); h > 0 {
		fmt.Fprintf(&b, "%dh ", h)
	}
	if m := int(d.Minutes()) % 60; m > 0 {
		fmt.Fprintf(&b, "%dm ", m)
	}
	fmt.Fprintf(&b, "%d.%03ds", int(d.Seconds())%60, ms%1000)
	return b.String()
}

func (s Sound) DisplaySize() string {
	return fmt.Sprintf("%.2fKB", float64(s.Size)/1024.0)
}

func (s Sound) String() string {
	return s.FilePath
}

// SortSounds orders sounds by path, keeping scan order for equal paths.
func SortSounds(sounds []Sound) {
	slices.SortStableFunc(sounds, func(a, b Sound) int {
		return strings.Compare(a.FilePath, b.FilePath)
	})
}

// FilterSounds returns the sounds whose path contains filter, ignoring case.
// An empty filter returns sounds unchanged.
func FilterSounds(sounds []Sound, filter string) []Sound {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return sounds
	}
	out := make([]Sound, 0, len(sounds))
	for _, s := range sounds {
		if strings.Contains(strings.ToLower(s.FilePath), filter) {
			out = append(out, s)
		}
	}
	return out
}
