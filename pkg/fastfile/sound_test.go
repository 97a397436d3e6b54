package fastfile

import (
	"testing"
)

func TestAcceptedFrameRates(t *testing.T) {
	t.Parallel()

	for _, rate := range []int{16000, 22050, 32000, 36000, 37800, 44100, 48000} {
		if !IsAcceptedFrameRate(rate) {
			t.Fatalf("rate %d should be accepted", rate)
		}
	}
	for _, rate := range []int{0, 8000, 11025, 44101, 48001, 96000} {
		if IsAcceptedFrameRate(rate) {
			t.Fatalf("rate %d should be rejected", rate)
		}
	}
}

func TestSoundDisplay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		sound  Sound
		length string
		size   string
	}{
		{"unknown", Sound{Size: 512}, "N/A", "0.50KB"},
		{"sub second", Sound{FrameRate: 48000, Frames: 24000, Size: 2048}, "0.500s", "2.00KB"},
		{"minutes", Sound{FrameRate: 44100, Frames: 44100 * 125, Size: 1536}, "2m 5.000s", "1.50KB"},
		{"hours", Sound{FrameRate: 16000, Frames: 16000 * 3661}, "1h 1m 1.000s", "0.00KB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.sound.DisplayLength(); got != tt.length {
				t.Fatalf("DisplayLength: got %q want %q", got, tt.length)
			}
			if got := tt.sound.DisplaySize(); got != tt.size {
				t.Fatalf("DisplaySize: got %q want %q", got, tt.size)
			}
		})
	}
}

func TestSoundName(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"sound/weapons/shot.wav": "shot",
		`sound\vo\line.flac`:     "line",
		"plain":                  "plain",
	} {
		if got := (Sound{FilePath: in}).Name(); got != want {
			t.Fatalf("Name(%q): got %q want %q", in, got, want)
		}
	}
}

func TestFormatText(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{FormatFLAC, FormatPCM, FormatADPCM, FormatXWMA, FormatUnknown} {
		b, err := f.MarshalText()
		if err != nil {
			t.Fatalf("marshal %v: %v", f, err)
		}
		var back Format
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("unmarshal %q: %v", b, err)
		}
		if back != f {
			t.Fatalf("format %v came back as %v", f, back)
		}
	}
	var f Format
	if err := f.UnmarshalText([]byte("mp3")); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestFilterSounds(t *testing.T) {
	t.Parallel()

	sounds := []Sound{{FilePath: "sound/Weapons/shot.wav"}, {FilePath: "sound/vo/line.wav"}}
	if got := FilterSounds(sounds, "weapons"); len(got) != 1 || got[0].FilePath != "sound/Weapons/shot.wav" {
		t.Fatalf("filter: got %+v", got)
	}
	if got := FilterSounds(sounds, "  "); len(got) != 2 {
		t.Fatalf("blank filter should keep all, got %d", len(got))
	}
}

func TestTrimExt(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"sound/a.wav":    "sound/a",
		`sound\v.1\line`: `sound\v.1\line`,
		"a.b.wav":        "a.b",
		"noext":          "noext",
	} {
		if got := trimExt(in); got != want {
			t.Fatalf("trimExt(%q): got %q want %q", in, got, want)
		}
	}
}
