package fastfile

import (
	"bytes"
	"io"
	"slices"
	"testing"
)

func TestFindAll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   []byte
		needle []byte
		opts   ScanOptions
		want   []int64
	}{
		{
			name:   "adjacent",
			data:   []byte{1, 2, 3, 1, 2, 3},
			needle: []byte{1, 2, 3},
			want:   []int64{3, 6},
		},
		{
			name:   "match start",
			data:   []byte{9, 1, 2, 3, 1, 2, 3},
			needle: []byte{1, 2, 3},
			opts:   ScanOptions{MatchStart: true},
			want:   []int64{1, 4},
		},
		{
			name:   "first only",
			data:   []byte{1, 2, 3, 1, 2, 3},
			needle: []byte{1, 2, 3},
			opts:   ScanOptions{FirstOnly: true},
			want:   []int64{3},
		},
		{
			name:   "recheck after match",
			data:   []byte{0xAA, 0xAA, 0xAA},
			needle: []byte{0xAA, 0xAA},
			want:   []int64{2, 3},
		},
		{
			name:   "recheck after mismatch",
			data:   []byte{0xAA, 0xAA, 0xBB},
			needle: []byte{0xAA, 0xBB},
			want:   []int64{3},
		},
		{
			name:   "overlap inside partial match is not found",
			data:   []byte{1, 1, 1, 2},
			needle: []byte{1, 1, 2},
		},
		{
			name:   "single byte needle",
			data:   []byte{7, 0, 7, 7},
			needle: []byte{7},
			want:   []int64{1, 3, 4},
		},
		{
			name:   "from offset",
			data:   []byte{1, 2, 3, 1, 2, 3},
			needle: []byte{1, 2, 3},
			opts:   ScanOptions{From: 1},
			want:   []int64{6},
		},
		{
			name:   "none",
			data:   []byte{1, 2, 4},
			needle: []byte{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := FindAll(bytes.NewReader(tt.data), tt.needle, tt.opts)
			if err != nil {
				t.Fatalf("FindAll: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Fatalf("offsets: got %v want %v", got, tt.want)
			}
		})
	}
}

func TestFindAllNonSeekable(t *testing.T) {
	t.Parallel()

	data := []byte{1, 2, 3, 0, 1, 2, 3}
	r := struct{ io.Reader }{bytes.NewReader(data)}
	got, err := FindAll(r, []byte{1, 2, 3}, ScanOptions{From: 2})
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if !slices.Equal(got, []int64{7}) {
		t.Fatalf("offsets: got %v want [7]", got)
	}
}

func TestFindAllAcrossBuffers(t *testing.T) {
	t.Parallel()

	data := make([]byte, scanBufferSize+8)
	needle := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	copy(data[scanBufferSize-2:], needle)
	got, err := FindAll(bytes.NewReader(data), needle, ScanOptions{})
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if !slices.Equal(got, []int64{scanBufferSize + 2}) {
		t.Fatalf("offsets: got %v want [%d]", got, scanBufferSize+2)
	}
}

func TestFindAllEmptyNeedle(t *testing.T) {
	t.Parallel()
	if _, err := FindAll(bytes.NewReader([]byte{1}), nil, ScanOptions{}); err == nil {
		t.Fatalf("expected error for empty needle")
	}
}
