package fastfile

import (
	"errors"
	"fmt"
	"io"
)

const scanBufferSize = 1 << 20

// ScanOptions controls FindAll.
type ScanOptions struct {
	// FirstOnly stops at the first match.
	FirstOnly bool
	// MatchStart reports the offset of the first needle byte instead of the
	// offset just past the match.
	MatchStart bool
	// From repositions the source before scanning. Negative values scan from
	// wherever the source currently is.
	From int64
}

// FindAll returns the absolute offsets of every occurrence of needle in r.
//
// Matching is a single forward pass that tracks how many needle bytes have
// matched in a row. After a full match, and after any mismatch, the current
// byte is compared with needle[0] again so that a new match may start on it.
// Record offsets for every profile are calibrated against exactly this
// behaviour, so it must not be replaced with a textbook matcher.
func FindAll(r io.Reader, needle []byte, opts ScanOptions) ([]int64, error) {
	if len(needle) == 0 {
		return nil, errors.New("empty needle")
	}

	base, err := scanStart(r, opts.From)
	if err != nil {
		return nil, err
	}

	var offsets []int64
	buf := make([]byte, scanBufferSize)
	idx := 0
	for {
		n, rerr := r.Read(buf)
		for i := 0; i < n; i++ {
			b := buf[i]
			if needle[idx] == b {
				idx++
				if idx < len(needle) {
					continue
				}
				off := base + int64(i) + 1
				if opts.MatchStart {
					off -= int64(len(needle))
				}
				offsets = append(offsets, off)
				if opts.FirstOnly {
					return offsets, nil
				}
				idx = 0
			} else {
				idx = 0
			}
			if len(needle) > 1 && needle[0] == b {
				idx++
			}
		}
		base += int64(n)

		if errors.Is(rerr, io.EOF) {
			return offsets, nil
		}
		if rerr != nil {
			return nil, fmt.Errorf("scan: %w", rerr)
		}
	}
}

func scanStart(r io.Reader, from int64) (int64, error) {
	s, seekable := r.(io.Seeker)
	switch {
	case seekable && from >= 0:
		if _, err := s.Seek(from, io.SeekStart); err != nil {
			return 0, fmt.Errorf("scan: seek to %d: %w", from, err)
		}
		return from, nil
	case seekable:
		pos, err := s.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, fmt.Errorf("scan: current position: %w", err)
		}
		return pos, nil
	case from > 0:
		if _, err := io.CopyN(io.Discard, r, from); err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("scan: skip to %d: %w", from, err)
		}
		return from, nil
	default:
		return 0, nil
	}
}
