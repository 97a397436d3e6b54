package fastfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// HashLayout describes how a signed fast file interleaves verification data
// with its payload.
type HashLayout struct {
	Initial int64 // leading verification block
	Block   int64 // payload bytes between hash blocks
	Hash    int64 // size of each hash block
}

// StripHashBlocks removes interleaved hash blocks from r and returns the
// remaining payload fully buffered. Truncated input is not an error: the last
// data block is copied as far as it goes and a missing trailing hash block is
// ignored.
func StripHashBlocks(r io.Reader, layout HashLayout) (*bytes.Reader, error) {
	if layout.Block <= 0 {
		return nil, fmt.Errorf("invalid hash block size %d", layout.Block)
	}
	if err := skip(r, layout.Initial); err != nil {
		return nil, fmt.Errorf("skip initial hash block: %w", err)
	}

	var out bytes.Buffer
	buf := make([]byte, layout.Block)
	for {
		n, err := io.ReadFull(r, buf)
		out.Write(buf[:n])
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read payload block: %w", err)
		}
		if err := skip(r, layout.Hash); err != nil {
			return nil, fmt.Errorf("skip hash block: %w", err)
		}
	}
	return bytes.NewReader(out.Bytes()), nil
}

// skip discards n bytes, tolerating a source that ends early.
func skip(r io.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	if s, ok := r.(io.Seeker); ok {
		_, err := s.Seek(n, io.SeekCurrent)
		return err
	}
	_, err := io.CopyN(io.Discard, r, n)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
