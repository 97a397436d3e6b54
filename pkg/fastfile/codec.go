package fastfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/pierrec/lz4/v4"
)

// DefaultChunkSize is the inflate chunk used by DecompressStream.
const DefaultChunkSize = 2 << 20

// ProgressFunc receives a completion percentage in [0, 100] and reports
// whether the operation should continue.
type ProgressFunc func(percent float64) bool

func noProgress(float64) bool { return true }

// AlignBlock rounds n up to the next multiple of four.
func AlignBlock(n int64) int64 {
	return (n + 3) &^ 3
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// DecompressStream inflates a zlib-wrapped deflate stream into dst. The two
// byte zlib sub-header is skipped rather than validated. total is the number
// of compressed bytes available and only feeds the progress percentage.
//
// progress is consulted after every chunk and once more with 100 at the end;
// a refusal at either point returns ErrCancelled.
func DecompressStream(src io.Reader, total int64, dst io.Writer, chunkSize int, progress ProgressFunc) error {
	if progress == nil {
		progress = noProgress
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	if _, err := io.CopyN(io.Discard, src, 2); err != nil {
		return fmt.Errorf("skip zlib header: %w", err)
	}

	counter := &countingReader{r: src}
	inflater := flate.NewReader(counter)
	defer func() { _ = inflater.Close() }()

	chunk := make([]byte, chunkSize)
	stopped := false
	for {
		n, err := io.ReadFull(inflater, chunk)
		if n > 0 {
			if !progress(percentOf(counter.n+2, total)) {
				stopped = true
				break
			}
			if _, werr := dst.Write(chunk[:n]); werr != nil {
				return fmt.Errorf("write chunk: %w", werr)
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return fmt.Errorf("inflate: %w", err)
		}
	}

	done := progress(100)
	if stopped || !done {
		return ErrCancelled
	}
	return nil
}

// DecompressBlocks decodes numBlocks LZ4 blocks into dst. Each block is
// framed as (compressed u32, decompressed u32, payload) and the next frame
// starts at the payload length rounded up to four bytes.
func DecompressBlocks(src io.Reader, dst io.Writer, numBlocks int, progress ProgressFunc) error {
	if progress == nil {
		progress = noProgress
	}

	var frame [8]byte
	var compressed, decompressed []byte
	stopped := false
	for i := 0; i < numBlocks; i++ {
		if !progress(float64(i) / float64(numBlocks) * 100) {
			stopped = true
			break
		}

		if _, err := io.ReadFull(src, frame[:]); err != nil {
			return fmt.Errorf("block %d: read frame: %w", i, err)
		}
		compSize := int(binary.LittleEndian.Uint32(frame[0:4]))
		decompSize := int(binary.LittleEndian.Uint32(frame[4:8]))

		compressed = grow(compressed, compSize)
		if _, err := io.ReadFull(src, compressed); err != nil {
			return fmt.Errorf("block %d: read payload: %w", i, err)
		}
		decompressed = grow(decompressed, decompSize)
		n, err := lz4.UncompressBlock(compressed, decompressed)
		if err != nil {
			return fmt.Errorf("block %d: lz4 decompress: %w", i, err)
		}
		if n != decompSize {
			return fmt.Errorf("block %d: lz4 decompress: got %d bytes, expected %d", i, n, decompSize)
		}
		if _, err := dst.Write(decompressed); err != nil {
			return fmt.Errorf("block %d: write: %w", i, err)
		}

		// Padding is measured from the start of the payload, not the stream.
		pad := AlignBlock(int64(compSize)) - int64(compSize)
		if pad > 0 {
			if _, err := io.CopyN(io.Discard, src, pad); err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("block %d: skip padding: %w", i, err)
			}
		}
	}

	done := progress(100)
	if stopped || !done {
		return ErrCancelled
	}
	return nil
}

// CompressBlocks splits data into blockSize pieces and frames them the way
// DecompressBlocks expects. Incompressible pieces are rejected since the
// block format has no stored mode.
func CompressBlocks(data []byte, blockSize int) ([]byte, int, error) {
	if blockSize <= 0 {
		return nil, 0, fmt.Errorf("invalid block size %d", blockSize)
	}
	var out []byte
	count := 0
	var frame [8]byte
	for start := 0; start < len(data); start += blockSize {
		end := min(start+blockSize, len(data))
		piece := data[start:end]
		dst := make([]byte, lz4.CompressBlockBound(len(piece)))
		n, err := lz4.CompressBlock(piece, dst, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("lz4 compress: %w", err)
		}
		if n == 0 {
			return nil, 0, fmt.Errorf("block %d is incompressible", count)
		}
		binary.LittleEndian.PutUint32(frame[0:4], uint32(n))
		binary.LittleEndian.PutUint32(frame[4:8], uint32(len(piece)))
		out = append(out, frame[:]...)
		out = append(out, dst[:n]...)
		for pad := AlignBlock(int64(n)) - int64(n); pad > 0; pad-- {
			out = append(out, 0)
		}
		count++
	}
	return out, count, nil
}

func grow(b []byte, n int) []byte {
	if cap(b) < n {
		return make([]byte, n)
	}
	return b[:n]
}

func percentOf(n, total int64) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(n) / float64(total) * 100
	if p > 100 {
		p = 100
	}
	return p
}
