// Package fileio opens and creates trace and recording files, transparently
// applying zstd compression when the path ends in ".zst".
package fileio

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// CompressedSuffix marks files that are zstd-compressed.
const CompressedSuffix = ".zst"

// IsCompressed reports whether path names a zstd file.
func IsCompressed(path string) bool {
	return strings.HasSuffix(path, CompressedSuffix)
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }

type writeCloser struct {
	io.Writer
	close func() error
}

func (w writeCloser) Close() error { return w.close() }

// Open opens path for reading, decompressing when needed.
func Open(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if !IsCompressed(path) {
		return file, nil
	}
	dec, err := zstd.NewReader(file)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("opening zstd stream %s: %w", path, err)
	}
	return readCloser{Reader: dec, close: func() error {
		dec.Close()
		return file.Close()
	}}, nil
}

// Create creates or truncates path for writing, compressing when needed.
// Close flushes the compressor before closing the file.
func Create(path string) (io.WriteCloser, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	if !IsCompressed(path) {
		return file, nil
	}
	enc, err := zstd.NewWriter(file)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("creating zstd stream %s: %w", path, err)
	}
	return writeCloser{Writer: enc, close: func() error {
		if err := enc.Close(); err != nil {
			_ = file.Close()
			return fmt.Errorf("flushing zstd stream %s: %w", path, err)
		}
		return file.Close()
	}}, nil
}
