package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Write writes the header line and one row per event.
func Write(w io.Writer, events Log) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return err
	}
	for _, e := range events {
		if err := cw.Write(e.Fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes events to path. A .gz suffix compresses with gzip and
// a .zst suffix with zstd; level is "fastest", "default" or "best".
func WriteFile(path string, events Log, level string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating trace directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating trace file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing trace file: %w", cerr)
		}
	}()

	w, err := compressor(f, path, level)
	if err != nil {
		return err
	}
	if err := Write(w, events); err != nil {
		w.Close()
		return fmt.Errorf("writing trace file: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finishing trace file: %w", err)
	}
	return nil
}

// Open opens a trace file for reading, decompressing by suffix.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("reading gzip trace: %w", err)
		}
		return &stackedReadCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("reading zstd trace: %w", err)
		}
		rc := zr.IOReadCloser()
		return &stackedReadCloser{Reader: rc, closers: []io.Closer{rc, f}}, nil
	}
	return f, nil
}

// compressor wraps f according to the suffix of path.
func compressor(f io.Writer, path, level string) (io.WriteCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zw, err := gzip.NewWriterLevel(f, gzipLevel(level))
		if err != nil {
			return nil, fmt.Errorf("creating gzip writer: %w", err)
		}
		return zw, nil
	case ".zst":
		zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstdLevel(level)))
		if err != nil {
			return nil, fmt.Errorf("creating zstd writer: %w", err)
		}
		return zw, nil
	}
	return nopWriteCloser{f}, nil
}

// Map level string to gzip compression level
func gzipLevel(level string) int {
	switch level {
	case "fastest":
		return gzip.BestSpeed
	case "best":
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func zstdLevel(level string) zstd.EncoderLevel {
	switch level {
	case "fastest":
		return zstd.SpeedFastest
	case "best":
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// stackedReadCloser closes the decompressor, then the file.
type stackedReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedReadCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
