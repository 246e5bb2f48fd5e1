// Package source opens the command stream: standard input or a file,
// optionally followed as it grows.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/notesearch/internal/follow"
)

// Stdin is the path that selects standard input, as does the empty path.
const Stdin = "-"

// Open returns the stream named by path. follow keeps a file open past EOF
// and is ignored for standard input, which already blocks.
func Open(ctx context.Context, path string, followFile bool, logger *slog.Logger) (io.ReadCloser, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" || path == Stdin {
		if followFile {
			logger.Warn("source: follow ignored for standard input")
		}
		return os.Stdin, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("source: resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("source: stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("source: not a regular file: %s", abs)
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("source: open %s: %w", path, err)
	}
	if !followFile {
		return f, nil
	}
	r, err := follow.New(ctx, f, logger)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

type detached struct {
	pr   *io.PipeReader
	rc   io.ReadCloser
	stop func() bool
}

// Detach returns a reader over rc that reports io.EOF as soon as ctx is
// done, even while a Read on rc is still blocked. Closing it closes rc.
func Detach(ctx context.Context, rc io.ReadCloser) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		_, err := io.Copy(pw, rc)
		_ = pw.CloseWithError(err)
	}()
	stop := context.AfterFunc(ctx, func() {
		_ = pw.Close()
	})
	return &detached{pr: pr, rc: rc, stop: stop}
}

func (d *detached) Read(p []byte) (int, error) {
	return d.pr.Read(p)
}

func (d *detached) Close() error {
	d.stop()
	_ = d.pr.Close()
	return d.rc.Close()
}
