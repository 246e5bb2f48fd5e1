// Package follow turns a growing file into an endless stream: reads that
// reach the end of the file block until more data is written.
package follow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval bounds how long a read waits without a file event
// before checking the file again.
const DefaultPollInterval = time.Second

// Reader reads a file and waits for writes at EOF. It reports io.EOF once
// its context is cancelled or the file is removed or renamed.
type Reader struct {
	ctx     context.Context
	f       *os.File
	watcher *fsnotify.Watcher
	poll    time.Duration
	logger  *slog.Logger
}

// New watches f for writes. The Reader owns f and closes it in Close.
func New(ctx context.Context, f *os.File, logger *slog.Logger) (*Reader, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("follow: watcher: %w", err)
	}
	if err := w.Add(f.Name()); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("follow: watch %s: %w", f.Name(), err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "follow")
	logger.Info("follow: started", slog.String("path", f.Name()))
	return &Reader{
		ctx:     ctx,
		f:       f,
		watcher: w,
		poll:    DefaultPollInterval,
		logger:  logger,
	}, nil
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	for {
		n, err := r.f.Read(p)
		if n > 0 {
			return n, nil
		}
		if !errors.Is(err, io.EOF) {
			return 0, err
		}
		if err := r.wait(); err != nil {
			return 0, err
		}
	}
}

// wait blocks until the file may have grown. A nil return means retry.
func (r *Reader) wait() error {
	timer := time.NewTimer(r.poll)
	defer timer.Stop()

	select {
	case <-r.ctx.Done():
		return io.EOF
	case ev, ok := <-r.watcher.Events:
		if !ok {
			return io.EOF
		}
		if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) || r.gone() {
			r.logger.Info("follow: file went away", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			return io.EOF
		}
		return nil
	case err, ok := <-r.watcher.Errors:
		if !ok {
			return io.EOF
		}
		r.logger.Error("follow: watcher error", slog.String("error", err.Error()))
		return nil
	case <-timer.C:
		if r.gone() {
			return io.EOF
		}
		return nil
	}
}

// gone reports whether the path no longer exists. Unlinking an open file
// only produces a Chmod event on some platforms.
func (r *Reader) gone() bool {
	_, err := os.Stat(r.f.Name())
	return errors.Is(err, fs.ErrNotExist)
}

// Close stops watching and closes the file.
func (r *Reader) Close() error {
	return errors.Join(r.watcher.Close(), r.f.Close())
}
