package follow

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openFollow(t *testing.T, ctx context.Context, initial string) (*Reader, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "commands.log")
	if err := os.WriteFile(path, []byte(initial), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	r, err := New(ctx, f, quietLogger())
	if err != nil {
		f.Close()
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r, path
}

func appendFile(path, data string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(data)
	return err
}

func TestReader_WaitsForAppend(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r, path := openFollow(t, ctx, "first\n")
	br := bufio.NewReader(r)

	line, err := br.ReadString('\n')
	if err != nil || line != "first\n" {
		t.Fatalf("first line = %q, %v", line, err)
	}

	go func() {
		time.Sleep(100 * time.Millisecond)
		if err := appendFile(path, "second\n"); err != nil {
			t.Errorf("append: %v", err)
		}
	}()

	line, err = br.ReadString('\n')
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if line != "second\n" {
		t.Errorf("line = %q, want %q", line, "second\n")
	}
}

func TestReader_CancelYieldsEOF(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r, _ := openFollow(t, ctx, "")

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	buf := make([]byte, 16)
	n, err := r.Read(buf)
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("Read = %d, %v; want 0, EOF", n, err)
	}
}

func TestReader_RemoveYieldsEOF(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r, path := openFollow(t, ctx, "")

	go func() {
		time.Sleep(50 * time.Millisecond)
		os.Remove(path)
	}()

	_, err := io.ReadAll(r)
	if err != nil {
		t.Errorf("ReadAll: %v", err)
	}
	if ctx.Err() != nil {
		t.Error("reader returned only after timeout")
	}
}
