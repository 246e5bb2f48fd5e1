// Package testutil provides shared test helpers for building records and loggers.
package testutil

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// Record renders a note record terminated by </note>.
func Record(guid, created, content string, tags ...string) []byte {
	var b bytes.Buffer
	b.WriteString("<note>\n")
	fmt.Fprintf(&b, "<guid>%s</guid>\n", guid)
	fmt.Fprintf(&b, "<created>%s</created>\n", created)
	for _, t := range tags {
		fmt.Fprintf(&b, "<tag>%s</tag>\n", t)
	}
	fmt.Fprintf(&b, "<content>%s</content>\n", content)
	b.WriteString("</note>\n")
	return b.Bytes()
}

// Logger returns a debug-level logger that writes through t.Log.
func Logger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(tWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type tWriter struct{ t *testing.T }

func (w tWriter) Write(p []byte) (int, error) {
	w.t.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}

// WriteFile creates name under a temporary directory and returns its path.
func WriteFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
