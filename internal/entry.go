// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/notesearch/internal/cmdloop"
	"github.com/starford/notesearch/internal/engine"
	"github.com/starford/notesearch/internal/mcpserver"
	"github.com/starford/notesearch/internal/metrics"
	"github.com/starford/notesearch/internal/noteservice"
	"github.com/starford/notesearch/internal/source"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{
		version: "dev",
		output:  os.Stdout,
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Logs go to stderr; stdout carries results.
	logger := NewLogger(os.Stderr, cfg.App)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("input", cfg.Input.Path),
		slog.Bool("follow", cfg.Input.Follow),
		slog.String("duplicate_policy", cfg.Index.DuplicatePolicy),
		slog.String("metrics_textfile", cfg.Metrics.Textfile),
		slog.Bool("mcp", app.mcp),
		slog.String("log_level", cfg.App.LogLevel.String()))

	m := metrics.New()
	eng := engine.New(
		engine.WithDuplicatePolicy(engine.DuplicatePolicy(cfg.Index.DuplicatePolicy)),
		engine.WithLogger(logger),
	)
	svc := noteservice.NewService(eng,
		noteservice.WithLogger(logger),
		noteservice.WithRecorder(m),
	)

	g, gCtx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gCtx)
	defer stop()

	in, err := app.openInput(runCtx, logger)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	in = source.Detach(runCtx, in)
	defer in.Close()

	g.Go(func() error {
		defer stop()
		if app.mcp {
			logger.Info("Serving MCP on stdio", slog.String("version", app.version))
			return mcpserver.New(svc, app.version).ServeStdio(runCtx, in, app.output)
		}
		return cmdloop.New(svc, app.output, logger).Run(runCtx, in)
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			stop()
		case <-runCtx.Done():
		}
		return nil
	})

	runErr := g.Wait()

	st := eng.Stats()
	m.SetCorpus(st.Notes, st.Deleted)
	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Error("Metrics write failed", slog.String("error", err.Error()))
		}
	}

	if runErr != nil && ctx.Err() == nil {
		logger.Error("Application error", slog.String("error", runErr.Error()))
		return runErr
	}

	logger.Info("Stopped",
		slog.Int("notes", st.Notes),
		slog.Int("deleted", st.Deleted),
		slog.Int("tags", st.Tags),
		slog.Int("words", st.Words))
	return nil
}

func (a *application) openInput(ctx context.Context, logger *slog.Logger) (io.ReadCloser, error) {
	if a.input != nil {
		return a.input, nil
	}
	if a.mcp {
		return os.Stdin, nil
	}
	return source.Open(ctx, a.config.Input.Path, a.config.Input.Follow, logger)
}

// NewLogger builds the application logger in the configured format.
func NewLogger(w io.Writer, cfg ApplicationConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	switch cfg.LogFormat {
	case LogFormatText:
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}
