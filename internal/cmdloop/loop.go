// Package cmdloop reads CREATE, UPDATE, DELETE, SEARCH and STATS commands
// from a stream and writes SEARCH and STATS results to an output writer.
package cmdloop

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/starford/notesearch/internal/apperr"
	"github.com/starford/notesearch/internal/noteservice"
	"github.com/starford/notesearch/internal/parser"
)

// Command tokens.
const (
	CmdCreate = "CREATE"
	CmdUpdate = "UPDATE"
	CmdDelete = "DELETE"
	CmdSearch = "SEARCH"
	CmdStats  = "STATS"
)

// Loop dispatches commands to a note service.
type Loop struct {
	svc    *noteservice.Service
	out    *bufio.Writer
	logger *slog.Logger
}

// New returns a loop that writes results to out.
func New(svc *noteservice.Service, out io.Writer, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		svc:    svc,
		out:    bufio.NewWriter(out),
		logger: logger.With("component", "cmdloop"),
	}
}

// Run processes commands from in until it is exhausted. Command and record
// errors are logged and skipped; only a failure to read in or write results
// is returned.
func (l *Loop) Run(ctx context.Context, in io.Reader) error {
	sc := newScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		tok, err := sc.token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return l.stop(ctx, fmt.Errorf("cmdloop: read: %w", err))
		}

		done, err := l.dispatch(ctx, sc, tok)
		if err != nil {
			return l.stop(ctx, err)
		}
		if done {
			return nil
		}
	}
}

// dispatch runs one command. done reports that the stream ended inside it.
func (l *Loop) dispatch(ctx context.Context, sc *scanner, tok string) (done bool, err error) {
	switch tok {
	case CmdCreate, CmdUpdate:
		block, err := sc.until(parser.RecordDelimiter)
		switch {
		case err == io.EOF:
			l.logger.Warn("stream ended before record", slog.String("command", tok))
			return true, nil
		case errors.Is(err, io.ErrUnexpectedEOF):
			l.logger.Warn("truncated record",
				slog.String("command", tok),
				slog.String("error", fmt.Errorf("%w: missing %s", apperr.ErrMalformedRecord, parser.RecordDelimiter).Error()),
			)
			return true, nil
		case err != nil:
			return false, fmt.Errorf("cmdloop: read: %w", err)
		}
		if tok == CmdCreate {
			_, _ = l.svc.CreateNote(ctx, block)
		} else {
			_, _ = l.svc.UpdateNote(ctx, block)
		}

	case CmdDelete:
		id, err := sc.token()
		if err == io.EOF {
			l.logger.Warn("stream ended before identifier", slog.String("command", tok))
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("cmdloop: read: %w", err)
		}
		_ = l.svc.DeleteNote(ctx, id)

	case CmdSearch:
		q, err := sc.line()
		if err != nil && err != io.EOF {
			return false, fmt.Errorf("cmdloop: read: %w", err)
		}
		ids, _ := l.svc.Search(ctx, q)
		return err == io.EOF, l.println(strings.Join(ids, ","))

	case CmdStats:
		st := l.svc.Stats()
		return false, l.println(fmt.Sprintf("notes=%d deleted=%d tags=%d words=%d dates=%d",
			st.Notes, st.Deleted, st.Tags, st.Words, st.Dates))

	default:
		_ = l.svc.RejectCommand(tok)
	}
	return false, nil
}

func (l *Loop) println(s string) error {
	if _, err := l.out.WriteString(s + "\n"); err != nil {
		return fmt.Errorf("cmdloop: write: %w", err)
	}
	if err := l.out.Flush(); err != nil {
		return fmt.Errorf("cmdloop: write: %w", err)
	}
	return nil
}

// stop maps a failure caused by shutdown to a clean exit.
func (l *Loop) stop(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}
