package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/notesearch/internal/apperr"
	"github.com/starford/notesearch/internal/engine"
	"github.com/starford/notesearch/internal/models"
	"github.com/starford/notesearch/internal/parser"
)

// Command names used for logging and metrics.
const (
	CommandCreate = "create"
	CommandUpdate = "update"
	CommandDelete = "delete"
	CommandSearch = "search"
	CommandStats  = "stats"
)

// Recorder receives per-command observations.
type Recorder interface {
	ObserveCommand(command string, err error)
	ObserveSearch(d time.Duration, hits int)
	SetCorpus(notes, deleted int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCommand(string, error)      {}
func (nopRecorder) ObserveSearch(time.Duration, int) {}
func (nopRecorder) SetCorpus(int, int)                {}

// Service turns raw records and queries into engine operations.
type Service struct {
	engine   *engine.Engine
	logger   *slog.Logger
	recorder Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// NewService creates a new note service.
func NewService(eng *engine.Engine, opts ...Option) *Service {
	s := &Service{
		engine:   eng,
		logger:   slog.Default(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "noteservice")
	return s
}

// CreateNote parses raw and adds the note to the index.
func (s *Service) CreateNote(_ context.Context, raw []byte) (*models.Note, error) {
	n := s.parse(CommandCreate, raw)
	if err := s.engine.Create(n); err != nil {
		return nil, s.fail(CommandCreate, n.ID, err)
	}
	s.done(CommandCreate)
	return n, nil
}

// UpdateNote parses raw and replaces the note with the same identifier.
func (s *Service) UpdateNote(_ context.Context, raw []byte) (*models.Note, error) {
	n := s.parse(CommandUpdate, raw)
	if err := s.engine.Update(n); err != nil {
		return nil, s.fail(CommandUpdate, n.ID, err)
	}
	s.done(CommandUpdate)
	return n, nil
}

// DeleteNote tombstones id.
func (s *Service) DeleteNote(_ context.Context, id string) error {
	if err := s.engine.Delete(id); err != nil {
		return s.fail(CommandDelete, id, err)
	}
	s.done(CommandDelete)
	return nil
}

// GetNote returns the current version of a live note.
func (s *Service) GetNote(_ context.Context, id string) (*models.Note, error) {
	n, ok := s.engine.Get(id)
	if !ok || s.engine.Deleted(id) {
		return nil, fmt.Errorf("noteservice: get %q: %w", id, apperr.ErrNotFound)
	}
	return n, nil
}

// Search evaluates query and returns matching identifiers in index order.
func (s *Service) Search(_ context.Context, query string) ([]string, error) {
	start := time.Now()
	ids, err := s.engine.Search(query)
	s.recorder.ObserveCommand(CommandSearch, err)
	if err != nil {
		s.logger.Warn("search failed", slog.String("query", query), slog.String("error", err.Error()))
		return ids, fmt.Errorf("noteservice: search: %w", err)
	}
	s.recorder.ObserveSearch(time.Since(start), len(ids))
	s.logger.Debug("search", slog.String("query", query), slog.Int("hits", len(ids)))
	return ids, nil
}

// Stats returns engine sizes.
func (s *Service) Stats() engine.Stats {
	s.recorder.ObserveCommand(CommandStats, nil)
	return s.engine.Stats()
}

// RejectCommand records an unrecognised command token.
func (s *Service) RejectCommand(token string) error {
	err := fmt.Errorf("noteservice: %q: %w", token, apperr.ErrInvalidCommand)
	s.recorder.ObserveCommand("unknown", err)
	s.logger.Warn("invalid command", slog.String("token", token))
	return err
}

// parse always yields a note; extraction problems are only logged so that
// engine validation decides whether the record is usable.
func (s *Service) parse(command string, raw []byte) *models.Note {
	n, err := parser.Parse(raw)
	if err != nil {
		s.logger.Warn("malformed record",
			slog.String("command", command),
			slog.String("guid", n.ID),
			slog.String("error", err.Error()),
		)
	}
	return n
}

func (s *Service) fail(command, id string, err error) error {
	s.recorder.ObserveCommand(command, err)
	s.logger.Warn(command+" failed", slog.String("guid", id), slog.String("error", err.Error()))
	return fmt.Errorf("noteservice: %s: %w", command, err)
}

func (s *Service) done(command string) {
	s.recorder.ObserveCommand(command, nil)
	st := s.engine.Stats()
	s.recorder.SetCorpus(st.Notes, st.Deleted)
}
