// Package engine keeps the note corpus and its tag, content and creation-date
// indices consistent under CREATE, UPDATE and DELETE, and evaluates queries
// against them.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/notesearch/internal/apperr"
	"github.com/starford/notesearch/internal/index"
	"github.com/starford/notesearch/internal/models"
)

// DuplicatePolicy decides what Create does with an identifier that is
// already in the corpus.
type DuplicatePolicy string

const (
	// DuplicateReject fails the create with apperr.ErrAlreadyExists.
	DuplicateReject DuplicatePolicy = "reject"
	// DuplicateReplace treats the create as an update.
	DuplicateReplace DuplicatePolicy = "replace"
)

// Stats summarises the engine state.
type Stats struct {
	Notes   int `json:"notes"`
	Deleted int `json:"deleted"`
	Tags    int `json:"tags"`
	Words   int `json:"words"`
	Dates   int `json:"dates"`
}

// Engine owns the corpus, the tombstones and the three inverted indices.
// Mutations are serialised; searches may run concurrently with each other.
type Engine struct {
	mu     sync.RWMutex
	policy DuplicatePolicy
	logger *slog.Logger

	corpus  map[string]*models.Note
	deleted map[string]struct{}

	tags    *index.Inverted[string]
	words   *index.Inverted[string]
	created *index.Inverted[time.Time]
}

// Option configures an Engine.
type Option func(*Engine)

// WithDuplicatePolicy sets the policy applied by Create.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New returns an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		policy:  DuplicateReject,
		logger:  slog.Default(),
		corpus:  make(map[string]*models.Note),
		deleted: make(map[string]struct{}),
		tags:    index.NewString(),
		words:   index.NewString(),
		created: index.NewTime(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "engine")
	return e
}

// Create adds a note under a new identifier.
func (e *Engine) Create(n *models.Note) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("engine: create: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if old, ok := e.corpus[n.ID]; ok {
		if e.policy != DuplicateReplace {
			return fmt.Errorf("engine: create %q: %w", n.ID, apperr.ErrAlreadyExists)
		}
		e.logger.Debug("create replaces existing note", slog.String("guid", n.ID))
		e.unindex(old)
	}
	e.insert(n)
	return nil
}

// Update replaces the current version of the note with the same identifier.
func (e *Engine) Update(n *models.Note) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("engine: update: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	old, ok := e.corpus[n.ID]
	if !ok {
		return fmt.Errorf("engine: update %q: %w", n.ID, apperr.ErrNotFound)
	}
	if old.Checksum != "" && old.Checksum == n.Checksum {
		e.logger.Debug("update unchanged", slog.String("guid", n.ID))
		return nil
	}
	e.unindex(old)
	e.insert(n)
	return nil
}

// Delete tombstones the note with the given identifier. The note stays in
// the corpus and the indices but is never returned by Search again.
func (e *Engine) Delete(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.corpus[id]; !ok {
		return fmt.Errorf("engine: delete %q: %w", id, apperr.ErrNotFound)
	}
	e.deleted[id] = struct{}{}
	return nil
}

// Get returns the current version of a note, deleted or not.
func (e *Engine) Get(id string) (*models.Note, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n, ok := e.corpus[id]
	return n, ok
}

// Deleted reports whether id has been tombstoned.
func (e *Engine) Deleted(id string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.deleted[id]
	return ok
}

// Stats returns corpus and index sizes.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Stats{
		Notes:   len(e.corpus),
		Deleted: len(e.deleted),
		Tags:    e.tags.Len(),
		Words:   e.words.Len(),
		Dates:   e.created.Len(),
	}
}

// insert files n in the corpus and every index. Callers hold mu.
func (e *Engine) insert(n *models.Note) {
	e.corpus[n.ID] = n
	for _, t := range n.Tags {
		e.tags.Add(t, n)
	}
	for _, w := range n.Words {
		e.words.Add(w, n)
	}
	e.created.Add(n.Created, n)
}

// unindex removes n from every bucket it was filed under and from the
// corpus. Callers hold mu.
func (e *Engine) unindex(n *models.Note) {
	for _, t := range n.Tags {
		e.tags.Remove(t, n)
	}
	for _, w := range n.Words {
		e.words.Remove(w, n)
	}
	e.created.Remove(n.Created, n)
	delete(e.corpus, n.ID)
}
