package engine

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/starford/notesearch/internal/apperr"
	"github.com/starford/notesearch/internal/index"
	"github.com/starford/notesearch/internal/models"
)

const (
	tagPrefix     = "tag:"
	createdPrefix = "created:"
	wildcard      = "*"
	createdLayout = "20060102"
)

type termKind int

const (
	termWord termKind = iota
	termWordPrefix
	termTag
	termTagPrefix
	termCreatedSince
)

type term struct {
	kind  termKind
	key   string
	since time.Time
}

// parseQuery splits q on whitespace and classifies each term. Terms are
// lowercased because every indexed tag and word is.
func parseQuery(q string) ([]term, error) {
	fields := strings.Fields(q)
	terms := make([]term, 0, len(fields))
	for _, f := range fields {
		t, err := parseTerm(strings.ToLower(f))
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}

func parseTerm(s string) (term, error) {
	switch {
	case strings.HasPrefix(s, tagPrefix):
		tag := strings.TrimPrefix(s, tagPrefix)
		if p, ok := strings.CutSuffix(tag, wildcard); ok {
			return term{kind: termTagPrefix, key: p}, nil
		}
		return term{kind: termTag, key: tag}, nil

	case strings.HasPrefix(s, createdPrefix):
		raw := strings.TrimPrefix(s, createdPrefix)
		day, err := time.Parse(createdLayout, raw)
		if err != nil || len(raw) != len(createdLayout) {
			return term{}, fmt.Errorf("engine: %w: created date %q is not YYYYMMDD", apperr.ErrInvalidQuery, raw)
		}
		return term{kind: termCreatedSince, since: day}, nil

	default:
		if p, ok := strings.CutSuffix(s, wildcard); ok {
			return term{kind: termWordPrefix, key: p}, nil
		}
		return term{kind: termWord, key: s}, nil
	}
}

// Search returns the identifiers of live notes matching every term of q,
// ordered by creation time then identifier. A query without terms, or with
// any term matching nothing, yields an empty result.
func (e *Engine) Search(q string) ([]string, error) {
	terms, err := parseQuery(q)
	if err != nil {
		return []string{}, err
	}
	if len(terms) == 0 {
		return []string{}, nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	sets := make([]*index.NoteSet, 0, len(terms))
	for _, t := range terms {
		s := e.resolve(t)
		if s.Len() == 0 {
			return []string{}, nil
		}
		sets = append(sets, s)
	}

	out := []string{}
	for _, n := range intersect(sets) {
		if _, gone := e.deleted[n.ID]; gone {
			continue
		}
		out = append(out, n.ID)
	}
	return out, nil
}

// resolve maps one term to its candidate notes. Callers hold mu.
func (e *Engine) resolve(t term) *index.NoteSet {
	switch t.kind {
	case termTag:
		return e.tags.Get(t.key)
	case termTagPrefix:
		return prefixUnion(e.tags, t.key)
	case termWordPrefix:
		return prefixUnion(e.words, t.key)
	case termCreatedSince:
		out := index.NewNoteSet()
		e.created.AscendFrom(t.since, func(_ time.Time, notes *index.NoteSet) bool {
			out.Union(notes)
			return true
		})
		return out
	default:
		return e.words.Get(t.key)
	}
}

// prefixUnion collects every bucket whose key starts with prefix, scanning
// the half-open range [prefix, successor(prefix)).
func prefixUnion(ix *index.Inverted[string], prefix string) *index.NoteSet {
	out := index.NewNoteSet()
	collect := func(_ string, notes *index.NoteSet) bool {
		out.Union(notes)
		return true
	}

	if prefix == "" {
		ix.Ascend(collect)
		return out
	}
	if upper, ok := successor(prefix); ok {
		ix.AscendRange(prefix, upper, collect)
		return out
	}
	ix.AscendFrom(prefix, func(key string, notes *index.NoteSet) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}
		return collect(key, notes)
	})
	return out
}

// successor returns the smallest string greater than every string with
// prefix s, built by incrementing the last code point. A last code point of
// utf8.MaxRune is dropped and the increment carried to the one before it;
// ok is false when no finite successor exists.
func successor(s string) (string, bool) {
	for s != "" {
		r, size := utf8.DecodeLastRuneInString(s)
		head := s[:len(s)-size]

		if r == utf8.RuneError && size == 1 {
			if b := s[len(s)-1]; b < 0xff {
				return head + string([]byte{b + 1}), true
			}
			s = head
			continue
		}

		next := r + 1
		if next >= 0xd800 && next <= 0xdfff {
			next = 0xe000
		}
		if next <= utf8.MaxRune {
			return head + string(next), true
		}
		s = head
	}
	return "", false
}

// intersect returns the notes present in every set, in order. It walks the
// smallest set and probes the others.
func intersect(sets []*index.NoteSet) []*models.Note {
	smallest := 0
	for i, s := range sets {
		if s.Len() < sets[smallest].Len() {
			smallest = i
		}
	}

	var out []*models.Note
	sets[smallest].Ascend(func(n *models.Note) bool {
		for i, s := range sets {
			if i != smallest && !s.Contains(n) {
				return true
			}
		}
		out = append(out, n)
		return true
	})
	return out
}
