// Package models defines the domain types for notesearch.
package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notesearch/internal/apperr"
)

// Note is one indexed record. A Note must not be modified once built; an
// UPDATE replaces it with a new *Note instead.
type Note struct {
	ID       string    `json:"guid"`
	Created  time.Time `json:"created"`
	Tags     []string  `json:"tags"`
	Words    []string  `json:"-"`
	Checksum string    `json:"checksum,omitempty"`
}

// NewNote builds a Note, normalising created to UTC at second resolution and
// tags and words to sorted sets.
func NewNote(id string, created time.Time, tags, words []string, checksum string) *Note {
	if !created.IsZero() {
		created = created.UTC().Truncate(time.Second)
	}
	return &Note{
		ID:       id,
		Created:  created,
		Tags:     sortedSet(tags),
		Words:    sortedSet(words),
		Checksum: checksum,
	}
}

// Validate reports whether the note carries the fields the index orders by.
func (n *Note) Validate() error {
	err := validation.ValidateStruct(n,
		validation.Field(&n.ID, validation.Required),
		validation.Field(&n.Created, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrMalformedRecord, err)
	}
	return nil
}

// HasTag reports whether tag is one of the note's tags.
func (n *Note) HasTag(tag string) bool {
	_, ok := slices.BinarySearch(n.Tags, tag)
	return ok
}

// HasWord reports whether word occurs in the note's content.
func (n *Note) HasWord(word string) bool {
	_, ok := slices.BinarySearch(n.Words, word)
	return ok
}

// Compare orders notes by creation time, then by identifier.
func Compare(a, b *Note) int {
	if c := a.Created.Compare(b.Created); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// Less is the strict form of Compare.
func Less(a, b *Note) bool {
	return Compare(a, b) < 0
}

func sortedSet(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
