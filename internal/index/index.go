// Package index provides the ordered inverted index used for tags, content
// words and creation dates.
package index

import (
	"cmp"
	"time"

	"github.com/google/btree"

	"github.com/starford/notesearch/internal/models"
)

type bucket[K any] struct {
	key   K
	notes *NoteSet
}

// Inverted maps ordered keys to the ordered set of notes sharing that key.
// It is not safe for concurrent use; the engine serialises access.
type Inverted[K any] struct {
	keys *btree.BTreeG[*bucket[K]]
}

// New returns an empty index ordered by less.
func New[K any](less func(a, b K) bool) *Inverted[K] {
	return &Inverted[K]{
		keys: btree.NewG(degree, func(a, b *bucket[K]) bool {
			return less(a.key, b.key)
		}),
	}
}

// NewString returns an index keyed by strings in byte order.
func NewString() *Inverted[string] {
	return New(cmp.Less[string])
}

// NewTime returns an index keyed by instants.
func NewTime() *Inverted[time.Time] {
	return New(func(a, b time.Time) bool { return a.Before(b) })
}

func (ix *Inverted[K]) bucket(key K) (*bucket[K], bool) {
	return ix.keys.Get(&bucket[K]{key: key})
}

// Add files note under key.
func (ix *Inverted[K]) Add(key K, note *models.Note) {
	b, ok := ix.bucket(key)
	if !ok {
		b = &bucket[K]{key: key, notes: NewNoteSet()}
		ix.keys.ReplaceOrInsert(b)
	}
	b.notes.Add(note)
}

// Remove takes note out of the bucket for key, dropping the bucket once it
// is empty. It reports whether note was present.
func (ix *Inverted[K]) Remove(key K, note *models.Note) bool {
	b, ok := ix.bucket(key)
	if !ok {
		return false
	}
	removed := b.notes.Remove(note)
	if b.notes.Len() == 0 {
		ix.keys.Delete(b)
	}
	return removed
}

// Get returns the bucket for key, or nil when the key is unknown.
func (ix *Inverted[K]) Get(key K) *NoteSet {
	b, ok := ix.bucket(key)
	if !ok {
		return nil
	}
	return b.notes
}

// Contains reports whether note is filed under key.
func (ix *Inverted[K]) Contains(key K, note *models.Note) bool {
	return ix.Get(key).Contains(note)
}

// Len returns the number of distinct keys.
func (ix *Inverted[K]) Len() int {
	return ix.keys.Len()
}

// AscendRange visits buckets with from <= key < to in key order.
// The NoteSet passed to fn must not be modified.
func (ix *Inverted[K]) AscendRange(from, to K, fn func(key K, notes *NoteSet) bool) {
	ix.keys.AscendRange(&bucket[K]{key: from}, &bucket[K]{key: to}, func(b *bucket[K]) bool {
		return fn(b.key, b.notes)
	})
}

// AscendFrom visits buckets with key >= from in key order.
func (ix *Inverted[K]) AscendFrom(from K, fn func(key K, notes *NoteSet) bool) {
	ix.keys.AscendGreaterOrEqual(&bucket[K]{key: from}, func(b *bucket[K]) bool {
		return fn(b.key, b.notes)
	})
}

// Ascend visits every bucket in key order.
func (ix *Inverted[K]) Ascend(fn func(key K, notes *NoteSet) bool) {
	ix.keys.Ascend(func(b *bucket[K]) bool {
		return fn(b.key, b.notes)
	})
}

// Keys returns every key in order.
func (ix *Inverted[K]) Keys() []K {
	out := make([]K, 0, ix.keys.Len())
	ix.Ascend(func(key K, _ *NoteSet) bool {
		out = append(out, key)
		return true
	})
	return out
}
