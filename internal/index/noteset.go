package index

import (
	"github.com/google/btree"

	"github.com/starford/notesearch/internal/models"
)

const degree = 16

// NoteSet is an ordered set of notes, ordered by models.Compare.
// The zero value is not usable; build one with NewNoteSet.
type NoteSet struct {
	tree *btree.BTreeG[*models.Note]
}

// NewNoteSet returns a set holding notes.
func NewNoteSet(notes ...*models.Note) *NoteSet {
	s := &NoteSet{tree: btree.NewG(degree, models.Less)}
	for _, n := range notes {
		s.tree.ReplaceOrInsert(n)
	}
	return s
}

// Add inserts n and reports whether it was absent.
func (s *NoteSet) Add(n *models.Note) bool {
	_, replaced := s.tree.ReplaceOrInsert(n)
	return !replaced
}

// Remove deletes n itself. A different note comparing equal to n is left
// in place and Remove reports false.
func (s *NoteSet) Remove(n *models.Note) bool {
	got, ok := s.tree.Get(n)
	if !ok || got != n {
		return false
	}
	s.tree.Delete(n)
	return true
}

// Contains reports whether n itself is a member.
func (s *NoteSet) Contains(n *models.Note) bool {
	if s == nil {
		return false
	}
	got, ok := s.tree.Get(n)
	return ok && got == n
}

// Len returns the number of notes. A nil set is empty.
func (s *NoteSet) Len() int {
	if s == nil {
		return 0
	}
	return s.tree.Len()
}

// Union adds every note of other to s.
func (s *NoteSet) Union(other *NoteSet) {
	other.Ascend(func(n *models.Note) bool {
		s.tree.ReplaceOrInsert(n)
		return true
	})
}

// Ascend calls fn for each note in order until fn returns false.
func (s *NoteSet) Ascend(fn func(n *models.Note) bool) {
	if s == nil {
		return
	}
	s.tree.Ascend(fn)
}

// Slice returns the notes in order.
func (s *NoteSet) Slice() []*models.Note {
	out := make([]*models.Note, 0, s.Len())
	s.Ascend(func(n *models.Note) bool {
		out = append(out, n)
		return true
	})
	return out
}
