package engine

import (
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/starford/notesearch/internal/models"
)

var (
	vocab   = []string{"alpha", "alps", "bet", "beta", "wor", "word", "work", "world", "zeta"}
	tagPool = []string{"home", "misc", "work", "workshop"}
	epoch   = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
)

// noteGen draws a note with the given identifier from a small vocabulary so
// that terms collide often.
func noteGen(id string) *rapid.Generator[*models.Note] {
	return rapid.Custom(func(t *rapid.T) *models.Note {
		days := rapid.IntRange(0, 9).Draw(t, "days")
		hours := rapid.IntRange(0, 2).Draw(t, "hours")
		tags := rapid.SliceOfDistinct(rapid.SampledFrom(tagPool), rapid.ID[string]).Draw(t, "tags")
		words := rapid.SliceOfDistinct(rapid.SampledFrom(vocab), rapid.ID[string]).Draw(t, "words")
		created := epoch.Add(time.Duration(days)*24*time.Hour + time.Duration(hours)*time.Hour)
		return models.NewNote(id, created, tags, words, "")
	})
}

func corpusGen(t *rapid.T) []*models.Note {
	n := rapid.IntRange(1, 12).Draw(t, "n")
	out := make([]*models.Note, n)
	for i := range out {
		out[i] = noteGen(fmt.Sprintf("n%02d", i)).Draw(t, fmt.Sprintf("note%d", i))
	}
	return out
}

// expect filters live notes by match and returns their identifiers in
// index order.
func expect(notes []*models.Note, deleted map[string]bool, match func(*models.Note) bool) []string {
	var hits []*models.Note
	for _, n := range notes {
		if !deleted[n.ID] && match(n) {
			hits = append(hits, n)
		}
	}
	slices.SortFunc(hits, models.Compare)
	out := []string{}
	for _, n := range hits {
		out = append(out, n.ID)
	}
	return out
}

func build(t *rapid.T, notes []*models.Note) *Engine {
	e := New()
	for _, n := range notes {
		if err := e.Create(n); err != nil {
			t.Fatalf("create %s: %v", n.ID, err)
		}
	}
	return e
}

func search(t *rapid.T, e *Engine, q string) []string {
	got, err := e.Search(q)
	if err != nil {
		t.Fatalf("search %q: %v", q, err)
	}
	return got
}

func TestProperty_CreatedNotesFoundByEveryTagAndWord(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		notes := corpusGen(t)
		e := build(t, notes)

		for _, n := range notes {
			for _, w := range n.Words {
				if !slices.Contains(search(t, e, w), n.ID) {
					t.Fatalf("%s not found by word %q", n.ID, w)
				}
			}
			for _, tag := range n.Tags {
				if !slices.Contains(search(t, e, "tag:"+tag), n.ID) {
					t.Fatalf("%s not found by tag %q", n.ID, tag)
				}
			}
		}
	})
}

func TestProperty_UpdatePurgesPreviousVersion(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		notes := corpusGen(t)
		e := build(t, notes)

		i := rapid.IntRange(0, len(notes)-1).Draw(t, "target")
		old := notes[i]
		updated := noteGen(old.ID).Draw(t, "updated")
		if err := e.Update(updated); err != nil {
			t.Fatalf("update: %v", err)
		}

		for _, w := range old.Words {
			if e.words.Contains(w, old) {
				t.Fatalf("stale note left under word %q", w)
			}
		}
		for _, tag := range old.Tags {
			if e.tags.Contains(tag, old) {
				t.Fatalf("stale note left under tag %q", tag)
			}
		}
		if e.created.Contains(old.Created, old) {
			t.Fatal("stale note left under created date")
		}
		for _, w := range updated.Words {
			if !e.words.Contains(w, updated) {
				t.Fatalf("updated note missing under word %q", w)
			}
		}
		for _, tag := range updated.Tags {
			if !e.tags.Contains(tag, updated) {
				t.Fatalf("updated note missing under tag %q", tag)
			}
		}
		if !e.created.Contains(updated.Created, updated) {
			t.Fatal("updated note missing under created date")
		}

		notes[i] = updated
		for _, w := range vocab {
			want := expect(notes, nil, func(n *models.Note) bool { return n.HasWord(w) })
			if got := search(t, e, w); !slices.Equal(got, want) {
				t.Fatalf("search %q = %v, want %v", w, got, want)
			}
		}
	})
}

func TestProperty_DeleteIsMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		notes := corpusGen(t)
		e := build(t, notes)

		victim := notes[rapid.IntRange(0, len(notes)-1).Draw(t, "victim")].ID
		if err := e.Delete(victim); err != nil {
			t.Fatalf("delete: %v", err)
		}

		extra := rapid.IntRange(0, 5).Draw(t, "extra")
		for i := 0; i < extra; i++ {
			n := noteGen(fmt.Sprintf("x%02d", i)).Draw(t, fmt.Sprintf("extra%d", i))
			if err := e.Create(n); err != nil {
				t.Fatalf("create: %v", err)
			}
			for _, w := range vocab {
				if slices.Contains(search(t, e, w), victim) {
					t.Fatalf("deleted %s reappeared for %q", victim, w)
				}
			}
		}
	})
}

func TestProperty_IntersectionLaw(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		notes := corpusGen(t)
		e := build(t, notes)

		a := rapid.SampledFrom(vocab).Draw(t, "a")
		b := rapid.SampledFrom(append(slices.Clone(vocab), "tag:work", "tag:home")).Draw(t, "b")

		both := search(t, e, a+" "+b)
		left := search(t, e, a)
		right := search(t, e, b)

		var want []string
		for _, id := range left {
			if slices.Contains(right, id) {
				want = append(want, id)
			}
		}
		if len(both) != len(want) || (len(want) > 0 && !slices.Equal(both, want)) {
			t.Fatalf("search(%q) = %v, want %v", a+" "+b, both, want)
		}
	})
}

func TestProperty_PrefixIsUnionOfExact(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		notes := corpusGen(t)
		e := build(t, notes)

		prefix := rapid.SampledFrom([]string{"a", "al", "b", "bet", "w", "wor", "work", "z", "q"}).Draw(t, "prefix")
		want := expect(notes, nil, func(n *models.Note) bool {
			return slices.ContainsFunc(n.Words, func(w string) bool { return strings.HasPrefix(w, prefix) })
		})
		if got := search(t, e, prefix+"*"); !slices.Equal(got, want) {
			t.Fatalf("search(%q) = %v, want %v", prefix+"*", got, want)
		}
	})
}

func TestProperty_CreatedIsTailFilter(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		notes := corpusGen(t)
		e := build(t, notes)

		since := epoch.AddDate(0, 0, rapid.IntRange(-1, 11).Draw(t, "day"))
		want := expect(notes, nil, func(n *models.Note) bool { return !n.Created.Before(since) })
		q := "created:" + since.Format("20060102")
		if got := search(t, e, q); !slices.Equal(got, want) {
			t.Fatalf("search(%q) = %v, want %v", q, got, want)
		}
	})
}
