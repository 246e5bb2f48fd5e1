package engine

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/notesearch/internal/apperr"
	"github.com/starford/notesearch/internal/models"
)

func seeded(t *testing.T) *Engine {
	t.Helper()
	e := New()
	notes := []*models.Note{
		models.NewNote("n1", date(2022, 12, 31), []string{"work", "urgent"}, []string{"word", "hello"}, ""),
		models.NewNote("n2", date(2023, 1, 1), []string{"workshop"}, []string{"world", "hello"}, ""),
		models.NewNote("n3", date(2023, 1, 1), []string{"home"}, []string{"worm", "there"}, ""),
		models.NewNote("n4", date(2023, 6, 1), []string{"work"}, []string{"wood", "hello", "there"}, ""),
	}
	for _, n := range notes {
		require.NoError(t, e.Create(n))
	}
	return e
}

func TestSearch_EmptyQuery(t *testing.T) {
	e := seeded(t)
	for _, q := range []string{"", "   ", "\t\n"} {
		got, err := e.Search(q)
		require.NoError(t, err)
		assert.Empty(t, got, "query %q", q)
		assert.NotNil(t, got)
	}
}

func TestSearch_ExactTermsAndIntersection(t *testing.T) {
	e := seeded(t)

	assert.Equal(t, []string{"n1", "n2", "n4"}, mustSearch(t, e, "hello"))
	assert.Equal(t, []string{"n4"}, mustSearch(t, e, "hello there"))
	assert.Equal(t, []string{"n1", "n4"}, mustSearch(t, e, "tag:work"))
	assert.Equal(t, []string{"n4"}, mustSearch(t, e, "tag:work  there"))
	assert.Equal(t, []string{"n1", "n2", "n4"}, mustSearch(t, e, "HELLO"), "terms are case-insensitive")
}

func TestSearch_UnknownTermEmptiesResult(t *testing.T) {
	e := seeded(t)
	assert.Empty(t, mustSearch(t, e, "hello nosuchword"))
	assert.Empty(t, mustSearch(t, e, "tag:nosuchtag hello"))
	assert.Empty(t, mustSearch(t, e, "tag:"))
}

func TestSearch_Prefix(t *testing.T) {
	e := seeded(t)

	assert.Equal(t, []string{"n1", "n2", "n3"}, mustSearch(t, e, "wor*"))
	assert.Equal(t, []string{"n1", "n2", "n3", "n4"}, mustSearch(t, e, "wo*"))
	assert.Equal(t, []string{"n1", "n2", "n4"}, mustSearch(t, e, "tag:work*"))
	assert.Equal(t, []string{"n2"}, mustSearch(t, e, "tag:works*"))
	assert.Equal(t, []string{"n2"}, mustSearch(t, e, "tag:work* world"))
	assert.Empty(t, mustSearch(t, e, "xyz*"))
}

func TestSearch_BarePrefixMatchesAllKeys(t *testing.T) {
	e := seeded(t)
	assert.Equal(t, []string{"n1", "n2", "n3", "n4"}, mustSearch(t, e, "*"))
	assert.Equal(t, []string{"n1", "n2", "n3", "n4"}, mustSearch(t, e, "tag:*"))
}

func TestSearch_CreatedTailRange(t *testing.T) {
	e := seeded(t)

	assert.Equal(t, []string{"n1", "n2", "n3", "n4"}, mustSearch(t, e, "created:20221231"))
	assert.Equal(t, []string{"n2", "n3", "n4"}, mustSearch(t, e, "created:20230101"))
	assert.Equal(t, []string{"n4"}, mustSearch(t, e, "created:20230102"))
	assert.Empty(t, mustSearch(t, e, "created:20240101"))
	assert.Equal(t, []string{"n2", "n4"}, mustSearch(t, e, "created:20230101 hello"))
}

func TestSearch_CreatedMalformed(t *testing.T) {
	e := seeded(t)
	for _, q := range []string{"created:2023", "created:2023-01-01", "created:20231301", "created:"} {
		got, err := e.Search(q)
		require.ErrorIs(t, err, apperr.ErrInvalidQuery, "query %q", q)
		assert.Empty(t, got)
	}
}

func TestSearch_FiltersTombstones(t *testing.T) {
	e := seeded(t)
	require.NoError(t, e.Delete("n2"))

	assert.Equal(t, []string{"n1", "n4"}, mustSearch(t, e, "hello"))
	assert.Empty(t, mustSearch(t, e, "tag:workshop"))
}

func TestSearch_PrefixWithMaxRune(t *testing.T) {
	e := New()
	maxed := "a" + string(utf8.MaxRune)
	require.NoError(t, e.Create(models.NewNote("x", date(2023, 1, 1), []string{maxed + "z"}, nil, "")))
	require.NoError(t, e.Create(models.NewNote("y", date(2023, 1, 2), []string{"b"}, nil, "")))

	assert.Equal(t, []string{"x"}, mustSearch(t, e, "tag:"+maxed+"*"))
}

func TestSuccessor(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"wor", "wos", true},
		{"a", "b", true},
		{"z", "{", true},
		{"café", "cafê", true},
		{"a" + string(rune(0xd7ff)), "a" + string(rune(0xe000)), true},
		{"a" + string(utf8.MaxRune), "b", true},
		{string(utf8.MaxRune), "", false},
		{"a\xff", "b", true},
		{"a\xfe", "a\xff", true},
	}
	for _, c := range cases {
		got, ok := successor(c.in)
		assert.Equal(t, c.ok, ok, "successor(%q)", c.in)
		assert.Equal(t, c.want, got, "successor(%q)", c.in)
	}
}

func TestParseTerm(t *testing.T) {
	cases := []struct {
		in   string
		kind termKind
		key  string
	}{
		{"hello", termWord, "hello"},
		{"hel*", termWordPrefix, "hel"},
		{"tag:work", termTag, "work"},
		{"tag:wo*", termTagPrefix, "wo"},
		{"tag:", termTag, ""},
	}
	for _, c := range cases {
		got, err := parseTerm(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.kind, got.kind, c.in)
		assert.Equal(t, c.key, got.key, c.in)
	}

	got, err := parseTerm("created:20230102")
	require.NoError(t, err)
	assert.Equal(t, termCreatedSince, got.kind)
	assert.True(t, got.since.Equal(date(2023, 1, 2)))
}
