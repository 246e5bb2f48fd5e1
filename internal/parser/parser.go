// Package parser extracts the identifier, creation time, tags and content
// words from a raw note record.
package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/starford/notesearch/internal/apperr"
	"github.com/starford/notesearch/internal/checksum"
	"github.com/starford/notesearch/internal/models"
)

// CreatedLayout is the layout of the <created> element, always UTC.
const CreatedLayout = "2006-01-02T15:04:05"

// RecordDelimiter terminates every record in the command stream.
const RecordDelimiter = "</note>"

const (
	elemGUID    = "guid"
	elemCreated = "created"
	elemTag     = "tag"
	elemContent = "content"
)

// Parse builds a Note from one record block. Missing or unparsable fields
// are reported as a multi-error wrapping apperr.ErrMalformedRecord; the note
// is returned regardless, with those fields left empty.
func Parse(block []byte) (*models.Note, error) {
	s := string(block)
	var errs *multierror.Error

	guid, ok := firstElement(s, elemGUID)
	if !ok {
		errs = multierror.Append(errs, missing(elemGUID))
	}
	guid = strings.TrimSpace(guid)

	var created time.Time
	if raw, ok := firstElement(s, elemCreated); ok {
		t, err := parseCreated(raw)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%w: <created>: %v", apperr.ErrMalformedRecord, err))
		}
		created = t
	} else {
		errs = multierror.Append(errs, missing(elemCreated))
	}

	var words []string
	if content, ok := firstElement(s, elemContent); ok {
		words = Tokenize(content)
	} else {
		errs = multierror.Append(errs, missing(elemContent))
	}

	note := models.NewNote(guid, created, extractTags(s), words, checksum.Sum(block))
	return note, errs.ErrorOrNil()
}

func missing(elem string) error {
	return fmt.Errorf("%w: no <%s>", apperr.ErrMalformedRecord, elem)
}

// parseCreated reads the leading timestamp and ignores anything after it,
// so "2023-01-01T10:00:00Z" is accepted.
func parseCreated(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) > len(CreatedLayout) {
		raw = raw[:len(CreatedLayout)]
	}
	return time.Parse(CreatedLayout, raw)
}

// firstElement returns the text between the first <name> and the next
// </name> after it.
func firstElement(s, name string) (string, bool) {
	v, _, ok := nextElement(s, name)
	return v, ok
}

func nextElement(s, name string) (value, rest string, ok bool) {
	open, end := "<"+name+">", "</"+name+">"
	i := strings.Index(s, open)
	if i < 0 {
		return "", s, false
	}
	s = s[i+len(open):]
	j := strings.Index(s, end)
	if j < 0 {
		return "", s, false
	}
	return s[:j], s[j+len(end):], true
}

// extractTags collects every <tag>, trimmed and lowercased, skipping empties.
func extractTags(s string) []string {
	var out []string
	for {
		v, rest, ok := nextElement(s, elemTag)
		if !ok {
			return out
		}
		if t := strings.ToLower(strings.TrimSpace(v)); t != "" {
			out = append(out, t)
		}
		s = rest
	}
}

// Tokenize lowercases content and splits it on every rune other than ASCII
// letters, digits, underscore, apostrophe and ampersand. Duplicates are kept;
// models.NewNote collapses them.
func Tokenize(content string) []string {
	return strings.FieldsFunc(strings.ToLower(strings.TrimSpace(content)), func(r rune) bool {
		return !isWordRune(r)
	})
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '\'', r == '&':
		return true
	}
	return false
}
