// Package topic matches free text against ordered keyword tables.
package topic

import (
	"regexp"
	"strings"
)

// Entry binds a value to the keywords that select it.
type Entry[T any] struct {
	Keywords []string
	Value    T
}

// Table is an ordered keyword table. The first entry with a matching keyword
// wins; Default is returned when nothing matches.
type Table[T any] struct {
	entries  []compiledEntry[T]
	fallback T
}

type compiledEntry[T any] struct {
	patterns []*regexp.Regexp
	value    T
}

// NewTable compiles entries into a Table. Keywords match whole words,
// case-insensitively, with an optional plural "s".
func NewTable[T any](fallback T, entries ...Entry[T]) *Table[T] {
	t := &Table[T]{fallback: fallback}
	for _, e := range entries {
		ce := compiledEntry[T]{value: e.Value}
		for _, kw := range e.Keywords {
			ce.patterns = append(ce.patterns, keywordPattern(kw))
		}
		t.entries = append(t.entries, ce)
	}
	return t
}

func keywordPattern(kw string) *regexp.Regexp {
	kw = strings.ToLower(strings.TrimSpace(kw))
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `s?\b`)
}

// Match returns the value of the first entry whose keyword appears in text.
func (t *Table[T]) Match(text string) T {
	v, _ := t.Lookup(text)
	return v
}

// Lookup is like Match but also reports whether an entry matched.
func (t *Table[T]) Lookup(text string) (T, bool) {
	lower := strings.ToLower(text)
	for _, e := range t.entries {
		for _, p := range e.patterns {
			if p.MatchString(lower) {
				return e.value, true
			}
		}
	}
	return t.fallback, false
}
