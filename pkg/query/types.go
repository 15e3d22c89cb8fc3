package query

import (
	"strings"

	"github.com/ssargent/utmptrace/pkg/entry"
)

// Predicate decides whether an entry is selected
type Predicate interface {
	Match(e *entry.Entry) bool
}

// PredicateFunc adapts a function to Predicate
type PredicateFunc func(e *entry.Entry) bool

// Match implements Predicate
func (f PredicateFunc) Match(e *entry.Entry) bool {
	return f(e)
}

// MatchAny selects entries whose pid, hostname, union code or address equals
// any of the given conditions.
type MatchAny map[string]struct{}

// NewMatchAny builds a MatchAny set. Surrounding whitespace is ignored and
// blank conditions are dropped. It returns nil when nothing is left, which
// callers treat as "no predicate".
func NewMatchAny(conditions []string) MatchAny {
	m := make(MatchAny, len(conditions))
	for _, c := range conditions {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		m[c] = struct{}{}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// Match implements Predicate
func (m MatchAny) Match(e *entry.Entry) bool {
	for _, k := range e.Keys() {
		if k == "" {
			continue
		}
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// Options configures one selection pass
type Options struct {
	MaxCount  int       // size of the report window, 0 = unbounded
	Predicate Predicate // nil selects every record
	Delete    bool      // produce the retained byte stream
}

// Selection is one reported entry with its position in the file
type Selection struct {
	Position int
	Entry    *entry.Entry
}

// Result is the outcome of processing one file's buffer
type Result struct {
	// Entries holds the reported matches, newest first.
	Entries []Selection
	// Retain holds the final keep decision for every decoded position.
	Retain []bool
	// Retained is the rewritten file contents; nil unless Options.Delete.
	Retained []byte

	Scanned  int // records decoded and classified
	Matched  int // records that satisfied the predicate
	Removed  int // positions whose bytes are left out of Retained
	Consumed int // bytes covered by decoded records
	Trailing int // bytes after Consumed, copied verbatim into Retained

	// Malformed is the decode failure that ended the scan early, if any.
	Malformed error
}
