package query

import (
	"container/list"
	"fmt"

	"github.com/ssargent/utmptrace/pkg/codec"
	"github.com/ssargent/utmptrace/pkg/entry"
	"github.com/ssargent/utmptrace/pkg/store"
)

// Selector keeps the most recent matches in a bounded window and tracks a
// keep/delete decision for every position it has seen. A match that falls
// out of the window is restored to "keep", so only reported entries are ever
// marked for deletion.
type Selector struct {
	maxCount  int
	predicate Predicate
	window    *list.List // of Selection, front is newest
	retain    []bool
	matched   int
}

// NewSelector creates a selector; maxCount 0 keeps every match
func NewSelector(maxCount int, predicate Predicate) *Selector {
	if maxCount < 0 {
		maxCount = 0
	}
	return &Selector{
		maxCount:  maxCount,
		predicate: predicate,
		window:    list.New(),
	}
}

// Observe records the entry at pos. Positions must be strictly ascending.
func (s *Selector) Observe(pos int, e *entry.Entry) {
	for len(s.retain) <= pos {
		s.retain = append(s.retain, true)
	}

	if s.predicate != nil && !s.predicate.Match(e) {
		s.retain[pos] = true
		return
	}

	s.matched++
	s.window.PushFront(Selection{Position: pos, Entry: e})
	s.retain[pos] = false

	if s.maxCount != 0 && s.window.Len() > s.maxCount {
		oldest := s.window.Remove(s.window.Back()).(Selection)
		s.retain[oldest.Position] = true
	}
}

// Window returns the selected entries, newest first
func (s *Selector) Window() []Selection {
	out := make([]Selection, 0, s.window.Len())
	for el := s.window.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(Selection))
	}
	return out
}

// Retain reports the current decision for pos; unseen positions are kept
func (s *Selector) Retain(pos int) bool {
	if pos < 0 || pos >= len(s.retain) {
		return true
	}
	return s.retain[pos]
}

// Decisions returns the decision table indexed by position
func (s *Selector) Decisions() []bool {
	return s.retain
}

// Matched returns how many observed entries satisfied the predicate
func (s *Selector) Matched() int {
	return s.matched
}

// Engine runs decode, classify and select over one file's buffer.
type Engine struct {
	opts Options
}

// NewEngine creates an engine for the given options
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Process scans buf in file order. A malformed record ends the scan; the
// prefix before it is still selected and reported in Result.Malformed.
// With Options.Delete the retained stream is every kept block in original
// order followed by the undecoded tail of buf, byte for byte.
func (e *Engine) Process(buf []byte) *Result {
	sel := NewSelector(e.opts.MaxCount, e.opts.Predicate)
	res := &Result{}

	it := store.NewBlockIterator(buf)
	var blocks []store.Block
	for it.Next() {
		b := it.Block()
		en, err := entry.Classify(b.Record)
		if err != nil {
			res.Malformed = fmt.Errorf("record %d at offset %d: %w", b.Position, b.Offset, err)
			break
		}
		sel.Observe(b.Position, en)
		blocks = append(blocks, b)
	}
	if res.Malformed == nil {
		res.Malformed = it.Err()
	}

	res.Scanned = len(blocks)
	res.Consumed = len(blocks) * codec.RecordSize
	res.Trailing = len(buf) - res.Consumed
	res.Matched = sel.Matched()
	res.Entries = sel.Window()
	res.Retain = sel.Decisions()

	for _, keep := range res.Retain {
		if !keep {
			res.Removed++
		}
	}

	if e.opts.Delete {
		out := make([]byte, 0, len(buf)-res.Removed*codec.RecordSize)
		for _, b := range blocks {
			if res.Retain[b.Position] {
				out = append(out, b.Raw...)
			}
		}
		res.Retained = append(out, buf[res.Consumed:]...)
	}

	return res
}
