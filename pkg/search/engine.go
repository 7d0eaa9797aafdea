package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/coregx/ahocorasick"
)

// span is a matched byte range in the original text.
type span struct {
	start int
	end   int
}

// Engine finds all case-insensitive literal occurrences of a query in a
// document's text and tracks a current match for next/prev navigation. It is
// pure and synchronous; the only "failure" is zero matches, which is not an
// error.
type Engine struct {
	text    string
	matches []span
	current int
}

// NewEngine creates an engine over the given plain text.
func NewEngine(text string) *Engine {
	return &Engine{text: text}
}

// SetText replaces the engine's text and drops any active search.
func (e *Engine) SetText(text string) {
	e.text = text
	e.matches = nil
	e.current = 0
}

// Search finds all non-overlapping occurrences of query, 0-based in document
// order, and makes the first one current. Any previous markers are discarded
// first, so repeated searches never nest. The query is matched literally;
// characters that are special in pattern syntax have no effect. An empty or
// whitespace-only query clears the search and reports zero matches.
func (e *Engine) Search(query string) int {
	e.matches = nil
	e.current = 0

	query = strings.TrimSpace(query)
	if query == "" {
		return 0
	}

	foldedText, offsets := foldWithOffsets(e.text)
	foldedQuery, _ := foldWithOffsets(query)

	automaton, err := ahocorasick.NewBuilder().
		AddStrings([]string{foldedQuery}).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return 0
	}

	found := automaton.FindAllOverlapping([]byte(foldedText))
	sort.Slice(found, func(i, j int) bool { return found[i].Start < found[j].Start })

	// Keep leftmost non-overlapping occurrences.
	lastEnd := 0
	for _, m := range found {
		if m.Start < lastEnd {
			continue
		}
		start := mapOffset(m.Start, offsets, len(e.text))
		end := mapOffset(m.End, offsets, len(e.text))
		if start >= end || end > len(e.text) {
			continue
		}
		e.matches = append(e.matches, span{start: start, end: end})
		lastEnd = m.End
	}

	return len(e.matches)
}

// MatchCount returns the number of matches of the active search.
func (e *Engine) MatchCount() int {
	return len(e.matches)
}

// CurrentIndex returns the 0-based index of the current match, or -1 when
// there is no active match.
func (e *Engine) CurrentIndex() int {
	if len(e.matches) == 0 {
		return -1
	}
	return e.current
}

// Next advances the current match, wrapping past the last back to the first,
// and returns the new index.
func (e *Engine) Next() int {
	if len(e.matches) == 0 {
		return -1
	}
	e.current = (e.current + 1) % len(e.matches)
	return e.current
}

// Prev steps the current match backwards, wrapping from the first to the
// last, and returns the new index.
func (e *Engine) Prev() int {
	if len(e.matches) == 0 {
		return -1
	}
	e.current = (e.current - 1 + len(e.matches)) % len(e.matches)
	return e.current
}

// Clear drops all markers. The document reverts to exactly the original
// text.
func (e *Engine) Clear() {
	e.matches = nil
	e.current = 0
}

// Document projects the current search state onto the document model:
// matched spans become highlighted runs carrying their match index, with the
// current match tagged for the renderer to color and scroll to.
func (e *Engine) Document() Document {
	if len(e.matches) == 0 {
		return NewDocument(e.text)
	}

	var runs []Run
	pos := 0
	for i, m := range e.matches {
		if m.start > pos {
			runs = append(runs, Run{Text: e.text[pos:m.start], MatchIndex: -1})
		}
		runs = append(runs, Run{
			Text:        e.text[m.start:m.end],
			Highlighted: true,
			MatchIndex:  i,
			Current:     i == e.current,
		})
		pos = m.end
	}
	if pos < len(e.text) {
		runs = append(runs, Run{Text: e.text[pos:], MatchIndex: -1})
	}
	return Document{runs: runs}
}

// foldWithOffsets lowercases text rune by rune and returns, for every byte
// of the folded form, the byte offset of the originating rune in the
// original text. Folding can change rune widths, so matches found in the
// folded text are mapped back through this table.
func foldWithOffsets(text string) (string, []int) {
	var b strings.Builder
	b.Grow(len(text))
	offsets := make([]int, 0, len(text)+1)

	pos := 0
	for _, r := range text {
		lower := unicode.ToLower(r)
		b.WriteRune(lower)
		for i := 0; i < utf8.RuneLen(lower); i++ {
			offsets = append(offsets, pos)
		}
		pos += utf8.RuneLen(r)
	}
	offsets = append(offsets, pos)

	return b.String(), offsets
}

// mapOffset converts a folded-text byte offset to an original-text offset.
func mapOffset(folded int, offsets []int, originalLen int) int {
	if folded < 0 {
		return 0
	}
	if folded >= len(offsets) {
		return originalLen
	}
	return offsets[folded]
}
