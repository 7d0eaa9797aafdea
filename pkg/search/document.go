// Package search implements in-note full-text search with non-destructive
// highlighting. Matching operates on a structured document model (a sequence
// of text runs with optional highlight tags) so the algorithm stays
// independent of any rendering toolkit.
package search

import (
	"strings"

	"golang.org/x/net/html"
)

// Run is a contiguous span of document text. Highlighted runs are markers
// wrapped around matched substrings; they carry the 0-based match index in
// document order. Exactly one highlighted run may be the current match.
type Run struct {
	Text        string `json:"text"`
	Highlighted bool   `json:"highlighted"`
	MatchIndex  int    `json:"matchIndex"` // -1 for plain runs
	Current     bool   `json:"current"`
}

// Document is the sequence of runs a rendering layer projects to the screen.
type Document struct {
	runs []Run
}

// NewDocument wraps plain text in a single unhighlighted run.
func NewDocument(text string) Document {
	if text == "" {
		return Document{}
	}
	return Document{runs: []Run{{Text: text, MatchIndex: -1}}}
}

// Runs returns the document's runs in order.
func (d Document) Runs() []Run {
	runs := make([]Run, len(d.runs))
	copy(runs, d.runs)
	return runs
}

// Text concatenates all run text. Markers only wrap text, so for any
// document this is exactly the text it was built from.
func (d Document) Text() string {
	var b strings.Builder
	for _, run := range d.runs {
		b.WriteString(run.Text)
	}
	return b.String()
}

// ExtractText reduces rendered rich text (HTML) to its visible text. Script
// and style subtrees are skipped; a parse failure falls back to the raw
// input so search still sees something.
func ExtractText(richText string) string {
	root, err := html.Parse(strings.NewReader(richText))
	if err != nil {
		return richText
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "br":
				b.WriteString("\n")
			case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6":
				if b.Len() > 0 {
					b.WriteString("\n")
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return b.String()
}
