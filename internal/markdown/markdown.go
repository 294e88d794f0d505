// Package markdown provides Markdown analysis helpers built on Goldmark.
//
// These are analysis APIs: they never re-render Markdown. Content mutation
// happens exclusively through byte-range edits (see edits.go) so untouched
// bytes survive verbatim.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

type LinkKind string

const (
	LinkKindInline LinkKind = "inline"
	LinkKindImage  LinkKind = "image"
	LinkKindAuto   LinkKind = "auto"
)

// Link is a link-like construct extracted from a Markdown body.
type Link struct {
	Kind        LinkKind
	Destination string
}

// Heading describes the first level-1 heading of a document body.
//
// Start and End are byte offsets into the body covering the full heading
// line(s) including the trailing newline, suitable for stripping via an Edit.
type Heading struct {
	Text  string
	Start int
	End   int
}

// FirstH1 returns the first level-1 heading of body, if any.
func FirstH1(body []byte) (Heading, bool) {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	var found *gmast.Heading
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if h, ok := n.(*gmast.Heading); ok && h.Level == 1 && found == nil {
			found = h
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	if found == nil || found.Lines().Len() == 0 {
		return Heading{}, false
	}

	first := found.Lines().At(0)
	last := found.Lines().At(found.Lines().Len() - 1)

	start := lineStart(body, first.Start)
	end := lineEnd(body, last.Stop)

	// Setext headings keep their underline on the following line, outside the
	// heading's line segments.
	if next := lineEnd(body, end); next > end && body[start] != '#' {
		line := bytes.TrimSpace(body[end:next])
		if len(line) > 0 && bytes.Count(line, []byte("=")) == len(line) {
			end = next
		}
	}

	title := string(bytes.TrimSpace(body[first.Start:last.Stop]))
	return Heading{Text: title, Start: start, End: end}, true
}

// ExtractLinks parses a Markdown body and extracts link-like constructs.
func ExtractLinks(body []byte) []Link {
	md := goldmark.New()
	ctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	links := make([]Link, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body))})
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *gmast.Link:
			// Goldmark resolves reference-style links to a Link node with a Destination.
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})
	return links
}

func lineStart(body []byte, pos int) int {
	if pos > len(body) {
		pos = len(body)
	}
	idx := bytes.LastIndexByte(body[:pos], '\n')
	return idx + 1
}

func lineEnd(body []byte, pos int) int {
	if pos >= len(body) {
		return len(body)
	}
	idx := bytes.IndexByte(body[pos:], '\n')
	if idx < 0 {
		return len(body)
	}
	return pos + idx + 1
}
