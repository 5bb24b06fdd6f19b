// Package parser turns HTML text into a tree that exposes anchor and image
// tags. The audit core only depends on the DocumentParser interface.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Tag is one element with its attributes and normalized text content.
type Tag struct {
	Name  string
	Attrs map[string]string
	Text  string
}

// Attr returns the attribute value and whether the attribute is present.
func (t Tag) Attr(name string) (string, bool) {
	v, ok := t.Attrs[name]
	return v, ok
}

// Document is a parsed HTML tree.
type Document interface {
	Anchors() []Tag
	Images() []Tag
	// Links returns anchors and images together in document order.
	Links() []Tag
}

// DocumentParser parses document text into a Document.
type DocumentParser interface {
	Parse(r io.Reader) (Document, error)
}

// Parser is the goquery-backed DocumentParser.
type Parser struct{}

func (p *Parser) Parse(r io.Reader) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &htmlDocument{doc: doc}, nil
}

type htmlDocument struct {
	doc *goquery.Document
}

func (d *htmlDocument) Anchors() []Tag {
	return collect(d.doc.Find("a"), "href")
}

func (d *htmlDocument) Images() []Tag {
	return collect(d.doc.Find("img"), "src", "alt")
}

func (d *htmlDocument) Links() []Tag {
	return collect(d.doc.Find("a, img"), "href", "src", "alt")
}

func collect(sel *goquery.Selection, names ...string) []Tag {
	tags := make([]Tag, 0, sel.Length())
	sel.Each(func(i int, s *goquery.Selection) {
		attrs := make(map[string]string, len(names))
		for _, name := range names {
			if v, ok := s.Attr(name); ok {
				attrs[name] = v
			}
		}
		tags = append(tags, Tag{Name: goquery.NodeName(s), Attrs: attrs, Text: normalizeText(s.Text())})
	})
	return tags
}

// normalizeText cleans up a string by trimming space and removing excess newlines.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}
