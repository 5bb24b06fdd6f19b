// Package extractor reads documents and yields the link references in them.
package extractor

import (
	"bytes"
	"fmt"
	"io/fs"
	"strings"
	"unicode/utf8"

	"github.com/dtnitsch/lwp-links/models"
	"github.com/dtnitsch/lwp-links/pkg/parser"
)

// Load reads one document from fsys and parses it. Non-UTF-8 content fails
// with an encoding error, unreadable files with a filesystem error and parser
// failures with a parse error, all as *models.DocumentError.
func Load(fsys fs.FS, ref models.DocumentRef, p parser.DocumentParser) (parser.Document, error) {
	data, err := fs.ReadFile(fsys, string(ref))
	if err != nil {
		return nil, models.NewDocumentError(string(ref), models.ErrorKindFilesystem, err)
	}
	if !utf8.Valid(data) {
		return nil, models.NewDocumentError(string(ref), models.ErrorKindEncoding, fmt.Errorf("content is not valid UTF-8"))
	}
	doc, err := p.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, models.NewDocumentError(string(ref), models.ErrorKindParse, err)
	}
	return doc, nil
}

// Extract returns one reference per anchor carrying an href attribute, in
// document order. Empty and fragment-only values are kept.
func Extract(doc parser.Document, source models.DocumentRef) []models.LinkReference {
	anchors := doc.Anchors()
	refs := make([]models.LinkReference, 0, len(anchors))
	for _, a := range anchors {
		href, ok := a.Attr("href")
		if !ok {
			continue
		}
		refs = append(refs, models.LinkReference{
			Source:      source,
			RawTarget:   href,
			DisplayText: a.Text,
		})
	}
	return refs
}

// ExtractLinks returns anchors with an href and images with a src, in
// document order. The alt text of an image stands in for display text.
func ExtractLinks(doc parser.Document, source models.DocumentRef) []models.LinkReference {
	tags := doc.Links()
	refs := make([]models.LinkReference, 0, len(tags))
	for _, tag := range tags {
		target, text, ok := "", tag.Text, false
		switch tag.Name {
		case "a":
			target, ok = tag.Attr("href")
		case "img":
			target, ok = tag.Attr("src")
			text, _ = tag.Attr("alt")
		}
		if !ok {
			continue
		}
		refs = append(refs, models.LinkReference{
			Source:      source,
			RawTarget:   target,
			DisplayText: text,
		})
	}
	return refs
}

// RewriteCandidates filters refs down to those whose href or display text
// still names the legacy extension, e.g. "deck.pptx" or "Deck (PPTX)".
func RewriteCandidates(refs []models.LinkReference, legacyExt string) []models.LinkReference {
	ext := strings.ToLower(strings.TrimPrefix(legacyExt, "."))
	if ext == "" {
		return nil
	}
	dotted := "." + ext
	label := "(" + ext + ")"

	var out []models.LinkReference
	for _, ref := range refs {
		target := strings.ToLower(ref.RawTarget)
		if i := strings.IndexAny(target, "?#"); i >= 0 {
			target = target[:i]
		}
		if strings.HasSuffix(target, dotted) || strings.Contains(strings.ToLower(ref.DisplayText), label) {
			out = append(out, ref)
		}
	}
	return out
}
