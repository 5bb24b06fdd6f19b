// Package classifier maps raw link targets to a LinkClass. It is the only
// place that decides whether a link is internal, remote or local.
package classifier

import (
	"strings"

	"github.com/dtnitsch/lwp-links/models"
)

// Classifier holds the course packaging placeholder stripped from local links.
type Classifier struct {
	FileBaseToken string
}

var defaultClassifier = Classifier{FileBaseToken: models.DefaultFileBaseToken}

// New returns a Classifier for token. An empty token uses the Canvas default.
func New(token string) Classifier {
	if token == "" {
		token = models.DefaultFileBaseToken
	}
	return Classifier{FileBaseToken: token}
}

// Classify uses the default placeholder token.
func Classify(raw string) models.LinkClass {
	return defaultClassifier.Classify(raw)
}

// CleanLocal uses the default placeholder token.
func CleanLocal(raw string) string {
	return defaultClassifier.CleanLocal(raw)
}

// Classify is total: every input maps to exactly one kind.
func (c Classifier) Classify(raw string) models.LinkClass {
	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "",
		strings.HasPrefix(trimmed, "#"),
		hasPrefixFold(trimmed, "mailto:"):
		return models.LinkClass{Kind: models.LinkInternal, Target: raw}
	case hasPrefixFold(trimmed, "http://"), hasPrefixFold(trimmed, "https://"):
		return models.LinkClass{Kind: models.LinkRemote, Target: trimmed}
	}
	return models.LinkClass{Kind: models.LinkLocal, Target: c.CleanLocal(trimmed)}
}

// CleanLocal strips the query string and fragment and removes the file base
// placeholder so the result is relative to the linking document.
func (c Classifier) CleanLocal(raw string) string {
	clean := raw
	if i := strings.IndexByte(clean, '?'); i >= 0 {
		clean = clean[:i]
	}
	if i := strings.IndexByte(clean, '#'); i >= 0 {
		clean = clean[:i]
	}
	if c.FileBaseToken != "" {
		clean = strings.ReplaceAll(clean, c.FileBaseToken+"/", "")
		clean = strings.ReplaceAll(clean, c.FileBaseToken, "")
	}
	return clean
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
