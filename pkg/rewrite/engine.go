// Package rewrite migrates stale legacy-extension links (deck.pptx) to their
// converted form (deck.html) by textual substitution on raw documents.
package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dtnitsch/lwp-links/models"
)

// Rule is one substitution. Replace receives the submatches of a single match.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace func(sub []string) string
}

// Engine applies its rules in order. Rules are built once and never change.
type Engine struct {
	rules []Rule
}

// NewEngine builds the href-with-query, href-without-query and display-text
// rules for the configured legacy and target extensions.
func NewEngine(cfg models.Config) (*Engine, error) {
	legacy := strings.TrimPrefix(strings.TrimSpace(cfg.LegacyExt), ".")
	target := strings.TrimPrefix(strings.TrimSpace(cfg.TargetExt), ".")
	if legacy == "" || target == "" {
		return nil, fmt.Errorf("legacy and target extensions are required")
	}
	ext := regexp.QuoteMeta(legacy)
	label := regexp.QuoteMeta(strings.ToUpper(legacy))
	targetLabel := strings.ToUpper(target)

	hrefQuery, err := regexp.Compile(`(href="(?:[^"?]*/)?)([^/"?]+)\.` + ext + `(\?[^"]*")`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile href query rule: %w", err)
	}
	hrefPlain, err := regexp.Compile(`(href="(?:[^"?]*/)?)([^/"?]+)\.` + ext + `(")`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile href rule: %w", err)
	}
	text, err := regexp.Compile(`>([^<]*?)([A-Za-z0-9_-]+)\s*\(` + label + `\)</a>`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile display text rule: %w", err)
	}

	swapExt := func(sub []string) string {
		return sub[1] + sub[2] + "." + target + sub[3]
	}

	return &Engine{rules: []Rule{
		{Name: "href_query", Pattern: hrefQuery, Replace: swapExt},
		{Name: "href", Pattern: hrefPlain, Replace: swapExt},
		{Name: "display_text", Pattern: text, Replace: func(sub []string) string {
			readable := strings.ReplaceAll(sub[2], "_", " ")
			return ">" + sub[1] + readable + " (" + targetLabel + ")</a>"
		}},
	}}, nil
}

// Rules returns the rules in application order.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Rewrite applies every rule and returns the new text with the number of
// matches replaced. Text without matches is returned unchanged.
func (e *Engine) Rewrite(text string) (string, int) {
	total := 0
	for _, rule := range e.rules {
		n := len(rule.Pattern.FindAllStringIndex(text, -1))
		if n == 0 {
			continue
		}
		total += n
		pattern, replace := rule.Pattern, rule.Replace
		text = pattern.ReplaceAllStringFunc(text, func(m string) string {
			return replace(pattern.FindStringSubmatch(m))
		})
	}
	return text, total
}
