// Package matcher maps one inbound message to a reply using keyword overlap
// against the FAQ knowledge base, with a region shortcut for delivery
// coverage questions. Matching is pure: no I/O and no state between calls.
package matcher

import (
	"strings"

	"github.com/OperacionalChopp/botchopp/internal/knowledge"
	"github.com/OperacionalChopp/botchopp/internal/textnorm"
)

// Matcher answers messages from an immutable knowledge base. It is safe
// for concurrent use.
type Matcher struct {
	base *knowledge.Base
	rule Rule
}

// New creates a Matcher. An unknown rule falls back to RuleTokens and a nil
// base behaves as an empty one.
func New(base *knowledge.Base, rule Rule) *Matcher {
	if !rule.Valid() {
		rule = RuleTokens
	}
	if base == nil {
		base = knowledge.Empty(knowledge.DefaultRegions)
	}
	return &Matcher{base: base, rule: rule}
}

// Base returns the knowledge base the matcher reads from
func (m *Matcher) Base() *knowledge.Base {
	return m.base
}

// Rule returns the active scoring rule
func (m *Matcher) Rule() Rule {
	return m.rule
}

// Match classifies a message. Blank messages yield KindNoMatch.
func (m *Matcher) Match(message string) Outcome {
	if strings.TrimSpace(message) == "" {
		return noMatch()
	}

	normalized := textnorm.Normalize(message)
	if region, ok := m.matchRegion(normalized); ok {
		return Outcome{
			Kind:   KindRegion,
			Text:   RegionText(region),
			Region: region,
		}
	}

	return m.score(strings.ToLower(message))
}

// Resolve returns the answer for a menu selection
func (m *Matcher) Resolve(id knowledge.EntryID) (Outcome, error) {
	entry, ok := m.base.Lookup(id)
	if !ok {
		return Outcome{}, SelectionError{ID: id}
	}
	return Outcome{
		Kind:    KindAnswer,
		Text:    entry.Answer,
		EntryID: entry.ID,
	}, nil
}

// matchRegion requires a trigger word and a known region in the normalized
// message. When several regions are contained the longest wins, so
// "riacho fundo ii" is not reported as "riacho fundo".
func (m *Matcher) matchRegion(normalized string) (string, bool) {
	triggered := false
	for _, word := range TriggerWords {
		if strings.Contains(normalized, word) {
			triggered = true
			break
		}
	}
	if !triggered {
		return "", false
	}

	best := ""
	for _, region := range m.base.Regions() {
		if len(region) > len(best) && strings.Contains(normalized, region) {
			best = region
		}
	}
	return best, best != ""
}

func (m *Matcher) score(lowered string) Outcome {
	var (
		top     int
		winners []knowledge.Entry
	)

	var count func(keywords []string) int
	switch m.rule {
	case RuleSubstring:
		count = func(keywords []string) int { return countContained(lowered, keywords) }
	default:
		tokens := textnorm.Fields(lowered)
		count = func(keywords []string) int { return countTokens(tokens, keywords) }
	}

	m.base.Each(func(entry knowledge.Entry) {
		s := count(entry.Keywords)
		switch {
		case s == 0 || s < top:
		case s > top:
			top = s
			winners = append(winners[:0], entry)
		default:
			winners = append(winners, entry)
		}
	})

	switch len(winners) {
	case 0:
		return noMatch()
	case 1:
		return Outcome{
			Kind:    KindAnswer,
			Text:    winners[0].Answer,
			EntryID: winners[0].ID,
			Score:   top,
		}
	}

	options := make([]Option, 0, len(winners))
	for _, entry := range winners {
		options = append(options, Option{ID: entry.ID, Label: entry.Question})
	}
	return Outcome{
		Kind:    KindMenu,
		Text:    MenuPromptText,
		Options: options,
		Score:   top,
	}
}

// countTokens returns |tokens ∩ set(keywords)|
func countTokens(tokens map[string]struct{}, keywords []string) int {
	seen := make(map[string]struct{}, len(keywords))
	n := 0
	for _, keyword := range keywords {
		if _, dup := seen[keyword]; dup {
			continue
		}
		seen[keyword] = struct{}{}
		if _, ok := tokens[keyword]; ok {
			n++
		}
	}
	return n
}

// countContained returns how many distinct keywords occur in text
func countContained(text string, keywords []string) int {
	seen := make(map[string]struct{}, len(keywords))
	n := 0
	for _, keyword := range keywords {
		if _, dup := seen[keyword]; dup {
			continue
		}
		seen[keyword] = struct{}{}
		if strings.Contains(text, keyword) {
			n++
		}
	}
	return n
}

func noMatch() Outcome {
	return Outcome{Kind: KindNoMatch, Text: FallbackText}
}
