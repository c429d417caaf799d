package matcher

import (
	"github.com/OperacionalChopp/botchopp/internal/knowledge"
)

// Kind tags the outcome of matching one message
type Kind int

const (
	KindNoMatch Kind = iota
	KindRegion
	KindAnswer
	KindMenu
)

func (k Kind) String() string {
	switch k {
	case KindRegion:
		return "region"
	case KindAnswer:
		return "answer"
	case KindMenu:
		return "menu"
	default:
		return "no_match"
	}
}

// Rule selects how keyword overlap is scored
type Rule string

const (
	// RuleTokens intersects the whitespace tokens of the message with the
	// keyword set of each entry.
	RuleTokens Rule = "tokens"
	// RuleSubstring counts keywords contained anywhere in the message.
	RuleSubstring Rule = "substring"
)

// Valid reports whether r is a known rule
func (r Rule) Valid() bool {
	return r == RuleTokens || r == RuleSubstring
}

// Option is one button of a disambiguation menu
type Option struct {
	ID    knowledge.EntryID
	Label string
}

// CallbackData returns the selection reference carried by the button
func (o Option) CallbackData() string {
	return o.ID.CallbackData()
}

// Outcome is the result of matching one message
type Outcome struct {
	Kind Kind
	// Text is the reply sent to the user: the answer, region reply, menu
	// prompt or fallback message.
	Text string
	// Region is the normalized region name for KindRegion.
	Region string
	// EntryID is set for KindAnswer.
	EntryID knowledge.EntryID
	// Options lists the tied entries for KindMenu in knowledge base order.
	Options []Option
	// Score is the winning keyword score for KindAnswer and KindMenu.
	Score int
}

// EntryIDs returns the FAQ entries referenced by the outcome
func (o Outcome) EntryIDs() []knowledge.EntryID {
	switch o.Kind {
	case KindAnswer:
		return []knowledge.EntryID{o.EntryID}
	case KindMenu:
		ids := make([]knowledge.EntryID, 0, len(o.Options))
		for _, opt := range o.Options {
			ids = append(ids, opt.ID)
		}
		return ids
	default:
		return nil
	}
}
