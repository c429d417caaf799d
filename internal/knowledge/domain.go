package knowledge

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CallbackPrefix prefixes the callback data of every FAQ menu button
const CallbackPrefix = "faq_id_"

// maxCallbackData is Telegram's limit for inline button callback data
const maxCallbackData = 64

// EntryID identifies a FAQ entry. Numeric and string ids are both accepted
// in source documents and kept in their textual form.
type EntryID string

// String returns the string representation of the EntryID
func (id EntryID) String() string {
	return string(id)
}

// CallbackData returns the callback reference used by menu buttons
func (id EntryID) CallbackData() string {
	return CallbackPrefix + string(id)
}

// UnmarshalJSON accepts both JSON numbers and strings
func (id *EntryID) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = EntryID(n.String())
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("entry id must be a number or a string: %w", err)
	}
	*id = EntryID(strings.TrimSpace(s))
	return nil
}

// Entry represents one FAQ record
type Entry struct {
	ID       EntryID  `json:"id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Keywords []string `json:"keywords"`
}

// entryDocument mirrors the accepted JSON shapes of an entry. The
// Portuguese names are the ones used by the original FAQ dataset.
type entryDocument struct {
	ID            EntryID  `json:"id"`
	Question      string   `json:"question"`
	Answer        string   `json:"answer"`
	Keywords      []string `json:"keywords"`
	Pergunta      string   `json:"pergunta"`
	Resposta      string   `json:"resposta"`
	PalavrasChave []string `json:"palavras_chave"`
}

// UnmarshalJSON decodes an entry from either field naming
func (e *Entry) UnmarshalJSON(data []byte) error {
	var doc entryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	e.ID = doc.ID
	e.Question = firstNonEmpty(doc.Question, doc.Pergunta)
	e.Answer = firstNonEmpty(doc.Answer, doc.Resposta)
	e.Keywords = doc.Keywords
	if len(e.Keywords) == 0 {
		e.Keywords = doc.PalavrasChave
	}
	return nil
}

// Reachable reports whether free-text matching can ever select the entry
func (e Entry) Reachable() bool {
	return len(e.Keywords) > 0
}

// Base is the immutable, process-wide FAQ collection. It is never mutated
// after construction and is safe for concurrent readers.
type Base struct {
	entries []Entry
	index   map[EntryID]int
	regions []string
}

// NewBase validates entries and builds an immutable Base. Keywords are
// lowercased and regions normalized so the matcher can compare directly.
func NewBase(entries []Entry, regions []string) (*Base, error) {
	base := &Base{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[EntryID]int, len(entries)),
		regions: NormalizeRegions(regions),
	}

	for i, entry := range entries {
		if entry.ID == "" {
			return nil, NewValidationError(i, "id", "entry id is required")
		}
		if _, exists := base.index[entry.ID]; exists {
			return nil, NewValidationError(i, "id", fmt.Sprintf("duplicate entry id %q", entry.ID))
		}
		if len(entry.ID.CallbackData()) > maxCallbackData {
			return nil, NewValidationError(i, "id", fmt.Sprintf("entry id %q does not fit in callback data", entry.ID))
		}
		if strings.TrimSpace(entry.Answer) == "" {
			return nil, NewValidationError(i, "answer", "answer text is required")
		}

		keywords := make([]string, 0, len(entry.Keywords))
		for _, keyword := range entry.Keywords {
			keyword = strings.ToLower(strings.TrimSpace(keyword))
			if keyword != "" {
				keywords = append(keywords, keyword)
			}
		}

		base.index[entry.ID] = len(base.entries)
		base.entries = append(base.entries, Entry{
			ID:       entry.ID,
			Question: entry.Question,
			Answer:   entry.Answer,
			Keywords: keywords,
		})
	}

	return base, nil
}

// Empty returns a Base without entries that still carries the region list
func Empty(regions []string) *Base {
	base, _ := NewBase(nil, regions)
	return base
}

// Len returns the number of entries
func (b *Base) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// IsEmpty reports whether the base has no entries
func (b *Base) IsEmpty() bool {
	return b.Len() == 0
}

// Entries returns a copy of the entries in load order
func (b *Base) Entries() []Entry {
	if b == nil {
		return nil
	}
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Each calls fn for every entry in load order without copying the slice
func (b *Base) Each(fn func(Entry)) {
	if b == nil {
		return
	}
	for _, entry := range b.entries {
		fn(entry)
	}
}

// Lookup returns the entry with the given id
func (b *Base) Lookup(id EntryID) (Entry, bool) {
	if b == nil {
		return Entry{}, false
	}
	i, ok := b.index[id]
	if !ok {
		return Entry{}, false
	}
	return b.entries[i], true
}

// Regions returns the normalized region names
func (b *Base) Regions() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.regions))
	copy(out, b.regions)
	return out
}

// ParseCallbackData extracts the entry id from menu callback data
func ParseCallbackData(data string) (EntryID, bool) {
	if !strings.HasPrefix(data, CallbackPrefix) {
		return "", false
	}
	id := strings.TrimSpace(strings.TrimPrefix(data, CallbackPrefix))
	if id == "" {
		return "", false
	}
	return EntryID(id), true
}

// sortEntries orders entries by id, numerically when both ids are numbers
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, errA := strconv.Atoi(string(entries[i].ID))
		b, errB := strconv.Atoi(string(entries[j].ID))
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return entries[i].ID < entries[j].ID
		}
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
