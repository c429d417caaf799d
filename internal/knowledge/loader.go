package knowledge

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/OperacionalChopp/botchopp/internal/config"

	"go.uber.org/zap"
)

//go:embed data/faq.json
var embeddedFAQ []byte

// EmbeddedDocument returns the FAQ document compiled into the binary
func EmbeddedDocument() []byte {
	out := make([]byte, len(embeddedFAQ))
	copy(out, embeddedFAQ)
	return out
}

// Loader builds a Base from the configured source
type Loader struct {
	cfg    config.KnowledgeConfig
	repo   Repository
	logger *zap.Logger
}

// NewLoader creates a Loader. repo is only consulted for the database
// source and may be nil otherwise.
func NewLoader(cfg config.KnowledgeConfig, repo Repository, logger *zap.Logger) *Loader {
	return &Loader{
		cfg:    cfg,
		repo:   repo,
		logger: logger,
	}
}

// Load reads, decodes and validates the configured source
func (l *Loader) Load(ctx context.Context) (*Base, error) {
	regions := l.regions()

	var (
		entries []Entry
		err     error
	)

	switch l.cfg.Source {
	case config.SourceFile:
		entries, err = l.loadFile()
	case config.SourceDatabase:
		entries, err = l.loadDatabase(ctx)
	default:
		entries, err = Decode(config.SourceEmbedded, embeddedFAQ)
	}
	if err != nil {
		return nil, err
	}

	base, err := NewBase(entries, regions)
	if err != nil {
		return nil, err
	}

	l.logger.Info("Knowledge base loaded",
		zap.String("source", l.sourceName()),
		zap.Int("entries", base.Len()),
		zap.Int("regions", len(base.Regions())))

	return base, nil
}

// LoadOrEmpty never fails: any load error is logged and an empty Base with
// the configured regions is returned so the bot keeps answering with the
// fallback text.
func (l *Loader) LoadOrEmpty(ctx context.Context) *Base {
	base, err := l.Load(ctx)
	if err != nil {
		l.logger.Error("Failed to load knowledge base, continuing with an empty one",
			zap.String("source", l.sourceName()),
			zap.String("location", l.cfg.Path),
			zap.Error(err))
		return Empty(l.regions())
	}
	return base
}

func (l *Loader) loadFile() ([]Entry, error) {
	data, err := os.ReadFile(l.cfg.Path)
	if err != nil {
		return nil, SourceError{Source: config.SourceFile, Location: l.cfg.Path, Cause: err}
	}
	return Decode(config.SourceFile, data)
}

func (l *Loader) loadDatabase(ctx context.Context) ([]Entry, error) {
	if l.repo == nil {
		return nil, SourceError{Source: config.SourceDatabase, Location: tableName, Cause: fmt.Errorf("no repository configured")}
	}
	entries, err := l.repo.ListEntries(ctx)
	if err != nil {
		return nil, SourceError{Source: config.SourceDatabase, Location: tableName, Cause: err}
	}
	return entries, nil
}

func (l *Loader) regions() []string {
	if len(l.cfg.Regions) > 0 {
		return l.cfg.Regions
	}
	return DefaultRegions
}

func (l *Loader) sourceName() string {
	if l.cfg.Source == "" {
		return config.SourceEmbedded
	}
	return l.cfg.Source
}

// Decode parses a FAQ document. Both a JSON array of entries and an object
// keyed by id are accepted; keyed entries are ordered by id and take their
// id from the key when the body omits it.
func Decode(source string, data []byte) ([]Entry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, DecodeError{Source: source, Cause: ErrEmptySource}
	}

	switch trimmed[0] {
	case '[':
		var entries []Entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, DecodeError{Source: source, Cause: err}
		}
		return entries, nil
	case '{':
		var keyed map[string]Entry
		if err := json.Unmarshal(trimmed, &keyed); err != nil {
			return nil, DecodeError{Source: source, Cause: err}
		}
		entries := make([]Entry, 0, len(keyed))
		for key, entry := range keyed {
			if entry.ID == "" {
				entry.ID = EntryID(key)
			}
			entries = append(entries, entry)
		}
		sortEntries(entries)
		return entries, nil
	default:
		return nil, DecodeError{Source: source, Cause: fmt.Errorf("document must be a JSON array or object")}
	}
}
