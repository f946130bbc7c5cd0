package lexicon

import (
	"context"
	"errors"
	"io"
	"maps"
	"slices"

	"github.com/dmitrymomot/teamnames/pkg/cache"
	"github.com/dmitrymomot/teamnames/pkg/lexicon/source"
)

// DefaultCategory is the category used when no filter is given. Every loaded
// lexicon has a non-empty default category on both sides.
const DefaultCategory = "default"

// DefaultCacheSize bounds the number of memoized name selections.
const DefaultCacheSize = 256

// Lexicon is an immutable, validated word list plus a memo of computed
// name selections. It is safe for concurrent use.
type Lexicon struct {
	adjectives map[string][]string
	nouns      map[string][]string
	version    int
	selections *cache.Memo[*Selection]
}

// Option configures a Lexicon at load time.
type Option func(*options)

type options struct {
	cacheSize int
}

// WithCacheSize bounds the selection memo. Non-positive values are ignored.
func WithCacheSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

// Inventory summarizes a filtered view of the lexicon.
type Inventory struct {
	Adjectives int `json:"adjectives"`
	Nouns      int `json:"nouns"`
	Total      int `json:"total"`
	Version    int `json:"version"`
}

// Categories lists the category keys available on each side.
type Categories struct {
	Adjectives []string `json:"adjectives"`
	Nouns      []string `json:"nouns"`
}

// Parse builds a Lexicon from a JSON or YAML document with "adjectives",
// "nouns" and an optional integer "version".
func Parse(data []byte, opts ...Option) (*Lexicon, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}

	adjectives := normalizeCategories(parseSection(doc["adjectives"]))
	nouns := normalizeCategories(parseSection(doc["nouns"]))
	if len(adjectives[DefaultCategory]) == 0 {
		return nil, errors.Join(ErrInvalid, errors.New("lexicon requires at least one adjective"))
	}
	if len(nouns[DefaultCategory]) == 0 {
		return nil, errors.Join(ErrInvalid, errors.New("lexicon requires at least one noun"))
	}

	cfg := options{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Lexicon{
		adjectives: adjectives,
		nouns:      nouns,
		version:    parseVersion(doc["version"]),
		selections: cache.NewMemo[*Selection](cfg.cacheSize),
	}, nil
}

// Load reads a whole document from r and parses it.
func Load(r io.Reader, opts ...Option) (*Lexicon, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Join(ErrUnreadable, err)
	}
	return Parse(data, opts...)
}

// LoadSource opens src and parses the document it yields.
func LoadSource(ctx context.Context, src source.Source, opts ...Option) (*Lexicon, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, errors.Join(ErrUnreadable, err)
	}
	defer rc.Close()
	return Load(rc, opts...)
}

// LoadFile parses the document stored at path.
func LoadFile(path string, opts ...Option) (*Lexicon, error) {
	return LoadSource(context.Background(), source.File(path), opts...)
}

// Version returns the content version the lexicon was loaded with.
func (l *Lexicon) Version() int {
	return l.version
}

// TotalCombinations returns the number of distinct names in the unfiltered
// (default) name space.
func (l *Lexicon) TotalCombinations() int {
	return l.GetNameSelection(nil, nil).Total()
}

// Categories returns the sorted category keys on both sides.
func (l *Lexicon) Categories() Categories {
	return Categories{
		Adjectives: slices.Sorted(maps.Keys(l.adjectives)),
		Nouns:      slices.Sorted(maps.Keys(l.nouns)),
	}
}

// Select resolves filters to concrete word lists: tones pick adjective
// categories, domains pick noun categories. Unknown categories contribute
// nothing; an empty result falls back to the default category.
func (l *Lexicon) Select(domains, tones []string) (adjectives, nouns []string) {
	return selectWords(l.adjectives, NormalizeFilters(tones)),
		selectWords(l.nouns, NormalizeFilters(domains))
}

// GetNameSelection returns the memoized name selection for the filters.
// Filters are normalized first, so order, case and duplicates do not matter.
func (l *Lexicon) GetNameSelection(domains, tones []string) *Selection {
	d := NormalizeFilters(domains)
	t := NormalizeFilters(tones)

	sel, _ := l.selections.GetOrLoad(CacheKey(d, t), func() (*Selection, error) {
		return newSelection(selectWords(l.adjectives, t), selectWords(l.nouns, d)), nil
	})
	return sel
}

// Inventory reports word and combination counts for the filters.
func (l *Lexicon) Inventory(domains, tones []string) Inventory {
	sel := l.GetNameSelection(domains, tones)
	return Inventory{
		Adjectives: len(sel.adjectives),
		Nouns:      len(sel.nouns),
		Total:      sel.Total(),
		Version:    l.version,
	}
}

// CachedSelections returns how many selections are currently memoized.
func (l *Lexicon) CachedSelections() int {
	return l.selections.Len()
}

func selectWords(categories map[string][]string, filters []string) []string {
	if len(filters) == 0 {
		filters = []string{DefaultCategory}
	}

	var words []string
	for _, f := range filters {
		words = append(words, categories[f]...)
	}
	words = normalizeWords(words)
	if len(words) == 0 {
		return slices.Clone(categories[DefaultCategory])
	}
	return words
}
