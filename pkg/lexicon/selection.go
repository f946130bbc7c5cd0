package lexicon

import (
	"encoding/hex"
	"slices"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Selection is the ordered cross product of an adjective list and a noun
// list. Names are adjective-major in lexicon order, so the same filters and
// lexicon version always produce the same sequence. Pairs that compose to an
// already listed name (up to case) are skipped, so Total counts distinct names. Selections are shared
// between callers and never mutated after construction.
type Selection struct {
	adjectives []string
	nouns      []string
	names      []string
}

func newSelection(adjectives, nouns []string) *Selection {
	names := make([]string, 0, len(adjectives)*len(nouns))
	seen := make(map[string]struct{}, cap(names))
	for _, adj := range adjectives {
		for _, noun := range nouns {
			name := ComposeName(adj, noun)
			key := MatchKey(name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			names = append(names, name)
		}
	}
	return &Selection{adjectives: adjectives, nouns: nouns, names: names}
}

// Total is the number of distinct names in the selection.
func (s *Selection) Total() int {
	return len(s.names)
}

// NameAt returns the i-th name. It panics when i is out of range.
func (s *Selection) NameAt(i int) string {
	return s.names[i]
}

// Names returns a copy of the ordered name list.
func (s *Selection) Names() []string {
	return slices.Clone(s.names)
}

// Adjectives returns a copy of the resolved adjectives.
func (s *Selection) Adjectives() []string {
	return slices.Clone(s.adjectives)
}

// Nouns returns a copy of the resolved nouns.
func (s *Selection) Nouns() []string {
	return slices.Clone(s.nouns)
}

// CacheKey hashes already normalized filters into a memo key.
func CacheKey(domains, tones []string) string {
	sum := blake2b.Sum256([]byte(strings.Join(domains, "|") + "#" + strings.Join(tones, "|")))
	return hex.EncodeToString(sum[:])
}
