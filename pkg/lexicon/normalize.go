package lexicon

import (
	"maps"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NormalizeFilters lower-cases, trims, deduplicates and sorts filter tokens.
// The result is the canonical form used for selection and cache keys.
func NormalizeFilters(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if key := normalizeKey(f); key != "" {
			out = append(out, key)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// NormalizeFilterValues is NormalizeFilters for loosely typed input such as
// decoded JSON. Non-scalar entries are dropped.
func NormalizeFilterValues(raw []any) []string {
	return NormalizeFilters(scalarStrings(raw))
}

// ComposeName joins an adjective and a noun into a single-token name.
// All whitespace is removed from both sides first; when one side is empty
// the other is returned on its own.
func ComposeName(adjective, noun string) string {
	left := stripSpace(adjective)
	right := stripSpace(noun)
	switch {
	case left == "":
		return right
	case right == "":
		return left
	}
	return left + right
}

// MatchKey is the comparison form of a word or name: trimmed, internal
// whitespace collapsed to single spaces and case-folded.
func MatchKey(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}

func normalizeKey(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// normalizeWords trims words, drops empties and case/whitespace-insensitive
// duplicates (keeping the first spelling) and sorts the rest.
func normalizeWords(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, w := range raw {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		key := MatchKey(w)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, w)
	}
	sortWords(out)
	return out
}

// sortWords orders words naturally ("Team2" before "Team10") ignoring case.
// Collation ties fall back to byte order to keep the result total.
func sortWords(words []string) {
	col := collate.New(language.Und, collate.IgnoreCase, collate.Numeric)
	slices.SortStableFunc(words, func(a, b string) int {
		if c := col.CompareString(a, b); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}

// normalizeCategories normalizes category keys and word lists, merging
// categories whose keys collapse together, and synthesizes the default
// category as the union of all categories when it is missing or empty.
func normalizeCategories(raw map[string][]string) map[string][]string {
	merged := make(map[string][]string, len(raw))
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		ck := normalizeKey(key)
		if ck == "" {
			continue
		}
		merged[ck] = append(merged[ck], raw[key]...)
	}
	if len(merged) == 0 {
		return nil
	}

	out := make(map[string][]string, len(merged)+1)
	for key, words := range merged {
		out[key] = normalizeWords(words)
	}

	if len(out[DefaultCategory]) == 0 {
		out[DefaultCategory] = unionWords(out)
	}
	return out
}

func unionWords(categories map[string][]string) []string {
	var all []string
	for _, key := range slices.Sorted(maps.Keys(categories)) {
		all = append(all, categories[key]...)
	}
	return normalizeWords(all)
}
