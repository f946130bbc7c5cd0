// Package lexicon loads and serves the word lists team names are built from.
//
// A lexicon document has an "adjectives" section, a "nouns" section and an
// optional integer "version". Each section is either a flat list of words or
// a mapping of category to list:
//
//	version: 3
//	adjectives:
//	  default: [Brave, Calm]
//	  colors: [Amber, Teal]
//	nouns:
//	  animals: [Fox, Owl]
//	  space: [Comet, Nebula]
//
// Category keys are lower-cased. Words are trimmed, deduplicated ignoring case
// and whitespace, and sorted in natural order. When a section has no usable
// default category, the union of its categories takes its place. A document
// without at least one adjective and one noun is rejected with ErrInvalid.
//
// Names are composed adjective-major: for adjectives [Alpha, Beta] and nouns
// [Lion, Tiger] the selection is AlphaLion, AlphaTiger, BetaLion, BetaTiger.
// Filters map tones to adjective categories and domains to noun categories;
// selections are memoized per normalized filter set.
//
// Documents can be read from disk or S3 through the source sub-package:
//
//	src, err := source.Parse(ctx, "s3://assets/lexicon.yaml", s3cfg)
//	if err != nil {
//		return err
//	}
//	lex, err := lexicon.LoadSource(ctx, src)
package lexicon
