package lexicon

import "errors"

var (
	// ErrInvalid is returned when a lexicon document is malformed or resolves
	// to zero usable adjectives or nouns.
	ErrInvalid = errors.New("lexicon.invalid")

	// ErrUnreadable is returned when the lexicon document cannot be read from its source.
	ErrUnreadable = errors.New("lexicon.unreadable")
)
