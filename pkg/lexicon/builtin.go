package lexicon

import _ "embed"

//go:embed builtin.yaml
var builtinDocument []byte

// Builtin returns the lexicon shipped with the package: general-purpose
// adjectives plus colors, sizes, origins and actions as tone categories, and
// animals as the only noun domain (which also becomes the default).
func Builtin(opts ...Option) *Lexicon {
	lex, err := Parse(builtinDocument, opts...)
	if err != nil {
		panic("lexicon: built-in document is invalid: " + err.Error())
	}
	return lex
}
