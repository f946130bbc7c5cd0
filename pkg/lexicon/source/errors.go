package source

import "errors"

var (
	// ErrNotFound is returned when the document does not exist.
	ErrNotFound = errors.New("lexicon source: document not found")

	// ErrInvalidURI is returned by Parse for URIs it cannot interpret.
	ErrInvalidURI = errors.New("lexicon source: invalid uri")

	// ErrMissingBucket is returned when an S3 source has no bucket or key.
	ErrMissingBucket = errors.New("lexicon source: bucket and key are required")
)
