// Package source locates lexicon documents.
//
// A Source only knows how to open a byte stream; parsing belongs to the
// lexicon package. Two implementations are provided: File for documents on
// the local filesystem and S3 for documents kept in an S3 (or S3-compatible)
// bucket. Parse picks one from a URI:
//
//	src, err := source.Parse(ctx, "s3://quiz-assets/lexicon/team_names.json", s3cfg)
//	src, err := source.Parse(ctx, "./data/team_names.yaml", source.S3Config{})
//
// The bucket and key of an s3:// URI override the ones in the S3Config;
// region, credentials and endpoint come from it.
//
// Missing documents are reported as ErrNotFound regardless of the backend.
package source
