package source

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"
)

// Source opens a lexicon document.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

type fileSource struct {
	path string
}

// File returns a Source reading the document at path.
func File(path string) Source {
	return fileSource{path: path}
}

func (f fileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Join(ErrNotFound, err)
		}
		return nil, err
	}
	return fh, nil
}

func (f fileSource) String() string {
	return f.path
}

// Parse returns an S3 source for "s3://bucket/key" URIs and a File source
// for everything else. S3 settings other than bucket and key come from cfg.
func Parse(ctx context.Context, uri string, cfg S3Config, opts ...S3Option) (Source, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, ErrInvalidURI
	}
	if !strings.HasPrefix(uri, "s3://") {
		return File(uri), nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, errors.Join(ErrInvalidURI, err)
	}
	cfg.Bucket = u.Host
	cfg.Key = strings.TrimPrefix(u.Path, "/")
	return NewS3(ctx, cfg, opts...)
}
