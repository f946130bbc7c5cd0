package source_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/teamnames/pkg/lexicon/source"
)

type fakeS3 struct {
	objects map[string]string
	err     error
	calls   []string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls = append(f.calls, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "missing"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func readAll(t *testing.T, src source.Source) string {
	t.Helper()
	rc, err := src.Open(context.Background())
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestFile(t *testing.T) {
	t.Run("reads existing document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lexicon.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"adjectives":["Swift"]}`), 0o600))

		src := source.File(path)
		assert.Equal(t, path, src.String())
		assert.Equal(t, `{"adjectives":["Swift"]}`, readAll(t, src))
	})

	t.Run("missing document", func(t *testing.T) {
		_, err := source.File(filepath.Join(t.TempDir(), "nope.json")).Open(context.Background())
		require.ErrorIs(t, err, source.ErrNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := source.File("whatever").Open(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestS3(t *testing.T) {
	ctx := context.Background()

	t.Run("reads object", func(t *testing.T) {
		client := &fakeS3{objects: map[string]string{"lexicon.yaml": "nouns: [Fox]"}}
		src, err := source.NewS3(ctx, source.S3Config{Bucket: "assets", Key: "lexicon.yaml"}, source.WithS3Client(client))
		require.NoError(t, err)

		assert.Equal(t, "s3://assets/lexicon.yaml", src.String())
		assert.Equal(t, "nouns: [Fox]", readAll(t, src))
		assert.Equal(t, []string{"assets/lexicon.yaml"}, client.calls)
	})

	t.Run("missing key maps to ErrNotFound", func(t *testing.T) {
		src, err := source.NewS3(ctx, source.S3Config{Bucket: "assets", Key: "gone.json"}, source.WithS3Client(&fakeS3{}))
		require.NoError(t, err)

		_, err = src.Open(ctx)
		require.ErrorIs(t, err, source.ErrNotFound)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		boom := errors.New("network down")
		src, err := source.NewS3(ctx, source.S3Config{Bucket: "assets", Key: "x"}, source.WithS3Client(&fakeS3{err: boom}))
		require.NoError(t, err)

		_, err = src.Open(ctx)
		require.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, source.ErrNotFound)
	})

	t.Run("bucket and key are required", func(t *testing.T) {
		_, err := source.NewS3(ctx, source.S3Config{Bucket: "assets"}, source.WithS3Client(&fakeS3{}))
		require.ErrorIs(t, err, source.ErrMissingBucket)
	})
}

func TestParse(t *testing.T) {
	ctx := context.Background()

	t.Run("s3 uri", func(t *testing.T) {
		src, err := source.Parse(ctx, "s3://assets/team/lexicon.json", source.S3Config{}, source.WithS3Client(&fakeS3{}))
		require.NoError(t, err)
		assert.Equal(t, "s3://assets/team/lexicon.json", src.String())
	})

	t.Run("plain path", func(t *testing.T) {
		src, err := source.Parse(ctx, " ./data/lexicon.json ", source.S3Config{})
		require.NoError(t, err)
		assert.Equal(t, "./data/lexicon.json", src.String())
	})

	t.Run("empty uri", func(t *testing.T) {
		_, err := source.Parse(ctx, "  ", source.S3Config{})
		require.ErrorIs(t, err, source.ErrInvalidURI)
	})

	t.Run("s3 uri without key", func(t *testing.T) {
		_, err := source.Parse(ctx, "s3://assets", source.S3Config{}, source.WithS3Client(&fakeS3{}))
		require.ErrorIs(t, err, source.ErrMissingBucket)
	})
}
