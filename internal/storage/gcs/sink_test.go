package gcs

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(t *testing.T, rt roundTripperFunc) *storage.Client {
	t.Helper()
	client, err := storage.NewClient(
		context.Background(),
		option.WithoutAuthentication(),
		option.WithHTTPClient(&http.Client{Transport: rt}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewValidates(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Config{Bucket: "b"})
	require.EqualError(t, err, "storage client is required")

	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return nil, io.EOF
	})
	_, err = New(client, Config{})
	require.EqualError(t, err, "bucket name is required")
}

func TestObjectName(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return nil, io.EOF
	})
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "out/doc.json", "out/doc.json"},
		{"runs/", "out/doc.json", "runs/out/doc.json"},
		{"/runs", "./doc.json", "runs/doc.json"},
		{"", "/abs/doc.json", "abs/doc.json"},
		{"p", "../up.json", "p/up.json"},
	}
	for _, tt := range tests {
		s, err := New(client, Config{Bucket: "b", Prefix: tt.prefix})
		require.NoError(t, err)
		assert.Equal(t, tt.want, s.ObjectName(tt.path), "prefix=%q path=%q", tt.prefix, tt.path)
	}
}

func TestPutUploadsDocument(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		path string
		body string
	)
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		path, body = r.URL.Path, string(data)
		mu.Unlock()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"bucket":"test-bucket","name":"runs/out/doc.json"}`)),
			Header:     http.Header{"Content-Type": {"application/json"}},
			Request:    r,
		}, nil
	})

	sink, err := New(client, Config{Bucket: "test-bucket", Prefix: "runs"})
	require.NoError(t, err)

	uri, err := sink.Put(context.Background(), "out/doc.json", []byte(`{"price":42}`))
	require.NoError(t, err)
	assert.Equal(t, "gs://test-bucket/runs/out/doc.json", uri)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, path, "/upload/storage/v1/b/test-bucket/o")
	assert.Contains(t, body, `{"price":42}`)
	assert.Contains(t, body, "runs/out/doc.json")
	assert.Contains(t, body, contentType)
}

func TestPutSurfacesUploadFailure(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusForbidden,
			Body:       io.NopCloser(strings.NewReader(`{"error":{"code":403,"message":"denied"}}`)),
			Header:     http.Header{"Content-Type": {"application/json"}},
			Request:    r,
		}, nil
	})

	sink, err := New(client, Config{Bucket: "test-bucket"})
	require.NoError(t, err)

	_, err = sink.Put(context.Background(), "doc.json", []byte(`{}`))
	require.ErrorContains(t, err, "close writer")

	_, err = sink.Put(context.Background(), "", []byte(`{}`))
	require.EqualError(t, err, "path is required")
}
