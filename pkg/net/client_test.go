package net

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPClient(t *testing.T) {
	client, err := GetHTTPClient()
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.NotNil(t, client.Jar)
}

func TestPrintHTTPResponse_Nil(t *testing.T) {
	// should not panic
	PrintHTTPResponse(nil)
}

func TestPrintHTTPResponse_WithResponse(t *testing.T) {
	resp := &http.Response{
		StatusCode: 200,
		Header:     http.Header{},
		Body:       http.NoBody,
	}
	// should not panic
	PrintHTTPResponse(resp)
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/words.txt"))
	assert.True(t, IsURL("http://localhost:8080/x"))
	assert.False(t, IsURL("words.txt"))
	assert.False(t, IsURL("/tmp/words.txt"))
	assert.False(t, IsURL("ftp://example.com/words.txt"))
	assert.False(t, IsURL(""))
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/words.txt":
			assert.NotEmpty(t, r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte("password\nletmein\n"))
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	ctx := context.Background()

	path := filepath.Join(dir, "words.txt")
	require.NoError(t, Download(ctx, srv.URL+"/words.txt", path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "password\nletmein\n", string(b))

	err = Download(ctx, srv.URL+"/missing", filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, ErrorURLNotFound)
	_, statErr := os.Stat(filepath.Join(dir, "missing.txt"))
	assert.True(t, os.IsNotExist(statErr))

	err = Download(ctx, srv.URL+"/broken", filepath.Join(dir, "broken.txt"))
	assert.Error(t, err)
}

func TestDownload_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Download(ctx, "http://127.0.0.1:1/never", filepath.Join(t.TempDir(), "x"))
	assert.Error(t, err)
}
