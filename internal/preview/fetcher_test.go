package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!doctype html><html><head>
<title>Fallback title</title>
<meta property="og:title" content="Go release notes">
<meta property="og:image" content="https://example.com/img.png">
<meta name="description" content="Plain description">
</head><body><meta property="og:title" content="ignored"></body></html>`

func TestParse(t *testing.T) {
	p, err := Parse(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, "Go release notes", p.Title)
	assert.Equal(t, "Plain description", p.Description)
	assert.Equal(t, "https://example.com/img.png", p.ImageURL)
}

func TestParse_TitleFallback(t *testing.T) {
	p, err := Parse(strings.NewReader(`<html><head><title> Only title </title></head></html>`))
	require.NoError(t, err)
	assert.Equal(t, "Only title", p.Title)
}

func TestPreview_CachesResult(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	f := NewFetcher(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Second, time.Hour)

	for i := 0; i < 2; i++ {
		p, err := f.Preview(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, srv.URL, p.URL)
		assert.Equal(t, "Go release notes", p.Title)
	}
	assert.EqualValues(t, 1, hits.Load())
}

func TestPreview_Non200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewFetcher(nil, time.Second, 0).Preview(context.Background(), srv.URL)
	assert.Error(t, err)
}
