package branding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/alexedwards/flow"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fallback = "SF=sparkles.rectangle.stack.fill"

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake")

// newServer serves the branding image under /api/v1/branding-images/download/:id.
// Image 9 exists, every other id is a 404.
func newServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	mux := flow.New()
	mux.HandleFunc("/api/v1/branding-images/download/:id", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if flow.Param(r.Context(), "id") != "9" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	}, http.MethodGet)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newResolver(t *testing.T, url string) (*Resolver, string) {
	t.Helper()
	dir := t.TempDir()
	return New(zerolog.Nop(), Config{
		URL:      url,
		CacheDir: dir,
		FileName: "brandingimage.png",
		Fallback: fallback,
	}), dir
}

func TestIcon_DownloadsOnce(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)
	r, dir := newResolver(t, srv.URL+"/api/v1/branding-images/download/9")
	ctx := context.Background()

	want := filepath.Join(dir, "brandingimage.png")
	assert.Equal(t, want, r.Icon(ctx))
	assert.Equal(t, want, r.Icon(ctx))
	assert.Equal(t, int32(1), hits.Load())
	assert.True(t, r.Cached())

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}

func TestIcon_UsesExistingFile(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)
	r, dir := newResolver(t, srv.URL+"/api/v1/branding-images/download/9")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "brandingimage.png"), []byte("cached"), 0o644))

	assert.Equal(t, filepath.Join(dir, "brandingimage.png"), r.Icon(context.Background()))
	assert.Zero(t, hits.Load())
}

func TestIcon_NotFoundFallsBack(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)
	r, dir := newResolver(t, srv.URL+"/api/v1/branding-images/download/10")

	assert.Equal(t, fallback, r.Icon(context.Background()))
	assert.NoFileExists(t, filepath.Join(dir, "brandingimage.png"))
	assert.False(t, r.Cached())
}

func TestIcon_UnreachableFallsBack(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)
	url := srv.URL + "/api/v1/branding-images/download/9"
	srv.Close()

	r, _ := newResolver(t, url)
	assert.Equal(t, fallback, r.Icon(context.Background()))
}

func TestIcon_NoURL(t *testing.T) {
	r, _ := newResolver(t, "")
	assert.Equal(t, fallback, r.Icon(context.Background()))
}

func TestIcon_NoCacheDir(t *testing.T) {
	r := New(zerolog.Nop(), Config{URL: "http://127.0.0.1:1/x", FileName: "brandingimage.png", Fallback: fallback})
	assert.Equal(t, fallback, r.Icon(context.Background()))
}
