package sitemap

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector() *Collector {
	return NewCollector(config.NewDefaultSitemapConfig(), config.NewDefaultFetcherConfig(), zerolog.Nop())
}

func collectedURLs(t *testing.T, value models.Value) []string {
	t.Helper()
	mapping, ok := value.(models.Mapping)
	require.True(t, ok)
	raw, ok := mapping.Get(URLsKey)
	require.True(t, ok)
	sequence, ok := raw.(models.Sequence)
	require.True(t, ok)

	urls := make([]string, 0, len(sequence))
	for _, element := range sequence {
		str, ok := element.(models.String)
		require.True(t, ok)
		urls = append(urls, string(str))
	}
	return urls
}

func TestCollector_CollectURLs_FlatSitemap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<url><loc>https://example.com/b</loc></url>
	<url><loc>https://example.com/a</loc></url>
	<url><loc>https://example.com/b</loc></url>
	<url><loc>https://example.com/c</loc><lastmod>2026-01-01</lastmod></url>
</urlset>`)
	}))
	defer srv.Close()

	value, err := newTestCollector().CollectURLs(context.Background(), srv.URL+"/sitemap.xml")

	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/c",
	}, collectedURLs(t, value))
}

func TestCollector_CollectURLs_FollowsSitemapIndex(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<sitemap><loc>%s/pages.xml</loc></sitemap>
	<sitemap><loc>%s/posts.xml</loc></sitemap>
</sitemapindex>`, srv.URL, srv.URL)
	})
	mux.HandleFunc("/pages.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<url><loc>https://example.com/about</loc></url>
</urlset>`)
	})
	mux.HandleFunc("/posts.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<url><loc>https://example.com/post-1</loc></url>
	<url><loc>https://example.com/post-2</loc></url>
</urlset>`)
	})

	value, err := newTestCollector().CollectURLs(context.Background(), srv.URL+"/sitemap.xml")

	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/about",
		"https://example.com/post-1",
		"https://example.com/post-2",
	}, collectedURLs(t, value))
}

func TestCollector_CollectURLs_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestCollector().CollectURLs(context.Background(), srv.URL+"/sitemap.xml")

	assert.Error(t, err)
}

func TestCollector_CollectURLs_EmptySitemap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`)
	}))
	defer srv.Close()

	value, err := newTestCollector().CollectURLs(context.Background(), srv.URL+"/sitemap.xml")

	require.NoError(t, err)
	assert.Empty(t, collectedURLs(t, value))
}

func TestCollector_CollectURLs_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestCollector().CollectURLs(ctx, srv.URL+"/sitemap.xml")

	assert.ErrorIs(t, err, context.Canceled)
}
