// Package fetcher retrieves page markup over HTTP. Fetches are
// conditional: when a prior snapshot supplied validators, an unchanged
// page answers 304 and the whole pipeline for that page short-circuits.
package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/errorwrapper"

	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
)

// ErrNotModified is returned when content has not been modified (HTTP 304).
var ErrNotModified = errorwrapper.NewError("content not modified")

// PageFetcher performs conditional GETs against tracked pages.
type PageFetcher struct {
	client *http.Client
	cfg    config.FetcherConfig
	logger zerolog.Logger
}

// NewPageFetcher builds a fetcher from the configuration. A nil client
// gets a default one with the configured timeout, redirect cap and TLS
// settings.
func NewPageFetcher(cfg config.FetcherConfig, client *http.Client, logger zerolog.Logger) *PageFetcher {
	if client == nil {
		client = buildHTTPClient(cfg)
	}
	return &PageFetcher{
		client: client,
		cfg:    cfg,
		logger: logger.With().Str("component", "PageFetcher").Logger(),
	}
}

func buildHTTPClient(cfg config.FetcherConfig) *http.Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   time.Duration(cfg.HTTPTimeoutSecs) * time.Second,
	}

	if cfg.MaxRedirects > 0 {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", cfg.MaxRedirects)
			}
			return nil
		}
	}

	return client
}

// FetchPageInput holds parameters for FetchPage.
type FetchPageInput struct {
	URL                  string
	PreviousETag         string
	PreviousLastModified string
}

// FetchPageResult holds results from FetchPage. Markup is decoded to
// UTF-8 regardless of the charset the server declared.
type FetchPageResult struct {
	Markup       []byte
	ContentType  string
	ETag         string
	LastModified string
	StatusCode   int
}

// FetchPage fetches a page's markup with support for conditional GETs.
// It returns ErrNotModified alongside the validator-bearing result when
// the server answers 304.
func (pf *PageFetcher) FetchPage(ctx context.Context, input FetchPageInput) (*FetchPageResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, input.URL, nil)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create HTTP request")
	}

	if input.PreviousETag != "" {
		req.Header.Set("If-None-Match", input.PreviousETag)
	}
	if input.PreviousLastModified != "" {
		req.Header.Set("If-Modified-Since", input.PreviousLastModified)
	}
	if pf.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", pf.cfg.UserAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "*/*")
	}

	resp, err := pf.client.Do(req)
	if err != nil {
		return nil, errorwrapper.NewNetworkError(input.URL, "HTTP request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	result := &FetchPageResult{
		ContentType:  resp.Header.Get("Content-Type"),
		ETag:         resp.Header.Get("Etag"),
		LastModified: resp.Header.Get("Last-Modified"),
		StatusCode:   resp.StatusCode,
	}

	if resp.StatusCode == http.StatusNotModified {
		pf.logger.Debug().Str("url", input.URL).Msg("Content not modified (304)")
		return result, ErrNotModified
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		pf.logger.Warn().
			Str("url", input.URL).
			Int("status_code", resp.StatusCode).
			Msg("Received non-OK HTTP status")
		return result, errorwrapper.NewHTTPErrorWithURL(resp.StatusCode, string(errorBody), input.URL)
	}

	if pf.cfg.MaxContentSize > 0 && resp.ContentLength > int64(pf.cfg.MaxContentSize) {
		return result, errorwrapper.NewError("content too large: %d bytes (max: %d bytes)", resp.ContentLength, pf.cfg.MaxContentSize)
	}

	body, err := pf.readBody(resp.Body)
	if err != nil {
		return result, err
	}

	markup, err := decodeToUTF8(body, result.ContentType)
	if err != nil {
		return result, errorwrapper.WrapError(err, "failed to decode response body")
	}
	result.Markup = markup

	pf.logger.Debug().
		Str("url", input.URL).
		Int("content_size", len(result.Markup)).
		Str("content_type", result.ContentType).
		Msg("Fetched page markup")

	return result, nil
}

// readBody reads the response body, enforcing the content size cap for
// servers that omit Content-Length. A truncated payload would surface
// later as a confusing parse failure, so oversized content is an error
// here rather than a silent cut.
func (pf *PageFetcher) readBody(r io.Reader) ([]byte, error) {
	if pf.cfg.MaxContentSize <= 0 {
		body, err := io.ReadAll(r)
		if err != nil {
			return nil, errorwrapper.WrapError(err, "failed to read response body")
		}
		return body, nil
	}

	body, err := io.ReadAll(io.LimitReader(r, int64(pf.cfg.MaxContentSize)+1))
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read response body")
	}
	if len(body) > pf.cfg.MaxContentSize {
		return nil, errorwrapper.NewError("content too large: exceeds %d bytes", pf.cfg.MaxContentSize)
	}
	return body, nil
}

// decodeToUTF8 converts the body to UTF-8 based on the declared content
// type, falling back to the raw bytes when no conversion is needed.
func decodeToUTF8(body []byte, contentType string) ([]byte, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(reader)
}
