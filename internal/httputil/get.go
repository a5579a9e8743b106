// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// BrowserUserAgent identifies the client as an ordinary desktop browser.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/113.0.0.0 Safari/537.36"

// MaxBodyBytes caps how much of a response body is read. Results pages are
// well under this.
var MaxBodyBytes int64 = 8 << 20

// StatusError reports a non-2xx response. Body holds whatever was read so
// callers can still inspect it (block pages arrive with 429 or 403).
type StatusError struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// BrowserHeaders returns the request headers sent with every page request.
// An empty userAgent falls back to BrowserUserAgent.
func BrowserHeaders(userAgent string) http.Header {
	if userAgent == "" {
		userAgent = BrowserUserAgent
	}
	h := make(http.Header)
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	return h
}

// Get issues a single GET with browser headers and returns the body.
// There are no retries. A non-2xx status returns the body together with a
// *StatusError.
func Get(ctx context.Context, client *http.Client, url, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = BrowserHeaders(userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return body, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: body}
	}
	return body, nil
}
