// Package metadata fetches web pages for their preview image.
package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	userAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	maxBodySize = 2 << 20
)

var schemeRe = regexp.MustCompile(`(?i)^https?://`)

// StatusError reports a non-2xx answer from the fetched page.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("page responded with status %d", e.StatusCode)
}

// ResolveURL parses target as an absolute http(s) URL. A missing scheme
// defaults to https.
func ResolveURL(target string) (*url.URL, error) {
	const op = "adapter.metadata.ResolveURL"

	if !schemeRe.MatchString(target) {
		target = "https://" + target
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%s: missing host", op)
	}

	return u, nil
}

type Fetcher struct {
	client *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// OGImage fetches page and returns the absolute URL of its og:image, falling
// back to twitter:image. It returns nil when the page declares neither.
func (f *Fetcher) OGImage(ctx context.Context, page *url.URL) (*string, error) {
	const op = "adapter.metadata.Fetcher.OGImage"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cache-Control", "no-store")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to fetch page: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: %w", op, &StatusError{StatusCode: resp.StatusCode})
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse page: %w", op, err)
	}

	meta := collectMeta(doc)

	for _, name := range []string{"og:image", "twitter:image"} {
		if content := meta[name]; content != "" {
			ref, err := url.Parse(content)
			if err != nil {
				return nil, nil
			}
			image := page.ResolveReference(ref).String()
			return &image, nil
		}
	}

	return nil, nil
}

// collectMeta maps meta property or name attributes to the first content seen.
func collectMeta(doc *html.Node) map[string]string {
	meta := make(map[string]string)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			key := strings.ToLower(getAttr(n, "property"))
			if key == "" {
				key = strings.ToLower(getAttr(n, "name"))
			}
			if content := strings.TrimSpace(getAttr(n, "content")); key != "" && content != "" {
				if _, ok := meta[key]; !ok {
					meta[key] = content
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return meta
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
