package backends

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

// WebBackend serves web.fetch: fetch a page and extract the main content
// as clean, sanitized text, for travel lookups that no structured backend
// covers. In mock mode it returns canned content instead of touching the
// network.
type WebBackend struct {
	mock      bool
	UserAgent string
	client    *http.Client
}

func NewWebBackend(mock bool) *WebBackend {
	return &WebBackend{
		mock:      mock,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (w *WebBackend) Tools() []string {
	return []string{"web.fetch"}
}

func (w *WebBackend) Handle(ctx context.Context, method string, payload map[string]any) (map[string]any, error) {
	if method != "fetch" {
		return nil, unknownMethod("web", method)
	}

	rawURL, _ := payload["url"].(string)
	if rawURL == "" {
		return nil, fmt.Errorf("web.fetch requires a url")
	}

	if w.mock {
		return mockResponse(map[string]any{
			"title":   "Sample Travel Guide",
			"excerpt": "Everything you need to know before you go.",
			"content": "Pack light, check visa requirements, and book popular attractions ahead.",
			"url":     rawURL,
		}), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", w.UserAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status code %d", resp.StatusCode)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %v", err)
	}

	article, err := readability.FromReader(resp.Body, parsedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse article: %v", err)
	}

	// Sanitize output (remove any remaining HTML tags or scripts)
	sanitized := bluemonday.StrictPolicy().Sanitize(article.TextContent)

	// Limit content length to avoid massive token usage
	if len(sanitized) > 50000 {
		sanitized = sanitized[:50000] + "\n... (content truncated) ..."
	}

	return map[string]any{
		"title":   article.Title,
		"excerpt": article.Excerpt,
		"content": sanitized,
		"url":     rawURL,
	}, nil
}
