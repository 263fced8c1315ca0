// Package lookup fetches short encyclopedia summaries from Wikipedia.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rbright/jarvis/internal/config"
	"github.com/rbright/jarvis/internal/transcript"
	"github.com/rbright/jarvis/internal/version"
	"github.com/tidwall/gjson"
)

var (
	ErrEmptyQuery = errors.New("lookup query is empty")
	ErrNotFound   = errors.New("no matching article")
	ErrAmbiguous  = errors.New("query matches a disambiguation page")
)

const maxBodyBytes = 1 << 20

// Client resolves a free-text query to an article and returns its lead sentences.
type Client struct {
	endpoint  string
	sentences int
	http      *http.Client
}

// New builds a client. A nil httpClient gets one bounded by cfg.TimeoutMS.
func New(cfg config.LookupConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond}
	}
	sentences := cfg.Sentences
	if sentences <= 0 {
		sentences = 2
	}
	return &Client{
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		sentences: sentences,
		http:      httpClient,
	}
}

// Summary returns the first sentences of the article best matching query.
func (c *Client) Summary(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}

	title, err := c.search(ctx, query)
	if err != nil {
		return "", err
	}

	body, status, err := c.get(ctx, c.endpoint+"/api/rest_v1/page/summary/"+url.PathEscape(strings.ReplaceAll(title, " ", "_")))
	if err != nil {
		return "", err
	}
	if status == http.StatusNotFound {
		return "", ErrNotFound
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("summary %q: unexpected status %d", title, status)
	}

	if gjson.GetBytes(body, "type").String() == "disambiguation" {
		return "", fmt.Errorf("%q: %w", title, ErrAmbiguous)
	}
	extract := strings.TrimSpace(gjson.GetBytes(body, "extract").String())
	if extract == "" {
		return "", ErrNotFound
	}
	return transcript.FirstSentences(extract, c.sentences), nil
}

// search maps a query to the best article title via opensearch.
func (c *Client) search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("search", query)
	params.Set("limit", "1")
	params.Set("namespace", "0")
	params.Set("format", "json")

	body, status, err := c.get(ctx, c.endpoint+"/w/api.php?"+params.Encode())
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("search %q: unexpected status %d", query, status)
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("search %q: invalid json response", query)
	}

	title := gjson.GetBytes(body, "1.0")
	if !title.Exists() || strings.TrimSpace(title.String()) == "" {
		return "", ErrNotFound
	}
	return title.String(), nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "jarvis/"+version.Version+" (voice assistant)")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read %s: %w", req.URL.Path, err)
	}
	return body, resp.StatusCode, nil
}
