package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rickchristie/reloop"
	"github.com/rickchristie/reloop/schema"
)

// DefaultWikipediaEndpoint is the MediaWiki API of the English Wikipedia.
const DefaultWikipediaEndpoint = "https://en.wikipedia.org/w/api.php"

// ErrNoResults is returned by [Wikipedia.Search] when the query matched nothing.
var ErrNoResults = errors.New("no results")

// Wikipedia is the search_wikipedia tool. It returns the snippet of the best match for a
// full-text search, with markup stripped.
type Wikipedia struct {
	endpoint string
	client   *http.Client
	policy   *bluemonday.Policy
}

type wikipediaInput struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

// NewWikipedia creates a search_wikipedia tool against [DefaultWikipediaEndpoint].
func NewWikipedia() *Wikipedia {
	return &Wikipedia{
		endpoint: DefaultWikipediaEndpoint,
		client:   http.DefaultClient,
		policy:   bluemonday.StrictPolicy(),
	}
}

// WithEndpoint sets the MediaWiki API endpoint.
func (w *Wikipedia) WithEndpoint(endpoint string) *Wikipedia {
	w.endpoint = endpoint
	return w
}

// WithHTTPClient sets the HTTP client used for searches.
func (w *Wikipedia) WithHTTPClient(client *http.Client) *Wikipedia {
	w.client = client
	return w
}

func (w *Wikipedia) Name() string {
	return "search_wikipedia"
}

func (w *Wikipedia) Description() string {
	return "Search for information on Wikipedia."
}

func (w *Wikipedia) ParameterSchema() map[string]any {
	return schema.Object(map[string]*schema.Property{
		"query": schema.String("The search query for Wikipedia").MinLength(1),
	}, "query")
}

// Call searches Wikipedia. Any failure other than cancellation is returned as the result
// text so the model can rephrase the query.
func (w *Wikipedia) Call(ctx context.Context, args map[string]any) (reloop.ToolResult, error) {
	input, err := reloop.DecodeArgs[wikipediaInput](args)
	if err != nil {
		return nil, err
	}

	snippet, err := w.Search(ctx, input.Query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return err.Error(), nil
	}
	return snippet, nil
}

// Search returns the plain-text snippet of the first search hit for query.
func (w *Wikipedia) Search(ctx context.Context, query string) (string, error) {
	u, err := url.Parse(w.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse wikipedia endpoint: %w", err)
	}
	params := u.Query()
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("srlimit", "1")
	params.Set("srsearch", query)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create wikipedia request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("wikipedia search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("wikipedia search: status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode wikipedia response: %w", err)
	}
	if len(result.Query.Search) == 0 {
		return "", fmt.Errorf("%w for %q", ErrNoResults, query)
	}

	return w.stripMarkup(result.Query.Search[0].Snippet), nil
}

func (w *Wikipedia) stripMarkup(snippet string) string {
	return strings.TrimSpace(html.UnescapeString(w.policy.Sanitize(snippet)))
}

var _ reloop.Tool = (*Wikipedia)(nil)
