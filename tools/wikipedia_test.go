package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWikipedia_Call(t *testing.T) {
	type input struct {
		status int
		body   string
	}

	type expected struct {
		result    string
		resultHas string
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name: "snippet markup is stripped",
			input: input{
				status: http.StatusOK,
				body: `{"query":{"search":[{"title":"Go (programming language)","snippet":` +
					`"<span class=\"searchmatch\">Go</span> is a &quot;statically typed&quot; language"}]}}`,
			},
			expected: expected{result: `Go is a "statically typed" language`},
		},
		{
			name:     "no results",
			input:    input{status: http.StatusOK, body: `{"query":{"search":[]}}`},
			expected: expected{resultHas: `no results for "golang"`},
		},
		{
			name:     "not json",
			input:    input{status: http.StatusOK, body: `<html>maintenance</html>`},
			expected: expected{resultHas: "decode wikipedia response"},
		},
		{
			name:     "server error",
			input:    input{status: http.StatusServiceUnavailable, body: "try later"},
			expected: expected{resultHas: "status 503: try later"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				assert.Equal(t, "query", q.Get("action"))
				assert.Equal(t, "search", q.Get("list"))
				assert.Equal(t, "json", q.Get("format"))
				assert.Equal(t, "1", q.Get("srlimit"))
				assert.Equal(t, "golang", q.Get("srsearch"))

				w.WriteHeader(tc.input.status)
				_, _ = w.Write([]byte(tc.input.body))
			}))
			defer server.Close()

			tool := NewWikipedia().WithEndpoint(server.URL).WithHTTPClient(server.Client())
			result, err := tool.Call(context.Background(), map[string]any{"query": "golang"})
			require.NoError(t, err)

			text, ok := result.(string)
			require.True(t, ok)
			if tc.expected.resultHas != "" {
				assert.Contains(t, text, tc.expected.resultHas)
				return
			}
			assert.Equal(t, tc.expected.result, text)
		})
	}
}

func TestWikipedia_Call_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"query":{"search":[]}}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tool := NewWikipedia().WithEndpoint(server.URL).WithHTTPClient(server.Client())
	_, err := tool.Call(ctx, map[string]any{"query": "golang"})
	assert.ErrorIs(t, err, context.Canceled)
}
