package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"answer-gateway/internal/domain"
	"answer-gateway/internal/llm"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func chunk(content string) string {
	return fmt.Sprintf(`data: {"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"delta":{"content":%q}}]}`+"\n\n", content)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient("sk-test", "gpt-4o-mini", WithBaseURL(srv.URL), WithMaxRetries(0))
	require.NoError(t, err)
	return c
}

func drain(t *testing.T, ts llm.TokenStream) ([]string, error) {
	t.Helper()
	defer ts.Close()
	var out []string
	for {
		tok, err := ts.Recv()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, tok)
	}
}

// ---------------------------------------------------------------------------
// NewClient
// ---------------------------------------------------------------------------

func TestNewClient_RequiresKeyAndModel(t *testing.T) {
	_, err := NewClient("  ", "gpt-4o-mini")
	require.Error(t, err)

	_, err = NewClient("sk-test", "")
	require.Error(t, err)

	c, err := NewClient("sk-test", "gpt-4o-mini")
	require.NoError(t, err)
	require.Equal(t, "openai/gpt-4o-mini", c.Name())
}

func TestNormalizeBaseURL(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"https://api.openai.com/v1", "https://api.openai.com/v1/"},
		{"https://api.openai.com/v1/", "https://api.openai.com/v1/"},
		{"http://localhost:8080", "http://localhost:8080/v1/"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, normalizeBaseURL(tc.base), "base=%q", tc.base)
	}
}

// ---------------------------------------------------------------------------
// StreamText
// ---------------------------------------------------------------------------

func TestStreamText_YieldsDeltasInOrder(t *testing.T) {
	var (
		got        map[string]any
		path, auth string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path, auth = r.URL.Path, r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, tok := range []string{"Hel", "lo", " world"} {
			_, _ = io.WriteString(w, chunk(tok))
		}
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	})

	ts, err := c.StreamText(context.Background(), llm.Request{
		System:      "be brief",
		Messages:    []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}},
		MaxTokens:   150,
		Temperature: 0.7,
	})
	require.NoError(t, err)

	toks, err := drain(t, ts)
	require.NoError(t, err)
	require.Equal(t, "Hello world", strings.Join(toks, ""))

	require.Equal(t, "/v1/chat/completions", path)
	require.Equal(t, "Bearer sk-test", auth)
	require.Equal(t, "gpt-4o-mini", got["model"])
	require.Equal(t, true, got["stream"])
	require.EqualValues(t, 150, got["max_completion_tokens"])
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	require.Equal(t, "system", msgs[0].(map[string]any)["role"])
	require.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestStreamText_UpstreamErrorBeforeOutput(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	})

	_, err := c.StreamText(context.Background(), llm.Request{
		Messages: []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "openai: start stream")
}

func TestStreamText_ErrorEventMidStream(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, chunk("partial"))
		_, _ = io.WriteString(w, `data: {"error":{"message":"overloaded"}}`+"\n\n")
	})

	ts, err := c.StreamText(context.Background(), llm.Request{
		Messages: []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)

	toks, err := drain(t, ts)
	require.Equal(t, []string{"partial"}, toks)
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// GenerateObject
// ---------------------------------------------------------------------------

func TestGenerateObject_SendsJSONSchema(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"type\":\"todo\"}"}}]}`)
	})

	out, err := c.GenerateObject(context.Background(), llm.ObjectRequest{
		Prompt:     "make a todo list",
		SchemaName: "ui",
		Schema:     map[string]any{"type": "object"},
	})
	require.NoError(t, err)
	require.Equal(t, `{"type":"todo"}`, out)

	rf := got["response_format"].(map[string]any)
	require.Equal(t, "json_schema", rf["type"])
	js := rf["json_schema"].(map[string]any)
	require.Equal(t, "ui", js["name"])
	require.Equal(t, false, js["strict"])
	require.Equal(t, map[string]any{"type": "object"}, js["schema"])
}

func TestGenerateObject_EmptyContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":""}}]}`)
	})

	_, err := c.GenerateObject(context.Background(), llm.ObjectRequest{Prompt: "x"})
	require.Error(t, err)
}

func TestToMessages_MapsRoles(t *testing.T) {
	msgs := toMessages("", []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "s"},
		{Role: domain.RoleUser, Content: "u"},
		{Role: domain.RoleAssistant, Content: "a"},
	})
	require.Len(t, msgs, 3)
	require.NotNil(t, msgs[0].OfSystem)
	require.NotNil(t, msgs[1].OfUser)
	require.NotNil(t, msgs[2].OfAssistant)
}
