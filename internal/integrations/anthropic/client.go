// Package anthropic adapts the Anthropic Messages API to llm.Generator.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"answer-gateway/internal/domain"
	"answer-gateway/internal/llm"
)

// defaultMaxTokens applies when a request leaves MaxTokens unset; the
// Messages API requires a value.
const defaultMaxTokens = 1024

// objectMaxTokens bounds structured generation output.
const objectMaxTokens = 4096

type Client struct {
	api   sdk.Client
	model string
}

var _ llm.Generator = (*Client)(nil)

type options struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

type Option func(*options)

func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) {
		o.httpClient = httpClient
	}
}

func WithMaxRetries(n int) Option {
	return func(o *options) {
		o.maxRetries = n
	}
}

// NewClient creates a Client for model authenticated with apiKey.
func NewClient(apiKey, model string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("anthropic: api key must not be empty")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("anthropic: model must not be empty")
	}

	o := options{maxRetries: 2}
	for _, opt := range opts {
		opt(&o)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(o.maxRetries),
	}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(strings.TrimRight(o.baseURL, "/")+"/"))
	}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.httpClient))
	}

	return &Client{api: sdk.NewClient(reqOpts...), model: model}, nil
}

func (c *Client) Name() string {
	return "anthropic/" + c.model
}

// StreamText starts a streaming message. System-role messages are folded
// into the system prompt since the API only accepts user and assistant turns.
func (c *Client) StreamText(ctx context.Context, req llm.Request) (llm.TokenStream, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	params := c.params(req.System, req.Messages, maxTokens, req.Temperature)

	s := c.api.Messages.NewStreaming(ctx, params)
	if err := s.Err(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("anthropic: start stream: %w", err)
	}
	return &tokenStream{s: s}, nil
}

// GenerateObject asks for a single JSON object. The Messages API has no
// schema-constrained mode, so the schema travels in the system prompt and the
// reply is stripped of any code fence.
func (c *Client) GenerateObject(ctx context.Context, req llm.ObjectRequest) (string, error) {
	schema, err := json.Marshal(req.Schema)
	if err != nil {
		return "", fmt.Errorf("anthropic: marshal schema: %w", err)
	}
	system := strings.TrimSpace(req.System + "\n\nRespond with a single JSON object, and nothing else, that validates against this JSON Schema:\n" + string(schema))

	params := c.params(system, []domain.ChatMessage{{Role: domain.RoleUser, Content: req.Prompt}}, objectMaxTokens, req.Temperature)
	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic: request failed: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	out := stripFence(b.String())
	if out == "" {
		return "", errors.New("anthropic: empty completion")
	}
	return out, nil
}

func (c *Client) params(system string, msgs []domain.ChatMessage, maxTokens int, temperature float64) sdk.MessageNewParams {
	var systemParts []string
	if system != "" {
		systemParts = append(systemParts, system)
	}
	turns := make([]sdk.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case domain.RoleSystem:
			systemParts = append(systemParts, m.Content)
		case domain.RoleAssistant:
			turns = append(turns, sdk.NewAssistantMessage(sdk.NewTextBlock(m.Content)))
		default:
			turns = append(turns, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
		}
	}

	p := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages:  turns,
	}
	if len(systemParts) > 0 {
		p.System = []sdk.TextBlockParam{{Text: strings.Join(systemParts, "\n\n")}}
	}
	if temperature > 0 {
		p.Temperature = sdk.Float(temperature)
	}
	return p
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

type tokenStream struct {
	s *ssestream.Stream[sdk.MessageStreamEventUnion]
}

func (t *tokenStream) Recv() (string, error) {
	for t.s.Next() {
		ev, ok := t.s.Current().AsAny().(sdk.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		if d, ok := ev.Delta.AsAny().(sdk.TextDelta); ok {
			return d.Text, nil
		}
	}
	if err := t.s.Err(); err != nil {
		return "", fmt.Errorf("anthropic: stream: %w", err)
	}
	return "", io.EOF
}

func (t *tokenStream) Close() error {
	return t.s.Close()
}
