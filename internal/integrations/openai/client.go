package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"

	"answer-gateway/internal/domain"
	"answer-gateway/internal/llm"
)

// Client is a chat-completions generator bound to one model.
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

// WithBaseURL points the client at an OpenAI-compatible endpoint, including
// the version segment, e.g. "http://localhost:8080/v1".
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
		return nil, errors.New("openai: api key must not be empty")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("openai: model must not be empty")
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
		reqOpts = append(reqOpts, option.WithBaseURL(normalizeBaseURL(o.baseURL)))
	}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.httpClient))
	}

	return &Client{api: sdk.NewClient(reqOpts...), model: model}, nil
}

// normalizeBaseURL appends the /v1 segment when it is missing and guarantees
// the trailing slash the SDK resolves paths against.
func normalizeBaseURL(base string) string {
	base = strings.TrimRight(base, "/")
	if !strings.HasSuffix(base, "/v1") {
		base += "/v1"
	}
	return base + "/"
}

func (c *Client) Name() string {
	return "openai/" + c.model
}

// StreamText starts a streaming chat completion.
func (c *Client) StreamText(ctx context.Context, req llm.Request) (llm.TokenStream, error) {
	params := sdk.ChatCompletionNewParams{
		Model:    sdk.ChatModel(c.model),
		Messages: toMessages(req.System, req.Messages),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = sdk.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = sdk.Float(req.Temperature)
	}

	s := c.api.Chat.Completions.NewStreaming(ctx, params)
	if err := s.Err(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("openai: start stream: %w", err)
	}
	return &tokenStream{s: s}, nil
}

// GenerateObject requests a JSON object constrained by req.Schema and
// returns the raw JSON text. Validation is left to the caller.
func (c *Client) GenerateObject(ctx context.Context, req llm.ObjectRequest) (string, error) {
	name := req.SchemaName
	if name == "" {
		name = "result"
	}
	params := sdk.ChatCompletionNewParams{
		Model:    sdk.ChatModel(c.model),
		Messages: toMessages(req.System, []domain.ChatMessage{{Role: domain.RoleUser, Content: req.Prompt}}),
		ResponseFormat: sdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &sdk.ResponseFormatJSONSchemaParam{
				JSONSchema: sdk.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   name,
					Schema: req.Schema,
					Strict: sdk.Bool(false),
				},
			},
		},
	}
	if req.Temperature > 0 {
		params.Temperature = sdk.Float(req.Temperature)
	}

	res, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", errors.New("openai: no choices in response")
	}
	content := strings.TrimSpace(res.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openai: empty completion")
	}
	return content, nil
}

func toMessages(system string, msgs []domain.ChatMessage) []sdk.ChatCompletionMessageParamUnion {
	out := make([]sdk.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	if system != "" {
		out = append(out, sdk.SystemMessage(system))
	}
	for _, m := range msgs {
		switch m.Role {
		case domain.RoleSystem:
			out = append(out, sdk.SystemMessage(m.Content))
		case domain.RoleAssistant:
			out = append(out, sdk.AssistantMessage(m.Content))
		default:
			out = append(out, sdk.UserMessage(m.Content))
		}
	}
	return out
}

// tokenStream adapts the SDK's chunk stream to llm.TokenStream.
type tokenStream struct {
	s *ssestream.Stream[sdk.ChatCompletionChunk]
}

func (t *tokenStream) Recv() (string, error) {
	for t.s.Next() {
		chunk := t.s.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		return chunk.Choices[0].Delta.Content, nil
	}
	if err := t.s.Err(); err != nil {
		return "", fmt.Errorf("openai: stream: %w", err)
	}
	return "", io.EOF
}

func (t *tokenStream) Close() error {
	return t.s.Close()
}
