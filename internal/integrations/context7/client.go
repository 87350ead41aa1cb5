// Package context7 looks up auxiliary context for a query from a remote
// knowledge service, degrading to a local topic table on any failure.
package context7

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"answer-gateway/internal/domain"
	"answer-gateway/internal/observability"
)

const (
	DefaultBaseURL = "https://api.context7.com"
	DefaultTimeout = 3 * time.Second
)

// DefaultLibraryIDs is the lookup scope sent with every search.
var DefaultLibraryIDs = []string{
	"react",
	"typescript",
	"ai-sdk",
	"tailwind",
	"javascript",
	"web-apis",
	"atlantic-knowledge-base",
}

// Cache stores successful remote lookups. Faults are logged and ignored.
type Cache interface {
	Get(ctx context.Context, query string) (domain.ContextEnrichment, bool, error)
	Put(ctx context.Context, query string, e domain.ContextEnrichment) error
}

type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	LibraryIDs []string
}

// searchRequest is the body of POST /search.
type searchRequest struct {
	Query           string   `json:"query"`
	LibraryIDs      []string `json:"libraryIds"`
	SearchDepth     string   `json:"searchDepth"`
	IncludeExamples bool     `json:"includeExamples"`
}

// Client fetches context enrichments. The zero Config yields a client that
// only serves the local table.
type Client struct {
	http       *resty.Client
	apiKey     string
	timeout    time.Duration
	libraryIDs []string
	cache      Cache
	logger     *slog.Logger
}

type Option func(*Client)

func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(cfg Config, opts ...Option) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ids := cfg.LibraryIDs
	if len(ids) == 0 {
		ids = DefaultLibraryIDs
	}
	apiKey := strings.TrimSpace(cfg.APIKey)

	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetAuthToken(apiKey).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		apiKey:     apiKey,
		timeout:    timeout,
		libraryIDs: ids,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether remote lookups are enabled.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// FetchContext returns an enrichment for query. It never fails: an empty
// query yields the empty enrichment, and any remote fault yields the local
// table's answer.
func (c *Client) FetchContext(ctx context.Context, query string) domain.ContextEnrichment {
	query = strings.TrimSpace(query)
	if query == "" {
		observability.ContextLookupsTotal.WithLabelValues("empty").Inc()
		return domain.ContextEnrichment{}
	}
	if !c.Configured() {
		observability.ContextLookupsTotal.WithLabelValues("local").Inc()
		return Local(query)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if e, ok := c.cached(ctx, query); ok {
		observability.ContextLookupsTotal.WithLabelValues("cache_hit").Inc()
		return e
	}

	e, err := c.search(ctx, query)
	if err != nil {
		c.logger.WarnContext(ctx, "context lookup failed, using local knowledge",
			slog.String("reason", "remote_error"),
			slog.Any("error", err),
		)
		observability.ContextLookupsTotal.WithLabelValues("fallback").Inc()
		return Local(query)
	}
	observability.ContextLookupsTotal.WithLabelValues("remote").Inc()

	if c.cache != nil {
		if err := c.cache.Put(ctx, query, e); err != nil {
			c.logger.WarnContext(ctx, "context cache write failed", slog.Any("error", err))
		}
	}
	return e
}

func (c *Client) cached(ctx context.Context, query string) (domain.ContextEnrichment, bool) {
	if c.cache == nil {
		return domain.ContextEnrichment{}, false
	}
	e, ok, err := c.cache.Get(ctx, query)
	if err != nil {
		c.logger.WarnContext(ctx, "context cache read failed", slog.Any("error", err))
		return domain.ContextEnrichment{}, false
	}
	if !ok || e.Empty() {
		return domain.ContextEnrichment{}, false
	}
	return e, true
}

var errEmptyContext = errors.New("context7: empty context in response")

func (c *Client) search(ctx context.Context, query string) (domain.ContextEnrichment, error) {
	var out domain.ContextEnrichment
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(searchRequest{
			Query:           query,
			LibraryIDs:      c.libraryIDs,
			SearchDepth:     "comprehensive",
			IncludeExamples: true,
		}).
		SetResult(&out).
		Post("/search")
	if err != nil {
		return domain.ContextEnrichment{}, fmt.Errorf("context7: search: %w", err)
	}
	if !resp.IsSuccess() {
		return domain.ContextEnrichment{}, fmt.Errorf("context7: unexpected status %d", resp.StatusCode())
	}
	if strings.TrimSpace(out.ContextText) == "" {
		return domain.ContextEnrichment{}, errEmptyContext
	}
	return out, nil
}
