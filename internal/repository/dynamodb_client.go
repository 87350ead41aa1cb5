package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"answer-gateway/internal/domain"
)

const (
	pkPrefixContext = "CTX#"
	skEnrichment    = "ENRICHMENT#"
	defaultTTL      = time.Hour
)

// dynamodbAPI is the minimal DynamoDB interface required by ContextCache.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// ContextCache stores remote context lookups in a DynamoDB table keyed by
// the normalized query. Items carry a ttl attribute for DynamoDB expiry;
// Get also treats expired items as misses since expiry is not immediate.
type ContextCache struct {
	api       dynamodbAPI
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

type CacheOption func(*ContextCache)

// WithTTL sets how long a cached enrichment stays valid.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *ContextCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) CacheOption {
	return func(c *ContextCache) {
		c.now = now
	}
}

// NewContextCache creates a cache backed by tableName.
func NewContextCache(api dynamodbAPI, tableName string, opts ...CacheOption) (*ContextCache, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	c := &ContextCache{api: api, tableName: tableName, ttl: defaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// normalizeQuery folds case and whitespace so equivalent questions share a key.
func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// contextPK returns the partition key for a query.
func contextPK(query string) string {
	sum := sha256.Sum256([]byte(normalizeQuery(query)))
	return pkPrefixContext + hex.EncodeToString(sum[:])
}

// Get returns the cached enrichment for query. The boolean is false on a
// miss, including an expired item.
func (c *ContextCache) Get(ctx context.Context, query string) (domain.ContextEnrichment, bool, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: contextPK(query)},
			"SK": &types.AttributeValueMemberS{Value: skEnrichment},
		},
	})
	if err != nil {
		return domain.ContextEnrichment{}, false, fmt.Errorf("repository: Get get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.ContextEnrichment{}, false, nil
	}

	expires, err := int64Attr(out.Item, "ttl")
	if err != nil {
		return domain.ContextEnrichment{}, false, fmt.Errorf("repository: Get decode ttl: %w", err)
	}
	if c.now().Unix() >= expires {
		return domain.ContextEnrichment{}, false, nil
	}

	raw, err := strAttr(out.Item, "enrichment")
	if err != nil {
		return domain.ContextEnrichment{}, false, fmt.Errorf("repository: Get decode enrichment: %w", err)
	}
	var e domain.ContextEnrichment
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return domain.ContextEnrichment{}, false, fmt.Errorf("repository: Get unmarshal enrichment: %w", err)
	}
	return e, true, nil
}

// Put stores e for query, replacing any previous item.
func (c *ContextCache) Put(ctx context.Context, query string, e domain.ContextEnrichment) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("repository: Put marshal enrichment: %w", err)
	}
	now := c.now().UTC()
	_, err = c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"PK":         &types.AttributeValueMemberS{Value: contextPK(query)},
			"SK":         &types.AttributeValueMemberS{Value: skEnrichment},
			"query":      &types.AttributeValueMemberS{Value: normalizeQuery(query)},
			"enrichment": &types.AttributeValueMemberS{Value: string(raw)},
			"storedAt":   &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
			"ttl":        &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Add(c.ttl).Unix(), 10)},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: Put: %w", err)
	}
	return nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func int64Attr(item map[string]types.AttributeValue, key string) (int64, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
