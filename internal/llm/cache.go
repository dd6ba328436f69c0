package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachingProvider memoizes completions for identical requests. Model output
// is not deterministic, so this is only enabled when an operator opts in.
type CachingProvider struct {
	provider Provider
	cache    *gocache.Cache
}

// NewCachingProvider wraps provider with an in-memory cache whose entries
// expire after ttl.
func NewCachingProvider(provider Provider, ttl time.Duration) *CachingProvider {
	return &CachingProvider{
		provider: provider,
		cache:    gocache.New(ttl, 2*ttl),
	}
}

func (c *CachingProvider) Name() string {
	return c.provider.Name()
}

func (c *CachingProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	key := CacheKey(req)
	if val, found := c.cache.Get(key); found {
		resp := *val.(*CompletionResponse)
		resp.Cached = true
		return &resp, nil
	}

	resp, err := c.provider.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, resp)
	return resp, nil
}

// Len returns the number of live cache entries.
func (c *CachingProvider) Len() int {
	return c.cache.ItemCount()
}

// CacheKey derives a stable key from the parts of a request that affect the
// model output.
func CacheKey(req CompletionRequest) string {
	h := sha256.New()
	h.Write([]byte(req.Model))
	h.Write([]byte{0})
	for _, m := range req.Messages {
		h.Write([]byte(m.Role))
		h.Write([]byte{0})
		h.Write([]byte(m.Content))
		h.Write([]byte{0})
	}
	if req.JSONMode {
		h.Write([]byte("json"))
	}
	return "pharos:v1:" + hex.EncodeToString(h.Sum(nil))
}
