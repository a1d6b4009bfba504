package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/msto63/sexpr/foundation/sexpr"
)

// ResultCache caches successful conversions keyed by input and parse mode
type ResultCache struct {
	cache *Cache[*sexpr.Result]
}

// NewResultCache creates a result cache
func NewResultCache(cfg Config) *ResultCache {
	return &ResultCache{cache: New[*sexpr.Result](cfg)}
}

// ResultKey derives the cache key of an input. Strict and lenient results
// differ for inputs with trailing tokens, so the mode is part of the key.
func ResultKey(input string, strict bool) string {
	h := sha256.New()
	if strict {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	h.Write([]byte(input))
	return "result:" + hex.EncodeToString(h.Sum(nil))
}

// Convert returns the cached result of input or runs engine.Convert and
// caches the outcome. The boolean reports a cache hit.
func (c *ResultCache) Convert(engine *sexpr.Engine, input string) (*sexpr.Result, bool, error) {
	key := ResultKey(input, engine.Strict())
	if res, ok := c.cache.Get(key); ok {
		return res, true, nil
	}

	res, err := engine.Convert(input)
	if err != nil {
		return nil, false, err
	}
	c.cache.Set(key, res)
	return res, false, nil
}

// Stats returns cache statistics
func (c *ResultCache) Stats() Stats {
	return c.cache.Stats()
}

// Close stops the expiry sweep
func (c *ResultCache) Close() {
	c.cache.Close()
}
