package explainer

import (
	"crypto/sha1"
	"encoding/hex"
	"sync"

	"github.com/pkg/errors"
)

// predictionCache memoises probability rows per (method, text).
type predictionCache struct {
	mu     sync.RWMutex
	m      map[string][]float64
	hits   int
	misses int
}

func newPredictionCache() *predictionCache {
	return &predictionCache{m: make(map[string][]float64)}
}

func (c *predictionCache) get(key string) ([]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *predictionCache) put(key string, v []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = v
}

// stats returns the hit and miss counters.
func (c *predictionCache) stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// wrap returns a scoring function that only forwards unseen texts to predict.
func (c *predictionCache) wrap(method string, predict func([]string) ([][]float64, error)) func([]string) ([][]float64, error) {
	return func(texts []string) ([][]float64, error) {
		keys := make([]string, len(texts))
		var missing []string
		pending := make(map[string]int)
		for i, text := range texts {
			keys[i] = cacheKey(text, method)
			if _, ok := c.get(keys[i]); ok {
				continue
			}
			if _, ok := pending[keys[i]]; ok {
				continue
			}
			pending[keys[i]] = len(missing)
			missing = append(missing, text)
		}
		if len(missing) > 0 {
			rows, err := predict(missing)
			if err != nil {
				return nil, err
			}
			if len(rows) != len(missing) {
				return nil, errors.Errorf("predict returned %d rows for %d texts", len(rows), len(missing))
			}
			for key, idx := range pending {
				c.put(key, rows[idx])
			}
		}
		out := make([][]float64, len(texts))
		for i, key := range keys {
			row, _ := c.get(key)
			out[i] = append([]float64(nil), row...)
		}
		c.mu.Lock()
		c.misses += len(missing)
		c.hits += len(texts) - len(missing)
		c.mu.Unlock()
		return out, nil
	}
}

func cacheKey(text, method string) string {
	h := sha1.Sum([]byte(text + "|" + method))
	return hex.EncodeToString(h[:])
}
