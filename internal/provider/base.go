package provider

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/seenimoa/intrinsic/internal/infra"
)

// Options tunes the cache and rate limit of a Base.
type Options struct {
	CacheTTL  time.Duration
	RateLimit float64 // requests per second, 0 = unlimited
}

// Base provides caching, rate limiting and credential handling.
// Embed it in concrete providers.
type Base struct {
	info        Info
	cache       *infra.Cache
	limiter     *infra.RateLimiter
	credentials map[string]string
}

// NewBase creates a base provider.
func NewBase(info Info, opts Options) Base {
	return Base{
		info:        info,
		cache:       infra.NewCache(opts.CacheTTL),
		limiter:     infra.NewRateLimiter(opts.RateLimit),
		credentials: make(map[string]string),
	}
}

func (b *Base) Info() Info { return b.info }

func (b *Base) Init(credentials map[string]string) error {
	for _, cred := range b.info.Credentials {
		if !cred.Required {
			continue
		}
		if v := credentials[cred.Name]; v == "" {
			return &ErrInvalidCredentials{
				Provider: b.info.Name,
				Detail:   "missing required credential: " + cred.Name,
			}
		}
	}
	b.credentials = make(map[string]string, len(credentials))
	for k, v := range credentials {
		b.credentials[k] = v
	}
	return nil
}

// Credential returns a stored credential value.
func (b *Base) Credential(name string) string {
	return b.credentials[name]
}

// RateLimit waits until a request slot is available.
func (b *Base) RateLimit(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

// Cached returns the cached value for key, or calls fetch and caches its
// result. Errors are not cached. fetch is responsible for rate limiting its
// own upstream calls.
func (b *Base) Cached(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	if v, ok := b.cache.Get(key); ok {
		return v, nil
	}
	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	b.cache.Set(key, v)
	return v, nil
}

// Sweep drops expired cache entries.
func (b *Base) Sweep() {
	b.cache.Cleanup()
}

// CacheKey builds a deterministic cache key from a kind and parameters.
func CacheKey(kind Kind, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(string(kind))
	for _, k := range keys {
		sb.WriteString(":")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(params[k])
	}
	return sb.String()
}
