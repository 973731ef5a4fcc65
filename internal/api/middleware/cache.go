package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/providers"
)

// CacheRule is the response cache TTL for GET requests under a path prefix
type CacheRule struct {
	Prefix     string
	TTLSeconds int
}

// DefaultCacheRules caches read-heavy store listings briefly. Item and report
// reads are never cached so crowd reports show up immediately.
func DefaultCacheRules() []CacheRule {
	return []CacheRule{
		{Prefix: "/api/stores/nearby", TTLSeconds: 60},
	}
}

// CacheMiddleware caches successful GET responses in a CacheProvider
type CacheMiddleware struct {
	cache providers.CacheProvider
	rules []CacheRule
}

// NewCacheMiddleware creates a cache middleware with the given rules
func NewCacheMiddleware(cache providers.CacheProvider, rules []CacheRule) *CacheMiddleware {
	return &CacheMiddleware{cache: cache, rules: rules}
}

// Middleware returns the cache middleware handler
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}

		rule, ok := m.ruleFor(r.URL.Path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		key := cacheKey(r)
		if cached, err := m.cache.Get(r.Context(), key); err == nil {
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}

		w.Header().Set("X-Cache", "MISS")
		recorder := &bodyRecorder{ResponseWriter: w, statusCode: http.StatusOK, body: &bytes.Buffer{}}
		next.ServeHTTP(recorder, r)

		if recorder.statusCode == http.StatusOK && recorder.body.Len() > 0 {
			if err := m.cache.Set(r.Context(), key, recorder.body.Bytes(), rule.TTLSeconds); err != nil {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("failed to cache response")
			}
		}
	})
}

func (m *CacheMiddleware) ruleFor(path string) (CacheRule, bool) {
	for _, rule := range m.rules {
		if strings.HasPrefix(path, rule.Prefix) {
			return rule, true
		}
	}
	return CacheRule{}, false
}

func cacheKey(r *http.Request) string {
	key := r.Method + ":" + r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}
	hash := sha256.Sum256([]byte(key))
	return "http:cache:" + hex.EncodeToString(hash[:])
}

// bodyRecorder tees the response so it can be cached
type bodyRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	written    bool
}

func (r *bodyRecorder) WriteHeader(statusCode int) {
	if !r.written {
		r.statusCode = statusCode
		r.ResponseWriter.WriteHeader(statusCode)
		r.written = true
	}
}

func (r *bodyRecorder) Write(data []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}
