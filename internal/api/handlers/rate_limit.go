package handlers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/moysha/servicecatalog/internal/domain/providers"
)

// writeLimiter caps how many writes one caller may make per window.
// State lives in the shared cache when one is configured, in process memory otherwise.
type writeLimiter struct {
	prefix string
	limit  int
	window time.Duration
	cache  providers.CacheProvider
	local  *localRateLimiter
}

func newWriteLimiter(prefix string, limit int, window time.Duration, cache providers.CacheProvider) *writeLimiter {
	return &writeLimiter{
		prefix: prefix,
		limit:  limit,
		window: window,
		cache:  cache,
		local:  newLocalRateLimiter(),
	}
}

func (l *writeLimiter) allow(ctx context.Context, caller string) (bool, time.Duration) {
	key := l.prefix + caller
	if l.cache == nil {
		return l.local.allow(key, l.limit, l.window)
	}

	state := rateLimitState{}
	if data, err := l.cache.Get(ctx, key); err == nil {
		_ = json.Unmarshal(data, &state)
	}

	if state.Count >= l.limit {
		return false, l.window
	}

	state.Count++
	data, _ := json.Marshal(state)
	_ = l.cache.Set(ctx, key, data, l.window)
	return true, l.window
}

type rateLimitState struct {
	Count int `json:"count"`
}

type localRateLimiter struct {
	mu     sync.Mutex
	states map[string]*localRateState
}

type localRateState struct {
	count   int
	resetAt time.Time
}

func newLocalRateLimiter() *localRateLimiter {
	return &localRateLimiter{
		states: make(map[string]*localRateState),
	}
}

func (l *localRateLimiter) allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.states[key]
	if !ok || now.After(state.resetAt) {
		state = &localRateState{count: 0, resetAt: now.Add(window)}
		l.states[key] = state
	}

	if state.count >= limit {
		retryAfter := time.Until(state.resetAt)
		if retryAfter < 0 {
			retryAfter = window
		}
		return false, retryAfter
	}

	state.count++
	return true, window
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
