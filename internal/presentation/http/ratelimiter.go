package http

import (
	"math"
	"sync"
	"time"

	"eduvista/site/internal/platform/metrics"
)

type rateLimiterClient struct {
	tokens   float64
	last     time.Time
	lastSeen time.Time
}

// RateLimiter is a token bucket per client IP. Idle clients are pruned after
// ttl by a background loop that runs until Stop.
type RateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*rateLimiterClient
	maxTokens  float64
	refillRate float64
	ttl        time.Duration
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewRateLimiter constructs a rate limiter holding burst tokens per client.
func NewRateLimiter(burst int, refillPerSecond float64, ttl time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients:    make(map[string]*rateLimiterClient),
		maxTokens:  float64(burst),
		refillRate: refillPerSecond,
		ttl:        ttl,
		now:        time.Now,
		stop:       make(chan struct{}),
	}

	if ttl > 0 {
		ticker := time.NewTicker(ttl)
		go func() {
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					rl.pruneStale()
				case <-rl.stop:
					return
				}
			}
		}()
	}

	return rl
}

// Allow consumes a token for ip. When the bucket is empty it returns false
// and how long the client should wait for the next token.
func (rl *RateLimiter) Allow(ip string) (bool, time.Duration) {
	if ip == "" {
		ip = "unknown"
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, ok := rl.clients[ip]
	if !ok {
		client = &rateLimiterClient{tokens: rl.maxTokens, last: now}
		rl.clients[ip] = client
		metrics.SetRateLimitClients(len(rl.clients))
	}
	client.lastSeen = now

	if elapsed := now.Sub(client.last).Seconds(); elapsed > 0 {
		client.tokens = math.Min(rl.maxTokens, client.tokens+elapsed*rl.refillRate)
		client.last = now
	}

	if client.tokens < 1 {
		metrics.IncRateLimitExceeded()
		return false, rl.wait(client.tokens)
	}

	client.tokens--
	return true, 0
}

// wait is the time until tokens refills to one, rounded up to whole seconds.
func (rl *RateLimiter) wait(tokens float64) time.Duration {
	if rl.refillRate <= 0 {
		return rl.ttl
	}
	seconds := math.Ceil((1 - tokens) / rl.refillRate)
	if seconds < 1 {
		seconds = 1
	}
	return time.Duration(seconds) * time.Second
}

// Stop ends the background pruning loop.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stop)
	})
}

func (rl *RateLimiter) pruneStale() {
	if rl.ttl <= 0 {
		return
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, client := range rl.clients {
		if now.Sub(client.lastSeen) > rl.ttl {
			delete(rl.clients, ip)
		}
	}
	metrics.SetRateLimitClients(len(rl.clients))
}
