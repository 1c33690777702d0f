package auth

import (
	"sync"

	"golang.org/x/time/rate"
)

// Fallback budget when security.rate_limit is absent from config.
// Guesses arrive at human typing speed, so the caps stay tight.
const (
	defaultRPS   = 5
	defaultBurst = 10
)

// limiterPool keeps one token bucket per caller identity: the API key
// for authenticated requests, the client address otherwise. Buckets are
// created on first sight and live for the process.
type limiterPool struct {
	mu  sync.Mutex
	m   map[string]*rate.Limiter
	cfg SecConfig
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.m == nil {
		p.m = make(map[string]*rate.Limiter)
	}
	if l, ok := p.m[key]; ok {
		return l
	}
	rps := p.cfg.RPS
	if rps <= 0 {
		rps = defaultRPS
	}
	burst := p.cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	l := rate.NewLimiter(rate.Limit(rps), burst)
	p.m[key] = l
	return l
}

// Allow reports whether key may proceed under its per-second budget.
func (p *limiterPool) Allow(key string) bool {
	return p.get(key).Allow()
}
