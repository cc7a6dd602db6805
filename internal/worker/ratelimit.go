package worker

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiterManager throttles SMTP probes globally and per domain.
// Large mailbox providers get stricter limits so the probing host's
// reputation survives bulk jobs.
type RateLimiterManager struct {
	global  *rate.Limiter
	domains map[string]*rate.Limiter
	mu      sync.RWMutex
}

func NewRateLimiterManager() *RateLimiterManager {
	domains := map[string]*rate.Limiter{
		"gmail.com":      rate.NewLimiter(2, 2),
		"googlemail.com": rate.NewLimiter(2, 2),
		"outlook.com":    rate.NewLimiter(1, 1),
		"hotmail.com":    rate.NewLimiter(1, 1),
		"live.com":       rate.NewLimiter(1, 1),
		"yahoo.com":      rate.NewLimiter(1, 1),
	}

	return &RateLimiterManager{
		global:  rate.NewLimiter(10, 10),
		domains: domains,
	}
}

// Wait blocks until both the global and the domain budget allow one
// more probe, or the context is cancelled.
func (m *RateLimiterManager) Wait(ctx context.Context, domain string) error {
	domain = strings.ToLower(domain)

	if err := m.global.Wait(ctx); err != nil {
		return err
	}

	m.mu.RLock()
	limiter, ok := m.domains[domain]
	m.mu.RUnlock()

	if !ok {
		m.mu.Lock()
		if limiter, ok = m.domains[domain]; !ok {
			limiter = rate.NewLimiter(5, 5)
			m.domains[domain] = limiter
		}
		m.mu.Unlock()
	}

	return limiter.Wait(ctx)
}
