package proxy

import (
	"fmt"
	"net/url"
	"sync/atomic"
)

// Manager rotates SMTP probe traffic across a fixed proxy pool.
type Manager struct {
	proxies []*url.URL
	counter uint64
}

var Global *Manager
var Semaphore chan struct{}
var SMTPEnabled bool

// Init loads the proxies and sets the concurrency limit and SMTP toggle.
func Init(proxyList []string, limit int, enableSMTP bool) error {
	var parsed []*url.URL

	for _, p := range proxyList {
		if p == "" {
			continue
		}
		u, err := url.Parse(p)
		if err != nil {
			return fmt.Errorf("invalid proxy URL '%s': %w", p, err)
		}
		parsed = append(parsed, u)
	}

	// Default the limit to the pool size when unset.
	if limit <= 0 {
		limit = len(parsed)
		if limit == 0 {
			limit = 10
		}
	}

	Semaphore = make(chan struct{}, limit)
	SMTPEnabled = enableSMTP

	Global = &Manager{proxies: parsed}
	return nil
}

// Next returns the next proxy in round-robin order, or nil when the
// pool is empty.
func (m *Manager) Next() *url.URL {
	if m == nil || len(m.proxies) == 0 {
		return nil
	}
	n := atomic.AddUint64(&m.counter, 1)
	return m.proxies[(n-1)%uint64(len(m.proxies))]
}

func Enabled() bool {
	return Global != nil && len(Global.proxies) > 0
}
