package remote

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// ConnectivityProbe answers "is the network up right now". It is injected
// so the engine's branching is deterministic under test.
type ConnectivityProbe interface {
	Online(ctx context.Context) bool
}

// HTTPProbe HEADs the API base URL. Results are cached briefly so the
// facade's per-call checks do not hammer the network.
type HTTPProbe struct {
	url    string
	client *http.Client

	mu       sync.Mutex
	lastAt   time.Time
	lastSeen bool
	ttl      time.Duration
}

func NewHTTPProbe(baseURL string) *HTTPProbe {
	return &HTTPProbe{
		url:    baseURL,
		client: &http.Client{Timeout: 3 * time.Second},
		ttl:    5 * time.Second,
	}
}

func (p *HTTPProbe) Online(ctx context.Context) bool {
	p.mu.Lock()
	if time.Since(p.lastAt) < p.ttl {
		seen := p.lastSeen
		p.mu.Unlock()
		return seen
	}
	p.mu.Unlock()

	online := false
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err == nil {
		resp, err := p.client.Do(req)
		if err == nil {
			resp.Body.Close()
			online = true
		}
	}

	p.mu.Lock()
	p.lastAt = time.Now()
	p.lastSeen = online
	p.mu.Unlock()
	return online
}

// StaticProbe is a manually toggled probe for tests and for UIs that track
// their own connectivity signal.
type StaticProbe struct {
	mu     sync.Mutex
	online bool
}

func NewStaticProbe(online bool) *StaticProbe {
	return &StaticProbe{online: online}
}

func (p *StaticProbe) SetOnline(online bool) {
	p.mu.Lock()
	p.online = online
	p.mu.Unlock()
}

func (p *StaticProbe) Online(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}
