package fetcher

import (
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
)

// ProxyRing rotates proxies round-robin per request, so a failing proxy
// does not poison every subsequent fetch to a domain.
type ProxyRing struct {
	proxies []*url.URL
	cursor  atomic.Uint64
}

// NewProxyRing parses the given proxy URIs. Returns nil (direct connections)
// when the list is empty.
func NewProxyRing(proxyURLs []string) (*ProxyRing, error) {
	if len(proxyURLs) == 0 {
		return nil, nil
	}

	parsed := make([]*url.URL, 0, len(proxyURLs))
	for _, raw := range proxyURLs {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse proxy %q: %w", raw, err)
		}
		parsed = append(parsed, u)
	}

	return &ProxyRing{proxies: parsed}, nil
}

// ProxyFunc returns an http.Transport proxy selector backed by the ring, or
// nil when the ring itself is nil.
func (r *ProxyRing) ProxyFunc() func(*http.Request) (*url.URL, error) {
	if r == nil {
		return nil
	}

	return func(*http.Request) (*url.URL, error) {
		i := r.cursor.Add(1) - 1
		return r.proxies[i%uint64(len(r.proxies))], nil
	}
}
