// Package proxy selects the outbound proxy used by the primary fetch.
package proxy

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"time"

	"mediashare/internal/errs"
)

const (
	defaultSOCKSPort = "1080"
	defaultHTTPPort  = "8080"
	defaultHTTPSPort = "443"
)

// Manager picks a proxy per request, optionally skipping unreachable ones.
type Manager struct {
	proxies       []*url.URL
	healthCheck   bool
	healthTimeout time.Duration
	dialer        *net.Dialer
}

// New parses proxy URLs. An empty list yields a manager that always goes direct.
func New(proxyURLs []string, healthCheck bool, healthTimeout time.Duration) (*Manager, error) {
	parsed := make([]*url.URL, 0, len(proxyURLs))

	for _, raw := range proxyURLs {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", raw, err)
		}

		switch u.Scheme {
		case "http", "https", "socks5", "socks5h":
		default:
			return nil, fmt.Errorf("invalid proxy URL %q: unsupported scheme %q", raw, u.Scheme)
		}

		if u.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL %q: missing host", raw)
		}

		parsed = append(parsed, u)
	}

	return &Manager{
		proxies:       parsed,
		healthCheck:   healthCheck,
		healthTimeout: healthTimeout,
		dialer:        &net.Dialer{},
	}, nil
}

// GetProxy returns a random healthy proxy, or nil when no proxies are configured.
func (m *Manager) GetProxy(ctx context.Context) (*url.URL, error) {
	if len(m.proxies) == 0 {
		return nil, nil
	}

	if !m.healthCheck {
		return m.proxies[rand.IntN(len(m.proxies))], nil
	}

	// shuffle and try each once
	for _, idx := range rand.Perm(len(m.proxies)) {
		proxy := m.proxies[idx]
		if m.checkHealth(ctx, proxy) {
			return proxy, nil
		}
	}

	return nil, errs.ErrNoProxiesAvailable
}

// ProxyFunc adapts the manager to http.Transport.Proxy.
func (m *Manager) ProxyFunc() func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		return m.GetProxy(req.Context())
	}
}

// checkHealth reports whether a TCP connection to the proxy can be opened.
func (m *Manager) checkHealth(ctx context.Context, u *url.URL) bool {
	host := u.Host
	if u.Port() == "" {
		switch u.Scheme {
		case "socks5", "socks5h":
			host = net.JoinHostPort(u.Hostname(), defaultSOCKSPort)
		case "https":
			host = net.JoinHostPort(u.Hostname(), defaultHTTPSPort)
		default:
			host = net.JoinHostPort(u.Hostname(), defaultHTTPPort)
		}
	}

	checkCtx, cancel := context.WithTimeout(ctx, m.healthTimeout)
	defer cancel()

	conn, err := m.dialer.DialContext(checkCtx, "tcp", host)
	if err != nil {
		return false
	}
	conn.Close()

	return true
}

// Count returns the number of configured proxies.
func (m *Manager) Count() int {
	return len(m.proxies)
}
