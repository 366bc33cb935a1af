package proxy_test

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mediashare/internal/errs"
	"mediashare/internal/proxy"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		proxyURLs []string
		wantCount int
		wantErr   bool
	}{
		{
			name:      "no proxies",
			proxyURLs: nil,
			wantCount: 0,
		},
		{
			name:      "single socks proxy",
			proxyURLs: []string{"socks5h://127.0.0.1:1080"},
			wantCount: 1,
		},
		{
			name:      "mixed schemes",
			proxyURLs: []string{"socks5://127.0.0.1:1080", "http://127.0.0.1:3128", "https://proxy.example.com"},
			wantCount: 3,
		},
		{
			name:      "IPv6 with port",
			proxyURLs: []string{"socks5h://[::1]:1080"},
			wantCount: 1,
		},
		{
			name:      "unparsable URL",
			proxyURLs: []string{"not a valid url://:"},
			wantErr:   true,
		},
		{
			name:      "unsupported scheme",
			proxyURLs: []string{"ftp://127.0.0.1:21"},
			wantErr:   true,
		},
		{
			name:      "missing host",
			proxyURLs: []string{"http://"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := proxy.New(tt.proxyURLs, true, time.Second)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err == nil && m.Count() != tt.wantCount {
				t.Errorf("New() count = %v, want %v", m.Count(), tt.wantCount)
			}
		})
	}
}

func TestGetProxy_NoProxies(t *testing.T) {
	m, err := proxy.New(nil, true, time.Second)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := m.GetProxy(t.Context())
	if err != nil {
		t.Errorf("GetProxy() error = %v", err)
	}

	if got != nil {
		t.Errorf("GetProxy() = %v, want nil", got)
	}
}

func TestGetProxy_WithoutHealthCheck(t *testing.T) {
	m, err := proxy.New([]string{"socks5h://proxy1:1080", "socks5h://proxy2:1080"}, false, time.Second)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for range 10 {
		got, err := m.GetProxy(t.Context())
		if err != nil {
			t.Fatalf("GetProxy() error = %v", err)
		}

		if got == nil || (got.Host != "proxy1:1080" && got.Host != "proxy2:1080") {
			t.Fatalf("GetProxy() = %v", got)
		}
	}
}

func TestGetProxy_HealthCheck(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	dead, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	deadAddr := dead.Addr().String()
	dead.Close()

	m, err := proxy.New([]string{"http://" + deadAddr, "http://" + ln.Addr().String()}, true, time.Second)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for range 5 {
		got, err := m.GetProxy(t.Context())
		if err != nil {
			t.Fatalf("GetProxy() error = %v", err)
		}

		if got.Host != ln.Addr().String() {
			t.Fatalf("GetProxy() = %v, want the live proxy", got)
		}
	}
}

func TestGetProxy_NoneHealthy(t *testing.T) {
	dead, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	deadAddr := dead.Addr().String()
	dead.Close()

	m, err := proxy.New([]string{"http://" + deadAddr}, true, time.Second)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = m.GetProxy(t.Context())
	if !errors.Is(err, errs.ErrNoProxiesAvailable) {
		t.Errorf("GetProxy() error = %v, want %v", err, errs.ErrNoProxiesAvailable)
	}
}

func TestProxyFunc(t *testing.T) {
	m, err := proxy.New([]string{"http://127.0.0.1:3128"}, false, time.Second)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "https://example.com/a.mp4", nil)

	got, err := m.ProxyFunc()(req)
	if err != nil {
		t.Fatalf("ProxyFunc() error = %v", err)
	}

	if got.String() != "http://127.0.0.1:3128" {
		t.Errorf("ProxyFunc() = %v", got)
	}
}
