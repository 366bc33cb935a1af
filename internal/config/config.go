// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	HTTP    HTTP
	App     App
	Landing Landing
	Dir     Dir
	Fetch   Fetch
	Storage Storage
}

// App holds application-wide configuration.
type App struct {
	LogLevel string `env:"MEDIASHARE_APP_LOG_LEVEL" envDefault:"info"`
	// LogFile receives logs in interactive mode, where stdout belongs to the terminal UI.
	LogFile string `env:"MEDIASHARE_APP_LOG_FILE" envDefault:""`
}

// Landing holds what the landing shows.
type Landing struct {
	VideoURL       string `env:"MEDIASHARE_LANDING_VIDEO_URL"       envDefault:"https://celinaroom.com/wp-content/uploads/2026/01/video_2026-01-13_11-19-49.mp4"` //nolint:lll
	AffiliateURL   string `env:"MEDIASHARE_LANDING_AFFILIATE_URL"   envDefault:"https://paywin.fun"`
	AffiliateLabel string `env:"MEDIASHARE_LANDING_AFFILIATE_LABEL" envDefault:"S'INSCRIRE SUR PAYWIN"`
}

// Dir holds directory paths for saved videos and temporary blobs.
type Dir struct {
	Downloads string `env:"MEDIASHARE_DIR_DOWNLOADS" envDefault:"./data/downloads"` // saved videos land here
	Temp      string `env:"MEDIASHARE_DIR_TEMP"      envDefault:"./data/tmp"`       // fetched blobs before save
}

// SetAbsPaths converts all directory paths to absolute paths.
func (c *Dir) SetAbsPaths() error {
	var err error
	if c.Downloads, err = filepath.Abs(c.Downloads); err != nil {
		return fmt.Errorf("downloads: %w", err)
	}

	if c.Temp, err = filepath.Abs(c.Temp); err != nil {
		return fmt.Errorf("temp: %w", err)
	}

	return nil
}

// Fetch holds configuration of the primary (fetch-and-save) strategy.
type Fetch struct {
	// Timeout bounds the whole fetch; zero means no timeout.
	Timeout   time.Duration `env:"MEDIASHARE_FETCH_TIMEOUT"    envDefault:"0s"`
	UserAgent string        `env:"MEDIASHARE_FETCH_USER_AGENT" envDefault:""`

	// ProxyList is a comma-separated list of proxy URLs (http, https, socks5, socks5h).
	ProxyList          string        `env:"MEDIASHARE_FETCH_PROXY_LIST"           envDefault:""`
	ProxyHealthCheck   bool          `env:"MEDIASHARE_FETCH_PROXY_HEALTH_CHECK"   envDefault:"true"`
	ProxyHealthTimeout time.Duration `env:"MEDIASHARE_FETCH_PROXY_HEALTH_TIMEOUT" envDefault:"5s"`

	// Proxies is the parsed list of proxy URLs
	Proxies []string `env:"-"`
}

// parseProxyList parses the comma-separated proxy list.
func (f *Fetch) parseProxyList() {
	f.Proxies = nil

	if f.ProxyList == "" {
		return
	}

	for proxy := range strings.SplitSeq(f.ProxyList, ",") {
		proxy = strings.TrimSpace(proxy)
		if proxy != "" {
			f.Proxies = append(f.Proxies, proxy)
		}
	}
}

// Storage holds storage configuration.
type Storage struct {
	// TempTTL is the age after which a leftover temporary blob is removed.
	TempTTL         time.Duration `env:"MEDIASHARE_STORAGE_TEMP_TTL"         envDefault:"1h"`
	CleanupInterval time.Duration `env:"MEDIASHARE_STORAGE_CLEANUP_INTERVAL" envDefault:"10m"`
}

// HTTP holds HTTP server configuration.
type HTTP struct {
	Port            string        `env:"MEDIASHARE_HTTP_PORT"             envDefault:":8080"`
	HandlerTimeout  time.Duration `env:"MEDIASHARE_HTTP_HANDLER_TIMEOUT"  envDefault:"20s"`
	ShutdownTimeout time.Duration `env:"MEDIASHARE_HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// New loads configuration from environment variables.
func New() (*Config, error) {
	cfg := &Config{}

	err := env.Parse(cfg)
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	err = cfg.Dir.SetAbsPaths()
	if err != nil {
		return nil, fmt.Errorf("set absolute paths: %w", err)
	}

	cfg.Fetch.parseProxyList()

	return cfg, nil
}

// Refresh re-derives computed fields after flags override loaded values.
func (c *Config) Refresh() error {
	err := c.Dir.SetAbsPaths()
	if err != nil {
		return fmt.Errorf("set absolute paths: %w", err)
	}

	c.Fetch.parseProxyList()

	return nil
}
