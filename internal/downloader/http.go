package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"mediashare/internal/config"
	"mediashare/internal/consts"
	"mediashare/internal/errs"
	"mediashare/internal/proxy"

	"github.com/gabriel-vasile/mimetype"
)

// headerTransport fills in browser-like headers without mutating the caller's request.
type headerTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())

	if cloned.Header.Get("User-Agent") == "" {
		cloned.Header.Set("User-Agent", t.userAgent)
	}

	if cloned.Header.Get("Accept") == "" {
		cloned.Header.Set("Accept", "video/*,*/*;q=0.8")
	}

	return t.base.RoundTrip(cloned)
}

type httpFetcher struct {
	log     *slog.Logger
	client  *http.Client
	tempDir string
}

// NewHTTP creates a Fetcher that downloads over HTTP into cfg.Dir.Temp.
// proxies may be nil.
func NewHTTP(log *slog.Logger, cfg *config.Config, proxies *proxy.Manager) Fetcher {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if proxies != nil && proxies.Count() > 0 {
		base.Proxy = proxies.ProxyFunc()
	}

	userAgent := cfg.Fetch.UserAgent
	if userAgent == "" {
		userAgent = consts.UserAgent
	}

	return &httpFetcher{
		log: log.With(slog.String("package", "downloader"), slog.String("fetcher", "http")),
		client: &http.Client{
			Timeout:   cfg.Fetch.Timeout,
			Transport: &headerTransport{base: base, userAgent: userAgent},
		},
		tempDir: cfg.Dir.Temp,
	}
}

func (f *httpFetcher) Fetch(ctx context.Context, url string) (*Blob, error) {
	log := f.log.With(slog.String("func", "Fetch"), slog.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: new request: %w", errs.ErrRetrievalFailed, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrRetrievalFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %w %d", errs.ErrRetrievalFailed, errs.ErrUnexpectedStatus, resp.StatusCode)
	}

	blob, err := f.writeBlob(resp.Body)
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "resource fetched",
		slog.Int64("bytes", blob.Size),
		slog.String("mime_type", blob.MimeType),
		slog.String("content_type", resp.Header.Get("Content-Type")))

	return blob, nil
}

func (f *httpFetcher) writeBlob(body io.Reader) (blob *Blob, err error) {
	if err = os.MkdirAll(f.tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create temp dir: %w", errs.ErrRetrievalFailed, err)
	}

	file, err := os.CreateTemp(f.tempDir, consts.TempPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: create temp file: %w", errs.ErrRetrievalFailed, err)
	}

	defer func() {
		if err != nil {
			file.Close()
			os.Remove(file.Name())
		}
	}()

	written, err := io.Copy(file, body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", errs.ErrRetrievalFailed, err)
	}

	if err = file.Close(); err != nil {
		return nil, fmt.Errorf("%w: close temp file: %w", errs.ErrRetrievalFailed, err)
	}

	mime, err := mimetype.DetectFile(file.Name())
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: detect mime type: %w", errs.ErrRetrievalFailed, err)
	}

	blob = &Blob{Path: file.Name(), Size: written}
	if mime != nil {
		blob.MimeType = mime.String()
	}

	return blob, nil
}
