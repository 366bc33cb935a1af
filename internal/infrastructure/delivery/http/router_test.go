package httprouter

import (
	"encoding/json"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mediashare/internal/config"
	"mediashare/internal/consts"
	"mediashare/internal/entity"
	"mediashare/internal/observability"
)

type stubLanding struct {
	landing entity.Landing
}

func (s *stubLanding) Landing() entity.Landing { return s.landing }

func newTestRouter(t *testing.T) (*httptest.Server, *observability.Metrics) {
	t.Helper()

	svc := &stubLanding{landing: entity.Landing{
		VideoURL:       "https://example.com/media/video_2026-01-13_11-19-49.mp4",
		Filename:       "video_2026-01-13_11-19-49.mp4",
		AffiliateURL:   "https://paywin.fun",
		AffiliateLabel: consts.TextAffiliateDef,
	}}
	metrics := observability.New()
	cfg := &config.Config{HTTP: config.HTTP{HandlerTimeout: time.Second}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := New(log, cfg, svc, metrics)
	router.now = func() time.Time { return time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC) }

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, metrics
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Get(url) //nolint:noctx
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	return resp, string(body)
}

func TestLandingPage(t *testing.T) {
	srv, _ := newTestRouter(t)

	resp, body := get(t, srv.URL+"/")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q, want text/html", ct)
	}

	for _, want := range []string{
		`<source src="https://example.com/media/video_2026-01-13_11-19-49.mp4" type="video/mp4">`,
		`<button id="download" class="button download" type="button"`,
		`data-url="https://example.com/media/video_2026-01-13_11-19-49.mp4"`,
		`data-filename="video_2026-01-13_11-19-49.mp4"`,
		`data-busy="Téléchargement..."`,
		`download="video_2026-01-13_11-19-49.mp4" target="_blank"`,
		`href="https://paywin.fun" target="_blank" rel="noopener noreferrer"`,
		"Votre Vidéo",
		"Télécharger la Vidéo",
		"S&#39;INSCRIRE SUR PAYWIN",
		"Format MP4 • Haute Qualité",
		"&copy; 2026 Tous droits réservés.",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("landing page missing %q", want)
		}
	}

	errorBox := `<div id="download-error" class="error" role="alert" hidden>` + template.HTMLEscapeString(consts.MsgManualSave) + `</div>`
	if !strings.Contains(body, errorBox) {
		t.Errorf("landing page missing hidden manual-save box %q", errorBox)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestLandingPageDownloadScript(t *testing.T) {
	srv, _ := newTestRouter(t)

	_, body := get(t, srv.URL+"/")

	start := strings.Index(body, "<script>")
	end := strings.Index(body, "</script>")

	if start < 0 || end < start {
		t.Fatal("landing page has no download script")
	}

	script := body[start:end]

	// primary: fetch into an object URL, then fallback: new tab, then the error box
	steps := []string{
		"button.disabled = true",
		"button.dataset.busy",
		"await fetch(url)",
		"response.blob()",
		"URL.createObjectURL(",
		"URL.revokeObjectURL(objectURL)",
		`save(url, filename, "_blank")`,
		"errorBox.hidden = false",
		"button.disabled = false",
	}

	last := -1

	for _, step := range steps {
		i := strings.Index(script, step)
		if i < 0 {
			t.Errorf("download script missing %q", step)

			continue
		}

		if i < last {
			t.Errorf("download script step %q out of order", step)
		}

		last = i
	}
}

func TestUnknownPath(t *testing.T) {
	srv, _ := newTestRouter(t)

	resp, _ := get(t, srv.URL+"/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestReadyz(t *testing.T) {
	srv, _ := newTestRouter(t)

	resp, body := get(t, srv.URL+"/v1/readyz")
	if resp.StatusCode != http.StatusOK || body != "ok" {
		t.Errorf("readyz = %d %q, want 200 ok", resp.StatusCode, body)
	}
}

func TestGetLanding(t *testing.T) {
	srv, _ := newTestRouter(t)

	resp, body := get(t, srv.URL+"/v1/landing")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out struct {
		Message string         `json:"message"`
		Data    entity.Landing `json:"data"`
	}

	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if out.Message != consts.RespLandingRetrieved {
		t.Errorf("message = %q", out.Message)
	}

	if out.Data.Filename != "video_2026-01-13_11-19-49.mp4" || out.Data.AffiliateURL != "https://paywin.fun" {
		t.Errorf("landing = %+v", out.Data)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestRouter(t)

	resp, body := get(t, srv.URL+"/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	for _, want := range []string{"mediashare_system_goroutines", "mediashare_attempts_in_progress"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
