// Package httprouter serves the landing page and its small JSON API.
package httprouter

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"mediashare/internal/config"
	"mediashare/internal/consts"
	"mediashare/internal/entity"
	"mediashare/internal/infrastructure/delivery/http/middleware"
	"mediashare/internal/infrastructure/delivery/http/response"
	"mediashare/internal/observability"
	"mediashare/internal/service"
)

//go:embed templates/landing.html
var templatesFS embed.FS

var landingTmpl = template.Must(template.ParseFS(templatesFS, "templates/landing.html"))

type pageText struct {
	Brand       string
	Title       string
	Subtitle    string
	NoVideoTag  string
	Download    string
	Downloading string
	Format      string
	ManualSave  string
	Rights      string
}

type landingPage struct {
	Landing entity.Landing
	Text    pageText
	Year    int
}

type Router struct {
	*http.ServeMux
	log         *slog.Logger
	cfg         *config.Config
	globalChain []func(http.Handler) http.Handler
	routeChain  []func(http.Handler) http.Handler
	isSubRouter bool
	svc         service.LandingSource
	metrics     *observability.Metrics
	now         func() time.Time
}

// New builds the router. The landing never runs download attempts on the server,
// so it only needs a LandingSource.
func New(log *slog.Logger, cfg *config.Config, svc service.LandingSource, metrics *observability.Metrics) *Router {
	r := &Router{
		ServeMux: http.NewServeMux(),
		log:      log.With(slog.String("package", "httprouter")),
		cfg:      cfg,
		svc:      svc,
		metrics:  metrics,
		now:      time.Now,
	}

	r.SetGlobalMiddlewares()
	r.SetRoutes()

	return r
}

func (r *Router) Use(middleware ...func(http.Handler) http.Handler) {
	if r.isSubRouter {
		r.routeChain = append(r.routeChain, middleware...)
	} else {
		r.globalChain = append(r.globalChain, middleware...)
	}
}

func (r *Router) Group(fn func(r *Router)) {
	subRouter := &Router{
		isSubRouter: true,
		routeChain:  slices.Clone(r.routeChain),
		ServeMux:    r.ServeMux,
	}

	fn(subRouter)
}

func (r *Router) HandleFunc(pattern string, h http.HandlerFunc) {
	r.Handle(pattern, h)
}

func (r *Router) Handle(pattern string, h http.Handler) {
	for _, middleware := range slices.Backward(r.routeChain) {
		h = middleware(h)
	}

	r.ServeMux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var h http.Handler = r.ServeMux

	for _, middleware := range slices.Backward(r.globalChain) {
		h = middleware(h)
	}

	h.ServeHTTP(w, req)
}

func (r *Router) SetGlobalMiddlewares() {
	// Metrics must wrap the mux directly to see the matched pattern.
	r.Use(
		middleware.Recoverer,
		middleware.RequestID,
		middleware.Logger(r.log),
		middleware.Metrics(r.metrics),
	)
}

func (r *Router) SetRoutes() {
	r.SetRoutesLanding()
	r.SetRoutesV1()

	r.Handle("GET /metrics", r.metrics.Handler())
}

func (r *Router) SetRoutesLanding() {
	r.Group(func(g *Router) {
		g.Use(timeout(r.cfg.HTTP.HandlerTimeout))
		g.HandleFunc("GET /{$}", r.LandingPage)
	})
}

func (r *Router) SetRoutesV1() {
	v1Router := &Router{
		ServeMux: http.NewServeMux(),
	}

	v1Router.HandleFunc("GET /readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok")) //nolint:errcheck
	})

	v1Router.Group(func(g *Router) {
		g.Use(timeout(r.cfg.HTTP.HandlerTimeout))
		g.HandleFunc("GET /landing", r.GetLanding)
	})

	r.Handle("/v1/", http.StripPrefix("/v1", v1Router))
}

// LandingPage renders the HTML landing. The visitor's browser plays and saves the
// video itself: the page script fetches it into an object URL and falls back to
// a new tab, showing the manual-save message when both fail.
func (r *Router) LandingPage(w http.ResponseWriter, req *http.Request) {
	log := r.log.With(slog.String("handler", "LandingPage"))
	ctx := req.Context()

	page := landingPage{
		Landing: r.svc.Landing(),
		Text: pageText{
			Brand:       consts.TextBrand,
			Title:       consts.TextTitle,
			Subtitle:    consts.TextSubtitle,
			NoVideoTag:  consts.TextNoVideoTag,
			Download:    consts.TextDownload,
			Downloading: consts.TextDownloading,
			Format:      consts.TextFormat,
			ManualSave:  consts.MsgManualSave,
			Rights:      consts.TextRights,
		},
		Year: r.now().Year(),
	}

	var buf bytes.Buffer

	err := landingTmpl.Execute(&buf, page)
	if err != nil {
		log.ErrorContext(ctx, consts.RespRenderFailed, slog.Any("error", err))
		response.InternalServerError(w, consts.RespRenderFailed, nil, err)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck
}

func (r *Router) GetLanding(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, consts.RespLandingRetrieved, r.svc.Landing(), nil)
}

func timeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		d = consts.DefaultHandlerTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx, cancel := context.WithTimeout(req.Context(), d)
			defer cancel()

			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}
