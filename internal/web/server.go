// Package web provides the HTTP server, pages and JSON API for the explorer.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/explorer/internal/config"
	"github.com/JonMunkholm/explorer/internal/core"
	"github.com/JonMunkholm/explorer/internal/render"
	appmw "github.com/JonMunkholm/explorer/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server for the explorer.
type Server struct {
	cfg      *config.Config
	ctrl     *core.Controller
	sessions *core.SessionStore
	limiter  *core.LoadLimiter
	router   *chi.Mux
	server   *http.Server

	requestLimit *appmw.RateLimiter
	uploadLimit  *appmw.RateLimiter
}

// NewServer creates a Server. limiter is reported by /healthz and may be nil.
func NewServer(cfg *config.Config, ctrl *core.Controller, sessions *core.SessionStore, limiter *core.LoadLimiter) *Server {
	s := &Server{
		cfg:      cfg,
		ctrl:     ctrl,
		sessions: sessions,
		limiter:  limiter,
		router:   chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.requestLimit = appmw.NewRateLimiter(cfg.Rate.RequestsPerMinute)
		s.uploadLimit = appmw.NewRateLimiter(cfg.Rate.UploadLimit)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(appmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(appmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP, s.cfg.Explore.PlotlyURL))

	if s.requestLimit != nil {
		s.router.Use(s.requestLimit.Handler)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/healthz", s.handleHealth)

	s.router.Group(func(r chi.Router) {
		r.Use(s.withSession)

		// Pages
		r.Get("/", s.handleIndex)
		r.With(s.uploadLimited).Post("/upload", s.handleUploadForm)
		r.Post("/select", s.handleSelectForm)
		r.Post("/reset", s.handleResetForm)

		// Static chart images
		r.Get("/charts/histogram.png", s.handleHistogramPNG)
		r.Get("/charts/pie.png", s.handlePiePNG)

		r.Route("/api", func(r chi.Router) {
			r.Get("/session", s.handleAPISession)
			r.With(s.uploadLimited).Post("/upload", s.handleAPIUpload)
			r.Post("/select", s.handleAPISelect)
			r.Post("/reset", s.handleAPIReset)
		})
	})
}

// uploadLimited applies the stricter upload rate limit when enabled.
func (s *Server) uploadLimited(next http.Handler) http.Handler {
	if s.uploadLimit == nil {
		return next
	}
	return s.uploadLimit.Handler(next)
}

// StartBackground runs the rate limiters' cleanup loops until ctx is done.
func (s *Server) StartBackground(ctx context.Context) {
	for _, rl := range []*appmw.RateLimiter{s.requestLimit, s.uploadLimit} {
		if rl != nil {
			go rl.Cleanup(ctx, time.Minute, 10*time.Minute)
		}
	}
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// chartSize is the configured static chart size.
func (s *Server) chartSize() render.Size {
	return render.Size{Width: s.cfg.Explore.ChartWidth, Height: s.cfg.Explore.ChartHeight}
}

// securityHeaders adds security headers to all responses. Scripts may load
// from this origin and the origin of plotlyURL.
func securityHeaders(enableCSP bool, plotlyURL string) func(http.Handler) http.Handler {
	scriptSrc := "'self'"
	if u, err := url.Parse(plotlyURL); err == nil && u.Scheme != "" && u.Host != "" {
		scriptSrc += " " + u.Scheme + "://" + u.Host
	}
	csp := "default-src 'self'; script-src " + scriptSrc +
		"; style-src 'self' 'unsafe-inline'; img-src 'self' data: blob:; font-src 'self'"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				h.Set("Content-Security-Policy", csp)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
