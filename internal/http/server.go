// Package http serves the planner UI and the JSON mutation API that the
// presentation layer calls into.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cashflow/internal/ledger"
	applog "cashflow/internal/log"
	"cashflow/internal/persist"
	appweb "cashflow/web"
)

// ChangePublisher forwards mutation notifications to interested consumers
// (the AMQP snapshot pipeline). May be nil.
type ChangePublisher interface {
	PublishLedgerChanged(ctx context.Context, op, entityID string) error
}

type Server struct {
	http.Server

	store     *ledger.Store
	adapter   *persist.Adapter
	publisher ChangePublisher
	templates *template.Template
	logger    *applog.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// server. adapter and publisher are optional.
func NewServer(addr string, store *ledger.Store, adapter *persist.Adapter, publisher ChangePublisher, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		store:     store,
		adapter:   adapter,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentHTTP),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Throttle(100))
	r.Use(applog.Middleware(s.logger))
	r.Use(applog.RequestLogger(s.logger))
	r.Use(securityHeaders)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.Handle("/static/*", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, req)
		}))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)

		r.Post("/templates", s.handleAddTemplate)
		r.Put("/templates/{id}", s.handleUpdateTemplate)
		r.Delete("/templates/{id}", s.handleRemoveTemplate)

		r.Post("/transactions", s.handleAddTransaction)
		r.Put("/transactions/{id}", s.handleUpdateTransaction)
		r.Delete("/transactions/{id}", s.handleRemoveTransaction)
		r.Post("/transactions/{id}/move", s.handleMoveTransaction)

		r.Put("/opening-balance", s.handleSetOpening)
		r.Put("/range", s.handleSetRange)
		r.Put("/save-progress", s.handleSaveProgress)
		r.Post("/reset", s.handleReset)

		r.Post("/import", s.handleImport)
		r.Get("/export", s.handleExport)
	})

	s.Server = http.Server{Addr: addr, Handler: r}
	return s
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// publish forwards a mutation notification; publish failures never fail the
// request, the state change already applied locally.
func (s *Server) publish(ctx context.Context, op, entityID string) {
	mutationsTotal.WithLabelValues(op).Inc()
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerChanged(ctx, op, entityID); err != nil {
		s.logger.WarnContext(ctx, "failed to publish change message",
			applog.FieldOperation, op,
			applog.FieldError, err)
	}
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
