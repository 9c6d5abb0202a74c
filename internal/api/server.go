package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/djcafe/cafe/internal/api/handler"
	mw "github.com/djcafe/cafe/internal/api/middleware"
	"github.com/djcafe/cafe/internal/config"
	"github.com/djcafe/cafe/internal/core"
	"github.com/djcafe/cafe/internal/display"
	"github.com/djcafe/cafe/internal/notify"
	"github.com/djcafe/cafe/internal/storage"
)

// Pinger is the database handle checked by /readyz. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Components are the long-lived parts the HTTP layer serves. Scheduler and
// Videos may be nil when disabled.
type Components struct {
	Services  *core.Services
	Relay     *notify.Relay
	Player    *display.Player
	Scheduler *display.Scheduler
	Videos    *storage.VideoStore
}

type Server struct {
	router chi.Router
	logger zerolog.Logger
	db     Pinger
	comp   Components
	cfg    *config.Config
}

func NewServer(logger zerolog.Logger, db Pinger, comp Components, cfg *config.Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		logger: logger,
		db:     db,
		comp:   comp,
		cfg:    cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.CORS(s.cfg.CORSOrigins))
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	svc := s.comp.Services

	s.router.Route("/api/v1", func(r chi.Router) {
		// Long-lived streams are counted, not timed.
		events := handler.NewEvents(s.comp.Relay, s.cfg.SSEKeepAlive)
		disp := handler.NewDisplay(s.comp.Player, s.comp.Scheduler, s.comp.Relay, s.cfg.CORSOrigins)
		r.Group(func(r chi.Router) {
			r.Use(mw.Stream)
			r.Get("/events/prices", events.Prices)
			r.Get("/events/display", events.Display)
			r.Get("/display/ws", disp.WS)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.Metrics)

			// Dashboard
			dashboard := handler.NewDashboard(svc.Dashboard)
			r.Get("/dashboard", dashboard.Summary)

			// Products
			product := handler.NewProduct(svc.Product)
			r.Get("/products", product.List)
			r.Post("/products", product.Create)
			r.Get("/products/{id}", product.Get)
			r.Put("/products/{id}", product.Update)
			r.Delete("/products/{id}", product.Delete)
			r.Get("/categories", product.Categories)

			// Pricing
			pricing := handler.NewPricing(svc.Pricing)
			r.Put("/products/{id}/price", pricing.UpdatePrice)
			r.Put("/products/{id}/price-bounds", pricing.UpdateBounds)
			r.Get("/products/{id}/price-history", pricing.History)
			r.Post("/prices/bulk", pricing.Bulk)
			r.Post("/prices/reset", pricing.Reset)
			r.Get("/price-changes", pricing.Recent)

			// Tables
			table := handler.NewTable(svc.Table)
			r.Get("/tables", table.List)
			r.Post("/tables", table.Create)
			r.Get("/tables/{id}", table.Get)
			r.Put("/tables/{id}", table.Update)
			r.Delete("/tables/{id}", table.Delete)
			r.Post("/tables/{id}/status", table.SetStatus)

			// Campaigns
			campaign := handler.NewCampaign(svc.Campaign, s.comp.Videos, s.comp.Player, s.comp.Scheduler, s.cfg.VideoMaxBytes)
			r.Get("/campaigns", campaign.List)
			r.Post("/campaigns", campaign.Create)
			r.Get("/campaigns/{id}", campaign.Get)
			r.Put("/campaigns/{id}", campaign.Update)
			r.Delete("/campaigns/{id}", campaign.Delete)
			r.Put("/campaigns/{id}/video", campaign.UploadVideo)
			r.Post("/campaigns/{id}/play", campaign.Play)

			// TV display
			r.Get("/display/state", disp.State)
			r.Get("/display/schedule", disp.Schedule)
		})
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.db.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	if s.comp.Relay.Connected() {
		checks["notify"] = "ok"
	} else {
		checks["notify"] = "listener not connected"
		healthy = false
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer wraps the router in an http.Server whose request contexts derive
// from ctx. Cancelling ctx ends open event streams and display sockets, which
// Shutdown alone would wait on. WriteTimeout stays unset for the same streams.
func (s *Server) HTTPServer(ctx context.Context, addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

// Routes lists the registered method and pattern pairs.
func (s *Server) Routes() []string {
	var routes []string
	chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+strings.TrimSuffix(route, "/"))
		return nil
	})
	return routes
}
