// Package server exposes the HTTP surface: public listing endpoints, lead
// capture, and the token-guarded admin API. Routing is built on chi with
// per-surface rate limits keyed by client IP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"nightdrive/config"
	"nightdrive/feed"
	"nightdrive/sources"
	"nightdrive/storage"
	"nightdrive/utils"
)

const (
	maxRows     = 50
	maxLeadBody = 32 * 1024
)

// Server holds the wired dependencies behind the HTTP handlers.
type Server struct {
	cfg      *config.Config
	feed     *feed.Service
	leads    *storage.NDJSONStore
	leadsDB  storage.LeadWriter
	featured *storage.FeaturedStore
	webhook  *webhookSender
	limiter  *rateLimiter
	logger   *utils.Logger
	started  time.Time
}

// New assembles the server. leadsDB may be nil when no DSN is configured.
func New(cfg *config.Config, feedSvc *feed.Service, leads *storage.NDJSONStore, leadsDB storage.LeadWriter, featured *storage.FeaturedStore, logger *utils.Logger) *Server {
	return &Server{
		cfg:      cfg,
		feed:     feedSvc,
		leads:    leads,
		leadsDB:  leadsDB,
		featured: featured,
		webhook:  newWebhookSender(cfg.LeadWebhookURL, cfg.LeadWebhookSecret, logger),
		limiter:  newRateLimiter(),
		logger:   logger,
		started:  time.Now(),
	}
}

// Router builds the chi routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(securityHeaders)
	r.Use(s.cors)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.limiter.middleware(apiRule, s))
			r.Get("/readiness", s.handleReadiness)
			r.Get("/home-feed", s.handleHomeFeed)
			r.Get("/inventory", s.handleInventory)
			r.Get("/listing/{id}", s.handleListing)
			r.Get("/facets", s.handleFacets)
		})

		r.With(s.limiter.middleware(contactRule, s)).Post("/contact", s.handleLead("contact"))
		r.With(s.limiter.middleware(newsletterRule, s)).Post("/newsletter", s.handleLead("newsletter"))

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.limiter.middleware(adminRule, s))
			r.Use(s.requireAdmin)
			r.Get("/leads", s.handleAdminLeads)
			r.Get("/featured", s.handleAdminFeaturedList)
			r.Post("/featured", s.handleAdminFeaturedAdd)
			r.Get("/stats", s.handleAdminStats)
		})
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then drains for up
// to 10 seconds.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[server] listening on :%d (env=%s)", s.cfg.Port, s.cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("[server] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"env":          s.cfg.Env,
		"uptime_secs":  int(time.Since(s.started).Seconds()),
		"cache_length": s.feed.CacheLen(),
	})
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	ready := true

	if err := s.configComplete(); err != nil {
		checks["config"] = err.Error()
		ready = false
	} else {
		checks["config"] = "ok"
	}

	if err := s.dataDirWritable(); err != nil {
		checks["data_dir"] = err.Error()
		ready = false
	} else {
		checks["data_dir"] = "ok"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := s.feed.Probe(ctx); err != nil {
		checks["primary_source"] = err.Error()
		ready = false
	} else {
		checks["primary_source"] = "ok"
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{"ready": ready, "checks": checks})
}

// configComplete re-verifies the production secrets at probe time. Startup
// already fails fast without them, but readiness reports the live state so a
// drifted deployment is visible without log spelunking.
func (s *Server) configComplete() error {
	if !s.cfg.IsProd() {
		return nil
	}
	var missing []string
	if s.cfg.AdminToken == "" {
		missing = append(missing, "ADMIN_TOKEN")
	}
	if s.cfg.MarketCheckAPIKey == "" {
		missing = append(missing, "MARKETCHECK_API_KEY")
	}
	if len(s.cfg.AllowedOrigins) == 0 {
		missing = append(missing, "ALLOWED_ORIGINS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (s *Server) dataDirWritable() error {
	probe := filepath.Join(s.cfg.DataDir, ".readiness-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("data dir not writable: %w", err)
	}
	return os.Remove(probe)
}

func (s *Server) handleHomeFeed(w http.ResponseWriter, r *http.Request) {
	resp, err := s.feed.HomeFeed(r.Context())
	if err != nil {
		s.logger.Error("[server] home-feed: %v", err)
		writeError(w, http.StatusBadGateway, "failed to build home feed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	q := queryFromRequest(r)
	resp, err := s.feed.Inventory(r.Context(), q)
	if err != nil {
		s.logger.Error("[server] inventory: %v", err)
		writeError(w, http.StatusBadGateway, "failed to fetch inventory")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing listing id")
		return
	}
	listing, err := s.feed.Listing(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "listing not found")
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	fields := r.URL.Query().Get("fields")
	resp, err := s.feed.Facets(r.Context(), fields)
	if err != nil {
		s.logger.Error("[server] facets: %v", err)
		writeError(w, http.StatusBadGateway, "failed to fetch facets")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// queryFromRequest maps and clamps search parameters. rows lands in
// [1, 50], start is non-negative.
func queryFromRequest(r *http.Request) sources.Query {
	v := r.URL.Query()

	rows := clampInt(v.Get("rows"), 12, 1, maxRows)
	start := clampInt(v.Get("start"), 0, 0, 10000)

	return sources.Query{
		Rows:         rows,
		Start:        start,
		Make:         v.Get("make"),
		Model:        v.Get("model"),
		Year:         v.Get("year"),
		YearRange:    v.Get("year_range"),
		PriceRange:   v.Get("price_range"),
		BodyType:     v.Get("body_type"),
		CarType:      v.Get("car_type"),
		FuelType:     v.Get("fuel_type"),
		Transmission: v.Get("transmission"),
		MilesRange:   v.Get("miles_range"),
		SortBy:       v.Get("sort_by"),
		SortOrder:    v.Get("sort_order"),
		Zip:          v.Get("zip"),
		Radius:       v.Get("radius"),
	}
}

func clampInt(raw string, def, min, max int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
