package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"runtime"
	"strings"
	"time"

	"nightdrive/models"
)

// requireAdmin gates the admin surface behind a token compared in constant
// time, from either Authorization: Bearer or X-Admin-Token. With no token
// configured the surface is disabled outright.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AdminToken == "" {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			token = r.Header.Get("X-Admin-Token")
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AdminToken)) != 1 {
			s.logger.Warn("[admin] rejected %s %s from %s", r.Method, r.URL.Path, s.clientIP(r))
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleAdminLeads(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()

	kind := v.Get("type")
	if kind != "newsletter" {
		kind = "contact"
	}
	limit := clampInt(v.Get("limit"), 100, 1, 500)

	leads, err := s.leads.ReadAll(kind)
	if err != nil {
		s.logger.Error("[admin] read %s leads: %v", kind, err)
		writeError(w, http.StatusInternalServerError, "failed to read leads")
		return
	}

	if since := v.Get("since"); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			filtered := leads[:0]
			for _, l := range leads {
				ts, err := time.Parse(time.RFC3339, l.TS)
				if err == nil && !ts.Before(t) {
					filtered = append(filtered, l)
				}
			}
			leads = filtered
		}
	}

	// Newest first, capped at limit.
	if len(leads) > limit {
		leads = leads[len(leads)-limit:]
	}
	for i, j := 0, len(leads)-1; i < j; i, j = i+1, j-1 {
		leads[i], leads[j] = leads[j], leads[i]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"type":  kind,
		"count": len(leads),
		"leads": leads,
	})
}

func (s *Server) handleAdminFeaturedList(w http.ResponseWriter, r *http.Request) {
	placements := s.featured.Load()
	now := time.Now()
	active := 0
	for _, p := range placements {
		if p.Active(now) {
			active++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":      len(placements),
		"active":     active,
		"placements": placements,
	})
}

func (s *Server) handleAdminFeaturedAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ListingID     string `json:"listingId"`
		DealerID      string `json:"dealerId"`
		Priority      int    `json:"priority"`
		ExpiresInDays int    `json:"expiresInDays"`
	}
	body := http.MaxBytesReader(w, r.Body, maxLeadBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.ListingID) == "" {
		writeError(w, http.StatusBadRequest, "listingId required")
		return
	}

	p := models.FeaturedPlacement{
		ListingID: strings.TrimSpace(req.ListingID),
		DealerID:  strings.TrimSpace(req.DealerID),
		Priority:  req.Priority,
	}
	if req.ExpiresInDays > 0 {
		p.Expires = time.Now().Add(time.Duration(req.ExpiresInDays) * 24 * time.Hour).UnixMilli()
	}

	count, err := s.featured.Add(p)
	if err != nil {
		s.logger.Error("[admin] add featured placement: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save placement")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "count": count})
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	contact, _ := s.leads.ReadAll("contact")
	newsletter, _ := s.leads.ReadAll("newsletter")
	now := time.Now()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	writeJSON(w, http.StatusOK, map[string]any{
		"uptime_secs":      int(time.Since(s.started).Seconds()),
		"heap_mb":          mem.HeapAlloc / 1024 / 1024,
		"cache_length":     s.feed.CacheLen(),
		"contact_leads":    leadCounts(contact, now),
		"newsletter_leads": leadCounts(newsletter, now),
		"featured_total":   len(s.featured.Load()),
	})
}

// leadCounts summarizes one capture channel: total, today, last seven days.
func leadCounts(leads []models.Lead, now time.Time) map[string]int {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := now.Add(-7 * 24 * time.Hour)

	counts := map[string]int{"total": len(leads)}
	for _, l := range leads {
		ts, err := time.Parse(time.RFC3339, l.TS)
		if err != nil {
			continue
		}
		if !ts.Before(dayStart) {
			counts["today"]++
		}
		if !ts.Before(weekStart) {
			counts["week"]++
		}
	}
	return counts
}
