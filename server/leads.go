package server

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"nightdrive/models"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// leadSubmission is the raw form body. Website is a honeypot field hidden
// from humans; T0 is the client-side form render timestamp in epoch millis.
type leadSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Vehicle string `json:"vehicle"`
	Source  string `json:"source"`
	Website string `json:"website"`
	T0      int64  `json:"_t0"`
}

const minFormFillTime = 3 * time.Second

// handleLead captures a contact or newsletter submission. Bot signals (a
// filled honeypot, a sub-3-second form fill) get a fake success so scripts
// learn nothing from the response.
func (s *Server) handleLead(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub leadSubmission
		body := http.MaxBytesReader(w, r.Body, maxLeadBody)
		if err := json.NewDecoder(body).Decode(&sub); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		if sub.Website != "" {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
			return
		}
		if sub.T0 > 0 {
			elapsed := time.Since(time.UnixMilli(sub.T0))
			if elapsed >= 0 && elapsed < minFormFillTime {
				writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
				return
			}
		}

		sub.Email = strings.TrimSpace(strings.ToLower(sub.Email))
		if !emailRe.MatchString(sub.Email) {
			writeError(w, http.StatusBadRequest, "valid email required")
			return
		}
		if kind == "contact" && strings.TrimSpace(sub.Message) == "" {
			writeError(w, http.StatusBadRequest, "message required")
			return
		}

		lead := models.Lead{
			Name:    strings.TrimSpace(sub.Name),
			Email:   sub.Email,
			Message: strings.TrimSpace(sub.Message),
			Phone:   strings.TrimSpace(sub.Phone),
			Subject: strings.TrimSpace(sub.Subject),
			Vehicle: strings.TrimSpace(sub.Vehicle),
			Source:  strings.TrimSpace(sub.Source),
			IP:      s.clientIP(r),
		}

		if err := s.leads.Append(kind, lead); err != nil {
			s.logger.Error("[leads] persist %s lead: %v", kind, err)
			writeError(w, http.StatusInternalServerError, "failed to save submission")
			return
		}

		// Mirrors are best-effort; the NDJSON file is the system of record.
		if s.leadsDB != nil {
			if err := s.leadsDB.Append(kind, lead); err != nil {
				s.logger.Warn("[leads] postgres mirror failed: %v", err)
			}
		}
		go s.webhook.send(kind, lead)

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
