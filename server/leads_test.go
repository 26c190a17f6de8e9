package server

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nightdrive/config"
)

func postLead(t *testing.T, s *Server, kind, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest("POST", "/api/"+kind, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.handleLead(kind)(w, r)
	return w
}

func TestLeadCaptureHappyPath(t *testing.T) {
	s := newTestServer(t, &config.Config{Env: "test"})

	w := postLead(t, s, "contact", `{"name":"Ada","email":"Ada@Example.COM","message":"Still available?"}`)

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	leads, err := s.leads.ReadAll("contact")
	if err != nil {
		t.Fatal(err)
	}
	if len(leads) != 1 {
		t.Fatalf("persisted %d leads, want 1", len(leads))
	}
	if leads[0].Email != "ada@example.com" {
		t.Errorf("email = %q, want lowercased ada@example.com", leads[0].Email)
	}
}

func TestLeadCaptureHoneypotFakesSuccess(t *testing.T) {
	s := newTestServer(t, &config.Config{Env: "test"})

	w := postLead(t, s, "contact", `{"email":"bot@example.com","message":"hi","website":"http://spam.example"}`)

	if w.Code != 200 {
		t.Errorf("status = %d, want 200 (bots must see success)", w.Code)
	}
	var resp map[string]bool
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || !resp["ok"] {
		t.Errorf("body = %s, want {\"ok\":true}", w.Body.String())
	}
	if leads, _ := s.leads.ReadAll("contact"); len(leads) != 0 {
		t.Errorf("honeypot submission was persisted: %v", leads)
	}
}

func TestLeadCaptureTooFastFakesSuccess(t *testing.T) {
	s := newTestServer(t, &config.Config{Env: "test"})
	body := fmt.Sprintf(`{"email":"fast@example.com","message":"hi","_t0":%d}`, time.Now().UnixMilli())

	w := postLead(t, s, "contact", body)

	if w.Code != 200 {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if leads, _ := s.leads.ReadAll("contact"); len(leads) != 0 {
		t.Errorf("instant submission was persisted: %v", leads)
	}
}

func TestLeadCaptureSlowFillIsAccepted(t *testing.T) {
	s := newTestServer(t, &config.Config{Env: "test"})
	t0 := time.Now().Add(-10 * time.Second).UnixMilli()
	body := fmt.Sprintf(`{"email":"human@example.com","message":"hi","_t0":%d}`, t0)

	postLead(t, s, "contact", body)

	if leads, _ := s.leads.ReadAll("contact"); len(leads) != 1 {
		t.Errorf("persisted %d leads, want 1", len(leads))
	}
}

func TestLeadCaptureRejectsBadEmail(t *testing.T) {
	s := newTestServer(t, &config.Config{Env: "test"})

	tests := []string{
		`{"email":"","message":"hi"}`,
		`{"email":"not-an-email","message":"hi"}`,
		`{"email":"a b@example.com","message":"hi"}`,
	}
	for _, body := range tests {
		if w := postLead(t, s, "contact", body); w.Code != 400 {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestContactRequiresMessage(t *testing.T) {
	s := newTestServer(t, &config.Config{Env: "test"})

	if w := postLead(t, s, "contact", `{"email":"a@example.com"}`); w.Code != 400 {
		t.Errorf("status = %d, want 400 without a message", w.Code)
	}
	// Newsletter signups need only the email.
	if w := postLead(t, s, "newsletter", `{"email":"a@example.com"}`); w.Code != 200 {
		t.Errorf("newsletter status = %d, want 200", w.Code)
	}
}

func TestLeadCaptureRejectsMalformedJSON(t *testing.T) {
	s := newTestServer(t, &config.Config{Env: "test"})

	if w := postLead(t, s, "contact", `{broken`); w.Code != 400 {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
