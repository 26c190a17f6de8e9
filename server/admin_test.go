package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nightdrive/config"
	"nightdrive/models"
)

func adminRequest(s *Server, method, path, token, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, r)
	return w
}

func TestAdminRequiresToken(t *testing.T) {
	s := newTestServer(t, &config.Config{Env: "test", AdminToken: "s3cret"})

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", 401},
		{"wrong token", "nope", 401},
		{"right token", "s3cret", 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := adminRequest(s, "GET", "/api/admin/stats", tt.token, "")

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestAdminDisabledWithoutConfiguredToken(t *testing.T) {
	s := newTestServer(t, &config.Config{Env: "test"})

	w := adminRequest(s, "GET", "/api/admin/stats", "anything", "")

	if w.Code != 404 {
		t.Errorf("status = %d, want 404 when no admin token is configured", w.Code)
	}
}

func TestAdminLeadsListsNewestFirst(t *testing.T) {
	s := newTestServer(t, &config.Config{Env: "test", AdminToken: "s3cret"})
	for _, email := range []string{"first@example.com", "second@example.com"} {
		if err := s.leads.Append("contact", models.Lead{Email: email}); err != nil {
			t.Fatal(err)
		}
	}

	w := adminRequest(s, "GET", "/api/admin/leads", "s3cret", "")

	if w.Code != 200 {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Count int           `json:"count"`
		Leads []models.Lead `json:"leads"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2", resp.Count)
	}
	if resp.Leads[0].Email != "second@example.com" {
		t.Errorf("first entry = %q, want the most recent lead", resp.Leads[0].Email)
	}
}

func TestAdminLeadsLimitClamped(t *testing.T) {
	s := newTestServer(t, &config.Config{Env: "test", AdminToken: "s3cret"})
	for i := 0; i < 5; i++ {
		if err := s.leads.Append("contact", models.Lead{Email: "x@example.com"}); err != nil {
			t.Fatal(err)
		}
	}

	w := adminRequest(s, "GET", "/api/admin/leads?limit=2", "s3cret", "")

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
}

func TestAdminFeaturedRoundTrip(t *testing.T) {
	s := newTestServer(t, &config.Config{Env: "test", AdminToken: "s3cret"})

	w := adminRequest(s, "POST", "/api/admin/featured", "s3cret", `{"listingId":"abc123","dealerId":"d1"}`)
	if w.Code != 200 {
		t.Fatalf("add status = %d, body %s", w.Code, w.Body.String())
	}

	w = adminRequest(s, "GET", "/api/admin/featured", "s3cret", "")
	var resp struct {
		Count  int `json:"count"`
		Active int `json:"active"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || resp.Active != 1 {
		t.Errorf("count/active = %d/%d, want 1/1", resp.Count, resp.Active)
	}
}

func TestAdminFeaturedRejectsMissingListingID(t *testing.T) {
	s := newTestServer(t, &config.Config{Env: "test", AdminToken: "s3cret"})

	w := adminRequest(s, "POST", "/api/admin/featured", "s3cret", `{"dealerId":"d1"}`)

	if w.Code != 400 {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
