package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"nightdrive/models"
	"nightdrive/utils"
)

func TestWebhookSignsPayload(t *testing.T) {
	const secret = "hush"
	var gotSig string
	var gotBody []byte

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Webhook-Signature")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	ws := newWebhookSender(ts.URL, secret, utils.NewLogger())
	ws.send("contact", models.Lead{Email: "a@example.com"})

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	want := hex.EncodeToString(mac.Sum(nil))
	if gotSig != want {
		t.Errorf("signature = %q, want %q", gotSig, want)
	}
}

func TestWebhookRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	ws := newWebhookSender(ts.URL, "", utils.NewLogger())
	ws.retryDelay = time.Millisecond
	ws.send("contact", models.Lead{Email: "a@example.com"})

	if n := calls.Load(); n != 2 {
		t.Errorf("endpoint called %d times, want 2", n)
	}
}

func TestWebhookDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	ws := newWebhookSender(ts.URL, "", utils.NewLogger())
	ws.send("contact", models.Lead{Email: "a@example.com"})

	if n := calls.Load(); n != 1 {
		t.Errorf("endpoint called %d times, want 1", n)
	}
}

func TestWebhookUnconfiguredIsNoop(t *testing.T) {
	ws := newWebhookSender("", "secret", utils.NewLogger())
	// Must return without attempting any network call.
	ws.send("contact", models.Lead{Email: "a@example.com"})
}
