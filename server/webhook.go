package server

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"nightdrive/models"
	"nightdrive/utils"
)

// webhookSender forwards captured leads to an external endpoint, signing
// each payload so the receiver can verify origin.
type webhookSender struct {
	url        string
	secret     string
	http       *http.Client
	logger     *utils.Logger
	retryDelay time.Duration
}

func newWebhookSender(url, secret string, logger *utils.Logger) *webhookSender {
	return &webhookSender{
		url:        url,
		secret:     secret,
		http:       &http.Client{Timeout: 8 * time.Second},
		logger:     logger,
		retryDelay: 2 * time.Second,
	}
}

func (ws *webhookSender) configured() bool { return ws.url != "" }

// send delivers one lead, retrying once after 2s on a 5xx, 429 or network
// failure. It is meant to run fire-and-forget; errors are logged only.
func (ws *webhookSender) send(kind string, lead models.Lead) {
	if !ws.configured() {
		return
	}
	payload, err := json.Marshal(map[string]any{"type": kind, "lead": lead})
	if err != nil {
		ws.logger.Error("[webhook] marshal lead: %v", err)
		return
	}

	for attempt := 1; attempt <= 2; attempt++ {
		err = ws.post(payload)
		if err == nil {
			return
		}
		ws.logger.Warn("[webhook] delivery attempt %d failed: %v", attempt, err)
		if attempt == 1 {
			time.Sleep(ws.retryDelay)
		}
	}
	ws.logger.Error("[webhook] giving up on %s lead delivery", kind)
}

func (ws *webhookSender) post(payload []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ws.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if ws.secret != "" {
		mac := hmac.New(sha256.New, []byte(ws.secret))
		mac.Write(payload)
		req.Header.Set("X-Webhook-Signature", hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := ws.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		// Client errors will not improve on retry.
		ws.logger.Warn("[webhook] endpoint rejected payload with %d", resp.StatusCode)
	}
	return nil
}
