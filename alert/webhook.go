package alert

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultTimeout = 5 * time.Second

// Webhook POSTs alerts as JSON to a configured URL. Publish returns
// immediately; the actual POST runs on its own goroutine with a short
// client timeout so a slow endpoint cannot stall trading.
type Webhook struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

func NewWebhook(url string, log zerolog.Logger) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: defaultTimeout},
		log:    log.With().Str("component", "alert").Logger(),
	}
}

func (w *Webhook) Publish(a Alert) {
	go w.post(a)
}

func (w *Webhook) post(a Alert) {
	body, err := json.Marshal(a)
	if err != nil {
		w.log.Error().Err(err).Msg("marshal alert")
		return
	}

	resp, err := w.client.Post(w.url, "application/json", bytes.NewReader(body))
	if err != nil {
		w.log.Warn().Err(err).Str("type", a.Type).Msg("webhook delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		w.log.Warn().Int("status", resp.StatusCode).Str("type", a.Type).Msg("webhook rejected alert")
	}
}
