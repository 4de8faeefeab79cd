// internal/handler/webhook_handler.go
package handler

import (
    "encoding/json"
    "errors"
    "io"
    "net/http"

    "go.uber.org/zap"

    appErrors "github.com/unclebandit/outreach-backend/internal/errors"
    "github.com/unclebandit/outreach-backend/internal/middleware"
    "github.com/unclebandit/outreach-backend/internal/webhook"
)

// StatusProcessor is what the webhook handler needs from the status service.
type StatusProcessor interface {
    ProcessEvent(ev webhook.Event) (bool, error)
}

// WebhookHandler ingests provider callbacks. Request-level failures
// (signature, parse, store outage) reject the whole delivery; per-event
// failures only skip that event.
type WebhookHandler struct {
    Status StatusProcessor
    Secret string
    Log    *zap.Logger
}

// HandleResendWebhook handles POST /webhooks/resend.
func (h *WebhookHandler) HandleResendWebhook(w http.ResponseWriter, r *http.Request) {
    rawBody, err := io.ReadAll(r.Body)
    if err != nil {
        http.Error(w, "unable to read request body", http.StatusBadRequest)
        return
    }

    signatureHeader := firstHeader(r,
        "Resend-Signature",
        "X-Resend-Signature",
        "Svix-Signature",
    )

    if !webhook.SecretConfigured(h.Secret) {
        h.Log.Warn("Resend webhook secret placeholder in use; skipping signature verification")
    } else if !webhook.Verify(rawBody, signatureHeader, h.Secret) {
        h.Log.Warn("Rejected webhook with invalid signature")
        http.Error(w, "invalid Resend signature", http.StatusBadRequest)
        return
    }

    events, err := webhook.ParseEnvelope(rawBody)
    if err != nil {
        http.Error(w, "invalid webhook payload", http.StatusBadRequest)
        return
    }

    if len(events) == 0 {
        h.Log.Warn("Received webhook with no events or type")
        writeJSON(w, http.StatusAccepted, map[string]any{
            "status":    "ignored",
            "processed": 0,
        })
        return
    }

    processed := 0
    for _, ev := range events {
        updated, err := h.Status.ProcessEvent(ev)
        if err != nil {
            if errors.Is(err, appErrors.ErrStoreUnavailable) {
                http.Error(w, "store unavailable", http.StatusServiceUnavailable)
                return
            }
            h.Log.Error("Failed to process event", zap.String("event", ev.Type), zap.Error(err))
            middleware.WebhookEventsTotal.WithLabelValues("skipped").Inc()
            continue
        }
        if updated {
            processed++
            middleware.WebhookEventsTotal.WithLabelValues("processed").Inc()
        } else {
            middleware.WebhookEventsTotal.WithLabelValues("unmatched").Inc()
        }
    }

    writeJSON(w, http.StatusAccepted, map[string]any{
        "status":    "accepted",
        "processed": processed,
    })
}

func firstHeader(r *http.Request, names ...string) string {
    for _, name := range names {
        if value := r.Header.Get(name); value != "" {
            return value
        }
    }
    return ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    json.NewEncoder(w).Encode(payload)
}
