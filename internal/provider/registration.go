package provider

import (
    "go.uber.org/zap"

    "github.com/unclebandit/outreach-backend/internal/webhook"
)

// EnsureWebhookRegistration registers targetURL with the provider unless a
// webhook for it already exists. Best effort: registration failures are
// logged, never fatal, since the endpoint can be registered by hand.
func EnsureWebhookRegistration(registrar WebhookRegistrar, targetURL string, log *zap.Logger) {
    if targetURL == "" {
        log.Info("RESEND_WEBHOOK_URL not set; skipping automatic webhook registration")
        return
    }

    existing, err := registrar.ListWebhooks()
    if err != nil {
        log.Warn("Unable to list existing webhooks", zap.Error(err))
    } else {
        for _, item := range webhook.FlattenObjects(existing) {
            if url, ok := item["url"].(string); ok && url == targetURL {
                log.Info("Webhook already registered", zap.String("url", targetURL))
                return
            }
        }
    }

    if err := registrar.CreateWebhook(targetURL, WebhookEvents); err != nil {
        log.Error("Failed to register webhook", zap.String("url", targetURL), zap.Error(err))
        return
    }
    log.Info("Registered webhook", zap.String("url", targetURL))
}
