// internal/handler/test_email_handler.go
package handler

import (
    "net/http"

    "go.uber.org/zap"

    "github.com/unclebandit/outreach-backend/internal/provider"
)

// TestEmailHandler fires a one-off message through the provider so a
// deployment can be smoke-tested end to end, webhook included.
type TestEmailHandler struct {
    Sender    provider.Sender
    From      string
    Recipient string
    Log       *zap.Logger
}

// SendTestEmail handles POST /test_email. The send happens in the
// background; the request only confirms it was queued.
func (h *TestEmailHandler) SendTestEmail(w http.ResponseWriter, r *http.Request) {
    if h.Sender == nil {
        http.Error(w, "RESEND_API_KEY environment variable not set", http.StatusInternalServerError)
        return
    }

    go func() {
        _, err := h.Sender.Send(provider.SendRequest{
            From:    h.From,
            To:      []string{h.Recipient},
            Subject: "Outreach backend test email",
            HTML:    "<p>This is a test message triggered from /test_email.</p> Also, <a href='https://www.google.com'>here</a> is a link.",
        })
        if err != nil {
            h.Log.Error("Test email send failed", zap.Error(err))
        }
    }()

    writeJSON(w, http.StatusOK, map[string]string{
        "status":    "queued",
        "recipient": h.Recipient,
    })
}
