package handler

import (
    "bytes"
    "crypto/hmac"
    "crypto/sha256"
    "encoding/hex"
    "encoding/json"
    "fmt"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    appErrors "github.com/unclebandit/outreach-backend/internal/errors"
    "github.com/unclebandit/outreach-backend/internal/webhook"
)

const testSecret = "whsec_handler_test"

// fakeStatusProcessor records events and decides per message ID whether the
// event matched a tracked email.
type fakeStatusProcessor struct {
    matched map[string]bool
    failing bool
    seen    []webhook.Event
}

func (f *fakeStatusProcessor) ProcessEvent(ev webhook.Event) (bool, error) {
    if f.failing {
        return false, fmt.Errorf("%w: connection refused", appErrors.ErrStoreUnavailable)
    }
    f.seen = append(f.seen, ev)
    messageID := webhook.ExtractMessageID(ev.Data)
    return f.matched[messageID], nil
}

func signBody(secret string, body []byte) string {
    timestamp := "1700000000"
    mac := hmac.New(sha256.New, []byte(secret))
    mac.Write(append([]byte(timestamp+"."), body...))
    return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(t *testing.T, h *WebhookHandler, body []byte, signature string) *httptest.ResponseRecorder {
    t.Helper()
    req := httptest.NewRequest(http.MethodPost, "/webhooks/resend", bytes.NewReader(body))
    if signature != "" {
        req.Header.Set("Resend-Signature", signature)
    }
    recorder := httptest.NewRecorder()
    h.HandleResendWebhook(recorder, req)
    return recorder
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
    t.Helper()
    var payload map[string]any
    require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
    return payload
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
    processor := &fakeStatusProcessor{}
    h := &WebhookHandler{Status: processor, Secret: testSecret, Log: zap.NewNop()}

    body := []byte(`{"type":"email.sent","data":{"email_id":"msg-1"}}`)
    recorder := postWebhook(t, h, body, "")

    assert.Equal(t, http.StatusBadRequest, recorder.Code)
    assert.Empty(t, processor.seen, "no event may be processed on a rejected request")
}

func TestWebhookRejectsBadSignature(t *testing.T) {
    processor := &fakeStatusProcessor{}
    h := &WebhookHandler{Status: processor, Secret: testSecret, Log: zap.NewNop()}

    body := []byte(`{"type":"email.sent","data":{"email_id":"msg-1"}}`)
    recorder := postWebhook(t, h, body, signBody("wrong-secret", body))

    assert.Equal(t, http.StatusBadRequest, recorder.Code)
    assert.Empty(t, processor.seen)
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
    processor := &fakeStatusProcessor{}
    h := &WebhookHandler{Status: processor, Secret: testSecret, Log: zap.NewNop()}

    body := []byte(`{"type": `)
    recorder := postWebhook(t, h, body, signBody(testSecret, body))

    assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestWebhookAcceptsSingleEvent(t *testing.T) {
    processor := &fakeStatusProcessor{matched: map[string]bool{"msg-1": true}}
    h := &WebhookHandler{Status: processor, Secret: testSecret, Log: zap.NewNop()}

    body := []byte(`{"type":"email.delivered","created_at":"2025-11-04T10:00:00Z","data":{"email_id":"msg-1"}}`)
    recorder := postWebhook(t, h, body, signBody(testSecret, body))

    assert.Equal(t, http.StatusAccepted, recorder.Code)
    payload := decodeResponse(t, recorder)
    assert.Equal(t, "accepted", payload["status"])
    assert.Equal(t, float64(1), payload["processed"])
}

func TestWebhookBatchCountsOnlyMatchedEvents(t *testing.T) {
    processor := &fakeStatusProcessor{matched: map[string]bool{"msg-known": true}}
    h := &WebhookHandler{Status: processor, Secret: testSecret, Log: zap.NewNop()}

    body := []byte(`{"events":[
        {"type":"email.sent","data":{"email_id":"msg-unknown"}},
        {"type":"email.delivered","data":{"email_id":"msg-known"}}
    ]}`)
    recorder := postWebhook(t, h, body, signBody(testSecret, body))

    assert.Equal(t, http.StatusAccepted, recorder.Code)
    payload := decodeResponse(t, recorder)
    assert.Equal(t, float64(1), payload["processed"])
    assert.Len(t, processor.seen, 2, "unmatched events are still offered to the reconciler")
}

func TestWebhookEmptyEnvelopeIsIgnored(t *testing.T) {
    processor := &fakeStatusProcessor{}
    h := &WebhookHandler{Status: processor, Secret: testSecret, Log: zap.NewNop()}

    body := []byte(`{"events":[]}`)
    recorder := postWebhook(t, h, body, signBody(testSecret, body))

    assert.Equal(t, http.StatusAccepted, recorder.Code)
    payload := decodeResponse(t, recorder)
    assert.Equal(t, "ignored", payload["status"])
    assert.Equal(t, float64(0), payload["processed"])
}

func TestWebhookStoreOutageFailsWholeRequest(t *testing.T) {
    processor := &fakeStatusProcessor{failing: true}
    h := &WebhookHandler{Status: processor, Secret: testSecret, Log: zap.NewNop()}

    body := []byte(`{"type":"email.sent","data":{"email_id":"msg-1"}}`)
    recorder := postWebhook(t, h, body, signBody(testSecret, body))

    assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}

func TestWebhookPlaceholderSecretSkipsVerification(t *testing.T) {
    processor := &fakeStatusProcessor{matched: map[string]bool{"msg-1": true}}
    h := &WebhookHandler{Status: processor, Secret: "", Log: zap.NewNop()}

    // No signature at all, but no secret is configured either.
    body := []byte(`{"type":"email.sent","data":{"email_id":"msg-1"}}`)
    recorder := postWebhook(t, h, body, "")

    assert.Equal(t, http.StatusAccepted, recorder.Code)
    payload := decodeResponse(t, recorder)
    assert.Equal(t, float64(1), payload["processed"])
}

func TestWebhookAlternateSignatureHeader(t *testing.T) {
    processor := &fakeStatusProcessor{matched: map[string]bool{"msg-1": true}}
    h := &WebhookHandler{Status: processor, Secret: testSecret, Log: zap.NewNop()}

    body := []byte(`{"type":"email.sent","data":{"email_id":"msg-1"}}`)
    req := httptest.NewRequest(http.MethodPost, "/webhooks/resend", bytes.NewReader(body))
    req.Header.Set("X-Resend-Signature", signBody(testSecret, body))
    recorder := httptest.NewRecorder()
    h.HandleResendWebhook(recorder, req)

    assert.Equal(t, http.StatusAccepted, recorder.Code)
}
