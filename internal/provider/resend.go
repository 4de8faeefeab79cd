// Package provider wraps the Resend transactional email HTTP API. The
// capability interfaces below are what the rest of the service depends on;
// a deployment without credentials simply gets no client constructed.
package provider

import (
    "bytes"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "time"

    "github.com/google/uuid"
    "go.uber.org/zap"
)

const defaultBaseURL = "https://api.resend.com"

// WebhookEvents are the engagement events the service subscribes to when it
// auto-registers its webhook endpoint.
var WebhookEvents = []string{
    "email.sent",
    "email.delivered",
    "email.opened",
    "email.clicked",
    "email.bounced",
    "email.complained",
}

// SendRequest is the outbound message payload.
type SendRequest struct {
    From    string         `json:"from"`
    To      []string       `json:"to"`
    Subject string         `json:"subject"`
    HTML    string         `json:"html"`
    Headers map[string]any `json:"headers,omitempty"`
}

// Sender is the outbound-dispatch capability.
type Sender interface {
    Send(req SendRequest) (string, error)
}

// EmailReader is the polling capability: fetch the provider's view of a
// previously sent email.
type EmailReader interface {
    GetEmail(messageID string) (map[string]any, error)
}

// WebhookRegistrar manages webhook endpoint registration.
type WebhookRegistrar interface {
    ListWebhooks() (any, error)
    CreateWebhook(url string, events []string) error
}

// Client is the concrete Resend API client.
type Client struct {
    apiKey  string
    baseURL string
    httpc   *http.Client
    log     *zap.Logger
}

func NewClient(apiKey string, log *zap.Logger) *Client {
    return &Client{
        apiKey:  apiKey,
        baseURL: defaultBaseURL,
        httpc:   &http.Client{Timeout: 15 * time.Second},
        log:     log,
    }
}

// Send submits an email and returns the provider-assigned message ID. An
// idempotency key guards against double sends on worker retries.
func (c *Client) Send(req SendRequest) (string, error) {
    body, err := json.Marshal(req)
    if err != nil {
        return "", err
    }

    httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
    if err != nil {
        return "", err
    }
    httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
    httpReq.Header.Set("Content-Type", "application/json")
    httpReq.Header.Set("Idempotency-Key", uuid.NewString())

    var response struct {
        ID string `json:"id"`
    }
    if err := c.do(httpReq, &response); err != nil {
        return "", err
    }
    if response.ID == "" {
        return "", fmt.Errorf("resend: send response carried no message id")
    }
    c.log.Debug("Resend accepted message", zap.String("message_id", response.ID))
    return response.ID, nil
}

// GetEmail fetches the provider's current view of a message.
func (c *Client) GetEmail(messageID string) (map[string]any, error) {
    httpReq, err := http.NewRequest(http.MethodGet, c.baseURL+"/emails/"+messageID, nil)
    if err != nil {
        return nil, err
    }
    httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

    var response map[string]any
    if err := c.do(httpReq, &response); err != nil {
        return nil, err
    }
    return response, nil
}

func (c *Client) ListWebhooks() (any, error) {
    httpReq, err := http.NewRequest(http.MethodGet, c.baseURL+"/webhooks", nil)
    if err != nil {
        return nil, err
    }
    httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

    var response any
    if err := c.do(httpReq, &response); err != nil {
        return nil, err
    }
    return response, nil
}

func (c *Client) CreateWebhook(url string, events []string) error {
    body, err := json.Marshal(map[string]any{
        "url":    url,
        "events": events,
    })
    if err != nil {
        return err
    }

    httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+"/webhooks", bytes.NewReader(body))
    if err != nil {
        return err
    }
    httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
    httpReq.Header.Set("Content-Type", "application/json")

    return c.do(httpReq, nil)
}

func (c *Client) do(req *http.Request, out any) error {
    resp, err := c.httpc.Do(req)
    if err != nil {
        return err
    }
    defer resp.Body.Close()

    payload, err := io.ReadAll(resp.Body)
    if err != nil {
        return err
    }

    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        return fmt.Errorf("resend: %s %s returned %d: %s", req.Method, req.URL.Path, resp.StatusCode, payload)
    }

    if out == nil || len(payload) == 0 {
        return nil
    }
    return json.Unmarshal(payload, out)
}

var (
    _ Sender           = (*Client)(nil)
    _ EmailReader      = (*Client)(nil)
    _ WebhookRegistrar = (*Client)(nil)
)
