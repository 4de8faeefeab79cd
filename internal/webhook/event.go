// internal/webhook/event.go
package webhook

import (
    "encoding/json"
    "strings"
    "time"
)

// Event is the canonical form shared by the webhook and polling paths.
type Event struct {
    Type       string
    OccurredAt *time.Time
    Data       map[string]any
}

type envelopeJSON struct {
    Type      string         `json:"type"`
    CreatedAt any            `json:"created_at"`
    Data      map[string]any `json:"data"`
    Events    []eventJSON    `json:"events"`
}

type eventJSON struct {
    Type      string         `json:"type"`
    CreatedAt any            `json:"created_at"`
    Data      map[string]any `json:"data"`
}

// ParseEnvelope decodes a webhook body shaped either as a single event
// envelope or as a batch envelope with an events list. A batch with no
// events and no top-level type yields an empty slice, not an error.
func ParseEnvelope(raw []byte) ([]Event, error) {
    var envelope envelopeJSON
    if err := json.Unmarshal(raw, &envelope); err != nil {
        return nil, err
    }

    if len(envelope.Events) > 0 {
        events := make([]Event, 0, len(envelope.Events))
        for _, ev := range envelope.Events {
            events = append(events, Event{
                Type:       ev.Type,
                OccurredAt: CoerceTime(ev.CreatedAt),
                Data:       ev.Data,
            })
        }
        return events, nil
    }

    if envelope.Type != "" {
        return []Event{{
            Type:       envelope.Type,
            OccurredAt: CoerceTime(envelope.CreatedAt),
            Data:       envelope.Data,
        }}, nil
    }

    return nil, nil
}

// CoerceTime parses provider timestamps, which arrive as RFC3339 strings
// with or without a zone. Anything unparseable is treated as absent.
func CoerceTime(raw any) *time.Time {
    value, ok := raw.(string)
    if !ok || value == "" {
        return nil
    }

    layouts := []string{
        time.RFC3339Nano,
        "2006-01-02T15:04:05.999999999",
        "2006-01-02T15:04:05",
    }
    for _, layout := range layouts {
        if parsed, err := time.Parse(layout, value); err == nil {
            return &parsed
        }
    }
    return nil
}

// FlattenObjects turns a provider list-response shape ({"data": [...]},
// a bare list, or a single object) into a flat slice of objects. Used by
// the polling path and webhook registration checks.
func FlattenObjects(raw any) []map[string]any {
    var out []map[string]any

    switch value := raw.(type) {
    case map[string]any:
        switch data := value["data"].(type) {
        case []any:
            for _, item := range data {
                if obj, ok := item.(map[string]any); ok {
                    out = append(out, obj)
                }
            }
        case map[string]any:
            out = append(out, data)
        default:
            out = append(out, value)
        }
    case []any:
        for _, item := range value {
            if obj, ok := item.(map[string]any); ok {
                out = append(out, obj)
            }
        }
    }

    return out
}

// ExtractMessageID pulls the provider message ID out of event data. The
// provider is inconsistent about the key and sometimes nests the ID one
// level down.
func ExtractMessageID(data map[string]any) string {
    for _, key := range []string{"email_id", "id", "message_id"} {
        switch value := data[key].(type) {
        case string:
            if value != "" {
                return value
            }
        case map[string]any:
            for _, inner := range []string{"id", "email_id"} {
                if s, ok := value[inner].(string); ok && s != "" {
                    return s
                }
            }
        }
    }
    return ""
}

// ExtractAddresses collects candidate recipient addresses from the
// to/recipient/email/address fields, each of which may be a string, an
// object carrying email/address, or a list of either. Addresses are
// lowercased and deduplicated, preserving first-seen order.
func ExtractAddresses(data map[string]any) []string {
    var candidates []string

    for _, key := range []string{"to", "recipient", "email", "address"} {
        switch value := data[key].(type) {
        case string:
            if value != "" {
                candidates = append(candidates, value)
            }
        case map[string]any:
            if addr := addressFromObject(value); addr != "" {
                candidates = append(candidates, addr)
            }
        case []any:
            for _, item := range value {
                switch entry := item.(type) {
                case string:
                    if entry != "" {
                        candidates = append(candidates, entry)
                    }
                case map[string]any:
                    if addr := addressFromObject(entry); addr != "" {
                        candidates = append(candidates, addr)
                    }
                }
            }
        }
    }

    seen := make(map[string]bool, len(candidates))
    normalized := make([]string, 0, len(candidates))
    for _, address := range candidates {
        lowered := strings.ToLower(address)
        if !seen[lowered] {
            seen[lowered] = true
            normalized = append(normalized, lowered)
        }
    }
    return normalized
}

func addressFromObject(obj map[string]any) string {
    if s, ok := obj["email"].(string); ok && s != "" {
        return s
    }
    if s, ok := obj["address"].(string); ok && s != "" {
        return s
    }
    return ""
}
