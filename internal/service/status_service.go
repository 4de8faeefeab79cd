// internal/service/status_service.go
package service

import (
    "fmt"
    "strconv"
    "strings"
    "time"

    "go.uber.org/zap"

    appErrors "github.com/unclebandit/outreach-backend/internal/errors"
    "github.com/unclebandit/outreach-backend/internal/model"
    "github.com/unclebandit/outreach-backend/internal/provider"
    "github.com/unclebandit/outreach-backend/internal/repository"
    "github.com/unclebandit/outreach-backend/internal/webhook"
)

// StatusService owns status reconciliation: matching a provider event to a
// tracked email and applying monotonic status updates. Both the webhook
// path and the polling path funnel through ProcessEvent.
type StatusService struct {
    TrackedRepo repository.TrackedEmailRepositoryInterface
    Provider    provider.EmailReader
    Log         *zap.Logger
}

type statusUpdate struct {
    status    model.Status
    milestone func(*model.TrackedEmail) **time.Time
}

// eventStatusUpdates maps provider event types to the status they imply and
// the milestone timestamp they stamp. Unknown event types update
// bookkeeping fields only.
var eventStatusUpdates = map[string]statusUpdate{
    "email.created":    {model.StatusQueued, nil},
    "email.sending":    {model.StatusSending, nil},
    "email.sent":       {model.StatusSent, func(e *model.TrackedEmail) **time.Time { return &e.SentAt }},
    "email.delivered":  {model.StatusDelivered, func(e *model.TrackedEmail) **time.Time { return &e.DeliveredAt }},
    "email.opened":     {model.StatusOpened, func(e *model.TrackedEmail) **time.Time { return &e.OpenedAt }},
    "email.clicked":    {model.StatusClicked, func(e *model.TrackedEmail) **time.Time { return &e.ClickedAt }},
    "email.bounced":    {model.StatusBounced, func(e *model.TrackedEmail) **time.Time { return &e.BouncedAt }},
    "email.complained": {model.StatusComplained, func(e *model.TrackedEmail) **time.Time { return &e.ComplainedAt }},
    "email.failed":     {model.StatusFailed, nil},
}

// ProcessEvent matches one canonical event to a tracked email and applies
// it. Returns false when no record matched, which is a per-event skip, not
// an error; errors mean the store could not serve the lookup or write.
func (s *StatusService) ProcessEvent(ev webhook.Event) (bool, error) {
    eventType := strings.ToLower(ev.Type)
    data := ev.Data
    if data == nil {
        data = map[string]any{}
    }

    metadata, _ := data["metadata"].(map[string]any)

    keys := repository.MatchKeys{
        MessageID:       webhook.ExtractMessageID(data),
        CampaignEmailID: parseCampaignEmailID(metadata["campaign_email_id"]),
        Addresses:       webhook.ExtractAddresses(data),
    }

    occurredAt := ev.OccurredAt
    if occurredAt == nil {
        occurredAt = webhook.CoerceTime(data["created_at"])
    }

    email, err := s.TrackedRepo.Reconcile(keys, func(rec *model.TrackedEmail) {
        applyEvent(rec, eventType, occurredAt, data)
    })
    if err != nil {
        return false, fmt.Errorf("%w: %v", appErrors.ErrStoreUnavailable, err)
    }
    if email == nil {
        s.Log.Warn("Received event but could not match a campaign email",
            zap.String("event", eventType),
            zap.String("message_id", keys.MessageID),
            zap.Strings("addresses", keys.Addresses),
        )
        return false, nil
    }

    s.Log.Info("Processed provider event",
        zap.String("event", eventType),
        zap.Int("campaign_email_id", email.ID),
        zap.String("status", string(email.Status)),
    )
    return true, nil
}

// applyEvent mutates the locked record per one event. The status only moves
// to an equal or higher rank; milestone timestamps are last-event-wins;
// last_event/last_event_at always update.
func applyEvent(email *model.TrackedEmail, eventType string, occurredAt *time.Time, data map[string]any) {
    if messageID := webhook.ExtractMessageID(data); messageID != "" && email.ResendMessageID == nil {
        email.ResendMessageID = &messageID
    }

    if subject, ok := data["subject"].(string); ok {
        email.Subject = subject
    }

    if update, known := eventStatusUpdates[eventType]; known {
        if update.status.Rank() >= email.Status.Rank() {
            email.Status = update.status
        }
        if update.milestone != nil && occurredAt != nil {
            stamp := *occurredAt
            *update.milestone(email) = &stamp
        }
    }

    if occurredAt != nil {
        stamp := *occurredAt
        email.LastEventAt = &stamp
    }
    email.LastEvent = eventType
}

// SyncCampaign is the polling path kept from earlier revisions: ask the
// provider for its view of every dispatched email in the campaign and run
// the answers through the same reconciliation. Returns how many records
// were updated.
func (s *StatusService) SyncCampaign(campaignID int) (int, error) {
    if s.Provider == nil {
        return 0, fmt.Errorf("provider client not configured")
    }

    emails, err := s.TrackedRepo.ListByCampaign(campaignID)
    if err != nil {
        return 0, fmt.Errorf("%w: %v", appErrors.ErrStoreUnavailable, err)
    }

    processed := 0
    for _, email := range emails {
        if email.ResendMessageID == nil {
            continue
        }

        raw, err := s.Provider.GetEmail(*email.ResendMessageID)
        if err != nil {
            s.Log.Warn("Provider lookup failed during sync",
                zap.String("message_id", *email.ResendMessageID),
                zap.Error(err),
            )
            continue
        }

        for _, obj := range webhook.FlattenObjects(raw) {
            ev, ok := eventFromEmailObject(obj)
            if !ok {
                continue
            }
            updated, err := s.ProcessEvent(ev)
            if err != nil {
                return processed, err
            }
            if updated {
                processed++
            }
        }
    }
    return processed, nil
}

// eventFromEmailObject synthesizes a canonical event from a provider email
// object, using its last_event field. Objects without one are skipped.
func eventFromEmailObject(obj map[string]any) (webhook.Event, bool) {
    lastEvent, _ := obj["last_event"].(string)
    if lastEvent == "" {
        return webhook.Event{}, false
    }

    eventType := strings.ToLower(lastEvent)
    if !strings.HasPrefix(eventType, "email.") {
        eventType = "email." + eventType
    }

    return webhook.Event{
        Type:       eventType,
        OccurredAt: webhook.CoerceTime(obj["created_at"]),
        Data:       obj,
    }, true
}

// parseCampaignEmailID accepts the integer-ish shapes JSON metadata can
// carry; malformed values are ignored, not an error.
func parseCampaignEmailID(raw any) int {
    switch value := raw.(type) {
    case float64:
        return int(value)
    case string:
        if id, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
            return id
        }
    }
    return 0
}
