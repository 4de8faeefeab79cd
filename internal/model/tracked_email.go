// internal/model/tracked_email.go
package model

import "time"

// TrackedEmail is the per-recipient-per-campaign record that accumulates
// delivery and engagement state. At most one row exists per
// (campaign, employee) pair; the provider message ID, once assigned, is
// never overwritten by a different value.
type TrackedEmail struct {
    ID              int        `db:"id" json:"id"`
    CampaignID      int        `db:"campaign_id" json:"campaign_id"`
    EmployeeID      int        `db:"employee_id" json:"employee_id"`
    RecipientEmail  string     `db:"recipient_email" json:"recipient_email"`
    Subject         string     `db:"subject" json:"subject"`
    ResendMessageID *string    `db:"resend_message_id" json:"resend_message_id"`
    Status          Status     `db:"status" json:"status"`
    LastEvent       string     `db:"last_event" json:"last_event"`
    LastEventAt     *time.Time `db:"last_event_at" json:"last_event_at"`
    CreatedAt       time.Time  `db:"created_at" json:"created_at"`
    SentAt          *time.Time `db:"sent_at" json:"sent_at"`
    DeliveredAt     *time.Time `db:"delivered_at" json:"delivered_at"`
    OpenedAt        *time.Time `db:"opened_at" json:"opened_at"`
    ClickedAt       *time.Time `db:"clicked_at" json:"clicked_at"`
    BouncedAt       *time.Time `db:"bounced_at" json:"bounced_at"`
    ComplainedAt    *time.Time `db:"complained_at" json:"complained_at"`
}
