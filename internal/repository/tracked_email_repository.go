package repository

import (
    "database/sql"

    "github.com/unclebandit/outreach-backend/internal/model"
)

// MatchKeys are the lookup keys extracted from one provider event, tried in
// strict priority order: message ID, then explicit campaign_email_id from
// metadata, then candidate recipient addresses.
type MatchKeys struct {
    MessageID       string
    CampaignEmailID int // 0 means absent
    Addresses       []string
}

type TrackedEmailRepositoryInterface interface {
    GetByID(id int) (*model.TrackedEmail, error)
    ListByCampaign(campaignID int) ([]*model.TrackedEmail, error)

    // Reconcile locates the tracked email matching keys, locks it, applies
    // the mutation, and persists it, all in one transaction. Returns
    // (nil, nil) when nothing matches.
    Reconcile(keys MatchKeys, apply func(*model.TrackedEmail)) (*model.TrackedEmail, error)

    // MarkDispatched backfills the provider message ID and subject after an
    // outbound send and moves queued records to sending.
    MarkDispatched(id int, messageID, subject string) error
    MarkFailed(id int) error
}

type TrackedEmailRepository struct {
    DB *sql.DB
}

const trackedEmailColumns = `
    id, campaign_id, employee_id, recipient_email, subject, resend_message_id,
    status, last_event, last_event_at, created_at,
    sent_at, delivered_at, opened_at, clicked_at, bounced_at, complained_at`

func (r *TrackedEmailRepository) GetByID(id int) (*model.TrackedEmail, error) {
    row := r.DB.QueryRow(`SELECT`+trackedEmailColumns+` FROM campaign_emails WHERE id=$1`, id)
    email, err := scanTrackedEmail(row)
    if err == sql.ErrNoRows {
        return nil, nil
    }
    return email, err
}

func (r *TrackedEmailRepository) ListByCampaign(campaignID int) ([]*model.TrackedEmail, error) {
    rows, err := r.DB.Query(
        `SELECT`+trackedEmailColumns+` FROM campaign_emails WHERE campaign_id=$1 ORDER BY id`,
        campaignID,
    )
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    emails := []*model.TrackedEmail{}
    for rows.Next() {
        email, err := scanTrackedEmail(rows)
        if err != nil {
            return nil, err
        }
        emails = append(emails, email)
    }
    return emails, rows.Err()
}

// ====================== Reconciliation ======================

func (r *TrackedEmailRepository) Reconcile(keys MatchKeys, apply func(*model.TrackedEmail)) (*model.TrackedEmail, error) {
    tx, err := r.DB.Begin()
    if err != nil {
        return nil, err
    }
    defer tx.Rollback()

    email, err := locateForUpdate(tx, keys)
    if err != nil {
        return nil, err
    }
    if email == nil {
        return nil, nil
    }

    apply(email)

    _, err = tx.Exec(
        `UPDATE campaign_emails
         SET subject=$1, resend_message_id=$2, status=$3, last_event=$4, last_event_at=$5,
             sent_at=$6, delivered_at=$7, opened_at=$8, clicked_at=$9, bounced_at=$10, complained_at=$11
         WHERE id=$12`,
        email.Subject, email.ResendMessageID, string(email.Status), email.LastEvent, email.LastEventAt,
        email.SentAt, email.DeliveredAt, email.OpenedAt, email.ClickedAt, email.BouncedAt, email.ComplainedAt,
        email.ID,
    )
    if err != nil {
        return nil, err
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    return email, nil
}

// locateForUpdate runs the priority lookups under FOR UPDATE so concurrent
// deliveries for the same record serialize instead of losing updates.
func locateForUpdate(tx *sql.Tx, keys MatchKeys) (*model.TrackedEmail, error) {
    if keys.MessageID != "" {
        row := tx.QueryRow(
            `SELECT`+trackedEmailColumns+` FROM campaign_emails WHERE resend_message_id=$1 FOR UPDATE`,
            keys.MessageID,
        )
        email, err := scanTrackedEmail(row)
        if err == nil {
            return email, nil
        }
        if err != sql.ErrNoRows {
            return nil, err
        }
    }

    if keys.CampaignEmailID != 0 {
        row := tx.QueryRow(
            `SELECT`+trackedEmailColumns+` FROM campaign_emails WHERE id=$1 FOR UPDATE`,
            keys.CampaignEmailID,
        )
        email, err := scanTrackedEmail(row)
        if err == nil {
            return email, nil
        }
        if err != sql.ErrNoRows {
            return nil, err
        }
    }

    for _, address := range keys.Addresses {
        row := tx.QueryRow(
            `SELECT`+trackedEmailColumns+` FROM campaign_emails
             WHERE recipient_email=$1
             ORDER BY created_at DESC
             LIMIT 1
             FOR UPDATE`,
            address,
        )
        email, err := scanTrackedEmail(row)
        if err == nil {
            return email, nil
        }
        if err != sql.ErrNoRows {
            return nil, err
        }
    }

    return nil, nil
}

// ====================== Dispatch bookkeeping ======================

func (r *TrackedEmailRepository) MarkDispatched(id int, messageID, subject string) error {
    _, err := r.DB.Exec(
        `UPDATE campaign_emails
         SET resend_message_id = COALESCE(resend_message_id, $2),
             subject = $3,
             status = CASE WHEN status = 'queued' THEN 'sending' ELSE status END
         WHERE id = $1`,
        id, messageID, subject,
    )
    return err
}

func (r *TrackedEmailRepository) MarkFailed(id int) error {
    _, err := r.DB.Exec(`UPDATE campaign_emails SET status='failed' WHERE id=$1`, id)
    return err
}

type rowScanner interface {
    Scan(dest ...any) error
}

func scanTrackedEmail(row rowScanner) (*model.TrackedEmail, error) {
    var email model.TrackedEmail
    var status string
    err := row.Scan(
        &email.ID, &email.CampaignID, &email.EmployeeID, &email.RecipientEmail,
        &email.Subject, &email.ResendMessageID,
        &status, &email.LastEvent, &email.LastEventAt, &email.CreatedAt,
        &email.SentAt, &email.DeliveredAt, &email.OpenedAt, &email.ClickedAt,
        &email.BouncedAt, &email.ComplainedAt,
    )
    if err != nil {
        return nil, err
    }
    email.Status = model.Status(status)
    return &email, nil
}

var _ TrackedEmailRepositoryInterface = (*TrackedEmailRepository)(nil)
