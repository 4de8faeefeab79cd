package repository

import (
    "database/sql"
    "strings"

    appErrors "github.com/unclebandit/outreach-backend/internal/errors"
    "github.com/unclebandit/outreach-backend/internal/model"
)

type CampaignRepositoryInterface interface {
    GetByID(id int) (*model.Campaign, error)

    // CreateWithRecipients inserts the campaign, its memberships, and one
    // queued tracked email per employee in a single transaction.
    CreateWithRecipients(c *model.Campaign, employees []model.Employee) ([]*model.TrackedEmail, error)
}

type CampaignRepository struct {
    DB *sql.DB
}

// ====================== Campaign CRUD ======================

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
    query := `SELECT id, num_users, created_at FROM campaigns WHERE id=$1`
    var c model.Campaign
    err := r.DB.QueryRow(query, id).Scan(&c.ID, &c.NumUsers, &c.CreatedAt)
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, appErrors.NewCampaignNotFound(id)
        }
        return nil, err
    }
    return &c, nil
}

func (r *CampaignRepository) CreateWithRecipients(c *model.Campaign, employees []model.Employee) ([]*model.TrackedEmail, error) {
    tx, err := r.DB.Begin()
    if err != nil {
        return nil, err
    }
    defer tx.Rollback()

    err = tx.QueryRow(
        `INSERT INTO campaigns (num_users) VALUES ($1) RETURNING id, created_at`,
        c.NumUsers,
    ).Scan(&c.ID, &c.CreatedAt)
    if err != nil {
        return nil, err
    }

    emails := make([]*model.TrackedEmail, 0, len(employees))
    for _, employee := range employees {
        _, err = tx.Exec(
            `INSERT INTO campaign_members (campaign_id, employee_id) VALUES ($1, $2)`,
            c.ID, employee.ID,
        )
        if err != nil {
            return nil, err
        }

        email := &model.TrackedEmail{
            CampaignID:     c.ID,
            EmployeeID:     employee.ID,
            RecipientEmail: strings.ToLower(employee.Email),
            Status:         model.StatusQueued,
        }
        err = tx.QueryRow(
            `INSERT INTO campaign_emails (campaign_id, employee_id, recipient_email)
             VALUES ($1, $2, $3)
             RETURNING id, created_at`,
            email.CampaignID, email.EmployeeID, email.RecipientEmail,
        ).Scan(&email.ID, &email.CreatedAt)
        if err != nil {
            return nil, err
        }
        emails = append(emails, email)
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    return emails, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
