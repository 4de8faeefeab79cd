// internal/model/campaign.go
package model

import "time"

type Campaign struct {
    ID        int       `db:"id" json:"id"`
    NumUsers  int       `db:"num_users" json:"num_users"`
    CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CampaignMember joins a campaign to an employee. Rows are created at
// campaign-creation time only and never mutated afterwards.
type CampaignMember struct {
    CampaignID int       `db:"campaign_id" json:"campaign_id"`
    EmployeeID int       `db:"employee_id" json:"employee_id"`
    AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
}
