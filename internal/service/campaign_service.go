// internal/service/campaign_service.go
package service

import (
    "fmt"

    "go.uber.org/zap"

    appErrors "github.com/unclebandit/outreach-backend/internal/errors"
    "github.com/unclebandit/outreach-backend/internal/model"
    "github.com/unclebandit/outreach-backend/internal/queue"
    "github.com/unclebandit/outreach-backend/internal/repository"
)

type CampaignService struct {
    CampaignRepo repository.CampaignRepositoryInterface
    EmployeeRepo repository.EmployeeRepositoryInterface
    TrackedRepo  repository.TrackedEmailRepositoryInterface
    Queue        queue.Publisher
    Log          *zap.Logger
}

// CampaignSnapshot is the campaign + per-member tracked email projection
// returned by both campaign creation and the status read path.
type CampaignSnapshot struct {
    Campaign *model.Campaign      `json:"campaign"`
    Members  []CampaignMemberView `json:"members"`
}

type CampaignMemberView struct {
    Employee model.Employee        `json:"employee"`
    Emails   []*model.TrackedEmail `json:"emails"`
}

// CreateCampaign picks numUsers random employees, creates the campaign with
// its memberships and queued tracked emails in one transaction, then
// enqueues each email for dispatch. Enqueue failures are logged and
// swallowed: the dispatch path is fire-and-forget.
func (s *CampaignService) CreateCampaign(numUsers int) (*CampaignSnapshot, error) {
    if numUsers <= 0 {
        return nil, fmt.Errorf("num_users must be greater than zero")
    }

    employees, err := s.EmployeeRepo.PickRandom(numUsers)
    if err != nil {
        return nil, err
    }
    if len(employees) < numUsers {
        return nil, appErrors.NewInsufficientEmployees(numUsers, len(employees))
    }

    campaign := &model.Campaign{NumUsers: numUsers}
    emails, err := s.CampaignRepo.CreateWithRecipients(campaign, employees)
    if err != nil {
        return nil, err
    }

    if s.Queue != nil {
        for _, email := range emails {
            job := queue.DispatchJob{TrackedEmailID: email.ID}
            if err := s.Queue.Publish(queue.TopicCampaignEmails, job); err != nil {
                s.Log.Warn("Failed to enqueue campaign email",
                    zap.Int("campaign_email_id", email.ID),
                    zap.Error(err),
                )
            }
        }
    }

    return buildSnapshot(campaign, employees, emails), nil
}

// GetCampaignStatus loads the snapshot for one campaign. Pure projection.
func (s *CampaignService) GetCampaignStatus(campaignID int) (*CampaignSnapshot, error) {
    campaign, err := s.CampaignRepo.GetByID(campaignID)
    if err != nil {
        return nil, err
    }

    employees, err := s.EmployeeRepo.ListByCampaign(campaignID)
    if err != nil {
        return nil, err
    }

    emails, err := s.TrackedRepo.ListByCampaign(campaignID)
    if err != nil {
        return nil, err
    }

    return buildSnapshot(campaign, employees, emails), nil
}

func buildSnapshot(campaign *model.Campaign, employees []model.Employee, emails []*model.TrackedEmail) *CampaignSnapshot {
    byEmployee := make(map[int][]*model.TrackedEmail, len(emails))
    for _, email := range emails {
        byEmployee[email.EmployeeID] = append(byEmployee[email.EmployeeID], email)
    }

    members := make([]CampaignMemberView, 0, len(employees))
    for _, employee := range employees {
        memberEmails := byEmployee[employee.ID]
        if memberEmails == nil {
            memberEmails = []*model.TrackedEmail{}
        }
        members = append(members, CampaignMemberView{
            Employee: employee,
            Emails:   memberEmails,
        })
    }

    return &CampaignSnapshot{Campaign: campaign, Members: members}
}
