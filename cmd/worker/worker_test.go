package main

import (
    "fmt"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    "github.com/unclebandit/outreach-backend/internal/model"
    "github.com/unclebandit/outreach-backend/internal/provider"
    "github.com/unclebandit/outreach-backend/internal/repository"
)

type mockTrackedRepo struct {
    emails     map[int]*model.TrackedEmail
    dispatched []int
    failed     []int
}

func (m *mockTrackedRepo) GetByID(id int) (*model.TrackedEmail, error) {
    return m.emails[id], nil
}

func (m *mockTrackedRepo) ListByCampaign(campaignID int) ([]*model.TrackedEmail, error) {
    return nil, nil
}

func (m *mockTrackedRepo) Reconcile(keys repository.MatchKeys, apply func(*model.TrackedEmail)) (*model.TrackedEmail, error) {
    return nil, nil
}

func (m *mockTrackedRepo) MarkDispatched(id int, messageID, subject string) error {
    m.dispatched = append(m.dispatched, id)
    email := m.emails[id]
    email.ResendMessageID = &messageID
    email.Subject = subject
    email.Status = model.StatusSending
    return nil
}

func (m *mockTrackedRepo) MarkFailed(id int) error {
    m.failed = append(m.failed, id)
    return nil
}

type mockEmployeeRepo struct {
    employees map[int]*model.Employee
}

func (m *mockEmployeeRepo) PickRandom(limit int) ([]model.Employee, error)           { return nil, nil }
func (m *mockEmployeeRepo) ListByCampaign(campaignID int) ([]model.Employee, error)  { return nil, nil }
func (m *mockEmployeeRepo) GetByID(id int) (*model.Employee, error) {
    return m.employees[id], nil
}

type mockSender struct {
    sent []provider.SendRequest
    fail bool
}

func (m *mockSender) Send(req provider.SendRequest) (string, error) {
    if m.fail {
        return "", fmt.Errorf("provider rejected the message")
    }
    m.sent = append(m.sent, req)
    return fmt.Sprintf("msg-%d", len(m.sent)), nil
}

func newTestDispatcher(trackedRepo *mockTrackedRepo, sender *mockSender) *dispatcher {
    return &dispatcher{
        trackedRepo: trackedRepo,
        employeeRepo: &mockEmployeeRepo{employees: map[int]*model.Employee{
            1: {ID: 1, Email: "alice@example.com", Name: "Alice Smith", Company: "Acme"},
        }},
        sender: sender,
        from:   "Outreach <hello@example.com>",
        log:    zap.NewNop(),
    }
}

func TestDispatchSendsAndRecordsMessageID(t *testing.T) {
    trackedRepo := &mockTrackedRepo{emails: map[int]*model.TrackedEmail{
        1: {ID: 1, CampaignID: 1, EmployeeID: 1, RecipientEmail: "alice@example.com", Status: model.StatusQueued},
    }}
    sender := &mockSender{}
    d := newTestDispatcher(trackedRepo, sender)

    require.NoError(t, d.dispatch(1))

    require.Len(t, sender.sent, 1)
    assert.Equal(t, []string{"alice@example.com"}, sender.sent[0].To)
    assert.Contains(t, sender.sent[0].Subject, "Alice")

    require.Len(t, trackedRepo.dispatched, 1)
    email := trackedRepo.emails[1]
    require.NotNil(t, email.ResendMessageID)
    assert.Equal(t, "msg-1", *email.ResendMessageID)
    assert.Equal(t, model.StatusSending, email.Status)
}

func TestDispatchSkipsAlreadyDispatched(t *testing.T) {
    existing := "msg-existing"
    trackedRepo := &mockTrackedRepo{emails: map[int]*model.TrackedEmail{
        1: {ID: 1, EmployeeID: 1, RecipientEmail: "alice@example.com", ResendMessageID: &existing},
    }}
    sender := &mockSender{}
    d := newTestDispatcher(trackedRepo, sender)

    require.NoError(t, d.dispatch(1))
    assert.Empty(t, sender.sent)
    assert.Empty(t, trackedRepo.dispatched)
}

func TestDispatchUnknownEmailDropsJob(t *testing.T) {
    d := newTestDispatcher(&mockTrackedRepo{emails: map[int]*model.TrackedEmail{}}, &mockSender{})
    require.NoError(t, d.dispatch(99))
}

func TestDispatchPropagatesSendFailure(t *testing.T) {
    trackedRepo := &mockTrackedRepo{emails: map[int]*model.TrackedEmail{
        1: {ID: 1, EmployeeID: 1, RecipientEmail: "alice@example.com", Status: model.StatusQueued},
    }}
    d := newTestDispatcher(trackedRepo, &mockSender{fail: true})

    assert.Error(t, d.dispatch(1))
    assert.Empty(t, trackedRepo.dispatched)
}

func TestComposeEmailUsesFirstName(t *testing.T) {
    subject, html := composeEmail(&model.Employee{Name: "Alice Smith", Company: "Acme"})
    assert.Contains(t, subject, "Alice")
    assert.Contains(t, html, "Alice")
    assert.Contains(t, html, "Acme")
}
