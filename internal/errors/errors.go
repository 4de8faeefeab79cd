package appErrors

import (
    "errors"
    "fmt"
)

// ErrStoreUnavailable signals that the database could not serve a request.
// Handlers map it to 503.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
    CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
    return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
    return &ErrCampaignNotFound{CampaignID: id}
}

// ErrInsufficientEmployees is returned when a campaign requests more
// recipients than the employee table holds.
type ErrInsufficientEmployees struct {
    Requested int
    Available int
}

func (e *ErrInsufficientEmployees) Error() string {
    return fmt.Sprintf("not enough employees available: requested %d, have %d", e.Requested, e.Available)
}

func NewInsufficientEmployees(requested, available int) error {
    return &ErrInsufficientEmployees{Requested: requested, Available: available}
}
