// internal/handler/campaign_handler.go
package handler

import (
    "encoding/json"
    "errors"
    "net/http"
    "strconv"

    "github.com/go-chi/chi/v5"
    "go.uber.org/zap"

    appErrors "github.com/unclebandit/outreach-backend/internal/errors"
    "github.com/unclebandit/outreach-backend/internal/service"
)

// CampaignHandler holds the dependencies for campaign-related HTTP handlers
type CampaignHandler struct {
    Service *service.CampaignService
    Status  *service.StatusService
    Log     *zap.Logger
}

// CreateCampaign handles POST /campaigns
func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
    var body struct {
        NumUsers int `json:"num_users"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        http.Error(w, "invalid request body", http.StatusBadRequest)
        return
    }
    if body.NumUsers <= 0 {
        http.Error(w, "num_users must be greater than zero", http.StatusBadRequest)
        return
    }

    snapshot, err := h.Service.CreateCampaign(body.NumUsers)
    if err != nil {
        var insufficient *appErrors.ErrInsufficientEmployees
        if errors.As(err, &insufficient) {
            http.Error(w, "Not enough employees available to create campaign", http.StatusBadRequest)
            return
        }
        h.Log.Error("Failed to create campaign", zap.Error(err))
        http.Error(w, "failed to create campaign", http.StatusInternalServerError)
        return
    }

    writeJSON(w, http.StatusCreated, snapshot)
}

// GetCampaignStatus handles GET /campaigns/{id}/status
func (h *CampaignHandler) GetCampaignStatus(w http.ResponseWriter, r *http.Request) {
    id, err := strconv.Atoi(chi.URLParam(r, "id"))
    if err != nil {
        http.Error(w, "invalid campaign id", http.StatusBadRequest)
        return
    }

    snapshot, err := h.Service.GetCampaignStatus(id)
    if err != nil {
        var notFound *appErrors.ErrCampaignNotFound
        if errors.As(err, &notFound) {
            http.Error(w, "Campaign not found", http.StatusNotFound)
            return
        }
        h.Log.Error("Failed to fetch campaign", zap.Int("campaign_id", id), zap.Error(err))
        http.Error(w, "failed to fetch campaign", http.StatusInternalServerError)
        return
    }

    writeJSON(w, http.StatusOK, snapshot)
}

// SyncCampaign handles POST /campaigns/{id}/sync: poll the provider for the
// current state of each dispatched email and reconcile it.
func (h *CampaignHandler) SyncCampaign(w http.ResponseWriter, r *http.Request) {
    id, err := strconv.Atoi(chi.URLParam(r, "id"))
    if err != nil {
        http.Error(w, "invalid campaign id", http.StatusBadRequest)
        return
    }

    processed, err := h.Status.SyncCampaign(id)
    if err != nil {
        if errors.Is(err, appErrors.ErrStoreUnavailable) {
            http.Error(w, "store unavailable", http.StatusServiceUnavailable)
            return
        }
        h.Log.Error("Failed to sync campaign", zap.Int("campaign_id", id), zap.Error(err))
        http.Error(w, "failed to sync campaign", http.StatusInternalServerError)
        return
    }

    writeJSON(w, http.StatusOK, map[string]any{
        "status":    "accepted",
        "processed": processed,
    })
}

// Health handles GET /
func Health(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
