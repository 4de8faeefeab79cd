// cmd/server/main.go
package main

import (
    "log"
    "net/http"

    "github.com/go-chi/chi/v5"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "go.uber.org/zap"

    "github.com/unclebandit/outreach-backend/internal/config"
    "github.com/unclebandit/outreach-backend/internal/db"
    "github.com/unclebandit/outreach-backend/internal/handler"
    "github.com/unclebandit/outreach-backend/internal/middleware"
    "github.com/unclebandit/outreach-backend/internal/observability"
    "github.com/unclebandit/outreach-backend/internal/provider"
    "github.com/unclebandit/outreach-backend/internal/queue"
    "github.com/unclebandit/outreach-backend/internal/repository"
    "github.com/unclebandit/outreach-backend/internal/service"
)

func main() {
    cfg := config.Load()

    logger, err := observability.NewLogger(cfg.Logger)
    if err != nil {
        log.Fatalf("failed to build logger: %v", err)
    }
    defer logger.Sync()

    conn, err := db.Connect(cfg.DB, logger)
    if err != nil {
        logger.Fatal("failed to connect to database", zap.Error(err))
    }
    defer conn.Close()

    if err := db.EnsureSchema(conn); err != nil {
        logger.Fatal("failed to ensure schema", zap.Error(err))
    }
    if err := db.SeedEmployees(conn, logger); err != nil {
        logger.Error("failed to seed employees", zap.Error(err))
    }

    employeeRepo := &repository.EmployeeRepository{DB: conn}
    campaignRepo := &repository.CampaignRepository{DB: conn}
    trackedRepo := &repository.TrackedEmailRepository{DB: conn}

    var publisher queue.Publisher
    if amqpPub, err := queue.NewAMQPPublisher(cfg.AMQP.URL); err != nil {
        logger.Warn("⚠️ AMQP unavailable; campaign emails will not be dispatched", zap.Error(err))
    } else {
        publisher = amqpPub
    }

    statusService := &service.StatusService{
        TrackedRepo: trackedRepo,
        Log:         logger,
    }

    var resendClient *provider.Client
    if cfg.Resend.APIKey != "" {
        resendClient = provider.NewClient(cfg.Resend.APIKey, logger)
        statusService.Provider = resendClient
        go provider.EnsureWebhookRegistration(resendClient, cfg.Resend.WebhookURL, logger)
    } else {
        logger.Warn("RESEND_API_KEY not set; outbound provider calls disabled")
    }

    campaignService := &service.CampaignService{
        CampaignRepo: campaignRepo,
        EmployeeRepo: employeeRepo,
        TrackedRepo:  trackedRepo,
        Queue:        publisher,
        Log:          logger,
    }

    campaignHandler := &handler.CampaignHandler{
        Service: campaignService,
        Status:  statusService,
        Log:     logger,
    }
    webhookHandler := &handler.WebhookHandler{
        Status: statusService,
        Secret: cfg.Resend.WebhookSecret,
        Log:    logger,
    }
    testEmailHandler := &handler.TestEmailHandler{
        From:      cfg.Resend.From,
        Recipient: db.EmployeeSeedData[0].Email,
        Log:       logger,
    }
    if resendClient != nil {
        testEmailHandler.Sender = resendClient
    }

    r := chi.NewRouter()
    r.Use(middleware.Metrics)

    r.Get("/", handler.Health)
    r.Post("/campaigns", campaignHandler.CreateCampaign)
    r.Get("/campaigns/{id}/status", campaignHandler.GetCampaignStatus)
    r.Post("/campaigns/{id}/sync", campaignHandler.SyncCampaign)
    r.Post("/webhooks/resend", webhookHandler.HandleResendWebhook)
    r.Post("/test_email", testEmailHandler.SendTestEmail)
    r.Handle("/metrics", promhttp.Handler())

    logger.Info("🚀 Server running", zap.String("port", cfg.App.Port))
    if err := http.ListenAndServe(":"+cfg.App.Port, r); err != nil {
        logger.Fatal("server stopped", zap.Error(err))
    }
}
