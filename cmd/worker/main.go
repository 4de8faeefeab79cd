// cmd/worker/main.go
package main

import (
    "encoding/json"
    "fmt"
    "log"
    "strings"

    "github.com/streadway/amqp"
    "go.uber.org/zap"

    "github.com/unclebandit/outreach-backend/internal/config"
    "github.com/unclebandit/outreach-backend/internal/db"
    "github.com/unclebandit/outreach-backend/internal/model"
    "github.com/unclebandit/outreach-backend/internal/observability"
    "github.com/unclebandit/outreach-backend/internal/provider"
    "github.com/unclebandit/outreach-backend/internal/queue"
    "github.com/unclebandit/outreach-backend/internal/repository"
)

// dispatcher sends one queued campaign email through the provider and
// records the assigned message ID.
type dispatcher struct {
    trackedRepo  repository.TrackedEmailRepositoryInterface
    employeeRepo repository.EmployeeRepositoryInterface
    sender       provider.Sender
    from         string
    log          *zap.Logger
}

func main() {
    cfg := config.Load()

    logger, err := observability.NewLogger(cfg.Logger)
    if err != nil {
        log.Fatalf("failed to build logger: %v", err)
    }
    defer logger.Sync()

    // The worker exists only to talk to the provider; refuse to start
    // without credentials instead of failing on the first job.
    if cfg.Resend.APIKey == "" {
        logger.Fatal("RESEND_API_KEY not set; worker cannot dispatch emails")
    }

    conn, err := db.Connect(cfg.DB, logger)
    if err != nil {
        logger.Fatal("failed to connect to database", zap.Error(err))
    }
    defer conn.Close()

    d := &dispatcher{
        trackedRepo:  &repository.TrackedEmailRepository{DB: conn},
        employeeRepo: &repository.EmployeeRepository{DB: conn},
        sender:       provider.NewClient(cfg.Resend.APIKey, logger),
        from:         cfg.Resend.From,
        log:          logger,
    }

    amqpConn, err := amqp.Dial(cfg.AMQP.URL)
    if err != nil {
        logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
    }
    defer amqpConn.Close()

    ch, err := amqpConn.Channel()
    if err != nil {
        logger.Fatal("failed to open a channel", zap.Error(err))
    }
    defer ch.Close()

    q, err := ch.QueueDeclare(
        queue.TopicCampaignEmails,
        true,  // durable
        false, // delete when unused
        false, // exclusive
        false, // no-wait
        nil,   // arguments
    )
    if err != nil {
        logger.Fatal("failed to declare queue", zap.Error(err))
    }

    msgs, err := ch.Consume(
        q.Name,
        "",
        false, // autoAck = false for reliability
        false,
        false,
        false,
        nil,
    )
    if err != nil {
        logger.Fatal("failed to register consumer", zap.Error(err))
    }

    logger.Info("Worker running, waiting for messages...")

    for delivery := range msgs {
        var job queue.DispatchJob
        if err := json.Unmarshal(delivery.Body, &job); err != nil {
            logger.Warn("Invalid job payload", zap.Error(err))
            delivery.Ack(false)
            continue
        }

        if err := d.dispatch(job.TrackedEmailID); err != nil {
            logger.Warn("Failed to dispatch campaign email",
                zap.Int("campaign_email_id", job.TrackedEmailID),
                zap.Error(err),
            )

            if !delivery.Redelivered {
                delivery.Nack(false, true) // requeue once
                continue
            }

            if err := d.trackedRepo.MarkFailed(job.TrackedEmailID); err != nil {
                logger.Error("Failed to mark campaign email failed", zap.Error(err))
            }
        }

        delivery.Ack(false)
    }
}

func (d *dispatcher) dispatch(trackedEmailID int) error {
    email, err := d.trackedRepo.GetByID(trackedEmailID)
    if err != nil {
        return err
    }
    if email == nil {
        d.log.Warn("Campaign email not found, dropping job", zap.Int("campaign_email_id", trackedEmailID))
        return nil
    }
    if email.ResendMessageID != nil {
        // Already dispatched; duplicate job from a requeue.
        return nil
    }

    employee, err := d.employeeRepo.GetByID(email.EmployeeID)
    if err != nil {
        return err
    }
    if employee == nil {
        return fmt.Errorf("employee %d not found for campaign email %d", email.EmployeeID, email.ID)
    }

    subject, html := composeEmail(employee)

    messageID, err := d.sender.Send(provider.SendRequest{
        From:    d.from,
        To:      []string{email.RecipientEmail},
        Subject: subject,
        HTML:    html,
        Headers: map[string]any{
            "X-Campaign-Email-ID": fmt.Sprintf("%d", email.ID),
        },
    })
    if err != nil {
        return err
    }

    if err := d.trackedRepo.MarkDispatched(email.ID, messageID, subject); err != nil {
        return err
    }

    d.log.Info("✅ Dispatched campaign email",
        zap.Int("campaign_email_id", email.ID),
        zap.String("message_id", messageID),
    )
    return nil
}

const baseTemplate = `<p>Hi {first_name},</p>
<p>We came across your work at {company} and thought you might want to see what we have been building.</p>
<p>Would love to hear what you think.</p>`

func composeEmail(employee *model.Employee) (string, string) {
    firstName := employee.Name
    if idx := strings.Index(firstName, " "); idx > 0 {
        firstName = firstName[:idx]
    }

    subject := fmt.Sprintf("Quick hello from our team, %s", firstName)

    html := baseTemplate
    html = strings.ReplaceAll(html, "{first_name}", firstName)
    html = strings.ReplaceAll(html, "{company}", employee.Company)

    return subject, html
}
