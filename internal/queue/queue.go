package queue

import (
    "encoding/json"
    "fmt"
    "sync"

    "github.com/streadway/amqp"
)

// TopicCampaignEmails is the dispatch queue: one job per tracked email.
const TopicCampaignEmails = "campaign_emails"

// DispatchJob is the payload published for each outbound email.
type DispatchJob struct {
    TrackedEmailID int `json:"tracked_email_id"`
}

// Publisher is the fire-and-forget send side used by the HTTP server.
type Publisher interface {
    Publish(topic string, payload any) error
}

// ====================== AMQP ======================

// AMQPPublisher publishes JSON jobs onto durable queues. The consumer side
// lives in cmd/worker.
type AMQPPublisher struct {
    ch *amqp.Channel
}

// NewAMQPPublisher dials the broker and declares nothing up front; queues
// are declared per topic on first publish.
func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
    conn, err := amqp.Dial(url)
    if err != nil {
        return nil, fmt.Errorf("dial amqp: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        conn.Close()
        return nil, fmt.Errorf("open amqp channel: %w", err)
    }
    return &AMQPPublisher{ch: ch}, nil
}

func (p *AMQPPublisher) Publish(topic string, payload any) error {
    q, err := p.ch.QueueDeclare(
        topic,
        true,  // durable
        false, // delete when unused
        false, // exclusive
        false, // no-wait
        nil,   // arguments
    )
    if err != nil {
        return err
    }

    body, err := json.Marshal(payload)
    if err != nil {
        return err
    }

    return p.ch.Publish(
        "",
        q.Name,
        false,
        false,
        amqp.Publishing{
            ContentType: "application/json",
            Body:        body,
        },
    )
}

// ====================== In-memory ======================

// InMemoryQueue keeps the handler-fanout behavior for local runs and tests.
type InMemoryQueue struct {
    mu       sync.Mutex
    handlers map[string][]func(payload any) error
}

func NewInMemoryQueue() *InMemoryQueue {
    return &InMemoryQueue{
        handlers: make(map[string][]func(payload any) error),
    }
}

func (q *InMemoryQueue) Publish(topic string, payload any) error {
    q.mu.Lock()
    handlers := q.handlers[topic]
    q.mu.Unlock()

    if len(handlers) == 0 {
        return fmt.Errorf("no subscribers for topic %s", topic)
    }

    for _, handler := range handlers {
        go handler(payload)
    }
    return nil
}

func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) {
    q.mu.Lock()
    defer q.mu.Unlock()
    q.handlers[topic] = append(q.handlers[topic], handler)
}

var (
    _ Publisher = (*AMQPPublisher)(nil)
    _ Publisher = (*InMemoryQueue)(nil)
)
