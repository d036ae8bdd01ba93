package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "sync"
    "time"

    "github.com/google/uuid"
    amqp "github.com/rabbitmq/amqp091-go"
)

// QueueName is the durable queue every event is published to.  Consumers
// dispatch on the message type.
const QueueName = "jobhunter.events"

// Encode wraps ev in an Envelope with a fresh message id.
func Encode(ev Event, now time.Time) (Envelope, []byte, error) {
    payload, err := json.Marshal(ev)
    if err != nil {
        return Envelope{}, nil, fmt.Errorf("marshal %s: %w", ev.EventType(), err)
    }
    env := Envelope{
        ID:         uuid.NewString(),
        Type:       ev.EventType(),
        OccurredAt: now.UTC(),
        Payload:    payload,
    }
    body, err := json.Marshal(env)
    if err != nil {
        return Envelope{}, nil, err
    }
    return env, body, nil
}

// Publisher publishes events over a lazily opened, shared connection.  A
// broken connection is dropped and redialled on the next publish.
type Publisher struct {
    url  string
    mu   sync.Mutex
    conn *amqp.Connection
    ch   *amqp.Channel
}

func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

func (p *Publisher) channel() (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
        return p.ch, nil
    }
    p.closeLocked()
    conn, err := amqp.Dial(p.url)
    if err != nil {
        return nil, fmt.Errorf("dial: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, fmt.Errorf("channel open: %w", err)
    }
    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, fmt.Errorf("queue declare: %w", err)
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

// Publish sends ev as a persistent message.  Errors are logged and returned
// so callers can ignore them without interrupting the request.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
    env, body, err := Encode(ev, time.Now())
    if err != nil {
        log.Printf("rabbitmq: %v", err)
        return err
    }
    p.mu.Lock()
    defer p.mu.Unlock()
    ch, err := p.channel()
    if err != nil {
        log.Printf("rabbitmq: %v", err)
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        MessageId:    env.ID,
        Type:         env.Type,
        Timestamp:    env.OccurredAt,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", QueueName, false, false, pub); err != nil {
        log.Printf("rabbitmq: publish %s failed: %v", env.Type, err)
        p.closeLocked()
        return err
    }
    return nil
}

// Close releases the connection.
func (p *Publisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.closeLocked()
    return nil
}

func (p *Publisher) closeLocked() {
    if p.ch != nil {
        _ = p.ch.Close()
        p.ch = nil
    }
    if p.conn != nil {
        _ = p.conn.Close()
        p.conn = nil
    }
}
