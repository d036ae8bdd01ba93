package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "math"
    "net/url"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/jobhunter/internal/mail"
    "github.com/iliyamo/jobhunter/internal/reporter"
)

// Dispatcher performs the side effects of each event type.
type Dispatcher struct {
    Mailer      mail.Sender
    Reporter    reporter.Reporter
    FrontendURL string
}

// Handle runs the side effect of one envelope.  Unknown types are an error
// so that the message is rejected rather than silently acknowledged.
func (d *Dispatcher) Handle(ctx context.Context, env Envelope) error {
    base := strings.TrimRight(d.FrontendURL, "/")
    switch env.Type {
    case TypeUserRegistered:
        var ev UserRegisteredEvent
        if err := json.Unmarshal(env.Payload, &ev); err != nil {
            return fmt.Errorf("unmarshal %s: %w", env.Type, err)
        }
        return d.Mailer.Send(ctx, mail.Welcome(ev.Email, ev.Username, ev.Role, base))
    case TypePasswordResetRequested:
        var ev PasswordResetRequestedEvent
        if err := json.Unmarshal(env.Payload, &ev); err != nil {
            return fmt.Errorf("unmarshal %s: %w", env.Type, err)
        }
        link := base + "/reset-password?token=" + url.QueryEscape(ev.Token)
        minutes := int(math.Round(ev.ExpiresAt.Sub(env.OccurredAt).Minutes()))
        return d.Mailer.Send(ctx, mail.ResetPassword(ev.Email, link, minutes))
    case TypeApplicationSubmitted:
        var ev ApplicationSubmittedEvent
        if err := json.Unmarshal(env.Payload, &ev); err != nil {
            return fmt.Errorf("unmarshal %s: %w", env.Type, err)
        }
        if ev.EmployerEmail == "" {
            return nil
        }
        applicant := ev.ApplicantName
        if applicant == "" {
            applicant = "A job seeker"
        }
        return d.Mailer.Send(ctx, mail.NewApplicant(ev.EmployerEmail, ev.JobTitle, applicant, base+"/company/applications"))
    case TypeFeedbackCreated:
        var ev FeedbackCreatedEvent
        if err := json.Unmarshal(env.Payload, &ev); err != nil {
            return fmt.Errorf("unmarshal %s: %w", env.Type, err)
        }
        return d.Reporter.ReportFeedback(ctx, reporter.Feedback{
            ID: ev.FeedbackID, UserName: ev.UserName, Email: ev.Email, Message: ev.Message,
        })
    }
    return fmt.Errorf("unknown event type %q", env.Type)
}

// StartConsumer connects to RabbitMQ, declares the events queue (durable),
// and hands every delivery to d.  It reconnects with exponential backoff
// and returns only when ctx is cancelled.
func StartConsumer(ctx context.Context, amqpURL string, d *Dispatcher) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(amqpURL)
        if err != nil {
            log.Printf("event-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = consumeLoop(ctx, conn, d)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Printf("event-consumer: consume loop ended: %v; reconnecting", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, d *Dispatcher) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(20, 0, false); err != nil {
        log.Printf("event-consumer: set QoS failed: %v", err)
    }
    if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(QueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case m, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := handleDelivery(ctx, d, m.Body); err != nil {
                log.Printf("event-consumer: message %s: %v", m.MessageId, err)
                _ = m.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = m.Ack(false)
        }
    }
}

func handleDelivery(ctx context.Context, d *Dispatcher, body []byte) error {
    var env Envelope
    if err := json.Unmarshal(body, &env); err != nil {
        return fmt.Errorf("unmarshal envelope: %w", err)
    }
    hctx, cancel := context.WithTimeout(ctx, 30*time.Second)
    defer cancel()
    return d.Handle(hctx, env)
}
