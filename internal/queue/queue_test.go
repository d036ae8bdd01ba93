package queue

import (
    "context"
    "encoding/json"
    "sync"
    "testing"
    "time"

    "github.com/google/uuid"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/jobhunter/internal/mail"
    "github.com/iliyamo/jobhunter/internal/reporter"
)

type recordingMailer struct {
    mu   sync.Mutex
    sent []mail.Message
}

func (r *recordingMailer) Send(_ context.Context, m mail.Message) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    r.sent = append(r.sent, m)
    return nil
}

type recordingReporter struct{ got []reporter.Feedback }

func (r *recordingReporter) ReportFeedback(_ context.Context, f reporter.Feedback) error {
    r.got = append(r.got, f)
    return nil
}

func encodeEnvelope(t *testing.T, ev Event, now time.Time) Envelope {
    t.Helper()
    env, body, err := Encode(ev, now)
    require.NoError(t, err)
    var decoded Envelope
    require.NoError(t, json.Unmarshal(body, &decoded))
    assert.Equal(t, env.ID, decoded.ID)
    return decoded
}

func TestEncodeAssignsIDAndType(t *testing.T) {
    now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
    env := encodeEnvelope(t, FeedbackCreatedEvent{FeedbackID: 1, Message: "hi"}, now)
    _, err := uuid.Parse(env.ID)
    assert.NoError(t, err)
    assert.Equal(t, TypeFeedbackCreated, env.Type)
    assert.True(t, env.OccurredAt.Equal(now))
}

func TestDispatcherHandlesEvents(t *testing.T) {
    m := &recordingMailer{}
    rep := &recordingReporter{}
    d := &Dispatcher{Mailer: m, Reporter: rep, FrontendURL: "https://jobs.example.com/"}
    ctx := context.Background()
    now := time.Now().UTC()

    require.NoError(t, d.Handle(ctx, encodeEnvelope(t, UserRegisteredEvent{Email: "a@b.c", Username: "a", Role: "jobSeeker"}, now)))
    require.NoError(t, d.Handle(ctx, encodeEnvelope(t, PasswordResetRequestedEvent{
        Email: "a@b.c", Token: "tok+1", ExpiresAt: now.Add(30 * time.Minute),
    }, now)))
    require.NoError(t, d.Handle(ctx, encodeEnvelope(t, ApplicationSubmittedEvent{
        JobTitle: "Backend Engineer", EmployerEmail: "hr@acme.io", ApplicantName: "U1",
    }, now)))
    require.NoError(t, d.Handle(ctx, encodeEnvelope(t, ApplicationSubmittedEvent{JobTitle: "No mail"}, now)))
    require.NoError(t, d.Handle(ctx, encodeEnvelope(t, FeedbackCreatedEvent{FeedbackID: 5, Message: "nice"}, now)))

    require.Len(t, m.sent, 3)
    assert.Equal(t, "Welcome to JobHunter", m.sent[0].Subject)
    assert.Contains(t, m.sent[1].HTML, "https://jobs.example.com/reset-password?token=tok%2B1")
    assert.Contains(t, m.sent[1].HTML, "30 minutes")
    assert.Equal(t, "hr@acme.io", m.sent[2].To)
    assert.Equal(t, []reporter.Feedback{{ID: 5, Message: "nice"}}, rep.got)
}

func TestDispatcherRejectsUnknownType(t *testing.T) {
    d := &Dispatcher{Mailer: &recordingMailer{}, Reporter: &recordingReporter{}}
    err := d.Handle(context.Background(), Envelope{Type: "booking.confirmed", Payload: json.RawMessage(`{}`)})
    assert.Error(t, err)
    assert.Error(t, handleDelivery(context.Background(), d, []byte("not json")))
}
