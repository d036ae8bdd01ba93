// Package queue defines the domain events published to RabbitMQ after a
// request commits, together with their publisher and consumer.
package queue

import (
    "encoding/json"
    "time"
)

// Event types double as the AMQP message type.
const (
    TypeUserRegistered         = "user.registered"
    TypePasswordResetRequested = "password.reset_requested"
    TypeApplicationSubmitted   = "application.submitted"
    TypeFeedbackCreated        = "feedback.created"
)

// Event is a payload that can be published.
type Event interface {
    EventType() string
}

// Envelope wraps an event on the wire.
type Envelope struct {
    ID         string          `json:"id"`
    Type       string          `json:"type"`
    OccurredAt time.Time       `json:"occurred_at"`
    Payload    json.RawMessage `json:"payload"`
}

// UserRegisteredEvent triggers the welcome email.
type UserRegisteredEvent struct {
    UserID   uint64 `json:"user_id"`
    Email    string `json:"email"`
    Username string `json:"username"`
    Role     string `json:"role"`
}

func (UserRegisteredEvent) EventType() string { return TypeUserRegistered }

// PasswordResetRequestedEvent carries the raw reset token.  It is the only
// place the raw token exists besides the email itself.
type PasswordResetRequestedEvent struct {
    UserID    uint64    `json:"user_id"`
    Email     string    `json:"email"`
    Token     string    `json:"token"`
    ExpiresAt time.Time `json:"expires_at"`
}

func (PasswordResetRequestedEvent) EventType() string { return TypePasswordResetRequested }

// ApplicationSubmittedEvent tells the employer about a new applicant.
type ApplicationSubmittedEvent struct {
    ApplicationID uint64 `json:"application_id"`
    JobID         uint64 `json:"job_id"`
    JobTitle      string `json:"job_title"`
    EmployerID    uint64 `json:"employer_id"`
    EmployerEmail string `json:"employer_email"`
    ApplicantID   uint64 `json:"applicant_id"`
    ApplicantName string `json:"applicant_name"`
    AppliedAt     string `json:"applied_at"`
}

func (ApplicationSubmittedEvent) EventType() string { return TypeApplicationSubmitted }

// FeedbackCreatedEvent forwards a feedback message to the admins.
type FeedbackCreatedEvent struct {
    FeedbackID uint64 `json:"feedback_id"`
    UserName   string `json:"user_name"`
    Email      string `json:"email"`
    Message    string `json:"message"`
}

func (FeedbackCreatedEvent) EventType() string { return TypeFeedbackCreated }
