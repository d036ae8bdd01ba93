package model

import "time"

// NotificationType distinguishes the events an employer is told about.
type NotificationType string

const (
    NotificationApplicant NotificationType = "applicant"
    NotificationJobStatus NotificationType = "job-status"
)

// Notification is an append-only event addressed to an employer.  JobID is
// nil for notifications that outlived their job.
type Notification struct {
    ID         uint64           `json:"_id"`
    EmployerID uint64           `json:"employer"`
    Type       NotificationType `json:"type"`
    Message    string           `json:"message"`
    JobID      *uint64          `json:"job,omitempty"`
    Read       bool             `json:"read"`
    CreatedAt  time.Time        `json:"createdAt"`
}

// FeedbackMessage is a free-text message left by a visitor or a user.
type FeedbackMessage struct {
    ID        uint64    `json:"_id"`
    UserID    *uint64   `json:"userId,omitempty"`
    UserName  string    `json:"userName,omitempty"`
    Email     string    `json:"email,omitempty"`
    Message   string    `json:"message"`
    CreatedAt time.Time `json:"createdAt"`
}

// Stats are the platform counters shown on the admin dashboard.
type Stats struct {
    Users        int64 `json:"users"`
    Companies    int64 `json:"companies"`
    Jobs         int64 `json:"jobs"`
    Applications int64 `json:"applications"`
    Feedback     int64 `json:"feedback"`
}
