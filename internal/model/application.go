package model

import (
    "errors"
    "time"
)

// ApplicationStatus is the lifecycle state of a (job, applicant) pair.
// A pair with no job_applications row is in the implicit "none" state.
type ApplicationStatus string

const (
    // StatusApplied is the pending queue (a job's "applicants").
    StatusApplied ApplicationStatus = "applied"
    // StatusShortlisted is a job's "shortlistedCandidates".
    StatusShortlisted ApplicationStatus = "shortlisted"
    // StatusRemoved marks an application the employer dropped from the
    // pending queue.  The row is kept as an audit trail and the applicant
    // may apply again.
    StatusRemoved ApplicationStatus = "removed"
    // StatusWithdrawn is a pair taken off the shortlist; it behaves like
    // "none" and the applicant may apply again.
    StatusWithdrawn ApplicationStatus = "withdrawn"
)

// ErrTransition is returned when an operation is not allowed from the
// current status.
var ErrTransition = errors.New("invalid application transition")

// ApplyFrom returns the status after an apply on a pair currently in
// status cur.  found is false when no record exists.  Only a pending or
// shortlisted pair blocks a new application.
func ApplyFrom(cur ApplicationStatus, found bool) (ApplicationStatus, error) {
    if !found || cur == StatusWithdrawn || cur == StatusRemoved {
        return StatusApplied, nil
    }
    return cur, ErrTransition
}

// ShortlistFrom converges every state, none included, to shortlisted.
func ShortlistFrom(ApplicationStatus) ApplicationStatus {
    return StatusShortlisted
}

// RemoveFromApplicationsFrom drops a pending application; any other
// status is left as is.
func RemoveFromApplicationsFrom(cur ApplicationStatus) ApplicationStatus {
    if cur == StatusApplied {
        return StatusRemoved
    }
    return cur
}

// RemoveFromShortlistFrom takes a shortlisted pair back to none without
// re-entering the pending queue; any other status is left as is.
func RemoveFromShortlistFrom(cur ApplicationStatus) ApplicationStatus {
    if cur == StatusShortlisted {
        return StatusWithdrawn
    }
    return cur
}

// JobApplication represents a row of the `job_applications` table, the
// single source of truth for who applied to which job.
type JobApplication struct {
    ID          uint64            `json:"_id"`
    JobID       uint64            `json:"job"`
    ApplicantID uint64            `json:"applicant"`
    CoverLetter string            `json:"coverLetter"`
    Status      ApplicationStatus `json:"status"`
    AppliedAt   time.Time         `json:"appliedAt"`
    UpdatedAt   time.Time         `json:"updatedAt"`
}

// ApplicantEntry pairs an applicant's public profile with the job applied
// to.  It is the element type of the employer's applications and
// shortlist views.
type ApplicantEntry struct {
    ApplicantProfile PublicProfile `json:"applicantProfile"`
    JobDetails       JobRef        `json:"jobDetails"`
}

// ApplicantMessage is a cover letter as seen by the employer.
type ApplicantMessage struct {
    ApplicationID uint64            `json:"_id"`
    Job           JobRef            `json:"job"`
    Applicant     PublicProfile     `json:"applicant"`
    CoverLetter   string            `json:"coverLetter"`
    Status        ApplicationStatus `json:"status"`
    AppliedAt     time.Time         `json:"appliedAt"`
}
