package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/jobhunter/internal/model"
)

// ApplicationTx is the set of statements the application lifecycle runs
// inside one transaction.  Lock* methods take row locks that are held until
// the transaction ends.
type ApplicationTx interface {
	// LockJob returns the job and locks its row, or ErrJobNotFound.
	LockJob(ctx context.Context, jobID uint64) (*model.Job, error)
	// LockUser returns the user and takes a shared lock on its row, or
	// ErrUserNotFound.
	LockUser(ctx context.Context, id uint64) (*model.User, error)
	// LockApplication returns the (job, applicant) record and locks it, or
	// ErrApplicationNotFound.
	LockApplication(ctx context.Context, jobID, applicantID uint64) (*model.JobApplication, error)
	// InsertApplication creates a record and fills its id.  A concurrent
	// insert of the same pair yields ErrAlreadyApplied.
	InsertApplication(ctx context.Context, a *model.JobApplication) error
	// UpdateApplication writes status, cover letter and applied_at of a.
	UpdateApplication(ctx context.Context, a *model.JobApplication) error
	InsertNotification(ctx context.Context, n *model.Notification) error
}

// ApplicationRepo stores job applications.  A job's applicants and its
// shortlist are the records with status applied and shortlisted.
type ApplicationRepo struct{ db *sql.DB }

func NewApplicationRepo(db *sql.DB) *ApplicationRepo { return &ApplicationRepo{db: db} }

// InTx runs fn in a transaction and commits when fn returns nil.
func (r *ApplicationRepo) InTx(ctx context.Context, fn func(ApplicationTx) error) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&applicationTx{tx: tx})
	})
}

type applicationTx struct{ tx *sql.Tx }

func (t *applicationTx) LockJob(ctx context.Context, jobID uint64) (*model.Job, error) {
	j, err := scanJob(t.tx.QueryRowContext(ctx,
		"SELECT "+jobColumns+" FROM jobs j WHERE j.id = ? FOR UPDATE", jobID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	return j, err
}

func (t *applicationTx) LockUser(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(t.tx.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LOCK IN SHARE MODE", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (t *applicationTx) LockApplication(ctx context.Context, jobID, applicantID uint64) (*model.JobApplication, error) {
	var (
		a      model.JobApplication
		status string
	)
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, job_id, applicant_id, cover_letter, status, applied_at, updated_at
		 FROM job_applications WHERE job_id = ? AND applicant_id = ? FOR UPDATE`,
		jobID, applicantID).Scan(&a.ID, &a.JobID, &a.ApplicantID, &a.CoverLetter, &status, &a.AppliedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Status = model.ApplicationStatus(status)
	return &a, nil
}

func (t *applicationTx) InsertApplication(ctx context.Context, a *model.JobApplication) error {
	if a.AppliedAt.IsZero() {
		a.AppliedAt = time.Now().UTC()
	}
	res, err := t.tx.ExecContext(ctx,
		"INSERT INTO job_applications (job_id, applicant_id, cover_letter, status, applied_at) VALUES (?,?,?,?,?)",
		a.JobID, a.ApplicantID, a.CoverLetter, string(a.Status), a.AppliedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrAlreadyApplied
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

func (t *applicationTx) UpdateApplication(ctx context.Context, a *model.JobApplication) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE job_applications SET status = ?, cover_letter = ?, applied_at = ? WHERE id = ?",
		string(a.Status), a.CoverLetter, a.AppliedAt, a.ID)
	return err
}

func (t *applicationTx) InsertNotification(ctx context.Context, n *model.Notification) error {
	return insertNotification(ctx, t.tx, n)
}

// ListForEmployer returns the (applicant, job) pairs of every job owned by
// employerID whose record has the given status, ordered by job id and then
// by application time.
func (r *ApplicationRepo) ListForEmployer(ctx context.Context, employerID uint64, status model.ApplicationStatus) ([]model.ApplicantEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+applicantColumns+`, j.id, j.title
		 FROM job_applications a
		 JOIN jobs j  ON j.id = a.job_id
		 JOIN users u ON u.id = a.applicant_id
		 WHERE j.employer_id = ? AND a.status = ?
		 ORDER BY j.id, a.applied_at, a.id`, employerID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ApplicantEntry{}
	for rows.Next() {
		var job model.JobRef
		u, err := scanUser(rows, &job.ID, &job.Title)
		if err != nil {
			return nil, err
		}
		out = append(out, model.ApplicantEntry{ApplicantProfile: u.Public(), JobDetails: job})
	}
	return out, rows.Err()
}

// ListMessages returns the cover letters sent to the employer's jobs,
// newest first.
func (r *ApplicationRepo) ListMessages(ctx context.Context, employerID uint64) ([]model.ApplicantMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+applicantColumns+`, a.id, a.cover_letter, a.status, a.applied_at, j.id, j.title
		 FROM job_applications a
		 JOIN jobs j  ON j.id = a.job_id
		 JOIN users u ON u.id = a.applicant_id
		 WHERE j.employer_id = ?
		 ORDER BY a.applied_at DESC, a.id DESC`, employerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ApplicantMessage{}
	for rows.Next() {
		var (
			m      model.ApplicantMessage
			status string
		)
		u, err := scanUser(rows, &m.ApplicationID, &m.CoverLetter, &status, &m.AppliedAt, &m.Job.ID, &m.Job.Title)
		if err != nil {
			return nil, err
		}
		m.Status = model.ApplicationStatus(status)
		m.Applicant = u.Public()
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListForApplicant returns the applicant's own applications, newest first.
func (r *ApplicationRepo) ListForApplicant(ctx context.Context, applicantID uint64) ([]model.JobApplication, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, job_id, applicant_id, cover_letter, status, applied_at, updated_at
		 FROM job_applications WHERE applicant_id = ?
		 ORDER BY applied_at DESC, id DESC`, applicantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.JobApplication{}
	for rows.Next() {
		var (
			a      model.JobApplication
			status string
		)
		if err := rows.Scan(&a.ID, &a.JobID, &a.ApplicantID, &a.CoverLetter, &status, &a.AppliedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.Status = model.ApplicationStatus(status)
		out = append(out, a)
	}
	return out, rows.Err()
}
