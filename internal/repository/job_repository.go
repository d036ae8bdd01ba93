// This file defines the job repository.  Jobs are owned by employers; the
// applicant and shortlist collections of a job are views over
// job_applications and are never stored on the job row itself.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/microcosm-cc/bluemonday"

	"github.com/iliyamo/jobhunter/internal/model"
)

// descriptionPolicy strips scripts, handlers and unknown tags from job
// descriptions while keeping the formatting a rich text editor produces.
var descriptionPolicy = bluemonday.UGCPolicy()

// SanitizeDescription returns the job description safe to render as HTML.
func SanitizeDescription(s string) string { return descriptionPolicy.Sanitize(s) }

const jobColumns = `j.id, j.employer_id, j.title, j.description, j.location, j.type, j.work_mode,
	j.experience, j.salary_from, j.salary_to, j.active, j.date_posted, j.created_at, j.updated_at`

// companyColumns extracts the employer summary from the profile document.
const companyColumns = `COALESCE(JSON_UNQUOTE(JSON_EXTRACT(u.profile, '$.companyName')), ''),
	COALESCE(JSON_UNQUOTE(JSON_EXTRACT(u.profile, '$.companyLogo')), '')`

type JobRepo struct {
	db *sql.DB
}

func NewJobRepo(db *sql.DB) *JobRepo { return &JobRepo{db: db} }

func jobDest(j *model.Job) []any {
	return []any{&j.ID, &j.EmployerID, &j.Title, &j.Description, &j.Location, &j.Type, &j.WorkMode,
		&j.Experience, &j.SalaryFrom, &j.SalaryTo, &j.Active, &j.DatePosted, &j.CreatedAt, &j.UpdatedAt}
}

func scanJob(s rowScanner) (*model.Job, error) {
	var j model.Job
	if err := s.Scan(jobDest(&j)...); err != nil {
		return nil, err
	}
	j.Description = SanitizeDescription(j.Description)
	return &j, nil
}

func scanListing(s rowScanner) (model.JobListing, error) {
	var l model.JobListing
	dest := append(jobDest(&l.Job), &l.Employer.CompanyName, &l.Employer.CompanyLogo)
	if err := s.Scan(dest...); err != nil {
		return l, err
	}
	l.Employer.ID = l.EmployerID
	l.Description = SanitizeDescription(l.Description)
	return l, nil
}

// Create inserts a job and fills its id and timestamps.
func (r *JobRepo) Create(ctx context.Context, j *model.Job) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO jobs (employer_id, title, description, location, type, work_mode,
		 experience, salary_from, salary_to, active)
		 VALUES (?,?,?,?,?,?,?,?,?,TRUE)`,
		j.EmployerID, j.Title, j.Description, j.Location, j.Type, j.WorkMode,
		j.Experience, j.SalaryFrom, j.SalaryTo)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*j = *created
	return nil
}

// GetByID fetches a job regardless of its active flag.
func (r *JobRepo) GetByID(ctx context.Context, id uint64) (*model.Job, error) {
	j, err := scanJob(r.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs j WHERE j.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	return j, err
}

// GetListing fetches a job with its employer summary and the number of
// pending applicants.
func (r *JobRepo) GetListing(ctx context.Context, id uint64) (*model.JobListing, error) {
	q := "SELECT " + jobColumns + ", " + companyColumns + `
		FROM jobs j JOIN users u ON u.id = j.employer_id
		WHERE j.id = ?`
	l, err := scanListing(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM job_applications WHERE job_id = ? AND status = ?",
		id, string(model.StatusApplied)).Scan(&n); err != nil {
		return nil, err
	}
	l.NumberOfApplicants = &n
	return &l, nil
}

// ListByEmployer returns the employer's jobs, newest first.  A nil active
// lists every job; otherwise only jobs with the given flag.
func (r *JobRepo) ListByEmployer(ctx context.Context, employerID uint64, active *bool) ([]*model.Job, error) {
	q := "SELECT " + jobColumns + " FROM jobs j WHERE j.employer_id = ?"
	args := []any{employerID}
	if active != nil {
		q += " AND j.active = ?"
		args = append(args, *active)
	}
	q += " ORDER BY j.date_posted DESC, j.id DESC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// ListAll returns every job with its employer summary for the admin view.
func (r *JobRepo) ListAll(ctx context.Context) ([]model.JobListing, error) {
	q := "SELECT " + jobColumns + ", " + companyColumns + `
		FROM jobs j JOIN users u ON u.id = j.employer_id
		ORDER BY j.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.JobListing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Summaries returns the compact listings of every job grouped by employer.
// With activeOnly set, inactive jobs are left out.
func (r *JobRepo) Summaries(ctx context.Context, activeOnly bool) (map[uint64][]model.JobSummary, error) {
	q := "SELECT employer_id, id, title, location, active FROM jobs"
	if activeOnly {
		q += " WHERE active = TRUE"
	}
	q += " ORDER BY date_posted DESC, id DESC"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[uint64][]model.JobSummary{}
	for rows.Next() {
		var (
			employerID uint64
			s          model.JobSummary
		)
		if err := rows.Scan(&employerID, &s.ID, &s.Title, &s.Location, &s.Active); err != nil {
			return nil, err
		}
		out[employerID] = append(out[employerID], s)
	}
	return out, rows.Err()
}

// Locations returns up to limit distinct locations of active jobs that
// contain search (case-insensitive).
func (r *JobRepo) Locations(ctx context.Context, search string, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT location FROM jobs
		 WHERE active = TRUE AND location <> '' AND LOWER(location) LIKE ?
		 ORDER BY location LIMIT ?`,
		"%"+escapeLike(search)+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

// ToggleActive flips the active flag of a job and records a job-status
// notification for its employer in the same transaction.  Only the owning
// employer or an admin may toggle a job.
func (r *JobRepo) ToggleActive(ctx context.Context, jobID, callerID uint64, admin bool) (job *model.Job, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	job, err = scanJob(tx.QueryRowContext(ctx,
		"SELECT "+jobColumns+" FROM jobs j WHERE j.id = ? FOR UPDATE", jobID))
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrJobNotFound
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if !admin && job.EmployerID != callerID {
		err = ErrNotJobOwner
		return nil, err
	}
	job.Active = !job.Active
	if _, err = tx.ExecContext(ctx, "UPDATE jobs SET active = ? WHERE id = ?", job.Active, jobID); err != nil {
		return nil, err
	}
	state := "inactive"
	if job.Active {
		state = "active"
	}
	if err = insertNotification(ctx, tx, &model.Notification{
		EmployerID: job.EmployerID,
		Type:       model.NotificationJobStatus,
		Message:    fmt.Sprintf("Job %q is now %s", job.Title, state),
		JobID:      &job.ID,
	}); err != nil {
		return nil, err
	}
	return job, nil
}
