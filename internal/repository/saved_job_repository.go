package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/jobhunter/internal/model"
)

// SavedJobRepo keeps the ordered list of jobs a job seeker bookmarked.
type SavedJobRepo struct{ db *sql.DB }

func NewSavedJobRepo(db *sql.DB) *SavedJobRepo { return &SavedJobRepo{db: db} }

// Save appends jobID to the user's saved jobs.
func (r *SavedJobRepo) Save(ctx context.Context, userID, jobID uint64) error {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM jobs WHERE id = ?", jobID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrJobNotFound
	}
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO saved_jobs (user_id, job_id) VALUES (?, ?)", userID, jobID); err != nil {
		if isDuplicate(err) {
			return ErrAlreadySaved
		}
		return err
	}
	return nil
}

// Remove drops jobID from the user's saved jobs.
func (r *SavedJobRepo) Remove(ctx context.Context, userID, jobID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM saved_jobs WHERE user_id = ? AND job_id = ?", userID, jobID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotSaved
	}
	return nil
}

// List returns the user's saved jobs that are still active, in the order
// they were saved.
func (r *SavedJobRepo) List(ctx context.Context, userID uint64) ([]model.JobListing, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+jobColumns+", "+companyColumns+`
		 FROM saved_jobs s
		 JOIN jobs j  ON j.id = s.job_id
		 JOIN users u ON u.id = j.employer_id
		 WHERE s.user_id = ? AND j.active = TRUE
		 ORDER BY s.id`, userID)
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
