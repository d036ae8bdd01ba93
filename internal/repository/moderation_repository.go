package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/jobhunter/internal/model"
)

// ModerationTx is the set of statements an admin deletion or promotion runs
// inside one transaction.
type ModerationTx interface {
	// LockUser returns the user and locks its row, or ErrUserNotFound.
	LockUser(ctx context.Context, id uint64) (*model.User, error)
	// CountAdmins counts admins with a locking read so that two concurrent
	// deletions cannot both see a second admin.
	CountAdmins(ctx context.Context) (int64, error)
	// DeleteOwnedJobs deletes the jobs of employerID together with their
	// applications, saved-job references and the employer's notifications.
	DeleteOwnedJobs(ctx context.Context, employerID uint64) error
	// DeleteApplicantData deletes the applications and saved jobs of userID.
	DeleteApplicantData(ctx context.Context, userID uint64) error
	// DetachFeedback keeps the user's feedback but drops the user reference.
	DetachFeedback(ctx context.Context, userID uint64) error
	DeleteUser(ctx context.Context, id uint64) error
	// DeleteJob deletes a job, its applications and saved-job references and
	// detaches its notifications.  It returns ErrJobNotFound when no job
	// was deleted.
	DeleteJob(ctx context.Context, jobID uint64) error
	SetRole(ctx context.Context, id uint64, role model.Role) error
}

// ModerationRepo backs the admin dashboard.
type ModerationRepo struct{ db *sql.DB }

func NewModerationRepo(db *sql.DB) *ModerationRepo { return &ModerationRepo{db: db} }

// InTx runs fn in a transaction and commits when fn returns nil.
func (r *ModerationRepo) InTx(ctx context.Context, fn func(ModerationTx) error) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&moderationTx{tx: tx})
	})
}

// Stats counts the platform's users, companies, jobs, applications and
// feedback messages.
func (r *ModerationRepo) Stats(ctx context.Context) (model.Stats, error) {
	var s model.Stats
	err := r.db.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM users),
		   (SELECT COUNT(*) FROM users WHERE role = 'employer'),
		   (SELECT COUNT(*) FROM jobs),
		   (SELECT COUNT(*) FROM job_applications),
		   (SELECT COUNT(*) FROM feedback_messages)`).
		Scan(&s.Users, &s.Companies, &s.Jobs, &s.Applications, &s.Feedback)
	return s, err
}

type moderationTx struct{ tx *sql.Tx }

func (t *moderationTx) LockUser(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(t.tx.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? FOR UPDATE", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (t *moderationTx) CountAdmins(ctx context.Context) (int64, error) {
	rows, err := t.tx.QueryContext(ctx, "SELECT id FROM users WHERE role = 'admin' FOR UPDATE")
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	var n int64
	for rows.Next() {
		n++
	}
	return n, rows.Err()
}

func (t *moderationTx) DeleteOwnedJobs(ctx context.Context, employerID uint64) error {
	stmts := []string{
		`DELETE a FROM job_applications a JOIN jobs j ON j.id = a.job_id WHERE j.employer_id = ?`,
		`DELETE s FROM saved_jobs s JOIN jobs j ON j.id = s.job_id WHERE j.employer_id = ?`,
		`DELETE FROM notifications WHERE employer_id = ?`,
		`DELETE FROM jobs WHERE employer_id = ?`,
	}
	return execAll(ctx, t.tx, stmts, employerID)
}

func (t *moderationTx) DeleteApplicantData(ctx context.Context, userID uint64) error {
	stmts := []string{
		`DELETE FROM job_applications WHERE applicant_id = ?`,
		`DELETE FROM saved_jobs WHERE user_id = ?`,
	}
	return execAll(ctx, t.tx, stmts, userID)
}

func (t *moderationTx) DetachFeedback(ctx context.Context, userID uint64) error {
	_, err := t.tx.ExecContext(ctx, "UPDATE feedback_messages SET user_id = NULL WHERE user_id = ?", userID)
	return err
}

func (t *moderationTx) DeleteUser(ctx context.Context, id uint64) error {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (t *moderationTx) DeleteJob(ctx context.Context, jobID uint64) error {
	stmts := []string{
		`DELETE FROM job_applications WHERE job_id = ?`,
		`DELETE FROM saved_jobs WHERE job_id = ?`,
		`UPDATE notifications SET job_id = NULL WHERE job_id = ?`,
	}
	if err := execAll(ctx, t.tx, stmts, jobID); err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx, "DELETE FROM jobs WHERE id = ?", jobID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (t *moderationTx) SetRole(ctx context.Context, id uint64, role model.Role) error {
	_, err := t.tx.ExecContext(ctx, "UPDATE users SET role = ? WHERE id = ?", string(role), id)
	return err
}

func execAll(ctx context.Context, ex execer, stmts []string, args ...any) error {
	for _, q := range stmts {
		if _, err := ex.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}
