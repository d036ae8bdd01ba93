package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/jobhunter/internal/model"
)

// NotificationRepo reads and acknowledges employer notifications.  New
// notifications are only written inside the transaction of the event that
// caused them (see insertNotification).
type NotificationRepo struct{ db *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

func insertNotification(ctx context.Context, ex execer, n *model.Notification) error {
	var jobID sql.NullInt64
	if n.JobID != nil {
		jobID = sql.NullInt64{Int64: int64(*n.JobID), Valid: true}
	}
	res, err := ex.ExecContext(ctx,
		"INSERT INTO notifications (employer_id, type, message, job_id) VALUES (?,?,?,?)",
		n.EmployerID, string(n.Type), n.Message, jobID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListForEmployer returns the employer's notifications, newest first.
func (r *NotificationRepo) ListForEmployer(ctx context.Context, employerID uint64) ([]model.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, employer_id, type, message, job_id, is_read, created_at
		 FROM notifications WHERE employer_id = ?
		 ORDER BY created_at DESC, id DESC`, employerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Notification{}
	for rows.Next() {
		var (
			n     model.Notification
			typ   string
			jobID sql.NullInt64
		)
		if err := rows.Scan(&n.ID, &n.EmployerID, &typ, &n.Message, &jobID, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = model.NotificationType(typ)
		if jobID.Valid {
			id := uint64(jobID.Int64)
			n.JobID = &id
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a notification as read.  Only the addressed employer may
// acknowledge it.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, employerID uint64) error {
	var owner uint64
	err := r.db.QueryRowContext(ctx, "SELECT employer_id FROM notifications WHERE id = ?", id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotificationNotFound
	}
	if err != nil {
		return err
	}
	if owner != employerID {
		return ErrNotNotification
	}
	_, err = r.db.ExecContext(ctx, "UPDATE notifications SET is_read = TRUE WHERE id = ?", id)
	return err
}
