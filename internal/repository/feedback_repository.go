package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/jobhunter/internal/model"
)

type FeedbackRepo struct{ db *sql.DB }

func NewFeedbackRepo(db *sql.DB) *FeedbackRepo { return &FeedbackRepo{db: db} }

// Create stores a feedback message and fills its id and timestamp.
func (r *FeedbackRepo) Create(ctx context.Context, f *model.FeedbackMessage) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	var userID sql.NullInt64
	if f.UserID != nil {
		userID = sql.NullInt64{Int64: int64(*f.UserID), Valid: true}
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO feedback_messages (user_id, user_name, email, message, created_at) VALUES (?,?,?,?,?)",
		userID, f.UserName, f.Email, f.Message, f.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

// List returns every feedback message, newest first.
func (r *FeedbackRepo) List(ctx context.Context) ([]model.FeedbackMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, user_name, email, message, created_at
		 FROM feedback_messages ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.FeedbackMessage{}
	for rows.Next() {
		var (
			f      model.FeedbackMessage
			userID sql.NullInt64
		)
		if err := rows.Scan(&f.ID, &userID, &f.UserName, &f.Email, &f.Message, &f.CreatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			id := uint64(userID.Int64)
			f.UserID = &id
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Delete removes a feedback message.
func (r *FeedbackRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM feedback_messages WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFeedbackNotFound
	}
	return nil
}
