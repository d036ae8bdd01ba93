package repository

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/jobhunter/internal/model"
)

// JobSearchQuery defines filters & pagination for the public job catalog.
// Zero values disable a filter.
type JobSearchQuery struct {
	Search     string // substring of the description
	DatePosted string // today, yesterday, this_week or this_month
	Type       string
	Experience int // maximum years asked for; <= 0 disables
	SalaryFrom int // salary range that must overlap the job's range;
	SalaryTo   int // applied only when both bounds are set
	WorkMode   string
	Location   string // substring of the location
	Page       int
	PageSize   int
}

// datePostedSince returns the lower and optional upper bound for a date
// filter relative to now.  ok is false for unknown values.
func datePostedSince(filter string, now time.Time) (from time.Time, to *time.Time, ok bool) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch filter {
	case "today":
		return midnight, nil, true
	case "yesterday":
		return midnight.AddDate(0, 0, -1), &midnight, true
	case "this_week":
		return now.AddDate(0, 0, -7), nil, true
	case "this_month":
		return now.AddDate(0, -1, 0), nil, true
	}
	return time.Time{}, nil, false
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return strings.ToLower(r.Replace(s))
}

// buildJobSearch returns the WHERE clause and its arguments for q.  Only
// active jobs are ever listed.
func buildJobSearch(q JobSearchQuery, now time.Time) (string, []any) {
	where := []string{"j.active = TRUE"}
	args := []any{}

	if q.Search != "" {
		where = append(where, "LOWER(j.description) LIKE ?")
		args = append(args, "%"+escapeLike(q.Search)+"%")
	}
	if from, to, ok := datePostedSince(q.DatePosted, now); ok {
		where = append(where, "j.date_posted >= ?")
		args = append(args, from)
		if to != nil {
			where = append(where, "j.date_posted < ?")
			args = append(args, *to)
		}
	}
	if q.Type != "" {
		where = append(where, "j.type = ?")
		args = append(args, q.Type)
	}
	if q.Experience > 0 {
		where = append(where, "j.experience <= ?")
		args = append(args, q.Experience)
	}
	if q.SalaryFrom > 0 && q.SalaryTo > 0 {
		where = append(where, "j.salary_from <= ? AND j.salary_to >= ?")
		args = append(args, q.SalaryTo, q.SalaryFrom)
	}
	if q.WorkMode != "" {
		where = append(where, "j.work_mode = ?")
		args = append(args, q.WorkMode)
	}
	if q.Location != "" {
		where = append(where, "LOWER(j.location) LIKE ?")
		args = append(args, "%"+escapeLike(q.Location)+"%")
	}
	return strings.Join(where, " AND "), args
}

// Search returns one page of active jobs matching q, newest first, together
// with the total number of matches.
func (r *JobRepo) Search(ctx context.Context, q JobSearchQuery) ([]model.JobListing, int64, error) {
	cond, args := buildJobSearch(q, time.Now().UTC())

	var total int64
	countSQL := `SELECT COUNT(*) FROM jobs j WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := "SELECT " + jobColumns + ", " + companyColumns + `
		FROM jobs j
		JOIN users u ON u.id = j.employer_id
		WHERE ` + cond + `
		ORDER BY j.date_posted DESC, j.id DESC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.JobListing, 0, limit)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
