package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"

	"github.com/iliyamo/jobhunter/internal/model"
	"github.com/iliyamo/jobhunter/internal/utils"
)

const userColumns = "id,email,username,password_hash,role,profile,refresh_token_hash,refresh_expires_at,created_at,updated_at"

// applicantColumns is userColumns qualified with the "u" alias used in joins.
const applicantColumns = "u.id,u.email,u.username,u.password_hash,u.role,u.profile,u.refresh_token_hash,u.refresh_expires_at,u.created_at,u.updated_at"

// maxUsernameAttempts bounds the suffixes tried when a username slug is taken.
const maxUsernameAttempts = 50

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

type rowScanner interface {
	Scan(dest ...any) error
}

// scanUser scans the userColumns of a row followed by the optional extra
// destinations.
func scanUser(s rowScanner, extra ...any) (*model.User, error) {
	var (
		u          model.User
		role       string
		profile    []byte
		refresh    sql.NullString
		refreshExp sql.NullTime
	)
	dest := append([]any{&u.ID, &u.Email, &u.Username, &u.PasswordHash, &role, &profile,
		&refresh, &refreshExp, &u.CreatedAt, &u.UpdatedAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	u.RefreshTokenHash = refresh.String
	if refreshExp.Valid {
		t := refreshExp.Time
		u.RefreshExpiresAt = &t
	}
	if err := decodeProfile(&u, profile); err != nil {
		return nil, fmt.Errorf("user %d profile: %w", u.ID, err)
	}
	return &u, nil
}

// decodeProfile fills the role specific profile of u from the JSON column.
// Missing documents decode to an empty profile so callers never see nil for
// job seekers and employers.
func decodeProfile(u *model.User, raw []byte) error {
	switch u.Role {
	case model.RoleJobSeeker:
		p := &model.JobSeekerProfile{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, p); err != nil {
				return err
			}
		}
		if p.Skills == nil {
			p.Skills = []string{}
		}
		u.JobSeeker = p
	case model.RoleEmployer:
		p := &model.EmployerProfile{AIUseLimit: model.DefaultAIUseLimit}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, p); err != nil {
				return err
			}
		}
		u.Employer = p
	}
	return nil
}

// encodeProfile returns the JSON column value for u, or nil for admins.
func encodeProfile(u *model.User) ([]byte, error) {
	switch u.Role {
	case model.RoleJobSeeker:
		if u.JobSeeker == nil {
			u.JobSeeker = &model.JobSeekerProfile{Skills: []string{}}
		}
		return json.Marshal(u.JobSeeker)
	case model.RoleEmployer:
		if u.Employer == nil {
			u.Employer = &model.EmployerProfile{AIUseLimit: model.DefaultAIUseLimit}
		}
		return json.Marshal(u.Employer)
	}
	return nil, nil
}

// usernameBase turns the local part of an email into a URL-safe slug.
func usernameBase(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	if s := slug.Make(local); s != "" {
		return s
	}
	return "user"
}

// Create hashes the password and inserts u, filling u.ID and u.Username.
// The username is the slug of the email local part; on a collision a
// numeric suffix is appended ("jane-2", "jane-3", ...).
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	profile, err := encodeProfile(u)
	if err != nil {
		return err
	}
	base := usernameBase(u.Email)
	for i := 1; i <= maxUsernameAttempts; i++ {
		username := base
		if i > 1 {
			username = fmt.Sprintf("%s-%d", base, i)
		}
		res, err := r.DB.ExecContext(ctx,
			"INSERT INTO users (email, username, password_hash, role, profile) VALUES (?,?,?,?,?)",
			u.Email, username, hash, string(u.Role), profile)
		if err != nil {
			if isDuplicate(err) {
				if strings.Contains(err.Error(), "uq_users_username") {
					continue
				}
				return ErrEmailExists
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		u.ID = uint64(id)
		u.Username = username
		u.PasswordHash = hash
		return nil
	}
	return fmt.Errorf("no free username for %q", base)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// List returns users ordered by id.  An empty role lists every user.
func (r *UserRepo) List(ctx context.Context, role model.Role) ([]*model.User, error) {
	q := "SELECT " + userColumns + " FROM users"
	var args []any
	if role != "" {
		q += " WHERE role=?"
		args = append(args, string(role))
	}
	q += " ORDER BY id"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CountByRole counts users holding role.
func (r *UserRepo) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE role=?", string(role)).Scan(&n)
	return n, err
}

// SaveProfile writes the role specific profile of u.
func (r *UserRepo) SaveProfile(ctx context.Context, u *model.User) error {
	profile, err := encodeProfile(u)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET profile=? WHERE id=?", profile, u.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 rows when the value is unchanged; confirm the row exists.
		if _, err := r.GetByID(ctx, u.ID); err != nil {
			return err
		}
	}
	return nil
}

// UpdatePassword replaces the password hash and ends the current session.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, refresh_token_hash=NULL, refresh_expires_at=NULL WHERE id=?",
		hash, id)
	return err
}

// ConsumeAIUse decrements the employer's AI allowance.  It returns
// ErrQuotaExceeded when the allowance is already exhausted.
func (r *UserRepo) ConsumeAIUse(ctx context.Context, employerID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users
		 SET profile = JSON_SET(profile, '$.aiUseLimit', CAST(JSON_EXTRACT(profile, '$.aiUseLimit') AS SIGNED) - 1)
		 WHERE id = ? AND role = 'employer'
		   AND CAST(JSON_EXTRACT(profile, '$.aiUseLimit') AS SIGNED) > 0`, employerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuotaExceeded
	}
	return nil
}
