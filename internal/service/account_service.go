package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/jobhunter/internal/config"
	"github.com/iliyamo/jobhunter/internal/model"
	"github.com/iliyamo/jobhunter/internal/queue"
	"github.com/iliyamo/jobhunter/internal/repository"
	"github.com/iliyamo/jobhunter/internal/utils"
)

// ResetTokenTTL is how long a password reset link stays valid.
const ResetTokenTTL = 30 * time.Minute

// AccountStore is the user persistence behind signup, login and passwords.
type AccountStore interface {
	Create(ctx context.Context, u *model.User, password string, cost int) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	CountByRole(ctx context.Context, role model.Role) (int64, error)
}

// TokenStore persists refresh and reset token hashes.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeForUser(ctx context.Context, userID uint64) error
	StoreReset(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ResetPassword(ctx context.Context, tokenHash, passwordHash string) (uint64, error)
}

// Session is the token pair handed to a client after authentication.
type Session struct {
	User    *model.User
	Access  utils.AccessToken
	Refresh utils.OpaqueToken
}

// SignupInput carries the fields accepted at registration.  Name and
// CompanyName seed the job seeker or employer profile.
type SignupInput struct {
	Email       string
	Password    string
	Role        string
	Name        string
	CompanyName string
}

// AccountService issues sessions and manages credentials.
type AccountService struct {
	cfg    config.Config
	users  AccountStore
	tokens TokenStore
	events Publisher
}

func NewAccountService(cfg config.Config, users AccountStore, tokens TokenStore, events Publisher) *AccountService {
	return &AccountService{cfg: cfg, users: users, tokens: tokens, events: events}
}

func invalid(msg string) error { return repository.NewError(repository.ErrInvalid, msg) }

// Signup registers a job seeker or an employer and logs them in.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, invalid("email and password are required")
	}
	role, ok := model.ParseRole(strings.TrimSpace(in.Role))
	if !ok || !role.SelfAssignable() {
		return nil, invalid("role must be employer or jobSeeker")
	}
	if err := utils.CheckPassword(in.Password); err != nil {
		return nil, invalid(err.Error())
	}

	u := &model.User{Email: email, Role: role}
	switch role {
	case model.RoleJobSeeker:
		u.JobSeeker = &model.JobSeekerProfile{Name: strings.TrimSpace(in.Name), Skills: []string{}}
	case model.RoleEmployer:
		u.Employer = &model.EmployerProfile{CompanyName: strings.TrimSpace(in.CompanyName), AIUseLimit: model.DefaultAIUseLimit}
	}
	if err := s.users.Create(ctx, u, in.Password, s.cfg.BcryptCost); err != nil {
		return nil, err
	}
	sess, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, queue.UserRegisteredEvent{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
		Role:     string(u.Role),
	})
	return sess, nil
}

// Login verifies the credentials and starts a new session.  The previous
// refresh token of the user stops working.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, invalid("email and password are required")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, repository.ErrBadCredentials
	}
	return s.issue(ctx, u)
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *AccountService) Refresh(ctx context.Context, raw string) (*Session, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, repository.ErrSessionExpired
	}
	userID, err := s.tokens.ValidateRefresh(ctx, utils.HashToken(raw))
	if err != nil {
		if errors.Is(err, repository.ErrInvalidToken) {
			return nil, repository.ErrSessionExpired
		}
		return nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, u)
}

// Logout ends the user's session.
func (s *AccountService) Logout(ctx context.Context, userID uint64) error {
	return s.tokens.RevokeForUser(ctx, userID)
}

// LogoutRefresh ends the session a refresh token belongs to.  Unknown or
// expired tokens are ignored.
func (s *AccountService) LogoutRefresh(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	userID, err := s.tokens.ValidateRefresh(ctx, utils.HashToken(raw))
	if errors.Is(err, repository.ErrInvalidToken) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.tokens.RevokeForUser(ctx, userID)
}

// ForgotPassword starts a reset for email.  Unknown addresses succeed
// silently so the endpoint cannot be used to discover accounts.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return invalid("email is required")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	tok, err := utils.NewResetToken(ResetTokenTTL)
	if err != nil {
		return err
	}
	if err := s.tokens.StoreReset(ctx, u.ID, utils.HashToken(tok.Raw), tok.Exp); err != nil {
		return err
	}
	publish(ctx, s.events, queue.PasswordResetRequestedEvent{
		UserID:    u.ID,
		Email:     u.Email,
		Token:     tok.Raw,
		ExpiresAt: tok.Exp,
	})
	return nil
}

// ResetPassword sets a new password using a reset token.  The token is
// single use and the user's session ends.
func (s *AccountService) ResetPassword(ctx context.Context, token, password string) error {
	token = strings.TrimSpace(token)
	if token == "" || password == "" {
		return invalid("token and password are required")
	}
	if err := utils.CheckPassword(password); err != nil {
		return invalid(err.Error())
	}
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	_, err = s.tokens.ResetPassword(ctx, utils.HashToken(token), hash)
	return err
}

// ChangePassword replaces the password of a logged in user.
func (s *AccountService) ChangePassword(ctx context.Context, userID uint64, current, next string) error {
	if current == "" || next == "" {
		return invalid("current and new password are required")
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, current) {
		return repository.ErrWrongPassword
	}
	if err := utils.CheckPassword(next); err != nil {
		return invalid(err.Error())
	}
	hash, err := utils.HashPassword(next, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, u.ID, hash)
}

// SeedAdmin creates the configured admin account when no admin exists.
// It does nothing when ADMIN_EMAIL or ADMIN_PASSWORD is unset.
func (s *AccountService) SeedAdmin(ctx context.Context) error {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		return nil
	}
	n, err := s.users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return nil
	}
	u := &model.User{Email: s.cfg.AdminEmail, Role: model.RoleAdmin}
	if err := s.users.Create(ctx, u, s.cfg.AdminPassword, s.cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			log.Printf("seed admin: %s already registered with another role", s.cfg.AdminEmail)
			return nil
		}
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Printf("seed admin: created %s", u.Email)
	return nil
}

func (s *AccountService) issue(ctx context.Context, u *model.User) (*Session, error) {
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, string(u.Role), s.cfg.AccessTTLMin)
	if err != nil {
		return nil, fmt.Errorf("issue access: %w", err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return nil, fmt.Errorf("issue refresh: %w", err)
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashToken(refresh.Raw), refresh.Exp); err != nil {
		return nil, err
	}
	return &Session{User: u, Access: access, Refresh: refresh}, nil
}
