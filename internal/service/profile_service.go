package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/jobhunter/internal/ai"
	"github.com/iliyamo/jobhunter/internal/model"
	"github.com/iliyamo/jobhunter/internal/repository"
)

// ProfileStore reads and writes user profiles.
type ProfileStore interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	SaveProfile(ctx context.Context, u *model.User) error
}

var (
	errSkillExists   = repository.NewError(repository.ErrConflict, "skill already exists")
	errSkillNotFound = repository.NewError(repository.ErrNotFound, "skill not found")
	errNotOwnCompany = repository.NewError(repository.ErrForbidden, "you can only update your own company profile")
)

// ProfileService applies typed partial updates to the role specific
// profile documents.
type ProfileService struct {
	users ProfileStore
}

func NewProfileService(users ProfileStore) *ProfileService {
	return &ProfileService{users: users}
}

func (s *ProfileService) Get(ctx context.Context, id uint64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *ProfileService) jobSeeker(ctx context.Context, caller Caller) (*model.User, error) {
	if caller.Role != model.RoleJobSeeker {
		return nil, repository.ErrNotJobSeeker
	}
	u, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if u.JobSeeker == nil {
		u.JobSeeker = &model.JobSeekerProfile{Skills: []string{}}
	}
	return u, nil
}

// UpdateJobSeeker applies upd to the caller's job seeker profile.
func (s *ProfileService) UpdateJobSeeker(ctx context.Context, caller Caller, upd model.JobSeekerProfileUpdate) (*model.User, error) {
	u, err := s.jobSeeker(ctx, caller)
	if err != nil {
		return nil, err
	}
	upd.Apply(u.JobSeeker)
	if err := s.users.SaveProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateCompany applies upd to the company profile companyID, which must
// be the caller's own.
func (s *ProfileService) UpdateCompany(ctx context.Context, caller Caller, companyID uint64, upd model.EmployerProfileUpdate) (*model.User, error) {
	if caller.Role != model.RoleEmployer {
		return nil, errEmployerOnly
	}
	if caller.ID != companyID {
		return nil, errNotOwnCompany
	}
	u, err := s.users.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if u.Employer == nil {
		u.Employer = &model.EmployerProfile{AIUseLimit: model.DefaultAIUseLimit}
	}
	upd.Apply(u.Employer)
	if err := s.users.SaveProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// AddSkill appends skill unless an equivalent one is already listed.
func (s *ProfileService) AddSkill(ctx context.Context, caller Caller, skill string) ([]string, error) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return nil, invalid("skill is required")
	}
	u, err := s.jobSeeker(ctx, caller)
	if err != nil {
		return nil, err
	}
	if model.HasSkill(u.JobSeeker.Skills, skill) {
		return nil, errSkillExists
	}
	u.JobSeeker.Skills = model.NormalizeSkills(append(u.JobSeeker.Skills, skill))
	if err := s.users.SaveProfile(ctx, u); err != nil {
		return nil, err
	}
	return u.JobSeeker.Skills, nil
}

// RemoveSkill drops skill, matched case and accent insensitively.
func (s *ProfileService) RemoveSkill(ctx context.Context, caller Caller, skill string) ([]string, error) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return nil, invalid("skill is required")
	}
	u, err := s.jobSeeker(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !model.HasSkill(u.JobSeeker.Skills, skill) {
		return nil, errSkillNotFound
	}
	u.JobSeeker.Skills = model.RemoveSkill(u.JobSeeker.Skills, skill)
	if err := s.users.SaveProfile(ctx, u); err != nil {
		return nil, err
	}
	return u.JobSeeker.Skills, nil
}

// UpdateResume stores the URL of the caller's uploaded resume.
func (s *ProfileService) UpdateResume(ctx context.Context, caller Caller, resumeURL string) (*model.User, error) {
	resumeURL = strings.TrimSpace(resumeURL)
	if resumeURL == "" {
		return nil, invalid("resume is required")
	}
	u, err := s.jobSeeker(ctx, caller)
	if err != nil {
		return nil, err
	}
	u.JobSeeker.Resume = resumeURL
	if err := s.users.SaveProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// PublicProfile returns the public projection of a job seeker.
func (s *ProfileService) PublicProfile(ctx context.Context, id uint64) (model.PublicProfile, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.PublicProfile{}, err
	}
	if u.Role != model.RoleJobSeeker {
		return model.PublicProfile{}, repository.ErrUserNotFound
	}
	return u.Public(), nil
}

// Company returns the employer with the given id.  Other roles are
// reported as missing.
func (s *ProfileService) Company(ctx context.Context, id uint64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, repository.ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.Role != model.RoleEmployer {
		return nil, repository.ErrCompanyNotFound
	}
	return u, nil
}

// DescriptionGenerator writes job descriptions.
type DescriptionGenerator interface {
	JobDescription(ctx context.Context, d ai.JobDetails) (string, error)
}

// QuotaStore tracks the employers' AI allowance.
type QuotaStore interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	ConsumeAIUse(ctx context.Context, employerID uint64) error
}

// ErrAIUnavailable is returned when no language model is configured.
var ErrAIUnavailable = errors.New("AI job description generation is not configured")

// DescriptionService generates job descriptions within each employer's
// allowance.  A use is only consumed when generation succeeds.
type DescriptionService struct {
	users QuotaStore
	gen   DescriptionGenerator
}

func NewDescriptionService(users QuotaStore, gen DescriptionGenerator) *DescriptionService {
	return &DescriptionService{users: users, gen: gen}
}

// Generate returns a description for d and the caller's remaining uses.
func (s *DescriptionService) Generate(ctx context.Context, caller Caller, d ai.JobDetails) (string, int, error) {
	if caller.Role != model.RoleEmployer {
		return "", 0, errEmployerOnly
	}
	if strings.TrimSpace(d.Title) == "" {
		return "", 0, invalid("job title is required")
	}
	u, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		return "", 0, err
	}
	if u.Employer == nil || u.Employer.AIUseLimit <= 0 {
		return "", 0, repository.ErrQuotaExceeded
	}
	if s.gen == nil {
		return "", 0, ErrAIUnavailable
	}
	if d.CompanyName == "" {
		d.CompanyName = u.Employer.CompanyName
	}
	text, err := s.gen.JobDescription(ctx, d)
	if err != nil {
		return "", 0, err
	}
	if err := s.users.ConsumeAIUse(ctx, caller.ID); err != nil {
		return "", 0, err
	}
	return text, u.Employer.AIUseLimit - 1, nil
}
