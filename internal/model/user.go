package model

import "time"

// Role is the closed set of account roles.  The string values are the ones
// stored in users.role and carried in the access token's role claim.
type Role string

const (
    RoleJobSeeker Role = "jobSeeker"
    RoleEmployer  Role = "employer"
    RoleAdmin     Role = "admin"
)

// ParseRole returns the role named by s and whether s is a known role.
func ParseRole(s string) (Role, bool) {
    switch Role(s) {
    case RoleJobSeeker, RoleEmployer, RoleAdmin:
        return Role(s), true
    }
    return "", false
}

// SelfAssignable reports whether a user may pick this role at signup.
// Admins are only created by seeding or promotion.
func (r Role) SelfAssignable() bool {
    return r == RoleJobSeeker || r == RoleEmployer
}

// DefaultAIUseLimit is the number of AI job descriptions a new employer may
// generate.
const DefaultAIUseLimit = 10

// User represents a row of the `users` table.  The profile column is a JSON
// document whose shape depends on Role: job seekers carry a JobSeekerProfile,
// employers an EmployerProfile and admins neither.
//
// Fields:
//  ID               – users.id
//  Email            – unique, lower-cased email address.
//  Username         – slug derived from the email local part.
//  PasswordHash     – bcrypt hash.
//  Role             – jobSeeker, employer or admin.
//  JobSeeker        – decoded profile when Role is jobSeeker.
//  Employer         – decoded profile when Role is employer.
//  RefreshTokenHash – SHA-256 of the current refresh token (empty when logged out).
type User struct {
    ID               uint64
    Email            string
    Username         string
    PasswordHash     string
    Role             Role
    JobSeeker        *JobSeekerProfile
    Employer         *EmployerProfile
    RefreshTokenHash string
    RefreshExpiresAt *time.Time
    CreatedAt        time.Time
    UpdatedAt        time.Time
}

// SocialProfiles lists a user's or company's external links.
type SocialProfiles struct {
    LinkedIn         string `json:"linkedIn,omitempty"`
    Github           string `json:"github,omitempty"`
    Twitter          string `json:"twitter,omitempty"`
    PortfolioWebsite string `json:"portfolioWebsite,omitempty"`
    Email            string `json:"email,omitempty"`
    Whatsapp         string `json:"whatsapp,omitempty"`
}

type Education struct {
    Institution  string `json:"institution,omitempty"`
    Degree       string `json:"degree,omitempty"`
    FieldOfStudy string `json:"fieldOfStudy,omitempty"`
    StartDate    string `json:"startDate,omitempty"`
    EndDate      string `json:"endDate,omitempty"`
}

type WorkExperience struct {
    JobTitle    string `json:"jobTitle,omitempty"`
    Company     string `json:"company,omitempty"`
    Location    string `json:"location,omitempty"`
    StartDate   string `json:"startDate,omitempty"`
    EndDate     string `json:"endDate,omitempty"`
    Description string `json:"description,omitempty"`
}

type ProjectExperience struct {
    ProjectName string   `json:"projectName,omitempty"`
    Description string   `json:"description,omitempty"`
    Skills      []string `json:"skills,omitempty"`
    Link        string   `json:"link,omitempty"`
}

type Certification struct {
    Name   string `json:"name,omitempty"`
    Issuer string `json:"issuer,omitempty"`
    Date   string `json:"date,omitempty"`
}

type JobPreferences struct {
    JobTypes  []string `json:"jobTypes,omitempty"`
    Locations []string `json:"locations,omitempty"`
    WorkModes []string `json:"workModes,omitempty"`
    MinSalary int      `json:"minSalary,omitempty"`
}

// JobSeekerProfile is the profile document of a jobSeeker.
type JobSeekerProfile struct {
    Name              string              `json:"name,omitempty"`
    Bio               string              `json:"bio,omitempty"`
    Location          string              `json:"location,omitempty"`
    Address           string              `json:"address,omitempty"`
    ContactNumber     string              `json:"contactNumber,omitempty"`
    DateOfBirth       string              `json:"dateOfBirth,omitempty"`
    Gender            string              `json:"gender,omitempty"`
    Nationality       string              `json:"nationality,omitempty"`
    ProfilePicture    string              `json:"profilePicture,omitempty"`
    Resume            string              `json:"resume,omitempty"`
    PrimaryRole       string              `json:"primaryRole,omitempty"`
    YearsOfExperience int                 `json:"yearsOfExperience,omitempty"`
    Skills            []string            `json:"skills"`
    Languages         []string            `json:"languages,omitempty"`
    Interests         []string            `json:"interests,omitempty"`
    Certifications    []Certification     `json:"certifications,omitempty"`
    Education         []Education         `json:"education,omitempty"`
    WorkExperience    []WorkExperience    `json:"workExperience,omitempty"`
    ProjectExperience []ProjectExperience `json:"projectExperience,omitempty"`
    SocialProfiles    SocialProfiles      `json:"socialProfiles"`
    JobPreferences    JobPreferences      `json:"jobPreferences"`
    PublicProfile     bool                `json:"publicProfile"`
    DoneOnboarding    bool                `json:"doneOnboarding"`
}

// EmployerProfile is the profile document of an employer (a company).
type EmployerProfile struct {
    CompanyName           string         `json:"companyName,omitempty"`
    CompanyDescription    string         `json:"companyDescription,omitempty"`
    ContactNumber         string         `json:"contactNumber,omitempty"`
    Address               string         `json:"address,omitempty"`
    Industry              string         `json:"industry,omitempty"`
    CompanySize           string         `json:"companySize,omitempty"`
    CompanyLogo           string         `json:"companyLogo,omitempty"`
    CompanyWebsite        string         `json:"companyWebsite,omitempty"`
    CompanySocialProfiles SocialProfiles `json:"companySocialProfiles"`
    EmployeeBenefits      []string       `json:"employeeBenefits,omitempty"`
    AIUseLimit            int            `json:"aiUseLimit"`
    DoneOnboarding        bool           `json:"doneOnboarding"`
}

// PublicProfile is the projection of a job seeker that employers and
// anonymous visitors may see.
type PublicProfile struct {
    ID                uint64           `json:"_id"`
    Email             string           `json:"email,omitempty"`
    Name              string           `json:"name,omitempty"`
    ProfilePicture    string           `json:"profilePicture,omitempty"`
    Address           string           `json:"address,omitempty"`
    Bio               string           `json:"bio,omitempty"`
    Location          string           `json:"location,omitempty"`
    YearsOfExperience int              `json:"yearsOfExperience,omitempty"`
    SocialProfiles    SocialProfiles   `json:"socialProfiles"`
    WorkExperience    []WorkExperience `json:"workExperience,omitempty"`
    Education         []Education      `json:"education,omitempty"`
    Skills            []string         `json:"skills"`
    Resume            string           `json:"resume,omitempty"`
}

// Public projects the user onto its public profile.  Users without a job
// seeker profile yield an empty projection carrying only id and email.
func (u *User) Public() PublicProfile {
    p := PublicProfile{ID: u.ID, Email: u.Email, Skills: []string{}}
    if js := u.JobSeeker; js != nil {
        p.Name = js.Name
        p.ProfilePicture = js.ProfilePicture
        p.Address = js.Address
        p.Bio = js.Bio
        p.Location = js.Location
        p.YearsOfExperience = js.YearsOfExperience
        p.SocialProfiles = js.SocialProfiles
        p.WorkExperience = js.WorkExperience
        p.Education = js.Education
        if js.Skills != nil {
            p.Skills = js.Skills
        }
        p.Resume = js.Resume
    }
    return p
}

// CompanySummary is the employer projection attached to job listings.
type CompanySummary struct {
    ID          uint64 `json:"_id"`
    CompanyName string `json:"companyName,omitempty"`
    CompanyLogo string `json:"companyLogo,omitempty"`
}

// Account is the admin view of a user.  It never carries credentials.
type Account struct {
    ID        uint64            `json:"_id"`
    Email     string            `json:"email"`
    Username  string            `json:"username"`
    Role      Role              `json:"role"`
    JobSeeker *JobSeekerProfile `json:"jobSeekerProfile,omitempty"`
    Employer  *EmployerProfile  `json:"employerProfile,omitempty"`
    CreatedAt time.Time         `json:"createdAt"`
}

// Account projects the user onto its admin view.
func (u *User) Account() Account {
    return Account{
        ID:        u.ID,
        Email:     u.Email,
        Username:  u.Username,
        Role:      u.Role,
        JobSeeker: u.JobSeeker,
        Employer:  u.Employer,
        CreatedAt: u.CreatedAt,
    }
}

// CompanySummary returns the employer projection attached to job listings.
func (u *User) CompanySummary() CompanySummary {
    s := CompanySummary{ID: u.ID}
    if u.Employer != nil {
        s.CompanyName = u.Employer.CompanyName
        s.CompanyLogo = u.Employer.CompanyLogo
    }
    return s
}
