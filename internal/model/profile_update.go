package model

// JobSeekerProfileUpdate is a partial update of a JobSeekerProfile.  A nil
// field leaves the stored value untouched.
type JobSeekerProfileUpdate struct {
    Name              *string              `json:"name"`
    Bio               *string              `json:"bio"`
    Location          *string              `json:"location"`
    Address           *string              `json:"address"`
    ContactNumber     *string              `json:"contactNumber"`
    DateOfBirth       *string              `json:"dateOfBirth"`
    Gender            *string              `json:"gender"`
    Nationality       *string              `json:"nationality"`
    ProfilePicture    *string              `json:"profilePicture"`
    Resume            *string              `json:"resume"`
    PrimaryRole       *string              `json:"primaryRole"`
    YearsOfExperience *int                 `json:"yearsOfExperience"`
    Skills            *[]string            `json:"skills"`
    Languages         *[]string            `json:"languages"`
    Interests         *[]string            `json:"interests"`
    Certifications    *[]Certification     `json:"certifications"`
    Education         *[]Education         `json:"education"`
    WorkExperience    *[]WorkExperience    `json:"workExperience"`
    ProjectExperience *[]ProjectExperience `json:"projectExperience"`
    SocialProfiles    *SocialProfiles      `json:"socialProfiles"`
    JobPreferences    *JobPreferences      `json:"jobPreferences"`
    PublicProfile     *bool                `json:"publicProfile"`
    DoneOnboarding    *bool                `json:"doneOnboarding"`
}

// Apply writes every non-nil field of u into p.
func (u JobSeekerProfileUpdate) Apply(p *JobSeekerProfile) {
    setString(&p.Name, u.Name)
    setString(&p.Bio, u.Bio)
    setString(&p.Location, u.Location)
    setString(&p.Address, u.Address)
    setString(&p.ContactNumber, u.ContactNumber)
    setString(&p.DateOfBirth, u.DateOfBirth)
    setString(&p.Gender, u.Gender)
    setString(&p.Nationality, u.Nationality)
    setString(&p.ProfilePicture, u.ProfilePicture)
    setString(&p.Resume, u.Resume)
    setString(&p.PrimaryRole, u.PrimaryRole)
    if u.YearsOfExperience != nil {
        p.YearsOfExperience = *u.YearsOfExperience
    }
    if u.Skills != nil {
        p.Skills = NormalizeSkills(*u.Skills)
    }
    if u.Languages != nil {
        p.Languages = *u.Languages
    }
    if u.Interests != nil {
        p.Interests = *u.Interests
    }
    if u.Certifications != nil {
        p.Certifications = *u.Certifications
    }
    if u.Education != nil {
        p.Education = *u.Education
    }
    if u.WorkExperience != nil {
        p.WorkExperience = *u.WorkExperience
    }
    if u.ProjectExperience != nil {
        p.ProjectExperience = *u.ProjectExperience
    }
    if u.SocialProfiles != nil {
        p.SocialProfiles = *u.SocialProfiles
    }
    if u.JobPreferences != nil {
        p.JobPreferences = *u.JobPreferences
    }
    if u.PublicProfile != nil {
        p.PublicProfile = *u.PublicProfile
    }
    if u.DoneOnboarding != nil {
        p.DoneOnboarding = *u.DoneOnboarding
    }
}

// EmployerProfileUpdate is a partial update of an EmployerProfile.
// It has no aiUseLimit field: only the description generator changes the
// quota.
type EmployerProfileUpdate struct {
    CompanyName           *string         `json:"companyName"`
    CompanyDescription    *string         `json:"companyDescription"`
    ContactNumber         *string         `json:"contactNumber"`
    Address               *string         `json:"address"`
    Industry              *string         `json:"industry"`
    CompanySize           *string         `json:"companySize"`
    CompanyLogo           *string         `json:"companyLogo"`
    CompanyWebsite        *string         `json:"companyWebsite"`
    CompanySocialProfiles *SocialProfiles `json:"companySocialProfiles"`
    EmployeeBenefits      *[]string       `json:"employeeBenefits"`
    DoneOnboarding        *bool           `json:"doneOnboarding"`
}

// Apply writes every non-nil field of u into p.
func (u EmployerProfileUpdate) Apply(p *EmployerProfile) {
    setString(&p.CompanyName, u.CompanyName)
    setString(&p.CompanyDescription, u.CompanyDescription)
    setString(&p.ContactNumber, u.ContactNumber)
    setString(&p.Address, u.Address)
    setString(&p.Industry, u.Industry)
    setString(&p.CompanySize, u.CompanySize)
    setString(&p.CompanyLogo, u.CompanyLogo)
    setString(&p.CompanyWebsite, u.CompanyWebsite)
    if u.CompanySocialProfiles != nil {
        p.CompanySocialProfiles = *u.CompanySocialProfiles
    }
    if u.EmployeeBenefits != nil {
        p.EmployeeBenefits = *u.EmployeeBenefits
    }
    if u.DoneOnboarding != nil {
        p.DoneOnboarding = *u.DoneOnboarding
    }
}

func setString(dst *string, v *string) {
    if v != nil {
        *dst = *v
    }
}
