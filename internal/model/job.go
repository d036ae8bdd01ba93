package model

import "time"

// Job represents a row of the `jobs` table: a posting owned by an employer.
//
// Fields:
//  ID          – jobs.id
//  EmployerID  – users.id of the owning employer.
//  Title       – required headline.
//  Description – required body; may contain HTML and is sanitised on read.
//  Type        – e.g. full-time, part-time, internship.
//  WorkMode    – e.g. remote, onsite, hybrid.
//  Experience  – years of experience asked for.
//  SalaryFrom  – lower bound of the salary range (0 when unknown).
//  SalaryTo    – upper bound of the salary range (0 when unknown).
//  Active      – whether the job accepts applications and is listed.
//  DatePosted  – publication time used for sorting and date filters.
type Job struct {
    ID          uint64    `json:"_id"`
    EmployerID  uint64    `json:"employerId"`
    Title       string    `json:"title"`
    Description string    `json:"description"`
    Location    string    `json:"location,omitempty"`
    Type        string    `json:"type,omitempty"`
    WorkMode    string    `json:"workMode,omitempty"`
    Experience  int       `json:"experience"`
    SalaryFrom  int       `json:"salaryFrom"`
    SalaryTo    int       `json:"salaryTo"`
    Active      bool      `json:"active"`
    DatePosted  time.Time `json:"datePosted"`
    CreatedAt   time.Time `json:"createdAt"`
    UpdatedAt   time.Time `json:"updatedAt"`
}

// JobListing is a job joined with its employer's public summary, as shown
// in search results and job detail pages.
type JobListing struct {
    Job
    Employer           CompanySummary `json:"employer"`
    NumberOfApplicants *int           `json:"numberOfApplicants,omitempty"`
}

// JobRef is the minimal job projection used when pairing applicants with
// the job they applied to.
type JobRef struct {
    ID    uint64 `json:"_id"`
    Title string `json:"title"`
}

// JobSummary is the compact projection of a job in company listings.
type JobSummary struct {
    ID       uint64 `json:"_id"`
    Title    string `json:"title"`
    Location string `json:"location,omitempty"`
    Active   bool   `json:"active"`
}
