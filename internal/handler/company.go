package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/jobhunter/internal/model"
    "github.com/iliyamo/jobhunter/internal/repository"
    "github.com/iliyamo/jobhunter/internal/service"
)

// CompanyHandler serves company profiles and the employer's applicant
// pipeline: applications, shortlist, cover letters and notifications.
type CompanyHandler struct {
    Profiles      *service.ProfileService
    Users         *repository.UserRepo
    Jobs          *repository.JobRepo
    Applications  *service.ApplicationService
    Notifications *repository.NotificationRepo
    Purge         func(ctx context.Context)
}

// candidateReq names one (job, applicant) pair of the caller's pipeline.
type candidateReq struct {
    JobID       uint64 `json:"jobId"`
    ApplicantID uint64 `json:"applicantId"`
}

// companyResp is the public view of an employer.
type companyResp struct {
    ID          uint64                 `json:"_id"`
    Username    string                 `json:"username"`
    Profile     *model.EmployerProfile `json:"userProfile"`
    JobListings []model.JobSummary     `json:"jobListings"`
}

func newCompanyResp(u *model.User, jobs []model.JobSummary) companyResp {
    if jobs == nil {
        jobs = []model.JobSummary{}
    }
    return companyResp{ID: u.ID, Username: u.Username, Profile: u.Employer, JobListings: jobs}
}

func (h *CompanyHandler) purge(c echo.Context) {
    if h.Purge != nil {
        h.Purge(c.Request().Context())
    }
}

// ListCompanies returns the employers that finished onboarding together
// with their job listings.
func (h *CompanyHandler) ListCompanies(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    users, err := h.Users.List(ctx, model.RoleEmployer)
    if err != nil {
        return err
    }
    jobs, err := h.Jobs.Summaries(ctx, false)
    if err != nil {
        return err
    }
    out := []companyResp{}
    for _, u := range users {
        if u.Employer == nil || !u.Employer.DoneOnboarding {
            continue
        }
        out = append(out, newCompanyResp(u, jobs[u.ID]))
    }
    return respond(c, http.StatusOK, out, "Companies fetched successfully")
}

// GetCompany returns a company profile with its active listings.
func (h *CompanyHandler) GetCompany(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Profiles.Company(ctx, id)
    if err != nil {
        return err
    }
    active := true
    jobs, err := h.Jobs.ListByEmployer(ctx, id, &active)
    if err != nil {
        return err
    }
    summaries := make([]model.JobSummary, 0, len(jobs))
    for _, j := range jobs {
        summaries = append(summaries, model.JobSummary{ID: j.ID, Title: j.Title, Location: j.Location, Active: j.Active})
    }
    return respond(c, http.StatusOK, newCompanyResp(u, summaries), "Company profile fetched successfully")
}

// UpdateCompany applies a partial update to the caller's own company
// profile.  Unknown fields are rejected.
func (h *CompanyHandler) UpdateCompany(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return err
    }
    var upd model.EmployerProfileUpdate
    if err := bind(c, &upd); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Profiles.UpdateCompany(ctx, caller(c), id, upd)
    if err != nil {
        return err
    }
    h.purge(c)
    return respond(c, http.StatusOK, newCompanyResp(u, nil), "Company profile updated successfully")
}

// PendingApplications lists the pending applicants of the caller's jobs.
func (h *CompanyHandler) PendingApplications(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    entries, err := h.Applications.ListApplications(ctx, caller(c))
    if err != nil {
        return err
    }
    return listEntries(c, entries)
}

// Shortlisted lists the shortlisted candidates of the caller's jobs.
func (h *CompanyHandler) Shortlisted(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    entries, err := h.Applications.ListShortlisted(ctx, caller(c))
    if err != nil {
        return err
    }
    return listEntries(c, entries)
}

func listEntries(c echo.Context, entries []model.ApplicantEntry) error {
    if len(entries) == 0 {
        return respond(c, http.StatusOK, []model.ApplicantEntry{}, "No job listings found")
    }
    return respond(c, http.StatusOK, entries, "Job listings fetched successfully")
}

// Messages lists the cover letters sent to the caller's jobs.
func (h *CompanyHandler) Messages(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    msgs, err := h.Applications.ListMessages(ctx, caller(c))
    if err != nil {
        return err
    }
    if msgs == nil {
        msgs = []model.ApplicantMessage{}
    }
    return respond(c, http.StatusOK, msgs, "Applicant messages fetched successfully")
}

func bindCandidate(c echo.Context) (candidateReq, error) {
    var req candidateReq
    if err := bind(c, &req); err != nil {
        return req, err
    }
    if req.JobID == 0 || req.ApplicantID == 0 {
        return req, badRequest("jobId and applicantId are required")
    }
    return req, nil
}

// Shortlist moves an applicant onto the job's shortlist.
func (h *CompanyHandler) Shortlist(c echo.Context) error {
    req, err := bindCandidate(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Applications.Shortlist(ctx, caller(c), req.JobID, req.ApplicantID); err != nil {
        return err
    }
    h.purge(c)
    return respond(c, http.StatusOK, echo.Map{},
        "Applicant has been successfully shortlisted and removed from the job application.")
}

func (h *CompanyHandler) RemoveFromApplications(c echo.Context) error {
    req, err := bindCandidate(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Applications.RemoveFromApplications(ctx, caller(c), req.JobID, req.ApplicantID); err != nil {
        return err
    }
    h.purge(c)
    return respond(c, http.StatusOK, echo.Map{},
        "Applicant has been successfully removed from the job application.")
}

func (h *CompanyHandler) RemoveFromShortlist(c echo.Context) error {
    req, err := bindCandidate(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Applications.RemoveFromShortlist(ctx, caller(c), req.JobID, req.ApplicantID); err != nil {
        return err
    }
    h.purge(c)
    return respond(c, http.StatusOK, echo.Map{}, "Applicant has been successfully removed from shortlist.")
}

func (h *CompanyHandler) ListNotifications(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    notes, err := h.Notifications.ListForEmployer(ctx, caller(c).ID)
    if err != nil {
        return err
    }
    return respond(c, http.StatusOK, notes, "Notifications fetched successfully")
}

func (h *CompanyHandler) MarkNotificationRead(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Notifications.MarkRead(ctx, id, caller(c).ID); err != nil {
        return err
    }
    return respond(c, http.StatusOK, echo.Map{}, "Notification marked as read")
}
