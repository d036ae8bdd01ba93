package handler

import (
    "context"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/jobhunter/internal/ai"
    "github.com/iliyamo/jobhunter/internal/model"
    "github.com/iliyamo/jobhunter/internal/repository"
    "github.com/iliyamo/jobhunter/internal/service"
)

// aiTimeout bounds a job description generation; language models answer
// far slower than the database.
const aiTimeout = 45 * time.Second

// JobHandler serves the public job catalog and the employer's job
// management endpoints.
type JobHandler struct {
    Jobs         *repository.JobRepo
    Applications *service.ApplicationService
    Descriptions *service.DescriptionService
    // Purge drops cached catalog responses after a write.  Nil disables it.
    Purge func(ctx context.Context)
}

func NewJobHandler(jobs *repository.JobRepo, apps *service.ApplicationService, desc *service.DescriptionService, purge func(context.Context)) *JobHandler {
    return &JobHandler{Jobs: jobs, Applications: apps, Descriptions: desc, Purge: purge}
}

func (h *JobHandler) purge(c echo.Context) {
    if h.Purge != nil {
        h.Purge(c.Request().Context())
    }
}

type postJobReq struct {
    Title       string `json:"title"`
    Description string `json:"description"`
    Location    string `json:"location"`
    Type        string `json:"type"`
    WorkMode    string `json:"workMode"`
    Experience  int    `json:"experience"`
    SalaryFrom  int    `json:"salaryFrom"`
    SalaryTo    int    `json:"salaryTo"`
}

type applyReq struct {
    CoverLetter string `json:"coverLetter"`
}

type pageRef struct {
    Page  int `json:"page"`
    Limit int `json:"limit"`
}

type pagination struct {
    Next *pageRef `json:"next,omitempty"`
    Prev *pageRef `json:"prev,omitempty"`
}

type jobsPage struct {
    Jobs       []model.JobListing `json:"jobs"`
    Pagination pagination         `json:"pagination"`
    Total      int64              `json:"total"`
}

// queryInt parses an integer query parameter; anything unparsable counts
// as absent.
func queryInt(c echo.Context, name string, def int) int {
    n, err := strconv.Atoi(strings.TrimSpace(c.QueryParam(name)))
    if err != nil {
        return def
    }
    return n
}

// searchQuery reads the catalog filters from the query string.
func searchQuery(c echo.Context) repository.JobSearchQuery {
    page := queryInt(c, "page", 1)
    if page < 1 {
        page = 1
    }
    limit := queryInt(c, "limit", 10)
    if limit < 1 {
        limit = 10
    }
    if limit > 100 {
        limit = 100
    }
    return repository.JobSearchQuery{
        Search:     strings.TrimSpace(c.QueryParam("search")),
        DatePosted: strings.TrimSpace(c.QueryParam("datePosted")),
        Type:       strings.TrimSpace(c.QueryParam("type")),
        Experience: queryInt(c, "experience", 0),
        SalaryFrom: queryInt(c, "salaryFrom", 0),
        SalaryTo:   queryInt(c, "salaryTo", 0),
        WorkMode:   strings.TrimSpace(c.QueryParam("workMode")),
        Location:   strings.TrimSpace(c.QueryParam("location")),
        Page:       page,
        PageSize:   limit,
    }
}

func pageLinks(q repository.JobSearchQuery, total int64) pagination {
    var p pagination
    start := (q.Page - 1) * q.PageSize
    if int64(start+q.PageSize) < total {
        p.Next = &pageRef{Page: q.Page + 1, Limit: q.PageSize}
    }
    if start > 0 {
        p.Prev = &pageRef{Page: q.Page - 1, Limit: q.PageSize}
    }
    return p
}

// ListJobs searches the active jobs, newest first.
func (h *JobHandler) ListJobs(c echo.Context) error {
    q := searchQuery(c)
    ctx, cancel := reqCtx(c)
    defer cancel()

    jobs, total, err := h.Jobs.Search(ctx, q)
    if err != nil {
        return err
    }
    msg := "Jobs fetched successfully"
    if len(jobs) == 0 {
        msg = "No Job found "
    }
    return respond(c, http.StatusOK, jobsPage{Jobs: jobs, Pagination: pageLinks(q, total), Total: total}, msg)
}

func (h *JobHandler) GetJob(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    job, err := h.Jobs.GetListing(ctx, id)
    if err != nil {
        return err
    }
    return respond(c, http.StatusOK, job, "Job fetched successfully")
}

// PostJob publishes a new active job for the calling employer.
func (h *JobHandler) PostJob(c echo.Context) error {
    var req postJobReq
    if err := bind(c, &req); err != nil {
        return err
    }
    if strings.TrimSpace(req.Title) == "" {
        return badRequest("Title input is required.")
    }
    if strings.TrimSpace(req.Description) == "" {
        return badRequest("Description input is required.")
    }
    if req.Experience < 0 || req.SalaryFrom < 0 || req.SalaryTo < 0 {
        return badRequest("experience and salary must not be negative")
    }
    if req.SalaryFrom > 0 && req.SalaryTo > 0 && req.SalaryFrom > req.SalaryTo {
        return badRequest("salaryFrom must not exceed salaryTo")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    job := &model.Job{
        EmployerID:  caller(c).ID,
        Title:       strings.TrimSpace(req.Title),
        Description: req.Description,
        Location:    strings.TrimSpace(req.Location),
        Type:        strings.TrimSpace(req.Type),
        WorkMode:    strings.TrimSpace(req.WorkMode),
        Experience:  req.Experience,
        SalaryFrom:  req.SalaryFrom,
        SalaryTo:    req.SalaryTo,
    }
    if err := h.Jobs.Create(ctx, job); err != nil {
        return err
    }
    h.purge(c)
    return respond(c, http.StatusOK, job, "Job posted successfully")
}

// ToggleActive opens or closes a job.  Admins may toggle any job.
func (h *JobHandler) ToggleActive(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    who := caller(c)
    job, err := h.Jobs.ToggleActive(ctx, id, who.ID, who.Role == model.RoleAdmin)
    if err != nil {
        return err
    }
    h.purge(c)
    msg := "Job deactivated successfully"
    if job.Active {
        msg = "Job activated successfully"
    }
    return respond(c, http.StatusOK, job, msg)
}

// Locations suggests up to five locations for the search box.
func (h *JobHandler) Locations(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    locs, err := h.Jobs.Locations(ctx, strings.TrimSpace(c.QueryParam("search")), 5)
    if err != nil {
        return err
    }
    if len(locs) == 0 {
        return respond(c, http.StatusOK, locs, "No job locations found")
    }
    return respond(c, http.StatusOK, locs, "Job locations fetched successfully")
}

// Apply submits the caller's application to a job.
func (h *JobHandler) Apply(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return err
    }
    var req applyReq
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    app, err := h.Applications.Apply(ctx, caller(c), id, strings.TrimSpace(req.CoverLetter))
    if err != nil {
        return err
    }
    h.purge(c)
    return respond(c, http.StatusOK, app, "Job applied successfully")
}

// GenerateDescription drafts a job description with the language model
// and spends one of the employer's AI uses.
func (h *JobHandler) GenerateDescription(c echo.Context) error {
    var d ai.JobDetails
    if err := bind(c, &d); err != nil {
        return err
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), aiTimeout)
    defer cancel()

    text, remaining, err := h.Descriptions.Generate(ctx, caller(c), d)
    if err != nil {
        return err
    }
    return respond(c, http.StatusOK, echo.Map{"description": text, "aiUseLimit": remaining},
        "Job description generated successfully")
}

func (h *JobHandler) listings(c echo.Context, active *bool, msg string) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    jobs, err := h.Jobs.ListByEmployer(ctx, caller(c).ID, active)
    if err != nil {
        return err
    }
    if len(jobs) == 0 {
        msg = "No job listings found"
    }
    return respond(c, http.StatusOK, jobs, msg)
}

// Listings returns every job of the calling employer.
func (h *JobHandler) Listings(c echo.Context) error {
    return h.listings(c, nil, "Job listings fetched successfully")
}

func (h *JobHandler) ActiveListings(c echo.Context) error {
    active := true
    return h.listings(c, &active, "Active job listings fetched successfully")
}

func (h *JobHandler) InactiveListings(c echo.Context) error {
    active := false
    return h.listings(c, &active, "Non-active job listings fetched successfully")
}
