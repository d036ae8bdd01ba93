package handler

import (
    "net/http"
    "net/url"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/jobhunter/internal/model"
    "github.com/iliyamo/jobhunter/internal/repository"
    "github.com/iliyamo/jobhunter/internal/service"
)

// ProfileHandler serves the signed-in user's own profile, saved jobs and
// applications, and the public profiles of job seekers.
type ProfileHandler struct {
    Profiles     *service.ProfileService
    SavedJobs    *repository.SavedJobRepo
    Applications *repository.ApplicationRepo
}

func NewProfileHandler(profiles *service.ProfileService, saved *repository.SavedJobRepo, apps *repository.ApplicationRepo) *ProfileHandler {
    return &ProfileHandler{Profiles: profiles, SavedJobs: saved, Applications: apps}
}

type skillReq struct {
    Skill string `json:"skill"`
}

type resumeReq struct {
    Resume string `json:"resume"`
}

// GetProfile returns the caller's account with its profile document.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Profiles.Get(ctx, caller(c).ID)
    if err != nil {
        return err
    }
    return respond(c, http.StatusOK, u.Account(), "User profile fetch successful")
}

// UpdateJobSeeker applies a partial update to the caller's job seeker
// profile.  Unknown fields are rejected.
func (h *ProfileHandler) UpdateJobSeeker(c echo.Context) error {
    var upd model.JobSeekerProfileUpdate
    if err := bind(c, &upd); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Profiles.UpdateJobSeeker(ctx, caller(c), upd)
    if err != nil {
        return err
    }
    return respond(c, http.StatusOK, u.Account(), "User profile updated successfully")
}

func (h *ProfileHandler) AddSkill(c echo.Context) error {
    var req skillReq
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    skills, err := h.Profiles.AddSkill(ctx, caller(c), req.Skill)
    if err != nil {
        return err
    }
    return respond(c, http.StatusOK, skills, "Skills updated successfully")
}

func (h *ProfileHandler) RemoveSkill(c echo.Context) error {
    skill := c.Param("skill")
    if s, err := url.PathUnescape(skill); err == nil {
        skill = s
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    skills, err := h.Profiles.RemoveSkill(ctx, caller(c), skill)
    if err != nil {
        return err
    }
    return respond(c, http.StatusOK, skills, "Skills removed successfully")
}

// UpdateResume stores the URL of a resume uploaded to object storage.
func (h *ProfileHandler) UpdateResume(c echo.Context) error {
    var req resumeReq
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Profiles.UpdateResume(ctx, caller(c), req.Resume)
    if err != nil {
        return err
    }
    return respond(c, http.StatusOK, u.Account(), "Resume updated successfully")
}

// PublicProfile returns what employers and visitors may see of a job
// seeker.
func (h *ProfileHandler) PublicProfile(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    p, err := h.Profiles.PublicProfile(ctx, id)
    if err != nil {
        return err
    }
    return respond(c, http.StatusOK, p, "User profile fetch successful")
}

func (h *ProfileHandler) SavedJobsList(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    jobs, err := h.SavedJobs.List(ctx, caller(c).ID)
    if err != nil {
        return err
    }
    return respond(c, http.StatusOK, jobs, "Saved jobs fetched successfully")
}

func (h *ProfileHandler) SaveJob(c echo.Context) error {
    jobID, err := paramID(c, "id")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.SavedJobs.Save(ctx, caller(c).ID, jobID); err != nil {
        return err
    }
    return respond(c, http.StatusOK, echo.Map{}, "Saved the job successfully")
}

func (h *ProfileHandler) UnsaveJob(c echo.Context) error {
    jobID, err := paramID(c, "id")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.SavedJobs.Remove(ctx, caller(c).ID, jobID); err != nil {
        return err
    }
    return respond(c, http.StatusOK, echo.Map{}, "Successfully removed job from saved jobs list")
}

// MyApplications lists the caller's own applications with their status.
func (h *ProfileHandler) MyApplications(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    apps, err := h.Applications.ListForApplicant(ctx, caller(c).ID)
    if err != nil {
        return err
    }
    return respond(c, http.StatusOK, apps, "Applications fetched successfully")
}
