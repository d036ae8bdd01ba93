package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/jobhunter/internal/model"
	"github.com/iliyamo/jobhunter/internal/queue"
	"github.com/iliyamo/jobhunter/internal/repository"
)

// ApplicationStore is the persistence the application lifecycle needs.
type ApplicationStore interface {
	InTx(ctx context.Context, fn func(repository.ApplicationTx) error) error
	ListForEmployer(ctx context.Context, employerID uint64, status model.ApplicationStatus) ([]model.ApplicantEntry, error)
	ListMessages(ctx context.Context, employerID uint64) ([]model.ApplicantMessage, error)
}

var (
	errEmployerOnly = repository.NewError(repository.ErrForbidden, "only employers are allowed to perform this action")
	errNotApplicant = repository.NewError(repository.ErrInvalid, "applicant must be a job seeker")
)

// ApplicationService moves (job, applicant) pairs through the application
// lifecycle.  Every transition locks the job row and the pair's record so
// concurrent requests on the same pair are serialised.
type ApplicationService struct {
	store  ApplicationStore
	users  UserReader
	events Publisher
}

func NewApplicationService(store ApplicationStore, users UserReader, events Publisher) *ApplicationService {
	return &ApplicationService{store: store, users: users, events: events}
}

// Apply records caller's application to jobID and notifies the employer.
// A pair taken off the shortlist or out of the pending queue earlier may
// apply again.
func (s *ApplicationService) Apply(ctx context.Context, caller Caller, jobID uint64, coverLetter string) (*model.JobApplication, error) {
	if caller.Role != model.RoleJobSeeker {
		return nil, repository.ErrNotJobSeeker
	}
	var (
		app *model.JobApplication
		job *model.Job
	)
	err := s.store.InTx(ctx, func(tx repository.ApplicationTx) error {
		j, err := tx.LockJob(ctx, jobID)
		if err != nil {
			return err
		}
		if !j.Active {
			return repository.ErrJobInactive
		}
		cur, err := tx.LockApplication(ctx, jobID, caller.ID)
		found := err == nil
		if err != nil && !errors.Is(err, repository.ErrApplicationNotFound) {
			return err
		}
		var status model.ApplicationStatus
		if found {
			status = cur.Status
		}
		next, err := model.ApplyFrom(status, found)
		if err != nil {
			return repository.ErrAlreadyApplied
		}

		now := time.Now().UTC()
		if found {
			cur.Status, cur.CoverLetter, cur.AppliedAt = next, coverLetter, now
			if err := tx.UpdateApplication(ctx, cur); err != nil {
				return err
			}
			app = cur
		} else {
			app = &model.JobApplication{
				JobID:       jobID,
				ApplicantID: caller.ID,
				CoverLetter: coverLetter,
				Status:      next,
				AppliedAt:   now,
			}
			if err := tx.InsertApplication(ctx, app); err != nil {
				return err
			}
		}

		id := j.ID
		job = j
		return tx.InsertNotification(ctx, &model.Notification{
			EmployerID: j.EmployerID,
			Type:       model.NotificationApplicant,
			Message:    "New applicant for " + j.Title,
			JobID:      &id,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}
	s.publishSubmitted(ctx, job, app)
	return app, nil
}

func (s *ApplicationService) publishSubmitted(ctx context.Context, job *model.Job, app *model.JobApplication) {
	ev := queue.ApplicationSubmittedEvent{
		ApplicationID: app.ID,
		JobID:         job.ID,
		JobTitle:      job.Title,
		EmployerID:    job.EmployerID,
		ApplicantID:   app.ApplicantID,
		AppliedAt:     app.AppliedAt.Format(time.RFC3339),
	}
	if s.users != nil {
		if emp, err := s.users.GetByID(ctx, job.EmployerID); err == nil {
			ev.EmployerEmail = emp.Email
		} else {
			log.Printf("application %d: load employer: %v", app.ID, err)
		}
		if u, err := s.users.GetByID(ctx, app.ApplicantID); err == nil && u.JobSeeker != nil {
			ev.ApplicantName = u.JobSeeker.Name
		}
	}
	publish(ctx, s.events, ev)
}

// Shortlist moves the pair to the job's shortlist.  Every state converges
// to shortlisted, so repeating the call is harmless.  A job seeker who never
// applied gets a record without a cover letter.
func (s *ApplicationService) Shortlist(ctx context.Context, caller Caller, jobID, applicantID uint64) error {
	return s.transition(ctx, caller, jobID, applicantID, true, model.ShortlistFrom)
}

// RemoveFromApplications drops a pending application.  The record stays
// behind with status removed.
func (s *ApplicationService) RemoveFromApplications(ctx context.Context, caller Caller, jobID, applicantID uint64) error {
	return s.transition(ctx, caller, jobID, applicantID, false, model.RemoveFromApplicationsFrom)
}

// RemoveFromShortlist takes the pair off the shortlist without putting it
// back in the pending queue.
func (s *ApplicationService) RemoveFromShortlist(ctx context.Context, caller Caller, jobID, applicantID uint64) error {
	return s.transition(ctx, caller, jobID, applicantID, false, model.RemoveFromShortlistFrom)
}

// transition applies next to the pair's status on behalf of the job's
// owner.  A missing record is left alone unless create is set, in which
// case the record is inserted in status next("").
func (s *ApplicationService) transition(ctx context.Context, caller Caller, jobID, applicantID uint64, create bool, next func(model.ApplicationStatus) model.ApplicationStatus) error {
	if caller.Role != model.RoleEmployer {
		return errEmployerOnly
	}
	return s.store.InTx(ctx, func(tx repository.ApplicationTx) error {
		j, err := tx.LockJob(ctx, jobID)
		if err != nil {
			return err
		}
		if j.EmployerID != caller.ID {
			return repository.ErrNotJobOwner
		}
		a, err := tx.LockApplication(ctx, jobID, applicantID)
		if errors.Is(err, repository.ErrApplicationNotFound) {
			if !create {
				return nil
			}
			return s.insertFor(ctx, tx, jobID, applicantID, next(""))
		}
		if err != nil {
			return err
		}
		to := next(a.Status)
		if to == a.Status {
			return nil
		}
		a.Status = to
		return tx.UpdateApplication(ctx, a)
	})
}

// insertFor creates the record of a pair that has none.  Only job seekers
// can hold a record.
func (s *ApplicationService) insertFor(ctx context.Context, tx repository.ApplicationTx, jobID, applicantID uint64, status model.ApplicationStatus) error {
	u, err := tx.LockUser(ctx, applicantID)
	if err != nil {
		return err
	}
	if u.Role != model.RoleJobSeeker {
		return errNotApplicant
	}
	return tx.InsertApplication(ctx, &model.JobApplication{
		JobID:       jobID,
		ApplicantID: applicantID,
		Status:      status,
		AppliedAt:   time.Now().UTC(),
	})
}

// ListApplications returns the pending applicants of the caller's jobs.
func (s *ApplicationService) ListApplications(ctx context.Context, caller Caller) ([]model.ApplicantEntry, error) {
	if caller.Role != model.RoleEmployer {
		return nil, errEmployerOnly
	}
	return s.store.ListForEmployer(ctx, caller.ID, model.StatusApplied)
}

// ListShortlisted returns the shortlisted candidates of the caller's jobs.
func (s *ApplicationService) ListShortlisted(ctx context.Context, caller Caller) ([]model.ApplicantEntry, error) {
	if caller.Role != model.RoleEmployer {
		return nil, errEmployerOnly
	}
	return s.store.ListForEmployer(ctx, caller.ID, model.StatusShortlisted)
}

// ListMessages returns the cover letters sent to the caller's jobs.
func (s *ApplicationService) ListMessages(ctx context.Context, caller Caller) ([]model.ApplicantMessage, error) {
	if caller.Role != model.RoleEmployer {
		return nil, errEmployerOnly
	}
	return s.store.ListMessages(ctx, caller.ID)
}
