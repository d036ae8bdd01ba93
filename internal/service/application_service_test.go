package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/jobhunter/internal/model"
	"github.com/iliyamo/jobhunter/internal/queue"
	"github.com/iliyamo/jobhunter/internal/repository"
)

const (
	employerID  = 1
	otherEmpID  = 2
	seekerID    = 3
	jobID       = 10
	inactiveJob = 11
)

var (
	employer = Caller{ID: employerID, Role: model.RoleEmployer}
	seeker   = Caller{ID: seekerID, Role: model.RoleJobSeeker}
)

func newApplicationFixture(t *testing.T) (*ApplicationService, *memDB, *recordingPublisher) {
	t.Helper()
	db := newMemDB()
	db.addUser(employerID, "hr@acme.test", model.RoleEmployer)
	db.addUser(otherEmpID, "hr@globex.test", model.RoleEmployer)
	db.addUser(seekerID, "ann@mail.test", model.RoleJobSeeker)
	db.addJob(jobID, employerID, "Backend Engineer", true)
	db.addJob(inactiveJob, employerID, "Closed Role", false)
	pub := &recordingPublisher{}
	return NewApplicationService(db, db, pub), db, pub
}

func TestApplyRecordsApplicationAndNotifiesEmployer(t *testing.T) {
	svc, db, pub := newApplicationFixture(t)
	ctx := context.Background()

	app, err := svc.Apply(ctx, seeker, jobID, "Hi")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApplied, app.Status)
	assert.NotZero(t, app.ID)

	pending, err := svc.ListApplications(ctx, employer)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, uint64(seekerID), pending[0].ApplicantProfile.ID)
	assert.Equal(t, model.JobRef{ID: jobID, Title: "Backend Engineer"}, pending[0].JobDetails)

	st := db.snapshot()
	require.Len(t, st.notes, 1)
	n := st.notes[0]
	assert.Equal(t, uint64(employerID), n.EmployerID)
	assert.Equal(t, model.NotificationApplicant, n.Type)
	assert.Equal(t, "New applicant for Backend Engineer", n.Message)
	require.NotNil(t, n.JobID)
	assert.Equal(t, uint64(jobID), *n.JobID)

	require.Len(t, pub.events, 1)
	ev, ok := pub.events[0].(queue.ApplicationSubmittedEvent)
	require.True(t, ok)
	assert.Equal(t, "hr@acme.test", ev.EmployerEmail)
	assert.Equal(t, "ann@mail.test", ev.ApplicantName)
	assert.Equal(t, "Backend Engineer", ev.JobTitle)
}

func TestApplyTwiceConflictsAndLeavesStateUnchanged(t *testing.T) {
	svc, db, pub := newApplicationFixture(t)
	ctx := context.Background()

	_, err := svc.Apply(ctx, seeker, jobID, "Hi")
	require.NoError(t, err)
	before := db.snapshot()

	_, err = svc.Apply(ctx, seeker, jobID, "Hi again")
	assert.ErrorIs(t, err, repository.ErrAlreadyApplied)
	assert.ErrorIs(t, err, repository.ErrConflict)

	after := db.snapshot()
	assert.Equal(t, before.apps, after.apps)
	assert.Len(t, after.notes, 1)
	assert.Len(t, pub.events, 1)
}

func TestApplyRules(t *testing.T) {
	svc, db, _ := newApplicationFixture(t)
	ctx := context.Background()

	_, err := svc.Apply(ctx, employer, jobID, "")
	assert.ErrorIs(t, err, repository.ErrForbidden)

	_, err = svc.Apply(ctx, seeker, 999, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Apply(ctx, seeker, inactiveJob, "")
	assert.ErrorIs(t, err, repository.ErrJobInactive)

	assert.Empty(t, db.snapshot().apps)
}

func TestApplyRollsBackWhenNotificationFails(t *testing.T) {
	svc, db, pub := newApplicationFixture(t)
	db.failOn = "InsertNotification"

	_, err := svc.Apply(context.Background(), seeker, jobID, "Hi")
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, db.snapshot().apps)
	assert.Empty(t, pub.events)
}

func TestShortlistConverges(t *testing.T) {
	svc, db, _ := newApplicationFixture(t)
	ctx := context.Background()

	_, err := svc.Apply(ctx, seeker, jobID, "Hi")
	require.NoError(t, err)

	require.NoError(t, svc.Shortlist(ctx, employer, jobID, seekerID))
	require.NoError(t, svc.Shortlist(ctx, employer, jobID, seekerID))

	shortlisted, err := svc.ListShortlisted(ctx, employer)
	require.NoError(t, err)
	require.Len(t, shortlisted, 1)
	assert.Equal(t, uint64(seekerID), shortlisted[0].ApplicantProfile.ID)

	pending, err := svc.ListApplications(ctx, employer)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// a removed application can still be shortlisted
	require.NoError(t, svc.RemoveFromShortlist(ctx, employer, jobID, seekerID))
	_, err = svc.Apply(ctx, seeker, jobID, "Back")
	require.NoError(t, err)
	require.NoError(t, svc.RemoveFromApplications(ctx, employer, jobID, seekerID))
	require.NoError(t, svc.Shortlist(ctx, employer, jobID, seekerID))
	assert.Equal(t, model.StatusShortlisted, db.pair(jobID, seekerID).Status)
}

func TestShortlistRequiresOwnership(t *testing.T) {
	svc, db, _ := newApplicationFixture(t)
	ctx := context.Background()

	_, err := svc.Apply(ctx, seeker, jobID, "Hi")
	require.NoError(t, err)

	other := Caller{ID: otherEmpID, Role: model.RoleEmployer}
	assert.ErrorIs(t, svc.Shortlist(ctx, other, jobID, seekerID), repository.ErrNotJobOwner)
	assert.ErrorIs(t, svc.RemoveFromApplications(ctx, other, jobID, seekerID), repository.ErrForbidden)
	assert.ErrorIs(t, svc.RemoveFromShortlist(ctx, other, jobID, seekerID), repository.ErrForbidden)
	assert.ErrorIs(t, svc.Shortlist(ctx, seeker, jobID, seekerID), repository.ErrForbidden)
	assert.Equal(t, model.StatusApplied, db.pair(jobID, seekerID).Status)

	assert.ErrorIs(t, svc.Shortlist(ctx, employer, 999, seekerID), repository.ErrJobNotFound)
	assert.ErrorIs(t, svc.Shortlist(ctx, employer, inactiveJob, 999), repository.ErrUserNotFound)
	assert.ErrorIs(t, svc.Shortlist(ctx, employer, inactiveJob, otherEmpID), repository.ErrInvalid)
	assert.Nil(t, db.pair(inactiveJob, otherEmpID))

	_, err = svc.ListApplications(ctx, seeker)
	assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestRemoveFromShortlistDoesNotRequeue(t *testing.T) {
	svc, db, _ := newApplicationFixture(t)
	ctx := context.Background()

	_, err := svc.Apply(ctx, seeker, jobID, "Hi")
	require.NoError(t, err)
	require.NoError(t, svc.Shortlist(ctx, employer, jobID, seekerID))
	require.NoError(t, svc.RemoveFromShortlist(ctx, employer, jobID, seekerID))

	pending, err := svc.ListApplications(ctx, employer)
	require.NoError(t, err)
	assert.Empty(t, pending)
	shortlisted, err := svc.ListShortlisted(ctx, employer)
	require.NoError(t, err)
	assert.Empty(t, shortlisted)
	assert.Equal(t, model.StatusWithdrawn, db.pair(jobID, seekerID).Status)

	app, err := svc.Apply(ctx, seeker, jobID, "Trying again")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApplied, app.Status)
	assert.Equal(t, "Trying again", app.CoverLetter)
	assert.Len(t, db.snapshot().apps, 1)
}

func TestRemoveFromApplicationsKeepsRecord(t *testing.T) {
	svc, db, _ := newApplicationFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.RemoveFromApplications(ctx, employer, jobID, seekerID))

	_, err := svc.Apply(ctx, seeker, jobID, "Hi")
	require.NoError(t, err)
	require.NoError(t, svc.RemoveFromApplications(ctx, employer, jobID, seekerID))

	a := db.pair(jobID, seekerID)
	require.NotNil(t, a)
	assert.Equal(t, model.StatusRemoved, a.Status)
	assert.Equal(t, "Hi", a.CoverLetter)

	messages, err := svc.ListMessages(ctx, employer)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, model.StatusRemoved, messages[0].Status)
}

func TestReapplyAfterRemoval(t *testing.T) {
	svc, db, pub := newApplicationFixture(t)
	ctx := context.Background()

	_, err := svc.Apply(ctx, seeker, jobID, "Hi")
	require.NoError(t, err)
	require.NoError(t, svc.RemoveFromApplications(ctx, employer, jobID, seekerID))

	app, err := svc.Apply(ctx, seeker, jobID, "Second try")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApplied, app.Status)
	assert.Equal(t, "Second try", app.CoverLetter)
	assert.Len(t, db.snapshot().apps, 1)
	assert.Len(t, pub.events, 2)

	pending, err := svc.ListApplications(ctx, employer)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, uint64(seekerID), pending[0].ApplicantProfile.ID)

	// a shortlisted pair still cannot apply
	require.NoError(t, svc.Shortlist(ctx, employer, jobID, seekerID))
	_, err = svc.Apply(ctx, seeker, jobID, "Third")
	assert.ErrorIs(t, err, repository.ErrAlreadyApplied)
}

func TestShortlistWithoutApplication(t *testing.T) {
	svc, db, _ := newApplicationFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Shortlist(ctx, employer, jobID, seekerID))

	a := db.pair(jobID, seekerID)
	require.NotNil(t, a)
	assert.Equal(t, model.StatusShortlisted, a.Status)
	assert.Empty(t, a.CoverLetter)

	shortlisted, err := svc.ListShortlisted(ctx, employer)
	require.NoError(t, err)
	require.Len(t, shortlisted, 1)
	assert.Equal(t, uint64(seekerID), shortlisted[0].ApplicantProfile.ID)

	pending, err := svc.ListApplications(ctx, employer)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// no applicant notification for a shortlist
	assert.Empty(t, db.snapshot().notes)
}

func TestListingsAreOrderedByJobThenTime(t *testing.T) {
	svc, db, _ := newApplicationFixture(t)
	ctx := context.Background()
	db.addJob(5, employerID, "Frontend Engineer", true)
	db.addUser(4, "bob@mail.test", model.RoleJobSeeker)
	bob := Caller{ID: 4, Role: model.RoleJobSeeker}

	for _, step := range []struct {
		who Caller
		job uint64
	}{{seeker, jobID}, {bob, jobID}, {bob, 5}} {
		_, err := svc.Apply(ctx, step.who, step.job, "")
		require.NoError(t, err)
	}

	pending, err := svc.ListApplications(ctx, employer)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, uint64(5), pending[0].JobDetails.ID)
	assert.Equal(t, uint64(seekerID), pending[1].ApplicantProfile.ID)
	assert.Equal(t, uint64(4), pending[2].ApplicantProfile.ID)
}

func TestApplyShortlistScenario(t *testing.T) {
	db := newMemDB()
	e1 := db.addUser(1, "e1@corp.test", model.RoleEmployer)
	u1 := db.addUser(2, "u1@mail.test", model.RoleJobSeeker)
	db.addJob(7, e1.ID, "Backend Engineer", true)
	svc := NewApplicationService(db, db, nil)
	ctx := context.Background()
	e := Caller{ID: e1.ID, Role: model.RoleEmployer}

	_, err := svc.Apply(ctx, Caller{ID: u1.ID, Role: model.RoleJobSeeker}, 7, "Hi")
	require.NoError(t, err)

	apps, err := svc.ListApplications(ctx, e)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, u1.Public(), apps[0].ApplicantProfile)
	assert.Equal(t, "Backend Engineer", apps[0].JobDetails.Title)

	require.NoError(t, svc.Shortlist(ctx, e, 7, u1.ID))

	short, err := svc.ListShortlisted(ctx, e)
	require.NoError(t, err)
	require.Len(t, short, 1)
	assert.Equal(t, apps[0], short[0])

	apps, err = svc.ListApplications(ctx, e)
	require.NoError(t, err)
	assert.Empty(t, apps)
}
