package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/jobhunter/internal/ai"
	"github.com/iliyamo/jobhunter/internal/model"
	"github.com/iliyamo/jobhunter/internal/queue"
	"github.com/iliyamo/jobhunter/internal/repository"
	"github.com/iliyamo/jobhunter/internal/utils"
)

var errBoom = errors.New("boom")

// memState is the content of the fake database.  InTx works on a clone
// and swaps it in on success, which gives all-or-nothing semantics.
type memState struct {
	users    map[uint64]*model.User
	jobs     map[uint64]*model.Job
	apps     map[uint64]*model.JobApplication
	notes    []model.Notification
	saved    map[uint64][]uint64
	feedback map[uint64]*model.FeedbackMessage
	refresh  map[uint64]tokenRow
	reset    map[uint64]tokenRow
}

type tokenRow struct {
	hash string
	exp  time.Time
}

func cloneUser(u *model.User) *model.User {
	c := *u
	if u.JobSeeker != nil {
		js := *u.JobSeeker
		js.Skills = append([]string{}, u.JobSeeker.Skills...)
		c.JobSeeker = &js
	}
	if u.Employer != nil {
		e := *u.Employer
		c.Employer = &e
	}
	return &c
}

func (s *memState) clone() *memState {
	c := &memState{
		users:    map[uint64]*model.User{},
		jobs:     map[uint64]*model.Job{},
		apps:     map[uint64]*model.JobApplication{},
		notes:    append([]model.Notification(nil), s.notes...),
		saved:    map[uint64][]uint64{},
		feedback: map[uint64]*model.FeedbackMessage{},
		refresh:  map[uint64]tokenRow{},
		reset:    map[uint64]tokenRow{},
	}
	for k, v := range s.users {
		c.users[k] = cloneUser(v)
	}
	for k, v := range s.jobs {
		j := *v
		c.jobs[k] = &j
	}
	for k, v := range s.apps {
		a := *v
		c.apps[k] = &a
	}
	for k, v := range s.saved {
		c.saved[k] = append([]uint64(nil), v...)
	}
	for k, v := range s.feedback {
		f := *v
		c.feedback[k] = &f
	}
	for k, v := range s.refresh {
		c.refresh[k] = v
	}
	for k, v := range s.reset {
		c.reset[k] = v
	}
	return c
}

// memDB is an in-memory stand-in for the MySQL repositories.
type memDB struct {
	mu     sync.Mutex
	st     *memState
	nextID uint64
	failOn string
}

func newMemDB() *memDB {
	return &memDB{st: (&memState{}).clone(), nextID: 100}
}

func (db *memDB) id() uint64 {
	db.nextID++
	return db.nextID
}

func (db *memDB) fail(op string) error {
	if db.failOn == op {
		return errBoom
	}
	return nil
}

func (db *memDB) addUser(id uint64, email string, role model.Role) *model.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := &model.User{ID: id, Email: email, Username: email, Role: role}
	switch role {
	case model.RoleJobSeeker:
		u.JobSeeker = &model.JobSeekerProfile{Name: email, Skills: []string{}}
	case model.RoleEmployer:
		u.Employer = &model.EmployerProfile{CompanyName: email, AIUseLimit: model.DefaultAIUseLimit}
	}
	db.st.users[id] = u
	return u
}

func (db *memDB) addJob(id, employerID uint64, title string, active bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.st.jobs[id] = &model.Job{ID: id, EmployerID: employerID, Title: title, Active: active, DatePosted: time.Now().UTC()}
}

func (db *memDB) saveJob(userID, jobID uint64) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.st.saved[userID] = append(db.st.saved[userID], jobID)
}

func (db *memDB) snapshot() *memState {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.st.clone()
}

func (db *memDB) pair(jobID, applicantID uint64) *model.JobApplication {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, a := range db.st.apps {
		if a.JobID == jobID && a.ApplicantID == applicantID {
			c := *a
			return &c
		}
	}
	return nil
}

func (db *memDB) inTx(fn func(*memTx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	tx := &memTx{db: db, st: db.st.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	db.st = tx.st
	return nil
}

// ApplicationStore

func (db *memDB) InTx(ctx context.Context, fn func(repository.ApplicationTx) error) error {
	return db.inTx(func(tx *memTx) error { return fn(tx) })
}

func (db *memDB) ListForEmployer(ctx context.Context, employerID uint64, status model.ApplicationStatus) ([]model.ApplicantEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var apps []*model.JobApplication
	for _, a := range db.st.apps {
		if j := db.st.jobs[a.JobID]; j != nil && j.EmployerID == employerID && a.Status == status {
			apps = append(apps, a)
		}
	}
	sort.Slice(apps, func(i, k int) bool {
		if apps[i].JobID != apps[k].JobID {
			return apps[i].JobID < apps[k].JobID
		}
		if !apps[i].AppliedAt.Equal(apps[k].AppliedAt) {
			return apps[i].AppliedAt.Before(apps[k].AppliedAt)
		}
		return apps[i].ID < apps[k].ID
	})
	out := []model.ApplicantEntry{}
	for _, a := range apps {
		j := db.st.jobs[a.JobID]
		out = append(out, model.ApplicantEntry{
			ApplicantProfile: db.st.users[a.ApplicantID].Public(),
			JobDetails:       model.JobRef{ID: j.ID, Title: j.Title},
		})
	}
	return out, nil
}

func (db *memDB) ListMessages(ctx context.Context, employerID uint64) ([]model.ApplicantMessage, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := []model.ApplicantMessage{}
	for _, a := range db.st.apps {
		j := db.st.jobs[a.JobID]
		if j == nil || j.EmployerID != employerID {
			continue
		}
		out = append(out, model.ApplicantMessage{
			ApplicationID: a.ID,
			Job:           model.JobRef{ID: j.ID, Title: j.Title},
			Applicant:     db.st.users[a.ApplicantID].Public(),
			CoverLetter:   a.CoverLetter,
			Status:        a.Status,
			AppliedAt:     a.AppliedAt,
		})
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ApplicationID > out[k].ApplicationID })
	return out, nil
}

// UserReader, AccountStore, ProfileStore, QuotaStore

func (db *memDB) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	u, ok := db.st.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (db *memDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, u := range db.st.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (db *memDB) Create(ctx context.Context, u *model.User, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, o := range db.st.users {
		if o.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = db.id()
	u.Username = u.Email
	u.PasswordHash = hash
	c := *u
	db.st.users[u.ID] = &c
	return nil
}

func (db *memDB) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	u, ok := db.st.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	delete(db.st.refresh, id)
	return nil
}

func (db *memDB) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var n int64
	for _, u := range db.st.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (db *memDB) SaveProfile(ctx context.Context, u *model.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.st.users[u.ID]; !ok {
		return repository.ErrUserNotFound
	}
	c := *u
	db.st.users[u.ID] = &c
	return nil
}

func (db *memDB) ConsumeAIUse(ctx context.Context, employerID uint64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := db.st.users[employerID]
	if u == nil || u.Employer == nil || u.Employer.AIUseLimit <= 0 {
		return repository.ErrQuotaExceeded
	}
	e := *u.Employer
	e.AIUseLimit--
	u.Employer = &e
	return nil
}

// TokenStore

func (db *memDB) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.st.refresh[userID] = tokenRow{hash: tokenHash, exp: exp}
	return nil
}

func (db *memDB) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for id, t := range db.st.refresh {
		if t.hash == tokenHash && time.Now().Before(t.exp) {
			return id, nil
		}
	}
	return 0, repository.ErrInvalidToken
}

func (db *memDB) RevokeForUser(ctx context.Context, userID uint64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.st.refresh, userID)
	return nil
}

func (db *memDB) StoreReset(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.st.reset[userID] = tokenRow{hash: tokenHash, exp: exp}
	return nil
}

func (db *memDB) ResetPassword(ctx context.Context, tokenHash, passwordHash string) (uint64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for id, t := range db.st.reset {
		if t.hash == tokenHash && time.Now().Before(t.exp) {
			db.st.users[id].PasswordHash = passwordHash
			delete(db.st.reset, id)
			delete(db.st.refresh, id)
			return id, nil
		}
	}
	return 0, repository.ErrInvalidToken
}

// memModeration adapts memDB to ModerationStore; its InTx signature
// differs from the application one.
type memModeration struct{ db *memDB }

func (m memModeration) InTx(ctx context.Context, fn func(repository.ModerationTx) error) error {
	return m.db.inTx(func(tx *memTx) error { return fn(tx) })
}

func (m memModeration) Stats(ctx context.Context) (model.Stats, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	st := m.db.st
	s := model.Stats{
		Users:        int64(len(st.users)),
		Jobs:         int64(len(st.jobs)),
		Applications: int64(len(st.apps)),
		Feedback:     int64(len(st.feedback)),
	}
	for _, u := range st.users {
		if u.Role == model.RoleEmployer {
			s.Companies++
		}
	}
	return s, nil
}

// memTx implements repository.ApplicationTx and repository.ModerationTx
// against a private clone of the state.
type memTx struct {
	db *memDB
	st *memState
}

func (t *memTx) LockJob(ctx context.Context, jobID uint64) (*model.Job, error) {
	j, ok := t.st.jobs[jobID]
	if !ok {
		return nil, repository.ErrJobNotFound
	}
	c := *j
	return &c, nil
}

func (t *memTx) LockApplication(ctx context.Context, jobID, applicantID uint64) (*model.JobApplication, error) {
	for _, a := range t.st.apps {
		if a.JobID == jobID && a.ApplicantID == applicantID {
			c := *a
			return &c, nil
		}
	}
	return nil, repository.ErrApplicationNotFound
}

func (t *memTx) InsertApplication(ctx context.Context, a *model.JobApplication) error {
	if err := t.db.fail("InsertApplication"); err != nil {
		return err
	}
	for _, o := range t.st.apps {
		if o.JobID == a.JobID && o.ApplicantID == a.ApplicantID {
			return repository.ErrAlreadyApplied
		}
	}
	a.ID = t.db.id()
	c := *a
	t.st.apps[a.ID] = &c
	return nil
}

func (t *memTx) UpdateApplication(ctx context.Context, a *model.JobApplication) error {
	c := *a
	t.st.apps[a.ID] = &c
	return nil
}

func (t *memTx) InsertNotification(ctx context.Context, n *model.Notification) error {
	if err := t.db.fail("InsertNotification"); err != nil {
		return err
	}
	n.ID = t.db.id()
	t.st.notes = append(t.st.notes, *n)
	return nil
}

func (t *memTx) LockUser(ctx context.Context, id uint64) (*model.User, error) {
	u, ok := t.st.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (t *memTx) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	for _, u := range t.st.users {
		if u.Role == model.RoleAdmin {
			n++
		}
	}
	return n, nil
}

func (t *memTx) dropJob(jobID uint64) {
	for id, a := range t.st.apps {
		if a.JobID == jobID {
			delete(t.st.apps, id)
		}
	}
	for uid, ids := range t.st.saved {
		kept := ids[:0]
		for _, id := range ids {
			if id != jobID {
				kept = append(kept, id)
			}
		}
		t.st.saved[uid] = kept
	}
	delete(t.st.jobs, jobID)
}

func (t *memTx) DeleteOwnedJobs(ctx context.Context, employerID uint64) error {
	if err := t.db.fail("DeleteOwnedJobs"); err != nil {
		return err
	}
	for id, j := range t.st.jobs {
		if j.EmployerID == employerID {
			t.dropJob(id)
		}
	}
	kept := t.st.notes[:0]
	for _, n := range t.st.notes {
		if n.EmployerID != employerID {
			kept = append(kept, n)
		}
	}
	t.st.notes = kept
	return nil
}

func (t *memTx) DeleteApplicantData(ctx context.Context, userID uint64) error {
	for id, a := range t.st.apps {
		if a.ApplicantID == userID {
			delete(t.st.apps, id)
		}
	}
	delete(t.st.saved, userID)
	return nil
}

func (t *memTx) DetachFeedback(ctx context.Context, userID uint64) error {
	for _, f := range t.st.feedback {
		if f.UserID != nil && *f.UserID == userID {
			f.UserID = nil
		}
	}
	return nil
}

func (t *memTx) DeleteUser(ctx context.Context, id uint64) error {
	if err := t.db.fail("DeleteUser"); err != nil {
		return err
	}
	delete(t.st.users, id)
	return nil
}

func (t *memTx) DeleteJob(ctx context.Context, jobID uint64) error {
	if _, ok := t.st.jobs[jobID]; !ok {
		return repository.ErrJobNotFound
	}
	t.dropJob(jobID)
	for i := range t.st.notes {
		if n := &t.st.notes[i]; n.JobID != nil && *n.JobID == jobID {
			n.JobID = nil
		}
	}
	return nil
}

func (t *memTx) SetRole(ctx context.Context, id uint64, role model.Role) error {
	u, ok := t.st.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Role = role
	return nil
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, ev queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events {
		out = append(out, ev.EventType())
	}
	return out
}

type stubGenerator struct {
	calls int
	text  string
	err   error
}

func (g *stubGenerator) JobDescription(ctx context.Context, d ai.JobDetails) (string, error) {
	g.calls++
	return g.text, g.err
}

// memFeedback adapts memDB to FeedbackStore; memDB.Create already creates
// users.
type memFeedback struct{ db *memDB }

func (m memFeedback) Create(ctx context.Context, f *model.FeedbackMessage) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if err := m.db.fail("CreateFeedback"); err != nil {
		return err
	}
	f.ID = m.db.id()
	f.CreatedAt = time.Now().UTC()
	c := *f
	m.db.st.feedback[f.ID] = &c
	return nil
}
