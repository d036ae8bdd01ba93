package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/jobhunter/internal/model"
	"github.com/iliyamo/jobhunter/internal/queue"
	"github.com/iliyamo/jobhunter/internal/repository"
)

// FeedbackStore persists feedback messages.
type FeedbackStore interface {
	Create(ctx context.Context, f *model.FeedbackMessage) error
}

// FeedbackService records feedback from visitors and signed-in users and
// forwards it to the admins.
type FeedbackService struct {
	store  FeedbackStore
	users  UserReader
	events Publisher
}

func NewFeedbackService(store FeedbackStore, users UserReader, events Publisher) *FeedbackService {
	return &FeedbackService{store: store, users: users, events: events}
}

// Submit stores a message.  userID is nil for anonymous visitors; for
// signed-in users a missing name or email is taken from the account.
func (s *FeedbackService) Submit(ctx context.Context, userID *uint64, name, email, message string) (*model.FeedbackMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, invalid("message is required")
	}
	f := &model.FeedbackMessage{
		UserID:   userID,
		UserName: strings.TrimSpace(name),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Message:  message,
	}
	if userID != nil && (f.UserName == "" || f.Email == "") {
		u, err := s.users.GetByID(ctx, *userID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			f.UserID = nil
		case err != nil:
			return nil, err
		default:
			if f.UserName == "" {
				f.UserName = displayName(u)
			}
			if f.Email == "" {
				f.Email = u.Email
			}
		}
	}
	if err := s.store.Create(ctx, f); err != nil {
		return nil, err
	}
	publish(ctx, s.events, queue.FeedbackCreatedEvent{
		FeedbackID: f.ID,
		UserName:   f.UserName,
		Email:      f.Email,
		Message:    f.Message,
	})
	return f, nil
}

// displayName is the name a user is shown under in messages to admins.
func displayName(u *model.User) string {
	switch {
	case u.JobSeeker != nil && u.JobSeeker.Name != "":
		return u.JobSeeker.Name
	case u.Employer != nil && u.Employer.CompanyName != "":
		return u.Employer.CompanyName
	}
	return u.Username
}
