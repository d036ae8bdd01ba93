package service

import (
	"context"
	"errors"

	"github.com/iliyamo/jobhunter/internal/model"
	"github.com/iliyamo/jobhunter/internal/repository"
)

// ModerationStore is the persistence the admin operations need.
type ModerationStore interface {
	InTx(ctx context.Context, fn func(repository.ModerationTx) error) error
	Stats(ctx context.Context) (model.Stats, error)
}

// ModerationService runs the admin cascades.  Each cascade is one
// transaction: either every dependent row goes with the target or nothing
// changes.
type ModerationService struct {
	store ModerationStore
}

func NewModerationService(store ModerationStore) *ModerationService {
	return &ModerationService{store: store}
}

// DeleteUser removes userID and everything that references it.
func (s *ModerationService) DeleteUser(ctx context.Context, callerID, userID uint64) error {
	return s.deleteAccount(ctx, callerID, userID, false)
}

// DeleteCompany is DeleteUser restricted to employers.
func (s *ModerationService) DeleteCompany(ctx context.Context, callerID, userID uint64) error {
	return s.deleteAccount(ctx, callerID, userID, true)
}

func (s *ModerationService) deleteAccount(ctx context.Context, callerID, userID uint64, companyOnly bool) error {
	if callerID == userID {
		return repository.ErrSelfDelete
	}
	return s.store.InTx(ctx, func(tx repository.ModerationTx) error {
		u, err := tx.LockUser(ctx, userID)
		if err != nil {
			if companyOnly && errors.Is(err, repository.ErrNotFound) {
				return repository.ErrCompanyNotFound
			}
			return err
		}
		if companyOnly && u.Role != model.RoleEmployer {
			return repository.ErrCompanyNotFound
		}
		if u.Role == model.RoleAdmin {
			n, err := tx.CountAdmins(ctx)
			if err != nil {
				return err
			}
			if n <= 1 {
				return repository.ErrLastAdmin
			}
		}
		// Both cleanups run whatever the current role: a promoted employer
		// still owns jobs and a former job seeker may still hold records.
		if err := tx.DeleteOwnedJobs(ctx, u.ID); err != nil {
			return err
		}
		if err := tx.DeleteApplicantData(ctx, u.ID); err != nil {
			return err
		}
		if err := tx.DetachFeedback(ctx, u.ID); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, u.ID)
	})
}

// DeleteJob removes jobID, its applications and saved-job references.
func (s *ModerationService) DeleteJob(ctx context.Context, jobID uint64) error {
	return s.store.InTx(ctx, func(tx repository.ModerationTx) error {
		return tx.DeleteJob(ctx, jobID)
	})
}

// Promote makes userID an admin.  Promoting an admin is a no-op.
func (s *ModerationService) Promote(ctx context.Context, userID uint64) (*model.User, error) {
	var out *model.User
	err := s.store.InTx(ctx, func(tx repository.ModerationTx) error {
		u, err := tx.LockUser(ctx, userID)
		if err != nil {
			return err
		}
		if u.Role != model.RoleAdmin {
			if err := tx.SetRole(ctx, u.ID, model.RoleAdmin); err != nil {
				return err
			}
			u.Role = model.RoleAdmin
		}
		out = u
		return nil
	})
	return out, err
}

func (s *ModerationService) Stats(ctx context.Context) (model.Stats, error) {
	return s.store.Stats(ctx)
}
