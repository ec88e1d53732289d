package services

import (
	"context"
	"errors"
	"strings"

	"github.com/mingle-social/apiserver/internal/store"
	"github.com/mingle-social/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	List(ctx context.Context, offset, limit int) ([]types.User, int, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	SetActive(ctx context.Context, id int, active bool) error
	Delete(ctx context.Context, id int) error
}

// ProfileUpdate carries the mutable profile fields. Nil pointers leave
// the current value untouched.
type ProfileUpdate struct {
	Name    *string
	Surname *string
	Age     *int
	Avatar  *string
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUserNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]types.User, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, offset, limit)
}

// UpdateProfile applies the given profile fields to the user's account.
// Ownership is enforced by the caller passing the authenticated user id.
func (s *UserService) UpdateProfile(ctx context.Context, userID int, update ProfileUpdate) (types.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return types.User{}, err
	}

	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Surname != nil {
		user.Surname = strings.TrimSpace(*update.Surname)
	}
	if update.Age != nil {
		user.Age = *update.Age
	}
	if update.Avatar != nil {
		user.Avatar = *update.Avatar
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUserNotFound
		}
		return types.User{}, err
	}
	return updated, nil
}

// Deactivate soft-deletes the account: the row stays but the user can no
// longer authenticate.
func (s *UserService) Deactivate(ctx context.Context, userID int) error {
	if err := s.repo.SetActive(ctx, userID, false); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// Delete removes the account for good. Owned posts and their reactions
// cascade at the storage layer, and counters on other users' posts the
// account reacted to are adjusted in the same transaction.
func (s *UserService) Delete(ctx context.Context, userID int) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
