package users

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertFromAuth records the identity returned by an OAuth login.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(user.Email) == "" {
		return User{}, errors.New("user email is required")
	}
	return s.Repo.Upsert(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

// EnsureGuest makes sure a guest principal owns a users row so plans and tasks can reference it.
func (s *Service) EnsureGuest(ctx context.Context, principal string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if user, err := s.Repo.GetByID(ctx, principal); err == nil {
		return user, nil
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}
	guestID := strings.TrimPrefix(principal, "guest:")
	return s.Repo.Upsert(ctx, User{
		ID:    principal,
		Email: guestID + "@guest.local",
		Name:  "Guest",
	})
}

// EnsureOwner guarantees principal has a users row; guests are created on demand.
func (s *Service) EnsureOwner(ctx context.Context, principal string) error {
	if strings.HasPrefix(principal, "guest:") {
		_, err := s.EnsureGuest(ctx, principal)
		return err
	}
	_, err := s.GetByID(ctx, principal)
	return err
}
