package testutil

import (
	"context"
	"sync"

	ierr "gulmohar/billing/internal/errors"
	"gulmohar/billing/internal/models"
	"gulmohar/billing/internal/repository"
	"gulmohar/billing/internal/utils"
)

// InMemoryUserStore implements repository.UserRepository.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[utils.SixID]*models.User
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[utils.SixID]*models.User)}
}

var _ repository.UserRepository = (*InMemoryUserStore)(nil)

func (s *InMemoryUserStore) Insert(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return ierr.NewErrorf("duplicate username %s", user.Username).
				WithHintf("username %s is already taken", user.Username).
				Mark(ierr.ErrAlreadyExists)
		}
	}
	user.GenIDIfEmpty()
	c := *user
	s.users[user.ID] = &c
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id utils.SixID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, notFound("User")
	}
	c := *u
	return &c, nil
}

func (s *InMemoryUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, notFound("User")
}

func (s *InMemoryUserStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}
