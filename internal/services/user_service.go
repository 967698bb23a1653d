package services

import (
	"errors"
	"fmt"

	"github.com/SmaylovSerikbay/locals-sub000/internal/models"
	"github.com/SmaylovSerikbay/locals-sub000/internal/repository"
	"gorm.io/gorm"
)

// UserService syncs users from the external auth provider and serves
// profile reads.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// SyncUserInput represents the identity fields delivered by the external
// auth provider.
type SyncUserInput struct {
	ID        uint64
	FirstName string
	LastName  string
	Username  string
	AvatarURL string
}

// Sync upserts the user by external id. First sync creates the record with
// the default reputation; later syncs only refresh profile fields.
func (s *UserService) Sync(input SyncUserInput) (*models.User, error) {
	if input.ID == 0 {
		return nil, ErrUserNotFound
	}

	user := &models.User{
		ID:        input.ID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Username:  input.Username,
		AvatarURL: input.AvatarURL,
	}
	if err := s.userRepo.Upsert(user); err != nil {
		return nil, fmt.Errorf("failed to sync user: %w", err)
	}

	return s.userRepo.FindByID(input.ID)
}

// Get returns a user by id
func (s *UserService) Get(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
