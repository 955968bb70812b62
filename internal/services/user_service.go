package services

import (
	"errors"
	"fmt"

	"github.com/alimgiray/better-github/internal/models"
	"github.com/alimgiray/better-github/internal/repositories"
)

type UserService struct {
	userRepo *repositories.UserRepository
}

func NewUserService(userRepo *repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(id string) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// GetUserByUsername retrieves a user by username
func (s *UserService) GetUserByUsername(username string) (*models.User, error) {
	return s.userRepo.GetByUsername(username)
}

// UpsertFromGitHub creates the user on first sign-in and refreshes profile and token afterwards
func (s *UserService) UpsertFromGitHub(ghUser *GitHubUser, accessToken string) (*models.User, error) {
	if ghUser == nil || ghUser.Login == "" {
		return nil, fmt.Errorf("GitHub user has no login")
	}

	user, err := s.userRepo.GetByUsername(ghUser.Login)
	if errors.Is(err, repositories.ErrNotFound) {
		user = models.NewUser(ghUser.Login, ghUser.Name, ghUser.Email, ghUser.AvatarURL, accessToken)
		if err := s.userRepo.Create(user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return user, nil
	}
	if err != nil {
		return nil, err
	}

	user.Username = ghUser.Login
	user.Name = ghUser.Name
	user.ProfilePicture = ghUser.AvatarURL
	user.GitHubAccessToken = accessToken
	if ghUser.Email != "" {
		user.Email = ghUser.Email
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}
