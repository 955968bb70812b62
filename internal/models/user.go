package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	ProfilePicture    string    `json:"profile_picture"`
	GitHubAccessToken string    `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewUser creates a user for a GitHub login
func NewUser(username, name, email, profilePicture, token string) *User {
	return &User{
		ID:                uuid.New(),
		Name:              name,
		Username:          username,
		Email:             email,
		ProfilePicture:    profilePicture,
		GitHubAccessToken: token,
		CreatedAt:         time.Now().UTC(),
	}
}
