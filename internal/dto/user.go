package dto

import (
	"github.com/mkume/task-tracker/internal/models"
)

// UserDTO represents a user's public profile in API responses. The
// password hash never leaves the server.
type UserDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// AuthResponse is returned from register and login: the public profile
// plus a freshly issued bearer token.
type AuthResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}

// ToAuthResponse converts a User model and token to AuthResponse
func ToAuthResponse(user models.User, token string) AuthResponse {
	return AuthResponse{
		ID:       user.ID,
		Username: user.Username,
		Token:    token,
	}
}
