// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/sqlarena/sqlarena/internal/model"
)

// RegisterRequest represents the request body for POST /api/users/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for POST /api/users/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisteredUser is the user view returned after registration.
type RegisteredUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoggedInUser is the user view returned after login.
type LoggedInUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RegisterResponse is the data payload of a successful registration.
type RegisterResponse struct {
	User  RegisteredUser `json:"user"`
	Token string         `json:"token"`
}

// LoginResponse is the data payload of a successful login.
type LoginResponse struct {
	User  LoggedInUser `json:"user"`
	Token string       `json:"token"`
}

// ToRegisterResponse converts a created user and its token to the response payload.
func ToRegisterResponse(user *model.User, token string) RegisterResponse {
	return RegisterResponse{
		User: RegisteredUser{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		},
		Token: token,
	}
}

// ToLoginResponse converts an authenticated user and its token to the response payload.
func ToLoginResponse(user *model.User, token string) LoginResponse {
	return LoginResponse{
		User: LoggedInUser{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
		Token: token,
	}
}
