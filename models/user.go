package models

import "time"

// User represents a registered planter.
// PasswordHash is bcrypt; never returned in JSON responses.
type User struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// View returns the sanitized shape sent to clients after signup/login.
func (u User) View() UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserView is the public projection of a User.
type UserView struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SignupRequest is the POST /auth/signup body.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"` // Plaintext; hashed before storage
}

// LoginRequest is the POST /auth/login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by both signup and login.
type AuthResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

// ErrorResponse is the JSON body for failed requests. Field is set only for
// duplicate-field conflicts (409).
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
