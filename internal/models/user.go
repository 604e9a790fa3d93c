// Package models contains the domain structures of the taskboard service and
// the request types used to receive data from JSON requests before conversion.
package models

import "time"

// Role values stored in users.role.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents a registered user of the system.
type User struct {
	UID          string    // unique identifier, generated by the service
	Username     string    // unique username
	Email        string    // unique email address
	PasswordHash string    // bcrypt hash of the password
	PhoneNumber  string    // optional contact phone
	Role         string    // admin or user
	CreatedAt    time.Time
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserSummary is the public view of a user. The password hash never leaves
// the service layer.
type UserSummary struct {
	UID         string `json:"uid"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number,omitempty"`
	IsAdmin     bool   `json:"is_admin"`
}

// Summary converts a User to its public view.
func (u *User) Summary() UserSummary {
	return UserSummary{
		UID:         u.UID,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		IsAdmin:     u.IsAdmin(),
	}
}

// Caller is the authenticated identity extracted from a verified token.
type Caller struct {
	UID      string
	Username string
	Role     string
}

// UserRef is a minimal user reference resolved into task views.
type UserRef struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
}

// DummyUser receives the data of a create-user request.
type DummyUser struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	PhoneNumber string `json:"phone_number,omitempty"`
	IsAdmin     bool   `json:"is_admin,omitempty"`
}

// DummyLogin receives the data of a login request.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DummyProfileUpdate receives the data of a profile self-service request.
// Phone number updates unconditionally when provided; a password change
// requires the current password to match.
type DummyProfileUpdate struct {
	PhoneNumber     *string `json:"phone_number,omitempty"`
	CurrentPassword string  `json:"current_password,omitempty"`
	NewPassword     string  `json:"new_password,omitempty" validate:"omitempty,min=6"`
}
