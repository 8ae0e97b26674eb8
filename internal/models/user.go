package models

import "time"

// Role controls access to content-authoring and admin endpoints.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// User represents an account in the system.
type User struct {
	ID            int64
	Email         string
	PasswordHash  string
	Name          string
	Role          Role
	OAuthProvider string
	OAuthSubject  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanAuthorContent reports whether the user may create or edit questions.
func (u *User) CanAuthorContent() bool {
	return u.Role == RoleTeacher || u.Role == RoleAdmin
}
