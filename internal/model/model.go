package model

import (
	"strings"
	"time"
)

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

const (
	StatusPending = "pending"
	StatusActive  = "active"
)

// ValidRole reports whether role (after normalization) belongs to the
// closed role set. Unknown roles never gain access anywhere.
func ValidRole(role string) bool {
	switch NormalizeRole(role) {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

func NormalizeRole(role string) string {
	return strings.TrimSpace(strings.ToLower(role))
}

func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a Account) Pending() bool {
	return a.Status == StatusPending
}

type RevokedToken struct {
	TokenHash string
	ExpiresAt time.Time
	RevokedAt time.Time
}

type Student struct {
	ID        string
	FullName  string
	Email     string
	DOB       time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Teacher struct {
	ID         string
	FullName   string
	Department string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Course struct {
	ID          string
	Title       string
	Description string
	TeacherID   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Enrollment struct {
	StudentID string
	CourseID  string
	Grade     *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}
