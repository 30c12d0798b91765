package models

import "time"

// UserRole is the closed set of roles for access control. A record without an
// explicit role is treated as a student, the lowest privilege.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// User is an application user stored in the users table. Records are created
// on first sign-in and never duplicated for the same email.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PhotoURL     string    `db:"photo_url" json:"photoURL,omitempty"`
	Role         UserRole  `db:"role" json:"role"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// InstructorRanking pairs an instructor with the enrollment total across
// their approved courses, for the popular-instructors listing.
type InstructorRanking struct {
	User
	TotalStudents int `db:"total_students" json:"totalStudents"`
}

// AdminCheck answers the admin self-check endpoint.
type AdminCheck struct {
	Admin bool `json:"admin"`
}
