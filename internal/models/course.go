package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CourseStatus gates catalog visibility: only approved courses are public.
type CourseStatus string

const (
	CourseStatusPending  CourseStatus = "pending"
	CourseStatusApproved CourseStatus = "approved"
	CourseStatusDenied   CourseStatus = "denied"
)

// Course is a catalog record. AvailableSeats and TotalStudents are live
// counters mutated only by the settlement engine or a direct admin edit.
type Course struct {
	ID              string          `db:"id" json:"id"`
	CourseName      string          `db:"course_name" json:"courseName"`
	Image           string          `db:"image" json:"image"`
	InstructorName  string          `db:"instructor_name" json:"instructorName"`
	InstructorEmail string          `db:"instructor_email" json:"instructorEmail"`
	Status          CourseStatus    `db:"status" json:"status"`
	AvailableSeats  int             `db:"available_seats" json:"availableSeats"`
	TotalStudents   int             `db:"total_students" json:"totalStudents"`
	CoursePrice     decimal.Decimal `db:"course_price" json:"coursePrice"`
	Feedback        string          `db:"feedback" json:"feedback,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// CourseUpdate carries the instructor-editable fields.
type CourseUpdate struct {
	CourseName      string          `json:"courseName" validate:"required"`
	Image           string          `json:"image"`
	InstructorName  string          `json:"instructorName"`
	InstructorEmail string          `json:"instructorEmail" validate:"required,email"`
	Status          CourseStatus    `json:"status" validate:"omitempty,oneof=pending approved denied"`
	AvailableSeats  int             `json:"availableSeats" validate:"gte=0"`
	CoursePrice     decimal.Decimal `json:"coursePrice"`
}

// InstructorProfile combines an instructor record with their courses.
type InstructorProfile struct {
	Instructor *User    `json:"result"`
	Courses    []Course `json:"classesResult"`
}
