package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is a pending, pre-payment record of a student's intent to enroll.
// It lives only between selection and either explicit removal or settlement.
// Duplicate adds of the same course are tolerated, not deduplicated.
type CartItem struct {
	ID          string          `db:"id" json:"id"`
	Email       string          `db:"email" json:"email"`
	CourseID    string          `db:"course_id" json:"courseId"`
	CourseName  string          `db:"course_name" json:"courseName"`
	Image       string          `db:"image" json:"image"`
	CoursePrice decimal.Decimal `db:"course_price" json:"coursePrice"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}
