package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Payment is the immutable settlement record: once written it is never
// mutated or deleted. Counters and cart state are projections derived from it.
type Payment struct {
	ID                string          `db:"id" json:"id"`
	BuyerEmail        string          `db:"buyer_email" json:"buyerEmail"`
	CourseIDs         pq.StringArray  `db:"course_ids" json:"courseId"`
	SelectedCourseIDs pq.StringArray  `db:"selected_course_ids" json:"selectedCourseId"`
	Amount            decimal.Decimal `db:"amount" json:"amount"`
	TransactionID     string          `db:"transaction_id" json:"transactionId"`
	PaidAt            time.Time       `db:"paid_at" json:"date"`
}

// SettlementResult reports a completed settlement: the durable payment write
// plus the applied counts of the best-effort bookkeeping steps. A course
// adjustment count lower than the requested count means some purchased ids
// were unknown; the mismatch is surfaced, not rolled back.
type SettlementResult struct {
	PaymentID        string `json:"insertedId"`
	CoursesRequested int    `json:"coursesRequested"`
	CoursesAdjusted  int    `json:"coursesAdjusted"`
	CartItemsRemoved int    `json:"deletedCount"`
	CounterMismatch  bool   `json:"counterMismatch"`
}
