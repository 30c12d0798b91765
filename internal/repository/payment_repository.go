package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scuola-app/scuola-api/internal/models"
)

const paymentColumns = "id, buyer_email, course_ids, selected_course_ids, amount, transaction_id, paid_at"

// SettlementOutcome reports the write counts of one settlement transaction.
type SettlementOutcome struct {
	PaymentID        string
	CoursesAdjusted  int64
	CartItemsRemoved int64
}

// PaymentRepository persists the append-only payment audit trail and runs the
// settlement transaction.
type PaymentRepository struct {
	db      *sqlx.DB
	courses *CourseRepository
	cart    *CartRepository
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB, courses *CourseRepository, cart *CartRepository) *PaymentRepository {
	return &PaymentRepository{db: db, courses: courses, cart: cart}
}

// Insert writes one immutable payment record. ext may be a transaction.
func (r *PaymentRepository) Insert(ctx context.Context, ext sqlx.ExtContext, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.PaidAt.IsZero() {
		payment.PaidAt = time.Now().UTC()
	}
	if ext == nil {
		ext = r.db
	}
	const query = `INSERT INTO payments (id, buyer_email, course_ids, selected_course_ids, amount, transaction_id, paid_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := ext.ExecContext(ctx, query, payment.ID, payment.BuyerEmail, payment.CourseIDs, payment.SelectedCourseIDs, payment.Amount, payment.TransactionID, payment.PaidAt); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// Settle runs the settlement as one transaction: record the payment, adjust
// every purchased course's counters by the given deltas, retire the cart
// items, commit. The payment record is the durable fact; unknown course or
// cart ids reduce the applied counts without aborting the transaction.
func (r *PaymentRepository) Settle(ctx context.Context, payment *models.Payment, seatsDelta, studentsDelta int) (*SettlementOutcome, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin settlement: %w", err)
	}

	if err := r.Insert(ctx, tx, payment); err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, err
	}

	adjusted, err := r.courses.AdjustCounters(ctx, tx, payment.CourseIDs, seatsDelta, studentsDelta)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, err
	}

	removed, err := r.cart.DeleteMany(ctx, tx, payment.SelectedCourseIDs)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit settlement: %w", err)
	}

	return &SettlementOutcome{
		PaymentID:        payment.ID,
		CoursesAdjusted:  adjusted,
		CartItemsRemoved: removed,
	}, nil
}

// FindByID returns a payment record.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 LIMIT 1`
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find payment by id: %w", err)
	}
	return &payment, nil
}

// ListByBuyer returns a buyer's payment history, newest first.
func (r *PaymentRepository) ListByBuyer(ctx context.Context, email string) ([]models.Payment, error) {
	const query = `SELECT ` + paymentColumns + ` FROM payments WHERE buyer_email = $1 ORDER BY paid_at DESC`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, email); err != nil {
		return nil, fmt.Errorf("list payments by buyer: %w", err)
	}
	return payments, nil
}
