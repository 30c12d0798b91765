package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/scuola-app/scuola-api/internal/models"
)

func newPaymentRepoMock(t *testing.T) (*PaymentRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewPaymentRepository(sqlxDB, NewCourseRepository(sqlxDB), NewCartRepository(sqlxDB))
	return repo, mock, func() { db.Close() }
}

func TestPaymentRepositorySettleCommitsAllWrites(t *testing.T) {
	repo, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses SET available_seats = available_seats + $1")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM selected_classes WHERE id = ANY($1)")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	payment := &models.Payment{
		BuyerEmail:        "student@example.com",
		CourseIDs:         []string{"c-1", "c-2"},
		SelectedCourseIDs: []string{"s-1", "s-2"},
		Amount:            decimal.NewFromInt(55),
		TransactionID:     "pi_123",
	}

	outcome, err := repo.Settle(context.Background(), payment, -1, 1)
	require.NoError(t, err)
	require.NotEmpty(t, payment.ID)
	require.Equal(t, payment.ID, outcome.PaymentID)
	require.Equal(t, int64(2), outcome.CoursesAdjusted)
	require.Equal(t, int64(2), outcome.CartItemsRemoved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositorySettleToleratesUnknownCourseIDs(t *testing.T) {
	repo, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	// one of the three ids no longer exists, only two rows are touched
	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM selected_classes")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	payment := &models.Payment{
		BuyerEmail:        "student@example.com",
		CourseIDs:         []string{"c-1", "c-2", "ghost"},
		SelectedCourseIDs: []string{"s-1", "s-2", "s-3"},
		Amount:            decimal.NewFromInt(80),
	}

	outcome, err := repo.Settle(context.Background(), payment, -1, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), outcome.CoursesAdjusted)
	require.Equal(t, int64(3), outcome.CartItemsRemoved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositorySettleRollsBackOnCounterFailure(t *testing.T) {
	repo, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE courses")).
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	payment := &models.Payment{
		BuyerEmail: "student@example.com",
		CourseIDs:  []string{"c-1"},
		Amount:     decimal.NewFromInt(25),
	}

	_, err := repo.Settle(context.Background(), payment, -1, 1)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositorySettleRollsBackOnInsertFailure(t *testing.T) {
	repo, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	payment := &models.Payment{BuyerEmail: "student@example.com", CourseIDs: []string{"c-1"}}
	_, err := repo.Settle(context.Background(), payment, -1, 1)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryFindByID(t *testing.T) {
	repo, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "buyer_email", "course_ids", "selected_course_ids", "amount", "transaction_id", "paid_at"}).
		AddRow("p-1", "student@example.com", "{c-1,c-2}", "{s-1}", "55.00", "pi_123", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE id = $1")).
		WithArgs("p-1").
		WillReturnRows(rows)

	payment, err := repo.FindByID(context.Background(), "p-1")
	require.NoError(t, err)
	require.Equal(t, []string{"c-1", "c-2"}, []string(payment.CourseIDs))
	require.Equal(t, "pi_123", payment.TransactionID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryListByBuyer(t *testing.T) {
	repo, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "buyer_email", "course_ids", "selected_course_ids", "amount", "transaction_id", "paid_at"}).
		AddRow("p-2", "student@example.com", "{c-3}", "{}", "30.00", "pi_456", time.Now()).
		AddRow("p-1", "student@example.com", "{c-1,c-2}", "{s-1}", "55.00", "pi_123", time.Now().Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE buyer_email = $1 ORDER BY paid_at DESC")).
		WithArgs("student@example.com").
		WillReturnRows(rows)

	payments, err := repo.ListByBuyer(context.Background(), "student@example.com")
	require.NoError(t, err)
	require.Len(t, payments, 2)
	require.Equal(t, "p-2", payments[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
