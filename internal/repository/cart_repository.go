package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/scuola-app/scuola-api/internal/models"
)

const cartColumns = "id, email, course_id, course_name, image, course_price, created_at"

// CartRepository stores selected classes, the pending state before payment.
type CartRepository struct {
	db *sqlx.DB
}

// NewCartRepository constructs the repository.
func NewCartRepository(db *sqlx.DB) *CartRepository {
	return &CartRepository{db: db}
}

// Create adds a cart item. Duplicate selections of the same course by the
// same student are allowed.
func (r *CartRepository) Create(ctx context.Context, item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO selected_classes (id, email, course_id, course_name, image, course_price, created_at)
        VALUES (:id, :email, :course_id, :course_name, :image, :course_price, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create cart item: %w", err)
	}
	return nil
}

// ListByStudent returns a student's pending selections, oldest first.
func (r *CartRepository) ListByStudent(ctx context.Context, email string) ([]models.CartItem, error) {
	const query = `SELECT ` + cartColumns + ` FROM selected_classes WHERE email = $1 ORDER BY created_at ASC`
	var items []models.CartItem
	if err := r.db.SelectContext(ctx, &items, query, email); err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	return items, nil
}

// DeleteByID removes a single cart item.
func (r *CartRepository) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM selected_classes WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete cart item rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteMany retires a batch of cart items in one statement and reports how
// many were actually removed. Callers inside the settlement transaction pass
// their tx as ext.
func (r *CartRepository) DeleteMany(ctx context.Context, ext sqlx.ExtContext, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if ext == nil {
		ext = r.db
	}
	const query = `DELETE FROM selected_classes WHERE id = ANY($1)`
	res, err := ext.ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete cart items: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete cart items rows affected: %w", err)
	}
	return removed, nil
}
