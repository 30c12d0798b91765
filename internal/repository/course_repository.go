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

const courseColumns = "id, course_name, image, instructor_name, instructor_email, status, available_seats, total_students, course_price, feedback, created_at, updated_at"

// CourseRepository handles persistence of catalog records.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create persists a new course submission.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.Status == "" {
		course.Status = models.CourseStatusPending
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	const query = `INSERT INTO courses (id, course_name, image, instructor_name, instructor_email, status, available_seats, total_students, course_price, feedback, created_at, updated_at)
        VALUES (:id, :course_name, :image, :instructor_name, :instructor_email, :status, :available_seats, :total_students, :course_price, :feedback, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// FindByID returns a course by identifier.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM courses WHERE id = $1 LIMIT 1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course by id: %w", err)
	}
	return &course, nil
}

// ListApproved returns publicly visible courses. With byStudents the result is
// ranked by enrollment count descending (ties keep insertion order); limit <= 0
// means no limit.
func (r *CourseRepository) ListApproved(ctx context.Context, byStudents bool, limit int) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE status = $1 ORDER BY created_at ASC`
	if byStudents {
		query = `SELECT ` + courseColumns + ` FROM courses WHERE status = $1 ORDER BY total_students DESC, created_at ASC`
	}
	args := []interface{}{models.CourseStatusApproved}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list approved courses: %w", err)
	}
	return courses, nil
}

// ListAll returns every course for moderation, grouped by status.
func (r *CourseRepository) ListAll(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM courses ORDER BY status DESC, created_at ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list all courses: %w", err)
	}
	return courses, nil
}

// ListByInstructor returns an instructor's submissions, any status.
func (r *CourseRepository) ListByInstructor(ctx context.Context, email string) ([]models.Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM courses WHERE instructor_email = $1 ORDER BY created_at ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, email); err != nil {
		return nil, fmt.Errorf("list instructor courses: %w", err)
	}
	return courses, nil
}

// ListByIDs resolves a batch of course identifiers; unknown ids are skipped.
func (r *CourseRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT ` + courseColumns + ` FROM courses WHERE id = ANY($1) ORDER BY created_at ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list courses by ids: %w", err)
	}
	return courses, nil
}

// UpdateFields overwrites the instructor-editable fields of a course.
func (r *CourseRepository) UpdateFields(ctx context.Context, id string, update models.CourseUpdate) error {
	const query = `UPDATE courses SET course_name = $2, image = $3, instructor_name = $4, instructor_email = $5, status = $6, available_seats = $7, course_price = $8, updated_at = $9 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, update.CourseName, update.Image, update.InstructorName, update.InstructorEmail, update.Status, update.AvailableSeats, update.CoursePrice, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update course rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetStatus transitions a course's moderation status.
func (r *CourseRepository) SetStatus(ctx context.Context, id string, status models.CourseStatus) error {
	const query = `UPDATE courses SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set course status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set course status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetFeedback stores admin feedback on a submission.
func (r *CourseRepository) SetFeedback(ctx context.Context, id, feedback string) error {
	const query = `UPDATE courses SET feedback = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, feedback, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set course feedback: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set course feedback rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AdjustCounters applies the same seat/enrollment delta to every course in the
// batch as a single statement, using column arithmetic so the store performs
// the increment atomically per row. Returns how many rows were touched; ids
// that no longer exist simply do not count. Callers inside the settlement
// transaction pass their tx as ext.
func (r *CourseRepository) AdjustCounters(ctx context.Context, ext sqlx.ExtContext, ids []string, seatsDelta, studentsDelta int) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if ext == nil {
		ext = r.db
	}
	const query = `UPDATE courses SET available_seats = available_seats + $1, total_students = total_students + $2, updated_at = $3 WHERE id = ANY($4)`
	res, err := ext.ExecContext(ctx, query, seatsDelta, studentsDelta, time.Now().UTC(), pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("adjust course counters: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("adjust course counters rows affected: %w", err)
	}
	return affected, nil
}

// Delete removes a course by id, owner or admin action.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM courses WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete course rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
