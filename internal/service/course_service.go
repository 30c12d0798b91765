package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/scuola-app/scuola-api/internal/models"
	appErrors "github.com/scuola-app/scuola-api/pkg/errors"
)

// PopularCoursesCacheKey holds the cached popular-courses payload.
const PopularCoursesCacheKey = "catalog:popular_courses"

type courseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ListApproved(ctx context.Context, byStudents bool, limit int) ([]models.Course, error)
	ListAll(ctx context.Context) ([]models.Course, error)
	ListByInstructor(ctx context.Context, email string) ([]models.Course, error)
	UpdateFields(ctx context.Context, id string, update models.CourseUpdate) error
	SetStatus(ctx context.Context, id string, status models.CourseStatus) error
	SetFeedback(ctx context.Context, id, feedback string) error
	Delete(ctx context.Context, id string) error
}

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// SubmitCourseRequest is an instructor's course submission. Status is forced
// to pending regardless of the payload.
type SubmitCourseRequest struct {
	CourseName      string          `json:"courseName" validate:"required"`
	Image           string          `json:"image"`
	InstructorName  string          `json:"instructorName"`
	InstructorEmail string          `json:"instructorEmail" validate:"required,email"`
	AvailableSeats  int             `json:"availableSeats" validate:"gte=0"`
	CoursePrice     decimal.Decimal `json:"coursePrice"`
}

// FeedbackRequest carries moderation feedback.
type FeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required"`
}

// CourseService orchestrates the catalog: public visibility, instructor
// submissions and admin moderation.
type CourseService struct {
	repo         courseRepository
	users        userReader
	cache        catalogCache
	validator    *validator.Validate
	logger       *zap.Logger
	popularLimit int
	popularTTL   time.Duration
}

// NewCourseService constructs a CourseService instance.
func NewCourseService(repo courseRepository, users userReader, cache catalogCache, validate *validator.Validate, logger *zap.Logger, popularLimit int, popularTTL time.Duration) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if popularLimit <= 0 {
		popularLimit = 6
	}
	return &CourseService{repo: repo, users: users, cache: cache, validator: validate, logger: logger, popularLimit: popularLimit, popularTTL: popularTTL}
}

// PublicCatalog lists approved courses only; pending and denied submissions
// never leak into the public view.
func (s *CourseService) PublicCatalog(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.ListApproved(ctx, false, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// PopularCourses returns the top approved courses by enrollment count,
// served from cache when fresh.
func (s *CourseService) PopularCourses(ctx context.Context) ([]models.Course, error) {
	if s.cache != nil {
		var cached []models.Course
		if err := s.cache.Get(ctx, PopularCoursesCacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("popular courses cache read failed", zap.Error(err))
		}
	}

	courses, err := s.repo.ListApproved(ctx, true, s.popularLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank courses")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, PopularCoursesCacheKey, courses, s.popularTTL); err != nil {
			s.logger.Warn("popular courses cache write failed", zap.Error(err))
		}
	}

	return courses, nil
}

// AllCourses lists every course for moderation.
func (s *CourseService) AllCourses(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Submit creates a pending course submission.
func (s *CourseService) Submit(ctx context.Context, req SubmitCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course := &models.Course{
		CourseName:      req.CourseName,
		Image:           req.Image,
		InstructorName:  req.InstructorName,
		InstructorEmail: req.InstructorEmail,
		Status:          models.CourseStatusPending,
		AvailableSeats:  req.AvailableSeats,
		CoursePrice:     req.CoursePrice,
	}

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	return course, nil
}

// InstructorCourses lists an instructor's own submissions, any status.
func (s *CourseService) InstructorCourses(ctx context.Context, email string) ([]models.Course, error) {
	courses, err := s.repo.ListByInstructor(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructor courses")
	}
	return courses, nil
}

// InstructorProfile resolves a public instructor page: the user record plus
// every course they teach.
func (s *CourseService) InstructorProfile(ctx context.Context, userID string) (*models.InstructorProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}

	courses, err := s.repo.ListByInstructor(ctx, user.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructor courses")
	}

	return &models.InstructorProfile{Instructor: user, Courses: courses}, nil
}

// Get returns one course by id.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Update overwrites the editable fields of a course.
func (s *CourseService) Update(ctx context.Context, id string, req models.CourseUpdate) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if req.Status == "" {
		req.Status = models.CourseStatusPending
	}
	if err := s.repo.UpdateFields(ctx, id, req); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	s.invalidatePopular(ctx)
	return nil
}

// Approve makes a submission publicly visible.
func (s *CourseService) Approve(ctx context.Context, id string) error {
	return s.moderate(ctx, id, models.CourseStatusApproved)
}

// Deny rejects a submission.
func (s *CourseService) Deny(ctx context.Context, id string) error {
	return s.moderate(ctx, id, models.CourseStatusDenied)
}

func (s *CourseService) moderate(ctx context.Context, id string, status models.CourseStatus) error {
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set course status")
	}
	s.logger.Info("course moderated", zap.String("course_id", id), zap.String("status", string(status)))
	s.invalidatePopular(ctx)
	return nil
}

// Feedback stores admin feedback on a submission.
func (s *CourseService) Feedback(ctx context.Context, id string, req FeedbackRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback payload")
	}
	if err := s.repo.SetFeedback(ctx, id, req.Feedback); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store feedback")
	}
	return nil
}

// Delete removes a course, owner or admin action.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.invalidatePopular(ctx)
	return nil
}

func (s *CourseService) invalidatePopular(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, PopularCoursesCacheKey); err != nil {
		s.logger.Warn("popular courses cache invalidation failed", zap.Error(err))
	}
}
