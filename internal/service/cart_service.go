package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/scuola-app/scuola-api/internal/models"
	appErrors "github.com/scuola-app/scuola-api/pkg/errors"
)

type cartRepository interface {
	Create(ctx context.Context, item *models.CartItem) error
	ListByStudent(ctx context.Context, email string) ([]models.CartItem, error)
	DeleteByID(ctx context.Context, id string) error
}

// SelectClassRequest is the add-to-cart payload.
type SelectClassRequest struct {
	Email       string          `json:"email" validate:"required,email"`
	CourseID    string          `json:"courseId" validate:"required"`
	CourseName  string          `json:"courseName"`
	Image       string          `json:"image"`
	CoursePrice decimal.Decimal `json:"coursePrice"`
}

// CartService manages selected classes, the pending state before payment.
type CartService struct {
	repo      cartRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCartService constructs a CartService instance.
func NewCartService(repo cartRepository, validate *validator.Validate, logger *zap.Logger) *CartService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{repo: repo, validator: validate, logger: logger}
}

// Add stores a selection. Duplicate adds of the same course are tolerated.
func (s *CartService) Add(ctx context.Context, req SelectClassRequest) (*models.CartItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection payload")
	}

	item := &models.CartItem{
		Email:       req.Email,
		CourseID:    req.CourseID,
		CourseName:  req.CourseName,
		Image:       req.Image,
		CoursePrice: req.CoursePrice,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store selection")
	}

	return item, nil
}

// ListForStudent returns the student's pending selections.
func (s *CartService) ListForStudent(ctx context.Context, email string) ([]models.CartItem, error) {
	items, err := s.repo.ListByStudent(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list selections")
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}

// Remove deletes a selection explicitly, before settlement consumes it.
func (s *CartService) Remove(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "selection not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove selection")
	}
	return nil
}
