package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/scuola-app/scuola-api/internal/models"
	"github.com/scuola-app/scuola-api/internal/repository"
	appErrors "github.com/scuola-app/scuola-api/pkg/errors"
	"github.com/scuola-app/scuola-api/pkg/export"
	"github.com/scuola-app/scuola-api/pkg/payment"
)

type settlementRepository interface {
	Settle(ctx context.Context, payment *models.Payment, seatsDelta, studentsDelta int) (*repository.SettlementOutcome, error)
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	ListByBuyer(ctx context.Context, email string) ([]models.Payment, error)
}

type courseBatchReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Course, error)
}

type receiptRenderer interface {
	Render(r export.Receipt) ([]byte, error)
}

type receiptStore interface {
	Save(filename string, data []byte) (string, error)
}

// CreateIntentRequest carries the price for a payment authorization.
type CreateIntentRequest struct {
	Price decimal.Decimal `json:"price"`
}

// IntentResponse hands the provider's client secret back for card
// confirmation on the client side.
type IntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// PaymentRequest is the completed payment payload submitted after the client
// confirmed the intent: the purchased course ids and the cart items to retire.
type PaymentRequest struct {
	BuyerEmail        string          `json:"buyerEmail" validate:"required,email"`
	CourseIDs         []string        `json:"courseId" validate:"required,min=1,dive,required"`
	SelectedCourseIDs []string        `json:"selectedCourseId" validate:"dive,required"`
	Amount            decimal.Decimal `json:"amount"`
	TransactionID     string          `json:"transactionId"`
}

// PaymentService is the settlement engine. A settlement converts a cart into
// one immutable payment record plus per-course counter mutations; the payment
// record is the durable fact, counters and cart are projections.
type PaymentService struct {
	repo      settlementRepository
	courses   courseBatchReader
	cache     catalogCache
	provider  payment.IntentCreator
	receipts  receiptRenderer
	archive   receiptStore
	onSettled func(paymentID string)
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	currency  string
}

// NewPaymentService constructs a PaymentService instance.
func NewPaymentService(repo settlementRepository, courses courseBatchReader, cache catalogCache, provider payment.IntentCreator, receipts receiptRenderer, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, currency string) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if currency == "" {
		currency = "usd"
	}
	return &PaymentService{repo: repo, courses: courses, cache: cache, provider: provider, receipts: receipts, metrics: metrics, validator: validate, logger: logger, currency: currency}
}

// SetArchive enables persisting rendered receipts to the given store.
func (s *PaymentService) SetArchive(store receiptStore) {
	s.archive = store
}

// SetSettlementHook registers a callback fired after each successful
// settlement, outside the transaction. Used to hand work to the background
// queue.
func (s *PaymentService) SetSettlementHook(hook func(paymentID string)) {
	s.onSettled = hook
}

// CreateIntent asks the payment provider for an authorization handle. The
// engine never touches card rails; it only forwards the price and returns the
// client secret for client-side confirmation.
func (s *PaymentService) CreateIntent(ctx context.Context, req CreateIntentRequest) (*IntentResponse, error) {
	if !req.Price.IsPositive() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "price must be greater than zero")
	}

	intent, err := s.provider.CreateIntent(ctx, req.Price, s.currency)
	if err != nil {
		s.metrics.ObservePaymentIntent("failure")
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "payment provider rejected the intent")
	}

	s.metrics.ObservePaymentIntent("success")
	return &IntentResponse{ClientSecret: intent.ClientSecret}, nil
}

// Settle runs the settlement transaction for a completed payment. The buyer
// must be the authenticated identity. Each purchased course loses one seat
// and gains one student; the retired cart items disappear. An adjusted-course
// count below the requested count means unknown ids were in the batch: the
// settlement still completes and the mismatch is surfaced to the caller,
// logged, and counted.
func (s *PaymentService) Settle(ctx context.Context, claims *models.TokenClaims, req PaymentRequest) (*models.SettlementResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if claims == nil || claims.Email != req.BuyerEmail {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "payment buyer does not match authenticated user")
	}

	record := &models.Payment{
		BuyerEmail:        req.BuyerEmail,
		CourseIDs:         pq.StringArray(req.CourseIDs),
		SelectedCourseIDs: pq.StringArray(req.SelectedCourseIDs),
		Amount:            req.Amount,
		TransactionID:     req.TransactionID,
	}

	start := time.Now()
	outcome, err := s.repo.Settle(ctx, record, -1, 1)
	if err != nil {
		s.metrics.ObserveSettlement("failure", 0, false, time.Since(start))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "settlement failed")
	}

	requested := len(req.CourseIDs)
	mismatch := outcome.CoursesAdjusted != int64(requested)
	if mismatch {
		s.logger.Warn("settlement counter mismatch",
			zap.String("payment_id", outcome.PaymentID),
			zap.Int("requested", requested),
			zap.Int64("adjusted", outcome.CoursesAdjusted),
		)
	}

	amount, _ := req.Amount.Float64()
	s.metrics.ObserveSettlement("success", amount, mismatch, time.Since(start))
	s.invalidatePopular(ctx)
	if s.onSettled != nil {
		s.onSettled(outcome.PaymentID)
	}

	return &models.SettlementResult{
		PaymentID:        outcome.PaymentID,
		CoursesRequested: requested,
		CoursesAdjusted:  int(outcome.CoursesAdjusted),
		CartItemsRemoved: int(outcome.CartItemsRemoved),
		CounterMismatch:  mismatch,
	}, nil
}

// History resolves a buyer's purchase history into course records.
func (s *PaymentService) History(ctx context.Context, email string) ([]models.Course, error) {
	payments, err := s.repo.ListByBuyer(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, p := range payments {
		for _, id := range p.CourseIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []models.Course{}, nil
	}

	courses, err := s.courses.ListByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve purchased courses")
	}
	return courses, nil
}

// Receipt renders the PDF receipt for a payment owned by the caller.
func (s *PaymentService) Receipt(ctx context.Context, id string, claims *models.TokenClaims) ([]byte, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	if claims == nil || claims.Email != record.BuyerEmail {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "receipt belongs to another buyer")
	}

	return s.renderReceipt(ctx, record)
}

// ArchiveReceipt renders the receipt for a settled payment and persists it to
// the archive. Called from the background queue; failures are retried there.
func (s *PaymentService) ArchiveReceipt(ctx context.Context, paymentID string) error {
	if s.archive == nil {
		return nil
	}

	record, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}

	pdf, err := s.renderReceipt(ctx, record)
	if err != nil {
		return err
	}

	name := "receipt-" + record.ID + ".pdf"
	if _, err := s.archive.Save(name, pdf); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive receipt")
	}

	s.logger.Info("receipt archived", zap.String("payment_id", record.ID), zap.String("file", name))
	return nil
}

func (s *PaymentService) renderReceipt(ctx context.Context, record *models.Payment) ([]byte, error) {
	courses, err := s.courses.ListByIDs(ctx, record.CourseIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve purchased courses")
	}

	receipt := export.Receipt{
		PaymentID:     record.ID,
		BuyerEmail:    record.BuyerEmail,
		TransactionID: record.TransactionID,
		Amount:        record.Amount.StringFixed(2),
		PaidAt:        record.PaidAt,
	}
	for _, c := range courses {
		receipt.Lines = append(receipt.Lines, export.ReceiptLine{
			CourseName: c.CourseName,
			Instructor: c.InstructorName,
			Price:      c.CoursePrice.StringFixed(2),
		})
	}

	pdf, err := s.receipts.Render(receipt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return pdf, nil
}

func (s *PaymentService) invalidatePopular(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, PopularCoursesCacheKey); err != nil {
		s.logger.Warn("popular courses cache invalidation failed", zap.Error(err))
	}
}
