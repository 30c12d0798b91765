package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/scuola-app/scuola-api/internal/models"
	"github.com/scuola-app/scuola-api/internal/repository"
	appErrors "github.com/scuola-app/scuola-api/pkg/errors"
	"github.com/scuola-app/scuola-api/pkg/export"
	"github.com/scuola-app/scuola-api/pkg/payment"
)

type fakeSettlementRepo struct {
	payments map[string]*models.Payment
	outcome  *repository.SettlementOutcome
	err      error
	settled  *models.Payment
}

func newFakeSettlementRepo() *fakeSettlementRepo {
	return &fakeSettlementRepo{payments: map[string]*models.Payment{}}
}

func (f *fakeSettlementRepo) Settle(_ context.Context, p *models.Payment, _, _ int) (*repository.SettlementOutcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p.ID == "" {
		p.ID = "p-1"
	}
	f.settled = p
	f.payments[p.ID] = p
	if f.outcome != nil {
		f.outcome.PaymentID = p.ID
		return f.outcome, nil
	}
	return &repository.SettlementOutcome{
		PaymentID:        p.ID,
		CoursesAdjusted:  int64(len(p.CourseIDs)),
		CartItemsRemoved: int64(len(p.SelectedCourseIDs)),
	}, nil
}

func (f *fakeSettlementRepo) FindByID(_ context.Context, id string) (*models.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (f *fakeSettlementRepo) ListByBuyer(_ context.Context, email string) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.payments {
		if p.BuyerEmail == email {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeBatchReader struct {
	courses map[string]models.Course
	lastIDs []string
}

func (f *fakeBatchReader) ListByIDs(_ context.Context, ids []string) ([]models.Course, error) {
	f.lastIDs = ids
	var out []models.Course
	for _, id := range ids {
		if c, ok := f.courses[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeIntentCreator struct {
	err       error
	lastPrice decimal.Decimal
}

func (f *fakeIntentCreator) CreateIntent(_ context.Context, price decimal.Decimal, _ string) (*payment.Intent, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastPrice = price
	return &payment.Intent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil
}

type fakeReceiptStore struct {
	saved map[string][]byte
}

func (f *fakeReceiptStore) Save(filename string, data []byte) (string, error) {
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[filename] = data
	return filename, nil
}

func newTestPaymentService(repo *fakeSettlementRepo, reader *fakeBatchReader, cache *fakeCache, intents *fakeIntentCreator) *PaymentService {
	if reader == nil {
		reader = &fakeBatchReader{courses: map[string]models.Course{}}
	}
	var c catalogCache
	if cache != nil {
		c = cache
	}
	return NewPaymentService(repo, reader, c, intents, export.NewReceiptExporter(), nil, nil, nil, "usd")
}

func claimsFor(email string) *models.TokenClaims {
	return &models.TokenClaims{Email: email}
}

func TestPaymentServiceCreateIntent(t *testing.T) {
	intents := &fakeIntentCreator{}
	svc := newTestPaymentService(newFakeSettlementRepo(), nil, nil, intents)

	resp, err := svc.CreateIntent(context.Background(), CreateIntentRequest{Price: decimal.NewFromFloat(25.50)})
	require.NoError(t, err)
	require.Equal(t, "pi_123_secret", resp.ClientSecret)
	require.True(t, intents.lastPrice.Equal(decimal.NewFromFloat(25.50)))
}

func TestPaymentServiceCreateIntentRejectsNonPositivePrice(t *testing.T) {
	svc := newTestPaymentService(newFakeSettlementRepo(), nil, nil, &fakeIntentCreator{})

	_, err := svc.CreateIntent(context.Background(), CreateIntentRequest{Price: decimal.Zero})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestPaymentServiceCreateIntentProviderFailure(t *testing.T) {
	intents := &fakeIntentCreator{err: errors.New("card network unreachable")}
	svc := newTestPaymentService(newFakeSettlementRepo(), nil, nil, intents)

	_, err := svc.CreateIntent(context.Background(), CreateIntentRequest{Price: decimal.NewFromInt(25)})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrUpstream.Status, appErrors.FromError(err).Status)
}

func TestPaymentServiceSettleHappyPath(t *testing.T) {
	repo := newFakeSettlementRepo()
	cache := newFakeCache()
	cache.entries[PopularCoursesCacheKey] = []byte(`[]`)
	svc := newTestPaymentService(repo, nil, cache, &fakeIntentCreator{})

	var hooked string
	svc.SetSettlementHook(func(paymentID string) { hooked = paymentID })

	result, err := svc.Settle(context.Background(), claimsFor("student@example.com"), PaymentRequest{
		BuyerEmail:        "student@example.com",
		CourseIDs:         []string{"c-1", "c-2"},
		SelectedCourseIDs: []string{"s-1", "s-2"},
		Amount:            decimal.NewFromInt(55),
		TransactionID:     "pi_123",
	})
	require.NoError(t, err)
	require.Equal(t, "p-1", result.PaymentID)
	require.Equal(t, 2, result.CoursesRequested)
	require.Equal(t, 2, result.CoursesAdjusted)
	require.Equal(t, 2, result.CartItemsRemoved)
	require.False(t, result.CounterMismatch)
	require.Equal(t, "p-1", hooked)
	require.Contains(t, cache.deletes, PopularCoursesCacheKey)
	require.Equal(t, pq.StringArray{"c-1", "c-2"}, repo.settled.CourseIDs)
}

func TestPaymentServiceSettleSurfacesCounterMismatch(t *testing.T) {
	repo := newFakeSettlementRepo()
	repo.outcome = &repository.SettlementOutcome{CoursesAdjusted: 1, CartItemsRemoved: 2}
	svc := newTestPaymentService(repo, nil, nil, &fakeIntentCreator{})

	result, err := svc.Settle(context.Background(), claimsFor("student@example.com"), PaymentRequest{
		BuyerEmail: "student@example.com",
		CourseIDs:  []string{"c-1", "ghost"},
		Amount:     decimal.NewFromInt(55),
	})
	require.NoError(t, err)
	require.True(t, result.CounterMismatch)
	require.Equal(t, 2, result.CoursesRequested)
	require.Equal(t, 1, result.CoursesAdjusted)
}

func TestPaymentServiceSettleRejectsForeignBuyer(t *testing.T) {
	svc := newTestPaymentService(newFakeSettlementRepo(), nil, nil, &fakeIntentCreator{})

	_, err := svc.Settle(context.Background(), claimsFor("intruder@example.com"), PaymentRequest{
		BuyerEmail: "student@example.com",
		CourseIDs:  []string{"c-1"},
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Status, appErrors.FromError(err).Status)
}

func TestPaymentServiceSettleRequiresCourses(t *testing.T) {
	svc := newTestPaymentService(newFakeSettlementRepo(), nil, nil, &fakeIntentCreator{})

	_, err := svc.Settle(context.Background(), claimsFor("student@example.com"), PaymentRequest{
		BuyerEmail: "student@example.com",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestPaymentServiceSettleRepositoryFailure(t *testing.T) {
	repo := newFakeSettlementRepo()
	repo.err = errors.New("connection reset")
	svc := newTestPaymentService(repo, nil, nil, &fakeIntentCreator{})

	_, err := svc.Settle(context.Background(), claimsFor("student@example.com"), PaymentRequest{
		BuyerEmail: "student@example.com",
		CourseIDs:  []string{"c-1"},
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInternal.Status, appErrors.FromError(err).Status)
}

func TestPaymentServiceHistoryDeduplicatesCourseIDs(t *testing.T) {
	repo := newFakeSettlementRepo()
	repo.payments["p-1"] = &models.Payment{ID: "p-1", BuyerEmail: "student@example.com", CourseIDs: pq.StringArray{"c-1", "c-2"}}
	repo.payments["p-2"] = &models.Payment{ID: "p-2", BuyerEmail: "student@example.com", CourseIDs: pq.StringArray{"c-2", "c-3"}}
	reader := &fakeBatchReader{courses: map[string]models.Course{
		"c-1": {ID: "c-1"}, "c-2": {ID: "c-2"}, "c-3": {ID: "c-3"},
	}}
	svc := newTestPaymentService(repo, reader, nil, &fakeIntentCreator{})

	courses, err := svc.History(context.Background(), "student@example.com")
	require.NoError(t, err)
	require.Len(t, courses, 3)
	require.Len(t, reader.lastIDs, 3)
}

func TestPaymentServiceHistoryEmpty(t *testing.T) {
	svc := newTestPaymentService(newFakeSettlementRepo(), nil, nil, &fakeIntentCreator{})

	courses, err := svc.History(context.Background(), "student@example.com")
	require.NoError(t, err)
	require.NotNil(t, courses)
	require.Empty(t, courses)
}

func TestPaymentServiceReceiptOwnershipAndRender(t *testing.T) {
	repo := newFakeSettlementRepo()
	repo.payments["p-1"] = &models.Payment{
		ID:         "p-1",
		BuyerEmail: "student@example.com",
		CourseIDs:  pq.StringArray{"c-1"},
		Amount:     decimal.NewFromInt(25),
	}
	reader := &fakeBatchReader{courses: map[string]models.Course{
		"c-1": {ID: "c-1", CourseName: "Drawing 101", InstructorName: "Teacher", CoursePrice: decimal.NewFromInt(25)},
	}}
	svc := newTestPaymentService(repo, reader, nil, &fakeIntentCreator{})

	_, err := svc.Receipt(context.Background(), "p-1", claimsFor("intruder@example.com"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Status, appErrors.FromError(err).Status)

	pdf, err := svc.Receipt(context.Background(), "p-1", claimsFor("student@example.com"))
	require.NoError(t, err)
	require.True(t, len(pdf) > 0)
	require.Equal(t, "%PDF", string(pdf[:4]))

	_, err = svc.Receipt(context.Background(), "ghost", claimsFor("student@example.com"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}

func TestPaymentServiceArchiveReceipt(t *testing.T) {
	repo := newFakeSettlementRepo()
	repo.payments["p-1"] = &models.Payment{
		ID:         "p-1",
		BuyerEmail: "student@example.com",
		CourseIDs:  pq.StringArray{"c-1"},
		Amount:     decimal.NewFromInt(25),
	}
	reader := &fakeBatchReader{courses: map[string]models.Course{"c-1": {ID: "c-1", CourseName: "Drawing 101"}}}
	svc := newTestPaymentService(repo, reader, nil, &fakeIntentCreator{})

	store := &fakeReceiptStore{}
	svc.SetArchive(store)

	require.NoError(t, svc.ArchiveReceipt(context.Background(), "p-1"))
	require.Contains(t, store.saved, "receipt-p-1.pdf")
}
