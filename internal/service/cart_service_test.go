package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/scuola-app/scuola-api/internal/models"
	appErrors "github.com/scuola-app/scuola-api/pkg/errors"
)

type fakeCartRepo struct {
	items map[string]*models.CartItem
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{items: map[string]*models.CartItem{}}
}

func (f *fakeCartRepo) Create(_ context.Context, item *models.CartItem) error {
	if item.ID == "" {
		item.ID = "s-" + item.CourseID
	}
	f.items[item.ID] = item
	return nil
}

func (f *fakeCartRepo) ListByStudent(_ context.Context, email string) ([]models.CartItem, error) {
	var out []models.CartItem
	for _, item := range f.items {
		if item.Email == email {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeCartRepo) DeleteByID(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

func TestCartServiceAddStoresSelection(t *testing.T) {
	repo := newFakeCartRepo()
	svc := NewCartService(repo, nil, nil)

	item, err := svc.Add(context.Background(), SelectClassRequest{
		Email:       "student@example.com",
		CourseID:    "c-1",
		CourseName:  "Drawing 101",
		CoursePrice: decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)
	require.Len(t, repo.items, 1)
}

func TestCartServiceAddToleratesDuplicates(t *testing.T) {
	repo := newFakeCartRepo()
	svc := NewCartService(repo, nil, nil)

	req := SelectClassRequest{Email: "student@example.com", CourseID: "c-1"}
	first, err := svc.Add(context.Background(), req)
	require.NoError(t, err)
	repo.items["s-dup"] = &models.CartItem{ID: "s-dup", Email: req.Email, CourseID: req.CourseID}

	second, err := svc.Add(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.NotEmpty(t, second.ID)
}

func TestCartServiceAddValidatesPayload(t *testing.T) {
	svc := NewCartService(newFakeCartRepo(), nil, nil)

	_, err := svc.Add(context.Background(), SelectClassRequest{Email: "not-an-email", CourseID: "c-1"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestCartServiceListForStudentEmptyIsSlice(t *testing.T) {
	svc := NewCartService(newFakeCartRepo(), nil, nil)

	items, err := svc.ListForStudent(context.Background(), "student@example.com")
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)
}

func TestCartServiceRemoveUnknownSelection(t *testing.T) {
	svc := NewCartService(newFakeCartRepo(), nil, nil)

	err := svc.Remove(context.Background(), "ghost")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}
