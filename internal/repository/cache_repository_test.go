package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	appErrors "github.com/scuola-app/scuola-api/pkg/errors"
)

func TestCacheRepositoryNilClientDegradesToMiss(t *testing.T) {
	repo := NewCacheRepository(nil, nil)

	var dest []string
	err := repo.Get(context.Background(), "catalog:popular_courses", &dest)
	require.ErrorIs(t, err, appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(context.Background(), "catalog:popular_courses", []string{"c-1"}, 0))
	require.NoError(t, repo.Delete(context.Background(), "catalog:popular_courses"))
}
