package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upskillpro/backend/domain"
	apperrors "github.com/upskillpro/backend/pkg/errors"
)

func TestRatingOnePerUserCourse(t *testing.T) {
	ctx := context.Background()
	repo := NewRatingRepository(newTestStore(), testLogger)

	require.NoError(t, repo.Create(ctx, &domain.Rating{UserID: "u1", CourseID: "c1", Rating: 4}))

	err := repo.Create(ctx, &domain.Rating{UserID: "u1", CourseID: "c1", Rating: 5})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestRatingRejectsOutOfRangeStars(t *testing.T) {
	ctx := context.Background()
	repo := NewRatingRepository(newTestStore(), testLogger)

	for _, stars := range []int{0, 6, -1} {
		err := repo.Create(ctx, &domain.Rating{UserID: "u1", CourseID: "c1", Rating: stars})
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidRating, apperrors.GetAppError(err).Code)
	}

	err := repo.Update(ctx, "u1", "c1", 9, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidRating, apperrors.GetAppError(err).Code)
}

func TestRatingUpdateKeepsCreationOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewRatingRepository(newTestStore(), testLogger)

	require.NoError(t, repo.Create(ctx, &domain.Rating{UserID: "u1", CourseID: "c1", Rating: 3, Review: "ok"}))
	require.NoError(t, repo.Update(ctx, "u1", "c1", 5, "great after all"))

	updated, err := repo.FindByUserAndCourse(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "great after all", updated.Review)

	page, err := repo.FindByCourse(ctx, "c1", 10, nil)
	require.NoError(t, err)
	require.Len(t, page.Ratings, 1)
	assert.Equal(t, 5, page.Ratings[0].Rating)
}

func TestRatingAggregates(t *testing.T) {
	ctx := context.Background()
	repo := NewRatingRepository(newTestStore(), testLogger)

	require.NoError(t, repo.Create(ctx, &domain.Rating{UserID: "u1", CourseID: "c1", Rating: 3}))
	require.NoError(t, repo.Create(ctx, &domain.Rating{UserID: "u2", CourseID: "c1", Rating: 5}))

	agg, err := repo.CalculateAggregates(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, agg.Average)
	assert.Equal(t, 2, agg.Count)
	assert.Equal(t, map[string]int{"1": 0, "2": 0, "3": 1, "4": 0, "5": 1}, agg.Distribution)
}

func TestRatingAggregatesRounding(t *testing.T) {
	ctx := context.Background()
	repo := NewRatingRepository(newTestStore(), testLogger)

	require.NoError(t, repo.Create(ctx, &domain.Rating{UserID: "u1", CourseID: "c1", Rating: 5}))
	require.NoError(t, repo.Create(ctx, &domain.Rating{UserID: "u2", CourseID: "c1", Rating: 5}))
	require.NoError(t, repo.Create(ctx, &domain.Rating{UserID: "u3", CourseID: "c1", Rating: 4}))

	agg, err := repo.CalculateAggregates(ctx, "c1")
	require.NoError(t, err)
	// 14/3 = 4.666..., rounded to one decimal.
	assert.Equal(t, 4.7, agg.Average)
}

func TestRatingAggregatesEmptyCourse(t *testing.T) {
	ctx := context.Background()
	repo := NewRatingRepository(newTestStore(), testLogger)

	agg, err := repo.CalculateAggregates(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, agg.Average)
	assert.Zero(t, agg.Count)
	assert.Equal(t, domain.EmptyDistribution(), agg.Distribution)
}

func TestRatingDeleteThenRecompute(t *testing.T) {
	ctx := context.Background()
	repo := NewRatingRepository(newTestStore(), testLogger)

	require.NoError(t, repo.Create(ctx, &domain.Rating{UserID: "u1", CourseID: "c1", Rating: 3}))
	require.NoError(t, repo.Create(ctx, &domain.Rating{UserID: "u2", CourseID: "c1", Rating: 5}))
	require.NoError(t, repo.Delete(ctx, "u1", "c1"))

	agg, err := repo.CalculateAggregates(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 5.0, agg.Average)
	assert.Equal(t, 1, agg.Count)
}
