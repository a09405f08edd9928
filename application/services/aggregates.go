package services

import (
	"context"

	"github.com/upskillpro/backend/infrastructure/persistence/repository"
	"go.uber.org/zap"
)

// AggregateCoordinator keeps each course's rating mirror in step with its
// rating items. Recomputation runs after every rating mutation and is best
// effort: a failed refresh leaves the mirror stale until the next mutation,
// never rolls the rating back.
type AggregateCoordinator struct {
	ratings *repository.RatingRepository
	courses *repository.CourseRepository
	logger  *zap.Logger
}

// NewAggregateCoordinator creates a coordinator.
func NewAggregateCoordinator(ratings *repository.RatingRepository, courses *repository.CourseRepository, logger *zap.Logger) *AggregateCoordinator {
	return &AggregateCoordinator{ratings: ratings, courses: courses, logger: logger}
}

// Refresh recomputes the course's average, count and distribution from the
// full rating set and writes them onto the course item.
func (c *AggregateCoordinator) Refresh(ctx context.Context, courseID string) {
	agg, err := c.ratings.CalculateAggregates(ctx, courseID)
	if err != nil {
		c.logger.Warn("rating aggregate recompute failed",
			zap.String("courseId", courseID), zap.Error(err))
		return
	}
	if err := c.courses.UpdateRatingAggregates(ctx, courseID, agg.Average, agg.Count, agg.Distribution); err != nil {
		c.logger.Warn("rating aggregate write failed",
			zap.String("courseId", courseID), zap.Error(err))
	}
}
