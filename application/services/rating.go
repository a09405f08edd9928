package services

import (
	"context"

	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/repository"
	apperrors "github.com/upskillpro/backend/pkg/errors"
	"go.uber.org/zap"
)

const maxReviewLength = 1000

// RatingService enforces the enrollment gate on ratings, upserts them and
// triggers the aggregate refresh after every mutation.
type RatingService struct {
	ratings     *repository.RatingRepository
	enrollments *repository.EnrollmentRepository
	users       *repository.UserRepository
	aggregates  *AggregateCoordinator
	logger      *zap.Logger
}

// NewRatingService creates a rating service.
func NewRatingService(
	ratings *repository.RatingRepository,
	enrollments *repository.EnrollmentRepository,
	users *repository.UserRepository,
	aggregates *AggregateCoordinator,
	logger *zap.Logger,
) *RatingService {
	return &RatingService{
		ratings:     ratings,
		enrollments: enrollments,
		users:       users,
		aggregates:  aggregates,
		logger:      logger,
	}
}

// RateResult reports the written rating and whether it replaced an earlier
// one, which the handler maps to 200 vs 201.
type RateResult struct {
	Rating  *domain.Rating
	Updated bool
}

// Rate upserts the user's rating for a course. Only enrolled users may rate;
// a second rating by the same user replaces the first. The user's display
// name is denormalized onto the rating for listings.
func (s *RatingService) Rate(ctx context.Context, userID, courseID string, stars int, review string) (*RateResult, error) {
	if stars < 1 || stars > 5 {
		return nil, apperrors.NewValidationError("rating must be an integer between 1 and 5").
			WithCode(apperrors.CodeInvalidRating)
	}
	if len(review) > maxReviewLength {
		return nil, apperrors.NewValidationError("review must be at most 1000 characters")
	}

	if _, err := s.enrollments.FindByUserAndCourse(ctx, userID, courseID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewForbiddenError("you must be enrolled to rate this course").
				WithCode(apperrors.CodeNotEnrolled)
		}
		return nil, err
	}

	existing, err := s.ratings.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}

	result := &RateResult{}
	if existing != nil {
		if err := s.ratings.Update(ctx, userID, courseID, stars, review); err != nil {
			return nil, err
		}
		updated, err := s.ratings.FindByUserAndCourse(ctx, userID, courseID)
		if err != nil {
			return nil, err
		}
		result.Rating = updated
		result.Updated = true
	} else {
		rating := &domain.Rating{
			UserID:   userID,
			CourseID: courseID,
			Rating:   stars,
			Review:   review,
		}
		if user, err := s.users.FindByID(ctx, userID); err == nil {
			rating.UserName = user.Name
		}
		if err := s.ratings.Create(ctx, rating); err != nil {
			return nil, err
		}
		result.Rating = rating
	}

	s.aggregates.Refresh(ctx, courseID)
	return result, nil
}

// Delete removes the user's rating and refreshes the course aggregates.
func (s *RatingService) Delete(ctx context.Context, userID, courseID string) error {
	if _, err := s.ratings.FindByUserAndCourse(ctx, userID, courseID); err != nil {
		return err
	}
	if err := s.ratings.Delete(ctx, userID, courseID); err != nil {
		return err
	}
	s.aggregates.Refresh(ctx, courseID)
	return nil
}
