package repository

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/schema"
	"github.com/upskillpro/backend/infrastructure/persistence/store"
	apperrors "github.com/upskillpro/backend/pkg/errors"
	"go.uber.org/zap"
)

// RatingRepository owns the RATING# items under each user partition and the
// GSI6 course-side view.
type RatingRepository struct {
	store  store.Store
	logger *zap.Logger
}

// NewRatingRepository creates a rating repository.
func NewRatingRepository(st store.Store, logger *zap.Logger) *RatingRepository {
	return &RatingRepository{store: st, logger: logger}
}

// RatingPage is one page of a course's ratings plus the resume key.
type RatingPage struct {
	Ratings []*domain.Rating
	LastKey store.Item
}

// RatingAggregates is the recomputed mirror destined for the course item.
type RatingAggregates struct {
	Average      float64
	Count        int
	Distribution map[string]int
}

// Create writes a new rating. One rating per (user, course) is enforced by
// the conditional put.
func (r *RatingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	if rating.Rating < 1 || rating.Rating > 5 {
		return apperrors.NewValidationError("rating must be an integer between 1 and 5").
			WithCode(apperrors.CodeInvalidRating)
	}
	now := schema.FormatTime(time.Now())
	rating.CreatedAt = now
	rating.UpdatedAt = now

	item, err := marshalEntity(rating, schema.EntityRating)
	if err != nil {
		return apperrors.NewDatabaseError("rating.create", err)
	}
	item[schema.AttrPK] = s(schema.RatingPK(rating.UserID))
	item[schema.AttrSK] = s(schema.RatingSK(rating.CourseID))
	item[schema.AttrGSI6PK] = s(schema.RatingGSI6PK(rating.CourseID))
	item[schema.AttrGSI6SK] = s(schema.RatingGSI6SK(rating.CreatedAt, rating.UserID))

	if err := r.store.Put(ctx, item, true); err != nil {
		if store.IsConditionFailed(err) {
			return apperrors.NewConflictError("rating already exists")
		}
		return apperrors.NewDatabaseError("rating.create", err)
	}
	return nil
}

// FindByUserAndCourse is a point get, or NotFound.
func (r *RatingRepository) FindByUserAndCourse(ctx context.Context, userID, courseID string) (*domain.Rating, error) {
	item, err := r.store.Get(ctx, schema.RatingPK(userID), schema.RatingSK(courseID))
	if err != nil {
		return nil, apperrors.NewDatabaseError("rating.findByUserAndCourse", err)
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError("rating")
	}
	var rating domain.Rating
	if err := unmarshalEntity(item, &rating); err != nil {
		return nil, apperrors.NewDatabaseError("rating.findByUserAndCourse", err)
	}
	return &rating, nil
}

// FindByCourse returns one page of a course's ratings, newest first (GSI6
// reverse scan).
func (r *RatingRepository) FindByCourse(ctx context.Context, courseID string, limit int32, startKey store.Item) (*RatingPage, error) {
	out, err := r.store.Query(ctx, store.QueryInput{
		PK:        schema.RatingGSI6PK(courseID),
		SKPrefix:  schema.RatingGSI6Prefix(),
		IndexName: schema.IndexGSI6,
		Forward:   false,
		Limit:     limit,
		StartKey:  startKey,
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("rating.findByCourse", err)
	}

	page := &RatingPage{LastKey: out.LastKey}
	for _, item := range out.Items {
		var rating domain.Rating
		if err := unmarshalEntity(item, &rating); err != nil {
			r.logger.Warn("skipping unparsable rating item", zap.Error(err))
			continue
		}
		page.Ratings = append(page.Ratings, &rating)
	}
	return page, nil
}

// Update changes the star value and review in place. The GSI6 sort key keeps
// the original creation timestamp so the course feed stays stable.
func (r *RatingRepository) Update(ctx context.Context, userID, courseID string, stars int, review string) error {
	if stars < 1 || stars > 5 {
		return apperrors.NewValidationError("rating must be an integer between 1 and 5").
			WithCode(apperrors.CodeInvalidRating)
	}
	muts := []store.Mutation{
		store.SetValue("rating", store.NumberValue(stars)),
		store.Set("review", review),
		store.Set("updatedAt", schema.FormatTime(time.Now())),
	}
	if err := r.store.Update(ctx, schema.RatingPK(userID), schema.RatingSK(courseID), muts, true); err != nil {
		if store.IsConditionFailed(err) {
			return apperrors.NewNotFoundError("rating")
		}
		return apperrors.NewDatabaseError("rating.update", err)
	}
	return nil
}

// Delete removes the user's rating for a course.
func (r *RatingRepository) Delete(ctx context.Context, userID, courseID string) error {
	if err := r.store.Delete(ctx, schema.RatingPK(userID), schema.RatingSK(courseID)); err != nil {
		return apperrors.NewDatabaseError("rating.delete", err)
	}
	return nil
}

// CalculateAggregates reads every rating for the course and recomputes the
// mirror from scratch. Never incremental, so drift cannot accumulate. The
// mean is rounded to one decimal.
func (r *RatingRepository) CalculateAggregates(ctx context.Context, courseID string) (*RatingAggregates, error) {
	distribution := domain.EmptyDistribution()
	sum, count := 0, 0

	var startKey store.Item
	for {
		page, err := r.FindByCourse(ctx, courseID, 0, startKey)
		if err != nil {
			return nil, err
		}
		for _, rating := range page.Ratings {
			sum += rating.Rating
			count++
			distribution[strconv.Itoa(rating.Rating)]++
		}
		if page.LastKey == nil {
			break
		}
		startKey = page.LastKey
	}

	average := 0.0
	if count > 0 {
		average = math.Round(float64(sum)/float64(count)*10) / 10
	}
	return &RatingAggregates{Average: average, Count: count, Distribution: distribution}, nil
}
