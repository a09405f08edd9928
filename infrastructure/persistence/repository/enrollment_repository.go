package repository

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/schema"
	"github.com/upskillpro/backend/infrastructure/persistence/store"
	apperrors "github.com/upskillpro/backend/pkg/errors"
	"go.uber.org/zap"
)

// EnrollmentRepository owns the ENROLLMENT# items under each user partition
// and the GSI2 course-side view of them.
type EnrollmentRepository struct {
	store  store.Store
	logger *zap.Logger
}

// NewEnrollmentRepository creates an enrollment repository.
func NewEnrollmentRepository(st store.Store, logger *zap.Logger) *EnrollmentRepository {
	return &EnrollmentRepository{store: st, logger: logger}
}

// ProgressUpdate replaces an enrollment's progress list. CompletedAt and
// ClearCompletedAt are mutually exclusive.
type ProgressUpdate struct {
	Progress         []string
	CompletedAt      string
	ClearCompletedAt bool
}

// Create writes the enrollment conditioned on it not existing, so a duplicate
// purchase surfaces as ALREADY_ENROLLED. Course title, price and image are
// denormalized at creation time for cheap "my courses" listings.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	now := schema.FormatTime(time.Now())
	enrollment.EnrolledAt = now
	enrollment.UpdatedAt = now
	if enrollment.Progress == nil {
		enrollment.Progress = []string{}
	}

	item, err := marshalEntity(enrollment, schema.EntityEnrollment)
	if err != nil {
		return apperrors.NewDatabaseError("enrollment.create", err)
	}
	item[schema.AttrPK] = s(schema.EnrollmentPK(enrollment.UserID))
	item[schema.AttrSK] = s(schema.EnrollmentSK(enrollment.CourseID))
	item[schema.AttrGSI2PK] = s(schema.EnrollmentGSI2PK(enrollment.CourseID))
	item[schema.AttrGSI2SK] = s(schema.EnrollmentGSI2SK(enrollment.UserID))

	if err := r.store.Put(ctx, item, true); err != nil {
		if store.IsConditionFailed(err) {
			return apperrors.NewConflictError("already enrolled in this course").
				WithCode(apperrors.CodeAlreadyEnrolled)
		}
		return apperrors.NewDatabaseError("enrollment.create", err)
	}
	return nil
}

// FindByUserAndCourse is a point get; NotFound doubles as the "not enrolled"
// gate for rating writes.
func (r *EnrollmentRepository) FindByUserAndCourse(ctx context.Context, userID, courseID string) (*domain.Enrollment, error) {
	item, err := r.store.Get(ctx, schema.EnrollmentPK(userID), schema.EnrollmentSK(courseID))
	if err != nil {
		return nil, apperrors.NewDatabaseError("enrollment.findByUserAndCourse", err)
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError("enrollment")
	}
	var enrollment domain.Enrollment
	if err := unmarshalEntity(item, &enrollment); err != nil {
		return nil, apperrors.NewDatabaseError("enrollment.findByUserAndCourse", err)
	}
	return &enrollment, nil
}

// FindByUser lists a user's enrollments via the ENROLLMENT# prefix.
func (r *EnrollmentRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Enrollment, error) {
	return r.collect(ctx, store.QueryInput{
		PK:       schema.EnrollmentPK(userID),
		SKPrefix: schema.EnrollmentPrefix(),
		Forward:  true,
	}, "enrollment.findByUser")
}

// FindByCourse lists a course's enrollments via GSI2.
func (r *EnrollmentRepository) FindByCourse(ctx context.Context, courseID string) ([]*domain.Enrollment, error) {
	return r.collect(ctx, store.QueryInput{
		PK:        schema.EnrollmentGSI2PK(courseID),
		SKPrefix:  schema.EnrollmentPrefix(),
		IndexName: schema.IndexGSI2,
		Forward:   true,
	}, "enrollment.findByCourse")
}

// CountByCourse runs the GSI2 query in count mode.
func (r *EnrollmentRepository) CountByCourse(ctx context.Context, courseID string) (int, error) {
	out, err := r.store.Query(ctx, store.QueryInput{
		PK:        schema.EnrollmentGSI2PK(courseID),
		SKPrefix:  schema.EnrollmentPrefix(),
		IndexName: schema.IndexGSI2,
		Forward:   true,
		Count:     true,
	})
	if err != nil {
		return 0, apperrors.NewDatabaseError("enrollment.countByCourse", err)
	}
	return int(out.Count), nil
}

// UpdateProgress replaces the whole progress list (last write wins under
// concurrency) and optionally sets or clears the completion timestamp.
// Callers ensure the lecture IDs belong to the course.
func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, userID, courseID string, update ProgressUpdate) error {
	progress := update.Progress
	if progress == nil {
		progress = []string{}
	}
	progressAttr, err := attributevalue.Marshal(progress)
	if err != nil {
		return apperrors.NewDatabaseError("enrollment.updateProgress", err)
	}

	muts := []store.Mutation{
		store.SetValue("progress", progressAttr),
		store.Set("updatedAt", schema.FormatTime(time.Now())),
	}
	switch {
	case update.ClearCompletedAt:
		muts = append(muts, store.Remove("completedAt"))
	case update.CompletedAt != "":
		muts = append(muts, store.Set("completedAt", update.CompletedAt))
	}

	if err := r.store.Update(ctx, schema.EnrollmentPK(userID), schema.EnrollmentSK(courseID), muts, true); err != nil {
		if store.IsConditionFailed(err) {
			return apperrors.NewNotFoundError("enrollment")
		}
		return apperrors.NewDatabaseError("enrollment.updateProgress", err)
	}
	return nil
}

func (r *EnrollmentRepository) collect(ctx context.Context, in store.QueryInput, op string) ([]*domain.Enrollment, error) {
	var enrollments []*domain.Enrollment
	for {
		out, err := r.store.Query(ctx, in)
		if err != nil {
			return nil, apperrors.NewDatabaseError(op, err)
		}
		for _, item := range out.Items {
			var enrollment domain.Enrollment
			if err := unmarshalEntity(item, &enrollment); err != nil {
				r.logger.Warn("skipping unparsable enrollment item", zap.Error(err))
				continue
			}
			enrollments = append(enrollments, &enrollment)
		}
		if out.LastKey == nil {
			return enrollments, nil
		}
		in.StartKey = out.LastKey
	}
}
