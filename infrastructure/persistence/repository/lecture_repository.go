package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/schema"
	"github.com/upskillpro/backend/infrastructure/persistence/store"
	apperrors "github.com/upskillpro/backend/pkg/errors"
	"go.uber.org/zap"
)

// LectureRepository owns the LECTURE# items inside a course partition.
type LectureRepository struct {
	store  store.Store
	logger *zap.Logger
}

// NewLectureRepository creates a lecture repository.
func NewLectureRepository(st store.Store, logger *zap.Logger) *LectureRepository {
	return &LectureRepository{store: st, logger: logger}
}

// LecturePatch is the attribute set Update may change.
type LecturePatch struct {
	Title           *string
	VideoKey        *string
	DurationSeconds *int
	Position        *int
}

// Create assigns an ID and writes the lecture into its course partition.
func (r *LectureRepository) Create(ctx context.Context, lecture *domain.Lecture) error {
	lecture.ID = uuid.NewString()
	now := schema.FormatTime(time.Now())
	lecture.CreatedAt = now
	lecture.UpdatedAt = now

	item, err := marshalEntity(lecture, schema.EntityLecture)
	if err != nil {
		return apperrors.NewDatabaseError("lecture.create", err)
	}
	item[schema.AttrPK] = s(schema.LecturePK(lecture.CourseID))
	item[schema.AttrSK] = s(schema.LectureSK(lecture.ID))

	if err := r.store.Put(ctx, item, false); err != nil {
		return apperrors.NewDatabaseError("lecture.create", err)
	}
	return nil
}

// FindByCourse lists a course's lectures in sort-key order. Lecture IDs are
// UUIDs, so this is lexicographic ID order, not creation order.
func (r *LectureRepository) FindByCourse(ctx context.Context, courseID string) ([]*domain.Lecture, error) {
	var lectures []*domain.Lecture
	var startKey store.Item
	for {
		out, err := r.store.Query(ctx, store.QueryInput{
			PK:       schema.LecturePK(courseID),
			SKPrefix: schema.LecturePrefix(),
			Forward:  true,
			StartKey: startKey,
		})
		if err != nil {
			return nil, apperrors.NewDatabaseError("lecture.findByCourse", err)
		}
		for _, item := range out.Items {
			var lecture domain.Lecture
			if err := unmarshalEntity(item, &lecture); err != nil {
				r.logger.Warn("skipping unparsable lecture item", zap.Error(err))
				continue
			}
			lectures = append(lectures, &lecture)
		}
		if out.LastKey == nil {
			return lectures, nil
		}
		startKey = out.LastKey
	}
}

// FindByID is a point get on one lecture.
func (r *LectureRepository) FindByID(ctx context.Context, courseID, lectureID string) (*domain.Lecture, error) {
	item, err := r.store.Get(ctx, schema.LecturePK(courseID), schema.LectureSK(lectureID))
	if err != nil {
		return nil, apperrors.NewDatabaseError("lecture.findById", err)
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError("lecture")
	}
	var lecture domain.Lecture
	if err := unmarshalEntity(item, &lecture); err != nil {
		return nil, apperrors.NewDatabaseError("lecture.findById", err)
	}
	return &lecture, nil
}

// Update applies a patch to one lecture.
func (r *LectureRepository) Update(ctx context.Context, courseID, lectureID string, patch LecturePatch) error {
	var muts []store.Mutation
	if patch.Title != nil {
		muts = append(muts, store.Set("title", *patch.Title))
	}
	if patch.VideoKey != nil {
		muts = append(muts, store.Set("videoKey", *patch.VideoKey))
	}
	if patch.DurationSeconds != nil {
		muts = append(muts, store.SetValue("durationSeconds", store.NumberValue(*patch.DurationSeconds)))
	}
	if patch.Position != nil {
		muts = append(muts, store.SetValue("position", store.NumberValue(*patch.Position)))
	}
	if len(muts) == 0 {
		return apperrors.NewValidationError("empty update")
	}
	muts = append(muts, store.Set("updatedAt", schema.FormatTime(time.Now())))

	if err := r.store.Update(ctx, schema.LecturePK(courseID), schema.LectureSK(lectureID), muts, true); err != nil {
		if store.IsConditionFailed(err) {
			return apperrors.NewNotFoundError("lecture")
		}
		return apperrors.NewDatabaseError("lecture.update", err)
	}
	return nil
}
