package repository

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/schema"
	"github.com/upskillpro/backend/infrastructure/persistence/store"
	apperrors "github.com/upskillpro/backend/pkg/errors"
	"go.uber.org/zap"
)

// Course listing sort keys.
const (
	SortByPrice     = "price"
	SortByCreatedAt = "createdAt"
	SortByTitle     = "title"
)

// CourseRepository owns the COURSE#<id> partition (metadata plus lectures)
// and the GSI1/GSI3/GSI5 course listings.
type CourseRepository struct {
	store      store.Store
	categories *CategoryRepository
	logger     *zap.Logger
}

// NewCourseRepository creates a course repository. The category repository is
// consulted to validate category references and denormalize category names.
func NewCourseRepository(st store.Store, categories *CategoryRepository, logger *zap.Logger) *CourseRepository {
	return &CourseRepository{store: st, categories: categories, logger: logger}
}

// CoursePatch is the attribute set Update may change.
type CoursePatch struct {
	Title       *string
	Description *string
	Price       *float64
	ImageKey    *string
	CategoryID  *string // empty string removes the categorization
}

// CourseQuery narrows FindAll. Title matching is substring-based and applied
// in memory after retrieval; the store has no efficient substring predicate
// on sort keys.
type CourseQuery struct {
	TitleSubstring string
	CategoryID     string
	SortBy         string // price | createdAt | title
	Descending     bool
}

// Create assigns an ID and writes the metadata item with its GSI1/GSI3 keys,
// plus GSI5 when categorized. Unknown categories are rejected by reading the
// category first; negative prices are rejected here, not by the key codec.
func (r *CourseRepository) Create(ctx context.Context, course *domain.Course) error {
	if course.Price < 0 {
		return apperrors.NewValidationError("price must not be negative")
	}
	course.ID = uuid.NewString()
	now := schema.FormatTime(time.Now())
	course.CreatedAt = now
	course.UpdatedAt = now
	if course.Status == "" {
		course.Status = domain.CoursePending
	}
	course.RatingDistribution = domain.EmptyDistribution()

	if course.CategoryID != "" {
		category, err := r.categories.FindByID(ctx, course.CategoryID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewValidationError("unknown category").
					WithCode(apperrors.CodeUnknownCategory)
			}
			return err
		}
		course.CategoryName = category.Name
	}

	item, err := marshalEntity(course, schema.EntityCourse)
	if err != nil {
		return apperrors.NewDatabaseError("course.create", err)
	}
	item[schema.AttrPK] = s(schema.CoursePK(course.ID))
	item[schema.AttrSK] = s(schema.CourseSK())
	item[schema.AttrGSI1PK] = s(schema.CourseGSI1PK(course.InstructorID))
	item[schema.AttrGSI1SK] = s(schema.CourseGSI1SK(course.CreatedAt, course.ID))
	item[schema.AttrGSI3PK] = s(schema.CourseGSI3PK())
	item[schema.AttrGSI3SK] = s(schema.CourseGSI3SK(course.Price, course.ID))
	if course.CategoryID != "" {
		item[schema.AttrGSI5PK] = s(schema.CourseGSI5PK(course.CategoryID))
		item[schema.AttrGSI5SK] = s(schema.CourseGSI5SK(course.CreatedAt, course.ID))
	}

	if err := r.store.Put(ctx, item, false); err != nil {
		return apperrors.NewDatabaseError("course.create", err)
	}
	return nil
}

// FindByID is a point get on the metadata item.
func (r *CourseRepository) FindByID(ctx context.Context, courseID string) (*domain.Course, error) {
	item, err := r.store.Get(ctx, schema.CoursePK(courseID), schema.CourseSK())
	if err != nil {
		return nil, apperrors.NewDatabaseError("course.findById", err)
	}
	if item == nil {
		return nil, apperrors.NewNotFoundError("course")
	}
	var course domain.Course
	if err := unmarshalEntity(item, &course); err != nil {
		return nil, apperrors.NewDatabaseError("course.findById", err)
	}
	return &course, nil
}

// FindByInstructor lists an instructor's courses newest-first (GSI1 reverse).
func (r *CourseRepository) FindByInstructor(ctx context.Context, instructorID string) ([]*domain.Course, error) {
	return r.collectCourses(ctx, store.QueryInput{
		PK:        schema.CourseGSI1PK(instructorID),
		IndexName: schema.IndexGSI1,
		Forward:   false,
	}, "course.findByInstructor")
}

// FindByCategory lists a category's courses newest-first (GSI5 reverse).
func (r *CourseRepository) FindByCategory(ctx context.Context, categoryID string) ([]*domain.Course, error) {
	return r.collectCourses(ctx, store.QueryInput{
		PK:        schema.CourseGSI5PK(categoryID),
		IndexName: schema.IndexGSI5,
		Forward:   false,
	}, "course.findByCategory")
}

// FindAll lists courses for the catalog. Price order comes straight off GSI3
// thanks to the zero-padded price encoding; category narrowing uses GSI5;
// createdAt and title orders are applied in memory.
func (r *CourseRepository) FindAll(ctx context.Context, q CourseQuery) ([]*domain.Course, error) {
	var (
		courses []*domain.Course
		err     error
	)
	if q.CategoryID != "" {
		courses, err = r.collectCourses(ctx, store.QueryInput{
			PK:        schema.CourseGSI5PK(q.CategoryID),
			IndexName: schema.IndexGSI5,
			Forward:   !q.Descending,
		}, "course.findAll")
	} else {
		courses, err = r.collectCourses(ctx, store.QueryInput{
			PK:        schema.CourseGSI3PK(),
			IndexName: schema.IndexGSI3,
			Forward:   !q.Descending,
		}, "course.findAll")
	}
	if err != nil {
		return nil, err
	}

	if q.TitleSubstring != "" {
		needle := strings.ToLower(q.TitleSubstring)
		filtered := courses[:0]
		for _, c := range courses {
			if strings.Contains(strings.ToLower(c.Title), needle) {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}

	switch q.SortBy {
	case SortByPrice:
		if q.CategoryID != "" {
			sortCourses(courses, q.Descending, func(a, b *domain.Course) bool { return a.Price < b.Price })
		}
		// Without a category the GSI3 read order is already price order.
	case SortByTitle:
		sortCourses(courses, q.Descending, func(a, b *domain.Course) bool { return a.Title < b.Title })
	case SortByCreatedAt, "":
		sortCourses(courses, q.Descending, func(a, b *domain.Course) bool { return a.CreatedAt < b.CreatedAt })
	default:
		return nil, apperrors.NewValidationError("unknown sort key")
	}
	return courses, nil
}

// FindByIDWithLectures fetches the whole course partition in one prefix query
// and partitions the items into metadata and lectures.
func (r *CourseRepository) FindByIDWithLectures(ctx context.Context, courseID string) (*domain.Course, []*domain.Lecture, error) {
	var course *domain.Course
	var lectures []*domain.Lecture

	var startKey store.Item
	for {
		out, err := r.store.Query(ctx, store.QueryInput{
			PK:       schema.CoursePK(courseID),
			Forward:  true,
			StartKey: startKey,
		})
		if err != nil {
			return nil, nil, apperrors.NewDatabaseError("course.findByIdWithLectures", err)
		}
		for _, item := range out.Items {
			sk := store.StringAttr(item, schema.AttrSK)
			switch {
			case sk == schema.CourseSK():
				var c domain.Course
				if err := unmarshalEntity(item, &c); err != nil {
					return nil, nil, apperrors.NewDatabaseError("course.findByIdWithLectures", err)
				}
				course = &c
			case strings.HasPrefix(sk, schema.LecturePrefix()):
				var l domain.Lecture
				if err := unmarshalEntity(item, &l); err != nil {
					return nil, nil, apperrors.NewDatabaseError("course.findByIdWithLectures", err)
				}
				lectures = append(lectures, &l)
			}
		}
		if out.LastKey == nil {
			break
		}
		startKey = out.LastKey
	}

	if course == nil {
		return nil, nil, apperrors.NewNotFoundError("course")
	}
	return course, lectures, nil
}

// Update applies a patch as one update expression. A price change rewrites
// the GSI3 sort key; a category change re-reads the category to refresh the
// denormalized name and the GSI5 keys.
func (r *CourseRepository) Update(ctx context.Context, courseID string, patch CoursePatch) (*domain.Course, error) {
	course, err := r.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var muts []store.Mutation
	if patch.Title != nil {
		muts = append(muts, store.Set("title", *patch.Title))
	}
	if patch.Description != nil {
		muts = append(muts, store.Set("description", *patch.Description))
	}
	if patch.ImageKey != nil {
		muts = append(muts, store.Set("imageKey", *patch.ImageKey))
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, apperrors.NewValidationError("price must not be negative")
		}
		muts = append(muts,
			store.SetValue("price", numberAttr(*patch.Price)),
			store.Set(schema.AttrGSI3SK, schema.CourseGSI3SK(*patch.Price, courseID)),
		)
	}
	if patch.CategoryID != nil {
		switch *patch.CategoryID {
		case "":
			muts = append(muts,
				store.Remove("categoryId"),
				store.Remove("categoryName"),
				store.Remove(schema.AttrGSI5PK),
				store.Remove(schema.AttrGSI5SK),
			)
		default:
			category, err := r.categories.FindByID(ctx, *patch.CategoryID)
			if err != nil {
				if apperrors.IsNotFound(err) {
					return nil, apperrors.NewValidationError("unknown category").
						WithCode(apperrors.CodeUnknownCategory)
				}
				return nil, err
			}
			muts = append(muts,
				store.Set("categoryId", category.ID),
				store.Set("categoryName", category.Name),
				store.Set(schema.AttrGSI5PK, schema.CourseGSI5PK(category.ID)),
				store.Set(schema.AttrGSI5SK, schema.CourseGSI5SK(course.CreatedAt, courseID)),
			)
		}
	}
	if len(muts) == 0 {
		return nil, apperrors.NewValidationError("empty update")
	}
	muts = append(muts, store.Set("updatedAt", schema.FormatTime(time.Now())))

	if err := r.store.Update(ctx, schema.CoursePK(courseID), schema.CourseSK(), muts, true); err != nil {
		return nil, apperrors.NewDatabaseError("course.update", err)
	}
	return r.FindByID(ctx, courseID)
}

// SetStatus moves a course through the approval state machine. Admins may
// apply any transition; callers audit it.
func (r *CourseRepository) SetStatus(ctx context.Context, courseID string, status domain.CourseStatus, adminID, reason string) error {
	if !domain.ValidCourseStatus(status) {
		return apperrors.NewValidationError("unknown course status").
			WithCode(apperrors.CodeInvalidTransition)
	}
	now := schema.FormatTime(time.Now())
	muts := []store.Mutation{
		store.Set("status", string(status)),
		store.Set("moderatedBy", adminID),
		store.Set("moderatedAt", now),
		store.Set("updatedAt", now),
	}
	if reason != "" {
		muts = append(muts, store.Set("moderationReason", reason))
	}
	if err := r.store.Update(ctx, schema.CoursePK(courseID), schema.CourseSK(), muts, true); err != nil {
		if store.IsConditionFailed(err) {
			return apperrors.NewNotFoundError("course")
		}
		return apperrors.NewDatabaseError("course.setStatus", err)
	}
	return nil
}

// Delete removes every item in the course partition (metadata and lectures)
// with batched deletes in groups of the store's batch limit. Enrollments and
// ratings are deliberately not cascaded.
func (r *CourseRepository) Delete(ctx context.Context, courseID string) error {
	var ops []store.WriteOp
	var startKey store.Item
	for {
		out, err := r.store.Query(ctx, store.QueryInput{
			PK:       schema.CoursePK(courseID),
			Forward:  true,
			StartKey: startKey,
		})
		if err != nil {
			return apperrors.NewDatabaseError("course.delete", err)
		}
		for _, item := range out.Items {
			ops = append(ops, store.WriteOp{
				DeletePK: store.StringAttr(item, schema.AttrPK),
				DeleteSK: store.StringAttr(item, schema.AttrSK),
			})
		}
		if out.LastKey == nil {
			break
		}
		startKey = out.LastKey
	}
	if len(ops) == 0 {
		return apperrors.NewNotFoundError("course")
	}

	for start := 0; start < len(ops); start += store.BatchLimit {
		end := start + store.BatchLimit
		if end > len(ops) {
			end = len(ops)
		}
		if err := r.store.BatchWrite(ctx, ops[start:end]); err != nil {
			return apperrors.NewDatabaseError("course.delete", err)
		}
	}
	r.logger.Info("course deleted", zap.String("courseId", courseID), zap.Int("items", len(ops)))
	return nil
}

// UpdateRatingAggregates persists the recomputed rating mirror onto the
// course item.
func (r *CourseRepository) UpdateRatingAggregates(ctx context.Context, courseID string, average float64, count int, distribution map[string]int) error {
	distAttr, err := attributevalue.Marshal(distribution)
	if err != nil {
		return apperrors.NewDatabaseError("course.updateRatingAggregates", err)
	}
	muts := []store.Mutation{
		store.SetValue("averageRating", numberAttr(average)),
		store.SetValue("ratingCount", store.NumberValue(count)),
		store.SetValue("ratingDistribution", distAttr),
	}
	if err := r.store.Update(ctx, schema.CoursePK(courseID), schema.CourseSK(), muts, true); err != nil {
		return apperrors.NewDatabaseError("course.updateRatingAggregates", err)
	}
	return nil
}

func (r *CourseRepository) collectCourses(ctx context.Context, in store.QueryInput, op string) ([]*domain.Course, error) {
	var courses []*domain.Course
	for {
		out, err := r.store.Query(ctx, in)
		if err != nil {
			return nil, apperrors.NewDatabaseError(op, err)
		}
		for _, item := range out.Items {
			var course domain.Course
			if err := unmarshalEntity(item, &course); err != nil {
				r.logger.Warn("skipping unparsable course item", zap.Error(err))
				continue
			}
			courses = append(courses, &course)
		}
		if out.LastKey == nil {
			return courses, nil
		}
		in.StartKey = out.LastKey
	}
}

func sortCourses(courses []*domain.Course, descending bool, less func(a, b *domain.Course) bool) {
	sort.SliceStable(courses, func(i, j int) bool {
		if descending {
			return less(courses[j], courses[i])
		}
		return less(courses[i], courses[j])
	})
}

func numberAttr(f float64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(f, 'f', -1, 64)}
}
