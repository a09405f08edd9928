package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upskillpro/backend/domain"
	apperrors "github.com/upskillpro/backend/pkg/errors"
)

func seedCourse(t *testing.T, repo *CourseRepository, title string, price float64) *domain.Course {
	t.Helper()
	course := &domain.Course{
		Title:        title,
		Description:  "desc",
		InstructorID: "inst-1",
		Price:        price,
	}
	require.NoError(t, repo.Create(context.Background(), course))
	return course
}

func TestCourseCatalogPriceOrder(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	categories := NewCategoryRepository(st, testLogger)
	repo := NewCourseRepository(st, categories, testLogger)

	seedCourse(t, repo, "Mid", 50)
	seedCourse(t, repo, "Cheap", 5)
	seedCourse(t, repo, "Expensive", 100)

	// The zero-padded price sort key must order numerically, not as "100" < "5".
	asc, err := repo.FindAll(ctx, CourseQuery{SortBy: SortByPrice})
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, []float64{5, 50, 100}, []float64{asc[0].Price, asc[1].Price, asc[2].Price})

	desc, err := repo.FindAll(ctx, CourseQuery{SortBy: SortByPrice, Descending: true})
	require.NoError(t, err)
	require.Len(t, desc, 3)
	assert.Equal(t, float64(100), desc[0].Price)
}

func TestCoursePriceUpdateReorders(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	repo := NewCourseRepository(st, NewCategoryRepository(st, testLogger), testLogger)

	cheap := seedCourse(t, repo, "Cheap", 5)
	seedCourse(t, repo, "Mid", 50)

	newPrice := 70.0
	_, err := repo.Update(ctx, cheap.ID, CoursePatch{Price: &newPrice})
	require.NoError(t, err)

	asc, err := repo.FindAll(ctx, CourseQuery{SortBy: SortByPrice})
	require.NoError(t, err)
	require.Len(t, asc, 2)
	assert.Equal(t, "Mid", asc[0].Title)
	assert.Equal(t, "Cheap", asc[1].Title)
}

func TestCourseRejectsUnknownCategory(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	repo := NewCourseRepository(st, NewCategoryRepository(st, testLogger), testLogger)

	err := repo.Create(ctx, &domain.Course{
		Title:        "Orphan",
		InstructorID: "inst-1",
		CategoryID:   "nope",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnknownCategory, apperrors.GetAppError(err).Code)
}

func TestCourseCategoryDenormalization(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	categories := NewCategoryRepository(st, testLogger)
	repo := NewCourseRepository(st, categories, testLogger)

	category := &domain.Category{Name: "Development"}
	require.NoError(t, categories.Create(ctx, category))

	course := &domain.Course{
		Title:        "Go Basics",
		InstructorID: "inst-1",
		Price:        25,
		CategoryID:   category.ID,
	}
	require.NoError(t, repo.Create(ctx, course))
	assert.Equal(t, "Development", course.CategoryName)

	inCategory, err := repo.FindByCategory(ctx, category.ID)
	require.NoError(t, err)
	require.Len(t, inCategory, 1)
	assert.Equal(t, "Go Basics", inCategory[0].Title)
}

func TestCourseTitleFilterAndSort(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	repo := NewCourseRepository(st, NewCategoryRepository(st, testLogger), testLogger)

	seedCourse(t, repo, "Advanced Go", 40)
	seedCourse(t, repo, "Go for Beginners", 20)
	seedCourse(t, repo, "Rust Basics", 30)

	matches, err := repo.FindAll(ctx, CourseQuery{TitleSubstring: "go", SortBy: SortByTitle})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Advanced Go", matches[0].Title)
	assert.Equal(t, "Go for Beginners", matches[1].Title)

	_, err = repo.FindAll(ctx, CourseQuery{SortBy: "popularity"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestCourseDeleteRemovesPartitionOnly(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	repo := NewCourseRepository(st, NewCategoryRepository(st, testLogger), testLogger)
	lectures := NewLectureRepository(st, testLogger)
	enrollments := NewEnrollmentRepository(st, testLogger)

	course := seedCourse(t, repo, "Doomed", 10)
	require.NoError(t, lectures.Create(ctx, &domain.Lecture{CourseID: course.ID, Title: "L1", VideoKey: "v1"}))
	require.NoError(t, enrollments.Create(ctx, &domain.Enrollment{UserID: "u1", CourseID: course.ID, CourseTitle: "Doomed", CoursePrice: 10}))

	require.NoError(t, repo.Delete(ctx, course.ID))

	_, err := repo.FindByID(ctx, course.ID)
	assert.True(t, apperrors.IsNotFound(err))

	remaining, err := lectures.FindByCourse(ctx, course.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	// The enrollment survives with its denormalized title and price.
	enrollment, err := enrollments.FindByUserAndCourse(ctx, "u1", course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Doomed", enrollment.CourseTitle)
	assert.Equal(t, float64(10), enrollment.CoursePrice)
}

func TestCourseModeration(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	repo := NewCourseRepository(st, NewCategoryRepository(st, testLogger), testLogger)

	course := seedCourse(t, repo, "Pending", 10)
	assert.Equal(t, domain.CoursePending, course.Status)

	require.NoError(t, repo.SetStatus(ctx, course.ID, domain.CourseApproved, "admin-1", "looks good"))
	approved, err := repo.FindByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CourseApproved, approved.Status)
	assert.Equal(t, "admin-1", approved.ModeratedBy)
	assert.Equal(t, "looks good", approved.ModerationReason)

	err = repo.SetStatus(ctx, course.ID, "retired", "admin-1", "")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidTransition, apperrors.GetAppError(err).Code)
}

func TestCourseRatingAggregatesMirror(t *testing.T) {
	ctx := context.Background()
	st := newTestStore()
	repo := NewCourseRepository(st, NewCategoryRepository(st, testLogger), testLogger)

	course := seedCourse(t, repo, "Rated", 10)
	dist := domain.EmptyDistribution()
	dist["4"] = 1
	dist["5"] = 1
	require.NoError(t, repo.UpdateRatingAggregates(ctx, course.ID, 4.5, 2, dist))

	mirrored, err := repo.FindByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.5, mirrored.AverageRating)
	assert.Equal(t, 2, mirrored.RatingCount)
	assert.Equal(t, 1, mirrored.RatingDistribution["5"])
}
