package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upskillpro/backend/domain"
	apperrors "github.com/upskillpro/backend/pkg/errors"
)

func createCourse(t *testing.T, f *fixture, title string, price float64) *domain.Course {
	t.Helper()
	course := &domain.Course{Title: title, Description: "d", InstructorID: "inst-1", Price: price}
	require.NoError(t, f.courses.Create(context.Background(), course))
	return course
}

func addLecture(t *testing.T, f *fixture, courseID, title string, duration int) *domain.Lecture {
	t.Helper()
	lecture := &domain.Lecture{CourseID: courseID, Title: title, VideoKey: "v/" + title, DurationSeconds: duration}
	require.NoError(t, f.lectures.Create(context.Background(), lecture))
	return lecture
}

func TestEnrollDenormalizesCourse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	course := createCourse(t, f, "Go Basics", 49.99)

	enrollment, err := f.enrollment.Enroll(ctx, "u1", course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", enrollment.CourseTitle)
	assert.Equal(t, 49.99, enrollment.CoursePrice)
}

func TestEnrollMissingCourse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.enrollment.Enroll(ctx, "u1", "ghost")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestEnrollTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	course := createCourse(t, f, "Go Basics", 20)

	_, err := f.enrollment.Enroll(ctx, "u1", course.ID)
	require.NoError(t, err)

	_, err = f.enrollment.Enroll(ctx, "u1", course.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeAlreadyEnrolled, apperrors.GetAppError(err).Code)
}

func TestCompleteLectureStampsCompletion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	course := createCourse(t, f, "Go Basics", 20)
	l1 := addLecture(t, f, course.ID, "intro", 60)
	l2 := addLecture(t, f, course.ID, "setup", 120)

	_, err := f.enrollment.Enroll(ctx, "u1", course.ID)
	require.NoError(t, err)

	partial, err := f.enrollment.CompleteLecture(ctx, "u1", course.ID, l1.ID)
	require.NoError(t, err)
	assert.Len(t, partial.Progress, 1)
	assert.Empty(t, partial.CompletedAt)

	// Completing the same lecture again is idempotent.
	partial, err = f.enrollment.CompleteLecture(ctx, "u1", course.ID, l1.ID)
	require.NoError(t, err)
	assert.Len(t, partial.Progress, 1)

	full, err := f.enrollment.CompleteLecture(ctx, "u1", course.ID, l2.ID)
	require.NoError(t, err)
	assert.Len(t, full.Progress, 2)
	assert.NotEmpty(t, full.CompletedAt)
}

func TestCompleteLectureChecksMembership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	course := createCourse(t, f, "Go Basics", 20)
	other := createCourse(t, f, "Rust Basics", 20)
	foreign := addLecture(t, f, other.ID, "intro", 60)

	_, err := f.enrollment.Enroll(ctx, "u1", course.ID)
	require.NoError(t, err)

	_, err = f.enrollment.CompleteLecture(ctx, "u1", course.ID, foreign.ID)
	assert.True(t, apperrors.IsNotFound(err))

	// No enrollment at all also fails.
	_, err = f.enrollment.CompleteLecture(ctx, "u2", course.ID, foreign.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
