package services

import (
	"context"
	"time"

	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/repository"
	"github.com/upskillpro/backend/infrastructure/persistence/schema"
	apperrors "github.com/upskillpro/backend/pkg/errors"
	"go.uber.org/zap"
)

func schemaNow() string { return schema.FormatTime(time.Now()) }

// EnrollmentService orchestrates enrollment and progress tracking across the
// course, lecture and enrollment repositories.
type EnrollmentService struct {
	courses     *repository.CourseRepository
	lectures    *repository.LectureRepository
	enrollments *repository.EnrollmentRepository
	logger      *zap.Logger
}

// NewEnrollmentService creates an enrollment service.
func NewEnrollmentService(
	courses *repository.CourseRepository,
	lectures *repository.LectureRepository,
	enrollments *repository.EnrollmentRepository,
	logger *zap.Logger,
) *EnrollmentService {
	return &EnrollmentService{courses: courses, lectures: lectures, enrollments: enrollments, logger: logger}
}

// Enroll enrolls the user in a course, denormalizing title, price and image
// at purchase time. Missing courses 404; duplicates surface the conflict from
// the conditional write.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID string) (*domain.Enrollment, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrollment := &domain.Enrollment{
		UserID:         userID,
		CourseID:       course.ID,
		CourseTitle:    course.Title,
		CoursePrice:    course.Price,
		CourseImageKey: course.ImageKey,
	}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// CompleteLecture marks one lecture complete in the user's enrollment. The
// lecture must belong to the course; a progress set covering every current
// lecture stamps completedAt. The progress list is replaced wholesale, so
// concurrent updates are last write wins.
func (s *EnrollmentService) CompleteLecture(ctx context.Context, userID, courseID, lectureID string) (*domain.Enrollment, error) {
	enrollment, err := s.enrollments.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	lectures, err := s.lectures.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(lectures))
	for _, lecture := range lectures {
		known[lecture.ID] = true
	}
	if !known[lectureID] {
		return nil, apperrors.NewNotFoundError("lecture")
	}

	progress := enrollment.Progress
	already := false
	for _, id := range progress {
		if id == lectureID {
			already = true
			break
		}
	}
	if !already {
		progress = append(progress, lectureID)
	}

	// Stale IDs from since-removed lectures do not count toward completion.
	completedCurrent := 0
	for _, id := range progress {
		if known[id] {
			completedCurrent++
		}
	}

	update := repository.ProgressUpdate{Progress: progress}
	if completedCurrent == len(lectures) {
		update.CompletedAt = schemaNow()
	}
	if err := s.enrollments.UpdateProgress(ctx, userID, courseID, update); err != nil {
		return nil, err
	}
	return s.enrollments.FindByUserAndCourse(ctx, userID, courseID)
}

// Progress returns the enrollment's progress state for one course.
func (s *EnrollmentService) Progress(ctx context.Context, userID, courseID string) (*domain.Enrollment, error) {
	return s.enrollments.FindByUserAndCourse(ctx, userID, courseID)
}
