package services

import (
	"context"
	"math"

	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/persistence/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// fanoutLimit caps the concurrent per-course reads in the composite queries.
const fanoutLimit = 8

// QueryFacade serves the composite read models that span repositories: the
// student dashboard and the instructor earnings report.
type QueryFacade struct {
	courses     *repository.CourseRepository
	lectures    *repository.LectureRepository
	enrollments *repository.EnrollmentRepository
	logger      *zap.Logger
}

// NewQueryFacade creates a query facade.
func NewQueryFacade(
	courses *repository.CourseRepository,
	lectures *repository.LectureRepository,
	enrollments *repository.EnrollmentRepository,
	logger *zap.Logger,
) *QueryFacade {
	return &QueryFacade{courses: courses, lectures: lectures, enrollments: enrollments, logger: logger}
}

// LearningEntry is one enrolled course on the student dashboard, with
// progress computed against the course's current lecture set.
type LearningEntry struct {
	Enrollment *domain.Enrollment `json:"enrollment"`

	TotalLectures     int     `json:"totalLectures"`
	CompletedLectures int     `json:"completedLectures"`
	ProgressPercent   float64 `json:"progressPercent"`

	TotalDurationSeconds     int `json:"totalDurationSeconds"`
	CompletedDurationSeconds int `json:"completedDurationSeconds"`
}

// MyLearning builds the dashboard for one student. Lecture sets are fetched
// concurrently per enrollment. Progress entries for lectures that no longer
// exist count toward nothing; a course deleted after enrollment shows zero
// lectures but keeps its denormalized title and price.
func (f *QueryFacade) MyLearning(ctx context.Context, userID string) ([]*LearningEntry, error) {
	enrollments, err := f.enrollments.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]*LearningEntry, len(enrollments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanoutLimit)
	for i, enrollment := range enrollments {
		i, enrollment := i, enrollment
		g.Go(func() error {
			lectures, err := f.lectures.FindByCourse(gctx, enrollment.CourseID)
			if err != nil {
				return err
			}
			entries[i] = buildLearningEntry(enrollment, lectures)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

func buildLearningEntry(enrollment *domain.Enrollment, lectures []*domain.Lecture) *LearningEntry {
	completed := make(map[string]bool, len(enrollment.Progress))
	for _, lectureID := range enrollment.Progress {
		completed[lectureID] = true
	}

	entry := &LearningEntry{Enrollment: enrollment, TotalLectures: len(lectures)}
	for _, lecture := range lectures {
		entry.TotalDurationSeconds += lecture.DurationSeconds
		if completed[lecture.ID] {
			entry.CompletedLectures++
			entry.CompletedDurationSeconds += lecture.DurationSeconds
		}
	}
	if entry.TotalLectures > 0 {
		pct := float64(entry.CompletedLectures) / float64(entry.TotalLectures) * 100
		entry.ProgressPercent = math.Round(pct*10) / 10
	}
	return entry
}

// CourseEarnings is one course's row in the earnings report. Revenue is the
// current price times enrollment count; historical price changes are not
// reconstructed.
type CourseEarnings struct {
	Course          *domain.Course `json:"course"`
	EnrollmentCount int            `json:"enrollmentCount"`
	Revenue         float64        `json:"revenue"`
}

// EarningsReport is the instructor-wide rollup.
type EarningsReport struct {
	Courses          []*CourseEarnings `json:"courses"`
	TotalEnrollments int               `json:"totalEnrollments"`
	TotalRevenue     float64           `json:"totalRevenue"`
}

// InstructorEarnings counts enrollments for each of the instructor's courses
// concurrently and rolls up revenue.
func (f *QueryFacade) InstructorEarnings(ctx context.Context, instructorID string) (*EarningsReport, error) {
	courses, err := f.courses.FindByInstructor(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	rows := make([]*CourseEarnings, len(courses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanoutLimit)
	for i, course := range courses {
		i, course := i, course
		g.Go(func() error {
			count, err := f.enrollments.CountByCourse(gctx, course.ID)
			if err != nil {
				return err
			}
			rows[i] = &CourseEarnings{
				Course:          course,
				EnrollmentCount: count,
				Revenue:         course.Price * float64(count),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &EarningsReport{Courses: rows}
	for _, row := range rows {
		report.TotalEnrollments += row.EnrollmentCount
		report.TotalRevenue += row.Revenue
	}
	return report, nil
}

// CourseDetail is the course page read model: metadata plus ordered lectures.
type CourseDetail struct {
	Course   *domain.Course    `json:"course"`
	Lectures []*domain.Lecture `json:"lectures"`
}

// GetCourseDetail loads a course and its lectures in one partition read.
func (f *QueryFacade) GetCourseDetail(ctx context.Context, courseID string) (*CourseDetail, error) {
	course, lectures, err := f.courses.FindByIDWithLectures(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return &CourseDetail{Course: course, Lectures: lectures}, nil
}
