package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/upskillpro/backend/infrastructure/persistence/repository"
	"github.com/upskillpro/backend/infrastructure/persistence/store"
	"github.com/upskillpro/backend/pkg/auth"
	"go.uber.org/zap"
)

var testLogger = zap.NewNop()

// fixture is the full service graph over one in-memory store.
type fixture struct {
	store       *store.MemoryStore
	users       *repository.UserRepository
	categories  *repository.CategoryRepository
	courses     *repository.CourseRepository
	lectures    *repository.LectureRepository
	enrollments *repository.EnrollmentRepository
	ratings     *repository.RatingRepository
	audit       *repository.AuditRepository
	settings    *repository.SettingsRepository

	auth       *AuthService
	enrollment *EnrollmentService
	rating     *RatingService
	facade     *QueryFacade
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemoryStore()

	f := &fixture{store: st}
	f.users = repository.NewUserRepository(st, testLogger)
	f.categories = repository.NewCategoryRepository(st, testLogger)
	f.courses = repository.NewCourseRepository(st, f.categories, testLogger)
	f.lectures = repository.NewLectureRepository(st, testLogger)
	f.enrollments = repository.NewEnrollmentRepository(st, testLogger)
	f.ratings = repository.NewRatingRepository(st, testLogger)
	f.audit = repository.NewAuditRepository(st, testLogger)
	f.settings = repository.NewSettingsRepository(st, testLogger)

	tokens, err := auth.NewTokenIssuer("test-secret", "test", time.Hour)
	require.NoError(t, err)

	aggregates := NewAggregateCoordinator(f.ratings, f.courses, testLogger)
	f.auth = NewAuthService(f.users, f.audit, f.settings, tokens, testLogger)
	f.enrollment = NewEnrollmentService(f.courses, f.lectures, f.enrollments, testLogger)
	f.rating = NewRatingService(f.ratings, f.enrollments, f.users, aggregates, testLogger)
	f.facade = NewQueryFacade(f.courses, f.lectures, f.enrollments, testLogger)
	return f
}
