package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upskillpro/backend/domain"
	"github.com/upskillpro/backend/infrastructure/config"
	"github.com/upskillpro/backend/infrastructure/di"
	"github.com/upskillpro/backend/infrastructure/persistence/store"
	apperrors "github.com/upskillpro/backend/pkg/errors"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*di.Container, http.Handler) {
	t.Helper()
	cfg := &config.Config{
		Environment:   "test",
		DynamoDBTable: "test",
		JWTSecret:     "test-secret",
		JWTIssuer:     "test",
		TokenExpiry:   time.Hour,
	}
	container, err := di.NewContainerWithStore(cfg, store.NewMemoryStore(), zap.NewNop())
	require.NoError(t, err)
	return container, container.Router
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Code string `json:"code"`
	}
	decodeInto(t, rec, &envelope)
	return envelope.Code
}

type authPayload struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func signup(t *testing.T, h http.Handler, name, email, role string) authPayload {
	t.Helper()
	body := map[string]string{"name": name, "email": email, "password": "correct-horse"}
	if role != "" {
		body["role"] = role
	}
	rec := doJSON(t, h, http.MethodPost, "/api/auth/signup", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var payload authPayload
	decodeInto(t, rec, &payload)
	return payload
}

// issueFor creates a privileged user directly and signs a token for them.
// Privileged roles cannot be self-assigned through signup.
func issueFor(t *testing.T, c *di.Container, name string, role domain.Role) (string, *domain.User) {
	t.Helper()
	user := &domain.User{Name: name, Email: name + "@example.com", Role: role, PasswordHash: "x"}
	require.NoError(t, c.Users.Create(context.Background(), user))
	token, err := c.Tokens.Issue(user)
	require.NoError(t, err)
	return token, user
}

func createCourse(t *testing.T, h http.Handler, token, title string, price float64) *domain.Course {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/courses", token, map[string]any{
		"title": title, "description": "desc", "price": price,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var course domain.Course
	decodeInto(t, rec, &course)
	return &course
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthEndpoints(t *testing.T) {
	_, h := newTestServer(t)

	payload := signup(t, h, "Ada", "ada@example.com", "")
	assert.NotEmpty(t, payload.Token)
	assert.Equal(t, domain.RoleStudent, payload.User.Role)

	// Duplicate email.
	rec := doJSON(t, h, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Imposter", "email": "ada@example.com", "password": "battery-staple",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeEmailExists, errorCode(t, rec))

	// Wrong password.
	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperrors.CodeInvalidCredentials, errorCode(t, rec))

	// Valid login, then the profile endpoint.
	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var login authPayload
	decodeInto(t, rec, &login)

	rec = doJSON(t, h, http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me domain.User
	decodeInto(t, rec, &me)
	assert.Equal(t, "ada@example.com", me.Email)

	// No token at all.
	rec = doJSON(t, h, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCatalogPriceSort(t *testing.T) {
	_, h := newTestServer(t)
	instructor := signup(t, h, "Teacher", "teacher@example.com", "instructor")

	createCourse(t, h, instructor.Token, "Mid", 50)
	createCourse(t, h, instructor.Token, "Cheap", 5)
	createCourse(t, h, instructor.Token, "Expensive", 100)

	rec := doJSON(t, h, http.MethodGet, "/api/courses?sortKey=price", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var courses []*domain.Course
	decodeInto(t, rec, &courses)
	require.Len(t, courses, 3)
	assert.Equal(t, []float64{5, 50, 100}, []float64{courses[0].Price, courses[1].Price, courses[2].Price})
}

func TestEnrollmentEndpoints(t *testing.T) {
	_, h := newTestServer(t)
	instructor := signup(t, h, "Teacher", "teacher@example.com", "instructor")
	student := signup(t, h, "Ada", "ada@example.com", "")
	course := createCourse(t, h, instructor.Token, "Go Basics", 20)

	rec := doJSON(t, h, http.MethodPost, "/api/courses/"+course.ID+"/lectures", instructor.Token, map[string]any{
		"title": "intro", "videoKey": "v/intro", "durationSeconds": 60,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var lecture domain.Lecture
	decodeInto(t, rec, &lecture)

	// Instructors cannot enroll.
	rec = doJSON(t, h, http.MethodPost, "/api/enroll/"+course.ID, instructor.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/enroll/"+course.ID, student.Token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Enrolling twice conflicts.
	rec = doJSON(t, h, http.MethodPost, "/api/enroll/"+course.ID, student.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeAlreadyEnrolled, errorCode(t, rec))

	// Completing the only lecture finishes the course.
	rec = doJSON(t, h, http.MethodPut, "/api/enroll/"+course.ID+"/progress", student.Token, map[string]string{
		"lectureId": lecture.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var enrollment domain.Enrollment
	decodeInto(t, rec, &enrollment)
	assert.Equal(t, []string{lecture.ID}, enrollment.Progress)
	assert.NotEmpty(t, enrollment.CompletedAt)

	rec = doJSON(t, h, http.MethodGet, "/api/enroll/my-learning", student.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/enroll/revenue", instructor.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report struct {
		TotalEnrollments int     `json:"totalEnrollments"`
		TotalRevenue     float64 `json:"totalRevenue"`
	}
	decodeInto(t, rec, &report)
	assert.Equal(t, 1, report.TotalEnrollments)
	assert.Equal(t, 20.0, report.TotalRevenue)
}

func TestRatingEndpoints(t *testing.T) {
	_, h := newTestServer(t)
	instructor := signup(t, h, "Teacher", "teacher@example.com", "instructor")
	enrolled := signup(t, h, "Ada", "ada@example.com", "")
	enrolled2 := signup(t, h, "Grace", "grace@example.com", "")
	outsider := signup(t, h, "Eve", "eve@example.com", "")
	course := createCourse(t, h, instructor.Token, "Go Basics", 20)

	for _, tok := range []string{enrolled.Token, enrolled2.Token} {
		rec := doJSON(t, h, http.MethodPost, "/api/enroll/"+course.ID, tok, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	ratingsPath := "/api/courses/" + course.ID + "/ratings"

	// Unauthenticated writes are rejected before any domain check.
	rec := doJSON(t, h, http.MethodPost, ratingsPath, "", map[string]any{"rating": 5})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Authenticated but not enrolled.
	rec = doJSON(t, h, http.MethodPost, ratingsPath, outsider.Token, map[string]any{"rating": 5})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apperrors.CodeNotEnrolled, errorCode(t, rec))

	// Two fresh ratings.
	rec = doJSON(t, h, http.MethodPost, ratingsPath, enrolled.Token, map[string]any{"rating": 3, "review": "decent"})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = doJSON(t, h, http.MethodPost, ratingsPath, enrolled2.Token, map[string]any{"rating": 5})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var stats struct {
		AverageRating float64        `json:"averageRating"`
		RatingCount   int            `json:"ratingCount"`
		Distribution  map[string]int `json:"distribution"`
	}
	rec = doJSON(t, h, http.MethodGet, ratingsPath+"/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeInto(t, rec, &stats)
	assert.Equal(t, 4.0, stats.AverageRating)
	assert.Equal(t, 2, stats.RatingCount)
	assert.Equal(t, 1, stats.Distribution["3"])

	// Re-rating is an update, not a second rating.
	rec = doJSON(t, h, http.MethodPost, ratingsPath, enrolled.Token, map[string]any{"rating": 5, "review": "grew on me"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, ratingsPath+"/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeInto(t, rec, &stats)
	assert.Equal(t, 5.0, stats.AverageRating)
	assert.Equal(t, 2, stats.RatingCount)

	// The public listing shows both reviews.
	rec = doJSON(t, h, http.MethodGet, ratingsPath, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []*domain.Rating `json:"items"`
	}
	decodeInto(t, rec, &page)
	assert.Len(t, page.Items, 2)
}

func TestSuspensionLockout(t *testing.T) {
	c, h := newTestServer(t)
	student := signup(t, h, "Ada", "ada@example.com", "")
	superToken, _ := issueFor(t, c, "root", domain.RoleSuperAdmin)

	rec := doJSON(t, h, http.MethodPut, "/api/admin/users/"+student.User.ID+"/status", superToken, map[string]string{
		"accountStatus": "suspended", "reason": "tos violation",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	var envelope struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	decodeInto(t, rec, &envelope)
	assert.Equal(t, apperrors.CodeAccountSuspended, envelope.Code)
	assert.Equal(t, "suspended", envelope.Details["accountStatus"])

	// Reactivation restores access.
	rec = doJSON(t, h, http.MethodPut, "/api/admin/users/"+student.User.ID+"/status", superToken, map[string]string{
		"accountStatus": "active",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminGuards(t *testing.T) {
	c, h := newTestServer(t)
	student := signup(t, h, "Ada", "ada@example.com", "")
	adminToken, _ := issueFor(t, c, "admin", domain.RoleAdmin)
	superToken, superUser := issueFor(t, c, "root", domain.RoleSuperAdmin)

	// Students cannot read the admin surface.
	rec := doJSON(t, h, http.MethodGet, "/api/admin/users", student.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admins may read but not mutate.
	rec = doJSON(t, h, http.MethodGet, "/api/admin/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodPut, "/api/admin/users/"+student.User.ID+"/role", adminToken, map[string]string{
		"role": "instructor",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Super admins may mutate, and the change is audited.
	rec = doJSON(t, h, http.MethodPut, "/api/admin/users/"+student.User.ID+"/role", superToken, map[string]string{
		"role": "instructor", "reason": "promotion",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/api/admin/users/"+student.User.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var changed domain.User
	decodeInto(t, rec, &changed)
	assert.Equal(t, domain.RoleInstructor, changed.Role)

	rec = doJSON(t, h, http.MethodGet, "/api/admin/audit/"+superUser.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var audit struct {
		Items []*domain.AdminAction `json:"items"`
	}
	decodeInto(t, rec, &audit)
	require.NotEmpty(t, audit.Items)
	assert.Equal(t, "change_role", audit.Items[0].Action)
}

func TestTicketEndpoints(t *testing.T) {
	c, h := newTestServer(t)
	student := signup(t, h, "Ada", "ada@example.com", "")
	other := signup(t, h, "Eve", "eve@example.com", "")
	superToken, _ := issueFor(t, c, "root", domain.RoleSuperAdmin)

	rec := doJSON(t, h, http.MethodPost, "/api/tickets", student.Token, map[string]string{
		"subject": "No video", "body": "player is blank", "priority": "high",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ticket domain.SupportTicket
	decodeInto(t, rec, &ticket)

	// Only the owner or staff may read a ticket.
	rec = doJSON(t, h, http.MethodGet, "/api/tickets/"+ticket.ID, other.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doJSON(t, h, http.MethodGet, "/api/tickets/"+ticket.ID, student.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Staff queue and transition.
	rec = doJSON(t, h, http.MethodGet, "/api/admin/tickets?status=open", superToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/api/admin/tickets/"+ticket.ID+"/status", superToken, map[string]string{
		"status": "in_progress",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Skipping backward is rejected.
	rec = doJSON(t, h, http.MethodPut, "/api/admin/tickets/"+ticket.ID+"/status", superToken, map[string]string{
		"status": "in_progress",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeInvalidTransition, errorCode(t, rec))
}

func TestAnnouncementEndpoints(t *testing.T) {
	c, h := newTestServer(t)
	superToken, _ := issueFor(t, c, "root", domain.RoleSuperAdmin)

	rec := doJSON(t, h, http.MethodPost, "/api/admin/announcements", superToken, map[string]string{
		"title": "Scheduled maintenance", "body": "Sunday 2am", "audience": "all",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var announcement domain.Announcement
	decodeInto(t, rec, &announcement)

	// Drafts are invisible on the public feed.
	rec = doJSON(t, h, http.MethodGet, "/api/announcements", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var feed struct {
		Items []*domain.Announcement `json:"items"`
	}
	decodeInto(t, rec, &feed)
	assert.Empty(t, feed.Items)

	rec = doJSON(t, h, http.MethodPut, "/api/admin/announcements/"+announcement.ID+"/status", superToken, map[string]string{
		"status": "published",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/api/announcements", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeInto(t, rec, &feed)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "Scheduled maintenance", feed.Items[0].Title)
}
