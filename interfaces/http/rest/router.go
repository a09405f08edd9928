// Package rest assembles the HTTP API: route tree, middleware stack and the
// role guards in front of each surface.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upskillpro/backend/interfaces/http/rest/handlers"
	"github.com/upskillpro/backend/interfaces/http/rest/middleware"
	"github.com/upskillpro/backend/pkg/auth"
	"go.uber.org/zap"
)

// Handlers is the full handler set the router mounts.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Categories    *handlers.CategoryHandler
	Courses       *handlers.CourseHandler
	Enrollments   *handlers.EnrollmentHandler
	Ratings       *handlers.RatingHandler
	Tickets       *handlers.TicketHandler
	Announcements *handlers.AnnouncementHandler
	Notifications *handlers.NotificationHandler
	Admin         *handlers.AdminHandler
	Platform      *handlers.PlatformHandler
}

// Router builds the HTTP handler tree.
type Router struct {
	handlers Handlers
	tokens   *auth.TokenIssuer
	logger   *zap.Logger
}

// NewRouter creates a router.
func NewRouter(h Handlers, tokens *auth.TokenIssuer, logger *zap.Logger) *Router {
	return &Router{handlers: h, tokens: tokens, logger: logger}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://*.upskillpro.com"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)

	authenticate := middleware.Authenticate(rt.tokens)
	student := middleware.RequireRole(auth.CanEnroll)
	instructor := middleware.RequireRole(auth.CanCreateCourses)
	privilegedRead := middleware.RequireRole(auth.HasPrivilegedRead)
	superAdmin := middleware.RequireRole(auth.CanMutatePlatform)

	router.Route("/api", func(r chi.Router) {
		// Public surface.
		r.Post("/auth/signup", rt.handlers.Auth.Signup)
		r.Post("/auth/login", rt.handlers.Auth.Login)

		r.Get("/categories", rt.handlers.Categories.List)
		r.Get("/categories/{categoryID}", rt.handlers.Categories.Get)

		r.Get("/courses", rt.handlers.Courses.List)
		r.Get("/courses/{courseID}", rt.handlers.Courses.Get)
		r.Get("/courses/{courseID}/ratings", rt.handlers.Ratings.List)
		r.Get("/courses/{courseID}/ratings/stats", rt.handlers.Ratings.Stats)

		r.Get("/announcements", rt.handlers.Announcements.ListPublished)

		// Any authenticated user.
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/auth/me", rt.handlers.Auth.Me)
			r.Post("/auth/change-password", rt.handlers.Auth.ChangePassword)

			r.Get("/notifications", rt.handlers.Notifications.ListMine)
			r.Post("/notifications/read", rt.handlers.Notifications.MarkRead)

			r.Post("/tickets", rt.handlers.Tickets.Create)
			r.Get("/tickets", rt.handlers.Tickets.ListMine)
			r.Get("/tickets/{ticketID}", rt.handlers.Tickets.Get)
			r.Post("/tickets/{ticketID}/messages", rt.handlers.Tickets.AddMessage)
		})

		// Student surface.
		r.Group(func(r chi.Router) {
			r.Use(authenticate, student)

			r.Post("/enroll/{courseID}", rt.handlers.Enrollments.Enroll)
			r.Get("/enroll/all", rt.handlers.Enrollments.ListMine)
			r.Get("/enroll/my-learning", rt.handlers.Enrollments.MyLearning)
			r.Get("/enroll/{courseID}/progress", rt.handlers.Enrollments.Progress)
			r.Put("/enroll/{courseID}/progress", rt.handlers.Enrollments.UpdateProgress)

			r.Post("/courses/{courseID}/ratings", rt.handlers.Ratings.Rate)
			r.Delete("/courses/{courseID}/ratings", rt.handlers.Ratings.Delete)
		})

		// Instructor surface.
		r.Group(func(r chi.Router) {
			r.Use(authenticate, instructor)

			r.Post("/courses", rt.handlers.Courses.Create)
			r.Put("/courses/{courseID}", rt.handlers.Courses.Update)
			r.Delete("/courses/{courseID}", rt.handlers.Courses.Delete)
			r.Post("/courses/{courseID}/lectures", rt.handlers.Courses.CreateLecture)
			r.Get("/enroll/revenue", rt.handlers.Enrollments.Revenue)
		})

		// Admin surface. Reads are shared by admin and super_admin; every
		// mutation is super_admin only.
		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate)

			r.Group(func(r chi.Router) {
				r.Use(privilegedRead)

				r.Get("/users", rt.handlers.Admin.ListUsers)
				r.Get("/users/{userID}", rt.handlers.Admin.GetUser)
				r.Get("/courses", rt.handlers.Admin.ListCoursesByStatus)
				r.Get("/settings", rt.handlers.Admin.GetSettings)
				r.Get("/security/policies", rt.handlers.Admin.GetSecurityPolicies)
				r.Get("/security/events/{eventType}", rt.handlers.Admin.SecurityEvents)
				r.Get("/audit/report", rt.handlers.Admin.AuditReport)
				r.Get("/audit/{adminID}", rt.handlers.Admin.AuditHistory)
				r.Get("/tickets", rt.handlers.Tickets.Queue)
				r.Get("/announcements", rt.handlers.Announcements.ListByStatus)
				r.Get("/notification-templates/{templateID}", rt.handlers.Notifications.GetTemplate)
				r.Get("/backups", rt.handlers.Platform.ListBackups)
				r.Get("/maintenance", rt.handlers.Platform.ListMaintenance)
			})

			r.Group(func(r chi.Router) {
				r.Use(superAdmin)

				r.Put("/users/{userID}/role", rt.handlers.Admin.ChangeRole)
				r.Put("/users/{userID}/status", rt.handlers.Admin.ChangeStatus)
				r.Put("/courses/{courseID}/status", rt.handlers.Admin.ModerateCourse)
				r.Put("/settings", rt.handlers.Admin.UpdateSettings)
				r.Put("/security/policies", rt.handlers.Admin.UpdateSecurityPolicies)
				r.Put("/tickets/{ticketID}/status", rt.handlers.Tickets.Transition)
				r.Post("/announcements", rt.handlers.Announcements.Create)
				r.Put("/announcements/{announcementID}", rt.handlers.Announcements.Update)
				r.Put("/announcements/{announcementID}/status", rt.handlers.Announcements.Transition)
				r.Post("/notifications", rt.handlers.Notifications.Send)
				r.Post("/notification-templates", rt.handlers.Notifications.CreateTemplate)
				r.Put("/notification-templates/{templateID}", rt.handlers.Notifications.UpdateTemplate)
				r.Delete("/notification-templates/{templateID}", rt.handlers.Notifications.DeleteTemplate)
				r.Post("/backups", rt.handlers.Platform.CreateBackup)
				r.Put("/backups/{backupID}", rt.handlers.Platform.CompleteBackup)
				r.Post("/maintenance", rt.handlers.Platform.ScheduleMaintenance)
				r.Put("/maintenance/{windowID}/status", rt.handlers.Platform.TransitionMaintenance)
			})
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
