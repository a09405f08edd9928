// Package di wires the application object graph. Construction is explicit
// and ordered: store, repositories, services, handlers, router.
package di

import (
	"context"
	"fmt"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/upskillpro/backend/application/services"
	"github.com/upskillpro/backend/infrastructure/config"
	"github.com/upskillpro/backend/infrastructure/persistence/repository"
	"github.com/upskillpro/backend/infrastructure/persistence/store"
	"github.com/upskillpro/backend/interfaces/http/rest"
	"github.com/upskillpro/backend/interfaces/http/rest/handlers"
	"github.com/upskillpro/backend/pkg/auth"
)

// Container holds every long-lived component of the application.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Store  store.Store
	Tokens *auth.TokenIssuer

	Users         *repository.UserRepository
	Categories    *repository.CategoryRepository
	Courses       *repository.CourseRepository
	Lectures      *repository.LectureRepository
	Enrollments   *repository.EnrollmentRepository
	Ratings       *repository.RatingRepository
	Audit         *repository.AuditRepository
	Tickets       *repository.TicketRepository
	Announcements *repository.AnnouncementRepository
	Notifications *repository.NotificationRepository
	Settings      *repository.SettingsRepository
	Platform      *repository.PlatformRepository

	Auth        *services.AuthService
	Enrollment  *services.EnrollmentService
	Rating      *services.RatingService
	Aggregates  *services.AggregateCoordinator
	QueryFacade *services.QueryFacade

	Router http.Handler
}

// NewContainer builds the full object graph against a DynamoDB-backed store.
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := dynamodb.NewFromConfig(awsCfg)
	st := store.NewDynamoStore(client, cfg.DynamoDBTable, logger)
	return newContainer(cfg, st, logger)
}

// NewContainerWithStore builds the object graph over a caller-supplied store.
// Tests use this with the in-memory adapter.
func NewContainerWithStore(cfg *config.Config, st store.Store, logger *zap.Logger) (*Container, error) {
	return newContainer(cfg, st, logger)
}

func newContainer(cfg *config.Config, st store.Store, logger *zap.Logger) (*Container, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		// Config validation rejects an empty secret in production.
		secret = "insecure-dev-secret"
	}
	tokens, err := auth.NewTokenIssuer(secret, cfg.JWTIssuer, cfg.TokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		Store:  st,
		Tokens: tokens,
	}

	c.Users = repository.NewUserRepository(st, logger)
	c.Categories = repository.NewCategoryRepository(st, logger)
	c.Courses = repository.NewCourseRepository(st, c.Categories, logger)
	c.Lectures = repository.NewLectureRepository(st, logger)
	c.Enrollments = repository.NewEnrollmentRepository(st, logger)
	c.Ratings = repository.NewRatingRepository(st, logger)
	c.Audit = repository.NewAuditRepository(st, logger)
	c.Tickets = repository.NewTicketRepository(st, logger)
	c.Announcements = repository.NewAnnouncementRepository(st, logger)
	c.Notifications = repository.NewNotificationRepository(st, logger)
	c.Settings = repository.NewSettingsRepository(st, logger)
	c.Platform = repository.NewPlatformRepository(st, logger)

	c.Aggregates = services.NewAggregateCoordinator(c.Ratings, c.Courses, logger)
	c.Auth = services.NewAuthService(c.Users, c.Audit, c.Settings, tokens, logger)
	c.Enrollment = services.NewEnrollmentService(c.Courses, c.Lectures, c.Enrollments, logger)
	c.Rating = services.NewRatingService(c.Ratings, c.Enrollments, c.Users, c.Aggregates, logger)
	c.QueryFacade = services.NewQueryFacade(c.Courses, c.Lectures, c.Enrollments, logger)

	auditor := handlers.NewAuditor(c.Audit, logger)

	h := rest.Handlers{
		Auth:          handlers.NewAuthHandler(c.Auth, c.Users, logger),
		Categories:    handlers.NewCategoryHandler(c.Categories, logger),
		Courses:       handlers.NewCourseHandler(c.Courses, c.Lectures, c.QueryFacade, logger),
		Enrollments:   handlers.NewEnrollmentHandler(c.Enrollments, c.Enrollment, c.QueryFacade, logger),
		Ratings:       handlers.NewRatingHandler(c.Ratings, c.Courses, c.Rating, logger),
		Tickets:       handlers.NewTicketHandler(c.Tickets, auditor, logger),
		Announcements: handlers.NewAnnouncementHandler(c.Announcements, auditor, logger),
		Notifications: handlers.NewNotificationHandler(c.Notifications, c.Users, auditor, logger),
		Admin:         handlers.NewAdminHandler(c.Users, c.Courses, c.Settings, c.Audit, auditor, logger),
		Platform:      handlers.NewPlatformHandler(c.Platform, auditor, logger),
	}

	c.Router = rest.NewRouter(h, tokens, logger).Setup()
	return c, nil
}
