package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upskillpro/backend/domain"
	apperrors "github.com/upskillpro/backend/pkg/errors"
)

func draftAnnouncement(t *testing.T, repo *AnnouncementRepository, title string) *domain.Announcement {
	t.Helper()
	a := &domain.Announcement{Title: title, Body: "body", CreatedBy: "admin-1"}
	require.NoError(t, repo.Create(context.Background(), a))
	return a
}

func TestAnnouncementDefaults(t *testing.T) {
	repo := NewAnnouncementRepository(newTestStore(), testLogger)

	a := draftAnnouncement(t, repo, "Welcome")
	assert.Equal(t, domain.AnnouncementDraft, a.Status)
	assert.Equal(t, "all", a.Audience)
}

func TestAnnouncementLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewAnnouncementRepository(newTestStore(), testLogger)

	a := draftAnnouncement(t, repo, "Maintenance notice")

	scheduled, err := repo.Transition(ctx, a.ID, domain.AnnouncementScheduled, "2026-09-01T00:00:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-01T00:00:00.000Z", scheduled.ScheduledFor)

	published, err := repo.Transition(ctx, a.ID, domain.AnnouncementPublished, "")
	require.NoError(t, err)
	assert.NotEmpty(t, published.PublishedAt)

	archived, err := repo.Transition(ctx, a.ID, domain.AnnouncementArchived, "")
	require.NoError(t, err)
	assert.NotEmpty(t, archived.ArchivedAt)

	// Archived is terminal.
	_, err = repo.Transition(ctx, a.ID, domain.AnnouncementPublished, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidTransition, apperrors.GetAppError(err).Code)
}

func TestAnnouncementScheduleRequiresTimestamp(t *testing.T) {
	ctx := context.Background()
	repo := NewAnnouncementRepository(newTestStore(), testLogger)

	a := draftAnnouncement(t, repo, "Incomplete")
	_, err := repo.Transition(ctx, a.ID, domain.AnnouncementScheduled, "")
	assert.True(t, apperrors.IsValidation(err))
}

func TestAnnouncementUnscheduleClearsTimestamp(t *testing.T) {
	ctx := context.Background()
	repo := NewAnnouncementRepository(newTestStore(), testLogger)

	a := draftAnnouncement(t, repo, "Changeable")
	_, err := repo.Transition(ctx, a.ID, domain.AnnouncementScheduled, "2026-09-01T00:00:00.000Z")
	require.NoError(t, err)

	back, err := repo.Transition(ctx, a.ID, domain.AnnouncementDraft, "")
	require.NoError(t, err)
	assert.Empty(t, back.ScheduledFor)
}

func TestAnnouncementStatusQueues(t *testing.T) {
	ctx := context.Background()
	repo := NewAnnouncementRepository(newTestStore(), testLogger)

	a := draftAnnouncement(t, repo, "First")
	draftAnnouncement(t, repo, "Second")

	_, err := repo.Transition(ctx, a.ID, domain.AnnouncementPublished, "")
	require.NoError(t, err)

	drafts, err := repo.ListByStatus(ctx, domain.AnnouncementDraft, 10, nil)
	require.NoError(t, err)
	require.Len(t, drafts.Announcements, 1)
	assert.Equal(t, "Second", drafts.Announcements[0].Title)

	published, err := repo.ListByStatus(ctx, domain.AnnouncementPublished, 10, nil)
	require.NoError(t, err)
	require.Len(t, published.Announcements, 1)
	assert.Equal(t, "First", published.Announcements[0].Title)
}

func TestAnnouncementUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewAnnouncementRepository(newTestStore(), testLogger)

	a := draftAnnouncement(t, repo, "Typo-ridden")
	title := "Fixed"
	audience := "students"
	updated, err := repo.Update(ctx, a.ID, AnnouncementPatch{Title: &title, Audience: &audience})
	require.NoError(t, err)
	assert.Equal(t, "Fixed", updated.Title)
	assert.Equal(t, "students", updated.Audience)

	_, err = repo.Update(ctx, a.ID, AnnouncementPatch{})
	assert.True(t, apperrors.IsValidation(err))
}
