package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upskillpro/backend/domain"
	apperrors "github.com/upskillpro/backend/pkg/errors"
)

func TestNotificationCreateAndMarkRead(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository(newTestStore(), testLogger)

	n := &domain.Notification{UserID: "u1", Title: "Hello", Body: "welcome"}
	require.NoError(t, repo.Create(ctx, n))
	assert.False(t, n.Read)

	page, err := repo.ListByUser(ctx, "u1", 10, nil)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)

	stored := page.Notifications[0]
	require.NoError(t, repo.MarkRead(ctx, "u1", stored.CreatedAt, stored.ID))

	page, err = repo.ListByUser(ctx, "u1", 10, nil)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)
	assert.True(t, page.Notifications[0].Read)
	assert.NotEmpty(t, page.Notifications[0].ReadAt)

	err = repo.MarkRead(ctx, "u1", stored.CreatedAt, "ghost")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestNotificationBroadcastChunks(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository(newTestStore(), testLogger)

	// More recipients than one batch write holds.
	userIDs := make([]string, 30)
	for i := range userIDs {
		userIDs[i] = fmt.Sprintf("u%02d", i)
	}

	sent, err := repo.Broadcast(ctx, userIDs, "Maintenance", "Sunday downtime", "announcement")
	require.NoError(t, err)
	assert.Equal(t, 30, sent)

	page, err := repo.ListByUser(ctx, "u17", 10, nil)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, "Maintenance", page.Notifications[0].Title)
}

func TestNotificationTemplates(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository(newTestStore(), testLogger)

	tmpl := &domain.NotificationTemplate{Name: "welcome", Subject: "Hi", Body: "Hello {name}", CreatedBy: "admin-1"}
	require.NoError(t, repo.CreateTemplate(ctx, tmpl))

	found, err := repo.FindTemplate(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "welcome", found.Name)

	subject := "Welcome aboard"
	updated, err := repo.UpdateTemplate(ctx, tmpl.ID, TemplatePatch{Subject: &subject})
	require.NoError(t, err)
	assert.Equal(t, "Welcome aboard", updated.Subject)
	assert.Equal(t, "Hello {name}", updated.Body)

	require.NoError(t, repo.DeleteTemplate(ctx, tmpl.ID))
	_, err = repo.FindTemplate(ctx, tmpl.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
