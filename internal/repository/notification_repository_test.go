package repository_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"github.com/miftajuneidi2008/ansar-dfp/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotification(t *testing.T, repo repository.NotificationRepository, userID string, createdAt time.Time) *model.NotificationModel {
	t.Helper()
	n := &model.NotificationModel{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     "Title",
		Message:   "message",
		Type:      model.NotificationSubmitted,
		CreatedAt: createdAt,
	}
	require.NoError(t, repo.Save(n))
	return n
}

func TestNotificationRepository_FindByUserNewestFirst(t *testing.T) {
	db := setupRepoDB(t)
	repo := repository.NewNotificationRepository(db)

	older := seedNotification(t, repo, "u1", time.Now().Add(-time.Hour))
	newer := seedNotification(t, repo, "u1", time.Now())
	seedNotification(t, repo, "u2", time.Now())

	got, err := repo.FindByUserID("u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, older.ID, got[1].ID)
}

func TestNotificationRepository_MarkReadScopedToOwner(t *testing.T) {
	db := setupRepoDB(t)
	repo := repository.NewNotificationRepository(db)

	n := seedNotification(t, repo, "u1", time.Now())

	// Not the owner: no rows change, no error.
	require.NoError(t, repo.MarkRead("u2", n.ID))
	count, err := repo.CountUnread("u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.MarkRead("u1", n.ID))
	count, err = repo.CountUnread("u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// Idempotent.
	require.NoError(t, repo.MarkRead("u1", n.ID))

	got, err := repo.FindByID(n.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)
}

func TestNotificationRepository_MarkAllRead(t *testing.T) {
	db := setupRepoDB(t)
	repo := repository.NewNotificationRepository(db)

	seedNotification(t, repo, "u1", time.Now())
	seedNotification(t, repo, "u1", time.Now())
	other := seedNotification(t, repo, "u2", time.Now())

	require.NoError(t, repo.MarkAllRead("u1"))

	count, err := repo.CountUnread("u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	got, err := repo.FindByID(other.ID)
	require.NoError(t, err)
	assert.False(t, got.IsRead)
}
