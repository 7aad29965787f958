package service_test

import (
	"sync"
	"testing"

	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"github.com/miftajuneidi2008/ansar-dfp/internal/repository"
	"github.com/miftajuneidi2008/ansar-dfp/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_NotifyAndList(t *testing.T) {
	f := setupServiceTest(t)

	_, err := f.notifications.Notify(f.approver.ID, "First", "first message", model.NotificationSubmitted, nil)
	require.NoError(t, err)
	_, err = f.notifications.Notify(f.approver.ID, "Second", "second message", model.NotificationStatusChanged, nil)
	require.NoError(t, err)

	inbox, err := f.notifications.ListForUser(f.actor(f.approver))
	require.NoError(t, err)
	require.Len(t, inbox, 2)

	count, err := f.notifications.UnreadCount(f.actor(f.approver))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Other users' inboxes are untouched.
	count, err = f.notifications.UnreadCount(f.actor(f.branchUser))
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestNotificationService_NotifyRejectsInvalidType(t *testing.T) {
	f := setupServiceTest(t)

	_, err := f.notifications.Notify(f.approver.ID, "Title", "message", "carrier_pigeon", nil)
	assert.Error(t, err)
}

func TestNotificationService_MarkRead(t *testing.T) {
	f := setupServiceTest(t)

	n, err := f.notifications.Notify(f.approver.ID, "Title", "message", model.NotificationSubmitted, nil)
	require.NoError(t, err)

	// A different user marking it is a silent no-op.
	require.NoError(t, f.notifications.MarkRead(f.actor(f.branchUser), n.ID))
	count, err := f.notifications.UnreadCount(f.actor(f.approver))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// The owner flips it; repeat calls are idempotent.
	require.NoError(t, f.notifications.MarkRead(f.actor(f.approver), n.ID))
	require.NoError(t, f.notifications.MarkRead(f.actor(f.approver), n.ID))
	count, err = f.notifications.UnreadCount(f.actor(f.approver))
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	f := setupServiceTest(t)

	for i := 0; i < 3; i++ {
		_, err := f.notifications.Notify(f.approver.ID, "Title", "message", model.NotificationSubmitted, nil)
		require.NoError(t, err)
	}
	_, err := f.notifications.Notify(f.branchUser.ID, "Title", "message", model.NotificationSubmitted, nil)
	require.NoError(t, err)

	require.NoError(t, f.notifications.MarkAllRead(f.actor(f.approver)))

	count, err := f.notifications.UnreadCount(f.actor(f.approver))
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// Only the actor's inbox was touched.
	count, err = f.notifications.UnreadCount(f.actor(f.branchUser))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Empty inbox is fine.
	require.NoError(t, f.notifications.MarkAllRead(f.actor(f.admin)))
}

// recordingPublisher captures live pushes for assertions.
type recordingPublisher struct {
	mu       sync.Mutex
	messages map[string][][]byte
}

func (p *recordingPublisher) BroadcastToUser(userID string, message []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.messages == nil {
		p.messages = make(map[string][][]byte)
	}
	p.messages[userID] = append(p.messages[userID], message)
}

func TestNotificationService_LivePushReachesPublisher(t *testing.T) {
	f := setupServiceTest(t)
	pub := &recordingPublisher{}

	svc := service.NewNotificationService(repository.NewNotificationRepository(f.db), pub, nil)
	_, err := svc.Notify(f.approver.ID, "Title", "message", model.NotificationSubmitted, nil)
	require.NoError(t, err)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.messages[f.approver.ID], 1)
	assert.Contains(t, string(pub.messages[f.approver.ID][0]), `"title":"Title"`)
}
