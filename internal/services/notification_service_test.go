package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/repositories"
)

func newNotificationFixture(t *testing.T) (*fakeNotificationRepo, NotificationService) {
	t.Helper()
	repo := &fakeNotificationRepo{store: newFakeStore()}
	return repo, NewNotificationService(repo)
}

func TestNotificationFeed(t *testing.T) {
	repo, svc := newNotificationFixture(t)

	_, err := repo.CreateNewProposalNotification(nil, "client-1", "req-1", "prop-1", 115)
	require.NoError(t, err)
	_, err = repo.CreatePaymentNotification(nil, "client-1", "prop-1", 115)
	require.NoError(t, err)
	_, err = repo.CreateNewProposalNotification(nil, "client-2", "req-2", "prop-2", 80)
	require.NoError(t, err)

	list, err := svc.List(context.Background(), "client-1", repositories.NotificationCriteria{})
	require.NoError(t, err)
	assert.Len(t, list.Notifications, 2, "only the recipient's rows")
	assert.Equal(t, int64(2), list.UnreadCount)

	unread, err := svc.UnreadCount(context.Background(), "client-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)
}

func TestMarkAsRead(t *testing.T) {
	repo, svc := newNotificationFixture(t)

	n, err := repo.CreateNewProposalNotification(nil, "client-1", "req-1", "prop-1", 115)
	require.NoError(t, err)

	// Another user cannot read someone else's notification.
	err = svc.MarkAsRead(context.Background(), n.ID, "client-2")
	require.Error(t, err)

	require.NoError(t, svc.MarkAsRead(context.Background(), n.ID, "client-1"))

	unread, err := svc.UnreadCount(context.Background(), "client-1")
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestMarkAllAsRead(t *testing.T) {
	repo, svc := newNotificationFixture(t)

	_, err := repo.CreateNewProposalNotification(nil, "client-1", "req-1", "prop-1", 115)
	require.NoError(t, err)
	_, err = repo.CreatePaymentNotification(nil, "client-1", "prop-1", 115)
	require.NoError(t, err)

	require.NoError(t, svc.MarkAllAsRead(context.Background(), "client-1"))

	unread, err := svc.UnreadCount(context.Background(), "client-1")
	require.NoError(t, err)
	assert.Zero(t, unread)
}
