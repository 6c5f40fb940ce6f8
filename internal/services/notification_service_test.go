package services

import (
	"context"
	"testing"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/coastwatch-app/coastwatch/internal/repository"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type captureBroadcaster struct {
	got []models.Notification
}

func (c *captureBroadcaster) BroadcastNotification(notif models.Notification) {
	c.got = append(c.got, notif)
}

func TestNotificationTargeting(t *testing.T) {
	svc := NewNotificationService(repository.NewMemoryNotificationRepository())
	ctx := context.Background()

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	require.NoError(t, svc.Notify(ctx, &alice, models.NotifAccountChanged, "Account updated", "msg", nil))
	require.NoError(t, svc.Broadcast(ctx, models.NotifFAQCreated, "New FAQ", "msg", nil))

	aliceList, err := svc.ListForUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, aliceList, 2)

	// Bob only sees the broadcast.
	bobList, err := svc.ListForUser(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobList, 1)
	require.Equal(t, models.NotifFAQCreated, bobList[0].Type)
}

func TestNotificationMarkAsRead(t *testing.T) {
	svc := NewNotificationService(repository.NewMemoryNotificationRepository())
	ctx := context.Background()

	user := primitive.NewObjectID()
	require.NoError(t, svc.Notify(ctx, &user, models.NotifTraining, "Training completed", "msg", nil))

	list, err := svc.ListForUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.False(t, list[0].Read)

	require.NoError(t, svc.MarkAsRead(ctx, list[0].ID, user.Hex(), models.RoleCitizen))

	list, err = svc.ListForUser(ctx, user)
	require.NoError(t, err)
	require.True(t, list[0].Read)
}

func TestNotificationWriteOwnership(t *testing.T) {
	svc := NewNotificationService(repository.NewMemoryNotificationRepository())
	ctx := context.Background()

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	admin := primitive.NewObjectID()

	require.NoError(t, svc.Notify(ctx, &alice, models.NotifAccountChanged, "Account updated", "msg", nil))
	require.NoError(t, svc.Broadcast(ctx, models.NotifFAQCreated, "New FAQ", "msg", nil))

	list, err := svc.ListForUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)

	var personal, broadcast models.Notification
	for _, n := range list {
		if n.UserID != nil {
			personal = n
		} else {
			broadcast = n
		}
	}

	// Only the addressee touches a targeted notification.
	err = svc.MarkAsRead(ctx, personal.ID, bob.Hex(), models.RoleCitizen)
	require.ErrorIs(t, err, apperr.ErrForbidden)
	err = svc.Delete(ctx, personal.ID, bob.Hex(), models.RoleCitizen)
	require.ErrorIs(t, err, apperr.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, personal.ID, alice.Hex(), models.RoleCitizen))

	// Broadcasts are shared records, so citizens cannot write them at all.
	err = svc.MarkAsRead(ctx, broadcast.ID, alice.Hex(), models.RoleCitizen)
	require.ErrorIs(t, err, apperr.ErrForbidden)
	err = svc.Delete(ctx, broadcast.ID, alice.Hex(), models.RoleCitizen)
	require.ErrorIs(t, err, apperr.ErrForbidden)

	bobList, err := svc.ListForUser(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobList, 1)

	// Admins may retire them for everyone.
	require.NoError(t, svc.Delete(ctx, broadcast.ID, admin.Hex(), models.RoleAdmin))

	bobList, err = svc.ListForUser(ctx, bob)
	require.NoError(t, err)
	require.Empty(t, bobList)
}

func TestNotifyPushesToBroadcaster(t *testing.T) {
	svc := NewNotificationService(repository.NewMemoryNotificationRepository())
	capture := &captureBroadcaster{}
	svc.SetBroadcaster(capture)

	user := primitive.NewObjectID()
	require.NoError(t, svc.Notify(context.Background(), &user, models.NotifTraining, "Training completed", "msg", nil))

	require.Len(t, capture.got, 1)
	require.Equal(t, models.NotifTraining, capture.got[0].Type)
	require.NotNil(t, capture.got[0].UserID)
	require.Equal(t, user, *capture.got[0].UserID)
}
