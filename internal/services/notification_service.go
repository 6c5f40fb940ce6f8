package services

import (
	"context"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/coastwatch-app/coastwatch/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Broadcaster pushes a freshly created notification to connected clients.
// The websocket hub implements it; a nil broadcaster is fine.
type Broadcaster interface {
	BroadcastNotification(notif models.Notification)
}

// NotificationService owns notification creation. Every other service emits
// through here; end users can only read, mark and delete.
type NotificationService struct {
	repo        repository.NotificationRepository
	broadcaster Broadcaster
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// SetBroadcaster wires the live delivery channel after construction, since
// the hub needs the service's consumers to exist first.
func (s *NotificationService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Notify records a notification for one user (or all users when userID is
// nil) and pushes it to connected clients.
func (s *NotificationService) Notify(ctx context.Context, userID *primitive.ObjectID, notifType, title, message string, targetID *primitive.ObjectID) error {
	notif := &models.Notification{
		UserID:   userID,
		Type:     notifType,
		Title:    title,
		Message:  message,
		Read:     false,
		TargetID: targetID,
	}

	created, err := s.repo.Create(ctx, notif)
	if err != nil {
		logrus.WithError(err).Error("Failed to create notification")
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastNotification(*created)
	}
	return nil
}

// Broadcast emits a notification visible to every user.
func (s *NotificationService) Broadcast(ctx context.Context, notifType, title, message string, targetID *primitive.ObjectID) error {
	return s.Notify(ctx, nil, notifType, title, message, targetID)
}

// ListForUser returns the user's notifications plus broadcasts, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	notifications, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

// MarkAsRead sets the read flag on a notification. Only the target user or
// an admin may mark it; the read flag lives on the record itself, so
// broadcasts are admin-only too.
func (s *NotificationService) MarkAsRead(ctx context.Context, id primitive.ObjectID, callerID, callerRole string) error {
	notif, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeNotificationWrite(notif, callerID, callerRole); err != nil {
		return err
	}
	return s.repo.MarkAsRead(ctx, id)
}

// Delete removes a notification. Only the target user or an admin may
// delete; broadcasts belong to everyone, so only admins may remove them.
func (s *NotificationService) Delete(ctx context.Context, id primitive.ObjectID, callerID, callerRole string) error {
	notif, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeNotificationWrite(notif, callerID, callerRole); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func authorizeNotificationWrite(notif *models.Notification, callerID, callerRole string) error {
	if callerRole == models.RoleAdmin {
		return nil
	}
	if notif.UserID != nil && notif.UserID.Hex() == callerID {
		return nil
	}
	return apperr.Forbiddenf("you can only modify your own notifications")
}

// PurgeExpired is called periodically by the scheduler.
func (s *NotificationService) PurgeExpired(ctx context.Context) error {
	_, err := s.repo.DeleteExpired(ctx)
	return err
}
